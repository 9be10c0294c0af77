package chat

import "time"

// MessageStatus represents the delivery state of a message from the client's
// point of view. Confirmed and historical messages may omit the field; absent
// is treated as sent.
type MessageStatus string

const (
	StatusSending MessageStatus = "sending"
	StatusSent    MessageStatus = "sent"
	StatusFailed  MessageStatus = "failed"
)

// MessageKind represents the message type
type MessageKind string

const (
	KindText       MessageKind = "text"
	KindCardShared MessageKind = "card_shared"
	KindSystem     MessageKind = "system"
)

// Sender carries the display info needed to render a message bubble
type Sender struct {
	UserID       string `json:"user_id"`
	Nickname     string `json:"nickname"`
	ProfileEmoji string `json:"profile_emoji"`
}

// Message is the conversation-agnostic message shape shared by group rooms
// and DM rooms. ID is server-assigned and empty while the message is only a
// local provisional record; TempID identifies the provisional record until it
// is reconciled or removed.
type Message struct {
	ID             string        `json:"message_id,omitempty"`
	ConversationID string        `json:"conversation_id"`
	SenderID       string        `json:"user_id,omitempty"`
	Content        string        `json:"content"`
	CardID         string        `json:"card_id,omitempty"`
	Kind           MessageKind   `json:"message_type"`
	CreatedAt      time.Time     `json:"created_at"`
	Sender         *Sender       `json:"sender,omitempty"`
	Status         MessageStatus `json:"status,omitempty"`
	TempID         string        `json:"temp_id,omitempty"`
}

// EffectiveStatus returns the status, defaulting to sent when absent
func (m Message) EffectiveStatus() MessageStatus {
	if m.Status == "" {
		return StatusSent
	}
	return m.Status
}

// DisplayID returns a stable identifier for rendering: the server id once
// confirmed, the temp id before that.
func (m Message) DisplayID() string {
	if m.ID != "" {
		return m.ID
	}
	return m.TempID
}

// IsSystem reports whether this is a server-generated presence/system notice
func (m Message) IsSystem() bool {
	return m.Kind == KindSystem
}
