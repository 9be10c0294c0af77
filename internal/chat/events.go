package chat

import (
	"encoding/json"
	"fmt"
	"time"
)

// Wire event types. The server pushes events and the client sends commands
// over the same {type, payload} envelope.
const (
	// Server -> client
	EventNewMessage    = "new_message"
	EventSystemMessage = "system_message"
	EventNewDMMessage  = "new_dm_message"
	EventError         = "error"

	// Client -> server
	CmdJoinRoom      = "join_room"
	CmdSendMessage   = "send_message"
	CmdShareCard     = "share_card"
	CmdJoinDMRoom    = "join_dm_room"
	CmdSendDMMessage = "send_dm_message"
)

// Handshake query parameter keys
const (
	QueryToken  = "token"
	QueryRoomID = "room_id"
)

// Envelope is the wire format for all real-time traffic
type Envelope struct {
	Type        string          `json:"type"`
	OperationID string          `json:"operation_id,omitempty"`
	Payload     json.RawMessage `json:"payload,omitempty"`
}

// Event is the decoded form of a server-pushed envelope. The concrete types
// below form a closed set; the router switches over them exhaustively.
type Event interface {
	eventType() string
}

// NewMessageEvent carries a confirmed room message
type NewMessageEvent struct {
	Message Message `json:"message"`
}

// SystemMessageEvent carries a join/leave/presence notice for a group room
type SystemMessageEvent struct {
	Message Message `json:"message"`
}

// NewDMMessageEvent carries a confirmed direct message
type NewDMMessageEvent struct {
	Message Message `json:"message"`
}

// ErrorEvent carries a server-side error in whatever shape the server chose
// to send it. Text() normalizes it for display.
type ErrorEvent struct {
	raw json.RawMessage
}

func (NewMessageEvent) eventType() string    { return EventNewMessage }
func (SystemMessageEvent) eventType() string { return EventSystemMessage }
func (NewDMMessageEvent) eventType() string  { return EventNewDMMessage }
func (ErrorEvent) eventType() string         { return EventError }

// Text normalizes the error payload to a displayable string. Servers have
// been observed sending plain strings, {description}, {message: string} and
// {message: object}; none of them may panic the render path.
func (e ErrorEvent) Text() string {
	return normalizeErrorPayload(e.raw)
}

// ErrUnknownEvent is returned by DecodeEvent for event types outside the
// known set; callers log and drop these.
type ErrUnknownEvent struct {
	Type string
}

func (e *ErrUnknownEvent) Error() string {
	return fmt.Sprintf("unknown event type %q", e.Type)
}

// DecodeEvent parses a raw inbound frame into a typed event
func DecodeEvent(data []byte) (Event, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	switch env.Type {
	case EventNewMessage:
		msg, err := decodeRoomMessage(env.Payload)
		if err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return NewMessageEvent{Message: msg}, nil
	case EventSystemMessage:
		msg, err := decodeRoomMessage(env.Payload)
		if err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		msg.Kind = KindSystem
		return SystemMessageEvent{Message: msg}, nil
	case EventNewDMMessage:
		msg, err := decodeDMMessage(env.Payload)
		if err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", env.Type, err)
		}
		return NewDMMessageEvent{Message: msg}, nil
	case EventError:
		return ErrorEvent{raw: env.Payload}, nil
	default:
		return nil, &ErrUnknownEvent{Type: env.Type}
	}
}

// Wire shapes of pushed messages. Room and DM events name their fields
// differently; both reduce to the conversation-agnostic Message.
type wireRoomMessage struct {
	MessageID   string    `json:"message_id"`
	RoomID      string    `json:"room_id"`
	UserID      string    `json:"user_id"`
	Content     string    `json:"content"`
	CardID      string    `json:"card_id"`
	MessageType string    `json:"message_type"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	Sender      *Sender   `json:"sender"`
}

type wireDMMessage struct {
	DMID       string    `json:"dm_id"`
	DMRoomID   string    `json:"dm_room_id"`
	FromUserID string    `json:"from_user_id"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

func decodeRoomMessage(payload json.RawMessage) (Message, error) {
	var body struct {
		Message wireRoomMessage `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return Message{}, err
	}

	m := body.Message
	kind := MessageKind(m.MessageType)
	if m.IsSystem {
		kind = KindSystem
	}
	if kind == "" {
		kind = KindText
	}

	return Message{
		ID:             m.MessageID,
		ConversationID: m.RoomID,
		SenderID:       m.UserID,
		Content:        m.Content,
		CardID:         m.CardID,
		Kind:           kind,
		CreatedAt:      m.CreatedAt,
		Sender:         m.Sender,
	}, nil
}

func decodeDMMessage(payload json.RawMessage) (Message, error) {
	var body struct {
		Message wireDMMessage `json:"message"`
	}
	if err := json.Unmarshal(payload, &body); err != nil {
		return Message{}, err
	}

	m := body.Message
	return Message{
		ID:             m.DMID,
		ConversationID: m.DMRoomID,
		SenderID:       m.FromUserID,
		Content:        m.Content,
		Kind:           KindText,
		CreatedAt:      m.CreatedAt,
	}, nil
}

// Outbound command payloads
type joinRoomPayload struct {
	RoomID string `json:"room_id"`
}

type sendMessagePayload struct {
	Content string `json:"content"`
}

type shareCardPayload struct {
	CardID string `json:"card_id"`
}

type joinDMRoomPayload struct {
	DMRoomID string `json:"dm_room_id"`
}

type sendDMMessagePayload struct {
	DMRoomID string `json:"dm_room_id"`
	Content  string `json:"content"`
}

// Command is a typed client-to-server instruction, encoded lazily so the
// connection owns envelope assembly (operation ids).
type Command struct {
	Type    string
	payload any
}

// JoinRoomCmd identifies the group room to join after connecting
func JoinRoomCmd(roomID string) Command {
	return Command{Type: CmdJoinRoom, payload: joinRoomPayload{RoomID: roomID}}
}

// SendMessageCmd sends text to the joined group room
func SendMessageCmd(content string) Command {
	return Command{Type: CmdSendMessage, payload: sendMessagePayload{Content: content}}
}

// ShareCardCmd shares a conversation card with the joined group room
func ShareCardCmd(cardID string) Command {
	return Command{Type: CmdShareCard, payload: shareCardPayload{CardID: cardID}}
}

// JoinDMRoomCmd identifies the DM room to join after connecting
func JoinDMRoomCmd(dmRoomID string) Command {
	return Command{Type: CmdJoinDMRoom, payload: joinDMRoomPayload{DMRoomID: dmRoomID}}
}

// SendDMMessageCmd sends text to a DM room
func SendDMMessageCmd(dmRoomID, content string) Command {
	return Command{Type: CmdSendDMMessage, payload: sendDMMessagePayload{DMRoomID: dmRoomID, Content: content}}
}

// Encode assembles the wire envelope for a command
func (c Command) Encode(operationID string) ([]byte, error) {
	payload, err := json.Marshal(c.payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", c.Type, err)
	}
	return json.Marshal(Envelope{
		Type:        c.Type,
		OperationID: operationID,
		Payload:     payload,
	})
}

func normalizeErrorPayload(raw json.RawMessage) string {
	const fallback = "unknown socket error"
	if len(raw) == 0 {
		return fallback
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "" {
			return fallback
		}
		return s
	}

	// Structured shapes: prefer a description field, then message, which may
	// itself be a string or an arbitrary object.
	var obj struct {
		Description string          `json:"description"`
		Message     json.RawMessage `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Description != "" {
			return obj.Description
		}
		if len(obj.Message) > 0 {
			var ms string
			if err := json.Unmarshal(obj.Message, &ms); err == nil {
				return ms
			}
			return string(obj.Message)
		}
	}

	return string(raw)
}
