package api

import (
	"context"

	"github.com/bzero-app/bzero/internal/chat"
)

// RoomHistory adapts the room endpoints to the chat session's history
// interface.
type RoomHistory struct {
	client *Client
}

// NewRoomHistory wraps a client for group room history
func NewRoomHistory(client *Client) *RoomHistory {
	return &RoomHistory{client: client}
}

// Messages fetches one history page, newest-first as the session expects
func (h *RoomHistory) Messages(ctx context.Context, roomID, cursor string, limit int) ([]chat.Message, error) {
	resp, err := h.client.GetRoomMessages(ctx, roomID, cursor, limit)
	if err != nil {
		return nil, err
	}

	out := make([]chat.Message, len(resp.List))
	for i, m := range resp.List {
		out[i] = roomMessageToChat(m)
	}
	return out, nil
}

// Members fetches the room member list as sender display info
func (h *RoomHistory) Members(ctx context.Context, roomID string) ([]chat.Sender, error) {
	users, err := h.client.GetRoomMembers(ctx, roomID)
	if err != nil {
		return nil, err
	}

	out := make([]chat.Sender, len(users))
	for i, u := range users {
		out[i] = chat.Sender{UserID: u.UserID, Nickname: u.Nickname, ProfileEmoji: u.ProfileEmoji}
	}
	return out, nil
}

// DMHistory adapts the DM endpoints to the chat session's history interface
type DMHistory struct {
	client *Client
}

// NewDMHistory wraps a client for DM history
func NewDMHistory(client *Client) *DMHistory {
	return &DMHistory{client: client}
}

// Messages fetches one DM history page, newest-first
func (h *DMHistory) Messages(ctx context.Context, dmRoomID, cursor string, limit int) ([]chat.Message, error) {
	resp, err := h.client.GetDMMessages(ctx, dmRoomID, cursor, limit)
	if err != nil {
		return nil, err
	}

	out := make([]chat.Message, len(resp.List))
	for i, m := range resp.List {
		out[i] = dmMessageToChat(m)
	}
	return out, nil
}

// Members returns the DM counterpart; DMs carry sender info on the message
// itself, so there is no separate member endpoint to consult.
func (h *DMHistory) Members(ctx context.Context, dmRoomID string) ([]chat.Sender, error) {
	return nil, nil
}

func roomMessageToChat(m ChatMessage) chat.Message {
	kind := chat.MessageKind(m.MessageType)
	if m.IsSystem {
		kind = chat.KindSystem
	}
	if kind == "" {
		kind = chat.KindText
	}

	msg := chat.Message{
		ID:             m.MessageID,
		ConversationID: m.RoomID,
		SenderID:       m.UserID,
		Content:        m.Content,
		CardID:         m.CardID,
		Kind:           kind,
		CreatedAt:      m.CreatedAt,
	}
	if m.Sender != nil {
		msg.Sender = &chat.Sender{
			UserID:       m.Sender.UserID,
			Nickname:     m.Sender.Nickname,
			ProfileEmoji: m.Sender.ProfileEmoji,
		}
	}
	return msg
}

func dmMessageToChat(m DirectMessage) chat.Message {
	return chat.Message{
		ID:             m.DMID,
		ConversationID: m.DMRoomID,
		SenderID:       m.FromUserID,
		Content:        m.Content,
		Kind:           chat.KindText,
		CreatedAt:      m.CreatedAt,
	}
}
