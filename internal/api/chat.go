package api

import (
	"context"
	"fmt"
	"strconv"
)

// ChatMessageList is a paginated room message response, newest-first
type ChatMessageList struct {
	List       []ChatMessage `json:"list"`
	Pagination Pagination    `json:"pagination"`
}

// UserList is a paginated user list response
type UserList struct {
	List       []User     `json:"list"`
	Pagination Pagination `json:"pagination"`
}

// GetRoomMessages fetches room message history. The response runs newest to
// oldest; cursor is the id of the oldest message already seen and requests
// the page before it. A short page (fewer than limit) means no older page.
func (c *Client) GetRoomMessages(ctx context.Context, roomID, cursor string, limit int) (*ChatMessageList, error) {
	params := map[string]string{
		"limit": strconv.Itoa(limit),
	}
	if cursor != "" {
		params["cursor"] = cursor
	}

	var result ChatMessageList
	if err := c.get(ctx, fmt.Sprintf("/rooms/%s/messages", roomID), params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetRoomMembers fetches the travelers currently staying in a room
func (c *Client) GetRoomMembers(ctx context.Context, roomID string) ([]User, error) {
	var result UserList
	if err := c.get(ctx, fmt.Sprintf("/rooms/%s/members", roomID), nil, &result); err != nil {
		return nil, err
	}
	return result.List, nil
}

// GetRandomConversationCard fetches a random conversation card for a city
func (c *Client) GetRandomConversationCard(ctx context.Context, cityID string) (*ConversationCard, error) {
	var result ConversationCard
	if err := c.getData(ctx, fmt.Sprintf("/chat/cities/%s/conversation-cards/random", cityID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
