package api

import (
	"context"
	"fmt"
	"strconv"
)

// DirectMessageList is a paginated DM message response, newest-first
type DirectMessageList struct {
	List       []DirectMessage `json:"list"`
	Pagination Pagination      `json:"pagination"`
}

// DMRoomList is a paginated DM room response
type DMRoomList struct {
	List       []DMRoom   `json:"list"`
	Pagination Pagination `json:"pagination"`
}

// RequestDM asks another traveler for a 1:1 conversation
func (c *Client) RequestDM(ctx context.Context, toUserID string) (*DMRoom, error) {
	var result DMRoom
	if err := c.postData(ctx, "/dm/requests", RequestDMRequest{ToUserID: toUserID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AcceptDM accepts a pending 1:1 conversation request
func (c *Client) AcceptDM(ctx context.Context, dmRoomID string) (*DMRoom, error) {
	var result DMRoom
	if err := c.postData(ctx, fmt.Sprintf("/dm/requests/%s/accept", dmRoomID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RejectDM rejects a pending 1:1 conversation request
func (c *Client) RejectDM(ctx context.Context, dmRoomID string) (*DMRoom, error) {
	var result DMRoom
	if err := c.postData(ctx, fmt.Sprintf("/dm/requests/%s/reject", dmRoomID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetMyDMRooms lists the current user's DM rooms, optionally by status
func (c *Client) GetMyDMRooms(ctx context.Context, status string, offset, limit int) (*DMRoomList, error) {
	params := map[string]string{
		"offset": strconv.Itoa(offset),
		"limit":  strconv.Itoa(limit),
	}
	if status != "" {
		params["status"] = status
	}

	var result DMRoomList
	if err := c.get(ctx, "/dm/rooms", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetDMMessages fetches DM history, newest-first with cursor pagination
func (c *Client) GetDMMessages(ctx context.Context, dmRoomID, cursor string, limit int) (*DirectMessageList, error) {
	params := map[string]string{
		"limit": strconv.Itoa(limit),
	}
	if cursor != "" {
		params["cursor"] = cursor
	}

	var result DirectMessageList
	if err := c.get(ctx, fmt.Sprintf("/dm/rooms/%s/messages", dmRoomID), params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
