package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
)

// NotificationList is a paginated notification response
type NotificationList struct {
	List       []Notification `json:"list"`
	Pagination Pagination     `json:"pagination"`
}

// GetMyNotifications lists the current user's notifications. isRead filters
// by read state when non-nil.
func (c *Client) GetMyNotifications(ctx context.Context, offset, limit int, isRead *bool) (*NotificationList, error) {
	params := map[string]string{
		"offset": strconv.Itoa(offset),
		"limit":  strconv.Itoa(limit),
	}
	if isRead != nil {
		params["is_read"] = strconv.FormatBool(*isRead)
	}

	var result NotificationList
	if err := c.get(ctx, "/notifications", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetUnreadCount fetches the number of unread notifications
func (c *Client) GetUnreadCount(ctx context.Context) (int, error) {
	var envelope DataResponse
	if err := c.get(ctx, "/notifications/unread-count", nil, &envelope); err != nil {
		return 0, err
	}

	var count int
	if err := json.Unmarshal(envelope.Data, &count); err != nil {
		return 0, fmt.Errorf("failed to decode unread count: %w", err)
	}
	return count, nil
}

// MarkNotificationRead marks one notification as read
func (c *Client) MarkNotificationRead(ctx context.Context, notificationID string) (*Notification, error) {
	var result Notification
	if err := c.patchData(ctx, fmt.Sprintf("/notifications/%s/read", notificationID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// MarkAllNotificationsRead marks every notification as read
func (c *Client) MarkAllNotificationsRead(ctx context.Context) error {
	return c.patchData(ctx, "/notifications/read-all", nil, nil)
}
