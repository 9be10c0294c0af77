package api

import (
	"context"
	"fmt"
	"strconv"
)

// DiaryList is a paginated diary response
type DiaryList struct {
	List       []Diary    `json:"list"`
	Pagination Pagination `json:"pagination"`
}

// GetMyDiaries lists the current user's diary entries
func (c *Client) GetMyDiaries(ctx context.Context, offset, limit int) (*DiaryList, error) {
	params := map[string]string{
		"offset": strconv.Itoa(offset),
		"limit":  strconv.Itoa(limit),
	}

	var result DiaryList
	if err := c.get(ctx, "/diaries", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetDiary fetches one diary entry
func (c *Client) GetDiary(ctx context.Context, diaryID string) (*Diary, error) {
	var result Diary
	if err := c.getData(ctx, fmt.Sprintf("/diaries/%s", diaryID), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateDiary writes a new diary entry
func (c *Client) CreateDiary(ctx context.Context, req *CreateDiaryRequest) (*Diary, error) {
	var result Diary
	if err := c.postData(ctx, "/diaries", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateDiary edits a diary entry
func (c *Client) UpdateDiary(ctx context.Context, diaryID string, req *UpdateDiaryRequest) (*Diary, error) {
	var result Diary
	if err := c.patchData(ctx, fmt.Sprintf("/diaries/%s", diaryID), req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteDiary removes a diary entry
func (c *Client) DeleteDiary(ctx context.Context, diaryID string) error {
	return c.delete(ctx, fmt.Sprintf("/diaries/%s", diaryID))
}
