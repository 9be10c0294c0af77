package api

import "context"

// GetMe fetches the current user's profile
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	var result User
	if err := c.getData(ctx, "/users/me", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// UpdateMe updates the current user's profile
func (c *Client) UpdateMe(ctx context.Context, req *UpdateUserRequest) (*User, error) {
	var result User
	if err := c.patchData(ctx, "/users/me", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateMe completes first-time profile setup
func (c *Client) CreateMe(ctx context.Context, req *UpdateUserRequest) (*User, error) {
	var result User
	if err := c.postData(ctx, "/users/me", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
