package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/bzero-app/bzero/pkg/errcode"
)

// Client is the HTTP client for the B0 backend API
type Client struct {
	baseURL    string
	httpClient *client.Client
	token      string
}

// ClientOption is a function to configure the client
type ClientOption func(*Client)

// WithHertzClient sets a custom Hertz client
func WithHertzClient(httpClient *client.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithToken sets the bearer token used on every request
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// NewClient creates a new API client
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	httpClient, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		client.WithClientReadTimeout(30*time.Second),
		client.WithWriteTimeout(30*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http client: %w", err)
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// MustNewClient creates a new API client and panics on error
func MustNewClient(baseURL string, opts ...ClientOption) *Client {
	c, err := NewClient(baseURL, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// SetToken replaces the bearer token (after sign-in or refresh)
func (c *Client) SetToken(token string) {
	c.token = token
}

// Token returns the current bearer token
func (c *Client) Token() string {
	return c.token
}

// request makes an HTTP request and decodes the response body into result.
// Non-2xx responses are decoded from the {error: {code, message}} envelope
// into an *errcode.Error.
func (c *Client) request(ctx context.Context, method, path string, params map[string]string, body, result interface{}) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		query := url.Values{}
		for k, v := range params {
			query.Set(k, v)
		}
		reqURL += "?" + query.Encode()
	}

	req := &protocol.Request{}
	resp := &protocol.Response{}

	req.SetMethod(method)
	req.SetRequestURI(reqURL)

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.SetBody(jsonBody)
	}

	if err := c.httpClient.Do(ctx, req, resp); err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		return decodeAPIError(status, resp.Body())
	}

	if result != nil {
		if err := json.Unmarshal(resp.Body(), result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// get makes a GET request with query parameters
func (c *Client) get(ctx context.Context, path string, params map[string]string, result interface{}) error {
	return c.request(ctx, consts.MethodGet, path, params, nil, result)
}

// post makes a POST request
func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.request(ctx, consts.MethodPost, path, nil, body, result)
}

// patch makes a PATCH request
func (c *Client) patch(ctx context.Context, path string, body, result interface{}) error {
	return c.request(ctx, consts.MethodPatch, path, nil, body, result)
}

// delete makes a DELETE request
func (c *Client) delete(ctx context.Context, path string) error {
	return c.request(ctx, consts.MethodDelete, path, nil, nil, nil)
}

// getData unwraps a {data: T} detail response
func (c *Client) getData(ctx context.Context, path string, params map[string]string, result interface{}) error {
	var envelope DataResponse
	if err := c.get(ctx, path, params, &envelope); err != nil {
		return err
	}
	return json.Unmarshal(envelope.Data, result)
}

// postData posts and unwraps a {data: T} detail response
func (c *Client) postData(ctx context.Context, path string, body, result interface{}) error {
	var envelope DataResponse
	if err := c.post(ctx, path, body, &envelope); err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(envelope.Data, result)
}

// patchData patches and unwraps a {data: T} detail response
func (c *Client) patchData(ctx context.Context, path string, body, result interface{}) error {
	var envelope DataResponse
	if err := c.patch(ctx, path, body, &envelope); err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	return json.Unmarshal(envelope.Data, result)
}

func decodeAPIError(status int, body []byte) error {
	var envelope ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Code != "" {
		return &envelope.Error
	}
	return errcode.ErrInternalServer.WithMessage(fmt.Sprintf("unexpected status %d", status))
}
