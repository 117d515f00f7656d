// Package client provides a JSON-RPC client for the platform's action
// API, used by anchor business servers to drive transaction state
// transitions.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/stellar-connect/platform-rpc-go/errors"
	"github.com/stellar-connect/platform-rpc-go/rpc"
)

// Client submits RPC batches to a platform endpoint.
type Client struct {
	endpoint   string
	httpClient *http.Client
	authToken  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithAuthToken sets a bearer token attached to every request.
func WithAuthToken(token string) Option {
	return func(c *Client) { c.authToken = token }
}

// New creates a client for the RPC endpoint at the given URL.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Call submits a single method call and returns its response entry.
func (c *Client) Call(ctx context.Context, method string, params any) (*rpc.Response, error) {
	encoded, err := json.Marshal(params)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode RPC params", err)
	}

	responses, err := c.Submit(ctx, []rpc.Request{{
		JSONRPC: rpc.Version,
		ID:      uuid.NewString(),
		Method:  method,
		Params:  encoded,
	}})
	if err != nil {
		return nil, err
	}
	if len(responses) != 1 {
		return nil, errors.NewInternalError(
			fmt.Sprintf("expected 1 RPC response, got %d", len(responses)), nil)
	}
	return &responses[0], nil
}

// Submit sends a batch of requests and returns the response entries in
// input order.
func (c *Client) Submit(ctx context.Context, requests []rpc.Request) ([]rpc.Response, error) {
	payload, err := json.Marshal(requests)
	if err != nil {
		return nil, errors.NewInternalError("failed to encode RPC batch", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, errors.NewInternalError("failed to create RPC request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewInternalError("RPC request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewInternalError("failed to read RPC response", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewInternalError(
			fmt.Sprintf("RPC endpoint returned %s: %s", resp.Status, body), nil)
	}

	var responses []rpc.Response
	if err := json.Unmarshal(body, &responses); err != nil {
		return nil, errors.NewInternalError("failed to decode RPC response", err)
	}
	return responses, nil
}
