package custody

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	platformrpc "github.com/stellar-connect/platform-rpc-go"
	"github.com/stellar-connect/platform-rpc-go/errors"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
	defaultBackoff    = 1 * time.Second
)

// Client is an HTTP custody service client with retry and exponential
// backoff. 5xx responses and transport errors are retried; 4xx
// responses are not.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	maxRetries   int
	retryBackoff time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP timeout (default 30s).
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithMaxRetries sets the retry attempt cap (default 3).
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) { c.maxRetries = n }
}

// WithRetryBackoff sets the base backoff duration (default 1s).
func WithRetryBackoff(d time.Duration) ClientOption {
	return func(c *Client) { c.retryBackoff = d }
}

// NewClient creates a custody client for the service at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:      baseURL,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		maxRetries:   defaultMaxRetries,
		retryBackoff: defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type custodyTransactionRequest struct {
	ID        string `json:"id"`
	Memo      string `json:"memo,omitempty"`
	MemoType  string `json:"memo_type,omitempty"`
	Protocol  string `json:"protocol"`
	Kind      string `json:"kind"`
	Amount    string `json:"amount,omitempty"`
	Asset     string `json:"asset,omitempty"`
	ToAccount string `json:"to_account,omitempty"`
}

type custodyRefundRequest struct {
	ID     string `json:"id"`
	Amount string `json:"amount"`
	Fee    string `json:"fee"`
}

// CreateTransaction registers the transaction with the custody service.
func (c *Client) CreateTransaction(ctx context.Context, txn *platformrpc.Transaction) error {
	body := custodyTransactionRequest{
		ID:        txn.ID,
		Memo:      txn.Memo,
		MemoType:  txn.MemoType,
		Protocol:  string(txn.Protocol),
		Kind:      string(txn.Kind),
		Amount:    txn.AmountOut,
		Asset:     txn.AmountOutAsset,
		ToAccount: txn.DestinationAccount,
	}
	return c.post(ctx, "/transactions", body)
}

// CreateTransactionPayment asks the custody service to submit the
// outbound on-chain payment.
func (c *Client) CreateTransactionPayment(ctx context.Context, txnID string) error {
	return c.post(ctx, fmt.Sprintf("/transactions/%s/payments", txnID), struct{}{})
}

// CreateTransactionRefund asks the custody service to submit an
// on-chain refund payment.
func (c *Client) CreateTransactionRefund(ctx context.Context, txnID string, payment platformrpc.RefundPayment) error {
	body := custodyRefundRequest{
		ID:     payment.ID,
		Amount: payment.Amount,
		Fee:    payment.Fee,
	}
	return c.post(ctx, fmt.Sprintf("/transactions/%s/refunds", txnID), body)
}

func (c *Client) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return errors.NewInternalError("failed to encode custody request", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return errors.NewInternalError("custody request cancelled", err)
		}
		if attempt > 0 {
			// Exponential backoff: backoff * 2^(attempt-1).
			time.Sleep(c.retryBackoff * (1 << uint(attempt-1)))
		}

		req, err := http.NewRequestWithContext(
			ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return errors.NewInternalError("failed to create custody request", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("custody server error: %s", resp.Status)
			continue
		}
		if resp.StatusCode >= 400 {
			detail, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			return errors.NewInternalError(
				fmt.Sprintf("custody request rejected: %s: %s", resp.Status, detail), nil)
		}

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil
	}

	return errors.NewInternalError(
		fmt.Sprintf("custody request failed after %d attempts", c.maxRetries+1), lastErr)
}

var _ platformrpc.CustodyService = (*Client)(nil)
