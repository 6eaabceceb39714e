// Package payrail talks to the external payment provider: transfer initiation,
// status polling, and webhook authenticity checks.
package payrail

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var ErrTransferNotFound = errors.New("transfer not found at provider")

// Statuses the provider reports; they map 1:1 onto payment statuses.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type TransferRequest struct {
	Reference string `json:"reference"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
	Currency  string `json:"currency"`
}

type Transfer struct {
	ExternalPaymentID string `json:"external_payment_id"`
	Status            string `json:"status"`
	TransactionHash   string `json:"transaction_hash,omitempty"`
	GasFee            string `json:"gas_fee,omitempty"`
	PlatformFee       string `json:"platform_fee,omitempty"`
	FailureReason     string `json:"failure_reason,omitempty"`
}

// WebhookEvent is the provider's settlement callback payload.
type WebhookEvent struct {
	ExternalPaymentID string `json:"external_payment_id"`
	Status            string `json:"status"`
	TransactionHash   string `json:"transaction_hash"`
	GasFee            string `json:"gas_fee"`
	PlatformFee       string `json:"platform_fee"`
	FailureReason     string `json:"failure_reason"`
}

// InitiateTransfer submits a transfer. Reference doubles as the provider-side
// idempotency key, so re-submitting the same payment is safe.
func (c *Client) InitiateTransfer(ctx context.Context, req TransferRequest) (*Transfer, error) {
	var out Transfer
	if err := c.do(ctx, http.MethodPost, "/v1/transfers", req, &out); err != nil {
		return nil, err
	}
	if out.ExternalPaymentID == "" {
		return nil, fmt.Errorf("provider returned no external payment id")
	}
	return &out, nil
}

func (c *Client) GetTransfer(ctx context.Context, externalPaymentID string) (*Transfer, error) {
	var out Transfer
	path := "/v1/transfers/" + url.PathEscape(externalPaymentID)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrTransferNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("provider status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}
	return json.Unmarshal(data, out)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
