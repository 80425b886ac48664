// Package payment talks to the external payment service provider: creating
// hosted checkout sessions and verifying the signature on inbound webhooks.
package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// ErrProvider is returned when the provider API rejects or fails a call.
var ErrProvider = errors.New("payment provider request failed")

// CheckoutParams describes a purchase to start. Metadata is echoed back in
// the webhook so the event can be applied to the right user.
type CheckoutParams struct {
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description"`
	RedirectURL string            `json:"redirectUrl"`
	Metadata    map[string]string `json:"metadata"`
}

// CheckoutSession is the provider's answer: a hosted payment page.
type CheckoutSession struct {
	ID          string `json:"id"`
	CheckoutURL string `json:"checkoutUrl"`
}

// Client is a minimal REST client for the provider API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a provider client. baseURL has no trailing slash.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// CreateCheckout creates a hosted checkout session. An idempotency key is
// attached so a retried call cannot open two payments.
func (c *Client) CreateCheckout(ctx context.Context, params CheckoutParams) (*CheckoutSession, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode checkout request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/checkouts", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build checkout request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Idempotency-Key", uuid.NewString())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, snippet)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode checkout response: %w", err)
	}
	if session.ID == "" || session.CheckoutURL == "" {
		return nil, fmt.Errorf("%w: incomplete checkout session in response", ErrProvider)
	}
	return &session, nil
}
