package payment

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Webhook event types the application acts on.
const (
	EventPaymentSucceeded = "payment.succeeded"
	EventPaymentFailed    = "payment.failed"
)

// Purchase kinds carried in the event metadata.
const (
	KindPlan   = "plan"
	KindBundle = "bundle"
)

// ErrInvalidPayload is returned when the webhook body cannot be parsed into
// an event envelope.
var ErrInvalidPayload = errors.New("invalid webhook payload")

// EventData is the payment object inside an event envelope. The metadata is
// the map attached at checkout time.
type EventData struct {
	PaymentID string            `json:"paymentId"`
	Amount    string            `json:"amount"`
	Currency  string            `json:"currency"`
	Metadata  map[string]string `json:"metadata"`
}

// Event is the webhook envelope delivered by the provider.
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"createdAt"`
	Data      EventData `json:"data"`
}

// ParseEvent decodes a webhook payload. An envelope without an id or type is
// rejected, since the id is what deduplication keys on.
func ParseEvent(payload []byte) (*Event, error) {
	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if event.ID == "" || event.Type == "" {
		return nil, fmt.Errorf("%w: missing event id or type", ErrInvalidPayload)
	}
	return &event, nil
}
