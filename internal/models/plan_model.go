package models

import "time"

// Plan is a snapshot of a purchased subscription. StartedAt and ExpiresAt
// bound the validity window; a plan with a zero ExpiresAt is treated as
// never active. Amount and Currency are kept for display only.
type Plan struct {
	Name      string            `json:"name" firestore:"name"`   // tier code, e.g. "plan_premium"
	Label     string            `json:"label" firestore:"label"` // human-readable display name
	StartedAt time.Time         `json:"startedAt" firestore:"startedAt"`
	ExpiresAt time.Time         `json:"expiresAt" firestore:"expiresAt"`
	Amount    string            `json:"amount,omitempty" firestore:"amount,omitempty"`
	Currency  string            `json:"currency,omitempty" firestore:"currency,omitempty"`
	PaymentID string            `json:"paymentId,omitempty" firestore:"paymentId,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty" firestore:"metadata,omitempty"`
}
