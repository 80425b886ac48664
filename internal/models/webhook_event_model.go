package models

import "time"

// WebhookEvent is one processed payment-provider event, persisted as a
// dedupe ledger entry. The event ID doubles as the document ID, so a
// duplicate delivery fails its Create and is skipped.
type WebhookEvent struct {
	ID         string    `json:"id" firestore:"-"` // provider event id
	Type       string    `json:"type" firestore:"type"`
	PaymentID  string    `json:"paymentId,omitempty" firestore:"paymentId,omitempty"`
	UserID     string    `json:"userId,omitempty" firestore:"userId,omitempty"`
	ReceivedAt time.Time `json:"receivedAt" firestore:"receivedAt,serverTimestamp"`
}
