package models

import "time"

// User represents an account in the system.
type User struct {
	ID          string `json:"id" firestore:"-"` // Firebase Auth UID, will be the document ID
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`

	// Plan is the snapshot of the most recent subscription purchase.
	// Replaced wholesale on every successful payment confirmation,
	// never partially updated.
	Plan *Plan `json:"plan,omitempty" firestore:"plan,omitempty"`

	// ExamCredits is the manual credit counter: exam attempts bought as a
	// bundle, usable without an active subscription window. Incremented
	// atomically on bundle purchase, never decremented by the application.
	ExamCredits int `json:"examCredits" firestore:"examCredits"`

	CreatedAt time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}
