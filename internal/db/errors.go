package db

import "errors"

// Shared repository errors.
var (
	// ErrNotFound is returned when a document does not exist in Firestore.
	ErrNotFound = errors.New("document not found")
	// ErrDuplicate is returned when a Create collides with an existing document.
	ErrDuplicate = errors.New("document already exists")
)
