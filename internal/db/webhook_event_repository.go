package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"theorie-backend-go/internal/models"
)

const webhookEventsCollection = "webhookEvents"

// firestoreWebhookEventRepository implements the WebhookEventRepository
// interface using Firestore. The provider event ID is the document ID, which
// makes Claim an atomic test-and-set: Firestore rejects a second Create of
// the same document regardless of delivery order.
type firestoreWebhookEventRepository struct {
	client *firestore.Client
}

// NewFirestoreWebhookEventRepository creates a new instance of firestoreWebhookEventRepository.
func NewFirestoreWebhookEventRepository(client *firestore.Client) WebhookEventRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for WebhookEventRepository.")
	}
	return &firestoreWebhookEventRepository{client: client}
}

// Claim records the event. ErrDuplicate means the event id was seen before.
func (r *firestoreWebhookEventRepository) Claim(ctx context.Context, event *models.WebhookEvent) error {
	if event == nil || event.ID == "" {
		return errors.New("webhook event ID cannot be empty for Claim operation")
	}
	_, err := r.client.Collection(webhookEventsCollection).Doc(event.ID).Create(ctx, event)
	if err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("webhook event '%s' already processed: %w", event.ID, ErrDuplicate)
		}
		return fmt.Errorf("failed to claim webhook event '%s': %w", event.ID, err)
	}
	return nil
}

// Release drops the claim for an event whose application failed, so the
// provider's retry is not treated as a duplicate.
func (r *firestoreWebhookEventRepository) Release(ctx context.Context, eventID string) error {
	if eventID == "" {
		return errors.New("webhook event ID cannot be empty for Release operation")
	}
	_, err := r.client.Collection(webhookEventsCollection).Doc(eventID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to release webhook event '%s': %w", eventID, err)
	}
	return nil
}
