package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"theorie-backend-go/internal/models"
)

const attemptsCollection = "examAttempts"

// firestoreAttemptRepository implements the AttemptRepository interface using Firestore.
type firestoreAttemptRepository struct {
	client *firestore.Client
}

// NewFirestoreAttemptRepository creates a new instance of firestoreAttemptRepository.
func NewFirestoreAttemptRepository(client *firestore.Client) AttemptRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for AttemptRepository.")
	}
	return &firestoreAttemptRepository{client: client}
}

// Create adds a new attempt document with an auto-generated ID. CreatedAt is
// set by the caller so the counting window and the stored record agree on the
// same instant.
func (r *firestoreAttemptRepository) Create(ctx context.Context, attempt *models.ExamAttempt) (string, error) {
	if attempt.UserID == "" {
		return "", errors.New("attempt userID cannot be empty for Create operation")
	}
	docRef := r.client.Collection(attemptsCollection).NewDoc()
	attempt.ID = docRef.ID

	_, err := docRef.Create(ctx, attempt)
	if err != nil {
		return "", fmt.Errorf("failed to create exam attempt: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves an attempt document by its ID.
func (r *firestoreAttemptRepository) GetByID(ctx context.Context, attemptID string) (*models.ExamAttempt, error) {
	if attemptID == "" {
		return nil, errors.New("attemptID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(attemptsCollection).Doc(attemptID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("attempt with ID '%s' not found: %w", attemptID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get attempt with ID '%s': %w", attemptID, err)
	}

	var attempt models.ExamAttempt
	if err := docSnap.DataTo(&attempt); err != nil {
		return nil, fmt.Errorf("failed to decode attempt data for ID '%s': %w", attemptID, err)
	}
	attempt.ID = docSnap.Ref.ID

	return &attempt, nil
}

// Complete replaces the attempt document with its finished state. Attempts are
// never deleted, so a plain Set of the full struct is the only write after Create.
func (r *firestoreAttemptRepository) Complete(ctx context.Context, attempt *models.ExamAttempt) error {
	if attempt.ID == "" {
		return errors.New("attempt ID cannot be empty for Complete operation")
	}
	_, err := r.client.Collection(attemptsCollection).Doc(attempt.ID).Set(ctx, attempt)
	if err != nil {
		return fmt.Errorf("failed to complete attempt with ID '%s': %w", attempt.ID, err)
	}
	return nil
}

// CountInWindow counts the user's attempts created inside [from, to].
func (r *firestoreAttemptRepository) CountInWindow(ctx context.Context, userID string, from, to time.Time) (int, error) {
	if userID == "" {
		return 0, errors.New("userID cannot be empty for CountInWindow operation")
	}
	query := r.client.Collection(attemptsCollection).
		Where("userId", "==", userID).
		Where("createdAt", ">=", from).
		Where("createdAt", "<=", to)
	return r.count(ctx, query, userID)
}

// CountAll counts every attempt ever recorded for the user.
func (r *firestoreAttemptRepository) CountAll(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, errors.New("userID cannot be empty for CountAll operation")
	}
	query := r.client.Collection(attemptsCollection).Where("userId", "==", userID)
	return r.count(ctx, query, userID)
}

func (r *firestoreAttemptRepository) count(ctx context.Context, query firestore.Query, userID string) (int, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	count := 0
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to count attempts for user '%s': %w", userID, err)
		}
		count++
	}
	return count, nil
}

// ListByUser returns the user's attempts, newest first, for history display.
func (r *firestoreAttemptRepository) ListByUser(ctx context.Context, userID string, limit int) ([]*models.ExamAttempt, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for ListByUser operation")
	}
	query := r.client.Collection(attemptsCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	var attempts []*models.ExamAttempt
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate attempts for user '%s': %w", userID, err)
		}

		var attempt models.ExamAttempt
		if err := doc.DataTo(&attempt); err != nil {
			log.Printf("Error decoding attempt data (ID: %s) for user '%s': %v. Skipping.", doc.Ref.ID, userID, err)
			continue
		}
		attempt.ID = doc.Ref.ID
		attempts = append(attempts, &attempt)
	}

	return attempts, nil
}
