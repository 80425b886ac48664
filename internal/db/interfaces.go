package db

import (
	"context"
	"time"

	"theorie-backend-go/internal/models"
)

// UserRepository defines the interface for user data storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	// SetPlan replaces the user's embedded plan snapshot in full.
	SetPlan(ctx context.Context, userID string, plan *models.Plan) error
	// IncrementExamCredits adds delta to the manual credit counter in a
	// transaction, so concurrent bundle purchases cannot lose increments.
	IncrementExamCredits(ctx context.Context, userID string, delta int) error
}

// AttemptRepository defines the interface for exam-attempt storage operations.
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.ExamAttempt) (string, error) // Returns new attempt ID
	GetByID(ctx context.Context, attemptID string) (*models.ExamAttempt, error)
	// Complete replaces the attempt document with its finished state.
	Complete(ctx context.Context, attempt *models.ExamAttempt) error
	// CountInWindow counts a user's attempts with CreatedAt in [from, to].
	CountInWindow(ctx context.Context, userID string, from, to time.Time) (int, error)
	// CountAll counts all attempts ever recorded for the user.
	CountAll(ctx context.Context, userID string) (int, error)
	ListByUser(ctx context.Context, userID string, limit int) ([]*models.ExamAttempt, error)
}

// ExamRepository defines read access to fixed mock exams.
type ExamRepository interface {
	List(ctx context.Context) ([]*models.Exam, error)
	GetBySlug(ctx context.Context, slug string) (*models.Exam, error)
}

// LessonRepository defines read access to theory lessons.
type LessonRepository interface {
	List(ctx context.Context) ([]*models.Lesson, error)
	GetBySlug(ctx context.Context, slug string) (*models.Lesson, error)
}

// SignRepository defines read access to traffic-sign reference content.
type SignRepository interface {
	List(ctx context.Context) ([]*models.TrafficSign, error)
}

// WebhookEventRepository is the dedupe ledger for payment webhooks.
type WebhookEventRepository interface {
	// Claim records the event id. ErrDuplicate means the event was already
	// processed and must be skipped.
	Claim(ctx context.Context, event *models.WebhookEvent) error
	// Release drops a claim so a provider retry can reprocess an event
	// whose application failed after the claim.
	Release(ctx context.Context, eventID string) error
}
