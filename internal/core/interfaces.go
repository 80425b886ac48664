package core

import (
	"context"

	"theorie-backend-go/internal/models"
)

// EntitlementSummary is the fixed shape returned to clients asking what the
// current user may do.
type EntitlementSummary struct {
	HasActivePlan         bool         `json:"hasActivePlan"`
	PlanName              string       `json:"planName,omitempty"`
	PlanLabel             string       `json:"planLabel,omitempty"`
	ExamAttemptsUsed      int          `json:"examAttemptsUsed"`
	ExamAttemptsLimit     int          `json:"examAttemptsLimit"`
	ExamAttemptsRemaining int          `json:"examAttemptsRemaining"`
	Plan                  *models.Plan `json:"plan,omitempty"`
}

// UserService defines the interface for user-related operations.
type UserService interface {
	// GetOrCreate retrieves a user by ID. If the user doesn't exist, it creates a new one with default values.
	GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	// Entitlement evaluates the user's access state and attempt budget.
	Entitlement(ctx context.Context, userID string) (*EntitlementSummary, error)
}

// StartedExam is what an exam start returns: the consumed attempt plus the
// questions with answers stripped.
type StartedExam struct {
	Attempt   *models.ExamAttempt `json:"attempt"`
	Title     string              `json:"title"`
	Questions []models.Question   `json:"questions"`
}

// ExamResult is the outcome of a submitted attempt.
type ExamResult struct {
	Attempt   *models.ExamAttempt `json:"attempt"`
	Questions []models.Question   `json:"questions"` // with correct answers and explanations
}

// ExamService defines the interface for mock-exam operations, including the
// access gate in front of every exam start.
type ExamService interface {
	ListExams(ctx context.Context) ([]*models.Exam, error)
	// GetExam returns one exam's metadata without its questions; those are
	// only handed out by a start.
	GetExam(ctx context.Context, slug string) (*models.Exam, error)
	// StartExam checks the caller's entitlement, persists an attempt record
	// and returns the questions. The attempt is consumed even if the client
	// never submits.
	StartExam(ctx context.Context, userID, slug string) (*StartedExam, error)
	// GenerateExam assembles a random exam from the question pool under the
	// same gate, with a generated identifier instead of a fixed slug.
	GenerateExam(ctx context.Context, userID string, req models.GenerateExamRequest) (*StartedExam, error)
	SubmitExam(ctx context.Context, userID, attemptID string, req models.SubmitExamRequest) (*ExamResult, error)
	AttemptHistory(ctx context.Context, userID string, limit int) ([]*models.ExamAttempt, error)
}

// LessonService defines the interface for theory course content.
type LessonService interface {
	// ListLessons returns all lessons with bodies stripped from the ones the
	// user has not unlocked.
	ListLessons(ctx context.Context, userID string) ([]*models.Lesson, error)
	// GetLesson returns a single lesson, denying locked content.
	GetLesson(ctx context.Context, userID, slug string) (*models.Lesson, error)
}

// SignService defines the interface for the traffic-sign reference and quiz.
type SignService interface {
	ListSigns(ctx context.Context) ([]*models.TrafficSign, error)
	// Quiz returns a random selection of signs for a recognition quiz.
	Quiz(ctx context.Context, count int) ([]*models.TrafficSign, error)
}

// BillingService defines the interface for purchases and payment webhooks.
type BillingService interface {
	CreateCheckoutSession(ctx context.Context, userID string, req models.CreateCheckoutRequest) (string, error)
	// HandleWebhook verifies the signature header, deduplicates by event id
	// and applies the event to the user record.
	HandleWebhook(ctx context.Context, signature string, payload []byte) error
}
