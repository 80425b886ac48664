package models

import "time"

// Attempt lifecycle statuses.
const (
	AttemptStatusStarted   = "started"
	AttemptStatusCompleted = "completed"
)

// ExamAttempt is one mock-exam session. A record is written the moment the
// exam starts, so an abandoned exam still consumes an attempt, and is
// completed on submission. Records are counted, never deleted.
type ExamAttempt struct {
	ID              string     `json:"id" firestore:"-"`
	UserID          string     `json:"userId" firestore:"userId"`
	ExamSlug        string     `json:"examSlug" firestore:"examSlug"`
	Generated       bool       `json:"generated" firestore:"generated"`                         // true for randomly assembled exams
	QuestionIDs     []string   `json:"questionIds,omitempty" firestore:"questionIds,omitempty"` // the served questions of a generated exam
	Status          string     `json:"status" firestore:"status"`
	Score           int        `json:"score" firestore:"score"`
	TotalQuestions  int        `json:"totalQuestions" firestore:"totalQuestions"`
	Passed          bool       `json:"passed" firestore:"passed"`
	DurationSeconds int        `json:"durationSeconds" firestore:"durationSeconds"`
	CreatedAt       time.Time  `json:"createdAt" firestore:"createdAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty" firestore:"completedAt,omitempty"`
}
