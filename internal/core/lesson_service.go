package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"theorie-backend-go/internal/db"
	"theorie-backend-go/internal/models"
)

// ErrLessonNotFound is returned when a lesson does not exist.
var ErrLessonNotFound = errors.New("lesson not found")

// lessonService implements the LessonService interface. Lessons are premium
// course content served from Firestore only; there is no embedded fallback.
type lessonService struct {
	lessonRepo db.LessonRepository
	userRepo   db.UserRepository
}

// NewLessonService creates a new LessonService instance.
func NewLessonService(lr db.LessonRepository, ur db.UserRepository) LessonService {
	return &lessonService{
		lessonRepo: lr,
		userRepo:   ur,
	}
}

// hasActivePlan resolves the caller's plan state. Anonymous callers and
// lookup failures degrade to "no access" rather than erroring, so listing
// keeps working for logged-out visitors.
func (s *lessonService) hasActivePlan(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil || user == nil {
		return false
	}
	return HasActivePlan(user.Plan, time.Now().UTC())
}

// ListLessons returns all lessons. Locked lessons keep their metadata so the
// client can render the course outline, but their bodies are stripped.
func (s *lessonService) ListLessons(ctx context.Context, userID string) ([]*models.Lesson, error) {
	lessons, err := s.lessonRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lessons: %w", err)
	}

	active := s.hasActivePlan(ctx, userID)
	listed := make([]*models.Lesson, 0, len(lessons))
	for _, lesson := range lessons {
		l := *lesson
		if !l.Free && !active {
			l.Body = ""
		}
		listed = append(listed, &l)
	}
	return listed, nil
}

// GetLesson returns a single lesson, denying locked content with a specific
// reason: anonymous callers must sign in, authenticated callers without an
// active plan must purchase one.
func (s *lessonService) GetLesson(ctx context.Context, userID, slug string) (*models.Lesson, error) {
	lesson, err := s.lessonRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrLessonNotFound, slug)
		}
		return nil, fmt.Errorf("failed to get lesson '%s': %w", slug, err)
	}

	if lesson.Free {
		return lesson, nil
	}
	if userID == "" {
		return nil, ErrAuthRequired
	}
	if !s.hasActivePlan(ctx, userID) {
		return nil, fmt.Errorf("%w: lesson '%s' is locked", ErrPlanRequired, slug)
	}
	return lesson, nil
}
