package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"theorie-backend-go/internal/db"
	"theorie-backend-go/internal/models"
)

// ErrUserNotFound is returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// userService implements the UserService interface.
type userService struct {
	userRepo    db.UserRepository
	attemptRepo db.AttemptRepository
}

// NewUserService creates a new UserService instance.
func NewUserService(userRepo db.UserRepository, attemptRepo db.AttemptRepository) UserService {
	return &userService{
		userRepo:    userRepo,
		attemptRepo: attemptRepo,
	}
}

// GetOrCreate retrieves a user by ID. If the user doesn't exist, it creates a
// new one with no plan and zero credits. Returns the user, a boolean
// indicating whether it was created, and an error if any.
func (s *userService) GetOrCreate(ctx context.Context, userID, email, displayName, photoURL string) (*models.User, bool, error) {
	if s.userRepo == nil {
		return nil, false, errors.New("UserRepository not initialized in UserService")
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			newUser := &models.User{
				ID:          userID, // Firebase Auth UID is the document ID
				Email:       email,
				DisplayName: displayName,
				PhotoURL:    photoURL,
				ExamCredits: 0,
				CreatedAt:   time.Now().UTC(),
				UpdatedAt:   time.Now().UTC(),
			}
			if createErr := s.userRepo.Create(ctx, newUser); createErr != nil {
				return nil, false, fmt.Errorf("failed to create user (id: %s) after not found: %w", userID, createErr)
			}
			return newUser, true, nil
		}
		return nil, false, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	if user == nil {
		return nil, false, fmt.Errorf("repository returned (nil, nil) for user ID '%s'", userID)
	}

	return user, false, nil
}

// GetByID retrieves a user by their ID.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if s.userRepo == nil {
		return nil, errors.New("UserRepository not initialized in UserService")
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: user with ID '%s' (repository returned nil user and nil error)", ErrUserNotFound, userID)
	}
	return user, nil
}

// Entitlement evaluates the user's plan and counts attempts in the applicable
// window. An empty userID yields the anonymous view instead of an error.
func (s *userService) Entitlement(ctx context.Context, userID string) (*EntitlementSummary, error) {
	now := time.Now().UTC()

	if userID == "" {
		ent := Evaluate(nil, now)
		return &EntitlementSummary{
			HasActivePlan:         false,
			ExamAttemptsUsed:      0,
			ExamAttemptsLimit:     ent.Limit,
			ExamAttemptsRemaining: ent.Limit,
		}, nil
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ent := Evaluate(user, now)
	if s.attemptRepo == nil {
		return nil, errors.New("AttemptRepository not initialized in UserService")
	}
	used, err := countAttemptsUsed(ctx, s.attemptRepo, userID, user, ent)
	if err != nil {
		return nil, err
	}

	summary := &EntitlementSummary{
		HasActivePlan:         ent.Active,
		ExamAttemptsUsed:      used,
		ExamAttemptsLimit:     ent.Limit,
		ExamAttemptsRemaining: RemainingAttempts(ent.Limit, used),
	}
	if user.Plan != nil {
		summary.PlanName = user.Plan.Name
		summary.PlanLabel = user.Plan.Label
		if ent.Active {
			summary.Plan = user.Plan
		}
	}
	return summary, nil
}
