package core

import (
	"context"
	"fmt"

	"theorie-backend-go/internal/db"
	"theorie-backend-go/internal/models"
)

// countAttemptsUsed counts the attempts that consume the user's current
// budget. With an active plan that is the plan window. Without one, attempts
// taken inside a previous (now expired) plan window were covered by that plan
// and do not consume the free limit, so they are subtracted from the all-time
// count.
func countAttemptsUsed(ctx context.Context, repo db.AttemptRepository, userID string, user *models.User, ent Entitlement) (int, error) {
	if ent.Active {
		used, err := repo.CountInWindow(ctx, userID, ent.WindowFrom, ent.WindowTo)
		if err != nil {
			return 0, fmt.Errorf("failed to count attempts in plan window for user '%s': %w", userID, err)
		}
		return used, nil
	}

	used, err := repo.CountAll(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to count attempts for user '%s': %w", userID, err)
	}

	if user != nil && user.Plan != nil && !user.Plan.StartedAt.IsZero() && !user.Plan.ExpiresAt.IsZero() {
		covered, err := repo.CountInWindow(ctx, userID, user.Plan.StartedAt, user.Plan.ExpiresAt)
		if err != nil {
			return 0, fmt.Errorf("failed to count attempts in expired plan window for user '%s': %w", userID, err)
		}
		used -= covered
		if used < 0 {
			used = 0
		}
	}
	return used, nil
}
