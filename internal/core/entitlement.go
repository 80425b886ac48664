package core

import (
	"time"

	"theorie-backend-go/internal/models"
)

// Exam attempt limits per subscription tier. Unknown tier codes fall back to
// the entry-level limit rather than denying access to a paying user.
var planExamLimits = map[string]int{
	"plan_basic":    100,
	"plan_advanced": 200,
	"plan_premium":  500,
}

const (
	// defaultPlanExamLimit applies when an active plan carries an
	// unrecognized tier code.
	defaultPlanExamLimit = 100
	// freeTrialAttempts is the number of mock exams a user without an
	// active plan may take, before any purchased bundle credits.
	freeTrialAttempts = 1
)

// Entitlement is the evaluated access state for one user at one instant.
// When Active is true, attempts are counted inside [WindowFrom, WindowTo];
// otherwise attempts are counted all-time against the free limit.
type Entitlement struct {
	Active     bool
	Limit      int
	WindowFrom time.Time
	WindowTo   time.Time
}

// HasActivePlan reports whether the plan's validity window covers now.
// A nil plan or a plan without an expiry is never active.
func HasActivePlan(plan *models.Plan, now time.Time) bool {
	if plan == nil || plan.ExpiresAt.IsZero() {
		return false
	}
	return plan.ExpiresAt.After(now)
}

// ExamLimit returns the number of exam attempts the user is allowed.
// Without an active plan the limit is the single free trial attempt plus any
// purchased bundle credits. With an active plan the limit comes from the tier
// table and credits are not consulted.
func ExamLimit(planName string, hasPlan bool, credits int) int {
	if !hasPlan {
		if credits < 0 {
			credits = 0
		}
		return freeTrialAttempts + credits
	}
	if limit, ok := planExamLimits[planName]; ok {
		return limit
	}
	return defaultPlanExamLimit
}

// RemainingAttempts returns how many attempts are left, never negative.
func RemainingAttempts(limit, used int) int {
	if remaining := limit - used; remaining > 0 {
		return remaining
	}
	return 0
}

// Evaluate computes the entitlement snapshot for a user at the given instant.
// A nil user degrades to the anonymous no-access state: not active, one free
// attempt, all-time window.
func Evaluate(user *models.User, now time.Time) Entitlement {
	if user == nil {
		return Entitlement{Active: false, Limit: freeTrialAttempts}
	}

	active := HasActivePlan(user.Plan, now)
	planName := ""
	if user.Plan != nil {
		planName = user.Plan.Name
	}

	ent := Entitlement{
		Active: active,
		Limit:  ExamLimit(planName, active, user.ExamCredits),
	}
	if active {
		// Attempts from an earlier, expired plan fall outside this
		// window and do not count against the current limit.
		ent.WindowFrom = user.Plan.StartedAt
		ent.WindowTo = user.Plan.ExpiresAt
	}
	return ent
}
