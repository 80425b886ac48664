package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"theorie-backend-go/internal/models"
)

func TestHasActivePlan(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()

	tests := []struct {
		name string
		plan *models.Plan
		want bool
	}{
		{name: "nil plan", plan: nil, want: false},
		{name: "no expiry", plan: &models.Plan{Name: "plan_basic"}, want: false},
		{
			name: "expired yesterday",
			plan: &models.Plan{Name: "plan_basic", ExpiresAt: now.Add(-24 * time.Hour)},
			want: false,
		},
		{
			name: "expires exactly now",
			plan: &models.Plan{Name: "plan_basic", ExpiresAt: now},
			want: false, // strictly later than the evaluation instant
		},
		{
			name: "expires in the future",
			plan: &models.Plan{Name: "plan_basic", ExpiresAt: now.Add(10 * 24 * time.Hour)},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, HasActivePlan(tt.plan, now))
		})
	}
}

func TestExamLimit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		planName string
		hasPlan  bool
		credits  int
		want     int
	}{
		{name: "no plan no credits", planName: "", hasPlan: false, credits: 0, want: 1},
		{name: "no plan ignores plan name", planName: "plan_premium", hasPlan: false, credits: 0, want: 1},
		{name: "no plan with bundle credits", planName: "", hasPlan: false, credits: 10, want: 11},
		{name: "no plan negative credits clamp", planName: "", hasPlan: false, credits: -3, want: 1},
		{name: "basic tier", planName: "plan_basic", hasPlan: true, credits: 0, want: 100},
		{name: "advanced tier", planName: "plan_advanced", hasPlan: true, credits: 0, want: 200},
		{name: "premium tier", planName: "plan_premium", hasPlan: true, credits: 0, want: 500},
		{name: "unknown tier defaults", planName: "plan_mystery", hasPlan: true, credits: 0, want: 100},
		{name: "active plan ignores credits", planName: "plan_basic", hasPlan: true, credits: 42, want: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, ExamLimit(tt.planName, tt.hasPlan, tt.credits))
		})
	}
}

func TestRemainingAttempts(t *testing.T) {
	t.Parallel()

	require.Equal(t, 497, RemainingAttempts(500, 3))
	require.Equal(t, 0, RemainingAttempts(1, 1))
	require.Equal(t, 0, RemainingAttempts(1, 5)) // never negative
	require.Equal(t, 1, RemainingAttempts(1, 0))
}

func TestEvaluateExpiredPlan(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	user := &models.User{
		ID: "u1",
		Plan: &models.Plan{
			Name:      "plan_premium",
			StartedAt: now.Add(-32 * 24 * time.Hour),
			ExpiresAt: now.Add(-2 * 24 * time.Hour),
		},
	}

	ent := Evaluate(user, now)
	require.False(t, ent.Active)
	require.Equal(t, 1, ent.Limit)
	// No active window: attempts recorded while the old plan was valid are
	// counted all-time against the free limit, not against a stale window.
	require.True(t, ent.WindowFrom.IsZero())
	require.True(t, ent.WindowTo.IsZero())
}

func TestEvaluateActivePremium(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	started := now.Add(-20 * 24 * time.Hour)
	expires := now.Add(10 * 24 * time.Hour)
	user := &models.User{
		ID:          "u1",
		ExamCredits: 7, // must be ignored while a plan is active
		Plan: &models.Plan{
			Name:      "plan_premium",
			StartedAt: started,
			ExpiresAt: expires,
		},
	}

	ent := Evaluate(user, now)
	require.True(t, ent.Active)
	require.Equal(t, 500, ent.Limit)
	require.Equal(t, started, ent.WindowFrom)
	require.Equal(t, expires, ent.WindowTo)
	require.Equal(t, 497, RemainingAttempts(ent.Limit, 3))
}

func TestEvaluateNilUser(t *testing.T) {
	t.Parallel()

	ent := Evaluate(nil, time.Now().UTC())
	require.False(t, ent.Active)
	require.Equal(t, 1, ent.Limit)
}
