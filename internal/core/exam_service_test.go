package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"theorie-backend-go/internal/models"
)

func testExams() []*models.Exam {
	return []*models.Exam{
		{
			Slug:    "oefenexamen-1",
			Title:   "Oefenexamen 1",
			Premium: false,
			Questions: []models.Question{
				{ID: "q1", Text: "Vraag 1", Options: []string{"a", "b"}, CorrectOption: 0, Explanation: "omdat"},
				{ID: "q2", Text: "Vraag 2", Options: []string{"a", "b"}, CorrectOption: 1, Explanation: "daarom"},
			},
		},
		{
			Slug:    "oefenexamen-2",
			Title:   "Oefenexamen 2",
			Premium: true,
			Questions: []models.Question{
				{ID: "q3", Text: "Vraag 3", Options: []string{"a", "b"}, CorrectOption: 1},
				{ID: "q4", Text: "Vraag 4", Options: []string{"a", "b"}, CorrectOption: 0},
			},
		},
	}
}

func activePremiumUser(id string) *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID: id,
		Plan: &models.Plan{
			Name:      "plan_premium",
			StartedAt: now.Add(-24 * time.Hour),
			ExpiresAt: now.Add(10 * 24 * time.Hour),
		},
	}
}

func TestGetExamOmitsQuestions(t *testing.T) {
	t.Parallel()

	svc := NewExamService(&fakeExamRepo{exams: testExams()}, nil, &fakeAttemptRepo{}, newFakeUserRepo())

	exam, err := svc.GetExam(context.Background(), "oefenexamen-2")
	require.NoError(t, err)
	require.Equal(t, "Oefenexamen 2", exam.Title)
	require.True(t, exam.Premium)
	require.Empty(t, exam.Questions)

	_, err = svc.GetExam(context.Background(), "bestaat-niet")
	require.ErrorIs(t, err, ErrExamNotFound)
}

func TestStartExamDeniesAnonymous(t *testing.T) {
	t.Parallel()

	svc := NewExamService(&fakeExamRepo{exams: testExams()}, nil, &fakeAttemptRepo{}, newFakeUserRepo())
	_, err := svc.StartExam(context.Background(), "", "oefenexamen-1")
	require.ErrorIs(t, err, ErrAuthRequired)
}

func TestStartExamConsumesAttemptBeforeQuestions(t *testing.T) {
	t.Parallel()

	attempts := &fakeAttemptRepo{}
	svc := NewExamService(&fakeExamRepo{exams: testExams()}, nil, attempts, newFakeUserRepo(activePremiumUser("u1")))

	started, err := svc.StartExam(context.Background(), "u1", "oefenexamen-1")
	require.NoError(t, err)
	require.Equal(t, models.AttemptStatusStarted, started.Attempt.Status)
	require.Equal(t, 2, started.Attempt.TotalQuestions)

	// The record exists even though nothing was submitted.
	used, err := attempts.CountAll(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 1, used)

	// Answers stay on the server.
	for _, q := range started.Questions {
		require.Equal(t, -1, q.CorrectOption)
		require.Empty(t, q.Explanation)
	}
}

func TestStartExamPremiumRequiresActivePlan(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo(&models.User{ID: "free"})
	svc := NewExamService(&fakeExamRepo{exams: testExams()}, nil, &fakeAttemptRepo{}, users)

	_, err := svc.StartExam(context.Background(), "free", "oefenexamen-2")
	require.ErrorIs(t, err, ErrPlanRequired)

	// The free exam is still reachable within the trial budget.
	_, err = svc.StartExam(context.Background(), "free", "oefenexamen-1")
	require.NoError(t, err)
}

func TestStartExamFreeUserLimitOfOne(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo(&models.User{ID: "free"})
	attempts := &fakeAttemptRepo{}
	svc := NewExamService(&fakeExamRepo{exams: testExams()}, nil, attempts, users)

	_, err := svc.StartExam(context.Background(), "free", "oefenexamen-1")
	require.NoError(t, err)

	_, err = svc.StartExam(context.Background(), "free", "oefenexamen-1")
	require.ErrorIs(t, err, ErrAttemptLimitReached)
}

func TestStartExamBundleCreditsExtendFreeLimit(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo(&models.User{ID: "free", ExamCredits: 2})
	svc := NewExamService(&fakeExamRepo{exams: testExams()}, nil, &fakeAttemptRepo{}, users)

	for i := 0; i < 3; i++ { // 1 trial + 2 credits
		_, err := svc.StartExam(context.Background(), "free", "oefenexamen-1")
		require.NoError(t, err)
	}
	_, err := svc.StartExam(context.Background(), "free", "oefenexamen-1")
	require.ErrorIs(t, err, ErrAttemptLimitReached)
}

func TestStartExamOldAttemptsOutsidePlanWindow(t *testing.T) {
	t.Parallel()

	user := activePremiumUser("u1")
	attempts := &fakeAttemptRepo{}
	// An attempt recorded under an earlier, expired plan.
	_, err := attempts.Create(context.Background(), &models.ExamAttempt{
		UserID:    "u1",
		ExamSlug:  "oefenexamen-1",
		CreatedAt: time.Now().UTC().Add(-60 * 24 * time.Hour),
	})
	require.NoError(t, err)

	svc := NewExamService(&fakeExamRepo{exams: testExams()}, nil, attempts, newFakeUserRepo(user))
	started, err := svc.StartExam(context.Background(), "u1", "oefenexamen-2")
	require.NoError(t, err)
	require.NotNil(t, started.Attempt)
}

func TestStartExamExpiredPlanAttemptsDoNotConsumeFreeTrial(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	user := &models.User{
		ID: "u1",
		Plan: &models.Plan{
			Name:      "plan_basic",
			StartedAt: now.Add(-40 * 24 * time.Hour),
			ExpiresAt: now.Add(-9 * 24 * time.Hour),
		},
	}
	attempts := &fakeAttemptRepo{}
	// Two attempts taken while the old plan was active.
	for _, age := range []time.Duration{30 * 24 * time.Hour, 20 * 24 * time.Hour} {
		_, err := attempts.Create(context.Background(), &models.ExamAttempt{UserID: "u1", CreatedAt: now.Add(-age)})
		require.NoError(t, err)
	}

	svc := NewExamService(&fakeExamRepo{exams: testExams()}, nil, attempts, newFakeUserRepo(user))

	// Those covered attempts leave the single free attempt untouched.
	_, err := svc.StartExam(context.Background(), "u1", "oefenexamen-1")
	require.NoError(t, err)

	// The free attempt itself is now spent.
	_, err = svc.StartExam(context.Background(), "u1", "oefenexamen-1")
	require.ErrorIs(t, err, ErrAttemptLimitReached)
}

func TestStartExamFallsBackToEmbeddedContent(t *testing.T) {
	t.Parallel()

	primary := &fakeExamRepo{err: errors.New("firestore unavailable")}
	fallback := &fakeExamRepo{exams: testExams()}
	svc := NewExamService(primary, fallback, &fakeAttemptRepo{}, newFakeUserRepo(activePremiumUser("u1")))

	started, err := svc.StartExam(context.Background(), "u1", "oefenexamen-1")
	require.NoError(t, err)
	require.Len(t, started.Questions, 2)
}

func TestStartExamUnknownSlug(t *testing.T) {
	t.Parallel()

	svc := NewExamService(&fakeExamRepo{exams: testExams()}, nil, &fakeAttemptRepo{}, newFakeUserRepo(activePremiumUser("u1")))
	_, err := svc.StartExam(context.Background(), "u1", "bestaat-niet")
	require.ErrorIs(t, err, ErrExamNotFound)
}

func TestGenerateExamRecordsAttemptUpFront(t *testing.T) {
	t.Parallel()

	attempts := &fakeAttemptRepo{}
	svc := NewExamService(&fakeExamRepo{exams: testExams()}, nil, attempts, newFakeUserRepo(activePremiumUser("u1")))

	started, err := svc.GenerateExam(context.Background(), "u1", models.GenerateExamRequest{QuestionCount: 3})
	require.NoError(t, err)
	require.True(t, started.Attempt.Generated)
	require.Contains(t, started.Attempt.ExamSlug, "gen-")
	require.Len(t, started.Questions, 3)

	used, err := attempts.CountAll(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, 1, used)
}

func TestGenerateExamClampsToPoolSize(t *testing.T) {
	t.Parallel()

	svc := NewExamService(&fakeExamRepo{exams: testExams()}, nil, &fakeAttemptRepo{}, newFakeUserRepo(activePremiumUser("u1")))
	started, err := svc.GenerateExam(context.Background(), "u1", models.GenerateExamRequest{QuestionCount: 1000})
	require.NoError(t, err)
	require.Len(t, started.Questions, 4) // whole pool
}

func TestSubmitExamScoresAndCompletes(t *testing.T) {
	t.Parallel()

	attempts := &fakeAttemptRepo{}
	svc := NewExamService(&fakeExamRepo{exams: testExams()}, nil, attempts, newFakeUserRepo(activePremiumUser("u1")))

	started, err := svc.StartExam(context.Background(), "u1", "oefenexamen-1")
	require.NoError(t, err)

	result, err := svc.SubmitExam(context.Background(), "u1", started.Attempt.ID, models.SubmitExamRequest{
		Answers:         map[string]int{"q1": 0, "q2": 1}, // both correct
		DurationSeconds: 420,
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Attempt.Score)
	require.True(t, result.Attempt.Passed)
	require.Equal(t, models.AttemptStatusCompleted, result.Attempt.Status)
	require.NotNil(t, result.Attempt.CompletedAt)
	require.Equal(t, 420, result.Attempt.DurationSeconds)

	// Result questions carry the answers for review.
	require.Equal(t, 0, result.Questions[0].CorrectOption)
}

func TestSubmitExamFailAtOneWrong(t *testing.T) {
	t.Parallel()

	svc := NewExamService(&fakeExamRepo{exams: testExams()}, nil, &fakeAttemptRepo{}, newFakeUserRepo(activePremiumUser("u1")))
	started, err := svc.StartExam(context.Background(), "u1", "oefenexamen-1")
	require.NoError(t, err)

	// 1 of 2 is under the pass mark.
	result, err := svc.SubmitExam(context.Background(), "u1", started.Attempt.ID, models.SubmitExamRequest{
		Answers: map[string]int{"q1": 0, "q2": 0},
	})
	require.NoError(t, err)
	require.Equal(t, 1, result.Attempt.Score)
	require.False(t, result.Attempt.Passed)
}

func TestSubmitExamOnlyOwnerOnlyOnce(t *testing.T) {
	t.Parallel()

	svc := NewExamService(&fakeExamRepo{exams: testExams()}, nil, &fakeAttemptRepo{}, newFakeUserRepo(activePremiumUser("u1"), activePremiumUser("u2")))
	started, err := svc.StartExam(context.Background(), "u1", "oefenexamen-1")
	require.NoError(t, err)

	_, err = svc.SubmitExam(context.Background(), "u2", started.Attempt.ID, models.SubmitExamRequest{Answers: map[string]int{}})
	require.ErrorIs(t, err, ErrAttemptForbidden)

	_, err = svc.SubmitExam(context.Background(), "u1", started.Attempt.ID, models.SubmitExamRequest{Answers: map[string]int{}})
	require.NoError(t, err)

	_, err = svc.SubmitExam(context.Background(), "u1", started.Attempt.ID, models.SubmitExamRequest{Answers: map[string]int{}})
	require.ErrorIs(t, err, ErrAttemptCompleted)
}

func TestSubmitExamGeneratedAttemptScoredAcrossPool(t *testing.T) {
	t.Parallel()

	svc := NewExamService(&fakeExamRepo{exams: testExams()}, nil, &fakeAttemptRepo{}, newFakeUserRepo(activePremiumUser("u1")))
	started, err := svc.GenerateExam(context.Background(), "u1", models.GenerateExamRequest{QuestionCount: 4})
	require.NoError(t, err)

	result, err := svc.SubmitExam(context.Background(), "u1", started.Attempt.ID, models.SubmitExamRequest{
		Answers: map[string]int{"q1": 0, "q2": 1, "q3": 1, "q4": 0}, // all correct
	})
	require.NoError(t, err)
	require.Equal(t, 4, result.Attempt.Score)
	require.True(t, result.Attempt.Passed)
}

func TestSubmitExamGeneratedIgnoresUnservedAnswers(t *testing.T) {
	t.Parallel()

	svc := NewExamService(&fakeExamRepo{exams: testExams()}, nil, &fakeAttemptRepo{}, newFakeUserRepo(activePremiumUser("u1")))
	started, err := svc.GenerateExam(context.Background(), "u1", models.GenerateExamRequest{QuestionCount: 2})
	require.NoError(t, err)
	require.Len(t, started.Questions, 2)
	require.Len(t, started.Attempt.QuestionIDs, 2)

	// Submit correct answers for every question in the pool, served or not.
	result, err := svc.SubmitExam(context.Background(), "u1", started.Attempt.ID, models.SubmitExamRequest{
		Answers: map[string]int{"q1": 0, "q2": 1, "q3": 1, "q4": 0},
	})
	require.NoError(t, err)
	require.Equal(t, 2, result.Attempt.TotalQuestions)
	require.Equal(t, 2, result.Attempt.Score) // only the two served questions scored
	require.Len(t, result.Questions, 2)

	served := make(map[string]bool)
	for _, id := range started.Attempt.QuestionIDs {
		served[id] = true
	}
	for _, q := range result.Questions {
		require.True(t, served[q.ID])
	}
}

func TestAttemptHistoryNewestFirst(t *testing.T) {
	t.Parallel()

	svc := NewExamService(&fakeExamRepo{exams: testExams()}, nil, &fakeAttemptRepo{}, newFakeUserRepo(activePremiumUser("u1")))
	for i := 0; i < 3; i++ {
		_, err := svc.StartExam(context.Background(), "u1", "oefenexamen-1")
		require.NoError(t, err)
	}

	history, err := svc.AttemptHistory(context.Background(), "u1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, "attempt-3", history[0].ID)
}
