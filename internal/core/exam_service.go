package core

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"theorie-backend-go/internal/db"
	"theorie-backend-go/internal/models"
)

// Custom errors for the ExamService. The handlers map these to specific,
// user-facing denial reasons.
var (
	ErrAuthRequired        = errors.New("authentication required")
	ErrPlanRequired        = errors.New("an active plan is required for this exam")
	ErrAttemptLimitReached = errors.New("exam attempt limit reached")
	ErrExamNotFound        = errors.New("exam not found")
	ErrAttemptNotFound     = errors.New("exam attempt not found")
	ErrAttemptForbidden    = errors.New("exam attempt belongs to another user")
	ErrAttemptCompleted    = errors.New("exam attempt was already submitted")
	ErrEmptyQuestionPool   = errors.New("no questions available to generate an exam")
)

const (
	// generatedExamSize is the default question count for randomly
	// assembled exams.
	generatedExamSize = 25
	// passFraction mirrors the real exam's pass mark (44 of 50).
	passFraction = 0.88
)

// examService implements the ExamService interface. Reads go to Firestore
// first and fall back to the embedded content when the database is
// unavailable; attempt writes never fall back.
type examService struct {
	examRepo    db.ExamRepository
	fallback    db.ExamRepository
	attemptRepo db.AttemptRepository
	userRepo    db.UserRepository
}

// NewExamService creates a new ExamService instance. fallback may be nil to
// disable the static content fallback (used in tests).
func NewExamService(
	er db.ExamRepository,
	fallback db.ExamRepository,
	ar db.AttemptRepository,
	ur db.UserRepository,
) ExamService {
	return &examService{
		examRepo:    er,
		fallback:    fallback,
		attemptRepo: ar,
		userRepo:    ur,
	}
}

// ListExams returns all exams with their question bodies stripped. Read path,
// so a database failure degrades to the embedded content.
func (s *examService) ListExams(ctx context.Context) ([]*models.Exam, error) {
	exams, err := s.examRepo.List(ctx)
	if err != nil {
		if s.fallback == nil {
			return nil, fmt.Errorf("failed to list exams: %w", err)
		}
		log.Printf("ListExams: database unavailable, serving embedded content: %v", err)
		exams, err = s.fallback.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list exams from embedded content: %w", err)
		}
	}

	listed := make([]*models.Exam, 0, len(exams))
	for _, exam := range exams {
		listed = append(listed, &models.Exam{
			Slug:     exam.Slug,
			Title:    exam.Title,
			Category: exam.Category,
			Premium:  exam.Premium,
		})
	}
	return listed, nil
}

// GetExam returns one exam's metadata. Questions stay out of the response;
// they are only handed out when an attempt is started.
func (s *examService) GetExam(ctx context.Context, slug string) (*models.Exam, error) {
	exam, err := s.getExam(ctx, slug)
	if err != nil {
		return nil, err
	}
	return &models.Exam{
		Slug:     exam.Slug,
		Title:    exam.Title,
		Category: exam.Category,
		Premium:  exam.Premium,
	}, nil
}

func (s *examService) getExam(ctx context.Context, slug string) (*models.Exam, error) {
	exam, err := s.examRepo.GetBySlug(ctx, slug)
	if err == nil {
		return exam, nil
	}
	if errors.Is(err, db.ErrNotFound) || s.fallback == nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrExamNotFound, slug)
		}
		return nil, fmt.Errorf("failed to get exam '%s': %w", slug, err)
	}
	log.Printf("getExam: database unavailable, serving embedded content for '%s': %v", slug, err)
	exam, err = s.fallback.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrExamNotFound, slug)
		}
		return nil, fmt.Errorf("failed to get exam '%s' from embedded content: %w", slug, err)
	}
	return exam, nil
}

// gate runs the access-gate check for an exam start: resolve the user,
// evaluate the entitlement, count attempts in the applicable window and deny
// when the budget is exhausted.
func (s *examService) gate(ctx context.Context, userID string) (Entitlement, error) {
	if userID == "" {
		return Entitlement{}, ErrAuthRequired
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return Entitlement{}, fmt.Errorf("%w: user '%s'", ErrUserNotFound, userID)
		}
		return Entitlement{}, fmt.Errorf("failed to load user '%s' for exam gate: %w", userID, err)
	}

	ent := Evaluate(user, time.Now().UTC())

	used, err := countAttemptsUsed(ctx, s.attemptRepo, userID, user, ent)
	if err != nil {
		return Entitlement{}, err
	}

	if used >= ent.Limit {
		return ent, fmt.Errorf("%w: %d of %d attempts used", ErrAttemptLimitReached, used, ent.Limit)
	}
	return ent, nil
}

// StartExam consumes an attempt slot and hands out the questions of a fixed
// exam. The attempt record is written before the questions are returned, so a
// client that abandons the exam still used a slot.
func (s *examService) StartExam(ctx context.Context, userID, slug string) (*StartedExam, error) {
	ent, err := s.gate(ctx, userID)
	if err != nil {
		return nil, err
	}

	exam, err := s.getExam(ctx, slug)
	if err != nil {
		return nil, err
	}
	if exam.Premium && !ent.Active {
		return nil, fmt.Errorf("%w: exam '%s' is premium content", ErrPlanRequired, slug)
	}

	attempt := &models.ExamAttempt{
		UserID:         userID,
		ExamSlug:       exam.Slug,
		Status:         models.AttemptStatusStarted,
		TotalQuestions: len(exam.Questions),
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to record attempt for exam '%s': %w", slug, err)
	}

	return &StartedExam{
		Attempt:   attempt,
		Title:     exam.Title,
		Questions: stripAnswers(exam.Questions),
	}, nil
}

// GenerateExam assembles a random exam from the full question pool under the
// same gate as a fixed exam start.
func (s *examService) GenerateExam(ctx context.Context, userID string, req models.GenerateExamRequest) (*StartedExam, error) {
	if _, err := s.gate(ctx, userID); err != nil {
		return nil, err
	}

	exams, err := s.examRepo.List(ctx)
	if err != nil {
		if s.fallback == nil {
			return nil, fmt.Errorf("failed to load question pool: %w", err)
		}
		log.Printf("GenerateExam: database unavailable, using embedded question pool: %v", err)
		exams, err = s.fallback.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load embedded question pool: %w", err)
		}
	}

	var pool []models.Question
	for _, exam := range exams {
		if req.Category != "" && exam.Category != req.Category {
			continue
		}
		pool = append(pool, exam.Questions...)
	}
	if len(pool) == 0 {
		return nil, ErrEmptyQuestionPool
	}

	count := req.QuestionCount
	if count <= 0 {
		count = generatedExamSize
	}
	if count > len(pool) {
		count = len(pool)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	questions := pool[:count]

	// The served question IDs are stored on the attempt; scoring later
	// resolves exactly this set, nothing else.
	questionIDs := make([]string, len(questions))
	for i, q := range questions {
		questionIDs[i] = q.ID
	}

	attempt := &models.ExamAttempt{
		UserID:         userID,
		ExamSlug:       "gen-" + uuid.NewString(),
		Generated:      true,
		QuestionIDs:    questionIDs,
		Status:         models.AttemptStatusStarted,
		TotalQuestions: count,
		CreatedAt:      time.Now().UTC(),
	}
	if _, err := s.attemptRepo.Create(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to record generated exam attempt: %w", err)
	}

	return &StartedExam{
		Attempt:   attempt,
		Title:     "Oefenexamen op maat",
		Questions: stripAnswers(questions),
	}, nil
}

// SubmitExam scores an open attempt and completes it. Only the owner may
// submit, and only once.
func (s *examService) SubmitExam(ctx context.Context, userID, attemptID string, req models.SubmitExamRequest) (*ExamResult, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}

	attempt, err := s.attemptRepo.GetByID(ctx, attemptID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: '%s'", ErrAttemptNotFound, attemptID)
		}
		return nil, fmt.Errorf("failed to load attempt '%s': %w", attemptID, err)
	}
	if attempt.UserID != userID {
		return nil, ErrAttemptForbidden
	}
	if attempt.Status == models.AttemptStatusCompleted {
		return nil, ErrAttemptCompleted
	}

	questions, err := s.questionsForAttempt(ctx, attempt)
	if err != nil {
		return nil, err
	}

	score := 0
	for _, q := range questions {
		if chosen, ok := req.Answers[q.ID]; ok && chosen == q.CorrectOption {
			score++
		}
	}

	total := attempt.TotalQuestions
	if total == 0 {
		total = len(questions)
	}

	now := time.Now().UTC()
	attempt.Score = score
	attempt.TotalQuestions = total
	attempt.Passed = total > 0 && float64(score) >= passFraction*float64(total)
	attempt.DurationSeconds = req.DurationSeconds
	attempt.Status = models.AttemptStatusCompleted
	attempt.CompletedAt = &now

	if err := s.attemptRepo.Complete(ctx, attempt); err != nil {
		return nil, fmt.Errorf("failed to complete attempt '%s': %w", attemptID, err)
	}

	return &ExamResult{Attempt: attempt, Questions: questions}, nil
}

// questionsForAttempt resolves the questions the attempt was taken over. For
// a fixed exam that is its question list; for a generated exam the question
// IDs recorded at start are looked up across the pool. The client's answer
// map plays no part in the resolution, so answering unserved questions
// cannot inflate the score.
func (s *examService) questionsForAttempt(ctx context.Context, attempt *models.ExamAttempt) ([]models.Question, error) {
	if !attempt.Generated {
		exam, err := s.getExam(ctx, attempt.ExamSlug)
		if err != nil {
			return nil, err
		}
		return exam.Questions, nil
	}

	exams, err := s.examRepo.List(ctx)
	if err != nil {
		if s.fallback == nil {
			return nil, fmt.Errorf("failed to load question pool for scoring: %w", err)
		}
		exams, err = s.fallback.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load embedded question pool for scoring: %w", err)
		}
	}

	served := make(map[string]bool, len(attempt.QuestionIDs))
	for _, id := range attempt.QuestionIDs {
		served[id] = true
	}

	var questions []models.Question
	for _, exam := range exams {
		for _, q := range exam.Questions {
			if served[q.ID] {
				questions = append(questions, q)
			}
		}
	}
	return questions, nil
}

// AttemptHistory returns the user's attempts, newest first.
func (s *examService) AttemptHistory(ctx context.Context, userID string, limit int) ([]*models.ExamAttempt, error) {
	if userID == "" {
		return nil, ErrAuthRequired
	}
	attempts, err := s.attemptRepo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list attempts for user '%s': %w", userID, err)
	}
	return attempts, nil
}

// stripAnswers copies questions with the correct option and explanation
// removed, for handing to a client mid-exam.
func stripAnswers(questions []models.Question) []models.Question {
	stripped := make([]models.Question, len(questions))
	for i, q := range questions {
		q.CorrectOption = -1
		q.Explanation = ""
		stripped[i] = q
	}
	return stripped
}
