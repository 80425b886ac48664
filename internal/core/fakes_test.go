package core

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"theorie-backend-go/internal/db"
	"theorie-backend-go/internal/models"
	"theorie-backend-go/internal/payment"
)

// In-memory repository fakes shared by the service tests.

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
	err   error // when set, every call fails with it
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) GetByID(ctx context.Context, userID string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	user, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user '%s': %w", userID, db.ErrNotFound)
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.users[user.ID]; ok {
		return db.ErrDuplicate
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) SetPlan(ctx context.Context, userID string, plan *models.Plan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	user, ok := r.users[userID]
	if !ok {
		return db.ErrNotFound
	}
	user.Plan = plan
	return nil
}

func (r *fakeUserRepo) IncrementExamCredits(ctx context.Context, userID string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	user, ok := r.users[userID]
	if !ok {
		return db.ErrNotFound
	}
	user.ExamCredits += delta
	return nil
}

type fakeAttemptRepo struct {
	mu       sync.Mutex
	attempts []*models.ExamAttempt
	nextID   int
	err      error
}

func (r *fakeAttemptRepo) Create(ctx context.Context, attempt *models.ExamAttempt) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return "", r.err
	}
	r.nextID++
	attempt.ID = "attempt-" + strconv.Itoa(r.nextID)
	copied := *attempt
	r.attempts = append(r.attempts, &copied)
	return attempt.ID, nil
}

func (r *fakeAttemptRepo) GetByID(ctx context.Context, attemptID string) (*models.ExamAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, a := range r.attempts {
		if a.ID == attemptID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("attempt '%s': %w", attemptID, db.ErrNotFound)
}

func (r *fakeAttemptRepo) Complete(ctx context.Context, attempt *models.ExamAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	for i, a := range r.attempts {
		if a.ID == attempt.ID {
			copied := *attempt
			r.attempts[i] = &copied
			return nil
		}
	}
	return db.ErrNotFound
}

func (r *fakeAttemptRepo) CountInWindow(ctx context.Context, userID string, from, to time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	count := 0
	for _, a := range r.attempts {
		if a.UserID == userID && !a.CreatedAt.Before(from) && !a.CreatedAt.After(to) {
			count++
		}
	}
	return count, nil
}

func (r *fakeAttemptRepo) CountAll(ctx context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	count := 0
	for _, a := range r.attempts {
		if a.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *fakeAttemptRepo) ListByUser(ctx context.Context, userID string, limit int) ([]*models.ExamAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []*models.ExamAttempt
	for i := len(r.attempts) - 1; i >= 0; i-- {
		if r.attempts[i].UserID == userID {
			copied := *r.attempts[i]
			out = append(out, &copied)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

type fakeExamRepo struct {
	exams []*models.Exam
	err   error
}

func (r *fakeExamRepo) List(ctx context.Context) ([]*models.Exam, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.exams, nil
}

func (r *fakeExamRepo) GetBySlug(ctx context.Context, slug string) (*models.Exam, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, e := range r.exams {
		if e.Slug == slug {
			return e, nil
		}
	}
	return nil, fmt.Errorf("exam '%s': %w", slug, db.ErrNotFound)
}

type fakeWebhookRepo struct {
	mu      sync.Mutex
	claimed map[string]bool
	err     error
}

func newFakeWebhookRepo() *fakeWebhookRepo {
	return &fakeWebhookRepo{claimed: make(map[string]bool)}
}

func (r *fakeWebhookRepo) Claim(ctx context.Context, event *models.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if r.claimed[event.ID] {
		return db.ErrDuplicate
	}
	r.claimed[event.ID] = true
	return nil
}

func (r *fakeWebhookRepo) Release(ctx context.Context, eventID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.claimed, eventID)
	return nil
}

type fakeCheckoutCreator struct {
	lastParams payment.CheckoutParams
	session    *payment.CheckoutSession
	err        error
}

func (f *fakeCheckoutCreator) CreateCheckout(ctx context.Context, params payment.CheckoutParams) (*payment.CheckoutSession, error) {
	f.lastParams = params
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}
