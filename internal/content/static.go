// Package content bundles read-mostly reference data with the binary. It is
// the fallback source for exams and traffic signs when Firestore is
// unreachable, so practice content keeps working through a database outage.
package content

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	_ "embed"

	"theorie-backend-go/internal/db"
	"theorie-backend-go/internal/models"
)

//go:embed data/exams.json
var examsJSON []byte

//go:embed data/signs.json
var signsJSON []byte

// StaticStore serves the embedded datasets. It implements db.ExamRepository
// and db.SignRepository so callers can swap it in behind the same interfaces.
type StaticStore struct {
	once  sync.Once
	err   error
	exams []*models.Exam
	signs []*models.TrafficSign
}

// NewStaticStore returns a store over the embedded JSON. Decoding is lazy and
// happens once on first use.
func NewStaticStore() *StaticStore {
	return &StaticStore{}
}

func (s *StaticStore) load() error {
	s.once.Do(func() {
		if err := json.Unmarshal(examsJSON, &s.exams); err != nil {
			s.err = fmt.Errorf("failed to decode embedded exams: %w", err)
			return
		}
		if err := json.Unmarshal(signsJSON, &s.signs); err != nil {
			s.err = fmt.Errorf("failed to decode embedded traffic signs: %w", err)
			return
		}
	})
	return s.err
}

// List returns the embedded exams.
func (s *StaticStore) List(ctx context.Context) ([]*models.Exam, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	return s.exams, nil
}

// GetBySlug returns the embedded exam with the given slug.
func (s *StaticStore) GetBySlug(ctx context.Context, slug string) (*models.Exam, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	for _, exam := range s.exams {
		if exam.Slug == slug {
			return exam, nil
		}
	}
	return nil, fmt.Errorf("exam with slug '%s' not found in embedded content: %w", slug, db.ErrNotFound)
}

// Signs returns the embedded traffic signs.
func (s *StaticStore) Signs(ctx context.Context) ([]*models.TrafficSign, error) {
	if err := s.load(); err != nil {
		return nil, err
	}
	return s.signs, nil
}

// signView adapts StaticStore to db.SignRepository.
type signView struct{ store *StaticStore }

// SignRepository returns the store viewed as a db.SignRepository.
func (s *StaticStore) SignRepository() db.SignRepository {
	return signView{store: s}
}

func (v signView) List(ctx context.Context) ([]*models.TrafficSign, error) {
	return v.store.Signs(ctx)
}
