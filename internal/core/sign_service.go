package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"theorie-backend-go/internal/db"
	"theorie-backend-go/internal/models"
	"theorie-backend-go/pkg/cache"
)

// ErrNoSigns is returned when no traffic signs are available at all.
var ErrNoSigns = errors.New("no traffic signs available")

const (
	signsCacheKey = "content:trafficSigns"
	signsCacheTTL = time.Hour

	defaultQuizSize = 10
	maxQuizSize     = 50
)

// signService implements the SignService interface. Traffic signs are
// read-mostly reference content: reads go through the cache, then Firestore,
// then the embedded fallback.
type signService struct {
	signRepo db.SignRepository
	fallback db.SignRepository
	cache    cache.Cache
}

// NewSignService creates a new SignService instance. fallback and c may be
// nil to disable the static fallback or the cache.
func NewSignService(sr db.SignRepository, fallback db.SignRepository, c cache.Cache) SignService {
	if c == nil {
		c = cache.Noop()
	}
	return &signService{
		signRepo: sr,
		fallback: fallback,
		cache:    c,
	}
}

// ListSigns returns all traffic signs.
func (s *signService) ListSigns(ctx context.Context) ([]*models.TrafficSign, error) {
	if cached, err := s.cache.Get(ctx, signsCacheKey); err == nil && cached != "" {
		var signs []*models.TrafficSign
		if err := json.Unmarshal([]byte(cached), &signs); err == nil {
			return signs, nil
		}
		// Corrupt cache entry, drop it and fall through to the database.
		_ = s.cache.Delete(ctx, signsCacheKey)
	}

	signs, err := s.signRepo.List(ctx)
	if err != nil {
		if s.fallback == nil {
			return nil, fmt.Errorf("failed to list traffic signs: %w", err)
		}
		log.Printf("ListSigns: database unavailable, serving embedded content: %v", err)
		signs, err = s.fallback.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list embedded traffic signs: %w", err)
		}
		return signs, nil // don't cache the fallback, let the db recover
	}

	if encoded, err := json.Marshal(signs); err == nil {
		if cacheErr := s.cache.Set(ctx, signsCacheKey, string(encoded), signsCacheTTL); cacheErr != nil {
			log.Printf("ListSigns: failed to cache traffic signs: %v", cacheErr)
		}
	}
	return signs, nil
}

// Quiz returns a random selection of signs for a recognition quiz. The count
// is clamped to a sane range and to the available pool.
func (s *signService) Quiz(ctx context.Context, count int) ([]*models.TrafficSign, error) {
	signs, err := s.ListSigns(ctx)
	if err != nil {
		return nil, err
	}
	if len(signs) == 0 {
		return nil, ErrNoSigns
	}

	if count <= 0 {
		count = defaultQuizSize
	}
	if count > maxQuizSize {
		count = maxQuizSize
	}
	if count > len(signs) {
		count = len(signs)
	}

	shuffled := make([]*models.TrafficSign, len(signs))
	copy(shuffled, signs)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

	return shuffled[:count], nil
}
