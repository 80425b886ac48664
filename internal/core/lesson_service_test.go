package core

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"theorie-backend-go/internal/db"
	"theorie-backend-go/internal/models"
)

type fakeLessonRepo struct {
	lessons []*models.Lesson
	err     error
}

func (r *fakeLessonRepo) List(ctx context.Context) ([]*models.Lesson, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.lessons, nil
}

func (r *fakeLessonRepo) GetBySlug(ctx context.Context, slug string) (*models.Lesson, error) {
	if r.err != nil {
		return nil, r.err
	}
	for _, l := range r.lessons {
		if l.Slug == slug {
			return l, nil
		}
	}
	return nil, fmt.Errorf("lesson '%s': %w", slug, db.ErrNotFound)
}

func testLessons() []*models.Lesson {
	return []*models.Lesson{
		{Slug: "voorrang-basis", Title: "Voorrang: de basis", Chapter: "voorrang", Order: 1, Free: true, Body: "Rechts gaat voor."},
		{Slug: "inhalen", Title: "Inhalen", Chapter: "manoeuvres", Order: 1, Free: false, Body: "Inhalen doe je links."},
	}
}

func userWithActivePlan(id string) *models.User {
	now := time.Now().UTC()
	return &models.User{
		ID: id,
		Plan: &models.Plan{
			Name:      "plan_basic",
			StartedAt: now.Add(-24 * time.Hour),
			ExpiresAt: now.Add(30 * 24 * time.Hour),
		},
	}
}

func TestListLessonsStripsLockedBodies(t *testing.T) {
	t.Parallel()

	svc := NewLessonService(&fakeLessonRepo{lessons: testLessons()}, newFakeUserRepo())

	lessons, err := svc.ListLessons(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, lessons, 2)
	require.Equal(t, "Rechts gaat voor.", lessons[0].Body)
	require.Empty(t, lessons[1].Body)
	require.Equal(t, "Inhalen", lessons[1].Title) // outline metadata survives
}

func TestListLessonsFullBodiesWithActivePlan(t *testing.T) {
	t.Parallel()

	svc := NewLessonService(&fakeLessonRepo{lessons: testLessons()}, newFakeUserRepo(userWithActivePlan("u1")))

	lessons, err := svc.ListLessons(context.Background(), "u1")
	require.NoError(t, err)
	require.Equal(t, "Inhalen doe je links.", lessons[1].Body)
}

func TestGetLessonFreeIsOpenToEveryone(t *testing.T) {
	t.Parallel()

	svc := NewLessonService(&fakeLessonRepo{lessons: testLessons()}, newFakeUserRepo())

	lesson, err := svc.GetLesson(context.Background(), "", "voorrang-basis")
	require.NoError(t, err)
	require.Equal(t, "Rechts gaat voor.", lesson.Body)
}

func TestGetLessonLockedDeniesByReason(t *testing.T) {
	t.Parallel()

	users := newFakeUserRepo(&models.User{ID: "u-zonder-plan"})
	svc := NewLessonService(&fakeLessonRepo{lessons: testLessons()}, users)

	_, err := svc.GetLesson(context.Background(), "", "inhalen")
	require.ErrorIs(t, err, ErrAuthRequired)

	_, err = svc.GetLesson(context.Background(), "u-zonder-plan", "inhalen")
	require.ErrorIs(t, err, ErrPlanRequired)
}

func TestGetLessonActivePlanUnlocks(t *testing.T) {
	t.Parallel()

	svc := NewLessonService(&fakeLessonRepo{lessons: testLessons()}, newFakeUserRepo(userWithActivePlan("u1")))

	lesson, err := svc.GetLesson(context.Background(), "u1", "inhalen")
	require.NoError(t, err)
	require.Equal(t, "Inhalen doe je links.", lesson.Body)
}

func TestGetLessonUnknownSlug(t *testing.T) {
	t.Parallel()

	svc := NewLessonService(&fakeLessonRepo{lessons: testLessons()}, newFakeUserRepo())
	_, err := svc.GetLesson(context.Background(), "", "niet-bestaand")
	require.ErrorIs(t, err, ErrLessonNotFound)
}
