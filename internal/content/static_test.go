package content

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"theorie-backend-go/internal/db"
)

func TestEmbeddedExamsDecode(t *testing.T) {
	t.Parallel()

	store := NewStaticStore()
	exams, err := store.List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, exams)

	for _, exam := range exams {
		require.NotEmpty(t, exam.Slug)
		require.NotEmpty(t, exam.Title)
		require.NotEmpty(t, exam.Questions)
		for _, q := range exam.Questions {
			require.NotEmpty(t, q.ID)
			require.NotEmpty(t, q.Options)
			require.GreaterOrEqual(t, q.CorrectOption, 0)
			require.Less(t, q.CorrectOption, len(q.Options))
		}
	}
}

func TestGetBySlug(t *testing.T) {
	t.Parallel()

	store := NewStaticStore()
	exam, err := store.GetBySlug(context.Background(), "auto-oefenexamen-1")
	require.NoError(t, err)
	require.Equal(t, "Auto oefenexamen 1", exam.Title)

	_, err = store.GetBySlug(context.Background(), "bestaat-niet")
	require.ErrorIs(t, err, db.ErrNotFound)
}

func TestEmbeddedSignsDecode(t *testing.T) {
	t.Parallel()

	signs, err := NewStaticStore().SignRepository().List(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, signs)

	codes := make(map[string]bool)
	for _, sign := range signs {
		require.NotEmpty(t, sign.Code)
		require.NotEmpty(t, sign.Name)
		require.False(t, codes[sign.Code], "duplicate sign code %s", sign.Code)
		codes[sign.Code] = true
	}
}
