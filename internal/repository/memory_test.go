package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/site-auth/internal/domain"
)

func TestMemorySessionRepository(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &domain.Session{ID: "s1", ExpiresAt: time.Now().Add(time.Hour)}))
	got, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)

	require.NoError(t, repo.Delete(ctx, "s1"))
	require.NoError(t, repo.Delete(ctx, "missing"))
	_, err = repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemorySessionRepositoryDropsExpired(t *testing.T) {
	repo := NewMemorySessionRepository()
	now := time.Now()
	repo.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &domain.Session{ID: "s1", ExpiresAt: now.Add(-time.Second)}))
	_, err := repo.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, repo.Len())
}

func TestMemoryInquiryRepositoryNewestFirst(t *testing.T) {
	repo := NewMemoryInquiryRepository()
	ctx := context.Background()
	for _, id := range []string{"1", "2", "3"} {
		require.NoError(t, repo.Create(ctx, &domain.ContactInquiry{ID: id}))
	}

	got, err := repo.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "3", got[0].ID)
}
