package reviewrepo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/anishxyz/review-digest/internal/domain/review"
)

func TestMemoryRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	_, ok, err := repo.Find(ctx, "B01ABCDE23")
	require.NoError(t, err)
	require.False(t, ok)

	snapshot := review.Snapshot{
		ProductID:   "B01ABCDE23",
		PageURL:     "https://www.amazon.com/product-reviews/B01ABCDE23",
		Reviews:     []string{"one", "two"},
		ExtractedAt: time.Now().UTC(),
	}
	require.NoError(t, repo.Save(ctx, snapshot, time.Hour))

	got, ok, err := repo.Find(ctx, "B01ABCDE23")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, snapshot, got)
}

func TestMemoryRepositoryExpiry(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	snapshot := review.Snapshot{ProductID: "B01ABCDE23", Reviews: []string{"one"}}
	require.NoError(t, repo.Save(ctx, snapshot, time.Nanosecond))
	time.Sleep(5 * time.Millisecond)

	_, ok, err := repo.Find(ctx, "B01ABCDE23")
	require.NoError(t, err)
	require.False(t, ok)
}
