package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/zokybot/zoky-messenger-go/internal/errors"
)

func TestSearchResult_SaveAndGet(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	err := db.SaveSearchResult(ctx, &SearchResult{Topic: "football", Query: "arsenal", PosterURL: "http://x/a.png"})
	require.NoError(t, err)

	got, err := db.GetSearchResult(ctx, "football", "arsenal")
	require.NoError(t, err)
	assert.Equal(t, "http://x/a.png", got.PosterURL)
	assert.NotZero(t, got.CachedAt)

	// Same query under another topic is a separate entry.
	_, err = db.GetSearchResult(ctx, "movie", "arsenal")
	assert.True(t, errors.Is(err, domerrors.ErrNotFound))
}

func TestSearchResult_Upsert(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveSearchResult(ctx, &SearchResult{Topic: "movie", Query: "alien", PosterURL: "old"}))
	require.NoError(t, db.SaveSearchResult(ctx, &SearchResult{Topic: "movie", Query: "alien", PosterURL: "new"}))

	got, err := db.GetSearchResult(ctx, "movie", "alien")
	require.NoError(t, err)
	assert.Equal(t, "new", got.PosterURL)

	count, err := db.CountSearchResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestSearchResult_ExpiryAndCleanup(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()

	base := time.Now()
	db.now = func() time.Time { return base.Add(-2 * time.Hour) }
	require.NoError(t, db.SaveSearchResult(ctx, &SearchResult{Topic: "movie", Query: "stale", PosterURL: "s"}))

	db.now = func() time.Time { return base }
	require.NoError(t, db.SaveSearchResult(ctx, &SearchResult{Topic: "movie", Query: "fresh", PosterURL: "f"}))

	_, err := db.GetSearchResult(ctx, "movie", "stale")
	assert.ErrorIs(t, err, domerrors.ErrNotFound, "expired entry must read as a miss")

	deleted, err := db.DeleteExpiredSearchResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	count, err := db.CountSearchResults(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	_, err = db.GetSearchResult(ctx, "movie", "fresh")
	assert.NoError(t, err)
}

func TestSearchResult_ErrorsCarryOperation(t *testing.T) {
	t.Parallel()
	db := setupTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.Close())

	_, err := db.GetSearchResult(ctx, "movie", "heat")
	require.Error(t, err)
	assert.False(t, errors.Is(err, domerrors.ErrNotFound), "a closed database is not a cache miss")
	assert.Contains(t, err.Error(), "[storage:get_search]")

	err = db.SaveSearchResult(ctx, &SearchResult{Topic: "movie", Query: "heat", PosterURL: "http://x/h.jpg"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[storage:save_search]")
}
