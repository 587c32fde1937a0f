package repository

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetcast/sheetcast/internal/models"
)

func newTestCacheRepo(t *testing.T, schedule []string) CacheRepository {
	t.Helper()
	return NewFileCacheRepository(filepath.Join(t.TempDir(), "post_cache.json"), schedule)
}

func TestCacheSaveAndLoad(t *testing.T) {
	repo := newTestCacheRepo(t, nil)

	posts := []*models.PostRow{
		{RowNumber: 2, Text: "first", Status: models.StatusPending},
		{RowNumber: 4, Text: "second", Status: models.StatusPending},
	}
	require.NoError(t, repo.Save(posts))

	cache := repo.Load()
	require.Len(t, cache.PendingPosts, 2)
	assert.Equal(t, 2, cache.PendingPosts[0].RowNumber)
	assert.Equal(t, "second", cache.PendingPosts[1].Text)
	assert.WithinDuration(t, time.Now(), cache.LastFetch, time.Minute)
}

func TestCacheLoadMissingFile(t *testing.T) {
	repo := newTestCacheRepo(t, nil)

	cache := repo.Load()
	assert.True(t, cache.LastFetch.IsZero())
	assert.Empty(t, cache.PendingPosts)
}

func TestShouldFetch(t *testing.T) {
	repo := newTestCacheRepo(t, []string{"08:00", "13:00"})
	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.Local)

	t.Run("first run", func(t *testing.T) {
		assert.True(t, repo.ShouldFetch(time.Time{}, day.Add(9*time.Hour)))
	})

	t.Run("new day", func(t *testing.T) {
		last := day.Add(-2 * time.Hour) // previous day 22:00
		assert.True(t, repo.ShouldFetch(last, day.Add(6*time.Hour)))
	})

	t.Run("scheduled time passed since last fetch", func(t *testing.T) {
		last := day.Add(7 * time.Hour)
		now := day.Add(8*time.Hour + 5*time.Minute)
		assert.True(t, repo.ShouldFetch(last, now))
	})

	t.Run("no scheduled time between fetch and now", func(t *testing.T) {
		last := day.Add(8*time.Hour + 10*time.Minute)
		now := day.Add(9 * time.Hour)
		assert.False(t, repo.ShouldFetch(last, now))
	})

	t.Run("boundary inclusive at scheduled instant", func(t *testing.T) {
		last := day.Add(12 * time.Hour)
		now := day.Add(13 * time.Hour)
		assert.True(t, repo.ShouldFetch(last, now))
	})
}

func TestTokenRepository(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token_storage.json")
	repo := NewFileTokenRepository(path)

	_, err := repo.Get(models.PlatformInstagram)
	assert.ErrorIs(t, err, ErrNoToken)

	creds := &Credentials{
		AccessToken: "tok-123",
		ExpiryDate:  time.Now().Add(24 * time.Hour),
		AccountID:   "17841400000000000",
	}
	require.NoError(t, repo.Save(models.PlatformInstagram, creds))

	got, err := repo.Get(models.PlatformInstagram)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", got.AccessToken)
	assert.Equal(t, "17841400000000000", got.AccountID)

	_, err = repo.Get(models.PlatformThreads)
	assert.ErrorIs(t, err, ErrNoToken)

	all, err := repo.List()
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
