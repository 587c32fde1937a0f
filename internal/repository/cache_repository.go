package repository

import (
	"encoding/json"
	"log/slog"
	"os"
	"time"

	"github.com/sheetcast/sheetcast/internal/models"
)

// Cache holds the locally persisted pending-post set together with the time
// of the last sheet fetch. The sheet remains the source of truth; the cache
// only throttles API fetches between scheduled fetch times and keeps failed
// rows retryable until the next fetch.
type Cache struct {
	LastFetch    time.Time         `json:"last_fetch_datetime"`
	PendingPosts []*models.PostRow `json:"pending_posts"`
}

type CacheRepository interface {
	Load() *Cache
	Save(posts []*models.PostRow) error
	ShouldFetch(lastFetch, now time.Time) bool
}

type fileCacheRepository struct {
	path     string
	schedule []string
}

func NewFileCacheRepository(path string, fetchSchedule []string) CacheRepository {
	return &fileCacheRepository{path: path, schedule: fetchSchedule}
}

// Load returns the cached state, or an empty cache when the file is missing
// or unreadable. A broken cache never fails a run; it just forces a fetch.
func (r *fileCacheRepository) Load() *Cache {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return &Cache{}
	}

	var cache Cache
	if err := json.Unmarshal(data, &cache); err != nil {
		slog.Warn("discarding unreadable post cache", "path", r.path, "error", err)
		return &Cache{}
	}
	return &cache
}

func (r *fileCacheRepository) Save(posts []*models.PostRow) error {
	cache := Cache{
		LastFetch:    time.Now(),
		PendingPosts: posts,
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return err
	}
	slog.Info("saved pending posts to cache", "count", len(posts))
	return nil
}

// ShouldFetch decides whether a fresh sheet fetch is due: always on the
// first run, when a new day has started, or when one of the scheduled fetch
// times falls between the last fetch and now.
func (r *fileCacheRepository) ShouldFetch(lastFetch, now time.Time) bool {
	if lastFetch.IsZero() {
		return true
	}

	ny, nm, nd := now.Date()
	ly, lm, ld := lastFetch.Date()
	if ny != ly || nm != lm || nd != ld {
		return true
	}

	for _, at := range r.schedule {
		t, err := time.Parse("15:04", at)
		if err != nil {
			slog.Warn("skipping malformed fetch schedule entry", "entry", at)
			continue
		}
		scheduled := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
		if lastFetch.Before(scheduled) && !now.Before(scheduled) {
			return true
		}
	}
	return false
}
