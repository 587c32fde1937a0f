package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sheetcast/sheetcast/internal/jobs"
	"github.com/sheetcast/sheetcast/internal/models"
	"github.com/sheetcast/sheetcast/internal/repository"
)

type stubCache struct {
	cache *repository.Cache
}

func (s *stubCache) Load() *repository.Cache                   { return s.cache }
func (s *stubCache) Save(posts []*models.PostRow) error        { return nil }
func (s *stubCache) ShouldFetch(lastFetch, now time.Time) bool { return false }

func newTestApp(history *jobs.RunHistory, cache repository.CacheRepository) *fiber.App {
	app := fiber.New()
	h := NewStatusHandler(history, cache)
	app.Get("/healthz", h.Health)
	app.Get("/api/runs", h.ListRuns)
	app.Get("/api/pending", h.ListPending)
	return app
}

func TestHealth(t *testing.T) {
	app := newTestApp(jobs.NewRunHistory(), &stubCache{cache: &repository.Cache{}})

	resp, err := app.Test(httptest.NewRequest("GET", "/healthz", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestListRuns(t *testing.T) {
	history := jobs.NewRunHistory()
	history.Record(jobs.RunSummary{Due: 2, Published: 1, Failed: 1})
	history.Record(jobs.RunSummary{Due: 1, Published: 1})
	app := newTestApp(history, &stubCache{cache: &repository.Cache{}})

	resp, err := app.Test(httptest.NewRequest("GET", "/api/runs", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var runs []jobs.RunSummary
	require.NoError(t, json.Unmarshal(body, &runs))
	require.Len(t, runs, 2)
	assert.Equal(t, 1, runs[0].Due, "most recent run first")
}

func TestListPending(t *testing.T) {
	cache := &stubCache{cache: &repository.Cache{
		LastFetch:    time.Date(2026, 8, 29, 8, 0, 0, 0, time.UTC),
		PendingPosts: []*models.PostRow{{RowNumber: 2, Text: "hello"}},
	}}
	app := newTestApp(jobs.NewRunHistory(), cache)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/pending", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload struct {
		PendingPosts []*models.PostRow `json:"pending_posts"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.PendingPosts, 1)
	assert.Equal(t, 2, payload.PendingPosts[0].RowNumber)
}
