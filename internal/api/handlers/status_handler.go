package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/sheetcast/sheetcast/internal/jobs"
	"github.com/sheetcast/sheetcast/internal/repository"
)

// StatusHandler exposes the read-only status surface served in serve mode:
// run summaries and the current pending set. The spreadsheet status column
// stays the primary user-visible signal; this is for quick diagnostics.
type StatusHandler struct {
	history *jobs.RunHistory
	cache   repository.CacheRepository
}

func NewStatusHandler(history *jobs.RunHistory, cache repository.CacheRepository) *StatusHandler {
	return &StatusHandler{history: history, cache: cache}
}

func (h *StatusHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *StatusHandler) ListRuns(c *fiber.Ctx) error {
	return c.JSON(h.history.List())
}

func (h *StatusHandler) ListPending(c *fiber.Ctx) error {
	cache := h.cache.Load()
	return c.JSON(fiber.Map{
		"last_fetch":    cache.LastFetch,
		"pending_posts": cache.PendingPosts,
	})
}
