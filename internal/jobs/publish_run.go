package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/sheetcast/sheetcast/internal/models"
	"github.com/sheetcast/sheetcast/internal/repository"
	"github.com/sheetcast/sheetcast/internal/runlock"
	"github.com/sheetcast/sheetcast/internal/service"
)

// Coordinator runs the publish pipeline end to end: acquire the run lock,
// fetch or reuse the pending set, select due rows, claim them with an
// optimistic Publishing status, dispatch to the platform publishers and
// reconcile final statuses. One instance per process; overlapping scheduled
// invocations are rejected by the lock.
type Coordinator struct {
	lock       *runlock.Lock
	rows       repository.RowRepository
	cache      repository.CacheRepository
	selector   *Selector
	publishers map[string]service.Publisher
	history    *RunHistory
	now        func() time.Time
}

func NewCoordinator(
	lock *runlock.Lock,
	rows repository.RowRepository,
	cache repository.CacheRepository,
	history *RunHistory,
	publishers ...service.Publisher) *Coordinator {
	byPlatform := make(map[string]service.Publisher, len(publishers))
	for _, p := range publishers {
		byPlatform[p.Platform()] = p
	}
	return &Coordinator{
		lock:       lock,
		rows:       rows,
		cache:      cache,
		selector:   NewSelector(),
		publishers: byPlatform,
		history:    history,
		now:        time.Now,
	}
}

// Run executes one pipeline pass. It returns runlock.ErrHeld without any
// network call when another run is live.
func (c *Coordinator) Run(ctx context.Context) (RunSummary, error) {
	summary := RunSummary{StartedAt: c.now()}

	if err := c.lock.Acquire(); err != nil {
		return summary, err
	}
	defer c.lock.Release()

	pending, fetched, err := c.pendingPosts(ctx)
	if err != nil {
		return summary, err
	}
	summary.Fetched = fetched

	due := c.selector.Select(pending, c.now())
	summary.Due = len(due)
	if len(due) == 0 {
		slog.Info("no posts due", "pending", len(pending))
		return c.finish(summary, pending, fetched)
	}
	slog.Info("found due posts", "count", len(due))

	// Claim every due row before the first platform call so an overlapping
	// run started after our lock expires cannot pick them up again.
	rowNumbers := make([]int, len(due))
	for i, row := range due {
		rowNumbers[i] = row.RowNumber
	}
	if err := c.rows.UpdateStatusBatch(ctx, rowNumbers, models.StatusPublishing); err != nil {
		return summary, err
	}

	published := make(map[int]bool)
	for _, row := range due {
		outcomes, final := c.processRow(ctx, row)
		summary.Outcomes = append(summary.Outcomes, outcomes...)

		switch final {
		case models.StatusPublished:
			summary.Published++
			published[row.RowNumber] = true
		case models.StatusFailed:
			summary.Failed++
		}

		if err := c.rows.UpdateStatus(ctx, row.RowNumber, final); err != nil {
			slog.Error("failed to write final status", "row", row.RowNumber, "status", final, "error", err)
		}
	}

	// published rows leave the cache; failures stay retryable until the
	// next scheduled fetch
	remaining := make([]*models.PostRow, 0, len(pending))
	for _, row := range pending {
		if !published[row.RowNumber] {
			remaining = append(remaining, row)
		}
	}
	return c.finish(summary, remaining, true)
}

// processRow publishes one row to every platform it is flagged for. A panic
// is contained at the row boundary so one broken row cannot abort the
// batch. The returned status is Published only when every flagged platform
// succeeded; a row that should never have been claimed reverts to Pending.
func (c *Coordinator) processRow(ctx context.Context, row *models.PostRow) (outcomes []models.Outcome, final string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("row processing panicked", "row", row.RowNumber, "panic", r)
			final = models.StatusFailed
		}
	}()

	platforms := row.Platforms()
	if len(platforms) == 0 {
		slog.Warn("claimed row has no platform flags, reverting to pending", "row", row.RowNumber)
		return nil, models.StatusPending
	}

	allSucceeded := true
	for _, platform := range platforms {
		outcome := models.Outcome{RowNumber: row.RowNumber, Platform: platform}

		publisher, ok := c.publishers[platform]
		if !ok {
			outcome.Error = "no publisher registered for platform"
			slog.Error(outcome.Error, "row", row.RowNumber, "platform", platform)
			allSucceeded = false
			outcomes = append(outcomes, outcome)
			continue
		}

		postID, err := publisher.Publish(ctx, row)
		if err != nil {
			outcome.Error = err.Error()
			slog.Error("publish failed", "row", row.RowNumber, "platform", platform, "error", err)
			allSucceeded = false
		} else {
			outcome.Success = true
			outcome.PostID = postID
		}
		outcomes = append(outcomes, outcome)
	}

	if allSucceeded {
		return outcomes, models.StatusPublished
	}
	return outcomes, models.StatusFailed
}

// pendingPosts returns the working pending set: a fresh sheet fetch when
// one is due (falling back to the cache if the fetch fails), the cache
// otherwise.
func (c *Coordinator) pendingPosts(ctx context.Context) ([]*models.PostRow, bool, error) {
	cached := c.cache.Load()

	if !c.cache.ShouldFetch(cached.LastFetch, c.now()) {
		slog.Info("using cached pending posts", "count", len(cached.PendingPosts))
		return cached.PendingPosts, false, nil
	}

	all, err := c.rows.FetchAll(ctx)
	if err != nil {
		if len(cached.PendingPosts) > 0 {
			slog.Warn("sheet fetch failed, falling back to cache", "error", err)
			return cached.PendingPosts, false, nil
		}
		return nil, false, err
	}

	pending := make([]*models.PostRow, 0, len(all))
	for _, row := range all {
		if statusEligible(row.Status) {
			pending = append(pending, row)
		}
	}
	slog.Info("fetched rows from sheet", "total", len(all), "pending", len(pending))
	return pending, true, nil
}

func (c *Coordinator) finish(summary RunSummary, remaining []*models.PostRow, persistCache bool) (RunSummary, error) {
	if persistCache {
		if err := c.cache.Save(remaining); err != nil {
			slog.Error("failed to persist pending cache", "error", err)
		}
	}
	summary.FinishedAt = c.now()
	if c.history != nil {
		c.history.Record(summary)
	}
	return summary, nil
}
