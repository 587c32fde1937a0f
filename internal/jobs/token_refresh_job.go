package jobs

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sheetcast/sheetcast/internal/repository"
	"github.com/sheetcast/sheetcast/internal/service"
)

// TokenRefreshJob keeps the stored long-lived tokens alive. Platforms
// without stored credentials are skipped; a refresh failure on one platform
// never blocks the other.
type TokenRefreshJob struct {
	ig service.InstagramService
	th service.ThreadsService
}

func NewTokenRefreshJob(ig service.InstagramService, th service.ThreadsService) *TokenRefreshJob {
	return &TokenRefreshJob{ig: ig, th: th}
}

func (j *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	if err := j.ig.RefreshToken(ctx); err != nil {
		if errors.Is(err, repository.ErrNoToken) {
			slog.Info("no instagram token stored, skipping refresh")
		} else {
			slog.Error("unable to refresh instagram token", "error", err)
		}
	}

	if err := j.th.RefreshToken(ctx); err != nil {
		if errors.Is(err, repository.ErrNoToken) {
			slog.Info("no threads token stored, skipping refresh")
		} else {
			slog.Error("unable to refresh threads token", "error", err)
		}
	}
}
