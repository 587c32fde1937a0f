package service

import (
	"context"

	"github.com/sheetcast/sheetcast/internal/models"
)

// Publisher publishes one scheduled row to a single platform. Publish
// returns the resulting platform post ID; any error means the row failed
// for that platform and stays eligible for retry on a later run.
type Publisher interface {
	Platform() string
	Publish(ctx context.Context, row *models.PostRow) (string, error)
}
