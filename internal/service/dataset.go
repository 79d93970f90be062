package service

import (
	"context"
	"time"

	"aitools.app/recommender/internal/model"
)

// DatasetService is the read side of the dataset cache.
type DatasetService interface {
	Rows(ctx context.Context, force bool) ([]model.ToolRecord, error)
	Snapshot() ([]model.ToolRecord, time.Time, bool)
}
