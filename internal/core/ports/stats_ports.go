package ports

import (
	"context"

	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
)

type StatsCache interface {
	Get(ctx context.Context, pollID int64) (*domain.Stats, error)
	Set(ctx context.Context, pollID int64, stats domain.Stats) error
	Invalidate(ctx context.Context, pollID int64) error
}

type StatsAggregator interface {
	Aggregate(ctx context.Context, pollID int64) (domain.Stats, error)
}

type PollResultRepository interface {
	SaveSnapshot(ctx context.Context, snapshot domain.StatsSnapshot) error
}

type SnapshotService interface {
	SnapshotAll(ctx context.Context) error
}
