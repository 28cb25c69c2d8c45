package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

type statsService struct {
	pollRepo ports.PollRepository
	ledger   ports.VoteLedger
	cache    ports.StatsCache
}

// NewStatsService builds the aggregator. cache may be nil, in which case every
// call recomputes from the ledger.
func NewStatsService(pollRepo ports.PollRepository, ledger ports.VoteLedger, cache ports.StatsCache) ports.StatsAggregator {
	return &statsService{
		pollRepo: pollRepo,
		ledger:   ledger,
		cache:    cache,
	}
}

func (s *statsService) Aggregate(ctx context.Context, pollID int64) (domain.Stats, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, pollID)
		if err != nil {
			slog.Warn("stats cache read failed", "poll_id", pollID, "error", err)
		} else if cached != nil {
			return *cached, nil
		}
	}

	poll, err := s.pollRepo.GetByID(ctx, pollID)
	if err != nil {
		return domain.Stats{}, err
	}

	tally, err := s.ledger.Tally(ctx, pollID)
	if err != nil {
		return domain.Stats{}, fmt.Errorf("failed to tally votes for poll %d: %w", pollID, err)
	}

	stats := domain.NewStats(poll.Choices, tally)

	if s.cache != nil {
		if err := s.cache.Set(ctx, pollID, stats); err != nil {
			slog.Warn("stats cache write failed", "poll_id", pollID, "error", err)
		}
	}
	return stats, nil
}
