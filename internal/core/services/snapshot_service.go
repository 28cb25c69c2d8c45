package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

type snapshotService struct {
	pollRepo       ports.PollRepository
	stats          ports.StatsAggregator
	pollResultRepo ports.PollResultRepository
}

func NewSnapshotService(pollRepo ports.PollRepository, stats ports.StatsAggregator, pollResultRepo ports.PollResultRepository) ports.SnapshotService {
	return &snapshotService{
		pollRepo:       pollRepo,
		stats:          stats,
		pollResultRepo: pollResultRepo,
	}
}

// SnapshotAll aggregates every poll concurrently and stores the results.
func (s *snapshotService) SnapshotAll(ctx context.Context) error {
	polls, err := s.pollRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch all polls: %w", err)
	}

	var wg sync.WaitGroup
	errChan := make(chan error, len(polls))

	for _, poll := range polls {
		wg.Add(1)
		go func(pollID int64) {
			defer wg.Done()
			if err := s.snapshot(ctx, pollID); err != nil {
				errChan <- fmt.Errorf("failed to snapshot poll %d: %w", pollID, err)
			}
		}(poll.ID)
	}

	wg.Wait()
	close(errChan)

	for err := range errChan {
		if err != nil {
			return err
		}
	}

	return nil
}

func (s *snapshotService) snapshot(ctx context.Context, pollID int64) error {
	stats, err := s.stats.Aggregate(ctx, pollID)
	if err != nil {
		return err
	}
	return s.pollResultRepo.SaveSnapshot(ctx, domain.StatsSnapshot{
		PollID:     pollID,
		Stats:      stats,
		ComputedAt: time.Now(),
	})
}
