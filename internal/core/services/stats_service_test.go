package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/quickpolls/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

func TestAggregate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	poll := seedPoll(t, store, multiple, anonymous)
	votes := newTestVoteService(store)

	ballots := [][]string{{"red"}, {"red", "blue"}, {"green"}, {"red"}}
	for i, b := range ballots {
		_, err := votes.Cast(ctx, ports.CastVoteInput{
			PollRef:  poll.Reference,
			Identity: domain.SyntheticIdentity("cid:" + string(rune('a'+i))),
			Choices:  codes(b...),
		})
		require.NoError(t, err)
	}

	stats, err := NewStatsService(store, store, nil).Aggregate(ctx, poll.ID)
	require.NoError(t, err)

	assert.Equal(t, []string{"Blue", "Green", "Red"}, stats.Labels)
	assert.Equal(t, []string{"blue", "green", "red"}, stats.Codes)
	assert.Equal(t, 4, stats.Votes)
	assert.Equal(t, []float64{0.25, 0.25, 0.75}, stats.Values)
}

func TestAggregateWithoutVotes(t *testing.T) {
	store := memory.New()
	poll := seedPoll(t, store)

	stats, err := NewStatsService(store, store, nil).Aggregate(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Votes)
	assert.Equal(t, []float64{0, 0, 0}, stats.Values)
}

func TestAggregateUnknownPoll(t *testing.T) {
	store := memory.New()
	_, err := NewStatsService(store, store, nil).Aggregate(context.Background(), 77)
	assert.ErrorIs(t, err, domain.ErrPollNotFound)
}

func TestAggregateUsesCache(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	poll := seedPoll(t, store)
	cache := newMapCache()
	stats := NewStatsService(store, store, cache)

	first, err := stats.Aggregate(ctx, poll.ID)
	require.NoError(t, err)
	assert.Contains(t, cache.entries, poll.ID)

	// A cached value is served as is.
	cache.entries[poll.ID] = domain.Stats{Votes: 42}
	cached, err := stats.Aggregate(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, cached.Votes)

	// Voting drops it again.
	votes := newTestVoteService(store, WithStatsCache(cache))
	_, err = votes.Cast(ctx, ports.CastVoteInput{PollRef: poll.Reference, Identity: domain.AccountIdentity(uuid.New()), Choices: codes("red")})
	require.NoError(t, err)

	fresh, err := stats.Aggregate(ctx, poll.ID)
	require.NoError(t, err)
	assert.Equal(t, first.Votes+1, fresh.Votes)
}

func TestAggregateFallsBackWhenCacheFails(t *testing.T) {
	store := memory.New()
	poll := seedPoll(t, store)
	cache := newMapCache()
	cache.err = errors.New("connection refused")

	stats, err := NewStatsService(store, store, cache).Aggregate(context.Background(), poll.ID)
	require.NoError(t, err)
	assert.Len(t, stats.Labels, 3)
	assert.Equal(t, 1, cache.gets)
}
