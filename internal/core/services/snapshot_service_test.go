package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/quickpolls/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

func TestSnapshotAll(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	first := seedPoll(t, store)
	second := seedPoll(t, store)

	_, err := newTestVoteService(store).Cast(ctx, ports.CastVoteInput{
		PollRef:  first.Reference,
		Identity: domain.AccountIdentity(uuid.New()),
		Choices:  codes("blue"),
	})
	require.NoError(t, err)

	svc := NewSnapshotService(store, NewStatsService(store, store, nil), store)
	require.NoError(t, svc.SnapshotAll(ctx))

	snap, ok := store.Snapshot(first.ID)
	require.True(t, ok)
	assert.Equal(t, 1, snap.Stats.Votes)
	assert.Equal(t, []float64{1, 0, 0}, snap.Stats.Values)
	assert.False(t, snap.ComputedAt.IsZero())

	snap, ok = store.Snapshot(second.ID)
	require.True(t, ok)
	assert.Equal(t, 0, snap.Stats.Votes)
}

func TestSnapshotAllWithoutPolls(t *testing.T) {
	store := memory.New()
	svc := NewSnapshotService(store, NewStatsService(store, store, nil), store)
	assert.NoError(t, svc.SnapshotAll(context.Background()))
}
