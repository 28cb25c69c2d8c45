package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

type pollResultRepository struct {
	db *sql.DB
}

func NewPollResultRepository(db *sql.DB) ports.PollResultRepository {
	return &pollResultRepository{
		db: db,
	}
}

func (r *pollResultRepository) SaveSnapshot(ctx context.Context, snapshot domain.StatsSnapshot) error {
	stats, err := json.Marshal(snapshot.Stats)
	if err != nil {
		return fmt.Errorf("failed to encode stats for poll %d: %w", snapshot.PollID, err)
	}

	query := `
		INSERT INTO poll_results (poll_id, stats, computed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (poll_id) DO UPDATE
		SET stats = EXCLUDED.stats,
		    computed_at = EXCLUDED.computed_at;
	`
	if _, err := r.db.ExecContext(ctx, query, snapshot.PollID, string(stats), snapshot.ComputedAt); err != nil {
		return fmt.Errorf("failed to save snapshot for poll %d: %w", snapshot.PollID, err)
	}
	return nil
}
