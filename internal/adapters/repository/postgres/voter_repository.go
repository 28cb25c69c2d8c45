package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

type voterRepository struct {
	db *sql.DB
}

func NewVoterRepository(db *sql.DB) ports.VoterStore {
	return &voterRepository{
		db: db,
	}
}

// GetOrCreate never fails on a concurrent first use: the losing insert is a
// no-op and both callers read the same row.
func (r *voterRepository) GetOrCreate(ctx context.Context, key string) (*domain.Voter, error) {
	_, err := r.db.ExecContext(ctx, `INSERT INTO voters (key) VALUES ($1) ON CONFLICT (key) DO NOTHING`, key)
	if err != nil {
		return nil, fmt.Errorf("failed to insert voter: %w", err)
	}

	var voter domain.Voter
	err = r.db.QueryRowContext(ctx, `SELECT id, key, created_at FROM voters WHERE key = $1`, key).
		Scan(&voter.ID, &voter.Key, &voter.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get voter: %w", err)
	}
	return &voter, nil
}
