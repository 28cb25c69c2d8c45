package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

const voteColumns = `v.id, v.submission_id, v.poll_id, v.choice_id, s.voter_key, s.account_id,
	s.comment, s.data, s.created_at`

type voteRepository struct {
	db *sql.DB
}

func NewVoteRepository(db *sql.DB) ports.VoteLedger {
	return &voteRepository{
		db: db,
	}
}

func (r *voteRepository) Exists(ctx context.Context, pollID int64, voterKey string) (bool, error) {
	query := `SELECT 1 FROM submissions WHERE poll_id = $1 AND voter_key = $2 LIMIT 1`
	var exists int
	err := r.db.QueryRowContext(ctx, query, pollID, voterKey).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check existing vote: %w", err)
	}
	return true, nil
}

func (r *voteRepository) Insert(ctx context.Context, ballot domain.Ballot) ([]domain.Vote, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	votes, err := insertBallot(ctx, tx, ballot)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return votes, nil
}

func (r *voteRepository) Replace(ctx context.Context, pollID int64, voterKey string, ballot domain.Ballot) ([]domain.Vote, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `DELETE FROM submissions WHERE poll_id = $1 AND voter_key = $2`, pollID, voterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to delete previous votes: %w", err)
	}

	votes, err := insertBallot(ctx, tx, ballot)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return votes, nil
}

// insertBallot writes a submission and one vote row per choice inside tx.
func insertBallot(ctx context.Context, tx *sql.Tx, ballot domain.Ballot) ([]domain.Vote, error) {
	var data sql.NullString
	if ballot.Data != nil {
		encoded, err := json.Marshal(ballot.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode vote data: %w", err)
		}
		data = sql.NullString{String: string(encoded), Valid: true}
	}

	var account *uuid.UUID
	if id, ok := ballot.Voter.AccountID(); ok {
		account = &id
	}

	// The first submission of a voter always claims the dedup key, whatever
	// the poll's flags were at the time. Later repeat submissions store NULL.
	// An exclusive ballot therefore conflicts with any earlier submission.
	querySubmission := `
		INSERT INTO submissions (poll_id, voter_key, account_id, dedup_key, comment, data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if !ballot.Exclusive {
		querySubmission += ` ON CONFLICT ON CONSTRAINT submissions_poll_dedup_key DO NOTHING`
	}
	querySubmission += ` RETURNING id, created_at`

	var (
		submissionID int64
		createdAt    time.Time
	)
	err := tx.QueryRowContext(ctx, querySubmission,
		ballot.PollID, ballot.Voter.Key(), account, ballot.Voter.Key(), ballot.Comment, data, ballot.CreatedAt,
	).Scan(&submissionID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) && !ballot.Exclusive {
		err = tx.QueryRowContext(ctx, `
			INSERT INTO submissions (poll_id, voter_key, account_id, dedup_key, comment, data, created_at)
			VALUES ($1, $2, $3, NULL, $4, $5, $6)
			RETURNING id, created_at
		`, ballot.PollID, ballot.Voter.Key(), account, ballot.Comment, data, ballot.CreatedAt,
		).Scan(&submissionID, &createdAt)
	}
	if err != nil {
		if isUniqueViolation(err, "submissions_poll_dedup_key") {
			return nil, domain.ErrAlreadyVoted
		}
		return nil, fmt.Errorf("failed to insert submission: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO votes (submission_id, poll_id, choice_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare vote statement: %w", err)
	}
	defer stmt.Close()

	votes := make([]domain.Vote, 0, len(ballot.ChoiceIDs))
	for _, choiceID := range ballot.ChoiceIDs {
		vote := domain.Vote{
			SubmissionID: submissionID,
			PollID:       ballot.PollID,
			ChoiceID:     choiceID,
			VoterKey:     ballot.Voter.Key(),
			AccountID:    account,
			Comment:      ballot.Comment,
			Data:         ballot.Data,
			CreatedAt:    createdAt,
		}
		if err := stmt.QueryRowContext(ctx, submissionID, ballot.PollID, choiceID).Scan(&vote.ID); err != nil {
			return nil, fmt.Errorf("failed to insert vote: %w", err)
		}
		votes = append(votes, vote)
	}
	return votes, nil
}

func (r *voteRepository) Find(ctx context.Context, pollID int64, voterKey string) ([]domain.Vote, error) {
	query := `
		SELECT ` + voteColumns + `
		FROM votes v
		JOIN submissions s ON s.id = v.submission_id
		WHERE s.poll_id = $1 AND s.voter_key = $2
		ORDER BY s.created_at, v.id
	`
	rows, err := r.db.QueryContext(ctx, query, pollID, voterKey)
	if err != nil {
		return nil, fmt.Errorf("failed to find votes: %w", err)
	}
	defer rows.Close()

	var votes []domain.Vote
	for rows.Next() {
		vote, err := scanVote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, *vote)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating votes: %w", err)
	}
	return votes, nil
}

func (r *voteRepository) Get(ctx context.Context, voteID int64) (*domain.Vote, error) {
	query := `
		SELECT ` + voteColumns + `
		FROM votes v
		JOIN submissions s ON s.id = v.submission_id
		WHERE v.id = $1
	`
	vote, err := scanVote(r.db.QueryRowContext(ctx, query, voteID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrVoteNotFound
		}
		return nil, fmt.Errorf("failed to get vote: %w", err)
	}
	return vote, nil
}

// Tally reads both counts from one snapshot so they always agree.
func (r *voteRepository) Tally(ctx context.Context, pollID int64) (domain.Tally, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return domain.Tally{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	tally := domain.Tally{PerChoice: make(map[int64]int)}
	err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM submissions WHERE poll_id = $1`, pollID).Scan(&tally.Submissions)
	if err != nil {
		return domain.Tally{}, fmt.Errorf("failed to count submissions: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT choice_id, COUNT(*)
		FROM votes
		WHERE poll_id = $1
		GROUP BY choice_id
	`, pollID)
	if err != nil {
		return domain.Tally{}, fmt.Errorf("failed to count votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var choiceID int64
		var count int
		if err := rows.Scan(&choiceID, &count); err != nil {
			return domain.Tally{}, fmt.Errorf("failed to scan vote count: %w", err)
		}
		tally.PerChoice[choiceID] = count
	}
	if err := rows.Err(); err != nil {
		return domain.Tally{}, fmt.Errorf("error iterating vote counts: %w", err)
	}

	return tally, nil
}

func scanVote(row rowScanner) (*domain.Vote, error) {
	var (
		vote    domain.Vote
		account uuid.NullUUID
		data    []byte
	)
	err := row.Scan(
		&vote.ID, &vote.SubmissionID, &vote.PollID, &vote.ChoiceID, &vote.VoterKey, &account,
		&vote.Comment, &data, &vote.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if account.Valid {
		id := account.UUID
		vote.AccountID = &id
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &vote.Data); err != nil {
			return nil, fmt.Errorf("failed to decode vote data: %w", err)
		}
	}
	return &vote, nil
}
