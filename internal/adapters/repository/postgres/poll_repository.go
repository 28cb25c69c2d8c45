package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

const pollColumns = `id, reference, question, description, is_anonymous, is_multiple,
	is_closed, allow_multi_votes, start_votes, end_votes, created_at`

type pollRepository struct {
	db *sql.DB
}

func NewPollRepository(db *sql.DB) ports.PollRepository {
	return &pollRepository{
		db: db,
	}
}

func (r *pollRepository) Save(ctx context.Context, poll *domain.Poll) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	queryPoll := `
		INSERT INTO polls (reference, question, description, is_anonymous, is_multiple,
			is_closed, allow_multi_votes, start_votes, end_votes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	err = tx.QueryRowContext(ctx, queryPoll,
		poll.Reference, poll.Question, poll.Description, poll.IsAnonymous, poll.IsMultiple,
		poll.IsClosed, poll.AllowMultiVotes, poll.StartVotes, poll.EndVotes, poll.CreatedAt,
	).Scan(&poll.ID)
	if err != nil {
		if isUniqueViolation(err, "polls_reference_key") {
			return domain.ErrDuplicateReference
		}
		return fmt.Errorf("failed to insert poll: %w", err)
	}

	queryChoice := `
		INSERT INTO choices (poll_id, choice, code)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	stmt, err := tx.PrepareContext(ctx, queryChoice)
	if err != nil {
		return fmt.Errorf("failed to prepare choice statement: %w", err)
	}
	defer stmt.Close()

	for i := range poll.Choices {
		choice := &poll.Choices[i]
		choice.PollID = poll.ID
		if err := stmt.QueryRowContext(ctx, choice.PollID, choice.Text, choice.Code).Scan(&choice.ID); err != nil {
			if isUniqueViolation(err, "choices_poll_code_key") {
				return domain.ErrDuplicateChoiceCode
			}
			return fmt.Errorf("failed to insert choice: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (r *pollRepository) Update(ctx context.Context, poll *domain.Poll) error {
	query := `
		UPDATE polls
		SET question = $2, description = $3, is_anonymous = $4, is_multiple = $5,
			is_closed = $6, allow_multi_votes = $7, start_votes = $8, end_votes = $9
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, query,
		poll.ID, poll.Question, poll.Description, poll.IsAnonymous, poll.IsMultiple,
		poll.IsClosed, poll.AllowMultiVotes, poll.StartVotes, poll.EndVotes,
	)
	if err != nil {
		return fmt.Errorf("failed to update poll: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update poll: %w", err)
	}
	if n == 0 {
		return domain.ErrPollNotFound
	}
	return nil
}

func (r *pollRepository) AddChoice(ctx context.Context, choice *domain.Choice) error {
	query := `
		INSERT INTO choices (poll_id, choice, code)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, query, choice.PollID, choice.Text, choice.Code).Scan(&choice.ID)
	if err != nil {
		if isUniqueViolation(err, "choices_poll_code_key") {
			return domain.ErrDuplicateChoiceCode
		}
		return fmt.Errorf("failed to insert choice: %w", err)
	}
	return nil
}

func (r *pollRepository) GetByID(ctx context.Context, id int64) (*domain.Poll, error) {
	return r.getOne(ctx, `SELECT `+pollColumns+` FROM polls WHERE id = $1`, id)
}

func (r *pollRepository) GetByReference(ctx context.Context, reference string) (*domain.Poll, error) {
	return r.getOne(ctx, `SELECT `+pollColumns+` FROM polls WHERE reference = $1`, reference)
}

func (r *pollRepository) getOne(ctx context.Context, query string, arg any) (*domain.Poll, error) {
	poll, err := scanPoll(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPollNotFound
		}
		return nil, fmt.Errorf("failed to get poll: %w", err)
	}

	choices, err := r.fetchChoices(ctx, poll.ID)
	if err != nil {
		return nil, err
	}
	poll.Choices = choices

	return poll, nil
}

func (r *pollRepository) GetAll(ctx context.Context) ([]*domain.Poll, error) {
	query := `SELECT ` + pollColumns + ` FROM polls ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all polls: %w", err)
	}
	defer rows.Close()

	return r.scanPolls(ctx, rows)
}

func (r *pollRepository) List(ctx context.Context, limit, offset int) ([]*domain.Poll, error) {
	query := `
		SELECT ` + pollColumns + `
		FROM polls
		ORDER BY start_votes DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list polls: %w", err)
	}
	defer rows.Close()

	return r.scanPolls(ctx, rows)
}

func (r *pollRepository) Search(ctx context.Context, limit, offset int, q string) ([]*domain.Poll, error) {
	query := `
		SELECT ` + pollColumns + `
		FROM polls
		WHERE question ILIKE $1
		ORDER BY start_votes DESC, id DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.db.QueryContext(ctx, query, "%"+q+"%", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to search polls: %w", err)
	}
	defer rows.Close()

	return r.scanPolls(ctx, rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPoll(row rowScanner) (*domain.Poll, error) {
	var poll domain.Poll
	err := row.Scan(
		&poll.ID, &poll.Reference, &poll.Question, &poll.Description, &poll.IsAnonymous, &poll.IsMultiple,
		&poll.IsClosed, &poll.AllowMultiVotes, &poll.StartVotes, &poll.EndVotes, &poll.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &poll, nil
}

func (r *pollRepository) scanPolls(ctx context.Context, rows *sql.Rows) ([]*domain.Poll, error) {
	var polls []*domain.Poll
	for rows.Next() {
		poll, err := scanPoll(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan poll: %w", err)
		}
		polls = append(polls, poll)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating polls: %w", err)
	}
	rows.Close()

	for _, poll := range polls {
		choices, err := r.fetchChoices(ctx, poll.ID)
		if err != nil {
			return nil, err
		}
		poll.Choices = choices
	}
	return polls, nil
}

func (r *pollRepository) fetchChoices(ctx context.Context, pollID int64) ([]domain.Choice, error) {
	query := `
		SELECT id, poll_id, choice, code
		FROM choices
		WHERE poll_id = $1
		ORDER BY choice, code, id
	`
	rows, err := r.db.QueryContext(ctx, query, pollID)
	if err != nil {
		return nil, fmt.Errorf("failed to get poll choices: %w", err)
	}
	defer rows.Close()

	var choices []domain.Choice
	for rows.Next() {
		var c domain.Choice
		if err := rows.Scan(&c.ID, &c.PollID, &c.Text, &c.Code); err != nil {
			return nil, fmt.Errorf("failed to scan choice: %w", err)
		}
		choices = append(choices, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating choices: %w", err)
	}

	// Collation order in the database may differ from byte order.
	domain.SortChoices(choices)
	return choices, nil
}
