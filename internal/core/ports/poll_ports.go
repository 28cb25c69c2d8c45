package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
)

type PollRepository interface {
	Save(ctx context.Context, poll *domain.Poll) error
	Update(ctx context.Context, poll *domain.Poll) error
	AddChoice(ctx context.Context, choice *domain.Choice) error
	GetByID(ctx context.Context, id int64) (*domain.Poll, error)
	GetByReference(ctx context.Context, reference string) (*domain.Poll, error)
	GetAll(ctx context.Context) ([]*domain.Poll, error)
	List(ctx context.Context, limit, offset int) ([]*domain.Poll, error)
	Search(ctx context.Context, limit, offset int, query string) ([]*domain.Poll, error)
}

type ChoiceInput struct {
	Text string
	Code string
}

type CreatePollInput struct {
	Question        string
	Description     string
	Reference       string
	IsAnonymous     bool
	IsMultiple      bool
	IsClosed        bool
	AllowMultiVotes bool
	StartVotes      *time.Time
	EndVotes        *time.Time
	Choices         []ChoiceInput
}

// UpdatePollInput only touches the fields that are set.
type UpdatePollInput struct {
	Question        *string
	Description     *string
	IsAnonymous     *bool
	IsMultiple      *bool
	IsClosed        *bool
	AllowMultiVotes *bool
	StartVotes      *time.Time
	EndVotes        *time.Time
}

type ListPollsInput struct {
	Page  int
	Query string
}

type PollService interface {
	Create(ctx context.Context, input CreatePollInput) (*domain.Poll, error)
	Update(ctx context.Context, ref string, input UpdatePollInput) (*domain.Poll, error)
	AddChoice(ctx context.Context, ref string, input ChoiceInput) (*domain.Choice, error)
	GetPoll(ctx context.Context, ref string) (*domain.Poll, error)
	ListPolls(ctx context.Context, input ListPollsInput) ([]*domain.Poll, error)
}
