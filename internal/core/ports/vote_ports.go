package ports

import (
	"context"

	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
)

// VoteLedger stores vote rows. It holds no business rules but must refuse an
// exclusive ballot when the voter already has a submission on the poll,
// reporting domain.ErrAlreadyVoted, even under concurrent inserts.
type VoteLedger interface {
	Exists(ctx context.Context, pollID int64, voterKey string) (bool, error)
	Insert(ctx context.Context, ballot domain.Ballot) ([]domain.Vote, error)
	Find(ctx context.Context, pollID int64, voterKey string) ([]domain.Vote, error)
	Replace(ctx context.Context, pollID int64, voterKey string, ballot domain.Ballot) ([]domain.Vote, error)
	Get(ctx context.Context, voteID int64) (*domain.Vote, error)
	Tally(ctx context.Context, pollID int64) (domain.Tally, error)
}

type CastVoteInput struct {
	PollRef  string
	Identity domain.VoterIdentity
	Choices  []domain.ChoiceRef
	Data     map[string]any
	Comment  string
}

type AmendVoteInput struct {
	VoteID   int64
	Identity domain.VoterIdentity
	Choices  []domain.ChoiceRef
	Data     map[string]any
}

type VoteService interface {
	Cast(ctx context.Context, input CastVoteInput) ([]domain.Vote, error)
	Amend(ctx context.Context, input AmendVoteInput) ([]domain.Vote, error)
	HasVoted(ctx context.Context, pollID int64, identity domain.VoterIdentity) (bool, error)
}

type ChoiceValidator interface {
	Resolve(poll *domain.Poll, refs []domain.ChoiceRef) ([]domain.Choice, error)
}

type VoteEventPublisher interface {
	Publish(ctx context.Context, event domain.VoteEvent) error
}

// AdmissionRecorder observes the outcome of every vote attempt.
type AdmissionRecorder interface {
	Accepted(pollID int64, amended bool)
	Rejected(pollID int64, reason error)
}
