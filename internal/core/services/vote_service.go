package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

type voteService struct {
	pollRepo  ports.PollRepository
	ledger    ports.VoteLedger
	validator ports.ChoiceValidator
	cache     ports.StatsCache
	publisher ports.VoteEventPublisher
	recorder  ports.AdmissionRecorder
	logger    *slog.Logger
	now       func() time.Time
}

type VoteServiceOption func(*voteService)

// WithStatsCache drops the cached stats of a poll whenever it gets a vote.
func WithStatsCache(cache ports.StatsCache) VoteServiceOption {
	return func(s *voteService) { s.cache = cache }
}

func WithEventPublisher(publisher ports.VoteEventPublisher) VoteServiceOption {
	return func(s *voteService) { s.publisher = publisher }
}

func WithAdmissionRecorder(recorder ports.AdmissionRecorder) VoteServiceOption {
	return func(s *voteService) { s.recorder = recorder }
}

func WithLogger(logger *slog.Logger) VoteServiceOption {
	return func(s *voteService) { s.logger = logger }
}

func WithClock(now func() time.Time) VoteServiceOption {
	return func(s *voteService) { s.now = now }
}

func NewVoteService(pollRepo ports.PollRepository, ledger ports.VoteLedger, validator ports.ChoiceValidator, opts ...VoteServiceOption) ports.VoteService {
	s := &voteService{
		pollRepo:  pollRepo,
		ledger:    ledger,
		validator: validator,
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *voteService) Cast(ctx context.Context, input ports.CastVoteInput) ([]domain.Vote, error) {
	poll, err := findPoll(ctx, s.pollRepo, input.PollRef)
	if err != nil {
		return nil, err
	}

	votes, err := s.cast(ctx, poll, input)
	if err != nil {
		s.rejected(poll.ID, err)
		return nil, err
	}

	s.accepted(ctx, domain.VoteCast, poll.ID, input.Identity, votes)
	return votes, nil
}

func (s *voteService) cast(ctx context.Context, poll *domain.Poll, input ports.CastVoteInput) ([]domain.Vote, error) {
	if input.Identity.IsZero() {
		return nil, domain.ErrUnidentifiedVoter
	}

	now := s.now()
	if err := poll.Admission(now); err != nil {
		return nil, err
	}
	if !input.Identity.IsAccount() && !poll.AcceptsAnonymous() {
		return nil, domain.ErrPollNotAnonymous
	}

	choices, err := s.validator.Resolve(poll, input.Choices)
	if err != nil {
		return nil, err
	}
	if len(choices) > 1 && !poll.AcceptsMultipleChoices() {
		return nil, domain.ErrPollNotMultiple
	}
	if utf8.RuneCountInString(input.Comment) > domain.MaxCommentLength {
		return nil, domain.ErrCommentTooLong
	}

	exclusive := !poll.AcceptsRepeatSubmission()
	if exclusive {
		voted, err := s.ledger.Exists(ctx, poll.ID, input.Identity.Key())
		if err != nil {
			return nil, fmt.Errorf("failed to check existing vote: %w", err)
		}
		if voted {
			return nil, domain.ErrAlreadyVoted
		}
	}

	// The check above only saves a round trip. Two racing submissions are
	// settled by the ledger, which refuses the second exclusive ballot.
	return s.ledger.Insert(ctx, domain.Ballot{
		PollID:    poll.ID,
		Voter:     input.Identity,
		ChoiceIDs: choiceIDs(choices),
		Comment:   input.Comment,
		Data:      input.Data,
		CreatedAt: now,
		Exclusive: exclusive,
	})
}

func (s *voteService) Amend(ctx context.Context, input ports.AmendVoteInput) ([]domain.Vote, error) {
	vote, err := s.ledger.Get(ctx, input.VoteID)
	if err != nil {
		return nil, err
	}

	poll, err := s.pollRepo.GetByID(ctx, vote.PollID)
	if err != nil {
		return nil, err
	}

	votes, err := s.amend(ctx, poll, vote, input)
	if err != nil {
		s.rejected(poll.ID, err)
		return nil, err
	}

	s.accepted(ctx, domain.VoteAmended, poll.ID, input.Identity, votes)
	return votes, nil
}

// amend replaces the voter's whole choice set on the poll. Only account
// holders on non-anonymous polls own their votes; everyone else is told they
// already voted.
func (s *voteService) amend(ctx context.Context, poll *domain.Poll, vote *domain.Vote, input ports.AmendVoteInput) ([]domain.Vote, error) {
	if poll.AcceptsAnonymous() || !input.Identity.IsAccount() || vote.VoterKey != input.Identity.Key() {
		return nil, domain.ErrAlreadyVoted
	}
	if err := poll.Admission(s.now()); err != nil {
		return nil, err
	}

	choices, err := s.validator.Resolve(poll, input.Choices)
	if err != nil {
		return nil, err
	}
	if len(choices) > 1 && !poll.AcceptsMultipleChoices() {
		return nil, domain.ErrPollNotMultiple
	}

	prior, err := s.ledger.Find(ctx, poll.ID, input.Identity.Key())
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}
	if len(prior) == 0 {
		return nil, domain.ErrVoteNotFound
	}
	first := prior[0]
	for _, v := range prior[1:] {
		if v.CreatedAt.Before(first.CreatedAt) {
			first = v
		}
	}

	// The original participation time and comment survive an amendment.
	return s.ledger.Replace(ctx, poll.ID, input.Identity.Key(), domain.Ballot{
		PollID:    poll.ID,
		Voter:     input.Identity,
		ChoiceIDs: choiceIDs(choices),
		Comment:   first.Comment,
		Data:      input.Data,
		CreatedAt: first.CreatedAt,
		Exclusive: !poll.AcceptsRepeatSubmission(),
	})
}

func (s *voteService) HasVoted(ctx context.Context, pollID int64, identity domain.VoterIdentity) (bool, error) {
	if identity.IsZero() {
		return false, nil
	}
	return s.ledger.Exists(ctx, pollID, identity.Key())
}

func (s *voteService) accepted(ctx context.Context, kind domain.VoteEventType, pollID int64, identity domain.VoterIdentity, votes []domain.Vote) {
	if s.recorder != nil {
		s.recorder.Accepted(pollID, kind == domain.VoteAmended)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, pollID); err != nil {
			s.logger.Warn("failed to invalidate stats cache", "poll_id", pollID, "error", err)
		}
	}

	if s.publisher != nil {
		ids := make([]int64, 0, len(votes))
		for _, v := range votes {
			ids = append(ids, v.ChoiceID)
		}
		event := domain.VoteEvent{
			Type:       kind,
			PollID:     pollID,
			VoterKey:   identity.Key(),
			ChoiceIDs:  ids,
			OccurredAt: s.now(),
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish vote event", "poll_id", pollID, "type", kind, "error", err)
		}
	}

	s.logger.Info("vote accepted", "poll_id", pollID, "type", kind, "identity", identity.Kind().String(), "choices", len(votes))
}

func (s *voteService) rejected(pollID int64, err error) {
	if s.recorder != nil {
		s.recorder.Rejected(pollID, err)
	}
	s.logger.Info("vote rejected", "poll_id", pollID, "reason", err.Error())
}

func choiceIDs(choices []domain.Choice) []int64 {
	ids := make([]int64, len(choices))
	for i, c := range choices {
		ids[i] = c.ID
	}
	return ids
}
