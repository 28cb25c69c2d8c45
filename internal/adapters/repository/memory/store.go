package memory

import (
	"context"
	"maps"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

// Store keeps everything in process memory behind a single lock. It gives the
// same guarantees as the postgres adapter, which makes it usable for tests and
// single-instance deployments.
type Store struct {
	mu sync.RWMutex

	polls        map[int64]*domain.Poll
	byReference  map[string]int64
	submissions  map[int64]*submission
	votes        map[int64]*domain.Vote
	dedup        map[dedupKey]int64
	voters       map[string]*domain.Voter
	snapshots    map[int64]domain.StatsSnapshot
	nextPollID   int64
	nextChoiceID int64
	nextSubID    int64
	nextVoteID   int64
	nextVoterID  int64
}

type submission struct {
	id      int64
	pollID  int64
	voter   string
	voteIDs []int64
}

type dedupKey struct {
	pollID int64
	key    string
}

var (
	_ ports.PollRepository       = (*Store)(nil)
	_ ports.VoteLedger           = (*Store)(nil)
	_ ports.VoterStore           = (*Store)(nil)
	_ ports.PollResultRepository = (*Store)(nil)
)

func New() *Store {
	return &Store{
		polls:       make(map[int64]*domain.Poll),
		byReference: make(map[string]int64),
		submissions: make(map[int64]*submission),
		votes:       make(map[int64]*domain.Vote),
		dedup:       make(map[dedupKey]int64),
		voters:      make(map[string]*domain.Voter),
		snapshots:   make(map[int64]domain.StatsSnapshot),
	}
}

func (s *Store) Save(_ context.Context, poll *domain.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byReference[poll.Reference]; exists {
		return domain.ErrDuplicateReference
	}
	codes := make(map[string]struct{}, len(poll.Choices))
	for _, c := range poll.Choices {
		if _, dup := codes[c.Code]; dup {
			return domain.ErrDuplicateChoiceCode
		}
		codes[c.Code] = struct{}{}
	}

	s.nextPollID++
	poll.ID = s.nextPollID
	if poll.CreatedAt.IsZero() {
		poll.CreatedAt = time.Now()
	}
	for i := range poll.Choices {
		s.nextChoiceID++
		poll.Choices[i].ID = s.nextChoiceID
		poll.Choices[i].PollID = poll.ID
	}

	s.polls[poll.ID] = clonePoll(poll)
	s.byReference[poll.Reference] = poll.ID
	return nil
}

func (s *Store) Update(_ context.Context, poll *domain.Poll) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.polls[poll.ID]
	if !ok {
		return domain.ErrPollNotFound
	}
	if !poll.EndVotes.After(poll.StartVotes) {
		return domain.ErrInvalidWindow
	}

	stored.Question = poll.Question
	stored.Description = poll.Description
	stored.IsAnonymous = poll.IsAnonymous
	stored.IsMultiple = poll.IsMultiple
	stored.IsClosed = poll.IsClosed
	stored.AllowMultiVotes = poll.AllowMultiVotes
	stored.StartVotes = poll.StartVotes
	stored.EndVotes = poll.EndVotes
	return nil
}

func (s *Store) AddChoice(_ context.Context, choice *domain.Choice) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	poll, ok := s.polls[choice.PollID]
	if !ok {
		return domain.ErrPollNotFound
	}
	if _, dup := poll.ChoiceByCode(choice.Code); dup {
		return domain.ErrDuplicateChoiceCode
	}

	s.nextChoiceID++
	choice.ID = s.nextChoiceID
	poll.Choices = append(poll.Choices, *choice)
	return nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*domain.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	poll, ok := s.polls[id]
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return clonePoll(poll), nil
}

func (s *Store) GetByReference(ctx context.Context, reference string) (*domain.Poll, error) {
	s.mu.RLock()
	id, ok := s.byReference[reference]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrPollNotFound
	}
	return s.GetByID(ctx, id)
}

func (s *Store) GetAll(_ context.Context) ([]*domain.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	polls := make([]*domain.Poll, 0, len(s.polls))
	for _, p := range s.polls {
		polls = append(polls, clonePoll(p))
	}
	sort.Slice(polls, func(i, j int) bool { return polls[i].ID < polls[j].ID })
	return polls, nil
}

func (s *Store) List(ctx context.Context, limit, offset int) ([]*domain.Poll, error) {
	return s.Search(ctx, limit, offset, "")
}

// Search matches the question case-insensitively. Results come newest window
// first, like the postgres adapter.
func (s *Store) Search(_ context.Context, limit, offset int, query string) ([]*domain.Poll, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query = strings.ToLower(query)
	var polls []*domain.Poll
	for _, p := range s.polls {
		if query != "" && !strings.Contains(strings.ToLower(p.Question), query) {
			continue
		}
		polls = append(polls, clonePoll(p))
	}
	sort.Slice(polls, func(i, j int) bool {
		if !polls[i].StartVotes.Equal(polls[j].StartVotes) {
			return polls[i].StartVotes.After(polls[j].StartVotes)
		}
		return polls[i].ID > polls[j].ID
	})

	if offset >= len(polls) {
		return nil, nil
	}
	polls = polls[offset:]
	if limit > 0 && limit < len(polls) {
		polls = polls[:limit]
	}
	return polls, nil
}

func (s *Store) Exists(_ context.Context, pollID int64, voterKey string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sub := range s.submissions {
		if sub.pollID == pollID && sub.voter == voterKey {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) Insert(_ context.Context, ballot domain.Ballot) ([]domain.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insert(ballot)
}

func (s *Store) Replace(_ context.Context, pollID int64, voterKey string, ballot domain.Ballot) ([]domain.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, sub := range s.submissions {
		if sub.pollID == pollID && sub.voter == voterKey {
			s.dropSubmission(id)
		}
	}
	return s.insert(ballot)
}

// insert must be called with the write lock held.
func (s *Store) insert(ballot domain.Ballot) ([]domain.Vote, error) {
	if _, ok := s.polls[ballot.PollID]; !ok {
		return nil, domain.ErrPollNotFound
	}

	key := ballot.Voter.Key()
	dk := dedupKey{pollID: ballot.PollID, key: key}
	if ballot.Exclusive {
		if _, taken := s.dedup[dk]; taken {
			return nil, domain.ErrAlreadyVoted
		}
	}

	var account *uuid.UUID
	if id, ok := ballot.Voter.AccountID(); ok {
		account = &id
	}

	s.nextSubID++
	sub := &submission{id: s.nextSubID, pollID: ballot.PollID, voter: key}

	votes := make([]domain.Vote, 0, len(ballot.ChoiceIDs))
	for _, choiceID := range ballot.ChoiceIDs {
		s.nextVoteID++
		vote := domain.Vote{
			ID:           s.nextVoteID,
			SubmissionID: sub.id,
			PollID:       ballot.PollID,
			ChoiceID:     choiceID,
			VoterKey:     key,
			AccountID:    account,
			Comment:      ballot.Comment,
			Data:         maps.Clone(ballot.Data),
			CreatedAt:    ballot.CreatedAt,
		}
		stored := vote
		s.votes[vote.ID] = &stored
		sub.voteIDs = append(sub.voteIDs, vote.ID)
		votes = append(votes, vote)
	}

	s.submissions[sub.id] = sub
	if _, taken := s.dedup[dk]; !taken {
		s.dedup[dk] = sub.id
	}
	return votes, nil
}

func (s *Store) dropSubmission(id int64) {
	sub := s.submissions[id]
	for _, voteID := range sub.voteIDs {
		delete(s.votes, voteID)
	}
	dk := dedupKey{pollID: sub.pollID, key: sub.voter}
	if s.dedup[dk] == id {
		delete(s.dedup, dk)
	}
	delete(s.submissions, id)
}

func (s *Store) Find(_ context.Context, pollID int64, voterKey string) ([]domain.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var votes []domain.Vote
	for _, v := range s.votes {
		if v.PollID == pollID && v.VoterKey == voterKey {
			votes = append(votes, *v)
		}
	}
	sort.Slice(votes, func(i, j int) bool {
		if !votes[i].CreatedAt.Equal(votes[j].CreatedAt) {
			return votes[i].CreatedAt.Before(votes[j].CreatedAt)
		}
		return votes[i].ID < votes[j].ID
	})
	return votes, nil
}

func (s *Store) Get(_ context.Context, voteID int64) (*domain.Vote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.votes[voteID]
	if !ok {
		return nil, domain.ErrVoteNotFound
	}
	vote := *v
	return &vote, nil
}

func (s *Store) Tally(_ context.Context, pollID int64) (domain.Tally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tally := domain.Tally{PerChoice: make(map[int64]int)}
	for _, sub := range s.submissions {
		if sub.pollID != pollID {
			continue
		}
		tally.Submissions++
		for _, voteID := range sub.voteIDs {
			tally.PerChoice[s.votes[voteID].ChoiceID]++
		}
	}
	return tally, nil
}

func (s *Store) GetOrCreate(_ context.Context, key string) (*domain.Voter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.voters[key]; ok {
		voter := *v
		return &voter, nil
	}

	s.nextVoterID++
	v := &domain.Voter{ID: s.nextVoterID, Key: key, CreatedAt: time.Now()}
	s.voters[key] = v
	voter := *v
	return &voter, nil
}

func (s *Store) SaveSnapshot(_ context.Context, snapshot domain.StatsSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.polls[snapshot.PollID]; !ok {
		return domain.ErrPollNotFound
	}
	s.snapshots[snapshot.PollID] = snapshot
	return nil
}

// Snapshot returns the last snapshot saved for a poll.
func (s *Store) Snapshot(pollID int64) (domain.StatsSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snapshots[pollID]
	return snap, ok
}

func clonePoll(p *domain.Poll) *domain.Poll {
	c := *p
	c.Choices = append([]domain.Choice(nil), p.Choices...)
	domain.SortChoices(c.Choices)
	return &c
}
