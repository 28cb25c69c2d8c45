package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

const pollsPageSize = 10

var referencePattern = regexp.MustCompile(`^[\w-]+$`)

type pollService struct {
	repo  ports.PollRepository
	cache ports.StatsCache
	now   func() time.Time
}

// NewPollService builds the poll administration service. cache may be nil.
func NewPollService(repo ports.PollRepository, cache ports.StatsCache) ports.PollService {
	return &pollService{
		repo:  repo,
		cache: cache,
		now:   time.Now,
	}
}

func (s *pollService) Create(ctx context.Context, input ports.CreatePollInput) (*domain.Poll, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", domain.ErrInvalidPoll)
	}
	if utf8.RuneCountInString(question) > domain.MaxQuestionLength {
		return nil, fmt.Errorf("%w: question is too long", domain.ErrInvalidPoll)
	}

	reference := strings.TrimSpace(input.Reference)
	if reference == "" {
		reference = uuid.New().String()
	}
	if err := validateReference(reference); err != nil {
		return nil, err
	}

	now := s.now()
	start, end, err := domain.NewWindow(input.StartVotes, input.EndVotes, now)
	if err != nil {
		return nil, err
	}

	poll := &domain.Poll{
		Reference:       reference,
		Question:        question,
		Description:     input.Description,
		IsAnonymous:     input.IsAnonymous,
		IsMultiple:      input.IsMultiple,
		IsClosed:        input.IsClosed,
		AllowMultiVotes: input.AllowMultiVotes,
		StartVotes:      start,
		EndVotes:        end,
		CreatedAt:       now,
	}

	codes := make(map[string]struct{}, len(input.Choices))
	for _, in := range input.Choices {
		choice, err := newChoice(in)
		if err != nil {
			return nil, err
		}
		if _, dup := codes[choice.Code]; dup {
			return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateChoiceCode, choice.Code)
		}
		codes[choice.Code] = struct{}{}
		poll.Choices = append(poll.Choices, choice)
	}

	if err := s.repo.Save(ctx, poll); err != nil {
		return nil, err
	}
	domain.SortChoices(poll.Choices)

	return poll, nil
}

func (s *pollService) Update(ctx context.Context, ref string, input ports.UpdatePollInput) (*domain.Poll, error) {
	poll, err := findPoll(ctx, s.repo, ref)
	if err != nil {
		return nil, err
	}

	if input.Question != nil {
		question := strings.TrimSpace(*input.Question)
		if question == "" || utf8.RuneCountInString(question) > domain.MaxQuestionLength {
			return nil, fmt.Errorf("%w: invalid question", domain.ErrInvalidPoll)
		}
		poll.Question = question
	}
	if input.Description != nil {
		poll.Description = *input.Description
	}
	if input.IsAnonymous != nil {
		poll.IsAnonymous = *input.IsAnonymous
	}
	if input.IsMultiple != nil {
		poll.IsMultiple = *input.IsMultiple
	}
	if input.IsClosed != nil {
		poll.IsClosed = *input.IsClosed
	}
	if input.AllowMultiVotes != nil {
		poll.AllowMultiVotes = *input.AllowMultiVotes
	}
	if input.StartVotes != nil {
		poll.StartVotes = *input.StartVotes
	}
	if input.EndVotes != nil {
		poll.EndVotes = *input.EndVotes
	}
	if !poll.EndVotes.After(poll.StartVotes) {
		return nil, domain.ErrInvalidWindow
	}

	if err := s.repo.Update(ctx, poll); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, poll.ID)
	return poll, nil
}

func (s *pollService) AddChoice(ctx context.Context, ref string, input ports.ChoiceInput) (*domain.Choice, error) {
	poll, err := findPoll(ctx, s.repo, ref)
	if err != nil {
		return nil, err
	}

	choice, err := newChoice(input)
	if err != nil {
		return nil, err
	}
	if _, exists := poll.ChoiceByCode(choice.Code); exists {
		return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateChoiceCode, choice.Code)
	}
	choice.PollID = poll.ID

	if err := s.repo.AddChoice(ctx, &choice); err != nil {
		return nil, err
	}
	s.invalidateStats(ctx, poll.ID)
	return &choice, nil
}

// invalidateStats drops cached stats whose labels or codes may be stale.
func (s *pollService) invalidateStats(ctx context.Context, pollID int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, pollID); err != nil {
		slog.Warn("failed to invalidate stats cache", "poll_id", pollID, "error", err)
	}
}

func (s *pollService) GetPoll(ctx context.Context, ref string) (*domain.Poll, error) {
	return findPoll(ctx, s.repo, ref)
}

func (s *pollService) ListPolls(ctx context.Context, input ports.ListPollsInput) ([]*domain.Poll, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pollsPageSize

	if q := strings.TrimSpace(input.Query); q != "" {
		return s.repo.Search(ctx, pollsPageSize, offset, q)
	}
	return s.repo.List(ctx, pollsPageSize, offset)
}

// findPoll resolves a poll reference the way the routes accept it: digits are
// a numeric id, anything else is the poll's reference token.
func findPoll(ctx context.Context, repo ports.PollRepository, ref string) (*domain.Poll, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, domain.ErrInvalidPollID
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		if id <= 0 {
			return nil, domain.ErrInvalidPollID
		}
		return repo.GetByID(ctx, id)
	} else if errors.Is(err, strconv.ErrRange) {
		return nil, domain.ErrInvalidPollID
	}

	if !referencePattern.MatchString(ref) {
		return nil, domain.ErrInvalidPollID
	}
	return repo.GetByReference(ctx, ref)
}

func validateReference(reference string) error {
	if len(reference) > domain.MaxReferenceLength || !referencePattern.MatchString(reference) {
		return fmt.Errorf("%w: reference must be at most %d letters, digits, '_' or '-'", domain.ErrInvalidPoll, domain.MaxReferenceLength)
	}
	if _, err := strconv.ParseInt(reference, 10, 64); err == nil {
		return fmt.Errorf("%w: reference cannot be a number", domain.ErrInvalidPoll)
	}
	return nil
}

// newChoice validates a choice input. The code falls back to the (possibly
// truncated) text.
func newChoice(in ports.ChoiceInput) (domain.Choice, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return domain.Choice{}, fmt.Errorf("%w: choice text is required", domain.ErrInvalidPoll)
	}
	if utf8.RuneCountInString(text) > domain.MaxChoiceTextLength {
		return domain.Choice{}, fmt.Errorf("%w: choice text is too long", domain.ErrInvalidPoll)
	}

	code := strings.TrimSpace(in.Code)
	if code == "" {
		code = truncateRunes(text, domain.MaxChoiceCodeLength)
	}
	if utf8.RuneCountInString(code) > domain.MaxChoiceCodeLength {
		return domain.Choice{}, fmt.Errorf("%w: choice code is too long", domain.ErrInvalidPoll)
	}

	return domain.Choice{Text: text, Code: code}, nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return strings.TrimSpace(string([]rune(s)[:n]))
}
