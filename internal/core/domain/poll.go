package domain

import (
	"time"
)

const (
	DefaultVotingPeriod = 10 * 24 * time.Hour

	MaxQuestionLength   = 255
	MaxReferenceLength  = 36
	MaxChoiceTextLength = 255
	MaxChoiceCodeLength = 36
)

type Poll struct {
	ID              int64     `json:"id"`
	Reference       string    `json:"reference"`
	Question        string    `json:"question"`
	Description     string    `json:"description"`
	IsAnonymous     bool      `json:"is_anonymous"`
	IsMultiple      bool      `json:"is_multiple"`
	IsClosed        bool      `json:"is_closed"`
	AllowMultiVotes bool      `json:"allow_multi_votes"`
	StartVotes      time.Time `json:"start_votes"`
	EndVotes        time.Time `json:"end_votes"`
	Choices         []Choice  `json:"choices"`
	CreatedAt       time.Time `json:"created_at"`
}

type Choice struct {
	ID     int64  `json:"id"`
	PollID int64  `json:"poll_id"`
	Text   string `json:"choice"`
	Code   string `json:"code"`
}

// IsOpen reports whether votes are accepted at now. Window bounds are inclusive.
func (p *Poll) IsOpen(now time.Time) bool {
	return p.Admission(now) == nil
}

// Admission tells why a poll refuses votes at now, or nil when it accepts them.
// Explicit closure wins over the window so callers can word the two apart.
func (p *Poll) Admission(now time.Time) error {
	if p.IsClosed {
		return ErrPollClosed
	}
	if now.Before(p.StartVotes) || now.After(p.EndVotes) {
		return ErrPollNotOpen
	}
	return nil
}

func (p *Poll) AcceptsAnonymous() bool {
	return p.IsAnonymous
}

func (p *Poll) AcceptsMultipleChoices() bool {
	return p.IsMultiple
}

func (p *Poll) AcceptsRepeatSubmission() bool {
	return p.AllowMultiVotes
}

// ChoiceByID and ChoiceByCode only look at the poll's own choices.
func (p *Poll) ChoiceByID(id int64) (Choice, bool) {
	for _, c := range p.Choices {
		if c.ID == id {
			return c, true
		}
	}
	return Choice{}, false
}

func (p *Poll) ChoiceByCode(code string) (Choice, bool) {
	for _, c := range p.Choices {
		if c.Code == code {
			return c, true
		}
	}
	return Choice{}, false
}

// NewWindow fills in the voting window defaults: start falls back to now and
// end to start plus DefaultVotingPeriod.
func NewWindow(start, end *time.Time, now time.Time) (time.Time, time.Time, error) {
	s := now
	if start != nil {
		s = *start
	}
	e := s.Add(DefaultVotingPeriod)
	if end != nil {
		e = *end
	}
	if !e.After(s) {
		return time.Time{}, time.Time{}, ErrInvalidWindow
	}
	return s, e, nil
}
