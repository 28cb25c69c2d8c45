package domain

import (
	"time"

	"github.com/google/uuid"
)

const MaxCommentLength = 144

// Vote is one ledger row: a single selected choice of a submission.
type Vote struct {
	ID           int64          `json:"id"`
	SubmissionID int64          `json:"submission_id"`
	PollID       int64          `json:"poll_id"`
	ChoiceID     int64          `json:"choice_id"`
	VoterKey     string         `json:"-"`
	AccountID    *uuid.UUID     `json:"user,omitempty"`
	Comment      string         `json:"comment,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
	CreatedAt    time.Time      `json:"created"`
}

// Ballot is what a voter submits in one go. The ledger writes one Vote per
// choice, all sharing comment, data and timestamp.
type Ballot struct {
	PollID    int64
	Voter     VoterIdentity
	ChoiceIDs []int64
	Comment   string
	Data      map[string]any
	CreatedAt time.Time
	// Exclusive asks the ledger to refuse a second submission by the same voter.
	Exclusive bool
}

// Tally is the raw material for Stats.
type Tally struct {
	Submissions int
	PerChoice   map[int64]int
}

type VoteEventType string

const (
	VoteCast    VoteEventType = "vote.cast"
	VoteAmended VoteEventType = "vote.amended"
)

type VoteEvent struct {
	Type       VoteEventType `json:"type"`
	PollID     int64         `json:"poll_id"`
	VoterKey   string        `json:"voter_key"`
	ChoiceIDs  []int64       `json:"choice_ids"`
	OccurredAt time.Time     `json:"occurred_at"`
}
