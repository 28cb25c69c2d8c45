package domain

import "errors"

var (
	ErrPollNotFound        = errors.New("poll not found")
	ErrInvalidPollID       = errors.New("invalid poll id")
	ErrInvalidPoll         = errors.New("invalid poll data")
	ErrInvalidWindow       = errors.New("end of voting must be after its start")
	ErrDuplicateReference  = errors.New("poll reference already in use")
	ErrDuplicateChoiceCode = errors.New("choice code already used in this poll")
	ErrVoteNotFound        = errors.New("vote not found")
	ErrUnidentifiedVoter   = errors.New("voter identity could not be derived")
	ErrCommentTooLong      = errors.New("comment is too long")
	ErrInvalidToken        = errors.New("invalid or expired access token")
	ErrInternal            = errors.New("internal server error")

	// Admission outcomes. Each one is an expected result of a vote attempt.
	ErrPollClosed       = errors.New("poll is closed")
	ErrPollNotOpen      = errors.New("poll is not open for voting")
	ErrPollNotAnonymous = errors.New("poll does not accept anonymous votes")
	ErrPollNotMultiple  = errors.New("poll accepts a single choice")
	ErrInvalidChoice    = errors.New("invalid choice for this poll")
	ErrAlreadyVoted     = errors.New("voter has already voted")
)
