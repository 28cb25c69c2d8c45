package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollAdmission(t *testing.T) {
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	end := start.Add(24 * time.Hour)

	tests := []struct {
		name   string
		closed bool
		now    time.Time
		want   error
	}{
		{"inside window", false, start.Add(time.Hour), nil},
		{"at start", false, start, nil},
		{"at end", false, end, nil},
		{"before start", false, start.Add(-time.Nanosecond), ErrPollNotOpen},
		{"after end", false, end.Add(time.Nanosecond), ErrPollNotOpen},
		{"closed inside window", true, start.Add(time.Hour), ErrPollClosed},
		{"closed outside window", true, end.Add(time.Hour), ErrPollClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Poll{IsClosed: tt.closed, StartVotes: start, EndVotes: end}
			assert.Equal(t, tt.want, p.Admission(tt.now))
			assert.Equal(t, tt.want == nil, p.IsOpen(tt.now))
		})
	}
}

func TestPollPredicates(t *testing.T) {
	p := &Poll{IsAnonymous: true, IsMultiple: false, AllowMultiVotes: true}
	assert.True(t, p.AcceptsAnonymous())
	assert.False(t, p.AcceptsMultipleChoices())
	assert.True(t, p.AcceptsRepeatSubmission())
}

func TestChoiceLookup(t *testing.T) {
	p := &Poll{ID: 1, Choices: []Choice{
		{ID: 10, PollID: 1, Text: "Yes", Code: "y"},
		{ID: 11, PollID: 1, Text: "No", Code: "n"},
	}}

	c, ok := p.ChoiceByID(11)
	require.True(t, ok)
	assert.Equal(t, "No", c.Text)

	c, ok = p.ChoiceByCode("y")
	require.True(t, ok)
	assert.Equal(t, int64(10), c.ID)

	_, ok = p.ChoiceByCode("Y")
	assert.False(t, ok)
	_, ok = p.ChoiceByID(12)
	assert.False(t, ok)
}

func TestNewWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("defaults", func(t *testing.T) {
		s, e, err := NewWindow(nil, nil, now)
		require.NoError(t, err)
		assert.Equal(t, now, s)
		assert.Equal(t, now.Add(DefaultVotingPeriod), e)
	})

	t.Run("end follows explicit start", func(t *testing.T) {
		start := now.Add(48 * time.Hour)
		s, e, err := NewWindow(&start, nil, now)
		require.NoError(t, err)
		assert.Equal(t, start, s)
		assert.Equal(t, start.Add(10*24*time.Hour), e)
	})

	t.Run("end not after start", func(t *testing.T) {
		end := now
		_, _, err := NewWindow(nil, &end, now)
		assert.ErrorIs(t, err, ErrInvalidWindow)
	})
}
