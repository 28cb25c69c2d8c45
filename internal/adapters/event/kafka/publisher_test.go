package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublish(t *testing.T) {
	w := &fakeWriter{}
	p := &Publisher{writer: w}
	at := time.Date(2026, 4, 1, 8, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), domain.VoteEvent{
		Type:       domain.VoteAmended,
		PollID:     12,
		VoterKey:   "ip:10.0.0.1",
		ChoiceIDs:  []int64{3, 4},
		OccurredAt: at,
	})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, "12", string(msg.Key))
	assert.Equal(t, at, msg.Time)
	assert.Equal(t, "vote.amended", string(msg.Headers[0].Value))

	var decoded domain.VoteEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, []int64{3, 4}, decoded.ChoiceIDs)

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishError(t *testing.T) {
	p := &Publisher{writer: &fakeWriter{err: errors.New("leader not available")}}
	err := p.Publish(context.Background(), domain.VoteEvent{PollID: 1})
	assert.ErrorContains(t, err, "leader not available")
}

func TestNewPublisher(t *testing.T) {
	p := NewPublisher([]string{"localhost:9092"}, "votes")
	w, ok := p.writer.(*kafka.Writer)
	require.True(t, ok)
	assert.Equal(t, "votes", w.Topic)
	assert.Equal(t, kafka.RequireAll, w.RequiredAcks)
}
