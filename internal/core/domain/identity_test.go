package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestVoterIdentity(t *testing.T) {
	var zero VoterIdentity
	assert.True(t, zero.IsZero())
	assert.False(t, zero.IsAccount())

	id := uuid.New()
	account := AccountIdentity(id)
	assert.Equal(t, AccountKind, account.Kind())
	assert.Equal(t, "account:"+id.String(), account.Key())
	got, ok := account.AccountID()
	assert.True(t, ok)
	assert.Equal(t, id, got)

	synthetic := SyntheticIdentity("ip:10.0.0.1")
	assert.Equal(t, SyntheticKind, synthetic.Kind())
	assert.False(t, synthetic.IsAccount())
	_, ok = synthetic.AccountID()
	assert.False(t, ok)
	assert.Equal(t, "synthetic(ip:10.0.0.1)", synthetic.String())

	assert.NotEqual(t, account.Key(), SyntheticIdentity(id.String()).Key())
}
