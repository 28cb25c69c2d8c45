package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxVoterKeyLength bounds synthetic identity keys, prefix included.
const MaxVoterKeyLength = 64

const accountKeyPrefix = "account:"

type IdentityKind int

const (
	AccountKind IdentityKind = iota + 1
	SyntheticKind
)

func (k IdentityKind) String() string {
	switch k {
	case AccountKind:
		return "account"
	case SyntheticKind:
		return "synthetic"
	default:
		return "unknown"
	}
}

// VoterIdentity is either a registered account or a synthetic identity derived
// from client metadata. The zero value identifies nobody.
type VoterIdentity struct {
	kind    IdentityKind
	account uuid.UUID
	key     string
}

func AccountIdentity(id uuid.UUID) VoterIdentity {
	return VoterIdentity{kind: AccountKind, account: id, key: accountKeyPrefix + id.String()}
}

func SyntheticIdentity(key string) VoterIdentity {
	return VoterIdentity{kind: SyntheticKind, key: key}
}

func (v VoterIdentity) Kind() IdentityKind { return v.kind }

func (v VoterIdentity) IsZero() bool { return v.kind == 0 }

func (v VoterIdentity) IsAccount() bool { return v.kind == AccountKind }

// AccountID returns the account behind the identity, if there is one.
func (v VoterIdentity) AccountID() (uuid.UUID, bool) {
	if v.kind != AccountKind {
		return uuid.Nil, false
	}
	return v.account, true
}

// Key is what the ledger stores and deduplicates on.
func (v VoterIdentity) Key() string { return v.key }

func (v VoterIdentity) String() string {
	return v.kind.String() + "(" + v.key + ")"
}

// Voter is a persisted synthetic identity.
type Voter struct {
	ID        int64     `json:"id"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
}
