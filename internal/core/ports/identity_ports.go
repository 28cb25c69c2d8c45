package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
)

// IdentityContext is everything the transport knows about who is calling.
type IdentityContext struct {
	AccountID    *uuid.UUID
	ForwardedFor string
	RemoteAddr   string
	ClientToken  string
}

type VoterStore interface {
	// GetOrCreate returns the voter stored under key, creating it on first use.
	// Concurrent callers with the same key all get the same voter.
	GetOrCreate(ctx context.Context, key string) (*domain.Voter, error)
}

type IdentityResolver interface {
	Resolve(ctx context.Context, ic IdentityContext) (domain.VoterIdentity, error)
}
