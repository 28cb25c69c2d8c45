package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net"
	"strings"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

const (
	clientTokenKeyPrefix = "cid:"
	clientIPKeyPrefix    = "ip:"
	hashedKeyMarker      = "h:"
)

type identityResolver struct {
	store ports.VoterStore
}

func NewIdentityResolver(store ports.VoterStore) ports.IdentityResolver {
	return &identityResolver{
		store: store,
	}
}

// Resolve returns the account identity when the caller is authenticated and a
// synthetic one otherwise. Synthetic identities are persisted on first use.
func (r *identityResolver) Resolve(ctx context.Context, ic ports.IdentityContext) (domain.VoterIdentity, error) {
	if ic.AccountID != nil && *ic.AccountID != uuid.Nil {
		return domain.AccountIdentity(*ic.AccountID), nil
	}

	key := SyntheticKey(ic)
	if key == "" {
		return domain.VoterIdentity{}, domain.ErrUnidentifiedVoter
	}

	voter, err := r.store.GetOrCreate(ctx, key)
	if err != nil {
		return domain.VoterIdentity{}, fmt.Errorf("failed to get or create voter: %w", err)
	}

	return domain.SyntheticIdentity(voter.Key), nil
}

// SyntheticKey derives the ledger key of an unauthenticated caller. A client
// token beats the IP address since many clients can share one IP behind NAT.
func SyntheticKey(ic ports.IdentityContext) string {
	if token := strings.TrimSpace(ic.ClientToken); token != "" {
		return boundedKey(clientTokenKeyPrefix, base64.RawURLEncoding.EncodeToString([]byte(token)), token)
	}
	if ip := ClientIP(ic.ForwardedFor, ic.RemoteAddr); ip != "" {
		return boundedKey(clientIPKeyPrefix, ip, ip)
	}
	return ""
}

// ClientIP picks the last X-Forwarded-For entry, the one appended by our own
// proxy, and falls back to the peer address.
func ClientIP(forwardedFor, remoteAddr string) string {
	if forwardedFor != "" {
		entries := strings.Split(forwardedFor, ",")
		if last := strings.TrimSpace(entries[len(entries)-1]); last != "" {
			return last
		}
	}

	remoteAddr = strings.TrimSpace(remoteAddr)
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

func boundedKey(prefix, encoded, raw string) string {
	if len(prefix)+len(encoded) <= domain.MaxVoterKeyLength {
		return prefix + encoded
	}
	sum := sha256.Sum256([]byte(raw))
	return prefix + hashedKeyMarker + base64.RawURLEncoding.EncodeToString(sum[:])
}
