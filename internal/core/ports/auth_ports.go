package ports

import (
	"github.com/google/uuid"
)

type AccountClaims struct {
	AccountID uuid.UUID
	Admin     bool
}

type AuthService interface {
	VerifyAccessToken(token string) (*AccountClaims, error)
}
