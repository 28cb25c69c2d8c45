package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

const adminRole = "admin"

// AuthService checks access tokens issued by the account service. Issuing
// tokens for real users happens elsewhere; IssueAccessToken exists for tooling
// and tests.
type AuthService struct {
	jwtSecret []byte
}

func NewAuthService(jwtSecret string) *AuthService {
	return &AuthService{
		jwtSecret: []byte(jwtSecret),
	}
}

func (s *AuthService) VerifyAccessToken(token string) (*ports.AccountClaims, error) {
	if len(s.jwtSecret) == 0 {
		return nil, fmt.Errorf("%w: no signing secret configured", domain.ErrInvalidToken)
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.jwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}

	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return nil, fmt.Errorf("%w: missing subject", domain.ErrInvalidToken)
	}
	accountID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("%w: subject is not an account id", domain.ErrInvalidToken)
	}

	role, _ := claims["role"].(string)
	return &ports.AccountClaims{
		AccountID: accountID,
		Admin:     role == adminRole,
	}, nil
}

func (s *AuthService) IssueAccessToken(accountID uuid.UUID, admin bool, ttl time.Duration) (string, error) {
	if len(s.jwtSecret) == 0 {
		return "", errors.New("no signing secret configured")
	}

	claims := jwt.MapClaims{
		"sub": accountID.String(),
		"exp": time.Now().Add(ttl).Unix(),
		"iat": time.Now().Unix(),
	}
	if admin {
		claims["role"] = adminRole
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
