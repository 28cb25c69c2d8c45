package services

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/quickpolls/internal/core/domain"
)

func TestVerifyAccessToken(t *testing.T) {
	svc := NewAuthService("test-secret")
	accountID := uuid.New()

	token, err := svc.IssueAccessToken(accountID, false, 15*time.Minute)
	require.NoError(t, err)

	claims, err := svc.VerifyAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, accountID, claims.AccountID)
	assert.False(t, claims.Admin)

	admin, err := svc.IssueAccessToken(accountID, true, 15*time.Minute)
	require.NoError(t, err)
	claims, err = svc.VerifyAccessToken(admin)
	require.NoError(t, err)
	assert.True(t, claims.Admin)
}

func TestVerifyAccessTokenRejects(t *testing.T) {
	svc := NewAuthService("test-secret")

	sign := func(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
		t.Helper()
		s, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return s
	}
	valid := func() jwt.MapClaims {
		return jwt.MapClaims{"sub": uuid.NewString(), "exp": time.Now().Add(time.Minute).Unix()}
	}

	tests := []struct {
		name  string
		token func(t *testing.T) string
	}{
		{"garbage", func(t *testing.T) string { return "not-a-token" }},
		{"wrong secret", func(t *testing.T) string { return sign(t, jwt.SigningMethodHS256, []byte("other"), valid()) }},
		{"expired", func(t *testing.T) string {
			c := valid()
			c["exp"] = time.Now().Add(-time.Minute).Unix()
			return sign(t, jwt.SigningMethodHS256, []byte("test-secret"), c)
		}},
		{"no expiry", func(t *testing.T) string {
			c := valid()
			delete(c, "exp")
			return sign(t, jwt.SigningMethodHS256, []byte("test-secret"), c)
		}},
		{"unsigned", func(t *testing.T) string {
			return sign(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid())
		}},
		{"other hmac", func(t *testing.T) string { return sign(t, jwt.SigningMethodHS512, []byte("test-secret"), valid()) }},
		{"subject not a uuid", func(t *testing.T) string {
			c := valid()
			c["sub"] = "alice"
			return sign(t, jwt.SigningMethodHS256, []byte("test-secret"), c)
		}},
		{"no subject", func(t *testing.T) string {
			c := valid()
			delete(c, "sub")
			return sign(t, jwt.SigningMethodHS256, []byte("test-secret"), c)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.VerifyAccessToken(tt.token(t))
			assert.ErrorIs(t, err, domain.ErrInvalidToken)
		})
	}
}

func TestAuthServiceWithoutSecret(t *testing.T) {
	svc := NewAuthService("")

	_, err := svc.IssueAccessToken(uuid.New(), false, time.Minute)
	assert.Error(t, err)

	_, err = svc.VerifyAccessToken("anything")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}
