package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/quickpolls/internal/core/ports"
)

type contextKey string

const (
	claimsKey      contextKey = "claims"
	clientTokenKey contextKey = "client_token"

	accessTokenCookie = "access_token"
	clientIDHeader    = "X-Client-Id"
	clientIDMaxAge    = 365 * 24 * time.Hour
)

type IdentityMiddleware struct {
	auth           ports.AuthService
	clientIDCookie string
}

func NewIdentityMiddleware(auth ports.AuthService, clientIDCookie string) *IdentityMiddleware {
	return &IdentityMiddleware{
		auth:           auth,
		clientIDCookie: clientIDCookie,
	}
}

// Identify attaches whatever the request tells about its caller: verified
// account claims, if any, and the client token it sent. Callers without a
// client token get one as a cookie for their next requests, but this request
// is identified by its address. An invalid access token is ignored and the
// caller is treated as anonymous.
func (m *IdentityMiddleware) Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if token := accessToken(r); token != "" && m.auth != nil {
			claims, err := m.auth.VerifyAccessToken(token)
			if err != nil {
				slog.Debug("ignoring access token", "error", err)
			} else {
				ctx = context.WithValue(ctx, claimsKey, claims)
			}
		}

		clientToken := strings.TrimSpace(r.Header.Get(clientIDHeader))
		if clientToken == "" && m.clientIDCookie != "" {
			if c, err := r.Cookie(m.clientIDCookie); err == nil {
				clientToken = strings.TrimSpace(c.Value)
			} else {
				http.SetCookie(w, &http.Cookie{
					Name:     m.clientIDCookie,
					Value:    uuid.NewString(),
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
					MaxAge:   int(clientIDMaxAge.Seconds()),
				})
			}
		}
		ctx = context.WithValue(ctx, clientTokenKey, clientToken)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin lets only verified accounts with the admin role through.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(claimsKey).(*ports.AccountClaims)
		if !ok {
			http.Error(w, "Unauthorized: missing access token", http.StatusUnauthorized)
			return
		}
		if !claims.Admin {
			http.Error(w, "Forbidden: admin role required", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func accessToken(r *http.Request) string {
	if c, err := r.Cookie(accessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return ""
}

// identityContext collects what the identity resolver needs from a request.
func identityContext(r *http.Request) ports.IdentityContext {
	ic := ports.IdentityContext{
		ForwardedFor: r.Header.Get("X-Forwarded-For"),
		RemoteAddr:   r.RemoteAddr,
	}
	if claims, ok := r.Context().Value(claimsKey).(*ports.AccountClaims); ok {
		id := claims.AccountID
		ic.AccountID = &id
	}
	if token, ok := r.Context().Value(clientTokenKey).(string); ok {
		ic.ClientToken = token
	}
	return ic
}
