// Package auth verifies bearer tokens and resolves the authenticated
// user. Token issuance happens upstream; this side only trusts and
// decodes.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"granaia/internal/core"
)

type ctxKey string

const userKey ctxKey = "authenticated_user"

// UserLoader resolves a user id to the stored account.
type UserLoader interface {
	Get(ctx context.Context, id uuid.UUID) (core.User, error)
}

// Verifier checks HS256 bearer tokens and attaches the authenticated
// user to the request context.
type Verifier struct {
	secret []byte
	users  UserLoader
}

func NewVerifier(secret string, users UserLoader) *Verifier {
	return &Verifier{secret: []byte(secret), users: users}
}

// Middleware rejects requests without a valid token with 401. On
// success the full user row rides on the context, so downstream gates
// see the current premium state, not the one at token issuance.
func (v *Verifier) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := r.Header.Get("Authorization")
		if h == "" || !strings.HasPrefix(h, "Bearer ") {
			unauthorized(w, "missing bearer token")
			return
		}

		tokenStr := strings.TrimPrefix(h, "Bearer ")
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return v.secret, nil
		})
		if err != nil || !token.Valid {
			unauthorized(w, "invalid token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			unauthorized(w, "invalid claims")
			return
		}
		sub, err := claims.GetSubject()
		if err != nil || sub == "" {
			unauthorized(w, "missing subject")
			return
		}
		uid, err := uuid.Parse(sub)
		if err != nil {
			unauthorized(w, "invalid subject")
			return
		}

		user, err := v.users.Get(r.Context(), uid)
		if err != nil {
			slog.WarnContext(r.Context(), "Token subject does not resolve", "sub", sub, "error", err)
			unauthorized(w, "unknown user")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the authenticated user, if any.
func UserFromContext(ctx context.Context) (core.User, bool) {
	u, ok := ctx.Value(userKey).(core.User)
	return u, ok
}

// WithUser returns a context carrying the given user. Test helper and
// escape hatch for internal callers.
func WithUser(ctx context.Context, u core.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"message": message,
	})
}
