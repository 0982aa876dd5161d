package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"granaia/internal/core"
)

type fakeLoader struct {
	users map[uuid.UUID]core.User
}

func (f *fakeLoader) Get(_ context.Context, id uuid.UUID) (core.User, error) {
	u, ok := f.users[id]
	if !ok {
		return core.User{}, fmt.Errorf("user %s: %w", id, core.ErrNotFound)
	}
	return u, nil
}

const testSecret = "0123456789abcdef0123456789abcdef"

func signToken(t *testing.T, secret, sub string, exp time.Time) string {
	t.Helper()
	claims := jwt.MapClaims{"sub": sub, "exp": exp.Unix()}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestMiddleware(t *testing.T) {
	known := core.User{ID: uuid.New(), Name: "Ana", RemoteJID: "a@s.whatsapp.net"}
	loader := &fakeLoader{users: map[uuid.UUID]core.User{known.ID: known}}
	v := NewVerifier(testSecret, loader)

	var gotUser core.User
	var called bool
	handler := v.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		gotUser, _ = UserFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	future := time.Now().Add(time.Hour)

	cases := []struct {
		name       string
		authHeader string
		wantStatus int
	}{
		{
			name:       "valid token",
			authHeader: "Bearer " + signToken(t, testSecret, known.ID.String(), future),
			wantStatus: http.StatusNoContent,
		},
		{
			name:       "missing header",
			authHeader: "",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "not a bearer scheme",
			authHeader: "Basic abc",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage token",
			authHeader: "Bearer not.a.jwt",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong secret",
			authHeader: "Bearer " + signToken(t, "another-secret-another-secret-xx", known.ID.String(), future),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "expired token",
			authHeader: "Bearer " + signToken(t, testSecret, known.ID.String(), time.Now().Add(-time.Hour)),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "subject is not a uuid",
			authHeader: "Bearer " + signToken(t, testSecret, "user-42", future),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "unknown subject",
			authHeader: "Bearer " + signToken(t, testSecret, uuid.NewString(), future),
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			called = false
			req := httptest.NewRequest(http.MethodGet, "/gastos", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d, got %d", tc.wantStatus, rec.Code)
			}
			if tc.wantStatus == http.StatusNoContent {
				if !called {
					t.Fatal("expected handler to run")
				}
				if gotUser.ID != known.ID {
					t.Fatalf("expected user %s on context, got %s", known.ID, gotUser.ID)
				}
			} else if called {
				t.Fatal("handler ran on a rejected request")
			}
		})
	}
}

func TestUserFromContext(t *testing.T) {
	if _, ok := UserFromContext(context.Background()); ok {
		t.Fatal("expected empty context to carry no user")
	}

	u := core.User{ID: uuid.New()}
	got, ok := UserFromContext(WithUser(context.Background(), u))
	if !ok || got.ID != u.ID {
		t.Fatalf("expected user round-trip, got ok=%v id=%s", ok, got.ID)
	}
}

func TestMiddlewareRejectsNoneAlgorithm(t *testing.T) {
	known := core.User{ID: uuid.New()}
	loader := &fakeLoader{users: map[uuid.UUID]core.User{known.ID: known}}
	v := NewVerifier(testSecret, loader)

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": known.ID.String(),
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/gastos", nil)
	req.Header.Set("Authorization", "Bearer "+s)
	rec := httptest.NewRecorder()
	v.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run")
	})).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
