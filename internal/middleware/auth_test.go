package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/casefile/casefile/internal/auth"
)

func newAuthMiddleware(t *testing.T, issuer *auth.TokenIssuer) func(http.Handler) http.Handler {
	t.Helper()
	return Auth(AuthConfig{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Tokens: issuer,
	})
}

func principalEcho(t *testing.T) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := auth.MustPrincipalFromContext(r.Context())
		if p.UserID != 42 || p.Name != "alice" {
			t.Errorf("unexpected principal: %+v", p)
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuth_ValidToken(t *testing.T) {
	t.Parallel()

	issuer := auth.NewTokenIssuer([]byte("secret"), time.Hour, nil)
	tok, err := issuer.Issue(42, "alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	handler := newAuthMiddleware(t, issuer)(principalEcho(t))

	req := httptest.NewRequest(http.MethodGet, "/home/categories", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestAuth_Failures(t *testing.T) {
	t.Parallel()

	issuer := auth.NewTokenIssuer([]byte("secret"), time.Hour, nil)

	expired := auth.NewTokenIssuer([]byte("secret"), -time.Hour, nil)
	expiredTok, err := expired.Issue(42, "alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	otherSecret := auth.NewTokenIssuer([]byte("other"), time.Hour, nil)
	forgedTok, err := otherSecret.Issue(42, "alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic dXNlcjpwYXNz"},
		{"garbage token", "Bearer not.a.token"},
		{"expired token", "Bearer " + expiredTok},
		{"wrong secret", "Bearer " + forgedTok},
	}

	var body string
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			handler := newAuthMiddleware(t, issuer)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("handler should not be reached")
			}))

			req := httptest.NewRequest(http.MethodGet, "/home/categories", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("expected 401, got %d", rec.Code)
			}

			// Every failure kind must produce an identical response body.
			if body == "" {
				body = rec.Body.String()
			} else if rec.Body.String() != body {
				t.Errorf("auth failure bodies differ: %q vs %q", rec.Body.String(), body)
			}
		})
	}
}
