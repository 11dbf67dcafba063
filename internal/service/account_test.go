package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/casefile/casefile/internal/auth"
	"github.com/casefile/casefile/internal/testutil"
)

func newAccountService(t *testing.T) (*AccountService, *testutil.MemStore) {
	t.Helper()

	store := testutil.NewMemStore()
	hasher := auth.NewHasher(2)
	tokens := auth.NewTokenIssuer([]byte("test-secret"), 30*time.Minute, nil)

	svc, err := NewAccountService(store, hasher, tokens)
	if err != nil {
		t.Fatalf("NewAccountService failed: %v", err)
	}
	return svc, store
}

func TestAccountService_SignUpThenLogin(t *testing.T) {
	t.Parallel()

	svc, _ := newAccountService(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "alice", "a-long-password")
	if err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}
	if user.ID == 0 {
		t.Error("expected user to get an id")
	}
	if user.PasswordHash == "a-long-password" {
		t.Error("password must not be stored in plaintext")
	}

	result, err := svc.Login(ctx, "alice", "a-long-password")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.TokenType != "bearer" {
		t.Errorf("expected token type bearer, got %q", result.TokenType)
	}
	if result.UserID != user.ID || result.Username != "alice" {
		t.Errorf("unexpected login result: %+v", result)
	}

	// Token claims must decode back to the created user.
	tokens := auth.NewTokenIssuer([]byte("test-secret"), 30*time.Minute, nil)
	p, err := tokens.Verify(result.AccessToken)
	if err != nil {
		t.Fatalf("issued token did not verify: %v", err)
	}
	if p.UserID != user.ID || p.Name != "alice" {
		t.Errorf("token principal = %+v, want id %d name alice", p, user.ID)
	}
}

func TestAccountService_SignUpValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newAccountService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		wantErr  error
	}{
		{"empty name", "", "a-long-password", ErrMissingCredentials},
		{"blank name", "   ", "a-long-password", ErrMissingCredentials},
		{"empty password", "alice", "", ErrMissingCredentials},
		{"name too short", "ab", "a-long-password", ErrInvalidUsername},
		{"name too long", string(make([]byte, 51)), "a-long-password", ErrInvalidUsername},
		{"password too short", "alice", "short", ErrPasswordTooShort},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tt.username, tt.password)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("SignUp(%q) error = %v, want %v", tt.username, err, tt.wantErr)
			}
		})
	}
}

func TestAccountService_DuplicateUsername(t *testing.T) {
	t.Parallel()

	svc, _ := newAccountService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "alice", "a-long-password"); err != nil {
		t.Fatalf("first SignUp failed: %v", err)
	}

	_, err := svc.SignUp(ctx, "alice", "another-password")
	if !errors.Is(err, ErrUsernameTaken) {
		t.Errorf("expected ErrUsernameTaken, got %v", err)
	}
}

func TestAccountService_LoginFailures(t *testing.T) {
	t.Parallel()

	svc, _ := newAccountService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "alice", "a-long-password"); err != nil {
		t.Fatalf("SignUp failed: %v", err)
	}

	t.Run("missing fields", func(t *testing.T) {
		for _, creds := range [][2]string{{"", "pw"}, {"alice", ""}, {"  ", "pw"}} {
			_, err := svc.Login(ctx, creds[0], creds[1])
			if !errors.Is(err, ErrMissingCredentials) {
				t.Errorf("Login(%q, %q) error = %v, want ErrMissingCredentials", creds[0], creds[1], err)
			}
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "alice", "wrong-password")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials, got %v", err)
		}
	})

	t.Run("unknown user indistinguishable from wrong password", func(t *testing.T) {
		_, err := svc.Login(ctx, "nobody", "whatever-password")
		if !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
		}
	})
}
