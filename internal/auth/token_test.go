package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var testSecret = []byte("test-signing-secret")

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, 30*time.Minute, nil)

	tok, err := issuer.Issue(42, "alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	p, err := issuer.Verify(tok)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if p.UserID != 42 {
		t.Errorf("expected user id 42, got %d", p.UserID)
	}
	if p.Name != "alice" {
		t.Errorf("expected name alice, got %q", p.Name)
	}
}

func TestTokenIssuer_ExpiryBoundary(t *testing.T) {
	t.Parallel()

	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ttl := 30 * time.Minute

	issuer := NewTokenIssuer(testSecret, ttl, fixedClock(issuedAt))
	tok, err := issuer.Issue(7, "bob")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	// One second before expiry: valid.
	before := NewTokenIssuer(testSecret, ttl, fixedClock(issuedAt.Add(ttl-time.Second)))
	if _, err := before.Verify(tok); err != nil {
		t.Errorf("token one second before expiry should verify, got %v", err)
	}

	// One second after expiry: rejected as expired.
	after := NewTokenIssuer(testSecret, ttl, fixedClock(issuedAt.Add(ttl+time.Second)))
	if _, err := after.Verify(tok); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, time.Hour, nil)
	tok, err := issuer.Issue(1, "carol")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	other := NewTokenIssuer([]byte("a-different-secret"), time.Hour, nil)
	if _, err := other.Verify(tok); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("expected ErrTokenMalformed for wrong secret, got %v", err)
	}
}

func TestTokenIssuer_Malformed(t *testing.T) {
	t.Parallel()

	issuer := NewTokenIssuer(testSecret, time.Hour, nil)

	for _, tok := range []string{"", "garbage", "not.a.jwt", "a.b"} {
		if _, err := issuer.Verify(tok); !errors.Is(err, ErrTokenMalformed) {
			t.Errorf("Verify(%q): expected ErrTokenMalformed, got %v", tok, err)
		}
	}
}

func TestTokenIssuer_RejectsUnsignedAlg(t *testing.T) {
	t.Parallel()

	// alg=none tokens must never verify, whatever their claims say.
	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "mallory",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: 1,
	})
	tok, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("signing unsigned token: %v", err)
	}

	issuer := NewTokenIssuer(testSecret, time.Hour, nil)
	if _, err := issuer.Verify(tok); !errors.Is(err, ErrTokenMalformed) {
		t.Errorf("expected ErrTokenMalformed for alg=none, got %v", err)
	}
}

func TestTokenIssuer_MissingClaims(t *testing.T) {
	t.Parallel()

	now := time.Now()
	issuer := NewTokenIssuer(testSecret, time.Hour, nil)

	sign := func(t *testing.T, claims Claims) string {
		t.Helper()
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
		if err != nil {
			t.Fatalf("signing token: %v", err)
		}
		return tok
	}

	tests := []struct {
		name   string
		claims Claims
	}{
		{
			name: "no expiry",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{Subject: "dave"},
				UserID:           5,
			},
		},
		{
			name: "zero user id",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "dave",
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				},
			},
		},
		{
			name: "negative user id",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "dave",
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				},
				UserID: -3,
			},
		},
		{
			name: "blank subject",
			claims: Claims{
				RegisteredClaims: jwt.RegisteredClaims{
					Subject:   "   ",
					ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
				},
				UserID: 5,
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := issuer.Verify(sign(t, tt.claims))
			if !errors.Is(err, ErrTokenMissingClaim) {
				t.Errorf("expected ErrTokenMissingClaim, got %v", err)
			}
		})
	}
}
