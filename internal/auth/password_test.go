package auth

import (
	"context"
	"strings"
	"testing"
)

func TestHasher_HashFormat(t *testing.T) {
	t.Parallel()

	h := NewHasher(2)

	hash, err := h.Hash(context.Background(), "correct horse battery staple")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// PHC format: $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Errorf("digest should be in PHC format, got: %s", hash)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("digest should have 6 parts, got: %d", len(parts))
	}
	if parts[3] != "m=65536,t=3,p=4" {
		t.Errorf("expected m=65536,t=3,p=4, got: %s", parts[3])
	}
}

func TestHasher_SaltUniqueness(t *testing.T) {
	t.Parallel()

	h := NewHasher(2)
	ctx := context.Background()
	password := "the_same_password_12345"

	hash1, err := h.Hash(ctx, password)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	hash2, err := h.Hash(ctx, password)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	// Same password must produce different digests (random salt)
	if hash1 == hash2 {
		t.Error("same password should produce different digests")
	}

	match1, _ := h.Verify(ctx, password, hash1)
	match2, _ := h.Verify(ctx, password, hash2)
	if !match1 || !match2 {
		t.Error("both digests should verify correctly")
	}
}

func TestHasher_Verify(t *testing.T) {
	t.Parallel()

	h := NewHasher(2)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "right-password")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}

	match, err := h.Verify(ctx, "right-password", hash)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !match {
		t.Error("correct password should match")
	}

	match, err = h.Verify(ctx, "wrong-password", hash)
	if err != nil {
		t.Fatalf("Verify should not error on wrong password: %v", err)
	}
	if match {
		t.Error("wrong password should not match")
	}
}

func TestHasher_VerifyMalformedDigest(t *testing.T) {
	t.Parallel()

	h := NewHasher(2)
	ctx := context.Background()

	// A malformed digest must behave like a wrong password, never error.
	tests := []struct {
		name   string
		digest string
	}{
		{"empty", ""},
		{"not a digest", "not-a-digest"},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA"},
		{"wrong version", "$argon2id$v=18$m=65536,t=3,p=4$c2FsdA$aGFzaA"},
		{"bad base64 salt", "$argon2id$v=19$m=65536,t=3,p=4$!!!$aGFzaA"},
		{"truncated", "$argon2id$v=19$m=65536"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			match, err := h.Verify(ctx, "whatever", tt.digest)
			if err != nil {
				t.Fatalf("Verify returned error for malformed digest: %v", err)
			}
			if match {
				t.Error("malformed digest must never match")
			}
		})
	}
}

func TestHasher_HashCancelledContext(t *testing.T) {
	t.Parallel()

	// Single slot, held by a pending acquire from a filled semaphore.
	h := NewHasher(1)
	h.sem <- struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := h.Hash(ctx, "pw"); err == nil {
		t.Fatal("expected context error while waiting for a slot")
	}
}
