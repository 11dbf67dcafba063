// Package auth provides credential hashing and bearer-token handling.
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (OWASP 2024 recommended minimum).
const (
	argon2Time    = 3
	argon2Memory  = 64 * 1024 // 64 MB
	argon2Threads = 4
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

// ErrIncompatibleVersion indicates the digest was produced by an argon2
// version this build cannot verify.
var ErrIncompatibleVersion = errors.New("incompatible argon2 version")

// Hasher computes and verifies Argon2id password digests. Both operations
// are CPU- and memory-heavy, so the hasher bounds how many may run at once:
// a burst of sign-ups queues on the semaphore instead of starving every
// other request of CPU.
type Hasher struct {
	sem chan struct{}
}

// NewHasher creates a Hasher allowing at most maxConcurrent simultaneous
// digest computations. Values below one fall back to GOMAXPROCS.
func NewHasher(maxConcurrent int) *Hasher {
	if maxConcurrent < 1 {
		maxConcurrent = runtime.GOMAXPROCS(0)
	}
	return &Hasher{sem: make(chan struct{}, maxConcurrent)}
}

// acquire takes a computation slot, honoring context cancellation while
// waiting.
func (h *Hasher) acquire(ctx context.Context) error {
	select {
	case h.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Hasher) release() { <-h.sem }

// Hash creates an Argon2id digest of the given password with a fresh random
// salt. Returns the digest in PHC string format:
// $argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
func (h *Hasher) Hash(ctx context.Context, password string) (string, error) {
	if err := h.acquire(ctx); err != nil {
		return "", err
	}
	defer h.release()

	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	hash := argon2.IDKey(
		[]byte(password),
		salt,
		argon2Time,
		argon2Memory,
		argon2Threads,
		argon2KeyLen,
	)

	b64Salt := base64.RawStdEncoding.EncodeToString(salt)
	b64Hash := base64.RawStdEncoding.EncodeToString(hash)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argon2Memory,
		argon2Time,
		argon2Threads,
		b64Salt,
		b64Hash,
	), nil
}

// Verify checks the password against a stored digest using constant-time
// comparison. A malformed digest yields (false, nil) rather than an error:
// callers must not be able to tell a bad digest from a wrong password. The
// error return is reserved for context cancellation while queued.
func (h *Hasher) Verify(ctx context.Context, password, encodedHash string) (bool, error) {
	params, salt, expectedHash, err := parseDigest(encodedHash)
	if err != nil {
		return false, nil
	}

	if err := h.acquire(ctx); err != nil {
		return false, err
	}
	defer h.release()

	computedHash := argon2.IDKey(
		[]byte(password),
		salt,
		params.time,
		params.memory,
		params.threads,
		uint32(len(expectedHash)),
	)

	return subtle.ConstantTimeCompare(computedHash, expectedHash) == 1, nil
}

type digestParams struct {
	memory  uint32
	time    uint32
	threads uint8
}

// parseDigest splits a PHC-format argon2id string into its parameters,
// salt, and raw hash.
func parseDigest(encodedHash string) (digestParams, []byte, []byte, error) {
	parts := strings.Split(encodedHash, "$")
	if len(parts) != 6 {
		return digestParams{}, nil, nil, errors.New("invalid digest format")
	}

	if parts[1] != "argon2id" {
		return digestParams{}, nil, nil, errors.New("unsupported digest algorithm")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return digestParams{}, nil, nil, errors.New("invalid digest version")
	}
	if version != argon2.Version {
		return digestParams{}, nil, nil, ErrIncompatibleVersion
	}

	var p digestParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &p.threads); err != nil {
		return digestParams{}, nil, nil, errors.New("invalid digest parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return digestParams{}, nil, nil, errors.New("invalid digest salt")
	}

	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return digestParams{}, nil, nil, errors.New("invalid digest hash")
	}
	if len(hash) < 16 {
		return digestParams{}, nil, nil, errors.New("digest hash too short")
	}

	return p, salt, hash, nil
}
