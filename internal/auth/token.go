package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/casefile/casefile/internal/model"
)

// Token verification failure kinds. Every one maps to 401 at the HTTP
// boundary; they are distinguished only for logging.
var (
	ErrTokenMalformed    = errors.New("token malformed or badly signed")
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenMissingClaim = errors.New("token missing required claim")
)

// Claims is the fixed shape of every issued token: subject (username),
// numeric user id, issued-at, and absolute expiry. Verification is total
// over these fields; there is no open claim map.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"user_id"`
}

// TokenIssuer creates and verifies HS256 bearer tokens. The signing secret
// is process-wide configuration loaded once at startup; rotating it
// invalidates all outstanding tokens. There is no revocation state: expiry
// is the only terminal transition, evaluated lazily at verification time.
type TokenIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenIssuer builds a TokenIssuer from the signing secret and token
// lifetime. now is the clock used for issued-at and expiry checks; pass nil
// for time.Now.
func NewTokenIssuer(secret []byte, ttl time.Duration, now func() time.Time) *TokenIssuer {
	if now == nil {
		now = time.Now
	}
	return &TokenIssuer{secret: secret, ttl: ttl, now: now}
}

// Issue signs a token for the given user, expiring one TTL from now.
func (t *TokenIssuer) Issue(userID int64, username string) (string, error) {
	issuedAt := t.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(t.ttl)),
		},
		UserID: userID,
	})
	return token.SignedString(t.secret)
}

// Verify validates a token string and extracts the authenticated principal.
// It is a pure function of (token, secret, clock): no stored state is read
// or written. A token passes only when the HS256 signature checks, the
// expiry claim is present and in the future, the user id is positive, and
// the subject is non-empty after trimming.
func (t *TokenIssuer) Verify(tokenString string) (model.Principal, error) {
	claims := &Claims{}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)

	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return t.secret, nil
	})
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return model.Principal{}, ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
		return model.Principal{}, ErrTokenMissingClaim
	case err != nil:
		return model.Principal{}, ErrTokenMalformed
	case !token.Valid:
		return model.Principal{}, ErrTokenMalformed
	}

	name := strings.TrimSpace(claims.Subject)
	if claims.UserID <= 0 || name == "" {
		return model.Principal{}, ErrTokenMissingClaim
	}

	return model.Principal{UserID: claims.UserID, Name: name}, nil
}
