// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/casefile/casefile/internal/auth"
	"github.com/casefile/casefile/internal/model"
	"github.com/casefile/casefile/internal/repository"
)

// Account service errors.
var (
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidUsername    = errors.New("username must be 3-50 characters")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

const (
	minUsernameLen = 3
	maxUsernameLen = 50
	minPasswordLen = 8
)

// AccountStore is the persistence surface the account service needs.
type AccountStore interface {
	CreateUser(ctx context.Context, name, passwordHash string) (*model.User, error)
	GetUserByName(ctx context.Context, name string) (*model.User, error)
}

// AccountService handles user registration and login.
type AccountService struct {
	store  AccountStore
	hasher *auth.Hasher
	tokens *auth.TokenIssuer

	// decoyDigest is verified against when the username does not exist, so
	// a login against an unknown name costs the same as one against a known
	// name and reveals nothing.
	decoyDigest string
}

// NewAccountService creates an AccountService.
func NewAccountService(store AccountStore, hasher *auth.Hasher, tokens *auth.TokenIssuer) (*AccountService, error) {
	decoy, err := hasher.Hash(context.Background(), "casefile-decoy-credential")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare decoy digest: %w", err)
	}
	return &AccountService{
		store:       store,
		hasher:      hasher,
		tokens:      tokens,
		decoyDigest: decoy,
	}, nil
}

// SignUp registers a new user. The password is hashed through the bounded
// hasher so a burst of registrations cannot monopolize the CPU.
func (s *AccountService) SignUp(ctx context.Context, name, password string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return nil, ErrMissingCredentials
	}
	if len(name) < minUsernameLen || len(name) > maxUsernameLen {
		return nil, ErrInvalidUsername
	}
	if len(password) < minPasswordLen {
		return nil, ErrPasswordTooShort
	}

	digest, err := s.hasher.Hash(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, name, digest)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// LoginResult is what a successful login returns to the caller.
type LoginResult struct {
	AccessToken string
	TokenType   string
	UserID      int64
	Username    string
}

// Login verifies credentials and issues a bearer token. Unknown usernames
// and wrong passwords are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, name, password string) (*LoginResult, error) {
	name = strings.TrimSpace(name)
	if name == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	user, err := s.store.GetUserByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Burn a verification anyway so the timing matches.
			_, _ = s.hasher.Verify(ctx, password, s.decoyDigest)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	match, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &LoginResult{
		AccessToken: token,
		TokenType:   "bearer",
		UserID:      user.ID,
		Username:    user.Name,
	}, nil
}
