package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/casefile/casefile/internal/handler/dto"
	"github.com/casefile/casefile/internal/service"
)

// AccountHandler serves sign-up and login.
type AccountHandler struct {
	accounts *service.AccountService
	logger   *slog.Logger
}

func NewAccountHandler(accounts *service.AccountService, logger *slog.Logger) *AccountHandler {
	return &AccountHandler{accounts: accounts, logger: logger}
}

// SignUp registers a new user. POST /sign_up
func (h *AccountHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req dto.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}

	user, err := h.accounts.SignUp(r.Context(), req.Name, req.Password)
	if err != nil {
		h.handleAccountError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, dto.UserResponse{ID: user.ID, Name: user.Name})
}

// Login verifies credentials and returns a bearer token. POST /login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "INVALID_BODY")
		return
	}

	result, err := h.accounts.Login(r.Context(), req.Name, req.Password)
	if err != nil {
		h.handleAccountError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		UserID:      result.UserID,
		Username:    result.Username,
	})
}

func (h *AccountHandler) handleAccountError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrMissingCredentials):
		writeError(w, http.StatusBadRequest, err.Error(), "MISSING_CREDENTIALS")
	case errors.Is(err, service.ErrInvalidUsername):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_USERNAME")
	case errors.Is(err, service.ErrPasswordTooShort):
		writeError(w, http.StatusBadRequest, err.Error(), "INVALID_PASSWORD")
	case errors.Is(err, service.ErrUsernameTaken):
		writeError(w, http.StatusBadRequest, err.Error(), "USERNAME_TAKEN")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error(), "INVALID_CREDENTIALS")
	default:
		h.logger.Error("account request failed",
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
