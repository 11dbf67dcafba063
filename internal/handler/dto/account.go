// Package dto defines request and response shapes for the HTTP API.
package dto

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SignUpRequest is the body of POST /sign_up.
type SignUpRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// UserResponse is returned after a successful sign-up.
type UserResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
}
