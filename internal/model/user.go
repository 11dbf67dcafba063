// Package model defines domain entities for the application.
package model

import "time"

// User is the root of every ownership chain. Name is unique across all users.
type User struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Principal is the authenticated identity extracted from a verified token.
// It carries only what authorization needs; it is never re-resolved against
// the database during request handling.
type Principal struct {
	UserID int64
	Name   string
}
