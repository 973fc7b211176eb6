/**
 * @description
 * This file defines the user domain model. Users own accounts and authenticate
 * with email and password; the password itself never leaves the auth layer,
 * only its bcrypt hash is stored.
 */

package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user of the ledger. It maps directly to the
// `users` table.
type User struct {
	ID             uuid.UUID  `json:"id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"-"`
	IsAdmin        bool       `json:"is_admin"`
	ResetTokenHash *string    `json:"-"`
	ResetTokenDate *time.Time `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// SignupRequest is the DTO for user registration.
type SignupRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginRequest is the DTO for user login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest is the DTO for requesting a password reset token.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest is the DTO for completing a password reset.
type ResetPasswordRequest struct {
	Password string `json:"password"`
}
