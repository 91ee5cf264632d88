// Package dto defines request/response payloads and their validation.
// Validation is explicit: each request type exposes a Validate method
// returning field-level messages, invoked at the top of its handler.
package dto

import (
	"strings"

	"github.com/ticklist/ticklist/internal/model"
)

// Validation limits.
const (
	// MaxUsernameLength bounds usernames to something sane for display.
	MaxUsernameLength = 64
	// MaxPasswordLength bounds the argon2 input size.
	MaxPasswordLength = 512
)

// FieldErrors maps field names to validation messages.
type FieldErrors map[string]string

// ErrorsResponse is the envelope for validation and credential errors.
type ErrorsResponse struct {
	Errors FieldErrors `json:"errors"`
}

// ErrorResponse is the envelope for non-field errors (404, 500, ...).
type ErrorResponse struct {
	Error string `json:"error"`
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// ToUserResponse converts a user model to its public representation.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID, Username: u.Username}
}

// SignInRequest is the payload for POST /api/session.
type SignInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate normalizes and validates the sign-in payload.
// The username is trimmed; the password is taken verbatim.
func (r *SignInRequest) Validate() FieldErrors {
	errs := make(FieldErrors)

	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		errs["username"] = "username is required"
	} else if len(r.Username) > MaxUsernameLength {
		errs["username"] = "username is too long"
	}

	if r.Password == "" {
		errs["password"] = "password is required"
	} else if len(r.Password) > MaxPasswordLength {
		errs["password"] = "password is too long"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

// SignUpRequest is the payload for POST /api/user.
type SignUpRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
}

// Validate normalizes and validates the sign-up payload.
func (r *SignUpRequest) Validate() FieldErrors {
	errs := make(FieldErrors)

	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		errs["username"] = "username is required"
	} else if len(r.Username) > MaxUsernameLength {
		errs["username"] = "username is too long"
	}

	if r.Password == "" {
		errs["password"] = "password is required"
	} else if len(r.Password) > MaxPasswordLength {
		errs["password"] = "password is too long"
	}

	if r.ConfirmPassword == "" {
		errs["confirmPassword"] = "confirmPassword is required"
	} else if r.Password != "" && r.Password != r.ConfirmPassword {
		errs["confirmPassword"] = "passwords do not match"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
