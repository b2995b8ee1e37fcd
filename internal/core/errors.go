package core

import (
	"errors"
	"fmt"
)

// Sentinel errors for common validation failures.
var (
	ErrInvalidAmount   = &ValidationError{Field: "amount", Message: "amount must be a positive number"}
	ErrInvalidDate     = &ValidationError{Field: "date", Message: "invalid date, expected YYYY-MM-DD"}
	ErrMissingFields   = &ValidationError{Message: "missing required fields"}
	ErrUnknownCategory = &ValidationError{Field: "category_id", Message: "unknown category"}

	ErrInvalidCredentials = &AuthError{Message: "invalid username or password"}
	ErrUsernameTaken      = &ConflictError{Message: "username already taken"}
)

// ValidationError reports malformed or missing input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ConflictError reports a uniqueness violation.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// AuthError reports failed authentication or a missing identity.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// NotFoundError is returned for rows that are missing or owned by someone else.
// Callers cannot tell the two apart.
type NotFoundError struct {
	Resource string
	ID       int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsConflict(err error) bool {
	var target *ConflictError
	return errors.As(err, &target)
}

func IsAuth(err error) bool {
	var target *AuthError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// UserMessage returns a message safe to show to the end user.
func UserMessage(err error) string {
	var (
		ve *ValidationError
		ce *ConflictError
		ae *AuthError
		ne *NotFoundError
	)
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.As(err, &ce):
		return ce.Message
	case errors.As(err, &ae):
		return ae.Message
	case errors.As(err, &ne):
		return "not found"
	}
	return "internal error"
}
