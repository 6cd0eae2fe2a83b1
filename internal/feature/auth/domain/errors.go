// Package domain defines domain-level errors and credential rules for the auth feature.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// User-facing messages. They are part of the HTTP compatibility contract.
const (
	MsgBlankUsername        = "Username cannot be blank"
	MsgInvalidEmail         = "Provide a valid email"
	MsgWeakPassword         = "Password requires at least 8 characters, with numbers, upper and lower case letters and special characters"
	MsgMalformedBody        = "Malformed request body"
	MsgMissingCredentials   = "Full authentication is required to access this resource"
	MsgAuthenticationFailed = "Email or password is incorrect"
)

// Domain errors for authentication operations.
// These are expected outcomes and are rendered by the HTTP error mapper, never logged as incidents.
var (
	// ErrMissingCredentials indicates that a protected resource was requested without Basic credentials.
	ErrMissingCredentials = errors.New(MsgMissingCredentials)

	// ErrAuthenticationFailed indicates that the identifier is unknown or the secret does not match.
	// Both cases are deliberately indistinguishable.
	ErrAuthenticationFailed = errors.New(MsgAuthenticationFailed)
)

// ValidationError carries every rule violation found in a signup request.
type ValidationError struct {
	Messages []string
}

// NewValidationError returns a ValidationError for the given messages.
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Messages: messages}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Messages, "; ")
}

// DuplicateUserError is returned during signup when the email is already registered.
type DuplicateUserError struct {
	Email string
}

func (e *DuplicateUserError) Error() string {
	return fmt.Sprintf("%s already registered.", e.Email)
}
