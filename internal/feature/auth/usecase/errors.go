// Package usecase implements the business logic for the auth feature.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned by a UserRepository when no user matches the email.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned by a UserRepository when the unique email constraint rejects an insert.
	ErrEmailAlreadyExists = errors.New("email already exists")
)
