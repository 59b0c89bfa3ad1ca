package repositories

import "errors"

// Domain-specific repository errors
var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrUsernameTaken is returned when creating a user whose username is already in use
	ErrUsernameTaken = errors.New("username already taken")

	// ErrInvalidUsername is returned when a username does not satisfy the provider's format rules
	ErrInvalidUsername = errors.New("invalid username")
)
