// Package usecase implements the directory service over user records.
package usecase

import "errors"

var (
	// ErrUserNotFound is returned by stores when no user matches.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailAlreadyExists is returned by stores when the email is taken.
	ErrEmailAlreadyExists = errors.New("email already exists")
)
