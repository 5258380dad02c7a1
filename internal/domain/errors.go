package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrUsernameTaken = errors.New("username already exists")
)

// ErrForbidden is returned when a user acts on a job they do not own.
var ErrForbidden = errors.New("forbidden")

// ErrInvalidCredentials covers both unknown users and wrong passwords.
var ErrInvalidCredentials = errors.New("invalid username or password")
