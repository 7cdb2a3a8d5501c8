package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrConflict      = errors.New("active job already exists")
	ErrInvalidStatus = errors.New("invalid status for operation")
	ErrInvalidInput  = errors.New("invalid input")
	ErrNoCredentials = errors.New("gateway credentials not configured")
)
