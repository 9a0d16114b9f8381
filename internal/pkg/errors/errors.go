package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when no caller identity is attached to the request.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrUnavailable marks an optional collaborator (AI model, cache, bucket) that is not configured.
	ErrUnavailable = errors.New("unavailable")
)
