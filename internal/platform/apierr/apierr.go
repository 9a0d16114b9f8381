package apierr

import (
	"errors"
	"fmt"
	"net/http"

	pkgerrors "github.com/yungbote/crystal-grimoire-backend/internal/pkg/errors"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

func BadRequest(code string, format string, args ...any) *Error {
	return New(http.StatusBadRequest, code, fmt.Errorf("%w: "+format, append([]any{pkgerrors.ErrInvalidArgument}, args...)...))
}

func NotFound(code string, what string) *Error {
	return New(http.StatusNotFound, code, fmt.Errorf("%s %w", what, pkgerrors.ErrNotFound))
}

func Unauthorized() *Error {
	return New(http.StatusUnauthorized, "unauthorized", fmt.Errorf("missing user context: %w", pkgerrors.ErrUnauthorized))
}

func Unavailable(code string, what string) *Error {
	return New(http.StatusServiceUnavailable, code, fmt.Errorf("%s %w", what, pkgerrors.ErrUnavailable))
}

// From resolves err to an *Error, mapping the package sentinels when err is not one already.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae
	}
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		return New(http.StatusNotFound, "not_found", err)
	case errors.Is(err, pkgerrors.ErrUnauthorized):
		return New(http.StatusUnauthorized, "unauthorized", err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		return New(http.StatusBadRequest, "invalid_argument", err)
	case errors.Is(err, pkgerrors.ErrUnavailable):
		return New(http.StatusServiceUnavailable, "unavailable", err)
	default:
		return New(http.StatusInternalServerError, "internal", err)
	}
}
