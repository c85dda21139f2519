// Package faults defines the error categories shared by every domain system.
// Domain errors wrap one of the category roots so callers can classify them
// with errors.Is without knowing the originating package.
package faults

import (
	"errors"
	"net/http"
)

var (
	// ErrValidation marks malformed input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a missing entity.
	ErrNotFound = errors.New("not found")
	// ErrForbidden marks an operation the caller is not permitted to perform.
	ErrForbidden = errors.New("forbidden")
	// ErrAlreadyAwarded marks a duplicate trophy under strict commit.
	ErrAlreadyAwarded = errors.New("already awarded")
)

// HTTPStatus maps an error to the status code of its category.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrAlreadyAwarded):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
