package prompts

import (
	"errors"
	"net/http"
)

// Domain errors for prompt template operations.
var (
	ErrNotFound           = errors.New("prompt template not found")
	ErrDuplicate          = errors.New("prompt template already exists")
	ErrUnknownKey         = errors.New("unknown prompt template key")
	ErrMissingPlaceholder = errors.New("template is missing a required placeholder")
)

// MapHTTPStatus maps prompt domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrUnknownKey) || errors.Is(err, ErrMissingPlaceholder) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
