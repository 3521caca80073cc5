package marketing

import (
	"errors"
	"net/http"
)

// Domain errors for marketing corpus operations.
var (
	ErrNotFound    = errors.New("marketing material not found")
	ErrDuplicate   = errors.New("marketing material already exists")
	ErrEmptyCorpus = errors.New("marketing corpus is empty")
	ErrNoMaterials = errors.New("no materials provided")
)

// MapHTTPStatus maps marketing domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	if errors.Is(err, ErrNoMaterials) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrEmptyCorpus) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
