package enrichcache

import (
	"errors"
	"net/http"
)

// Domain errors for cache operations.
var (
	ErrNotFound  = errors.New("cache entry not found")
	ErrDuplicate = errors.New("cache entry already exists")
	ErrCorrupt   = errors.New("cache entry is corrupt")
)

// MapHTTPStatus maps cache domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrCorrupt) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrDuplicate) {
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
