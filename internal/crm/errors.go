package crm

import (
	"errors"
	"net/http"
)

// Domain errors for CRM operations.
var (
	ErrEntityNotFound  = errors.New("crm record not found")
	ErrInvalidModule   = errors.New("module must be lead or deal")
	ErrTokenExchange   = errors.New("token refresh rejected by authorization server")
	ErrNoToken         = errors.New("no access token available")
	ErrUpstreamFailure = errors.New("crm api request failed")
)

// MapHTTPStatus maps CRM domain errors to appropriate HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrEntityNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrInvalidModule) {
		return http.StatusBadRequest
	}
	if errors.Is(err, ErrNoToken) || errors.Is(err, ErrTokenExchange) {
		return http.StatusBadGateway
	}
	if errors.Is(err, ErrUpstreamFailure) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
