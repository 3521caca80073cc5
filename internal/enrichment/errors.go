package enrichment

import (
	"errors"
	"net/http"

	"github.com/tbdc/leadscope/internal/analysis"
	"github.com/tbdc/leadscope/internal/crm"
	"github.com/tbdc/leadscope/internal/scrape"
)

// MapHTTPStatus maps pipeline errors to appropriate HTTP status codes.
// CRM errors keep their own mapping so a missing record surfaces as 404.
func MapHTTPStatus(err error) int {
	if errors.Is(err, crm.ErrEntityNotFound) ||
		errors.Is(err, crm.ErrInvalidModule) ||
		errors.Is(err, crm.ErrNoToken) ||
		errors.Is(err, crm.ErrUpstreamFailure) {
		return crm.MapHTTPStatus(err)
	}
	if errors.Is(err, scrape.ErrInvalidURL) {
		return http.StatusBadRequest
	}
	if errors.Is(err, analysis.ErrInvocationFailed) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
