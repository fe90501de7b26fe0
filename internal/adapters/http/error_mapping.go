package httpadapter

import (
	"net/http"

	"github.com/mvarga/claimsdesk/internal/core/domain"
)

// mapErrorToHTTPStatus translates domain error kinds to statuses. Gateway
// signals (rate limit, payment) are checked before the step kinds so a
// cleaning failure caused by a 429 still surfaces as 429.
func mapErrorToHTTPStatus(err error) int {
	switch {
	case domain.IsKind(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case domain.IsKind(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized
	case domain.IsKind(err, domain.ErrPaymentRequired):
		return http.StatusPaymentRequired
	case domain.IsKind(err, domain.ErrClaimNotFound),
		domain.IsKind(err, domain.ErrDocumentNotFound):
		return http.StatusNotFound
	case domain.IsKind(err, domain.ErrRateLimited):
		return http.StatusTooManyRequests
	case domain.IsKind(err, domain.ErrTemporary):
		return http.StatusServiceUnavailable
	case domain.IsKind(err, domain.ErrExtraction),
		domain.IsKind(err, domain.ErrAnonymization),
		domain.IsKind(err, domain.ErrCleaning),
		domain.IsKind(err, domain.ErrReportGeneration):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
