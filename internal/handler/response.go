package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetledger/internal/domain"
	"fleetledger/internal/repository"
	"fleetledger/internal/service"
)

// ErrorResponse represents an error response. Validation failures carry the
// offending field and the identity of the prior or conflicting trip so the
// caller can reconcile without re-querying.
type ErrorResponse struct {
	Error            string `json:"error"`
	Code             string `json:"code,omitempty"`
	Field            string `json:"field,omitempty"`
	RelatedTripID    string `json:"related_trip_id,omitempty"`
	RelatedTripLabel string `json:"related_trip_label,omitempty"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	response := ErrorResponse{Error: err.Error()}

	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		response.Code = string(vErr.Code)
		response.Field = vErr.Field
		response.RelatedTripID = vErr.RelatedTripID
		response.RelatedTripLabel = vErr.RelatedTripLabel
	}

	c.JSON(mapErrorToHTTPStatus(err), response)
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	var (
		vErr       *domain.ValidationError
		authErr    *domain.AuthorizationError
		truncErr   *domain.CascadeTruncatedError
	)

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	case errors.As(err, &authErr):
		return http.StatusForbidden

	// Cross-record conflicts: the candidate collides with existing ledger
	// state rather than being malformed on its own.
	case errors.As(err, &vErr):
		switch vErr.Code {
		case domain.FindingTimeOverlap, domain.FindingOdometerRollback, domain.FindingForwardContinuity:
			return http.StatusConflict
		default:
			return http.StatusBadRequest
		}

	case errors.As(err, &truncErr),
		errors.Is(err, service.ErrVehicleBusy),
		errors.Is(err, service.ErrTripAlreadyDeleted),
		errors.Is(err, service.ErrTripNotDeleted):
		return http.StatusConflict

	case errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidVehicleID),
		errors.Is(err, service.ErrInvalidRegistration),
		errors.Is(err, service.ErrInvalidOdometer):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
