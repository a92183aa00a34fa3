package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"planner/internal/repository"
	"planner/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Step validation failures
	case errors.Is(err, service.ErrMissingField),
		errors.Is(err, service.ErrInvalidRange),
		errors.Is(err, service.ErrTermsNotAccepted):
		return http.StatusUnprocessableEntity

	// Malformed input - Bad Request
	case errors.Is(err, service.ErrInvalidSessionID),
		errors.Is(err, service.ErrInvalidPlanID),
		errors.Is(err, service.ErrInvalidCurrency),
		errors.Is(err, service.ErrInvalidBudget),
		errors.Is(err, service.ErrInvalidDate),
		errors.Is(err, service.ErrInvalidPreference),
		errors.Is(err, service.ErrInvalidInterestLevel),
		errors.Is(err, service.ErrInvalidEditTarget):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrNotOnReviewStep),
		errors.Is(err, service.ErrNoNextStep),
		errors.Is(err, service.ErrWizardCompleted),
		errors.Is(err, service.ErrTransitionInProgress):
		return http.StatusConflict

	// Storage unavailable
	case errors.Is(err, service.ErrPersistenceWrite):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
