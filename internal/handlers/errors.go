package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hanjob/resume-api/internal/draft"
	"github.com/hanjob/resume-api/internal/models"
	apperrors "github.com/hanjob/resume-api/pkg/errors"
)

// attachError attaches err to the gin context so the observability middleware
// can include the reason in the request log. c.Error() returns *gin.Error (not
// the error interface), so we suppress errcheck here intentionally.
func attachError(c *gin.Context, err error) {
	if err != nil {
		_ = c.Error(err) //nolint:errcheck
	}
}

// respondError sends an error JSON response and attaches the error to the gin context
// so the observability middleware can include the reason in the request log.
func respondError(c *gin.Context, status int, message string, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message})
}

// respondErrorWithDetails sends an error response with an additional details field.
func respondErrorWithDetails(c *gin.Context, status int, message string, details any, err error) {
	attachError(c, err)
	c.JSON(status, gin.H{"error": message, "details": details})
}

// respondValidationErrors sends the per-field error map of a failed validation.
func respondValidationErrors(c *gin.Context, errs models.ValidationErrors) {
	attachError(c, draft.ErrValidation)
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error":            "Validation failed",
		"validationErrors": errs,
	})
}

// statusFor maps engine and repository errors to HTTP status codes. Anything
// unrecognized is a failed downstream call.
func statusFor(err error) int {
	switch {
	case errors.Is(err, draft.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, models.ErrUnknownField),
		errors.Is(err, draft.ErrUnsupportedFileType),
		errors.Is(err, draft.ErrFileTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, draft.ErrSubmitInProgress),
		errors.Is(err, draft.ErrUploadCanceled):
		return http.StatusConflict
	case errors.Is(err, draft.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
