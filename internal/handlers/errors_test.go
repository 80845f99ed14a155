package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hanjob/resume-api/internal/draft"
	"github.com/hanjob/resume-api/internal/models"
	apperrors "github.com/hanjob/resume-api/pkg/errors"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", draft.ErrValidation, http.StatusUnprocessableEntity},
		{"unknown field", fmt.Errorf("%q: %w", "age", models.ErrUnknownField), http.StatusBadRequest},
		{"wrong type", fmt.Errorf("x: %w", draft.ErrUnsupportedFileType), http.StatusBadRequest},
		{"too large", draft.ErrFileTooLarge, http.StatusBadRequest},
		{"submit running", draft.ErrSubmitInProgress, http.StatusConflict},
		{"upload canceled", draft.ErrUploadCanceled, http.StatusConflict},
		{"session closed", draft.ErrSessionClosed, http.StatusGone},
		{"not found", apperrors.NotFoundError("attachment"), http.StatusNotFound},
		{"breaker open", apperrors.UnavailableError("postgres", nil), http.StatusServiceUnavailable},
		{"backend failure", errors.New("connection reset"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
