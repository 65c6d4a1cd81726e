package handlers

import (
	"errors"
	"net/http"

	"energyhub/internal/api/models"
	"energyhub/internal/technology"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code, message string, details map[string]any) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// respondBuildError maps technology errors onto 400 responses with their
// own codes. Other build failures are reported as BUILD_ERROR.
func respondBuildError(c *gin.Context, err error) {
	var missing *technology.MissingInputDataError
	var invalid *technology.ConfigurationError
	switch {
	case errors.As(err, &missing):
		respondError(c, http.StatusBadRequest, "MISSING_INPUT_DATA", err.Error(), map[string]any{
			"technology": missing.Technology,
			"column":     missing.Column,
		})
	case errors.As(err, &invalid):
		respondError(c, http.StatusBadRequest, "INFEASIBLE_CONFIGURATION", err.Error(), map[string]any{
			"technology": invalid.Technology,
			"field":      invalid.Field,
		})
	case errors.Is(err, technology.ErrMissingInputData):
		respondError(c, http.StatusBadRequest, "MISSING_INPUT_DATA", err.Error(), nil)
	case errors.Is(err, technology.ErrInfeasibleConfiguration):
		respondError(c, http.StatusBadRequest, "INFEASIBLE_CONFIGURATION", err.Error(), nil)
	default:
		respondError(c, http.StatusBadRequest, "BUILD_ERROR", err.Error(), nil)
	}
}
