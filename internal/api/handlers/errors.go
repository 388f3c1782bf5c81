package handlers

import (
	"context"
	"errors"
	"net/http"
	"os"

	"energy-expansion/internal/api/models"
	"energy-expansion/internal/data"
	"energy-expansion/internal/solver"
	"energy-expansion/internal/store"

	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// classify maps pipeline and archive errors onto HTTP status and code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound, "RUN_NOT_FOUND"
	case errors.Is(err, solver.ErrSolverUnavailable):
		return http.StatusServiceUnavailable, "SOLVER_UNAVAILABLE"
	case errors.Is(err, solver.ErrNotOptimal):
		return http.StatusUnprocessableEntity, "NOT_OPTIMAL"
	case errors.Is(err, solver.ErrTooLarge):
		return http.StatusUnprocessableEntity, "MODEL_TOO_LARGE"
	case errors.Is(err, os.ErrNotExist):
		return http.StatusUnprocessableEntity, "WORKBOOK_NOT_FOUND"
	case errors.Is(err, data.ErrMissingSheet), errors.Is(err, data.ErrMissingColumn), errors.Is(err, data.ErrMissingRow):
		return http.StatusUnprocessableEntity, "INVALID_WORKBOOK"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "CANCELLED"
	default:
		return http.StatusInternalServerError, "RUN_FAILED"
	}
}
