package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sjperalta/fintera-obligations/internal/models"
	"github.com/sjperalta/fintera-obligations/internal/services"
	"github.com/sjperalta/fintera-obligations/pkg/logger"
)

// statusFor maps a service error to its HTTP status
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidSchedule), errors.Is(err, services.ErrInvalidPaymentDate):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrAlreadyGenerated):
		return http.StatusConflict
	case errors.Is(err, services.ErrIllegalTransition), errors.Is(err, services.ErrPrematureTransition):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.FullPath(), "error", err)
		_ = c.Error(err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// paramID parses a numeric path parameter, answering 400 when it is malformed
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID inválido"})
		return 0, false
	}
	return uint(id), true
}

// parseDate parses an optional YYYY-MM-DD value
func parseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(models.DateLayout, *value, time.UTC)
	if err != nil {
		return nil, errors.New("fecha inválida, use el formato AAAA-MM-DD")
	}
	return &t, nil
}
