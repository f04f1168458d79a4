// Package handler translates HTTP requests into service calls and domain
// errors back into status codes.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/affiliate-tracker/internal/domain"
)

// respondError maps a domain error onto an HTTP status with a JSON body.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrLinkExpired):
		status = http.StatusGone
	case errors.Is(err, domain.ErrInvalidRange), errors.Is(err, domain.ErrInvalidExpiry):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrGenerationExhausted):
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
