package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/affiliate-tracker/internal/domain"
	"github.com/jonesrussell/affiliate-tracker/internal/middleware"
	"github.com/jonesrussell/affiliate-tracker/internal/service"
	"github.com/jonesrussell/affiliate-tracker/pkg/logger"
)

// RedirectHandler serves the public click redirect endpoint.
type RedirectHandler struct {
	clicks  *service.ClickService
	timeout time.Duration
	log     logger.Logger
}

// NewRedirectHandler creates a RedirectHandler. timeout bounds link
// resolution so a slow database cannot stall the visitor.
func NewRedirectHandler(clicks *service.ClickService, timeout time.Duration, log logger.Logger) *RedirectHandler {
	return &RedirectHandler{clicks: clicks, timeout: timeout, log: log}
}

// Redirect resolves the tracking code and 302s the visitor to the
// destination. Unknown codes get 404, expired links 410, and resolution
// failures 503 so intermediaries do not cache the error.
func (h *RedirectHandler) Redirect(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
	defer cancel()

	req := service.ClickRequest{
		Code:      c.Param("code"),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
		Bot:       middleware.IsBot(c),
	}

	destination, err := h.clicks.Resolve(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown tracking code"})
		case errors.Is(err, domain.ErrLinkExpired):
			c.JSON(http.StatusGone, gin.H{"error": "tracking link expired"})
		default:
			h.log.Error("Link resolution failed",
				logger.String("code", req.Code),
				logger.Error(err),
			)
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable"})
		}
		return
	}

	c.Redirect(http.StatusFound, destination)
}
