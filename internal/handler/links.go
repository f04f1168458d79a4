package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/affiliate-tracker/internal/middleware"
	"github.com/jonesrussell/affiliate-tracker/internal/service"
	"github.com/jonesrussell/affiliate-tracker/pkg/authtoken"
	"github.com/jonesrussell/affiliate-tracker/pkg/logger"
)

// LinkHandler handles tracking link management requests.
type LinkHandler struct {
	links *service.LinkService
	log   logger.Logger
}

// NewLinkHandler creates a LinkHandler.
func NewLinkHandler(links *service.LinkService, log logger.Logger) *LinkHandler {
	return &LinkHandler{links: links, log: log}
}

// createLinkRequest is the body of POST /api/v1/links. AffiliateID may only
// be set by system callers creating links on an affiliate's behalf.
type createLinkRequest struct {
	ProductID   int64      `binding:"required" json:"product_id"`
	AffiliateID int64      `json:"affiliate_id"`
	ExpiresAt   *time.Time `json:"expires_at"`
}

// Create issues a new tracking link.
func (h *LinkHandler) Create(c *gin.Context) {
	var req createLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims := middleware.ClaimsFrom(c)

	affiliateID := claims.UserID
	if req.AffiliateID != 0 && req.AffiliateID != claims.UserID {
		if !claims.HasRole(authtoken.RoleSystem) {
			c.JSON(http.StatusForbidden, gin.H{"error": "cannot create links for another affiliate"})
			return
		}
		affiliateID = req.AffiliateID
	}

	link, err := h.links.Create(c.Request.Context(), service.CreateParams{
		AffiliateID: affiliateID,
		ProductID:   req.ProductID,
		ExpiresAt:   req.ExpiresAt,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.log.Info("Tracking link created",
		logger.String("code", link.Code),
		logger.Int64("affiliate_id", affiliateID),
		logger.Int64("product_id", req.ProductID),
	)

	c.JSON(http.StatusCreated, link)
}

// List returns the caller's tracking links, newest first.
func (h *LinkHandler) List(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)

	links, err := h.links.List(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"links": links})
}

// Deactivate permanently disables one of the caller's links.
func (h *LinkHandler) Deactivate(c *gin.Context) {
	claims := middleware.ClaimsFrom(c)

	if err := h.links.Deactivate(c.Request.Context(), c.Param("code"), claims.UserID); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
