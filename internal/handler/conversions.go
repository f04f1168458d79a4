package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/affiliate-tracker/internal/service"
	"github.com/jonesrussell/affiliate-tracker/pkg/logger"
)

// ConversionHandler handles conversion webhook requests from merchants.
type ConversionHandler struct {
	conversions *service.ConversionService
	log         logger.Logger
}

// NewConversionHandler creates a ConversionHandler.
func NewConversionHandler(conversions *service.ConversionService, log logger.Logger) *ConversionHandler {
	return &ConversionHandler{conversions: conversions, log: log}
}

// conversionRequest is the body of POST /api/v1/conversions. The visitor's
// IP and user agent come from the merchant's checkout session, not from
// the webhook connection.
type conversionRequest struct {
	ExternalID string     `binding:"required" json:"external_id"`
	IP         string     `binding:"required" json:"ip"`
	UserAgent  string     `json:"user_agent"`
	Amount     *float64   `json:"amount"`
	OccurredAt *time.Time `json:"occurred_at"`
}

// Record stores a conversion. 201 on first sight, 200 with the original
// event when the external id was already recorded.
func (h *ConversionHandler) Record(c *gin.Context) {
	var req conversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	params := service.RecordParams{
		ExternalID: req.ExternalID,
		IP:         req.IP,
		UserAgent:  req.UserAgent,
		Amount:     req.Amount,
	}
	if req.OccurredAt != nil {
		params.OccurredAt = *req.OccurredAt
	}

	event, created, err := h.conversions.Record(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	c.JSON(status, event)
}

// Get returns a previously recorded conversion by external id.
func (h *ConversionHandler) Get(c *gin.Context) {
	event, err := h.conversions.Lookup(c.Request.Context(), c.Param("external_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}
