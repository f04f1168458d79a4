package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/affiliate-tracker/internal/domain"
	"github.com/jonesrussell/affiliate-tracker/internal/middleware"
	"github.com/jonesrussell/affiliate-tracker/internal/service"
	"github.com/jonesrussell/affiliate-tracker/pkg/authtoken"
)

// Analytics query errors surfaced as 400s.
var (
	errBadScope = errors.New("scope must be link, affiliate, or product with its matching parameter")
	errBadRange = errors.New("from and to must be RFC 3339 timestamps")
)

// AnalyticsHandler serves aggregate reports.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
	links     *service.LinkService
}

// NewAnalyticsHandler creates an AnalyticsHandler.
func NewAnalyticsHandler(analytics *service.AnalyticsService, links *service.LinkService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, links: links}
}

// Summary handles GET /api/v1/analytics. The scope is given by the scope
// parameter plus code, affiliate_id, or product_id; the interval by from
// and to, interpreted half-open. Affiliates may only query their own links
// and their own affiliate totals; product scope needs a merchant or system
// token.
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	scope, err := parseScope(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	r, err := parseRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !h.authorize(c, scope) {
		return
	}

	summary, svcErr := h.analytics.Summarize(c.Request.Context(), scope, r)
	if svcErr != nil {
		respondError(c, svcErr)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// authorize enforces scope ownership for affiliate tokens. Merchant and
// system tokens may query anything.
func (h *AnalyticsHandler) authorize(c *gin.Context, scope domain.Scope) bool {
	claims := middleware.ClaimsFrom(c)
	if claims.HasRole(authtoken.RoleMerchant) || claims.HasRole(authtoken.RoleSystem) {
		return true
	}

	switch scope.Kind {
	case domain.ScopeAffiliate:
		if scope.AffiliateID == claims.UserID {
			return true
		}
	case domain.ScopeLink:
		link, err := h.links.Get(c.Request.Context(), scope.LinkCode)
		if err != nil {
			respondError(c, err)
			return false
		}
		if link.AffiliateID == claims.UserID {
			return true
		}
	case domain.ScopeProduct:
		// Product totals span every affiliate; affiliates see only their
		// own slice via affiliate scope.
	}

	c.JSON(http.StatusForbidden, gin.H{"error": "scope not permitted for this token"})
	return false
}

func parseScope(c *gin.Context) (domain.Scope, error) {
	switch c.Query("scope") {
	case "link":
		code := c.Query("code")
		if code == "" {
			return domain.Scope{}, errBadScope
		}
		return domain.LinkScope(code), nil
	case "affiliate":
		id, err := strconv.ParseInt(c.Query("affiliate_id"), 10, 64)
		if err != nil {
			return domain.Scope{}, errBadScope
		}
		return domain.AffiliateScope(id), nil
	case "product":
		id, err := strconv.ParseInt(c.Query("product_id"), 10, 64)
		if err != nil {
			return domain.Scope{}, errBadScope
		}
		return domain.ProductScope(id), nil
	default:
		return domain.Scope{}, errBadScope
	}
}

func parseRange(c *gin.Context) (domain.Range, error) {
	from, err := time.Parse(time.RFC3339, c.Query("from"))
	if err != nil {
		return domain.Range{}, errBadRange
	}

	to, err := time.Parse(time.RFC3339, c.Query("to"))
	if err != nil {
		return domain.Range{}, errBadRange
	}

	return domain.Range{From: from, To: to}, nil
}
