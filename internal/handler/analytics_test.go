package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/affiliate-tracker/internal/domain"
	"github.com/jonesrussell/affiliate-tracker/internal/handler"
	"github.com/jonesrussell/affiliate-tracker/internal/middleware"
	"github.com/jonesrussell/affiliate-tracker/internal/service"
	"github.com/jonesrussell/affiliate-tracker/pkg/authtoken"
	"github.com/jonesrussell/affiliate-tracker/pkg/logger"
)

// fixedAnalytics returns canned aggregates.
type fixedAnalytics struct {
	clicks      int64
	conversions int64
}

func (f *fixedAnalytics) CountClicks(_ context.Context, _ domain.Scope, _ domain.Range) (int64, int64, error) {
	return f.clicks, f.clicks, nil
}

func (f *fixedAnalytics) CountConversions(_ context.Context, _ domain.Scope, _ domain.Range) (int64, float64, error) {
	return f.conversions, 0, nil
}

func (f *fixedAnalytics) DeviceBreakdown(_ context.Context, _ domain.Scope, _ domain.Range) (map[domain.DeviceType]int64, error) {
	return map[domain.DeviceType]int64{domain.DeviceDesktop: f.clicks}, nil
}

func setupAnalyticsRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)

	links := activeLinks()
	linkSvc := service.NewLinkService(links, fixedDirectory{}, nullCache{}, &sequenceGenerator{}, logger.NewNop())
	analyticsSvc := service.NewAnalyticsService(&fixedAnalytics{clicks: 3, conversions: 1})
	h := handler.NewAnalyticsHandler(analyticsSvc, linkSvc)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Authenticate(testJWTSecret))
	api.GET("/analytics", h.Summary)

	return r
}

const validRange = "from=2026-03-01T00:00:00Z&to=2026-03-02T00:00:00Z"

func TestAnalytics_LinkScopeOwner(t *testing.T) {
	r := setupAnalyticsRouter(t)
	auth := bearerFor(t, 7, authtoken.RoleAffiliate)

	w := doJSON(r, http.MethodGet, "/api/v1/analytics?scope=link&code=aB3xK9mQ&"+validRange, auth, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var summary domain.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &summary); err != nil {
		t.Fatalf("failed to decode summary: %v", err)
	}
	if summary.Clicks != 3 || summary.Conversions != 1 {
		t.Errorf("summary = %+v, want 3 clicks and 1 conversion", summary)
	}
	if summary.ConversionRate == 0 {
		t.Error("conversion rate missing")
	}
	if summary.DeviceBreakdown[domain.DeviceDesktop] != 3 {
		t.Errorf("device breakdown = %v, want 3 desktop clicks", summary.DeviceBreakdown)
	}
}

func TestAnalytics_LinkScopeNotOwner(t *testing.T) {
	r := setupAnalyticsRouter(t)
	auth := bearerFor(t, 8, authtoken.RoleAffiliate)

	w := doJSON(r, http.MethodGet, "/api/v1/analytics?scope=link&code=aB3xK9mQ&"+validRange, auth, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestAnalytics_OwnAffiliateScope(t *testing.T) {
	r := setupAnalyticsRouter(t)
	auth := bearerFor(t, 7, authtoken.RoleAffiliate)

	w := doJSON(r, http.MethodGet, "/api/v1/analytics?scope=affiliate&affiliate_id=7&"+validRange, auth, "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestAnalytics_ProductScopeNeedsMerchant(t *testing.T) {
	r := setupAnalyticsRouter(t)

	affiliate := bearerFor(t, 7, authtoken.RoleAffiliate)
	w := doJSON(r, http.MethodGet, "/api/v1/analytics?scope=product&product_id=42&"+validRange, affiliate, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("affiliate: expected 403, got %d", w.Code)
	}

	merchant := bearerFor(t, 100, authtoken.RoleMerchant)
	w = doJSON(r, http.MethodGet, "/api/v1/analytics?scope=product&product_id=42&"+validRange, merchant, "")
	if w.Code != http.StatusOK {
		t.Fatalf("merchant: expected 200, got %d", w.Code)
	}
}

func TestAnalytics_InvertedRange(t *testing.T) {
	r := setupAnalyticsRouter(t)
	auth := bearerFor(t, 7, authtoken.RoleAffiliate)

	w := doJSON(r, http.MethodGet,
		"/api/v1/analytics?scope=affiliate&affiliate_id=7&from=2026-03-02T00:00:00Z&to=2026-03-01T00:00:00Z", auth, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for inverted range, got %d", w.Code)
	}
}

func TestAnalytics_UnknownScope(t *testing.T) {
	r := setupAnalyticsRouter(t)
	auth := bearerFor(t, 7, authtoken.RoleAffiliate)

	w := doJSON(r, http.MethodGet, "/api/v1/analytics?scope=campaign&"+validRange, auth, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown scope, got %d", w.Code)
	}
}
