package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/affiliate-tracker/internal/domain"
	"github.com/jonesrussell/affiliate-tracker/internal/handler"
	"github.com/jonesrussell/affiliate-tracker/internal/middleware"
	"github.com/jonesrussell/affiliate-tracker/internal/service"
	"github.com/jonesrussell/affiliate-tracker/pkg/authtoken"
	"github.com/jonesrussell/affiliate-tracker/pkg/logger"
)

const testJWTSecret = "test-secret-key"

// memoryLinks keeps created links in memory for handler tests.
type memoryLinks struct {
	stubLinks
	nextID int64
}

func newMemoryLinks() *memoryLinks {
	return &memoryLinks{stubLinks: stubLinks{links: map[string]*domain.TrackingLink{}}}
}

func (m *memoryLinks) Insert(_ context.Context, link *domain.TrackingLink) error {
	if _, ok := m.links[link.Code]; ok {
		return domain.ErrCodeTaken
	}
	m.nextID++
	link.ID = m.nextID
	link.CreatedAt = time.Now()
	m.links[link.Code] = link
	return nil
}

func (m *memoryLinks) Deactivate(_ context.Context, code string) error {
	link, ok := m.links[code]
	if !ok {
		return domain.ErrNotFound
	}
	link.Active = false
	return nil
}

type fixedDirectory struct{}

func (fixedDirectory) GetAffiliate(_ context.Context, id int64) (*domain.Affiliate, error) {
	return &domain.Affiliate{ID: id, Active: true}, nil
}

func (fixedDirectory) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	return &domain.Product{ID: id, Active: true, DestinationURL: testDestination}, nil
}

type sequenceGenerator struct {
	n int
}

func (g *sequenceGenerator) Generate() (string, error) {
	g.n++
	return []string{"aB3xK9mQ", "zZ9yX8wV", "qQ1wW2eE"}[g.n-1], nil
}

func setupLinkRouter(t *testing.T) (*gin.Engine, *memoryLinks) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	store := newMemoryLinks()

	svc := service.NewLinkService(store, fixedDirectory{}, nullCache{}, &sequenceGenerator{}, logger.NewNop())
	h := handler.NewLinkHandler(svc, logger.NewNop())

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(middleware.Authenticate(testJWTSecret))
	api.Use(middleware.RequireRole(authtoken.RoleAffiliate, authtoken.RoleSystem))
	api.POST("/links", h.Create)
	api.GET("/links/mine", h.List)
	api.DELETE("/links/:code", h.Deactivate)

	return r, store
}

func bearerFor(t *testing.T, userID int64, roles ...string) string {
	t.Helper()

	token, err := authtoken.Sign(userID, roles, testJWTSecret, time.Minute)
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return "Bearer " + token
}

func doJSON(r *gin.Engine, method, path, auth, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestCreateLink(t *testing.T) {
	r, store := setupLinkRouter(t)
	auth := bearerFor(t, 7, authtoken.RoleAffiliate)

	w := doJSON(r, http.MethodPost, "/api/v1/links", auth, `{"product_id": 42}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	link, ok := store.links["aB3xK9mQ"]
	if !ok {
		t.Fatal("link was not stored")
	}
	if link.AffiliateID != 7 {
		t.Errorf("affiliate_id = %d, want 7 from token", link.AffiliateID)
	}
	if link.DestinationURL != testDestination {
		t.Errorf("destination = %q, want product snapshot", link.DestinationURL)
	}
}

func TestCreateLink_MissingProductID(t *testing.T) {
	r, _ := setupLinkRouter(t)
	auth := bearerFor(t, 7, authtoken.RoleAffiliate)

	w := doJSON(r, http.MethodPost, "/api/v1/links", auth, `{}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestCreateLink_ForAnotherAffiliate(t *testing.T) {
	r, _ := setupLinkRouter(t)
	auth := bearerFor(t, 7, authtoken.RoleAffiliate)

	w := doJSON(r, http.MethodPost, "/api/v1/links", auth, `{"product_id": 42, "affiliate_id": 8}`)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestCreateLink_SystemOnBehalf(t *testing.T) {
	r, store := setupLinkRouter(t)
	auth := bearerFor(t, 1, authtoken.RoleSystem)

	w := doJSON(r, http.MethodPost, "/api/v1/links", auth, `{"product_id": 42, "affiliate_id": 8}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if store.links["aB3xK9mQ"].AffiliateID != 8 {
		t.Errorf("affiliate_id = %d, want 8", store.links["aB3xK9mQ"].AffiliateID)
	}
}

func TestCreateLink_Unauthenticated(t *testing.T) {
	r, _ := setupLinkRouter(t)

	w := doJSON(r, http.MethodPost, "/api/v1/links", "", `{"product_id": 42}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestDeactivateLink(t *testing.T) {
	r, store := setupLinkRouter(t)
	auth := bearerFor(t, 7, authtoken.RoleAffiliate)

	if w := doJSON(r, http.MethodPost, "/api/v1/links", auth, `{"product_id": 42}`); w.Code != http.StatusCreated {
		t.Fatalf("setup create failed: %d", w.Code)
	}

	w := doJSON(r, http.MethodDelete, "/api/v1/links/aB3xK9mQ", auth, "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d: %s", w.Code, w.Body.String())
	}
	if store.links["aB3xK9mQ"].Active {
		t.Error("link still active after deactivation")
	}
}

func TestDeactivateLink_NotOwner(t *testing.T) {
	r, _ := setupLinkRouter(t)
	owner := bearerFor(t, 7, authtoken.RoleAffiliate)
	other := bearerFor(t, 8, authtoken.RoleAffiliate)

	if w := doJSON(r, http.MethodPost, "/api/v1/links", owner, `{"product_id": 42}`); w.Code != http.StatusCreated {
		t.Fatalf("setup create failed: %d", w.Code)
	}

	w := doJSON(r, http.MethodDelete, "/api/v1/links/aB3xK9mQ", other, "")
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}
