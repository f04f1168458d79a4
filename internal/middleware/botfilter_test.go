package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/affiliate-tracker/internal/middleware"
)

func newBotRouter(t *testing.T) *gin.Engine {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.BotFilter())
	r.GET("/click/:code", func(c *gin.Context) {
		if middleware.IsBot(c) {
			c.String(http.StatusOK, "bot")
			return
		}
		c.String(http.StatusOK, "human")
	})
	return r
}

func classify(r *gin.Engine, userAgent string) string {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/click/aB3xK9mQ", http.NoBody)
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	r.ServeHTTP(w, req)
	return w.Body.String()
}

func TestBotFilter_AllowsNormalUA(t *testing.T) {
	r := newBotRouter(t)

	got := classify(r, "Mozilla/5.0 (Windows NT 10.0; Win64; x64)")
	if got != "human" {
		t.Fatalf("expected 'human' for normal UA, got %q", got)
	}
}

func TestBotFilter_FlagsGooglebot(t *testing.T) {
	r := newBotRouter(t)

	got := classify(r, "Googlebot/2.1 (+http://www.google.com/bot.html)")
	if got != "bot" {
		t.Fatalf("expected 'bot' for Googlebot, got %q", got)
	}
}

func TestBotFilter_FlagsMissingUA(t *testing.T) {
	r := newBotRouter(t)

	got := classify(r, "")
	if got != "bot" {
		t.Fatalf("expected 'bot' for missing UA, got %q", got)
	}
}
