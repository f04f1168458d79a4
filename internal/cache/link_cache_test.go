package cache_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/affiliate-tracker/internal/cache"
	"github.com/jonesrussell/affiliate-tracker/internal/domain"
	"github.com/jonesrussell/affiliate-tracker/pkg/logger"
)

const testTTL = 10 * time.Minute

func newTestCache(t *testing.T) (*cache.LinkCache, *miniredis.Miniredis) {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { client.Close() })

	return cache.NewLinkCache(client, testTTL, logger.NewNop()), srv
}

func testLink() *domain.TrackingLink {
	return &domain.TrackingLink{
		ID:             101,
		Code:           "aB3xK9mQ",
		AffiliateID:    7,
		ProductID:      42,
		DestinationURL: "https://shop.example.com/widget",
		Active:         true,
		CreatedAt:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestLinkCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	link := testLink()
	c.Set(ctx, link)

	got, err := c.Get(ctx, link.Code)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.DestinationURL != link.DestinationURL {
		t.Errorf("Get() destination = %q, want %q", got.DestinationURL, link.DestinationURL)
	}
	if got.ID != link.ID {
		t.Errorf("Get() id = %d, want %d", got.ID, link.ID)
	}
}

func TestLinkCache_Miss(t *testing.T) {
	c, _ := newTestCache(t)

	_, err := c.Get(context.Background(), "unknown1")
	if !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("Get() error = %v, want ErrMiss", err)
	}
}

func TestLinkCache_Invalidate(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	link := testLink()
	c.Set(ctx, link)
	c.Invalidate(ctx, link.Code)

	_, err := c.Get(ctx, link.Code)
	if !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("Get() after Invalidate() error = %v, want ErrMiss", err)
	}
}

func TestLinkCache_EntriesExpire(t *testing.T) {
	c, srv := newTestCache(t)
	ctx := context.Background()

	c.Set(ctx, testLink())
	srv.FastForward(testTTL + time.Second)

	_, err := c.Get(ctx, "aB3xK9mQ")
	if !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("Get() after TTL error = %v, want ErrMiss", err)
	}
}

func TestLinkCache_RedisDownReportsMiss(t *testing.T) {
	c, srv := newTestCache(t)
	srv.Close()

	_, err := c.Get(context.Background(), "aB3xK9mQ")
	if !errors.Is(err, cache.ErrMiss) {
		t.Fatalf("Get() with redis down error = %v, want ErrMiss", err)
	}
}
