// Package service implements the tracking core: link registration, click
// recording, conversion attribution, and analytics aggregation. Services
// speak domain types and sentinel errors; HTTP translation happens in the
// handler layer.
package service

import (
	"context"
	"time"

	"github.com/jonesrussell/affiliate-tracker/internal/domain"
)

// LinkStore is the persistence surface for tracking links.
type LinkStore interface {
	Insert(ctx context.Context, link *domain.TrackingLink) error
	GetByCode(ctx context.Context, code string) (*domain.TrackingLink, error)
	ListByAffiliate(ctx context.Context, affiliateID int64) ([]*domain.TrackingLink, error)
	Deactivate(ctx context.Context, code string) error
}

// Directory looks up affiliates and products.
type Directory interface {
	GetAffiliate(ctx context.Context, id int64) (*domain.Affiliate, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
}

// ClickStore queries recorded clicks for attribution.
type ClickStore interface {
	LastQualifying(ctx context.Context, fingerprint string, occurredAt time.Time, window time.Duration) (*domain.ClickEvent, error)
}

// ConversionStore persists conversion events.
type ConversionStore interface {
	Insert(ctx context.Context, event *domain.ConversionEvent) (bool, error)
	GetByExternalID(ctx context.Context, externalID string) (*domain.ConversionEvent, error)
}

// AnalyticsStore runs aggregate queries over events.
type AnalyticsStore interface {
	CountClicks(ctx context.Context, scope domain.Scope, r domain.Range) (clicks, uniqueVisitors int64, err error)
	CountConversions(ctx context.Context, scope domain.Scope, r domain.Range) (conversions int64, amount float64, err error)
	DeviceBreakdown(ctx context.Context, scope domain.Scope, r domain.Range) (map[domain.DeviceType]int64, error)
}

// LinkCache is the Redis-backed cache in front of LinkStore.
type LinkCache interface {
	Get(ctx context.Context, code string) (*domain.TrackingLink, error)
	Set(ctx context.Context, link *domain.TrackingLink)
	Invalidate(ctx context.Context, code string)
}

// ClickSink accepts click events without blocking. Send reports false when
// the event was dropped.
type ClickSink interface {
	Send(event domain.ClickEvent) bool
}

// CodeGenerator produces candidate tracking codes.
type CodeGenerator interface {
	Generate() (string, error)
}
