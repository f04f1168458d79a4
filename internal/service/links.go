package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/affiliate-tracker/internal/domain"
	"github.com/jonesrussell/affiliate-tracker/pkg/logger"
)

// maxGenerateAttempts bounds code generation retries on collision. With 62^8
// possible codes, collisions are vanishingly rare; exhausting this limit
// points at a broken generator or a nearly full keyspace.
const maxGenerateAttempts = 5

// LinkService manages the lifecycle of tracking links.
type LinkService struct {
	links     LinkStore
	directory Directory
	cache     LinkCache
	gen       CodeGenerator
	log       logger.Logger
	now       func() time.Time
}

// NewLinkService creates a link service.
func NewLinkService(
	links LinkStore,
	directory Directory,
	cache LinkCache,
	gen CodeGenerator,
	log logger.Logger,
) *LinkService {
	return &LinkService{
		links:     links,
		directory: directory,
		cache:     cache,
		gen:       gen,
		log:       log,
		now:       time.Now,
	}
}

// CreateParams are the inputs for creating a tracking link.
type CreateParams struct {
	AffiliateID int64
	ProductID   int64
	ExpiresAt   *time.Time
}

// Create issues a new tracking link for an affiliate/product pair. Both
// sides must exist and be active, and the expiry, if given, must be in the
// future. The destination URL is snapshotted from the product so redirects
// never depend on the catalog. Collisions with existing codes are retried
// with fresh codes; the unique index arbitrates concurrent inserts of the
// same code, so exactly one of two racing creations keeps it.
func (s *LinkService) Create(ctx context.Context, params CreateParams) (*domain.TrackingLink, error) {
	affiliate, err := s.directory.GetAffiliate(ctx, params.AffiliateID)
	if err != nil {
		return nil, fmt.Errorf("affiliate lookup: %w", err)
	}
	if !affiliate.Active {
		return nil, fmt.Errorf("affiliate %d is inactive: %w", params.AffiliateID, domain.ErrForbidden)
	}

	product, err := s.directory.GetProduct(ctx, params.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product lookup: %w", err)
	}
	if !product.Active {
		return nil, fmt.Errorf("product %d is inactive: %w", params.ProductID, domain.ErrForbidden)
	}

	if params.ExpiresAt != nil && !params.ExpiresAt.After(s.now()) {
		return nil, domain.ErrInvalidExpiry
	}

	for attempt := 1; attempt <= maxGenerateAttempts; attempt++ {
		code, genErr := s.gen.Generate()
		if genErr != nil {
			return nil, fmt.Errorf("generate code: %w", genErr)
		}

		link := &domain.TrackingLink{
			Code:           code,
			AffiliateID:    params.AffiliateID,
			ProductID:      params.ProductID,
			DestinationURL: product.DestinationURL,
			Active:         true,
			ExpiresAt:      params.ExpiresAt,
		}

		insertErr := s.links.Insert(ctx, link)
		if insertErr == nil {
			return link, nil
		}
		if !errors.Is(insertErr, domain.ErrCodeTaken) {
			return nil, insertErr
		}

		s.log.Warn("Tracking code collision, retrying",
			logger.String("code", code),
			logger.Int("attempt", attempt),
		)
	}

	return nil, domain.ErrGenerationExhausted
}

// List returns the affiliate's links, newest first, including deactivated
// and expired ones.
func (s *LinkService) List(ctx context.Context, affiliateID int64) ([]*domain.TrackingLink, error) {
	return s.links.ListByAffiliate(ctx, affiliateID)
}

// Get fetches a single link by code.
func (s *LinkService) Get(ctx context.Context, code string) (*domain.TrackingLink, error) {
	return s.links.GetByCode(ctx, code)
}

// Deactivate permanently disables a link. Only the owning affiliate may
// deactivate it. The cached entry is dropped so the redirect path sees the
// change within one round trip.
func (s *LinkService) Deactivate(ctx context.Context, code string, affiliateID int64) error {
	link, err := s.links.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if link.AffiliateID != affiliateID {
		return domain.ErrForbidden
	}

	if err := s.links.Deactivate(ctx, code); err != nil {
		return err
	}

	s.cache.Invalidate(ctx, code)

	s.log.Info("Tracking link deactivated",
		logger.String("code", code),
		logger.Int64("affiliate_id", affiliateID),
	)

	return nil
}
