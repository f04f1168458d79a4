package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/affiliate-tracker/internal/domain"
	"github.com/jonesrussell/affiliate-tracker/internal/metrics"
	"github.com/jonesrussell/affiliate-tracker/pkg/logger"
)

// maxAttributionRetries bounds how many times a conversion re-runs the
// candidate query after losing a click to a concurrent conversion.
const maxAttributionRetries = 5

// ConversionService records conversions and attributes them to clicks.
type ConversionService struct {
	conversions ConversionStore
	clicks      ClickStore
	metrics     *metrics.Metrics
	log         logger.Logger
	window      time.Duration
	now         func() time.Time
}

// NewConversionService creates a conversion service with the given
// attribution window.
func NewConversionService(
	conversions ConversionStore,
	clicks ClickStore,
	m *metrics.Metrics,
	log logger.Logger,
	window time.Duration,
) *ConversionService {
	return &ConversionService{
		conversions: conversions,
		clicks:      clicks,
		metrics:     m,
		log:         log,
		window:      window,
		now:         time.Now,
	}
}

// RecordParams are the inputs of one conversion report.
type RecordParams struct {
	// ExternalID is the merchant's idempotency key, typically an order id.
	ExternalID string
	IP         string
	UserAgent  string
	Amount     *float64
	// OccurredAt defaults to now when zero.
	OccurredAt time.Time
}

// Record persists a conversion using last-click attribution: the visitor's
// most recent unclaimed click inside the attribution window gets the
// credit; with no qualifying click the conversion is stored unattributed.
// Reports are idempotent on ExternalID; a replay returns the original
// event and created=false. When a concurrent conversion wins the candidate
// click, the candidate query is re-run and naturally lands on the next
// click.
func (s *ConversionService) Record(ctx context.Context, params RecordParams) (event *domain.ConversionEvent, created bool, err error) {
	occurredAt := params.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = s.now()
	}

	fingerprint := domain.Fingerprint(params.IP, params.UserAgent)

	for retry := 0; retry <= maxAttributionRetries; retry++ {
		candidate, lookupErr := s.candidate(ctx, fingerprint, occurredAt)
		if lookupErr != nil {
			return nil, false, lookupErr
		}

		ev := &domain.ConversionEvent{
			ExternalID:  params.ExternalID,
			Fingerprint: fingerprint,
			Amount:      params.Amount,
			OccurredAt:  occurredAt,
		}
		if candidate != nil {
			ev.AttributedClickID = &candidate.ID
		}

		inserted, insertErr := s.conversions.Insert(ctx, ev)
		if insertErr != nil {
			if errors.Is(insertErr, domain.ErrClickAttributed) {
				continue
			}
			return nil, false, insertErr
		}

		if !inserted {
			existing, getErr := s.conversions.GetByExternalID(ctx, params.ExternalID)
			if getErr != nil {
				return nil, false, fmt.Errorf("fetch duplicate conversion: %w", getErr)
			}
			s.metrics.ConversionsTotal.WithLabelValues(metrics.ConversionDuplicate).Inc()
			return existing, false, nil
		}

		s.observe(ev)
		return ev, true, nil
	}

	return nil, false, fmt.Errorf("conversion %q: %w", params.ExternalID, domain.ErrClickAttributed)
}

// Lookup returns a previously recorded conversion by its external id.
func (s *ConversionService) Lookup(ctx context.Context, externalID string) (*domain.ConversionEvent, error) {
	return s.conversions.GetByExternalID(ctx, externalID)
}

// candidate finds the click to credit, or nil when none qualifies.
func (s *ConversionService) candidate(ctx context.Context, fingerprint string, occurredAt time.Time) (*domain.ClickEvent, error) {
	click, err := s.clicks.LastQualifying(ctx, fingerprint, occurredAt, s.window)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("attribution lookup: %w", err)
	}
	return click, nil
}

func (s *ConversionService) observe(ev *domain.ConversionEvent) {
	if ev.Attributed() {
		s.metrics.ConversionsTotal.WithLabelValues(metrics.ConversionCreated).Inc()
		s.log.Info("Conversion attributed",
			logger.String("external_id", ev.ExternalID),
			logger.Int64("click_id", *ev.AttributedClickID),
		)
		return
	}

	s.metrics.ConversionsTotal.WithLabelValues(metrics.ConversionUnattributed).Inc()
	s.log.Info("Conversion recorded without attribution",
		logger.String("external_id", ev.ExternalID),
	)
}
