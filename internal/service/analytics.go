package service

import (
	"context"

	"github.com/jonesrussell/affiliate-tracker/internal/domain"
)

// AnalyticsService aggregates click and conversion counts over time ranges.
type AnalyticsService struct {
	store AnalyticsStore
}

// NewAnalyticsService creates an analytics service.
func NewAnalyticsService(store AnalyticsStore) *AnalyticsService {
	return &AnalyticsService{store: store}
}

// Summarize aggregates events for the scope over the half-open interval
// [r.From, r.To). An equal From and To is a valid empty range yielding
// zeros; From after To is rejected with domain.ErrInvalidRange. The
// conversion rate is conversions over clicks, zero when there are no
// clicks rather than a division error.
func (s *AnalyticsService) Summarize(ctx context.Context, scope domain.Scope, r domain.Range) (*domain.Summary, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	clicks, visitors, err := s.store.CountClicks(ctx, scope, r)
	if err != nil {
		return nil, err
	}

	conversions, amount, err := s.store.CountConversions(ctx, scope, r)
	if err != nil {
		return nil, err
	}

	devices, err := s.store.DeviceBreakdown(ctx, scope, r)
	if err != nil {
		return nil, err
	}

	summary := &domain.Summary{
		Clicks:          clicks,
		UniqueVisitors:  visitors,
		Conversions:     conversions,
		Amount:          amount,
		DeviceBreakdown: devices,
	}
	if clicks > 0 {
		summary.ConversionRate = float64(conversions) / float64(clicks)
	}

	return summary, nil
}
