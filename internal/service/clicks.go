package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonesrussell/affiliate-tracker/internal/cache"
	"github.com/jonesrussell/affiliate-tracker/internal/domain"
	"github.com/jonesrussell/affiliate-tracker/internal/metrics"
	"github.com/jonesrussell/affiliate-tracker/pkg/logger"
)

// Redirect outcome labels.
const (
	outcomeOK          = "ok"
	outcomeNotFound    = "not_found"
	outcomeExpired     = "expired"
	outcomeUnavailable = "unavailable"
)

// ClickService resolves tracking codes on the redirect hot path and feeds
// click events into the buffer.
type ClickService struct {
	links   LinkStore
	cache   LinkCache
	sink    ClickSink
	metrics *metrics.Metrics
	log     logger.Logger
	now     func() time.Time
}

// NewClickService creates a click service.
func NewClickService(
	links LinkStore,
	linkCache LinkCache,
	sink ClickSink,
	m *metrics.Metrics,
	log logger.Logger,
) *ClickService {
	return &ClickService{
		links:   links,
		cache:   linkCache,
		sink:    sink,
		metrics: m,
		log:     log,
		now:     time.Now,
	}
}

// ClickRequest carries the visitor context of one redirect request.
type ClickRequest struct {
	Code      string
	IP        string
	UserAgent string
	Referrer  string

	// Bot marks requests from known crawlers. Bots get the redirect but
	// their clicks are not recorded, keeping them out of attribution and
	// analytics.
	Bot bool
}

// Resolve maps a tracking code to its destination URL and records the
// click. Cache first, database on miss. Expired links return
// domain.ErrLinkExpired and record nothing. Deactivated links still
// redirect and still log: affiliates stop earning on them, but breaking
// already published URLs would punish the visitor, not the affiliate.
// Recording never blocks the redirect; if the buffer is full the click is
// dropped and counted.
func (s *ClickService) Resolve(ctx context.Context, req ClickRequest) (string, error) {
	link, err := s.lookup(ctx, req.Code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.metrics.RedirectsTotal.WithLabelValues(outcomeNotFound).Inc()
			return "", err
		}
		s.metrics.RedirectsTotal.WithLabelValues(outcomeUnavailable).Inc()
		return "", err
	}

	if link.Expired(s.now()) {
		s.metrics.RedirectsTotal.WithLabelValues(outcomeExpired).Inc()
		return "", domain.ErrLinkExpired
	}

	if !req.Bot {
		s.record(link, req)
	}
	s.metrics.RedirectsTotal.WithLabelValues(outcomeOK).Inc()

	return link.DestinationURL, nil
}

// lookup resolves a code cache-first. Database rows found on a miss are
// written back to the cache so the next click skips PostgreSQL.
func (s *ClickService) lookup(ctx context.Context, code string) (*domain.TrackingLink, error) {
	if link, err := s.cache.Get(ctx, code); err == nil {
		s.metrics.CacheHits.Inc()
		return link, nil
	} else if !errors.Is(err, cache.ErrMiss) {
		return nil, err
	}

	s.metrics.CacheMisses.Inc()

	link, err := s.links.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("link lookup degraded: %w", err)
	}

	s.cache.Set(ctx, link)
	return link, nil
}

// record builds the click event and hands it to the buffer.
func (s *ClickService) record(link *domain.TrackingLink, req ClickRequest) {
	event := domain.ClickEvent{
		LinkCode:    link.Code,
		Fingerprint: domain.Fingerprint(req.IP, req.UserAgent),
		Referrer:    req.Referrer,
		DeviceType:  domain.DetectDevice(req.UserAgent),
		ClickedAt:   s.now(),
	}

	if !s.sink.Send(event) {
		s.metrics.ClicksDropped.Inc()
		s.log.Warn("Click buffer full, event dropped",
			logger.String("code", link.Code),
		)
		return
	}

	s.metrics.ClicksRecorded.Inc()
}
