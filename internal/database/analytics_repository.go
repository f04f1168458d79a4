package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/affiliate-tracker/internal/domain"
)

// AnalyticsRepository runs aggregate queries over click and conversion
// events. All ranges are half-open: [from, to).
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository creates a new analytics repository.
func NewAnalyticsRepository(db *sqlx.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// clickCounts is the scan target for the click aggregate query.
type clickCounts struct {
	Clicks         int64 `db:"clicks"`
	UniqueVisitors int64 `db:"unique_visitors"`
}

// conversionCounts is the scan target for the conversion aggregate query.
type conversionCounts struct {
	Conversions int64   `db:"conversions"`
	Amount      float64 `db:"amount"`
}

// deviceCount is the scan target for one device breakdown row.
type deviceCount struct {
	DeviceType domain.DeviceType `db:"device_type"`
	Clicks     int64             `db:"clicks"`
}

// CountClicks returns the total clicks and distinct visitor fingerprints
// for the scope within r.
func (a *AnalyticsRepository) CountClicks(ctx context.Context, scope domain.Scope, r domain.Range) (clicks, uniqueVisitors int64, err error) {
	query := `
		SELECT COUNT(*) AS clicks, COUNT(DISTINCT c.fingerprint) AS unique_visitors
		FROM click_events c
		` + clickScopeJoin(scope) + `
		WHERE c.clicked_at >= $1 AND c.clicked_at < $2 AND ` + scopeCondition(scope, "$3")

	var counts clickCounts
	if getErr := a.db.GetContext(ctx, &counts, query, r.From, r.To, scopeArg(scope)); getErr != nil {
		return 0, 0, fmt.Errorf("failed to count clicks: %w", getErr)
	}

	return counts.Clicks, counts.UniqueVisitors, nil
}

// CountConversions returns the attributed conversion count and summed
// amount for the scope within r. A conversion belongs to a scope through
// the link its attributed click was recorded against, so unattributed
// conversions never show up in scoped aggregates.
func (a *AnalyticsRepository) CountConversions(ctx context.Context, scope domain.Scope, r domain.Range) (conversions int64, amount float64, err error) {
	query := `
		SELECT COUNT(*) AS conversions, COALESCE(SUM(ce.amount), 0) AS amount
		FROM conversion_events ce
		JOIN click_events c ON c.id = ce.attributed_click_id
		` + clickScopeJoin(scope) + `
		WHERE ce.occurred_at >= $1 AND ce.occurred_at < $2 AND ` + scopeCondition(scope, "$3")

	var counts conversionCounts
	if getErr := a.db.GetContext(ctx, &counts, query, r.From, r.To, scopeArg(scope)); getErr != nil {
		return 0, 0, fmt.Errorf("failed to count conversions: %w", getErr)
	}

	return counts.Conversions, counts.Amount, nil
}

// DeviceBreakdown returns per-device click counts for the scope within r.
// Devices with no clicks in the range produce no row.
func (a *AnalyticsRepository) DeviceBreakdown(ctx context.Context, scope domain.Scope, r domain.Range) (map[domain.DeviceType]int64, error) {
	query := `
		SELECT c.device_type AS device_type, COUNT(*) AS clicks
		FROM click_events c
		` + clickScopeJoin(scope) + `
		WHERE c.clicked_at >= $1 AND c.clicked_at < $2 AND ` + scopeCondition(scope, "$3") + `
		GROUP BY c.device_type`

	var rows []deviceCount
	if selectErr := a.db.SelectContext(ctx, &rows, query, r.From, r.To, scopeArg(scope)); selectErr != nil {
		return nil, fmt.Errorf("failed to count clicks by device: %w", selectErr)
	}

	breakdown := make(map[domain.DeviceType]int64, len(rows))
	for _, row := range rows {
		breakdown[row.DeviceType] = row.Clicks
	}

	return breakdown, nil
}

// clickScopeJoin returns the JOIN clause needed to resolve the scope from
// a click row aliased as c. Link scope filters on c.link_code directly and
// needs no join.
func clickScopeJoin(scope domain.Scope) string {
	if scope.Kind == domain.ScopeLink {
		return ""
	}
	return "JOIN tracking_links l ON l.code = c.link_code"
}

// scopeCondition returns the WHERE fragment matching the scope, with the
// scope value bound at the given placeholder.
func scopeCondition(scope domain.Scope, placeholder string) string {
	switch scope.Kind {
	case domain.ScopeAffiliate:
		return "l.affiliate_id = " + placeholder
	case domain.ScopeProduct:
		return "l.product_id = " + placeholder
	default:
		return "c.link_code = " + placeholder
	}
}

// scopeArg returns the bind value for the scope condition.
func scopeArg(scope domain.Scope) any {
	switch scope.Kind {
	case domain.ScopeAffiliate:
		return scope.AffiliateID
	case domain.ScopeProduct:
		return scope.ProductID
	default:
		return scope.LinkCode
	}
}
