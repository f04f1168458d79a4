package domain

import "time"

// ScopeKind selects the dimension an analytics query aggregates over.
type ScopeKind string

const (
	ScopeLink      ScopeKind = "link"
	ScopeAffiliate ScopeKind = "affiliate"
	ScopeProduct   ScopeKind = "product"
)

// Scope identifies what to aggregate: exactly one of link code, affiliate
// id, or product id, as indicated by Kind.
type Scope struct {
	Kind        ScopeKind
	LinkCode    string
	AffiliateID int64
	ProductID   int64
}

// LinkScope builds a Scope for a single tracking link.
func LinkScope(code string) Scope { return Scope{Kind: ScopeLink, LinkCode: code} }

// AffiliateScope builds a Scope covering all of one affiliate's links.
func AffiliateScope(id int64) Scope { return Scope{Kind: ScopeAffiliate, AffiliateID: id} }

// ProductScope builds a Scope covering all links for one product.
func ProductScope(id int64) Scope { return Scope{Kind: ScopeProduct, ProductID: id} }

// Summary is the aggregate over a half-open interval [From, To).
type Summary struct {
	Clicks         int64   `json:"clicks"`
	UniqueVisitors int64   `json:"unique_visitors"`
	Conversions    int64   `json:"conversions"`
	Amount         float64 `json:"amount"`
	ConversionRate float64 `json:"conversion_rate"`

	// DeviceBreakdown splits the click count by device class. Devices
	// with no clicks in the range are absent.
	DeviceBreakdown map[DeviceType]int64 `json:"device_breakdown"`
}

// Range is a half-open time interval [From, To).
type Range struct {
	From time.Time
	To   time.Time
}

// Validate rejects ranges where From is after To. From == To is a valid
// empty range and legitimately yields zero counts.
func (r Range) Validate() error {
	if r.From.After(r.To) {
		return ErrInvalidRange
	}
	return nil
}
