package domain

import "time"

// TrackingLink associates a unique short code with an affiliate and a
// product. The code is immutable once issued; deactivation flips Active
// but never deletes the row, so historical events stay resolvable.
type TrackingLink struct {
	ID             int64      `db:"id"              json:"id"`
	Code           string     `db:"code"            json:"code"`
	AffiliateID    int64      `db:"affiliate_id"    json:"affiliate_id"`
	ProductID      int64      `db:"product_id"      json:"product_id"`
	DestinationURL string     `db:"destination_url" json:"destination_url"`
	Active         bool       `db:"active"          json:"active"`
	CreatedAt      time.Time  `db:"created_at"      json:"created_at"`
	ExpiresAt      *time.Time `db:"expires_at"      json:"expires_at,omitempty"`
}

// Expired reports whether the link's expiry time has passed at now.
// Links without an expiry never expire.
func (l *TrackingLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// Affiliate is the identity-subsystem view of an affiliate consumed by the
// link registry. Only the fields the tracking core needs are carried.
type Affiliate struct {
	ID     int64 `db:"id"`
	Active bool  `db:"active"`
}

// Product is the catalog view consumed by the link registry. The
// destination URL is snapshotted onto the link at creation time so the
// redirect path never joins through the catalog.
type Product struct {
	ID             int64  `db:"id"`
	Active         bool   `db:"active"`
	DestinationURL string `db:"destination_url"`
}
