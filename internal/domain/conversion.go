package domain

import "time"

// ConversionEvent records one conversion, keyed by the caller-supplied
// ExternalID so webhook retries never double-count. AttributedClickID is
// nil when no click qualified inside the attribution window.
type ConversionEvent struct {
	ID                int64     `db:"id"                  json:"id"`
	ExternalID        string    `db:"external_id"         json:"external_id"`
	AttributedClickID *int64    `db:"attributed_click_id" json:"attributed_click_id,omitempty"`
	Fingerprint       string    `db:"fingerprint"         json:"-"`
	Amount            *float64  `db:"amount"              json:"amount,omitempty"`
	OccurredAt        time.Time `db:"occurred_at"         json:"occurred_at"`
	CreatedAt         time.Time `db:"created_at"          json:"created_at"`
}

// Attributed reports whether the conversion was credited to a click.
func (c *ConversionEvent) Attributed() bool {
	return c.AttributedClickID != nil
}
