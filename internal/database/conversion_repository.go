package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/affiliate-tracker/internal/domain"
)

// conversionSelectColumns lists columns for SELECT queries on conversion_events.
const conversionSelectColumns = `id, external_id, attributed_click_id, fingerprint, amount, occurred_at, created_at`

// ConversionRepository handles database operations for conversion events.
type ConversionRepository struct {
	db *sqlx.DB
}

// NewConversionRepository creates a new conversion repository.
func NewConversionRepository(db *sqlx.DB) *ConversionRepository {
	return &ConversionRepository{db: db}
}

// Insert persists a conversion event. Two unique indexes guard the write:
//
//   - external_id makes the insert idempotent. A duplicate report is
//     absorbed by ON CONFLICT DO NOTHING and Insert returns false with the
//     event untouched; the caller fetches the original via GetByExternalID.
//   - attributed_click_id ensures a click credits at most one conversion.
//     A concurrent conversion claiming the same click surfaces as
//     domain.ErrClickAttributed and the caller retries with the next
//     candidate click.
func (r *ConversionRepository) Insert(ctx context.Context, event *domain.ConversionEvent) (bool, error) {
	query := `
		INSERT INTO conversion_events (external_id, attributed_click_id, fingerprint, amount, occurred_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (external_id) DO NOTHING
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		event.ExternalID, event.AttributedClickID, event.Fingerprint,
		event.Amount, event.OccurredAt,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		if isUniqueViolation(err) {
			return false, domain.ErrClickAttributed
		}
		return false, fmt.Errorf("failed to insert conversion event: %w", err)
	}

	return true, nil
}

// GetByExternalID fetches a conversion event by its merchant-assigned id.
// Returns domain.ErrNotFound when no conversion carries the id.
func (r *ConversionRepository) GetByExternalID(ctx context.Context, externalID string) (*domain.ConversionEvent, error) {
	query := `SELECT ` + conversionSelectColumns + ` FROM conversion_events WHERE external_id = $1`

	var event domain.ConversionEvent
	err := r.db.GetContext(ctx, &event, query, externalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get conversion event %q: %w", externalID, err)
	}

	return &event, nil
}
