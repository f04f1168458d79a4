package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/affiliate-tracker/internal/domain"
)

// Batch insert constants.
const (
	// clickColumnsPerRow is the number of columns inserted per click event row.
	clickColumnsPerRow = 5

	// clickInsertBatchSize is the maximum number of rows per INSERT statement.
	clickInsertBatchSize = 50
)

// ClickRepository handles database operations for click events.
type ClickRepository struct {
	db *sqlx.DB
}

// NewClickRepository creates a new click repository.
func NewClickRepository(db *sqlx.DB) *ClickRepository {
	return &ClickRepository{db: db}
}

// BatchInsert writes click events in chunks, building a single INSERT
// statement with multiple value tuples per chunk.
func (r *ClickRepository) BatchInsert(ctx context.Context, events []domain.ClickEvent) error {
	for start := 0; start < len(events); start += clickInsertBatchSize {
		end := start + clickInsertBatchSize
		if end > len(events) {
			end = len(events)
		}

		if err := r.insertChunk(ctx, events[start:end]); err != nil {
			return err
		}
	}

	return nil
}

// insertChunk builds and executes one multi-row INSERT statement.
func (r *ClickRepository) insertChunk(ctx context.Context, events []domain.ClickEvent) error {
	if len(events) == 0 {
		return nil
	}

	args := make([]any, 0, len(events)*clickColumnsPerRow)
	var sb strings.Builder

	sb.WriteString("INSERT INTO click_events (link_code, fingerprint, referrer, device_type, clicked_at) VALUES ")

	for i := range events {
		if i > 0 {
			sb.WriteString(", ")
		}

		writeClickTuple(&sb, i)

		args = append(args,
			events[i].LinkCode, events[i].Fingerprint, events[i].Referrer,
			events[i].DeviceType, events[i].ClickedAt,
		)
	}

	if _, err := r.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("exec click batch insert: %w", err)
	}

	return nil
}

// Placeholder column offsets within a single row tuple (1-indexed for PostgreSQL $N params).
const (
	colLinkCode    = 1
	colFingerprint = 2
	colReferrer    = 3
	colDeviceType  = 4
	colClickedAt   = 5
)

// writeClickTuple writes a single ($1, ..., $5) placeholder tuple to the
// builder, offset by the row index.
func writeClickTuple(sb *strings.Builder, rowIndex int) {
	base := rowIndex * clickColumnsPerRow
	fmt.Fprintf(sb, "($%d, $%d, $%d, $%d, $%d)",
		base+colLinkCode, base+colFingerprint, base+colReferrer,
		base+colDeviceType, base+colClickedAt,
	)
}

// LastQualifying returns the visitor's most recent click that falls inside
// the attribution window ending at occurredAt and has not already been
// credited with a conversion. The window's lower bound is inclusive. Ties
// on clicked_at are broken by highest id, i.e. latest inserted.
// Returns domain.ErrNotFound when no click qualifies.
func (r *ClickRepository) LastQualifying(
	ctx context.Context,
	fingerprint string,
	occurredAt time.Time,
	window time.Duration,
) (*domain.ClickEvent, error) {
	query := `
		SELECT c.id, c.link_code, c.fingerprint, c.referrer, c.device_type, c.clicked_at
		FROM click_events c
		WHERE c.fingerprint = $1
		  AND c.clicked_at <= $2
		  AND c.clicked_at >= $3
		  AND NOT EXISTS (
			SELECT 1 FROM conversion_events ce WHERE ce.attributed_click_id = c.id
		  )
		ORDER BY c.clicked_at DESC, c.id DESC
		LIMIT 1
	`

	var click domain.ClickEvent
	err := r.db.GetContext(ctx, &click, query, fingerprint, occurredAt, occurredAt.Add(-window))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find qualifying click: %w", err)
	}

	return &click, nil
}
