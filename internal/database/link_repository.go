package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jonesrussell/affiliate-tracker/internal/domain"
)

// pqUniqueViolation is the PostgreSQL error code for unique constraint violations.
const pqUniqueViolation = "23505"

// linkSelectColumns lists columns for SELECT queries on tracking_links.
const linkSelectColumns = `id, code, affiliate_id, product_id, destination_url, active, created_at, expires_at`

// LinkRepository handles database operations for tracking links.
type LinkRepository struct {
	db *sqlx.DB
}

// NewLinkRepository creates a new link repository.
func NewLinkRepository(db *sqlx.DB) *LinkRepository {
	return &LinkRepository{db: db}
}

// Insert persists a new tracking link. The unique index on code makes the
// existence check and the insert a single atomic statement: a concurrent
// insert of the same code surfaces as domain.ErrCodeTaken and the caller
// retries with a fresh code.
func (r *LinkRepository) Insert(ctx context.Context, link *domain.TrackingLink) error {
	query := `
		INSERT INTO tracking_links (code, affiliate_id, product_id, destination_url, active, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.db.QueryRowxContext(
		ctx, query,
		link.Code, link.AffiliateID, link.ProductID,
		link.DestinationURL, link.Active, link.ExpiresAt,
	).Scan(&link.ID, &link.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCodeTaken
		}
		return fmt.Errorf("failed to insert tracking link: %w", err)
	}

	return nil
}

// GetByCode fetches a tracking link by its short code.
// Returns domain.ErrNotFound when no link carries the code.
func (r *LinkRepository) GetByCode(ctx context.Context, code string) (*domain.TrackingLink, error) {
	query := `SELECT ` + linkSelectColumns + ` FROM tracking_links WHERE code = $1`

	var link domain.TrackingLink
	err := r.db.GetContext(ctx, &link, query, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get tracking link %q: %w", code, err)
	}

	return &link, nil
}

// ListByAffiliate returns all tracking links owned by an affiliate,
// newest first.
func (r *LinkRepository) ListByAffiliate(ctx context.Context, affiliateID int64) ([]*domain.TrackingLink, error) {
	query := `
		SELECT ` + linkSelectColumns + `
		FROM tracking_links
		WHERE affiliate_id = $1
		ORDER BY created_at DESC, id DESC
	`

	links := []*domain.TrackingLink{}
	if err := r.db.SelectContext(ctx, &links, query, affiliateID); err != nil {
		return nil, fmt.Errorf("failed to list tracking links for affiliate %d: %w", affiliateID, err)
	}

	return links, nil
}

// Deactivate marks a link inactive. Deactivation is permanent; there is no
// reactivate operation. Returns domain.ErrNotFound when the code is unknown.
func (r *LinkRepository) Deactivate(ctx context.Context, code string) error {
	query := `UPDATE tracking_links SET active = FALSE WHERE code = $1`

	result, err := r.db.ExecContext(ctx, query, code)
	if err != nil {
		return fmt.Errorf("failed to deactivate tracking link %q: %w", code, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// isUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation
}
