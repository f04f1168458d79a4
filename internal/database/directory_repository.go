package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/affiliate-tracker/internal/domain"
)

// DirectoryRepository handles lookups against the affiliate and product tables.
type DirectoryRepository struct {
	db *sqlx.DB
}

// NewDirectoryRepository creates a new directory repository.
func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// GetAffiliate fetches an affiliate by id.
// Returns domain.ErrNotFound when the affiliate does not exist.
func (r *DirectoryRepository) GetAffiliate(ctx context.Context, id int64) (*domain.Affiliate, error) {
	query := `SELECT id, active FROM affiliates WHERE id = $1`

	var affiliate domain.Affiliate
	err := r.db.GetContext(ctx, &affiliate, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get affiliate %d: %w", id, err)
	}

	return &affiliate, nil
}

// GetProduct fetches a product by id.
// Returns domain.ErrNotFound when the product does not exist.
func (r *DirectoryRepository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT id, destination_url, active FROM products WHERE id = $1`

	var product domain.Product
	err := r.db.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}

	return &product, nil
}
