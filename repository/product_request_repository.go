package repository

import (
	"context"
	"fmt"

	"magbank/database"
	"magbank/models"
)

// ProductRequestRepository implements the service.ProductRequestRepository interface
type ProductRequestRepository struct {
	q queryable
}

// NewProductRequestRepository creates a new product request repository
func NewProductRequestRepository(db *database.DB) *ProductRequestRepository {
	return &ProductRequestRepository{q: db.Pool}
}

// newProductRequestRepositoryWithTx creates a new product request repository with a transaction
func newProductRequestRepositoryWithTx(tx queryable) *ProductRequestRepository {
	return &ProductRequestRepository{q: tx}
}

// Create creates a pending tracking record for a product request
func (r *ProductRequestRepository) Create(ctx context.Context, userID int64, productType string, productID int64) error {
	query := `
		INSERT INTO product_requests (user_id, product_type, product_id)
		VALUES ($1, $2, $3)
	`
	if _, err := r.q.Exec(ctx, query, userID, productType, productID); err != nil {
		return fmt.Errorf("failed to create product request for user %d: %w", userID, err)
	}

	return nil
}

// Resolve updates the tracking record for a resolved product request
func (r *ProductRequestRepository) Resolve(ctx context.Context, productType string, productID int64, state models.RequestState, reason, notes string) error {
	query := `
		UPDATE product_requests
		SET state = $1, rejection_reason = NULLIF($2, ''), notes = NULLIF($3, ''), resolved_at = NOW()
		WHERE product_type = $4 AND product_id = $5
	`
	if _, err := r.q.Exec(ctx, query, state, reason, notes, productType, productID); err != nil {
		return fmt.Errorf("failed to resolve product request %s/%d: %w", productType, productID, err)
	}

	return nil
}
