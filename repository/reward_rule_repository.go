package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"magbank/database"
	"magbank/models"
)

// RewardRuleRepository implements the service.RewardRuleRepository interface
type RewardRuleRepository struct {
	q queryable
}

// NewRewardRuleRepository creates a new reward rule repository
func NewRewardRuleRepository(db *database.DB) *RewardRuleRepository {
	return &RewardRuleRepository{q: db.Pool}
}

// newRewardRuleRepositoryWithTx creates a new reward rule repository with a transaction
func newRewardRuleRepositoryWithTx(tx queryable) *RewardRuleRepository {
	return &RewardRuleRepository{q: tx}
}

// GetActiveByProductType retrieves the active reward rule for a product type
func (r *RewardRuleRepository) GetActiveByProductType(ctx context.Context, productType string) (*models.RewardRule, error) {
	query := `
		SELECT id, product_type, magys_amount, description, active
		FROM reward_rules
		WHERE product_type = $1 AND active = TRUE
	`

	var rule models.RewardRule
	err := r.q.QueryRow(ctx, query, productType).Scan(
		&rule.ID,
		&rule.ProductType,
		&rule.MagysAmount,
		&rule.Description,
		&rule.Active,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reward rule for %s: %w", productType, err)
	}

	return &rule, nil
}
