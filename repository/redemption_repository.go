package repository

import (
	"context"
	"fmt"

	"magbank/database"
	"magbank/models"
)

// RedemptionRepository implements the service.RedemptionRepository interface
type RedemptionRepository struct {
	q queryable
}

// NewRedemptionRepository creates a new redemption repository
func NewRedemptionRepository(db *database.DB) *RedemptionRepository {
	return &RedemptionRepository{q: db.Pool}
}

// newRedemptionRepositoryWithTx creates a new redemption repository with a transaction
func newRedemptionRepositoryWithTx(tx queryable) *RedemptionRepository {
	return &RedemptionRepository{q: tx}
}

// Create creates a redemption record
func (r *RedemptionRepository) Create(ctx context.Context, redemption *models.Redemption) error {
	query := `
		INSERT INTO redemptions (user_id, prize_id, tickets_spent, state, shipping_address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, redeemed_at
	`

	err := r.q.QueryRow(ctx, query,
		redemption.UserID,
		redemption.PrizeID,
		redemption.TicketsSpent,
		redemption.State,
		redemption.ShippingAddress,
	).Scan(&redemption.ID, &redemption.RedeemedAt)
	if err != nil {
		return fmt.Errorf("failed to create redemption for user %d: %w", redemption.UserID, err)
	}

	return nil
}

// MarkDelivered transitions a redemption to delivered
func (r *RedemptionRepository) MarkDelivered(ctx context.Context, redemptionID int64, trackingCode string) error {
	query := `
		UPDATE redemptions
		SET state = 'delivered', delivered_at = NOW(), tracking_code = NULLIF($1, '')
		WHERE id = $2
	`
	result, err := r.q.Exec(ctx, query, trackingCode, redemptionID)
	if err != nil {
		return fmt.Errorf("failed to mark redemption %d delivered: %w", redemptionID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("redemption %d not found", redemptionID)
	}

	return nil
}

// GetByUser retrieves a user's redemptions, newest first
func (r *RedemptionRepository) GetByUser(ctx context.Context, userID int64) ([]*models.Redemption, error) {
	query := `
		SELECT rd.id, rd.user_id, rd.prize_id, p.name, rd.tickets_spent, rd.state,
		       rd.shipping_address, rd.tracking_code, rd.redeemed_at, rd.delivered_at
		FROM redemptions rd
		JOIN prizes p ON p.id = rd.prize_id
		WHERE rd.user_id = $1
		ORDER BY rd.redeemed_at DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get redemptions for user %d: %w", userID, err)
	}
	defer rows.Close()

	var redemptions []*models.Redemption
	for rows.Next() {
		var redemption models.Redemption
		err := rows.Scan(
			&redemption.ID,
			&redemption.UserID,
			&redemption.PrizeID,
			&redemption.PrizeName,
			&redemption.TicketsSpent,
			&redemption.State,
			&redemption.ShippingAddress,
			&redemption.TrackingCode,
			&redemption.RedeemedAt,
			&redemption.DeliveredAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan redemption: %w", err)
		}
		redemptions = append(redemptions, &redemption)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate redemptions: %w", err)
	}

	return redemptions, nil
}
