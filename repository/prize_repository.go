package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"magbank/database"
	"magbank/models"
)

// PrizeRepository implements the service.PrizeRepository interface
type PrizeRepository struct {
	q queryable
}

// NewPrizeRepository creates a new prize repository
func NewPrizeRepository(db *database.DB) *PrizeRepository {
	return &PrizeRepository{q: db.Pool}
}

// newPrizeRepositoryWithTx creates a new prize repository with a transaction
func newPrizeRepositoryWithTx(tx queryable) *PrizeRepository {
	return &PrizeRepository{q: tx}
}

const prizeColumns = `
	id, name, description, image_url, ticket_cost, stock,
	category, magys_amount, real_value, active, created_at
`

func scanPrize(row pgx.Row) (*models.Prize, error) {
	var prize models.Prize
	err := row.Scan(
		&prize.ID,
		&prize.Name,
		&prize.Description,
		&prize.ImageURL,
		&prize.TicketCost,
		&prize.Stock,
		&prize.Category,
		&prize.MagysAmount,
		&prize.RealValue,
		&prize.Active,
		&prize.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &prize, nil
}

// ListActive retrieves active prizes, cheapest first, optionally filtered
// by category
func (r *PrizeRepository) ListActive(ctx context.Context, category models.PrizeCategory) ([]*models.Prize, error) {
	query := `
		SELECT ` + prizeColumns + `
		FROM prizes
		WHERE active = TRUE
	`
	args := []any{}
	if category != "" {
		query += ` AND category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY ticket_cost ASC`

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list prizes: %w", err)
	}
	defer rows.Close()

	var prizes []*models.Prize
	for rows.Next() {
		prize, err := scanPrize(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan prize: %w", err)
		}
		prizes = append(prizes, prize)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prizes: %w", err)
	}

	return prizes, nil
}

// GetForUpdate retrieves a prize by id under an exclusive row lock.
// The lock serializes concurrent redemptions of the same prize so stock
// checks cannot race.
func (r *PrizeRepository) GetForUpdate(ctx context.Context, prizeID int64) (*models.Prize, error) {
	query := `
		SELECT ` + prizeColumns + `
		FROM prizes
		WHERE id = $1
		FOR UPDATE
	`

	prize, err := scanPrize(r.q.QueryRow(ctx, query, prizeID))
	if err != nil {
		return nil, fmt.Errorf("failed to get prize %d for update: %w", prizeID, err)
	}
	return prize, nil
}

// DecrementStock reduces a tracked prize's stock by one
func (r *PrizeRepository) DecrementStock(ctx context.Context, prizeID int64) error {
	query := `
		UPDATE prizes
		SET stock = stock - 1
		WHERE id = $1 AND stock IS NOT NULL
	`
	result, err := r.q.Exec(ctx, query, prizeID)
	if err != nil {
		return fmt.Errorf("failed to decrement stock for prize %d: %w", prizeID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("prize %d has no tracked stock", prizeID)
	}

	return nil
}
