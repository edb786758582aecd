package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"magbank/database"
	"magbank/models"
)

// MagysRepository implements the service.MagysRepository interface
type MagysRepository struct {
	q queryable
}

// NewMagysRepository creates a new Magys repository
func NewMagysRepository(db *database.DB) *MagysRepository {
	return &MagysRepository{q: db.Pool}
}

// newMagysRepositoryWithTx creates a new Magys repository with a transaction
func newMagysRepositoryWithTx(tx queryable) *MagysRepository {
	return &MagysRepository{q: tx}
}

// Get retrieves a user's Magys account
func (r *MagysRepository) Get(ctx context.Context, userID int64) (*models.MagysAccount, error) {
	return r.get(ctx, userID, false)
}

// GetForUpdate retrieves a user's Magys account under an exclusive row lock.
// The lock is held until the enclosing transaction commits or rolls back,
// serializing concurrent plays by the same user.
func (r *MagysRepository) GetForUpdate(ctx context.Context, userID int64) (*models.MagysAccount, error) {
	return r.get(ctx, userID, true)
}

func (r *MagysRepository) get(ctx context.Context, userID int64, forUpdate bool) (*models.MagysAccount, error) {
	query := `
		SELECT user_id, balance, created_at, updated_at
		FROM magys_accounts
		WHERE user_id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var account models.MagysAccount
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&account.UserID,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get magys account for user %d: %w", userID, err)
	}

	return &account, nil
}

// UpdateBalance sets a user's Magys balance atomically
func (r *MagysRepository) UpdateBalance(ctx context.Context, userID int64, newBalance int64) error {
	query := `
		UPDATE magys_accounts
		SET balance = $1, updated_at = NOW()
		WHERE user_id = $2
	`
	result, err := r.q.Exec(ctx, query, newBalance, userID)
	if err != nil {
		return fmt.Errorf("failed to update magys balance for user %d: %w", userID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("magys account for user %d not found", userID)
	}

	return nil
}
