package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"magbank/database"
	"magbank/models"
)

// TicketRepository implements the service.TicketRepository interface
type TicketRepository struct {
	q queryable
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{q: db.Pool}
}

// newTicketRepositoryWithTx creates a new ticket repository with a transaction
func newTicketRepositoryWithTx(tx queryable) *TicketRepository {
	return &TicketRepository{q: tx}
}

// Get retrieves a user's ticket account
func (r *TicketRepository) Get(ctx context.Context, userID int64) (*models.TicketAccount, error) {
	return r.get(ctx, userID, false)
}

// GetForUpdate retrieves a user's ticket account under an exclusive row lock
func (r *TicketRepository) GetForUpdate(ctx context.Context, userID int64) (*models.TicketAccount, error) {
	return r.get(ctx, userID, true)
}

func (r *TicketRepository) get(ctx context.Context, userID int64, forUpdate bool) (*models.TicketAccount, error) {
	query := `
		SELECT user_id, balance, total_won, total_redeemed, created_at, updated_at
		FROM ticket_accounts
		WHERE user_id = $1
	`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	var account models.TicketAccount
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&account.UserID,
		&account.Balance,
		&account.TotalWon,
		&account.TotalRedeemed,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket account for user %d: %w", userID, err)
	}

	return &account, nil
}

// Credit adds winnings to a user's ticket balance, creating the account
// with a zero baseline if it does not exist yet
func (r *TicketRepository) Credit(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	query := `
		INSERT INTO ticket_accounts (user_id, balance, total_won)
		VALUES ($1, $2, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET balance = ticket_accounts.balance + $2,
		    total_won = ticket_accounts.total_won + $2,
		    updated_at = NOW()
	`
	if _, err := r.q.Exec(ctx, query, userID, amount); err != nil {
		return fmt.Errorf("failed to credit %d tickets to user %d: %w", amount, userID, err)
	}

	return nil
}

// EnsureExists creates a zero-balance ticket account if absent
func (r *TicketRepository) EnsureExists(ctx context.Context, userID int64) error {
	query := `
		INSERT INTO ticket_accounts (user_id, balance)
		VALUES ($1, 0)
		ON CONFLICT (user_id) DO NOTHING
	`
	if _, err := r.q.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to ensure ticket account for user %d: %w", userID, err)
	}

	return nil
}

// Debit removes tickets from a user's balance and tracks the cumulative
// redeemed total. Callers must hold the row lock and have verified the
// balance; the CHECK constraint is the last line of defense.
func (r *TicketRepository) Debit(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	query := `
		UPDATE ticket_accounts
		SET balance = balance - $1,
		    total_redeemed = total_redeemed + $1,
		    updated_at = NOW()
		WHERE user_id = $2
	`
	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to debit %d tickets from user %d: %w", amount, userID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("ticket account for user %d not found", userID)
	}

	return nil
}
