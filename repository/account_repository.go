package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"magbank/database"
	"magbank/models"
)

// AccountRepository implements the service.AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

const accountColumns = `
	id, user_id, account_number, balance, state,
	requested_at, resolved_at, rejection_reason, approval_notes
`

func scanAccount(row pgx.Row) (*models.CurrentAccount, error) {
	var account models.CurrentAccount
	err := row.Scan(
		&account.ID,
		&account.UserID,
		&account.AccountNumber,
		&account.Balance,
		&account.State,
		&account.RequestedAt,
		&account.ResolvedAt,
		&account.RejectionReason,
		&account.ApprovalNotes,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetActiveRequestByUser retrieves the user's pending-or-approved account.
// Rejected accounts do not block a new request.
func (r *AccountRepository) GetActiveRequestByUser(ctx context.Context, userID int64) (*models.CurrentAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM current_accounts
		WHERE user_id = $1 AND state IN ('pending', 'approved')
		LIMIT 1
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get active account request for user %d: %w", userID, err)
	}
	return account, nil
}

// AccountNumberExists reports whether an account number is taken
func (r *AccountRepository) AccountNumberExists(ctx context.Context, accountNumber string) (bool, error) {
	var exists bool
	err := r.q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM current_accounts WHERE account_number = $1)`,
		accountNumber,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check account number %s: %w", accountNumber, err)
	}

	return exists, nil
}

// Create creates a pending zero-balance account. A partial unique index
// allows only one pending-or-approved account per user, so a concurrent
// duplicate request fails here even though the pre-insert check passed.
func (r *AccountRepository) Create(ctx context.Context, userID int64, accountNumber string) (*models.CurrentAccount, error) {
	query := `
		INSERT INTO current_accounts (user_id, account_number)
		VALUES ($1, $2)
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, userID, accountNumber))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "idx_current_accounts_open_request" {
			return nil, fmt.Errorf("%w: user %d already holds an open account", models.ErrDuplicateRequest, userID)
		}
		return nil, fmt.Errorf("failed to create account for user %d: %w", userID, err)
	}
	return account, nil
}

// GetByIDForUpdate retrieves an account by id under an exclusive row lock
func (r *AccountRepository) GetByIDForUpdate(ctx context.Context, accountID int64) (*models.CurrentAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM current_accounts
		WHERE id = $1
		FOR UPDATE
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, accountID))
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d for update: %w", accountID, err)
	}
	return account, nil
}

// Approve marks a pending account approved
func (r *AccountRepository) Approve(ctx context.Context, accountID int64, notes string) error {
	query := `
		UPDATE current_accounts
		SET state = 'approved', resolved_at = NOW(), approval_notes = $1
		WHERE id = $2 AND state = 'pending'
	`
	result, err := r.q.Exec(ctx, query, notes, accountID)
	if err != nil {
		return fmt.Errorf("failed to approve account %d: %w", accountID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d is not pending", accountID)
	}

	return nil
}

// Reject marks a pending account rejected
func (r *AccountRepository) Reject(ctx context.Context, accountID int64, reason, notes string) error {
	query := `
		UPDATE current_accounts
		SET state = 'rejected', resolved_at = NOW(), rejection_reason = $1, approval_notes = $2
		WHERE id = $3 AND state = 'pending'
	`
	result, err := r.q.Exec(ctx, query, reason, notes, accountID)
	if err != nil {
		return fmt.Errorf("failed to reject account %d: %w", accountID, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %d is not pending", accountID)
	}

	return nil
}

// GetByUser retrieves all of a user's accounts, newest first
func (r *AccountRepository) GetByUser(ctx context.Context, userID int64) ([]*models.CurrentAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM current_accounts
		WHERE user_id = $1
		ORDER BY requested_at DESC
	`

	rows, err := r.q.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts for user %d: %w", userID, err)
	}
	defer rows.Close()

	var accounts []*models.CurrentAccount
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, account)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

// GetByIDAndUser retrieves one account owned by the user
func (r *AccountRepository) GetByIDAndUser(ctx context.Context, accountID, userID int64) (*models.CurrentAccount, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM current_accounts
		WHERE id = $1 AND user_id = $2
	`

	account, err := scanAccount(r.q.QueryRow(ctx, query, accountID, userID))
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d for user %d: %w", accountID, userID, err)
	}
	return account, nil
}

// ListPending retrieves all pending requests with requester details,
// oldest first
func (r *AccountRepository) ListPending(ctx context.Context) ([]*models.PendingRequest, error) {
	query := `
		SELECT ca.id, ca.account_number, ca.user_id, u.name, u.email, ca.requested_at
		FROM current_accounts ca
		JOIN users u ON u.id = ca.user_id
		WHERE ca.state = 'pending'
		ORDER BY ca.requested_at ASC
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending requests: %w", err)
	}
	defer rows.Close()

	var requests []*models.PendingRequest
	for rows.Next() {
		var req models.PendingRequest
		err := rows.Scan(
			&req.ID,
			&req.AccountNumber,
			&req.UserID,
			&req.UserName,
			&req.UserEmail,
			&req.RequestedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending request: %w", err)
		}
		requests = append(requests, &req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate pending requests: %w", err)
	}

	return requests, nil
}
