package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"magbank/database"
	"magbank/models"
)

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*models.User, error) {
	query := `
		SELECT id, name, email, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user models.User
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}

	return &user, nil
}

// Create creates a user and provisions both reward ledgers with zero
// balances. Both currencies follow the same provisioning policy.
func (r *UserRepository) Create(ctx context.Context, name, email string) (*models.User, error) {
	query := `
		INSERT INTO users (name, email)
		VALUES ($1, $2)
		RETURNING id, created_at, updated_at
	`

	user := &models.User{Name: name, Email: email}
	err := r.q.QueryRow(ctx, query, name, email).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", email, err)
	}

	if _, err := r.q.Exec(ctx,
		`INSERT INTO magys_accounts (user_id, balance) VALUES ($1, 0)`, user.ID); err != nil {
		return nil, fmt.Errorf("failed to provision magys account for user %d: %w", user.ID, err)
	}
	if _, err := r.q.Exec(ctx,
		`INSERT INTO ticket_accounts (user_id, balance) VALUES ($1, 0)`, user.ID); err != nil {
		return nil, fmt.Errorf("failed to provision ticket account for user %d: %w", user.ID, err)
	}

	return user, nil
}
