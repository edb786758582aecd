package repository

import (
	"context"
	"fmt"

	"magbank/database"
	"magbank/models"
)

// LedgerEventRepository implements the service.LedgerEventRepository interface
type LedgerEventRepository struct {
	q queryable
}

// NewLedgerEventRepository creates a new ledger event repository
func NewLedgerEventRepository(db *database.DB) *LedgerEventRepository {
	return &LedgerEventRepository{q: db.Pool}
}

// newLedgerEventRepositoryWithTx creates a new ledger event repository with a transaction
func newLedgerEventRepositoryWithTx(tx queryable) *LedgerEventRepository {
	return &LedgerEventRepository{q: tx}
}

// Record appends a new ledger event
func (r *LedgerEventRepository) Record(ctx context.Context, event *models.LedgerEvent) error {
	if err := event.Validate(); err != nil {
		return fmt.Errorf("invalid ledger event for user %d: %w", event.UserID, err)
	}

	query := `
		INSERT INTO magys_ledger_events
		(user_id, event_type, related_id, related_type, amount, description)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		event.UserID,
		event.EventType,
		event.RelatedID,
		event.RelatedType,
		event.Amount,
		event.Description,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record ledger event for user %d: %w", event.UserID, err)
	}

	return nil
}

// GetByUser retrieves a user's most recent ledger events
func (r *LedgerEventRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.LedgerEvent, error) {
	query := `
		SELECT id, user_id, event_type, related_id, related_type, amount, description, created_at
		FROM magys_ledger_events
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger events for user %d: %w", userID, err)
	}
	defer rows.Close()

	var events []*models.LedgerEvent
	for rows.Next() {
		var event models.LedgerEvent
		err := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.EventType,
			&event.RelatedID,
			&event.RelatedType,
			&event.Amount,
			&event.Description,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger event: %w", err)
		}
		events = append(events, &event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger events: %w", err)
	}

	return events, nil
}
