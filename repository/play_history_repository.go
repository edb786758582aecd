package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"magbank/database"
	"magbank/models"
)

// PlayHistoryRepository implements the service.PlayHistoryRepository interface
type PlayHistoryRepository struct {
	q queryable
}

// NewPlayHistoryRepository creates a new play history repository
func NewPlayHistoryRepository(db *database.DB) *PlayHistoryRepository {
	return &PlayHistoryRepository{q: db.Pool}
}

// newPlayHistoryRepositoryWithTx creates a new play history repository with a transaction
func newPlayHistoryRepositoryWithTx(tx queryable) *PlayHistoryRepository {
	return &PlayHistoryRepository{q: tx}
}

// Record appends a new play record
func (r *PlayHistoryRepository) Record(ctx context.Context, record *models.PlayRecord) error {
	reelsJSON, err := json.Marshal(record.Reels)
	if err != nil {
		return fmt.Errorf("failed to marshal reels: %w", err)
	}

	query := `
		INSERT INTO play_history
		(user_id, game_id, bet, reels, won, multiplier, tickets_won, source_ip)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, played_at
	`

	err = r.q.QueryRow(ctx, query,
		record.UserID,
		record.GameID,
		record.Bet,
		reelsJSON,
		record.Won,
		record.Multiplier,
		record.TicketsWon,
		record.SourceIP,
	).Scan(&record.ID, &record.PlayedAt)
	if err != nil {
		return fmt.Errorf("failed to record play for user %d: %w", record.UserID, err)
	}

	return nil
}

// GetByUser retrieves a user's most recent plays
func (r *PlayHistoryRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.PlayRecord, error) {
	query := `
		SELECT ph.id, ph.user_id, ph.game_id, g.name, ph.bet, ph.reels,
		       ph.won, ph.multiplier, ph.tickets_won, ph.played_at
		FROM play_history ph
		JOIN games g ON g.id = ph.game_id
		WHERE ph.user_id = $1
		ORDER BY ph.played_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get play history for user %d: %w", userID, err)
	}
	defer rows.Close()

	var records []*models.PlayRecord
	for rows.Next() {
		var record models.PlayRecord
		var reelsJSON []byte
		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.GameID,
			&record.GameName,
			&record.Bet,
			&reelsJSON,
			&record.Won,
			&record.Multiplier,
			&record.TicketsWon,
			&record.PlayedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan play record: %w", err)
		}
		if err := json.Unmarshal(reelsJSON, &record.Reels); err != nil {
			return nil, fmt.Errorf("failed to unmarshal reels: %w", err)
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate play records: %w", err)
	}

	return records, nil
}

// GetStats aggregates a user's play and redemption activity
func (r *PlayHistoryRepository) GetStats(ctx context.Context, userID int64) (*models.PlayerStats, error) {
	query := `
		SELECT
			COUNT(*),
			COALESCE(SUM(bet), 0),
			COALESCE(SUM(tickets_won), 0),
			(SELECT COUNT(*) FROM redemptions WHERE user_id = $1)
		FROM play_history
		WHERE user_id = $1
	`

	var stats models.PlayerStats
	err := r.q.QueryRow(ctx, query, userID).Scan(
		&stats.TotalPlays,
		&stats.TotalMagysSpent,
		&stats.TotalTicketsWon,
		&stats.TotalRedemptions,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats for user %d: %w", userID, err)
	}

	return &stats, nil
}

// DeleteOlderThan removes play records older than the cutoff
func (r *PlayHistoryRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.q.Exec(ctx, `DELETE FROM play_history WHERE played_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete play records before %v: %w", cutoff, err)
	}

	return result.RowsAffected(), nil
}
