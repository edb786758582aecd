package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"magbank/database"
	"magbank/models"
)

// GameRepository implements the service.GameRepository interface
type GameRepository struct {
	q queryable
}

// NewGameRepository creates a new game repository
func NewGameRepository(db *database.DB) *GameRepository {
	return &GameRepository{q: db.Pool}
}

// newGameRepositoryWithTx creates a new game repository with a transaction
func newGameRepositoryWithTx(tx queryable) *GameRepository {
	return &GameRepository{q: tx}
}

// GetActive retrieves all active games
func (r *GameRepository) GetActive(ctx context.Context) ([]*models.Game, error) {
	query := `
		SELECT id, name, description, min_bet, max_bet, game_type, rtp, active, created_at
		FROM games
		WHERE active = TRUE
		ORDER BY id
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get active games: %w", err)
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		var game models.Game
		err := rows.Scan(
			&game.ID,
			&game.Name,
			&game.Description,
			&game.MinBet,
			&game.MaxBet,
			&game.GameType,
			&game.RTP,
			&game.Active,
			&game.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		games = append(games, &game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate games: %w", err)
	}

	return games, nil
}

// GetActiveByID retrieves an active game by id
func (r *GameRepository) GetActiveByID(ctx context.Context, gameID int64) (*models.Game, error) {
	query := `
		SELECT id, name, description, min_bet, max_bet, game_type, rtp, active, created_at
		FROM games
		WHERE id = $1 AND active = TRUE
	`

	var game models.Game
	err := r.q.QueryRow(ctx, query, gameID).Scan(
		&game.ID,
		&game.Name,
		&game.Description,
		&game.MinBet,
		&game.MaxBet,
		&game.GameType,
		&game.RTP,
		&game.Active,
		&game.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game %d: %w", gameID, err)
	}

	return &game, nil
}

// GetSymbols retrieves a game's symbol table in table order
func (r *GameRepository) GetSymbols(ctx context.Context, gameID int64) ([]models.SlotSymbol, error) {
	query := `
		SELECT id, game_id, glyph, name, weight, multiplier, position
		FROM slot_symbols
		WHERE game_id = $1
		ORDER BY position
	`

	rows, err := r.q.Query(ctx, query, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get symbols for game %d: %w", gameID, err)
	}
	defer rows.Close()

	var symbols []models.SlotSymbol
	for rows.Next() {
		var symbol models.SlotSymbol
		err := rows.Scan(
			&symbol.ID,
			&symbol.GameID,
			&symbol.Glyph,
			&symbol.Name,
			&symbol.Weight,
			&symbol.Multiplier,
			&symbol.Position,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate symbols: %w", err)
	}

	return symbols, nil
}
