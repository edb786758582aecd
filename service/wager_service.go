package service

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"magbank/config"
	"magbank/events"
	"magbank/models"
)

type wagerService struct {
	uowFactory UnitOfWorkFactory
	slots      *SlotMachine
}

// NewWagerService creates a new wager service
func NewWagerService(uowFactory UnitOfWorkFactory, slots *SlotMachine) WagerService {
	return &wagerService{
		uowFactory: uowFactory,
		slots:      slots,
	}
}

// Play executes one slot play. Validation happens before the transaction
// opens; everything from the balance lock to the audit rows commits
// atomically, so a failure at any point leaves no partial debit, credit,
// or orphan history row.
func (s *wagerService) Play(ctx context.Context, userID, gameID, bet int64, sourceIP string) (*models.PlayResult, error) {
	cfg := config.Get()

	// Game-wide floor, checked before any transaction opens
	if bet < cfg.MinimumBet {
		return nil, fmt.Errorf("%w: minimum bet is %d magys", models.ErrInvalidBet, cfg.MinimumBet)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	game, err := uow.GameRepository().GetActiveByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, models.ErrGameNotFound
	}

	if bet < game.MinBet || (game.MaxBet != nil && bet > *game.MaxBet) {
		return nil, fmt.Errorf("%w: bet must be between %d and %v magys", models.ErrInvalidBet, game.MinBet, game.MaxBet)
	}

	// Exclusive lock on the Magys balance: concurrent plays by the same
	// user serialize here, plays by different users stay independent
	magys, err := uow.MagysRepository().GetForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock magys balance: %w", err)
	}
	if magys == nil {
		return nil, models.ErrMagysAccountNotFound
	}
	if magys.Balance < bet {
		return nil, models.NewInsufficientFunds(magys.Balance, bet)
	}

	// Symbol table is fetched fresh per play to allow live tuning
	symbols, err := uow.GameRepository().GetSymbols(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get symbol table: %w", err)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("game %d has no symbol table", gameID)
	}

	reels, won, multiplier := s.slots.Play(symbols, ReelCount)

	var ticketsWon int64
	if won {
		ticketsWon = bet * multiplier
	}

	// Settle: the bet is debited unconditionally
	newMagysBalance := magys.Balance - bet
	if err := uow.MagysRepository().UpdateBalance(ctx, userID, newMagysBalance); err != nil {
		return nil, fmt.Errorf("failed to debit bet: %w", err)
	}

	if ticketsWon > 0 {
		if err := uow.TicketRepository().Credit(ctx, userID, ticketsWon); err != nil {
			return nil, fmt.Errorf("failed to credit tickets: %w", err)
		}
	} else {
		if err := uow.TicketRepository().EnsureExists(ctx, userID); err != nil {
			return nil, fmt.Errorf("failed to ensure ticket account: %w", err)
		}
	}

	reelGlyphs := make([]string, len(reels))
	for i, r := range reels {
		reelGlyphs[i] = r.Glyph
	}

	record := &models.PlayRecord{
		UserID:     userID,
		GameID:     gameID,
		Bet:        bet,
		Reels:      reelGlyphs,
		Won:        won,
		Multiplier: multiplier,
		TicketsWon: ticketsWon,
		SourceIP:   sourceIP,
	}
	if err := uow.PlayHistoryRepository().Record(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to record play: %w", err)
	}

	ledgerEvent := &models.LedgerEvent{
		UserID:      userID,
		EventType:   models.EventTypeWagerSpend,
		RelatedID:   &game.ID,
		RelatedType: relatedType(models.RelatedTypeGame),
		Amount:      -bet,
		Description: fmt.Sprintf("Played %s - bet %d magys", game.Name, bet),
	}
	if err := uow.LedgerEventRepository().Record(ctx, ledgerEvent); err != nil {
		return nil, fmt.Errorf("failed to record ledger event: %w", err)
	}

	tickets, err := uow.TicketRepository().Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket balance: %w", err)
	}
	var ticketBalance int64
	if tickets != nil {
		ticketBalance = tickets.Balance
	}

	uow.EventBus().Publish(events.MagysChangeEvent{
		UserID:     userID,
		OldBalance: magys.Balance,
		NewBalance: newMagysBalance,
		EventKind:  models.EventTypeWagerSpend,
		Amount:     -bet,
	})
	uow.EventBus().Publish(events.PlayCompletedEvent{
		UserID:     userID,
		GameID:     gameID,
		Bet:        bet,
		Won:        won,
		TicketsWon: ticketsWon,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userID":     userID,
		"gameID":     gameID,
		"bet":        bet,
		"won":        won,
		"ticketsWon": ticketsWon,
	}).Debug("Slot play settled")

	return &models.PlayResult{
		Reels:      reels,
		Won:        won,
		Multiplier: multiplier,
		TicketsWon: ticketsWon,
		Bet:        bet,
		Balances: models.Balances{
			Magys:   newMagysBalance,
			Tickets: ticketBalance,
		},
	}, nil
}

// ListGames returns all active games
func (s *wagerService) ListGames(ctx context.Context) ([]*models.Game, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	games, err := uow.GameRepository().GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return games, nil
}

// GetSymbols returns a game's symbol table
func (s *wagerService) GetSymbols(ctx context.Context, gameID int64) ([]models.SlotSymbol, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	game, err := uow.GameRepository().GetActiveByID(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	if game == nil {
		return nil, models.ErrGameNotFound
	}

	symbols, err := uow.GameRepository().GetSymbols(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get symbols: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return symbols, nil
}

// GetHistory returns a user's recent plays
func (s *wagerService) GetHistory(ctx context.Context, userID int64, limit int) ([]*models.PlayRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	records, err := uow.PlayHistoryRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get play history: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return records, nil
}

// GetStats returns a user's aggregate play statistics
func (s *wagerService) GetStats(ctx context.Context, userID int64) (*models.PlayerStats, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	stats, err := uow.PlayHistoryRepository().GetStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return stats, nil
}

func relatedType(rt models.RelatedType) *models.RelatedType {
	return &rt
}
