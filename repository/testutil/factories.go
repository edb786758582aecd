package testutil

import (
	"time"

	"magbank/models"
)

// CreateTestGame creates a slot game definition with default limits
func CreateTestGame(name string) *models.Game {
	maxBet := int64(1000)
	return &models.Game{
		Name:      name,
		MinBet:    10,
		MaxBet:    &maxBet,
		GameType:  "slot",
		Active:    true,
		CreatedAt: time.Now(),
	}
}

// CreateTestSymbols creates a small weighted symbol table for a game
func CreateTestSymbols(gameID int64) []models.SlotSymbol {
	return []models.SlotSymbol{
		{GameID: gameID, Glyph: "🍒", Name: "Cereza", Weight: 60, Multiplier: 2, Position: 1},
		{GameID: gameID, Glyph: "💎", Name: "Diamante", Weight: 30, Multiplier: 10, Position: 2},
		{GameID: gameID, Glyph: "⭐", Name: "Estrella", Weight: 10, Multiplier: 100, Position: 3},
	}
}

// CreateTestPrize creates an active physical prize with tracked stock
func CreateTestPrize(name string, ticketCost int64, stock int) *models.Prize {
	return &models.Prize{
		Name:       name,
		TicketCost: ticketCost,
		Stock:      &stock,
		Category:   models.PrizeCategoryPhysical,
		Active:     true,
	}
}

// CreateTestMagysPrize creates an active magys-category prize
func CreateTestMagysPrize(name string, ticketCost, magysAmount int64) *models.Prize {
	return &models.Prize{
		Name:        name,
		TicketCost:  ticketCost,
		Category:    models.PrizeCategoryMagys,
		MagysAmount: &magysAmount,
		Active:      true,
	}
}

// CreateTestLedgerEvent creates a wager-spend ledger event
func CreateTestLedgerEvent(userID int64, amount int64) *models.LedgerEvent {
	return &models.LedgerEvent{
		UserID:      userID,
		EventType:   models.EventTypeWagerSpend,
		Amount:      amount,
		Description: "test wager",
	}
}

// CreateTestPlayRecord creates a losing play record
func CreateTestPlayRecord(userID, gameID int64) *models.PlayRecord {
	return &models.PlayRecord{
		UserID:     userID,
		GameID:     gameID,
		Bet:        50,
		Reels:      []string{"🍒", "💎", "⭐"},
		Won:        false,
		Multiplier: 0,
		TicketsWon: 0,
	}
}
