package models

import "time"

// PlayRecord is an append-only history row for one completed wager
type PlayRecord struct {
	ID         int64     `db:"id" json:"id"`
	UserID     int64     `db:"user_id" json:"-"`
	GameID     int64     `db:"game_id" json:"gameId"`
	GameName   string    `db:"game_name" json:"game,omitempty"`
	Bet        int64     `db:"bet" json:"bet"`
	Reels      []string  `db:"reels" json:"reels"`
	Won        bool      `db:"won" json:"won"`
	Multiplier int64     `db:"multiplier" json:"multiplier"`
	TicketsWon int64     `db:"tickets_won" json:"ticketsWon"`
	SourceIP   string    `db:"source_ip" json:"-"`
	PlayedAt   time.Time `db:"played_at" json:"playedAt"`
}

// Balances is the pair of reward-currency balances returned after a mutation
type Balances struct {
	Magys   int64 `json:"magys"`
	Tickets int64 `json:"tickets"`
}

// PlayResult is the outcome of one slot play
type PlayResult struct {
	Reels      []SlotSymbol `json:"-"`
	Won        bool         `json:"won"`
	Multiplier int64        `json:"multiplier"`
	TicketsWon int64        `json:"ticketsWon"`
	Bet        int64        `json:"bet"`
	Balances   Balances     `json:"balances"`
}

// PlayerStats aggregates a user's play and redemption activity
type PlayerStats struct {
	TotalPlays       int64 `db:"total_plays" json:"totalPlays"`
	TotalMagysSpent  int64 `db:"total_magys_spent" json:"totalMagysSpent"`
	TotalTicketsWon  int64 `db:"total_tickets_won" json:"totalTicketsWon"`
	TotalRedemptions int64 `db:"total_redemptions" json:"totalRedemptions"`
}
