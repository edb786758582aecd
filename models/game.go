package models

import "time"

// Game is a playable game definition. Immutable during a play; the symbol
// table is fetched fresh per play so weights can be tuned live.
type Game struct {
	ID          int64     `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	MinBet      int64     `db:"min_bet" json:"minBet"`
	MaxBet      *int64    `db:"max_bet" json:"maxBet,omitempty"`
	GameType    string    `db:"game_type" json:"gameType"`
	RTP         *float64  `db:"rtp" json:"rtp,omitempty"`
	Active      bool      `db:"active" json:"active"`
	CreatedAt   time.Time `db:"created_at" json:"-"`
}

// SlotSymbol is one entry of a game's weighted symbol table
type SlotSymbol struct {
	ID         int64   `db:"id" json:"-"`
	GameID     int64   `db:"game_id" json:"-"`
	Glyph      string  `db:"glyph" json:"glyph"`
	Name       string  `db:"name" json:"name"`
	Weight     float64 `db:"weight" json:"weight"`
	Multiplier int64   `db:"multiplier" json:"multiplier"`
	Position   int     `db:"position" json:"position"`
}
