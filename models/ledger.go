package models

import (
	"errors"
	"time"
)

// EventType represents the type of Magys ledger event
type EventType string

// All ledger event types supported by the system
const (
	// Spending
	EventTypeWagerSpend EventType = "wager_spend"

	// Crediting
	EventTypeProductActivation EventType = "activation_product"
	EventTypePrizeRedemption   EventType = "prize_redemption"
)

// IsCredit returns true if the event type represents a credit
func (et EventType) IsCredit() bool {
	return et == EventTypeProductActivation || et == EventTypePrizeRedemption
}

// IsDebit returns true if the event type represents a debit
func (et EventType) IsDebit() bool {
	return et == EventTypeWagerSpend
}

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// RelatedType represents what type of entity a ledger event's RelatedID refers to
type RelatedType string

const (
	RelatedTypeGame           RelatedType = "game"
	RelatedTypeCurrentAccount RelatedType = "current_account"
	RelatedTypeRedemption     RelatedType = "redemption"
)

// MagysAccount holds a user's Magys balance
type MagysAccount struct {
	UserID    int64     `db:"user_id"`
	Balance   int64     `db:"balance"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// TicketAccount holds a user's ticket balance plus lifetime counters
type TicketAccount struct {
	UserID        int64     `db:"user_id"`
	Balance       int64     `db:"balance"`
	TotalWon      int64     `db:"total_won"`
	TotalRedeemed int64     `db:"total_redeemed"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// LedgerEvent is an append-only audit row for a Magys balance mutation.
// Every Magys mutation produces exactly one event with the signed amount;
// the sum of a user's events equals their current balance.
type LedgerEvent struct {
	ID          int64        `db:"id" json:"id"`
	UserID      int64        `db:"user_id" json:"-"`
	EventType   EventType    `db:"event_type" json:"eventType"`
	RelatedID   *int64       `db:"related_id" json:"relatedId,omitempty"`
	RelatedType *RelatedType `db:"related_type" json:"relatedType,omitempty"`
	Amount      int64        `db:"amount" json:"amount"`
	Description string       `db:"description" json:"description"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`
}

// Validate performs basic consistency checks on the event
func (e *LedgerEvent) Validate() error {
	if e.Amount == 0 {
		return errors.New("ledger event amount cannot be zero")
	}
	if e.EventType.IsDebit() && e.Amount > 0 {
		return errors.New("debit event must carry a negative amount")
	}
	if e.EventType.IsCredit() && e.Amount < 0 {
		return errors.New("credit event must carry a positive amount")
	}
	return nil
}
