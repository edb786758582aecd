package models

import "errors"

// Domain errors surfaced by the services. The HTTP layer maps these to
// status codes; anything else is treated as an infrastructure failure.
var (
	// Wagering
	ErrInvalidBet           = errors.New("invalid bet")
	ErrGameNotFound         = errors.New("game not found")
	ErrInsufficientFunds    = errors.New("insufficient magys balance")
	ErrMagysAccountNotFound = errors.New("magys account not found")

	// Account requests
	ErrDuplicateRequest        = errors.New("account request already exists")
	ErrRequestNotFound         = errors.New("account request not found")
	ErrRequestNotPending       = errors.New("account request is not pending")
	ErrInvalidAction           = errors.New("invalid resolve action")
	ErrAccountNumberGeneration = errors.New("failed to generate unique account number")
	ErrAccountNotFound         = errors.New("account not found")

	// Redemptions
	ErrPrizeNotFound         = errors.New("prize not found")
	ErrPrizeInactive         = errors.New("prize is not available")
	ErrOutOfStock            = errors.New("prize is out of stock")
	ErrInsufficientTickets   = errors.New("insufficient ticket balance")
	ErrTicketAccountNotFound = errors.New("ticket account not found")

	// Users
	ErrUserNotFound = errors.New("user not found")
)

// BalanceError carries the current and required amounts for conflict errors
// so the client can show the shortfall
type BalanceError struct {
	Err      error
	Balance  int64
	Required int64
}

func (e *BalanceError) Error() string {
	return e.Err.Error()
}

func (e *BalanceError) Unwrap() error {
	return e.Err
}

// NewInsufficientFunds returns an ErrInsufficientFunds carrying balances
func NewInsufficientFunds(balance, required int64) error {
	return &BalanceError{Err: ErrInsufficientFunds, Balance: balance, Required: required}
}

// NewInsufficientTickets returns an ErrInsufficientTickets carrying balances
func NewInsufficientTickets(balance, required int64) error {
	return &BalanceError{Err: ErrInsufficientTickets, Balance: balance, Required: required}
}
