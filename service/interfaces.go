package service

import (
	"context"
	"time"

	"magbank/events"
	"magbank/models"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by id. Returns nil if not found.
	GetByID(ctx context.Context, userID int64) (*models.User, error)

	// Create creates a user and provisions zero-balance Magys and ticket
	// accounts in the same transaction
	Create(ctx context.Context, name, email string) (*models.User, error)
}

// MagysRepository defines the interface for Magys balance access
type MagysRepository interface {
	// Get retrieves a user's Magys account. Returns nil if not found.
	Get(ctx context.Context, userID int64) (*models.MagysAccount, error)

	// GetForUpdate retrieves a user's Magys account under an exclusive row
	// lock scoped to the enclosing transaction. Returns nil if not found.
	GetForUpdate(ctx context.Context, userID int64) (*models.MagysAccount, error)

	// UpdateBalance sets a user's Magys balance atomically
	UpdateBalance(ctx context.Context, userID int64, newBalance int64) error
}

// TicketRepository defines the interface for ticket balance access
type TicketRepository interface {
	// Get retrieves a user's ticket account. Returns nil if not found.
	Get(ctx context.Context, userID int64) (*models.TicketAccount, error)

	// GetForUpdate retrieves a user's ticket account under an exclusive row
	// lock. Returns nil if not found.
	GetForUpdate(ctx context.Context, userID int64) (*models.TicketAccount, error)

	// Credit adds tickets to a user's balance and lifetime winnings,
	// creating the account with a zero baseline if absent
	Credit(ctx context.Context, userID int64, amount int64) error

	// EnsureExists creates a zero-balance ticket account if absent
	EnsureExists(ctx context.Context, userID int64) error

	// Debit removes tickets from a user's balance and adds the same amount
	// to the cumulative-redeemed counter
	Debit(ctx context.Context, userID int64, amount int64) error
}

// LedgerEventRepository defines the interface for the Magys audit trail
type LedgerEventRepository interface {
	// Record appends a ledger event, filling in its ID and timestamp
	Record(ctx context.Context, event *models.LedgerEvent) error

	// GetByUser retrieves a user's most recent ledger events
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.LedgerEvent, error)
}

// GameRepository defines the interface for game definition access
type GameRepository interface {
	// GetActive retrieves all active games
	GetActive(ctx context.Context) ([]*models.Game, error)

	// GetActiveByID retrieves an active game by id. Returns nil if the game
	// is missing or inactive.
	GetActiveByID(ctx context.Context, gameID int64) (*models.Game, error)

	// GetSymbols retrieves a game's symbol table in table order
	GetSymbols(ctx context.Context, gameID int64) ([]models.SlotSymbol, error)
}

// PlayHistoryRepository defines the interface for the play history trail
type PlayHistoryRepository interface {
	// Record appends a play record, filling in its ID and timestamp
	Record(ctx context.Context, record *models.PlayRecord) error

	// GetByUser retrieves a user's most recent plays
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.PlayRecord, error)

	// GetStats aggregates a user's play and redemption activity
	GetStats(ctx context.Context, userID int64) (*models.PlayerStats, error)

	// DeleteOlderThan removes play records older than the cutoff and
	// returns the number of rows removed
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// AccountRepository defines the interface for current account access
type AccountRepository interface {
	// GetActiveRequestByUser retrieves the user's pending-or-approved
	// account, if any. Returns nil if none exists.
	GetActiveRequestByUser(ctx context.Context, userID int64) (*models.CurrentAccount, error)

	// AccountNumberExists reports whether an account number is taken
	AccountNumberExists(ctx context.Context, accountNumber string) (bool, error)

	// Create creates a pending zero-balance account
	Create(ctx context.Context, userID int64, accountNumber string) (*models.CurrentAccount, error)

	// GetByIDForUpdate retrieves an account by id under an exclusive row
	// lock. Returns nil if not found.
	GetByIDForUpdate(ctx context.Context, accountID int64) (*models.CurrentAccount, error)

	// Approve marks a pending account approved
	Approve(ctx context.Context, accountID int64, notes string) error

	// Reject marks a pending account rejected
	Reject(ctx context.Context, accountID int64, reason, notes string) error

	// GetByUser retrieves all of a user's accounts, newest first
	GetByUser(ctx context.Context, userID int64) ([]*models.CurrentAccount, error)

	// GetByIDAndUser retrieves one account owned by the user. Returns nil
	// if not found.
	GetByIDAndUser(ctx context.Context, accountID, userID int64) (*models.CurrentAccount, error)

	// ListPending retrieves all pending requests, oldest first
	ListPending(ctx context.Context) ([]*models.PendingRequest, error)
}

// ProductRequestRepository defines the interface for the companion
// product-request tracking records
type ProductRequestRepository interface {
	// Create creates a pending tracking record
	Create(ctx context.Context, userID int64, productType string, productID int64) error

	// Resolve updates the tracking record for a resolved product request
	Resolve(ctx context.Context, productType string, productID int64, state models.RequestState, reason, notes string) error
}

// RewardRuleRepository defines the interface for reward rule lookup
type RewardRuleRepository interface {
	// GetActiveByProductType retrieves the active reward rule for a product
	// type. Returns nil if no active rule is configured.
	GetActiveByProductType(ctx context.Context, productType string) (*models.RewardRule, error)
}

// PrizeRepository defines the interface for prize catalog access
type PrizeRepository interface {
	// ListActive retrieves active prizes, cheapest first, optionally
	// filtered by category
	ListActive(ctx context.Context, category models.PrizeCategory) ([]*models.Prize, error)

	// GetForUpdate retrieves a prize by id under an exclusive row lock.
	// Returns nil if not found.
	GetForUpdate(ctx context.Context, prizeID int64) (*models.Prize, error)

	// DecrementStock reduces a tracked prize's stock by one
	DecrementStock(ctx context.Context, prizeID int64) error
}

// RedemptionRepository defines the interface for redemption records
type RedemptionRepository interface {
	// Create creates a redemption record, filling in its ID and timestamp
	Create(ctx context.Context, redemption *models.Redemption) error

	// MarkDelivered transitions a redemption to delivered
	MarkDelivered(ctx context.Context, redemptionID int64, trackingCode string) error

	// GetByUser retrieves a user's redemptions, newest first
	GetByUser(ctx context.Context, userID int64) ([]*models.Redemption, error)
}

// EventPublisher publishes events within a unit of work
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork provides transactional access to all repositories.
// All repositories returned from a single UnitOfWork share one database
// transaction; the transaction boundary is the concurrency boundary.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() UserRepository
	MagysRepository() MagysRepository
	TicketRepository() TicketRepository
	LedgerEventRepository() LedgerEventRepository
	GameRepository() GameRepository
	PlayHistoryRepository() PlayHistoryRepository
	AccountRepository() AccountRepository
	ProductRequestRepository() ProductRequestRepository
	RewardRuleRepository() RewardRuleRepository
	PrizeRepository() PrizeRepository
	RedemptionRepository() RedemptionRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates new UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// WagerService orchestrates slot plays and game reads
type WagerService interface {
	// Play executes one slot play atomically: validate, lock, draw, settle
	Play(ctx context.Context, userID, gameID, bet int64, sourceIP string) (*models.PlayResult, error)

	// ListGames returns all active games
	ListGames(ctx context.Context) ([]*models.Game, error)

	// GetSymbols returns a game's symbol table
	GetSymbols(ctx context.Context, gameID int64) ([]models.SlotSymbol, error)

	// GetHistory returns a user's recent plays
	GetHistory(ctx context.Context, userID int64, limit int) ([]*models.PlayRecord, error)

	// GetStats returns a user's aggregate play statistics
	GetStats(ctx context.Context, userID int64) (*models.PlayerStats, error)
}

// LedgerService exposes balance and audit reads
type LedgerService interface {
	// GetMagysBalance returns a user's Magys balance
	GetMagysBalance(ctx context.Context, userID int64) (int64, error)

	// GetMagysHistory returns a user's recent ledger events
	GetMagysHistory(ctx context.Context, userID int64, limit int) ([]*models.LedgerEvent, error)

	// GetTicketAccount returns a user's ticket account; a missing row reads
	// as zero balances
	GetTicketAccount(ctx context.Context, userID int64) (*models.TicketAccount, error)
}

// AccountService runs the current-account request workflow
type AccountService interface {
	// RequestAccount creates a pending account request for the user
	RequestAccount(ctx context.Context, userID int64) (*models.RequestAccountResult, error)

	// ResolveRequest approves or rejects a pending request; approval
	// triggers the one-time Magys reward
	ResolveRequest(ctx context.Context, accountID int64, action models.ResolveAction, reason, notes string) (*models.ResolveRequestResult, error)

	// GetAccounts returns the user's accounts
	GetAccounts(ctx context.Context, userID int64) ([]*models.CurrentAccount, error)

	// GetAccountDetail returns one account owned by the user
	GetAccountDetail(ctx context.Context, accountID, userID int64) (*models.CurrentAccount, error)

	// ListPendingRequests returns the admin approval queue
	ListPendingRequests(ctx context.Context) ([]*models.PendingRequest, error)
}

// RedemptionService runs the prize shop
type RedemptionService interface {
	// ListPrizes returns active prizes, optionally filtered by category
	ListPrizes(ctx context.Context, category models.PrizeCategory) ([]*models.Prize, error)

	// Redeem exchanges tickets for a prize atomically
	Redeem(ctx context.Context, userID, prizeID int64, shippingAddress string) (*models.RedeemResult, error)

	// GetRedemptions returns the user's redemption history
	GetRedemptions(ctx context.Context, userID int64) ([]*models.Redemption, error)
}

// UserService exposes user-centric aggregate reads
type UserService interface {
	// GetDashboard assembles the user's home view
	GetDashboard(ctx context.Context, userID int64) (*models.Dashboard, error)
}
