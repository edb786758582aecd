package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"magbank/database"
	"magbank/events"
	"magbank/service"
)

// unitOfWork implements the service.UnitOfWork interface
type unitOfWork struct {
	db                 *database.DB
	tx                 pgx.Tx
	ctx                context.Context
	transactionalBus   *events.TransactionalBus
	userRepo           service.UserRepository
	magysRepo          service.MagysRepository
	ticketRepo         service.TicketRepository
	ledgerEventRepo    service.LedgerEventRepository
	gameRepo           service.GameRepository
	playHistoryRepo    service.PlayHistoryRepository
	accountRepo        service.AccountRepository
	productRequestRepo service.ProductRequestRepository
	rewardRuleRepo     service.RewardRuleRepository
	prizeRepo          service.PrizeRepository
	redemptionRepo     service.RedemptionRepository
}

// NewUnitOfWorkFactory creates a new UnitOfWork factory
func NewUnitOfWorkFactory(db *database.DB, eventBus *events.Bus) service.UnitOfWorkFactory {
	return &unitOfWorkFactory{
		db:       db,
		eventBus: eventBus,
	}
}

type unitOfWorkFactory struct {
	db       *database.DB
	eventBus *events.Bus
}

func (f *unitOfWorkFactory) Create() service.UnitOfWork {
	return &unitOfWork{
		db:               f.db,
		transactionalBus: events.NewTransactionalBus(f.eventBus),
	}
}

// Begin starts a new transaction
func (u *unitOfWork) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}

	tx, err := u.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	u.tx = tx
	u.ctx = ctx

	// Create repositories with the transaction
	u.userRepo = newUserRepositoryWithTx(tx)
	u.magysRepo = newMagysRepositoryWithTx(tx)
	u.ticketRepo = newTicketRepositoryWithTx(tx)
	u.ledgerEventRepo = newLedgerEventRepositoryWithTx(tx)
	u.gameRepo = newGameRepositoryWithTx(tx)
	u.playHistoryRepo = newPlayHistoryRepositoryWithTx(tx)
	u.accountRepo = newAccountRepositoryWithTx(tx)
	u.productRequestRepo = newProductRequestRepositoryWithTx(tx)
	u.rewardRuleRepo = newRewardRuleRepositoryWithTx(tx)
	u.prizeRepo = newPrizeRepositoryWithTx(tx)
	u.redemptionRepo = newRedemptionRepositoryWithTx(tx)

	return nil
}

// Commit commits the transaction
func (u *unitOfWork) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}

	err := u.tx.Commit(u.ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	u.tx = nil

	// Flush pending events after successful commit
	if u.transactionalBus != nil {
		u.transactionalBus.Flush(u.ctx)
	}

	return nil
}

// Rollback rolls back the transaction
func (u *unitOfWork) Rollback() error {
	if u.tx == nil {
		return nil // Nothing to rollback
	}

	err := u.tx.Rollback(u.ctx)
	if err != nil && err != pgx.ErrTxClosed {
		return fmt.Errorf("failed to rollback transaction: %w", err)
	}

	u.tx = nil

	// Discard pending events on rollback
	if u.transactionalBus != nil {
		u.transactionalBus.Discard()
	}

	return nil
}

// UserRepository returns the user repository for this unit of work
func (u *unitOfWork) UserRepository() service.UserRepository {
	if u.userRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.userRepo
}

// MagysRepository returns the Magys repository for this unit of work
func (u *unitOfWork) MagysRepository() service.MagysRepository {
	if u.magysRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.magysRepo
}

// TicketRepository returns the ticket repository for this unit of work
func (u *unitOfWork) TicketRepository() service.TicketRepository {
	if u.ticketRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.ticketRepo
}

// LedgerEventRepository returns the ledger event repository for this unit of work
func (u *unitOfWork) LedgerEventRepository() service.LedgerEventRepository {
	if u.ledgerEventRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.ledgerEventRepo
}

// GameRepository returns the game repository for this unit of work
func (u *unitOfWork) GameRepository() service.GameRepository {
	if u.gameRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.gameRepo
}

// PlayHistoryRepository returns the play history repository for this unit of work
func (u *unitOfWork) PlayHistoryRepository() service.PlayHistoryRepository {
	if u.playHistoryRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.playHistoryRepo
}

// AccountRepository returns the account repository for this unit of work
func (u *unitOfWork) AccountRepository() service.AccountRepository {
	if u.accountRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.accountRepo
}

// ProductRequestRepository returns the product request repository for this unit of work
func (u *unitOfWork) ProductRequestRepository() service.ProductRequestRepository {
	if u.productRequestRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.productRequestRepo
}

// RewardRuleRepository returns the reward rule repository for this unit of work
func (u *unitOfWork) RewardRuleRepository() service.RewardRuleRepository {
	if u.rewardRuleRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.rewardRuleRepo
}

// PrizeRepository returns the prize repository for this unit of work
func (u *unitOfWork) PrizeRepository() service.PrizeRepository {
	if u.prizeRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.prizeRepo
}

// RedemptionRepository returns the redemption repository for this unit of work
func (u *unitOfWork) RedemptionRepository() service.RedemptionRepository {
	if u.redemptionRepo == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.redemptionRepo
}

// EventBus returns the transactional event bus for this unit of work
func (u *unitOfWork) EventBus() service.EventPublisher {
	if u.transactionalBus == nil {
		panic("unit of work not started - call Begin() first")
	}
	return u.transactionalBus
}
