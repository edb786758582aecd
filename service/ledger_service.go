package service

import (
	"context"
	"fmt"

	"magbank/models"
)

type ledgerService struct {
	uowFactory UnitOfWorkFactory
}

// NewLedgerService creates a new ledger service
func NewLedgerService(uowFactory UnitOfWorkFactory) LedgerService {
	return &ledgerService{
		uowFactory: uowFactory,
	}
}

// GetMagysBalance returns a user's Magys balance
func (s *ledgerService) GetMagysBalance(ctx context.Context, userID int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	magys, err := uow.MagysRepository().Get(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to get magys balance: %w", err)
	}
	if magys == nil {
		return 0, models.ErrMagysAccountNotFound
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return magys.Balance, nil
}

// GetMagysHistory returns a user's recent ledger events, newest first
func (s *ledgerService) GetMagysHistory(ctx context.Context, userID int64, limit int) ([]*models.LedgerEvent, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	history, err := uow.LedgerEventRepository().GetByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger history: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return history, nil
}

// GetTicketAccount returns a user's ticket account. A user who has never
// won or been provisioned reads as zero balances rather than an error.
func (s *ledgerService) GetTicketAccount(ctx context.Context, userID int64) (*models.TicketAccount, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	tickets, err := uow.TicketRepository().Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket account: %w", err)
	}
	if tickets == nil {
		tickets = &models.TicketAccount{UserID: userID}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return tickets, nil
}
