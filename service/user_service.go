package service

import (
	"context"
	"fmt"

	"magbank/models"
)

type userService struct {
	uowFactory UnitOfWorkFactory
}

// NewUserService creates a new user service
func NewUserService(uowFactory UnitOfWorkFactory) UserService {
	return &userService{
		uowFactory: uowFactory,
	}
}

// GetDashboard assembles the user's home view from a single snapshot
func (s *userService) GetDashboard(ctx context.Context, userID int64) (*models.Dashboard, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	user, err := uow.UserRepository().GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}

	magys, err := uow.MagysRepository().Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get magys balance: %w", err)
	}
	var magysBalance int64
	if magys != nil {
		magysBalance = magys.Balance
	}

	accounts, err := uow.AccountRepository().GetByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts: %w", err)
	}

	var approved, pending []*models.CurrentAccount
	for _, a := range accounts {
		switch a.State {
		case models.RequestStateApproved:
			approved = append(approved, a)
		case models.RequestStatePending:
			pending = append(pending, a)
		}
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return &models.Dashboard{
		User:            user,
		Magys:           magysBalance,
		Accounts:        approved,
		PendingRequests: pending,
	}, nil
}
