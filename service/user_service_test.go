package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"magbank/models"
)

func TestUserService_GetDashboard(t *testing.T) {
	ctx := context.Background()
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)
	mockMagysRepo := new(MockMagysRepository)
	mockAccountRepo := new(MockAccountRepository)

	mockUoW.SetRepositories(mockUserRepo, mockMagysRepo, nil, nil, nil, nil, mockAccountRepo, nil, nil, nil, nil)
	service := NewUserService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(42)).Return(&models.User{ID: 42, Name: "Ana", Email: "ana@example.com"}, nil)
	mockMagysRepo.On("Get", ctx, int64(42)).Return(&models.MagysAccount{UserID: 42, Balance: 600}, nil)
	mockAccountRepo.On("GetByUser", ctx, int64(42)).Return([]*models.CurrentAccount{
		{ID: 1, UserID: 42, State: models.RequestStateApproved},
		{ID: 2, UserID: 42, State: models.RequestStatePending},
		{ID: 3, UserID: 42, State: models.RequestStateRejected},
	}, nil)

	dashboard, err := service.GetDashboard(ctx, 42)

	assert.NoError(t, err)
	assert.Equal(t, "Ana", dashboard.User.Name)
	assert.Equal(t, int64(600), dashboard.Magys)
	// Rejected accounts are not surfaced on the dashboard
	assert.Len(t, dashboard.Accounts, 1)
	assert.Len(t, dashboard.PendingRequests, 1)
}

func TestUserService_GetDashboard_UserMissing(t *testing.T) {
	ctx := context.Background()
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockUserRepo := new(MockUserRepository)

	mockUoW.SetRepositories(mockUserRepo, nil, nil, nil, nil, nil, nil, nil, nil, nil, nil)
	service := NewUserService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockUserRepo.On("GetByID", ctx, int64(99)).Return(nil, nil)

	dashboard, err := service.GetDashboard(ctx, 99)

	assert.Nil(t, dashboard)
	assert.ErrorIs(t, err, models.ErrUserNotFound)
}
