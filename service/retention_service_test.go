package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"magbank/config"
)

func TestRetentionService_PurgeOldPlays(t *testing.T) {
	config.SetTestConfig(config.NewTestConfig())
	defer config.ResetConfig()

	ctx := context.Background()
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockPlayRepo := new(MockPlayHistoryRepository)

	mockUoW.SetRepositories(nil, nil, nil, nil, nil, mockPlayRepo, nil, nil, nil, nil, nil)
	service := NewRetentionService(mockFactory)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockPlayRepo.On("DeleteOlderThan", ctx, mock.MatchedBy(func(cutoff time.Time) bool {
		// Cutoff sits the configured number of days in the past
		expected := time.Now().AddDate(0, 0, -config.Get().PlayHistoryRetentionDays)
		return cutoff.Sub(expected).Abs() < time.Minute
	})).Return(int64(123), nil)

	removed, err := service.PurgeOldPlays(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(123), removed)
	mockPlayRepo.AssertExpectations(t)
}
