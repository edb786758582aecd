package service

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"magbank/config"
)

// RetentionService prunes aged play history rows on a schedule
type RetentionService struct {
	uowFactory UnitOfWorkFactory
}

// NewRetentionService creates a new retention service
func NewRetentionService(uowFactory UnitOfWorkFactory) *RetentionService {
	return &RetentionService{
		uowFactory: uowFactory,
	}
}

// PurgeOldPlays removes play records older than the configured retention
// window and returns the number of rows removed
func (s *RetentionService) PurgeOldPlays(ctx context.Context) (int64, error) {
	cfg := config.Get()
	cutoff := time.Now().AddDate(0, 0, -cfg.PlayHistoryRetentionDays)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	removed, err := uow.PlayHistoryRepository().DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge play history: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"cutoff":  cutoff,
		"removed": removed,
	}).Info("Play history retention pass completed")

	return removed, nil
}
