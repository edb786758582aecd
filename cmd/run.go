package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"magbank/config"
	"magbank/database"
	"magbank/events"
	"magbank/repository"
	"magbank/server"
	"magbank/service"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL, cfg.StatementTimeoutMS)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established")

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	wagerService := service.NewWagerService(uowFactory, service.NewSlotMachine())
	ledgerService := service.NewLedgerService(uowFactory)
	accountService := service.NewAccountService(uowFactory)
	redemptionService := service.NewRedemptionService(uowFactory)
	userService := service.NewUserService(uowFactory)
	retentionService := service.NewRetentionService(uowFactory)

	if cfg.MetricsEnabled {
		server.RegisterEventMetrics(eventBus)
	}

	// Retention job: prune aged play history on the configured schedule
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.RetentionSchedule, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := retentionService.PurgeOldPlays(jobCtx); err != nil {
			log.WithError(err).Error("Play history retention run failed")
		}
	}); err != nil {
		return fmt.Errorf("failed to schedule retention job: %w", err)
	}
	scheduler.Start()

	srv := server.NewServer(wagerService, ledgerService, accountService, redemptionService, userService)
	if cfg.MetricsEnabled {
		srv.EnableMetrics()
	}

	httpServer := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      srv.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.ListenAddr).Infof("Server running in %s mode", cfg.Environment)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("HTTP server shutdown error")
	}

	cronCtx := scheduler.Stop()
	select {
	case <-cronCtx.Done():
	case <-shutdownCtx.Done():
		log.Warn("Retention job still running at shutdown deadline")
	}

	log.Info("Closing database connection...")
	db.Close()

	log.Info("Shutdown completed")
	return nil
}
