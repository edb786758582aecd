package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"magbank/cmd"
	"magbank/config"
	"magbank/database"
)

var rootCmd = &cobra.Command{
	Use:   "magbank",
	Short: "Rewards and gamification backend",
	Long: `magbank runs the rewards backend: the Magys and ticket ledgers,
the slot wager engine, the current-account approval workflow and the
prize shop, behind an HTTP JSON API.`,
	// Config loads lazily here so help and usage output work on a bare
	// environment without DATABASE_URL
	PersistentPreRun: func(c *cobra.Command, args []string) {
		setupLogging()
	},
	RunE: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(c *cobra.Command, args []string) error {
		return database.MigrateUp(config.Get().DatabaseURL)
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Roll back migrations (default one step)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(c *cobra.Command, args []string) error {
		steps := "1"
		if len(args) > 0 {
			steps = args[0]
		}
		return database.MigrateDown(config.Get().DatabaseURL, steps)
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current migration version",
	RunE: func(c *cobra.Command, args []string) error {
		return database.MigrateStatus(config.Get().DatabaseURL)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func runServe(c *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("Received shutdown signal")
		cancel()
	}()

	return cmd.Run(ctx)
}

func setupLogging() {
	level, err := log.ParseLevel(config.Get().LogLevel)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if config.Get().Environment == "production" {
		log.SetFormatter(&log.JSONFormatter{})
	}
}

func main() {
	// Missing .env is fine; the environment may already be populated
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
