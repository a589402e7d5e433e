// Package cmd holds the shortify command line: the API server and its
// maintenance commands.
package cmd

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"shortify-be/internal/config"
	"shortify-be/internal/database"
	"shortify-be/internal/logger"
)

var (
	// cfg and log are loaded once before any subcommand runs.
	cfg *config.Config
	log *slog.Logger
)

// RootCmd is the base command; subcommands register themselves in init.
var RootCmd = &cobra.Command{
	Use:           "shortify",
	Short:         "URL shortener API with email and Google sign-in",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		log = logger.New(logger.Config{
			Level:       cfg.Log.Level,
			Format:      cfg.Log.Format,
			Environment: cfg.Server.Environment,
		})
		slog.SetDefault(log)
		return nil
	},
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// openDatabase connects to Postgres; migrate controls whether pending
// migrations are applied first.
func openDatabase(ctx context.Context, migrate bool) (*sql.DB, error) {
	db, err := database.NewConnection(ctx, cfg.Database.URL)
	if err != nil {
		return nil, err
	}
	if migrate {
		if err := database.RunMigrations(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
