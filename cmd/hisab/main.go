package main

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rudradey/hisab/internal/config"
	"github.com/rudradey/hisab/internal/database"
	"github.com/rudradey/hisab/internal/ledger"
	"github.com/rudradey/hisab/internal/logger"
)

// app carries the wired-up dependencies every subcommand needs. The store
// handle is threaded explicitly; there is no ambient connection state.
type app struct {
	cfg config.Config
	db  *sql.DB
	cal ledger.Calendar
	log zerolog.Logger
}

var rootCmd = &cobra.Command{
	Use:           "hisab",
	Short:         "A terminal personal-finance ledger",
	Long:          "hisab records income, expense, and transfer transactions against named methods\nand derives running balances and period summaries from the transaction log.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// openApp loads config, opens the store, and brings the schema current.
// The caller closes the returned db.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &app{
		cfg: cfg,
		db:  db,
		cal: ledger.Calendar{EpochYear: cfg.Ledger.EpochYear, HorizonYear: cfg.Ledger.HorizonYear},
		log: logger.New(),
	}, nil
}

func (a *app) close() {
	_ = a.db.Close()
}
