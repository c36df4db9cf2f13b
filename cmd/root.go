package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/catrec/catrec/internal/config"
	"github.com/catrec/catrec/internal/engine"
	"github.com/catrec/catrec/internal/logging"
	"github.com/catrec/catrec/internal/saphint"
	"github.com/catrec/catrec/internal/store"
)

var (
	cfgFile  string
	logLevel string
	version  = "dev"
	commit   = "none"
	date     = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "catrec",
	Short: "catrec — catalog reconciliation into a canonical data model",
	Long: `catrec aligns a scraped knowledge-base schema catalog (KNX) against a
spreadsheet-derived ERP field-mapping catalog (ETN) and produces a canonical
data model with match provenance, inferred ERP screen metadata, and
per-entity summaries.`,
}

func Execute() {
	rootCmd.Version = fmt.Sprintf("%s (commit %s, built %s)", version, commit, date)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.catrec/catrec.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

// newEngine wires config, logger, store, and hint table for a command run.
// The returned cleanup closes the store.
func newEngine(ctx context.Context) (*engine.Engine, func(), error) {
	cfg, err := config.LoadOrDefault(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logger, err := logging.Setup(level, cfg.Logging.Directory)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing logging: %w", err)
	}

	st, err := store.Open(ctx, cfg.Store.Driver, storeDSN(cfg), cfg.Store.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("opening store: %w", err)
	}

	hints := saphint.Defaults()
	if cfg.Inputs.Hints != "" {
		hints, err = saphint.LoadYAML(config.ExpandHome(cfg.Inputs.Hints))
		if err != nil {
			st.Close(ctx)
			return nil, nil, fmt.Errorf("loading hint table: %w", err)
		}
	}

	eng := engine.New(cfg, st, hints, logger)
	cleanup := func() { st.Close(ctx) }
	return eng, cleanup, nil
}

func storeDSN(cfg *config.Config) string {
	if cfg.Store.Driver == "" || cfg.Store.Driver == "sqlite" {
		return config.ExpandHome(cfg.Store.Path)
	}
	return cfg.Store.ConnectionString
}
