package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Bitfisherllc/roofdb"
	"github.com/Bitfisherllc/roofdb/internal/config"
	"github.com/Bitfisherllc/roofdb/internal/controllers"
	"github.com/Bitfisherllc/roofdb/internal/logging"
	"github.com/Bitfisherllc/roofdb/internal/overrides"
)

var (
	// Global flags
	configPath string
	dataFile   string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "roofdb",
	Short: "roofdb edits and serves the roofer directory data file.",
	Long: `roofdb keeps the roofer directory in an exported object literal inside a
TypeScript source file. It edits records in place, validates the file
structure and serves the public and admin HTTP API.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return errors.Wrap(err, "failed to load config")
		}

		if dataFile != "" {
			cfg.DataFile = dataFile
		}
		if logLevel != "" {
			cfg.LogLevel = logLevel
		}

		logger, err = logging.New(cfg.LogLevel, cfg.LogDev)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultFile, "config file, merged with its .local variant")
	rootCmd.PersistentFlags().StringVar(&dataFile, "data", "", "roofer data file (overrides the config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (overrides the config)")

	rootCmd.AddCommand(serveCmd, applyCmd, validateCmd, getCmd, listCmd)
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openDirectory opens the data file and, for the overrides backend, the
// override store layered on top of it.
func openDirectory(ctx context.Context) (controllers.Directory, *roofdb.DB, func() error, error) {
	db, closeDB, err := roofdb.New(cfg.DataFile, &roofdb.Config{
		Marker: cfg.Marker,
		Logger: logger,
	})
	if err != nil {
		return nil, nil, nil, errors.Wrapf(err, "could not open %s", cfg.DataFile)
	}

	if cfg.Backend != config.BackendOverrides {
		return db, db, closeDB, nil
	}

	store, err := overrides.Open(ctx, cfg.OverridesDSN, logger)
	if err != nil {
		_ = closeDB()
		return nil, nil, nil, err
	}

	closer := func() error {
		var result *multierror.Error
		if err := store.Close(); err != nil {
			result = multierror.Append(result, err)
		}
		if err := closeDB(); err != nil {
			result = multierror.Append(result, err)
		}
		return result.ErrorOrNil()
	}

	return overrides.NewLayer(db, store, logger), db, closer, nil
}
