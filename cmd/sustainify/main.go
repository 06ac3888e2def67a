package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aryannaik/sustainify/internal/config"
	"github.com/aryannaik/sustainify/internal/logging"
	"github.com/aryannaik/sustainify/internal/session"
	"github.com/aryannaik/sustainify/internal/source"
	"github.com/aryannaik/sustainify/internal/store"
)

var (
	configPath  string
	verbose     bool
	dataDirFlag string
	catalogFlag string
	storeFlag   string
	perPageFlag int

	cfg    config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "sustainify",
	Short: "Browse, bookmark and extend a catalog of sustainable products",
	Long: `sustainify merges a static catalog of sustainable products with the
entries you add yourself, and lets you search, filter, sort, page through,
bookmark and compare them.

Bookmarks and your own entries are kept in the data directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		applyFlagOverrides(cmd)
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.New(cfg.Env, verbose)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", "", "Path to a YAML config file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&dataDirFlag, "data-dir", "", "Directory holding bookmarks and contributions")
	pf.StringVar(&catalogFlag, "catalog", "", "Catalog JSON file or http(s) URL")
	pf.StringVar(&storeFlag, "store", "", "Storage backend: file, sqlite or memory")
	pf.IntVar(&perPageFlag, "per-page", 0, "Items per page")

	rootCmd.AddCommand(serveCmd, listCmd, showCmd, categoriesCmd, addCmd, deleteCmd,
		bookmarkCmd, bookmarksCmd, exportCmd)
}

func applyFlagOverrides(cmd *cobra.Command) {
	pf := cmd.Flags()
	if pf.Changed("data-dir") {
		cfg.DataDir = dataDirFlag
	}
	if pf.Changed("catalog") {
		cfg.Catalog = catalogFlag
	}
	if pf.Changed("store") {
		cfg.Store = storeFlag
	}
	if pf.Changed("per-page") {
		cfg.PerPage = perPageFlag
	}
}

// openSession opens the store and a controller on top of it. The caller
// installs the catalog and closes the store.
func openSession() (*session.Controller, *store.Store, error) {
	slots, err := store.Open(cfg.Store, cfg.DataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	st := store.New(slots, logger)
	ctrl := session.New(st, session.Options{
		PerPage:  cfg.PerPage,
		Language: cfg.Language(),
		Logger:   logger,
	})
	return ctrl, st, nil
}

// loadCatalog installs the catalog, or keeps the session on contributions
// only when it cannot be loaded.
func loadCatalog(ctx context.Context, ctrl *session.Controller) {
	items, err := source.NewLoader(cfg.FetchTimeout, logger).Load(ctx, cfg.Catalog)
	if err != nil {
		logger.Warn("Catalog unavailable, showing contributions only",
			zap.String("catalog", cfg.Catalog), zap.Error(err))
		return
	}
	ctrl.SetCatalog(items)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
