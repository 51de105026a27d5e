package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/studiofoks/siteops/config"
	"github.com/studiofoks/siteops/internal/storage"
)

// cfg is loaded once in the root PersistentPreRunE and shared by every
// subcommand. Each subcommand is one scheduler-triggered batch run; no state
// survives between invocations except what lands on disk.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "siteops",
	Short: "Sitemap lifecycle automation: build, submit, poll, notify",
	Long: `siteops automates the sitemap lifecycle for a static site: building
sitemaps from a content root or a live crawl, aggregating project sitemaps
into an index, submitting to search engines, polling indexing status, and
dispatching reports by email or tracker issue.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.LoadConfig()
		return err
	},
}

func openStore() (storage.Store, error) {
	var store storage.Store
	var err error

	switch cfg.Storage.Driver {
	case "postgres":
		store, err = storage.NewPostgresStore(cfg.Storage.Path)
	case "sqlite", "":
		store, err = storage.NewSQLiteStore(cfg.Storage.Path)
	default:
		return nil, fmt.Errorf("%w: unknown storage driver %q", config.ErrConfig, cfg.Storage.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Storage.Driver, err)
	}

	if err := store.Initialize(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}
	return store, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "siteops: %v\n", err)
		if errors.Is(err, config.ErrConfig) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
