package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studiofoks/siteops/config"
	"github.com/studiofoks/siteops/internal/console"
	"github.com/studiofoks/siteops/internal/utils"
)

var (
	pollSite   string
	pollOutput string
)

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Poll the search console for indexing status and write a snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := utils.NewRunLogger("poll")
		if err != nil {
			return err
		}
		defer logger.Close()

		ctx := cmd.Context()

		site := pollSite
		if site == "" {
			site = cfg.Site.URL
		}
		if site == "" {
			return fmt.Errorf("%w: no site given (--site or site.url in config)", config.ErrConfig)
		}

		sa, err := console.LoadServiceAccount(cfg.Console.CredentialsFile)
		if err != nil {
			return err
		}

		client := console.NewClient(cfg.Console.BaseURL, sa.HTTPClient(ctx), logger)
		poller := console.NewPoller(client, logger)

		snapshot, err := poller.Poll(ctx, site)
		if err != nil {
			return err
		}

		if err := console.WriteSnapshot(snapshot, pollOutput); err != nil {
			return err
		}
		logger.LogInfo("snapshot written to %s", pollOutput)

		// History is best-effort; the snapshot file is the primary output.
		if store, storeErr := openStore(); storeErr != nil {
			logger.LogWarn("not recording snapshot history: %v", storeErr)
		} else {
			if saveErr := store.SaveSnapshot(ctx, snapshot); saveErr != nil {
				logger.LogWarn("failed to record snapshot history: %v", saveErr)
			}
			store.Close()
		}

		return nil
	},
}

func init() {
	pollCmd.Flags().StringVar(&pollSite, "site", "", "site URL to poll")
	pollCmd.Flags().StringVar(&pollOutput, "output", "indexing-status.json", "snapshot output path")

	rootCmd.AddCommand(pollCmd)
}
