package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/studiofoks/siteops/internal/console"
	"github.com/studiofoks/siteops/internal/httpx"
	"github.com/studiofoks/siteops/internal/notify"
	"github.com/studiofoks/siteops/internal/utils"
)

var (
	notifySnapshot string
	notifyEmail    string
	notifyChannel  string
	notifyAlways   bool
)

var notifyCmd = &cobra.Command{
	Use:   "notify",
	Short: "Send a notification for a status snapshot",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := utils.NewRunLogger("notify")
		if err != nil {
			return err
		}
		defer logger.Close()

		snapshot, err := console.ReadSnapshot(notifySnapshot)
		if err != nil {
			return err
		}

		always := notifyAlways || cfg.Notify.Always
		if !notify.ShouldNotify(snapshot, always) {
			logger.LogInfo("no crawl errors for %s, nothing to report", snapshot.Site)
			return nil
		}

		channel := notifyChannel
		if channel == "" {
			channel = cfg.Notify.Channel
		}

		notifier := notify.NewNotifier(httpx.New(30*time.Second), logger)
		if notifyEmail != "" {
			notifier.SetRecipient(notifyEmail)
		}

		return notifier.Notify(cmd.Context(), snapshot, channel)
	},
}

func init() {
	notifyCmd.Flags().StringVar(&notifySnapshot, "snapshot", "indexing-status.json", "status snapshot to report on")
	notifyCmd.Flags().StringVar(&notifyEmail, "email", "", "override the notification email recipient")
	notifyCmd.Flags().StringVar(&notifyChannel, "channel", "", "notification channel (email or issue)")
	notifyCmd.Flags().BoolVar(&notifyAlways, "always", false, "notify even when the snapshot has no crawl errors")

	rootCmd.AddCommand(notifyCmd)
}
