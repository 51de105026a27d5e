package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studiofoks/siteops/config"
	"github.com/studiofoks/siteops/internal/news"
	"github.com/studiofoks/siteops/internal/utils"
)

var newsOutput string

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Fetch headlines from the configured feeds",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := utils.NewRunLogger("news")
		if err != nil {
			return err
		}
		defer logger.Close()

		if len(cfg.News.Feeds) == 0 {
			return fmt.Errorf("%w: no news feeds configured (news.feeds)", config.ErrConfig)
		}

		fetcher := news.NewFetcher(logger)
		feed := fetcher.Fetch(cmd.Context(), cfg.News.Feeds, cfg.News.Limit)

		if err := news.WriteHeadlines(feed, newsOutput); err != nil {
			return err
		}

		logger.LogInfo("wrote %d headlines to %s", len(feed.Headlines), newsOutput)
		return nil
	},
}

func init() {
	newsCmd.Flags().StringVar(&newsOutput, "output", "headlines.json", "headlines output path")

	rootCmd.AddCommand(newsCmd)
}
