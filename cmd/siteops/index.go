package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/studiofoks/siteops/config"
	"github.com/studiofoks/siteops/internal/builder"
	"github.com/studiofoks/siteops/internal/httpx"
	"github.com/studiofoks/siteops/internal/utils"
)

var (
	indexSitemap string
	indexOutput  string
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Aggregate the main and project sitemaps into a sitemap index",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := utils.NewRunLogger("index")
		if err != nil {
			return err
		}
		defer logger.Close()

		mainSitemap := indexSitemap
		if mainSitemap == "" {
			mainSitemap = cfg.Site.SitemapURL
		}
		if mainSitemap == "" && len(cfg.Index.ProjectSitemaps) == 0 {
			return fmt.Errorf("%w: nothing to index (--sitemap or index.projectsitemaps in config)", config.ErrConfig)
		}

		client := httpx.New(10 * time.Second)
		index := builder.BuildIndex(cmd.Context(), mainSitemap, cfg.Index.ProjectSitemaps, client, logger)

		data, err := index.Encode()
		if err != nil {
			return err
		}
		if err := utils.WriteFileAtomic(indexOutput, data, 0644); err != nil {
			return err
		}

		logger.LogInfo("wrote sitemap index with %d entries to %s", len(index.Sitemaps), indexOutput)
		return nil
	},
}

func init() {
	indexCmd.Flags().StringVar(&indexSitemap, "sitemap", "", "URL of the main sitemap to reference first")
	indexCmd.Flags().StringVar(&indexOutput, "output", "sitemap-index.xml", "output index path")

	rootCmd.AddCommand(indexCmd)
}
