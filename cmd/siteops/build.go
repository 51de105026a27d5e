package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studiofoks/siteops/config"
	"github.com/studiofoks/siteops/internal/builder"
	"github.com/studiofoks/siteops/internal/models"
	"github.com/studiofoks/siteops/internal/utils"
)

var (
	buildRoot   string
	buildSite   string
	buildOutput string
	buildCrawl  bool
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the sitemap from the content root or a live crawl",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := utils.NewRunLogger("build")
		if err != nil {
			return err
		}
		defer logger.Close()

		site := buildSite
		if site == "" {
			site = cfg.Site.URL
		}
		if site == "" {
			return fmt.Errorf("%w: no site URL given (--site or site.url in config)", config.ErrConfig)
		}

		var sitemap *models.Sitemap

		if buildCrawl {
			sitemap, err = builder.Crawl(builder.CrawlOptions{
				SiteURL:           site,
				UserAgent:         cfg.Build.UserAgent,
				MaxDepth:          cfg.Build.MaxDepth,
				AllowedDomains:    cfg.Build.AllowedDomains,
				DefaultPriority:   cfg.Build.DefaultPriority,
				DefaultChangeFreq: cfg.Build.DefaultChangeFreq,
			}, logger)
			if err != nil {
				return err
			}
		} else {
			root := buildRoot
			if root == "" {
				root = cfg.Site.ContentRoot
			}
			if root == "" {
				return fmt.Errorf("%w: no content root given (--root or site.contentroot in config)", config.ErrConfig)
			}

			b, err := builder.NewBuilder(builder.Options{
				SiteURL:           site,
				DefaultPriority:   cfg.Build.DefaultPriority,
				DefaultChangeFreq: cfg.Build.DefaultChangeFreq,
			}, logger)
			if err != nil {
				return err
			}
			sitemap, err = b.Build(root)
			if err != nil {
				return err
			}
		}

		data, err := sitemap.Encode()
		if err != nil {
			return err
		}
		if err := utils.WriteFileAtomic(buildOutput, data, 0644); err != nil {
			return err
		}

		logger.LogInfo("wrote %d entries to %s", len(sitemap.URLs), buildOutput)
		return nil
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildRoot, "root", "", "content root directory of publishable pages")
	buildCmd.Flags().StringVar(&buildSite, "site", "", "public site base URL")
	buildCmd.Flags().StringVar(&buildOutput, "output", "sitemap.xml", "output sitemap path")
	buildCmd.Flags().BoolVar(&buildCrawl, "crawl", false, "discover URLs by crawling the live site instead of scanning --root")

	rootCmd.AddCommand(buildCmd)
}
