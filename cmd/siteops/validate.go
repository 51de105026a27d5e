package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studiofoks/siteops/config"
	"github.com/studiofoks/siteops/internal/httpx"
	"github.com/studiofoks/siteops/internal/submit"
	"github.com/studiofoks/siteops/internal/utils"
)

var validateSitemap string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate and analyze a sitemap's structure",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := utils.NewRunLogger("validate")
		if err != nil {
			return err
		}
		defer logger.Close()

		ref := validateSitemap
		if ref == "" {
			ref = cfg.Site.SitemapURL
		}
		if ref == "" {
			return fmt.Errorf("%w: no sitemap given (--sitemap or site.sitemapurl in config)", config.ErrConfig)
		}

		client := httpx.New(cfg.GetSubmitTimeout())
		sm, si, err := submit.LoadSitemap(cmd.Context(), client, ref)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()

		if si != nil {
			fmt.Fprintf(out, "%s is a sitemap index with %d sitemaps:\n", ref, len(si.Sitemaps))
			for _, entry := range si.Sitemaps {
				if entry.LastMod != "" {
					fmt.Fprintf(out, "  - %s (lastmod %s)\n", entry.Loc, entry.LastMod)
				} else {
					fmt.Fprintf(out, "  - %s\n", entry.Loc)
				}
			}
			return nil
		}

		analysis := submit.Analyze(sm)
		fmt.Fprintf(out, "Sitemap: %s\n", ref)
		fmt.Fprintf(out, "  Total URLs:      %d\n", analysis.TotalURLs)
		fmt.Fprintf(out, "  With lastmod:    %d\n", analysis.WithLastMod)
		fmt.Fprintf(out, "  With priority:   %d\n", analysis.WithPriority)
		fmt.Fprintf(out, "  With changefreq: %d\n", analysis.WithChangeFreq)
		for scheme, count := range analysis.Protocols {
			fmt.Fprintf(out, "  %s URLs: %d\n", scheme, count)
		}

		if len(analysis.Issues) > 0 {
			fmt.Fprintln(out, "Issues:")
			for _, issue := range analysis.Issues {
				fmt.Fprintf(out, "  - %s\n", issue)
			}
		}
		if len(analysis.Recommendations) > 0 {
			fmt.Fprintln(out, "Recommendations:")
			for _, rec := range analysis.Recommendations {
				fmt.Fprintf(out, "  - %s\n", rec)
			}
		}

		logger.LogInfo("analyzed %s: %d URLs, %d issues", ref, analysis.TotalURLs, len(analysis.Issues))
		return nil
	},
}

func init() {
	validateCmd.Flags().StringVar(&validateSitemap, "sitemap", "", "sitemap URL or local file to validate")

	rootCmd.AddCommand(validateCmd)
}
