package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studiofoks/siteops/config"
	"github.com/studiofoks/siteops/internal/console"
	"github.com/studiofoks/siteops/internal/httpx"
	"github.com/studiofoks/siteops/internal/submit"
	"github.com/studiofoks/siteops/internal/utils"
)

var (
	submitSitemap       string
	submitSite          string
	submitValidateLinks bool
	submitCheckOnly     bool
	submitConsole       bool
	submitRemove        bool
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit the sitemap URL to the configured search engines",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := utils.NewRunLogger("submit")
		if err != nil {
			return err
		}
		defer logger.Close()

		ctx := cmd.Context()

		site := submitSite
		if site == "" {
			site = cfg.Site.URL
		}

		if submitCheckOnly {
			return runCheckOnly(ctx, site, logger)
		}

		sitemapURL := submitSitemap
		if sitemapURL == "" {
			sitemapURL = cfg.Site.SitemapURL
		}
		if sitemapURL == "" {
			return fmt.Errorf("%w: no sitemap URL given (--sitemap or site.sitemapurl in config)", config.ErrConfig)
		}

		if submitRemove {
			return runConsoleRemove(ctx, site, sitemapURL, logger)
		}

		client := httpx.New(cfg.GetSubmitTimeout()).WithMaxRetries(1)

		if submitValidateLinks {
			sm, _, err := submit.LoadSitemap(ctx, client, sitemapURL)
			if err != nil {
				return err
			}
			if sm == nil {
				logger.LogWarn("%s is a sitemap index, skipping link validation", sitemapURL)
			} else {
				checker := submit.NewLinkChecker(client, 10, logger)
				problems := checker.ValidateLinks(ctx, sm)
				for _, p := range problems {
					logger.LogWarn("broken link before submission: %s (%s)", p.URL, p.Reason)
				}
			}
		}

		submitter := submit.NewSubmitter(client, logger)
		summary := submitter.Submit(ctx, sitemapURL, submit.EnginesFromConfig(cfg.Submit.Engines))

		if submitConsole {
			if err := submitToConsole(ctx, site, sitemapURL, logger); err != nil {
				logger.LogWarn("console submission failed: %v", err)
			}
		}

		recordSubmissions(ctx, summary, logger)

		if !summary.AllSucceeded() && cfg.Submit.Strict {
			return fmt.Errorf("submission partially failed: %d of %d engines rejected %s",
				summary.Failed, len(summary.Results), sitemapURL)
		}
		return nil
	},
}

// consoleClient builds an authenticated search-console client.
func consoleClient(ctx context.Context, logger *utils.RunLogger) (*console.Client, error) {
	sa, err := console.LoadServiceAccount(cfg.Console.CredentialsFile)
	if err != nil {
		return nil, err
	}
	return console.NewClient(cfg.Console.BaseURL, sa.HTTPClient(ctx), logger), nil
}

// runCheckOnly queries current indexing status instead of submitting.
func runCheckOnly(ctx context.Context, site string, logger *utils.RunLogger) error {
	if site == "" {
		return fmt.Errorf("%w: --check-only requires a site (--site or site.url in config)", config.ErrConfig)
	}

	client, err := consoleClient(ctx, logger)
	if err != nil {
		return err
	}
	statuses, err := client.ListSitemaps(ctx, site)
	if err != nil {
		return err
	}

	for _, st := range statuses {
		state := "ok"
		switch {
		case int(st.Errors) > 0:
			state = fmt.Sprintf("%d errors", int(st.Errors))
		case st.IsPending:
			state = "pending"
		case int(st.Warnings) > 0:
			state = fmt.Sprintf("%d warnings", int(st.Warnings))
		}
		logger.LogInfo("%s: %s (last submitted %s)", st.Path, state, st.LastSubmitted)
	}
	return nil
}

func submitToConsole(ctx context.Context, site, sitemapURL string, logger *utils.RunLogger) error {
	if site == "" {
		return fmt.Errorf("%w: console submission requires a site URL", config.ErrConfig)
	}
	client, err := consoleClient(ctx, logger)
	if err != nil {
		return err
	}
	return client.SubmitSitemap(ctx, site, sitemapURL)
}

// runConsoleRemove deletes the sitemap's registration from the console.
func runConsoleRemove(ctx context.Context, site, sitemapURL string, logger *utils.RunLogger) error {
	if site == "" {
		return fmt.Errorf("%w: --remove requires a site (--site or site.url in config)", config.ErrConfig)
	}
	client, err := consoleClient(ctx, logger)
	if err != nil {
		return err
	}
	return client.DeleteSitemap(ctx, site, sitemapURL)
}

// recordSubmissions appends the run's outcomes to the history store. History
// is best-effort; a broken store never fails a submission run.
func recordSubmissions(ctx context.Context, summary *submit.Summary, logger *utils.RunLogger) {
	store, err := openStore()
	if err != nil {
		logger.LogWarn("not recording submission history: %v", err)
		return
	}
	defer store.Close()

	if err := store.SaveSubmissions(ctx, summary.Results); err != nil {
		logger.LogWarn("failed to record submission history: %v", err)
	}
}

func init() {
	submitCmd.Flags().StringVar(&submitSitemap, "sitemap", "", "sitemap URL to submit")
	submitCmd.Flags().StringVar(&submitSite, "site", "", "site URL the sitemap belongs to")
	submitCmd.Flags().BoolVar(&submitValidateLinks, "validate-links", false, "pre-flight every sitemap URL before submitting")
	submitCmd.Flags().BoolVar(&submitCheckOnly, "check-only", false, "query current indexing status instead of submitting")
	submitCmd.Flags().BoolVar(&submitConsole, "console", false, "also register the sitemap through the search console API")
	submitCmd.Flags().BoolVar(&submitRemove, "remove", false, "delete the sitemap's registration from the search console instead of submitting")

	rootCmd.AddCommand(submitCmd)
}
