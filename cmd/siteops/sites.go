package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/studiofoks/siteops/internal/utils"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the sites verified for the configured credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := utils.NewRunLogger("sites")
		if err != nil {
			return err
		}
		defer logger.Close()

		ctx := cmd.Context()

		client, err := consoleClient(ctx, logger)
		if err != nil {
			return err
		}

		sites, err := client.ListSites(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(sites) == 0 {
			fmt.Fprintln(out, "no verified sites for these credentials")
			return nil
		}
		for _, s := range sites {
			fmt.Fprintf(out, "%s (%s)\n", s.SiteURL, s.PermissionLevel)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}
