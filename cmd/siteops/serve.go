package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/studiofoks/siteops/internal/api"
	"github.com/studiofoks/siteops/internal/utils"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the snapshot and submission history over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := utils.NewRunLogger("serve")
		if err != nil {
			return err
		}
		defer logger.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		server := api.NewServer(port, store, cfg.Site.URL)

		errCh := make(chan error, 1)
		go func() {
			logger.LogInfo("status API listening on :%d", port)
			errCh <- server.Start()
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case sig := <-quit:
			logger.LogInfo("received %s, shutting down", sig)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			return err
		}

		logger.LogInfo("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (defaults to server.port from config)")

	rootCmd.AddCommand(serveCmd)
}
