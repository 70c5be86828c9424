package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/ndxcap/internal/api"
	"github.com/wonny/ndxcap/internal/api/handlers"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Serve the dataset over HTTP (read-only)",
	Long: `Starts an HTTP server exposing the persisted dataset.

Endpoints:
  GET /health              server health
  GET /api/records         full dataset
  GET /api/records/latest  records for the newest date
  GET /api/status          dataset summary

The server never mutates the dataset; only pipeline runs write it.

Example:
  ndxcap api
  PORT=8080 ndxcap api`,
	RunE: runAPI,
}

func init() {
	rootCmd.AddCommand(apiCmd)
}

func runAPI(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	router := api.NewRouter(handlers.NewRecordsHandler(d.store, d.log), d.log)
	server := api.New(d.cfg, d.log, router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-sigCh:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(ctx)
	}
}
