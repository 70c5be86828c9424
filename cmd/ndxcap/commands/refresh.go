package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// refreshCmd represents the refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run one incremental dataset refresh",
	Long: `Fetches the date range missing from the persisted dataset and merges
the newly computed records into it.

The run:
- scrapes the Nasdaq-100 constituents (static fallback on failure)
- downloads daily closes from the resume window, plus 100 days of
  trailing context for the growth metric
- fetches shares outstanding / sector / name per ticker
- computes market caps, merges dual-class listings, annotates growth
- rewrites the store atomically, or leaves it untouched when already
  up to date

Example:
  ndxcap refresh
  ndxcap refresh --data-file /var/data/nasdaq_data.json`,
	RunE: runRefresh,
}

func init() {
	rootCmd.AddCommand(refreshCmd)
}

func runRefresh(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	report, err := d.runner.Run(cmd.Context())
	if err != nil {
		d.log.WithError(err).Error("Refresh failed, store left unchanged")
		return err
	}

	fmt.Printf("State:         %s\n", report.State)
	if report.FetchStart != "" {
		fmt.Printf("Fetch start:   %s\n", report.FetchStart)
	}
	fmt.Printf("Tickers:       %d\n", report.Tickers)
	fmt.Printf("New records:   %d\n", report.NewRecords)
	fmt.Printf("Total records: %d\n", report.TotalRecords)

	return nil
}
