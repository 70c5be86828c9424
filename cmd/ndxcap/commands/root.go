package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	dataFile string
	verbose  bool
)

// rootCmd represents the base command when called without any subcommands.
// A bare invocation runs one incremental refresh.
var rootCmd = &cobra.Command{
	Use:   "ndxcap",
	Short: "Nasdaq-100 market capitalization tracker",
	Long: `ndxcap maintains a time-series dataset of market capitalization
for the Nasdaq-100 universe in a flat JSON file.

Each run fetches only the date range missing from the persisted dataset
(plus trailing context for the growth metric), merges dual-class share
classes, and rewrites the store atomically.

Usage:
  ndxcap              # run one incremental refresh
  ndxcap refresh      # same, explicit
  ndxcap status       # summarize the persisted dataset
  ndxcap scheduler    # run refreshes on a cron schedule
  ndxcap api          # serve the dataset over HTTP (read-only)`,
	RunE: runRefresh,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&dataFile, "data-file", "", "dataset file (default from DATA_FILE env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
