package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/ndxcap/internal/contracts"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Summarize the persisted dataset",
	Long: `Prints record count, ticker count and date coverage of the
persisted dataset without touching the network.

Example:
  ndxcap status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	d, err := buildDeps()
	if err != nil {
		return err
	}

	ds, err := d.store.Load()
	if err != nil {
		return fmt.Errorf("load dataset: %w", err)
	}

	fmt.Printf("File:    %s\n", d.store.Path())
	fmt.Printf("Records: %d\n", len(ds))
	fmt.Printf("Tickers: %d\n", len(ds.Tickers()))

	if last, ok := ds.LastDate(); ok {
		fmt.Printf("Last:    %s\n", last.Format(contracts.DateFormat))
	} else {
		fmt.Println("Last:    (empty dataset)")
	}

	return nil
}
