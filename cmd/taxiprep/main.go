// Command taxiprep inspects and prepares NYC taxi fare trip tables for model
// training.
//
// Usage:
//
//	taxiprep inspect data/train.csv
//	taxiprep prepare data/train.csv --out data/prepared.csv --category fare_class
//	taxiprep distance 40.7128 -74.0060 34.0522 -118.2437
//	taxiprep hour 07 --policy strip-leading-zero-only
//	taxiprep validate data/prepared.csv
//
// Settings come from the environment and an optional .env file; see
// internal/config.
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("taxiprep failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "taxiprep",
		Short:         "Inspect and prepare taxi fare trip data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		newInspectCmd(),
		newPrepareCmd(),
		newDistanceCmd(),
		newHourCmd(),
		newValidateCmd(),
	)
	return root
}
