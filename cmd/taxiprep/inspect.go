package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/taxi-fare-prep/internal/adapter/csvfile"
	"github.com/couchcryptid/taxi-fare-prep/internal/config"
	"github.com/couchcryptid/taxi-fare-prep/internal/dataset"
)

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <csv>",
		Short: "Print shape, column info and missing-value counts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			reader, err := csvfile.NewReader(cfg, args[0], slog.New(slog.DiscardHandler))
			if err != nil {
				return err
			}
			ds, err := reader.Extract(cmd.Context())
			if err != nil {
				return err
			}
			return printInspection(cmd.OutOrStdout(), ds)
		},
	}
}

func printInspection(w io.Writer, ds *dataset.Dataset) error {
	rows, cols, err := dataset.GetShape(ds)
	if err != nil {
		return err
	}
	info, err := dataset.GetInfo(ds)
	if err != nil {
		return err
	}
	nulls, err := dataset.NullValues(ds)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "shape: (%d, %d)\n\n", rows, cols)
	if _, err := info.WriteTo(w); err != nil {
		return err
	}
	fmt.Fprintf(w, "\nmissing values (%d total):\n%s", nulls.Total(), nulls)
	return nil
}
