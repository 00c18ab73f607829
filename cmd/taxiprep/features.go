package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/taxi-fare-prep/internal/domain"
)

func newDistanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "distance <lat1> <lon1> <lat2> <lon2>",
		Short: "Print the haversine distance in km between two points",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			var coords [4]float64
			for i, a := range args {
				v, err := strconv.ParseFloat(a, 64)
				if err != nil {
					return fmt.Errorf("argument %d: %w", i+1, err)
				}
				coords[i] = v
			}
			for _, p := range [][2]float64{{coords[0], coords[1]}, {coords[2], coords[3]}} {
				if !domain.ValidCoordinate(p[0], p[1]) {
					return fmt.Errorf("coordinate (%g, %g) out of range", p[0], p[1])
				}
			}
			km := domain.HaversineDistance(coords[0], coords[1], coords[2], coords[3])
			fmt.Fprintf(cmd.OutOrStdout(), "%.2f\n", km)
			return nil
		},
	}
}

func newHourCmd() *cobra.Command {
	var policy string
	cmd := &cobra.Command{
		Use:   "hour <value>",
		Short: "Normalize an hour string and print it with its AM/PM label",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := domain.ParseZeroPolicy(policy)
			if err != nil {
				return err
			}
			h, err := domain.PickupHour(args[0], p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d %s\n", h, domain.AmOrPm(h))
			return nil
		},
	}
	cmd.Flags().StringVar(&policy, "policy", domain.StripAllZeros.String(),
		"zero handling: strip-all-zeros or strip-leading-zero-only")
	return cmd
}
