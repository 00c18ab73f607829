package main

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/taxi-fare-prep/internal/config"
	"github.com/couchcryptid/taxi-fare-prep/internal/dataset"
	"github.com/couchcryptid/taxi-fare-prep/internal/domain"
)

// maxReported caps the per-phase error listing.
const maxReported = 20

var errValidationFailed = errors.New("validation failed")

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func newValidateCmd() *cobra.Command {
	var policy string
	cmd := &cobra.Command{
		Use:   "validate <prepared.csv>",
		Short: "Recompute derived columns of a prepared table and report mismatches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("policy") {
				if cfg.HourZeroPolicy, err = domain.ParseZeroPolicy(policy); err != nil {
					return err
				}
			}
			ds, err := dataset.ReadCSVFile(args[0],
				dataset.WithDelimiter(cfg.CSVDelimiter),
				dataset.WithMissingValues(cfg.MissingValues),
				dataset.WithStringColumns(cfg.Features.PickupDatetime),
			)
			if err != nil {
				return err
			}
			return runValidate(cmd.OutOrStdout(), ds, cfg.Features, cfg.HourZeroPolicy)
		},
	}
	cmd.Flags().StringVar(&policy, "policy", "", "hour zero policy the table was prepared with (default HOUR_ZERO_POLICY)")
	return cmd
}

func runValidate(w io.Writer, ds *dataset.Dataset, cols domain.FeatureColumns, policy domain.ZeroPolicy) error {
	fmt.Fprintln(w, "=== Prepared Trip Validation ===")

	schema := validateSchema(ds, cols)
	phases := []*phase{schema}
	if schema.passed() {
		rows, _ := ds.Shape()
		records := ds.Slice(0, rows).Records
		phases = append(phases,
			validateDistances(records, cols),
			validateHours(records, cols, policy),
			validateLabels(records),
		)
	}

	fmt.Fprintln(w)
	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-36s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			if i == maxReported {
				fmt.Fprintf(w, "  ... %d more\n", len(p.errors)-maxReported)
				break
			}
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if !allPassed {
		fmt.Fprintln(w, "\nValidation FAILED.")
		return errValidationFailed
	}
	fmt.Fprintln(w, "\nAll validations passed.")
	return nil
}

func validateSchema(ds *dataset.Dataset, cols domain.FeatureColumns) *phase {
	p := &phase{name: "Schema: input and derived columns"}
	required := []string{
		cols.PickupDatetime, cols.PickupLat, cols.PickupLon, cols.DropoffLat, cols.DropoffLon,
		domain.ColDistanceKm, domain.ColHour, domain.ColAmPm,
	}
	for _, name := range required {
		if !ds.Has(name) {
			p.errorf("missing column %q", name)
		}
	}
	return p
}

func validateDistances(records []dataset.Record, cols domain.FeatureColumns) *phase {
	p := &phase{name: "Distance: haversine recomputation"}
	for _, rec := range records {
		var in [4]float64
		complete := true
		for i, name := range []string{cols.PickupLat, cols.PickupLon, cols.DropoffLat, cols.DropoffLon} {
			v, ok := asFloat(rec.Fields[name])
			in[i] = v
			complete = complete && ok
		}
		got, present := asFloat(rec.Fields[domain.ColDistanceKm])

		if !complete {
			if present {
				p.errorf("row %d: distance %v with incomplete coordinates", rec.Index, got)
			}
			continue
		}
		want := domain.HaversineDistance(in[0], in[1], in[2], in[3])
		switch {
		case !present:
			p.errorf("row %d: distance missing, want %v", rec.Index, want)
		case math.Abs(got-want) > 1e-9:
			p.errorf("row %d: distance %v, want %v", rec.Index, got, want)
		}
	}
	return p
}

func validateHours(records []dataset.Record, cols domain.FeatureColumns, policy domain.ZeroPolicy) *phase {
	p := &phase{name: "Hour: recomputed from pickup time"}
	for _, rec := range records {
		got, present := rec.Fields[domain.ColHour].(int)
		raw, ok := pickupText(rec.Fields[cols.PickupDatetime])
		if !ok {
			if present {
				p.errorf("row %d: hour %d without a pickup time", rec.Index, got)
			}
			continue
		}
		want, err := domain.PickupHour(raw, policy)
		switch {
		case err != nil && present:
			p.errorf("row %d: hour %d from unparseable pickup %q", rec.Index, got, raw)
		case err == nil && !present:
			p.errorf("row %d: hour missing, want %d", rec.Index, want)
		case err == nil && got != want:
			p.errorf("row %d: hour %d, want %d", rec.Index, got, want)
		}
	}
	return p
}

func validateLabels(records []dataset.Record) *phase {
	p := &phase{name: "AM/PM: consistent with hour"}
	for _, rec := range records {
		label, _ := rec.Fields[domain.ColAmPm].(string)
		hour, ok := rec.Fields[domain.ColHour].(int)
		if !ok {
			if label != "" {
				p.errorf("row %d: label %q without an hour", rec.Index, label)
			}
			continue
		}
		if want := domain.AmOrPm(hour); label != want {
			p.errorf("row %d: label %q for hour %d, want %q", rec.Index, label, hour, want)
		}
	}
	return p
}

// pickupText accepts a pickup cell read as text or, for bare-hour columns, as
// an integer.
func pickupText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case int:
		return strconv.Itoa(x), true
	default:
		return "", false
	}
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
