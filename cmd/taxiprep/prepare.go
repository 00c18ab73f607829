package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/couchcryptid/taxi-fare-prep/internal/adapter/csvfile"
	kafkaadapter "github.com/couchcryptid/taxi-fare-prep/internal/adapter/kafka"
	"github.com/couchcryptid/taxi-fare-prep/internal/adapter/postgres"
	"github.com/couchcryptid/taxi-fare-prep/internal/config"
	"github.com/couchcryptid/taxi-fare-prep/internal/observability"
	"github.com/couchcryptid/taxi-fare-prep/internal/pipeline"
)

type prepareFlags struct {
	out         string
	categories  []string
	metricsFile string
}

func newPrepareCmd() *cobra.Command {
	var flags prepareFlags
	cmd := &cobra.Command{
		Use:   "prepare <csv>",
		Short: "Convert categories, add distance and hour features, write to sinks",
		Long: `Loads the trip table, converts the requested columns to categories, adds
distance_km, hour and am_pm, and writes the result to every configured sink:
a CSV file (--out or OUTPUT_PATH), Kafka (KAFKA_BROKERS) and PostgreSQL
(POSTGRES_DSN).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("out") {
				cfg.OutputPath = flags.out
			}
			if cmd.Flags().Changed("category") {
				cfg.CategoryColumns = flags.categories
			}
			if cmd.Flags().Changed("metrics-file") {
				cfg.MetricsFile = flags.metricsFile
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runPrepare(ctx, cfg, args[0], cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&flags.out, "out", "", "write the prepared table to this CSV path")
	cmd.Flags().StringSliceVar(&flags.categories, "category", nil, "columns to convert to category (repeatable)")
	cmd.Flags().StringVar(&flags.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format")
	return cmd
}

func runPrepare(ctx context.Context, cfg *config.Config, input string, out io.Writer) (err error) {
	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	reader, err := csvfile.NewReader(cfg, input, logger)
	if err != nil {
		return err
	}

	loaders, closers, err := openSinks(ctx, cfg, filepath.Base(input), logger)
	defer func() {
		err = errors.Join(err, closeAll(closers, cfg.ShutdownTimeout))
	}()
	if err != nil {
		return err
	}
	if len(loaders) == 0 {
		logger.Warn("no sinks configured; the prepared table is only summarized")
	}

	transformer := pipeline.NewTransformer(cfg.CategoryColumns, cfg.Features, cfg.HourZeroPolicy, logger)
	p := pipeline.New(reader, transformer, logger, metrics, cfg.BatchSize, cfg.SinkMaxAttempts, loaders...)

	report, runErr := p.Run(ctx)
	if cfg.MetricsFile != "" {
		if err := metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			logger.Error("write metrics file failed", "path", cfg.MetricsFile, "error", err)
		}
	}
	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(out, "prepared %d rows (%d columns in, %d missing cells)\n",
		report.Rows, report.Columns, report.Nulls.Total())
	fmt.Fprintf(out, "non-finite distances: %d, invalid hours: %d\n",
		report.Stats.NonFiniteDistances, report.Stats.InvalidHours)
	for _, l := range loaders {
		fmt.Fprintf(out, "%s: %d rows written\n", l.Name(), report.Written[l.Name()])
	}
	return nil
}

// openSinks builds a loader for every configured destination. Closers are
// returned even on error so partially opened sinks are released.
func openSinks(ctx context.Context, cfg *config.Config, source string, logger *slog.Logger) ([]pipeline.BatchLoader, []io.Closer, error) {
	var loaders []pipeline.BatchLoader
	var closers []io.Closer

	if cfg.OutputPath != "" {
		w, err := csvfile.NewWriter(cfg.OutputPath, cfg.CSVDelimiter)
		if err != nil {
			return nil, closers, err
		}
		loaders = append(loaders, w)
		closers = append(closers, w)
	}
	if len(cfg.KafkaBrokers) > 0 {
		w := kafkaadapter.NewWriter(cfg, source, logger)
		loaders = append(loaders, w)
		closers = append(closers, w)
	}
	if cfg.PostgresDSN != "" {
		w, err := postgres.NewWriter(ctx, cfg, logger)
		if err != nil {
			return nil, closers, err
		}
		loaders = append(loaders, w)
		closers = append(closers, w)
	}
	return loaders, closers, nil
}

// closeAll flushes and closes every sink, giving up after timeout.
func closeAll(closers []io.Closer, timeout time.Duration) error {
	if len(closers) == 0 {
		return nil
	}
	done := make(chan error, 1)
	go func() {
		var err error
		for _, c := range closers {
			err = errors.Join(err, c.Close())
		}
		done <- err
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case err := <-done:
		return err
	case <-timer.C:
		return fmt.Errorf("closing sinks timed out after %s", timeout)
	}
}
