package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/storm-data-shared/retry"

	"github.com/couchcryptid/taxi-fare-prep/internal/dataset"
	"github.com/couchcryptid/taxi-fare-prep/internal/domain"
	"github.com/couchcryptid/taxi-fare-prep/internal/observability"
)

// Extractor loads the raw trip table from the source.
type Extractor interface {
	Extract(ctx context.Context) (*dataset.Dataset, error)
}

// Transformer turns the raw table into the prepared table.
type Transformer interface {
	Transform(ctx context.Context, ds *dataset.Dataset) (*dataset.Dataset, domain.EnrichStats, error)
}

// BatchLoader writes prepared rows to one destination.
type BatchLoader interface {
	Name() string
	LoadBatch(ctx context.Context, batch dataset.Batch) error
}

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// Report describes a completed run.
type Report struct {
	Rows     int
	Columns  int
	Info     dataset.Summary
	Nulls    dataset.NullCounts
	Stats    domain.EnrichStats
	Prepared *dataset.Dataset
	// Written maps sink name to rows written.
	Written map[string]int
}

// Pipeline orchestrates the extract-transform-load run.
type Pipeline struct {
	extractor   Extractor
	transformer Transformer
	loaders     []BatchLoader
	logger      *slog.Logger
	metrics     *observability.Metrics
	batchSize   int
	maxAttempts int
	backoff     time.Duration
}

// New creates a Pipeline with the given stages and observability. A run with
// no loaders still extracts, inspects and transforms.
func New(e Extractor, t Transformer, logger *slog.Logger, metrics *observability.Metrics, batchSize, maxAttempts int, loaders ...BatchLoader) *Pipeline {
	return &Pipeline{
		extractor:   e,
		transformer: t,
		loaders:     loaders,
		logger:      logger,
		metrics:     metrics,
		batchSize:   max(1, batchSize),
		maxAttempts: max(1, maxAttempts),
		backoff:     initialBackoff,
	}
}

// Run performs one pass: load, inspect, transform, then write the prepared
// rows to every loader in batches. A batch that still fails after maxAttempts
// aborts the run.
func (p *Pipeline) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	report := Report{Written: make(map[string]int, len(p.loaders))}

	ds, err := p.extractor.Extract(ctx)
	if err != nil {
		return report, fmt.Errorf("extract: %w", err)
	}
	if err := p.inspect(ds, &report); err != nil {
		return report, err
	}

	prepared, stats, err := p.transformer.Transform(ctx, ds)
	if err != nil {
		return report, fmt.Errorf("transform: %w", err)
	}
	report.Prepared = prepared
	report.Stats = stats
	p.recordTransform(prepared, stats)

	rows, _ := prepared.Shape()
	for _, l := range p.loaders {
		n, err := p.loadAll(ctx, l, prepared, rows)
		report.Written[l.Name()] = n
		if err != nil {
			return report, err
		}
		p.logger.Info("sink complete", "sink", l.Name(), "rows", n)
	}

	p.metrics.PrepareSeconds.Observe(time.Since(start).Seconds())
	p.logger.Info("prepare complete", "rows", rows, "duration", time.Since(start))
	return report, nil
}

func (p *Pipeline) inspect(ds *dataset.Dataset, report *Report) error {
	rows, cols, err := dataset.GetShape(ds)
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	info, err := dataset.GetInfo(ds)
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	nulls, err := dataset.NullValues(ds)
	if err != nil {
		return fmt.Errorf("inspect: %w", err)
	}
	report.Rows, report.Columns, report.Info, report.Nulls = rows, cols, info, nulls

	p.metrics.RowsLoaded.Add(float64(rows))
	p.metrics.ColumnsLoaded.Set(float64(cols))
	for _, n := range nulls {
		p.metrics.MissingCells.WithLabelValues(n.Name).Set(float64(n.Count))
	}
	p.logger.Info("dataset loaded", "rows", rows, "columns", cols, "missing_cells", nulls.Total())
	return nil
}

func (p *Pipeline) recordTransform(prepared *dataset.Dataset, stats domain.EnrichStats) {
	categories := 0
	for _, name := range prepared.Names() {
		if t, _ := prepared.Type(name); t == dataset.Category {
			categories++
		}
	}
	p.metrics.CategoryColumns.Set(float64(categories))
	p.metrics.NonFiniteDistances.Add(float64(stats.NonFiniteDistances))
	p.metrics.InvalidHours.Add(float64(stats.InvalidHours))

	if stats.NonFiniteDistances > 0 || stats.InvalidHours > 0 {
		p.logger.Warn("rows with missing derived features",
			"non_finite_distances", stats.NonFiniteDistances,
			"invalid_hours", stats.InvalidHours,
		)
	}
}

// loadAll writes rows [0, rows) to l and returns how many were written.
func (p *Pipeline) loadAll(ctx context.Context, l BatchLoader, ds *dataset.Dataset, rows int) (int, error) {
	written := 0
	for from := 0; from < rows; from += p.batchSize {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		batch := ds.Slice(from, from+p.batchSize)
		if err := p.loadWithRetry(ctx, l, batch); err != nil {
			return written, err
		}
		written += len(batch.Records)
	}
	return written, nil
}

// loadWithRetry retries a failed batch with exponential backoff: start at
// 200ms, double each retry, cap at 5s.
func (p *Pipeline) loadWithRetry(ctx context.Context, l BatchLoader, batch dataset.Batch) error {
	backoff := p.backoff
	var err error
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		start := time.Now()
		err = l.LoadBatch(ctx, batch)
		p.metrics.BatchDuration.WithLabelValues(l.Name()).Observe(time.Since(start).Seconds())
		if err == nil {
			p.metrics.RowsWritten.WithLabelValues(l.Name()).Add(float64(len(batch.Records)))
			return nil
		}

		p.metrics.SinkErrors.WithLabelValues(l.Name()).Inc()
		p.logger.Error("load batch failed",
			"sink", l.Name(),
			"error", err,
			"attempt", attempt,
			"batch_size", len(batch.Records),
		)
		if attempt == p.maxAttempts || !retry.SleepWithContext(ctx, backoff) {
			break
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	first := 0
	if len(batch.Records) > 0 {
		first = batch.Records[0].Index
	}
	return fmt.Errorf("sink %s: batch at row %d: %w", l.Name(), first, err)
}
