package csvfile

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/taxi-fare-prep/internal/config"
	"github.com/couchcryptid/taxi-fare-prep/internal/dataset"
)

// Reader loads the input CSV. It implements pipeline.Extractor.
type Reader struct {
	path   string
	opts   []dataset.Option
	logger *slog.Logger
}

// NewReader prepares a reader for path using the configured delimiter, missing
// value tokens and optional schema file. The schema file is read here so a bad
// schema fails before any data is touched. The pickup column is read as text
// unless the schema types it, so bare hours such as "010" keep their zeros.
func NewReader(cfg *config.Config, path string, logger *slog.Logger) (*Reader, error) {
	opts := []dataset.Option{
		dataset.WithDelimiter(cfg.CSVDelimiter),
		dataset.WithMissingValues(cfg.MissingValues),
		dataset.WithStringColumns(cfg.Features.PickupDatetime),
	}
	if cfg.SchemaFile != "" {
		schema, err := dataset.LoadSchemaFile(cfg.SchemaFile)
		if err != nil {
			return nil, err
		}
		opts = append(opts, dataset.WithSchema(schema))
	}
	return &Reader{path: path, opts: opts, logger: logger}, nil
}

func (r *Reader) Extract(ctx context.Context) (*dataset.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.logger.Info("reading csv", "path", r.path)
	return dataset.ReadCSVFile(r.path, r.opts...)
}
