package pipeline

import (
	"context"
	"log/slog"

	"github.com/couchcryptid/taxi-fare-prep/internal/dataset"
	"github.com/couchcryptid/taxi-fare-prep/internal/domain"
)

// TripTransformer implements Transformer: categorical conversion followed by
// feature enrichment.
type TripTransformer struct {
	categories []string
	features   domain.FeatureColumns
	policy     domain.ZeroPolicy
	logger     *slog.Logger
}

// NewTransformer creates a TripTransformer. categories may be empty.
func NewTransformer(categories []string, features domain.FeatureColumns, policy domain.ZeroPolicy, logger *slog.Logger) *TripTransformer {
	return &TripTransformer{
		categories: categories,
		features:   features,
		policy:     policy,
		logger:     logger,
	}
}

func (t *TripTransformer) Transform(ctx context.Context, ds *dataset.Dataset) (*dataset.Dataset, domain.EnrichStats, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.EnrichStats{}, err
	}

	if len(t.categories) > 0 {
		converted, err := ds.WithCategories(t.categories...)
		if err != nil {
			return nil, domain.EnrichStats{}, err
		}
		ds = converted
		t.logger.Debug("converted columns to category", "columns", t.categories)
	}

	return domain.Enrich(ds, t.features, t.policy)
}
