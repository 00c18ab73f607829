package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/couchcryptid/taxi-fare-prep/internal/config"
	"github.com/couchcryptid/taxi-fare-prep/internal/dataset"
)

// maxParams is PostgreSQL's limit on bind parameters per statement.
const maxParams = 65535

// Writer inserts prepared rows into a PostgreSQL table, creating the table
// from the first batch's column types. It implements pipeline.BatchLoader.
type Writer struct {
	db      *sqlx.DB
	table   string
	logger  *slog.Logger
	columns []string
	// maxParams bounds the bind parameters of one INSERT.
	maxParams int
}

// NewWriter connects to POSTGRES_DSN and verifies the connection.
func NewWriter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Writer, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	return newWriter(db, cfg.PostgresTable, logger), nil
}

func newWriter(db *sqlx.DB, table string, logger *slog.Logger) *Writer {
	return &Writer{db: db, table: table, logger: logger, maxParams: maxParams}
}

func (w *Writer) Name() string { return "postgres" }

// LoadBatch inserts the batch in one transaction, splitting it so no statement
// exceeds the bind parameter limit. A failed batch leaves no rows behind, so a
// retry does not duplicate the chunks that went through.
func (w *Writer) LoadBatch(ctx context.Context, batch dataset.Batch) error {
	if len(batch.Records) == 0 {
		return nil
	}
	if w.columns == nil {
		if err := w.ensureTable(ctx, batch); err != nil {
			return err
		}
	}

	query := insertStatement(w.table, w.columns)
	args := bindRows(w.columns, batch.Records)
	chunk := max(1, w.maxParams/len(w.columns))

	tx, err := w.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	for from := 0; from < len(args); from += chunk {
		to := min(from+chunk, len(args))
		if _, err := tx.NamedExecContext(ctx, query, args[from:to]); err != nil {
			return fmt.Errorf("postgres: insert rows %d-%d: %w",
				batch.Records[from].Index, batch.Records[to-1].Index, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit: %w", err)
	}
	return nil
}

func (w *Writer) ensureTable(ctx context.Context, batch dataset.Batch) error {
	stmt := createTableStatement(w.table, batch.Columns, batch.Types)
	if _, err := w.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("postgres: create table %s: %w", w.table, err)
	}
	w.columns = batch.Columns
	w.logger.Info("postgres table ready", "table", w.table, "columns", len(w.columns))
	return nil
}

func (w *Writer) Close() error {
	return w.db.Close()
}

func sqlType(t dataset.ColumnType) string {
	switch t {
	case dataset.Int:
		return "BIGINT"
	case dataset.Float:
		return "DOUBLE PRECISION"
	case dataset.Bool:
		return "BOOLEAN"
	default:
		return "TEXT"
	}
}

func createTableStatement(table string, columns []string, types map[string]dataset.ColumnType) string {
	defs := make([]string, len(columns))
	for i, name := range columns {
		defs[i] = pq.QuoteIdentifier(name) + " " + sqlType(types[name])
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)",
		pq.QuoteIdentifier(table), strings.Join(defs, ", "))
}

// insertStatement binds columns positionally as :c0, :c1, ... since CSV
// headers are not valid sqlx parameter names in general.
func insertStatement(table string, columns []string) string {
	names := make([]string, len(columns))
	params := make([]string, len(columns))
	for i, name := range columns {
		names[i] = pq.QuoteIdentifier(name)
		params[i] = fmt.Sprintf(":c%d", i)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pq.QuoteIdentifier(table), strings.Join(names, ", "), strings.Join(params, ", "))
}

func bindRows(columns []string, records []dataset.Record) []map[string]any {
	out := make([]map[string]any, len(records))
	for i, rec := range records {
		row := make(map[string]any, len(columns))
		for j, name := range columns {
			row[fmt.Sprintf("c%d", j)] = rec.Fields[name]
		}
		out[i] = row
	}
	return out
}
