package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// DefaultMissingValues are the tokens read as missing, matching pandas read_csv.
var DefaultMissingValues = []string{
	"", "#N/A", "#N/A N/A", "#NA", "-1.#IND", "-1.#QNAN", "-NaN", "-nan",
	"1.#IND", "1.#QNAN", "<NA>", "N/A", "NA", "NULL", "NaN", "None", "n/a", "nan", "null",
}

type loadConfig struct {
	delimiter rune
	missing   []string
	types     map[string]ColumnType
	text      []string
}

// Option configures CSV loading.
type Option func(*loadConfig)

// WithDelimiter sets the field separator. The default is a comma.
func WithDelimiter(r rune) Option {
	return func(c *loadConfig) { c.delimiter = r }
}

// WithMissingValues replaces the set of tokens read as missing.
func WithMissingValues(tokens []string) Option {
	return func(c *loadConfig) { c.missing = tokens }
}

// WithColumnTypes pins column types, bypassing inference for those columns.
func WithColumnTypes(types map[string]ColumnType) Option {
	return func(c *loadConfig) {
		for k, v := range types {
			c.types[k] = v
		}
	}
}

// WithStringColumns reads the named columns as text unless another option pins
// their type. Names missing from the header are ignored.
func WithStringColumns(names ...string) Option {
	return func(c *loadConfig) { c.text = append(c.text, names...) }
}

// WithSchema applies a schema's column types.
func WithSchema(s Schema) Option {
	return WithColumnTypes(s.Columns)
}

// ReadCSVFile loads the delimited file at path. A missing or unreadable path
// yields an error wrapping [ErrFileAccess]; malformed content wraps [ErrParse].
func ReadCSVFile(path string, opts ...Option) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	defer f.Close()

	ds, err := ReadCSV(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ds, nil
}

// ReadCSV parses delimited text from r. The first record is the header.
func ReadCSV(r io.Reader, opts ...Option) (*Dataset, error) {
	cfg := loadConfig{
		delimiter: ',',
		missing:   DefaultMissingValues,
		types:     map[string]ColumnType{},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	reader := csv.NewReader(r)
	reader.Comma = cfg.delimiter
	records, err := reader.ReadAll()
	if err != nil {
		var pe *csv.ParseError
		if errors.As(err, &pe) {
			return nil, fmt.Errorf("%w: %w", ErrParse, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", ErrParse)
	}

	header := records[0]
	if err := checkHeader(header); err != nil {
		return nil, err
	}

	inferred := InferSchema(header, records[1:], cfg.missing)
	var categories []string
	gotaTypes := make(map[string]series.Type, len(header))
	for _, name := range header {
		t := inferred.Columns[name]
		if slices.Contains(cfg.text, name) {
			t = String
		}
		if pinned, ok := cfg.types[name]; ok {
			if pinned == Category {
				categories = append(categories, name)
			} else {
				t = pinned
			}
		}
		gotaTypes[name] = t.seriesType()
	}
	for name := range cfg.types {
		if _, ok := inferred.Columns[name]; !ok {
			return nil, fmt.Errorf("%w: type given for unknown column %q", ErrSchema, name)
		}
	}

	var df dataframe.DataFrame
	if len(records) == 1 {
		df = emptyFrame(header, gotaTypes)
	} else {
		df = dataframe.LoadRecords(records,
			dataframe.HasHeader(true),
			dataframe.DetectTypes(false),
			dataframe.DefaultType(series.String),
			dataframe.WithTypes(gotaTypes),
			dataframe.NaNValues(cfg.missing),
		)
	}
	ds, err := New(df)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if err := ConvertToCategoryType(categories, ds); err != nil {
		return nil, err
	}
	return ds, nil
}

// emptyFrame builds the zero-row frame for a header-only file, which
// LoadRecords rejects.
func emptyFrame(header []string, types map[string]series.Type) dataframe.DataFrame {
	cols := make([]series.Series, len(header))
	for i, name := range header {
		cols[i] = series.New([]string{}, types[name], name)
	}
	return dataframe.New(cols...)
}

func checkHeader(header []string) error {
	seen := make(map[string]struct{}, len(header))
	for i, name := range header {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("%w: empty column name at position %d", ErrParse, i)
		}
		if _, dup := seen[name]; dup {
			return fmt.Errorf("%w: duplicate column name %q", ErrParse, name)
		}
		seen[name] = struct{}{}
	}
	return nil
}
