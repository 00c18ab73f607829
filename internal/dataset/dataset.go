// Package dataset holds the in-memory taxi trip table: a gota DataFrame plus the
// categorical metadata pandas would keep alongside it.
//
// Column typing is explicit. The loader infers a [ColumnType] per column with
// [InferColumnType] (or takes it from a [Schema]) and hands the result to gota,
// so the frame never guesses types on its own.
package dataset

import (
	"errors"
	"fmt"
	"slices"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

var (
	// ErrFileAccess reports a missing or unreadable input file.
	ErrFileAccess = errors.New("file access")
	// ErrParse reports content that is not valid delimited text.
	ErrParse = errors.New("parse csv")
	// ErrColumnNotFound reports a lookup of a column the dataset does not have.
	ErrColumnNotFound = errors.New("column not found")
	// ErrInvalidDataset reports a nil dataset or one whose frame carries an error.
	ErrInvalidDataset = errors.New("invalid dataset")
	// ErrSchema reports an unusable schema file or column type name.
	ErrSchema = errors.New("invalid schema")
)

// Dataset is a two-dimensional labeled table of trips. The zero value is not
// usable; build one with [ReadCSV], [ReadCSVFile] or [New].
type Dataset struct {
	df         dataframe.DataFrame
	categories map[string]*Categorical
}

// New wraps an existing DataFrame.
func New(df dataframe.DataFrame) (*Dataset, error) {
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDataset, df.Err)
	}
	return &Dataset{df: df, categories: map[string]*Categorical{}}, nil
}

func (d *Dataset) valid() error {
	if d == nil {
		return fmt.Errorf("%w: nil dataset", ErrInvalidDataset)
	}
	if d.df.Err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataset, d.df.Err)
	}
	return nil
}

// Frame returns a copy of the underlying DataFrame.
func (d *Dataset) Frame() dataframe.DataFrame {
	return d.df.Copy()
}

// Names returns the column names in table order.
func (d *Dataset) Names() []string {
	return d.df.Names()
}

// Has reports whether the dataset has a column called name.
func (d *Dataset) Has(name string) bool {
	return slices.Contains(d.df.Names(), name)
}

// Type returns the column's type, reporting [Category] for converted columns.
func (d *Dataset) Type(name string) (ColumnType, bool) {
	idx := slices.Index(d.df.Names(), name)
	if idx < 0 {
		return "", false
	}
	if _, ok := d.categories[name]; ok {
		return Category, true
	}
	return fromSeriesType(d.df.Types()[idx]), true
}

// Column returns the named column's series.
func (d *Dataset) Column(name string) (series.Series, error) {
	if !d.Has(name) {
		return series.Series{}, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
	}
	return d.df.Col(name), nil
}

// Floats returns the named column as float64 values; missing or unparseable
// entries come back as NaN.
func (d *Dataset) Floats(name string) ([]float64, error) {
	col, err := d.Column(name)
	if err != nil {
		return nil, err
	}
	return col.Float(), nil
}

// Strings returns the named column's values as text together with a
// per-row missing mask.
func (d *Dataset) Strings(name string) ([]string, []bool, error) {
	col, err := d.Column(name)
	if err != nil {
		return nil, nil, err
	}
	out := make([]string, col.Len())
	missing := col.IsNaN()
	for i := range out {
		if missing[i] {
			continue
		}
		out[i] = FormatValue(elemValue(col, i))
	}
	return out, missing, nil
}

// Copy returns an independent copy of the dataset. Categorical metadata is
// immutable once built, so it is shared.
func (d *Dataset) Copy() *Dataset {
	cats := make(map[string]*Categorical, len(d.categories))
	for k, v := range d.categories {
		cats[k] = v
	}
	return &Dataset{df: d.df.Copy(), categories: cats}
}

// WithColumn returns a copy with s appended, or replacing the column of the
// same name. A replaced column loses its categorical metadata.
func (d *Dataset) WithColumn(s series.Series) (*Dataset, error) {
	if err := d.valid(); err != nil {
		return nil, err
	}
	out := d.Copy()
	out.df = out.df.Mutate(s)
	if out.df.Err != nil {
		return nil, fmt.Errorf("set column %q: %w", s.Name, out.df.Err)
	}
	delete(out.categories, s.Name)
	return out, nil
}

// elemValue converts one element to a plain Go value; missing entries are nil.
func elemValue(s series.Series, i int) any {
	e := s.Elem(i)
	if e.IsNA() {
		return nil
	}
	switch s.Type() {
	case series.Int:
		v, err := e.Int()
		if err != nil {
			return nil
		}
		return v
	case series.Float:
		return e.Float()
	case series.Bool:
		v, err := e.Bool()
		if err != nil {
			return nil
		}
		return v
	default:
		return e.String()
	}
}
