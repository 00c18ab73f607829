package dataset

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/go-gota/gota/series"
)

// Categorical is the label-set view of a column: sorted distinct labels plus a
// code per row pointing into them. Missing rows have code -1.
type Categorical struct {
	Levels []string
	Codes  []int
}

// Len is the number of rows.
func (c *Categorical) Len() int { return len(c.Codes) }

// Value returns the label of row i, or false when the row is missing.
func (c *Categorical) Value(i int) (string, bool) {
	code := c.Codes[i]
	if code < 0 {
		return "", false
	}
	return c.Levels[code], true
}

// Counts returns the number of rows per level, aligned with Levels.
func (c *Categorical) Counts() []int {
	out := make([]int, len(c.Levels))
	for _, code := range c.Codes {
		if code >= 0 {
			out[code]++
		}
	}
	return out
}

type level struct {
	label string
	num   float64
}

// newCategorical builds the label set for a column. Numeric columns order
// their levels numerically, everything else lexically.
func newCategorical(s series.Series) *Categorical {
	numeric := s.Type() == series.Int || s.Type() == series.Float
	labels := make([]string, s.Len())
	present := make([]bool, s.Len())
	uniq := map[string]level{}
	for i := range labels {
		v := elemValue(s, i)
		if v == nil {
			continue
		}
		labels[i] = FormatValue(v)
		present[i] = true
		if _, ok := uniq[labels[i]]; !ok {
			lv := level{label: labels[i]}
			if numeric {
				lv.num = s.Elem(i).Float()
			}
			uniq[labels[i]] = lv
		}
	}

	levels := make([]level, 0, len(uniq))
	for _, lv := range uniq {
		levels = append(levels, lv)
	}
	slices.SortFunc(levels, func(a, b level) int {
		if numeric {
			if c := cmp.Compare(a.num, b.num); c != 0 {
				return c
			}
		}
		return cmp.Compare(a.label, b.label)
	})

	c := &Categorical{Levels: make([]string, len(levels)), Codes: make([]int, len(labels))}
	index := make(map[string]int, len(levels))
	for i, lv := range levels {
		c.Levels[i] = lv.label
		index[lv.label] = i
	}
	for i, label := range labels {
		if !present[i] {
			c.Codes[i] = -1
			continue
		}
		c.Codes[i] = index[label]
	}
	return c
}

// ConvertToCategoryType retags each named column of ds as categorical.
// It mutates ds. Values are left as they are. Every name is checked before
// anything changes: an unknown column returns an error wrapping
// [ErrColumnNotFound] and ds is untouched.
func ConvertToCategoryType(features []string, ds *Dataset) error {
	if err := ds.valid(); err != nil {
		return err
	}
	for _, name := range features {
		if !ds.Has(name) {
			return fmt.Errorf("convert %q to category: %w", name, ErrColumnNotFound)
		}
	}

	built := make(map[string]*Categorical, len(features))
	for _, name := range features {
		built[name] = newCategorical(ds.df.Col(name))
	}
	if ds.categories == nil {
		ds.categories = make(map[string]*Categorical, len(built))
	}
	for name, c := range built {
		ds.categories[name] = c
	}
	return nil
}

// WithCategories is the non-mutating form of [ConvertToCategoryType]: it
// returns a converted copy and leaves d as it was.
func (d *Dataset) WithCategories(features ...string) (*Dataset, error) {
	if err := d.valid(); err != nil {
		return nil, err
	}
	out := d.Copy()
	if err := ConvertToCategoryType(features, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Categorical returns the label-set view of a converted column.
func (d *Dataset) Categorical(name string) (*Categorical, bool) {
	c, ok := d.categories[name]
	return c, ok
}
