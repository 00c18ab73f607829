package dataset

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"
)

// Shape returns the number of rows and columns.
func (d *Dataset) Shape() (rows, cols int) {
	return d.df.Dims()
}

// GetShape returns (rows, columns) for ds.
func GetShape(ds *Dataset) (int, int, error) {
	if err := ds.valid(); err != nil {
		return 0, 0, err
	}
	rows, cols := ds.Shape()
	return rows, cols, nil
}

// ColumnInfo describes one column in a [Summary].
type ColumnInfo struct {
	Name    string
	NonNull int
	Type    ColumnType
}

// Summary is the structural overview returned by [GetInfo].
type Summary struct {
	Rows    int
	Columns []ColumnInfo
}

// GetInfo summarizes column names, non-null counts and types. Nothing is
// printed; use [Summary.WriteTo] for console output.
func GetInfo(ds *Dataset) (Summary, error) {
	nulls, err := NullValues(ds)
	if err != nil {
		return Summary{}, err
	}
	rows, _ := ds.Shape()
	s := Summary{Rows: rows, Columns: make([]ColumnInfo, len(nulls))}
	for i, n := range nulls {
		t, _ := ds.Type(n.Name)
		s.Columns[i] = ColumnInfo{Name: n.Name, NonNull: rows - n.Count, Type: t}
	}
	return s, nil
}

// String renders the summary in the layout of pandas DataFrame.info().
func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintln(&b, "<class 'dataset.Dataset'>")
	if s.Rows == 0 {
		fmt.Fprintln(&b, "RangeIndex: 0 entries")
	} else {
		fmt.Fprintf(&b, "RangeIndex: %d entries, 0 to %d\n", s.Rows, s.Rows-1)
	}
	fmt.Fprintf(&b, "Data columns (total %d columns):\n", len(s.Columns))

	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, " #\tColumn\tNon-Null Count\tDtype")
	fmt.Fprintln(tw, "---\t------\t--------------\t-----")
	counts := map[ColumnType]int{}
	for i, c := range s.Columns {
		fmt.Fprintf(tw, " %d\t%s\t%d non-null\t%s\n", i, c.Name, c.NonNull, c.Type)
		counts[c.Type]++
	}
	tw.Flush()

	parts := make([]string, 0, len(counts))
	for _, t := range slices.Sorted(maps.Keys(counts)) {
		parts = append(parts, fmt.Sprintf("%s(%d)", t, counts[t]))
	}
	fmt.Fprintf(&b, "dtypes: %s\n", strings.Join(parts, ", "))
	return b.String()
}

// WriteTo prints the summary to w.
func (s Summary) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, s.String())
	return int64(n), err
}

// ColumnNulls is the missing-value count of one column.
type ColumnNulls struct {
	Name  string
	Count int
}

// NullCounts lists missing-value counts in column order.
type NullCounts []ColumnNulls

// Get returns the count for a column.
func (n NullCounts) Get(name string) (int, bool) {
	for _, c := range n {
		if c.Name == name {
			return c.Count, true
		}
	}
	return 0, false
}

// Total is the number of missing cells in the whole table.
func (n NullCounts) Total() int {
	total := 0
	for _, c := range n {
		total += c.Count
	}
	return total
}

func (n NullCounts) String() string {
	var b strings.Builder
	tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
	for _, c := range n {
		fmt.Fprintf(tw, "%s\t%d\n", c.Name, c.Count)
	}
	tw.Flush()
	return b.String()
}

// NullValues counts the missing entries of every column.
func NullValues(ds *Dataset) (NullCounts, error) {
	if err := ds.valid(); err != nil {
		return nil, err
	}
	names := ds.Names()
	out := make(NullCounts, len(names))
	for i, name := range names {
		count := 0
		for _, isNaN := range ds.df.Col(name).IsNaN() {
			if isNaN {
				count++
			}
		}
		out[i] = ColumnNulls{Name: name, Count: count}
	}
	return out, nil
}
