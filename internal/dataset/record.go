package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
)

// Record is one row keyed by column name. Missing cells are nil.
type Record struct {
	Index  int
	Fields map[string]any
}

// Strings renders the record's fields in column order.
func (r Record) Strings(columns []string) []string {
	out := make([]string, len(columns))
	for i, name := range columns {
		out[i] = FormatValue(r.Fields[name])
	}
	return out
}

// Batch is a contiguous run of rows together with the table's column order.
type Batch struct {
	Columns []string
	Types   map[string]ColumnType
	Records []Record
}

// Slice materializes rows [from, to) as a Batch. Bounds are clamped to the
// table.
func (d *Dataset) Slice(from, to int) Batch {
	rows, _ := d.Shape()
	from = max(0, min(from, rows))
	to = max(from, min(to, rows))

	names := d.Names()
	b := Batch{
		Columns: names,
		Types:   make(map[string]ColumnType, len(names)),
		Records: make([]Record, to-from),
	}
	for _, name := range names {
		b.Types[name], _ = d.Type(name)
	}
	for i := range b.Records {
		b.Records[i] = Record{Index: from + i, Fields: make(map[string]any, len(names))}
	}
	for _, name := range names {
		col := d.df.Col(name)
		for i := range b.Records {
			b.Records[i].Fields[name] = elemValue(col, from+i)
		}
	}
	return b
}

// WriteCSV writes the header and every row to w. Missing cells are written
// empty so the output reads back with the same null counts.
func (d *Dataset) WriteCSV(w io.Writer) error {
	if err := d.valid(); err != nil {
		return err
	}
	rows, _ := d.Shape()
	b := d.Slice(0, rows)

	cw := csv.NewWriter(w)
	if err := cw.Write(b.Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, rec := range b.Records {
		if err := cw.Write(rec.Strings(b.Columns)); err != nil {
			return fmt.Errorf("write row %d: %w", rec.Index, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
