package postgres

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/taxi-fare-prep/internal/dataset"
)

func TestSQLType(t *testing.T) {
	tests := []struct {
		in   dataset.ColumnType
		want string
	}{
		{dataset.Int, "BIGINT"},
		{dataset.Float, "DOUBLE PRECISION"},
		{dataset.Bool, "BOOLEAN"},
		{dataset.String, "TEXT"},
		{dataset.Category, "TEXT"},
		{"", "TEXT"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sqlType(tt.in), string(tt.in))
	}
}

func TestCreateTableStatement(t *testing.T) {
	got := createTableStatement("prepared_trips",
		[]string{"fare_amount", "hour", "am_pm", "pickup datetime"},
		map[string]dataset.ColumnType{
			"fare_amount":     dataset.Float,
			"hour":            dataset.Int,
			"am_pm":           dataset.Category,
			"pickup datetime": dataset.String,
		})
	assert.Equal(t,
		`CREATE TABLE IF NOT EXISTS "prepared_trips" ("fare_amount" DOUBLE PRECISION, "hour" BIGINT, "am_pm" TEXT, "pickup datetime" TEXT)`,
		got)
}

func TestInsertStatement(t *testing.T) {
	got := insertStatement("prepared_trips", []string{"hour", `odd"name`})
	assert.Equal(t, `INSERT INTO "prepared_trips" ("hour", "odd""name") VALUES (:c0, :c1)`, got)
}

func TestBindRows(t *testing.T) {
	records := []dataset.Record{
		{Index: 0, Fields: map[string]any{"hour": 8, "am_pm": "AM"}},
		{Index: 1, Fields: map[string]any{"hour": nil, "am_pm": nil}},
	}
	got := bindRows([]string{"hour", "am_pm"}, records)
	assert.Equal(t, []map[string]any{
		{"c0": 8, "c1": "AM"},
		{"c0": nil, "c1": nil},
	}, got)
}

func TestWriter_LoadBatch_Empty(t *testing.T) {
	w := &Writer{table: "prepared_trips"}
	assert.NoError(t, w.LoadBatch(context.Background(), dataset.Batch{}))
	assert.Equal(t, "postgres", w.Name())
}
