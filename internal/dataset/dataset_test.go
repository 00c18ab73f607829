package dataset

import (
	"bytes"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tripsFile = "testdata/trips.csv"

func loadTrips(t *testing.T, opts ...Option) *Dataset {
	t.Helper()
	ds, err := ReadCSVFile(tripsFile, opts...)
	require.NoError(t, err)
	return ds
}

func TestReadCSVFile(t *testing.T) {
	t.Run("infers column types", func(t *testing.T) {
		ds := loadTrips(t)

		want := map[string]ColumnType{
			"pickup_datetime":   String,
			"fare_amount":       Float,
			"fare_class":        Int,
			"pickup_longitude":  Float,
			"pickup_latitude":   Float,
			"dropoff_longitude": Float,
			"dropoff_latitude":  Float,
			"passenger_count":   Int,
			"payment":           String,
		}
		for name, typ := range want {
			got, ok := ds.Type(name)
			require.True(t, ok, name)
			assert.Equal(t, typ, got, name)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ReadCSVFile(filepath.Join(t.TempDir(), "nope.csv"))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrFileAccess)
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("ragged rows", func(t *testing.T) {
		_, err := ReadCSVFile("testdata/ragged.csv")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrParse)
	})

	t.Run("bad quoting", func(t *testing.T) {
		_, err := ReadCSVFile("testdata/badquote.csv")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrParse)
	})

	t.Run("schema pins types and categories", func(t *testing.T) {
		schema, err := LoadSchemaFile("testdata/schema.yaml")
		require.NoError(t, err)

		ds := loadTrips(t, WithSchema(schema))

		typ, _ := ds.Type("passenger_count")
		assert.Equal(t, Float, typ)
		typ, _ = ds.Type("fare_class")
		assert.Equal(t, Category, typ)
	})

	t.Run("schema naming unknown column", func(t *testing.T) {
		_, err := ReadCSVFile(tripsFile, WithColumnTypes(map[string]ColumnType{"tip": Float}))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrSchema)
	})
}

func TestReadCSV(t *testing.T) {
	t.Run("semicolon delimiter", func(t *testing.T) {
		ds, err := ReadCSV(strings.NewReader("a;b\n1;x\n2;y\n"), WithDelimiter(';'))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, ds.Names())
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(""))
		assert.ErrorIs(t, err, ErrParse)
	})

	t.Run("duplicate header", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("a,a\n1,2\n"))
		assert.ErrorIs(t, err, ErrParse)
	})

	t.Run("custom missing tokens", func(t *testing.T) {
		ds, err := ReadCSV(strings.NewReader("a\n1\n?\n3\n"), WithMissingValues([]string{"?"}))
		require.NoError(t, err)
		nulls, err := NullValues(ds)
		require.NoError(t, err)
		count, _ := nulls.Get("a")
		assert.Equal(t, 1, count)
		typ, _ := ds.Type("a")
		assert.Equal(t, Int, typ)
	})

	t.Run("header only", func(t *testing.T) {
		ds, err := ReadCSV(strings.NewReader("pickup_datetime,fare_amount,payment\n"),
			WithColumnTypes(map[string]ColumnType{"payment": Category}))
		require.NoError(t, err)

		rows, cols, err := GetShape(ds)
		require.NoError(t, err)
		assert.Equal(t, 0, rows)
		assert.Equal(t, 3, cols)

		nulls, err := NullValues(ds)
		require.NoError(t, err)
		assert.Len(t, nulls, 3)
		assert.Zero(t, nulls.Total())
		typ, _ := ds.Type("payment")
		assert.Equal(t, Category, typ)
	})

	t.Run("string columns keep leading zeros", func(t *testing.T) {
		ds, err := ReadCSV(strings.NewReader("hr,n\n010,1\n07,2\n"),
			WithStringColumns("hr", "absent"))
		require.NoError(t, err)
		typ, _ := ds.Type("hr")
		assert.Equal(t, String, typ)
		values, _, err := ds.Strings("hr")
		require.NoError(t, err)
		assert.Equal(t, []string{"010", "07"}, values)
		typ, _ = ds.Type("n")
		assert.Equal(t, Int, typ)
	})

	t.Run("explicit type wins over string columns", func(t *testing.T) {
		ds, err := ReadCSV(strings.NewReader("hr\n010\n07\n"),
			WithStringColumns("hr"),
			WithColumnTypes(map[string]ColumnType{"hr": Int}))
		require.NoError(t, err)
		typ, _ := ds.Type("hr")
		assert.Equal(t, Int, typ)
	})

	t.Run("bool column", func(t *testing.T) {
		ds, err := ReadCSV(strings.NewReader("flag\nTrue\nfalse\n"))
		require.NoError(t, err)
		typ, _ := ds.Type("flag")
		assert.Equal(t, Bool, typ)
	})
}

func TestInferColumnType(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   ColumnType
	}{
		{"ints", []string{"1", "-2", "30"}, Int},
		{"ints with missing", []string{"1", "", "NA"}, Int},
		{"floats", []string{"1.5", "2", "-0.25"}, Float},
		{"bools", []string{"true", "FALSE", "True"}, Bool},
		{"zero one stays int", []string{"0", "1"}, Int},
		{"text", []string{"card", "cash"}, String},
		{"mixed number and text", []string{"1", "two"}, String},
		{"all missing", []string{"", "NaN", "null"}, Float},
		{"no values", nil, Float},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferColumnType(tt.values, DefaultMissingValues))
		})
	}
}

func TestInferSchema(t *testing.T) {
	header := []string{"a", "b", "c"}
	rows := [][]string{{"1", "x", "1.5"}, {"2", "y"}}

	s := InferSchema(header, rows, DefaultMissingValues)

	want := map[string]ColumnType{"a": Int, "b": String, "c": Float}
	if diff := cmp.Diff(want, s.Columns); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadSchemaFile(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s, err := LoadSchemaFile("testdata/schema.yaml")
		require.NoError(t, err)
		assert.Equal(t, Float, s.Columns["passenger_count"])
		assert.Equal(t, []string{"fare_class"}, s.Categories())
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := LoadSchemaFile("testdata/badschema.yaml")
		assert.ErrorIs(t, err, ErrSchema)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadSchemaFile("testdata/none.yaml")
		assert.ErrorIs(t, err, ErrFileAccess)
	})
}

func TestParseColumnType(t *testing.T) {
	for in, want := range map[string]ColumnType{
		"int": Int, "Float": Float, "boolean": Bool, "string": String, "categorical": Category, " object ": String,
	} {
		got, err := ParseColumnType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseColumnType("datetime")
	assert.True(t, errors.Is(err, ErrSchema))
}

func TestGetShape(t *testing.T) {
	ds := loadTrips(t)

	rows, cols, err := GetShape(ds)
	require.NoError(t, err)
	assert.Equal(t, 6, rows)
	assert.Equal(t, 9, cols)

	_, _, err = GetShape(nil)
	assert.ErrorIs(t, err, ErrInvalidDataset)
}

func TestNullValues(t *testing.T) {
	ds := loadTrips(t)

	nulls, err := NullValues(ds)
	require.NoError(t, err)

	want := NullCounts{
		{"pickup_datetime", 0},
		{"fare_amount", 1},
		{"fare_class", 0},
		{"pickup_longitude", 0},
		{"pickup_latitude", 0},
		{"dropoff_longitude", 1},
		{"dropoff_latitude", 0},
		{"passenger_count", 1},
		{"payment", 1},
	}
	if diff := cmp.Diff(want, nulls); diff != "" {
		t.Fatalf("null counts mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 4, nulls.Total())

	_, err = NullValues(nil)
	assert.ErrorIs(t, err, ErrInvalidDataset)
}

func TestGetInfo(t *testing.T) {
	ds := loadTrips(t)
	require.NoError(t, ConvertToCategoryType([]string{"fare_class"}, ds))

	info, err := GetInfo(ds)
	require.NoError(t, err)

	assert.Equal(t, 6, info.Rows)
	require.Len(t, info.Columns, 9)
	assert.Equal(t, ColumnInfo{Name: "fare_amount", NonNull: 5, Type: Float}, info.Columns[1])
	assert.Equal(t, ColumnInfo{Name: "fare_class", NonNull: 6, Type: Category}, info.Columns[2])

	out := info.String()
	assert.Contains(t, out, "RangeIndex: 6 entries, 0 to 5")
	assert.Contains(t, out, "Data columns (total 9 columns):")
	assert.Contains(t, out, "dtypes: category(1), float64(5), int64(1), object(2)")

	var buf bytes.Buffer
	n, err := info.WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, int64(len(out)), n)
	assert.Equal(t, out, buf.String())
}

func TestConvertToCategoryType(t *testing.T) {
	t.Run("retags columns and keeps values", func(t *testing.T) {
		ds := loadTrips(t)
		before, _, err := ds.Strings("payment")
		require.NoError(t, err)

		require.NoError(t, ConvertToCategoryType([]string{"payment", "fare_class"}, ds))

		typ, _ := ds.Type("payment")
		assert.Equal(t, Category, typ)
		after, _, err := ds.Strings("payment")
		require.NoError(t, err)
		assert.Equal(t, before, after)

		cat, ok := ds.Categorical("payment")
		require.True(t, ok)
		assert.Equal(t, []string{"card", "cash"}, cat.Levels)
		assert.Equal(t, []int{0, 1, -1, 0, 0, 1}, cat.Codes)
		assert.Equal(t, []int{3, 2}, cat.Counts())

		v, ok := cat.Value(1)
		assert.True(t, ok)
		assert.Equal(t, "cash", v)
		_, ok = cat.Value(2)
		assert.False(t, ok)
	})

	t.Run("numeric levels sort numerically", func(t *testing.T) {
		ds, err := ReadCSV(strings.NewReader("n\n10\n9\n10\n100\n"))
		require.NoError(t, err)
		require.NoError(t, ConvertToCategoryType([]string{"n"}, ds))

		cat, _ := ds.Categorical("n")
		assert.Equal(t, []string{"9", "10", "100"}, cat.Levels)
		assert.Equal(t, []int{1, 0, 1, 2}, cat.Codes)
	})

	t.Run("unknown column leaves dataset unmodified", func(t *testing.T) {
		ds := loadTrips(t)

		err := ConvertToCategoryType([]string{"payment", "tip_amount"}, ds)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrColumnNotFound)
		assert.Contains(t, err.Error(), "tip_amount")

		typ, _ := ds.Type("payment")
		assert.Equal(t, String, typ)
		_, ok := ds.Categorical("payment")
		assert.False(t, ok)
	})

	t.Run("with categories returns a copy", func(t *testing.T) {
		ds := loadTrips(t)

		converted, err := ds.WithCategories("payment")
		require.NoError(t, err)

		typ, _ := converted.Type("payment")
		assert.Equal(t, Category, typ)
		typ, _ = ds.Type("payment")
		assert.Equal(t, String, typ)
	})
}

func TestWithColumn(t *testing.T) {
	ds := loadTrips(t)
	require.NoError(t, ConvertToCategoryType([]string{"payment"}, ds))

	col, err := ds.Column("fare_class")
	require.NoError(t, err)
	col.Name = "payment"

	out, err := ds.WithColumn(col)
	require.NoError(t, err)

	typ, _ := out.Type("payment")
	assert.Equal(t, Int, typ)
	typ, _ = ds.Type("payment")
	assert.Equal(t, Category, typ)

	_, err = ds.Column("nope")
	assert.ErrorIs(t, err, ErrColumnNotFound)
}

func TestSliceAndWriteCSV(t *testing.T) {
	ds := loadTrips(t)

	b := ds.Slice(4, 100)
	require.Len(t, b.Records, 2)
	assert.Equal(t, 4, b.Records[0].Index)
	assert.Nil(t, b.Records[0].Fields["passenger_count"])
	assert.Equal(t, 19.7, b.Records[0].Fields["fare_amount"])
	assert.Equal(t, 1, b.Records[0].Fields["fare_class"])
	assert.Nil(t, b.Records[1].Fields["fare_amount"])
	assert.Equal(t, Float, b.Types["fare_amount"])

	var buf bytes.Buffer
	require.NoError(t, ds.WriteCSV(&buf))

	back, err := ReadCSV(&buf)
	require.NoError(t, err)
	wantNulls, err := NullValues(ds)
	require.NoError(t, err)
	gotNulls, err := NullValues(back)
	require.NoError(t, err)
	assert.Equal(t, wantNulls, gotNulls)
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "", FormatValue(nil))
	assert.Equal(t, "42", FormatValue(42))
	assert.Equal(t, "-73.992365", FormatValue(-73.992365))
	assert.Equal(t, "true", FormatValue(true))
	assert.Equal(t, "AM", FormatValue("AM"))
}
