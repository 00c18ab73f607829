package dataset

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-gota/gota/series"
)

// ColumnType names a column's storage. The values match pandas dtype names.
type ColumnType string

const (
	Int      ColumnType = "int64"
	Float    ColumnType = "float64"
	Bool     ColumnType = "bool"
	String   ColumnType = "object"
	Category ColumnType = "category"
)

// ParseColumnType accepts the dtype names above plus common aliases
// ("int", "float", "string", "categorical", ...).
func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "int64", "integer":
		return Int, nil
	case "float", "float64", "double", "number":
		return Float, nil
	case "bool", "boolean":
		return Bool, nil
	case "object", "string", "str", "text":
		return String, nil
	case "category", "categorical":
		return Category, nil
	default:
		return "", fmt.Errorf("%w: unknown column type %q", ErrSchema, s)
	}
}

// seriesType maps a column type to the gota storage used for it. Category
// columns keep whatever storage inference picked, so callers resolve them first.
func (t ColumnType) seriesType() series.Type {
	switch t {
	case Int:
		return series.Int
	case Float:
		return series.Float
	case Bool:
		return series.Bool
	default:
		return series.String
	}
}

func fromSeriesType(t series.Type) ColumnType {
	switch t {
	case series.Int:
		return Int
	case series.Float:
		return Float
	case series.Bool:
		return Bool
	default:
		return String
	}
}

// FormatValue renders a value produced by the dataset as CSV text. Missing
// values (nil) render as the empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
