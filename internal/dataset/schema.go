package dataset

import (
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Schema maps column names to types. Loaded from YAML it pins types ahead of
// inference; returned by [InferSchema] it records what inference decided.
type Schema struct {
	Columns map[string]ColumnType
}

type schemaFile struct {
	Columns map[string]string `yaml:"columns"`
}

// LoadSchemaFile reads a YAML schema of the form:
//
//	columns:
//	  passenger_count: int64
//	  fare_class: category
func LoadSchemaFile(path string) (Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Schema{}, fmt.Errorf("%w: %w", ErrFileAccess, err)
	}
	var raw schemaFile
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Schema{}, fmt.Errorf("%w: %s: %w", ErrSchema, path, err)
	}
	s := Schema{Columns: make(map[string]ColumnType, len(raw.Columns))}
	for name, typ := range raw.Columns {
		t, err := ParseColumnType(typ)
		if err != nil {
			return Schema{}, fmt.Errorf("column %q: %w", name, err)
		}
		s.Columns[name] = t
	}
	return s, nil
}

// Categories returns the columns typed as [Category], sorted.
func (s Schema) Categories() []string {
	var out []string
	for name, t := range s.Columns {
		if t == Category {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out
}

// InferSchema runs [InferColumnType] over every column of rows. Short rows
// count as missing in the columns they lack.
func InferSchema(header []string, rows [][]string, missing []string) Schema {
	s := Schema{Columns: make(map[string]ColumnType, len(header))}
	col := make([]string, len(rows))
	for j, name := range header {
		for i, row := range rows {
			if j < len(row) {
				col[i] = row[j]
			} else {
				col[i] = ""
			}
		}
		s.Columns[name] = InferColumnType(col, missing)
	}
	return s
}

// InferColumnType picks the narrowest type every non-missing value parses as:
// int64, then float64, then bool (true/false, any case), else object. A column
// with no values at all is float64, as pandas reads an all-NaN column.
func InferColumnType(values []string, missing []string) ColumnType {
	skip := make(map[string]struct{}, len(missing))
	for _, m := range missing {
		skip[m] = struct{}{}
	}

	seen := false
	isInt, isFloat, isBool := true, true, true
	for _, v := range values {
		if _, ok := skip[v]; ok {
			continue
		}
		seen = true
		if isInt {
			if _, err := strconv.ParseInt(v, 10, 64); err != nil {
				isInt = false
			}
		}
		if isFloat {
			if _, err := strconv.ParseFloat(v, 64); err != nil {
				isFloat = false
			}
		}
		if isBool {
			lv := strings.ToLower(v)
			isBool = lv == "true" || lv == "false"
		}
		if !isInt && !isFloat && !isBool {
			return String
		}
	}

	switch {
	case !seen:
		return Float
	case isInt:
		return Int
	case isFloat:
		return Float
	case isBool:
		return Bool
	default:
		return String
	}
}
