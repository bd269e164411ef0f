package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
)

// InsertModel builds a single-row insert from the db tags of model.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	cols, vals, err := ModelColumns(model)
	if err != nil {
		return "", nil, err
	}
	return InsertInto(table).
		Columns(cols...).
		Values(vals...).
		Suffix(suffix).
		ToSQL()
}

// ModelColumns returns tagged columns and their values in field order.
func ModelColumns(model any) ([]string, []any, error) {
	value := reflect.ValueOf(model)
	for value.Kind() == reflect.Pointer {
		if value.IsNil() {
			return nil, nil, fmt.Errorf("model cannot be nil")
		}
		value = value.Elem()
	}
	if value.Kind() != reflect.Struct {
		return nil, nil, fmt.Errorf("model must be struct, got %s", value.Kind())
	}

	typ := value.Type()
	cols := make([]string, 0, typ.NumField())
	vals := make([]any, 0, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if field.PkgPath != "" {
			continue
		}
		col := strings.TrimSpace(strings.Split(field.Tag.Get("db"), ",")[0])
		if col == "" || col == "-" {
			continue
		}
		cols = append(cols, col)
		vals = append(vals, value.Field(i).Interface())
	}

	if len(cols) == 0 {
		return nil, nil, fmt.Errorf("model has no db columns")
	}
	return cols, vals, nil
}

// UpsertSuffix renders ON CONFLICT (...) DO UPDATE SET col = EXCLUDED.col for
// every column that is not part of the conflict target.
func UpsertSuffix(conflict []string, columns []string, extra ...string) string {
	skip := make(map[string]struct{}, len(conflict))
	for _, col := range conflict {
		skip[col] = struct{}{}
	}

	sets := make([]string, 0, len(columns)+len(extra))
	for _, col := range columns {
		if _, ok := skip[col]; ok {
			continue
		}
		sets = append(sets, col+" = EXCLUDED."+col)
	}
	sets = append(sets, extra...)

	if len(sets) == 0 {
		return "ON CONFLICT (" + strings.Join(conflict, ", ") + ") DO NOTHING"
	}
	return "ON CONFLICT (" + strings.Join(conflict, ", ") + ") DO UPDATE SET " + strings.Join(sets, ", ")
}
