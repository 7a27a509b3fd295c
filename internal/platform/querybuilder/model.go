package querybuilder

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
)

type modelField struct {
	index  int
	column string
}

// modelPlans caches the db-tagged fields of each row struct type.
var modelPlans sync.Map

// InsertModel builds an INSERT for a struct whose exported fields carry db
// tags. Fields tagged "-" or untagged are skipped.
func InsertModel(table string, model any, suffix string) (string, []any, error) {
	value := reflect.Indirect(reflect.ValueOf(model))
	if !value.IsValid() {
		return "", nil, fmt.Errorf("insert model: nil model")
	}
	if value.Kind() != reflect.Struct {
		return "", nil, fmt.Errorf("insert model: %s is not a struct", value.Type())
	}

	fields := planFor(value.Type())
	if len(fields) == 0 {
		return "", nil, fmt.Errorf("insert model: %s has no db columns", value.Type())
	}

	columns := make([]string, len(fields))
	values := make([]any, len(fields))
	for i, f := range fields {
		columns[i] = f.column
		values[i] = value.Field(f.index).Interface()
	}
	return InsertInto(table).Columns(columns...).Values(values...).Suffix(suffix).ToSQL()
}

func planFor(typ reflect.Type) []modelField {
	if cached, ok := modelPlans.Load(typ); ok {
		return cached.([]modelField)
	}

	fields := make([]modelField, 0, typ.NumField())
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		column, _, _ := strings.Cut(field.Tag.Get("db"), ",")
		column = strings.TrimSpace(column)
		if column == "" || column == "-" {
			continue
		}
		fields = append(fields, modelField{index: i, column: column})
	}

	modelPlans.Store(typ, fields)
	return fields
}
