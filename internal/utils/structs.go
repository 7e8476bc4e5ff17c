package utils

import (
	"fmt"
	"reflect"
	"slices"
)

var ColumnTag = "db"

// StructTagValues lists the column names of a db-tagged struct in field order.
func StructTagValues(input any) []string {
	t := structType(input)

	result := make([]string, 0, t.NumField())
	for i := range t.NumField() {
		if col, ok := columnName(t.Field(i)); ok {
			result = append(result, col)
		}
	}

	return result
}

// StructToMap maps column name to field value, skipping any column in omit.
func StructToMap(input any, omit ...string) map[string]any {
	v := reflect.ValueOf(input)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	t := structType(input)

	result := make(map[string]any, t.NumField())
	for i := range t.NumField() {
		col, ok := columnName(t.Field(i))
		if !ok || slices.Contains(omit, col) {
			continue
		}
		result[col] = v.Field(i).Interface()
	}

	return result
}

func structType(input any) reflect.Type {
	t := reflect.TypeOf(input)
	if t != nil && t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	if t == nil || t.Kind() != reflect.Struct {
		panic("input must be a pointer to a struct or a struct")
	}

	return t
}

func columnName(f reflect.StructField) (string, bool) {
	if f.PkgPath != "" {
		return "", false
	}

	tag := f.Tag.Get(ColumnTag)
	if tag == "" || tag == "-" {
		return "", false
	}

	return tag, true
}

func ErrorWrapOrNil(err error, msg string) error {
	if err == nil {
		return nil
	}

	if msg == "" {
		return err
	}

	return fmt.Errorf("%s: %w", msg, err)
}
