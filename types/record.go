package types

import (
	"reflect"
	"strings"
)

// Record is one flat extracted view of a raw instance, keyed by the
// schema's output field names. Fields missing from the instance hold
// the Absent sentinel.
type Record map[string]any

// absentValue marks a field that is not present in an instance's
// shape. It is distinct from nil so legitimate null values survive.
type absentValue struct{}

// Absent is the sentinel stored for fields missing from an instance.
var Absent = absentValue{}

// MarshalJSON renders absent fields as null so records stay plain
// JSON objects when persisted or shipped.
func (absentValue) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

func (absentValue) String() string {
	return "<absent>"
}

// IsAbsent reports whether v is the absent-value sentinel.
func IsAbsent(v any) bool {
	_, ok := v.(absentValue)
	return ok
}

// Mapper exposes an instance's mapping form.
type Mapper interface {
	ToMap() map[string]any
}

// Normalize converts a raw instance into a plain mapping: a ToMap
// capability wins, an existing mapping is used as is, anything else
// falls back to its reflected field map.
func Normalize(inst any) map[string]any {
	switch v := inst.(type) {
	case Mapper:
		return v.ToMap()
	case map[string]any:
		return v
	}
	return fieldMap(inst)
}

// fieldMap builds a mapping from the exported fields of a struct,
// preferring json tag names so wire-level keys survive.
func fieldMap(inst any) map[string]any {
	rv := reflect.ValueOf(inst)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return map[string]any{}
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return map[string]any{}
	}

	rt := rv.Type()
	out := make(map[string]any, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag, ok := field.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		out[name] = rv.Field(i).Interface()
	}
	return out
}
