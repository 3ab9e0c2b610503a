// Package pathwalk implements the two nested lookups used for
// attribute extraction: a walk over object graphs (named attributes)
// and a walk over mapping graphs (dictionary keys). Both report
// missing hops with the absent-value sentinel instead of an error.
package pathwalk

import (
	"reflect"

	"github.com/pzaremba/oswatch/types"
)

// AttributeGetter resolves a named sub-object. Client holders and
// service wrappers implement it to expose their children without
// relying on reflection.
type AttributeGetter interface {
	Attribute(name string) (any, bool)
}

// Attr walks named attributes from root and returns the terminal
// value. A nil root, an empty path, or any missing or nil hop yields
// the absent sentinel.
func Attr(root any, path []string) any {
	if len(path) == 0 {
		return types.Absent
	}
	node := root
	for _, name := range path {
		if isNil(node) {
			return types.Absent
		}
		next, ok := attrStep(node, name)
		if !ok {
			return types.Absent
		}
		node = next
	}
	if isNil(node) {
		return types.Absent
	}
	return node
}

// Value walks dictionary keys through m, descending while the value
// is itself a nested mapping. The first non-mapping value is returned
// even when path segments remain unconsumed; schema paths are
// depth-exact, so leftover segments mean an over-specified path, not
// deeper nesting. A missing key yields the absent sentinel.
func Value(m map[string]any, path []string) any {
	if len(path) == 0 {
		return types.Absent
	}
	v, ok := m[path[0]]
	if !ok {
		return types.Absent
	}
	if child, nested := v.(map[string]any); nested && len(path) > 1 {
		return Value(child, path[1:])
	}
	return v
}

// attrStep resolves a single path segment against one node, trying
// the explicit capability first, then mapping index, then a reflected
// struct field.
func attrStep(node any, name string) (any, bool) {
	switch n := node.(type) {
	case AttributeGetter:
		return n.Attribute(name)
	case map[string]any:
		v, ok := n[name]
		return v, ok
	}
	return structField(node, name)
}

func structField(node any, name string) (any, bool) {
	rv := reflect.ValueOf(node)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	field := rv.FieldByName(name)
	if !field.IsValid() || !field.CanInterface() {
		return nil, false
	}
	return field.Interface(), true
}

// isNil treats typed nil pointers and interfaces the same as untyped
// nil so a half-built client graph reads as unresolved.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
