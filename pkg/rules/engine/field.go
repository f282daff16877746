package engine

import (
	"reflect"
	"strings"
)

// resolveField resolves a dotted path against a nested field structure.
// Each segment is looked up as a map key, falling back to a struct field
// for typed values. The first segment that cannot be resolved, or traversal
// through a nil value, yields nil for the whole path. Absence is a valid,
// silent outcome; resolution never panics.
func resolveField(fields map[string]any, path string) any {
	if fields == nil || path == "" {
		return nil
	}

	var current any = fields
	for _, segment := range strings.Split(path, ".") {
		if current == nil {
			return nil
		}
		next, ok := lookupSegment(current, segment)
		if !ok {
			return nil
		}
		current = next
	}
	return current
}

// lookupSegment resolves one path segment against the current value.
func lookupSegment(v any, segment string) (any, bool) {
	switch m := v.(type) {
	case map[string]any:
		val, ok := m[segment]
		return val, ok
	case map[string]string:
		val, ok := m[segment]
		return val, ok
	}
	return lookupSegmentReflect(v, segment)
}

// lookupSegmentReflect handles map and struct shapes outside the common
// cases. Struct fields match case-insensitively so extracted data bound to
// typed values stays addressable with snake_case paths.
func lookupSegmentReflect(v any, segment string) (any, bool) {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		key := reflect.ValueOf(segment)
		if !key.Type().AssignableTo(rv.Type().Key()) {
			return nil, false
		}
		mv := rv.MapIndex(key)
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true

	case reflect.Struct:
		want := normalizeFieldName(segment)
		f := rv.FieldByNameFunc(func(name string) bool {
			return normalizeFieldName(name) == want
		})
		if !f.IsValid() || !f.CanInterface() {
			return nil, false
		}
		return f.Interface(), true
	}

	return nil, false
}

// normalizeFieldName folds case and underscores so "buyer_name" matches a
// BuyerName struct field.
func normalizeFieldName(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "_", "")
}

// isEmpty reports whether a resolved value counts as absent: nil, an empty
// string, or an empty collection. Used by the exists operator and by
// required-field gating.
func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return s == ""
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// isNull reports whether a resolved value is null. Unlike isEmpty, empty
// strings and empty collections are values, not null.
func isNull(v any) bool {
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
