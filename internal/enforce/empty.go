// internal/enforce/empty.go
//
// Emptiness test shared by the create and write hooks.
//
// Context
// -------
// Record values arrive as decoded JSON or as typed Go values from callers
// inside the process.  A required field is unfilled when its value is
// nil, false, "", a numeric zero, an empty collection, or a nil pointer.
//
// Notes
// -----
// • JSON numbers decode as float64, so 0 and 0.0 are both empty.
// • Oxford commas, two spaces after periods.

package enforce

import "reflect"

// IsEmpty reports whether v counts as "not filled": nil, false, "", a
// numeric zero, or an empty slice, array, or map.  Everything else,
// including whitespace-only strings and the string "0", is filled.
func IsEmpty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return !rv.Bool()
	case reflect.String:
		return rv.Len() == 0
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return rv.Float() == 0
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return true
		}
		return IsEmpty(rv.Elem().Interface())
	}
	return false
}
