// Package truth decides whether an arbitrary Go value counts as true.
//
// Generated code calls Of for every condition, so a type can opt into its
// own rule by implementing Booler.
package truth

import (
	"math"
	"reflect"
)

// Booler is implemented by types with their own truthiness.
type Booler interface {
	AsBool() bool
}

// Of reports the truthiness of v:
//
//   - bool is itself
//   - numbers are true when non-zero; NaN is false
//   - strings, slices, maps, channels and arrays are true when non-empty
//   - pointers and funcs are true when non-nil
//   - structs are true
//   - nil is false
//
// A value of interface type is judged by the value it holds, so a zero
// stored in an any is false.
//
// A non-nil value implementing Booler, or a pointer to one, decides for itself.
func Of[T any](v T) bool {
	x := any(v)
	if x == nil {
		return false
	}

	rv := reflect.ValueOf(x)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		if rv.IsNil() {
			return false
		}
	}
	if b, ok := x.(Booler); ok {
		return b.AsBool()
	}
	return value(rv)
}

func value(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() != 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() != 0
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return f != 0 && !math.IsNaN(f)
	case reflect.Complex64, reflect.Complex128:
		return rv.Complex() != 0
	case reflect.String, reflect.Slice, reflect.Map, reflect.Chan, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer:
		if b, ok := rv.Elem().Interface().(Booler); ok && rv.Elem().Kind() == reflect.Interface {
			return b.AsBool()
		}
		return true
	case reflect.Func, reflect.UnsafePointer:
		return !rv.IsNil()
	case reflect.Struct:
		return true
	default:
		return false
	}
}
