// Package sugar holds the small generic helpers that expanded gosugar code
// calls into.
package sugar

import (
	"reflect"
	"unsafe"
)

// Number is any type that supports += 1.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64 | ~complex64 | ~complex128
}

// Inc increments *p and returns the new value.
func Inc[T Number](p *T) T {
	*p++
	return *p
}

// Dec decrements *p and returns the new value.
func Dec[T Number](p *T) T {
	*p--
	return *p
}

// Pair is one map entry.
type Pair[K comparable, V any] struct {
	Key   K
	Value V
}

// Entry builds a Pair, letting the compiler infer both types.
func Entry[K comparable, V any](k K, v V) Pair[K, V] {
	return Pair[K, V]{Key: k, Value: v}
}

// MapOf builds a map from entries in order; a repeated key keeps the last value.
func MapOf[K comparable, V any](entries ...Pair[K, V]) map[K]V {
	m := make(map[K]V, len(entries))
	for _, e := range entries {
		m[e.Key] = e.Value
	}
	return m
}

// Clone returns a copy of s. The copy of an empty or nil slice is empty and
// non-nil.
func Clone[S ~[]E, E any](s S) S {
	out := make(S, len(s))
	copy(out, s)
	return out
}

// Elem returns the zero element of s. It only fixes a type for the compiler;
// spr accepts slices, so arrays must be sliced first.
func Elem[S ~[]E, E any](s S) E {
	var e E
	return e
}

// Fill returns v with a nil pointer replaced by a pointer to a new zero
// value, and with the nil embedded struct pointers of that value allocated,
// so that selecting one field of the result never dereferences nil. Each
// call allocates a single level; chained selections call Fill once per
// field.
func Fill[T any](v T) T {
	rv := reflect.ValueOf(&v).Elem()
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		rv.Set(reflect.New(rv.Type().Elem()))
	}
	fillEmbedded(rv, make(map[reflect.Type]bool))
	return v
}

// fillEmbedded allocates nil embedded struct pointers, through which
// promoted fields are selected. seen stops self-embedding types.
func fillEmbedded(v reflect.Value, seen map[reflect.Type]bool) {
	if v.Kind() == reflect.Pointer {
		if v.IsNil() {
			return
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct || seen[v.Type()] {
		return
	}
	seen[v.Type()] = true

	for i := 0; i < v.NumField(); i++ {
		if !v.Type().Field(i).Anonymous {
			continue
		}
		f := v.Field(i)
		if !f.CanSet() {
			f = reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
		}
		if f.Kind() == reflect.Pointer && f.IsNil() && f.Type().Elem().Kind() == reflect.Struct {
			f.Set(reflect.New(f.Type().Elem()))
		}
		fillEmbedded(f, seen)
	}
}

// Spread collects the values each yields. sample only fixes F. The result
// is never nil.
func Spread[F any](sample F, each func(yield func(any))) []F {
	_ = sample
	out := make([]F, 0)
	each(func(v any) {
		f, _ := v.(F)
		out = append(out, f)
	})
	return out
}
