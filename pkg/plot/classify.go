package plot

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
)

// Kind is the classification of a value by [Classify].
type Kind int

const (
	KindOther Kind = iota
	KindPrimitive
	KindSequence
	KindTuple
	KindMapping
	KindPlottable
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindSequence:
		return "sequence"
	case KindTuple:
		return "tuple"
	case KindMapping:
		return "mapping"
	case KindPlottable:
		return "plottable"
	}
	return "other"
}

// Tuple is a fixed-size group of values. It renders as a single row,
// unlike a slice, which renders one row per element. Go arrays classify
// as tuples too.
type Tuple []any

// Entry is one key/value pair of an ordered mapping.
type Entry struct {
	Key   any
	Value any
}

// Entries is a key/value mapping that keeps insertion order.
type Entries []Entry

// Plottable is implemented by values that describe their own diagram.
// Plot receives a fresh scope and returns the element that represents the
// value at its embedding point.
type Plottable interface {
	Plot(s *Scope) (Element, error)
}

// Classify returns the kind of v. Classification is ordered: primitive,
// sequence, tuple, mapping, plottable. Everything else is [KindOther] and
// goes to the fallback registry.
func Classify(v any) Kind {
	if IsPrimitive(v) {
		return KindPrimitive
	}
	switch v.(type) {
	case Tuple:
		return KindTuple
	case Entries:
		return KindMapping
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice:
		return KindSequence
	case reflect.Array:
		return KindTuple
	case reflect.Map:
		return KindMapping
	}
	if _, ok := v.(Plottable); ok {
		return KindPlottable
	}
	return KindOther
}

// IsPrimitive reports whether v is an atomic value: nil, a nil pointer, or
// a value of boolean, numeric or string kind.
func IsPrimitive(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func stringify(v any) string {
	if v == nil {
		return "nil"
	}
	if rv := reflect.ValueOf(v); (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) && rv.IsNil() {
		return "nil"
	}
	return fmt.Sprint(v)
}

// indirect dereferences pointers to non-struct values. Pointers to structs
// and pointers that carry plot capabilities are kept so their methods and
// identity survive.
func indirect(v any) any {
	for {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.IsNil() {
			return v
		}
		if _, ok := v.(Plottable); ok {
			return v
		}
		if _, ok := v.(Record); ok {
			return v
		}
		if rv.Elem().Kind() == reflect.Struct {
			return v
		}
		v = rv.Elem().Interface()
	}
}

// items returns the elements of a slice or array.
func items(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

// mapEntries returns the entries of a Go map in a deterministic order:
// numeric keys numerically, everything else by printed form.
func mapEntries(rv reflect.Value) Entries {
	keys := rv.MapKeys()
	slices.SortStableFunc(keys, compareKeys)
	entries := make(Entries, 0, len(keys))
	for _, k := range keys {
		entries = append(entries, Entry{Key: k.Interface(), Value: rv.MapIndex(k).Interface()})
	}
	return entries
}

func compareKeys(a, b reflect.Value) int {
	if an, ok := numeric(a); ok {
		if bn, ok := numeric(b); ok {
			return cmp.Compare(an, bn)
		}
	}
	return cmp.Compare(fmt.Sprint(a.Interface()), fmt.Sprint(b.Interface()))
}

func numeric(v reflect.Value) (float64, bool) {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return 0, false
		}
		v = v.Elem()
	}
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	}
	return 0, false
}
