package source

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/matzehuels/valplot/pkg/plot"
)

// parseCUE evaluates a CUE file. Only concrete values can be plotted, so
// open constraints such as "int" or "string" are rejected.
func parseCUE(data []byte, filename string) (any, error) {
	value := cuecontext.New().CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, err
	}
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return nil, err
	}
	return convertCUE(value)
}

func convertCUE(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.NullKind:
		return nil, nil
	case cue.BoolKind:
		return v.Bool()
	case cue.IntKind:
		if i, err := v.Int64(); err == nil {
			return i, nil
		}
		// out of int64 range
		return fmt.Sprint(v), nil
	case cue.FloatKind, cue.NumberKind:
		return v.Float64()
	case cue.StringKind:
		return v.String()
	case cue.BytesKind:
		b, err := v.Bytes()
		return string(b), err
	case cue.ListKind:
		it, err := v.List()
		if err != nil {
			return nil, err
		}
		out := []any{}
		for it.Next() {
			e, err := convertCUE(it.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, e)
		}
		return out, nil
	case cue.StructKind:
		it, err := v.Fields()
		if err != nil {
			return nil, err
		}
		out := plot.Entries{}
		for it.Next() {
			sel := it.Selector()
			name := sel.String()
			if sel.IsString() {
				name = sel.Unquoted()
			}
			e, err := convertCUE(it.Value())
			if err != nil {
				return nil, err
			}
			out = append(out, plot.Entry{Key: name, Value: e})
		}
		return out, nil
	}
	return nil, fmt.Errorf("cannot convert CUE value of kind %s", v.Kind())
}
