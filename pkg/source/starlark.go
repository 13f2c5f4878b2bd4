package source

import (
	"context"
	"fmt"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/matzehuels/valplot/pkg/errors"
	"github.com/matzehuels/valplot/pkg/plot"
)

// StarlarkGlobal is the global a Starlark script assigns its result to.
const StarlarkGlobal = "value"

// maxConvertDepth bounds how deeply nested a script's result may be.
const maxConvertDepth = 10000

// starlarkMaxSteps bounds the work a script may do before it is cancelled.
var starlarkMaxSteps uint64 = 1 << 27

// predeclared is what scripts can use besides the universe: struct(**kw)
// and record(name, **kw), which names the record type.
var predeclared = starlark.StringDict{
	"struct": starlark.NewBuiltin("struct", starlarkstruct.Make),
	"record": starlark.NewBuiltin("record", makeRecord),
}

func makeRecord(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, nil, 1, &name); err != nil {
		return nil, err
	}
	fields := make(starlark.StringDict, len(kwargs))
	for _, kv := range kwargs {
		fields[string(kv[0].(starlark.String))] = kv[1]
	}
	return starlarkstruct.FromStringDict(starlark.String(name), fields), nil
}

// parseStarlark runs a script and converts its result global. The script is
// cancelled when ctx is done or it exceeds its step budget.
func parseStarlark(ctx context.Context, data []byte, filename string) (any, error) {
	opts := &syntax.FileOptions{Set: true, While: true, TopLevelControl: true, GlobalReassign: true, Recursion: true}
	f, prog, err := starlark.SourceProgramOptions(opts, filename, data, predeclared.Has)
	if err != nil {
		return nil, err
	}
	thread := &starlark.Thread{
		Name:  filename,
		Print: func(*starlark.Thread, string) {},
	}
	thread.SetMaxExecutionSteps(starlarkMaxSteps)
	stop := context.AfterFunc(ctx, func() { thread.Cancel(ctx.Err().Error()) })
	defer stop()

	globals, err := prog.Init(thread, predeclared)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}

	name := StarlarkGlobal
	if !globals.Has(name) {
		name = lastAssigned(f)
	}
	v, ok := globals[name]
	if !ok {
		return nil, fmt.Errorf("script defines no %q global", StarlarkGlobal)
	}
	c := &converter{seen: make(map[starlark.Value]any)}
	return c.convert(v)
}

// lastAssigned returns the name of the last top-level global assignment.
func lastAssigned(f *syntax.File) string {
	var name string
	for _, stmt := range f.Stmts {
		if a, ok := stmt.(*syntax.AssignStmt); ok {
			if id, ok := a.LHS.(*syntax.Ident); ok {
				name = id.Name
			}
		}
	}
	return name
}

// converter turns Starlark values into plot values. A mutable value that is
// reachable twice converts to the same Go value, so cyclic data stays finite
// and shared data stays shared.
type converter struct {
	seen  map[starlark.Value]any
	depth int
}

func (c *converter) convert(v starlark.Value) (any, error) {
	if c.depth >= maxConvertDepth {
		return nil, errors.New(errors.ErrCodeMaxDepth, "script value nests deeper than %d levels", maxConvertDepth)
	}
	c.depth++
	defer func() { c.depth-- }()

	switch v := v.(type) {
	case starlark.NoneType:
		return nil, nil
	case starlark.Bool:
		return bool(v), nil
	case starlark.Int:
		if i, ok := v.Int64(); ok {
			return i, nil
		}
		return v.String(), nil
	case starlark.Float:
		return float64(v), nil
	case starlark.String:
		return string(v), nil
	case starlark.Bytes:
		return string(v), nil
	case starlark.Tuple:
		out := make(plot.Tuple, len(v))
		for i, e := range v {
			x, err := c.convert(e)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	case *starlark.List:
		if out, ok := c.seen[v]; ok {
			return out, nil
		}
		out := make([]any, v.Len())
		c.seen[v] = out
		for i := range out {
			x, err := c.convert(v.Index(i))
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	case *starlark.Dict:
		if out, ok := c.seen[v]; ok {
			return out, nil
		}
		items := v.Items()
		out := make(plot.Entries, len(items))
		c.seen[v] = out
		for i, kv := range items {
			k, err := c.convert(kv[0])
			if err != nil {
				return nil, err
			}
			val, err := c.convert(kv[1])
			if err != nil {
				return nil, err
			}
			out[i] = plot.Entry{Key: k, Value: val}
		}
		return out, nil
	case *starlarkstruct.Struct:
		if out, ok := c.seen[v]; ok {
			return out, nil
		}
		return c.convertStruct(v)
	}
	return nil, fmt.Errorf("cannot plot Starlark value of type %s", v.Type())
}

// starlarkRecord is a struct(...) value seen as a [plot.Record].
type starlarkRecord struct {
	typeName string
	fields   []plot.Field
}

func (r *starlarkRecord) TypeName() string     { return r.typeName }
func (r *starlarkRecord) Fields() []plot.Field { return r.fields }

func (c *converter) convertStruct(s *starlarkstruct.Struct) (*starlarkRecord, error) {
	r := &starlarkRecord{typeName: "struct"}
	c.seen[s] = r
	switch ctor := s.Constructor().(type) {
	case starlark.String:
		r.typeName = string(ctor)
	case *starlark.Builtin:
		r.typeName = ctor.Name()
	}
	for _, name := range s.AttrNames() {
		attr, err := s.Attr(name)
		if err != nil {
			return nil, err
		}
		v, err := c.convert(attr)
		if err != nil {
			return nil, err
		}
		r.fields = append(r.fields, plot.Field{Name: name, Value: v})
	}
	return r, nil
}
