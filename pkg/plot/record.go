package plot

import (
	"reflect"
)

// Field is one named member of a [Record].
type Field struct {
	Name  string
	Value any
}

// Record is an aggregate with a type name and ordered named fields.
// Go structs satisfy it through [AsRecord]; other types may implement it
// directly.
type Record interface {
	TypeName() string
	Fields() []Field
}

// AsRecord returns v as a Record. Values implementing Record are returned
// as is. Structs and non-nil pointers to structs are adapted by
// reflection: exported fields in declaration order, renamed by a
// `plot:"name"` tag and skipped by `plot:"-"`.
func AsRecord(v any) (Record, bool) {
	if r, ok := v.(Record); ok {
		return r, true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, false
	}
	return structRecord{rv: rv}, true
}

type structRecord struct {
	rv reflect.Value
}

func (r structRecord) TypeName() string {
	t := r.rv.Type()
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

func (r structRecord) Fields() []Field {
	t := r.rv.Type()
	fields := make([]Field, 0, t.NumField())
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		name := sf.Name
		switch tag := sf.Tag.Get("plot"); tag {
		case "-":
			continue
		case "":
		default:
			name = tag
		}
		fields = append(fields, Field{Name: name, Value: r.rv.Field(i).Interface()})
	}
	return fields
}

// PlotRecord draws r as a record-shaped node. The first label cell holds
// the type name. Every embeddable field value is packed as a labeled row
// of the node; any other field value is connected to the node by an edge
// labeled with the field name.
func PlotRecord(r Record, s *Scope) (Element, error) {
	node := s.AddNode(r.TypeName(), WithShape("record"), WithDirection(Vertical))
	for _, f := range r.Fields() {
		p, err := s.Nest(f.Value, StrKey(f.Name))
		if err != nil {
			return nil, err
		}
		if p.Embeddable() {
			row := node.Label.AddCells(Horizontal, StrKey("field-"+f.Name))
			row.AddText(f.Name, StrKey(f.Name+"-name"))
			row.AddElement(p)
		} else {
			s.AddEdge(node, p, f.Name)
		}
	}
	return node, nil
}
