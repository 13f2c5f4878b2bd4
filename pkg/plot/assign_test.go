package plot

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/valplot/pkg/errors"
)

func collectIDs(d *Diagram) []string {
	var ids []string
	d.Walk(func(e Element) { ids = append(ids, e.ID()) })
	return ids
}

func sampleValue() any {
	return Entries{
		{Key: "points", Value: []point{{1, 2}, {3, 4}}},
		{Key: "pair", Value: Tuple{"x", nil, 2.5}},
		{Key: "nested", Value: map[string]any{"a": []any{1, []int{2, 3}}, "b": "c"}},
		{Key: "tree", Value: &tree{Name: "t", Kids: []*tree{{Name: "k"}}}},
		{Key: "a.b:c", Value: "tricky key"},
	}
}

func TestAssignUnique(t *testing.T) {
	d := build(t, sampleValue())

	seen := make(map[string]bool)
	for _, id := range collectIDs(d) {
		if id == "" {
			t.Error("element without id after Assign")
			continue
		}
		if seen[id] {
			t.Errorf("duplicate id %q", id)
		}
		seen[id] = true
	}
}

func TestAssignDeterministic(t *testing.T) {
	d := build(t, sampleValue())
	first := collectIDs(d)

	if err := Assign(d); err != nil {
		t.Fatalf("second Assign() error: %v", err)
	}
	if diff := cmp.Diff(first, collectIDs(d)); diff != "" {
		t.Errorf("ids changed on re-assignment (-first +second):\n%s", diff)
	}

	other := build(t, sampleValue())
	if diff := cmp.Diff(first, collectIDs(other)); diff != "" {
		t.Errorf("ids differ between builds (-first +second):\n%s", diff)
	}
}

func TestAssignPortsAreTwoPart(t *testing.T) {
	d := build(t, sampleValue())

	d.Walk(func(e Element) {
		switch e := e.(type) {
		case *Text, *Cells:
			outer, cell, ok := SplitID(e.ID())
			if !ok {
				t.Errorf("label element id %q does not split in two", e.ID())
				return
			}
			if outer == "" || cell == "" {
				t.Errorf("label element id %q has an empty part", e.ID())
			}
		case *Node, *Scope, *Edge, *Ref:
			if strings.Contains(e.ID(), ":") {
				t.Errorf("%T id %q contains a port separator", e, e.ID())
			}
		}
	})
}

func TestAssignRootPath(t *testing.T) {
	d := build(t, "x")
	if d.Root.ID() != "root" {
		t.Errorf("root ID() = %q, want root", d.Root.ID())
	}
}

func TestAssignRejectsForeignLabelCell(t *testing.T) {
	d := build(t, "x")
	n := d.Top.(*Node)
	n.Label.AddElement(NewNode("bad"))

	err := Assign(d)
	if !errors.Is(err, errors.ErrCodeUnsupportedElement) {
		t.Errorf("Assign() error = %v, want unsupported element", err)
	}
}

func TestAssignRejectsLooseCells(t *testing.T) {
	d := build(t, "x")
	d.Root.add(NewCells(Horizontal, NoKey))

	err := Assign(d)
	if !errors.Is(err, errors.ErrCodeUnsupportedElement) {
		t.Errorf("Assign() error = %v, want unsupported element", err)
	}
}

func TestEncodeSegment(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"root", "root"},
		{"0-row", "0-row"},
		{"_3", "%5F3"},
		{"a_3", "a_3"},
		{"a.b", "a%2Eb"},
		{"a:b", "a%3Ab"},
		{"50%", "50%25"},
		{"a b", "a%20b"},
		{"é", "%C3%A9"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := EncodeSegment(tt.in); got != tt.want {
			t.Errorf("EncodeSegment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEncodePathInjective(t *testing.T) {
	path := func(keys ...Key) string {
		var p []string
		for _, k := range keys {
			p = extend(p, k)
		}
		return encodePath(p)
	}
	tests := []struct {
		name string
		a, b string
	}{
		{"dots", path(StrKey("a.b"), StrKey("c")), path(StrKey("a"), StrKey("b.c"))},
		{"positional", path(StrKey("_1")), path(posKey(1))},
	}
	for _, tt := range tests {
		if tt.a == tt.b {
			t.Errorf("%s: encodePath collision: %q", tt.name, tt.a)
		}
	}
}

func TestSplitID(t *testing.T) {
	tests := []struct {
		id          string
		outer, cell string
		ok          bool
	}{
		{"root._0:_0", "root._0", "_0", true},
		{"root._0:label.1-row", "root._0", "label.1-row", true},
		{"root._0", "", "", false},
		{"a:b:c", "", "", false},
	}
	for _, tt := range tests {
		outer, cell, ok := SplitID(tt.id)
		if outer != tt.outer || cell != tt.cell || ok != tt.ok {
			t.Errorf("SplitID(%q) = (%q, %q, %v), want (%q, %q, %v)",
				tt.id, outer, cell, ok, tt.outer, tt.cell, tt.ok)
		}
	}
}
