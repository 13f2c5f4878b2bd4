package plot

import (
	"fmt"
	"strings"

	"github.com/matzehuels/valplot/pkg/errors"
)

// Assign sets the id of every element in d. The root scope is addressed by
// the path ["root"] and the i-th referenced scope by [i]. Elements inside a
// node label get a two-part id "<node path>:<cell path>", which the DOT
// renderer turns into a node port.
//
// Assign is deterministic: running it twice yields the same ids.
func Assign(d *Diagram) error {
	if err := assignPath(d.Root, nil); err != nil {
		return err
	}
	for _, r := range d.Refs {
		if err := assignPath(r, nil); err != nil {
			return err
		}
	}
	return nil
}

func assignPath(e Element, path []string) error {
	path = extend(path, e.Key())
	e.base().id = encodePath(path)

	switch e := e.(type) {
	case *Scope:
		for _, c := range e.children {
			if err := assignPath(c, path); err != nil {
				return err
			}
		}
	case *Node:
		for _, c := range e.Label.children {
			if err := assignCellPath(c, path, nil); err != nil {
				return err
			}
		}
	case *Edge, *Ref:
	default:
		return errors.New(errors.ErrCodeUnsupportedElement, "cannot assign id to %T outside a node label", e)
	}
	return nil
}

func assignCellPath(e Element, outer, cell []string) error {
	cell = extend(cell, e.Key())
	e.base().id = encodePath(outer) + ":" + encodePath(cell)

	switch e := e.(type) {
	case *Cells:
		for _, c := range e.children {
			if err := assignCellPath(c, outer, cell); err != nil {
				return err
			}
		}
	case *Text:
	default:
		return errors.New(errors.ErrCodeUnsupportedElement, "cannot place %T inside a node label", e)
	}
	return nil
}

func extend(path []string, k Key) []string {
	out := make([]string, len(path), len(path)+1)
	copy(out, path)
	if !k.IsZero() {
		out = append(out, k.segment())
	}
	return out
}

// encodePath joins segments that were already encoded by [Key.segment].
func encodePath(path []string) string {
	return strings.Join(path, ".")
}

// EncodeSegment escapes every byte outside [A-Za-z0-9_-] as %XX, so joined
// paths never contain a stray "." or ":". A leading "_" is escaped too;
// that prefix belongs to positional keys.
func EncodeSegment(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isSafe(c) && (i > 0 || c != '_') {
			b.WriteByte(c)
			continue
		}
		fmt.Fprintf(&b, "%%%02X", c)
	}
	return b.String()
}

func isSafe(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_' || c == '-'
}

// SplitID splits a two-part id into its node and port coordinates.
func SplitID(id string) (outer, cell string, ok bool) {
	outer, cell, ok = strings.Cut(id, ":")
	if !ok || strings.Contains(cell, ":") {
		return "", "", false
	}
	return outer, cell, true
}
