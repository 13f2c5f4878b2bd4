package dot

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/valplot/pkg/errors"
	"github.com/matzehuels/valplot/pkg/plot"
)

// Options configures DOT rendering.
type Options struct {
	// Name is the graph name. Defaults to "G".
	Name string
	// RankDir is the Graphviz rank direction: TB (default), LR, BT or RL.
	RankDir string
	// Background is the graph background color. Defaults to "transparent".
	Background string
	// FontName is the default node font. Defaults to "Helvetica".
	FontName string
}

// ValidateAndSetDefaults fills unset options and rejects unknown rank
// directions.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Name == "" {
		o.Name = "G"
	}
	o.RankDir = strings.ToUpper(o.RankDir)
	switch o.RankDir {
	case "":
		o.RankDir = "TB"
	case "TB", "LR", "BT", "RL":
	default:
		return errors.New(errors.ErrCodeInvalidInput, "invalid rank direction %q (want TB, LR, BT or RL)", o.RankDir)
	}
	if o.Background == "" {
		o.Background = "transparent"
	}
	if o.FontName == "" {
		o.FontName = "Helvetica"
	}
	return nil
}

// Render converts a diagram whose ids have been set by [plot.Assign] into
// a DOT graph. Each referenced scope is drawn in its own cluster subgraph
// "cluster_<i>".
func Render(d *plot.Diagram, opts Options) (*Graph, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if d == nil || d.Root == nil {
		return nil, errors.New(errors.ErrCodeInternal, "render: empty diagram")
	}
	if d.Root.ID() == "" {
		return nil, errors.New(errors.ErrCodeInternal, "render: diagram ids are not assigned")
	}

	g := New(EscapeText(opts.Name))
	g.Attr("rankdir", opts.RankDir)
	g.Attr("bgcolor", opts.Background)
	g.NodeDefaults(A("fontname", opts.FontName))

	r := renderer{ambient: plot.Horizontal}
	if opts.RankDir == "LR" || opts.RankDir == "RL" {
		r.ambient = plot.Vertical
	}

	if err := r.element(g, d.Root); err != nil {
		return nil, err
	}
	for i, ref := range d.Refs {
		sg := g.Subgraph("cluster_" + strconv.Itoa(i))
		sg.Attr("style", "filled")
		sg.Attr("color", "lightgrey")
		if err := r.element(sg, ref); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Marshal assigns ids to d and returns its DOT source.
func Marshal(d *plot.Diagram, opts Options) ([]byte, error) {
	if err := plot.Assign(d); err != nil {
		return nil, err
	}
	g, err := Render(d, opts)
	if err != nil {
		return nil, err
	}
	return []byte(g.String()), nil
}

type renderer struct {
	// direction that record fields take without a { } group
	ambient plot.Direction
}

func (r renderer) element(g *Graph, e plot.Element) error {
	switch e := e.(type) {
	case *plot.Node:
		label, err := r.label(e)
		if err != nil {
			return err
		}
		attrs := []Attr{A("label", label), A("shape", e.Shape)}
		if e.Color != "" {
			attrs = append(attrs, A("style", "filled"), A("fillcolor", e.Color))
		}
		g.Node(e.ID(), attrs...)
	case *plot.Edge:
		from, err := endpointID(e.From)
		if err != nil {
			return err
		}
		to, err := endpointID(e.To)
		if err != nil {
			return err
		}
		var attrs []Attr
		if e.Label != "" {
			attrs = append(attrs, A("label", EscapeText(e.Label)))
		}
		g.Edge(from, to, attrs...)
	case *plot.Ref:
		g.Node(e.ID(),
			A("label", strconv.Itoa(e.Index)),
			A("shape", "diamond"),
			A("style", "filled"),
			A("colorscheme", "pastel25"),
			A("fillcolor", "1"),
		)
		if t := e.Target(); t != nil {
			to, err := endpointID(t)
			if err != nil {
				return err
			}
			g.Edge(e.ID(), to, A("style", "dashed"))
		}
	case *plot.Scope:
		for _, c := range e.Children() {
			if err := r.element(g, c); err != nil {
				return err
			}
		}
	default:
		return errors.New(errors.ErrCodeUnsupportedElement, "cannot render %T as a graph element", e)
	}
	return nil
}

// label renders the label of n. Only record shapes understand ports and
// field groups; any other shape gets its texts one per line.
func (r renderer) label(n *plot.Node) (string, error) {
	if isRecord(n.Shape) {
		return renderCells(n.Label, r.ambient)
	}
	var lines []string
	var collect func(c *plot.Cells) error
	collect = func(c *plot.Cells) error {
		for _, child := range c.Children() {
			switch child := child.(type) {
			case *plot.Text:
				lines = append(lines, EscapeText(child.Content))
			case *plot.Cells:
				if err := collect(child); err != nil {
					return err
				}
			default:
				return errors.New(errors.ErrCodeUnsupportedElement, "cannot render %T inside a node label", child)
			}
		}
		return nil
	}
	if err := collect(n.Label); err != nil {
		return "", err
	}
	return strings.Join(lines, `\n`), nil
}

func isRecord(shape string) bool {
	return shape == "record" || shape == "Mrecord"
}

// renderCells renders a table as a record label. A table whose direction
// differs from the enclosing one is wrapped in braces.
func renderCells(c *plot.Cells, ambient plot.Direction) (string, error) {
	var b strings.Builder
	group := c.Direction != ambient
	if group {
		b.WriteByte('{')
	}
	if children := c.Children(); len(children) > 0 {
		b.WriteByte(' ')
		for i, child := range children {
			if i > 0 {
				b.WriteString(" | ")
			}
			switch child := child.(type) {
			case *plot.Text:
				_, port, ok := plot.SplitID(child.ID())
				if !ok {
					return "", errors.New(errors.ErrCodeInternal, "text cell has malformed port id %q", child.ID())
				}
				fmt.Fprintf(&b, "<%s> %s", port, Escape(child.Content))
			case *plot.Cells:
				s, err := renderCells(child, c.Direction)
				if err != nil {
					return "", err
				}
				b.WriteString(s)
			default:
				return "", errors.New(errors.ErrCodeUnsupportedElement, "cannot render %T inside a record label", child)
			}
		}
		b.WriteByte(' ')
	}
	if group {
		b.WriteByte('}')
	}
	return b.String(), nil
}

func endpointID(e plot.Element) (string, error) {
	if e == nil {
		return "", errors.New(errors.ErrCodeInternal, "edge endpoint is nil")
	}
	switch e.(type) {
	case *plot.Node, *plot.Text, *plot.Ref:
	default:
		return "", errors.New(errors.ErrCodeUnsupportedElement, "cannot connect an edge to %T", e)
	}
	if e.ID() == "" {
		return "", errors.New(errors.ErrCodeInternal, "edge endpoint %T has no id", e)
	}
	return e.ID(), nil
}
