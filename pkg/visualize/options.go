package visualize

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/cli/browser"

	"github.com/matzehuels/valplot/pkg/cache"
	"github.com/matzehuels/valplot/pkg/errors"
	"github.com/matzehuels/valplot/pkg/plot"
	"github.com/matzehuels/valplot/pkg/render"
)

// DefaultDir is the output directory, relative to the working directory.
const DefaultDir = ".valgraphs"

// Options configures a [Visualize] call.
type Options struct {
	// Name is the diagram file name without extension. Empty picks the next
	// free "temp<N>" name in Dir.
	Name string
	// Format is the artifact format. Defaults to [render.DefaultFormat].
	Format string
	// View opens the artifact in the desktop viewer after rendering.
	View bool
	// Dir is the output directory. Defaults to [DefaultDir].
	Dir string
	// Engine selects the layout engine, see [render.Engines].
	Engine string
	// RankDir is the Graphviz rank direction (TB, LR, BT, RL).
	RankDir string
	// TrackReferences draws shared pointers once, see [plot.WithReferenceTracking].
	TrackReferences bool
	// MaxDepth bounds value nesting. Defaults to [plot.DefaultMaxDepth].
	MaxDepth int

	// Runtime options
	Registry   *plot.Registry
	Logger     *log.Logger
	Cache      cache.Cache
	OpenEngine func(ctx context.Context, name string) (render.Engine, error)
	Viewer     func(path string) error

	validated bool
}

// ValidateAndSetDefaults checks the options and fills unset fields.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Name != "" {
		if err := errors.ValidateDiagramName(o.Name); err != nil {
			return err
		}
	}
	if o.Format == "" {
		o.Format = render.DefaultFormat
	}
	if err := render.ValidateFormat(o.Format); err != nil {
		return err
	}
	if err := render.ValidateEngine(o.Engine); err != nil {
		return err
	}
	if o.Dir == "" {
		o.Dir = DefaultDir
	}
	if err := errors.ValidatePath(o.Dir); err != nil {
		return err
	}
	if o.MaxDepth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "max depth must not be negative, got %d", o.MaxDepth)
	}
	if o.MaxDepth == 0 {
		o.MaxDepth = plot.DefaultMaxDepth
	}
	if o.Registry == nil {
		o.Registry = plot.DefaultRegistry()
	}
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.OpenEngine == nil {
		o.OpenEngine = render.Open
	}
	if o.Viewer == nil {
		o.Viewer = browser.OpenFile
	}
	o.validated = true
	return nil
}

func (o *Options) builder() *plot.Builder {
	return plot.NewBuilder(
		plot.WithRegistry(o.Registry),
		plot.WithReferenceTracking(o.TrackReferences),
		plot.WithMaxDepth(o.MaxDepth),
	)
}
