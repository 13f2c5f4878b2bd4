package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/valplot/pkg/render"
	"github.com/matzehuels/valplot/pkg/source"
	"github.com/matzehuels/valplot/pkg/visualize"
)

// drawOpts holds the flags shared by commands that draw a value.
type drawOpts struct {
	name     string // diagram file stem, empty picks temp<N>
	format   string // artifact format
	dir      string // output directory
	engine   string // layout engine: wasm or exec
	rankdir  string // Graphviz rank direction
	view     bool   // open the artifact when done
	refs     bool   // draw shared pointers once
	noCache  bool   // bypass the artifact cache
	maxDepth int    // nesting limit, 0 for the default
}

// register adds the drawing flags to cmd. Output-only flags are skipped
// for commands that never render.
func (o *drawOpts) register(cmd *cobra.Command, output bool) {
	cmd.Flags().StringVarP(&o.name, "name", "n", "", "diagram name (default temp<N>)")
	cmd.Flags().StringVar(&o.rankdir, "rankdir", "", "rank direction: TB (default), LR, BT, RL")
	cmd.Flags().BoolVar(&o.refs, "refs", false, "draw values reachable through several pointers once")
	cmd.Flags().IntVar(&o.maxDepth, "max-depth", 0, "maximum nesting depth (default 512)")
	if !output {
		return
	}
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "output format: "+strings.Join(render.Formats, ", ")+" (default svg)")
	cmd.Flags().StringVar(&o.dir, "dir", "", "output directory (default "+visualize.DefaultDir+")")
	cmd.Flags().StringVar(&o.engine, "engine", "", "layout engine: "+strings.Join(render.Engines, ", ")+" (default wasm)")
	cmd.Flags().BoolVar(&o.view, "view", false, "open the rendered diagram")
	cmd.Flags().BoolVar(&o.noCache, "no-cache", false, "disable the artifact cache")
}

// applyConfig fills flags the user did not set from the config file.
func (c *CLI) applyConfig(cmd *cobra.Command, o *drawOpts) error {
	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	mergeString(cmd, "rankdir", &o.rankdir, cfg.RankDir)
	mergeBool(cmd, "refs", &o.refs, cfg.TrackReferences)
	mergeInt(cmd, "max-depth", &o.maxDepth, cfg.MaxDepth)
	if cmd.Flags().Lookup("format") != nil {
		mergeString(cmd, "format", &o.format, cfg.Format)
		mergeString(cmd, "dir", &o.dir, cfg.Dir)
		mergeString(cmd, "engine", &o.engine, cfg.Engine)
		mergeBool(cmd, "view", &o.view, cfg.View)
		mergeBool(cmd, "no-cache", &o.noCache, cfg.NoCache)
	}
	return nil
}

func (o drawOpts) visualizeOptions() visualize.Options {
	return visualize.Options{
		Name:            o.name,
		Format:          o.format,
		View:            o.view,
		Dir:             o.dir,
		Engine:          o.engine,
		RankDir:         o.rankdir,
		TrackReferences: o.refs,
		MaxDepth:        o.maxDepth,
	}
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts drawOpts

	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a data file as a diagram",
		Long: `Render a JSON, TOML, CUE or Starlark file as a diagram.

The DOT source is written to <dir>/<name>.gv and the rendered diagram next
to it as <name>.gv.<format>.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.applyConfig(cmd, &opts); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}
	opts.register(cmd, true)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, path string, opts drawOpts) error {
	prog := newProgress(c.Logger)
	value, err := source.Load(ctx, path)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Loaded %s", path))

	artifacts, err := newCache(opts.noCache)
	if err != nil {
		return fmt.Errorf("open cache: %w", err)
	}
	defer artifacts.Close()

	vopts := opts.visualizeOptions()
	vopts.Logger = c.Logger
	vopts.Cache = artifacts

	spinner := newSpinnerWithContext(ctx, "Rendering diagram...")
	spinner.Start()
	res, err := visualize.Visualize(ctx, value, vopts)
	spinner.Stop()
	if err != nil {
		return err
	}
	if res == nil {
		printWarning("Graphviz is not available, nothing was written")
		printDetail("%s", engineHint(opts.engine))
		return nil
	}

	printSuccess("Rendered %s", StyleHighlight.Render(path))
	printStats(res.Stats.Elements, res.Stats.Refs, res.CacheHit)
	printFile(res.SourcePath)
	printFile(res.ArtifactPath)
	return nil
}

// engineHint suggests the engine to try after engine failed to open.
func engineHint(engine string) string {
	if engine == render.EngineExec {
		return "Install Graphviz (dot) or use --engine " + render.EngineWASM
	}
	return "Install Graphviz (dot) and use --engine " + render.EngineExec
}
