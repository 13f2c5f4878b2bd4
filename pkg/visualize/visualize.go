// Package visualize runs the whole value-to-diagram pipeline: build the
// element tree, assign ids, write the DOT source and render it to a file.
//
// # Usage
//
//	res, err := visualize.Visualize(ctx, value, visualize.Options{
//	    Name:   "config",
//	    Format: "svg",
//	    View:   true,
//	})
//	if err != nil {
//	    return err
//	}
//	if res == nil {
//	    // no layout engine available; a warning was logged
//	}
//
// Files land in Options.Dir (".valgraphs" by default): the DOT source as
// "<name>.gv" and the artifact next to it as "<name>.gv.<format>".
package visualize

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/matzehuels/valplot/pkg/cache"
	"github.com/matzehuels/valplot/pkg/errors"
	"github.com/matzehuels/valplot/pkg/observability"
	"github.com/matzehuels/valplot/pkg/plot"
	"github.com/matzehuels/valplot/pkg/plot/dot"
	"github.com/matzehuels/valplot/pkg/render"
)

// Result describes the files written by [Visualize].
type Result struct {
	// SourcePath is the DOT source file.
	SourcePath string
	// ArtifactPath is the rendered file.
	ArtifactPath string
	// Format is the artifact format.
	Format string
	// DOT is the generated source.
	DOT []byte

	Stats Stats
	// CacheHit reports whether the artifact came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Elements   int
	Refs       int
	BuildTime  time.Duration
	RenderTime time.Duration
}

// Visualize draws value and writes the DOT source and the rendered artifact
// to opts.Dir.
//
// When no layout engine is available Visualize logs a warning, writes
// nothing and returns a nil Result with a nil error. Every other failure is
// returned.
func Visualize(ctx context.Context, value any, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	engine, err := opts.OpenEngine(ctx, opts.Engine)
	if err != nil {
		if errors.Is(err, errors.ErrCodeMissingDependency) {
			opts.Logger.Warn("no layout engine available, skipping diagram", "err", errors.UserMessage(err))
			return nil, nil
		}
		return nil, err
	}
	defer engine.Close()

	src, stats, err := Source(ctx, value, opts)
	if err != nil {
		return nil, err
	}
	opts.Logger.Info("built diagram", "elements", stats.Elements, "refs", stats.Refs, "duration", stats.BuildTime)

	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	sourcePath, err := sourcePath(opts.Dir, opts.Name)
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(sourcePath, src, 0o644); err != nil {
		return nil, fmt.Errorf("write source: %w", err)
	}

	start := time.Now()
	artifact, hit, err := Artifact(ctx, engine, src, opts.Format, opts.Cache)
	if err != nil {
		return nil, err
	}
	stats.RenderTime = time.Since(start)

	artifactPath := sourcePath + "." + opts.Format
	if err := os.WriteFile(artifactPath, artifact, 0o644); err != nil {
		return nil, fmt.Errorf("write artifact: %w", err)
	}
	opts.Logger.Info("rendered diagram", "path", artifactPath, "cached", hit, "duration", stats.RenderTime)

	if opts.View {
		if err := opts.Viewer(artifactPath); err != nil {
			opts.Logger.Warn("could not open viewer", "path", artifactPath, "err", err)
		}
	}

	return &Result{
		SourcePath:   sourcePath,
		ArtifactPath: artifactPath,
		Format:       opts.Format,
		DOT:          src,
		Stats:        stats,
		CacheHit:     hit,
	}, nil
}

// Source builds value into a diagram and returns its DOT source. It touches
// neither the filesystem nor a layout engine.
func Source(ctx context.Context, value any, opts Options) ([]byte, Stats, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, Stats{}, fmt.Errorf("invalid options: %w", err)
	}

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, opts.Name)
	start := time.Now()

	d, err := opts.builder().Build(value)
	if err == nil {
		err = plot.Assign(d)
	}
	var stats Stats
	if d != nil {
		d.Walk(func(plot.Element) { stats.Elements++ })
		stats.Refs = len(d.Refs)
	}
	stats.BuildTime = time.Since(start)
	hooks.OnBuildComplete(ctx, opts.Name, stats.Elements, stats.Refs, stats.BuildTime, err)
	if err != nil {
		return nil, stats, fmt.Errorf("build: %w", err)
	}

	name := opts.Name
	if name == "" {
		name = "G"
	}
	g, err := dot.Render(d, dot.Options{Name: name, RankDir: opts.RankDir})
	if err != nil {
		return nil, stats, fmt.Errorf("render DOT: %w", err)
	}
	return []byte(g.String()), stats, nil
}

// Artifact renders src with engine, consulting c first and storing the
// result after.
func Artifact(ctx context.Context, engine render.Engine, src []byte, format string, c cache.Cache) ([]byte, bool, error) {
	if c == nil {
		c = cache.NewNullCache()
	}
	key := cache.ArtifactKey(cache.Hash(src), engine.Name(), format)

	if data, ok, err := c.Get(ctx, key); err == nil && ok {
		observability.Cache().OnCacheHit(ctx, "artifact")
		return data, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "artifact")

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, engine.Name(), format)
	start := time.Now()

	var buf bytes.Buffer
	err := engine.Render(ctx, src, format, &buf)
	hooks.OnRenderComplete(ctx, engine.Name(), format, buf.Len(), time.Since(start), err)
	if err != nil {
		return nil, false, fmt.Errorf("render %s: %w", format, err)
	}

	if err := c.Set(ctx, key, buf.Bytes(), cache.ArtifactTTL); err == nil {
		observability.Cache().OnCacheSet(ctx, "artifact", buf.Len())
	}
	return buf.Bytes(), false, nil
}

// sourcePath returns the DOT file path: "<name>.gv", or "temp<N>.gv" where N
// is the number of entries already in dir.
func sourcePath(dir, name string) (string, error) {
	if name != "" {
		return filepath.Join(dir, name+".gv"), nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read output dir: %w", err)
	}
	return filepath.Join(dir, fmt.Sprintf("temp%d.gv", len(entries))), nil
}
