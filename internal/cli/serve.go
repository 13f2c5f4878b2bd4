package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/valplot/pkg/render"
	"github.com/matzehuels/valplot/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		engine   string
		noCache  bool
		maxDepth int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve diagrams over HTTP",
		Long: `Serve a small HTTP API that renders posted data files.

  curl --data-binary @config.toml 'localhost:7878/render?input=toml&format=svg'
  curl --data-binary @value.json 'localhost:7878/dot'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			mergeString(cmd, "engine", &engine, cfg.Engine)
			mergeBool(cmd, "no-cache", &noCache, cfg.NoCache)
			mergeInt(cmd, "max-depth", &maxDepth, cfg.MaxDepth)

			artifacts, err := newCache(noCache)
			if err != nil {
				return err
			}
			defer artifacts.Close()

			srv, err := server.New(server.Options{
				Engine:   engine,
				MaxDepth: maxDepth,
				Logger:   c.Logger,
				Cache:    artifacts,
			})
			if err != nil {
				return err
			}
			defer srv.Close()

			printInfo("Listening on %s", StyleLink.Render("http://"+addr))
			if engine == "" {
				engine = render.EngineWASM
			}
			printKeyValue("engine", engine)
			printKeyValue("cache", cacheLabel(noCache))
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().StringVar(&engine, "engine", "", "layout engine: wasm (default), exec")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the artifact cache")
	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "maximum nesting depth (default 512)")

	return cmd
}

// cacheLabel describes where rendered artifacts are cached.
func cacheLabel(noCache bool) string {
	if noCache {
		return "off"
	}
	dir, err := cacheDir()
	if err != nil {
		return "off"
	}
	return dir
}
