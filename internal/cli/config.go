package cli

import (
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/matzehuels/valplot/pkg/errors"
)

// Config holds defaults read from valplot.toml. Command-line flags take
// precedence over every field.
//
//	dir = "docs/diagrams"
//	format = "png"
//	engine = "exec"
//	rankdir = "LR"
//	view = false
//	track_references = true
//	max_depth = 64
//	no_cache = false
type Config struct {
	Dir             string `toml:"dir"`
	Format          string `toml:"format"`
	Engine          string `toml:"engine"`
	RankDir         string `toml:"rankdir"`
	View            bool   `toml:"view"`
	TrackReferences bool   `toml:"track_references"`
	MaxDepth        int    `toml:"max_depth"`
	NoCache         bool   `toml:"no_cache"`
}

// loadConfig reads the config file at path. With an empty path it reads
// valplot.toml from the working directory if one exists.
func loadConfig(path string) (Config, error) {
	var cfg Config
	explicit := path != ""
	if !explicit {
		path = configFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		if os.IsNotExist(err) {
			return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %q not found", path)
		}
		return cfg, err
	}
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.New(errors.ErrCodeInvalidInput, "%s: unknown key %q", path, undecoded[0].String())
	}
	return cfg, nil
}

// mergeString sets *dst from the config unless the flag was given.
func mergeString(cmd *cobra.Command, flag string, dst *string, v string) {
	if v != "" && !cmd.Flags().Changed(flag) {
		*dst = v
	}
}

// mergeBool sets *dst from the config unless the flag was given.
func mergeBool(cmd *cobra.Command, flag string, dst *bool, v bool) {
	if v && !cmd.Flags().Changed(flag) {
		*dst = v
	}
}

// mergeInt sets *dst from the config unless the flag was given.
func mergeInt(cmd *cobra.Command, flag string, dst *int, v int) {
	if v != 0 && !cmd.Flags().Changed(flag) {
		*dst = v
	}
}
