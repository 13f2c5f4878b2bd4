package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/valplot/pkg/errors"
)

func newTestCLI() *CLI {
	return New(io.Discard, log.InfoLevel)
}

func TestRootCommandSubcommands(t *testing.T) {
	root := newTestCLI().RootCommand()
	want := []string{"cache", "completion", "dot", "list", "render", "serve"}
	var got []string
	for _, c := range root.Commands() {
		got = append(got, c.Name())
	}
	for _, name := range want {
		found := false
		for _, g := range got {
			if g == name {
				found = true
			}
		}
		if !found {
			t.Errorf("root command missing %q (have %v)", name, got)
		}
	}
}

func TestDotCommand(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "v.json")
	if err := os.WriteFile(input, []byte(`{"a": [1, 2]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	root := newTestCLI().RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"dot", input, "--name", "demo", "--rankdir", "LR", "--config", writeConfig(t, "")})
	if err := root.Execute(); err != nil {
		t.Fatalf("dot command error: %v", err)
	}
	for _, want := range []string{`digraph "demo" {`, `rankdir="LR";`} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %s:\n%s", want, out.String())
		}
	}
}

func TestDotCommandUnknownInput(t *testing.T) {
	root := newTestCLI().RootCommand()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"dot", filepath.Join(t.TempDir(), "v.yaml"), "--config", writeConfig(t, "")})
	if err := root.Execute(); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("dot command error = %v, want invalid format", err)
	}
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), configFile)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
dir = "out"
format = "png"
engine = "exec"
rankdir = "LR"
view = true
track_references = true
max_depth = 32
`)
	cfg, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	want := Config{Dir: "out", Format: "png", Engine: "exec", RankDir: "LR", View: true, TrackReferences: true, MaxDepth: 32}
	if cfg != want {
		t.Errorf("loadConfig() = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing explicit config error = %v, want file not found", err)
	}
	if _, err := loadConfig(writeConfig(t, `colour = "red"`)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown key error = %v, want invalid input", err)
	}
	if _, err := loadConfig(writeConfig(t, `dir = `)); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("syntax error = %v, want invalid input", err)
	}
}

func TestLoadConfigImplicitMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := loadConfig("")
	if err != nil {
		t.Fatalf("loadConfig(\"\") error: %v", err)
	}
	if cfg != (Config{}) {
		t.Errorf("loadConfig(\"\") = %+v, want zero config", cfg)
	}
}

func TestApplyConfigFlagsWin(t *testing.T) {
	c := newTestCLI()
	c.configPath = writeConfig(t, "format = \"png\"\ndir = \"cfgdir\"\nrankdir = \"BT\"\n")

	var opts drawOpts
	cmd := &cobra.Command{Use: "render"}
	opts.register(cmd, true)
	if err := cmd.Flags().Parse([]string{"--format", "pdf"}); err != nil {
		t.Fatal(err)
	}
	if err := c.applyConfig(cmd, &opts); err != nil {
		t.Fatal(err)
	}

	if opts.format != "pdf" {
		t.Errorf("format = %q, want flag value pdf", opts.format)
	}
	if opts.dir != "cfgdir" || opts.rankdir != "BT" {
		t.Errorf("dir, rankdir = %q, %q, want config values", opts.dir, opts.rankdir)
	}
}

func TestApplyConfigSkipsOutputFlags(t *testing.T) {
	c := newTestCLI()
	c.configPath = writeConfig(t, "format = \"png\"\nmax_depth = 8\n")

	var opts drawOpts
	cmd := &cobra.Command{Use: "dot"}
	opts.register(cmd, false)
	if err := c.applyConfig(cmd, &opts); err != nil {
		t.Fatal(err)
	}
	if opts.format != "" || opts.maxDepth != 8 {
		t.Errorf("format, maxDepth = %q, %d, want \"\", 8", opts.format, opts.maxDepth)
	}
}

func TestListDiagrams(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.gv", "a.gv.svg", "a.gv.png", "temp1.gv", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	old := time.Now().Add(-time.Hour)
	if err := os.Chtimes(filepath.Join(dir, "temp1.gv"), old, old); err != nil {
		t.Fatal(err)
	}

	got, err := listDiagrams(dir)
	if err != nil {
		t.Fatalf("listDiagrams() error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("listDiagrams() = %d diagrams, want 2", len(got))
	}
	if got[0].Name != "a" || got[0].formats() != "png, svg" {
		t.Errorf("first = %s (%s), want a (png, svg)", got[0].Name, got[0].formats())
	}
	if got[1].Name != "temp1" || len(got[1].Artifacts) != 0 {
		t.Errorf("second = %s %v, want temp1 without artifacts", got[1].Name, got[1].Artifacts)
	}

	missing, err := listDiagrams(filepath.Join(dir, "nope"))
	if err != nil || missing != nil {
		t.Errorf("listDiagrams(missing) = %v, %v, want nil, nil", missing, err)
	}
}

func TestFormatRelativeTime(t *testing.T) {
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{10 * time.Second, "just now"},
		{5 * time.Minute, "5m ago"},
		{3 * time.Hour, "3h ago"},
		{49 * time.Hour, "2d ago"},
	}
	for _, tt := range tests {
		if got := formatRelativeTime(time.Now().Add(-tt.ago)); got != tt.want {
			t.Errorf("formatRelativeTime(-%s) = %q, want %q", tt.ago, got, tt.want)
		}
	}
}

func TestEngineHint(t *testing.T) {
	tests := []struct {
		engine string
		want   string
	}{
		{"", "--engine exec"},
		{"wasm", "--engine exec"},
		{"exec", "--engine wasm"},
	}
	for _, tt := range tests {
		if got := engineHint(tt.engine); !strings.HasSuffix(got, tt.want) {
			t.Errorf("engineHint(%q) = %q, want suffix %q", tt.engine, got, tt.want)
		}
	}
}

func TestPrintError(t *testing.T) {
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	stderr := os.Stderr
	os.Stderr = w
	t.Cleanup(func() { os.Stderr = stderr })

	PrintError(errors.New(errors.ErrCodeInvalidInput, "bad value"))
	w.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), "INVALID_INPUT: bad value") {
		t.Errorf("PrintError() wrote %q, want the error text", out)
	}
}
