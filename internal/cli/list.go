package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/cli/browser"
	"github.com/spf13/cobra"

	"github.com/matzehuels/valplot/pkg/visualize"
)

// diagram is one generated .gv file and the artifacts rendered from it.
type diagram struct {
	Name      string
	Source    string
	Artifacts []string // full paths, sorted
	ModTime   time.Time
}

// formats returns the artifact extensions, e.g. "svg, png".
func (d diagram) formats() string {
	if len(d.Artifacts) == 0 {
		return "-"
	}
	exts := make([]string, len(d.Artifacts))
	for i, a := range d.Artifacts {
		exts[i] = strings.TrimPrefix(filepath.Ext(a), ".")
	}
	return strings.Join(exts, ", ")
}

// listDiagrams returns the diagrams in dir, most recent first.
func listDiagrams(dir string) ([]diagram, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	byName := map[string]*diagram{}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".gv") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".gv")
		byName[e.Name()] = &diagram{
			Name:    name,
			Source:  filepath.Join(dir, e.Name()),
			ModTime: info.ModTime(),
		}
	}
	for _, e := range entries {
		stem := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if d, ok := byName[stem]; ok && stem != e.Name() {
			d.Artifacts = append(d.Artifacts, filepath.Join(dir, e.Name()))
		}
	}

	out := make([]diagram, 0, len(byName))
	for _, d := range byName {
		sort.Strings(d.Artifacts)
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ModTime.Equal(out[j].ModTime) {
			return out[i].ModTime.After(out[j].ModTime)
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// listCommand creates the list command.
func (c *CLI) listCommand() *cobra.Command {
	var (
		dir         string
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List generated diagrams",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(c.configPath)
			if err != nil {
				return err
			}
			mergeString(cmd, "dir", &dir, cfg.Dir)
			if dir == "" {
				dir = visualize.DefaultDir
			}

			diagrams, err := listDiagrams(dir)
			if err != nil {
				return err
			}
			if len(diagrams) == 0 {
				printInfo("No diagrams in %s", dir)
				printNextStep("Create one", appName+" render <file>")
				return nil
			}
			if !interactive {
				fmt.Println(diagramTable(diagrams))
				return nil
			}
			return c.pickDiagram(diagrams)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "output directory (default "+visualize.DefaultDir+")")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "pick a diagram to open")

	return cmd
}

func diagramTable(diagrams []diagram) string {
	rows := make([][]string, len(diagrams))
	for i, d := range diagrams {
		rows[i] = []string{d.Name, d.formats(), formatRelativeTime(d.ModTime), d.Source}
	}
	headerStyle := lipgloss.NewStyle().Foreground(colorLabel).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorMuted)).
		Headers("Name", "Formats", "Updated", "Source").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorAccent)
			case col == 3:
				return lipgloss.NewStyle().Foreground(colorMuted)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}

func (c *CLI) pickDiagram(diagrams []diagram) error {
	final, err := tea.NewProgram(newDiagramListModel(diagrams)).Run()
	if err != nil {
		return err
	}
	m := final.(DiagramListModel)
	if m.Selected == nil {
		return nil
	}
	if len(m.Selected.Artifacts) == 0 {
		printWarning("%s has not been rendered", m.Selected.Name)
		printNextStep("Render it", appName+" render <file> --name "+m.Selected.Name)
		return nil
	}
	path := m.Selected.Artifacts[0]
	c.Logger.Debug("opening diagram", "path", path)
	if err := browser.OpenFile(path); err != nil {
		printWarning("Could not open %s: %v", path, err)
		return nil
	}
	printSuccess("Opened %s", path)
	return nil
}
