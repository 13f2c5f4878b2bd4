package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/valplot/pkg/source"
	"github.com/matzehuels/valplot/pkg/visualize"
)

// dotCommand creates the dot command, which prints DOT source without
// running a layout engine.
func (c *CLI) dotCommand() *cobra.Command {
	var (
		opts   drawOpts
		output string
	)

	cmd := &cobra.Command{
		Use:   "dot <file>",
		Short: "Print the DOT source of a data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.applyConfig(cmd, &opts); err != nil {
				return err
			}
			value, err := source.Load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			vopts := opts.visualizeOptions()
			vopts.Logger = c.Logger
			src, _, err := visualize.Source(cmd.Context(), value, vopts)
			if err != nil {
				return err
			}
			if output == "" {
				_, err = cmd.OutOrStdout().Write(src)
				return err
			}
			if err := os.WriteFile(output, src, 0o644); err != nil {
				return err
			}
			printFile(output)
			return nil
		},
	}
	opts.register(cmd, false)
	cmd.Flags().StringVarP(&output, "output", "o", "", "write to file instead of stdout")

	return cmd
}
