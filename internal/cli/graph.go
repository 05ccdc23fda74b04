package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/monist/pkg/errors"
	"github.com/matzehuels/monist/pkg/render"
)

// graphCommand creates the graph command drawing the local dependencies.
func (c *CLI) graphCommand() *cobra.Command {
	var (
		format   string
		output   string
		detailed bool
	)

	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Draw the local dependency graph",
		Long: `Draw the local dependency graph of the monorepo.

Every member is a box and every local dependency an arrow. Members of the
same batch are drawn on the same row, the first batch at the bottom.

DOT source is written to standard output unless -o is given. SVG and PNG
are rendered in-process and need no Graphviz installation.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			if f == render.FormatPNG && output == "" {
				return errors.New(errors.ErrCodeInvalidInput, "png output needs a file, use -o")
			}

			repo, err := c.loadRepo()
			if err != nil {
				return err
			}
			plan, err := repo.Plan()
			if err != nil {
				return err
			}

			data, err := render.Render(cmd.Context(), render.ToDOT(plan, render.Options{Detailed: detailed}), f)
			if err != nil {
				return err
			}

			if output == "" {
				_, err = c.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return errors.Wrap(errors.ErrCodeInternal, err, "cannot write %s", output)
			}
			printSuccess(c.Stdout, "Wrote %s graph", f)
			printFile(c.Stdout, output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", string(render.FormatDOT), "output format: dot, svg or png")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: standard output)")
	cmd.Flags().BoolVar(&detailed, "detailed", false, "add versions and directories to the labels")

	return cmd
}
