package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/matzehuels/relayout/pkg/geom"
)

// rewriteOpts holds the output flags shared by commands that rewrite a
// layout file.
type rewriteOpts struct {
	output  string // output file, "" or "-" for stdout
	format  string // output format, "" to infer
	inPlace bool   // overwrite the input file
}

func (o *rewriteOpts) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&o.format, "format", "f", "", "output format: toml, yaml, json (default: from file extension)")
	cmd.Flags().BoolVarP(&o.inPlace, "in-place", "i", false, "overwrite the input layout")
	cmd.MarkFlagsMutuallyExclusive("output", "in-place")
}

func (o rewriteOpts) target(input string) string {
	if o.inPlace {
		return input
	}
	return o.output
}

// moveCommand creates the move command.
func (c *CLI) moveCommand() *cobra.Command {
	var opts rewriteOpts

	cmd := &cobra.Command{
		Use:   "move [layout] [component] [x,y,width,height]",
		Short: "Move a component and rewrite its rectangle",
		Long: `Impose new bounds on a component, as dragging it in an editor would, and
write the layout back.

Edges that refer to other components keep their references and absorb the
move as an offset, so "sidebar.right + 16" may become "sidebar.right + 40".
Components that depend on the moved one follow it.`,
		Example: `  relayout move page.toml sidebar "0, 0, 300, 600" -i`,
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: componentArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := geom.ParseBounds(args[2])
			if err != nil {
				return err
			}
			return c.runMove(cmd.Context(), args[0], args[1], b, opts)
		},
	}

	opts.register(cmd)

	return cmd
}

func (c *CLI) runMove(ctx context.Context, input, name string, b geom.Bounds, opts rewriteOpts) error {
	logger := loggerFromContext(ctx)

	f, _, err := loadLayout(input)
	if err != nil {
		return err
	}
	l, err := c.buildLayout(f)
	if err != nil {
		return err
	}
	if err := l.Move(name, b); err != nil {
		return err
	}
	logger.Debug("moved", "component", name, "bounds", b.String(), "rect", l.Rectangle(l.Component(name)).String())

	target := opts.target(input)
	format, err := outputFormat(opts.format, target, input)
	if err != nil {
		return err
	}
	if err := writeLayout(l.File(), format, target); err != nil {
		return err
	}
	if target != "" && target != "-" {
		printSuccess("Moved %s to %s", name, b)
		printFile(target)
	}
	return nil
}

// renameCommand creates the rename command.
func (c *CLI) renameCommand() *cobra.Command {
	var opts rewriteOpts

	cmd := &cobra.Command{
		Use:   "rename [layout] [old] [new]",
		Short: "Rename a component and every reference to it",
		Long: `Rename a component and rewrite the rectangles that refer to it, both bare
references from its siblings and dotted references such as "old.right".`,
		Args:              cobra.ExactArgs(3),
		ValidArgsFunction: componentArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRename(cmd.Context(), args[0], args[1], args[2], opts)
		},
	}

	opts.register(cmd)

	return cmd
}

func (c *CLI) runRename(_ context.Context, input, oldName, newName string, opts rewriteOpts) error {
	f, _, err := loadLayout(input)
	if err != nil {
		return err
	}
	l, err := c.buildLayout(f)
	if err != nil {
		return err
	}
	if err := l.Rename(oldName, newName); err != nil {
		return err
	}

	target := opts.target(input)
	format, err := outputFormat(opts.format, target, input)
	if err != nil {
		return err
	}
	if err := writeLayout(l.File(), format, target); err != nil {
		return err
	}
	if target != "" && target != "-" {
		printSuccess("Renamed %s to %s", oldName, newName)
		printFile(target)
	}
	return nil
}
