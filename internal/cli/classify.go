package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/relayout/pkg/layout"
)

// classifyCommand creates the classify command.
func (c *CLI) classifyCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "classify [layout]",
		Short: "Report which rectangle edges depend on other components",
		Long: `Classify every rectangle edge of a layout as static or dynamic.

A dynamic edge refers to the parent, a sibling, or any other component, and
moves when they do. A static edge only refers to constants and to the
rectangle's own edges. References are not resolved, so classify also works
on layouts that fail to resolve.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: layoutArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runClassify(cmd.Context(), args[0], asJSON)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

func (c *CLI) runClassify(_ context.Context, input string, asJSON bool) error {
	f, _, err := loadLayout(input)
	if err != nil {
		return err
	}
	classes, err := layout.Classify(f)
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(classes)
	}

	dynamic := 0
	for _, cl := range classes {
		if cl.Dynamic {
			dynamic++
		}
	}
	fmt.Fprintln(out, classificationTable(classes))
	printInfo("%d of %d components are dynamic", dynamic, len(classes))
	return nil
}

// classificationTable renders one row per component with a mark per
// dynamic edge.
func classificationTable(classes []layout.Classification) string {
	rows := make([][]string, len(classes))
	for i, cl := range classes {
		rows[i] = []string{cl.Name, edgeMark(cl.Left), edgeMark(cl.Top), edgeMark(cl.Right), edgeMark(cl.Bottom), cl.Rect}
	}

	return newTable(rows, func(row, col int) lipgloss.Style {
		switch col {
		case 0:
			if classes[row].Dynamic {
				return styleDynamic
			}
			return styleStatic
		case 1, 2, 3, 4:
			return lipgloss.NewStyle().Foreground(colorGreen).Align(lipgloss.Center)
		default:
			return styleRect
		}
	}, "Component", "Left", "Top", "Right", "Bottom", "Rectangle").String()
}
