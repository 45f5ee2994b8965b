package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/relayout/pkg/errors"
	"github.com/matzehuels/relayout/pkg/layout"
	"github.com/matzehuels/relayout/pkg/layoutfile"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// editCommand creates the edit command for the interactive editor.
func (c *CLI) editCommand() *cobra.Command {
	var step int

	cmd := &cobra.Command{
		Use:   "edit [layout]",
		Short: "Nudge components interactively",
		Long: `Open a layout in an interactive terminal editor.

  ↑/↓       select a component
  h/j/k/l   move the selection left/down/up/right
  H/J/K/L   shrink/grow width and height
  +/-       change the step size
  w         write the layout back
  q         quit

Every nudge is an external move: rectangles keep their references, and
dependent components follow.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: layoutArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, _, err := loadLayout(args[0])
			if err != nil {
				return err
			}
			l, err := c.buildLayout(f)
			if err != nil {
				return err
			}
			if len(l.Components()) == 0 {
				printInfo("Layout has no components")
				return nil
			}

			m := NewEditorModel(l, args[0], step)
			final, err := tea.NewProgram(m, tea.WithContext(cmd.Context())).Run()
			if err != nil {
				return err
			}
			if em, ok := final.(EditorModel); ok && em.Dirty {
				printWarning("Quit with unsaved changes")
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&step, "step", 1, "initial nudge size in pixels")

	return cmd
}

// =============================================================================
// EditorModel - Interactive layout editor
// =============================================================================

// EditorModel is the bubbletea model for the layout editor.
type EditorModel struct {
	Layout *layout.Layout
	Path   string
	Cursor int
	Step   int
	Dirty  bool
	Status string
	Err    error
}

// NewEditorModel creates an editor over l that saves to path.
func NewEditorModel(l *layout.Layout, path string, step int) EditorModel {
	if step < 1 {
		step = 1
	}
	return EditorModel{Layout: l, Path: path, Step: step}
}

func (m EditorModel) Init() tea.Cmd {
	return nil
}

func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	components := m.Layout.Components()

	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down":
		if m.Cursor < len(components)-1 {
			m.Cursor++
		}
	case "+", "=":
		m.Step *= 2
	case "-":
		if m.Step > 1 {
			m.Step /= 2
		}
	case "h":
		m = m.nudge(-m.Step, 0, 0, 0)
	case "l":
		m = m.nudge(m.Step, 0, 0, 0)
	case "k":
		m = m.nudge(0, -m.Step, 0, 0)
	case "j":
		m = m.nudge(0, m.Step, 0, 0)
	case "H":
		m = m.nudge(0, 0, -m.Step, 0)
	case "L":
		m = m.nudge(0, 0, m.Step, 0)
	case "K":
		m = m.nudge(0, 0, 0, -m.Step)
	case "J":
		m = m.nudge(0, 0, 0, m.Step)
	case "w":
		m = m.save()
	}
	return m, nil
}

// nudge moves and resizes the selected component as an external move.
func (m EditorModel) nudge(dx, dy, dw, dh int) EditorModel {
	c := m.Layout.Components()[m.Cursor]
	b := c.Bounds().Translate(dx, dy)
	b.Width = max(0, b.Width+dw)
	b.Height = max(0, b.Height+dh)

	m.Err = m.Layout.Move(c.Name(), b)
	if m.Err != nil {
		m.Status = ""
		return m
	}
	m.Dirty = true
	m.Status = fmt.Sprintf("%s → %s", c.Name(), c.Bounds())
	return m
}

func (m EditorModel) save() EditorModel {
	m.Err = layoutfile.Save(m.Path, m.Layout.File())
	if m.Err != nil {
		m.Status = ""
		return m
	}
	m.Dirty = false
	m.Status = "wrote " + m.Path
	return m
}

func (m EditorModel) View() string {
	var b strings.Builder

	title := "Edit " + m.Path
	if m.Dirty {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("↑/↓ select  hjkl move  HJKL resize  +/- step (%d)  w write  q quit", m.Step)))
	b.WriteString("\n\n")

	components := m.Layout.Components()
	rows := make([][]string, len(components))
	for i, c := range components {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		rows[i] = []string{cursor, c.Path(), c.Bounds().String(), m.Layout.Rectangle(c).String()}
	}

	t := newTable(rows, func(row, col int) lipgloss.Style {
		switch {
		case row == m.Cursor:
			return listSelectedStyle
		case col == 3:
			return listDimStyle
		default:
			return lipgloss.NewStyle().Foreground(colorWhite)
		}
	}, "", "Component", "Bounds", "Rectangle")

	b.WriteString(t.Render())
	b.WriteString("\n")

	switch {
	case m.Err != nil:
		b.WriteString(styleIconError.Render(iconError) + " " + errors.UserMessage(m.Err))
	case m.Status != "":
		b.WriteString(styleIconSuccess.Render(iconSuccess) + " " + m.Status)
	}
	b.WriteString("\n")

	return b.String()
}
