package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/charmbracelet/lipgloss"

	"go-pianoroll/pianoroll"
	"go-pianoroll/widgets"
)

type cell struct {
	r  rune
	fg lipgloss.Color
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Note()).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(m.Theme.Muted())

	var out strings.Builder
	out.WriteString(headerStyle.Render(m.header()))
	out.WriteString("\n")

	rows := m.gridRows()
	if m.Grid.Disabled() {
		warn := lipgloss.NewStyle().Foreground(m.Theme.Warning())
		out.WriteString(warn.Render("  no clip"))
		out.WriteString(strings.Repeat("\n", rows))
	} else {
		pal := m.Theme.Palette
		hot := -1
		if sel := m.Grid.SelectedNotes(); len(sel) == 1 {
			hot = sel[0].Note.Pitch()
		}
		keyboard := widgets.RenderKeyboard(m.top, rows, hot,
			pal.Lookup(0.4), pal.Lookup(0.2), pal.Lookup(0.8))
		out.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, keyboard, " ", m.renderGrid(rows, m.gridCols())))
		out.WriteString("\n")
	}

	out.WriteString(m.statusLine())
	out.WriteString("\n")
	out.WriteString(dimStyle.Render(m.help.View(m.keys)))
	if m.help.ShowAll {
		out.WriteString("\n")
		out.WriteString(dimStyle.Render(widgets.RenderKeyHelp(MouseHelp)))
	}
	return out.String()
}

func (m Model) header() string {
	name := "untitled"
	geom := m.Grid.Geometry()
	if m.Clip != nil {
		name = m.Clip.Name()
	}
	sig := ""
	if src := m.Grid.Source(); src != nil {
		t := src.TimeSignature()
		sig = fmt.Sprintf("%d/%d", t.BeatsPerBar, t.BeatUnit)
	}
	mark := ""
	if m.dirty {
		mark = "*"
	}
	return fmt.Sprintf("go-pianoroll  %s%s  %s  grid:%s  %.0fpx/bar  notes:%d  sel:%d  %s",
		name, mark, sig, m.Grid.Quantization(), geom.PixelsPerBar,
		m.Grid.Len(), len(m.Grid.SelectedNotes()), m.Grid.State())
}

func (m Model) statusLine() string {
	if m.err != nil {
		style := lipgloss.NewStyle().Foreground(m.Theme.Warning())
		msg := fmsg.GetIssue(m.err)
		if msg == "" {
			chain := fault.Flatten(m.err)
			msg = chain[0].Message
		}
		return style.Render("ERROR: " + msg)
	}
	return lipgloss.NewStyle().Foreground(m.Theme.FG()).Render(m.status)
}

// renderGrid paints notes into a rows x cols cell buffer and renders it
// in runs of equal color.
func (m Model) renderGrid(rows, cols int) string {
	g := m.Grid.Geometry()
	cw := m.cellWidth
	bg := m.Theme.Muted()

	buf := make([][]cell, rows)
	for r := range buf {
		buf[r] = make([]cell, cols)
		for c := range buf[r] {
			x0 := float64(m.left+c) * cw
			ch := m.Theme.Symbols.Background
			if math.Ceil(x0/g.PixelsPerBar)*g.PixelsPerBar < x0+cw {
				ch = m.Theme.Symbols.BarLine
			}
			buf[r][c] = cell{r: ch, fg: bg}
		}
	}

	if band, ok := m.Grid.Band(); ok {
		for r := 0; r < rows; r++ {
			y := g.PitchToY(m.top-r) + g.RowHeight/2
			for c := 0; c < cols; c++ {
				x := (float64(m.left+c) + 0.5) * cw
				if x >= band.X && x <= band.Right() && y >= band.Y && y <= band.Bottom() {
					buf[r][c] = cell{r: m.Theme.Symbols.Band, fg: m.Theme.Band()}
				}
			}
		}
	}

	for _, h := range m.Grid.Handles() {
		r := m.top - g.RowAt(h.Rect.Y)
		if r < 0 || r >= rows {
			continue
		}
		c0 := int(math.Floor(h.Rect.X/cw)) - m.left
		c1 := int(math.Ceil(h.Rect.Right()/cw)) - 1 - m.left
		if c1 < c0 {
			c1 = c0
		}
		fg := m.noteColor(h)
		for c := c0; c <= c1; c++ {
			if c < 0 || c >= cols {
				continue
			}
			ch := m.Theme.Symbols.Note
			if c == c1 && c1 > c0 {
				ch = m.Theme.Symbols.NoteEdge
			}
			buf[r][c] = cell{r: ch, fg: fg}
		}
	}

	lines := make([]string, rows)
	for r := range buf {
		lines[r] = renderRuns(buf[r])
	}
	return strings.Join(lines, "\n")
}

func (m Model) noteColor(h pianoroll.Handle) lipgloss.Color {
	switch {
	case h.Moving:
		return m.Theme.Moving()
	case h.Note.IsSelected():
		return m.Theme.Selected()
	default:
		return m.Theme.Velocity(h.Note.Velocity())
	}
}

func renderRuns(row []cell) string {
	var out strings.Builder
	start := 0
	for i := 1; i <= len(row); i++ {
		if i < len(row) && row[i].fg == row[start].fg {
			continue
		}
		var run strings.Builder
		for _, c := range row[start:i] {
			run.WriteRune(c.r)
		}
		out.WriteString(lipgloss.NewStyle().Foreground(row[start].fg).Render(run.String()))
		start = i
	}
	return out.String()
}
