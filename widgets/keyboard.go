package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// KeyboardWidth is the width of the pitch gutter in columns
const KeyboardWidth = 5

var pitchNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// PitchName returns the scientific name of a MIDI pitch, middle C (60) is C4.
func PitchName(pitch int) string {
	if pitch < 0 {
		return "?"
	}
	return fmt.Sprintf("%s%d", pitchNames[pitch%12], pitch/12-1)
}

// IsBlackKey reports whether pitch is a sharp.
func IsBlackKey(pitch int) bool {
	switch pitch % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

// RenderKeyboard renders the pitch gutter for rows top..top-rows+1, one
// line per pitch, highest first. C rows are labelled and the pitch in
// hot (if any) is highlighted.
func RenderKeyboard(top, rows, hot int, white, black, accent [3]uint8) string {
	lines := make([]string, 0, rows)
	for i := 0; i < rows; i++ {
		p := top - i
		if p < 0 {
			lines = append(lines, strings.Repeat(" ", KeyboardWidth))
			continue
		}
		label := ""
		if p%12 == 0 || p == hot {
			label = PitchName(p)
		}
		style := lipgloss.NewStyle().Width(KeyboardWidth).Foreground(lipgloss.Color(rgbToHex(white)))
		if IsBlackKey(p) {
			style = style.Foreground(lipgloss.Color(rgbToHex(black)))
		}
		if p == hot {
			style = style.Foreground(lipgloss.Color(rgbToHex(accent))).Bold(true)
		}
		if label == "" {
			label = "─"
			if IsBlackKey(p) {
				label = "━"
			}
		}
		lines = append(lines, style.Render(label))
	}
	return strings.Join(lines, "\n")
}

// RenderSwatch renders a single colored square
func RenderSwatch(color [3]uint8) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render("■")
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color [3]uint8, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderSwatch(color), name, desc)
}

// RenderKeyHelp formats key bindings in a friendly way
func RenderKeyHelp(sections []KeySection) string {
	var lines []string
	for _, sec := range sections {
		if sec.Title != "" {
			lines = append(lines, sec.Title)
		}
		for _, k := range sec.Keys {
			lines = append(lines, fmt.Sprintf("  %-12s %s", k.Key, k.Desc))
		}
	}
	return strings.Join(lines, "\n")
}

// KeySection groups related key bindings
type KeySection struct {
	Title string
	Keys  []KeyBinding
}

// KeyBinding is a single key and its description
type KeyBinding struct {
	Key  string
	Desc string
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
