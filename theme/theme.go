package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	// Key help widget
	Solid rune // ■ bound key
	Empty rune // □ unbound

	// Grid cells
	Background rune // · empty cell
	BarLine    rune // │ first cell of a bar
	Note       rune // █ note body
	NoteEdge   rune // ▌ last cell of a note, the resize handle
	Band       rune // ░ rubber band outside any note
}

func New(palette *Palette) *Theme {
	if palette == nil || len(palette.Colors) == 0 {
		palette = DefaultPalette()
	}
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			Solid: '■',
			Empty: '□',

			Background: '·',
			BarLine:    '│',
			Note:       '█',
			NoteEdge:   '▌',
			Band:       '░',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG       = 0.0 // grid background
	RoleSurface  = 0.1 // black-key rows
	RoleMuted    = 0.2 // bar lines, status text
	RoleFG       = 0.4 // readable text
	RoleNote     = 0.5 // unselected note
	RoleBand     = 0.6 // rubber band
	RoleSelected = 0.8 // selected note
	RoleMoving   = 0.9 // note under a gesture
	RoleWarning  = 1.0 // errors, detached grid
)

// Style helpers

func (t *Theme) BG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBG))
}

func (t *Theme) Surface() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSurface))
}

func (t *Theme) FG() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleFG))
}

func (t *Theme) Muted() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMuted))
}

func (t *Theme) Note() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleNote))
}

func (t *Theme) Selected() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleSelected))
}

func (t *Theme) Moving() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleMoving))
}

func (t *Theme) Band() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleBand))
}

func (t *Theme) Warning() lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(RoleWarning))
}

// Velocity shades a note body by velocity, quiet notes darker. The range
// stays between the surface and note roles so notes never vanish into
// the background.
func (t *Theme) Velocity(v int) lipgloss.Color {
	norm := RoleSurface + (RoleNote-RoleSurface)*float64(v)/127
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.Palette.Lookup(norm))
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
