package pianoroll

import (
	"fmt"

	"go-pianoroll/note"
)

// State is the gesture state of the grid
type State int

const (
	Idle State = iota
	SingleDrag
	MultiDrag
	ResizeDrag
	VelocityDrag
	RubberBandSelect
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case SingleDrag:
		return "single-drag"
	case MultiDrag:
		return "multi-drag"
	case ResizeDrag:
		return "resize"
	case VelocityDrag:
		return "velocity"
	case RubberBandSelect:
		return "rubber-band"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Kind discriminates committed edits
type Kind int

const (
	Select Kind = iota
	Move
	Resize
	VelocityChange
	Create
	Delete
	Quantize
)

func (k Kind) String() string {
	switch k {
	case Select:
		return "select"
	case Move:
		return "move"
	case Resize:
		return "resize"
	case VelocityChange:
		return "velocity"
	case Create:
		return "create"
	case Delete:
		return "delete"
	case Quantize:
		return "quantize"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Event is delivered once per committed change. Notes lists the
// affected notes; for Select it is the new selection.
type Event struct {
	Kind  Kind
	Notes []note.ID
}

func (e Event) String() string {
	return fmt.Sprintf("%s %v", e.Kind, e.Notes)
}

// Modifiers held during a pointer press
type Modifiers uint8

const (
	// ModAdd extends the selection instead of replacing it
	ModAdd Modifiers = 1 << iota
	// ModVelocity turns a note-body drag into a velocity edit
	ModVelocity
)

func (m Modifiers) Has(f Modifiers) bool { return m&f != 0 }

// Point is a position in grid pixels
type Point struct {
	X, Y float64
}
