package clip

import (
	"errors"
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"go-pianoroll/geometry"
)

var (
	// ErrStaleRef is returned for a note reference the source no longer holds.
	ErrStaleRef = errors.New("stale note reference")
	// ErrClosed is returned once the clip behind a source is gone.
	ErrClosed = errors.New("clip closed")
)

// Ref identifies a note inside a Source. Refs are never reused.
type Ref uint64

// Event is one note as stored by the host
type Event struct {
	Ref      Ref `json:"-"`
	Pitch    int `json:"pitch"`
	Velocity int `json:"velocity"`
	Start    int `json:"start"`  // ticks
	Length   int `json:"length"` // ticks
}

// End is the tick just past the note.
func (e Event) End() int { return e.Start + e.Length }

// Source is the host-owned note storage of the clip under edit.
//
// Generation changes whenever previously returned refs may have been
// invalidated by anything other than the mutators below (clip switch,
// undo, external reload). Mutators do not change it.
type Source interface {
	Generation() uint64
	Notes() ([]Event, error)
	TimeSignature() geometry.TimeSignature

	SetPitch(ref Ref, pitch int) error
	SetVelocity(ref Ref, velocity int) error
	SetStartAndLength(ref Ref, start, length int) error
	AddNote(pitch, start, length, velocity int) (Ref, error)
	RemoveNote(ref Ref) error
}

func staleRef(ref Ref) error {
	return fault.Wrap(ErrStaleRef,
		ftag.With(ftag.NotFound),
		fmsg.With(fmt.Sprintf("note ref %d", ref)))
}

func closed(op string) error {
	return fault.Wrap(ErrClosed,
		ftag.With(ftag.Internal),
		fmsg.WithDesc(op, "The clip is no longer available"))
}
