package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"
)

// MIDI message types
const (
	NoteOn  uint8 = 0x90
	NoteOff uint8 = 0x80
	CC      uint8 = 0xB0
)

// Event is an audition event produced by the editor
type Event struct {
	Type     uint8 // NoteOn, NoteOff, CC
	Channel  uint8 // 0-15
	Note     uint8
	Velocity uint8
}

func (e Event) String() string {
	switch e.Type {
	case NoteOn:
		return fmt.Sprintf("on  ch%d %3d vel %3d", e.Channel+1, e.Note, e.Velocity)
	case NoteOff:
		return fmt.Sprintf("off ch%d %3d", e.Channel+1, e.Note)
	case CC:
		return fmt.Sprintf("cc  ch%d %3d = %3d", e.Channel+1, e.Note, e.Velocity)
	}
	return fmt.Sprintf("unknown 0x%02x", e.Type)
}

// Message converts the event to a wire message. Unknown types give nil.
func (e Event) Message() gomidi.Message {
	ch := e.Channel & 0x0F
	switch e.Type {
	case NoteOn:
		return gomidi.NoteOn(ch, e.Note&0x7F, e.Velocity&0x7F)
	case NoteOff:
		return gomidi.NoteOff(ch, e.Note&0x7F)
	case CC:
		return gomidi.ControlChange(ch, e.Note&0x7F, e.Velocity&0x7F)
	}
	return nil
}

// Sink receives audition events. Implementations must not block.
type Sink interface {
	Send(e Event) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(e Event) error

func (f SinkFunc) Send(e Event) error { return f(e) }

// Discard drops every event
var Discard Sink = SinkFunc(func(Event) error { return nil })
