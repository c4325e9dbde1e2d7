package clip

import (
	"sort"
	"sync"

	"go-pianoroll/debug"
	"go-pianoroll/geometry"
	"go-pianoroll/note"
)

// Clip is an in-memory Source. It is safe for concurrent use because the
// file watcher reloads it from its own goroutine.
type Clip struct {
	mu      sync.Mutex
	name    string
	ts      geometry.TimeSignature
	notes   []Event
	gen     uint64
	nextRef Ref
	closed  bool
}

// New creates an empty clip
func New(name string, ts geometry.TimeSignature) *Clip {
	if ts.BeatsPerBar <= 0 || ts.BeatUnit <= 0 {
		ts = geometry.CommonTime
	}
	return &Clip{
		name:    name,
		ts:      ts,
		gen:     1,
		nextRef: 1,
	}
}

func (c *Clip) Name() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

func (c *Clip) Generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *Clip) TimeSignature() geometry.TimeSignature {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ts
}

// Notes returns a copy of the notes ordered by start, then pitch.
func (c *Clip) Notes() ([]Event, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, closed("read notes")
	}
	out := make([]Event, len(c.notes))
	copy(out, c.notes)
	sortEvents(out)
	return out, nil
}

func (c *Clip) SetPitch(ref Ref, pitch int) error {
	return c.update(ref, "set pitch", func(e *Event) {
		e.Pitch = note.ClampPitch(pitch)
	})
}

func (c *Clip) SetVelocity(ref Ref, velocity int) error {
	return c.update(ref, "set velocity", func(e *Event) {
		e.Velocity = note.ClampVelocity(velocity)
	})
}

func (c *Clip) SetStartAndLength(ref Ref, start, length int) error {
	return c.update(ref, "set start and length", func(e *Event) {
		e.Start, e.Length = note.ClampTime(start, length)
	})
}

func (c *Clip) AddNote(pitch, start, length, velocity int) (Ref, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, closed("add note")
	}
	ref := c.nextRef
	c.nextRef++
	e := Event{Ref: ref, Pitch: note.ClampPitch(pitch), Velocity: note.ClampVelocity(velocity)}
	e.Start, e.Length = note.ClampTime(start, length)
	c.notes = append(c.notes, e)
	return ref, nil
}

func (c *Clip) RemoveNote(ref Ref) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return closed("remove note")
	}
	for i := range c.notes {
		if c.notes[i].Ref == ref {
			c.notes = append(c.notes[:i], c.notes[i+1:]...)
			return nil
		}
	}
	return staleRef(ref)
}

// Replace swaps the whole note set (clip switch, reload). Every
// previously issued ref becomes stale and the generation advances.
func (c *Clip) Replace(ts geometry.TimeSignature, notes []Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ts.BeatsPerBar > 0 && ts.BeatUnit > 0 {
		c.ts = ts
	}
	next := make([]Event, 0, len(notes))
	for _, e := range notes {
		e.Ref = c.nextRef
		c.nextRef++
		e.Pitch = note.ClampPitch(e.Pitch)
		e.Velocity = note.ClampVelocity(e.Velocity)
		e.Start, e.Length = note.ClampTime(e.Start, e.Length)
		next = append(next, e)
	}
	c.notes = next
	c.closed = false
	c.gen++
	debug.Log("clip", "replace %q: %d notes, generation %d", c.name, len(c.notes), c.gen)
}

// Snapshot copies the current notes for undo.
func (c *Clip) Snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Event, len(c.notes))
	copy(out, c.notes)
	return out
}

// Restore brings back a snapshot. Refs are reissued.
func (c *Clip) Restore(snap []Event) {
	c.Replace(geometry.TimeSignature{}, snap)
}

// Close marks the clip as gone. Reads and writes fail with ErrClosed.
func (c *Clip) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.notes = nil
	c.gen++
	debug.Log("clip", "closed %q", c.name)
}

func (c *Clip) update(ref Ref, op string, fn func(e *Event)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return closed(op)
	}
	for i := range c.notes {
		if c.notes[i].Ref == ref {
			fn(&c.notes[i])
			return nil
		}
	}
	return staleRef(ref)
}

func sortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Start != events[j].Start {
			return events[i].Start < events[j].Start
		}
		if events[i].Pitch != events[j].Pitch {
			return events[i].Pitch < events[j].Pitch
		}
		return events[i].Ref < events[j].Ref
	})
}
