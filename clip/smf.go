package clip

import (
	"fmt"
	"sort"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"go-pianoroll/debug"
	"go-pianoroll/geometry"
	"go-pianoroll/note"
)

// ReadSMF reads every note of a Standard MIDI File, rescaled to 480
// ticks per quarter note. Notes from all tracks and channels are merged.
func ReadSMF(path string) (geometry.TimeSignature, []Event, error) {
	ts := geometry.CommonTime

	sm, err := smf.ReadFile(path)
	if err != nil {
		return ts, nil, fmt.Errorf("read smf %s: %w", path, err)
	}

	res := geometry.TicksPerQuarter
	if mt, ok := sm.TimeFormat.(smf.MetricTicks); ok && mt.Ticks4th() > 0 {
		res = int(mt.Ticks4th())
	}
	scale := func(abs int64) int {
		return int(abs * geometry.TicksPerQuarter / int64(res))
	}

	type pending struct {
		start    int64
		velocity uint8
	}

	var notes []Event
	for _, tr := range sm.Tracks {
		var abs int64
		open := make(map[[2]uint8][]pending)

		for _, ev := range tr {
			abs += int64(ev.Delta)

			var ch, key, vel, num, denom uint8
			switch {
			case ev.Message.GetMetaMeter(&num, &denom):
				if num > 0 && denom > 0 {
					ts = geometry.TimeSignature{BeatsPerBar: int(num), BeatUnit: int(denom)}
				}
			case ev.Message.GetNoteOn(&ch, &key, &vel) && vel > 0:
				k := [2]uint8{ch, key}
				open[k] = append(open[k], pending{start: abs, velocity: vel})
			case ev.Message.GetNoteOn(&ch, &key, &vel), ev.Message.GetNoteOff(&ch, &key, &vel):
				k := [2]uint8{ch, key}
				queue := open[k]
				if len(queue) == 0 {
					continue
				}
				p := queue[0]
				open[k] = queue[1:]
				notes = append(notes, Event{
					Pitch:    note.ClampByte(key, note.MinPitch, note.MaxPitch),
					Velocity: note.ClampByte(p.velocity, note.MinVelocity, note.MaxVelocity),
					Start:    scale(p.start),
					Length:   scale(abs) - scale(p.start),
				})
			}
		}

		// Notes never switched off run to the end of their track
		for k, queue := range open {
			for _, p := range queue {
				notes = append(notes, Event{
					Pitch:    note.ClampByte(k[1], note.MinPitch, note.MaxPitch),
					Velocity: note.ClampByte(p.velocity, note.MinVelocity, note.MaxVelocity),
					Start:    scale(p.start),
					Length:   scale(abs) - scale(p.start),
				})
			}
		}
	}

	sortEvents(notes)
	debug.Log("smf", "read %s: %d notes, %d/%d, %d ticks/quarter", path, len(notes), ts.BeatsPerBar, ts.BeatUnit, res)
	return ts, notes, nil
}

// WriteSMF writes notes as a single-track format 0 file on channel 1.
func WriteSMF(path string, ts geometry.TimeSignature, notes []Event) error {
	if ts.BeatsPerBar <= 0 || ts.BeatUnit <= 0 {
		ts = geometry.CommonTime
	}

	type stamped struct {
		at  int
		off bool
		msg gomidi.Message
	}

	events := make([]stamped, 0, 2*len(notes))
	for _, n := range notes {
		nn := note.New(n.Pitch, n.Velocity, n.Start, n.Length)
		key, vel := uint8(nn.Pitch()), uint8(nn.Velocity())
		events = append(events,
			stamped{at: nn.Start(), msg: gomidi.NoteOn(0, key, vel)},
			stamped{at: nn.End(), off: true, msg: gomidi.NoteOff(0, key)},
		)
	}
	// Note-offs sort before note-ons on the same tick so repeated
	// pitches do not swallow each other.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].at != events[j].at {
			return events[i].at < events[j].at
		}
		return events[i].off && !events[j].off
	})

	var tr smf.Track
	tr.Add(0, smf.MetaMeter(uint8(ts.BeatsPerBar), uint8(ts.BeatUnit)))
	last := 0
	for _, e := range events {
		tr.Add(uint32(e.at-last), e.msg)
		last = e.at
	}
	tr.Close(0)

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(geometry.TicksPerQuarter)
	if err := sm.Add(tr); err != nil {
		return fmt.Errorf("add track: %w", err)
	}
	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("write smf %s: %w", path, err)
	}
	debug.Log("smf", "wrote %s: %d notes", path, len(notes))
	return nil
}

// LoadSMF replaces the clip contents with the notes of a MIDI file.
func (c *Clip) LoadSMF(path string) error {
	ts, notes, err := ReadSMF(path)
	if err != nil {
		return err
	}
	c.Replace(ts, notes)
	return nil
}

// WriteSMF saves the clip contents to a MIDI file.
func (c *Clip) WriteSMF(path string) error {
	notes, err := c.Notes()
	if err != nil {
		return err
	}
	return WriteSMF(path, c.TimeSignature(), notes)
}
