package midi

import (
	"bytes"
	"errors"
	"testing"

	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestEventMessage(t *testing.T) {
	tests := []struct {
		ev   Event
		want gomidi.Message
	}{
		{Event{Type: NoteOn, Channel: 0, Note: 60, Velocity: 100}, gomidi.NoteOn(0, 60, 100)},
		{Event{Type: NoteOff, Channel: 3, Note: 61}, gomidi.NoteOff(3, 61)},
		{Event{Type: CC, Channel: 1, Note: 7, Velocity: 90}, gomidi.ControlChange(1, 7, 90)},
	}
	for _, tt := range tests {
		if got := tt.ev.Message(); !bytes.Equal(got, tt.want) {
			t.Errorf("%v: Message() = % x, want % x", tt.ev, got, tt.want)
		}
	}
	if (Event{Type: 0x42}).Message() != nil {
		t.Error("unknown type should have no message")
	}
}

func TestOutputForcesChannelAndReleasesHeld(t *testing.T) {
	var sent []gomidi.Message
	out := newOutput(nil, func(m gomidi.Message) error {
		sent = append(sent, m)
		return nil
	}, 5)

	if err := out.Send(Event{Type: NoteOn, Channel: 0, Note: 64, Velocity: 80}); err != nil {
		t.Fatal(err)
	}
	var ch, key, vel uint8
	if !sent[0].GetNoteOn(&ch, &key, &vel) || ch != 5 || key != 64 || vel != 80 {
		t.Fatalf("sent % x, want note on ch 5", sent[0])
	}

	if err := out.Close(); err != nil {
		t.Fatal(err)
	}
	if len(sent) != 2 || !sent[1].GetNoteOff(&ch, &key, &vel) || key != 64 {
		t.Fatalf("Close should release held note, sent %v", sent)
	}
}

func TestCloseReportsReleaseFailure(t *testing.T) {
	broken := errors.New("port gone")
	out := newOutput(nil, func(m gomidi.Message) error {
		var ch, key, vel uint8
		if m.GetNoteOff(&ch, &key, &vel) {
			return broken
		}
		return nil
	}, 0)

	out.Send(Event{Type: NoteOn, Note: 60, Velocity: 100})
	out.Send(Event{Type: NoteOn, Note: 67, Velocity: 100})
	err := out.Close()
	if !errors.Is(err, broken) {
		t.Fatalf("Close() = %v, want release error", err)
	}
	if err := out.Close(); err != nil {
		t.Errorf("second Close() = %v, held notes should be cleared", err)
	}
}

func TestSinkFunc(t *testing.T) {
	var got []Event
	var s Sink = SinkFunc(func(e Event) error {
		got = append(got, e)
		return nil
	})
	s.Send(Event{Type: NoteOn, Note: 1})
	if len(got) != 1 {
		t.Fatal("SinkFunc did not forward")
	}
	if err := Discard.Send(Event{}); err != nil {
		t.Fatal(err)
	}
}
