package note

import (
	"testing"

	"github.com/Southclaws/fault/ftag"
)

func TestSetPitchClamps(t *testing.T) {
	var n Note
	n.SetPitch(200)
	if n.Pitch() != 127 {
		t.Errorf("SetPitch(200) stored %d, want 127", n.Pitch())
	}
	n.SetPitch(0)
	n.SetPitch(n.Pitch() - 1)
	if n.Pitch() != 0 {
		t.Errorf("pitch below zero stored %d, want 0", n.Pitch())
	}
}

func TestClampByteUnderflow(t *testing.T) {
	var b uint8 = 0
	b--
	if got := ClampByte(b, MinPitch, MaxPitch); got != 0 {
		t.Errorf("ClampByte(%d) = %d, want 0", b, got)
	}
	if got := ClampByte(200, MinPitch, MaxPitch); got != 127 {
		t.Errorf("ClampByte(200) = %d, want 127", got)
	}
	if got := ClampByte(0, MinVelocity, MaxVelocity); got != 1 {
		t.Errorf("ClampByte(0) velocity = %d, want 1", got)
	}
}

func TestSetVelocityClamps(t *testing.T) {
	var n Note
	tests := []struct{ in, want int }{
		{0, 1}, {-40, 1}, {64, 64}, {127, 127}, {500, 127},
	}
	for _, tt := range tests {
		n.SetVelocity(tt.in)
		if n.Velocity() != tt.want {
			t.Errorf("SetVelocity(%d) = %d, want %d", tt.in, n.Velocity(), tt.want)
		}
	}
}

func TestSetStartAndLengthClamps(t *testing.T) {
	var n Note
	n.SetStartAndLength(-10, 0)
	if n.Start() != 0 {
		t.Errorf("start = %d, want 0", n.Start())
	}
	if n.Length() != 1 {
		t.Errorf("length = %d, want 1", n.Length())
	}
}

func TestClampHelpersMatchSetters(t *testing.T) {
	for _, v := range []int{-5, 0, 1, 64, 127, 128, 300} {
		var n Note
		n.SetPitch(v)
		n.SetVelocity(v)
		n.SetStartAndLength(v, v)
		if ClampPitch(v) != n.Pitch() {
			t.Errorf("ClampPitch(%d) = %d, setter stored %d", v, ClampPitch(v), n.Pitch())
		}
		if ClampVelocity(v) != n.Velocity() {
			t.Errorf("ClampVelocity(%d) = %d, setter stored %d", v, ClampVelocity(v), n.Velocity())
		}
		if s, l := ClampTime(v, v); s != n.Start() || l != n.Length() {
			t.Errorf("ClampTime(%d, %d) = %d, %d, setter stored %d, %d", v, v, s, l, n.Start(), n.Length())
		}
	}
}

func TestAccessorsOnValues(t *testing.T) {
	byValue := func() Note { return New(60, 90, 480, 240) }
	if byValue().Pitch() != 60 || byValue().Velocity() != 90 {
		t.Error("pitch or velocity lost")
	}
	if byValue().Start() != 480 || byValue().Length() != 240 || byValue().End() != 720 {
		t.Error("timing lost")
	}
	notes := map[ID]Note{1: New(0, 1, 0, 1)}
	if notes[1].IsSelected() {
		t.Error("new note should not be selected")
	}
}

func TestQuantizeTicks(t *testing.T) {
	tests := []struct{ v, q, want int }{
		{0, 120, 0},
		{59, 120, 0},
		{60, 120, 120}, // tie goes up
		{61, 120, 120},
		{180, 120, 240}, // tie goes up
		{239, 120, 240},
		{1920, 480, 1920},
		{-30, 120, 0},
	}
	for _, tt := range tests {
		if got := QuantizeTicks(tt.v, tt.q); got != tt.want {
			t.Errorf("QuantizeTicks(%d, %d) = %d, want %d", tt.v, tt.q, got, tt.want)
		}
	}
}

func TestQuantizeIdempotent(t *testing.T) {
	for _, u := range Units() {
		q := u.Ticks()
		for v := 0; v < 4000; v += 7 {
			once := QuantizeTicks(v, q)
			if twice := QuantizeTicks(once, q); twice != once {
				t.Fatalf("q=%d: quantize(%d) = %d but quantize(%d) = %d", q, v, once, once, twice)
			}
		}
	}
}

func TestNoteQuantizeZeroLengthBecomesUnit(t *testing.T) {
	n := New(60, 100, 130, 40)
	n.Quantize(120, true, true)
	if n.Start() != 120 {
		t.Errorf("start = %d, want 120", n.Start())
	}
	if n.Length() != 120 {
		t.Errorf("length = %d, want 120", n.Length())
	}
}

func TestNoteQuantizeSelective(t *testing.T) {
	n := New(60, 100, 130, 200)
	n.Quantize(120, false, true)
	if n.Start() != 130 || n.Length() != 240 {
		t.Errorf("got start=%d length=%d, want 130/240", n.Start(), n.Length())
	}
	n.Quantize(0, true, true)
	if n.Start() != 130 {
		t.Error("q=0 should leave the note alone")
	}
}

func TestCompare(t *testing.T) {
	a := New(60, 100, 0, 480)
	a.ID = 1
	b := New(60, 100, 0, 480)
	b.ID = 2
	if !a.Compare(&b, false) {
		t.Error("structurally equal notes should compare equal")
	}
	if a.Compare(&b, true) {
		t.Error("identity compare should see different IDs")
	}
	b.SetVelocity(90)
	if a.Compare(&b, false) {
		t.Error("velocity differs")
	}
	if a.Compare(nil, false) {
		t.Error("nil never compares equal")
	}
}

func TestParseUnit(t *testing.T) {
	u, err := ParseUnit("1/16")
	if err != nil {
		t.Fatal(err)
	}
	if u != Sixteenth || u.Ticks() != 120 {
		t.Errorf("ParseUnit(1/16) = %v (%d ticks)", u, u.Ticks())
	}
	if u, _ := ParseUnit("1/8T"); u.Ticks() != 160 {
		t.Errorf("1/8T = %d ticks, want 160", u.Ticks())
	}

	_, err = ParseUnit("1/7")
	if err == nil {
		t.Fatal("expected error for unknown unit")
	}
	if kind := ftag.Get(err); kind != ftag.InvalidArgument {
		t.Errorf("kind = %v, want InvalidArgument", kind)
	}
	if CheckUnit(Unit(42)) == nil {
		t.Error("CheckUnit should reject out-of-range units")
	}
}

func TestUnitStepping(t *testing.T) {
	if Whole.Coarser() != Whole {
		t.Error("Whole is the coarsest")
	}
	if ThirtySecond.Finer() != ThirtySecond {
		t.Error("ThirtySecond is the finest")
	}
	if Eighth.Finer() != Sixteenth || Eighth.Coarser() != Quarter {
		t.Error("stepping from Eighth")
	}
}
