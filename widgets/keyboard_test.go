package widgets

import (
	"strings"
	"testing"
)

func TestPitchName(t *testing.T) {
	tests := []struct {
		pitch int
		want  string
	}{
		{60, "C4"},
		{61, "C#4"},
		{0, "C-1"},
		{127, "G9"},
		{69, "A4"},
	}
	for _, tt := range tests {
		if got := PitchName(tt.pitch); got != tt.want {
			t.Errorf("PitchName(%d) = %q, want %q", tt.pitch, got, tt.want)
		}
	}
}

func TestIsBlackKey(t *testing.T) {
	black := 0
	for p := 60; p < 72; p++ {
		if IsBlackKey(p) {
			black++
		}
	}
	if black != 5 {
		t.Errorf("expected 5 black keys per octave, got %d", black)
	}
	if IsBlackKey(60) || !IsBlackKey(61) {
		t.Error("C should be white and C# black")
	}
}

func TestRenderKeyboard(t *testing.T) {
	out := RenderKeyboard(61, 4, -1, [3]uint8{255, 255, 255}, [3]uint8{0, 0, 0}, [3]uint8{255, 0, 0})
	lines := strings.Split(out, "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[1], "C4") {
		t.Errorf("expected C4 label on second line, got %q", lines[1])
	}
}

func TestRenderKeyHelp(t *testing.T) {
	out := RenderKeyHelp([]KeySection{
		{Title: "Edit", Keys: []KeyBinding{{Key: "x", Desc: "delete"}}},
	})
	if !strings.Contains(out, "Edit") || !strings.Contains(out, "delete") {
		t.Errorf("unexpected help: %q", out)
	}
}
