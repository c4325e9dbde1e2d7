package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"go-pianoroll/clip"
	"go-pianoroll/geometry"
	"go-pianoroll/note"
	"go-pianoroll/pianoroll"
	"go-pianoroll/theme"
)

type harness struct {
	t     *testing.T
	m     Model
	clip  *clip.Clip
	clock time.Time
}

// newHarness opens an 80x24 editor on one note (C4, first beat). With
// the scroll centered on it the note sits on screen line 3, columns 6-9.
func newHarness(t *testing.T, path string) *harness {
	t.Helper()
	c := clip.New("test", geometry.CommonTime)
	if _, err := c.AddNote(60, 0, 480, 100); err != nil {
		t.Fatal(err)
	}
	g := pianoroll.New(c, pianoroll.Config{
		PixelsPerBar: 192,
		RowHeight:    20,
		Quantize:     note.Sixteenth,
	})
	h := &harness{t: t, clip: c, clock: time.Unix(1000, 0)}
	h.m = NewModel(g, c, theme.New(nil), path, 12)
	h.m.now = func() time.Time { return h.clock }
	h.send(tea.WindowSizeMsg{Width: 80, Height: 24})
	return h
}

func (h *harness) send(msg tea.Msg) {
	h.t.Helper()
	updated, _ := h.m.Update(msg)
	h.m = updated.(Model)
}

func (h *harness) mouse(action tea.MouseAction, x, y int) {
	h.send(tea.MouseMsg{X: x, Y: y, Action: action, Button: tea.MouseButtonLeft})
}

func (h *harness) click(x, y int) {
	h.mouse(tea.MouseActionPress, x, y)
	h.mouse(tea.MouseActionRelease, x, y)
	h.clock = h.clock.Add(time.Second)
}

func (h *harness) key(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) notes() []clip.Event {
	h.t.Helper()
	notes, err := h.clip.Notes()
	if err != nil {
		h.t.Fatal(err)
	}
	return notes
}

func TestLayout(t *testing.T) {
	h := newHarness(t, "")
	if h.m.top != 62 {
		t.Fatalf("expected top pitch 62, got %d", h.m.top)
	}
	p := h.m.toPixel(7, 3)
	if p.X != 18 {
		t.Errorf("expected x 18, got %v", p.X)
	}
	if pitch := h.m.Grid.Geometry().YToPitch(p.Y); pitch != 60 {
		t.Errorf("expected pitch 60, got %d", pitch)
	}
}

func TestDragMovesNote(t *testing.T) {
	h := newHarness(t, "")
	h.mouse(tea.MouseActionPress, 7, 3)
	if h.m.Grid.State() != pianoroll.SingleDrag {
		t.Fatalf("expected SingleDrag, got %s", h.m.Grid.State())
	}
	// four columns right (one beat), one line up
	h.mouse(tea.MouseActionMotion, 11, 2)
	h.mouse(tea.MouseActionRelease, 11, 2)

	n := h.notes()[0]
	if n.Pitch != 61 || n.Start != 480 {
		t.Errorf("expected pitch 61 at 480, got %d at %d", n.Pitch, n.Start)
	}
	if !h.m.Dirty() {
		t.Error("expected dirty after move")
	}

	h.key("u")
	n = h.notes()[0]
	if n.Pitch != 60 || n.Start != 0 {
		t.Errorf("expected undo to restore 60 at 0, got %d at %d", n.Pitch, n.Start)
	}
}

func TestDoubleClickCreatesNote(t *testing.T) {
	h := newHarness(t, "")
	// line 13 is pitch 50, column 8 is pixel 102, floored to tick 960
	h.mouse(tea.MouseActionPress, 14, 13)
	h.mouse(tea.MouseActionRelease, 14, 13)
	h.mouse(tea.MouseActionPress, 14, 13)
	h.mouse(tea.MouseActionRelease, 14, 13)

	notes := h.notes()
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	n := notes[1]
	if n.Pitch != 50 || n.Start != 960 || n.Length != 480 || n.Velocity != 100 {
		t.Errorf("unexpected new note %+v", n)
	}
	if len(h.m.undo) != 1 {
		t.Errorf("expected one undo entry, got %d", len(h.m.undo))
	}
}

func TestSlowClicksDoNotCreate(t *testing.T) {
	h := newHarness(t, "")
	h.click(14, 13)
	h.click(14, 13)
	if n := len(h.notes()); n != 1 {
		t.Errorf("expected no new note, got %d notes", n)
	}
}

func TestDeleteSelected(t *testing.T) {
	h := newHarness(t, "")
	h.click(7, 3)
	if len(h.m.Grid.SelectedNotes()) != 1 {
		t.Fatal("expected click to select the note")
	}
	h.key("x")
	if n := len(h.notes()); n != 0 {
		t.Errorf("expected note deleted, got %d", n)
	}
	h.key("u")
	if n := len(h.notes()); n != 1 {
		t.Errorf("expected undo to bring the note back, got %d", n)
	}
}

func TestNudgeAndQuantizeKeys(t *testing.T) {
	h := newHarness(t, "")
	h.click(7, 3)
	h.send(tea.KeyMsg{Type: tea.KeyUp})
	h.send(tea.KeyMsg{Type: tea.KeyRight})

	n := h.notes()[0]
	if n.Pitch != 61 || n.Start != 120 {
		t.Errorf("expected 61 at 120, got %d at %d", n.Pitch, n.Start)
	}

	h.key("-")
	if h.m.Grid.Quantization() != note.Eighth {
		t.Errorf("expected 1/8, got %s", h.m.Grid.Quantization())
	}
	h.key("Q")
	if n := h.notes()[0]; n.Start != 240 {
		t.Errorf("expected 120 to quantize up to 240, got %d", n.Start)
	}
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.mid")
	h := newHarness(t, path)
	h.click(7, 3)
	h.send(tea.KeyMsg{Type: tea.KeyUp})
	h.send(tea.KeyMsg{Type: tea.KeyCtrlS})

	if h.m.Err() != nil {
		t.Fatalf("save failed: %v", h.m.Err())
	}
	if h.m.Dirty() {
		t.Error("expected clean after save")
	}
	_, notes, err := clip.ReadSMF(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(notes) != 1 || notes[0].Pitch != 61 {
		t.Errorf("expected saved note 61, got %+v", notes)
	}
}

func TestSaveWithoutPath(t *testing.T) {
	h := newHarness(t, "")
	h.send(tea.KeyMsg{Type: tea.KeyCtrlS})
	if h.m.Err() == nil {
		t.Error("expected error without a file")
	}
	if !strings.Contains(h.m.View(), "ERROR") {
		t.Error("expected error in view")
	}
}

func TestReloadMsgRebuilds(t *testing.T) {
	h := newHarness(t, "")
	h.clip.Replace(geometry.CommonTime, []clip.Event{
		{Pitch: 40, Velocity: 90, Start: 0, Length: 240},
		{Pitch: 41, Velocity: 90, Start: 240, Length: 240},
	})
	h.send(ReloadMsg{Kind: clip.ChangeReloaded})

	if h.m.Grid.Len() != 2 {
		t.Errorf("expected 2 notes after reload, got %d", h.m.Grid.Len())
	}
	if h.m.Status() != "reloaded from disk" {
		t.Errorf("unexpected status %q", h.m.Status())
	}

	h.clip.Close()
	h.send(ReloadMsg{Kind: clip.ChangeRemoved})
	if !h.m.Grid.Disabled() {
		t.Error("expected grid disabled after removal")
	}
	if !strings.Contains(h.m.View(), "no clip") {
		t.Error("expected detached view")
	}
}

func TestViewDrawsNotes(t *testing.T) {
	h := newHarness(t, "")
	view := h.m.View()
	if !strings.Contains(view, "█") {
		t.Error("expected a note body in the view")
	}
	if !strings.Contains(view, "C4") {
		t.Error("expected C4 on the keyboard")
	}
}

func TestQuit(t *testing.T) {
	h := newHarness(t, "")
	_, cmd := h.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected QuitMsg")
	}
}
