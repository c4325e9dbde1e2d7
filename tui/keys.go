package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"go-pianoroll/widgets"
)

func Key(help string, keyboardKey ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keyboardKey...), key.WithHelp(keyboardKey[0], help))
}

type keyMap struct {
	Quit          key.Binding
	Help          key.Binding
	Delete        key.Binding
	SelectAll     key.Binding
	ClearSelect   key.Binding
	Undo          key.Binding
	Save          key.Binding
	NudgeUp       key.Binding
	NudgeDown     key.Binding
	NudgeLeft     key.Binding
	NudgeRight    key.Binding
	OctaveUp      key.Binding
	OctaveDown    key.Binding
	Coarser       key.Binding
	Finer         key.Binding
	QuantizeNotes key.Binding
	ScrollUp      key.Binding
	ScrollDown    key.Binding
	ScrollLeft    key.Binding
	ScrollRight   key.Binding
	ZoomIn        key.Binding
	ZoomOut       key.Binding
}

var keys = keyMap{
	Quit:          Key("quit", "q", "ctrl+c"),
	Help:          Key("help", "?"),
	Delete:        Key("delete selected", "x", "delete", "backspace"),
	SelectAll:     Key("select all", "ctrl+a"),
	ClearSelect:   Key("clear selection", "esc"),
	Undo:          Key("undo", "u", "ctrl+z"),
	Save:          Key("save", "ctrl+s"),
	NudgeUp:       Key("semitone up", "up"),
	NudgeDown:     Key("semitone down", "down"),
	NudgeLeft:     Key("one step earlier", "left"),
	NudgeRight:    Key("one step later", "right"),
	OctaveUp:      Key("octave up", "shift+up"),
	OctaveDown:    Key("octave down", "shift+down"),
	Coarser:       Key("coarser grid", "-"),
	Finer:         Key("finer grid", "=", "+"),
	QuantizeNotes: Key("quantize selected", "Q"),
	ScrollUp:      Key("scroll up", "pgup", "K"),
	ScrollDown:    Key("scroll down", "pgdown", "J"),
	ScrollLeft:    Key("scroll left", ",", "H"),
	ScrollRight:   Key("scroll right", ".", "L"),
	ZoomIn:        Key("zoom in", "z"),
	ZoomOut:       Key("zoom out", "Z"),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Delete, k.Undo, k.Save, k.Coarser, k.Finer, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Delete, k.SelectAll, k.ClearSelect, k.QuantizeNotes, k.Undo, k.Save},
		{k.NudgeUp, k.NudgeDown, k.NudgeLeft, k.NudgeRight, k.OctaveUp, k.OctaveDown},
		{k.Coarser, k.Finer, k.ZoomIn, k.ZoomOut},
		{k.ScrollUp, k.ScrollDown, k.ScrollLeft, k.ScrollRight, k.Help, k.Quit},
	}
}

// MouseHelp describes the pointer gestures
var MouseHelp = []widgets.KeySection{
	{
		Title: "Mouse",
		Keys: []widgets.KeyBinding{
			{Key: "click", Desc: "select note"},
			{Key: "shift+click", Desc: "add to selection"},
			{Key: "drag note", Desc: "move (selection follows)"},
			{Key: "drag edge", Desc: "resize"},
			{Key: "alt+drag", Desc: "velocity"},
			{Key: "drag empty", Desc: "rubber band"},
			{Key: "double-click", Desc: "new note"},
		},
	},
}
