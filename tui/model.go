package tui

import (
	"fmt"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"go-pianoroll/clip"
	"go-pianoroll/debug"
	"go-pianoroll/geometry"
	"go-pianoroll/pianoroll"
	"go-pianoroll/theme"
	"go-pianoroll/widgets"
)

// Layout in terminal cells
const (
	headerLines = 1
	footerLines = 2
	gridLeft    = widgets.KeyboardWidth + 1

	doubleClickTime = 400 * time.Millisecond
	maxUndo         = 64

	minPixelsPerBar = 48
	maxPixelsPerBar = 3072
)

// ReloadMsg is sent by the file watcher after it changed the clip.
type ReloadMsg struct {
	Kind string
}

// recorder collects edit events from the grid listener. It is shared by
// every copy of the Model.
type recorder struct {
	events []pianoroll.Event
}

type Model struct {
	Grid  *pianoroll.Grid
	Clip  *clip.Clip
	Theme *theme.Theme

	path      string
	cellWidth float64
	keys      keyMap
	help      help.Model
	edits     *recorder

	width, height int
	top           int // highest visible pitch
	left          int // first visible column

	undo   [][]clip.Event
	before []clip.Event // clip contents when the pending gesture began

	status   string
	err      error
	dirty    bool
	quitting bool

	now       func() time.Time
	lastClick time.Time
	lastCell  [2]int
}

// NewModel builds the editor for c. path is where ctrl+s saves to; an
// empty path disables saving.
func NewModel(g *pianoroll.Grid, c *clip.Clip, th *theme.Theme, path string, cellWidth float64) Model {
	if cellWidth <= 0 {
		cellWidth = 12
	}
	rec := &recorder{}
	g.OnEdit(func(ev pianoroll.Event) {
		rec.events = append(rec.events, ev)
	})
	m := Model{
		Grid:      g,
		Clip:      c,
		Theme:     th,
		path:      path,
		cellWidth: cellWidth,
		keys:      keys,
		help:      help.New(),
		edits:     rec,
		width:     80,
		height:    24,
		now:       time.Now,
		top:       72,
	}
	m.centerOnNotes()
	return m
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.clampScroll()

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			return m, tea.Quit
		}
		m.handleKey(msg)

	case tea.MouseMsg:
		m.handleMouse(msg)

	case ReloadMsg:
		m.Grid.RebuildFromSource()
		m.undo = nil
		m.dirty = false
		if msg.Kind == clip.ChangeRemoved {
			m.status = "clip file removed"
		} else {
			m.status = "reloaded from disk"
		}
		debug.Log("tui", "watcher: %s", msg.Kind)
	}

	m.drain()
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	q := m.Grid.Quantization()
	switch {
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll

	case key.Matches(msg, m.keys.Delete):
		m.checkpoint()
		m.Grid.DeleteSelected()

	case key.Matches(msg, m.keys.SelectAll):
		m.Grid.SelectAll()

	case key.Matches(msg, m.keys.ClearSelect):
		m.Grid.ClearSelection()

	case key.Matches(msg, m.keys.Undo):
		m.undoLast()

	case key.Matches(msg, m.keys.Save):
		m.save()

	case key.Matches(msg, m.keys.OctaveUp):
		m.checkpoint()
		m.Grid.NudgeSelected(0, 12)

	case key.Matches(msg, m.keys.OctaveDown):
		m.checkpoint()
		m.Grid.NudgeSelected(0, -12)

	case key.Matches(msg, m.keys.NudgeUp):
		m.checkpoint()
		m.Grid.NudgeSelected(0, 1)

	case key.Matches(msg, m.keys.NudgeDown):
		m.checkpoint()
		m.Grid.NudgeSelected(0, -1)

	case key.Matches(msg, m.keys.NudgeLeft):
		m.checkpoint()
		m.Grid.NudgeSelected(-q.Ticks(), 0)

	case key.Matches(msg, m.keys.NudgeRight):
		m.checkpoint()
		m.Grid.NudgeSelected(q.Ticks(), 0)

	case key.Matches(msg, m.keys.Coarser):
		m.setQuantization(q.Coarser().String())

	case key.Matches(msg, m.keys.Finer):
		m.setQuantization(q.Finer().String())

	case key.Matches(msg, m.keys.QuantizeNotes):
		m.checkpoint()
		m.Grid.QuantizeSelected()

	case key.Matches(msg, m.keys.ScrollUp):
		m.top += m.gridRows() / 2
		m.clampScroll()

	case key.Matches(msg, m.keys.ScrollDown):
		m.top -= m.gridRows() / 2
		m.clampScroll()

	case key.Matches(msg, m.keys.ScrollLeft):
		m.left -= m.gridCols() / 2
		m.clampScroll()

	case key.Matches(msg, m.keys.ScrollRight):
		m.left += m.gridCols() / 2

	case key.Matches(msg, m.keys.ZoomIn):
		m.zoom(2)

	case key.Matches(msg, m.keys.ZoomOut):
		m.zoom(0.5)
	}
}

func (m *Model) setQuantization(id string) {
	if err := m.Grid.SetQuantizationID(id); err != nil {
		m.err = err
		return
	}
	m.status = "grid " + id
}

func (m *Model) zoom(factor float64) {
	g := m.Grid.Geometry()
	ppb := g.PixelsPerBar * factor
	if ppb < minPixelsPerBar || ppb > maxPixelsPerBar {
		return
	}
	// Keep the first visible tick in place
	tick := g.XToTicks(float64(m.left) * m.cellWidth)
	m.Grid.SetZoom(ppb, g.RowHeight)
	m.left = int(m.Grid.Geometry().TicksToX(tick) / m.cellWidth)
	m.status = fmt.Sprintf("zoom %.0f px/bar", ppb)
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		if msg.Shift {
			m.left--
		} else {
			m.top++
		}
		m.clampScroll()
		return
	case tea.MouseButtonWheelDown:
		if msg.Shift {
			m.left++
		} else {
			m.top--
		}
		m.clampScroll()
		return
	}

	p := m.toPixel(msg.X, msg.Y)
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft || !m.inGrid(msg.X, msg.Y) {
			return
		}
		m.checkpoint()
		cell := [2]int{msg.X, msg.Y}
		now := m.now()
		if cell == m.lastCell && now.Sub(m.lastClick) < doubleClickTime {
			m.lastClick = time.Time{}
			m.Grid.DoubleClick(p)
			return
		}
		m.lastClick, m.lastCell = now, cell

		var mods pianoroll.Modifiers
		if msg.Shift || msg.Ctrl {
			mods |= pianoroll.ModAdd
		}
		if msg.Alt {
			mods |= pianoroll.ModVelocity
		}
		m.Grid.PointerDown(p, mods)

	case tea.MouseActionMotion:
		m.Grid.PointerMove(p)

	case tea.MouseActionRelease:
		m.Grid.PointerUp(p)
	}
}

// toPixel maps a terminal cell to the grid pixel at its center.
func (m Model) toPixel(x, y int) pianoroll.Point {
	g := m.Grid.Geometry()
	col := x - gridLeft + m.left
	pitch := m.top - (y - headerLines)
	return pianoroll.Point{
		X: (float64(col) + 0.5) * m.cellWidth,
		Y: g.PitchToY(pitch) + g.RowHeight/2,
	}
}

func (m Model) inGrid(x, y int) bool {
	line := y - headerLines
	return x >= gridLeft && line >= 0 && line < m.gridRows() && m.top-line >= 0
}

func (m Model) gridRows() int {
	rows := m.height - headerLines - footerLines
	if m.help.ShowAll {
		rows -= 6
	}
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (m Model) gridCols() int {
	cols := m.width - gridLeft
	if cols < 1 {
		cols = 1
	}
	return cols
}

func (m *Model) clampScroll() {
	if m.top > geometry.NumPitches-1 {
		m.top = geometry.NumPitches - 1
	}
	if low := m.gridRows() - 1; m.top < low && low <= geometry.NumPitches-1 {
		m.top = low
	}
	if m.left < 0 {
		m.left = 0
	}
}

// centerOnNotes scrolls so the highest note is near the top.
func (m *Model) centerOnNotes() {
	hi := -1
	for _, h := range m.Grid.Handles() {
		if p := h.Note.Pitch(); p > hi {
			hi = p
		}
	}
	if hi >= 0 {
		m.top = hi + 2
	}
	m.clampScroll()
}

// checkpoint remembers the clip contents before something that may edit
// it. The snapshot only lands on the undo stack if an edit follows.
func (m *Model) checkpoint() {
	if m.Clip != nil {
		m.before = m.Clip.Snapshot()
	}
}

// drain turns the edits the grid reported into status and undo history.
func (m *Model) drain() {
	events := m.edits.events
	m.edits.events = nil
	for _, ev := range events {
		if ev.Kind == pianoroll.Select {
			m.status = fmt.Sprintf("%d selected", len(ev.Notes))
			continue
		}
		if m.before != nil {
			m.undo = append(m.undo, m.before)
			if len(m.undo) > maxUndo {
				m.undo = m.undo[1:]
			}
			m.before = nil
		}
		m.dirty = true
		m.err = nil
		m.status = fmt.Sprintf("%s %d note(s)", ev.Kind, len(ev.Notes))
	}
	if m.Grid.State() == pianoroll.Idle {
		m.before = nil
	}
}

func (m *Model) undoLast() {
	if len(m.undo) == 0 || m.Clip == nil {
		m.status = "nothing to undo"
		return
	}
	snap := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.Clip.Restore(snap)
	m.Grid.RebuildFromSource()
	m.dirty = true
	m.status = "undo"
}

func (m *Model) save() {
	if m.path == "" || m.Clip == nil {
		m.err = fault.New("no file", fmsg.WithDesc("no file", "Start with a .mid file to enable saving"))
		return
	}
	if err := m.Clip.WriteSMF(m.path); err != nil {
		m.err = fault.Wrap(err, fmsg.WithDesc("cannot write file", fmt.Sprintf("Could not save %s", m.path)))
		return
	}
	m.dirty = false
	m.err = nil
	m.status = "saved " + m.path
}

// Dirty reports unsaved edits.
func (m Model) Dirty() bool { return m.dirty }

// Status is the last status line message.
func (m Model) Status() string { return m.status }

// Err is the last error shown to the user.
func (m Model) Err() error { return m.err }
