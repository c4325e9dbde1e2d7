package pianoroll

import (
	"errors"
	"sort"

	"go-pianoroll/clip"
	"go-pianoroll/debug"
	"go-pianoroll/geometry"
	"go-pianoroll/midi"
	"go-pianoroll/note"
)

// Gesture thresholds in pixels
const (
	ResizeEdge     = 10.0 // press this close to a right edge to resize
	MinResizeWidth = 20.0 // widths at or below this are ignored while resizing
	DragDeadband   = 2.0  // displacement a note needs before it counts as moved
	VelocityPerPx  = 0.5  // velocity change per pixel of vertical drag
)

// Config holds the grid view settings
type Config struct {
	PixelsPerBar    float64
	RowHeight       float64
	Quantize        note.Unit
	DefaultLength   int // ticks
	DefaultVelocity int
}

// DefaultConfig is a one-beat, velocity-100, 1/16 grid
func DefaultConfig() Config {
	return Config{
		PixelsPerBar:    900,
		RowHeight:       20,
		Quantize:        note.Sixteenth,
		DefaultLength:   geometry.TicksPerQuarter,
		DefaultVelocity: 100,
	}
}

// Handle is a read-only view of one note on the grid
type Handle struct {
	ID     note.ID
	Ref    clip.Ref
	Note   note.Note
	Rect   geometry.Rect // live visual rectangle, may differ from Note mid-gesture
	Moving bool          // part of the gesture in flight
}

type handle struct {
	note note.Note
	ref  clip.Ref
	rect geometry.Rect
}

// Grid is the piano-roll controller. It owns one handle per note of the
// source and runs the pointer gesture state machine. It is not safe for
// concurrent use; drive it from a single event loop.
type Grid struct {
	cfg   Config
	src   clip.Source
	gen   uint64
	geom  geometry.Geometry
	quant note.Unit

	handles []*handle
	byID    map[note.ID]*handle
	nextID  note.ID

	state    State
	gesture  *gesture
	detached bool

	listener    func(Event)
	audition    midi.Sink
	dispatching bool
}

// New builds a grid over src. A nil src gives a detached grid.
func New(src clip.Source, cfg Config) *Grid {
	if !cfg.Quantize.Valid() {
		cfg.Quantize = note.Sixteenth
	}
	if cfg.DefaultLength < note.MinLength {
		cfg.DefaultLength = geometry.TicksPerQuarter
	}
	if cfg.DefaultVelocity == 0 {
		cfg.DefaultVelocity = 100
	}
	g := &Grid{
		cfg:      cfg,
		src:      src,
		quant:    cfg.Quantize,
		audition: midi.Discard,
		byID:     make(map[note.ID]*handle),
	}
	g.rebuild()
	return g
}

// OnEdit sets the listener called once per committed change. The
// listener may read the grid but calls that mutate it are ignored.
func (g *Grid) OnEdit(fn func(Event)) {
	g.listener = fn
}

// SetAudition sets where note previews go. nil silences them.
func (g *Grid) SetAudition(s midi.Sink) {
	if s == nil {
		s = midi.Discard
	}
	g.audition = s
}

func (g *Grid) State() State                { return g.state }
func (g *Grid) Geometry() geometry.Geometry { return g.geom }
func (g *Grid) Quantization() note.Unit     { return g.quant }
func (g *Grid) Source() clip.Source         { return g.src }

// Disabled reports whether the grid lost its source and shows nothing.
func (g *Grid) Disabled() bool { return g.detached }

// Len is the number of notes on the grid.
func (g *Grid) Len() int { return len(g.handles) }

// SetQuantization changes the snap grain.
func (g *Grid) SetQuantization(u note.Unit) error {
	if err := note.CheckUnit(u); err != nil {
		return err
	}
	g.quant = u
	debug.Log("grid", "quantize %s", u)
	return nil
}

// SetQuantizationID changes the snap grain by unit id ("1/16", ...).
func (g *Grid) SetQuantizationID(id string) error {
	u, err := note.ParseUnit(id)
	if err != nil {
		return err
	}
	return g.SetQuantization(u)
}

// SetZoom changes pixels per bar and row height. Ignored mid-gesture.
func (g *Grid) SetZoom(pixelsPerBar, rowHeight float64) {
	if g.state != Idle {
		return
	}
	g.cfg.PixelsPerBar, g.cfg.RowHeight = pixelsPerBar, rowHeight
	g.geom = geometry.New(pixelsPerBar, rowHeight, g.timeSignature())
	for _, h := range g.handles {
		h.rect = g.rectOf(&h.note)
	}
}

// SetSource switches the grid to another clip.
func (g *Grid) SetSource(src clip.Source) {
	if !g.enter("set source") {
		return
	}
	defer g.leave()
	g.src = src
	g.rebuild()
}

// RebuildFromSource discards every handle and rebuilds from the source.
// Selection and any gesture in flight are dropped.
func (g *Grid) RebuildFromSource() {
	if !g.enter("rebuild") {
		return
	}
	defer g.leave()
	g.rebuild()
}

func (g *Grid) rebuild() {
	g.endGesture()
	g.handles = nil
	g.byID = make(map[note.ID]*handle)
	g.geom = geometry.New(g.cfg.PixelsPerBar, g.cfg.RowHeight, g.timeSignature())

	if g.src == nil {
		g.detach("no source")
		return
	}
	events, err := g.src.Notes()
	if err != nil {
		g.detach(err.Error())
		return
	}
	g.detached = false
	g.gen = g.src.Generation()
	for _, e := range events {
		g.addHandle(e)
	}
	debug.Log("grid", "rebuilt %d notes at generation %d", len(g.handles), g.gen)
}

func (g *Grid) detach(reason string) {
	g.detached = true
	g.handles = nil
	g.byID = make(map[note.ID]*handle)
	debug.Log("grid", "detached: %s", reason)
}

func (g *Grid) timeSignature() geometry.TimeSignature {
	if g.src == nil {
		return geometry.CommonTime
	}
	return g.src.TimeSignature()
}

// sync rebuilds when the source changed underneath us. It reports
// whether the grid is usable.
func (g *Grid) sync() bool {
	if g.src == nil {
		return false
	}
	if g.detached || g.src.Generation() != g.gen {
		debug.Log("grid", "source generation %d != %d, rebuilding", g.src.Generation(), g.gen)
		g.rebuild()
	}
	return !g.detached
}

// fail handles a write-back error. Stale refs and closed clips mean the
// source moved on without us, so resync.
func (g *Grid) fail(op string, err error) {
	debug.Log("grid", "%s failed: %v", op, err)
	if errors.Is(err, clip.ErrStaleRef) || errors.Is(err, clip.ErrClosed) {
		g.rebuild()
	}
}

func (g *Grid) addHandle(e clip.Event) *handle {
	g.nextID++
	n := note.New(e.Pitch, e.Velocity, e.Start, e.Length)
	n.ID = g.nextID
	h := &handle{note: n, ref: e.Ref}
	h.rect = g.rectOf(&h.note)
	g.handles = append(g.handles, h)
	g.byID[n.ID] = h
	return h
}

func (g *Grid) removeHandle(id note.ID) {
	delete(g.byID, id)
	for i, h := range g.handles {
		if h.note.ID == id {
			g.handles = append(g.handles[:i], g.handles[i+1:]...)
			return
		}
	}
}

func (g *Grid) rectOf(n *note.Note) geometry.Rect {
	return g.geom.NoteRect(n.Pitch(), n.Start(), n.Length())
}

// Handles returns a snapshot of every note in draw order.
func (g *Grid) Handles() []Handle {
	out := make([]Handle, 0, len(g.handles))
	for _, h := range g.handles {
		out = append(out, g.view(h))
	}
	return out
}

// Handle looks up one note by id.
func (g *Grid) Handle(id note.ID) (Handle, bool) {
	h, ok := g.byID[id]
	if !ok {
		return Handle{}, false
	}
	return g.view(h), true
}

// SelectedNotes returns the selected notes ordered by start, then pitch.
func (g *Grid) SelectedNotes() []Handle {
	var out []Handle
	for _, h := range g.handles {
		if h.note.IsSelected() {
			out = append(out, g.view(h))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Note.Start() != out[j].Note.Start() {
			return out[i].Note.Start() < out[j].Note.Start()
		}
		return out[i].Note.Pitch() < out[j].Note.Pitch()
	})
	return out
}

// Band returns the rubber-band rectangle while one is being dragged.
func (g *Grid) Band() (geometry.Rect, bool) {
	if g.state != RubberBandSelect || g.gesture == nil {
		return geometry.Rect{}, false
	}
	return g.gesture.band, true
}

func (g *Grid) view(h *handle) Handle {
	return Handle{
		ID:     h.note.ID,
		Ref:    h.ref,
		Note:   h.note,
		Rect:   h.rect,
		Moving: g.gesture != nil && g.gesture.involves(h.note.ID),
	}
}

func (g *Grid) selectedIDs() []note.ID {
	var ids []note.ID
	for _, h := range g.handles {
		if h.note.IsSelected() {
			ids = append(ids, h.note.ID)
		}
	}
	return ids
}

func (g *Grid) setSelection(ids map[note.ID]bool) {
	for _, h := range g.handles {
		if ids[h.note.ID] {
			h.note.Selection = note.Selected
		} else {
			h.note.Selection = note.None
		}
	}
}

// enter guards against re-entrant calls from inside the edit listener.
func (g *Grid) enter(op string) bool {
	if g.dispatching {
		debug.Log("grid", "ignored re-entrant %s", op)
		return false
	}
	g.dispatching = true
	return true
}

func (g *Grid) leave() {
	g.dispatching = false
}

func (g *Grid) emit(kind Kind, ids []note.ID) {
	debug.Log("grid", "edit %s %v", kind, ids)
	if g.listener != nil {
		g.listener(Event{Kind: kind, Notes: ids})
	}
}

func (g *Grid) sendAudition(typ uint8, pitch, velocity int) {
	err := g.audition.Send(midi.Event{
		Type:     typ,
		Note:     uint8(pitch),
		Velocity: uint8(velocity),
	})
	if err != nil {
		debug.Log("grid", "audition: %v", err)
	}
}

func sameIDs(a, b []note.ID) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
