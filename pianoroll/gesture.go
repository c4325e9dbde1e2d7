package pianoroll

import (
	"math"

	"go-pianoroll/debug"
	"go-pianoroll/geometry"
	"go-pianoroll/midi"
	"go-pianoroll/note"
)

// gesture is the state captured at pointer-down and thrown away at
// pointer-up. Nothing in here outlives one gesture.
type gesture struct {
	kind State
	down Point
	last Point
	mods Modifiers

	target   note.ID // pressed note, 0 on background
	before   []note.ID
	collapse bool // plain click: select only target if nothing moved

	moves  []moveCapture // moves[0] is the primary
	widths []widthCapture

	startVelocity int
	auditioned    int // pitch sounding, -1 for none

	band geometry.Rect
}

type moveCapture struct {
	id     note.ID
	origin geometry.Rect
	moved  bool
}

type widthCapture struct {
	id      note.ID
	width   float64
	changed bool
}

func (gs *gesture) involves(id note.ID) bool {
	for _, m := range gs.moves {
		if m.id == id && m.moved {
			return true
		}
	}
	for _, w := range gs.widths {
		if w.id == id && w.changed {
			return true
		}
	}
	return gs.kind == VelocityDrag && gs.target == id
}

// PointerDown starts a gesture.
func (g *Grid) PointerDown(p Point, mods Modifiers) {
	if !g.enter("pointer down") {
		return
	}
	defer g.leave()

	// A press without a release finishes the previous gesture where the
	// pointer was last seen.
	if g.gesture != nil {
		g.finish(g.gesture.last)
	}
	if !g.sync() {
		return
	}

	gs := &gesture{
		down:       p,
		last:       p,
		mods:       mods,
		before:     g.selectedIDs(),
		auditioned: -1,
	}

	h, onEdge := g.hit(p)
	switch {
	case h == nil:
		g.beginBand(gs)
	case onEdge:
		g.press(gs, h)
		g.beginResize(gs, h)
	case mods.Has(ModVelocity):
		g.press(gs, h)
		g.beginVelocity(gs, h)
	default:
		g.press(gs, h)
		g.beginDrag(gs, h)
	}
	g.gesture = gs
	g.setState(gs.kind)
}

// PointerMove updates the gesture in flight. Cumulative deltas are
// measured from the press point, never from the previous move.
func (g *Grid) PointerMove(p Point) {
	if !g.enter("pointer move") {
		return
	}
	defer g.leave()

	gs := g.gesture
	if gs == nil {
		return
	}
	debug.LogEvery(30, "grid", "move %s to %.0f,%.0f", gs.kind, p.X, p.Y)
	g.track(gs, p)
}

// PointerUp commits the gesture in flight and returns to Idle.
func (g *Grid) PointerUp(p Point) {
	if !g.enter("pointer up") {
		return
	}
	defer g.leave()
	g.finish(p)
}

func (g *Grid) finish(p Point) {
	gs := g.gesture
	if gs == nil {
		return
	}
	g.track(gs, p)

	if g.src == nil || g.src.Generation() != g.gen {
		// The clip changed under the gesture; nothing we captured is
		// valid any more.
		g.rebuild()
		return
	}

	var ev *Event
	switch gs.kind {
	case RubberBandSelect:
		ev = g.commitBand(gs)
	case SingleDrag, MultiDrag:
		ev = g.commitDrag(gs)
	case ResizeDrag:
		ev = g.commitResize(gs)
	case VelocityDrag:
		ev = g.commitVelocity(gs)
	}
	if g.gesture == nil {
		// rebuilt on a failed write-back
		return
	}

	if ev == nil && gs.collapse {
		g.setSelection(map[note.ID]bool{gs.target: true})
	}
	if ev == nil && !sameIDs(gs.before, g.selectedIDs()) {
		ev = &Event{Kind: Select, Notes: g.selectedIDs()}
	}

	g.endGesture()
	if ev != nil {
		g.emit(ev.Kind, ev.Notes)
	}
}

func (g *Grid) track(gs *gesture, p Point) {
	gs.last = p
	switch gs.kind {
	case RubberBandSelect:
		gs.band = geometry.Span(gs.down.X, gs.down.Y, p.X, p.Y)
	case SingleDrag, MultiDrag:
		g.dragTo(gs, p)
	case ResizeDrag:
		g.resizeTo(gs, p)
	case VelocityDrag:
		g.velocityTo(gs, p)
	}
}

// endGesture drops captured state, silences the audition and snaps every
// visual back onto its note.
func (g *Grid) endGesture() {
	if gs := g.gesture; gs != nil && gs.auditioned >= 0 {
		g.sendAudition(midi.NoteOff, gs.auditioned, 0)
	}
	g.gesture = nil
	for _, h := range g.handles {
		h.rect = g.rectOf(&h.note)
	}
	g.setState(Idle)
}

func (g *Grid) setState(s State) {
	if g.state != s {
		debug.Log("grid", "state %s -> %s", g.state, s)
	}
	g.state = s
}

// hit finds the topmost note under p and whether p is on its resize edge.
func (g *Grid) hit(p Point) (*handle, bool) {
	for i := len(g.handles) - 1; i >= 0; i-- {
		h := g.handles[i]
		if !h.rect.Contains(p.X, p.Y) {
			continue
		}
		// Short notes keep half their width draggable
		edge := math.Min(ResizeEdge, h.rect.W/2)
		return h, p.X >= h.rect.Right()-edge
	}
	return nil, false
}

// press applies click selection to the pressed note. A plain click only
// collapses the selection once we know no multi-note gesture happened.
func (g *Grid) press(gs *gesture, h *handle) {
	gs.target = h.note.ID
	gs.collapse = !gs.mods.Has(ModAdd)
	h.note.Selection = note.Selected
}

func (g *Grid) beginBand(gs *gesture) {
	gs.kind = RubberBandSelect
	if !gs.mods.Has(ModAdd) {
		g.setSelection(nil)
	}
	gs.band = geometry.Rect{X: gs.down.X, Y: gs.down.Y}
}

func (g *Grid) beginDrag(gs *gesture, primary *handle) {
	gs.moves = append(gs.moves, moveCapture{id: primary.note.ID, origin: primary.rect})
	for _, h := range g.handles {
		if h != primary && h.note.IsSelected() {
			gs.moves = append(gs.moves, moveCapture{id: h.note.ID, origin: h.rect})
		}
	}
	gs.kind = SingleDrag
	if len(gs.moves) > 1 {
		gs.kind = MultiDrag
	}
	gs.auditioned = primary.note.Pitch()
	g.sendAudition(midi.NoteOn, primary.note.Pitch(), primary.note.Velocity())
}

func (g *Grid) beginResize(gs *gesture, clicked *handle) {
	gs.kind = ResizeDrag
	for _, h := range g.handles {
		if h == clicked || h.note.IsSelected() {
			gs.widths = append(gs.widths, widthCapture{id: h.note.ID, width: h.rect.W})
		}
	}
}

func (g *Grid) beginVelocity(gs *gesture, h *handle) {
	gs.kind = VelocityDrag
	gs.startVelocity = h.note.Velocity()
	gs.auditioned = h.note.Pitch()
	g.sendAudition(midi.NoteOn, h.note.Pitch(), h.note.Velocity())
}

// dragTo moves the primary under the pointer and shifts each follower by
// the same raw delta from its own frozen origin. Followers only count as
// moved once past the jitter deadband.
func (g *Grid) dragTo(gs *gesture, p Point) {
	dx, dy := p.X-gs.down.X, p.Y-gs.down.Y
	past := math.Abs(dx) > DragDeadband || math.Abs(dy) > DragDeadband

	for i := range gs.moves {
		m := &gs.moves[i]
		h := g.byID[m.id]
		if h == nil {
			continue
		}
		if past {
			m.moved = true
		}
		if i == 0 || m.moved {
			h.rect.X = m.origin.X + dx
			h.rect.Y = m.origin.Y + dy
		}
	}

	if h := g.byID[gs.moves[0].id]; h != nil && gs.auditioned >= 0 {
		if pitch := note.ClampPitch(g.geom.RowAt(h.rect.Y)); pitch != gs.auditioned {
			g.sendAudition(midi.NoteOff, gs.auditioned, 0)
			g.sendAudition(midi.NoteOn, pitch, h.note.Velocity())
			gs.auditioned = pitch
		}
	}
}

// resizeTo applies capturedWidth - delta, where delta runs from the
// pointer back to the press point, so dragging right widens.
func (g *Grid) resizeTo(gs *gesture, p Point) {
	delta := gs.down.X - p.X
	for i := range gs.widths {
		w := &gs.widths[i]
		h := g.byID[w.id]
		if h == nil {
			continue
		}
		candidate := w.width - delta
		if candidate <= MinResizeWidth {
			continue
		}
		h.rect.W = candidate
		if candidate != w.width {
			w.changed = true
		}
	}
}

func (g *Grid) velocityTo(gs *gesture, p Point) {
	h := g.byID[gs.target]
	if h == nil {
		return
	}
	dy := p.Y - gs.down.Y
	h.note.SetVelocity(int(math.Round(float64(gs.startVelocity) - VelocityPerPx*dy)))
}

func (g *Grid) commitBand(gs *gesture) *Event {
	keep := make(map[note.ID]bool)
	if gs.mods.Has(ModAdd) {
		for _, id := range gs.before {
			keep[id] = true
		}
	}
	for _, h := range g.handles {
		if h.rect.Intersects(gs.band) {
			keep[h.note.ID] = true
		}
	}
	g.setSelection(keep)
	return &Event{Kind: Select, Notes: g.selectedIDs()}
}

func (g *Grid) commitDrag(gs *gesture) *Event {
	var changed []note.ID
	for _, m := range gs.moves {
		h := g.byID[m.id]
		if h == nil || !m.moved {
			continue
		}
		gs.collapse = false
		n := h.note
		n.SetPitch(g.geom.RowAt(h.rect.Y))
		n.SetStartAndLength(g.geom.XToTicks(h.rect.X), n.Length())
		n.Quantize(g.quant.Ticks(), true, false)
		if n.Compare(&h.note, false) {
			continue
		}
		if err := g.writeBack(h, n); err != nil {
			g.fail("move", err)
			return nil
		}
		h.note = n
		changed = append(changed, n.ID)
	}
	if len(changed) == 0 {
		return nil
	}
	return &Event{Kind: Move, Notes: changed}
}

func (g *Grid) commitResize(gs *gesture) *Event {
	var changed []note.ID
	for _, w := range gs.widths {
		h := g.byID[w.id]
		if h == nil || !w.changed {
			continue
		}
		gs.collapse = false
		n := h.note
		n.SetStartAndLength(n.Start(), g.geom.XToTicks(h.rect.W))
		n.Quantize(g.quant.Ticks(), false, true)
		if n.Length() == h.note.Length() {
			continue
		}
		if err := g.writeBack(h, n); err != nil {
			g.fail("resize", err)
			return nil
		}
		h.note = n
		changed = append(changed, n.ID)
	}
	if len(changed) == 0 {
		return nil
	}
	return &Event{Kind: Resize, Notes: changed}
}

func (g *Grid) commitVelocity(gs *gesture) *Event {
	h := g.byID[gs.target]
	if h == nil || h.note.Velocity() == gs.startVelocity {
		return nil
	}
	if err := g.src.SetVelocity(h.ref, h.note.Velocity()); err != nil {
		h.note.SetVelocity(gs.startVelocity)
		g.fail("set velocity", err)
		return nil
	}
	gs.collapse = false
	return &Event{Kind: VelocityChange, Notes: []note.ID{h.note.ID}}
}
