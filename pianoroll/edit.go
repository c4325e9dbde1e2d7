package pianoroll

import (
	"errors"

	"go-pianoroll/clip"
	"go-pianoroll/debug"
	"go-pianoroll/note"
)

// DoubleClick on empty background creates a note at the clicked pitch,
// starting at the quantize cell under the pointer. Double-clicks on a
// note do nothing.
func (g *Grid) DoubleClick(p Point) {
	if !g.enter("double click") {
		return
	}
	defer g.leave()

	if g.gesture != nil {
		g.finish(g.gesture.last)
	}
	if !g.sync() {
		return
	}
	if h, _ := g.hit(p); h != nil {
		return
	}
	if p.X < 0 || p.Y < 0 || p.Y >= g.geom.Height() {
		return
	}

	n := note.New(
		g.geom.YToPitch(p.Y),
		g.cfg.DefaultVelocity,
		note.FloorTicks(g.geom.XToTicks(p.X), g.quant.Ticks()),
		g.cfg.DefaultLength,
	)
	ref, err := g.src.AddNote(n.Pitch(), n.Start(), n.Length(), n.Velocity())
	if err != nil {
		g.fail("add note", err)
		return
	}
	h := g.addHandle(clip.Event{
		Ref:      ref,
		Pitch:    n.Pitch(),
		Velocity: n.Velocity(),
		Start:    n.Start(),
		Length:   n.Length(),
	})
	g.emit(Create, []note.ID{h.note.ID})
}

// DeleteSelected removes every selected note from the grid and the
// source. Any gesture in flight is dropped.
func (g *Grid) DeleteSelected() {
	if !g.enter("delete") {
		return
	}
	defer g.leave()

	g.endGesture()
	if !g.sync() {
		return
	}

	var removed []note.ID
	for _, id := range g.selectedIDs() {
		h := g.byID[id]
		err := g.src.RemoveNote(h.ref)
		if err != nil && !errors.Is(err, clip.ErrStaleRef) {
			g.fail("remove note", err)
			break
		}
		g.removeHandle(id)
		removed = append(removed, id)
	}
	if len(removed) > 0 {
		g.emit(Delete, removed)
	}
}

// NudgeSelected moves the selection by whole ticks and semitones.
func (g *Grid) NudgeSelected(dTicks, dPitch int) {
	g.editSelected("nudge", Move, func(n *note.Note) {
		n.SetPitch(n.Pitch() + dPitch)
		n.SetStartAndLength(n.Start()+dTicks, n.Length())
	})
}

// QuantizeSelected snaps starts and lengths of the selection.
func (g *Grid) QuantizeSelected() {
	q := g.quant.Ticks()
	g.editSelected("quantize", Quantize, func(n *note.Note) {
		n.Quantize(q, true, true)
	})
}

// editSelected applies fn to each selected note and writes back only
// the ones that changed.
func (g *Grid) editSelected(op string, kind Kind, fn func(n *note.Note)) {
	if !g.enter(op) {
		return
	}
	defer g.leave()

	if g.gesture != nil || !g.sync() {
		return
	}

	var changed []note.ID
	for _, h := range g.handles {
		if !h.note.IsSelected() {
			continue
		}
		n := h.note
		fn(&n)
		if n.Compare(&h.note, false) {
			continue
		}
		if err := g.writeBack(h, n); err != nil {
			g.fail(op, err)
			return
		}
		h.note = n
		h.rect = g.rectOf(&h.note)
		changed = append(changed, n.ID)
	}
	if len(changed) > 0 {
		g.emit(kind, changed)
	}
}

func (g *Grid) writeBack(h *handle, n note.Note) error {
	if n.Pitch() != h.note.Pitch() {
		if err := g.src.SetPitch(h.ref, n.Pitch()); err != nil {
			return err
		}
	}
	if n.Start() != h.note.Start() || n.Length() != h.note.Length() {
		if err := g.src.SetStartAndLength(h.ref, n.Start(), n.Length()); err != nil {
			return err
		}
	}
	if n.Velocity() != h.note.Velocity() {
		if err := g.src.SetVelocity(h.ref, n.Velocity()); err != nil {
			return err
		}
	}
	return nil
}

// SelectAll selects every note.
func (g *Grid) SelectAll() {
	all := make(map[note.ID]bool, len(g.handles))
	for _, h := range g.handles {
		all[h.note.ID] = true
	}
	g.replaceSelection("select all", all)
}

// ClearSelection deselects every note.
func (g *Grid) ClearSelection() {
	g.replaceSelection("clear selection", nil)
}

func (g *Grid) replaceSelection(op string, ids map[note.ID]bool) {
	if !g.enter(op) {
		return
	}
	defer g.leave()

	if g.gesture != nil {
		return
	}
	before := g.selectedIDs()
	g.setSelection(ids)
	after := g.selectedIDs()
	if sameIDs(before, after) {
		return
	}
	debug.Log("grid", "%s: %d selected", op, len(after))
	g.emit(Select, after)
}
