package geometry

import "math"

// TicksPerQuarter is the tick resolution of every note position.
const TicksPerQuarter = 480

// NumPitches is the MIDI pitch range shown on the grid (0-127).
const NumPitches = 128

// rowEpsilon absorbs float error in y/RowHeight at row boundaries.
const rowEpsilon = 1e-9

// Zoom floors. Non-positive zoom values are clamped up to these.
const (
	MinPixelsPerBar = 1.0
	MinRowHeight    = 1.0
)

// TimeSignature holds beats per bar and the beat unit (4 = quarter note)
type TimeSignature struct {
	BeatsPerBar int `json:"beatsPerBar"`
	BeatUnit    int `json:"beatUnit"`
}

// CommonTime is 4/4
var CommonTime = TimeSignature{BeatsPerBar: 4, BeatUnit: 4}

// TicksPerBar returns the bar length in ticks. A zero or negative
// signature falls back to 4/4.
func (ts TimeSignature) TicksPerBar() int {
	ts = ts.normalized()
	return ts.BeatsPerBar * 4 * TicksPerQuarter / ts.BeatUnit
}

func (ts TimeSignature) normalized() TimeSignature {
	if ts.BeatsPerBar <= 0 || ts.BeatUnit <= 0 {
		return CommonTime
	}
	return ts
}

// Geometry maps between pixel space and musical time/pitch space.
// The zero value is not usable; construct with New.
type Geometry struct {
	PixelsPerBar float64
	RowHeight    float64
	TicksPerBar  int
}

// New builds a Geometry, clamping invalid zoom parameters.
func New(pixelsPerBar, rowHeight float64, ts TimeSignature) Geometry {
	if pixelsPerBar < MinPixelsPerBar || math.IsNaN(pixelsPerBar) {
		pixelsPerBar = MinPixelsPerBar
	}
	if rowHeight < MinRowHeight || math.IsNaN(rowHeight) {
		rowHeight = MinRowHeight
	}
	return Geometry{
		PixelsPerBar: pixelsPerBar,
		RowHeight:    rowHeight,
		TicksPerBar:  ts.TicksPerBar(),
	}
}

// Height is the full grid height in pixels: one row per pitch.
func (g Geometry) Height() float64 {
	return NumPitches * g.RowHeight
}

// BeatsToX converts quarter-note beats to a pixel x offset.
func (g Geometry) BeatsToX(beats float64) float64 {
	return beats * TicksPerQuarter / float64(g.TicksPerBar) * g.PixelsPerBar
}

// XToBeats converts a pixel x offset to quarter-note beats.
func (g Geometry) XToBeats(x float64) float64 {
	return x / g.PixelsPerBar * float64(g.TicksPerBar) / TicksPerQuarter
}

// TicksToX converts ticks to a pixel x offset.
func (g Geometry) TicksToX(ticks int) float64 {
	return g.BeatsToX(float64(ticks) / TicksPerQuarter)
}

// XToTicks converts a pixel x offset to the nearest tick.
func (g Geometry) XToTicks(x float64) int {
	return int(math.Round(g.XToBeats(x) * TicksPerQuarter))
}

// PitchToY returns the top edge of the pitch's row. Pitch 127 is the top
// row, pitch 0 the bottom one.
func (g Geometry) PitchToY(pitch int) float64 {
	return g.Height() - float64(pitch)*g.RowHeight - g.RowHeight
}

// YToPitch returns the pitch whose row contains y. Results outside
// 0-127 are possible for y outside the grid; callers clamp.
func (g Geometry) YToPitch(y float64) int {
	return NumPitches - 1 - int(math.Floor(y/g.RowHeight+rowEpsilon))
}

// RowAt returns the pitch whose row top is nearest to y. Dragged notes
// use this so a note lands on the row it visually overlaps most.
func (g Geometry) RowAt(y float64) int {
	return g.YToPitch(y + g.RowHeight/2)
}

// Rect is an axis-aligned pixel rectangle
type Rect struct {
	X, Y, W, H float64
}

// Right edge
func (r Rect) Right() float64 { return r.X + r.W }

// Bottom edge
func (r Rect) Bottom() float64 { return r.Y + r.H }

// Contains reports whether the point lies inside r. Both x edges are
// inclusive; the bottom edge belongs to the row below.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.Right() && y >= r.Y && y < r.Bottom()
}

// Intersects reports whether the two rectangles overlap with positive area.
func (r Rect) Intersects(o Rect) bool {
	if r.W <= 0 || r.H <= 0 || o.W <= 0 || o.H <= 0 {
		return false
	}
	return r.X < o.Right() && o.X < r.Right() && r.Y < o.Bottom() && o.Y < r.Bottom()
}

// Span returns the normalized rectangle spanning two corner points,
// whichever quadrant b lies in relative to a.
func Span(ax, ay, bx, by float64) Rect {
	return Rect{
		X: math.Min(ax, bx),
		Y: math.Min(ay, by),
		W: math.Abs(bx - ax),
		H: math.Abs(by - ay),
	}
}

// NoteRect returns the pixel rectangle of a note.
func (g Geometry) NoteRect(pitch, start, length int) Rect {
	return Rect{
		X: g.TicksToX(start),
		Y: g.PitchToY(pitch),
		W: g.TicksToX(length),
		H: g.RowHeight,
	}
}
