package note

// Domain bounds
const (
	MinPitch    = 0
	MaxPitch    = 127
	MinVelocity = 1
	MaxVelocity = 127
	MinLength   = 1
)

// Selection is the selection state of a note on the grid
type Selection int

const (
	None Selection = iota
	Selected
)

func (s Selection) String() string {
	if s == Selected {
		return "selected"
	}
	return "none"
}

// ID identifies a note entity for the lifetime of one grid build
type ID uint64

// Note is one note event on the grid. Fields are kept in int so that
// arithmetic on them never wraps; setters clamp into the domain.
type Note struct {
	ID         ID
	pitch      int
	velocity   int
	start      int
	length     int
	Selection  Selection
	Generative bool // display hint only
}

// New creates a note with every value clamped into its domain.
func New(pitch, velocity, start, length int) Note {
	var n Note
	n.SetPitch(pitch)
	n.SetVelocity(velocity)
	n.SetStartAndLength(start, length)
	return n
}

func (n Note) Pitch() int    { return n.pitch }
func (n Note) Velocity() int { return n.velocity }
func (n Note) Start() int    { return n.start }
func (n Note) Length() int   { return n.length }

// End is the tick just past the note.
func (n Note) End() int { return n.start + n.length }

func (n Note) IsSelected() bool { return n.Selection == Selected }

// SetPitch clamps v into 0-127.
func (n *Note) SetPitch(v int) {
	n.pitch = ClampPitch(v)
}

// SetVelocity clamps v into 1-127.
func (n *Note) SetVelocity(v int) {
	n.velocity = ClampVelocity(v)
}

// SetStartAndLength clamps start to >= 0 and length to >= 1.
func (n *Note) SetStartAndLength(start, length int) {
	n.start, n.length = ClampTime(start, length)
}

func ClampPitch(p int) int    { return clamp(p, MinPitch, MaxPitch) }
func ClampVelocity(v int) int { return clamp(v, MinVelocity, MaxVelocity) }

// ClampTime clamps start to >= 0 and length to >= 1.
func ClampTime(start, length int) (int, int) {
	if start < 0 {
		start = 0
	}
	if length < MinLength {
		length = MinLength
	}
	return start, length
}

// Compare reports structural equality of pitch, velocity, start and
// length. With includeIdentity the IDs must match as well.
func (n *Note) Compare(other *Note, includeIdentity bool) bool {
	if other == nil {
		return false
	}
	if includeIdentity && n.ID != other.ID {
		return false
	}
	return n.pitch == other.pitch &&
		n.velocity == other.velocity &&
		n.start == other.start &&
		n.length == other.length
}

// Quantize snaps start and/or length to multiples of q ticks.
// A zero quantized length becomes q. q <= 0 is a no-op.
func (n *Note) Quantize(q int, quantizeStart, quantizeLength bool) {
	if q <= 0 {
		return
	}
	start, length := n.start, n.length
	if quantizeStart {
		start = QuantizeTicks(start, q)
	}
	if quantizeLength {
		length = QuantizeTicks(length, q)
		if length == 0 {
			length = q
		}
	}
	n.SetStartAndLength(start, length)
}

// QuantizeTicks rounds v to the nearest multiple of q. Exact ties go to
// the upper multiple. Negative v is treated as 0.
func QuantizeTicks(v, q int) int {
	if q <= 0 {
		return v
	}
	if v < 0 {
		v = 0
	}
	lower := v / q * q
	upper := lower + q
	if v-lower < upper-v {
		return lower
	}
	return upper
}

// FloorTicks rounds v down to a multiple of q.
func FloorTicks(v, q int) int {
	if q <= 0 {
		return v
	}
	if v < 0 {
		return 0
	}
	return v / q * q
}

// ClampByte converts a raw wire byte that may have wrapped below zero.
// Bytes at 0xF0 or above are treated as underflow and clamp to lo, other
// out-of-range values clamp to hi.
func ClampByte(b uint8, lo, hi int) int {
	if b >= 0xF0 {
		return lo
	}
	return clamp(int(b), lo, hi)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
