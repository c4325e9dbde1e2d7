package note

import (
	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"

	"go-pianoroll/geometry"
)

// Unit is a quantize grain
type Unit int

const (
	Whole Unit = iota
	Half
	Quarter
	Eighth
	Sixteenth
	ThirtySecond
	QuarterTriplet
	EighthTriplet
	SixteenthTriplet
	numUnits
)

var unitTicks = [numUnits]int{
	Whole:            4 * geometry.TicksPerQuarter,
	Half:             2 * geometry.TicksPerQuarter,
	Quarter:          geometry.TicksPerQuarter,
	Eighth:           geometry.TicksPerQuarter / 2,
	Sixteenth:        geometry.TicksPerQuarter / 4,
	ThirtySecond:     geometry.TicksPerQuarter / 8,
	QuarterTriplet:   geometry.TicksPerQuarter * 2 / 3,
	EighthTriplet:    geometry.TicksPerQuarter / 3,
	SixteenthTriplet: geometry.TicksPerQuarter / 6,
}

var unitIDs = [numUnits]string{
	Whole:            "1/1",
	Half:             "1/2",
	Quarter:          "1/4",
	Eighth:           "1/8",
	Sixteenth:        "1/16",
	ThirtySecond:     "1/32",
	QuarterTriplet:   "1/4T",
	EighthTriplet:    "1/8T",
	SixteenthTriplet: "1/16T",
}

// Units lists every known unit, coarse to fine straight units first.
func Units() []Unit {
	out := make([]Unit, 0, numUnits)
	for u := Whole; u < numUnits; u++ {
		out = append(out, u)
	}
	return out
}

// Valid reports whether u is a known unit.
func (u Unit) Valid() bool {
	return u >= Whole && u < numUnits
}

// Ticks returns the unit length in ticks, or 0 for an unknown unit.
func (u Unit) Ticks() int {
	if !u.Valid() {
		return 0
	}
	return unitTicks[u]
}

func (u Unit) String() string {
	if !u.Valid() {
		return "invalid"
	}
	return unitIDs[u]
}

// Finer returns the next finer straight unit, or u at the finest.
func (u Unit) Finer() Unit {
	if u < ThirtySecond {
		return u + 1
	}
	return u
}

// Coarser returns the next coarser straight unit, or u at the coarsest.
func (u Unit) Coarser() Unit {
	if u > Whole && u <= ThirtySecond {
		return u - 1
	}
	return u
}

// ParseUnit looks up a unit by id ("1/16", "1/8T", ...).
func ParseUnit(id string) (Unit, error) {
	for u, s := range unitIDs {
		if s == id {
			return Unit(u), nil
		}
	}
	return 0, fault.New("unknown quantize unit "+id,
		ftag.With(ftag.InvalidArgument),
		fmsg.WithDesc("unknown quantize unit", "Quantize must be one of 1/1, 1/2, 1/4, 1/8, 1/16, 1/32, 1/4T, 1/8T, 1/16T"))
}

// CheckUnit returns an InvalidArgument fault for unknown units.
func CheckUnit(u Unit) error {
	if u.Valid() {
		return nil
	}
	return fault.New("quantize unit out of range",
		ftag.With(ftag.InvalidArgument),
		fmsg.WithDesc("quantize unit out of range", "Unknown quantize setting"))
}
