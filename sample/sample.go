package sample

import (
	"strconv"

	"github.com/mastercactapus/laserprint/coord"
)

// Sample is one projector record.
type Sample struct {
	coord.Point

	A, B    int
	Shutter bool

	// Interleave is always set by the G-code driver.
	Interleave bool
}

func clampAnalog(v int) int {
	if v < coord.Min {
		return coord.Min
	}
	if v > coord.Max {
		return coord.Max
	}
	return v
}

func flag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// String formats the sample as an `s=` record without the trailing newline.
func (s Sample) String() string {
	return "s=" + strconv.Itoa(s.X) + "," +
		strconv.Itoa(s.Y) + "," +
		strconv.Itoa(clampAnalog(s.A)) + "," +
		strconv.Itoa(clampAnalog(s.B)) + "," +
		flag(s.Shutter) + "," +
		flag(s.Interleave)
}
