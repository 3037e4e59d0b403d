package coord

// Device space is the projector's native 12-bit range on each axis.
const (
	Min    = 0
	Max    = 4095
	Res    = Max + 1
	Center = Res / 2
)

// Point is a position in device space.
type Point struct{ X, Y int }

// Centered is the middle of device space.
var Centered = Point{X: Center, Y: Center}

func (p Point) Equal(b Point) bool {
	return p.X == b.X && p.Y == b.Y
}

// Add will add the target values to p.
func (p Point) Add(target Point) Point {
	p.X += target.X
	p.Y += target.Y
	return p
}

// Sub will subtract the target values from p.
func (p Point) Sub(target Point) Point {
	p.X -= target.X
	p.Y -= target.Y
	return p
}

// InBounds reports whether p can be drawn by the projector.
func (p Point) InBounds() bool {
	return p.X >= Min && p.X <= Max && p.Y >= Min && p.Y <= Max
}

// Round returns the nearest integer to v, with ties going away from zero.
//
// The truncating conversion is intentional; it keeps output identical to
// existing calibration data.
func Round(v float64) int {
	if v < 0 {
		return int(v - 0.5)
	}
	return int(v + 0.5)
}

// Pixelize converts a bed position in mm to device space, where dim is the
// full-scale size of the bed in mm. The bed origin maps to the center.
func Pixelize(mm, dim float64) int {
	v := float32(mm)*Res/float32(dim) + Res/2
	return Round(float64(v))
}

// PixelizeDelta converts a relative distance in mm to device units.
func PixelizeDelta(mm, dim float64) int {
	v := float32(mm) * Res / float32(dim)
	return Round(float64(v))
}
