package coord

import (
	"errors"
	"fmt"
	"math"
)

// Scale describes the linear scaling and distortion correction applied to
// every sample before it is sent to the projector.
type Scale struct {
	X, Y float64

	// Magnitude and Exponent shape the barrel correction. X is compressed by
	// Magnitude*|y|^Exponent where y is the distance from the center.
	Magnitude float64
	Exponent  float64
}

// DefaultScale leaves samples untouched.
var DefaultScale = Scale{X: 1, Y: 1, Exponent: 2}

// ErrDistortionRange is returned by Validate when the correction would flip
// or overflow the X axis at the edge of device space.
var ErrDistortionRange = errors.New("distortion magnitude and exponent out of range")

// Validate checks the correction against the extreme Y coordinate.
func (s Scale) Validate() error {
	if s.Magnitude*math.Pow(Max/2, s.Exponent) > 1 {
		return fmt.Errorf("%w: M=%g E=%g", ErrDistortionRange, s.Magnitude, s.Exponent)
	}
	return nil
}

// Identity reports whether Transform is a no-op.
func (s Scale) Identity() bool {
	return s.Magnitude == 0 && s.X == 1 && s.Y == 1
}

// Transform maps a requested sample to the point the projector should draw.
//
// Only X is corrected based on Y displacement. There is no symmetric Y term.
func (s Scale) Transform(p Point) Point {
	if s.Identity() {
		return p
	}
	d := p.Sub(Centered)

	xs := s.X
	if s.Magnitude != 0 {
		xs *= 1 - s.Magnitude*math.Pow(math.Abs(float64(d.Y)), s.Exponent)
	}

	return Point{
		X: Round(float64(d.X) * xs),
		Y: Round(float64(d.Y) * s.Y),
	}.Add(Centered)
}
