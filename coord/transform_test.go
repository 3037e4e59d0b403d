package coord

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScale_TransformIdentity(t *testing.T) {
	s := Scale{X: 1, Y: 1, Exponent: 2}
	for _, p := range []Point{{0, 0}, {4095, 4095}, {2048, 2048}, {17, 4000}, {4095, 0}} {
		assert.Equal(t, p, s.Transform(p))
	}

	// off-canvas input is not pulled into range
	assert.Equal(t, Point{X: -1, Y: 4096}, s.Transform(Point{X: -1, Y: 4096}))
}

func TestScale_TransformLinear(t *testing.T) {
	s := Scale{X: 0.5, Y: 0.972, Exponent: 2}

	assert.Equal(t, Centered, s.Transform(Centered))
	// 1000 right of center at half scale
	assert.Equal(t, Point{X: 2548, Y: 2048}, s.Transform(Point{X: 3048, Y: 2048}))
	// 1000 below center: 972 exactly
	assert.Equal(t, Point{X: 2048, Y: 3020}, s.Transform(Point{X: 2048, Y: 3048}))
	// -1000 * 0.5 = -500, shifts back to 1548
	assert.Equal(t, Point{X: 1548, Y: 2048}, s.Transform(Point{X: 1048, Y: 2048}))
	// ties round away from zero on both sides of center
	assert.Equal(t, Point{X: 2050, Y: 2048}, Scale{X: 0.5, Y: 1}.Transform(Point{X: 2051, Y: 2048}))
	assert.Equal(t, Point{X: 2046, Y: 2048}, Scale{X: 0.5, Y: 1}.Transform(Point{X: 2045, Y: 2048}))
}

func TestScale_TransformDistortion(t *testing.T) {
	s := Scale{X: 1, Y: 1, Magnitude: 1e-7, Exponent: 2}

	// no Y displacement means no X compression
	assert.Equal(t, Point{X: 3048, Y: 2048}, s.Transform(Point{X: 3048, Y: 2048}))

	// y displaced by 1000: x scale = 1 - 1e-7*1e6 = 0.9
	assert.Equal(t, Point{X: 2948, Y: 3048}, s.Transform(Point{X: 3048, Y: 3048}))
	assert.Equal(t, Point{X: 2948, Y: 1048}, s.Transform(Point{X: 3048, Y: 1048}))

	// X displacement never affects Y
	assert.Equal(t, Point{X: 2048, Y: 3048}, s.Transform(Point{X: 2048, Y: 3048}))
	assert.Equal(t, Point{X: 4048, Y: 2048}, s.Transform(Point{X: 4048, Y: 2048}))
}

func TestScale_TransformPure(t *testing.T) {
	s := Scale{X: 0.98, Y: 0.972, Magnitude: 5e-8, Exponent: 2}
	p := Point{X: 3500, Y: 600}

	first := s.Transform(p)
	for i := 0; i < 100; i++ {
		assert.Equal(t, first, s.Transform(p))
	}
	assert.Equal(t, Scale{X: 0.98, Y: 0.972, Magnitude: 5e-8, Exponent: 2}, s)
}

func TestScale_Validate(t *testing.T) {
	assert.NoError(t, DefaultScale.Validate())
	assert.NoError(t, Scale{X: 1, Y: 1, Magnitude: 1e-7, Exponent: 2}.Validate())

	err := Scale{X: 1, Y: 1, Magnitude: 1e-6, Exponent: 2}.Validate()
	assert.ErrorIs(t, err, ErrDistortionRange)

	err = Scale{X: 1, Y: 1, Magnitude: 1e-8, Exponent: 3}.Validate()
	assert.ErrorIs(t, err, ErrDistortionRange)
}
