package vm

import (
	"testing"
	"time"

	"github.com/mastercactapus/laserprint/coord"
	"github.com/mastercactapus/laserprint/gcode"
	"github.com/stretchr/testify/assert"
)

func step(m *Machine, s State, line string) (State, Effect) {
	return m.Step(s, gcode.ParseLine(line))
}

func TestMachine_MotionAbsolute(t *testing.T) {
	m := NewMachine(DefaultConfig)
	s := NewState()
	s.Pos = coord.Centered

	s, e := step(m, s, "G1 X10 Y10 E1")
	assert.Equal(t, RasterMove{
		From:    coord.Centered,
		To:      coord.Point{X: coord.Pixelize(10, 110.485), Y: coord.Pixelize(-10, 110.485)},
		Shutter: true,
	}, e)
	assert.Equal(t, coord.Point{X: 2419, Y: 1677}, s.Pos)
	assert.Equal(t, 1.0, s.E)

	// same E: travel move with the beam off
	s, e = step(m, s, "G0 X0 E1")
	assert.Equal(t, RasterMove{From: coord.Point{X: 2419, Y: 1677}, To: coord.Point{X: 2048, Y: 1677}}, e)

	// retraction keeps the beam off but is still tracked
	s, e = step(m, s, "G1 Y0 E0.5 F3000")
	assert.False(t, e.(RasterMove).Shutter)
	assert.Equal(t, 0.5, s.E)
	assert.Equal(t, 3000.0, s.Feed)
	assert.Equal(t, coord.Centered, s.Pos)
}

func TestMachine_MotionRelative(t *testing.T) {
	m := NewMachine(DefaultConfig)
	s := NewState()
	s.Pos = coord.Centered

	s, e := step(m, s, "G91")
	assert.True(t, s.Relative)
	assert.Equal(t, SerialFrame{Line: "G91"}, e)

	s, e = step(m, s, "G1 X10 Y10")
	assert.Equal(t, RasterMove{From: coord.Centered, To: coord.Point{X: 2048 + 371, Y: 2048 - 371}}, e)

	s, _ = step(m, s, "G1 X-10")
	assert.Equal(t, coord.Point{X: 2048, Y: 2048 - 371}, s.Pos)

	s, e = step(m, s, "G90")
	assert.False(t, s.Relative)
	assert.Equal(t, SerialFrame{Line: "G90"}, e)
}

func TestMachine_ZMove(t *testing.T) {
	m := NewMachine(DefaultConfig)
	s := NewState()

	next, e := step(m, s, "G1 Z0.2 F1200")
	assert.Equal(t, SerialFrame{Line: "G1 Z0.2 F1200", Wait: 10 * time.Second}, e)
	assert.Equal(t, s.Pos, next.Pos)

	// X/Y on a Z line are forwarded, not drawn
	next, e = step(m, s, "G1 X10 Z0.4 E2")
	assert.Equal(t, SerialFrame{Line: "G1 X10 Z0.4 E2", Wait: 10 * time.Second}, e)
	assert.Equal(t, s.Pos, next.Pos)
	assert.Equal(t, 2.0, next.E)

	s.Overexpose = true
	_, e = step(m, s, "G1 Z0.2")
	assert.Equal(t, SerialFrame{Line: "G1 Z0.2", Wait: 30 * time.Second}, e)
}

func TestMachine_Home(t *testing.T) {
	m := NewMachine(DefaultConfig)
	s := NewState()
	s.Pos = coord.Point{X: 5, Y: 6}

	next, e := step(m, s, "G28 Z")
	assert.Equal(t, SerialFrame{Line: "G28 Z", Wait: 5 * time.Second, Blank: true}, e)
	assert.Equal(t, s, next)
}

func TestMachine_SetPosition(t *testing.T) {
	m := NewMachine(DefaultConfig)
	s := NewState()
	s.E = 42

	s, e := step(m, s, "G92 E0")
	assert.Equal(t, NoOp{}, e)
	assert.Equal(t, 0.0, s.E)

	s, _ = step(m, s, "G92 X5")
	assert.Equal(t, 0.0, s.E)
}

func TestMachine_Machine(t *testing.T) {
	m := NewMachine(DefaultConfig)
	s := NewState()

	next, e := step(m, s, "M84 ; motors off")
	assert.Equal(t, SerialFrame{Line: "M84 ; motors off"}, e)
	assert.Equal(t, s, next)
}

func TestMachine_Layers(t *testing.T) {
	m := NewMachine(DefaultConfig)
	s := NewState()

	s, e := step(m, s, ";LAYER:2")
	assert.Equal(t, NoOp{}, e)
	assert.True(t, s.Overexpose)
	assert.Equal(t, 2.0, s.Layer)

	s, _ = step(m, s, ";TYPE:SKIRT")
	assert.True(t, s.Overexpose)

	s, _ = step(m, s, ";LAYER:5")
	assert.False(t, s.Overexpose)

	// slicer comments that only look like layer markers
	for _, line := range []string{";LAYER_CHANGE", ";layer_height = 0.2", ";LAYER_COUNT:40"} {
		s, _ = step(m, s, line)
		assert.False(t, s.Overexpose, line)
		assert.Equal(t, 5.0, s.Layer, line)
	}

	s, _ = step(m, s, ";LAYER:3")
	assert.False(t, s.Overexpose)

	s, _ = step(m, s, ";layer 0")
	assert.True(t, s.Overexpose)
}

func TestMachine_Ignored(t *testing.T) {
	m := NewMachine(DefaultConfig)
	s := NewState()
	s.Pos = coord.Point{X: 100, Y: 200}

	for _, line := range []string{"", "G21", "T0", "S100", "(hello)", "G4 P100"} {
		next, e := step(m, s, line)
		assert.Equal(t, NoOp{}, e, line)
		assert.Equal(t, s, next, line)
	}
}

func TestMachine_Malformed(t *testing.T) {
	m := NewMachine(DefaultConfig)
	s := NewState()
	s.Pos = coord.Point{X: 100, Y: 200}

	// unparseable X reads as zero: the bed origin
	next, e := step(m, s, "G1 Xfoo Y10")
	assert.Equal(t, RasterMove{From: s.Pos, To: coord.Point{X: 2048, Y: 200}}, e)
	assert.Equal(t, coord.Point{X: 2048, Y: 200}, next.Pos)
}
