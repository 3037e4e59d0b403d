package vm

import (
	"time"

	"github.com/mastercactapus/laserprint/coord"
	"github.com/mastercactapus/laserprint/gcode"
)

// State is everything the interpreter remembers between lines.
type State struct {
	Pos coord.Point

	// E is the last extrusion value. Only absolute extrusion is tracked.
	E    float64
	Feed float64

	Relative   bool
	Overexpose bool

	// Layer is the last layer marker seen, or -1.
	Layer float64
}

// NewState returns the state at the start of a job: absolute positioning
// with the beam parked at the origin of device space.
func NewState() State {
	return State{Layer: -1}
}

type Config struct {
	// Dimension is the full-scale bed size in mm.
	Dimension float64

	// Layers below StickLayers are overexposed.
	StickLayers float64

	ZDelay    time.Duration
	HomeDelay time.Duration

	// StickyZFactor multiplies ZDelay while overexposing.
	StickyZFactor int
}

var DefaultConfig = Config{
	Dimension:     110.485,
	StickLayers:   3,
	ZDelay:        10 * time.Second,
	HomeDelay:     5 * time.Second,
	StickyZFactor: 3,
}

// Machine interprets G-code lines. It holds no state of its own; every call
// to Step is independent.
type Machine struct {
	cfg Config
}

func NewMachine(cfg Config) *Machine {
	if cfg.Dimension == 0 {
		cfg.Dimension = DefaultConfig.Dimension
	}
	if cfg.StickyZFactor == 0 {
		cfg.StickyZFactor = 1
	}
	return &Machine{cfg: cfg}
}

func (m *Machine) axis(cur int, v float64, rel bool) int {
	if rel {
		return cur + coord.PixelizeDelta(v, m.cfg.Dimension)
	}
	return coord.Pixelize(v, m.cfg.Dimension)
}

func (m *Machine) motion(s State, l gcode.Line) (State, Effect) {
	target := s.Pos
	var shutter, zMove bool
	for _, w := range l.Params {
		switch w.W {
		case 'X':
			target.X = m.axis(s.Pos.X, w.Arg, s.Relative)
		case 'Y':
			// bed Y runs opposite to device Y
			target.Y = m.axis(s.Pos.Y, -w.Arg, s.Relative)
		case 'Z':
			zMove = true
		case 'F':
			s.Feed = w.Arg
		case 'E':
			if w.Arg > s.E {
				shutter = true
			}
			s.E = w.Arg
		}
	}

	if zMove {
		wait := m.cfg.ZDelay
		if s.Overexpose {
			wait *= time.Duration(m.cfg.StickyZFactor)
		}
		return s, SerialFrame{Line: l.Raw, Wait: wait}
	}

	mv := RasterMove{From: s.Pos, To: target, Shutter: shutter}
	s.Pos = target
	return s, mv
}

// Step applies one line to s, returning the new state and the I/O needed to
// carry the line out.
func (m *Machine) Step(s State, l gcode.Line) (State, Effect) {
	switch l.Kind() {
	case gcode.KindMotion:
		return m.motion(s, l)
	case gcode.KindHome:
		return s, SerialFrame{Line: l.Raw, Wait: m.cfg.HomeDelay, Blank: true}
	case gcode.KindAbsolute:
		s.Relative = false
		return s, SerialFrame{Line: l.Raw}
	case gcode.KindRelative:
		s.Relative = true
		return s, SerialFrame{Line: l.Raw}
	case gcode.KindSetPosition:
		for _, w := range l.Params {
			if w.W == 'E' {
				s.E = w.Arg
			}
		}
	case gcode.KindMachine:
		return s, SerialFrame{Line: l.Raw}
	case gcode.KindComment:
		if len(l.Params) > 0 && l.Params[0].W == 'L' {
			s.Layer = l.Params[0].Arg
			s.Overexpose = s.Layer < m.cfg.StickLayers
		}
	}

	return s, NoOp{}
}
