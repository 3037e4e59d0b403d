package machine

import (
	"errors"
	"fmt"
	"io"

	"github.com/mastercactapus/laserprint/coord"
	"github.com/mastercactapus/laserprint/gcode"
	"github.com/mastercactapus/laserprint/sample"
	"github.com/mastercactapus/laserprint/vm"
)

var ErrNoAdapter = errors.New("no Z controller attached")

// Channels are the analog levels driven on the A and B outputs with the
// beam off (min) and on (max).
type Channels struct {
	AMin, AMax int
	BMin, BMax int
}

var DefaultChannels = Channels{AMin: coord.Min, AMax: coord.Max, BMin: coord.Min, BMax: coord.Max}

func (c Channels) levels(on bool) (a, b int) {
	if on {
		return c.AMax, c.BMax
	}
	return c.AMin, c.BMin
}

// Validate checks that every level is in range and min <= max.
func (c Channels) Validate() error {
	check := func(name string, min, max int) error {
		if min < coord.Min || min > coord.Max || max < coord.Min || max > coord.Max {
			return fmt.Errorf("%s-channel min and max must be between %d and %d", name, coord.Min, coord.Max)
		}
		if min > max {
			return fmt.Errorf("%s-channel min cannot be greater than the %s-channel max", name, name)
		}
		return nil
	}
	err := check("A", c.AMin, c.AMax)
	if err != nil {
		return err
	}
	return check("B", c.BMin, c.BMax)
}

// State is a snapshot of job progress.
type State struct {
	Line       int
	Pos        coord.Point
	Layer      float64
	Overexpose bool
	Relative   bool
	Samples    int64
	Dropped    int64
	Frames     int
	Done       bool
}

// Machine drives the projector and the Z controller from G-code.
type Machine struct {
	vm      *vm.Machine
	state   vm.State
	out     *sample.Writer
	adapter Adapter
	ch      Channels

	line   int
	frames int
	done   bool
	stat   chan State
}

func NewMachine(cfg vm.Config, ch Channels, out *sample.Writer) *Machine {
	return &Machine{
		vm:    vm.NewMachine(cfg),
		state: vm.NewState(),
		out:   out,
		ch:    ch,
		stat:  make(chan State, 1),
	}
}

// Attach sets the Z controller connection.
func (m *Machine) Attach(a Adapter) { m.adapter = a }

// State returns a channel of progress updates. Updates are dropped if
// nobody is receiving.
func (m *Machine) State() chan State { return m.stat }

func (m *Machine) CurrentState() State {
	return State{
		Line:       m.line,
		Pos:        m.state.Pos,
		Layer:      m.state.Layer,
		Overexpose: m.state.Overexpose,
		Relative:   m.state.Relative,
		Samples:    m.out.Written(),
		Dropped:    m.out.Dropped(),
		Frames:     m.frames,
		Done:       m.done,
	}
}

func (m *Machine) publish() {
	select {
	case m.stat <- m.CurrentState():
	default:
	}
}

// Blank writes a shutter-off sample at the current position and flushes
// output so it reaches the projector before anything else happens.
func (m *Machine) Blank() error {
	a, b := m.ch.levels(false)
	err := m.out.Emit(sample.Sample{Point: m.state.Pos, A: a, B: b, Interleave: true})
	if err != nil {
		return err
	}
	return m.out.Flush()
}

// Start writes the stream header.
func (m *Machine) Start(rate int) error {
	err := m.out.Rate(rate)
	if err != nil {
		return err
	}
	return m.out.Enable(true)
}

// Finish writes the stream trailer and flushes output.
func (m *Machine) Finish() error {
	err := m.out.Finish()
	if err != nil {
		return err
	}
	err = m.out.Enable(false)
	if err != nil {
		return err
	}
	m.done = true
	m.publish()
	return m.out.Flush()
}

func (m *Machine) apply(e vm.Effect) error {
	switch e := e.(type) {
	case vm.RasterMove:
		a, b := m.ch.levels(e.Shutter)
		return coord.Line(e.From, e.To, func(p coord.Point) error {
			return m.out.Emit(sample.Sample{Point: p, A: a, B: b, Shutter: e.Shutter, Interleave: true})
		})
	case vm.SerialFrame:
		if m.adapter == nil {
			return ErrNoAdapter
		}
		if e.Blank {
			err := m.Blank()
			if err != nil {
				return err
			}
		}
		m.frames++
		return m.adapter.Send(e.Line, e.Wait)
	}
	return nil
}

// Exec interprets a single line.
func (m *Machine) Exec(l gcode.Line) error {
	var e vm.Effect
	m.line++
	m.state, e = m.vm.Step(m.state, l)
	m.out.SetOverexpose(m.state.Overexpose)

	err := m.apply(e)
	if err != nil {
		return err
	}
	m.publish()
	return nil
}

// Run executes every line from r.
func (m *Machine) Run(r gcode.Reader) error {
	for {
		l, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		err = m.Exec(l)
		if err != nil {
			return fmt.Errorf("line %d: %w", m.line, err)
		}
	}
}
