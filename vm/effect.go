package vm

import (
	"time"

	"github.com/mastercactapus/laserprint/coord"
)

// Effect is the I/O a Step asks for. It is one of RasterMove, SerialFrame
// or NoOp.
type Effect interface {
	effect()
}

// RasterMove draws a straight line with the beam on or off.
type RasterMove struct {
	From, To coord.Point
	Shutter  bool
}

// SerialFrame forwards a line to the Z controller and waits for the
// physical move to settle afterwards.
type SerialFrame struct {
	Line string
	Wait time.Duration

	// Blank asks for an extra shutter-off sample before the frame is sent.
	Blank bool
}

type NoOp struct{}

func (RasterMove) effect()  {}
func (SerialFrame) effect() {}
func (NoOp) effect()        {}
