package sample

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/mastercactapus/laserprint/coord"
)

const (
	MinRate = 1
	MaxRate = 30000
)

// DefaultRepeat is the number of times each sample is written while
// overexposing.
const DefaultRepeat = 3

var ErrRate = fmt.Errorf("rate must be between %d and %d", MinRate, MaxRate)

// Writer emits projector records to an output stream.
//
// Samples are passed through the configured Scale; anything that lands
// outside device space is dropped.
type Writer struct {
	bw    *bufio.Writer
	scale coord.Scale

	repeat     int
	overexpose bool

	written int64
	dropped int64
}

// NewWriter creates a Writer. A repeat below 1 uses DefaultRepeat.
func NewWriter(w io.Writer, scale coord.Scale, repeat int) *Writer {
	if repeat < 1 {
		repeat = DefaultRepeat
	}
	return &Writer{
		bw:     bufio.NewWriter(w),
		scale:  scale,
		repeat: repeat,
	}
}

// SetOverexpose enables or disables writing each sample repeatedly.
func (w *Writer) SetOverexpose(on bool) { w.overexpose = on }

// Overexpose reports whether samples are currently repeated.
func (w *Writer) Overexpose() bool { return w.overexpose }

// Written returns the number of `s=` records written.
func (w *Writer) Written() int64 { return w.written }

// Dropped returns the number of samples that fell outside device space.
func (w *Writer) Dropped() int64 { return w.dropped }

func (w *Writer) line(s string) error {
	_, err := w.bw.WriteString(s + "\n")
	return err
}

// Emit transforms and writes a sample.
func (w *Writer) Emit(s Sample) error {
	s.Point = w.scale.Transform(s.Point)
	if !s.InBounds() {
		w.dropped++
		return nil
	}

	n := 1
	if w.overexpose {
		n = w.repeat
	}
	rec := s.String()
	for i := 0; i < n; i++ {
		err := w.line(rec)
		if err != nil {
			return err
		}
		w.written++
	}
	return nil
}

// Rate writes the requested playback rate.
func (w *Writer) Rate(rate int) error {
	if rate < MinRate || rate > MaxRate {
		return ErrRate
	}
	return w.line(fmt.Sprintf("r=%d", rate))
}

// Enable turns output on or off at the consumer.
func (w *Writer) Enable(on bool) error {
	return w.line("e=" + flag(on))
}

// Finish writes the flush marker.
func (w *Writer) Finish() error {
	return w.line("f=1")
}

// Info writes a free-form informational record.
func (w *Writer) Info(msg string) error {
	for _, c := range msg {
		if c == '\n' || c == '\r' {
			return errors.New("info must be a single line")
		}
	}
	return w.line("p=" + msg)
}

// Flush writes any buffered records to the underlying stream.
func (w *Writer) Flush() error {
	return w.bw.Flush()
}
