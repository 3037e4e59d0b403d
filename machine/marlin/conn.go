package marlin

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"
)

// readSize matches the controller's longest response line.
const readSize = 80

var (
	// ErrShortWrite is returned when the port accepts only part of a frame.
	ErrShortWrite = errors.New("short write to controller")

	// ErrAckTimeout is returned when no acknowledgment arrives within
	// Options.AckTimeout.
	ErrAckTimeout = errors.New("timed out waiting for controller acknowledgment")

	// ErrTooManyResends is returned when the controller asks for the same
	// frame more than Options.MaxResends times.
	ErrTooManyResends = errors.New("too many resend requests from controller")
)

// Drainer is implemented by ports that can block until all written data
// has been transmitted.
type Drainer interface {
	Drain() error
}

type Options struct {
	// AckTimeout bounds each wait for an acknowledgment. Zero waits forever.
	// The port must return from Read periodically for the timeout to be
	// noticed.
	AckTimeout time.Duration

	// MaxResends bounds retransmissions of a single frame. Zero allows any
	// number.
	MaxResends int

	// Numbered frames each line with a line number and checksum.
	Numbered bool

	// Blank is called before every Send, to turn the beam off.
	Blank func() error

	Clock Clock

	// Trace, if set, logs all traffic.
	Trace *log.Logger
}

// Conn is a synchronous connection to the Z controller: every Send blocks
// until the controller acknowledges the line.
type Conn struct {
	rw   io.ReadWriter
	opts Options

	line int64
	resp []byte
	rbuf [readSize]byte

	resends int64
}

func NewConn(rw io.ReadWriter, opts Options) *Conn {
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	return &Conn{
		rw:   rw,
		opts: opts,
	}
}

// Close closes the underlying ReadWriter, if it implements io.Closer.
func (c *Conn) Close() error {
	if closer, ok := c.rw.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

// Lines returns the number of lines sent since the handshake.
func (c *Conn) Lines() int64 { return c.line }

// Resends returns the total number of retransmitted frames.
func (c *Conn) Resends() int64 { return c.resends }

func (c *Conn) tracef(format string, args ...interface{}) {
	if c.opts.Trace != nil {
		c.opts.Trace.Printf(format, args...)
	}
}

// write will block until frame has been handed to the port in full and,
// when supported, transmitted.
func (c *Conn) write(frame []byte) error {
	c.tracef("SEND: %q", frame)
	n, err := c.rw.Write(frame)
	if err != nil {
		return fmt.Errorf("write: %w", err)
	}
	if n != len(frame) {
		return fmt.Errorf("%w: %d of %d bytes", ErrShortWrite, n, len(frame))
	}
	if d, ok := c.rw.(Drainer); ok {
		err = d.Drain()
		if err != nil {
			return fmt.Errorf("drain: %w", err)
		}
	}
	return nil
}

// await reads responses until one of tokens shows up. If resend is set, a
// Resend request retransmits frame and the wait starts over.
func (c *Conn) await(frame []byte, resend bool, tokens ...string) error {
	c.resp = c.resp[:0]
	start := c.opts.Clock.Now()
	var resent int
	for {
		n, err := c.rw.Read(c.rbuf[:])
		if n > 0 {
			c.tracef("RECV: %q", c.rbuf[:n])
			c.resp = append(c.resp, c.rbuf[:n]...)
			if len(c.resp) > 2*readSize {
				c.resp = append(c.resp[:0], c.resp[len(c.resp)-readSize:]...)
			}
		}
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		if resend && containsAny(c.resp, []string{tokenResend}) {
			if c.opts.MaxResends > 0 && resent >= c.opts.MaxResends {
				return ErrTooManyResends
			}
			resent++
			c.resends++
			c.resp = c.resp[:0]
			err = c.write(frame)
			if err != nil {
				return err
			}
			start = c.opts.Clock.Now()
			continue
		}
		if containsAny(c.resp, tokens) {
			c.resp = c.resp[:0]
			return nil
		}

		if c.opts.AckTimeout > 0 && c.opts.Clock.Now().Sub(start) >= c.opts.AckTimeout {
			return ErrAckTimeout
		}
	}
}

// Handshake resets the controller's line numbering. The controller prints
// `wait` twice after boot; the reset is then repeated and must be
// acknowledged with `ok`.
func (c *Conn) Handshake() error {
	frame := []byte(resetFrame)

	err := c.write(frame)
	if err != nil {
		return err
	}
	err = c.await(frame, false, tokenWait)
	if err != nil {
		return err
	}
	err = c.await(frame, false, tokenWait)
	if err != nil {
		return err
	}

	err = c.write(frame)
	if err != nil {
		return err
	}
	err = c.await(frame, true, tokenOK)
	if err != nil {
		return err
	}

	c.line = 0
	return nil
}

// Send turns the beam off, writes line and blocks until the controller
// acknowledges it. It then sleeps for wait to let the move settle.
func (c *Conn) Send(line string, wait time.Duration) error {
	if c.opts.Blank != nil {
		err := c.opts.Blank()
		if err != nil {
			return err
		}
	}

	c.line++
	frame := frameLine(line, c.line, c.opts.Numbered)
	err := c.write(frame)
	if err != nil {
		return err
	}
	err = c.await(frame, true, tokenOK, tokenWait)
	if err != nil {
		return fmt.Errorf("line %d: %w", c.line, err)
	}
	if n, ok := lineReset(line); ok {
		c.line = n
	}

	c.opts.Clock.Sleep(wait)
	return nil
}
