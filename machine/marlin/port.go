package marlin

import (
	"fmt"
	"io"
	"time"

	tarm "github.com/tarm/serial"
	"go.bug.st/serial"
)

// Serial drivers supported by OpenPort.
const (
	DriverBugst = "bugst"
	DriverTarm  = "tarm"
)

// DefaultBaud is the controller's fixed line rate.
const DefaultBaud = 115200

// PortConfig describes how to open the controller's serial port. The line
// is always 8 data bits, no parity, 1 stop bit, raw, without flow control.
type PortConfig struct {
	Device string
	Baud   int
	Driver string

	// ReadTimeout makes Read return periodically with no data. Zero blocks.
	ReadTimeout time.Duration
}

// OpenPort opens the serial device with the configured driver.
func OpenPort(cfg PortConfig) (io.ReadWriteCloser, error) {
	if cfg.Baud == 0 {
		cfg.Baud = DefaultBaud
	}
	switch cfg.Driver {
	case "", DriverBugst:
		return openBugst(cfg)
	case DriverTarm:
		return openTarm(cfg)
	}
	return nil, fmt.Errorf("unknown serial driver '%s'", cfg.Driver)
}

func openBugst(cfg PortConfig) (io.ReadWriteCloser, error) {
	port, err := serial.Open(cfg.Device, &serial.Mode{
		BaudRate: cfg.Baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}
	if cfg.ReadTimeout > 0 {
		err = port.SetReadTimeout(cfg.ReadTimeout)
		if err != nil {
			port.Close()
			return nil, fmt.Errorf("configure %s: %w", cfg.Device, err)
		}
	}

	// serial.Port provides Drain, so writes wait for transmission.
	return port, nil
}

// tarmPort adapts tarm/serial, which reports a read timeout as io.EOF.
type tarmPort struct {
	*tarm.Port
	timeout bool
}

func (p tarmPort) Read(b []byte) (int, error) {
	n, err := p.Port.Read(b)
	if err == io.EOF && p.timeout {
		return n, nil
	}
	return n, err
}

func openTarm(cfg PortConfig) (io.ReadWriteCloser, error) {
	port, err := tarm.OpenPort(&tarm.Config{
		Name:        cfg.Device,
		Baud:        cfg.Baud,
		ReadTimeout: cfg.ReadTimeout,
		Size:        8,
		Parity:      tarm.ParityNone,
		StopBits:    tarm.Stop1,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}
	return tarmPort{Port: port, timeout: cfg.ReadTimeout > 0}, nil
}
