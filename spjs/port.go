package spjs

import (
	"errors"
	"io"
	"strconv"
	"time"
)

var errClosed = io.ErrClosedPipe

// Port is one serial port on the SPJS server, used as a plain byte stream.
type Port struct {
	sp   *SPJS
	name string
	baud int

	// ReadTimeout makes Read return with no data when nothing arrives in
	// time. Zero blocks.
	ReadTimeout time.Duration

	pending []byte
}

var _ io.ReadWriteCloser = &Port{}

// OpenPort asks the server to open a port and returns a stream for it.
func (sp *SPJS) OpenPort(name string, baud int) (*Port, error) {
	p := &Port{sp: sp, name: name, baud: baud}
	err := p.open()
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Port) open() error {
	return p.sp.WriteString("open " + p.name + " " + strconv.Itoa(p.baud) + " default")
}

// Write sends b to the port. It returns once the server has the data.
func (p *Port) Write(b []byte) (int, error) {
	err := p.sp.SendJSON(JSON{Port: p.name, Data: []Data{{Data: string(b), ID: nextID()}}})
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

func (p *Port) handle(msg interface{}) error {
	switch msg := msg.(type) {
	case *DataFrame:
		if msg.Port == p.name {
			p.pending = append(p.pending, msg.Data...)
		}
	case *ErrorMessage:
		return errors.New("spjs: " + msg.Error)
	case *SerialPortList:
		for _, port := range msg.SerialPorts {
			if port.Name == p.name && !port.IsOpen {
				go p.open()
			}
		}
	}
	return nil
}

// Read returns data received from the port.
func (p *Port) Read(b []byte) (int, error) {
	var timeout <-chan time.Time
	if p.ReadTimeout > 0 {
		t := time.NewTimer(p.ReadTimeout)
		defer t.Stop()
		timeout = t.C
	}

	for len(p.pending) == 0 {
		select {
		case msg := <-p.sp.Messages():
			err := p.handle(msg)
			if err != nil {
				return 0, err
			}
		case <-timeout:
			return 0, nil
		case <-p.sp.closeCh:
			return 0, errClosed
		}
	}

	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

// Close closes the port on the server and disconnects.
func (p *Port) Close() error {
	done := make(chan struct{})
	go func() {
		p.sp.WriteString("close " + p.name)
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
	}
	return p.sp.Close()
}
