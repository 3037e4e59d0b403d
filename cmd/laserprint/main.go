package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/mastercactapus/laserprint/gcode"
	"github.com/mastercactapus/laserprint/machine"
	"github.com/mastercactapus/laserprint/machine/marlin"
	"github.com/mastercactapus/laserprint/sample"
	"github.com/mastercactapus/laserprint/spjs"
)

// pollInterval bounds how long a read may block when an ack timeout is set.
const pollInterval = 100 * time.Millisecond

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	log.SetFlags(log.Lshortfile)
	log.SetOutput(stderr)

	cfg, err := parseConfig(args)
	if err == errHelp {
		printHelp(stdout)
		return 1
	}
	var uErr usageError
	switch {
	case errors.As(err, &uErr):
		fmt.Fprintln(stderr, err)
		printHelp(stderr)
		return 1
	case err != nil:
		fmt.Fprintln(stderr, err)
		return 1
	}

	port, err := openController(cfg)
	if err != nil {
		log.Printf("ERROR: open controller: %v", err)
		return 1
	}
	defer port.Close()

	open := func() (io.ReadCloser, error) { return os.Open(cfg.File) }
	err = job(cfg, port, open, stdout, stderr)
	if err != nil {
		log.Printf("ERROR: %v", err)
		return 1
	}

	notify(cfg.Notify)
	return 0
}

func openController(cfg *config) (io.ReadWriteCloser, error) {
	var timeout time.Duration
	if cfg.AckTimeout > 0 {
		timeout = pollInterval
		if cfg.AckTimeout < timeout {
			timeout = cfg.AckTimeout
		}
	}

	if cfg.SPJS != "" {
		sp := spjs.NewSPJS(cfg.SPJS)
		port, err := sp.OpenPort(cfg.Port, marlin.DefaultBaud)
		if err != nil {
			sp.Close()
			return nil, err
		}
		port.ReadTimeout = timeout
		return port, nil
	}

	return marlin.OpenPort(marlin.PortConfig{
		Device:      cfg.Port,
		Driver:      cfg.Driver,
		ReadTimeout: timeout,
	})
}

// job handshakes with the controller on port, then opens the input and
// draws every line of it, writing samples to out.
func job(cfg *config, port io.ReadWriter, open func() (io.ReadCloser, error), out, stderr io.Writer) error {
	w := sample.NewWriter(out, cfg.Scale, cfg.Repeat)
	m := machine.NewMachine(cfg.VM, cfg.Channels, w)

	opts := marlin.Options{
		AckTimeout: cfg.AckTimeout,
		MaxResends: cfg.MaxResends,
		Numbered:   cfg.Numbered,
		Blank:      m.Blank,
	}
	if cfg.Verbose {
		opts.Trace = log.New(stderr, "serial: ", 0)
	}
	conn := marlin.NewConn(port, opts)
	m.Attach(conn)

	err := conn.Handshake()
	if err != nil {
		return fmt.Errorf("handshake: %w", err)
	}

	src, err := open()
	if err != nil {
		return fmt.Errorf("open gcode: %w", err)
	}
	defer src.Close()

	if cfg.EventsAddr != "" {
		a := newAPI()
		srv := a.serve(cfg.EventsAddr)
		stop := make(chan struct{})
		stopped := make(chan struct{})
		go func() {
			a.watch(m.State(), stop)
			close(stopped)
		}()
		defer func() {
			close(stop)
			<-stopped
			// the final update may have been dropped from the channel
			a.update(m.CurrentState())
			a.Close()
			srv.Close()
		}()
	}

	err = m.Start(cfg.Rate)
	if err != nil {
		return err
	}

	err = m.Run(gcode.NewParser(src))
	if err != nil {
		w.Flush()
		return err
	}

	return m.Finish()
}
