package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"sort"
	"strings"
	"time"

	"github.com/mastercactapus/laserprint/coord"
	"github.com/mastercactapus/laserprint/machine"
	"github.com/mastercactapus/laserprint/machine/marlin"
	"github.com/mastercactapus/laserprint/sample"
	"github.com/mastercactapus/laserprint/vm"
)

// -M is given in units of 1e-8.
const magnitudeUnit = 1e-8

var errHelp = errors.New("help requested")

// usageError is a configuration problem that should be reported along
// with the option summary.
type usageError struct{ error }

type config struct {
	Channels machine.Channels
	Scale    coord.Scale
	VM       vm.Config

	File   string
	Port   string
	Rate   int
	Repeat int

	Driver     string
	SPJS       string
	AckTimeout time.Duration
	MaxResends int
	Numbered   bool

	EventsAddr string
	Notify     string
	Verbose    bool
}

// countFlag records how many times a flag was given.
type countFlag struct {
	flag.Value
	n int
}

func (c *countFlag) Set(s string) error {
	c.n++
	return c.Value.Set(s)
}

func (c *countFlag) String() string {
	if c.Value == nil {
		return ""
	}
	return c.Value.String()
}

func (c *countFlag) IsBoolFlag() bool {
	b, ok := c.Value.(interface{ IsBoolFlag() bool })
	return ok && b.IsBoolFlag()
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `laserprint [OPTIONS] - Draws a G-Code file via LaserShark

Options:
	-h	Print this help text.
Amplitudes of analog outputs:
 (default is max scale from 0 to 4095)
	-a	A-channel minimum value.
	-A	A-channel maximum value.
	-b	B-channel minimum value.
	-B	B-channel maximum value.
Dimensions:
 (default is 110.485mm)
	-D	Square dimensions of full-scale print area in mm.
Scaling:
	-X	Amount to scale x-axis (default is 1).
	-Y	Amount to scale y-axis (default is 0.972).
Distortion Correction:
	-E	E-Factor correction (default is 2).
	-M	M-Factor correction in units of 1e-8 (default is 0).
File input:
 (default is ./gcode.gcode)
	-f	G-Code file to draw.
Z controller:
	-p	Serial port of the Z controller (default is /dev/ttyUSB0).
	-serial-driver	Serial driver, bugst or tarm (default is bugst).
	-spjs	Websocket URL of a Serial Port JSON Server to reach -p through.
	-checksum	Send line numbers and checksums with every line.
	-ack-timeout	Give up waiting for an acknowledgment after this long (default is forever).
	-max-resends	Give up after this many resends of one line (default is unlimited).
	-z-delay	Settle time after a Z move (default is 10s).
	-home-delay	Settle time after homing (default is 5s).
Exposure:
	-stick-layers	Number of initial layers to overexpose (default is 3).
	-overexpose	Times each sample is drawn on overexposed layers (default is 3).
Sweep speed:
 (default is 20000)
	-r	Rate to display samples at. Must be between 1 and 30,000
Reporting:
	-events-addr	Address to serve job status events on (disabled by default).
	-notify	Message broadcast with wall when done (default is "Print Done.").
	-v	Log all traffic with the Z controller.
`)
}

// parseConfig reads and validates the command line.
func parseConfig(args []string) (*config, error) {
	cfg := &config{
		Channels: machine.DefaultChannels,
		Scale:    coord.Scale{X: 1, Y: 0.972, Exponent: 2},
		VM:       vm.DefaultConfig,
	}
	var magnitude float64
	var help bool
	var stickLayers int

	fs := flag.NewFlagSet("laserprint", flag.ContinueOnError)
	fs.SetOutput(ioutil.Discard)
	fs.Usage = func() {}

	fs.IntVar(&cfg.Channels.AMin, "a", coord.Min, "")
	fs.IntVar(&cfg.Channels.AMax, "A", coord.Max, "")
	fs.IntVar(&cfg.Channels.BMin, "b", coord.Min, "")
	fs.IntVar(&cfg.Channels.BMax, "B", coord.Max, "")
	fs.BoolVar(&help, "h", false, "")
	fs.Float64Var(&cfg.VM.Dimension, "D", vm.DefaultConfig.Dimension, "")
	fs.Float64Var(&cfg.Scale.X, "X", cfg.Scale.X, "")
	fs.Float64Var(&cfg.Scale.Y, "Y", cfg.Scale.Y, "")
	fs.Float64Var(&magnitude, "M", 0, "")
	fs.Float64Var(&cfg.Scale.Exponent, "E", cfg.Scale.Exponent, "")
	fs.StringVar(&cfg.File, "f", "gcode.gcode", "")
	fs.StringVar(&cfg.Port, "p", "/dev/ttyUSB0", "")
	fs.IntVar(&cfg.Rate, "r", 20000, "")

	fs.StringVar(&cfg.Driver, "serial-driver", marlin.DriverBugst, "")
	fs.StringVar(&cfg.SPJS, "spjs", "", "")
	fs.BoolVar(&cfg.Numbered, "checksum", false, "")
	fs.DurationVar(&cfg.AckTimeout, "ack-timeout", 0, "")
	fs.IntVar(&cfg.MaxResends, "max-resends", 0, "")
	fs.DurationVar(&cfg.VM.ZDelay, "z-delay", vm.DefaultConfig.ZDelay, "")
	fs.DurationVar(&cfg.VM.HomeDelay, "home-delay", vm.DefaultConfig.HomeDelay, "")
	fs.IntVar(&stickLayers, "stick-layers", int(vm.DefaultConfig.StickLayers), "")
	fs.IntVar(&cfg.Repeat, "overexpose", sample.DefaultRepeat, "")
	fs.StringVar(&cfg.EventsAddr, "events-addr", "", "")
	fs.StringVar(&cfg.Notify, "notify", "Print Done.", "")
	fs.BoolVar(&cfg.Verbose, "v", false, "")

	counts := make(map[string]*countFlag)
	fs.VisitAll(func(f *flag.Flag) {
		c := &countFlag{Value: f.Value}
		f.Value = c
		counts[f.Name] = c
	})

	err := fs.Parse(args)
	if err == flag.ErrHelp {
		return nil, errHelp
	}
	if err != nil {
		return nil, usageError{err}
	}
	if fs.NArg() > 0 {
		return nil, usageError{fmt.Errorf("unexpected argument '%s'", fs.Arg(0))}
	}

	var repeated []string
	for name, c := range counts {
		if c.n > 1 {
			repeated = append(repeated, "-"+name)
		}
	}
	if len(repeated) > 0 {
		sort.Strings(repeated)
		return nil, usageError{fmt.Errorf("Cannot specify flags more than once: %s", strings.Join(repeated, ", "))}
	}

	err = cfg.Channels.Validate()
	if err != nil {
		return nil, usageError{err}
	}

	cfg.Scale.Magnitude = magnitude * magnitudeUnit
	err = cfg.Scale.Validate()
	if err != nil {
		return nil, usageError{fmt.Errorf("M and E factors will result in failure. Try Different Values: %w", err)}
	}

	if cfg.Rate < sample.MinRate || cfg.Rate > sample.MaxRate {
		return nil, usageError{sample.ErrRate}
	}
	if cfg.VM.Dimension <= 0 {
		return nil, usageError{errors.New("print area dimension must be positive")}
	}
	if cfg.Repeat < 1 {
		return nil, usageError{errors.New("overexpose must be at least 1")}
	}
	if cfg.MaxResends < 0 || cfg.AckTimeout < 0 || cfg.VM.ZDelay < 0 || cfg.VM.HomeDelay < 0 {
		return nil, usageError{errors.New("timeouts, delays and resend limits cannot be negative")}
	}
	switch cfg.Driver {
	case marlin.DriverBugst, marlin.DriverTarm:
	default:
		return nil, usageError{fmt.Errorf("unknown serial driver '%s'", cfg.Driver)}
	}
	cfg.VM.StickLayers = float64(stickLayers)

	if help {
		return nil, errHelp
	}

	return cfg, nil
}
