package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := parseConfig(nil)
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Channels.AMin)
	assert.Equal(t, 4095, cfg.Channels.AMax)
	assert.Equal(t, 0, cfg.Channels.BMin)
	assert.Equal(t, 4095, cfg.Channels.BMax)
	assert.Equal(t, 110.485, cfg.VM.Dimension)
	assert.Equal(t, 1.0, cfg.Scale.X)
	assert.Equal(t, 0.972, cfg.Scale.Y)
	assert.Equal(t, 0.0, cfg.Scale.Magnitude)
	assert.Equal(t, 2.0, cfg.Scale.Exponent)
	assert.Equal(t, "gcode.gcode", cfg.File)
	assert.Equal(t, "/dev/ttyUSB0", cfg.Port)
	assert.Equal(t, 20000, cfg.Rate)
	assert.Equal(t, 3, cfg.Repeat)
	assert.Equal(t, 10*time.Second, cfg.VM.ZDelay)
	assert.Equal(t, 5*time.Second, cfg.VM.HomeDelay)
	assert.Equal(t, 3.0, cfg.VM.StickLayers)
	assert.Equal(t, "Print Done.", cfg.Notify)
}

func TestParseConfig_Options(t *testing.T) {
	cfg, err := parseConfig([]string{
		"-a", "100", "-A", "4000", "-b", "5", "-B", "6",
		"-D", "50", "-X", "0.5", "-Y", "2",
		"-M", "10", "-E", "2",
		"-f", "part.gcode", "-p", "/dev/ttyACM0", "-r", "1000",
		"-checksum", "-ack-timeout", "2s", "-max-resends", "4",
		"-stick-layers", "5", "-overexpose", "2",
	})
	require.NoError(t, err)

	assert.Equal(t, 100, cfg.Channels.AMin)
	assert.Equal(t, 4000, cfg.Channels.AMax)
	assert.Equal(t, 5, cfg.Channels.BMin)
	assert.Equal(t, 6, cfg.Channels.BMax)
	assert.Equal(t, 50.0, cfg.VM.Dimension)
	assert.Equal(t, 0.5, cfg.Scale.X)
	assert.Equal(t, 2.0, cfg.Scale.Y)
	assert.InDelta(t, 10e-8, cfg.Scale.Magnitude, 1e-15)
	assert.Equal(t, 2.0, cfg.Scale.Exponent)
	assert.Equal(t, "part.gcode", cfg.File)
	assert.Equal(t, "/dev/ttyACM0", cfg.Port)
	assert.Equal(t, 1000, cfg.Rate)
	assert.True(t, cfg.Numbered)
	assert.Equal(t, 2*time.Second, cfg.AckTimeout)
	assert.Equal(t, 4, cfg.MaxResends)
	assert.Equal(t, 5.0, cfg.VM.StickLayers)
	assert.Equal(t, 2, cfg.Repeat)
}

func TestParseConfig_Errors(t *testing.T) {
	check := func(name string, args []string, msg string) {
		t.Run(name, func(t *testing.T) {
			_, err := parseConfig(args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), msg)
			assert.IsType(t, usageError{}, err)
		})
	}

	check("channel order", []string{"-a", "4000", "-A", "100"}, "A-channel min cannot be greater than the A-channel max")
	check("channel range", []string{"-B", "5000"}, "B-channel min and max must be between 0 and 4095")
	check("repeated", []string{"-r", "10", "-r", "20"}, "more than once: -r")
	check("repeated bool", []string{"-v", "-v"}, "more than once: -v")
	check("rate low", []string{"-r", "0"}, "rate must be between 1 and 30000")
	check("rate high", []string{"-r", "30001"}, "rate must be between 1 and 30000")
	check("distortion", []string{"-M", "100000000"}, "M and E factors will result in failure")
	check("distortion exponent", []string{"-M", "10", "-E", "3"}, "M and E factors will result in failure")
	check("distortion edge", []string{"-M", "23.87"}, "M and E factors will result in failure")
	check("driver", []string{"-serial-driver", "nope"}, "unknown serial driver 'nope'")
	check("argument", []string{"extra"}, "unexpected argument 'extra'")
	check("overexpose", []string{"-overexpose", "0"}, "overexpose must be at least 1")
}

func TestParseConfig_DistortionLimit(t *testing.T) {
	// 23.86e-8 * 2047^2 is just under 1
	cfg, err := parseConfig([]string{"-M", "23.86"})
	require.NoError(t, err)
	assert.InDelta(t, 23.86e-8, cfg.Scale.Magnitude, 1e-15)
	assert.NoError(t, cfg.Scale.Validate())
}

func TestParseConfig_Help(t *testing.T) {
	_, err := parseConfig([]string{"-h"})
	assert.Equal(t, errHelp, err)

	// validation still comes first
	_, err = parseConfig([]string{"-h", "-r", "0"})
	assert.IsType(t, usageError{}, err)
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-h"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stdout.String(), "laserprint [OPTIONS]")

	stdout.Reset()
	code = run([]string{"-a", "4000", "-A", "100"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "A-channel min cannot be greater than the A-channel max")
	assert.Contains(t, stderr.String(), "laserprint [OPTIONS]")

	stderr.Reset()
	code = run([]string{"-M", "100000000"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "M and E factors will result in failure")
	assert.Contains(t, stderr.String(), "laserprint [OPTIONS]")

	stderr.Reset()
	code = run([]string{"-bogus"}, &stdout, &stderr)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), "flag provided but not defined: -bogus")
}
