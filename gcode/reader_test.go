package gcode

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinesReader(t *testing.T) {
	lines := []Line{
		{Cmd: Word{W: 'G', Arg: 1}, Params: []Word{{W: 'X', Arg: 2}}},

		{Cmd: Word{W: 'M', Arg: 2}},
	}

	r := &LinesReader{Lines: lines}

	l, err := r.Read()
	assert.NoError(t, err)
	assert.Equal(t, "G1 X2", l.String())

	l, err = r.Read()
	assert.NoError(t, err)
	assert.Equal(t, "M2", l.String())

	_, err = r.Read()
	assert.Error(t, err)
	assert.Equal(t, io.EOF, err)
}
