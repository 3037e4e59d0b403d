package gcode

import "io"

type Reader interface {
	Read() (Line, error)
}

var _ Reader = &Parser{}

// LinesReader replays already parsed lines.
type LinesReader struct {
	Lines []Line
	n     int
}

func (r *LinesReader) Read() (Line, error) {
	if r.n == len(r.Lines) {
		return Line{}, io.EOF
	}

	r.n++
	return r.Lines[r.n-1], nil
}
