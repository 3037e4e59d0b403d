package gcode

import (
	"bufio"
	"io"
	"strings"
)

// MaxLineLength is the longest accepted input line, excluding the line ending.
const MaxLineLength = 256

// Parser reads Lines from a stream, one per input line.
//
// Lines longer than MaxLineLength are never tokenized. They are read up to
// their end, counted, and returned as an empty Line so the caller treats
// them as a no-op.
type Parser struct {
	r       *bufio.Reader
	n       int
	skipped int
}

func NewParser(r io.Reader) *Parser {
	// room for a CRLF ending so the length check below sees the real line
	return &Parser{r: bufio.NewReaderSize(r, MaxLineLength+2)}
}

// LineNumber returns the 1-based number of the last line read.
func (p *Parser) LineNumber() int { return p.n }

// Skipped returns the number of over-long lines passed over so far.
func (p *Parser) Skipped() int { return p.skipped }

func (p *Parser) Read() (Line, error) {
	data, err := p.r.ReadSlice('\n')
	long := false
	for err == bufio.ErrBufferFull {
		long = true
		_, err = p.r.ReadSlice('\n')
	}
	if err == io.EOF && len(data) == 0 && !long {
		return Line{}, io.EOF
	}
	if err != nil && err != io.EOF {
		return Line{}, err
	}
	p.n++

	if long {
		p.skipped++
		return Line{}, nil
	}
	s := strings.TrimRight(string(data), "\r\n")
	if len(s) > MaxLineLength {
		p.skipped++
		return Line{}, nil
	}

	return ParseLine(s), nil
}
