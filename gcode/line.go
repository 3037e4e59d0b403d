package gcode

import "strings"

// MaxParams is the number of parameter words kept per line.
const MaxParams = 5

// Line is a single tokenized line of input.
//
// Cmd holds the command letter (upper-cased) and its code. For comment lines
// Cmd.W is ';' and a leading marker like `LAYER:2` is kept as the only
// parameter.
type Line struct {
	Raw    string
	Cmd    Word
	Params []Word
}

// Arg returns the value of the first parameter with the given letter.
func (l Line) Arg(w byte) (bool, float64) {
	for _, p := range l.Params {
		if p.W == w {
			return true, p.Arg
		}
	}
	return false, 0
}

func (l Line) IsComment() bool { return l.Cmd.W == ';' }

func (l Line) String() string {
	if l.Cmd.W == 0 {
		return ""
	}
	var b strings.Builder
	if l.IsComment() {
		b.WriteByte(';')
	} else {
		b.WriteString(l.Cmd.String())
	}
	for _, p := range l.Params {
		b.WriteByte(' ')
		b.WriteString(p.String())
	}
	return b.String()
}

// ParseLine tokenizes a line. It never fails: fields that are not numbers
// read as zero and end the line, and an empty or unrecognized line yields a
// Line with a zero Cmd.
func ParseLine(raw string) Line {
	raw = strings.TrimRight(raw, "\r\n")
	l := Line{Raw: raw}

	s := raw
	i := skipSpace(s, 0)
	if i >= len(s) {
		return l
	}
	if s[i] == ';' {
		return parseComment(l, s[i+1:])
	}

	l.Cmd.W = upper(s[i])
	v, i, ok := scanFloat(s, i+1)
	if !ok {
		return l
	}
	l.Cmd.Arg = v

	for len(l.Params) < MaxParams {
		i = skipSpace(s, i)
		if i >= len(s) {
			break
		}
		w := Word{W: upper(s[i])}
		if w.W == ';' {
			break
		}
		w.Arg, i, ok = scanFloat(s, i+1)
		l.Params = append(l.Params, w)
		if !ok {
			break
		}
	}

	return l
}

// parseComment keeps a marker such as `;L2`, `;LAYER:2` or `; layer 2`: the
// first letter and a number right after it. Other comments have no params.
func parseComment(l Line, s string) Line {
	l.Cmd.W = ';'
	i := skipSpace(s, 0)
	if i >= len(s) {
		return l
	}
	w := Word{W: upper(s[i])}
	j := i + 1
	if w.W == 'L' && len(s)-j >= 4 && strings.EqualFold(s[j:j+4], "AYER") {
		j += 4
	}
	if j < len(s) && s[j] == ':' {
		j++
	}
	var ok bool
	w.Arg, _, ok = scanFloat(s, j)
	if !ok {
		return l
	}
	l.Params = append(l.Params, w)
	return l
}
