package gcode

import (
	"io"
	"strings"
)

// Parse tokenizes every line of data.
func Parse(data string) ([]Line, error) {
	r := NewParser(strings.NewReader(data))
	var res []Line
	for {
		l, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		res = append(res, l)
	}
	return res, nil
}

func MustParse(data string) []Line {
	l, err := Parse(data)
	if err != nil {
		panic(err)
	}
	return l
}
