package gcode

// Kind classifies a line by how it is dispatched.
type Kind byte

const (
	KindNone Kind = iota
	KindMotion
	KindHome
	KindAbsolute
	KindRelative
	KindSetPosition
	KindMachine
	KindComment
)

func (l Line) Kind() Kind {
	switch l.Cmd.W {
	case 'G':
		switch {
		case l.Cmd.Arg <= 1:
			return KindMotion
		case l.Cmd.Arg == 28:
			return KindHome
		case l.Cmd.Arg == 90:
			return KindAbsolute
		case l.Cmd.Arg == 91:
			return KindRelative
		case l.Cmd.Arg == 92:
			return KindSetPosition
		}
	case 'M':
		return KindMachine
	case ';':
		return KindComment
	}
	return KindNone
}
