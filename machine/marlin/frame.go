package marlin

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/mastercactapus/laserprint/gcode"
)

const (
	tokenOK     = "ok"
	tokenWait   = "wait"
	tokenResend = "Resend"
)

// resetFrame restarts the controller's line numbering at zero.
const resetFrame = "N0 M110 N0\n"

// checksum is the XOR of every byte, as expected after `*` by the firmware.
func checksum(s string) byte {
	var c byte
	for i := 0; i < len(s); i++ {
		c ^= s[i]
	}
	return c
}

// frameLine builds the bytes sent for a line. With numbered set, the line
// gets an `N` prefix and a `*` checksum suffix.
func frameLine(line string, n int64, numbered bool) []byte {
	line = strings.TrimRight(line, "\r\n")
	if numbered {
		// trailing comments are not part of the checksummed payload
		if i := strings.IndexByte(line, ';'); i >= 0 {
			line = line[:i]
		}
		line = "N" + strconv.FormatInt(n, 10) + " " + strings.TrimSpace(line)
		line += "*" + strconv.Itoa(int(checksum(line)))
	}
	return []byte(line + "\n")
}

// lineReset reports the number an M110 line sets the controller's line
// counter to. Without an N word the counter goes back to zero.
func lineReset(line string) (int64, bool) {
	l := gcode.ParseLine(line)
	if l.Kind() != gcode.KindMachine || l.Cmd.Arg != 110 {
		return 0, false
	}
	_, n := l.Arg('N')
	return int64(n), true
}

func containsAny(data []byte, tokens []string) bool {
	for _, t := range tokens {
		if bytes.Contains(data, []byte(t)) {
			return true
		}
	}
	return false
}
