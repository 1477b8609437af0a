package kcgx

import (
	"fmt"
	"io"
	"os"
)

// logBody hex-escapes body by glyph class (printable, \n \r \t \v \b, '?'
// for everything else) and flushes it to w, each line prefixed with the
// worker PID, when DebugLogBody is set.
func logBody(w io.Writer, debug DebugOptions, body []byte) {
	if !debug.Has(DebugLogBody) {
		return
	}
	pid := os.Getpid()
	fmt.Fprintf(w, "%d: ", pid)
	for _, b := range body {
		switch {
		case b >= 0x20 && b < 0x7f:
			w.Write([]byte{b})
		case b == '\n':
			io.WriteString(w, `\n`)
		case b == '\r':
			io.WriteString(w, `\r`)
		case b == '\t':
			io.WriteString(w, `\t`)
		case b == '\v':
			io.WriteString(w, `\v`)
		case b == '\b':
			io.WriteString(w, `\b`)
		default:
			io.WriteString(w, "?")
		}
	}
	io.WriteString(w, "\n")
}
