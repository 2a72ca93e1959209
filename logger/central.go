package logger

import (
	"io"
	"os"

	"golang.org/x/term"
)

// there is only one log for the whole application
var central *logger

// maximum number of entries in the central logger
const maxCentral = 256

func init() {
	central = newLogger(maxCentral)
}

// Log adds an entry to the central logger
func Log(perm Permission, tag, detail string) {
	if perm == Allow || perm.AllowLogging() {
		central.log(tag, detail)
	}
}

// Logf adds a formatted entry to the central logger
func Logf(perm Permission, tag, detail string, args ...interface{}) {
	if perm == Allow || perm.AllowLogging() {
		central.logf(tag, detail, args...)
	}
}

// Clear removes all entries from the central logger
func Clear() {
	central.clear()
}

// Write writes every entry of the central logger to output
func Write(output io.Writer) {
	central.write(output)
}

// Tail writes the last `number` entries to output
func Tail(output io.Writer, number int) {
	central.tail(output, number)
}

// Entries returns a copy of the central log
func Entries() []Entry {
	return central.copy()
}

// SetEcho prints new entries to output as they are logged. Tags are
// coloured when output is a terminal. A nil output stops the echo
func SetEcho(output io.Writer) {
	if output == nil {
		central.echo = nil
		return
	}
	if f, ok := output.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		central.echo = NewColorizer(output)
		return
	}
	central.echo = output
}
