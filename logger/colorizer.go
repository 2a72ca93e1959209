package logger

import (
	"io"
	"strings"
)

const (
	penTag    = "\033[36m"
	penNormal = "\033[0m"
)

// Colorizer highlights the tag of each log line written through it
type Colorizer struct {
	out io.Writer
}

func NewColorizer(out io.Writer) Colorizer {
	return Colorizer{out: out}
}

// Write implements the io.Writer interface
func (c Colorizer) Write(p []byte) (int, error) {
	s := string(p)
	tag, rest, ok := strings.Cut(s, ": ")
	if !ok {
		return c.out.Write(p)
	}
	if _, err := io.WriteString(c.out, penTag+tag+penNormal+": "+rest); err != nil {
		return 0, err
	}
	return len(p), nil
}
