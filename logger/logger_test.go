package logger

import (
	"bytes"
	"testing"
)

func TestLogger(t *testing.T) {
	l := newLogger(maxCentral)
	buf := &bytes.Buffer{}

	if l.write(buf) {
		t.Error("empty log reported entries")
	}

	l.log("test", "this is a test")
	l.write(buf)
	if buf.String() != "test: this is a test\n" {
		t.Errorf("unexpected log output %q", buf.String())
	}

	buf.Reset()
	l.log("test2", "this is another test")
	l.write(buf)
	if buf.String() != "test: this is a test\ntest2: this is another test\n" {
		t.Errorf("unexpected log output %q", buf.String())
	}

	// asking for too many entries in a tail is fine
	buf.Reset()
	l.tail(buf, 100)
	if buf.String() != "test: this is a test\ntest2: this is another test\n" {
		t.Errorf("unexpected tail output %q", buf.String())
	}

	buf.Reset()
	l.tail(buf, 1)
	if buf.String() != "test2: this is another test\n" {
		t.Errorf("unexpected tail output %q", buf.String())
	}

	buf.Reset()
	l.tail(buf, 0)
	if buf.String() != "" {
		t.Errorf("unexpected tail output %q", buf.String())
	}
}

func TestRepeatedEntries(t *testing.T) {
	l := newLogger(maxCentral)
	buf := &bytes.Buffer{}

	l.logf("dma", "port %d stalled", 3)
	l.logf("dma", "port %d stalled", 3)
	l.logf("dma", "port %d stalled", 3)
	l.write(buf)
	if buf.String() != "dma: port 3 stalled (repeat x3)\n" {
		t.Errorf("unexpected log output %q", buf.String())
	}
}

func TestMaxEntries(t *testing.T) {
	l := newLogger(2)
	l.log("a", "1")
	l.log("b", "2")
	l.log("c", "3")

	entries := l.copy()
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Tag != "b" || entries[1].Tag != "c" {
		t.Errorf("oldest entry was not dropped: %v", entries)
	}
}

func TestEcho(t *testing.T) {
	l := newLogger(maxCentral)
	buf := &bytes.Buffer{}
	l.echo = buf

	l.log("dma", "started")
	if buf.String() != "dma: started\n" {
		t.Errorf("unexpected echo %q", buf.String())
	}
}

func TestColorizer(t *testing.T) {
	buf := &bytes.Buffer{}
	c := NewColorizer(buf)

	n, err := c.Write([]byte("dma: done\n"))
	if err != nil {
		t.Fatal(err)
	}
	if n != len("dma: done\n") {
		t.Errorf("unexpected write count %d", n)
	}
	if buf.String() != penTag+"dma"+penNormal+": done\n" {
		t.Errorf("unexpected colourised output %q", buf.String())
	}
}
