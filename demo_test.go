package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/zeozeozeo/psxdma/emulator"
)

func TestDemoWorkload(t *testing.T) {
	m := emulator.NewMachine(emulator.DefaultConfig())
	sector := defaultSector()
	m.Gpu.Record = true
	demo := NewDemo(m, sector)

	ran := demo.Run(1 << 20)
	if !demo.Done() {
		t.Fatalf("demo not done after %d cycles", ran)
	}
	m.Gpu.Execute(-1)

	// ordering table
	if v := m.Ram.Load32(0x100000); v != 0xffffff {
		t.Errorf("first entry is %#x", v)
	}
	if v := m.Ram.Load32(0x100004); v != 0x100000 {
		t.Errorf("second entry is %#x", v)
	}

	// four packets of two words
	if len(m.Gpu.Commands) != 8 {
		t.Fatalf("gpu received %d words", len(m.Gpu.Commands))
	}
	for i, word := range m.Gpu.Commands {
		if i%2 == 0 && word>>24 != 0xe1 {
			t.Errorf("word %d is %#x", i, word)
		}
	}

	// sector went through RAM to sound RAM
	for i, b := range sector {
		if m.Spu.Ram[spuUpload+i] != b {
			t.Fatalf("sound ram byte %d is %#x, expected %#x", i, m.Spu.Ram[spuUpload+i], b)
		}
	}
	if m.CdRom.DataReady() {
		t.Error("sector buffer not drained")
	}

	flags := m.Dma.Interrupt() >> 24 & 0x7f
	expected := uint32(1<<emulator.PORT_GPU | 1<<emulator.PORT_CDROM | 1<<emulator.PORT_SPU | 1<<emulator.PORT_OTC)
	if flags != expected {
		t.Errorf("DICR flags %#x, expected %#x", flags, expected)
	}
	if m.Irq.Status&(1<<emulator.INTERRUPT_DMA) == 0 {
		t.Error("no DMA interrupt reached the interrupt controller")
	}
}

func TestDemoWithoutSector(t *testing.T) {
	m := emulator.NewMachine(emulator.DefaultConfig())
	demo := NewDemo(m, nil)
	if !demo.Done() {
		t.Error("empty demo should be done")
	}
	if demo.Run(100) != 0 {
		t.Error("empty demo ran cycles")
	}
}

func TestSummary(t *testing.T) {
	m := emulator.NewMachine(emulator.DefaultConfig())
	NewDemo(m, defaultSector()).Run(1 << 20)

	var buf bytes.Buffer
	printSummary(&buf, m)
	out := buf.String()
	for _, s := range []string{"cdrom", "completed", "DPCR 0fedcba9"} {
		if !strings.Contains(out, s) {
			t.Errorf("summary is missing %q:\n%s", s, out)
		}
	}
}
