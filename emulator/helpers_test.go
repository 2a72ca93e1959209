package emulator

import "testing"

// Memory recording every address it is asked for
type recordingMemory struct {
	ram    *RAM
	loads  []uint32
	stores []uint32
}

func newRecordingMemory() *recordingMemory {
	return &recordingMemory{ram: NewRAM()}
}

func (mem *recordingMemory) Load32(addr uint32) uint32 {
	mem.loads = append(mem.loads, addr)
	return mem.ram.Load32(addr)
}

func (mem *recordingMemory) Store32(addr, val uint32) {
	mem.stores = append(mem.stores, addr)
	mem.ram.Store32(addr, val)
}

// Device recording the words written to it and producing a counting
// sequence on reads
type recordingDevice struct {
	writes []uint32
	reads  int
	next   uint32
	ready  bool
}

func (dev *recordingDevice) Kind() DeviceKind        { return DEVICE_PIO }
func (dev *recordingDevice) Supports(Direction) bool { return true }
func (dev *recordingDevice) Ready(Direction) bool    { return dev.ready }

func (dev *recordingDevice) ReadWord() uint32 {
	dev.reads++
	dev.next++
	return dev.next
}

func (dev *recordingDevice) WriteWord(word uint32) {
	dev.writes = append(dev.writes, word)
}

// Recording device able to walk GPU style linked lists
type listDevice struct {
	recordingDevice
}

func (dev *listDevice) DecodeHeader(header uint32) (next, count uint32) {
	return header & ADDRESS_MASK, header >> 24
}

type countingIntc struct {
	raised int
}

func (intc *countingIntc) Raise(line Interrupt) {
	if line == INTERRUPT_DMA {
		intc.raised++
	}
}

type diagnostic struct {
	port Port
	err  error
}

type testRig struct {
	dma    *DMA
	mem    *recordingMemory
	intc   *countingIntc
	errors []diagnostic
}

// Returns an engine with every port enabled in DPCR at its reset priority
func newTestRig(t *testing.T) *testRig {
	t.Helper()

	rig := &testRig{
		mem:  newRecordingMemory(),
		intc: &countingIntc{},
	}
	cfg := DefaultConfig()
	cfg.Diagnostic = func(port Port, err error) {
		rig.errors = append(rig.errors, diagnostic{port: port, err: err})
	}
	rig.dma = NewDMA(rig.mem, rig.intc, cfg)
	rig.dma.SetControl(DPCR_RESET | 0x08888888)
	return rig
}

// Programs a channel through its registers
func (rig *testRig) program(port Port, base, bcr, chcr uint32) {
	offset := uint32(port) << 4
	rig.dma.Store32(offset+REG_MADR, base)
	rig.dma.Store32(offset+REG_BCR, bcr)
	rig.dma.Store32(offset+REG_CHCR, chcr)
}

func expectEquality[T comparable](t *testing.T, value T, expected T) {
	t.Helper()
	if value != expected {
		t.Errorf("equality test failed: %v does not equal %v", value, expected)
	}
}

func expectSlice[T comparable](t *testing.T, value []T, expected []T) {
	t.Helper()
	if len(value) != len(expected) {
		t.Fatalf("length mismatch: got %d (%v), expected %d (%v)", len(value), value, len(expected), expected)
	}
	for i := range value {
		if value[i] != expected[i] {
			t.Errorf("index %d: got %v, expected %v", i, value[i], expected[i])
		}
	}
}
