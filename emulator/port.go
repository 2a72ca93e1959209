package emulator

// Word queue adapter used for the MDEC input and output channels and the
// extension port. The peripheral side consumes `In` and fills `Out`
type PortDevice struct {
	kind DeviceKind
	dirs [2]bool

	In        *FIFO[uint32] // Words written by the DMA
	Out       *FIFO[uint32] // Words the DMA reads
	Overflows uint64        // Words dropped because `In` was full
	Underruns uint64        // Reads from an empty `Out`
}

func newPortDevice(kind DeviceKind, toRam, fromRam bool, depth int) *PortDevice {
	dev := &PortDevice{
		kind: kind,
		In:   NewFIFO[uint32](depth),
		Out:  NewFIFO[uint32](depth),
	}
	dev.dirs[DIRECTION_TO_RAM] = toRam
	dev.dirs[DIRECTION_FROM_RAM] = fromRam
	return dev
}

// MDEC command/data input, channel 0
func NewMdecInDevice() *PortDevice {
	return newPortDevice(DEVICE_MDEC_IN, false, true, 32)
}

// MDEC decoded macroblock output, channel 1
func NewMdecOutDevice() *PortDevice {
	return newPortDevice(DEVICE_MDEC_OUT, true, false, 32)
}

// Extension port, channel 5
func NewPioDevice() *PortDevice {
	return newPortDevice(DEVICE_PIO, true, true, 64)
}

func (dev *PortDevice) Kind() DeviceKind {
	return dev.kind
}

func (dev *PortDevice) Supports(dir Direction) bool {
	return dev.dirs[dir&1]
}

func (dev *PortDevice) Ready(dir Direction) bool {
	if dir == DIRECTION_FROM_RAM {
		return dev.Supports(dir) && !dev.In.IsFull()
	}
	return dev.Supports(dir) && !dev.Out.IsEmpty()
}

func (dev *PortDevice) ReadWord() uint32 {
	word, ok := dev.Out.Pop()
	if !ok {
		dev.Underruns++
		return 0
	}
	return word
}

func (dev *PortDevice) WriteWord(word uint32) {
	if !dev.In.Push(word) {
		dev.Overflows++
	}
}
