package emulator

import "github.com/zeozeozeo/psxdma/logger"

// Identifies a device adapter variant
type DeviceKind uint8

const (
	DEVICE_NONE     DeviceKind = iota // Nothing connected
	DEVICE_MDEC_IN                    // Macroblock decoder input
	DEVICE_MDEC_OUT                   // Macroblock decoder output
	DEVICE_GPU                        // GP0 / GPUREAD
	DEVICE_CDROM                      // CD-ROM data buffer
	DEVICE_SPU                        // Sound RAM transfer port
	DEVICE_PIO                        // Extension port
	DEVICE_FILL                       // Memory fill (ordering table clear)
)

func (kind DeviceKind) String() string {
	switch kind {
	case DEVICE_NONE:
		return "none"
	case DEVICE_MDEC_IN:
		return "mdec-in"
	case DEVICE_MDEC_OUT:
		return "mdec-out"
	case DEVICE_GPU:
		return "gpu"
	case DEVICE_CDROM:
		return "cdrom"
	case DEVICE_SPU:
		return "spu"
	case DEVICE_PIO:
		return "pio"
	case DEVICE_FILL:
		return "fill"
	}
	return "unknown"
}

// A device adapter moves single words between a channel and its
// peripheral. Adapters are passive: the channel decides when and how many
// words move
type Device interface {
	Kind() DeviceKind
	// Returns true if the adapter can move data in `dir` at all
	Supports(dir Direction) bool
	// Returns true if the peripheral can take (DIRECTION_FROM_RAM) or
	// provide (DIRECTION_TO_RAM) a block right now. Only request mode
	// transfers look at it
	Ready(dir Direction) bool
	// Pops one word from the peripheral
	ReadWord() uint32
	// Pushes one word to the peripheral
	WriteWord(word uint32)
}

// Implemented by adapters that can follow a linked list. The chain lives
// in memory; the adapter only knows how a header word is laid out
type HeaderDecoder interface {
	DecodeHeader(header uint32) (next, count uint32)
}

// Implemented by adapters that generate memory contents instead of
// reading a peripheral. `remaining` counts the current word, so the last
// word of a transfer sees 1
type Filler interface {
	FillWord(addr, remaining uint32) uint32
}

// Adapter for an unconnected port
type NullDevice struct{}

func (NullDevice) Kind() DeviceKind { return DEVICE_NONE }
func (NullDevice) Supports(Direction) bool { return true }
func (NullDevice) Ready(Direction) bool { return true }
func (NullDevice) ReadWord() uint32 { return 0xffffffff }
func (NullDevice) WriteWord(uint32) {}

// Byte access to the CD-ROM controller's sector data buffer
type CdRomData interface {
	// Pops the next byte of the data buffer
	ReadData() byte
	// Returns true if the data buffer holds unread bytes
	DataReady() bool
}

// Channel 3 adapter. Every word drains four bytes from the CD-ROM data
// buffer
type CdRomDevice struct {
	Drive   CdRomData
	Dropped uint64 // Words written toward the drive, which has no input path
}

func NewCdRomDevice(drive CdRomData) *CdRomDevice {
	return &CdRomDevice{Drive: drive}
}

func (dev *CdRomDevice) Kind() DeviceKind { return DEVICE_CDROM }

func (dev *CdRomDevice) Supports(dir Direction) bool {
	return dir == DIRECTION_TO_RAM
}

func (dev *CdRomDevice) Ready(dir Direction) bool {
	return dir == DIRECTION_TO_RAM && dev.Drive.DataReady()
}

// Assembles four data buffer bytes into a little endian word
func (dev *CdRomDevice) ReadWord() uint32 {
	var data uint32
	data |= uint32(dev.Drive.ReadData()) << 0
	data |= uint32(dev.Drive.ReadData()) << 8
	data |= uint32(dev.Drive.ReadData()) << 16
	data |= uint32(dev.Drive.ReadData()) << 24
	return data
}

func (dev *CdRomDevice) WriteWord(word uint32) {
	dev.Dropped++
	logger.Logf(logger.Allow, "cdrom", "dma write %#08x ignored", word)
}

// The GPU's DMA facing ports
type GpuPort interface {
	GP0(val uint32)
	Read() uint32
	// Returns the GPU's DMA request state for `dir`
	DmaRequest(dir Direction) bool
}

// Channel 2 adapter, feeding GP0 and draining GPUREAD. Command lists are
// walked in linked list mode
type GpuDevice struct {
	Gpu GpuPort
}

func NewGpuDevice(gpu GpuPort) *GpuDevice {
	return &GpuDevice{Gpu: gpu}
}

func (dev *GpuDevice) Kind() DeviceKind { return DEVICE_GPU }
func (dev *GpuDevice) Supports(Direction) bool { return true }
func (dev *GpuDevice) Ready(dir Direction) bool { return dev.Gpu.DmaRequest(dir) }
func (dev *GpuDevice) ReadWord() uint32 { return dev.Gpu.Read() }
func (dev *GpuDevice) WriteWord(word uint32) { dev.Gpu.GP0(word) }

// Ordering table nodes: bits [23:0] link to the next node, bits [31:24]
// hold the number of command words that follow the header
func (dev *GpuDevice) DecodeHeader(header uint32) (next, count uint32) {
	return header & ADDRESS_MASK, header >> 24
}

// The SPU's sound RAM transfer port
type SpuPort interface {
	DmaWrite(word uint32)
	DmaRead() uint32
	DmaRequest(dir Direction) bool
}

// Channel 4 adapter
type SpuDevice struct {
	Spu SpuPort
}

func NewSpuDevice(spu SpuPort) *SpuDevice {
	return &SpuDevice{Spu: spu}
}

func (dev *SpuDevice) Kind() DeviceKind { return DEVICE_SPU }
func (dev *SpuDevice) Supports(Direction) bool { return true }
func (dev *SpuDevice) Ready(dir Direction) bool { return dev.Spu.DmaRequest(dir) }
func (dev *SpuDevice) ReadWord() uint32 { return dev.Spu.DmaRead() }
func (dev *SpuDevice) WriteWord(word uint32) { dev.Spu.DmaWrite(word) }

// What a FillDevice writes
type FillMode uint8

const (
	FILL_CONSTANT       FillMode = 0 // Every word is `Value`
	FILL_ORDERING_TABLE FillMode = 1 // Empty ordering table, each entry links to the previous word
)

// Channel 6 adapter. It has no peripheral behind it and only produces
// memory contents
type FillDevice struct {
	Mode  FillMode
	Value uint32 // Word written in FILL_CONSTANT mode
}

// Returns a fill adapter writing `value` to every word
func NewConstantFillDevice(value uint32) *FillDevice {
	return &FillDevice{Mode: FILL_CONSTANT, Value: value}
}

// Returns a fill adapter building empty ordering tables
func NewOrderingTableDevice() *FillDevice {
	return &FillDevice{Mode: FILL_ORDERING_TABLE}
}

func (dev *FillDevice) Kind() DeviceKind { return DEVICE_FILL }

func (dev *FillDevice) Supports(dir Direction) bool {
	return dir == DIRECTION_TO_RAM
}

func (dev *FillDevice) Ready(dir Direction) bool {
	return dir == DIRECTION_TO_RAM
}

func (dev *FillDevice) ReadWord() uint32 {
	return dev.Value
}

func (dev *FillDevice) WriteWord(uint32) {}

func (dev *FillDevice) FillWord(addr, remaining uint32) uint32 {
	if dev.Mode == FILL_CONSTANT {
		return dev.Value
	}
	// the last entry written is the end of list marker
	if remaining == 1 {
		return 0xffffff
	}
	return (addr - 4) & 0x1fffff
}
