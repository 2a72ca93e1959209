package emulator

var (
	// RAM
	RAM_RANGE = NewRange(0x00000000, RAM_ALLOC_SIZE)
	// Interrupt status and mask registers
	IRQ_CONTROL = NewRange(0x1f801070, 8)
	// DMA channel registers followed by DPCR and DICR
	DMA_RANGE = NewRange(0x1f801080, 0x80)
	// GPU registers (GP0/GPUREAD, GP1/GPUSTAT)
	GPU_RANGE = NewRange(0x1f801810, 8)
)

// Masks used to strip the KSEG region bits from a CPU address, indexed by
// the 3 most significant bits
var REGION_MASK = [8]uint32{
	// KUSEG: 2048MB
	0xffffffff, 0xffffffff, 0xffffffff, 0xffffffff,
	// KSEG0: 512MB
	0x7fffffff,
	// KSEG1: 512MB
	0x1fffffff,
	// KSEG2: 1024MB
	0xffffffff, 0xffffffff,
}

// Maps a CPU address to a physical address
func MaskRegion(addr uint32) uint32 {
	return addr & REGION_MASK[addr>>29]
}

type Range struct {
	Start  uint32 // Start address
	Length uint32 // Length of the mapping
}

func NewRange(start uint32, length uint32) Range {
	return Range{Start: start, Length: length}
}

// Returns whether `addr` is located inside this range
func (r *Range) Contains(addr uint32) bool {
	return addr >= r.Start && addr < r.Start+r.Length
}

// Returns the offset between `addr` and the `Start` of the range.
// Does not check if the range contains the address, so if `addr`
// is smaller than `Start`, there will be an overflow
func (r *Range) Offset(addr uint32) uint32 {
	return addr - r.Start
}
