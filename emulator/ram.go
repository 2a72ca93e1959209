package emulator

import "encoding/binary"

const (
	RAM_ALLOC_SIZE = 2 * 1024 * 1024 // Main PlayStation RAM: 2MB
)

// Word access to main memory. This is the only path the DMA uses to reach
// memory
type Memory interface {
	Load32(addr uint32) uint32
	Store32(addr, val uint32)
}

type RAM struct {
	Data [RAM_ALLOC_SIZE]byte // RAM buffer
}

// Creates a new RAM instance (allocates `RAM_ALLOC_SIZE` bytes and fills
// them with garbage values)
func NewRAM() *RAM {
	ram := &RAM{}
	for i := 0; i < len(ram.Data); i++ {
		ram.Data[i] = 0xcd
	}
	return ram
}

// Load a 32 bit little endian word at `addr`. The 2MB are mirrored over
// the whole address space
func (ram *RAM) Load32(addr uint32) uint32 {
	offset := addr & (RAM_ALLOC_SIZE - 1) &^ 3
	return binary.LittleEndian.Uint32(ram.Data[offset:])
}

// Store a 32 bit little endian word `val` into `addr`
func (ram *RAM) Store32(addr, val uint32) {
	offset := addr & (RAM_ALLOC_SIZE - 1) &^ 3
	binary.LittleEndian.PutUint32(ram.Data[offset:], val)
}

// Fetches the byte at `addr`
func (ram *RAM) Load8(addr uint32) byte {
	return ram.Data[addr&(RAM_ALLOC_SIZE-1)]
}

// Sets the byte at `addr`
func (ram *RAM) Store8(addr uint32, val byte) {
	ram.Data[addr&(RAM_ALLOC_SIZE-1)] = val
}
