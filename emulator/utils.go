package emulator

// Mask for the 24 address bits the DMA can drive
const ADDRESS_MASK uint32 = 0xffffff

func oneIfTrue(val bool) uint32 {
	if val {
		return 1
	}
	return 0
}

// Returns true if bit `n` of `val` is set
func bitSet(val uint32, n uint) bool {
	return (val>>n)&1 != 0
}

// Returns the `width` bit field of `val` starting at bit `shift`
func field(val uint32, shift, width uint) uint32 {
	return (val >> shift) & (1<<width - 1)
}

// Moves a DMA address one word forward or backward, wrapping inside the
// 24 bit address space
func stepAddress(addr uint32, step Step) uint32 {
	if step == STEP_DECREMENT {
		return (addr - 4) & ADDRESS_MASK
	}
	return (addr + 4) & ADDRESS_MASK
}

// Returns the word aligned address actually presented to memory
func wordAddress(addr uint32) uint32 {
	return addr & 0xfffffc
}
