package emulator

import "testing"

func TestRAM(t *testing.T) {
	assert := func(v bool) {
		t.Helper()
		if !v {
			t.Error("assert failed")
		}
	}

	ram := NewRAM()
	assert(ram.Load32(0) == 0xcdcdcdcd)

	ram.Store32(0x1000, 0x11223344)
	assert(ram.Load8(0x1000) == 0x44)
	assert(ram.Load8(0x1003) == 0x11)
	assert(ram.Load32(0x1000) == 0x11223344)

	// mirrored every 2MB
	assert(ram.Load32(0x201000) == 0x11223344)
	// unaligned accesses are forced to the word
	assert(ram.Load32(0x1002) == 0x11223344)

	ram.Store8(0x2000, 0xab)
	assert(ram.Load32(0x2000) == 0xcdcdcdab)
}
