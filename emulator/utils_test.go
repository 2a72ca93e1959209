package emulator

import (
	"testing"
)

func TestOneIfTrue(t *testing.T) {
	assert := func(v bool) {
		t.Helper()
		if !v {
			t.Error("assert failed")
		}
	}

	assert(oneIfTrue(true) == 1)
	assert(oneIfTrue(false) == 0)
}

func TestField(t *testing.T) {
	assert := func(v bool) {
		t.Helper()
		if !v {
			t.Error("assert failed")
		}
	}

	assert(field(0x00070000, 16, 3) == 7)
	assert(field(0x00000600, 9, 2) == 3)
	assert(field(0xffffffff, 24, 8) == 0xff)
	assert(bitSet(0x01000000, 24))
	assert(!bitSet(0x01000000, 28))
}

func TestStepAddress(t *testing.T) {
	assert := func(v bool) {
		t.Helper()
		if !v {
			t.Error("assert failed")
		}
	}

	assert(stepAddress(0x1000, STEP_INCREMENT) == 0x1004)
	assert(stepAddress(0x1000, STEP_DECREMENT) == 0xffc)
	assert(stepAddress(0xfffffc, STEP_INCREMENT) == 0)
	assert(stepAddress(0, STEP_DECREMENT) == 0xfffffc)
	assert(wordAddress(0x1003) == 0x1000)
	assert(wordAddress(0x80001000&ADDRESS_MASK) == 0x1000)
}
