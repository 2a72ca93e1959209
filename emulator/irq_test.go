package emulator

import "testing"

func TestIrqState(t *testing.T) {
	assert := func(v bool) {
		t.Helper()
		if !v {
			t.Error("assert failed")
		}
	}

	irq := NewIrqState()
	irq.Raise(INTERRUPT_DMA)
	assert(irq.Status == 1<<3)
	assert(!irq.Active())

	irq.SetMask(1 << 3)
	assert(irq.Active())
	assert(irq.Pending() == 1<<3)

	irq.Raise(INTERRUPT_VBLANK)
	assert(irq.Pending() == 1<<3)
	assert(irq.Edges[INTERRUPT_DMA] == 1)
	assert(irq.Edges[INTERRUPT_VBLANK] == 1)

	irq.Acknowledge(^uint16(1<<3 | 1))
	assert(irq.Status == 0)
	assert(!irq.Active())
}
