package emulator

import "github.com/zeozeozeo/psxdma/logger"

// Global interconnect. It routes the CPU's 32 bit memory accesses to RAM
// and to the memory mapped registers of the DMA and its neighbours
type Interconnect struct {
	Ram *RAM      // Main RAM
	Dma *DMA      // DMA engine
	Gpu *GPU      // May be nil
	Irq *IrqState // May be nil
}

// Creates a new interconnect instance
func NewInterconnect(ram *RAM, dma *DMA, gpu *GPU, irq *IrqState) *Interconnect {
	return &Interconnect{
		Ram: ram,
		Dma: dma,
		Gpu: gpu,
		Irq: irq,
	}
}

// Returns a 32bit little endian value at `addr`. Unmapped addresses read
// as all ones
func (inter *Interconnect) Load32(addr uint32) uint32 {
	abs := MaskRegion(addr)

	switch {
	case RAM_RANGE.Contains(abs):
		return inter.Ram.Load32(RAM_RANGE.Offset(abs))
	case DMA_RANGE.Contains(abs):
		return inter.Dma.Load32(DMA_RANGE.Offset(abs))
	case GPU_RANGE.Contains(abs) && inter.Gpu != nil:
		switch GPU_RANGE.Offset(abs) {
		case 0:
			return inter.Gpu.Read()
		case 4:
			return inter.Gpu.Status()
		}
	case IRQ_CONTROL.Contains(abs) && inter.Irq != nil:
		switch IRQ_CONTROL.Offset(abs) {
		case 0:
			return uint32(inter.Irq.Status)
		case 4:
			return uint32(inter.Irq.Mask)
		}
	}

	logger.Logf(logger.Allow, "interconnect", "unhandled load32 at address %#08x", addr)
	return 0xffffffff
}

// Stores a 32bit value into `addr`. Writes to unmapped addresses are
// dropped
func (inter *Interconnect) Store32(addr, val uint32) {
	abs := MaskRegion(addr)

	switch {
	case RAM_RANGE.Contains(abs):
		inter.Ram.Store32(RAM_RANGE.Offset(abs), val)
		return
	case DMA_RANGE.Contains(abs):
		inter.Dma.Store32(DMA_RANGE.Offset(abs), val)
		return
	case GPU_RANGE.Contains(abs) && inter.Gpu != nil:
		switch GPU_RANGE.Offset(abs) {
		case 0:
			inter.Gpu.GP0(val)
			return
		case 4:
			inter.Gpu.GP1(val)
			return
		}
	case IRQ_CONTROL.Contains(abs) && inter.Irq != nil:
		switch IRQ_CONTROL.Offset(abs) {
		case 0:
			inter.Irq.Acknowledge(uint16(val))
			return
		case 4:
			inter.Irq.SetMask(uint16(val))
			return
		}
	}

	logger.Logf(logger.Allow, "interconnect", "unhandled store32 at address %#08x", addr)
}
