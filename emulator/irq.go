package emulator

// The CPU side interrupt controller (I_STAT and I_MASK)
type IrqState struct {
	Status uint16     // Interrupt status
	Mask   uint16     // Interrupt mask
	Edges  [16]uint64 // Number of times each line was raised
}

// Represents an interrupt line
type Interrupt uint16

const (
	INTERRUPT_VBLANK Interrupt = 0 // GPU is in vertical blanking
	INTERRUPT_CDROM  Interrupt = 2 // CD-ROM controller
	INTERRUPT_DMA    Interrupt = 3 // DMA transfer complete
)

// Receives the DMA's aggregated interrupt. Raise is only called on a
// rising edge
type InterruptController interface {
	Raise(line Interrupt)
}

// Returns a new interrupt instance
func NewIrqState() *IrqState {
	return &IrqState{}
}

// Returns true if any interrupt is active
func (state *IrqState) Active() bool {
	return state.Pending() != 0
}

// I_STAT writes acknowledge the lines written as 0
func (state *IrqState) Acknowledge(ack uint16) {
	state.Status &= ack
}

func (state *IrqState) SetMask(mask uint16) {
	state.Mask = mask
}

// Latches `interrupt` in the status register
func (state *IrqState) Raise(interrupt Interrupt) {
	state.Status |= 1 << interrupt
	state.Edges[interrupt&15]++
}

// Returns the lines that are both raised and unmasked
func (state *IrqState) Pending() uint16 {
	return state.Status & state.Mask
}
