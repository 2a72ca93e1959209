package emulator

import "github.com/zeozeozeo/psxdma/logger"

// Represents the 7 DMA ports
type Port uint32

const (
	PORT_MDEC_IN  Port = 0 // Macroblock decoder input
	PORT_MDEC_OUT Port = 1 // Macroblock decoder output
	PORT_GPU      Port = 2 // Graphics Processing Unit
	PORT_CDROM    Port = 3 // CD-ROM drive
	PORT_SPU      Port = 4 // Sound Processing Unit
	PORT_PIO      Port = 5 // Extension port
	PORT_OTC      Port = 6 // Used to clear the ordering table
)

// Number of DMA channels
const PORT_COUNT = 7

// Returns the port for a channel index, `ok` is false past the last port
func PortFromIndex(index uint32) (port Port, ok bool) {
	if index >= PORT_COUNT {
		return 0, false
	}
	return Port(index), true
}

func (port Port) String() string {
	switch port {
	case PORT_MDEC_IN:
		return "mdec-in"
	case PORT_MDEC_OUT:
		return "mdec-out"
	case PORT_GPU:
		return "gpu"
	case PORT_CDROM:
		return "cdrom"
	case PORT_SPU:
		return "spu"
	case PORT_PIO:
		return "pio"
	case PORT_OTC:
		return "otc"
	}
	return "invalid"
}

// Offsets of the global registers inside the DMA register window
type GlobalRegister uint32

const (
	REG_DPCR GlobalRegister = 0x70 // Priority control
	REG_DICR GlobalRegister = 0x74 // Interrupt control
)

// DPCR value after reset, from the Nocash PSX spec
const DPCR_RESET = 0x07654321

// Direct Memory Access
type DMA struct {
	Control         uint32 // DMA control register
	IrqEn           bool   // Master IRQ enable
	ChannelIrqEn    uint8  // IRQ enable for individual channels
	ChannelIrqFlags uint8  // IRQ flags for individual channels
	// When set the interrupt is active unconditionally, even
	// if `IrqEn` is false
	ForceIrq bool
	// Bits [0:5] of the interrupt registers are RW but I don't
	// know what they're supposed to do so they're just sent back
	// untouched on reads
	IrqDummy uint8
	// Level of the aggregated interrupt at the last update, used to only
	// signal rising edges
	IrqLine  bool
	Cycles   uint64              // Ticks since power on
	Channels [PORT_COUNT]*Channel // The 7 channel instances

	Memory Memory              // Main memory as seen by the DMA
	Intc   InterruptController // Receives INTERRUPT_DMA edges, may be nil
	Config Config
}

// Return a new reset DMA instance. The OTC port is bound to an ordering
// table fill adapter, every other port starts unconnected
func NewDMA(mem Memory, intc InterruptController, cfg Config) *DMA {
	if cfg.MaxListNodes == 0 {
		cfg.MaxListNodes = DefaultConfig().MaxListNodes
	}

	dma := &DMA{
		Control: DPCR_RESET,
		Memory:  mem,
		Intc:    intc,
		Config:  cfg,
	}

	// allocate channels
	for i := 0; i < len(dma.Channels); i++ {
		dma.Channels[i] = NewChannel(Port(i), dma)
	}
	dma.Channels[PORT_OTC].Device = NewOrderingTableDevice()

	return dma
}

// Binds a device adapter to `port`. A nil device disconnects the port
func (dma *DMA) Connect(port Port, dev Device) {
	if dev == nil {
		dev = NullDevice{}
	}
	dma.Channels[port].Device = dev
}

// Returns the channel instance for `port`
func (dma *DMA) Channel(port Port) *Channel {
	return dma.Channels[port]
}

// Soft reset. Transfers in flight are dropped without touching memory or
// devices again
func (dma *DMA) Reset() {
	for _, ch := range dma.Channels {
		ch.Reset()
	}
	dma.Control = DPCR_RESET
	dma.IrqEn = false
	dma.ChannelIrqEn = 0
	dma.ChannelIrqFlags = 0
	dma.ForceIrq = false
	dma.IrqDummy = 0
	dma.IrqLine = false
	logger.Log(logger.Allow, "dma", "reset")
}

// Set the control value
func (dma *DMA) SetControl(val uint32) {
	dma.Control = val
}

// Returns the DPCR priority of `port` and whether the port is enabled.
// Lower values win arbitration
func (dma *DMA) Priority(port Port) (priority uint32, enabled bool) {
	nibble := field(dma.Control, uint(port)*4, 4)
	return nibble & 7, nibble&8 != 0
}

// Return the status of the DMA interrupt
func (dma *DMA) Irq() bool {
	channelIrq := dma.ChannelIrqFlags & dma.ChannelIrqEn
	return dma.ForceIrq || (dma.IrqEn && channelIrq != 0)
}

// Return the value of the interrupt register
func (dma *DMA) Interrupt() uint32 {
	var r uint32 = 0
	r |= uint32(dma.IrqDummy)
	r |= oneIfTrue(dma.ForceIrq) << 15
	r |= uint32(dma.ChannelIrqEn) << 16
	r |= oneIfTrue(dma.IrqEn) << 23
	r |= uint32(dma.ChannelIrqFlags) << 24
	r |= oneIfTrue(dma.Irq()) << 31
	return r
}

// Set the value of the interrupt register
func (dma *DMA) SetInterrupt(val uint32) {
	// unknown what bits [5:0] do
	dma.IrqDummy = uint8(val & 0x3f)
	dma.ForceIrq = bitSet(val, 15)
	dma.ChannelIrqEn = uint8(field(val, 16, 7))
	dma.IrqEn = bitSet(val, 23)

	// writing 1 to a flag resets it
	ack := uint8(field(val, 24, 7))
	dma.ChannelIrqFlags &= ^ack

	dma.updateIrq()
}

// Reads DPCR or DICR
func (dma *DMA) ReadGlobalRegister(reg GlobalRegister) uint32 {
	switch reg {
	case REG_DPCR:
		return dma.Control
	case REG_DICR:
		return dma.Interrupt()
	}
	return 0
}

// Writes DPCR or DICR
func (dma *DMA) WriteGlobalRegister(reg GlobalRegister, val uint32) {
	switch reg {
	case REG_DPCR:
		dma.SetControl(val)
	case REG_DICR:
		dma.SetInterrupt(val)
	}
}

// Loads a register, `offset` is relative to the start of the DMA register
// window (0x1f801080)
func (dma *DMA) Load32(offset uint32) uint32 {
	major := (offset & 0x70) >> 4
	minor := offset & 0xf

	if port, ok := PortFromIndex(major); ok {
		return dma.Channels[port].ReadRegister(minor)
	}
	return dma.ReadGlobalRegister(GlobalRegister(offset & 0x7c))
}

// Stores a register, `offset` is relative to the start of the DMA
// register window
func (dma *DMA) Store32(offset, val uint32) {
	major := (offset & 0x70) >> 4
	minor := offset & 0xf

	if port, ok := PortFromIndex(major); ok {
		dma.Channels[port].WriteRegister(minor, val)
		dma.updateIrq()
		return
	}
	dma.WriteGlobalRegister(GlobalRegister(offset&0x7c), val)
}

// Called by a channel when its transfer ends
func (dma *DMA) channelDone(port Port) {
	dma.ChannelIrqFlags |= 1 << port
	dma.updateIrq()
}

// Recomputes the aggregated interrupt and signals the interrupt
// controller on a rising edge
func (dma *DMA) updateIrq() {
	level := dma.Irq()
	if level && !dma.IrqLine && dma.Intc != nil {
		dma.Intc.Raise(INTERRUPT_DMA)
	}
	dma.IrqLine = level
}

// Picks the channel allowed to use the bus: the lowest DPCR priority
// value among the enabled channels able to run, the lowest port on a tie
func (dma *DMA) arbitrate() *Channel {
	var best *Channel
	var bestPriority uint32

	for _, ch := range dma.Channels {
		priority, enabled := dma.Priority(ch.Port)
		if !enabled || !ch.runnable() {
			continue
		}
		if best == nil || priority < bestPriority {
			best = ch
			bestPriority = priority
		}
	}
	return best
}

// Returns true if a busy channel is holding off for a chopping window
func (dma *DMA) chopping() bool {
	for _, ch := range dma.Channels {
		if ch.Busy() && !ch.Chopping.NeedsSync(dma.Cycles) {
			return true
		}
	}
	return false
}

// Counts paused ticks and reports channels that wait for too long
func (dma *DMA) trackPauses() {
	for _, ch := range dma.Channels {
		if !ch.Busy() || !ch.Paused {
			continue
		}
		ch.PausedTicks++
		if dma.Config.StallTicks > 0 && ch.PausedTicks >= dma.Config.StallTicks && !ch.StallReported {
			ch.StallReported = true
			dma.Config.report(ch.Port, ErrStalled)
		}
	}
}

// Runs one bus cycle: at most one channel advances
func (dma *DMA) Tick() BusState {
	state := BUS_STATE_IDLE

	if ch := dma.arbitrate(); ch != nil {
		ch.step()
		state = BUS_STATE_TRANSFER
	} else if dma.chopping() {
		state = BUS_STATE_CHOPPED
	}

	dma.trackPauses()
	dma.updateIrq()
	dma.Cycles++
	return state
}

// Returns true if any channel has a transfer in progress
func (dma *DMA) Busy() bool {
	for _, ch := range dma.Channels {
		if ch.Busy() {
			return true
		}
	}
	return false
}

// Ticks until no channel is busy or `limit` ticks have run. Returns the
// number of ticks run
func (dma *DMA) RunUntilIdle(limit uint64) uint64 {
	var n uint64
	for n < limit && dma.Busy() {
		dma.Tick()
		n++
	}
	return n
}
