package emulator

import (
	"fmt"

	"github.com/zeozeozeo/psxdma/logger"
)

// DMA transfer direction (To/From RAM)
type Direction uint32

const (
	DIRECTION_TO_RAM   Direction = 0
	DIRECTION_FROM_RAM Direction = 1
)

func (dir Direction) String() string {
	if dir == DIRECTION_FROM_RAM {
		return "from-ram"
	}
	return "to-ram"
}

// DMA transfer step
type Step uint32

const (
	STEP_INCREMENT Step = 0
	STEP_DECREMENT Step = 1
)

// DMA transfer synchronization mode
type Sync uint32

const (
	// Transfer starts when the CPU writes to the Trigger bit and transfers
	// everything at once
	SYNC_MANUAL Sync = 0
	// Sync blocks to DMA requests
	SYNC_REQUEST Sync = 1
	// Used to transfer GPU command lists
	SYNC_LINKED_LIST Sync = 2
	// Undefined value of the 2 bit field. Starting a channel in this mode
	// is a configuration error
	SYNC_RESERVED Sync = 3
)

func (sync Sync) String() string {
	switch sync {
	case SYNC_MANUAL:
		return "manual"
	case SYNC_REQUEST:
		return "request"
	case SYNC_LINKED_LIST:
		return "linked-list"
	}
	return "reserved"
}

// Externally visible state of a channel
type TransferState int

const (
	TRANSFER_IDLE      TransferState = iota // Never started, or stopped by software
	TRANSFER_RUNNING                        // Busy and able to move data
	TRANSFER_PAUSED                         // Busy but waiting for its device or a chopping window
	TRANSFER_COMPLETED                      // Last transfer ran to its end
)

func (state TransferState) String() string {
	switch state {
	case TRANSFER_IDLE:
		return "idle"
	case TRANSFER_RUNNING:
		return "running"
	case TRANSFER_PAUSED:
		return "paused"
	case TRANSFER_COMPLETED:
		return "completed"
	}
	return "unknown"
}

// Outcome of a channel step
type StepResult int

const (
	STEP_CONTINUE  StepResult = iota // More data to move
	STEP_COMPLETED                   // The transfer is over
)

// Register offsets inside a channel's 16 byte register block
const (
	REG_MADR uint32 = 0x0 // Base address
	REG_BCR  uint32 = 0x4 // Block control
	REG_CHCR uint32 = 0x8 // Channel control
)

// Linked list headers with this bit set in the next address end the list
const LIST_END_MARKER uint32 = 0x800000

// Progress of an active transfer. Only exists while the channel is busy
type Cursor struct {
	Address   uint32 // Next memory address
	Remaining uint32 // Words left in the current block or list node
	Blocks    uint32 // Request mode: blocks left, the current one included
	Header    bool   // Linked list: the next word read is a node header
	Next      uint32 // Linked list: address of the following node
	Nodes     uint32 // Linked list: headers read so far
	Window    uint32 // Words moved since the last chopping pause
	Words     uint32 // Words moved since the transfer started
}

type Channel struct {
	Port       Port
	Device     Device    // Bound adapter, owned by the surrounding system
	Direction  Direction // Transfer direction
	Stepping   Step      // Address step
	Sync       Sync      // Synchronization mode
	Trigger    bool      // Used to start the DMA transfer when `Sync` is `SYNC_MANUAL`
	Chop       bool      // If true, the DMA "chops" the transfer and lets the CPU run in the gaps
	ChopDmaSz  uint8     // Chopping DMA window size (log2 number of words)
	ChopCpuSz  uint8     // Chopping CPU window size (log2 number of cycles)
	Dummy      uint8     // Unknown 2 RW bits in configuration register
	Base       uint32    // DMA start address
	BlockSize  uint16    // Size of a block in words
	BlockCount uint16    // Block count, only used when `Sync` is `SYNC_REQUEST`

	Cursor        *Cursor   // Active transfer, nil when the channel is not busy
	Completed     bool      // The last transfer reached its end
	Paused        bool      // Request mode transfer waiting for its device
	PausedTicks   uint64    // Consecutive ticks spent in `Paused`
	StallReported bool      // The current pause was already reported
	Chopping      TimeSheet // Bus hold between chopping windows

	engine *DMA
}

// Create a new channel instance for `port`, owned by `engine`
func NewChannel(port Port, engine *DMA) *Channel {
	return &Channel{
		Port:      port,
		Device:    NullDevice{},
		Direction: DIRECTION_TO_RAM,
		Stepping:  STEP_INCREMENT,
		Sync:      SYNC_MANUAL,
		engine:    engine,
	}
}

// Returns true while a transfer is in progress (CHCR bit 24)
func (ch *Channel) Busy() bool {
	return ch.Cursor != nil
}

func (ch *Channel) State() TransferState {
	switch {
	case ch.Cursor != nil && (ch.Paused || !ch.Chopping.NeedsSync(ch.engine.Cycles)):
		return TRANSFER_PAUSED
	case ch.Cursor != nil:
		return TRANSFER_RUNNING
	case ch.Completed:
		return TRANSFER_COMPLETED
	}
	return TRANSFER_IDLE
}

func (ch *Channel) Control() uint32 {
	var r uint32 = 0
	r |= uint32(ch.Direction) << 0
	r |= uint32(ch.Stepping) << 1
	r |= oneIfTrue(ch.Chop) << 8
	r |= uint32(ch.Sync) << 9
	r |= uint32(ch.ChopDmaSz) << 16
	r |= uint32(ch.ChopCpuSz) << 20
	r |= oneIfTrue(ch.Busy()) << 24
	r |= oneIfTrue(ch.Trigger) << 28
	r |= uint32(ch.Dummy) << 29

	return r
}

// Writes CHCR. While the channel is busy a second start is ignored and
// clearing bit 24 stops the transfer
func (ch *Channel) SetControl(val uint32) {
	if ch.Port == PORT_OTC {
		// only bits 24, 28 and 30 are writable, the OTC always walks
		// backward toward RAM
		val = val&0x51000000 | 0x00000002
	}

	if ch.Busy() {
		if !bitSet(val, 24) {
			ch.abort()
		}
		return
	}

	ch.Direction = Direction(field(val, 0, 1))
	ch.Stepping = Step(field(val, 1, 1))
	ch.Chop = bitSet(val, 8)
	ch.Sync = Sync(field(val, 9, 2))
	ch.ChopDmaSz = uint8(field(val, 16, 3))
	ch.ChopCpuSz = uint8(field(val, 20, 3))
	ch.Trigger = bitSet(val, 28)
	ch.Dummy = uint8(field(val, 29, 2))

	if ch.Active(bitSet(val, 24)) {
		ch.start()
	}
}

// Returns true if a CHCR write with the start bit `enable` starts the
// channel. In manual sync mode the CPU must also set the `Trigger` bit
func (ch *Channel) Active(enable bool) bool {
	trigger := true
	if ch.Sync == SYNC_MANUAL {
		trigger = ch.Trigger
	}
	return enable && trigger
}

// Set the channel base address. Only bits [0:23] are significant, so
// only 16MB are addressable by the DMA
func (ch *Channel) SetBase(val uint32) {
	ch.Base = val & ADDRESS_MASK
}

// Return value of the Block Control register
func (ch *Channel) BlockControl() uint32 {
	bs := uint32(ch.BlockSize)
	bc := uint32(ch.BlockCount)
	return (bc << 16) | bs
}

// Set value of the Block Control register
func (ch *Channel) SetBlockControl(val uint32) {
	ch.BlockSize = uint16(val)
	ch.BlockCount = uint16(val >> 16)
}

// Returns the DMA transfer size in words. `valid` is false for linked
// list mode
func (ch *Channel) TransferSize() (valid bool, size uint32) {
	bs := uint32(ch.BlockSize)
	bc := uint32(ch.BlockCount)

	switch ch.Sync {
	// for manual mode, only the block size is used
	case SYNC_MANUAL:
		return true, bs
	// in DMA request mode we must transfer `bc` blocks
	case SYNC_REQUEST:
		return true, bc * bs
	}
	// in linked list mode the size is not known ahead of time
	return false, 0
}

// Reads the register at `offset` in the channel's register block
func (ch *Channel) ReadRegister(offset uint32) uint32 {
	switch offset & 0xf {
	case REG_MADR:
		return ch.Base
	case REG_BCR:
		return ch.BlockControl()
	case REG_CHCR:
		return ch.Control()
	}
	return 0
}

// Writes the register at `offset` in the channel's register block. MADR
// and BCR are frozen while a transfer is in progress
func (ch *Channel) WriteRegister(offset, val uint32) {
	switch offset & 0xf {
	case REG_MADR:
		if !ch.Busy() {
			ch.SetBase(val)
		}
	case REG_BCR:
		if !ch.Busy() {
			ch.SetBlockControl(val)
		}
	case REG_CHCR:
		ch.SetControl(val)
	}
}

// Returns the reason the current configuration cannot be started, if any
func (ch *Channel) validate() error {
	if ch.Sync == SYNC_RESERVED {
		return ErrUnknownSyncMode
	}
	if !ch.Device.Supports(ch.Direction) {
		return fmt.Errorf("%w: %s %s", ErrWrongDirection, ch.Device.Kind(), ch.Direction)
	}
	if ch.Sync == SYNC_LINKED_LIST {
		if ch.Direction == DIRECTION_TO_RAM {
			return ErrListToRAM
		}
		if _, ok := ch.Device.(HeaderDecoder); !ok {
			return fmt.Errorf("%w: %s", ErrNotListCapable, ch.Device.Kind())
		}
	}
	return nil
}

func (ch *Channel) start() {
	ch.Trigger = false
	ch.Completed = false
	ch.clearPause()
	ch.Chopping.Clear()

	cursor := &Cursor{Address: ch.Base}
	switch ch.Sync {
	case SYNC_MANUAL:
		cursor.Remaining = uint32(ch.BlockSize)
		cursor.Blocks = 1
	case SYNC_REQUEST:
		cursor.Remaining = uint32(ch.BlockSize)
		cursor.Blocks = uint32(ch.BlockCount)
	case SYNC_LINKED_LIST:
		cursor.Header = true
	}
	ch.Cursor = cursor

	if err := ch.validate(); err != nil {
		ch.fail(err)
		return
	}

	if ch.engine.Config.Trace {
		logger.Logf(logger.Allow, "dma", "%s: start %s %s base=%#06x bcr=%#08x",
			ch.Port, ch.Sync, ch.Direction, ch.Base, ch.BlockControl())
	}

	// empty transfers complete straight away
	if valid, size := ch.TransferSize(); valid && size == 0 {
		ch.complete()
	}
}

// Ends the transfer and posts the channel's completion flag
func (ch *Channel) complete() {
	if ch.engine.Config.Trace {
		logger.Logf(logger.Allow, "dma", "%s: done after %d words", ch.Port, ch.Cursor.Words)
	}
	ch.Cursor = nil
	ch.Completed = true
	ch.clearPause()
	ch.engine.channelDone(ch.Port)
}

// Reports a configuration error and forces the channel to complete
func (ch *Channel) fail(err error) {
	ch.engine.Config.report(ch.Port, err)
	ch.complete()
}

// Drops the active transfer without raising the completion flag
func (ch *Channel) abort() {
	ch.Cursor = nil
	ch.Trigger = false
	ch.clearPause()
	ch.Chopping.Clear()
}

func (ch *Channel) clearPause() {
	ch.Paused = false
	ch.PausedTicks = 0
	ch.StallReported = false
}

// Returns to the power on state, abandoning any transfer
func (ch *Channel) Reset() {
	ch.abort()
	ch.Direction = DIRECTION_TO_RAM
	ch.Stepping = STEP_INCREMENT
	ch.Sync = SYNC_MANUAL
	ch.Chop = false
	ch.ChopDmaSz = 0
	ch.ChopCpuSz = 0
	ch.Dummy = 0
	ch.Base = 0
	ch.BlockSize = 0
	ch.BlockCount = 0
	ch.Completed = false
}

// Returns true if the channel can move data this tick. A request mode
// channel at a block boundary whose device is not ready becomes paused
func (ch *Channel) runnable() bool {
	cursor := ch.Cursor
	if cursor == nil || !ch.Chopping.NeedsSync(ch.engine.Cycles) {
		return false
	}
	if ch.Sync == SYNC_REQUEST && cursor.Remaining == uint32(ch.BlockSize) && !ch.Device.Ready(ch.Direction) {
		ch.Paused = true
		return false
	}
	ch.Paused = false
	return true
}

// Advances the transfer by one unit: the whole manual transfer, one
// request block or one linked list node. An exhausted chopping window
// ends the step early. Only the arbiter calls this, after runnable()
// has checked the chopping hold and the device request
func (ch *Channel) step() StepResult {
	cursor := ch.Cursor
	if cursor == nil {
		return STEP_COMPLETED
	}
	ch.clearPause()

	switch ch.Sync {
	case SYNC_MANUAL:
		return ch.stepManual(cursor)
	case SYNC_REQUEST:
		return ch.stepRequest(cursor)
	case SYNC_LINKED_LIST:
		return ch.stepList(cursor)
	}
	ch.fail(ErrUnknownSyncMode)
	return STEP_COMPLETED
}

func (ch *Channel) stepManual(cursor *Cursor) StepResult {
	if !ch.burst(cursor, ch.Stepping) {
		return STEP_CONTINUE
	}
	ch.Base = cursor.Address
	ch.complete()
	return STEP_COMPLETED
}

func (ch *Channel) stepRequest(cursor *Cursor) StepResult {
	if !ch.burst(cursor, ch.Stepping) {
		return STEP_CONTINUE
	}

	// MADR and the block count follow the transfer block by block
	cursor.Blocks--
	ch.Base = cursor.Address
	ch.BlockCount = uint16(cursor.Blocks)
	if cursor.Blocks == 0 {
		ch.complete()
		return STEP_COMPLETED
	}
	cursor.Remaining = uint32(ch.BlockSize)
	return STEP_CONTINUE
}

func (ch *Channel) stepList(cursor *Cursor) StepResult {
	if cursor.Header {
		if cursor.Nodes >= ch.engine.Config.MaxListNodes {
			ch.fail(fmt.Errorf("%w (%d nodes)", ErrListTooLong, cursor.Nodes))
			return STEP_COMPLETED
		}

		decoder, ok := ch.Device.(HeaderDecoder)
		if !ok {
			ch.fail(fmt.Errorf("%w: %s", ErrNotListCapable, ch.Device.Kind()))
			return STEP_COMPLETED
		}

		header := ch.engine.Memory.Load32(wordAddress(cursor.Address))
		cursor.Nodes++
		cursor.Next, cursor.Remaining = decoder.DecodeHeader(header)
		cursor.Address = stepAddress(cursor.Address, STEP_INCREMENT)
		cursor.Header = false
	}

	// node payloads are always read forward
	if !ch.burst(cursor, STEP_INCREMENT) {
		return STEP_CONTINUE
	}

	ch.Base = cursor.Next
	if cursor.Next&LIST_END_MARKER != 0 {
		ch.complete()
		return STEP_COMPLETED
	}
	cursor.Address = cursor.Next
	cursor.Header = true
	return STEP_CONTINUE
}

// Moves words until the current block or node is done, returns false if
// a chopping window ran out first
func (ch *Channel) burst(cursor *Cursor, step Step) bool {
	for cursor.Remaining > 0 {
		ch.transferWord(cursor, step)
		cursor.Remaining--
		cursor.Words++

		if ch.Chop {
			cursor.Window++
			if cursor.Window >= 1<<ch.ChopDmaSz {
				// give the bus to the CPU
				cursor.Window = 0
				ch.Chopping.Hold(ch.engine.Cycles, 1<<ch.ChopCpuSz)
				if cursor.Remaining > 0 {
					return false
				}
			}
		}
	}
	return true
}

func (ch *Channel) transferWord(cursor *Cursor, step Step) {
	mem := ch.engine.Memory
	addr := wordAddress(cursor.Address)

	switch ch.Direction {
	case DIRECTION_FROM_RAM:
		ch.Device.WriteWord(mem.Load32(addr))
	case DIRECTION_TO_RAM:
		var word uint32
		if filler, ok := ch.Device.(Filler); ok {
			word = filler.FillWord(cursor.Address, cursor.Remaining)
		} else {
			word = ch.Device.ReadWord()
		}
		mem.Store32(addr, word)
	}

	cursor.Address = stepAddress(cursor.Address, step)
}
