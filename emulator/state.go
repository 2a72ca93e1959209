package emulator

import (
	"bufio"
	"encoding/gob"
	"fmt"
	"io"
)

// Save state format version, bumped whenever EngineState changes
const STATE_VERSION = 1

var stateMagic = [4]byte{'P', 'D', 'M', 'A'}

// Serializable copy of a channel
type ChannelSnapshot struct {
	Direction  Direction
	Stepping   Step
	Sync       Sync
	Trigger    bool
	Chop       bool
	ChopDmaSz  uint8
	ChopCpuSz  uint8
	Dummy      uint8
	Base       uint32
	BlockSize  uint16
	BlockCount uint16

	Busy          bool
	Cursor        Cursor
	Completed     bool
	Paused        bool
	PausedTicks   uint64
	StallReported bool
	Chopping      TimeSheet
}

// Serializable copy of the whole engine. Device adapters are not part of
// it, their peripherals save their own state
type EngineState struct {
	Version         int
	Control         uint32
	IrqEn           bool
	ChannelIrqEn    uint8
	ChannelIrqFlags uint8
	ForceIrq        bool
	IrqDummy        uint8
	IrqLine         bool
	Cycles          uint64
	Channels        [PORT_COUNT]ChannelSnapshot
}

func (ch *Channel) snapshot() ChannelSnapshot {
	s := ChannelSnapshot{
		Direction:     ch.Direction,
		Stepping:      ch.Stepping,
		Sync:          ch.Sync,
		Trigger:       ch.Trigger,
		Chop:          ch.Chop,
		ChopDmaSz:     ch.ChopDmaSz,
		ChopCpuSz:     ch.ChopCpuSz,
		Dummy:         ch.Dummy,
		Base:          ch.Base,
		BlockSize:     ch.BlockSize,
		BlockCount:    ch.BlockCount,
		Busy:          ch.Cursor != nil,
		Completed:     ch.Completed,
		Paused:        ch.Paused,
		PausedTicks:   ch.PausedTicks,
		StallReported: ch.StallReported,
		Chopping:      ch.Chopping,
	}
	if ch.Cursor != nil {
		s.Cursor = *ch.Cursor
	}
	return s
}

func (ch *Channel) restore(s ChannelSnapshot) {
	ch.Direction = s.Direction
	ch.Stepping = s.Stepping
	ch.Sync = s.Sync
	ch.Trigger = s.Trigger
	ch.Chop = s.Chop
	ch.ChopDmaSz = s.ChopDmaSz
	ch.ChopCpuSz = s.ChopCpuSz
	ch.Dummy = s.Dummy
	ch.Base = s.Base
	ch.BlockSize = s.BlockSize
	ch.BlockCount = s.BlockCount
	ch.Completed = s.Completed
	ch.Paused = s.Paused
	ch.PausedTicks = s.PausedTicks
	ch.StallReported = s.StallReported
	ch.Chopping = s.Chopping

	ch.Cursor = nil
	if s.Busy {
		cursor := s.Cursor
		ch.Cursor = &cursor
	}
}

// Checks that the transfer in `s` can carry on with the device currently
// bound to the channel
func (ch *Channel) resumable(s ChannelSnapshot) error {
	trial := *ch
	trial.restore(s)
	if err := trial.validate(); err != nil {
		return err
	}

	cursor := s.Cursor
	switch s.Sync {
	case SYNC_MANUAL:
		if cursor.Remaining > uint32(s.BlockSize) {
			return fmt.Errorf("%d words left in a %d word transfer", cursor.Remaining, s.BlockSize)
		}
	case SYNC_REQUEST:
		if cursor.Remaining > uint32(s.BlockSize) {
			return fmt.Errorf("%d words left in a %d word block", cursor.Remaining, s.BlockSize)
		}
		if cursor.Blocks == 0 || cursor.Blocks > uint32(s.BlockCount) {
			return fmt.Errorf("%d blocks left out of %d", cursor.Blocks, s.BlockCount)
		}
	case SYNC_LINKED_LIST:
		// node sizes come from the top byte of a header
		if cursor.Remaining > 0xff {
			return fmt.Errorf("%d words left in a list node", cursor.Remaining)
		}
	}
	return nil
}

// Returns a copy of every register and of the transfers in flight
func (dma *DMA) Snapshot() *EngineState {
	s := &EngineState{
		Version:         STATE_VERSION,
		Control:         dma.Control,
		IrqEn:           dma.IrqEn,
		ChannelIrqEn:    dma.ChannelIrqEn,
		ChannelIrqFlags: dma.ChannelIrqFlags,
		ForceIrq:        dma.ForceIrq,
		IrqDummy:        dma.IrqDummy,
		IrqLine:         dma.IrqLine,
		Cycles:          dma.Cycles,
	}
	for i, ch := range dma.Channels {
		s.Channels[i] = ch.snapshot()
	}
	return s
}

// Puts the engine back in the state captured by Snapshot(). The interrupt
// controller is not signalled: the IRQ line level is part of the state
func (dma *DMA) Restore(s *EngineState) error {
	if s == nil {
		return fmt.Errorf("%w: no state", ErrBadSaveState)
	}
	if s.Version != STATE_VERSION {
		return fmt.Errorf("%w: version %d, expected %d", ErrBadSaveState, s.Version, STATE_VERSION)
	}
	for i, cs := range s.Channels {
		if cs.Sync > SYNC_RESERVED || cs.Direction > DIRECTION_FROM_RAM || cs.Stepping > STEP_DECREMENT ||
			cs.ChopDmaSz > 7 || cs.ChopCpuSz > 7 || cs.Dummy > 3 {
			return fmt.Errorf("%w: channel %d has invalid control fields", ErrBadSaveState, i)
		}
		if !cs.Busy {
			continue
		}
		if err := dma.Channels[i].resumable(cs); err != nil {
			return fmt.Errorf("%w: channel %d: %v", ErrBadSaveState, i, err)
		}
	}

	dma.Control = s.Control
	dma.IrqEn = s.IrqEn
	dma.ChannelIrqEn = s.ChannelIrqEn & 0x7f
	dma.ChannelIrqFlags = s.ChannelIrqFlags & 0x7f
	dma.ForceIrq = s.ForceIrq
	dma.IrqDummy = s.IrqDummy & 0x3f
	dma.IrqLine = s.IrqLine
	dma.Cycles = s.Cycles
	for i, ch := range dma.Channels {
		ch.restore(s.Channels[i])
	}
	return nil
}

// Writes the engine state to `w`
func (dma *DMA) SaveState(w io.Writer) error {
	if _, err := w.Write(stateMagic[:]); err != nil {
		return err
	}
	if err := gob.NewEncoder(w).Encode(dma.Snapshot()); err != nil {
		return fmt.Errorf("dma: encoding state: %w", err)
	}
	return nil
}

// Reads an engine state written by SaveState() and restores it
func (dma *DMA) LoadState(r io.Reader) error {
	br := bufio.NewReader(r)

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSaveState, err)
	}
	if magic != stateMagic {
		return fmt.Errorf("%w: bad magic %q", ErrBadSaveState, magic[:])
	}

	s := &EngineState{}
	if err := gob.NewDecoder(br).Decode(s); err != nil {
		return fmt.Errorf("%w: %v", ErrBadSaveState, err)
	}
	return dma.Restore(s)
}
