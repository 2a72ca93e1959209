package emulator

import "errors"

var (
	// A linked list did not reach its end marker within Config.MaxListNodes
	ErrListTooLong = errors.New("linked list exceeds node limit")
	// CHCR sync mode 3 has no defined behaviour
	ErrUnknownSyncMode = errors.New("unknown sync mode")
	// Linked list mode on a device that cannot walk a chain
	ErrNotListCapable = errors.New("device does not support linked list transfers")
	// Linked list mode with the direction set toward RAM
	ErrListToRAM = errors.New("linked list transfer toward RAM")
	// A request mode channel waited for its device for too long
	ErrStalled = errors.New("channel stalled waiting for device")
	// The device does not implement the requested direction
	ErrWrongDirection = errors.New("device does not support transfer direction")
	// Save state data is not usable
	ErrBadSaveState = errors.New("invalid save state")
)
