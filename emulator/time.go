package emulator

// Keeps track of when a chopping channel may use the bus again. Times are
// measured in engine ticks (bus cycles)
type TimeSheet struct {
	LastSync uint64 // Tick of the last transfer burst
	NextSync uint64 // First tick the channel may run again
}

// Records a burst at `cycles` and holds the channel for `delta` ticks
func (sheet *TimeSheet) Hold(cycles, delta uint64) {
	sheet.LastSync = cycles
	sheet.NextSync = cycles + 1 + delta
}

// Returns true if the hold started by Hold() is over
func (sheet *TimeSheet) NeedsSync(cycles uint64) bool {
	return sheet.NextSync <= cycles
}

// Forgets any pending hold
func (sheet *TimeSheet) Clear() {
	sheet.LastSync = 0
	sheet.NextSync = 0
}
