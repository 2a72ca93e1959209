package emulator

// Who owns the bus during a tick
type BusState int

const (
	BUS_STATE_IDLE     BusState = iota // No DMA activity, the CPU owns the bus
	BUS_STATE_TRANSFER                 // A channel moved data during the tick
	BUS_STATE_CHOPPED                  // A transfer is pending but yields the bus to the CPU
)

func (state BusState) String() string {
	switch state {
	case BUS_STATE_IDLE:
		return "idle"
	case BUS_STATE_TRANSFER:
		return "transfer"
	case BUS_STATE_CHOPPED:
		return "chopped"
	}
	return "unknown"
}

// Returns true if the CPU may access memory during the tick
func (state BusState) CPUHasBus() bool {
	return state != BUS_STATE_TRANSFER
}
