package emulator

// Fixed capacity queue used by the peripheral models (CD-ROM data buffer,
// GPU command FIFO, port queues)
type FIFO[T any] struct {
	Buffer   []T
	WritePtr uint32 // Write pointer (index and carry)
	ReadPtr  uint32 // Read pointer (index and carry)
}

// Returns a new FIFO holding up to `capacity` elements. The capacity is
// rounded up to a power of two
func NewFIFO[T any](capacity int) *FIFO[T] {
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &FIFO[T]{Buffer: make([]T, size)}
}

func (fifo *FIFO[T]) mask() uint32 {
	return uint32(len(fifo.Buffer)) - 1
}

// Returns true if the FIFO is empty
func (fifo *FIFO[T]) IsEmpty() bool {
	// if the read and write pointers are the same, the FIFO is empty
	return fifo.WritePtr == fifo.ReadPtr
}

// Returns true if the FIFO is full
func (fifo *FIFO[T]) IsFull() bool {
	return fifo.Length() == uint32(len(fifo.Buffer))
}

// Resets the FIFO
func (fifo *FIFO[T]) Clear() {
	var zero T
	fifo.ReadPtr = 0
	fifo.WritePtr = 0
	for i := range fifo.Buffer {
		fifo.Buffer[i] = zero
	}
}

// Pushes a value to the FIFO. Returns false and drops the value if the
// FIFO is full
func (fifo *FIFO[T]) Push(val T) bool {
	if fifo.IsFull() {
		return false
	}
	fifo.Buffer[fifo.WritePtr&fifo.mask()] = val
	fifo.WritePtr++
	return true
}

// Pushes every value of `data`, returns the number of values queued
func (fifo *FIFO[T]) PushSlice(data []T) int {
	for i, v := range data {
		if !fifo.Push(v) {
			return i
		}
	}
	return len(data)
}

// Removes the oldest value and returns it. Popping an empty FIFO returns
// the zero value and leaves the FIFO untouched
func (fifo *FIFO[T]) Pop() (T, bool) {
	if fifo.IsEmpty() {
		var zero T
		return zero, false
	}
	val := fifo.Buffer[fifo.ReadPtr&fifo.mask()]
	fifo.ReadPtr++
	return val, true
}

// Returns the amount of elements in the FIFO
func (fifo *FIFO[T]) Length() uint32 {
	return fifo.WritePtr - fifo.ReadPtr
}
