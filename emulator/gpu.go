package emulator

// Represents the requested DMA direction (GP1(0x04))
type DmaDirection uint8

const (
	DD_DMA_OFF     DmaDirection = 0
	DD_DMA_FIFO    DmaDirection = 1
	DD_CPU_TO_GP0  DmaDirection = 2
	DD_VRAM_TO_CPU DmaDirection = 3
)

// Depth of the GP0 command FIFO in words
const GPU_FIFO_DEPTH = 16

// The GPU's command and read ports. Command words are not rendered: they
// are moved from the FIFO to `Commands` when the GPU consumes them
type GPU struct {
	DmaDirection DmaDirection  // DMA request direction
	Fifo         *FIFO[uint32] // GP0 command FIFO
	ReadQueue    *FIFO[uint32] // Words waiting to be read through GPUREAD
	Record       bool          // Keep consumed command words in `Commands`
	Commands     []uint32      // Consumed command words, oldest first
	Consumed     uint64        // Number of command words consumed
	ReadLatch    uint32        // Last GPUREAD value
}

func NewGPU() *GPU {
	return &GPU{
		DmaDirection: DD_DMA_OFF,
		Fifo:         NewFIFO[uint32](GPU_FIFO_DEPTH),
		ReadQueue:    NewFIFO[uint32](1024),
	}
}

// Handle writes to the GP0 command register. A full FIFO makes the GPU
// consume its oldest word first
func (gpu *GPU) GP0(val uint32) {
	if gpu.Fifo.IsFull() {
		gpu.Execute(1)
	}
	gpu.Fifo.Push(val)
}

// Handle writes to the GP1 display control register
func (gpu *GPU) GP1(val uint32) {
	opcode := (val >> 24) & 0xff

	switch opcode {
	case 0x00:
		// soft reset
		gpu.Fifo.Clear()
		gpu.ReadQueue.Clear()
		gpu.DmaDirection = DD_DMA_OFF
	case 0x01:
		// reset command buffer
		gpu.Fifo.Clear()
	case 0x04:
		gpu.DmaDirection = DmaDirection(val & 3)
	}
}

// Consumes up to `n` words from the command FIFO, all of them if `n` is
// negative
func (gpu *GPU) Execute(n int) {
	for n != 0 {
		word, ok := gpu.Fifo.Pop()
		if !ok {
			return
		}
		gpu.Consumed++
		if gpu.Record {
			gpu.Commands = append(gpu.Commands, word)
		}
		n--
	}
}

// Queues words for the CPU or the DMA to read back (VRAM to CPU copies)
func (gpu *GPU) QueueRead(words ...uint32) {
	gpu.ReadQueue.PushSlice(words)
}

// GPUREAD
func (gpu *GPU) Read() uint32 {
	if word, ok := gpu.ReadQueue.Pop(); ok {
		gpu.ReadLatch = word
	}
	return gpu.ReadLatch
}

// Returns the DMA request state for a transfer in `dir`
func (gpu *GPU) DmaRequest(dir Direction) bool {
	switch gpu.DmaDirection {
	case DD_DMA_FIFO, DD_CPU_TO_GP0:
		return dir == DIRECTION_FROM_RAM && !gpu.Fifo.IsFull()
	case DD_VRAM_TO_CPU:
		return dir == DIRECTION_TO_RAM && !gpu.ReadQueue.IsEmpty()
	}
	return false
}

// DMA related bits of GPUSTAT
func (gpu *GPU) Status() uint32 {
	readyCmd := !gpu.Fifo.IsFull()
	readyVram := !gpu.ReadQueue.IsEmpty()

	var request bool
	switch gpu.DmaDirection {
	case DD_DMA_FIFO:
		request = readyCmd
	case DD_CPU_TO_GP0:
		request = readyCmd
	case DD_VRAM_TO_CPU:
		request = readyVram
	}

	var r uint32 = 0
	r |= oneIfTrue(request) << 25
	r |= oneIfTrue(readyCmd) << 26
	r |= oneIfTrue(readyVram) << 27
	r |= oneIfTrue(readyCmd) << 28
	r |= uint32(gpu.DmaDirection) << 29
	return r
}
