package emulator

// The DMA engine together with the peripherals it serves, wired the way
// the console wires them
type Machine struct {
	Ram     *RAM
	Irq     *IrqState
	Gpu     *GPU
	Spu     *SPU
	CdRom   *CdRom
	MdecIn  *PortDevice
	MdecOut *PortDevice
	Pio     *PortDevice
	Dma     *DMA
	Inter   *Interconnect
}

// Creates a machine with every port bound to its adapter
func NewMachine(cfg Config) *Machine {
	m := &Machine{
		Ram:     NewRAM(),
		Irq:     NewIrqState(),
		Gpu:     NewGPU(),
		Spu:     NewSPU(),
		CdRom:   NewCdRom(),
		MdecIn:  NewMdecInDevice(),
		MdecOut: NewMdecOutDevice(),
		Pio:     NewPioDevice(),
	}

	m.Dma = NewDMA(m.Ram, m.Irq, cfg)
	m.Dma.Connect(PORT_MDEC_IN, m.MdecIn)
	m.Dma.Connect(PORT_MDEC_OUT, m.MdecOut)
	m.Dma.Connect(PORT_GPU, NewGpuDevice(m.Gpu))
	m.Dma.Connect(PORT_CDROM, NewCdRomDevice(m.CdRom))
	m.Dma.Connect(PORT_SPU, NewSpuDevice(m.Spu))
	m.Dma.Connect(PORT_PIO, m.Pio)

	m.Inter = NewInterconnect(m.Ram, m.Dma, m.Gpu, m.Irq)
	return m
}

// Soft reset of the engine and of the peripheral buffers. RAM keeps its
// contents
func (m *Machine) Reset() {
	m.Dma.Reset()
	m.Gpu.GP1(0)
	m.CdRom.Reset()
	m.MdecIn.In.Clear()
	m.MdecOut.Out.Clear()
	m.Pio.In.Clear()
	m.Pio.Out.Clear()
	m.Irq.Status = 0
}

// Runs one bus cycle. The GPU drains its command FIFO at the same rate
// the DMA fills it
func (m *Machine) Tick() BusState {
	state := m.Dma.Tick()
	m.Gpu.Execute(1)
	return state
}
