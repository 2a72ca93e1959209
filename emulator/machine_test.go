package emulator

import "testing"

func TestMachineWiring(t *testing.T) {
	m := NewMachine(DefaultConfig())

	kinds := []DeviceKind{
		DEVICE_MDEC_IN, DEVICE_MDEC_OUT, DEVICE_GPU, DEVICE_CDROM,
		DEVICE_SPU, DEVICE_PIO, DEVICE_FILL,
	}
	for i, kind := range kinds {
		expectEquality(t, m.Dma.Channel(Port(i)).Device.Kind(), kind)
	}
}

func TestMachineSpuUpload(t *testing.T) {
	m := NewMachine(DefaultConfig())
	for i := uint32(0); i < 8; i++ {
		m.Ram.Store32(0x3000+i*4, 0x01010101*i)
	}

	m.Spu.SetTransferAddress(0x100)
	m.Spu.SetControl(uint16(SPU_TRANSFER_DMAWRITE) << 4)

	// 2 blocks of 4 words
	m.Inter.Store32(0x1f8010f0, DPCR_RESET|0x00080000)
	m.Inter.Store32(0x1f8010f4, 1<<23|1<<(16+PORT_SPU))
	m.Inter.Store32(0x1f8010c0, 0x3000)
	m.Inter.Store32(0x1f8010c4, 0x00020004)
	m.Inter.Store32(0x1f8010c8, 0x01000201)

	for m.Dma.Busy() {
		m.Tick()
	}
	expectEquality(t, m.Spu.TransferAddr, 0x800+32)
	expectEquality(t, m.Spu.Ram[0x800+4], 1)
	expectEquality(t, m.Spu.Ram[0x800+31], 7)
	expectEquality(t, m.Irq.Status&(1<<INTERRUPT_DMA) != 0, true)
}

func TestMachineReset(t *testing.T) {
	m := NewMachine(DefaultConfig())
	m.CdRom.LoadSector([]byte{1, 2, 3, 4})
	m.Gpu.GP0(0xe1000000)
	m.Irq.Raise(INTERRUPT_DMA)

	m.Reset()
	expectEquality(t, m.CdRom.DataReady(), false)
	expectEquality(t, m.Gpu.Fifo.IsEmpty(), true)
	expectEquality(t, m.Irq.Status, 0)
	expectEquality(t, m.Dma.Control, DPCR_RESET)
}
