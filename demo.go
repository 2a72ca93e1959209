package main

import (
	"github.com/zeozeozeo/psxdma/emulator"
	"github.com/zeozeozeo/psxdma/logger"
)

// Addresses of the demo buffers, in KSEG0 like a game would use them
const (
	orderingTable   = 0x80100000
	orderingEntries = 256
	primitives      = 0x80110000
	sectorBuffer    = 0x80120000
	spuUpload       = 0x1000 // sound RAM, in bytes
)

// MMIO addresses of the registers the demo programs
const (
	regDPCR = 0x1f8010f0
	regDICR = 0x1f8010f4
	regGP1  = 0x1f801814
)

func channelRegister(port emulator.Port, offset uint32) uint32 {
	return 0x1f801080 + uint32(port)<<4 + offset
}

// A frame's worth of DMA work, started one phase at a time: each phase
// waits for the engine to go idle before programming the next one
type Demo struct {
	Machine *emulator.Machine
	Sector  []byte
	Phase   int
	Last    emulator.BusState

	phases []func()
}

// Creates the demo workload. A nil sector skips every phase, the engine
// then only finishes what it was already doing
func NewDemo(m *emulator.Machine, sector []byte) *Demo {
	demo := &Demo{Machine: m, Sector: sector}
	if sector != nil {
		demo.phases = []func(){
			demo.setup,
			demo.clearOrderingTable,
			demo.drawList,
			demo.readSector,
			demo.uploadSpu,
		}
	}
	return demo
}

func (demo *Demo) store(addr, val uint32) {
	demo.Machine.Inter.Store32(addr, val)
}

func (demo *Demo) program(port emulator.Port, base, bcr, chcr uint32) {
	demo.store(channelRegister(port, emulator.REG_MADR), base)
	demo.store(channelRegister(port, emulator.REG_BCR), bcr)
	demo.store(channelRegister(port, emulator.REG_CHCR), chcr)
}

// Enables every channel and its interrupt
func (demo *Demo) setup() {
	demo.store(regDPCR, emulator.DPCR_RESET|0x08888888)
	demo.store(regDICR, 1<<23|0x7f<<16)
	logger.Log(logger.Allow, "demo", "channels enabled")
}

func (demo *Demo) clearOrderingTable() {
	last := uint32(orderingTable + (orderingEntries-1)*4)
	demo.program(emulator.PORT_OTC, last, orderingEntries, 0x11000002)
	logger.Logf(logger.Allow, "demo", "clearing %d ordering table entries", orderingEntries)
}

// Links a few primitives into the ordering table and sends the table to
// the GPU
func (demo *Demo) drawList() {
	inter := demo.Machine.Inter

	addr := uint32(primitives)
	for i := uint32(0); i < 4; i++ {
		entry := uint32(orderingTable + (i*64+32)*4)

		// the packet takes the entry's link and the entry points to the packet
		inter.Store32(addr, 2<<24|inter.Load32(entry))
		inter.Store32(addr+4, 0xe1000000|i)
		inter.Store32(addr+8, 0x02000000|0x0000ff<<(i*8%24))
		inter.Store32(entry, addr&0xffffff)
		addr += 12
	}

	demo.store(regGP1, 0x04000002)
	last := uint32(orderingTable + (orderingEntries-1)*4)
	demo.program(emulator.PORT_GPU, last, 0, 0x01000401)
	logger.Log(logger.Allow, "demo", "sending draw list")
}

// Reads the sector into RAM, chopped so the CPU keeps running
func (demo *Demo) readSector() {
	words := uint32(len(demo.Sector) / 4)
	demo.Machine.CdRom.LoadSector(demo.Sector)
	demo.program(emulator.PORT_CDROM, sectorBuffer, words, 0x11000000|0x00340100)
	logger.Logf(logger.Allow, "demo", "reading %d sector bytes", len(demo.Sector))
}

// Uploads the sector to sound RAM in 16 word blocks
func (demo *Demo) uploadSpu() {
	spu := demo.Machine.Spu
	spu.SetTransferAddress(spuUpload / 8)
	spu.SetControl(uint16(emulator.SPU_TRANSFER_DMAWRITE) << 4)

	blocks := uint32(len(demo.Sector)/4+15) / 16
	demo.program(emulator.PORT_SPU, sectorBuffer, blocks<<16|16, 0x01000201)
	logger.Logf(logger.Allow, "demo", "uploading %d blocks to sound ram", blocks)
}

// Returns true once every phase was started and the engine went idle
func (demo *Demo) Done() bool {
	return demo.Phase >= len(demo.phases) && !demo.Machine.Dma.Busy()
}

// Starts the next phase when the engine is idle, then runs one bus cycle
func (demo *Demo) Tick() emulator.BusState {
	if demo.Phase < len(demo.phases) && !demo.Machine.Dma.Busy() {
		demo.phases[demo.Phase]()
		demo.Phase++
	}
	demo.Last = demo.Machine.Tick()
	return demo.Last
}

// Runs until the demo is done or `limit` cycles have run. Returns the
// number of cycles run
func (demo *Demo) Run(limit uint64) uint64 {
	var n uint64
	for n < limit && !demo.Done() {
		demo.Tick()
		n++
	}
	return n
}
