package emulator

import (
	"errors"
	"strings"
	"testing"

	"github.com/zeozeozeo/psxdma/logger"
)

func TestPortFromIndex(t *testing.T) {
	for i := uint32(0); i < PORT_COUNT; i++ {
		port, ok := PortFromIndex(i)
		expectEquality(t, ok, true)
		expectEquality(t, port, Port(i))
	}
	_, ok := PortFromIndex(PORT_COUNT)
	expectEquality(t, ok, false)
	expectEquality(t, Port(9).String(), "invalid")
}

func TestRegisterDecode(t *testing.T) {
	rig := newTestRig(t)

	rig.dma.Store32(0x70, 0x07edcba9)
	expectEquality(t, rig.dma.Load32(0x70), 0x07edcba9)
	expectEquality(t, rig.dma.Control, 0x07edcba9)

	rig.dma.Store32(0x30, 0x00123456)
	rig.dma.Store32(0x34, 0x00100002)
	expectEquality(t, rig.dma.Channel(PORT_CDROM).Base, 0x123456)
	expectEquality(t, rig.dma.Load32(0x34), 0x00100002)

	prio, enabled := rig.dma.Priority(PORT_MDEC_IN)
	expectEquality(t, prio, 1)
	expectEquality(t, enabled, true)
	prio, enabled = rig.dma.Priority(PORT_OTC)
	expectEquality(t, prio, 7)
	expectEquality(t, enabled, false)
}

func TestInterruptRegister(t *testing.T) {
	rig := newTestRig(t)
	dma := rig.dma

	dma.Store32(0x74, 0x00ff803f)
	expectEquality(t, dma.IrqDummy, 0x3f)
	expectEquality(t, dma.ForceIrq, true)
	expectEquality(t, dma.ChannelIrqEn, 0x7f)
	expectEquality(t, dma.IrqEn, true)
	// force sets the master flag on its own
	expectEquality(t, dma.Load32(0x74), 0x80ff803f)
	expectEquality(t, rig.intc.raised, 1)

	dma.Store32(0x74, 0)
	expectEquality(t, dma.Load32(0x74), 0)
}

func TestInterruptFlagsWriteOneToClear(t *testing.T) {
	rig := newTestRig(t)
	for _, port := range []Port{PORT_GPU, PORT_PIO} {
		rig.dma.Connect(port, &recordingDevice{ready: true})
		rig.program(port, 0x1000, 1, chcrManualFromRam)
	}
	rig.dma.RunUntilIdle(10)

	// reads never change the flags
	first := rig.dma.ReadGlobalRegister(REG_DICR)
	expectEquality(t, rig.dma.ReadGlobalRegister(REG_DICR), first)
	expectEquality(t, first, 1<<26|1<<29)

	// writing 0 to a flag leaves it alone
	rig.dma.WriteGlobalRegister(REG_DICR, 0)
	expectEquality(t, rig.dma.ChannelIrqFlags, 1<<PORT_GPU|1<<PORT_PIO)

	rig.dma.WriteGlobalRegister(REG_DICR, 1<<26)
	expectEquality(t, rig.dma.ChannelIrqFlags, 1<<PORT_PIO)
	rig.dma.WriteGlobalRegister(REG_DICR, 1<<26)
	expectEquality(t, rig.dma.ChannelIrqFlags, 1<<PORT_PIO)

	// master flag is read only
	rig.dma.WriteGlobalRegister(REG_DICR, 1<<31)
	expectEquality(t, rig.dma.ReadGlobalRegister(REG_DICR), 1<<29)
}

func TestMasterFlag(t *testing.T) {
	rig := newTestRig(t)
	dma := rig.dma

	for en := 0; en < 2; en++ {
		for chEn := uint8(0); chEn < 4; chEn++ {
			for flags := uint8(0); flags < 4; flags++ {
				dma.IrqEn = en == 1
				dma.ChannelIrqEn = chEn
				dma.ChannelIrqFlags = flags
				expected := dma.IrqEn && chEn&flags != 0
				expectEquality(t, dma.Irq(), expected)
				expectEquality(t, bitSet(dma.Interrupt(), 31), expected)
			}
		}
	}
}

func TestInterruptEdge(t *testing.T) {
	rig := newTestRig(t)
	dev := &recordingDevice{ready: true}
	rig.dma.Connect(PORT_PIO, dev)

	enable := uint32(1<<23 | 1<<(16+PORT_PIO))
	rig.dma.WriteGlobalRegister(REG_DICR, enable)

	transfer := func() {
		t.Helper()
		rig.program(PORT_PIO, 0x1000, 1, chcrManualFromRam)
		rig.dma.RunUntilIdle(10)
	}

	transfer()
	expectEquality(t, rig.intc.raised, 1)
	expectEquality(t, rig.dma.IrqLine, true)

	// the line is still high, no new edge
	transfer()
	expectEquality(t, rig.intc.raised, 1)

	rig.dma.WriteGlobalRegister(REG_DICR, enable|1<<(24+PORT_PIO))
	expectEquality(t, rig.dma.IrqLine, false)
	transfer()
	expectEquality(t, rig.intc.raised, 2)
}

func TestInterruptEdgeOnEnable(t *testing.T) {
	rig := newTestRig(t)
	rig.dma.Connect(PORT_PIO, &recordingDevice{ready: true})

	// flags are set even while their interrupt is disabled
	rig.program(PORT_PIO, 0x1000, 1, chcrManualFromRam)
	rig.dma.Tick()
	expectEquality(t, rig.dma.ChannelIrqFlags, 1<<PORT_PIO)
	expectEquality(t, rig.intc.raised, 0)

	rig.dma.WriteGlobalRegister(REG_DICR, 1<<23|1<<(16+PORT_PIO))
	expectEquality(t, rig.intc.raised, 1)
}

func TestArbitrationPriority(t *testing.T) {
	tests := []struct {
		name   string
		dpcr   uint32
		winner Port
		loser  Port
	}{
		// port 5 priority 0, port 1 priority 3
		{"lower value wins", 0x00800000 | 0x000000b0, PORT_PIO, PORT_MDEC_OUT},
		// both priority 2
		{"tie goes to lower port", 0x00a00000 | 0x000000a0, PORT_MDEC_OUT, PORT_PIO},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rig := newTestRig(t)
			rig.dma.SetControl(test.dpcr)
			for _, port := range []Port{PORT_MDEC_OUT, PORT_PIO} {
				rig.dma.Connect(port, &recordingDevice{ready: true})
				rig.program(port, 0x1000, 1, chcrManualFromRam)
			}

			rig.dma.Tick()
			expectEquality(t, rig.dma.Channel(test.winner).Busy(), false)
			expectEquality(t, rig.dma.Channel(test.loser).Busy(), true)
			rig.dma.Tick()
			expectEquality(t, rig.dma.Channel(test.loser).Busy(), false)
		})
	}
}

func TestDisabledChannelNeverRuns(t *testing.T) {
	rig := newTestRig(t)
	dev := &recordingDevice{ready: true}
	rig.dma.Connect(PORT_PIO, dev)
	rig.dma.SetControl(DPCR_RESET)

	rig.program(PORT_PIO, 0x1000, 4, chcrManualFromRam)
	expectEquality(t, rig.dma.RunUntilIdle(10), 10)
	expectEquality(t, len(dev.writes), 0)
	expectEquality(t, rig.dma.Channel(PORT_PIO).Busy(), true)
}

func TestOneChannelPerTick(t *testing.T) {
	rig := newTestRig(t)
	devs := make([]*recordingDevice, 3)
	for i, port := range []Port{PORT_MDEC_IN, PORT_SPU, PORT_PIO} {
		devs[i] = &recordingDevice{ready: true}
		rig.dma.Connect(port, devs[i])
		rig.program(port, 0x1000, 0x00040001, chcrRequestFromRam)
	}

	// the highest priority channel keeps the bus until it is done
	for tick := 0; tick < 4; tick++ {
		rig.dma.Tick()
		expectEquality(t, len(devs[0].writes), tick+1)
		expectEquality(t, len(devs[1].writes), 0)
	}
	expectEquality(t, rig.dma.RunUntilIdle(100), 8)
	expectEquality(t, len(devs[1].writes), 4)
	expectEquality(t, len(devs[2].writes), 4)
}

func TestCdRomSectorRead(t *testing.T) {
	rig := newTestRig(t)
	cdrom := NewCdRom()
	cdrom.LoadSector([]byte{0x11, 0x22, 0x33, 0x44})
	rig.dma.Connect(PORT_CDROM, NewCdRomDevice(cdrom))

	rig.program(PORT_CDROM, 0x1000, 1, chcrManualToRam)
	rig.dma.Tick()

	expectEquality(t, rig.mem.ram.Load32(0x1000), 0x44332211)
	ch := rig.dma.Channel(PORT_CDROM)
	expectEquality(t, ch.Busy(), false)
	expectEquality(t, ch.Base, 0x1004)
	expectEquality(t, bitSet(rig.dma.Interrupt(), 24+3), true)
	expectEquality(t, cdrom.DataReady(), false)
}

func TestSoftResetAbandonsTransfers(t *testing.T) {
	rig := newTestRig(t)
	dev := &listDevice{}
	rig.dma.Connect(PORT_GPU, dev)
	rig.dma.WriteGlobalRegister(REG_DICR, 1<<23|1<<18)

	fillWords(rig.mem.ram, 0x100, 0x01000200, 0xa1)
	fillWords(rig.mem.ram, 0x200, 0x01000300, 0xa2)
	fillWords(rig.mem.ram, 0x300, 0x01ffffff, 0xa3)
	rig.program(PORT_GPU, 0x100, 0, chcrListFromRam)

	rig.dma.Tick()
	expectSlice(t, dev.writes, []uint32{0xa1})
	loads := len(rig.mem.loads)

	rig.dma.Reset()
	for i := 0; i < 10; i++ {
		expectEquality(t, rig.dma.Tick(), BUS_STATE_IDLE)
	}

	expectEquality(t, len(dev.writes), 1)
	expectEquality(t, len(rig.mem.loads), loads)
	expectEquality(t, len(rig.mem.stores), 0)
	expectEquality(t, rig.dma.Busy(), false)
	expectEquality(t, rig.dma.Channel(PORT_GPU).State(), TRANSFER_IDLE)
	expectEquality(t, rig.dma.Load32(0x70), DPCR_RESET)
	expectEquality(t, rig.dma.Load32(0x74), 0)
	expectEquality(t, rig.intc.raised, 0)

	// the adapter binding survives
	if rig.dma.Channel(PORT_GPU).Device != Device(dev) {
		t.Error("reset dropped the device binding")
	}
}

func TestStallReport(t *testing.T) {
	rig := newTestRig(t)
	rig.dma.Config.StallTicks = 3
	dev := &recordingDevice{}
	rig.dma.Connect(PORT_PIO, dev)

	rig.program(PORT_PIO, 0x1000, 0x00030001, chcrRequestFromRam)
	for i := 0; i < 10; i++ {
		rig.dma.Tick()
	}
	if len(rig.errors) != 1 || !errors.Is(rig.errors[0].err, ErrStalled) {
		t.Fatalf("expected one stall report, got %v", rig.errors)
	}
	expectEquality(t, rig.dma.Channel(PORT_PIO).Busy(), true)

	// a new pause is a new episode
	dev.ready = true
	rig.dma.Tick()
	dev.ready = false
	for i := 0; i < 10; i++ {
		rig.dma.Tick()
	}
	expectEquality(t, len(rig.errors), 2)
}

func TestDefaultDiagnosticLogs(t *testing.T) {
	mem := newRecordingMemory()
	dma := NewDMA(mem, nil, Config{})
	expectEquality(t, dma.Config.MaxListNodes, DefaultConfig().MaxListNodes)

	logger.Clear()
	dma.SetControl(0x08888888)
	dma.Connect(PORT_PIO, &recordingDevice{})
	dma.Store32(0x58, 0x01000601)

	// no interrupt controller attached
	expectEquality(t, dma.Channel(PORT_PIO).Completed, true)

	entries := logger.Entries()
	if len(entries) == 0 {
		t.Fatal("nothing logged")
	}
	last := entries[len(entries)-1]
	expectEquality(t, last.Tag, "dma")
	if !strings.Contains(last.Detail, "pio") || !strings.Contains(last.Detail, ErrUnknownSyncMode.Error()) {
		t.Errorf("unexpected log entry %q", last.Detail)
	}
}

func TestConnectNil(t *testing.T) {
	rig := newTestRig(t)
	rig.dma.Connect(PORT_PIO, nil)
	expectEquality(t, rig.dma.Channel(PORT_PIO).Device.Kind(), DEVICE_NONE)

	rig.program(PORT_PIO, 0x1000, 2, chcrManualToRam)
	rig.dma.Tick()
	expectEquality(t, rig.mem.ram.Load32(0x1000), 0xffffffff)
}
