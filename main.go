package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/zeozeozeo/psxdma/emulator"
	"github.com/zeozeozeo/psxdma/logger"
)

func main() {
	// parse arguments
	sectorPath := flag.String("sector", "", "disc image (.bin) the CD-ROM sector is read from")
	msfPos := flag.String("msf", "00:02:16", "position of the sector in the disc image")
	ticks := flag.Uint64("ticks", 1<<16, "bus cycles to run in headless mode")
	view := flag.Bool("view", false, "open a window showing the channels and RAM activity")
	rate := flag.Int("rate", 64, "bus cycles per frame in the viewer")
	savePath := flag.String("save", "", "write the engine state to this file when done")
	loadPath := flag.String("load", "", "resume from an engine state instead of running the demo")
	echo := flag.Bool("log", false, "echo log entries to stderr as they are written")
	maxNodes := flag.Uint("maxnodes", uint(emulator.DefaultConfig().MaxListNodes), "linked list node limit")
	stall := flag.Uint64("stall", emulator.DefaultConfig().StallTicks, "paused cycles before a channel is reported (0 disables)")
	trace := flag.Bool("trace", false, "log channel starts and completions")
	flag.Parse()

	if *echo {
		logger.SetEcho(os.Stderr)
	}

	cfg := emulator.DefaultConfig()
	cfg.MaxListNodes = uint32(*maxNodes)
	cfg.StallTicks = *stall
	cfg.Trace = *trace
	m := emulator.NewMachine(cfg)

	var demo *Demo
	if *loadPath != "" {
		if err := loadState(m.Dma, *loadPath); err != nil {
			log.Fatal(err)
		}
		demo = NewDemo(m, nil)
	} else {
		sector := defaultSector()
		if *sectorPath != "" {
			sector = loadSector(*sectorPath, *msfPos)
		}
		demo = NewDemo(m, sector)
	}

	if *view {
		if err := runViewer(demo, *rate); err != nil {
			log.Fatal(err)
		}
	} else {
		start := time.Now()
		ran := demo.Run(*ticks)
		log.Printf("ran %d cycles in %s", ran, time.Since(start))
		printSummary(os.Stdout, m)
	}

	if *savePath != "" {
		if err := saveState(m.Dma, *savePath); err != nil {
			log.Fatal(err)
		}
	}
}

func loadSector(path, pos string) []byte {
	log.Printf("loading sector %s of \"%s\"", pos, path)

	msf, err := emulator.ParseMsf(pos)
	if err != nil {
		log.Fatal(err)
	}

	file, err := os.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer file.Close()

	data, err := emulator.NewDisc(file).ReadData(msf)
	if err != nil {
		log.Fatal(err)
	}
	return data
}

// Sector data used when no file is given: a counting pattern
func defaultSector() []byte {
	data := make([]byte, emulator.SECTOR_DATA_SIZE)
	for i := range data {
		data[i] = byte(i)
	}
	return data
}

func saveState(dma *emulator.DMA, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := dma.SaveState(file); err != nil {
		return err
	}
	log.Printf("saved state to \"%s\"", path)
	return nil
}

func loadState(dma *emulator.DMA, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := dma.LoadState(file); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	log.Printf("loaded state from \"%s\"", path)
	return nil
}

// Prints the channel registers, the interrupt register and the log
func printSummary(w io.Writer, m *emulator.Machine) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "port\tstate\tdevice\tMADR\tBCR\tCHCR")
	for i := 0; i < emulator.PORT_COUNT; i++ {
		ch := m.Dma.Channel(emulator.Port(i))
		fmt.Fprintf(tw, "%s\t%s\t%s\t%06x\t%08x\t%08x\n",
			ch.Port, ch.State(), ch.Device.Kind(), ch.Base, ch.BlockControl(), ch.Control())
	}
	tw.Flush()

	fmt.Fprintf(w, "DPCR %08x  DICR %08x  cycles %d\n",
		m.Dma.Control, m.Dma.Interrupt(), m.Dma.Cycles)
	fmt.Fprintf(w, "gpu commands %d  spu address %05x  cdrom data ready %v\n",
		m.Gpu.Consumed, m.Spu.TransferAddr, m.CdRom.DataReady())

	fmt.Fprintln(w)
	logger.Write(w)
}
