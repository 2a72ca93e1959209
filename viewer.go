package main

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font/basicfont"

	"github.com/zeozeozeo/psxdma/emulator"
	"github.com/zeozeozeo/psxdma/logger"
)

// The RAM map shows one pixel per 64 byte block
const (
	mapWidth     = 256
	mapHeight    = 128
	mapBlockBits = 6
	screenWidth  = mapWidth * 2
	screenHeight = mapHeight*2 + 160
)

// Memory wrapper remembering which parts of RAM the DMA touched recently
type activityMemory struct {
	mem    emulator.Memory
	reads  [mapWidth * mapHeight]uint8
	writes [mapWidth * mapHeight]uint8
}

func block(addr uint32) uint32 {
	return (addr & (emulator.RAM_ALLOC_SIZE - 1)) >> mapBlockBits
}

func (act *activityMemory) Load32(addr uint32) uint32 {
	act.reads[block(addr)] = 0xff
	return act.mem.Load32(addr)
}

func (act *activityMemory) Store32(addr, val uint32) {
	act.writes[block(addr)] = 0xff
	act.mem.Store32(addr, val)
}

// Fades the activity and renders it as RGBA pixels: red for writes, green
// for reads
func (act *activityMemory) render(pixels []byte) {
	for i := range act.reads {
		r, g := act.writes[i], act.reads[i]
		pixels[i*4+0] = r
		pixels[i*4+1] = g
		pixels[i*4+2] = 0x18
		pixels[i*4+3] = 0xff
		act.writes[i] -= r >> 4
		act.reads[i] -= g >> 4
	}
}

type Viewer struct {
	demo     *Demo
	rate     int
	paused   bool
	activity *activityMemory
	ramImg   *ebiten.Image
	pixels   []byte
	snapshot []byte
	bus      [3]int // Ticks per BusState over the last frame
}

func (v *Viewer) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		v.paused = !v.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		v.demo.Machine.Reset()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		var buf bytes.Buffer
		if err := v.demo.Machine.Dma.SaveState(&buf); err != nil {
			logger.Logf(logger.Allow, "viewer", "save failed: %v", err)
		} else {
			v.snapshot = buf.Bytes()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF9) && v.snapshot != nil {
		if err := v.demo.Machine.Dma.LoadState(bytes.NewReader(v.snapshot)); err != nil {
			logger.Logf(logger.Allow, "viewer", "load failed: %v", err)
		}
	}

	v.bus = [3]int{}
	if v.paused {
		return nil
	}
	for i := 0; i < v.rate; i++ {
		v.bus[v.demo.Tick()]++
	}
	return nil
}

var (
	textColor  = color.RGBA{190, 190, 190, 255}
	busyColor  = color.RGBA{0, 220, 90, 255}
	pauseColor = color.RGBA{230, 180, 0, 255}
	doneColor  = color.RGBA{90, 140, 230, 255}
)

func stateColor(state emulator.TransferState) color.Color {
	switch state {
	case emulator.TRANSFER_RUNNING:
		return busyColor
	case emulator.TRANSFER_PAUSED:
		return pauseColor
	case emulator.TRANSFER_COMPLETED:
		return doneColor
	}
	return textColor
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	if v.ramImg == nil {
		v.ramImg = ebiten.NewImage(mapWidth, mapHeight)
		v.pixels = make([]byte, mapWidth*mapHeight*4)
	}
	v.activity.render(v.pixels)
	v.ramImg.WritePixels(v.pixels)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(2, 2)
	screen.DrawImage(v.ramImg, op)

	face := basicfont.Face7x13
	dma := v.demo.Machine.Dma
	y := mapHeight*2 + 16

	for i := 0; i < emulator.PORT_COUNT; i++ {
		ch := dma.Channel(emulator.Port(i))
		line := fmt.Sprintf("%-8s %-10s %-11s MADR %06x BCR %08x CHCR %08x",
			ch.Port, ch.State(), ch.Sync, ch.Base, ch.BlockControl(), ch.Control())
		text.Draw(screen, line, face, 6, y, stateColor(ch.State()))
		y += 14
	}

	y += 6
	status := fmt.Sprintf("DICR %08x  irq %d  cycle %d  transfer %d chopped %d idle %d",
		dma.Interrupt(), v.demo.Machine.Irq.Edges[emulator.INTERRUPT_DMA], dma.Cycles,
		v.bus[emulator.BUS_STATE_TRANSFER], v.bus[emulator.BUS_STATE_CHOPPED], v.bus[emulator.BUS_STATE_IDLE])
	text.Draw(screen, status, face, 6, y, textColor)
	y += 14

	help := "SPACE pause  R reset  F5 save  F9 load"
	if v.paused {
		help = "PAUSED  " + help
	}
	text.Draw(screen, help, face, 6, y, textColor)
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// Opens the window and runs the demo on ebiten's update loop, `rate` bus
// cycles per frame
func runViewer(demo *Demo, rate int) error {
	dma := demo.Machine.Dma
	activity := &activityMemory{mem: dma.Memory}
	dma.Memory = activity

	ebiten.SetWindowSize(screenWidth*2, screenHeight*2)
	ebiten.SetWindowTitle("psxdma")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	viewer := &Viewer{
		demo:     demo,
		rate:     rate,
		activity: activity,
	}
	return ebiten.RunGame(viewer)
}
