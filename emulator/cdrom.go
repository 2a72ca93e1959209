package emulator

// CD sector size in bytes
const SECTOR_SIZE = 2352

// Size of the data portion of a mode 2 form 1 sector
const SECTOR_DATA_SIZE = 2048

// CD-ROM controller, reduced to the register index and the sector data
// buffer the DMA drains
type CdRom struct {
	Index uint8       // Some registers can change depending on the index
	Data  *FIFO[byte] // Sector data buffer
	Last  byte        // Last byte read, repeated when the buffer runs dry
}

func NewCdRom() *CdRom {
	return &CdRom{
		Data: NewFIFO[byte](SECTOR_SIZE),
	}
}

func (cdrom *CdRom) SetIndex(index uint8) {
	cdrom.Index = index & 3
}

func (cdrom *CdRom) Status() uint8 {
	r := cdrom.Index
	// https://problemkaputt.de/psx-spx.htm#cdromcontrollerioports
	r |= uint8(oneIfTrue(cdrom.DataReady())) << 6
	return r
}

// Fills the data buffer with a sector, as the controller does when the
// BFRD request bit is set. Returns the number of bytes queued
func (cdrom *CdRom) LoadSector(data []byte) int {
	cdrom.Data.Clear()
	return cdrom.Data.PushSlice(data)
}

// Returns true if the data buffer holds unread bytes
func (cdrom *CdRom) DataReady() bool {
	return !cdrom.Data.IsEmpty()
}

// Pops the next byte from the data buffer
func (cdrom *CdRom) ReadData() byte {
	if b, ok := cdrom.Data.Pop(); ok {
		cdrom.Last = b
	}
	return cdrom.Last
}

// Drops any unread data
func (cdrom *CdRom) Reset() {
	cdrom.Index = 0
	cdrom.Last = 0
	cdrom.Data.Clear()
}
