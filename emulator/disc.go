package emulator

import (
	"errors"
	"fmt"
	"io"
)

// Sectors before the first track's data (2 second pregap)
const PREGAP_SECTORS = 150

// Offset of the user data in a mode 2 form 1 sector: sync pattern,
// header and subheader
const SECTOR_DATA_OFFSET = 24

var ErrBadMsf = errors.New("invalid msf")

// Disc position in minutes, seconds and frames, all BCD encoded
type Msf struct {
	M, S, F uint8
}

func (msf Msf) String() string {
	return fmt.Sprintf("%02x:%02x:%02x", msf.M, msf.S, msf.F)
}

func (msf Msf) Slice() []uint8 {
	return []uint8{msf.M, msf.S, msf.F}
}

func MsfFromBcd(m, s, f uint8) (Msf, error) {
	msf := Msf{m, s, f}

	// check if the MSF is valid
	for _, v := range msf.Slice() {
		if v > 0x99 || (v&0xf) > 0x9 {
			return msf, fmt.Errorf("%w: %s", ErrBadMsf, msf)
		}
	}
	if s >= 0x60 || f >= 0x75 {
		return msf, fmt.Errorf("%w: %s", ErrBadMsf, msf)
	}

	return msf, nil
}

// Parses a "mm:ss:ff" position written in decimal
func ParseMsf(s string) (Msf, error) {
	var m, sec, f uint8
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &m, &sec, &f); err != nil {
		return Msf{}, fmt.Errorf("%w: %q", ErrBadMsf, s)
	}
	if m > 99 || sec > 99 || f > 99 {
		return Msf{}, fmt.Errorf("%w: %q", ErrBadMsf, s)
	}
	return MsfFromBcd(toBcd(m), toBcd(sec), toBcd(f))
}

func toBcd(v uint8) uint8 {
	return (v/10)<<4 | v%10
}

// Converts an MSF into a sector index
func (msf Msf) SectorIndex() uint32 {
	m := uint32((msf.M>>4)*10 + (msf.M & 0xf))
	s := uint32((msf.S>>4)*10 + (msf.S & 0xf))
	f := uint32((msf.F>>4)*10 + (msf.F & 0xf))
	return (60 * 75 * m) + (75 * s) + f
}

// Returns the MSF of the next sector
func (msf Msf) Next() Msf {
	m, s, f := msf.M, msf.S, msf.F

	if f < 0x74 {
		return Msf{m, s, incBcd(f)}
	}
	if s < 0x59 {
		return Msf{m, incBcd(s), 0}
	}
	return Msf{incBcd(m), 0, 0}
}

func incBcd(v uint8) uint8 {
	if v&0xf < 9 {
		return v + 1
	}
	return (v & 0xf0) + 0x10
}

// A raw single track disc image (.bin), 2352 bytes per sector
type Disc struct {
	File io.ReadSeeker // BIN reader
}

// Creates a new disc instance
func NewDisc(r io.ReadSeeker) *Disc {
	return &Disc{File: r}
}

// Reads the raw sector at `msf`
func (disc *Disc) ReadSector(msf Msf) ([]byte, error) {
	index := msf.SectorIndex()
	if index < PREGAP_SECTORS {
		return nil, fmt.Errorf("%w: %s is inside the pregap", ErrBadMsf, msf)
	}

	pos := int64(index-PREGAP_SECTORS) * SECTOR_SIZE
	if _, err := disc.File.Seek(pos, io.SeekStart); err != nil {
		return nil, err
	}

	sector := make([]byte, SECTOR_SIZE)
	if _, err := io.ReadFull(disc.File, sector); err != nil {
		return nil, fmt.Errorf("reading sector %s: %w", msf, err)
	}
	return sector, nil
}

// Reads the user data of the mode 2 form 1 sector at `msf`, the part the
// controller hands to the data buffer
func (disc *Disc) ReadData(msf Msf) ([]byte, error) {
	sector, err := disc.ReadSector(msf)
	if err != nil {
		return nil, err
	}
	return sector[SECTOR_DATA_OFFSET : SECTOR_DATA_OFFSET+SECTOR_DATA_SIZE], nil
}
