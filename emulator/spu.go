package emulator

// Sound RAM size in bytes
const SPU_RAM_SIZE = 512 * 1024

// SPUCNT bits [5:4]
type SpuTransferMode uint8

const (
	SPU_TRANSFER_STOP     SpuTransferMode = 0
	SPU_TRANSFER_MANUAL   SpuTransferMode = 1
	SPU_TRANSFER_DMAWRITE SpuTransferMode = 2
	SPU_TRANSFER_DMAREAD  SpuTransferMode = 3
)

// Sound Processing Unit, reduced to the sound RAM and its data transfer
// port
type SPU struct {
	Ram          [SPU_RAM_SIZE]byte
	TransferMode SpuTransferMode
	TransferAddr uint32 // Current transfer position in bytes
}

func NewSPU() *SPU {
	return &SPU{}
}

// SPUCNT write, only the transfer mode is kept
func (spu *SPU) SetControl(val uint16) {
	spu.TransferMode = SpuTransferMode((val >> 4) & 3)
}

// Sound RAM data transfer address register, in units of 8 bytes
func (spu *SPU) SetTransferAddress(val uint16) {
	spu.TransferAddr = uint32(val) * 8
}

func (spu *SPU) store16(val uint16) {
	addr := spu.TransferAddr & (SPU_RAM_SIZE - 1)
	spu.Ram[addr] = byte(val)
	spu.Ram[addr+1] = byte(val >> 8)
	spu.TransferAddr = (spu.TransferAddr + 2) & (SPU_RAM_SIZE - 1)
}

func (spu *SPU) load16() uint16 {
	addr := spu.TransferAddr & (SPU_RAM_SIZE - 1)
	val := uint16(spu.Ram[addr]) | uint16(spu.Ram[addr+1])<<8
	spu.TransferAddr = (spu.TransferAddr + 2) & (SPU_RAM_SIZE - 1)
	return val
}

// Writes a word to sound RAM as two halfwords, low half first
func (spu *SPU) DmaWrite(word uint32) {
	spu.store16(uint16(word))
	spu.store16(uint16(word >> 16))
}

// Reads a word from sound RAM
func (spu *SPU) DmaRead() uint32 {
	lo := uint32(spu.load16())
	hi := uint32(spu.load16())
	return hi<<16 | lo
}

func (spu *SPU) DmaRequest(dir Direction) bool {
	switch spu.TransferMode {
	case SPU_TRANSFER_DMAWRITE:
		return dir == DIRECTION_FROM_RAM
	case SPU_TRANSFER_DMAREAD:
		return dir == DIRECTION_TO_RAM
	}
	return false
}
