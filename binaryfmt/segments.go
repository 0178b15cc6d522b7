package binaryfmt

// Segment identifies which region of the address space an address or label
// belongs to.
type Segment int

const (
	SegText Segment = iota
	SegKText
	SegData
	SegKData
	SegStack
	SegUnmapped
)

func (s Segment) String() string {
	switch s {
	case SegText:
		return "text"
	case SegKText:
		return "ktext"
	case SegData:
		return "data"
	case SegKData:
		return "kdata"
	case SegStack:
		return "stack"
	default:
		return "unmapped"
	}
}

// Memory map constants.
const (
	TextStart  uint32 = 0x00400000
	TextEnd    uint32 = 0x0FFFFFFF
	DataStart  uint32 = 0x10000000
	StackStart uint32 = 0x7FFF0000
	StackEnd   uint32 = 0x7FFFFFFF
	KTextStart uint32 = 0x80000000
	KTextEnd   uint32 = 0x8FFFFFFF
	KDataStart uint32 = 0x90000000

	GlobalPtr uint32 = 0x10008000
	StackPtr  uint32 = 0x7FFFFFFC
)

// AddressSegment classifies an absolute address into the segment that owns
// it. Used by the runtime's instruction fetch to pick the segment to read.
func AddressSegment(addr uint32) Segment {
	switch {
	case addr >= TextStart && addr < DataStart:
		return SegText
	case addr >= DataStart && addr < StackStart:
		return SegData
	case addr >= StackStart && addr <= StackEnd:
		return SegStack
	case addr >= KTextStart && addr < KDataStart:
		return SegKText
	case addr >= KDataStart:
		return SegKData
	default:
		return SegUnmapped
	}
}
