package vm

import "github.com/eduvm/mips32/binaryfmt"

// pageSize is the granularity at which memory is lazily allocated; a page
// materializes the first time any address inside it is written.
const pageSize = 4096

// Page is one lazily-allocated memory page: every byte starts Uninitialised.
type Page [pageSize]binaryfmt.Safe[byte]

// Memory is paged sparse guest memory: addresses with no backing page read
// as Uninitialised without allocating anything.
type Memory struct {
	pages map[uint32]*Page
}

// NewMemory returns an empty memory with no pages allocated.
func NewMemory() *Memory {
	return &Memory{pages: make(map[uint32]*Page)}
}

func pageBase(addr uint32) uint32 {
	return addr &^ (pageSize - 1)
}

// Clone deep-copies every allocated page, used when the timeline snapshots
// a State; pages are otherwise treated as immutable once a State is pushed.
func (m *Memory) Clone() *Memory {
	out := &Memory{pages: make(map[uint32]*Page, len(m.pages))}
	for base, page := range m.pages {
		cp := *page
		out.pages[base] = &cp
	}
	return out
}

func (m *Memory) pageFor(addr uint32, allocate bool) *Page {
	base := pageBase(addr)
	page, ok := m.pages[base]
	if !ok {
		if !allocate {
			return nil
		}
		page = &Page{}
		m.pages[base] = page
	}
	return page
}

// ReadByte returns the byte at addr, Uninitialised if its page was never
// written.
func (m *Memory) ReadByte(addr uint32) binaryfmt.Safe[byte] {
	page := m.pageFor(addr, false)
	if page == nil {
		return binaryfmt.UninitialisedOf[byte]()
	}
	return page[addr%pageSize]
}

// WriteByte stores v at addr, allocating its page on first write.
func (m *Memory) WriteByte(addr uint32, v byte) {
	page := m.pageFor(addr, true)
	page[addr%pageSize] = binaryfmt.ValidOf(v)
}

// WriteSafeByte stores v at addr as-is, allocating its page on first write.
// Unlike WriteByte, this preserves an Uninitialised value instead of forcing
// Valid — used to seed memory from an assembled segment, where bytes a
// directive never wrote (e.g. .space padding) must stay Uninitialised.
func (m *Memory) WriteSafeByte(addr uint32, v binaryfmt.Safe[byte]) {
	page := m.pageFor(addr, true)
	page[addr%pageSize] = v
}

// ReadHalf reads a little-endian 16-bit halfword; Uninitialised if either
// byte is Uninitialised.
func (m *Memory) ReadHalf(addr uint32) (uint16, bool) {
	b0, ok0 := m.ReadByte(addr).Get()
	b1, ok1 := m.ReadByte(addr + 1).Get()
	if !ok0 || !ok1 {
		return 0, false
	}
	return uint16(b0) | uint16(b1)<<8, true
}

// WriteHalf stores a little-endian 16-bit halfword.
func (m *Memory) WriteHalf(addr uint32, v uint16) {
	m.WriteByte(addr, byte(v))
	m.WriteByte(addr+1, byte(v>>8))
}

// ReadWord reads a little-endian 32-bit word; Uninitialised if any byte is
// Uninitialised.
func (m *Memory) ReadWord(addr uint32) (uint32, bool) {
	var v uint32
	for i := uint32(0); i < 4; i++ {
		b, ok := m.ReadByte(addr + i).Get()
		if !ok {
			return 0, false
		}
		v |= uint32(b) << (8 * i)
	}
	return v, true
}

// WriteWord stores a little-endian 32-bit word.
func (m *Memory) WriteWord(addr uint32, v uint32) {
	for i := uint32(0); i < 4; i++ {
		m.WriteByte(addr+i, byte(v>>(8*i)))
	}
}
