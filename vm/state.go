// Package vm defines the per-step CPU snapshot: registers, HI/LO, PC, and
// paged sparse memory. A State is immutable once built; stepping produces a
// new State rather than mutating the current one (see package runtime).
package vm

import "github.com/eduvm/mips32/binaryfmt"

// State is one complete machine snapshot. Zero value is not useful; build
// one with NewState.
type State struct {
	Regs   [32]binaryfmt.Safe[int32]
	HI, LO binaryfmt.Safe[int32]
	PC     uint32
	Memory *Memory
}

// NewState returns the initial machine state: $0 is Valid(0) per the
// architecture invariant, $sp/$gp start at the conventional stack/global
// pointers, every other register and HI/LO start Uninitialised, and memory
// is empty (all pages lazily allocated on first write).
func NewState() *State {
	s := &State{Memory: NewMemory()}
	for i := range s.Regs {
		s.Regs[i] = binaryfmt.UninitialisedOf[int32]()
	}
	s.Regs[Zero] = binaryfmt.ValidOf(int32(0))
	s.Regs[SP] = binaryfmt.ValidOf(int32(binaryfmt.StackPtr))
	s.Regs[GP] = binaryfmt.ValidOf(int32(binaryfmt.GlobalPtr))
	s.HI = binaryfmt.UninitialisedOf[int32]()
	s.LO = binaryfmt.UninitialisedOf[int32]()
	return s
}

// NewStateWithImage returns the initial machine state with bin's assembled
// Data and KData segments copied into memory at their segment base
// addresses, preserving each byte's Valid/Uninitialised status (a .space
// directive reserves bytes without writing them, and those must still read
// as Uninitialised rather than silently becoming zero). Text/KText are not
// copied into memory: the fetch path decodes them directly from bin.
func NewStateWithImage(bin *binaryfmt.Binary) *State {
	s := NewState()
	loadSegment(s.Memory, binaryfmt.DataStart, bin.Data)
	loadSegment(s.Memory, binaryfmt.KDataStart, bin.KData)
	return s
}

func loadSegment(mem *Memory, base uint32, segment []binaryfmt.Safe[byte]) {
	for i, b := range segment {
		mem.WriteSafeByte(base+uint32(i), b)
	}
}

// Clone deep-copies the state (registers by value, memory pages copied) so
// the caller can mutate the copy into the next State without touching this
// one — every prior State in the timeline must stay bitwise unchanged.
func (s *State) Clone() *State {
	out := &State{
		HI:     s.HI,
		LO:     s.LO,
		PC:     s.PC,
		Memory: s.Memory.Clone(),
	}
	out.Regs = s.Regs
	return out
}

// GetRegister reads register n. Reading $0 always returns Valid(0).
func (s *State) GetRegister(n int) binaryfmt.Safe[int32] {
	if n == Zero {
		return binaryfmt.ValidOf(int32(0))
	}
	return s.Regs[n]
}

// SetRegister writes v into register n. Writes to $0 are silently
// discarded, keeping $0 permanently Valid(0).
func (s *State) SetRegister(n int, v binaryfmt.Safe[int32]) {
	if n == Zero {
		return
	}
	s.Regs[n] = v
}

// Equal reports bitwise equality of registers, HI, LO, PC, and every
// allocated memory page — used to verify the forward/reverse round-trip
// invariant.
func (s *State) Equal(other *State) bool {
	if s.PC != other.PC || s.HI != other.HI || s.LO != other.LO {
		return false
	}
	if s.Regs != other.Regs {
		return false
	}
	if len(s.Memory.pages) != len(other.Memory.pages) {
		return false
	}
	for base, page := range s.Memory.pages {
		otherPage, ok := other.Memory.pages[base]
		if !ok || *page != *otherPage {
			return false
		}
	}
	return true
}
