package binaryfmt

import "fmt"

// LineInfo records which source line produced a given text-segment word.
type LineInfo struct {
	File string
	Line int
}

// Breakpoint is a mutable descriptor attached to an address. It is the one
// part of Binary that may be mutated after assembly.
type Breakpoint struct {
	ID          int
	Address     uint32
	Enabled     bool
	IgnoreCount int
	Commands    []string
}

// LabelTable is an insertion-ordered name -> address mapping.
type LabelTable struct {
	order []string
	addrs map[string]uint32
}

// NewLabelTable creates an empty, insertion-ordered label table.
func NewLabelTable() *LabelTable {
	return &LabelTable{addrs: make(map[string]uint32)}
}

// Define records name -> addr. Redefining an existing label is an error.
func (lt *LabelTable) Define(name string, addr uint32) error {
	if _, exists := lt.addrs[name]; exists {
		return fmt.Errorf("redefined label %q", name)
	}
	lt.addrs[name] = addr
	lt.order = append(lt.order, name)
	return nil
}

// Lookup returns the address for name, if defined.
func (lt *LabelTable) Lookup(name string) (uint32, bool) {
	addr, ok := lt.addrs[name]
	return addr, ok
}

// Names returns labels in declaration order.
func (lt *LabelTable) Names() []string {
	return append([]string(nil), lt.order...)
}

// NameForAddress returns the first label (in declaration order) bound to
// addr, used by the decompiler to render jump/branch targets.
func (lt *LabelTable) NameForAddress(addr uint32) (string, bool) {
	for _, name := range lt.order {
		if lt.addrs[name] == addr {
			return name, true
		}
	}
	return "", false
}

// Binary is the assembled program: byte segments, label/constant tables,
// source line mapping, and breakpoints.
type Binary struct {
	Text  []Safe[byte]
	KText []Safe[byte]
	Data  []Safe[byte]
	KData []Safe[byte]

	Labels    *LabelTable
	Constants map[string]int64
	Globals   []string

	// LineNumbers maps a Text-segment address to the source file/line that
	// produced it. KText addresses have no entries.
	LineNumbers map[uint32]LineInfo

	Breakpoints map[int]*Breakpoint
	nextBPID    int
}

// NewBinary creates an empty Binary ready for the layout pass.
func NewBinary() *Binary {
	return &Binary{
		Labels:      NewLabelTable(),
		Constants:   make(map[string]int64),
		LineNumbers: make(map[uint32]LineInfo),
		Breakpoints: make(map[int]*Breakpoint),
		nextBPID:    1,
	}
}

// SegmentBytes returns a pointer to the byte slice backing seg, so callers
// can append to it during layout/text passes.
func (b *Binary) SegmentBytes(seg Segment) *[]Safe[byte] {
	switch seg {
	case SegText:
		return &b.Text
	case SegKText:
		return &b.KText
	case SegData:
		return &b.Data
	case SegKData:
		return &b.KData
	default:
		return nil
	}
}

// BaseAddress returns the starting address of seg.
func BaseAddress(seg Segment) uint32 {
	switch seg {
	case SegText:
		return TextStart
	case SegKText:
		return KTextStart
	case SegData:
		return DataStart
	case SegKData:
		return KDataStart
	default:
		return 0
	}
}

// CurrentAddress returns the next free address in seg given its current
// length.
func (b *Binary) CurrentAddress(seg Segment) uint32 {
	bytes := b.SegmentBytes(seg)
	if bytes == nil {
		return 0
	}
	return BaseAddress(seg) + uint32(len(*bytes))
}

// AddBreakpoint registers a new breakpoint and returns its id.
func (b *Binary) AddBreakpoint(addr uint32, ignoreCount int) *Breakpoint {
	bp := &Breakpoint{ID: b.nextBPID, Address: addr, Enabled: true, IgnoreCount: ignoreCount}
	b.Breakpoints[bp.ID] = bp
	b.nextBPID++
	return bp
}

// BreakpointAt returns the (enabled or disabled) breakpoint at addr, if any.
func (b *Binary) BreakpointAt(addr uint32) *Breakpoint {
	for _, bp := range b.Breakpoints {
		if bp.Address == addr {
			return bp
		}
	}
	return nil
}

// RemoveBreakpoint deletes a breakpoint by id.
func (b *Binary) RemoveBreakpoint(id int) error {
	if _, ok := b.Breakpoints[id]; !ok {
		return fmt.Errorf("breakpoint %d not found", id)
	}
	delete(b.Breakpoints, id)
	return nil
}

// WordAligned reports whether the text segment length is a multiple of 4.
func (b *Binary) WordAligned() bool {
	return len(b.Text)%4 == 0
}
