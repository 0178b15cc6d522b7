package debugger

import (
	"sync"

	"github.com/eduvm/mips32/asm"
	"github.com/eduvm/mips32/catalog"
	"github.com/eduvm/mips32/vm"
)

// WatchAction is the access kind a watchpoint reacts to.
type WatchAction int

const (
	WatchRead WatchAction = iota
	WatchWrite
	WatchReadWrite
)

// Subsumes reports whether action would fire a watchpoint armed for want:
// ReadWrite fires on either a read or a write, Read fires only on a read,
// and Write fires only on a write.
func (want WatchAction) Subsumes(action WatchAction) bool {
	if want == WatchReadWrite {
		return true
	}
	return want == action
}

// Watchpoint is a single armed watch on a register or a memory address.
type Watchpoint struct {
	ID     int
	Action WatchAction

	IsMemory bool
	Address  uint32 // valid when IsMemory
	Register int    // valid when !IsMemory, an index into vm.State.Regs
}

// WatchpointManager tracks armed watchpoints and matches them against the
// access set of the instruction about to execute, rather than polling
// register/memory values for changes after the fact.
type WatchpointManager struct {
	mu      sync.Mutex
	nextID  int
	watches []*Watchpoint
}

// NewWatchpointManager returns an empty manager.
func NewWatchpointManager() *WatchpointManager {
	return &WatchpointManager{nextID: 1}
}

// WatchRegister arms a watch on a register index for the given action.
func (wm *WatchpointManager) WatchRegister(reg int, action WatchAction) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	w := &Watchpoint{ID: wm.nextID, Action: action, Register: reg}
	wm.nextID++
	wm.watches = append(wm.watches, w)
	return w
}

// WatchMemory arms a watch on a byte address for the given action.
func (wm *WatchpointManager) WatchMemory(addr uint32, action WatchAction) *Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	w := &Watchpoint{ID: wm.nextID, Action: action, IsMemory: true, Address: addr}
	wm.nextID++
	wm.watches = append(wm.watches, w)
	return w
}

// Remove deletes the watchpoint with the given id.
func (wm *WatchpointManager) Remove(id int) {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	out := wm.watches[:0]
	for _, w := range wm.watches {
		if w.ID != id {
			out = append(out, w)
		}
	}
	wm.watches = out
}

// All returns a snapshot of the currently armed watchpoints.
func (wm *WatchpointManager) All() []*Watchpoint {
	wm.mu.Lock()
	defer wm.mu.Unlock()
	out := make([]*Watchpoint, len(wm.watches))
	copy(out, wm.watches)
	return out
}

// RegisterAccess records that an about-to-execute instruction would read or
// write a single register.
type RegisterAccess struct {
	Register int
	Action   WatchAction
}

// MemoryAccess records that an about-to-execute instruction would read or
// write bytes [Address, Address+Size).
type MemoryAccess struct {
	Address uint32
	Size    uint32
	Action  WatchAction
}

var loadSizes = map[string]uint32{
	"lb": 1, "lbu": 1,
	"lh": 2, "lhu": 2,
	"lw": 4,
}

var storeSizes = map[string]uint32{
	"sb": 1,
	"sh": 2,
	"sw": 4,
}

// AffectedAccesses computes the register and memory accesses the
// instruction word at addr would perform if executed against cur, without
// mutating cur. Register writes are derived by elimination: any
// register-valued operand position in the compile format that the catalog
// does not list under Runtime.Reads is a write, matching how the catalog
// already documents loads vs. arithmetic destinations; jal/jalr
// additionally write $ra implicitly, since that destination is a fixed
// encoding field rather than an operand. $0 is never reported as written,
// since writes to it are always discarded.
func AffectedAccesses(cur *vm.State, set *catalog.InstSet, addr uint32, word uint32) ([]RegisterAccess, []MemoryAccess, error) {
	kind, opcode, rs, rt, rd, shamt, funct := asm.DecodeWord(word)
	sig, err := set.NativeByOpcode(kind, opcode, funct, rs, rt, rd, shamt)
	if err != nil {
		return nil, nil, err
	}

	reads := make(map[catalog.ArgumentType]bool, len(sig.Runtime.Reads))
	for _, r := range sig.Runtime.Reads {
		reads[r] = true
	}

	var regs []RegisterAccess
	addWrite := func(reg uint32) {
		if reg == vm.Zero {
			return
		}
		regs = append(regs, RegisterAccess{Register: int(reg), Action: WatchWrite})
	}

	hasOffset := false
	for _, argType := range sig.Compile.Format {
		switch argType {
		case catalog.Rs, catalog.OffRs:
			regs = append(regs, RegisterAccess{Register: int(rs), Action: WatchRead})
			if argType == catalog.OffRs {
				hasOffset = true
			}
		case catalog.Rt, catalog.OffRt:
			if reads[argType] {
				regs = append(regs, RegisterAccess{Register: int(rt), Action: WatchRead})
			} else {
				addWrite(rt)
			}
			if argType == catalog.OffRt {
				hasOffset = true
			}
		case catalog.Rd:
			addWrite(rd)
		}
	}
	if sig.Name == "jal" || sig.Name == "jalr" {
		addWrite(vm.RA)
	}

	var mem []MemoryAccess
	if hasOffset {
		offset := int32(int16(uint16(word & 0xFFFF)))
		baseReg := rs
		for _, argType := range sig.Compile.Format {
			if argType == catalog.OffRt {
				baseReg = rt
			}
		}
		base, ok := cur.GetRegister(int(baseReg)).Get()
		if ok {
			effective := uint32(int64(base) + int64(offset))
			if size, ok := loadSizes[sig.Name]; ok {
				mem = append(mem, MemoryAccess{Address: effective, Size: size, Action: WatchRead})
			} else if size, ok := storeSizes[sig.Name]; ok {
				mem = append(mem, MemoryAccess{Address: effective, Size: size, Action: WatchWrite})
			}
		}
	}

	return regs, mem, nil
}

// MatchStep reports every armed watchpoint that the instruction word at addr
// would trigger if executed against cur.
func (wm *WatchpointManager) MatchStep(cur *vm.State, set *catalog.InstSet, addr uint32, word uint32) ([]*Watchpoint, error) {
	regs, mem, err := AffectedAccesses(cur, set, addr, word)
	if err != nil {
		return nil, err
	}

	wm.mu.Lock()
	defer wm.mu.Unlock()

	var hits []*Watchpoint
	for _, w := range wm.watches {
		if w.IsMemory {
			for _, m := range mem {
				if w.Address >= m.Address && w.Address < m.Address+m.Size && w.Action.Subsumes(m.Action) {
					hits = append(hits, w)
					break
				}
			}
			continue
		}
		for _, ra := range regs {
			if ra.Register == w.Register && w.Action.Subsumes(ra.Action) {
				hits = append(hits, w)
				break
			}
		}
	}
	return hits, nil
}
