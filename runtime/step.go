// Package runtime drives a vm.State forward one instruction at a time: it
// fetches and decodes the word at PC against the instruction catalog,
// applies the instruction's register/memory/PC effects to a cloned State,
// dispatches syscalls, and classifies faults. Delay slots are not modeled —
// branches take effect on the very next step, an explicit simplification
// documented alongside the rest of this package.
package runtime

import (
	"fmt"

	"github.com/eduvm/mips32/asm"
	"github.com/eduvm/mips32/binaryfmt"
	"github.com/eduvm/mips32/catalog"
	"github.com/eduvm/mips32/vm"
)

// Outcome reports what happened after a successful step, beyond the new
// State itself.
type Outcome struct {
	Exited   bool
	ExitCode int32
}

// Runtime holds the state a single step needs beyond the vm.State itself:
// host I/O for syscalls and the simulated heap break for sbrk. Neither is
// part of vm.State, so sbrk's effect does not participate in the
// forward/reverse round-trip invariant — a documented limitation.
type Runtime struct {
	IO        HostIO
	heapBreak uint32
	heapSet   bool
}

// New creates a Runtime bound to the given host I/O.
func New(io HostIO) *Runtime {
	return &Runtime{IO: io}
}

func (r *Runtime) initialHeapBreak() uint32 {
	if !r.heapSet {
		r.heapBreak = binaryfmt.DataStart + 0x00100000
		r.heapSet = true
	}
	return r.heapBreak
}

func fetchWord(binary *binaryfmt.Binary, addr uint32) (uint32, bool) {
	seg := binaryfmt.AddressSegment(addr)
	if seg != binaryfmt.SegText && seg != binaryfmt.SegKText {
		return 0, false
	}
	bytes := binary.SegmentBytes(seg)
	off := int(addr - binaryfmt.BaseAddress(seg))
	if off < 0 || off+4 > len(*bytes) {
		return 0, false
	}
	var w uint32
	for i := 0; i < 4; i++ {
		b, ok := (*bytes)[off+i].Get()
		if !ok {
			return 0, false
		}
		w |= uint32(b) << uint(8*i)
	}
	return w, true
}

func readReg(s *vm.State, n int) (int32, error) {
	v, ok := s.GetRegister(n).Get()
	if !ok {
		return 0, faultUninitialised("register", fmt.Sprintf("$%d was never written", n))
	}
	return v, nil
}

func signExtend16(imm uint32) int32 {
	return int32(int16(uint16(imm)))
}

// Step fetches, decodes, and executes one instruction from cur.PC,
// returning a brand-new State (cur is never mutated) and what happened.
// On fault, the returned State is nil and cur remains the current state
// for the caller to keep.
func (r *Runtime) Step(cur *vm.State, binary *binaryfmt.Binary, set *catalog.InstSet) (*vm.State, Outcome, error) {
	word, ok := fetchWord(binary, cur.PC)
	if !ok {
		return nil, Outcome{}, faultNoInstruction(cur.PC)
	}

	kind, opcode, rsNum, rtNum, rdNum, shamt, funct := asm.DecodeWord(word)
	sig, err := set.NativeByOpcode(kind, opcode, funct, rsNum, rtNum, rdNum, shamt)
	if err != nil {
		return nil, Outcome{}, faultNoInstruction(cur.PC)
	}

	next := cur.Clone()
	next.PC = cur.PC + 4

	outcome, err := r.execute(sig.Name, cur, next, int(rsNum), int(rtNum), int(rdNum), int(shamt), word)
	if err != nil {
		return nil, Outcome{}, err
	}
	return next, outcome, nil
}

func (r *Runtime) execute(name string, cur, next *vm.State, rs, rt, rd, shamt int, word uint32) (Outcome, error) {
	imm := signExtend16(word & 0xFFFF)
	uimm := int32(word & 0xFFFF)

	switch name {
	case "add", "sub":
		a, err := readReg(cur, rs)
		if err != nil {
			return Outcome{}, err
		}
		b, err := readReg(cur, rt)
		if err != nil {
			return Outcome{}, err
		}
		var wide int64
		if name == "add" {
			wide = int64(a) + int64(b)
		} else {
			wide = int64(a) - int64(b)
		}
		if wide < -2147483648 || wide > 2147483647 {
			return Outcome{}, faultIntegerOverflow(fmt.Sprintf("%s $%d, $%d, $%d overflowed", name, rd, rs, rt))
		}
		next.SetRegister(rd, binaryfmt.ValidOf(int32(wide)))

	case "addu", "subu":
		a, err := readReg(cur, rs)
		if err != nil {
			return Outcome{}, err
		}
		b, err := readReg(cur, rt)
		if err != nil {
			return Outcome{}, err
		}
		var v int32
		if name == "addu" {
			v = int32(uint32(a) + uint32(b))
		} else {
			v = int32(uint32(a) - uint32(b))
		}
		next.SetRegister(rd, binaryfmt.ValidOf(v))

	case "and", "or", "xor", "nor":
		a, err := readReg(cur, rs)
		if err != nil {
			return Outcome{}, err
		}
		b, err := readReg(cur, rt)
		if err != nil {
			return Outcome{}, err
		}
		var v int32
		switch name {
		case "and":
			v = a & b
		case "or":
			v = a | b
		case "xor":
			v = a ^ b
		case "nor":
			v = ^(a | b)
		}
		next.SetRegister(rd, binaryfmt.ValidOf(v))

	case "slt", "sltu":
		a, err := readReg(cur, rs)
		if err != nil {
			return Outcome{}, err
		}
		b, err := readReg(cur, rt)
		if err != nil {
			return Outcome{}, err
		}
		var less bool
		if name == "slt" {
			less = a < b
		} else {
			less = uint32(a) < uint32(b)
		}
		if less {
			next.SetRegister(rd, binaryfmt.ValidOf(int32(1)))
		} else {
			next.SetRegister(rd, binaryfmt.ValidOf(int32(0)))
		}

	case "sll", "srl", "sra":
		v, err := readReg(cur, rt)
		if err != nil {
			return Outcome{}, err
		}
		var out int32
		switch name {
		case "sll":
			out = int32(uint32(v) << uint(shamt))
		case "srl":
			out = int32(uint32(v) >> uint(shamt))
		case "sra":
			out = v >> uint(shamt)
		}
		next.SetRegister(rd, binaryfmt.ValidOf(out))

	case "sllv", "srlv", "srav":
		v, err := readReg(cur, rt)
		if err != nil {
			return Outcome{}, err
		}
		amt, err := readReg(cur, rs)
		if err != nil {
			return Outcome{}, err
		}
		sh := uint(uint32(amt) & 0x1F)
		var out int32
		switch name {
		case "sllv":
			out = int32(uint32(v) << sh)
		case "srlv":
			out = int32(uint32(v) >> sh)
		case "srav":
			out = v >> sh
		}
		next.SetRegister(rd, binaryfmt.ValidOf(out))

	case "mult", "multu":
		a, err := readReg(cur, rs)
		if err != nil {
			return Outcome{}, err
		}
		b, err := readReg(cur, rt)
		if err != nil {
			return Outcome{}, err
		}
		var wide uint64
		if name == "mult" {
			wide = uint64(int64(a) * int64(b))
		} else {
			wide = uint64(a) * uint64(b)
		}
		next.LO = binaryfmt.ValidOf(int32(uint32(wide)))
		next.HI = binaryfmt.ValidOf(int32(uint32(wide >> 32)))

	case "div", "divu":
		a, err := readReg(cur, rs)
		if err != nil {
			return Outcome{}, err
		}
		b, err := readReg(cur, rt)
		if err != nil {
			return Outcome{}, err
		}
		if b == 0 {
			return Outcome{}, faultDivisionByZero()
		}
		if name == "div" {
			next.LO = binaryfmt.ValidOf(a / b)
			next.HI = binaryfmt.ValidOf(a % b)
		} else {
			next.LO = binaryfmt.ValidOf(int32(uint32(a) / uint32(b)))
			next.HI = binaryfmt.ValidOf(int32(uint32(a) % uint32(b)))
		}

	case "mfhi":
		v, ok := cur.HI.Get()
		if !ok {
			return Outcome{}, faultUninitialised("HI", "HI was never written")
		}
		next.SetRegister(rd, binaryfmt.ValidOf(v))
	case "mflo":
		v, ok := cur.LO.Get()
		if !ok {
			return Outcome{}, faultUninitialised("LO", "LO was never written")
		}
		next.SetRegister(rd, binaryfmt.ValidOf(v))
	case "mthi":
		v, err := readReg(cur, rs)
		if err != nil {
			return Outcome{}, err
		}
		next.HI = binaryfmt.ValidOf(v)
	case "mtlo":
		v, err := readReg(cur, rs)
		if err != nil {
			return Outcome{}, err
		}
		next.LO = binaryfmt.ValidOf(v)

	case "addi":
		a, err := readReg(cur, rs)
		if err != nil {
			return Outcome{}, err
		}
		wide := int64(a) + int64(imm)
		if wide < -2147483648 || wide > 2147483647 {
			return Outcome{}, faultIntegerOverflow(fmt.Sprintf("addi $%d, $%d, %d overflowed", rt, rs, imm))
		}
		next.SetRegister(rt, binaryfmt.ValidOf(int32(wide)))
	case "addiu":
		a, err := readReg(cur, rs)
		if err != nil {
			return Outcome{}, err
		}
		next.SetRegister(rt, binaryfmt.ValidOf(int32(uint32(a)+uint32(imm))))
	case "andi", "ori", "xori":
		a, err := readReg(cur, rs)
		if err != nil {
			return Outcome{}, err
		}
		var v int32
		switch name {
		case "andi":
			v = a & uimm
		case "ori":
			v = a | uimm
		case "xori":
			v = a ^ uimm
		}
		next.SetRegister(rt, binaryfmt.ValidOf(v))
	case "slti", "sltiu":
		a, err := readReg(cur, rs)
		if err != nil {
			return Outcome{}, err
		}
		var less bool
		if name == "slti" {
			less = a < imm
		} else {
			less = uint32(a) < uint32(imm)
		}
		if less {
			next.SetRegister(rt, binaryfmt.ValidOf(int32(1)))
		} else {
			next.SetRegister(rt, binaryfmt.ValidOf(int32(0)))
		}
	case "lui":
		next.SetRegister(rt, binaryfmt.ValidOf(int32(uint32(uimm)<<16)))

	case "beq", "bne", "blez", "bgtz", "bltz", "bgez":
		a, err := readReg(cur, rs)
		if err != nil {
			return Outcome{}, err
		}
		var taken bool
		switch name {
		case "beq":
			b, err := readReg(cur, rt)
			if err != nil {
				return Outcome{}, err
			}
			taken = a == b
		case "bne":
			b, err := readReg(cur, rt)
			if err != nil {
				return Outcome{}, err
			}
			taken = a != b
		case "blez":
			taken = a <= 0
		case "bgtz":
			taken = a > 0
		case "bltz":
			taken = a < 0
		case "bgez":
			taken = a >= 0
		}
		if taken {
			next.PC = uint32(int64(cur.PC) + 4 + int64(imm)*4)
		}

	case "lb", "lbu", "lh", "lhu", "lw":
		base, err := readReg(cur, rs)
		if err != nil {
			return Outcome{}, err
		}
		addr := uint32(int64(base) + int64(imm))
		switch name {
		case "lb":
			b, ok := cur.Memory.ReadByte(addr).Get()
			if !ok {
				return Outcome{}, faultUninitialised("byte", fmt.Sprintf("address 0x%08X", addr))
			}
			next.SetRegister(rt, binaryfmt.ValidOf(int32(int8(b))))
		case "lbu":
			b, ok := cur.Memory.ReadByte(addr).Get()
			if !ok {
				return Outcome{}, faultUninitialised("byte", fmt.Sprintf("address 0x%08X", addr))
			}
			next.SetRegister(rt, binaryfmt.ValidOf(int32(b)))
		case "lh":
			h, ok := cur.Memory.ReadHalf(addr)
			if !ok {
				return Outcome{}, faultUninitialised("half", fmt.Sprintf("address 0x%08X", addr))
			}
			next.SetRegister(rt, binaryfmt.ValidOf(int32(int16(h))))
		case "lhu":
			h, ok := cur.Memory.ReadHalf(addr)
			if !ok {
				return Outcome{}, faultUninitialised("half", fmt.Sprintf("address 0x%08X", addr))
			}
			next.SetRegister(rt, binaryfmt.ValidOf(int32(h)))
		case "lw":
			w, ok := cur.Memory.ReadWord(addr)
			if !ok {
				return Outcome{}, faultUninitialised("word", fmt.Sprintf("address 0x%08X", addr))
			}
			next.SetRegister(rt, binaryfmt.ValidOf(int32(w)))
		}

	case "sb", "sh", "sw":
		base, err := readReg(cur, rs)
		if err != nil {
			return Outcome{}, err
		}
		v, err := readReg(cur, rt)
		if err != nil {
			return Outcome{}, err
		}
		addr := uint32(int64(base) + int64(imm))
		switch name {
		case "sb":
			next.Memory.WriteByte(addr, byte(v))
		case "sh":
			next.Memory.WriteHalf(addr, uint16(v))
		case "sw":
			next.Memory.WriteWord(addr, uint32(v))
		}

	case "j":
		next.PC = jumpTarget(cur.PC, word)
	case "jal":
		next.SetRegister(vm.RA, binaryfmt.ValidOf(int32(cur.PC+4)))
		next.PC = jumpTarget(cur.PC, word)
	case "jr":
		target, err := readReg(cur, rs)
		if err != nil {
			return Outcome{}, err
		}
		next.PC = uint32(target)
	case "jalr":
		target, err := readReg(cur, rs)
		if err != nil {
			return Outcome{}, err
		}
		next.SetRegister(vm.RA, binaryfmt.ValidOf(int32(cur.PC+4)))
		next.PC = uint32(target)

	case "syscall":
		return r.syscall(cur, next)

	default:
		return Outcome{}, faultNoInstruction(cur.PC)
	}

	return Outcome{}, nil
}

func jumpTarget(addr uint32, word uint32) uint32 {
	target26 := word & 0x03FFFFFF
	return ((addr + 4) & 0xF0000000) | (target26 << 2)
}
