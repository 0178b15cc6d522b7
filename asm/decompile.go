package asm

import (
	"fmt"

	"github.com/eduvm/mips32/binaryfmt"
	"github.com/eduvm/mips32/catalog"
)

var reverseRegisterNames = map[int]string{
	0: "zero", 1: "at",
	2: "v0", 3: "v1",
	4: "a0", 5: "a1", 6: "a2", 7: "a3",
	8: "t0", 9: "t1", 10: "t2", 11: "t3", 12: "t4", 13: "t5", 14: "t6", 15: "t7",
	16: "s0", 17: "s1", 18: "s2", 19: "s3", 20: "s4", 21: "s5", 22: "s6", 23: "s7",
	24: "t8", 25: "t9",
	26: "k0", 27: "k1",
	28: "gp", 29: "sp", 30: "fp", 31: "ra",
}

func registerName(n uint32) string {
	if name, ok := reverseRegisterNames[int(n)]; ok {
		return "$" + name
	}
	return fmt.Sprintf("$%d", n)
}

// DecodeWord splits a raw instruction word into its opcode-family kind and
// fixed bit fields, shared by the decompiler and the runtime stepper.
func DecodeWord(word uint32) (kind catalog.RuntimeKind, opcode, rs, rt, rd, shamt, funct uint32) {
	opcode = (word >> 26) & 0x3F

	switch {
	case opcode == 0:
		kind = catalog.KindR
	case opcode == 0x02 || opcode == 0x03:
		kind = catalog.KindJ
	default:
		kind = catalog.KindI
	}

	rs = (word >> 21) & 0x1F
	rt = (word >> 16) & 0x1F
	rd = (word >> 11) & 0x1F
	shamt = (word >> 6) & 0x1F
	funct = word & 0x3F
	return
}

// Decompile reconstructs the textual form of the instruction word at addr,
// resolving jump/branch targets to label names via binary.Labels when one
// covers the target address, falling back to a hex address otherwise.
func Decompile(binary *binaryfmt.Binary, set *catalog.InstSet, addr uint32, word uint32) (string, error) {
	kind, opcode, rs, rt, rd, shamt, funct := DecodeWord(word)

	sig, err := set.NativeByOpcode(kind, opcode, funct, rs, rt, rd, shamt)
	if err != nil {
		return "", fmt.Errorf("NoInstruction(%#x): %w", addr, err)
	}

	operands := make([]string, len(sig.Compile.Format))
	for i, argType := range sig.Compile.Format {
		switch argType {
		case catalog.Rd:
			operands[i] = registerName(rd)
		case catalog.Rs:
			operands[i] = registerName(rs)
		case catalog.Rt:
			operands[i] = registerName(rt)
		case catalog.Shamt:
			operands[i] = fmt.Sprintf("%d", shamt)
		case catalog.I16:
			if sig.Compile.RelativeLabel {
				offset := int32(int16(uint16(word & 0xFFFF)))
				target := uint32(int64(addr) + 4 + int64(offset)*4)
				operands[i] = renderAddress(binary, target)
			} else {
				operands[i] = fmt.Sprintf("%d", int32(int16(uint16(word&0xFFFF))))
			}
		case catalog.U16:
			operands[i] = fmt.Sprintf("%d", word&0xFFFF)
		case catalog.OffRs:
			offset := int32(int16(uint16(word & 0xFFFF)))
			operands[i] = fmt.Sprintf("%d(%s)", offset, registerName(rs))
		case catalog.OffRt:
			offset := int32(int16(uint16(word & 0xFFFF)))
			operands[i] = fmt.Sprintf("%d(%s)", offset, registerName(rt))
		case catalog.J:
			target26 := word & 0x03FFFFFF
			absolute := ((addr + 4) & 0xF0000000) | (target26 << 2)
			operands[i] = renderAddress(binary, absolute)
		}
	}

	out := sig.Name
	for i, op := range operands {
		if i == 0 {
			out += " " + op
		} else {
			out += ", " + op
		}
	}
	return out, nil
}

func renderAddress(binary *binaryfmt.Binary, addr uint32) string {
	if name, ok := binary.Labels.NameForAddress(addr); ok {
		return name
	}
	return fmt.Sprintf("0x%08x", addr)
}
