package asm

import (
	"fmt"

	"github.com/eduvm/mips32/catalog"
	"github.com/eduvm/mips32/parser"
)

// encodeR assembles an R-type word: [op:6|rs:5|rt:5|rd:5|shamt:5|funct:6].
func encodeR(sig *catalog.InstSignature, operands []parser.Operand) (uint32, error) {
	rs, rt, rd, shamt := fixedOr(sig.Runtime.Rs, 0), fixedOr(sig.Runtime.Rt, 0), fixedOr(sig.Runtime.Rd, 0), fixedOr(sig.Runtime.Shamt, 0)

	for i, argType := range sig.Compile.Format {
		op := operands[i]
		switch argType {
		case catalog.Rd:
			rd = uint32(op.Register)
		case catalog.Rs:
			rs = uint32(op.Register)
		case catalog.Rt:
			rt = uint32(op.Register)
		case catalog.Shamt:
			if err := checkImmediateRange("Shamt", op.Expr.IntValue); err != nil {
				return 0, err
			}
			shamt = uint32(op.Expr.IntValue)
		}
	}

	if sig.Runtime.Funct == nil {
		return 0, fmt.Errorf("YamlMissingFunct: %q has no funct", sig.Name)
	}
	funct := *sig.Runtime.Funct

	word := (sig.Runtime.Opcode << 26) | (rs << 21) | (rt << 16) | (rd << 11) | (shamt << 6) | funct
	return word, nil
}

// encodeI assembles an I-type word: [op:6|rs:5|rt:5|imm:16]. addr is the
// address this instruction word will occupy, needed for relative_label
// branch-offset computation.
func encodeI(sig *catalog.InstSignature, operands []parser.Operand, addr uint32, ctx *evalContext) (uint32, error) {
	rs, rt := fixedOr(sig.Runtime.Rs, 0), fixedOr(sig.Runtime.Rt, 0)
	var imm int64
	haveImm := false

	for i, argType := range sig.Compile.Format {
		op := operands[i]
		switch argType {
		case catalog.Rs:
			rs = uint32(op.Register)
		case catalog.Rt:
			rt = uint32(op.Register)
		case catalog.OffRs, catalog.OffRt:
			if argType == catalog.OffRs {
				rs = uint32(op.Register)
			} else {
				rt = uint32(op.Register)
			}
			v, err := ctx.evalExpr(op.Expr)
			if err != nil {
				return 0, err
			}
			if err := checkImmediateRange("I16", v); err != nil {
				return 0, err
			}
			imm, haveImm = v, true
		case catalog.I16, catalog.U16:
			v, err := ctx.evalExpr(op.Expr)
			if err != nil {
				return 0, err
			}
			if sig.Compile.RelativeLabel {
				target := uint32(v)
				offsetBytes := int64(target) - int64(addr+4)
				if offsetBytes%4 != 0 {
					return 0, fmt.Errorf("branch target is not word-aligned relative to PC+4")
				}
				offsetWords := offsetBytes / 4
				if !fitsSigned16(offsetWords) {
					return 0, fmt.Errorf("ImmediateOutOfRange: branch offset %d words does not fit signed 16-bit", offsetWords)
				}
				imm, haveImm = offsetWords, true
			} else {
				argName := "I16"
				if argType == catalog.U16 {
					argName = "U16"
				}
				if err := checkImmediateRange(argName, v); err != nil {
					return 0, err
				}
				imm, haveImm = v, true
			}
		}
	}
	if !haveImm {
		imm = 0
	}

	word := (sig.Runtime.Opcode << 26) | (rs << 21) | (rt << 16) | (uint32(imm) & 0xFFFF)
	return word, nil
}

// encodeJ assembles a J-type word: [op:6|target:26]. target is the low 26
// bits of the word-aligned absolute address (word>>2).
func encodeJ(sig *catalog.InstSignature, operands []parser.Operand, ctx *evalContext) (uint32, error) {
	if len(operands) != 1 {
		return 0, fmt.Errorf("j-type instruction %q expects exactly one operand", sig.Name)
	}
	v, err := ctx.evalExpr(operands[0].Expr)
	if err != nil {
		return 0, err
	}
	target := (uint32(v) >> 2) & 0x03FFFFFF
	word := (sig.Runtime.Opcode << 26) | target
	return word, nil
}

func fixedOr(p *uint32, def uint32) uint32 {
	if p != nil {
		return *p
	}
	return def
}
