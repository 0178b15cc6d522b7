package asm

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/eduvm/mips32/binaryfmt"
	"github.com/eduvm/mips32/catalog"
	"github.com/eduvm/mips32/parser"
)

// textState walks the same item stream as layout, in lockstep, computing
// each directive's byte length the same way layout did (so addresses line
// up) and encoding every instruction's native opcode word(s) into the
// positions layout already reserved.
type textState struct {
	binary  *binaryfmt.Binary
	set     *catalog.InstSet
	segment binaryfmt.Segment
	cursor  map[binaryfmt.Segment]int
	fileTag string
}

func newTextState(binary *binaryfmt.Binary, set *catalog.InstSet) *textState {
	return &textState{
		binary:  binary,
		set:     set,
		segment: binaryfmt.SegText,
		cursor:  map[binaryfmt.Segment]int{},
	}
}

func (ts *textState) emit(items []*parser.Item) error {
	for _, item := range items {
		ts.fileTag = item.Pos.Filename
		if err := ts.emitItem(item); err != nil {
			return fmt.Errorf("%s: %w", item.Pos, err)
		}
	}
	return nil
}

func (ts *textState) emitItem(item *parser.Item) error {
	switch item.Kind {
	case parser.ItemLabel, parser.ItemConstant:
		return nil

	case parser.ItemDirective:
		return ts.emitDirective(item)

	case parser.ItemInstruction:
		return ts.emitInstruction(item)
	}
	return nil
}

func (ts *textState) emitDirective(item *parser.Item) error {
	switch item.Directive {
	case "text":
		ts.segment = binaryfmt.SegText
	case "ktext":
		ts.segment = binaryfmt.SegKText
	case "data":
		ts.segment = binaryfmt.SegData
	case "kdata":
		ts.segment = binaryfmt.SegKData
	case "globl":
		// no bytes, no cursor movement
	case "align":
		n := item.DirectiveArgs[0].Expr.IntValue
		boundary := int64(1) << uint(n)
		for int64(ts.cursor[ts.segment])%boundary != 0 {
			ts.cursor[ts.segment]++
		}
	case "space":
		ts.cursor[ts.segment] += int(item.DirectiveArgs[0].Expr.IntValue)
	case "byte":
		ts.cursor[ts.segment] += len(item.DirectiveArgs) * 1
	case "half":
		ts.cursor[ts.segment] += len(item.DirectiveArgs) * 2
	case "word":
		ts.cursor[ts.segment] += len(item.DirectiveArgs) * 4
	case "float":
		ts.cursor[ts.segment] += len(item.DirectiveArgs) * 4
	case "double":
		ts.cursor[ts.segment] += len(item.DirectiveArgs) * 8
	case "ascii":
		for _, arg := range item.DirectiveArgs {
			ts.cursor[ts.segment] += len(arg.Text)
		}
	case "asciiz":
		for _, arg := range item.DirectiveArgs {
			ts.cursor[ts.segment] += len(arg.Text) + 1
		}
	}
	return nil
}

var slotTokenRe = regexp.MustCompile(`^\$(\d+)$`)
var hiTokenRe = regexp.MustCompile(`^hi\(\$(\d+)\)$`)
var loTokenRe = regexp.MustCompile(`^lo\(\$(\d+)\)$`)

func (ts *textState) emitInstruction(item *parser.Item) error {
	res, err := Resolve(ts.set, item.Mnemonic, item.Operands)
	if err != nil {
		return err
	}

	if res.IsPseudo {
		return ts.emitPseudo(item, res.Pseudo)
	}
	return ts.emitNative(item.Mnemonic, res.Native, item.Operands, item.Pos)
}

// resolveTemplateOperand turns one PseudoExpand template token into a
// concrete operand for the expanded native instruction, given the
// original pseudo's call-site operands and an evaluator for hi()/lo()
// extraction of those operands' resolved values (labels included).
func (ts *textState) resolveTemplateOperand(token string, callOperands []parser.Operand) (parser.Operand, error) {
	// Slots count from 1; "$0" names the zero register and is handled below.
	if m := slotTokenRe.FindStringSubmatch(token); m != nil && m[1] != "0" {
		idx, _ := strconv.Atoi(m[1])
		if idx < 1 || idx > len(callOperands) {
			return parser.Operand{}, fmt.Errorf("template references out-of-range slot $%d", idx)
		}
		return callOperands[idx-1], nil
	}
	if m := hiTokenRe.FindStringSubmatch(token); m != nil {
		v, err := ts.evalSlot(m[1], callOperands)
		if err != nil {
			return parser.Operand{}, err
		}
		return parser.Operand{Kind: parser.OperandImmediate, Expr: &parser.Expr{Kind: parser.ExprNumber, IntValue: (v >> 16) & 0xFFFF}}, nil
	}
	if m := loTokenRe.FindStringSubmatch(token); m != nil {
		v, err := ts.evalSlot(m[1], callOperands)
		if err != nil {
			return parser.Operand{}, err
		}
		return parser.Operand{Kind: parser.OperandImmediate, Expr: &parser.Expr{Kind: parser.ExprNumber, IntValue: v & 0xFFFF}}, nil
	}
	if len(token) > 0 && token[0] == '$' {
		// Literal named/numeric register, e.g. "$at", "$0".
		name := token[1:]
		num, ok := parser.RegisterNumber(name)
		if !ok {
			return parser.Operand{}, fmt.Errorf("unknown literal register %q in pseudo template", token)
		}
		return parser.Operand{Kind: parser.OperandRegister, Register: num, RegName: name}, nil
	}
	// Literal numeric immediate.
	v, err := strconv.ParseInt(token, 0, 64)
	if err != nil {
		return parser.Operand{}, fmt.Errorf("invalid pseudo template token %q: %w", token, err)
	}
	return parser.Operand{Kind: parser.OperandImmediate, Expr: &parser.Expr{Kind: parser.ExprNumber, IntValue: v}}, nil
}

func (ts *textState) evalSlot(slotNum string, callOperands []parser.Operand) (int64, error) {
	idx, _ := strconv.Atoi(slotNum)
	if idx < 1 || idx > len(callOperands) {
		return 0, fmt.Errorf("template references out-of-range slot $%d", idx)
	}
	ctx := &evalContext{binary: ts.binary}
	return ctx.evalExpr(callOperands[idx-1].Expr)
}

func (ts *textState) emitPseudo(item *parser.Item, sig *catalog.PseudoSignature) error {
	for _, step := range sig.Expand {
		operands := make([]parser.Operand, len(step.Data))
		for i, token := range step.Data {
			op, err := ts.resolveTemplateOperand(token, item.Operands)
			if err != nil {
				return err
			}
			operands[i] = op
		}

		nativeRes, err := Resolve(ts.set, step.Inst, operands)
		if err != nil {
			return fmt.Errorf("expanding pseudo %q: %w", item.Mnemonic, err)
		}
		if nativeRes.IsPseudo {
			return fmt.Errorf("pseudo %q expands to non-native instruction %q", item.Mnemonic, step.Inst)
		}
		if err := ts.emitNative(step.Inst, nativeRes.Native, operands, item.Pos); err != nil {
			return err
		}
	}
	return nil
}

// emitNative encodes one native instruction and writes its 4-byte word
// into the active segment at the current cursor, recording line_numbers.
func (ts *textState) emitNative(name string, sig *catalog.InstSignature, operands []parser.Operand, pos parser.Position) error {
	addr := binaryfmt.BaseAddress(ts.segment) + uint32(ts.cursor[ts.segment])
	ctx := &evalContext{binary: ts.binary}

	var word uint32
	var err error

	switch sig.Runtime.Kind {
	case catalog.KindR:
		word, err = encodeR(sig, operands)
	case catalog.KindI:
		word, err = encodeI(sig, operands, addr, ctx)
	case catalog.KindJ:
		word, err = encodeJ(sig, operands, ctx)
	}
	if err != nil {
		return fmt.Errorf("encoding %q: %w", name, err)
	}

	bytes := ts.binary.SegmentBytes(ts.segment)
	off := ts.cursor[ts.segment]
	for i := 0; i < 4; i++ {
		(*bytes)[off+i] = binaryfmt.ValidOf(byte(word >> uint(8*i)))
	}

	if ts.segment == binaryfmt.SegText {
		ts.binary.LineNumbers[addr] = binaryfmt.LineInfo{File: pos.Filename, Line: pos.Line}
	}

	ts.cursor[ts.segment] += 4
	return nil
}
