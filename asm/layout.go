package asm

import (
	"fmt"
	"math"

	"github.com/eduvm/mips32/binaryfmt"
	"github.com/eduvm/mips32/catalog"
	"github.com/eduvm/mips32/parser"
)

// wordFixup is a data-segment reference to a label that wasn't yet known
// when its directive was laid out; resolved once the whole program's
// labels are known.
type wordFixup struct {
	segment binaryfmt.Segment
	offset  int // byte offset into the segment's slice
	width   int // 1, 2, 4, or 8 bytes
	expr    *parser.Expr
	pos     parser.Position
}

// layoutState carries the mutable progress of the layout pass.
type layoutState struct {
	binary  *binaryfmt.Binary
	set     *catalog.InstSet
	segment binaryfmt.Segment
	fixups  []wordFixup
}

func newLayoutState(set *catalog.InstSet) *layoutState {
	return &layoutState{binary: binaryfmt.NewBinary(), set: set, segment: binaryfmt.SegText}
}

// Layout performs the assembler's layout pass over items: recording labels
// at their declaration address, evaluating constants, allocating data
// bytes, and reserving (but not yet encoding) instruction space.
func (ls *layoutState) layout(items []*parser.Item) error {
	for _, item := range items {
		if err := ls.layoutItem(item); err != nil {
			return fmt.Errorf("%s: %w", item.Pos, err)
		}
	}
	return ls.resolveFixups()
}

func (ls *layoutState) layoutItem(item *parser.Item) error {
	switch item.Kind {
	case parser.ItemLabel:
		addr := ls.binary.CurrentAddress(ls.segment)
		if err := ls.binary.Labels.Define(item.Label, addr); err != nil {
			return fmt.Errorf("RedefinedLabel: %w", err)
		}
		return nil

	case parser.ItemConstant:
		ctx := &evalContext{binary: ls.binary}
		v, err := ctx.evalExpr(item.ConstExpr)
		if err != nil {
			return err
		}
		if _, exists := ls.binary.Constants[item.ConstName]; exists {
			return fmt.Errorf("RedefinedConstant: %q", item.ConstName)
		}
		ls.binary.Constants[item.ConstName] = v
		return nil

	case parser.ItemDirective:
		return ls.layoutDirective(item)

	case parser.ItemInstruction:
		return ls.layoutInstruction(item)
	}
	return nil
}

func (ls *layoutState) layoutDirective(item *parser.Item) error {
	switch item.Directive {
	case "text":
		ls.segment = binaryfmt.SegText
	case "ktext":
		ls.segment = binaryfmt.SegKText
	case "data":
		ls.segment = binaryfmt.SegData
	case "kdata":
		ls.segment = binaryfmt.SegKData
	case "globl":
		for _, arg := range item.DirectiveArgs {
			if arg.Expr != nil && arg.Expr.Kind == parser.ExprIdent {
				ls.binary.Globals = append(ls.binary.Globals, arg.Expr.Ident)
			}
		}
	case "align":
		if len(item.DirectiveArgs) != 1 {
			return fmt.Errorf("InvalidDirective: .align requires one argument")
		}
		n := item.DirectiveArgs[0].Expr.IntValue
		boundary := int64(1) << uint(n)
		bytes := ls.binary.SegmentBytes(ls.segment)
		for int64(len(*bytes))%boundary != 0 {
			*bytes = append(*bytes, binaryfmt.UninitialisedOf[byte]())
		}
	case "space":
		if len(item.DirectiveArgs) != 1 {
			return fmt.Errorf("InvalidDirective: .space requires one argument")
		}
		n := item.DirectiveArgs[0].Expr.IntValue
		bytes := ls.binary.SegmentBytes(ls.segment)
		for i := int64(0); i < n; i++ {
			*bytes = append(*bytes, binaryfmt.UninitialisedOf[byte]())
		}
	case "byte":
		return ls.layoutIntData(item, 1)
	case "half":
		return ls.layoutIntData(item, 2)
	case "word":
		return ls.layoutIntData(item, 4)
	case "float":
		return ls.layoutFloatData(item, 4)
	case "double":
		return ls.layoutFloatData(item, 8)
	case "ascii":
		return ls.layoutStringData(item, false)
	case "asciiz":
		return ls.layoutStringData(item, true)
	default:
		return fmt.Errorf("InvalidDirective: unknown directive %q", item.Directive)
	}
	return nil
}

func (ls *layoutState) layoutIntData(item *parser.Item, width int) error {
	bytes := ls.binary.SegmentBytes(ls.segment)
	ctx := &evalContext{binary: ls.binary}
	for _, arg := range item.DirectiveArgs {
		if arg.Expr == nil {
			return fmt.Errorf("InvalidDirective: .%s expects numeric arguments", item.Directive)
		}
		offset := len(*bytes)
		if arg.Expr.Kind == parser.ExprIdent {
			if _, ok := ctx.resolveIdent(arg.Expr.Ident); !ok {
				for i := 0; i < width; i++ {
					*bytes = append(*bytes, binaryfmt.UninitialisedOf[byte]())
				}
				ls.fixups = append(ls.fixups, wordFixup{segment: ls.segment, offset: offset, width: width, expr: arg.Expr, pos: arg.Pos})
				continue
			}
		}
		v, err := ctx.evalExpr(arg.Expr)
		if err != nil {
			return err
		}
		appendIntBytes(bytes, v, width)
	}
	return nil
}

func appendIntBytes(bytes *[]binaryfmt.Safe[byte], v int64, width int) {
	for i := 0; i < width; i++ {
		b := byte(v >> uint(8*i))
		*bytes = append(*bytes, binaryfmt.ValidOf(b))
	}
}

func (ls *layoutState) layoutFloatData(item *parser.Item, width int) error {
	bytes := ls.binary.SegmentBytes(ls.segment)
	for _, arg := range item.DirectiveArgs {
		if arg.Expr == nil {
			return fmt.Errorf("InvalidDirective: .%s expects numeric arguments", item.Directive)
		}
		var f float64
		switch arg.Expr.Kind {
		case parser.ExprFloat:
			f = arg.Expr.FloatValue
		case parser.ExprNumber:
			f = float64(arg.Expr.IntValue)
		default:
			return fmt.Errorf("InvalidDirective: .%s does not accept a label", item.Directive)
		}
		if width == 4 {
			appendIntBytes(bytes, int64(math.Float32bits(float32(f))), 4)
		} else {
			appendIntBytes(bytes, int64(math.Float64bits(f)), 8)
		}
	}
	return nil
}

func (ls *layoutState) layoutStringData(item *parser.Item, nulTerminate bool) error {
	bytes := ls.binary.SegmentBytes(ls.segment)
	for _, arg := range item.DirectiveArgs {
		if arg.Kind != parser.OperandString {
			return fmt.Errorf("InvalidDirective: .%s expects a string literal", item.Directive)
		}
		for i := 0; i < len(arg.Text); i++ {
			*bytes = append(*bytes, binaryfmt.ValidOf(arg.Text[i]))
		}
		if nulTerminate {
			*bytes = append(*bytes, binaryfmt.ValidOf(byte(0)))
		}
	}
	return nil
}

func (ls *layoutState) layoutInstruction(item *parser.Item) error {
	res, err := Resolve(ls.set, item.Mnemonic, item.Operands)
	if err != nil {
		return err
	}
	bytes := ls.binary.SegmentBytes(ls.segment)
	length := 4
	if res.IsPseudo {
		length = 4 * len(res.Pseudo.Expand)
	}
	for i := 0; i < length; i++ {
		*bytes = append(*bytes, binaryfmt.UninitialisedOf[byte]())
	}
	return nil
}

func (ls *layoutState) resolveFixups() error {
	ctx := &evalContext{binary: ls.binary}
	for _, fx := range ls.fixups {
		v, err := ctx.evalExpr(fx.expr)
		if err != nil {
			return fmt.Errorf("%s: %w", fx.pos, err)
		}
		bytes := ls.binary.SegmentBytes(fx.segment)
		for i := 0; i < fx.width; i++ {
			b := byte(v >> uint(8*i))
			(*bytes)[fx.offset+i] = binaryfmt.ValidOf(b)
		}
	}
	return nil
}
