package asm

import (
	"fmt"

	"github.com/eduvm/mips32/binaryfmt"
	"github.com/eduvm/mips32/diagnostics"
	"github.com/eduvm/mips32/parser"
)

// evalContext resolves identifiers against labels and constants known so
// far. Label resolution is only complete once layout has finished walking
// every item, so data operands that reference a label are recorded as
// fixups (layout.go) and instruction operands are evaluated in the text
// pass, both after that point.
type evalContext struct {
	binary *binaryfmt.Binary
}

// resolveIdent looks up name as a label, then as a constant.
func (ctx *evalContext) resolveIdent(name string) (int64, bool) {
	if addr, ok := ctx.binary.Labels.Lookup(name); ok {
		return int64(addr), true
	}
	if v, ok := ctx.binary.Constants[name]; ok {
		return v, true
	}
	return 0, false
}

// evalExpr evaluates e to an int64, given every label already laid out.
func (ctx *evalContext) evalExpr(e *parser.Expr) (int64, error) {
	var base int64
	switch e.Kind {
	case parser.ExprNumber:
		base = e.IntValue
	case parser.ExprFloat:
		return 0, fmt.Errorf("floating literal used where an integer is required")
	case parser.ExprIdent:
		v, ok := ctx.resolveIdent(e.Ident)
		if !ok {
			known := append(ctx.binary.Labels.Names())
			suggestions := diagnostics.SuggestLabels(e.Ident, known)
			return 0, fmt.Errorf("UnresolvedLabel(%q), similar=%v", e.Ident, suggestions)
		}
		base = v
	}
	if e.HasOp {
		if e.Op == '+' {
			base += e.OpOperand
		} else {
			base -= e.OpOperand
		}
	}
	return base, nil
}
