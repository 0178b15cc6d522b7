// Package asm implements the two-pass assembler: a layout pass that
// assigns addresses to labels and reserves instruction/data space, and a
// text pass that expands pseudo-instructions and encodes native
// instructions into a binaryfmt.Binary.
package asm

import (
	"fmt"

	"github.com/eduvm/mips32/catalog"
	"github.com/eduvm/mips32/diagnostics"
	"github.com/eduvm/mips32/parser"
)

// Resolution is the outcome of matching a parsed instruction item against
// the catalog: exactly one of Native or Pseudo is set.
type Resolution struct {
	Native   *catalog.InstSignature
	Pseudo   *catalog.PseudoSignature
	IsPseudo bool
}

// Resolve looks up mnemonic in set and returns the signature whose compile
// format matches operands. Pseudo-instructions take precedence when both a
// pseudo and a native signature match (spec: "pseudo takes precedence").
func Resolve(set *catalog.InstSet, mnemonic string, operands []parser.Operand) (Resolution, error) {
	for _, sig := range set.PseudoCandidates(mnemonic) {
		if pseudoFormatMatches(sig.Compile.Format, operands) {
			return Resolution{Pseudo: sig, IsPseudo: true}, nil
		}
	}
	for _, sig := range set.NativeCandidates(mnemonic) {
		if formatMatches(sig.Compile.Format, operands) {
			return Resolution{Native: sig}, nil
		}
	}

	if !set.HasName(mnemonic) {
		suggestions := diagnostics.SuggestInstructions(mnemonic, set.AllNames())
		if len(suggestions) > 0 {
			return Resolution{}, fmt.Errorf("InstructionSimName: unknown instruction %q, did you mean %v?", mnemonic, suggestions)
		}
		return Resolution{}, fmt.Errorf("UnknownInstruction: %q", mnemonic)
	}

	candidates := describeCandidates(set, mnemonic)
	return Resolution{}, fmt.Errorf("InstructionBadFormat: %q does not accept the given operands (expected one of: %s)", mnemonic, candidates)
}

func describeCandidates(set *catalog.InstSet, mnemonic string) string {
	var out string
	for _, sig := range set.PseudoCandidates(mnemonic) {
		out += formatDescription(sig.Compile.Format) + "; "
	}
	for _, sig := range set.NativeCandidates(mnemonic) {
		out += formatDescription(sig.Compile.Format) + "; "
	}
	return out
}

func formatDescription(format []catalog.ArgumentType) string {
	s := "("
	for i, f := range format {
		if i > 0 {
			s += ", "
		}
		s += string(f)
	}
	return s + ")"
}

// formatMatches reports whether operands satisfies the shape of format.
func formatMatches(format []catalog.ArgumentType, operands []parser.Operand) bool {
	if len(format) != len(operands) {
		return false
	}
	for i, argType := range format {
		if !argMatches(argType, operands[i]) {
			return false
		}
	}
	return true
}

// pseudoFormatMatches is formatMatches with narrower immediate-width
// checking: a pseudo-instruction like li/la lists several same-named
// signatures of increasing width (I16/U16 before the I32 fallback), and
// picking the first one whose format merely accepts "some immediate" would
// always pick the narrowest and truncate large values. Only a literal
// numeric operand can be range-checked here; label expressions (ExprIdent)
// fall through to the I32 variant, which is always correct for them.
func pseudoFormatMatches(format []catalog.ArgumentType, operands []parser.Operand) bool {
	if len(format) != len(operands) {
		return false
	}
	for i, argType := range format {
		if !pseudoArgMatches(argType, operands[i]) {
			return false
		}
	}
	return true
}

func pseudoArgMatches(argType catalog.ArgumentType, op parser.Operand) bool {
	switch argType {
	case catalog.I16:
		return op.Kind == parser.OperandImmediate && op.Expr != nil &&
			op.Expr.Kind == parser.ExprNumber && op.Expr.IntValue >= -32768 && op.Expr.IntValue <= 32767
	case catalog.U16:
		return op.Kind == parser.OperandImmediate && op.Expr != nil &&
			op.Expr.Kind == parser.ExprNumber && op.Expr.IntValue >= 0 && op.Expr.IntValue <= 65535
	default:
		return argMatches(argType, op)
	}
}

func argMatches(argType catalog.ArgumentType, op parser.Operand) bool {
	switch argType {
	case catalog.Rd, catalog.Rs, catalog.Rt:
		return op.Kind == parser.OperandRegister
	case catalog.Shamt:
		return op.Kind == parser.OperandImmediate && op.Expr != nil && op.Expr.Kind == parser.ExprNumber
	case catalog.I16, catalog.U16, catalog.I32, catalog.U32:
		return op.Kind == parser.OperandImmediate && op.Expr != nil
	case catalog.J:
		return op.Kind == parser.OperandImmediate && op.Expr != nil
	case catalog.OffRs, catalog.OffRt, catalog.Off32Rs, catalog.Off32Rt:
		return op.Kind == parser.OperandOffset
	case catalog.F32, catalog.F64:
		return op.Kind == parser.OperandImmediate && op.Expr != nil
	default:
		return false
	}
}
