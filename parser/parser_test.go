package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSimpleArithmetic(t *testing.T) {
	src := ".text\nmain: li $t0, 17\nli $t1, 25\nadd $t2, $t0, $t1\n"
	prog, _, err := ParseSource(src, "test.asm")
	require.NoError(t, err)

	require.Len(t, prog.Items, 5)
	assert.Equal(t, ItemDirective, prog.Items[0].Kind)
	assert.Equal(t, "text", prog.Items[0].Directive)
	assert.Equal(t, ItemLabel, prog.Items[1].Kind)
	assert.Equal(t, "main", prog.Items[1].Label)
	assert.Equal(t, ItemInstruction, prog.Items[2].Kind)
	assert.Equal(t, "li", prog.Items[2].Mnemonic)
	require.Len(t, prog.Items[2].Operands, 2)
	assert.Equal(t, OperandRegister, prog.Items[2].Operands[0].Kind)
	assert.Equal(t, 8, prog.Items[2].Operands[0].Register)
}

func TestParseOffsetOperand(t *testing.T) {
	src := "lw $t0, 4($sp)\n"
	prog, _, err := ParseSource(src, "test.asm")
	require.NoError(t, err)
	require.Len(t, prog.Items, 1)
	ops := prog.Items[0].Operands
	require.Len(t, ops, 2)
	assert.Equal(t, OperandOffset, ops[1].Kind)
	assert.Equal(t, 29, ops[1].Register)
	assert.Equal(t, int64(4), ops[1].Expr.IntValue)
}

func TestParseFileAttrTabsize(t *testing.T) {
	src := "#![tabsize(4)]\n.text\n"
	prog, _, err := ParseSource(src, "test.asm")
	require.NoError(t, err)
	assert.Equal(t, 4, prog.TabSize)
}

func TestParseConstant(t *testing.T) {
	src := "BUFSIZE = 64\n"
	prog, _, err := ParseSource(src, "test.asm")
	require.NoError(t, err)
	require.Len(t, prog.Items, 1)
	assert.Equal(t, ItemConstant, prog.Items[0].Kind)
	assert.Equal(t, "BUFSIZE", prog.Items[0].ConstName)
	assert.Equal(t, int64(64), prog.Items[0].ConstExpr.IntValue)
}

func TestParseHexImmediate(t *testing.T) {
	src := "li $t0, 0x12345678\n"
	prog, _, err := ParseSource(src, "test.asm")
	require.NoError(t, err)
	require.Len(t, prog.Items, 1)
	expr := prog.Items[0].Operands[1].Expr
	assert.Equal(t, int64(0x12345678), expr.IntValue)
}

func TestParseLabelReference(t *testing.T) {
	src := "beq $t0, $zero, loop\n"
	prog, _, err := ParseSource(src, "test.asm")
	require.NoError(t, err)
	expr := prog.Items[0].Operands[2].Expr
	assert.Equal(t, ExprIdent, expr.Kind)
	assert.Equal(t, "loop", expr.Ident)
}

func TestParseSyntaxError(t *testing.T) {
	src := "add $t0, $t1\n@@@\n"
	_, _, err := ParseSource(src, "test.asm")
	require.Error(t, err)
}
