package asm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduvm/mips32/binaryfmt"
	"github.com/eduvm/mips32/catalog"
	"github.com/eduvm/mips32/parser"
)

func mustAssemble(t *testing.T, src string) *binaryfmt.Binary {
	t.Helper()
	set, err := catalog.LoadDefault()
	require.NoError(t, err)
	prog, _, err := parser.ParseSource(src, "test.asm")
	require.NoError(t, err)
	bin, err := Assemble(set, prog)
	require.NoError(t, err)
	return bin
}

func wordAt(t *testing.T, bin *binaryfmt.Binary, addr uint32) uint32 {
	t.Helper()
	seg := binaryfmt.AddressSegment(addr)
	bytes := bin.SegmentBytes(seg)
	off := int(addr - binaryfmt.BaseAddress(seg))
	var w uint32
	for i := 0; i < 4; i++ {
		b, ok := (*bytes)[off+i].Get()
		require.True(t, ok, "word at %#x is uninitialised", addr)
		w |= uint32(b) << uint(8*i)
	}
	return w
}

func TestAssembleSimpleArithmetic(t *testing.T) {
	bin := mustAssemble(t, ".text\nmain:\nli $t0, 17\nli $t1, 25\nadd $t2, $t0, $t1\njr $ra\n")
	addr, ok := bin.Labels.Lookup("main")
	require.True(t, ok)

	set, err := catalog.LoadDefault()
	require.NoError(t, err)

	// li $t0, 17 and li $t1, 25 each fit 16 bits and expand to one word
	// (addiu); add is the 3rd word.
	addAddr := addr + 2*4
	text, err := Decompile(bin, set, addAddr, wordAt(t, bin, addAddr))
	require.NoError(t, err)
	assert.Equal(t, "add $t2, $t0, $t1", text)
}

func TestAssembleLiSmallImmediateExpandsToOneWord(t *testing.T) {
	bin := mustAssemble(t, ".text\nmain:\nli $t0, 17\njr $ra\n")
	addr, ok := bin.Labels.Lookup("main")
	require.True(t, ok)

	set, err := catalog.LoadDefault()
	require.NoError(t, err)

	text, err := Decompile(bin, set, addr, wordAt(t, bin, addr))
	require.NoError(t, err)
	assert.Equal(t, "addiu $t0, $zero, 17", text)

	jrText, err := Decompile(bin, set, addr+4, wordAt(t, bin, addr+4))
	require.NoError(t, err)
	assert.Equal(t, "jr $ra", jrText)
}

func TestAssembleLiNegativeSmallImmediateExpandsToOneWord(t *testing.T) {
	bin := mustAssemble(t, ".text\nmain:\nli $t0, -1\njr $ra\n")
	addr, ok := bin.Labels.Lookup("main")
	require.True(t, ok)

	set, err := catalog.LoadDefault()
	require.NoError(t, err)

	text, err := Decompile(bin, set, addr, wordAt(t, bin, addr))
	require.NoError(t, err)
	assert.Equal(t, "addiu $t0, $zero, -1", text)
}

func TestAssembleLiUnsignedSmallImmediateExpandsToOneWord(t *testing.T) {
	bin := mustAssemble(t, ".text\nmain:\nli $t0, 40000\njr $ra\n")
	addr, ok := bin.Labels.Lookup("main")
	require.True(t, ok)

	set, err := catalog.LoadDefault()
	require.NoError(t, err)

	text, err := Decompile(bin, set, addr, wordAt(t, bin, addr))
	require.NoError(t, err)
	assert.Equal(t, "ori $t0, $zero, 40000", text)
}

func TestAssembleLiExpansionDecompilesToTwoNativeForms(t *testing.T) {
	bin := mustAssemble(t, ".text\nmain:\nli $t0, 0x12345678\njr $ra\n")
	addr, ok := bin.Labels.Lookup("main")
	require.True(t, ok)

	set, err := catalog.LoadDefault()
	require.NoError(t, err)

	luiWord := wordAt(t, bin, addr)
	luiText, err := Decompile(bin, set, addr, luiWord)
	require.NoError(t, err)
	assert.Equal(t, "lui $at, 4660", luiText)

	oriWord := wordAt(t, bin, addr+4)
	oriText, err := Decompile(bin, set, addr+4, oriWord)
	require.NoError(t, err)
	assert.Equal(t, "ori $t0, $at, 22136", oriText)
}

func TestAssembleUnresolvedLabelSuggestsSimilarName(t *testing.T) {
	set, err := catalog.LoadDefault()
	require.NoError(t, err)
	prog, _, err := parser.ParseSource(".text\nmain:\nbeq $t0, $zero, lop\nlop1:\nnop\n", "test.asm")
	require.NoError(t, err)
	_, err = Assemble(set, prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UnresolvedLabel")
	assert.Contains(t, err.Error(), "similar=[lop1]")
}

func TestAssembleBranchOffsetRoundTrips(t *testing.T) {
	bin := mustAssemble(t, ".text\nmain:\nloop:\naddi $t0, $t0, -1\nbne $t0, $zero, loop\njr $ra\n")
	set, err := catalog.LoadDefault()
	require.NoError(t, err)

	loopAddr, ok := bin.Labels.Lookup("loop")
	require.True(t, ok)
	branchAddr := loopAddr + 4
	w := wordAt(t, bin, branchAddr)
	text, err := Decompile(bin, set, branchAddr, w)
	require.NoError(t, err)
	// main and loop share an address; the first-declared label is rendered.
	assert.Equal(t, "bne $t0, $zero, main", text)
}

func TestAssembleAddiOutOfRangeImmediateFails(t *testing.T) {
	set, err := catalog.LoadDefault()
	require.NoError(t, err)
	prog, _, err := parser.ParseSource(".text\nmain:\naddi $t0, $t0, 70000\n", "test.asm")
	require.NoError(t, err)
	_, err = Assemble(set, prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ImmediateOutOfRange")
}

func TestAssembleShamtOutOfRangeFails(t *testing.T) {
	set, err := catalog.LoadDefault()
	require.NoError(t, err)
	prog, _, err := parser.ParseSource(".text\nmain:\nsll $t0, $t1, 40\n", "test.asm")
	require.NoError(t, err)
	_, err = Assemble(set, prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ImmediateOutOfRange")
}

func TestAssembleUnknownInstructionSuggestsSimilarMnemonic(t *testing.T) {
	set, err := catalog.LoadDefault()
	require.NoError(t, err)
	prog, _, err := parser.ParseSource(".text\nadde $t0, $t1, $t2\n", "test.asm")
	require.NoError(t, err)
	_, err = Assemble(set, prog)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "InstructionSimName")
}
