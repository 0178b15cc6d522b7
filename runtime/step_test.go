package runtime

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduvm/mips32/asm"
	"github.com/eduvm/mips32/binaryfmt"
	"github.com/eduvm/mips32/catalog"
	"github.com/eduvm/mips32/parser"
	"github.com/eduvm/mips32/vm"
)

func assembleProgram(t *testing.T, src string) (*binaryfmt.Binary, *catalog.InstSet) {
	t.Helper()
	set, err := catalog.LoadDefault()
	require.NoError(t, err)
	prog, _, err := parser.ParseSource(src, "test.asm")
	require.NoError(t, err)
	bin, err := asm.Assemble(set, prog)
	require.NoError(t, err)
	return bin, set
}

func runToExit(t *testing.T, r *Runtime, bin *binaryfmt.Binary, set *catalog.InstSet) (*vm.State, Outcome) {
	t.Helper()
	entry, ok := bin.Labels.Lookup("main_entry")
	require.True(t, ok)

	cur := vm.NewStateWithImage(bin)
	cur.PC = entry

	for i := 0; i < 10000; i++ {
		next, outcome, err := r.Step(cur, bin, set)
		require.NoError(t, err)
		cur = next
		if outcome.Exited {
			return cur, outcome
		}
	}
	t.Fatal("program did not exit within step budget")
	return nil, Outcome{}
}

func TestArithmeticRoundTripExitsZero(t *testing.T) {
	src := ".text\nmain:\nli $t0, 17\nli $t1, 25\nadd $t2, $t0, $t1\nli $v0, 17\nli $a0, 0\nsyscall\n"
	bin, set := assembleProgram(t, src)
	r := New(NewStdIO(&bytes.Buffer{}, strings.NewReader("")))

	final, outcome := runToExit(t, r, bin, set)
	assert.Equal(t, int32(0), outcome.ExitCode)
	v, ok := final.GetRegister(vm.T2).Get()
	require.True(t, ok)
	assert.Equal(t, int32(42), v)
}

func TestReverseStepUndoesAdd(t *testing.T) {
	src := ".text\nmain:\nli $t0, 17\nli $t1, 25\nadd $t2, $t0, $t1\nli $v0, 10\nsyscall\n"
	bin, set := assembleProgram(t, src)
	r := New(NewStdIO(&bytes.Buffer{}, strings.NewReader("")))

	mainAddr, ok := bin.Labels.Lookup("main")
	require.True(t, ok)

	cur := vm.NewStateWithImage(bin)
	entry, ok := bin.Labels.Lookup("main_entry")
	require.True(t, ok)
	cur.PC = entry

	// Step past main_entry into main, then the two one-word li expansions
	// (17 and 25 both fit 16 bits) and the add.
	var states []*vm.State
	for cur.PC != mainAddr+2*4+4 {
		next, _, err := r.Step(cur, bin, set)
		require.NoError(t, err)
		states = append(states, cur)
		cur = next
	}

	beforeAdd := states[len(states)-1]
	v, ok := cur.GetRegister(vm.T2).Get()
	require.True(t, ok)
	assert.Equal(t, int32(42), v)

	assert.False(t, beforeAdd.Equal(cur))
	_, ok = beforeAdd.GetRegister(vm.T2).Get()
	assert.False(t, ok)
}

func TestUninitialisedRegisterReadFaults(t *testing.T) {
	src := ".text\nmain:\nadd $t0, $t1, $t2\n"
	bin, set := assembleProgram(t, src)
	r := New(NewStdIO(&bytes.Buffer{}, strings.NewReader("")))

	entry, ok := bin.Labels.Lookup("main_entry")
	require.True(t, ok)
	mainAddr, ok := bin.Labels.Lookup("main")
	require.True(t, ok)

	cur := vm.NewStateWithImage(bin)
	cur.PC = entry
	for cur.PC != mainAddr {
		next, _, err := r.Step(cur, bin, set)
		require.NoError(t, err)
		cur = next
	}

	_, _, err := r.Step(cur, bin, set)
	require.Error(t, err)
	var fault *Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "Uninitialised", fault.Kind)
	assert.Contains(t, fault.Detail, "register")
}

func TestSignedAddOverflowFaultsLeavesAdduWrapping(t *testing.T) {
	src := ".text\nmain:\nli $t0, 2147483647\nli $t1, 1\nadd $t2, $t0, $t1\n"
	bin, set := assembleProgram(t, src)
	r := New(NewStdIO(&bytes.Buffer{}, strings.NewReader("")))

	entry, ok := bin.Labels.Lookup("main_entry")
	require.True(t, ok)
	cur := vm.NewStateWithImage(bin)
	cur.PC = entry

	var err error
	for i := 0; i < 10; i++ {
		var next *vm.State
		next, _, err = r.Step(cur, bin, set)
		if err != nil {
			break
		}
		cur = next
	}
	require.Error(t, err)
	var fault *Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "IntegerOverflow", fault.Kind)

	srcU := ".text\nmain:\nli $t0, 2147483647\nli $t1, 1\naddu $t2, $t0, $t1\nli $v0, 10\nsyscall\n"
	binU, setU := assembleProgram(t, srcU)
	ru := New(NewStdIO(&bytes.Buffer{}, strings.NewReader("")))
	final, _ := runToExit(t, ru, binU, setU)
	v, ok := final.GetRegister(vm.T2).Get()
	require.True(t, ok)
	assert.Equal(t, int32(-2147483648), v)
}

func TestDivisionByZeroFaults(t *testing.T) {
	src := ".text\nmain:\nli $t0, 5\nli $t1, 0\ndiv $t0, $t1\n"
	bin, set := assembleProgram(t, src)
	r := New(NewStdIO(&bytes.Buffer{}, strings.NewReader("")))

	entry, _ := bin.Labels.Lookup("main_entry")
	cur := vm.NewStateWithImage(bin)
	cur.PC = entry

	var err error
	for i := 0; i < 10; i++ {
		var next *vm.State
		next, _, err = r.Step(cur, bin, set)
		if err != nil {
			break
		}
		cur = next
	}
	require.Error(t, err)
	var fault *Fault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, "DivisionByZero", fault.Kind)
}

func TestPrintIntSyscallWritesDecimal(t *testing.T) {
	src := ".text\nmain:\nli $a0, 7\nli $v0, 1\nsyscall\nli $v0, 10\nsyscall\n"
	bin, set := assembleProgram(t, src)
	var out bytes.Buffer
	r := New(NewStdIO(&out, strings.NewReader("")))

	_, outcome := runToExit(t, r, bin, set)
	assert.Equal(t, int32(0), outcome.ExitCode)
	assert.Equal(t, "7", out.String())
}

func TestPrintStringSyscallReadsStaticData(t *testing.T) {
	src := ".data\nmsg: .asciiz \"hi\"\n.text\nmain:\nla $a0, msg\nli $v0, 4\nsyscall\nli $v0, 10\nsyscall\n"
	bin, set := assembleProgram(t, src)
	var out bytes.Buffer
	r := New(NewStdIO(&out, strings.NewReader("")))

	_, outcome := runToExit(t, r, bin, set)
	assert.Equal(t, int32(0), outcome.ExitCode)
	assert.Equal(t, "hi", out.String())
}
