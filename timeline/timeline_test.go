package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduvm/mips32/binaryfmt"
	"github.com/eduvm/mips32/vm"
)

func TestForwardThenReverseRestoresState(t *testing.T) {
	initial := vm.NewState()
	tl := New(initial)

	next := initial.Clone()
	next.SetRegister(vm.T0, binaryfmt.ValidOf(int32(42)))
	tl.Push(next)

	assert.Equal(t, int32(42), tl.Current().Regs[vm.T0].MustGet())

	restored, err := tl.PopReverse()
	require.NoError(t, err)
	assert.True(t, restored.Equal(initial))
}

func TestPopReverseAtStartFails(t *testing.T) {
	tl := New(vm.NewState())
	_, err := tl.PopReverse()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RanOutOfHistory")
}

func TestCapacityEvictsOldestAndLatchesLostHistory(t *testing.T) {
	tl := NewWithCapacity(vm.NewState(), 2)
	assert.False(t, tl.LostHistory())

	tl.Push(vm.NewState())
	assert.False(t, tl.LostHistory())
	tl.Push(vm.NewState())
	assert.True(t, tl.LostHistory())
	assert.Equal(t, 2, tl.Len())
}

func TestResetClearsLostHistory(t *testing.T) {
	tl := NewWithCapacity(vm.NewState(), 1)
	tl.Push(vm.NewState())
	require.True(t, tl.LostHistory())

	tl.Reset(vm.NewState())
	assert.False(t, tl.LostHistory())
	assert.Equal(t, 1, tl.Len())
}
