package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduvm/mips32/asm"
	"github.com/eduvm/mips32/binaryfmt"
	"github.com/eduvm/mips32/catalog"
	"github.com/eduvm/mips32/parser"
	"github.com/eduvm/mips32/vm"
)

func assembleForWatch(t *testing.T, src string) (*binaryfmt.Binary, *catalog.InstSet) {
	t.Helper()
	set, err := catalog.LoadDefault()
	require.NoError(t, err)
	prog, _, err := parser.ParseSource(src, "watch.asm")
	require.NoError(t, err)
	bin, err := asm.Assemble(set, prog)
	require.NoError(t, err)
	return bin, set
}

func wordAtAddr(t *testing.T, bin *binaryfmt.Binary, addr uint32) uint32 {
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

func TestWatchRegisterWriteFiresOnArithmeticDestination(t *testing.T) {
	bin, set := assembleForWatch(t, ".text\nmain:\nadd $t2, $t0, $t1\n")
	mainAddr, ok := bin.Labels.Lookup("main")
	require.True(t, ok)
	word := wordAtAddr(t, bin, mainAddr)

	wm := NewWatchpointManager()
	wm.WatchRegister(vm.T2, WatchWrite)

	cur := vm.NewState()
	hits, err := wm.MatchStep(cur, set, mainAddr, word)
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestWatchRegisterReadOnlyDoesNotFireOnWrite(t *testing.T) {
	bin, set := assembleForWatch(t, ".text\nmain:\nadd $t2, $t0, $t1\n")
	mainAddr, _ := bin.Labels.Lookup("main")
	word := wordAtAddr(t, bin, mainAddr)

	wm := NewWatchpointManager()
	wm.WatchRegister(vm.T2, WatchRead)

	cur := vm.NewState()
	hits, err := wm.MatchStep(cur, set, mainAddr, word)
	require.NoError(t, err)
	assert.Len(t, hits, 0)
}

func TestWatchRegisterReadFiresOnSourceOperand(t *testing.T) {
	bin, set := assembleForWatch(t, ".text\nmain:\nadd $t2, $t0, $t1\n")
	mainAddr, _ := bin.Labels.Lookup("main")
	word := wordAtAddr(t, bin, mainAddr)

	wm := NewWatchpointManager()
	wm.WatchRegister(vm.T0, WatchRead)

	cur := vm.NewState()
	hits, err := wm.MatchStep(cur, set, mainAddr, word)
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestWatchMemoryStoreFiresWriteNotRead(t *testing.T) {
	bin, set := assembleForWatch(t, ".text\nmain:\nsw $t0, 0($sp)\n")
	mainAddr, _ := bin.Labels.Lookup("main")
	word := wordAtAddr(t, bin, mainAddr)

	cur := vm.NewState()
	target, ok := cur.GetRegister(vm.SP).Get()
	require.True(t, ok)

	wm := NewWatchpointManager()
	wm.WatchMemory(uint32(target), WatchWrite)

	hits, err := wm.MatchStep(cur, set, mainAddr, word)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	wmRead := NewWatchpointManager()
	wmRead.WatchMemory(uint32(target), WatchRead)
	hits, err = wmRead.MatchStep(cur, set, mainAddr, word)
	require.NoError(t, err)
	assert.Len(t, hits, 0)
}

func TestWatchMemoryReadWriteFiresOnLoad(t *testing.T) {
	bin, set := assembleForWatch(t, ".text\nmain:\nlw $t0, 0($sp)\n")
	mainAddr, _ := bin.Labels.Lookup("main")
	word := wordAtAddr(t, bin, mainAddr)

	cur := vm.NewState()
	target, ok := cur.GetRegister(vm.SP).Get()
	require.True(t, ok)

	wm := NewWatchpointManager()
	wm.WatchMemory(uint32(target), WatchReadWrite)

	hits, err := wm.MatchStep(cur, set, mainAddr, word)
	require.NoError(t, err)
	require.Len(t, hits, 1)
}

func TestWatchpointRemove(t *testing.T) {
	wm := NewWatchpointManager()
	w := wm.WatchRegister(vm.T0, WatchReadWrite)
	assert.Len(t, wm.All(), 1)
	wm.Remove(w.ID)
	assert.Len(t, wm.All(), 0)
}
