package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eduvm/mips32/binaryfmt"
)

func TestBreakpointIgnoreCountDecrementsBeforePausing(t *testing.T) {
	bin := binaryfmt.NewBinary()
	bm := NewBreakpointManager(bin)
	bp := bm.Add(0x00400010, 2)

	_, pause := bm.CheckAndConsume(0x00400010)
	assert.False(t, pause)
	assert.Equal(t, 1, bp.IgnoreCount)

	_, pause = bm.CheckAndConsume(0x00400010)
	assert.False(t, pause)
	assert.Equal(t, 0, bp.IgnoreCount)

	hit, pause := bm.CheckAndConsume(0x00400010)
	assert.True(t, pause)
	require.NotNil(t, hit)
	assert.Equal(t, bp.ID, hit.ID)
}

func TestBreakpointDisabledNeverPauses(t *testing.T) {
	bin := binaryfmt.NewBinary()
	bm := NewBreakpointManager(bin)
	bp := bm.Add(0x00400020, 0)
	require.NoError(t, bm.Disable(bp.ID))

	_, pause := bm.CheckAndConsume(0x00400020)
	assert.False(t, pause)
}

func TestBreakpointAtUnsetAddressNeverPauses(t *testing.T) {
	bin := binaryfmt.NewBinary()
	bm := NewBreakpointManager(bin)
	bm.Add(0x00400030, 0)

	_, pause := bm.CheckAndConsume(0x00400034)
	assert.False(t, pause)
}

func TestBreakpointRemove(t *testing.T) {
	bin := binaryfmt.NewBinary()
	bm := NewBreakpointManager(bin)
	bp := bm.Add(0x00400040, 0)
	require.NoError(t, bm.Remove(bp.ID))

	_, pause := bm.CheckAndConsume(0x00400040)
	assert.False(t, pause)
}
