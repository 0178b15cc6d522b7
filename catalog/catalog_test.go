package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefault(t *testing.T) {
	set, err := LoadDefault()
	require.NoError(t, err)

	assert.True(t, set.HasName("add"))
	assert.True(t, set.HasName("beq"))
	assert.True(t, set.HasName("li"))
	assert.False(t, set.HasName("frobnicate"))

	cands := set.NativeCandidates("add")
	require.Len(t, cands, 1)
	assert.Equal(t, KindR, cands[0].Runtime.Kind)
	require.NotNil(t, cands[0].Runtime.Funct)
	assert.Equal(t, uint32(0x20), *cands[0].Runtime.Funct)
}

func TestPseudoLiExpansion(t *testing.T) {
	set, err := LoadDefault()
	require.NoError(t, err)

	cands := set.PseudoCandidates("li")
	// li is catalogued narrowest first (I16, U16, I32); the I32 form is
	// the lui+ori expansion.
	require.Len(t, cands, 3)
	assert.Len(t, cands[2].Expand, 2)
	assert.Equal(t, "lui", cands[2].Expand[0].Inst)
	assert.Equal(t, "ori", cands[2].Expand[1].Inst)
}

func TestNativeByOpcode(t *testing.T) {
	set, err := LoadDefault()
	require.NoError(t, err)

	sig, err := set.NativeByOpcode(KindR, 0, 0x20, 0, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, "add", sig.Name)

	_, err = set.NativeByOpcode(KindR, 0, 0xFF, 0, 0, 0, 0)
	assert.Error(t, err)
}

func TestArgumentTypePseudoOnly(t *testing.T) {
	assert.True(t, Rx.IsPseudoOnly())
	assert.True(t, I32.IsPseudoOnly())
	assert.False(t, Rd.IsPseudoOnly())
}
