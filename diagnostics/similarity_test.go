package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	assert.Equal(t, 0, LevenshteinDistance("add", "add"))
	assert.Equal(t, 1, LevenshteinDistance("adds", "add"))
	assert.Equal(t, 1, LevenshteinDistance("sddi", "addi"))
}

func TestSuggestInstructions(t *testing.T) {
	known := []string{"add", "addu", "addi", "sub", "and"}
	suggestions := SuggestInstructions("adds", known)
	assert.Contains(t, suggestions, "add")
}

func TestSuggestLabels(t *testing.T) {
	known := []string{"loop_1", "main", "exit"}
	suggestions := SuggestLabels("loop1", known)
	assert.Contains(t, suggestions, "loop_1")
}

func TestJaroWinklerIdentical(t *testing.T) {
	assert.Equal(t, 1.0, JaroWinkler("main", "main"))
}
