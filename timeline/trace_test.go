package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceAppendAndRetrieve(t *testing.T) {
	tr := NewTrace(2)
	tr.Append(0x400000, "add $t2, $t0, $t1")
	tr.Append(0x400004, "syscall")

	entries := tr.Entries()
	assert.Equal(t, []TraceEntry{
		{Addr: 0x400000, Text: "add $t2, $t0, $t1"},
		{Addr: 0x400004, Text: "syscall"},
	}, entries)
}

func TestTraceDropsOldestPastMaxSize(t *testing.T) {
	tr := NewTrace(2)
	tr.Append(1, "a")
	tr.Append(2, "b")
	tr.Append(3, "c")

	entries := tr.Entries()
	assert.Equal(t, []TraceEntry{{Addr: 2, Text: "b"}, {Addr: 3, Text: "c"}}, entries)
}
