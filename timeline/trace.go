package timeline

import "sync"

// TraceEntry records one executed forward step for the -trace CLI flag:
// the address it ran from and the decompiled text of the instruction.
type TraceEntry struct {
	Addr uint32
	Text string
}

// Trace is a bounded ring-buffer log of executed steps, adapted from a
// command-history pattern (same add/trim shape) into an execution
// log: entries accumulate as Append is called and the oldest are dropped
// once maxSize is exceeded.
type Trace struct {
	mu      sync.Mutex
	entries []TraceEntry
	maxSize int
}

// NewTrace creates an empty trace retaining at most maxSize entries.
func NewTrace(maxSize int) *Trace {
	return &Trace{maxSize: maxSize}
}

// Append records one executed step.
func (t *Trace) Append(addr uint32, text string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries = append(t.entries, TraceEntry{Addr: addr, Text: text})
	if len(t.entries) > t.maxSize {
		t.entries = t.entries[len(t.entries)-t.maxSize:]
	}
}

// Entries returns a snapshot of the recorded steps, oldest first.
func (t *Trace) Entries() []TraceEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]TraceEntry, len(t.entries))
	copy(out, t.entries)
	return out
}
