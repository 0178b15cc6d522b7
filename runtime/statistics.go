package runtime

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Statistics accumulates per-mnemonic execution counts across a run. It is
// read-only from the simulation's point of view — recording a step never
// changes what that step does — and exists purely for the CLI's -stats
// output.
type Statistics struct {
	TotalInstructions uint64
	InstructionCounts map[string]uint64
}

// NewStatistics returns an empty counter set.
func NewStatistics() *Statistics {
	return &Statistics{InstructionCounts: make(map[string]uint64)}
}

// Record tallies one executed instruction by mnemonic.
func (s *Statistics) Record(mnemonic string) {
	s.TotalInstructions++
	s.InstructionCounts[mnemonic]++
}

type mnemonicCount struct {
	Mnemonic string `json:"mnemonic"`
	Count    uint64 `json:"count"`
}

// hotPath returns mnemonics sorted by descending count, ties broken by name.
func (s *Statistics) hotPath() []mnemonicCount {
	out := make([]mnemonicCount, 0, len(s.InstructionCounts))
	for m, c := range s.InstructionCounts {
		out = append(out, mnemonicCount{Mnemonic: m, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Mnemonic < out[j].Mnemonic
	})
	return out
}

// ExportJSON writes the counters as a JSON object to w.
func (s *Statistics) ExportJSON(w io.Writer) error {
	payload := struct {
		TotalInstructions uint64          `json:"total_instructions"`
		HotPath           []mnemonicCount `json:"hot_path"`
	}{
		TotalInstructions: s.TotalInstructions,
		HotPath:           s.hotPath(),
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}

// String renders a short human-readable summary.
func (s *Statistics) String() string {
	out := fmt.Sprintf("instructions executed: %d\n", s.TotalInstructions)
	for _, mc := range s.hotPath() {
		out += fmt.Sprintf("  %-10s %d\n", mc.Mnemonic, mc.Count)
	}
	return out
}
