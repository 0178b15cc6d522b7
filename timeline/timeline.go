// Package timeline holds the append-only, bounded-window history of States
// that makes backward stepping possible: every successful forward step
// pushes a new immutable State, and reverse-step pops back to the one
// before it.
package timeline

import (
	"fmt"

	"github.com/eduvm/mips32/vm"
)

// DefaultCapacity is the number of States retained before the oldest are
// dropped and lost_history latches.
const DefaultCapacity = 1_000_000

// Timeline is the ordered sequence of States; the Timeline's index order IS
// the total order over emitted States (see runtime's single-threaded
// stepping guarantee).
type Timeline struct {
	states      []*vm.State
	capacity    int
	lostHistory bool
}

// New starts a timeline at initial with the default capacity.
func New(initial *vm.State) *Timeline {
	return NewWithCapacity(initial, DefaultCapacity)
}

// NewWithCapacity starts a timeline at initial with an explicit window size.
func NewWithCapacity(initial *vm.State, capacity int) *Timeline {
	t := &Timeline{capacity: capacity}
	t.states = append(t.states, initial)
	return t
}

// Push appends a newly stepped State, dropping the oldest retained State
// (and latching LostHistory) once the window is exceeded.
func (t *Timeline) Push(s *vm.State) {
	t.states = append(t.states, s)
	if len(t.states) > t.capacity {
		t.states = t.states[1:]
		t.lostHistory = true
	}
}

// Current returns the most recently pushed State.
func (t *Timeline) Current() *vm.State {
	return t.states[len(t.states)-1]
}

// Len returns the number of States currently retained in the window.
func (t *Timeline) Len() int {
	return len(t.states)
}

// LostHistory reports whether any State has ever been dropped from the
// window, making further reverse-stepping past the oldest retained State
// impossible.
func (t *Timeline) LostHistory() bool {
	return t.lostHistory
}

// Reset clears the timeline back to a single initial State and clears
// LostHistory, matching the "reset clears lost_history" behavior.
func (t *Timeline) Reset(initial *vm.State) {
	t.states = []*vm.State{initial}
	t.lostHistory = false
}

// PopReverse discards the current State and restores the one before it.
// Returns RanOutOfHistory if there is nothing before the current State —
// either because it's the very first State ever pushed, or because the
// State before it fell outside the retained window.
func (t *Timeline) PopReverse() (*vm.State, error) {
	if len(t.states) < 2 {
		return nil, fmt.Errorf("RanOutOfHistory: no prior state retained")
	}
	t.states = t.states[:len(t.states)-1]
	return t.Current(), nil
}
