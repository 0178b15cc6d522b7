// Package debugger implements breakpoint and watchpoint matching against a
// running Timeline: which addresses pause execution, and which register or
// memory accesses a about-to-execute instruction would trigger.
package debugger

import (
	"fmt"
	"sync"

	"github.com/eduvm/mips32/binaryfmt"
)

// BreakpointManager wraps a Binary's breakpoint table with the add/
// enable/disable/ignore-count operations the interactive shell needs,
// serializing access with a mutex.
type BreakpointManager struct {
	mu     sync.Mutex
	binary *binaryfmt.Binary
}

// NewBreakpointManager wraps binary's Breakpoints table.
func NewBreakpointManager(binary *binaryfmt.Binary) *BreakpointManager {
	return &BreakpointManager{binary: binary}
}

// Add registers a new breakpoint at addr with the given ignore count.
func (bm *BreakpointManager) Add(addr uint32, ignoreCount int) *binaryfmt.Breakpoint {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.binary.AddBreakpoint(addr, ignoreCount)
}

// Remove deletes the breakpoint with the given id.
func (bm *BreakpointManager) Remove(id int) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.binary.RemoveBreakpoint(id)
}

func (bm *BreakpointManager) find(id int) *binaryfmt.Breakpoint {
	for _, bp := range bm.binary.Breakpoints {
		if bp.ID == id {
			return bp
		}
	}
	return nil
}

// Enable turns a breakpoint on.
func (bm *BreakpointManager) Enable(id int) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	bp := bm.find(id)
	if bp == nil {
		return fmt.Errorf("breakpoint %d not found", id)
	}
	bp.Enabled = true
	return nil
}

// Disable turns a breakpoint off without removing it.
func (bm *BreakpointManager) Disable(id int) error {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	bp := bm.find(id)
	if bp == nil {
		return fmt.Errorf("breakpoint %d not found", id)
	}
	bp.Enabled = false
	return nil
}

// CheckAndConsume implements the forward-step breakpoint rule: if addr has
// an enabled breakpoint whose ignore count is positive, decrement it and
// report "don't pause"; otherwise, if enabled, report "pause" and the
// breakpoint; if no breakpoint or disabled, report "don't pause".
func (bm *BreakpointManager) CheckAndConsume(addr uint32) (*binaryfmt.Breakpoint, bool) {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	bp := bm.binary.BreakpointAt(addr)
	if bp == nil || !bp.Enabled {
		return nil, false
	}
	if bp.IgnoreCount > 0 {
		bp.IgnoreCount--
		return nil, false
	}
	return bp, true
}
