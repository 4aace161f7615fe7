// Package undo implements spec.md S4.12's whole-sketch undo stack: a
// bounded-depth stack of sketch.Snapshot values, pushed before a mutating
// edit and popped to restore a prior state, with the popped (undone)
// snapshot kept on a parallel redo stack so a subsequent redo can restore it
// again. It is grounded on pkg/dungeon/dungeon.go's Artifact value-copy
// discipline (a generation's result is a self-contained copy, never aliased
// back into the generator's working state) generalized from a single
// generation result to a bounded history of them; the discard-oldest
// eviction policy mirrors the fixed-size ring buffer shape spec.md S4.12
// calls for ("the stack is bounded; pushing past the limit discards the
// oldest entry").
package undo

import "github.com/solvecore/solvecore/pkg/sketch"

// DefaultDepth is the undo stack's default bound, chosen generously enough
// that ordinary interactive editing never notices the limit while still
// keeping a session's worst-case memory bounded.
const DefaultDepth = 50

// Stack is a bounded-depth undo/redo history over a single *sketch.Sketch.
// It is not safe for concurrent use from multiple goroutines, matching
// spec.md S5's single-editor-thread assumption.
type Stack struct {
	s *sketch.Sketch

	depth int
	undo  []*sketch.Snapshot
	redo  []*sketch.Snapshot
}

// NewStack returns a Stack bounded to depth entries (DefaultDepth if depth
// is <= 0), operating on s.
func NewStack(s *sketch.Sketch, depth int) *Stack {
	if depth <= 0 {
		depth = DefaultDepth
	}
	return &Stack{s: s, depth: depth}
}

// Checkpoint pushes the sketch's current state onto the undo stack and
// clears the redo stack, as any new edit invalidates the prior redo
// history. Call this immediately before applying a mutating edit.
func (st *Stack) Checkpoint() {
	st.undo = append(st.undo, st.s.Snapshot())
	if len(st.undo) > st.depth {
		st.undo = st.undo[len(st.undo)-st.depth:]
	}
	st.redo = nil
}

// CanUndo reports whether Undo has a checkpoint to restore.
func (st *Stack) CanUndo() bool { return len(st.undo) > 0 }

// CanRedo reports whether Redo has an undone checkpoint to restore.
func (st *Stack) CanRedo() bool { return len(st.redo) > 0 }

// Undo restores the most recently checkpointed state, pushing the sketch's
// current (about-to-be-discarded) state onto the redo stack first. Reports
// false if there is nothing to undo.
func (st *Stack) Undo() bool {
	if !st.CanUndo() {
		return false
	}
	n := len(st.undo) - 1
	prior := st.undo[n]
	st.undo = st.undo[:n]

	st.redo = append(st.redo, st.s.Snapshot())
	st.s.Restore(prior)
	return true
}

// Redo re-applies the most recently undone state. Reports false if there is
// nothing to redo.
func (st *Stack) Redo() bool {
	if !st.CanRedo() {
		return false
	}
	n := len(st.redo) - 1
	next := st.redo[n]
	st.redo = st.redo[:n]

	st.undo = append(st.undo, st.s.Snapshot())
	st.s.Restore(next)
	return true
}

// Depth reports how many checkpoints are currently on the undo stack.
func (st *Stack) Depth() int { return len(st.undo) }
