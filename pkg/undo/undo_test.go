package undo

import (
	"testing"

	"github.com/solvecore/solvecore/pkg/handle"
	"github.com/solvecore/solvecore/pkg/sketch"
)

// TestUndoThenRedoRestoresByteIdenticalParamValues exercises Testable
// Property 10 (spec.md S8): undo-then-redo restores Param values exactly.
func TestUndoThenRedoRestoresByteIdenticalParamValues(t *testing.T) {
	s := sketch.New()
	g := s.NewGroup(sketch.GroupDrawingWorkplane, handle.Group(handle.GroupReferences))
	h := handle.Param(handle.DeriveGroupParam(uint32(g.H), 0))
	s.AddParam(h, g.H, 1.5)

	stack := NewStack(s, 0)

	stack.Checkpoint()
	s.Params.MustFind(h).Val = 42.0

	before := s.Params.MustFind(h).Val
	if before != 42.0 {
		t.Fatalf("Val = %v before undo, want 42", before)
	}

	if !stack.Undo() {
		t.Fatalf("Undo reported nothing to undo")
	}
	if got := s.Params.MustFind(h).Val; got != 1.5 {
		t.Fatalf("Val = %v after undo, want 1.5", got)
	}

	if !stack.Redo() {
		t.Fatalf("Redo reported nothing to redo")
	}
	if got := s.Params.MustFind(h).Val; got != 42.0 {
		t.Fatalf("Val = %v after redo, want 42 (byte-identical restore)", got)
	}
}

func TestUndoWithNothingCheckpointedReportsFalse(t *testing.T) {
	s := sketch.New()
	stack := NewStack(s, 0)
	if stack.Undo() {
		t.Fatalf("Undo on an empty stack reported success")
	}
	if stack.Redo() {
		t.Fatalf("Redo on an empty stack reported success")
	}
}

// TestUndoStackEvictsOldestBeyondDepth confirms the bounded stack discards
// the oldest checkpoint once pushed past its depth (spec.md S4.12).
func TestUndoStackEvictsOldestBeyondDepth(t *testing.T) {
	s := sketch.New()
	g := s.NewGroup(sketch.GroupDrawingWorkplane, handle.Group(handle.GroupReferences))
	h := handle.Param(handle.DeriveGroupParam(uint32(g.H), 0))
	s.AddParam(h, g.H, 0)

	stack := NewStack(s, 2)
	for i := 1; i <= 5; i++ {
		stack.Checkpoint()
		s.Params.MustFind(h).Val = float64(i)
	}
	if got := stack.Depth(); got != 2 {
		t.Fatalf("Depth = %d, want 2 (bounded)", got)
	}
	// Only the two newest checkpoints (values 4 and 3) remain.
	for _, want := range []float64{4, 3} {
		if !stack.Undo() {
			t.Fatalf("Undo failed, want restore to %v", want)
		}
		if got := s.Params.MustFind(h).Val; got != want {
			t.Fatalf("Val after Undo = %v, want %v", got, want)
		}
	}
	if stack.Undo() {
		t.Fatalf("third Undo succeeded, want the oldest checkpoints evicted")
	}
}

// TestUndoRestoresGroupCountAndRemapTable confirms Group-level state
// (including its Remap table) restores as an independent deep copy, not an
// alias back into the checkpoint.
func TestUndoRestoresGroupCountAndRemapTable(t *testing.T) {
	s := sketch.New()
	g := s.NewGroup(sketch.GroupDrawingWorkplane, handle.Group(handle.GroupReferences))
	orig := handle.Entity(handle.DeriveEntity(1, 0))
	g.RemapEntity(orig, 0)

	stack := NewStack(s, 0)
	stack.Checkpoint()

	g.RemapEntity(orig, 1)
	if len(g.Remap) != 2 {
		t.Fatalf("Remap len = %d before undo, want 2", len(g.Remap))
	}

	stack.Undo()
	restored := s.Groups.MustFind(g.H)
	if len(restored.Remap) != 1 {
		t.Fatalf("Remap len = %d after undo, want 1", len(restored.Remap))
	}
}
