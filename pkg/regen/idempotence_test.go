package regen

import (
	"context"
	"testing"

	"github.com/solvecore/solvecore/pkg/mesh"
	"github.com/solvecore/solvecore/pkg/sketch"
)

// TestRegenerationIsIdempotent exercises Testable Property 5: regenerating a
// Group twice with no mutations between passes produces a byte-identical
// mesh, since handle derivation is fixed arithmetic from each Request's
// handle rather than anything order- or time-dependent. Only the Extrude
// group is re-dirtied between passes; its source profile is untouched,
// matching the common case of a downstream Group being recomputed after its
// own upstream inputs already settled.
func TestRegenerationIsIdempotent(t *testing.T) {
	s := sketch.New()
	srcGroup := makeSquareSource(t, s, 0, 0)
	eg := s.NewGroup(sketch.GroupExtrude, srcGroup)
	eg.SourceGroup = srcGroup
	setExtrudeVectorZ(s, eg, 10)

	if _, err := All(context.Background(), s); err != nil {
		t.Fatalf("first All: %v", err)
	}
	first, ok := eg.RunningMesh.(*mesh.Mesh)
	if !ok {
		t.Fatalf("RunningMesh is not *mesh.Mesh: %T", eg.RunningMesh)
	}
	firstTris := append([]mesh.Triangle(nil), first.Triangles...)

	eg.Dirty = true
	if _, err := All(context.Background(), s); err != nil {
		t.Fatalf("second All: %v", err)
	}
	second, ok := eg.RunningMesh.(*mesh.Mesh)
	if !ok {
		t.Fatalf("RunningMesh is not *mesh.Mesh on second pass: %T", eg.RunningMesh)
	}

	if len(firstTris) != len(second.Triangles) {
		t.Fatalf("triangle count changed: %d vs %d", len(firstTris), len(second.Triangles))
	}
	for i := range firstTris {
		if firstTris[i] != second.Triangles[i] {
			t.Fatalf("triangle %d differs between passes: %+v vs %+v", i, firstTris[i], second.Triangles[i])
		}
	}
}
