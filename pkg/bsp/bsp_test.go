package bsp

import (
	"testing"

	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/mesh"
)

// box returns a closed axis-aligned box mesh spanning [min, max], all 12
// triangles outward-facing.
func box(min, max geom.Vec) *mesh.Mesh {
	m := &mesh.Mesh{}
	v := func(x, y, z float64) geom.Vec { return geom.Vec{X: x, Y: y, Z: z} }
	corners := [8]geom.Vec{
		v(min.X, min.Y, min.Z), v(max.X, min.Y, min.Z), v(max.X, max.Y, min.Z), v(min.X, max.Y, min.Z),
		v(min.X, min.Y, max.Z), v(max.X, min.Y, max.Z), v(max.X, max.Y, max.Z), v(min.X, max.Y, max.Z),
	}
	quad := func(a, b, c, d int) {
		m.Add(corners[a], corners[b], corners[c], 0)
		m.Add(corners[a], corners[c], corners[d], 0)
	}
	quad(0, 3, 2, 1) // bottom, normal -Z
	quad(4, 5, 6, 7) // top, normal +Z
	quad(0, 1, 5, 4) // front, normal -Y
	quad(2, 3, 7, 6) // back, normal +Y
	quad(1, 2, 6, 5) // right, normal +X
	quad(3, 0, 4, 7) // left, normal -X
	return m
}

func unitBox() *mesh.Mesh {
	return box(geom.Vec{}, geom.Vec{X: 1, Y: 1, Z: 1})
}

func TestBuildProducesNonNilTreeForNonEmptyMesh(t *testing.T) {
	n := Build(unitBox().Triangles)
	if n == nil {
		t.Fatalf("Build returned nil for a non-empty mesh")
	}
}

func TestBuildReturnsNilForEmptyMesh(t *testing.T) {
	if n := Build(nil); n != nil {
		t.Fatalf("Build(nil) = %v, want nil", n)
	}
}

func TestClassifyInteriorPointIsInside(t *testing.T) {
	n := Build(unitBox().Triangles)
	if !Classify(n, geom.Vec{X: 0.5, Y: 0.5, Z: 0.5}) {
		t.Fatalf("center of unit box classified outside")
	}
}

func TestClassifyExteriorPointIsOutside(t *testing.T) {
	n := Build(unitBox().Triangles)
	if Classify(n, geom.Vec{X: 5, Y: 5, Z: 5}) {
		t.Fatalf("far point classified inside")
	}
}

func TestUnionOfDisjointBoxesKeepsAllTriangles(t *testing.T) {
	a := unitBox()
	b := box(geom.Vec{X: 10, Y: 10, Z: 10}, geom.Vec{X: 11, Y: 11, Z: 11})
	out := Union(a, b)
	if got, want := out.TriangleCount(), a.TriangleCount()+b.TriangleCount(); got != want {
		t.Fatalf("got %d triangles, want %d", got, want)
	}
}

func TestInterferenceOfDisjointBoxesIsEmpty(t *testing.T) {
	a := unitBox()
	b := box(geom.Vec{X: 10, Y: 10, Z: 10}, geom.Vec{X: 11, Y: 11, Z: 11})
	if bad := Interference(a, b); len(bad) != 0 {
		t.Fatalf("got %d interfering triangles between disjoint boxes, want 0", len(bad))
	}
}

func TestInterferenceOfOverlappingBoxesIsNonEmpty(t *testing.T) {
	a := unitBox()
	b := box(geom.Vec{X: 0.5, Y: 0.5, Z: 0.5}, geom.Vec{X: 1.5, Y: 1.5, Z: 1.5})
	if bad := Interference(a, b); len(bad) == 0 {
		t.Fatalf("expected overlapping boxes to report interfering triangles")
	}
}

func TestDifferenceRemovesOverlapAndKeepsRemainder(t *testing.T) {
	a := unitBox()
	b := box(geom.Vec{X: 0.5, Y: -1, Z: -1}, geom.Vec{X: 2, Y: 2, Z: 2})
	out := Difference(a, b)
	for _, tr := range out.Triangles {
		c := tr.Centroid()
		if c.X > 0.5+1e-9 {
			t.Fatalf("difference kept a triangle inside the subtracted box: %+v", tr)
		}
	}
	if out.TriangleCount() == 0 {
		t.Fatalf("difference removed everything")
	}
}

// TestBooleanSelfIdentities checks Testable Property 8: union(A,A)==A,
// difference(A,A)==empty, difference(A,empty)==A, union(A,empty)==A, judged
// by Classify at a representative interior and exterior point rather than
// by raw triangle-list equality (union/difference may re-triangulate
// coplanar fragments without changing the solid each describes).
func TestBooleanSelfIdentities(t *testing.T) {
	a := unitBox()
	empty := &mesh.Mesh{}
	inside := geom.Vec{X: 0.5, Y: 0.5, Z: 0.5}
	outside := geom.Vec{X: 5, Y: 5, Z: 5}

	check := func(label string, m *mesh.Mesh, wantInside bool) {
		n := Build(m.Triangles)
		if got := Classify(n, inside); got != wantInside {
			t.Fatalf("%s: Classify(interior) = %v, want %v", label, got, wantInside)
		}
		if got := Classify(n, outside); got {
			t.Fatalf("%s: Classify(exterior) = %v, want false", label, got)
		}
	}

	check("union(A,A)", Union(a, a), true)
	check("union(A,empty)", Union(a, empty), true)
	check("difference(A,empty)", Difference(a, empty), true)
	check("difference(A,A)", Difference(a, a), false)
}

func TestPaintOrderVisitsEveryTriangleExactlyOnce(t *testing.T) {
	m := unitBox()
	n := Build(m.Triangles)
	ordered := PaintOrder(n, geom.Vec{X: 0, Y: 0, Z: 1})
	if len(ordered) != m.TriangleCount() {
		t.Fatalf("got %d triangles in paint order, want %d", len(ordered), m.TriangleCount())
	}
}
