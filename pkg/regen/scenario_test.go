package regen

import (
	"context"
	"math"
	"testing"

	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/handle"
	"github.com/solvecore/solvecore/pkg/mesh"
	"github.com/solvecore/solvecore/pkg/raycast"
	"github.com/solvecore/solvecore/pkg/sketch"
)

// Scenario 1 (spec.md S8): two 2D points with a point-point distance
// constraint of 10 converge with the constrained distance exactly 10 and
// one residual degree of freedom.
func TestScenarioPointPointDistanceConverges(t *testing.T) {
	s := sketch.New()
	g := s.NewGroup(sketch.GroupDrawingWorkplane, handle.Group(handle.GroupReferences))
	wp := handle.Entity(handle.EntityXY)

	p0 := newDatumPoint(t, s, g.H, wp, 0, 0)
	p1 := newDatumPoint(t, s, g.H, wp, 3, 4)

	s.AddConstraint(&sketch.Constraint{Kind: sketch.ConstraintWhereDragged, Group: g.H, Workplane: wp, PtA: p0.H})
	s.AddConstraint(&sketch.Constraint{Kind: sketch.ConstraintPtPtDistance, Group: g.H, Workplane: wp, PtA: p0.H, PtB: p1.H, ValA: 10})

	rep, err := All(context.Background(), s)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(rep.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", rep.Errors)
	}
	if g.Status != sketch.SolveOkay {
		t.Fatalf("status = %v, want Okay (bad constraints %v)", g.Status, g.BadConstraints)
	}
	if g.Dof != 1 {
		t.Fatalf("dof = %d, want 1", g.Dof)
	}
	a, b := s.Entities.MustFind(p0.H), s.Entities.MustFind(p1.H)
	if got := a.PointPos(s).DistanceTo(b.PointPos(s)); math.Abs(got-10) > 1e-6 {
		t.Fatalf("distance = %v, want 10", got)
	}
}

// Scenario 2 (spec.md S8): a horizontal line plus a point-on-line
// constraint for a point perturbed off the line converges back to y = 0.
func TestScenarioPointOnLineConverges(t *testing.T) {
	s := sketch.New()
	g := s.NewGroup(sketch.GroupDrawingWorkplane, handle.Group(handle.GroupReferences))
	wp := handle.Entity(handle.EntityXY)

	line := newLineSegment(t, s, g.H, wp, [2]float64{0, 0}, [2]float64{2, 0})
	endA := s.Entities.MustFind(line.Points[0])
	endB := s.Entities.MustFind(line.Points[1])
	p := newDatumPoint(t, s, g.H, wp, 1, 0.1)

	s.AddConstraint(&sketch.Constraint{Kind: sketch.ConstraintWhereDragged, Group: g.H, Workplane: wp, PtA: endA.H})
	s.AddConstraint(&sketch.Constraint{Kind: sketch.ConstraintWhereDragged, Group: g.H, Workplane: wp, PtA: endB.H})
	s.AddConstraint(&sketch.Constraint{Kind: sketch.ConstraintPtOnLine, Group: g.H, Workplane: wp, PtA: p.H, EntityA: line.H})

	rep, err := All(context.Background(), s)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(rep.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", rep.Errors)
	}
	if g.Status != sketch.SolveOkay {
		t.Fatalf("status = %v, want Okay (bad constraints %v)", g.Status, g.BadConstraints)
	}
	pos := s.Entities.MustFind(p.H).PointPos(s)
	if math.Abs(pos.Y) > 1e-6 {
		t.Fatalf("y = %v, want 0", pos.Y)
	}
}

// Scenario 3 (spec.md S8): three points coincident via two
// points_coincident constraints, plus a third redundant points_coincident
// over the same cluster, reports REDUNDANT_OKAY and names the redundant
// constraint.
func TestScenarioRedundantCoincidenceReportsRedundantOkay(t *testing.T) {
	s := sketch.New()
	g := s.NewGroup(sketch.GroupDrawingWorkplane, handle.Group(handle.GroupReferences))
	wp := handle.Entity(handle.EntityXY)

	p0 := newDatumPoint(t, s, g.H, wp, 0, 0)
	p1 := newDatumPoint(t, s, g.H, wp, 1, 1)
	p2 := newDatumPoint(t, s, g.H, wp, 2, 2)

	s.AddConstraint(&sketch.Constraint{Kind: sketch.ConstraintWhereDragged, Group: g.H, Workplane: wp, PtA: p0.H})
	s.AddConstraint(&sketch.Constraint{Kind: sketch.ConstraintPointsCoincident, Group: g.H, Workplane: wp, PtA: p0.H, PtB: p1.H})
	s.AddConstraint(&sketch.Constraint{Kind: sketch.ConstraintPointsCoincident, Group: g.H, Workplane: wp, PtA: p1.H, PtB: p2.H})
	redundant := s.AddConstraint(&sketch.Constraint{Kind: sketch.ConstraintPointsCoincident, Group: g.H, Workplane: wp, PtA: p0.H, PtB: p2.H})

	rep, err := All(context.Background(), s)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(rep.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", rep.Errors)
	}
	if g.Status != sketch.SolveRedundantOkay {
		t.Fatalf("status = %v, want RedundantOkay", g.Status)
	}
	found := false
	for _, bc := range g.BadConstraints {
		if bc == redundant.H {
			found = true
		}
	}
	if !found {
		t.Fatalf("redundant constraint %v not named in BadConstraints %v", redundant.H, g.BadConstraints)
	}
}

// Scenario 4 (spec.md S8): a square extruded by (0,0,10), combined with
// difference against a coincident square extruded by the same vector,
// leaves an empty running mesh.
func TestScenarioExtrudeDifferenceAgainstItselfIsEmpty(t *testing.T) {
	s := sketch.New()
	srcGroup := makeSquareSource(t, s, 0, 0)

	eg1 := s.NewGroup(sketch.GroupExtrude, srcGroup)
	eg1.SourceGroup = srcGroup
	setExtrudeVectorZ(s, eg1, 10)

	srcGroup2 := makeSquareSource(t, s, 0, 0)
	eg2 := s.NewGroup(sketch.GroupExtrude, srcGroup2)
	eg2.SourceGroup = srcGroup2
	eg2.Predecessor = eg1.H
	eg2.Combine = sketch.CombineDifference
	setExtrudeVectorZ(s, eg2, 10)

	rep, err := All(context.Background(), s)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(rep.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", rep.Errors)
	}
	running, ok := eg2.RunningMesh.(*mesh.Mesh)
	if !ok {
		t.Fatalf("RunningMesh is not *mesh.Mesh: %T", eg2.RunningMesh)
	}
	if got := running.TriangleCount(); got != 0 {
		t.Fatalf("got %d triangles in self-difference, want 0", got)
	}
}

// Scenario 5 (spec.md S8): a many-sided polygon approximating a circle of
// radius 1, lathed 360 degrees about the Y-axis, produces a closed mesh
// (every edge shared by exactly two triangles, once each direction).
func TestScenarioLatheProducesClosedMesh(t *testing.T) {
	s := sketch.New()
	srcGroup := makeCircleApproxSource(t, s, 16)

	lg := s.NewGroup(sketch.GroupLathe, srcGroup)
	lg.SourceGroup = srcGroup
	lg.AxisPoint = handle.Entity(handle.EntityOrigin)
	lg.Axis = s.Entities.MustFind(handle.Entity(handle.EntityZX)).Normal // ZX's normal is +Y

	rep, err := All(context.Background(), s)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(rep.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", rep.Errors)
	}
	running, ok := lg.RunningMesh.(*mesh.Mesh)
	if !ok || running.TriangleCount() == 0 {
		t.Fatalf("expected a non-empty lathed mesh, got %T", lg.RunningMesh)
	}
	if !isClosedMesh(running) {
		t.Fatalf("lathed mesh has naked edges")
	}
}

// Scenario 6 (spec.md S8): a 3D point (2,0,0) ray-cast against a unit
// sphere shell centred at the origin classifies OUTSIDE.
func TestScenarioRaycastAgainstSphereIsOutside(t *testing.T) {
	s := sketch.New()
	srcGroup := makeSphereApproxSource(t, s, 16)

	lg := s.NewGroup(sketch.GroupLathe, srcGroup)
	lg.SourceGroup = srcGroup
	lg.AxisPoint = handle.Entity(handle.EntityOrigin)
	lg.Axis = s.Entities.MustFind(handle.Entity(handle.EntityZX)).Normal

	rep, err := All(context.Background(), s)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(rep.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", rep.Errors)
	}
	shell, ok := lg.RunningMesh.(*mesh.Mesh)
	if !ok || shell.TriangleCount() == 0 {
		t.Fatalf("expected a non-empty sphere mesh, got %T", lg.RunningMesh)
	}

	st, err := raycast.ClassifyPoint(shell, geom.Vec{X: 2})
	if err != nil {
		t.Fatalf("ClassifyPoint: %v", err)
	}
	if st != raycast.Outside {
		t.Fatalf("status = %v, want OUTSIDE", st)
	}
}

// setExtrudeVectorZ wires a (0,0,z) extrude vector onto g using its own
// Group-base Param range.
func setExtrudeVectorZ(s *sketch.Sketch, g *sketch.Group, z float64) {
	base := handle.GroupBase(uint32(g.H))
	vz := handle.Param(handle.Derive(base, 0))
	s.AddParam(vz, g.H, z)
	g.ExtrudeVector = [3]handle.Param{handle.Param(handle.None), handle.Param(handle.None), vz}
}

// isClosedMesh reports whether every directed edge in m has a matching
// reverse-directed edge exactly once, the no-naked-edges test for a solid
// of revolution.
func isClosedMesh(m *mesh.Mesh) bool {
	type edge struct{ from, to [3]float64 }
	count := make(map[edge]int)
	vkey := func(x, y, z float64) [3]float64 { return [3]float64{round(x), round(y), round(z)} }
	for _, tr := range m.Triangles {
		a := vkey(tr.A.X, tr.A.Y, tr.A.Z)
		b := vkey(tr.B.X, tr.B.Y, tr.B.Z)
		c := vkey(tr.C.X, tr.C.Y, tr.C.Z)
		count[edge{a, b}]++
		count[edge{b, c}]++
		count[edge{c, a}]++
	}
	for e, n := range count {
		if n != 1 {
			return false
		}
		rev := edge{e.to, e.from}
		if count[rev] != 1 {
			return false
		}
	}
	return true
}

func round(f float64) float64 { return math.Round(f*1e6) / 1e6 }
