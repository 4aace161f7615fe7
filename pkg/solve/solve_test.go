package solve

import (
	"math"
	"testing"

	"github.com/solvecore/solvecore/pkg/generate"
	"github.com/solvecore/solvecore/pkg/handle"
	"github.com/solvecore/solvecore/pkg/sketch"
)

func newVerticalLine(t *testing.T) (*sketch.Sketch, handle.Group, *sketch.Entity) {
	t.Helper()
	s := sketch.New()
	g := s.NewGroup(sketch.GroupDrawingWorkplane, handle.Group(handle.GroupReferences))
	r := s.NewRequest(sketch.RequestLineSegment, g.H, handle.Entity(handle.EntityXY))
	if err := generate.Generate(s, r); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var line *sketch.Entity
	for _, h := range s.Entities.Keys() {
		e := s.Entities.MustFind(h)
		if e.Group == g.H && e.Kind == sketch.EntityLineSegment {
			line = e
		}
	}
	if line == nil {
		t.Fatalf("no line segment generated")
	}
	return s, g.H, line
}

func TestSolvePinsLineToTargetDistance(t *testing.T) {
	s, g, line := newVerticalLine(t)

	p1 := s.Entities.MustFind(line.Points[1])
	s.Params.MustFind(p1.Params[1]).Val = 3 // away from the degenerate v=0 starting point

	drag := &sketch.Constraint{Kind: sketch.ConstraintWhereDragged, Group: g, Workplane: handle.Entity(handle.EntityXY), PtA: line.Points[0]}
	s.AddConstraint(drag)
	dist := &sketch.Constraint{Kind: sketch.ConstraintPtPtDistance, Group: g, Workplane: handle.Entity(handle.EntityXY), PtA: line.Points[0], PtB: line.Points[1], ValA: 5}
	s.AddConstraint(dist)
	vert := &sketch.Constraint{Kind: sketch.ConstraintVertical, Group: g, Workplane: handle.Entity(handle.EntityXY), EntityA: line.H}
	s.AddConstraint(vert)

	res, err := Solve(s, g, nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Status != sketch.SolveOkay {
		t.Fatalf("status = %v, want Okay (bad constraints: %v)", res.Status, res.BadConstraints)
	}

	p0 := s.Entities.MustFind(line.Points[0])
	pos0 := p0.PointPos(s)
	pos1 := p1.PointPos(s)
	if math.Abs(pos0.X) > 1e-6 || math.Abs(pos0.Y) > 1e-6 {
		t.Fatalf("dragged point moved: %v", pos0)
	}
	if got := math.Abs(pos1.DistanceTo(pos0) - 5); got > 1e-6 {
		t.Fatalf("distance off by %v", got)
	}
	if math.Abs(pos1.X-pos0.X) > 1e-6 {
		t.Fatalf("line is not vertical: %v vs %v", pos1, pos0)
	}
}

func TestSolveReportsRedundantConstraint(t *testing.T) {
	s, g, line := newVerticalLine(t)
	p1 := s.Entities.MustFind(line.Points[1])
	s.Params.MustFind(p1.Params[1]).Val = 3

	drag := &sketch.Constraint{Kind: sketch.ConstraintWhereDragged, Group: g, Workplane: handle.Entity(handle.EntityXY), PtA: line.Points[0]}
	s.AddConstraint(drag)
	dist1 := &sketch.Constraint{Kind: sketch.ConstraintPtPtDistance, Group: g, Workplane: handle.Entity(handle.EntityXY), PtA: line.Points[0], PtB: line.Points[1], ValA: 5}
	s.AddConstraint(dist1)
	// A second, inconsistent distance on the same pair over-determines the
	// same two unknowns (u1 is already pinned by Vertical+WhereDragged).
	dist2 := &sketch.Constraint{Kind: sketch.ConstraintPtPtDistance, Group: g, Workplane: handle.Entity(handle.EntityXY), PtA: line.Points[0], PtB: line.Points[1], ValA: 7}
	s.AddConstraint(dist2)
	vert := &sketch.Constraint{Kind: sketch.ConstraintVertical, Group: g, Workplane: handle.Entity(handle.EntityXY), EntityA: line.H}
	s.AddConstraint(vert)

	res, err := Solve(s, g, nil)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Status == sketch.SolveOkay {
		t.Fatalf("expected a redundant/failed status for inconsistent distances, got Okay")
	}
}
