package reduce

import (
	"math"
	"testing"

	"github.com/solvecore/solvecore/pkg/generate"
	"github.com/solvecore/solvecore/pkg/handle"
	"github.com/solvecore/solvecore/pkg/sketch"
)

func newLineOnXY(t *testing.T, s *sketch.Sketch) (handle.Group, *sketch.Entity) {
	t.Helper()
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
	return g.H, line
}

func setPoint2D(s *sketch.Sketch, pt handle.Entity, u, v float64) {
	e := s.Entities.MustFind(pt)
	s.Params.MustFind(e.Params[0]).Val = u
	s.Params.MustFind(e.Params[1]).Val = v
}

func TestPointsCoincidentResidualsVanishWhenEqual(t *testing.T) {
	s := sketch.New()
	g, line := newLineOnXY(t, s)
	r := s.NewRequest(sketch.RequestDatumPoint, g, handle.Entity(handle.EntityXY))
	if err := generate.Generate(s, r); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var datum handle.Entity
	for _, h := range s.Entities.Keys() {
		e := s.Entities.MustFind(h)
		if e.Group == g && e.Kind == sketch.EntityPoint2D && h != line.Points[0] && h != line.Points[1] {
			datum = h
		}
	}
	setPoint2D(s, line.Points[0], 3, 4)
	setPoint2D(s, datum, 3, 4)

	c := &sketch.Constraint{Kind: sketch.ConstraintPointsCoincident, Group: g, Workplane: handle.Entity(handle.EntityXY), PtA: line.Points[0], PtB: datum}
	s.AddConstraint(c)

	eqs, err := Reduce(s, c)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if len(eqs) != 2 {
		t.Fatalf("got %d residuals, want 2 for an in-plane coincidence", len(eqs))
	}
	for _, e := range eqs {
		if v := e.Eval(s); math.Abs(v) > 1e-9 {
			t.Fatalf("residual %v not near zero: %v", e, v)
		}
	}
}

func TestPtPtDistanceResidualMatchesSquaredDistance(t *testing.T) {
	s := sketch.New()
	g, line := newLineOnXY(t, s)
	setPoint2D(s, line.Points[0], 0, 0)
	setPoint2D(s, line.Points[1], 3, 4)

	c := &sketch.Constraint{Kind: sketch.ConstraintPtPtDistance, Group: g, Workplane: handle.Entity(handle.EntityXY), PtA: line.Points[0], PtB: line.Points[1], ValA: 5}
	s.AddConstraint(c)

	eqs, err := Reduce(s, c)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if len(eqs) != 1 {
		t.Fatalf("got %d residuals, want 1", len(eqs))
	}
	if v := eqs[0].Eval(s); math.Abs(v) > 1e-9 {
		t.Fatalf("residual should vanish at distance 5, got %v", v)
	}
}

func TestPtOnLineAllocatesOtherParam(t *testing.T) {
	s := sketch.New()
	g, line := newLineOnXY(t, s)
	r := s.NewRequest(sketch.RequestDatumPoint, g, handle.Entity(handle.EntityXY))
	if err := generate.Generate(s, r); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var datum handle.Entity
	for _, h := range s.Entities.Keys() {
		e := s.Entities.MustFind(h)
		if e.Group == g && e.Kind == sketch.EntityPoint2D && h != line.Points[0] && h != line.Points[1] {
			datum = h
		}
	}

	c := &sketch.Constraint{Kind: sketch.ConstraintPtOnLine, Group: g, Workplane: handle.Entity(handle.EntityXY), PtA: datum, EntityA: line.H}
	s.AddConstraint(c)
	if c.OtherParam.IsNone() {
		t.Fatalf("PtOnLine constraint did not allocate its private Param")
	}

	eqs, err := Reduce(s, c)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if len(eqs) != 2 {
		t.Fatalf("got %d residuals, want 2 (in-plane)", len(eqs))
	}
	if !eqs[0].DependsOn(c.OtherParam) {
		t.Fatalf("residual does not depend on the constraint's own private Param")
	}
}

func TestParallelResidualZeroForCollinearDirections(t *testing.T) {
	s := sketch.New()
	g, line1 := newLineOnXY(t, s)
	r := s.NewRequest(sketch.RequestLineSegment, g, handle.Entity(handle.EntityXY))
	if err := generate.Generate(s, r); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	var line2 *sketch.Entity
	for _, h := range s.Entities.Keys() {
		e := s.Entities.MustFind(h)
		if e.Group == g && e.Kind == sketch.EntityLineSegment && e.H != line1.H {
			line2 = e
		}
	}
	setPoint2D(s, line1.Points[0], 0, 0)
	setPoint2D(s, line1.Points[1], 1, 1)
	setPoint2D(s, line2.Points[0], 5, 5)
	setPoint2D(s, line2.Points[1], 9, 9)

	c := &sketch.Constraint{Kind: sketch.ConstraintParallel, Group: g, Workplane: handle.Entity(handle.EntityXY), EntityA: line1.H, EntityB: line2.H}
	eqs, err := Reduce(s, c)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	for _, e := range eqs {
		if v := e.Eval(s); math.Abs(v) > 1e-9 {
			t.Fatalf("parallel residual not near zero for collinear lines: %v", v)
		}
	}
}

func TestModifyToSatisfyFillsCurrentDistance(t *testing.T) {
	s := sketch.New()
	g, line := newLineOnXY(t, s)
	setPoint2D(s, line.Points[0], 0, 0)
	setPoint2D(s, line.Points[1], 6, 8)

	c := &sketch.Constraint{Kind: sketch.ConstraintPtPtDistance, Group: g, Workplane: handle.Entity(handle.EntityXY), PtA: line.Points[0], PtB: line.Points[1]}
	if err := ModifyToSatisfy(s, c); err != nil {
		t.Fatalf("ModifyToSatisfy: %v", err)
	}
	if math.Abs(c.ValA-10) > 1e-9 {
		t.Fatalf("ValA = %v, want 10", c.ValA)
	}
}

func TestCommentConstraintHasNoResiduals(t *testing.T) {
	s := sketch.New()
	g, _ := newLineOnXY(t, s)
	c := &sketch.Constraint{Kind: sketch.ConstraintComment, Group: g, Comment: "note"}
	eqs, err := Reduce(s, c)
	if err != nil {
		t.Fatalf("Reduce: %v", err)
	}
	if eqs != nil {
		t.Fatalf("comment constraint should contribute no residuals, got %d", len(eqs))
	}
}
