package regen

import (
	"math"
	"testing"

	"github.com/solvecore/solvecore/pkg/generate"
	"github.com/solvecore/solvecore/pkg/handle"
	"github.com/solvecore/solvecore/pkg/sketch"
)

// closedLoopSource hand-builds a closed polygon of line segments on the XY
// workplane inside a fresh drawing-workplane Group, bypassing pkg/generate
// (which never shares endpoint handles across separate Requests) so the
// loop is closed by construction — the same approach pkg/meshbuild's own
// tests use for exactly the same reason.
func closedLoopSource(t *testing.T, s *sketch.Sketch, corners [][2]float64) handle.Group {
	t.Helper()
	g := s.NewGroup(sketch.GroupDrawingWorkplane, handle.Group(handle.GroupReferences))

	newPoint := func(local uint32, u, v float64) handle.Entity {
		base := handle.GroupBase(uint32(g.H))
		pu := handle.Param(handle.Derive(base, local*2))
		pv := handle.Param(handle.Derive(base, local*2+1))
		s.AddParam(pu, g.H, u)
		s.AddParam(pv, g.H, v)
		eh := handle.Entity(handle.Derive(base, 0x1000+local))
		s.AddEntity(&sketch.Entity{H: eh, Kind: sketch.EntityPoint2D, Group: g.H, Workplane: handle.Entity(handle.EntityXY), Params: []handle.Param{pu, pv}})
		return eh
	}

	pts := make([]handle.Entity, len(corners))
	for i, c := range corners {
		pts[i] = newPoint(uint32(i), c[0], c[1])
	}
	for i := range pts {
		j := (i + 1) % len(pts)
		base := handle.GroupBase(uint32(g.H))
		eh := handle.Entity(handle.Derive(base, 0x2000+uint32(i)))
		s.AddEntity(&sketch.Entity{H: eh, Kind: sketch.EntityLineSegment, Group: g.H, Workplane: handle.Entity(handle.EntityXY), Points: []handle.Entity{pts[i], pts[j]}})
	}
	return g.H
}

// makeSquareSource builds a unit square at (offsetX, offsetY).
func makeSquareSource(t *testing.T, s *sketch.Sketch, offsetX, offsetY float64) handle.Group {
	t.Helper()
	corners := [][2]float64{
		{offsetX, offsetY}, {offsetX + 1, offsetY}, {offsetX + 1, offsetY + 1}, {offsetX, offsetY + 1},
	}
	return closedLoopSource(t, s, corners)
}

// makeCircleApproxSource builds a regular n-gon of radius 1 centered at
// (2, 0), offset from the Y-axis so a 360-degree lathe about it sweeps a
// torus-like closed solid rather than self-intersecting at the axis.
func makeCircleApproxSource(t *testing.T, s *sketch.Sketch, n int) handle.Group {
	t.Helper()
	corners := make([][2]float64, n)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		corners[i] = [2]float64{2 + math.Cos(a), math.Sin(a)}
	}
	return closedLoopSource(t, s, corners)
}

// makeSphereApproxSource builds a closed semicircular profile of radius 1
// (centered at the origin, lying in the X>=0 half of the XY plane) closed
// by a straight segment back along the Y-axis, so a 360-degree lathe about
// the Y-axis sweeps a sphere-like closed solid.
func makeSphereApproxSource(t *testing.T, s *sketch.Sketch, n int) handle.Group {
	t.Helper()
	corners := make([][2]float64, 0, n+1)
	for i := 0; i <= n; i++ {
		theta := -math.Pi/2 + math.Pi*float64(i)/float64(n)
		corners = append(corners, [2]float64{math.Cos(theta), math.Sin(theta)})
	}
	return closedLoopSource(t, s, corners)
}

// newDatumPoint allocates and generates a DatumPoint Request on wp, then
// sets its coordinates. It diffs the store's entity set before and after
// generation to find the single new Entity, since a DatumPoint Request
// always emits exactly one.
func newDatumPoint(t *testing.T, s *sketch.Sketch, g handle.Group, wp handle.Entity, u, v float64) *sketch.Entity {
	t.Helper()
	before := make(map[handle.Entity]bool)
	for _, h := range s.Entities.Keys() {
		before[h] = true
	}
	r := s.NewRequest(sketch.RequestDatumPoint, g, wp)
	if err := generate.Generate(s, r); err != nil {
		t.Fatalf("generate datum point: %v", err)
	}
	var pt *sketch.Entity
	for _, h := range s.Entities.Keys() {
		if before[h] {
			continue
		}
		pt = s.Entities.MustFind(h)
	}
	if pt == nil {
		t.Fatalf("no point generated for request %v", r.H)
	}
	s.Params.MustFind(pt.Params[0]).Val = u
	s.Params.MustFind(pt.Params[1]).Val = v
	return pt
}

// newLineSegment allocates and generates a LineSegment Request on wp and
// positions its two endpoints.
func newLineSegment(t *testing.T, s *sketch.Sketch, g handle.Group, wp handle.Entity, p0, p1 [2]float64) *sketch.Entity {
	t.Helper()
	before := make(map[handle.Entity]bool)
	for _, h := range s.Entities.Keys() {
		before[h] = true
	}
	r := s.NewRequest(sketch.RequestLineSegment, g, wp)
	if err := generate.Generate(s, r); err != nil {
		t.Fatalf("generate line segment: %v", err)
	}
	var line *sketch.Entity
	for _, h := range s.Entities.Keys() {
		if before[h] {
			continue
		}
		if e := s.Entities.MustFind(h); e.Kind == sketch.EntityLineSegment {
			line = e
		}
	}
	if line == nil {
		t.Fatalf("no line segment generated for request %v", r.H)
	}
	a := s.Entities.MustFind(line.Points[0])
	b := s.Entities.MustFind(line.Points[1])
	s.Params.MustFind(a.Params[0]).Val = p0[0]
	s.Params.MustFind(a.Params[1]).Val = p0[1]
	s.Params.MustFind(b.Params[0]).Val = p1[0]
	s.Params.MustFind(b.Params[1]).Val = p1[1]
	return line
}
