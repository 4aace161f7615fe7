package meshbuild

import (
	"math"

	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/mesh"
	"github.com/solvecore/solvecore/pkg/sketch"
	"github.com/solvecore/solvecore/pkg/triangulate"
)

// buildHelicalSweep generates its trajectory parametrically — turns =
// valA (g.Turns), pitch = valB (g.Pitch), dRadius = valC (g.DRadius),
// handedness from the subtype — then applies the same rotate-translate-
// scale transform the lathe builder's revolve does, but walking axially
// and tapering the radius across the turns instead of holding both fixed
// (spec.md S4.7 "Helical sweep").
func buildHelicalSweep(s *sketch.Sketch, g *sketch.Group) (*mesh.Mesh, error) {
	loops, wp, err := sourcePolygon(s, g)
	if err != nil {
		return nil, err
	}
	origin, axisU, axisV := worldFrame(s, wp)
	axisOrigin, axisDir, err := axisFrame(s, g)
	if err != nil {
		return nil, err
	}

	turns := s.Value(g.Turns)
	pitch := s.Value(g.Pitch)
	dRadius := s.Value(g.DRadius)
	sign := 1.0
	if g.Subtype.LeftHanded {
		sign = -1
	}

	worldPts := make([][]geom.Vec, len(loops))
	var maxR float64
	for li, l := range loops {
		worldPts[li] = make([]geom.Vec, len(l.points))
		for i, p := range l.points {
			wpt := toWorld(origin, axisU, axisV, p)
			worldPts[li][i] = wpt
			if r := geom.ClosestPointOnLine(wpt, axisOrigin, axisDir).DistanceTo(wpt); r > maxR {
				maxR = r
			}
		}
	}

	stepsPerTurn := chordSlices(maxR)
	totalSteps := int(math.Ceil(turns * float64(stepsPerTurn)))
	if totalSteps < 1 {
		totalSteps = 1
	}

	transform := func(wpt geom.Vec, step int) geom.Vec {
		t := float64(step) / float64(totalSteps)
		angle := sign * turns * 2 * math.Pi * t
		axialShift := pitch * turns * t
		rel := wpt.Sub(axisOrigin)
		axialComp := rel.Dot(axisDir)
		radial := rel.Sub(axisDir.Scale(axialComp))
		scale := 1.0
		if maxR > 1e-9 {
			scale = 1 + dRadius*turns*t/maxR
		}
		rotated := geom.FromAxisAngle(axisDir, angle).RotateVec(radial.Scale(scale))
		return axisOrigin.Add(axisDir.Scale(axialComp + axialShift)).Add(rotated)
	}

	out := &mesh.Mesh{}
	for li, l := range loops {
		m := len(l.points)
		for i := 0; i < m; i++ {
			j := (i + 1) % m
			tag := uint32(g.RemapEntity(l.edges[i], 0))
			for step := 0; step < totalSteps; step++ {
				a0 := transform(worldPts[li][i], step)
				b0 := transform(worldPts[li][j], step)
				a1 := transform(worldPts[li][i], step+1)
				b1 := transform(worldPts[li][j], step+1)
				out.Add(a0, b0, b1, tag)
				out.Add(a0, b1, a1, tag)
			}
		}
	}

	outer, holes := outerAndHoles(loops)
	contourOf := func(l loop) triangulate.Contour {
		c := make(triangulate.Contour, len(l.points))
		copy(c, l.points)
		return c
	}
	holeContours := make([]triangulate.Contour, len(holes))
	for i, h := range holes {
		holeContours[i] = contourOf(h)
	}
	tris, err := triangulate.EarClip(contourOf(outer), holeContours)
	if err != nil {
		return nil, err
	}
	startTag := uint32(g.RemapEntity(outer.edges[0], topFaceCopy))
	endTag := uint32(g.RemapEntity(outer.edges[0], bottomFaceCopy))
	for _, t := range tris {
		a := toWorld(origin, axisU, axisV, t[0])
		b := toWorld(origin, axisU, axisV, t[1])
		c := toWorld(origin, axisU, axisV, t[2])
		out.Add(transform(a, 0), transform(c, 0), transform(b, 0), startTag)
		out.Add(transform(a, totalSteps), transform(b, totalSteps), transform(c, totalSteps), endTag)
	}

	return out, nil
}
