package meshbuild

import (
	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/mesh"
	"github.com/solvecore/solvecore/pkg/sketch"
	"github.com/solvecore/solvecore/pkg/triangulate"
)

// topFaceCopy and bottomFaceCopy are synthetic remap copy numbers used to
// tag an extrude's cap faces distinctly from its side faces, reusing the
// Group's ordinary (original, copy) remap table rather than adding a
// parallel tagging scheme.
const (
	topFaceCopy    = -1
	bottomFaceCopy = -2
)

// buildExtrude triangulates the source polygon, copies it as top and
// bottom layers with opposite winding, and emits two side triangles per
// boundary edge, tagging every face via the Group's remap table (spec.md
// S4.7 "Extrude").
func buildExtrude(s *sketch.Sketch, g *sketch.Group) (*mesh.Mesh, error) {
	loops, wp, err := sourcePolygon(s, g)
	if err != nil {
		return nil, err
	}
	outer, holes := outerAndHoles(loops)
	origin, axisU, axisV := worldFrame(s, wp)

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

	vec := extrudeVector(s, g)
	out := &mesh.Mesh{}

	topTag := uint32(g.RemapEntity(outer.edges[0], topFaceCopy))
	bottomTag := uint32(g.RemapEntity(outer.edges[0], bottomFaceCopy))
	for _, t := range tris {
		a := toWorld(origin, axisU, axisV, t[0])
		b := toWorld(origin, axisU, axisV, t[1])
		c := toWorld(origin, axisU, axisV, t[2])
		out.Add(a.Add(vec), b.Add(vec), c.Add(vec), topTag)
		// Bottom cap faces the opposite direction, so its winding reverses.
		out.Add(a, c, b, bottomTag)
	}

	for _, l := range append([]loop{outer}, holes...) {
		n := len(l.points)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			bottomA := toWorld(origin, axisU, axisV, l.points[i])
			bottomB := toWorld(origin, axisU, axisV, l.points[j])
			topA := bottomA.Add(vec)
			topB := bottomB.Add(vec)
			sideTag := uint32(g.RemapEntity(l.edges[i], 0))
			out.Add(bottomA, bottomB, topB, sideTag)
			out.Add(bottomA, topB, topA, sideTag)
		}
	}

	return out, nil
}

// extrudeVector reads a Group's ExtrudeVector Params as a world-space
// translation (spec.md S3: "Extrude uses ExtrudeVector's three Params").
func extrudeVector(s *sketch.Sketch, g *sketch.Group) geom.Vec {
	return geom.Vec{
		X: s.Value(g.ExtrudeVector[0]),
		Y: s.Value(g.ExtrudeVector[1]),
		Z: s.Value(g.ExtrudeVector[2]),
	}
}
