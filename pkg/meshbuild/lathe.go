package meshbuild

import (
	"math"

	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/mesh"
	"github.com/solvecore/solvecore/pkg/sketch"
)

// buildLathe sweeps every source-polygon edge a full turn around the
// Group's axis in N slices, N chosen from the profile's maximum radius and
// a fixed chord tolerance, emitting two triangles per edge per slice
// (spec.md S4.7 "Lathe").
func buildLathe(s *sketch.Sketch, g *sketch.Group) (*mesh.Mesh, error) {
	loops, wp, err := sourcePolygon(s, g)
	if err != nil {
		return nil, err
	}
	origin, axisU, axisV := worldFrame(s, wp)
	axisOrigin, axisDir, err := axisFrame(s, g)
	if err != nil {
		return nil, err
	}

	worldPts := make([][]geom.Vec, len(loops))
	maxR := 0.0
	for li, l := range loops {
		worldPts[li] = make([]geom.Vec, len(l.points))
		for i, p := range l.points {
			wpt := toWorld(origin, axisU, axisV, p)
			worldPts[li][i] = wpt
			r := geom.ClosestPointOnLine(wpt, axisOrigin, axisDir).DistanceTo(wpt)
			if r > maxR {
				maxR = r
			}
		}
	}

	n := chordSlices(maxR)
	sign := 1.0
	if g.Subtype.LeftHanded {
		sign = -1
	}
	step := sign * 2 * math.Pi / float64(n)

	out := &mesh.Mesh{}
	for li, l := range loops {
		pts := worldPts[li]
		m := len(pts)
		for i := 0; i < m; i++ {
			j := (i + 1) % m
			tag := uint32(g.RemapEntity(l.edges[i], 0))
			for k := 0; k < n; k++ {
				a0 := rotateAround(pts[i], axisOrigin, axisDir, float64(k)*step)
				b0 := rotateAround(pts[j], axisOrigin, axisDir, float64(k)*step)
				a1 := rotateAround(pts[i], axisOrigin, axisDir, float64(k+1)*step)
				b1 := rotateAround(pts[j], axisOrigin, axisDir, float64(k+1)*step)
				out.Add(a0, b0, b1, tag)
				out.Add(a0, b1, a1, tag)
			}
		}
	}
	return out, nil
}
