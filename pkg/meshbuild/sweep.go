package meshbuild

import (
	"math"

	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/mesh"
	"github.com/solvecore/solvecore/pkg/sketch"
	"github.com/solvecore/solvecore/pkg/triangulate"
)

// sectionFrame is the section plane's origin and in-plane basis at one
// trajectory step.
type sectionFrame struct {
	origin, u, v geom.Vec
}

// buildSweep parallel-transports the source polygon along g.Trajectory,
// rotating the section at each step so its plane stays normal to the
// trajectory with minimum twist, and caps both ends (spec.md S4.7
// "Sweep").
func buildSweep(s *sketch.Sketch, g *sketch.Group) (*mesh.Mesh, error) {
	loops, _, err := sourcePolygon(s, g)
	if err != nil {
		return nil, err
	}
	path, err := trajectoryChain(s, g.Trajectory)
	if err != nil {
		return nil, err
	}
	if len(path) < 2 {
		return nil, ErrOpenPolygon
	}

	frames := buildParallelTransportFrames(path)
	return sweepAlongFrames(g, loops, frames, 0)
}

// buildParallelTransportFrames computes one section frame per trajectory
// point: the tangent is the local secant direction (forward difference at
// the first point, backward difference at the last, central difference
// inside), and each step's in-plane basis is
// the previous step's basis rotated by the minimal rotation that carries
// the previous tangent onto the current one (spec.md S4.7.8).
func buildParallelTransportFrames(path []geom.Vec) []sectionFrame {
	n := len(path)
	tangents := make([]geom.Vec, n)
	for i := range path {
		switch {
		case i == 0:
			tangents[i] = path[1].Sub(path[0]).Normalize()
		case i == n-1:
			tangents[i] = path[i].Sub(path[i-1]).Normalize()
		default:
			tangents[i] = path[i+1].Sub(path[i-1]).Normalize()
		}
	}

	u := arbitraryPerpendicular(tangents[0])
	v := tangents[0].Cross(u).Normalize()
	frames := make([]sectionFrame, n)
	frames[0] = sectionFrame{origin: path[0], u: u, v: v}
	for i := 1; i < n; i++ {
		axis := tangents[i-1].Cross(tangents[i])
		if axis.Mag() > 1e-9 {
			dot := tangents[i-1].Dot(tangents[i])
			if dot > 1 {
				dot = 1
			}
			if dot < -1 {
				dot = -1
			}
			q := geom.FromAxisAngle(axis, math.Acos(dot))
			u = q.RotateVec(u)
			v = q.RotateVec(v)
		}
		frames[i] = sectionFrame{origin: path[i], u: u, v: v}
	}
	return frames
}

// arbitraryPerpendicular returns some unit vector perpendicular to dir,
// picking whichever world axis is least parallel to dir to avoid a
// near-degenerate cross product.
func arbitraryPerpendicular(dir geom.Vec) geom.Vec {
	candidates := []geom.Vec{{X: 1}, {Y: 1}, {Z: 1}}
	best := candidates[0]
	bestAbsDot := math.Abs(dir.Dot(best))
	for _, c := range candidates[1:] {
		if d := math.Abs(dir.Dot(c)); d < bestAbsDot {
			bestAbsDot = d
			best = c
		}
	}
	return dir.Cross(best).Normalize()
}

// sweepAlongFrames lofts loops through frames, building side walls between
// consecutive frames and triangulated end caps at the first and last. The
// trajStep0 offset is added to each frame's step number when building remap
// tags; buildSweep passes 0.
func sweepAlongFrames(g *sketch.Group, loops []loop, frames []sectionFrame, trajStep0 int) (*mesh.Mesh, error) {
	out := &mesh.Mesh{}
	rings := make([][][]geom.Vec, len(loops))
	for li, l := range loops {
		rings[li] = make([][]geom.Vec, len(frames))
		for step, f := range frames {
			ring := make([]geom.Vec, len(l.points))
			for i, p := range l.points {
				ring[i] = f.origin.Add(f.u.Scale(p.U)).Add(f.v.Scale(p.V))
			}
			rings[li][step] = ring
		}
	}

	for li, l := range loops {
		m := len(l.points)
		for step := 0; step < len(frames)-1; step++ {
			for i := 0; i < m; i++ {
				j := (i + 1) % m
				tag := uint32(g.RemapEntity(l.edges[i], trajStep0+step))
				a0 := rings[li][step][i]
				b0 := rings[li][step][j]
				a1 := rings[li][step+1][i]
				b1 := rings[li][step+1][j]
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
	first, last := frames[0], frames[len(frames)-1]
	for _, t := range tris {
		a0 := first.origin.Add(first.u.Scale(t[0].U)).Add(first.v.Scale(t[0].V))
		b0 := first.origin.Add(first.u.Scale(t[1].U)).Add(first.v.Scale(t[1].V))
		c0 := first.origin.Add(first.u.Scale(t[2].U)).Add(first.v.Scale(t[2].V))
		out.Add(a0, c0, b0, startTag) // reversed: cap faces back along the path

		a1 := last.origin.Add(last.u.Scale(t[0].U)).Add(last.v.Scale(t[0].V))
		b1 := last.origin.Add(last.u.Scale(t[1].U)).Add(last.v.Scale(t[1].V))
		c1 := last.origin.Add(last.u.Scale(t[2].U)).Add(last.v.Scale(t[2].V))
		out.Add(a1, b1, c1, endTag)
	}

	return out, nil
}
