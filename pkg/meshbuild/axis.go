package meshbuild

import (
	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/sketch"
)

// axisFrame resolves a Lathe/HelicalSweep Group's rotation axis: AxisPoint
// gives a point the axis passes through, Axis (a normal entity) gives its
// direction via that normal's AxisN (spec.md S3: "HelicalSweep uses...
// Axis/AxisPoint").
func axisFrame(s *sketch.Sketch, g *sketch.Group) (origin, dir geom.Vec, err error) {
	if g.Axis.IsNone() || g.AxisPoint.IsNone() {
		return geom.Vec{}, geom.Vec{}, ErrNoAxis
	}
	origin = s.Entities.MustFind(g.AxisPoint).PointPos(s)
	dir = s.Entities.MustFind(g.Axis).NormalQuat(s).AxisN()
	return origin, dir, nil
}

// chordSlices picks the slice count N for a revolve of the given maximum
// radius, following spec.md S4.7's "N chosen from max radius and chord
// tolerance": an angle step of 2*chordTolerance/maxRadius, a chord of about
// twice chordTolerance at that radius, clamped to a sane range.
func chordSlices(maxRadius float64) int {
	const chordTolerance = 0.25
	const minSlices = 12
	const maxSlices = 240
	if maxRadius < 1e-9 {
		return minSlices
	}
	angleStep := 2 * chordTolerance / maxRadius
	n := int(6.283185307179586/angleStep) + 1
	if n < minSlices {
		return minSlices
	}
	if n > maxSlices {
		return maxSlices
	}
	return n
}

// rotateAround rotates p by angle radians about the line through origin
// with direction dir.
func rotateAround(p, origin, dir geom.Vec, angle float64) geom.Vec {
	rel := p.Sub(origin)
	rotated := geom.FromAxisAngle(dir, angle).RotateVec(rel)
	return origin.Add(rotated)
}
