package meshbuild

import (
	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/handle"
	"github.com/solvecore/solvecore/pkg/mesh"
	"github.com/solvecore/solvecore/pkg/sketch"
)

// sourceMesh fetches g.SourceGroup's already-built thisMesh. The
// regeneration driver always builds groups in pipeline order (spec.md
// S4.6), so by the time a step-and-repeat Group builds, its SourceGroup's
// ThisMesh is already a populated *mesh.Mesh.
func sourceMesh(s *sketch.Sketch, g *sketch.Group) (*mesh.Mesh, error) {
	if g.SourceGroup == handle.Group(handle.None) {
		return nil, ErrNoSourceGroup
	}
	src := s.Groups.MustFind(g.SourceGroup)
	m, ok := src.ThisMesh.(*mesh.Mesh)
	if !ok || m == nil {
		return nil, ErrNoSourceGroup
	}
	return m, nil
}

// copyRange returns the inclusive [start, end] copy-index range for a
// step-and-repeat Group: one-sided runs 0..Copies-1, two-sided straddles
// zero (spec.md S4.7 "one-sided vs two-sided subtypes change the copy
// range").
func copyRange(g *sketch.Group) (start, end int) {
	if g.Subtype.TwoSided {
		half := g.Copies / 2
		return -half, g.Copies - half - 1
	}
	return 0, g.Copies - 1
}

// retagFaces remaps every triangle's face tag through the Group's own
// remap table for copy copyN, so stepped copies keep distinguishable,
// stable face handles (spec.md S4.7: "face handles are remapped per-copy
// so tagged faces remain distinguishable").
func retagFaces(g *sketch.Group, m *mesh.Mesh, copyN int) *mesh.Mesh {
	out := &mesh.Mesh{Triangles: make([]mesh.Triangle, len(m.Triangles))}
	for i, t := range m.Triangles {
		nt := t
		nt.Face = uint32(g.RemapEntity(handle.Entity(t.Face), copyN))
		out.Triangles[i] = nt
	}
	return out
}

// buildStepTranslate makes Copies translated copies of the source mesh,
// skipping the zero copy when SkipFirst is set (spec.md S4.7
// "Step-translate").
func buildStepTranslate(s *sketch.Sketch, g *sketch.Group) (*mesh.Mesh, error) {
	src, err := sourceMesh(s, g)
	if err != nil {
		return nil, err
	}
	delta := geom.Vec{
		X: s.Value(g.ExtrudeVector[0]),
		Y: s.Value(g.ExtrudeVector[1]),
		Z: s.Value(g.ExtrudeVector[2]),
	}
	start, end := copyRange(g)
	out := &mesh.Mesh{}
	for n := start; n <= end; n++ {
		if n == 0 && g.Subtype.SkipFirst {
			continue
		}
		offset := delta.Scale(float64(n))
		copied := src.Transform(func(v geom.Vec) geom.Vec { return v.Add(offset) })
		out.Append(retagFaces(g, copied, n))
	}
	return out, nil
}

// buildStepRotate makes Copies copies of the source mesh rotated about an
// axis, reading the rotation as a Rodrigues vector packed into
// ExtrudeVector (direction = axis, magnitude = per-copy angle in radians)
// pivoting about AxisPoint if set, the world origin otherwise (spec.md
// S4.7 "Step-rotate").
func buildStepRotate(s *sketch.Sketch, g *sketch.Group) (*mesh.Mesh, error) {
	src, err := sourceMesh(s, g)
	if err != nil {
		return nil, err
	}
	rvec := geom.Vec{
		X: s.Value(g.ExtrudeVector[0]),
		Y: s.Value(g.ExtrudeVector[1]),
		Z: s.Value(g.ExtrudeVector[2]),
	}
	angle := rvec.Mag()
	axis := rvec.Normalize()
	var pivot geom.Vec
	if !g.AxisPoint.IsNone() {
		pivot = s.Entities.MustFind(g.AxisPoint).PointPos(s)
	}

	start, end := copyRange(g)
	out := &mesh.Mesh{}
	for n := start; n <= end; n++ {
		if n == 0 && g.Subtype.SkipFirst {
			continue
		}
		q := geom.FromAxisAngle(axis, angle*float64(n))
		copied := src.Transform(func(v geom.Vec) geom.Vec {
			return pivot.Add(q.RotateVec(v.Sub(pivot)))
		})
		out.Append(retagFaces(g, copied, n))
	}
	return out, nil
}
