package meshbuild

import (
	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/mesh"
	"github.com/solvecore/solvecore/pkg/sketch"
)

// LinkedMeshLoader resolves a Linked Group's cached triangle set from its
// LinkedPath, standing in for the File sink collaborator spec.md S6
// describes ("Linked/imported Groups carry a cached mesh loaded from disk
// and are re-read on a user-triggered reload"). Hosts embedding solvecore
// must set this to read their own cached assemblies; the zero-value loader
// returns an empty mesh so an unconfigured host fails soft rather than
// panicking mid-regeneration.
var LinkedMeshLoader = func(path string) (*mesh.Mesh, error) { return &mesh.Mesh{}, nil }

// buildImported loads the cached mesh and applies the Group's rigid
// transform: rotate about the origin by the quaternion, then translate
// (spec.md S4.7 "Imported").
func buildImported(s *sketch.Sketch, g *sketch.Group) (*mesh.Mesh, error) {
	cached, err := LinkedMeshLoader(g.LinkedPath)
	if err != nil {
		return nil, err
	}
	t := g.LinkedTransform
	translation := geom.Vec{X: s.Value(t[0]), Y: s.Value(t[1]), Z: s.Value(t[2])}
	q := geom.Quat{W: s.Value(t[3]), X: s.Value(t[4]), Y: s.Value(t[5]), Z: s.Value(t[6])}.Normalize()
	return cached.Transform(func(v geom.Vec) geom.Vec {
		return q.RotateVec(v).Add(translation)
	}), nil
}
