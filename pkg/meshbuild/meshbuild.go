// Package meshbuild turns a solved Group's own geometry into its thisMesh
// contribution (spec.md S4.7): extrude, lathe, sweep, helical sweep,
// step-and-repeat, and imported assemblies. Each builder is a named entry
// in a registry, the way pkg/carving.CarverRegistry looks up a named
// Carver to turn an abstract layout into a concrete tile map — here the
// lookup key is the Group's Kind rather than a user-chosen string, since
// every Group already carries the kind that decides its builder.
package meshbuild

import (
	"github.com/solvecore/solvecore/pkg/mesh"
	"github.com/solvecore/solvecore/pkg/sketch"
)

// Builder turns one Group's own parameters (and, for sketch-consuming
// kinds, its SourceGroup's polygon) into that Group's thisMesh.
type Builder func(s *sketch.Sketch, g *sketch.Group) (*mesh.Mesh, error)

var registry = map[sketch.GroupKind]Builder{
	sketch.GroupExtrude:       buildExtrude,
	sketch.GroupLathe:         buildLathe,
	sketch.GroupSweep:         buildSweep,
	sketch.GroupHelicalSweep:  buildHelicalSweep,
	sketch.GroupStepTranslate: buildStepTranslate,
	sketch.GroupStepRotate:    buildStepRotate,
	sketch.GroupLinked:        buildImported,
}

// Build dispatches on g.Kind. Drawing groups (3D/workplane) contribute no
// mesh of their own; they exist purely to hold the Requests/Entities later
// groups build from (spec.md S4.6 step 3: "Build thisMesh by invoking the
// appropriate per-group builder").
func Build(s *sketch.Sketch, g *sketch.Group) (*mesh.Mesh, error) {
	switch g.Kind {
	case sketch.GroupDrawing3D, sketch.GroupDrawingWorkplane:
		return &mesh.Mesh{}, nil
	}
	b, ok := registry[g.Kind]
	if !ok {
		return nil, ErrUnknownGroupKind
	}
	return b(s, g)
}
