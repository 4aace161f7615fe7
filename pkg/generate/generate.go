package generate

import (
	"fmt"

	"github.com/solvecore/solvecore/pkg/handle"
	"github.com/solvecore/solvecore/pkg/sketch"
)

// localAllocator yields sequential local indices for Entities and Params
// derived from one Request's handle. Two allocators built the same way
// against the same Request always hand out the same sequence, which is
// what makes Generate idempotent (spec.md S4.3's "handle derivation is
// fixed arithmetic... so that regeneration is idempotent").
type localAllocator struct {
	reqIdx     uint32
	entityNext uint32
	paramNext  uint32
}

func (a *localAllocator) entity() handle.Entity {
	h := handle.DeriveEntity(a.reqIdx, a.entityNext)
	a.entityNext++
	return h
}

func (a *localAllocator) param() handle.Param {
	h := handle.DeriveParam(a.reqIdx, a.paramNext)
	a.paramNext++
	return h
}

// Generate expands r into its Entities and Params, inserting them into s.
// The caller (pkg/regen) is responsible for having already cleared any
// previous generation of r so regeneration does not collide with itself.
func Generate(s *sketch.Sketch, r *sketch.Request) error {
	a := &localAllocator{reqIdx: uint32(r.H)}

	switch r.Kind {
	case sketch.RequestDatumPoint:
		return genDatumPoint(s, r, a)
	case sketch.RequestLineSegment:
		return genLineSegment(s, r, a)
	case sketch.RequestCubic, sketch.RequestCubicPeriodic:
		return genCubic(s, r, a)
	case sketch.RequestCircle:
		return genCircle(s, r, a)
	case sketch.RequestArcOfCircle:
		return genArc(s, r, a)
	case sketch.RequestTTFText:
		return genTTFText(s, r, a)
	case sketch.RequestWorkplane:
		return genWorkplane(s, r, a)
	default:
		return fmt.Errorf("generate: unknown request kind %v", r.Kind)
	}
}

// addPoint emits one point Entity owned by r, workplane-bound (2D, 2 Params)
// if onWorkplane is set or free (3D, 3 Params) otherwise.
func addPoint(s *sketch.Sketch, r *sketch.Request, a *localAllocator, onWorkplane handle.Entity) handle.Entity {
	h := a.entity()
	kind := sketch.EntityPoint3D
	n := 3
	if !onWorkplane.IsNone() {
		kind = sketch.EntityPoint2D
		n = 2
	}
	params := make([]handle.Param, n)
	for i := range params {
		params[i] = a.param()
	}
	e := &sketch.Entity{
		H: h, Kind: kind, Group: r.Group, Workplane: onWorkplane,
		Params: params, Construction: r.Construction,
	}
	s.AddEntity(e)
	for _, p := range params {
		s.AddParam(p, r.Group, 0)
	}
	return h
}

// addNormal emits a normal Entity: workplane-bound 2D normals are
// Param-less copies of the workplane's own normal (spec.md S4.3); a free 3D
// normal consumes 4 Params forming a quaternion, initialized to the
// identity orientation.
func addNormal(s *sketch.Sketch, r *sketch.Request, a *localAllocator, onWorkplane handle.Entity) handle.Entity {
	h := a.entity()
	if onWorkplane.IsNone() {
		params := []handle.Param{a.param(), a.param(), a.param(), a.param()}
		e := &sketch.Entity{H: h, Kind: sketch.EntityNormal3D, Group: r.Group, Params: params, Construction: r.Construction}
		s.AddEntity(e)
		init := [4]float64{1, 0, 0, 0}
		for i, p := range params {
			s.AddParam(p, r.Group, init[i])
		}
		return h
	}
	e := &sketch.Entity{H: h, Kind: sketch.EntityNormal2D, Group: r.Group, Workplane: onWorkplane, Construction: r.Construction}
	s.AddEntity(e)
	return h
}

// addDistance emits a distance Entity consuming one Param (spec.md S4.3).
func addDistance(s *sketch.Sketch, r *sketch.Request, a *localAllocator, initial float64) handle.Entity {
	h := a.entity()
	p := a.param()
	e := &sketch.Entity{H: h, Kind: sketch.EntityDistance, Group: r.Group, Params: []handle.Param{p}, Construction: r.Construction}
	s.AddEntity(e)
	s.AddParam(p, r.Group, initial)
	return h
}

func genDatumPoint(s *sketch.Sketch, r *sketch.Request, a *localAllocator) error {
	addPoint(s, r, a, r.Workplane)
	return nil
}

func genLineSegment(s *sketch.Sketch, r *sketch.Request, a *localAllocator) error {
	p0 := addPoint(s, r, a, r.Workplane)
	p1 := addPoint(s, r, a, r.Workplane)

	var normal handle.Entity
	if !r.Workplane.IsNone() {
		normal = s.Entities.MustFind(r.Workplane).Normal
	}

	line := &sketch.Entity{
		H: a.entity(), Kind: sketch.EntityLineSegment, Group: r.Group, Workplane: r.Workplane,
		Points: []handle.Entity{p0, p1}, Normal: normal, Construction: r.Construction,
	}
	s.AddEntity(line)
	return nil
}

func genCubic(s *sketch.Sketch, r *sketch.Request, a *localAllocator) error {
	n := 4 + r.ExtraPoints
	if n < 4 {
		n = 4
	}
	pts := make([]handle.Entity, n)
	for i := range pts {
		pts[i] = addPoint(s, r, a, r.Workplane)
	}

	kind := sketch.EntityCubic
	if r.Kind == sketch.RequestCubicPeriodic {
		kind = sketch.EntityCubicPeriodic
	}
	var normal handle.Entity
	if !r.Workplane.IsNone() {
		normal = s.Entities.MustFind(r.Workplane).Normal
	}

	e := &sketch.Entity{
		H: a.entity(), Kind: kind, Group: r.Group, Workplane: r.Workplane,
		Points: pts, Normal: normal, Construction: r.Construction,
	}
	s.AddEntity(e)
	return nil
}

func genCircle(s *sketch.Sketch, r *sketch.Request, a *localAllocator) error {
	if r.Workplane.IsNone() {
		return fmt.Errorf("%w: circle request %v", ErrMissingWorkplane, r.H)
	}
	center := addPoint(s, r, a, r.Workplane)
	normal := addNormal(s, r, a, r.Workplane)
	dist := addDistance(s, r, a, 10)

	circle := &sketch.Entity{
		H: a.entity(), Kind: sketch.EntityCircle, Group: r.Group, Workplane: r.Workplane,
		Points: []handle.Entity{center}, Normal: normal, Distance: dist, Construction: r.Construction,
	}
	s.AddEntity(circle)
	return nil
}

func genArc(s *sketch.Sketch, r *sketch.Request, a *localAllocator) error {
	if r.Workplane.IsNone() {
		return fmt.Errorf("%w: arc request %v", ErrMissingWorkplane, r.H)
	}
	center := addPoint(s, r, a, r.Workplane)
	start := addPoint(s, r, a, r.Workplane)
	end := addPoint(s, r, a, r.Workplane)
	normal := addNormal(s, r, a, r.Workplane)

	arc := &sketch.Entity{
		H: a.entity(), Kind: sketch.EntityArcOfCircle, Group: r.Group, Workplane: r.Workplane,
		Points: []handle.Entity{center, start, end}, Normal: normal, Construction: r.Construction,
	}
	s.AddEntity(arc)
	return nil
}

func genTTFText(s *sketch.Sketch, r *sketch.Request, a *localAllocator) error {
	if r.Str == "" {
		return fmt.Errorf("%w: request %v", ErrEmptyText, r.H)
	}
	origin := addPoint(s, r, a, r.Workplane)
	var normal handle.Entity
	if !r.Workplane.IsNone() {
		normal = s.Entities.MustFind(r.Workplane).Normal
	}

	e := &sketch.Entity{
		H: a.entity(), Kind: sketch.EntityTTFText, Group: r.Group, Workplane: r.Workplane,
		Points: []handle.Entity{origin}, Normal: normal, Text: r.Str, Construction: r.Construction,
	}
	s.AddEntity(e)
	return nil
}

// genWorkplane generates a user-created workplane: a free 3D origin point
// plus a free 3D normal, wired together by the primary Workplane Entity.
// Unlike every other kind, the generated origin/normal are always free —
// SolveSpace's workplane-on-workplane nesting is a Non-goal here.
func genWorkplane(s *sketch.Sketch, r *sketch.Request, a *localAllocator) error {
	origin := addPoint(s, r, a, handle.Entity(handle.None))
	normal := addNormal(s, r, a, handle.Entity(handle.None))

	wp := &sketch.Entity{
		H: a.entity(), Kind: sketch.EntityWorkplane, Group: r.Group,
		Points: []handle.Entity{origin}, Normal: normal, Construction: r.Construction,
	}
	s.AddEntity(wp)
	return nil
}
