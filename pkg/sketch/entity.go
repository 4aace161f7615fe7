package sketch

import (
	"fmt"

	"github.com/solvecore/solvecore/pkg/expr"
	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/handle"
)

// EntityKind enumerates the geometric primitive variants spec.md S3 lists.
type EntityKind int

const (
	EntityPoint3D EntityKind = iota
	EntityPoint2D
	EntityPointTransformed
	EntityNormal3D
	EntityNormal2D
	EntityNormalTransformed
	EntityDistance
	EntityWorkplane
	EntityLineSegment
	EntityCubic
	EntityCubicPeriodic
	EntityCircle
	EntityArcOfCircle
	EntityTTFText
	EntityFace
)

func (k EntityKind) String() string {
	names := [...]string{
		"Point3D", "Point2D", "PointTransformed",
		"Normal3D", "Normal2D", "NormalTransformed",
		"Distance", "Workplane", "LineSegment", "Cubic", "CubicPeriodic",
		"Circle", "ArcOfCircle", "TTFText", "Face",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("EntityKind(%d)", int(k))
}

// Entity is a geometric primitive produced by a Request or a Group
// (spec.md S3). A single tagged struct carries every variant's payload,
// following the teacher's plain-struct-plus-Kind-field dispatch style
// (pkg/graph/room.go) rather than an interface hierarchy, per spec.md S9's
// sum-type-dispatch guidance.
type Entity struct {
	H     handle.Entity
	Kind  EntityKind
	Group handle.Group

	// Workplane is the owning workplane's handle for workplane-bound
	// entities, or handle.None for free (3D) entities.
	Workplane handle.Entity

	// Params lists the Params this entity directly owns: 2 or 3 coordinate
	// Params for a point, 4 quaternion Params for a free 3D normal, 1 Param
	// for a distance entity. Workplane-bound normals own no Params (they
	// copy the workplane's normal).
	Params []handle.Param

	// Points lists sub-entity point handles this entity is built from, in
	// kind-specific order (e.g. [start, end] for a line segment, [center,
	// start, end] for an arc, four control points for a cubic).
	Points []handle.Entity

	// Normal is the associated normal entity handle: an arc/circle/
	// workplane's defining normal, or a line's implicit in-plane normal.
	Normal handle.Entity

	// Distance is the associated distance entity handle (a circle/arc's
	// radius, or a point-point distance dimension).
	Distance handle.Entity

	// Text is the embedded string for a TTFText entity.
	Text string

	// Construction marks the entity as non-load-bearing geometry (copied
	// from the generating Request).
	Construction bool
}

// PointPos evaluates a point entity's numeric position using the given
// sketch for Param lookups. For a 2D (on-workplane) point, u/v are resolved
// through the owning workplane's origin and axes.
func (e *Entity) PointPos(s *Sketch) geom.Vec {
	switch e.Kind {
	case EntityPoint3D, EntityPointTransformed:
		return geom.Vec{
			X: s.Value(e.Params[0]),
			Y: s.Value(e.Params[1]),
			Z: s.Value(e.Params[2]),
		}
	case EntityPoint2D:
		u := s.Value(e.Params[0])
		v := s.Value(e.Params[1])
		wp := s.Entities.MustFind(e.Workplane)
		origin, normal := wp.WorkplaneFrame(s)
		axisU, axisV := normal.AxisU(), normal.AxisV()
		return origin.Add(axisU.Scale(u)).Add(axisV.Scale(v))
	default:
		return geom.Vec{}
	}
}

// ExprPointPos builds the symbolic world-space position of a point entity,
// used by constraint reduction to build residuals (spec.md S4.4). For a
// workplane-bound point it projects the point's u,v Params through the
// workplane's symbolic origin and orientation, so the analytic Jacobian
// sees the full nonlinear dependency on the workplane's own Params.
func (e *Entity) ExprPointPos(s *Sketch) geom.ExprVec {
	switch e.Kind {
	case EntityPoint3D, EntityPointTransformed:
		return geom.ExprVecFromParams(e.Params[0], e.Params[1], e.Params[2])
	case EntityPoint2D:
		u := expr.ByParam(e.Params[0])
		v := expr.ByParam(e.Params[1])
		wp := s.Entities.MustFind(e.Workplane)
		origin, quat := wp.ExprWorkplaneFrame(s)
		axisU, axisV := quat.AxisU(), quat.AxisV()
		return origin.Plus(axisU.ScaledBy(u)).Plus(axisV.ScaledBy(v))
	default:
		return geom.ExprVec{X: expr.Const(0), Y: expr.Const(0), Z: expr.Const(0)}
	}
}

// ExprWorkplaneFrame returns a workplane entity's symbolic origin position
// and orientation quaternion.
func (e *Entity) ExprWorkplaneFrame(s *Sketch) (geom.ExprVec, geom.ExprQuat) {
	if e.Kind != EntityWorkplane {
		Fatal(fmt.Sprintf("sketch: ExprWorkplaneFrame called on non-workplane entity %v", e.H))
	}
	origin := s.Entities.MustFind(e.Points[0]).ExprPointPos(s)
	normalEnt := s.Entities.MustFind(e.Normal)
	return origin, normalEnt.ExprNormalQuat(s)
}

// ExprNormalQuat builds a normal entity's symbolic orientation quaternion.
func (e *Entity) ExprNormalQuat(s *Sketch) geom.ExprQuat {
	switch e.Kind {
	case EntityNormal3D, EntityNormalTransformed:
		return geom.ExprQuat{
			W: expr.ByParam(e.Params[0]),
			X: expr.ByParam(e.Params[1]),
			Y: expr.ByParam(e.Params[2]),
			Z: expr.ByParam(e.Params[3]),
		}
	case EntityNormal2D:
		wp := s.Entities.MustFind(e.Workplane)
		_, q := wp.ExprWorkplaneFrame(s)
		return q
	default:
		return geom.ExprQuatConst(geom.Identity)
	}
}

// WorkplaneFrame returns a workplane entity's origin position and
// orientation quaternion.
func (e *Entity) WorkplaneFrame(s *Sketch) (geom.Vec, geom.Quat) {
	if e.Kind != EntityWorkplane {
		Fatal(fmt.Sprintf("sketch: WorkplaneFrame called on non-workplane entity %v", e.H))
	}
	origin := s.Entities.MustFind(e.Points[0]).PointPos(s)
	normalEnt := s.Entities.MustFind(e.Normal)
	return origin, normalEnt.NormalQuat(s)
}

// NormalQuat evaluates a normal entity's orientation quaternion.
func (e *Entity) NormalQuat(s *Sketch) geom.Quat {
	switch e.Kind {
	case EntityNormal3D, EntityNormalTransformed:
		return geom.Quat{
			W: s.Value(e.Params[0]),
			X: s.Value(e.Params[1]),
			Y: s.Value(e.Params[2]),
			Z: s.Value(e.Params[3]),
		}.Normalize()
	case EntityNormal2D:
		wp := s.Entities.MustFind(e.Workplane)
		_, q := wp.WorkplaneFrame(s)
		return q
	default:
		return geom.Identity
	}
}

// AddEntity inserts e into the store, fatally erroring on a handle
// collision (a generation bug, not user input).
func (s *Sketch) AddEntity(e *Entity) {
	if err := s.Entities.Add(e.H, e); err != nil {
		Fatal(err.Error())
	}
}

// EntityExists reports whether h names a live Entity.
func (s *Sketch) EntityExists(h handle.Entity) bool {
	_, ok := s.Entities.FindByID(h)
	return ok
}
