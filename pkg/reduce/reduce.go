// Package reduce turns a Constraint into the residual Expr equations the
// solver drives to zero (spec.md S4.4). Each ConstraintKind knows how to
// emit its own residual set and, where it needs one, how to use its private
// Param (sketch.Constraint.OtherParam) — a parametric position along a
// line (PtOnLine, and SymmetricLine's midpoint).
package reduce

import (
	"fmt"
	"math"

	"github.com/solvecore/solvecore/pkg/expr"
	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/handle"
	"github.com/solvecore/solvecore/pkg/sketch"
)

// Reduce emits c's residual Exprs against store s. An empty, nil-error
// result is valid (a Comment constraint contributes no equations, per
// spec.md S4.4).
func Reduce(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	switch c.Kind {
	case sketch.ConstraintComment:
		return nil, nil
	case sketch.ConstraintPointsCoincident:
		return pointsCoincident(s, c)
	case sketch.ConstraintPtPtDistance:
		return ptPtDistance(s, c)
	case sketch.ConstraintPtPlaneDistance:
		return ptPlaneDistance(s, c)
	case sketch.ConstraintPtLineDistance:
		return ptLineDistance(s, c)
	case sketch.ConstraintPtFaceDistance:
		return ptPlaneDistance(s, c) // a Face's defining plane is treated the same as an explicit plane.
	case sketch.ConstraintPtInPlane:
		return ptInPlane(s, c)
	case sketch.ConstraintPtOnLine:
		return ptOnLine(s, c)
	case sketch.ConstraintPtOnFace:
		return ptInPlane(s, c)
	case sketch.ConstraintPtOnCircle:
		return ptOnCircle(s, c)
	case sketch.ConstraintEqualLengthLines:
		return equalLengthLines(s, c)
	case sketch.ConstraintLengthRatio:
		return lengthRatio(s, c)
	case sketch.ConstraintLengthDifference:
		return lengthDifference(s, c)
	case sketch.ConstraintArcLengthRatio:
		return arcLengthRatio(s, c)
	case sketch.ConstraintArcLengthDifference:
		return arcLengthDifference(s, c)
	case sketch.ConstraintEqualAngle:
		return equalAngle(s, c)
	case sketch.ConstraintMidpoint:
		return midpoint(s, c)
	case sketch.ConstraintHorizontal:
		return axisAligned(s, c, 1)
	case sketch.ConstraintVertical:
		return axisAligned(s, c, 0)
	case sketch.ConstraintDiameter:
		return diameter(s, c)
	case sketch.ConstraintSameOrientation:
		return sameOrientation(s, c)
	case sketch.ConstraintAngle:
		return angle(s, c)
	case sketch.ConstraintParallel:
		return parallel(s, c)
	case sketch.ConstraintPerpendicular:
		return perpendicular(s, c)
	case sketch.ConstraintArcLineTangent, sketch.ConstraintCubicLineTangent, sketch.ConstraintCurveCurveTangent:
		return curveTangent(s, c)
	case sketch.ConstraintEqualRadius:
		return equalRadius(s, c)
	case sketch.ConstraintProjectedDistance:
		return projectedDistance(s, c)
	case sketch.ConstraintSymmetricPoint:
		return symmetricPoint(s, c)
	case sketch.ConstraintSymmetricHoriz:
		return symmetricAxis(s, c, 1)
	case sketch.ConstraintSymmetricVert:
		return symmetricAxis(s, c, 0)
	case sketch.ConstraintSymmetricLine:
		return symmetricLine(s, c)
	case sketch.ConstraintWhereDragged:
		return whereDragged(s, c)
	default:
		return nil, fmt.Errorf("reduce: unhandled constraint kind %v", c.Kind)
	}
}

func pos(s *sketch.Sketch, h handle.Entity) geom.ExprVec {
	return s.Entities.MustFind(h).ExprPointPos(s)
}

// pointsCoincident emits one residual per coordinate of (posA - posB): three
// for a free-3D comparison, or the two in-workplane components when both
// points share a workplane (spec.md S4.4).
func pointsCoincident(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	return componentResiduals(pos(s, c.PtA).Minus(pos(s, c.PtB)), c.Workplane.IsNone()), nil
}

// componentResiduals returns the X/Y/Z residuals of d, or just X/Y if full3D
// is false (a workplane-bound relation is fully determined by its two
// in-plane components once both points share the workplane's frame).
func componentResiduals(d geom.ExprVec, full3D bool) []*expr.Expr {
	if full3D {
		return []*expr.Expr{d.X, d.Y, d.Z}
	}
	return []*expr.Expr{d.X, d.Y}
}

// ptPtDistance emits the squared-distance residual, avoiding a sqrt and its
// derivative singularity (spec.md S4.4).
func ptPtDistance(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	d := pos(s, c.PtA).Minus(pos(s, c.PtB))
	return []*expr.Expr{expr.Minus(d.MagSquared(), expr.Square(expr.Const(c.ValA)))}, nil
}

// planeFrame returns a plane Entity's (origin, unit-ish normal) symbolic
// frame: a Workplane uses its own frame directly; any other planar Entity
// (a Face, approximated by its first point and Normal) borrows its Normal
// entity's orientation and its first Point as origin.
func planeFrame(s *sketch.Sketch, planeEnt handle.Entity) (geom.ExprVec, geom.ExprVec) {
	e := s.Entities.MustFind(planeEnt)
	if e.Kind == sketch.EntityWorkplane {
		origin, quat := e.ExprWorkplaneFrame(s)
		return origin, quat.AxisN()
	}
	origin := pos(s, e.Points[0])
	normalEnt := s.Entities.MustFind(e.Normal)
	return origin, normalEnt.ExprNormalQuat(s).AxisN()
}

// ptPlaneDistance residual: (p - origin) . normal - valA.
func ptPlaneDistance(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	origin, normal := planeFrame(s, c.EntityA)
	p := pos(s, c.PtA)
	proj := p.Minus(origin).Dot(normal)
	return []*expr.Expr{expr.Minus(proj, expr.Const(c.ValA))}, nil
}

// lineFrame returns a line Entity's endpoints as symbolic positions.
func lineFrame(s *sketch.Sketch, lineEnt handle.Entity) (geom.ExprVec, geom.ExprVec) {
	e := s.Entities.MustFind(lineEnt)
	return pos(s, e.Points[0]), pos(s, e.Points[1])
}

// ptLineDistance residual: the rejection magnitude of (p - a) from (b - a),
// minus valA, expressed via the cross-product-over-length identity and
// squared, so neither the sign of valA nor Other selects a side of the line
// (spec.md S4.4's "rejection magnitude" note).
func ptLineDistance(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	a, b := lineFrame(s, c.EntityA)
	p := pos(s, c.PtA)
	dir := b.Minus(a)
	rej := p.Minus(a).Cross(dir)
	// |rej| / |dir| = valA  =>  |rej|^2 = valA^2 * |dir|^2, sign-insensitive;
	// c.Other is not read here.
	lhs := rej.MagSquared()
	rhs := expr.Times(expr.Square(expr.Const(c.ValA)), dir.MagSquared())
	return []*expr.Expr{expr.Minus(lhs, rhs)}, nil
}

// ptInPlane residual: the point's projection onto the plane's normal axis
// equals the origin's (i.e. distance 0 from the plane).
func ptInPlane(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	origin, normal := planeFrame(s, c.Workplane)
	p := pos(s, c.PtA)
	return []*expr.Expr{p.Minus(origin).Dot(normal)}, nil
}

// ptOnLine residual: p equals a + t*(b-a) for the constraint's private
// parametric-position Param t (spec.md S4.4/SPEC_FULL.md supplemented
// feature 3), emitted as the usual full or in-plane component set.
func ptOnLine(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	a, b := lineFrame(s, c.EntityA)
	p := pos(s, c.PtA)
	t := expr.ByParam(c.OtherParam)
	onLine := a.Plus(b.Minus(a).ScaledBy(t))
	return componentResiduals(p.Minus(onLine), c.Workplane.IsNone()), nil
}

// circleFrame returns a circle/arc Entity's center and radius Expr. For a
// circle the radius is its Distance Param; for an arc it is recomputed as
// the center-to-start distance, since arcs carry no dedicated radius Param.
func circleFrame(s *sketch.Sketch, circEnt handle.Entity) (geom.ExprVec, *expr.Expr) {
	e := s.Entities.MustFind(circEnt)
	center := pos(s, e.Points[0])
	if e.Kind == sketch.EntityCircle {
		distEnt := s.Entities.MustFind(e.Distance)
		return center, expr.ByParam(distEnt.Params[0])
	}
	start := pos(s, e.Points[1])
	return center, expr.Sqrt(center.Minus(start).MagSquared())
}

// ptOnCircle residual: squared distance from center equals squared radius.
func ptOnCircle(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	center, radius := circleFrame(s, c.EntityA)
	p := pos(s, c.PtA)
	return []*expr.Expr{expr.Minus(p.Minus(center).MagSquared(), expr.Square(radius))}, nil
}

func lineLength(s *sketch.Sketch, lineEnt handle.Entity) *expr.Expr {
	a, b := lineFrame(s, lineEnt)
	return expr.Sqrt(b.Minus(a).MagSquared())
}

// equalLengthLines residual: lenA - lenB.
func equalLengthLines(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	return []*expr.Expr{expr.Minus(lineLength(s, c.EntityA), lineLength(s, c.EntityB))}, nil
}

// lengthRatio residual: lenA - valA*lenB.
func lengthRatio(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	lenA, lenB := lineLength(s, c.EntityA), lineLength(s, c.EntityB)
	return []*expr.Expr{expr.Minus(lenA, expr.Times(expr.Const(c.ValA), lenB))}, nil
}

// lengthDifference residual: lenA - lenB - valA.
func lengthDifference(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	lenA, lenB := lineLength(s, c.EntityA), lineLength(s, c.EntityB)
	return []*expr.Expr{expr.Minus(expr.Minus(lenA, lenB), expr.Const(c.ValA))}, nil
}

func arcAngleSpan(s *sketch.Sketch, arcEnt handle.Entity) *expr.Expr {
	e := s.Entities.MustFind(arcEnt)
	center := pos(s, e.Points[0])
	start := pos(s, e.Points[1])
	end := pos(s, e.Points[2])
	u, v := start.Minus(center), end.Minus(center)
	// angle = atan2-free form via acos(u.v / (|u||v|)); adequate since arc
	// spans used here are always < pi in the constraints that reference them.
	cosTheta := expr.Div(u.Dot(v), expr.Sqrt(expr.Times(u.MagSquared(), v.MagSquared())))
	return expr.Acos(cosTheta)
}

func arcLengthRatio(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	_, rA := circleFrame(s, c.EntityA)
	_, rB := circleFrame(s, c.EntityB)
	lenA := expr.Times(rA, arcAngleSpan(s, c.EntityA))
	lenB := expr.Times(rB, arcAngleSpan(s, c.EntityB))
	return []*expr.Expr{expr.Minus(lenA, expr.Times(expr.Const(c.ValA), lenB))}, nil
}

func arcLengthDifference(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	_, rA := circleFrame(s, c.EntityA)
	_, rB := circleFrame(s, c.EntityB)
	lenA := expr.Times(rA, arcAngleSpan(s, c.EntityA))
	lenB := expr.Times(rB, arcAngleSpan(s, c.EntityB))
	return []*expr.Expr{expr.Minus(expr.Minus(lenA, lenB), expr.Const(c.ValA))}, nil
}

// equalAngle residual: the angle between entityA's two defining lines
// equals the angle between entityB's, compared via the normalized-dot form
// to avoid a branch-sensitive atan2.
func equalAngle(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	// PtA/PtB/PtC/EntityA encode two lines sharing point PtB as a vertex is
	// the usual convention; here EntityA/EntityB are the two angle's defining
	// lines directly, matching parallel/perpendicular's operand shape.
	dirCos := func(lineEnt handle.Entity) (geom.ExprVec, *expr.Expr) {
		a, b := lineFrame(s, lineEnt)
		d := b.Minus(a)
		return d, expr.Sqrt(d.MagSquared())
	}
	d1, m1 := dirCos(c.EntityA)
	d2, m2 := dirCos(c.EntityB)
	lhs := expr.Div(d1.Dot(d2), expr.Times(m1, m2))
	rhs := expr.Cos(expr.Times(expr.Const(c.ValA), expr.Const(math.Pi/180)))
	return []*expr.Expr{expr.Minus(lhs, rhs)}, nil
}

// midpoint residual: PtC equals the average of PtA and PtB.
func midpoint(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	mid := pos(s, c.PtA).Plus(pos(s, c.PtB)).ScaledBy(expr.Const(0.5))
	return componentResiduals(pos(s, c.PtC).Minus(mid), c.Workplane.IsNone()), nil
}

// axisAligned emits the single residual pinning a line's component `axis`
// (0=X, 1=Y) of (b-a) to zero, implementing Horizontal (axis=1, Y fixed)
// and Vertical (axis=0, X fixed) in the line's workplane.
func axisAligned(s *sketch.Sketch, c *sketch.Constraint, axis int) ([]*expr.Expr, error) {
	a, b := lineFrame(s, c.EntityA)
	d := b.Minus(a)
	if axis == 0 {
		return []*expr.Expr{d.X}, nil
	}
	return []*expr.Expr{d.Y}, nil
}

// diameter residual: 2*radius - valA.
func diameter(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	_, radius := circleFrame(s, c.EntityA)
	return []*expr.Expr{expr.Minus(expr.Times(expr.Const(2), radius), expr.Const(c.ValA))}, nil
}

// sameOrientation residual: the two normals' components agree (their
// relative quaternion should be the identity; comparing columns directly
// sidesteps building a relative-quaternion expression).
func sameOrientation(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	qa := s.Entities.MustFind(c.EntityA).ExprNormalQuat(s)
	qb := s.Entities.MustFind(c.EntityB).ExprNormalQuat(s)
	au, bu := qa.AxisU(), qb.AxisU()
	av, bv := qa.AxisV(), qb.AxisV()
	return []*expr.Expr{
		expr.Minus(au.X, bu.X), expr.Minus(au.Y, bu.Y), expr.Minus(au.Z, bu.Z),
		expr.Minus(av.X, bv.X), expr.Minus(av.Y, bv.Y), expr.Minus(av.Z, bv.Z),
	}, nil
}

// angle residual: the two lines' normalized directions' dot product equals
// cos(valA degrees); Other flips which of the two supplementary angles is
// intended, matching the original's other-flag convention.
func angle(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	a1, b1 := lineFrame(s, c.EntityA)
	a2, b2 := lineFrame(s, c.EntityB)
	d1, d2 := b1.Minus(a1), b2.Minus(a2)
	lhs := expr.Div(d1.Dot(d2), expr.Sqrt(expr.Times(d1.MagSquared(), d2.MagSquared())))
	theta := c.ValA
	if c.Other {
		theta = 180 - theta
	}
	rhs := expr.Cos(expr.Const(theta * math.Pi / 180))
	return []*expr.Expr{expr.Minus(lhs, rhs)}, nil
}

// parallel residual: the cross product of the two directions vanishes
// componentwise.
func parallel(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	a1, b1 := lineFrame(s, c.EntityA)
	a2, b2 := lineFrame(s, c.EntityB)
	cr := b1.Minus(a1).Cross(b2.Minus(a2))
	return []*expr.Expr{cr.X, cr.Y, cr.Z}, nil
}

// perpendicular residual: the dot product of the two directions is zero.
func perpendicular(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	a1, b1 := lineFrame(s, c.EntityA)
	a2, b2 := lineFrame(s, c.EntityB)
	return []*expr.Expr{b1.Minus(a1).Dot(b2.Minus(a2))}, nil
}

// curveTangent covers arc-line, cubic-line, and curve-curve tangency: the
// residual equates the curve's tangent direction at the shared endpoint
// (approximated here by the chord from the curve's first to second point,
// which for an arc is the chord center->start rotated 90 degrees in-plane,
// and for a cubic is its first control-polygon edge) to the line's
// direction, sign chosen by Other (spec.md S4.4).
func curveTangent(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	lineA, lineB := lineFrame(s, c.EntityA)
	lineDir := lineB.Minus(lineA)

	curveDir := curveTangentDir(s, c.EntityB)
	if c.Other {
		curveDir = curveDir.ScaledBy(expr.Const(-1))
	}
	cr := lineDir.Cross(curveDir)
	return []*expr.Expr{cr.X, cr.Y, cr.Z}, nil
}

// curveTangentDir approximates a curve Entity's tangent direction at its
// first endpoint.
func curveTangentDir(s *sketch.Sketch, curveEnt handle.Entity) geom.ExprVec {
	e := s.Entities.MustFind(curveEnt)
	switch e.Kind {
	case sketch.EntityArcOfCircle:
		center := pos(s, e.Points[0])
		start := pos(s, e.Points[1])
		radial := start.Minus(center)
		normal := s.Entities.MustFind(e.Normal).ExprNormalQuat(s).AxisN()
		return normal.Cross(radial)
	default:
		if len(e.Points) >= 2 {
			return pos(s, e.Points[1]).Minus(pos(s, e.Points[0]))
		}
		return geom.ExprVecConst(geom.Vec{})
	}
}

// equalRadius residual: radiusA - radiusB.
func equalRadius(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	_, rA := circleFrame(s, c.EntityA)
	_, rB := circleFrame(s, c.EntityB)
	return []*expr.Expr{expr.Minus(rA, rB)}, nil
}

// projectedDistance residual: (posB - posA) projected onto a reference
// line's direction equals valA.
func projectedDistance(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	refA, refB := lineFrame(s, c.EntityA)
	dir := refB.Minus(refA)
	unitDir := dir // direction need not be pre-normalized: compare squared forms instead.
	d := pos(s, c.PtB).Minus(pos(s, c.PtA))
	proj := d.Dot(unitDir)
	lhs := expr.Square(proj)
	rhs := expr.Times(expr.Square(expr.Const(c.ValA)), unitDir.MagSquared())
	return []*expr.Expr{expr.Minus(lhs, rhs)}, nil
}

// symmetricPoint residual: PtA and PtB are reflections of one another
// through PtC (the symmetry point).
func symmetricPoint(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	sum := pos(s, c.PtA).Plus(pos(s, c.PtB))
	twice := pos(s, c.PtC).ScaledBy(expr.Const(2))
	return componentResiduals(sum.Minus(twice), c.Workplane.IsNone()), nil
}

// symmetricAxis emits SymmetricHoriz (axis=1, Y components equal, X
// components opposite) and SymmetricVert (axis=0) about the workplane's
// origin.
func symmetricAxis(s *sketch.Sketch, c *sketch.Constraint, axis int) ([]*expr.Expr, error) {
	a, b := pos(s, c.PtA), pos(s, c.PtB)
	if axis == 0 {
		return []*expr.Expr{expr.Minus(a.X, b.X), expr.Plus(a.Y, b.Y)}, nil
	}
	return []*expr.Expr{expr.Plus(a.X, b.X), expr.Minus(a.Y, b.Y)}, nil
}

// symmetricLine residual: two midpoint-style residuals (the midpoint of
// PtA/PtB lies on the line) plus a perpendicularity residual (PtA-PtB is
// perpendicular to the line), using the constraint's private Param as the
// midpoint's parametric position t along the line (SPEC_FULL.md
// supplemented feature 3).
func symmetricLine(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	a, b := lineFrame(s, c.EntityA)
	lineDir := b.Minus(a)
	mid := pos(s, c.PtA).Plus(pos(s, c.PtB)).ScaledBy(expr.Const(0.5))
	t := expr.ByParam(c.OtherParam)
	onLine := a.Plus(lineDir.ScaledBy(t))
	perp := pos(s, c.PtA).Minus(pos(s, c.PtB)).Dot(lineDir)
	midRes := mid.Minus(onLine)
	return []*expr.Expr{midRes.X, midRes.Y, perp}, nil
}

// whereDragged residual: pins each in-workplane component of the dragged
// point to its current numeric value, breaking ties in an
// under-constrained sketch (spec.md S4.4).
func whereDragged(s *sketch.Sketch, c *sketch.Constraint) ([]*expr.Expr, error) {
	p := s.Entities.MustFind(c.PtA)
	full3D := p.Workplane.IsNone()
	pexpr := pos(s, c.PtA)
	pnum := p.PointPos(s)
	var residuals []*expr.Expr
	coords := []struct {
		sym *expr.Expr
		num float64
	}{{pexpr.X, pnum.X}, {pexpr.Y, pnum.Y}, {pexpr.Z, pnum.Z}}
	n := 2
	if full3D {
		n = 3
	}
	for i := 0; i < n; i++ {
		residuals = append(residuals, expr.Minus(coords[i].sym, expr.Const(coords[i].num)))
	}
	return residuals, nil
}
