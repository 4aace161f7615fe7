// Package surfinter computes the 3D curves where two surfaces cross
// (spec.md S4.11): a plane/plane pair (a single line), a plane/cylinder pair
// (two lines, a tangent line, a circle, or empty, picked by a radical-axis
// style distance test), and a general pair of any other kind (recursive
// UV-midpoint subdivision down to flat polygon patches, each split against
// the target shell). It is grounded on original_source/srf/surfinter.cpp
// for the plane/plane closed form and the overall "closed form first,
// subdivide as the fallback" shape; no teacher analogue of a NURBS
// intersector exists, so the subdivision fallback's structure is built
// directly from spec.md's description.
package surfinter

import (
	"errors"
	"math"

	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/mesh"
)

// lengthEps mirrors the original's LENGTH_EPS: below this, two directions
// count as parallel and a distance counts as zero.
const lengthEps = 1e-6

// Curve is an intersection result: an ordered polyline. A circle is returned
// as two polylines (arcs) split at opposite ends of a diameter, matching
// spec.md S4.11's "two arcs" wording for the degenerate perpendicular case.
type Curve struct {
	Points []geom.Vec
}

// Plane is an infinite plane through Point with unit Normal.
type Plane struct {
	Point  geom.Vec
	Normal geom.Vec
}

// Cylinder is an infinite right circular cylinder: the surface at distance
// Radius from the line through Origin along unit Axis.
type Cylinder struct {
	Origin geom.Vec
	Axis   geom.Vec
	Radius float64
}

// ErrGeneralCase is returned by PlaneCylinder when the plane is skew to the
// cylinder's axis (neither parallel nor perpendicular to it); the caller
// should fall back to Subdivide.
var ErrGeneralCase = errors.New("surfinter: plane is skew to cylinder axis, use Subdivide")

// PlanePlane intersects two planes, returning the line of intersection
// clipped to a fixed span around the point closest to both planes' origins,
// or ok=false for parallel (or coincident) planes — a direct port of
// surfinter.cpp's plane/plane branch, generalized from clipping against a
// surface's control-point diagonal to a fixed span since solvecore plane
// values carry no patch extent of their own.
func PlanePlane(a, b Plane) (Curve, bool) {
	na := a.Normal.Normalize()
	nb := b.Normal.Normalize()

	d := na.Cross(nb)
	if d.Mag() < lengthEps {
		return Curve{}, false
	}

	inter := intersectionOfPlanes(na, na.Dot(a.Point), nb, nb.Dot(b.Point))

	const span = 1e4
	dir := d.Normalize()
	return Curve{Points: []geom.Vec{
		inter.Sub(dir.Scale(span)),
		inter.Add(dir.Scale(span)),
	}}, true
}

// intersectionOfPlanes returns a point on the line common to the two planes
// na.X = da and nb.X = db, by solving the 2x2 system in the plane spanned by
// na and nb (the same construction as Vector::AtIntersectionOfPlanes).
func intersectionOfPlanes(na geom.Vec, da float64, nb geom.Vec, db float64) geom.Vec {
	// Solve for a point in the na,nb plane: p = na*alpha + nb*beta, picking
	// alpha, beta so that p.na = da and p.nb = db.
	nana := na.Dot(na)
	nanb := na.Dot(nb)
	nbnb := nb.Dot(nb)
	det := nana*nbnb - nanb*nanb
	if det < lengthEps*lengthEps {
		return geom.Vec{}
	}
	alpha := (da*nbnb - db*nanb) / det
	beta := (db*nana - da*nanb) / det
	return na.Scale(alpha).Add(nb.Scale(beta))
}

// PlaneCylinder intersects a plane against a cylinder, dispatching on the
// angle between the plane's normal and the cylinder's axis (spec.md S4.11's
// "radical axis test"):
//
//   - normal parallel to axis: the plane cuts a circular cross-section,
//     returned as two half-circle arcs.
//   - normal perpendicular to axis: the plane is parallel to the axis, and
//     its intersection with the cylinder reduces to a line/circle test in
//     the 2D cross-section perpendicular to the axis — two lines, one
//     tangent line, or none, exactly the discriminant (radical-axis) test
//     used for a 2D line against a circle.
//   - any other angle: ErrGeneralCase; the caller should fall back to
//     Subdivide.
func PlaneCylinder(p Plane, c Cylinder) ([]Curve, error) {
	n := p.Normal.Normalize()
	axis := c.Axis.Normalize()

	cosAngle := n.Dot(axis)
	switch {
	case absF(cosAngle) > 1-lengthEps:
		return circleCrossSection(p, c, axis)
	case absF(cosAngle) < lengthEps:
		return lineCrossSection(p, c, axis)
	default:
		return nil, ErrGeneralCase
	}
}

// circleCrossSection handles the plane-perpendicular-to-axis case: the
// plane's own origin, projected onto the axis, gives the circle's center;
// the circle is split into two arcs at opposite ends of an arbitrary
// diameter so each half remains a simple polyline once sampled.
func circleCrossSection(p Plane, c Cylinder, axis geom.Vec) ([]Curve, error) {
	t := p.Point.Sub(c.Origin).Dot(axis)
	center := c.Origin.Add(axis.Scale(t))

	u, v := perpBasis(axis)
	const samples = 16
	first := make([]geom.Vec, 0, samples/2+1)
	second := make([]geom.Vec, 0, samples/2+1)
	for i := 0; i <= samples; i++ {
		theta := 2 * math.Pi * float64(i) / float64(samples)
		pt := center.Add(u.Scale(c.Radius * math.Cos(theta))).Add(v.Scale(c.Radius * math.Sin(theta)))
		if i <= samples/2 {
			first = append(first, pt)
		}
		if i >= samples/2 {
			second = append(second, pt)
		}
	}
	return []Curve{{Points: first}, {Points: second}}, nil
}

// lineCrossSection handles the plane-parallel-to-axis case via the
// discriminant (radical axis) test against the cylinder's circular
// cross-section: d is the perpendicular distance from the axis to the
// plane; d > r is empty, d == r is a single tangent line, d < r is two
// lines each offset by the two discriminant roots.
func lineCrossSection(p Plane, c Cylinder, axis geom.Vec) ([]Curve, error) {
	n := p.Normal.Normalize()
	// project everything into the (axis, perp) frame; perp is n itself since
	// n is perpendicular to axis in this branch.
	perp := n
	toAxisPoint := c.Origin.Sub(p.Point)
	d := toAxisPoint.Dot(perp)

	r2 := c.Radius * c.Radius
	disc := r2 - d*d
	const span = 1e4
	switch {
	case disc < -lengthEps:
		return nil, nil
	case disc < lengthEps:
		// tangent: single line through the axis-point's projection onto the
		// plane, directed along the axis.
		onPlane := c.Origin.Sub(perp.Scale(d))
		return []Curve{{Points: []geom.Vec{
			onPlane.Sub(axis.Scale(span)),
			onPlane.Add(axis.Scale(span)),
		}}}, nil
	default:
		off := math.Sqrt(disc)
		base := c.Origin.Sub(perp.Scale(d))
		a1 := base.Add(perpOffset(axis, perp, off))
		a2 := base.Sub(perpOffset(axis, perp, off))
		return []Curve{
			{Points: []geom.Vec{a1.Sub(axis.Scale(span)), a1.Add(axis.Scale(span))}},
			{Points: []geom.Vec{a2.Sub(axis.Scale(span)), a2.Add(axis.Scale(span))}},
		}, nil
	}
}

// perpOffset returns the in-plane direction (perpendicular to both axis and
// the plane normal) scaled by off, the direction the two intersection lines
// are displaced from the axis's own projection.
func perpOffset(axis, normal geom.Vec, off float64) geom.Vec {
	dir := axis.Cross(normal).Normalize()
	return dir.Scale(off)
}

// perpBasis returns an arbitrary orthonormal pair spanning the plane
// perpendicular to axis.
func perpBasis(axis geom.Vec) (u, v geom.Vec) {
	ref := geom.Vec{X: 1}
	if absF(axis.Dot(ref)) > 0.9 {
		ref = geom.Vec{Y: 1}
	}
	u = axis.Cross(ref).Normalize()
	v = axis.Cross(u).Normalize()
	return u, v
}

// Surface is the minimal shape Subdivide needs from a general surface: a
// position for any (u,v) in [0,1]x[0,1].
type Surface interface {
	Eval(u, v float64) geom.Vec
}

// maxSubdivideDepth bounds the recursion spec.md S5 calls "a maximum
// subdivision depth" for the general intersection case.
const maxSubdivideDepth = 6

// Subdivide intersects surf against target by recursively quartering its UV
// domain until each patch is flat enough to treat as a polygon (measured by
// how far its midpoint deviates from the bilinear interpolation of its
// corners), then splits that polygon's boundary against target's triangles,
// keeping only the segments that actually cross a triangle (spec.md S4.11's
// "base case emits a polyline that is split against the target shell").
func Subdivide(surf Surface, target *mesh.Mesh) []Curve {
	var out []Curve
	subdivide(surf, 0, 0, 1, 1, 0, target, &out)
	return out
}

func subdivide(surf Surface, u0, v0, u1, v1 float64, depth int, target *mesh.Mesh, out *[]Curve) {
	corners := [4]geom.Vec{
		surf.Eval(u0, v0), surf.Eval(u1, v0), surf.Eval(u1, v1), surf.Eval(u0, v1),
	}
	mid := surf.Eval((u0+u1)/2, (v0+v1)/2)
	bilinear := corners[0].Add(corners[1]).Add(corners[2]).Add(corners[3]).Scale(0.25)

	if depth >= maxSubdivideDepth || mid.DistanceTo(bilinear) < 1e-4 {
		poly := []geom.Vec{corners[0], corners[1], corners[2], corners[3]}
		appendCrossings(out, poly, target)
		return
	}

	um, vm := (u0+u1)/2, (v0+v1)/2
	subdivide(surf, u0, v0, um, vm, depth+1, target, out)
	subdivide(surf, um, v0, u1, vm, depth+1, target, out)
	subdivide(surf, u0, vm, um, v1, depth+1, target, out)
	subdivide(surf, um, vm, u1, v1, depth+1, target, out)
}

// appendCrossings accumulates into out so subdivide's recursive calls build
// a single result slice, matching the original's accumulate-into-an-SCurve
// style.
func appendCrossings(out *[]Curve, poly []geom.Vec, target *mesh.Mesh) {
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		for _, t := range target.Triangles {
			if pt, hit := segmentTriangleHit(a, b, t.A, t.B, t.C); hit {
				*out = append(*out, Curve{Points: []geom.Vec{a, pt}})
			}
		}
	}
}

// segmentTriangleHit reports whether segment a-b crosses triangle abc's
// plane within its footprint, returning the crossing point. This is a
// coarse polyline/shell splitter (spec.md S4.11's "split against the target
// shell"), not a full trimmed-curve boolean composer — good enough to
// report where a subdivided patch boundary actually meets the target shell.
func segmentTriangleHit(a, b, ta, tb, tc geom.Vec) (geom.Vec, bool) {
	n := tb.Sub(ta).Cross(tc.Sub(ta))
	da := a.Sub(ta).Dot(n)
	db := b.Sub(ta).Dot(n)
	if (da > 0) == (db > 0) {
		return geom.Vec{}, false
	}
	if absF(da-db) < 1e-12 {
		return geom.Vec{}, false
	}
	t := da / (da - db)
	pt := a.Add(b.Sub(a).Scale(t))
	// The crossing point must lie on the inner side of all three edges.
	if n.Dot(tb.Sub(ta).Cross(pt.Sub(ta))) < 0 ||
		n.Dot(tc.Sub(tb).Cross(pt.Sub(tb))) < 0 ||
		n.Dot(ta.Sub(tc).Cross(pt.Sub(tc))) < 0 {
		return geom.Vec{}, false
	}
	return pt, true
}

func absF(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

