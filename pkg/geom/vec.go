// Package geom provides 3D vector and quaternion arithmetic, both numeric
// (Vec, Quat) and symbolic (ExprVec, ExprQuat built from pkg/expr trees),
// as required by spec.md S2's Vec/Quat/ExprVec/ExprQuat component.
package geom

import "math"

// Vec is a numeric 3D vector.
type Vec struct {
	X, Y, Z float64
}

func (a Vec) Add(b Vec) Vec   { return Vec{a.X + b.X, a.Y + b.Y, a.Z + b.Z} }
func (a Vec) Sub(b Vec) Vec   { return Vec{a.X - b.X, a.Y - b.Y, a.Z - b.Z} }
func (a Vec) Scale(k float64) Vec { return Vec{a.X * k, a.Y * k, a.Z * k} }
func (a Vec) Neg() Vec        { return Vec{-a.X, -a.Y, -a.Z} }

func (a Vec) Dot(b Vec) float64 { return a.X*b.X + a.Y*b.Y + a.Z*b.Z }

func (a Vec) Cross(b Vec) Vec {
	return Vec{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

func (a Vec) MagSquared() float64 { return a.Dot(a) }
func (a Vec) Mag() float64        { return math.Sqrt(a.MagSquared()) }

// Normalize returns a unit vector in the direction of a. A zero-length
// vector normalizes to the zero vector rather than producing NaN, since
// callers (e.g. degenerate edges during triangulation) must be able to
// detect this without checking for NaN specially.
func (a Vec) Normalize() Vec {
	m := a.Mag()
	if m < 1e-12 {
		return Vec{}
	}
	return a.Scale(1 / m)
}

func (a Vec) DistanceTo(b Vec) float64 { return a.Sub(b).Mag() }

// Equal reports whether a and b agree to within the given tolerance.
func (a Vec) Equal(b Vec, tol float64) bool {
	return a.Sub(b).Mag() < tol
}

// ClosestPointOnLine projects p onto the infinite line through a with
// direction dir (not required to be unit length) and returns the projected
// point a + t*dir.Normalize(), where t is the parametric distance along it.
func ClosestPointOnLine(p, a, dir Vec) Vec {
	d := dir.Normalize()
	t := p.Sub(a).Dot(d)
	return a.Add(d.Scale(t))
}

// Vec2 is a 2D point/vector, used in UV parameter space and workplane-local
// coordinates.
type Vec2 struct {
	X, Y float64
}

func (a Vec2) Add(b Vec2) Vec2    { return Vec2{a.X + b.X, a.Y + b.Y} }
func (a Vec2) Sub(b Vec2) Vec2    { return Vec2{a.X - b.X, a.Y - b.Y} }
func (a Vec2) Scale(k float64) Vec2 { return Vec2{a.X * k, a.Y * k} }
func (a Vec2) Dot(b Vec2) float64 { return a.X*b.X + a.Y*b.Y }
func (a Vec2) Cross(b Vec2) float64 { return a.X*b.Y - a.Y*b.X }
func (a Vec2) Mag() float64       { return math.Hypot(a.X, a.Y) }

func (a Vec2) Normalize() Vec2 {
	m := a.Mag()
	if m < 1e-12 {
		return Vec2{}
	}
	return Vec2{a.X / m, a.Y / m}
}
