package geom

import "math"

// Quat is a unit quaternion representing a 3D rotation, stored as the
// original does (w, vx, vy, vz), used by 3D normal entities (spec.md S3:
// "3D normals consume 4 Params forming a quaternion").
type Quat struct {
	W, X, Y, Z float64
}

// Identity is the no-rotation quaternion.
var Identity = Quat{W: 1}

func (q Quat) MagSquared() float64 { return q.W*q.W + q.X*q.X + q.Y*q.Y + q.Z*q.Z }
func (q Quat) Mag() float64        { return math.Sqrt(q.MagSquared()) }

func (q Quat) Normalize() Quat {
	m := q.Mag()
	if m < 1e-12 {
		return Identity
	}
	return Quat{q.W / m, q.X / m, q.Y / m, q.Z / m}
}

func (q Quat) Conjugate() Quat { return Quat{q.W, -q.X, -q.Y, -q.Z} }

func (a Quat) Mul(b Quat) Quat {
	return Quat{
		W: a.W*b.W - a.X*b.X - a.Y*b.Y - a.Z*b.Z,
		X: a.W*b.X + a.X*b.W + a.Y*b.Z - a.Z*b.Y,
		Y: a.W*b.Y - a.X*b.Z + a.Y*b.W + a.Z*b.X,
		Z: a.W*b.Z + a.X*b.Y - a.Y*b.X + a.Z*b.W,
	}
}

// AxisU, AxisV and AxisN return the vectors this quaternion rotates the
// local x (U), local y (V) and local z (N, the normal direction) basis
// vectors into.
func (q Quat) AxisU() Vec { return q.rotate(Vec{1, 0, 0}) }
func (q Quat) AxisV() Vec { return q.rotate(Vec{0, 1, 0}) }
func (q Quat) AxisN() Vec { return q.rotate(Vec{0, 0, 1}) }

func (q Quat) rotate(v Vec) Vec {
	p := Quat{0, v.X, v.Y, v.Z}
	r := q.Mul(p).Mul(q.Conjugate())
	return Vec{r.X, r.Y, r.Z}
}

// FromAxisAngle builds the unit quaternion rotating by angle radians about
// axis (not required to be pre-normalized).
func FromAxisAngle(axis Vec, angle float64) Quat {
	axis = axis.Normalize()
	s := math.Sin(angle / 2)
	return Quat{
		W: math.Cos(angle / 2),
		X: axis.X * s,
		Y: axis.Y * s,
		Z: axis.Z * s,
	}.Normalize()
}

// RotateVec rotates v by this quaternion.
func (q Quat) RotateVec(v Vec) Vec { return q.rotate(v) }
