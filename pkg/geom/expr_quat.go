package geom

import "github.com/solvecore/solvecore/pkg/expr"

// ExprQuat is a symbolic unit quaternion, used for 3D normal entities whose
// four components are Params (spec.md S3: "3D normals consume 4 Params
// forming a quaternion") and for the fixed reference-plane normals (built
// from constants via ExprQuatConst).
type ExprQuat struct {
	W, X, Y, Z *expr.Expr
}

// ExprQuatConst builds a constant symbolic quaternion, used for the
// predefined XY/YZ/ZX reference workplane normals which carry no Params.
func ExprQuatConst(q Quat) ExprQuat {
	return ExprQuat{expr.Const(q.W), expr.Const(q.X), expr.Const(q.Y), expr.Const(q.Z)}
}

// AxisU, AxisV and AxisN each build one column of the quaternion's rotation
// matrix symbolically, following the standard quaternion-to-matrix
// expansion. The three columns are the local x/y/z basis vectors
// this orientation rotates the identity frame into.
func (q ExprQuat) AxisU() ExprVec {
	w, x, y, z := q.W, q.X, q.Y, q.Z
	return ExprVec{
		X: expr.Minus(expr.Const(1), expr.Times(expr.Const(2), expr.Plus(expr.Square(y), expr.Square(z)))),
		Y: expr.Times(expr.Const(2), expr.Plus(expr.Times(x, y), expr.Times(w, z))),
		Z: expr.Times(expr.Const(2), expr.Minus(expr.Times(x, z), expr.Times(w, y))),
	}
}

func (q ExprQuat) AxisV() ExprVec {
	w, x, y, z := q.W, q.X, q.Y, q.Z
	return ExprVec{
		X: expr.Times(expr.Const(2), expr.Minus(expr.Times(x, y), expr.Times(w, z))),
		Y: expr.Minus(expr.Const(1), expr.Times(expr.Const(2), expr.Plus(expr.Square(x), expr.Square(z)))),
		Z: expr.Times(expr.Const(2), expr.Plus(expr.Times(y, z), expr.Times(w, x))),
	}
}

func (q ExprQuat) AxisN() ExprVec {
	w, x, y, z := q.W, q.X, q.Y, q.Z
	return ExprVec{
		X: expr.Times(expr.Const(2), expr.Plus(expr.Times(x, z), expr.Times(w, y))),
		Y: expr.Times(expr.Const(2), expr.Minus(expr.Times(y, z), expr.Times(w, x))),
		Z: expr.Minus(expr.Const(1), expr.Times(expr.Const(2), expr.Plus(expr.Square(x), expr.Square(y)))),
	}
}

// MagSquaredMinusOne builds the quaternion-normalization residual
// w^2+x^2+y^2+z^2-1, the generator equation every free 3D normal entity
// contributes (spec.md S4.5: "generator equations of each Entity in g,
// e.g. normal-magnitude = 1").
func (q ExprQuat) MagSquaredMinusOne() *expr.Expr {
	sum := expr.Plus(expr.Plus(expr.Square(q.W), expr.Square(q.X)), expr.Plus(expr.Square(q.Y), expr.Square(q.Z)))
	return expr.Minus(sum, expr.Const(1))
}

// Eval numerically evaluates every component and returns a Quat.
func (q ExprQuat) Eval(lookup expr.Lookup) Quat {
	return Quat{q.W.Eval(lookup), q.X.Eval(lookup), q.Y.Eval(lookup), q.Z.Eval(lookup)}
}
