package geom

import (
	"github.com/solvecore/solvecore/pkg/expr"
	"github.com/solvecore/solvecore/pkg/handle"
)

// ExprVec is a symbolic 3D vector, each component an Expr tree built from
// Param handles, used by constraint reduction to build residuals before any
// numeric value is known (spec.md S2).
type ExprVec struct {
	X, Y, Z *expr.Expr
}

// ExprVecFromParams builds a symbolic vector directly from three Param
// handles, as a 3D point entity's defining Params do.
func ExprVecFromParams(x, y, z handle.Param) ExprVec {
	return ExprVec{X: expr.ByParam(x), Y: expr.ByParam(y), Z: expr.ByParam(z)}
}

// ExprVecConst builds a constant symbolic vector.
func ExprVecConst(v Vec) ExprVec {
	return ExprVec{X: expr.Const(v.X), Y: expr.Const(v.Y), Z: expr.Const(v.Z)}
}

func (a ExprVec) Plus(b ExprVec) ExprVec {
	return ExprVec{expr.Plus(a.X, b.X), expr.Plus(a.Y, b.Y), expr.Plus(a.Z, b.Z)}
}

func (a ExprVec) Minus(b ExprVec) ExprVec {
	return ExprVec{expr.Minus(a.X, b.X), expr.Minus(a.Y, b.Y), expr.Minus(a.Z, b.Z)}
}

func (a ExprVec) ScaledBy(k *expr.Expr) ExprVec {
	return ExprVec{expr.Times(a.X, k), expr.Times(a.Y, k), expr.Times(a.Z, k)}
}

func (a ExprVec) Dot(b ExprVec) *expr.Expr {
	return expr.Plus(expr.Plus(expr.Times(a.X, b.X), expr.Times(a.Y, b.Y)), expr.Times(a.Z, b.Z))
}

// Cross builds the symbolic cross product a x b.
func (a ExprVec) Cross(b ExprVec) ExprVec {
	return ExprVec{
		expr.Minus(expr.Times(a.Y, b.Z), expr.Times(a.Z, b.Y)),
		expr.Minus(expr.Times(a.Z, b.X), expr.Times(a.X, b.Z)),
		expr.Minus(expr.Times(a.X, b.Y), expr.Times(a.Y, b.X)),
	}
}

// MagSquared builds the symbolic squared magnitude, preferred over Mag in
// residuals to avoid a sqrt and its derivative singularity at zero, per
// spec.md S4.4's note on pt_pt_distance.
func (a ExprVec) MagSquared() *expr.Expr { return a.Dot(a) }

// Eval numerically evaluates every component.
func (a ExprVec) Eval(lookup expr.Lookup) Vec {
	return Vec{a.X.Eval(lookup), a.Y.Eval(lookup), a.Z.Eval(lookup)}
}
