// Package expr implements the symbolic scalar expression algebra that
// drives constraint reduction and the solver's analytic Jacobian (spec.md
// S4.1). An Expr is a small tagged tree: a constant, a reference to a Param
// by handle, a resolved pointer directly to a Param-like value (bound once
// before a tight solver loop to avoid repeated table lookups), or an
// operator node with up to two children.
//
// The opcode set mirrors the original SolveSpace expr.h fixed-arity node:
// PLUS, MINUS, TIMES, DIV (binary); NEGATE, SQRT, SQUARE, SIN, COS, ASIN,
// ACOS (unary); CONSTANT, PARAM, PARAM_PTR (leaves).
package expr

import (
	"fmt"
	"math"

	"github.com/solvecore/solvecore/pkg/handle"
)

// Op identifies an Expr node's operation.
type Op int

const (
	OpConstant Op = iota
	OpParam
	OpParamPtr
	OpPlus
	OpMinus
	OpTimes
	OpDiv
	OpNegate
	OpSqrt
	OpSquare
	OpSin
	OpCos
	OpAsin
	OpAcos
)

func (o Op) String() string {
	switch o {
	case OpConstant:
		return "const"
	case OpParam:
		return "param"
	case OpParamPtr:
		return "param*"
	case OpPlus:
		return "+"
	case OpMinus:
		return "-"
	case OpTimes:
		return "*"
	case OpDiv:
		return "/"
	case OpNegate:
		return "neg"
	case OpSqrt:
		return "sqrt"
	case OpSquare:
		return "sq"
	case OpSin:
		return "sin"
	case OpCos:
		return "cos"
	case OpAsin:
		return "asin"
	case OpAcos:
		return "acos"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Tolerance is the fixed absolute comparison tolerance used by Tol, and the
// convergence tolerance Stage C of the solver tests residuals against.
const Tolerance = 1e-10

// ParamRef is a resolved binding directly to a Param-like value, used by
// PARAM_PTR nodes. Any type owning a scalar unknown (pkg/sketch's Param)
// implements this without expr needing to import the sketch package.
type ParamRef interface {
	ParamHandle() handle.Param
	ParamValue() float64
}

// ParamTable resolves a Param handle to a ParamRef. pkg/sketch's parameter
// container implements this so DeepCopyWithParamsAsPointers can bind nodes
// directly to live Param records.
type ParamTable interface {
	Resolve(p handle.Param) (ParamRef, bool)
}

// Lookup resolves a Param handle's current numeric value. Used by Eval and
// PartialWrt for plain PARAM nodes (as opposed to already-bound PARAM_PTR
// nodes, which carry their own ref).
type Lookup interface {
	Value(p handle.Param) float64
}

// LookupFunc adapts a function to Lookup.
type LookupFunc func(handle.Param) float64

func (f LookupFunc) Value(p handle.Param) float64 { return f(p) }

// Expr is a node in a symbolic expression tree. Trees are owned by exactly
// one Constraint, Entity generator, or solver matrix cell; they are freely
// duplicable via DeepCopy but never mutated in place once built, so sharing
// a subtree across two parents is never a use-after-mutate hazard.
type Expr struct {
	Op    Op
	Const float64
	ParamH handle.Param
	ref   ParamRef
	A, B  *Expr
}

// Const builds a constant leaf.
func Const(v float64) *Expr { return &Expr{Op: OpConstant, Const: v} }

// ByParam builds a leaf referencing a Param by handle.
func ByParam(p handle.Param) *Expr { return &Expr{Op: OpParam, ParamH: p} }

// byParamPtr builds a leaf bound directly to a resolved ParamRef.
func byParamPtr(ref ParamRef) *Expr { return &Expr{Op: OpParamPtr, ParamH: ref.ParamHandle(), ref: ref} }

func bin(op Op, a, b *Expr) *Expr { return &Expr{Op: op, A: a, B: b} }
func un(op Op, a *Expr) *Expr     { return &Expr{Op: op, A: a} }

func Plus(a, b *Expr) *Expr   { return bin(OpPlus, a, b) }
func Minus(a, b *Expr) *Expr  { return bin(OpMinus, a, b) }
func Times(a, b *Expr) *Expr  { return bin(OpTimes, a, b) }
func Div(a, b *Expr) *Expr    { return bin(OpDiv, a, b) }
func Negate(a *Expr) *Expr    { return un(OpNegate, a) }
func Sqrt(a *Expr) *Expr      { return un(OpSqrt, a) }
func Square(a *Expr) *Expr    { return un(OpSquare, a) }
func Sin(a *Expr) *Expr       { return un(OpSin, a) }
func Cos(a *Expr) *Expr       { return un(OpCos, a) }
func Asin(a *Expr) *Expr      { return un(OpAsin, a) }
func Acos(a *Expr) *Expr      { return un(OpAcos, a) }

// Sum builds a left-folded sum of zero or more expressions (0 for the empty
// sum), used heavily by constraint reduction when summing squared residual
// components.
func Sum(es ...*Expr) *Expr {
	if len(es) == 0 {
		return Const(0)
	}
	out := es[0]
	for _, e := range es[1:] {
		out = Plus(out, e)
	}
	return out
}

// Eval numerically evaluates the tree using lookup for plain PARAM nodes.
// Division by a near-zero denominator and sqrt/asin/acos of an
// out-of-domain argument return NaN; callers treat NaN as a solver-failure
// signal rather than a panic, per spec.md's failure model.
func (e *Expr) Eval(lookup Lookup) float64 {
	switch e.Op {
	case OpConstant:
		return e.Const
	case OpParam:
		if lookup == nil {
			return math.NaN()
		}
		return lookup.Value(e.ParamH)
	case OpParamPtr:
		return e.ref.ParamValue()
	case OpPlus:
		return e.A.Eval(lookup) + e.B.Eval(lookup)
	case OpMinus:
		return e.A.Eval(lookup) - e.B.Eval(lookup)
	case OpTimes:
		return e.A.Eval(lookup) * e.B.Eval(lookup)
	case OpDiv:
		b := e.B.Eval(lookup)
		if math.Abs(b) < Tolerance {
			return math.NaN()
		}
		return e.A.Eval(lookup) / b
	case OpNegate:
		return -e.A.Eval(lookup)
	case OpSqrt:
		v := e.A.Eval(lookup)
		if v < 0 {
			return math.NaN()
		}
		return math.Sqrt(v)
	case OpSquare:
		v := e.A.Eval(lookup)
		return v * v
	case OpSin:
		return math.Sin(e.A.Eval(lookup))
	case OpCos:
		return math.Cos(e.A.Eval(lookup))
	case OpAsin:
		v := e.A.Eval(lookup)
		if v < -1 || v > 1 {
			return math.NaN()
		}
		return math.Asin(v)
	case OpAcos:
		v := e.A.Eval(lookup)
		if v < -1 || v > 1 {
			return math.NaN()
		}
		return math.Acos(v)
	default:
		return math.NaN()
	}
}

// DependsOn reports whether the tree contains any PARAM or PARAM_PTR node
// referencing p.
func (e *Expr) DependsOn(p handle.Param) bool {
	switch e.Op {
	case OpConstant:
		return false
	case OpParam, OpParamPtr:
		return e.ParamH == p
	default:
		if e.A != nil && e.A.DependsOn(p) {
			return true
		}
		if e.B != nil && e.B.DependsOn(p) {
			return true
		}
		return false
	}
}

// PartialWrt computes the structural partial derivative with respect to p,
// producing a fresh tree. Constant-folding of 0*x and 1*x keeps derivative
// trees from growing unboundedly across repeated differentiation, per
// spec.md S4.1.
func (e *Expr) PartialWrt(p handle.Param) *Expr {
	switch e.Op {
	case OpConstant:
		return Const(0)
	case OpParam, OpParamPtr:
		if e.ParamH == p {
			return Const(1)
		}
		return Const(0)
	case OpPlus:
		return mkPlus(e.A.PartialWrt(p), e.B.PartialWrt(p))
	case OpMinus:
		return mkMinus(e.A.PartialWrt(p), e.B.PartialWrt(p))
	case OpTimes:
		// d(ab) = a'b + ab'
		return mkPlus(mkTimes(e.A.PartialWrt(p), e.B.deepCopy()), mkTimes(e.A.deepCopy(), e.B.PartialWrt(p)))
	case OpDiv:
		// d(a/b) = (a'b - ab') / b^2
		num := mkMinus(mkTimes(e.A.PartialWrt(p), e.B.deepCopy()), mkTimes(e.A.deepCopy(), e.B.PartialWrt(p)))
		den := Square(e.B.deepCopy())
		return mkDiv(num, den)
	case OpNegate:
		return mkNegate(e.A.PartialWrt(p))
	case OpSqrt:
		// d(sqrt(a)) = a' / (2 sqrt(a))
		return mkDiv(e.A.PartialWrt(p), mkTimes(Const(2), Sqrt(e.A.deepCopy())))
	case OpSquare:
		// d(a^2) = 2 a a'
		return mkTimes(mkTimes(Const(2), e.A.deepCopy()), e.A.PartialWrt(p))
	case OpSin:
		return mkTimes(Cos(e.A.deepCopy()), e.A.PartialWrt(p))
	case OpCos:
		return mkNegate(mkTimes(Sin(e.A.deepCopy()), e.A.PartialWrt(p)))
	case OpAsin:
		// d(asin(a)) = a' / sqrt(1-a^2)
		return mkDiv(e.A.PartialWrt(p), Sqrt(mkMinus(Const(1), Square(e.A.deepCopy()))))
	case OpAcos:
		return mkNegate(mkDiv(e.A.PartialWrt(p), Sqrt(mkMinus(Const(1), Square(e.A.deepCopy())))))
	default:
		return Const(0)
	}
}

// isZero/isOne report whether a node is a folded constant 0 or 1, used by
// the mk* smart constructors to keep derivative trees small.
func isZero(e *Expr) bool { return e.Op == OpConstant && e.Const == 0 }
func isOne(e *Expr) bool  { return e.Op == OpConstant && e.Const == 1 }

func mkPlus(a, b *Expr) *Expr {
	if isZero(a) {
		return b
	}
	if isZero(b) {
		return a
	}
	return Plus(a, b)
}

func mkMinus(a, b *Expr) *Expr {
	if isZero(b) {
		return a
	}
	if isZero(a) {
		return Negate(b)
	}
	return Minus(a, b)
}

func mkTimes(a, b *Expr) *Expr {
	if isZero(a) || isZero(b) {
		return Const(0)
	}
	if isOne(a) {
		return b
	}
	if isOne(b) {
		return a
	}
	return Times(a, b)
}

func mkDiv(a, b *Expr) *Expr {
	if isZero(a) {
		return Const(0)
	}
	return Div(a, b)
}

func mkNegate(a *Expr) *Expr {
	if isZero(a) {
		return Const(0)
	}
	return Negate(a)
}

// deepCopy is the internal unexported deep copy used while building
// derivative trees (keeps the exported DeepCopy name reserved for the
// documented public operation below, which is identical).
func (e *Expr) deepCopy() *Expr {
	if e == nil {
		return nil
	}
	cp := &Expr{Op: e.Op, Const: e.Const, ParamH: e.ParamH, ref: e.ref}
	cp.A = e.A.deepCopy()
	cp.B = e.B.deepCopy()
	return cp
}

// DeepCopy returns a structurally identical tree with no shared nodes.
func (e *Expr) DeepCopy() *Expr { return e.deepCopy() }

// DeepCopyWithParamsAsPointers rewrites every PARAM node into a PARAM_PTR
// node bound directly to the Param record, looked up first in primary then
// secondary. This is mandatory before tight inner solver loops (Stage C of
// S4.5) to avoid a handle lookup on every Jacobian/residual evaluation.
func (e *Expr) DeepCopyWithParamsAsPointers(primary, secondary ParamTable) *Expr {
	if e == nil {
		return nil
	}
	switch e.Op {
	case OpParam:
		if ref, ok := primary.Resolve(e.ParamH); ok {
			return byParamPtr(ref)
		}
		if secondary != nil {
			if ref, ok := secondary.Resolve(e.ParamH); ok {
				return byParamPtr(ref)
			}
		}
		// Unresolvable: keep as plain PARAM so Eval still works via Lookup.
		return ByParam(e.ParamH)
	case OpParamPtr, OpConstant:
		return e.deepCopy()
	default:
		cp := &Expr{Op: e.Op}
		cp.A = e.A.DeepCopyWithParamsAsPointers(primary, secondary)
		cp.B = e.B.DeepCopyWithParamsAsPointers(primary, secondary)
		return cp
	}
}

// ParamSet summarises which Params an Expr depends on, used for equation
// grouping during rank analysis. Once more than capacityThreshold distinct
// Params are seen, the set stops tracking individual handles and reports
// Overflow, matching spec.md's "bitset, or sentinel for >= cardinality
// threshold" description — group-sized equation sets rarely approach this,
// but the sentinel keeps ParamsUsed O(1)-space even if one does.
type ParamSet struct {
	handles  map[handle.Param]struct{}
	Overflow bool
}

const capacityThreshold = 256

func newParamSet() *ParamSet { return &ParamSet{handles: make(map[handle.Param]struct{})} }

func (s *ParamSet) add(p handle.Param) {
	if s.Overflow {
		return
	}
	s.handles[p] = struct{}{}
	if len(s.handles) > capacityThreshold {
		s.Overflow = true
		s.handles = nil
	}
}

// Has reports whether p is known to be in the set. If the set has
// overflowed, Has conservatively reports true for every handle.
func (s *ParamSet) Has(p handle.Param) bool {
	if s.Overflow {
		return true
	}
	_, ok := s.handles[p]
	return ok
}

// Len returns the number of distinct Params tracked, or -1 if overflowed.
func (s *ParamSet) Len() int {
	if s.Overflow {
		return -1
	}
	return len(s.handles)
}

// ParamsUsed walks the tree and returns the set of Params it references.
func (e *Expr) ParamsUsed() *ParamSet {
	s := newParamSet()
	e.collectParams(s)
	return s
}

func (e *Expr) collectParams(s *ParamSet) {
	if e == nil {
		return
	}
	switch e.Op {
	case OpParam, OpParamPtr:
		s.add(e.ParamH)
	default:
		e.A.collectParams(s)
		e.B.collectParams(s)
	}
}

// FoldConstants returns a new tree with every subtree that contains no
// PARAM/PARAM_PTR node replaced by its evaluated constant value.
func (e *Expr) FoldConstants() *Expr {
	if e == nil {
		return nil
	}
	if e.Op == OpConstant {
		return Const(e.Const)
	}
	if e.Op == OpParam || e.Op == OpParamPtr {
		return e.deepCopy()
	}
	a := e.A.FoldConstants()
	var b *Expr
	if e.B != nil {
		b = e.B.FoldConstants()
	}
	if isConst(a) && (b == nil || isConst(b)) {
		folded := &Expr{Op: e.Op, A: a, B: b}
		return Const(folded.Eval(nil))
	}
	return &Expr{Op: e.Op, A: a, B: b}
}

func isConst(e *Expr) bool { return e != nil && e.Op == OpConstant }

// Substitute returns a new tree with every PARAM/PARAM_PTR reference to old
// rewritten to reference new instead. Used by the solver's symbolic
// substitution pre-pass (Stage A of S4.5) once two Params have been proven
// equal.
func (e *Expr) Substitute(old, new_ handle.Param) *Expr {
	if e == nil {
		return nil
	}
	switch e.Op {
	case OpConstant:
		return Const(e.Const)
	case OpParam:
		if e.ParamH == old {
			return ByParam(new_)
		}
		return ByParam(e.ParamH)
	case OpParamPtr:
		if e.ParamH == old {
			return ByParam(new_)
		}
		return e.deepCopy()
	default:
		return &Expr{Op: e.Op, A: e.A.Substitute(old, new_), B: e.B.Substitute(old, new_)}
	}
}

// Tol reports whether a and b agree to within the fixed absolute tolerance.
func Tol(a, b float64) bool {
	return math.Abs(a-b) < Tolerance
}

// IsSingleParam reports whether the tree is exactly one PARAM/PARAM_PTR
// leaf, returning its handle. Used by the solver's Stage A to recognise
// "a - b = 0" equations between two bare Params.
func (e *Expr) IsSingleParam() (handle.Param, bool) {
	if e != nil && (e.Op == OpParam || e.Op == OpParamPtr) {
		return e.ParamH, true
	}
	return 0, false
}
