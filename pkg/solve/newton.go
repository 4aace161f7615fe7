package solve

import (
	"math"

	"github.com/solvecore/solvecore/pkg/expr"
	"github.com/solvecore/solvecore/pkg/handle"
	"github.com/solvecore/solvecore/pkg/sketch"
)

// newton runs Stage C: iterate residual/Jacobian evaluation, a linear
// solve, and an update, up to maxNewtonIterations times (spec.md S4.5
// Stage C). eqs and bound must be the same length (a square system); bound
// pairs each equation with the unknown Param whose column the Jacobian
// carries for reporting purposes only — Newton itself treats the system as
// eqs x bound without relying on the pairing being diagonal.
func newton(s *sketch.Sketch, eqs []equation, bound []handle.Param) bool {
	n := len(eqs)
	if n == 0 {
		return true
	}

	boundTrees := make([]*expr.Expr, n)
	for i, eq := range eqs {
		boundTrees[i] = eq.tree.DeepCopyWithParamsAsPointers(s, nil)
	}
	partials := make([][]*expr.Expr, n)
	for i, t := range boundTrees {
		partials[i] = make([]*expr.Expr, n)
		for j, p := range bound {
			partials[i][j] = t.PartialWrt(p)
		}
	}

	for iter := 0; iter < maxNewtonIterations; iter++ {
		f := make([]float64, n)
		converged := true
		for i, t := range boundTrees {
			f[i] = t.Eval(nil)
			if math.Abs(f[i]) > expr.Tolerance {
				converged = false
			}
		}
		if converged {
			return true
		}

		j := make([][]float64, n)
		for i := range j {
			j[i] = make([]float64, n)
			for c := range bound {
				j[i][c] = partials[i][c].Eval(nil)
			}
		}

		delta, ok := solveLinear(j, f)
		if !ok {
			return false
		}
		for c, p := range bound {
			rec := s.Params.MustFind(p)
			rec.Val -= delta[c]
		}
	}
	return false
}

// diagnose implements Stage D: when Newton fails, attempt a least-squares
// repair via the normal equations, falling back to a bounded per-constraint
// drop-and-retry search to name the offending constraints (spec.md S4.5
// Stage D).
func diagnose(s *sketch.Sketch, eqs []equation, bound []handle.Param) (sketch.SolveStatus, []handle.Constraint) {
	n := len(eqs)
	if n == 0 {
		return sketch.SolveOkay, nil
	}

	a := make([][]float64, n)
	f := make([]float64, n)
	for i, eq := range eqs {
		bt := eq.tree.DeepCopyWithParamsAsPointers(s, nil)
		f[i] = bt.Eval(nil)
		a[i] = make([]float64, len(bound))
		for c, p := range bound {
			a[i][c] = bt.PartialWrt(p).Eval(nil)
		}
	}

	ata := transposeMul(a)
	z, ok := solveLinear(ata, f)
	if ok {
		x := transposeVec(a, z)
		for c, p := range bound {
			s.Params.MustFind(p).Val -= x[c]
		}
		if residualsConverged(s, eqs) {
			return sketch.SolveRedundantOkay, nil
		}
	}

	var bad []handle.Constraint
	for i, eq := range eqs {
		if eq.source == 0 {
			continue
		}
		if tryWithDrop(s, eqs, bound, i) {
			bad = append(bad, eq.source)
		}
	}
	if len(bad) > 0 {
		return sketch.SolveRedundantDidntConverge, bad
	}
	return sketch.SolveDidntConverge, nil
}

// residualsConverged reports whether every equation's residual currently
// lies within the solver's fixed tolerance.
func residualsConverged(s *sketch.Sketch, eqs []equation) bool {
	for _, eq := range eqs {
		if math.Abs(eq.tree.Eval(s)) > expr.Tolerance {
			return false
		}
	}
	return true
}

// tryWithDrop reruns Newton with equation index drop excluded, naming drop
// as a candidate offending constraint if the reduced system then converges.
func tryWithDrop(s *sketch.Sketch, eqs []equation, bound []handle.Param, drop int) bool {
	trial := make([]equation, 0, len(eqs)-1)
	trialBound := make([]handle.Param, 0, len(bound)-1)
	for i, eq := range eqs {
		if i == drop {
			continue
		}
		trial = append(trial, eq)
		trialBound = append(trialBound, bound[i])
	}
	return newton(s, trial, trialBound)
}
