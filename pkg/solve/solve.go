// Package solve drives a Group's residual equations to zero: symbolic
// substitution, structural rank analysis, Newton iteration with an analytic
// Jacobian, and a least-squares fallback diagnosis (spec.md S4.5). It
// follows the same phased, fixed-iteration-cap, sorted-iteration-order
// shape as pkg/embedding's force-directed simulation, generalized from a 2D
// spring system to an analytic n-dimensional Jacobian solve.
package solve

import (
	"sort"

	"github.com/solvecore/solvecore/pkg/expr"
	"github.com/solvecore/solvecore/pkg/handle"
	"github.com/solvecore/solvecore/pkg/reduce"
	"github.com/solvecore/solvecore/pkg/sketch"
)

// maxNewtonIterations bounds Stage C; exceeding it without convergence
// reports DidntConverge (spec.md S4.5: "Iteration cap is ~50").
const maxNewtonIterations = 50

// Result summarizes one Solve call, mirroring what spec.md S4.5 says a
// Group stores after a solve attempt.
type Result struct {
	Status         sketch.SolveStatus
	Dof            int
	BadConstraints []handle.Constraint
}

// equation pairs a residual tree with the Constraint that produced it (the
// zero handle for a generator equation with no owning Constraint), so a
// Stage D failure can name offending constraints.
type equation struct {
	tree   *expr.Expr
	source handle.Constraint
}

// Solve drives every Param owned by g (and not already substituted or
// known) to satisfy g's own Constraints plus its Entities' generator
// equations, treating Params owned by other groups as constants via their
// current val (spec.md S4.5). dragged names Params the caller wants pinned
// at their current value via an implicit where_dragged-style residual,
// breaking ties in an under-constrained sketch.
func Solve(s *sketch.Sketch, g handle.Group, dragged []handle.Param) (Result, error) {
	unknowns, err := groupUnknowns(s, g)
	if err != nil {
		return Result{}, err
	}
	eqs, err := groupEquations(s, g)
	if err != nil {
		return Result{}, err
	}
	eqs = append(eqs, draggedEquations(s, dragged)...)

	s.ClearTags()

	eqs, unknowns, subs := substitute(s, eqs, unknowns)

	// Stage B marks an equation it cannot bind as redundant (spec.md S4.5
	// Stage B): drop each unmatched equation, naming its constraint, and
	// retry the matching. Once the remaining system is solved, the dropped
	// equations decide the status: all satisfied is REDUNDANT_OKAY, any
	// still violated is REDUNDANT_DIDNT_CONVERGE.
	var redundant []handle.Constraint
	var dropped []equation
	var bound, free []handle.Param
	for {
		var badEq int
		bound, free, badEq = matchEquations(eqs, unknowns)
		if badEq < 0 {
			break
		}
		if eqs[badEq].source != 0 {
			redundant = append(redundant, eqs[badEq].source)
		}
		dropped = append(dropped, eqs[badEq])
		eqs = append(eqs[:badEq], eqs[badEq+1:]...)
	}
	for _, p := range free {
		s.Params.MustFind(p).Tag = sketch.TagAssumed
	}
	dof := len(free)

	for _, p := range bound {
		s.Params.MustFind(p).Tag = sketch.TagBound
	}

	ok := newton(s, eqs, bound)
	applySubstitutions(s, subs)

	if ok {
		if !residualsConverged(s, dropped) {
			return Result{Status: sketch.SolveRedundantDidntConverge, Dof: dof, BadConstraints: redundant}, nil
		}
		if len(redundant) > 0 {
			return Result{Status: sketch.SolveRedundantOkay, Dof: dof, BadConstraints: redundant}, nil
		}
		return Result{Status: sketch.SolveOkay, Dof: dof}, nil
	}

	status, bad := diagnose(s, eqs, bound)
	if len(redundant) > 0 {
		bad = append(redundant, bad...)
		if status == sketch.SolveOkay {
			status = sketch.SolveRedundantOkay
		}
	}
	return Result{Status: status, Dof: dof, BadConstraints: bad}, nil
}

// groupUnknowns returns every non-Known Param owned by g, sorted by handle
// for deterministic Jacobian column order.
func groupUnknowns(s *sketch.Sketch, g handle.Group) ([]handle.Param, error) {
	var out []handle.Param
	for _, h := range s.Params.Keys() {
		p := s.Params.MustFind(h)
		if p.Owner == g && !p.Known {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

// groupEquations collects g's own Constraint residuals plus the generator
// equations of g's free-3D-normal Entities (quaternion magnitude = 1), per
// spec.md S4.5.
func groupEquations(s *sketch.Sketch, g handle.Group) ([]equation, error) {
	var out []equation
	for _, h := range s.Constraints.Keys() {
		c := s.Constraints.MustFind(h)
		if c.Group != g || !c.Kind.GeneratesEquations() {
			continue
		}
		trees, err := reduce.Reduce(s, c)
		if err != nil {
			return nil, err
		}
		for _, t := range trees {
			out = append(out, equation{tree: t, source: c.H})
		}
	}
	for _, h := range s.Entities.Keys() {
		e := s.Entities.MustFind(h)
		if e.Group != g {
			continue
		}
		if e.Kind == sketch.EntityNormal3D || e.Kind == sketch.EntityNormalTransformed {
			out = append(out, equation{tree: e.ExprNormalQuat(s).MagSquaredMinusOne()})
		}
	}
	return out, nil
}

// draggedEquations builds the implicit where_dragged-style pinning residual
// for each Param the caller marked as dragged: since each Param is a bare
// scalar unknown (not a point with a workplane frame), the residual is
// simply (param - currentVal).
func draggedEquations(s *sketch.Sketch, dragged []handle.Param) []equation {
	var out []equation
	for _, p := range dragged {
		val := s.Value(p)
		out = append(out, equation{tree: expr.Minus(expr.ByParam(p), expr.Const(val))})
		s.Params.MustFind(p).Tag = sketch.TagDragged
	}
	return out
}

// subPair records an eliminated Param alongside the Param it was folded
// into, so their values can be resynchronized once Newton converges.
type subPair struct{ old, new_ handle.Param }

// substitute implements Stage A: repeatedly finds an equation of the form
// `a - b = 0` between two bare Params, rewrites every other equation to
// drop the eliminated Param, and removes both the equation and the Param
// from further consideration (spec.md S4.5 Stage A).
func substitute(s *sketch.Sketch, eqs []equation, unknowns []handle.Param) ([]equation, []handle.Param, []subPair) {
	var subs []subPair
	unknownSet := make(map[handle.Param]bool, len(unknowns))
	for _, p := range unknowns {
		unknownSet[p] = true
	}

	changed := true
	for changed {
		changed = false
		for i, eq := range eqs {
			if eq.tree.Op != expr.OpMinus {
				continue
			}
			a, aOk := eq.tree.A.IsSingleParam()
			b, bOk := eq.tree.B.IsSingleParam()
			if !aOk || !bOk || !unknownSet[a] || !unknownSet[b] || a == b {
				continue
			}
			old, kept := b, a
			eqs = append(eqs[:i], eqs[i+1:]...)
			for k := range eqs {
				eqs[k].tree = eqs[k].tree.Substitute(old, kept)
			}
			delete(unknownSet, old)
			s.Params.MustFind(old).Tag = sketch.TagSubstituted
			subs = append(subs, subPair{old: old, new_: kept})
			changed = true
			break
		}
	}

	out := make([]handle.Param, 0, len(unknownSet))
	for _, p := range unknowns {
		if unknownSet[p] {
			out = append(out, p)
		}
	}
	return eqs, out, subs
}

// applySubstitutions writes each eliminated Param's value back to match the
// Param it was folded into, so anything reading the eliminated Param
// directly (rendering, a later group's generator) sees the solved value.
func applySubstitutions(s *sketch.Sketch, subs []subPair) {
	for _, sub := range subs {
		s.Params.MustFind(sub.old).Val = s.Value(sub.new_)
	}
}

// matchEquations implements Stage B: a greedy augmenting-path bipartite
// matching between equations and the Params they structurally depend on,
// standing in for full Gauss-Jordan elimination on the 0/1 dependency
// pattern (spec.md S4.5 Stage B: "choose a bound Param for each
// equation"). Returns the matched (bound) Param for each equation in
// order, the unmatched (free/assumed) Params, and the index of the first
// equation that could not be matched (-1 if every equation matched).
func matchEquations(eqs []equation, unknowns []handle.Param) (bound []handle.Param, free []handle.Param, badEq int) {
	colOf := make(map[handle.Param]int, len(unknowns))
	for i, p := range unknowns {
		colOf[p] = i
	}
	deps := make([][]int, len(eqs))
	for i, eq := range eqs {
		used := eq.tree.ParamsUsed()
		for p, col := range colOf {
			if used.Has(p) {
				deps[i] = append(deps[i], col)
			}
		}
		sort.Ints(deps[i])
	}

	matchCol := make([]int, len(unknowns))
	for i := range matchCol {
		matchCol[i] = -1
	}
	matchRow := make([]int, len(eqs))
	for i := range matchRow {
		matchRow[i] = -1
	}

	var tryAugment func(row int, visited []bool) bool
	tryAugment = func(row int, visited []bool) bool {
		for _, col := range deps[row] {
			if visited[col] {
				continue
			}
			visited[col] = true
			if matchCol[col] == -1 || tryAugment(matchCol[col], visited) {
				matchCol[col] = row
				matchRow[row] = col
				return true
			}
		}
		return false
	}

	badEq = -1
	for row := range eqs {
		visited := make([]bool, len(unknowns))
		if !tryAugment(row, visited) {
			if badEq == -1 {
				badEq = row
			}
		}
	}
	if badEq != -1 {
		return nil, nil, badEq
	}

	bound = make([]handle.Param, len(eqs))
	for row, col := range matchRow {
		bound[row] = unknowns[col]
	}
	usedCol := make(map[int]bool, len(eqs))
	for _, col := range matchRow {
		usedCol[col] = true
	}
	for i, p := range unknowns {
		if !usedCol[i] {
			free = append(free, p)
		}
	}
	return bound, free, -1
}
