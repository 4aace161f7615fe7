package reduce

import (
	"fmt"
	"math"

	"github.com/solvecore/solvecore/pkg/sketch"
)

// ModifyToSatisfy fills in c.ValA from the sketch's current geometry when a
// dimensioned constraint is first added to an already-consistent sketch, so
// the new constraint starts out satisfied rather than immediately dragging
// the solve (spec.md S4.4: "solves the one-equation, one-unknown case for
// valA"). Kinds with no dimension operand (coincidence, parallel,
// perpendicular, and the rest of the purely-relational kinds) are a no-op.
func ModifyToSatisfy(s *sketch.Sketch, c *sketch.Constraint) error {
	switch c.Kind {
	case sketch.ConstraintPtPtDistance:
		d := pos(s, c.PtA).Eval(s).Sub(pos(s, c.PtB).Eval(s))
		c.ValA = d.Mag()
		return nil
	case sketch.ConstraintPtPlaneDistance, sketch.ConstraintPtFaceDistance:
		origin, normal := planeFrame(s, c.EntityA)
		p := pos(s, c.PtA).Eval(s)
		c.ValA = p.Sub(origin.Eval(s)).Dot(normal.Eval(s))
		return nil
	case sketch.ConstraintPtLineDistance:
		a, b := lineFrame(s, c.EntityA)
		p := pos(s, c.PtA).Eval(s)
		av, bv := a.Eval(s), b.Eval(s)
		dir := bv.Sub(av)
		rej := p.Sub(av).Cross(dir)
		c.ValA = rej.Mag() / dir.Mag()
		return nil
	case sketch.ConstraintDiameter:
		_, radius := circleFrame(s, c.EntityA)
		c.ValA = 2 * radius.Eval(s)
		return nil
	case sketch.ConstraintEqualRadius:
		return nil
	case sketch.ConstraintLengthRatio:
		lenA, lenB := lineLength(s, c.EntityA).Eval(s), lineLength(s, c.EntityB).Eval(s)
		if lenB == 0 {
			return fmt.Errorf("%w: constraint %v", ErrSingleParamUnknown, c.H)
		}
		c.ValA = lenA / lenB
		return nil
	case sketch.ConstraintLengthDifference:
		lenA, lenB := lineLength(s, c.EntityA).Eval(s), lineLength(s, c.EntityB).Eval(s)
		c.ValA = lenA - lenB
		return nil
	case sketch.ConstraintArcLengthRatio:
		_, rA := circleFrame(s, c.EntityA)
		_, rB := circleFrame(s, c.EntityB)
		lenA := rA.Eval(s) * arcAngleSpan(s, c.EntityA).Eval(s)
		lenB := rB.Eval(s) * arcAngleSpan(s, c.EntityB).Eval(s)
		if lenB == 0 {
			return fmt.Errorf("%w: constraint %v", ErrSingleParamUnknown, c.H)
		}
		c.ValA = lenA / lenB
		return nil
	case sketch.ConstraintArcLengthDifference:
		_, rA := circleFrame(s, c.EntityA)
		_, rB := circleFrame(s, c.EntityB)
		lenA := rA.Eval(s) * arcAngleSpan(s, c.EntityA).Eval(s)
		lenB := rB.Eval(s) * arcAngleSpan(s, c.EntityB).Eval(s)
		c.ValA = lenA - lenB
		return nil
	case sketch.ConstraintAngle:
		a1, b1 := lineFrame(s, c.EntityA)
		a2, b2 := lineFrame(s, c.EntityB)
		d1 := b1.Eval(s).Sub(a1.Eval(s))
		d2 := b2.Eval(s).Sub(a2.Eval(s))
		cosTheta := d1.Dot(d2) / (d1.Mag() * d2.Mag())
		cosTheta = math.Max(-1, math.Min(1, cosTheta))
		theta := math.Acos(cosTheta) * 180 / math.Pi
		if c.Other {
			theta = 180 - theta
		}
		c.ValA = theta
		return nil
	case sketch.ConstraintEqualAngle:
		return nil
	case sketch.ConstraintProjectedDistance:
		refA, refB := lineFrame(s, c.EntityA)
		dir := refB.Eval(s).Sub(refA.Eval(s))
		d := pos(s, c.PtB).Eval(s).Sub(pos(s, c.PtA).Eval(s))
		c.ValA = d.Dot(dir) / dir.Mag()
		return nil
	default:
		return nil
	}
}
