package sketch

import (
	"fmt"

	"github.com/solvecore/solvecore/pkg/handle"
)

// ConstraintKind enumerates the declarative relation kinds spec.md S3 lists.
type ConstraintKind int

const (
	ConstraintPointsCoincident ConstraintKind = iota
	ConstraintPtPtDistance
	ConstraintPtPlaneDistance
	ConstraintPtLineDistance
	ConstraintPtFaceDistance
	ConstraintPtInPlane
	ConstraintPtOnLine
	ConstraintPtOnFace
	ConstraintPtOnCircle
	ConstraintEqualLengthLines
	ConstraintLengthRatio
	ConstraintLengthDifference
	ConstraintArcLengthRatio
	ConstraintArcLengthDifference
	ConstraintEqualAngle
	ConstraintMidpoint
	ConstraintHorizontal
	ConstraintVertical
	ConstraintDiameter
	ConstraintSameOrientation
	ConstraintAngle
	ConstraintParallel
	ConstraintPerpendicular
	ConstraintArcLineTangent
	ConstraintCubicLineTangent
	ConstraintCurveCurveTangent
	ConstraintEqualRadius
	ConstraintProjectedDistance
	ConstraintSymmetricPoint
	ConstraintSymmetricHoriz
	ConstraintSymmetricVert
	ConstraintSymmetricLine
	ConstraintWhereDragged
	ConstraintComment
)

func (k ConstraintKind) String() string {
	names := [...]string{
		"PointsCoincident", "PtPtDistance", "PtPlaneDistance", "PtLineDistance",
		"PtFaceDistance", "PtInPlane", "PtOnLine", "PtOnFace", "PtOnCircle",
		"EqualLengthLines", "LengthRatio", "LengthDifference", "ArcLengthRatio",
		"ArcLengthDifference", "EqualAngle", "Midpoint", "Horizontal",
		"Vertical", "Diameter", "SameOrientation", "Angle", "Parallel",
		"Perpendicular", "ArcLineTangent", "CubicLineTangent",
		"CurveCurveTangent", "EqualRadius", "ProjectedDistance",
		"SymmetricPoint", "SymmetricHoriz", "SymmetricVert", "SymmetricLine",
		"WhereDragged", "Comment",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("ConstraintKind(%d)", int(k))
}

// GeneratesEquations reports whether this kind contributes residual
// equations at all; Comment constraints are rendered annotations only
// (spec.md S4.4: "comment: no equations").
func (k ConstraintKind) GeneratesEquations() bool { return k != ConstraintComment }

// Constraint is a declarative relation between entities (spec.md S3). A
// single tagged struct carries every kind's payload, dispatched by Kind in
// pkg/reduce rather than a method set per kind, mirroring Entity/Group.
type Constraint struct {
	H     handle.Constraint
	Kind  ConstraintKind
	Group handle.Group

	// PtA/PtB/PtC/EntityA/EntityB hold the kind-specific operand
	// handles; unused fields stay handle.None for a given Kind. Workplane is
	// the plane 2D constraints are expressed in, or handle.None for a
	// free-3D constraint.
	Workplane handle.Entity
	PtA       handle.Entity
	PtB       handle.Entity
	PtC       handle.Entity
	EntityA   handle.Entity
	EntityB   handle.Entity

	// ValA/ValB are the constraint's user-entered numeric operands (a
	// distance, an angle in degrees, a ratio).
	ValA float64
	ValB float64

	// Other and OtherAngle select between the two residual sign/branch
	// conventions a handful of kinds need (Other picks the supplementary
	// angle for Angle and the direction sign for curve tangency) — see
	// SPEC_FULL.md's supplemented-features note on the original's
	// Constraint::other/otherAngle fields.
	Other      bool
	OtherAngle bool

	// OtherParam is the constraint-private interior unknown some kinds
	// allocate (a parametric position along a curve for PtOnLine/PtOnFace,
	// the midpoint's parametric position along the line for SymmetricLine);
	// handle.None if this kind
	// allocates none.
	OtherParam handle.Param

	Style handle.Style
	// Comment is the user-entered annotation text for a Comment constraint,
	// or additional free-text the editor attaches to any constraint.
	Comment string

	// Disp is where the editor last placed this constraint's dimension
	// label, used only by the render sink.
	DispX, DispY float64
}

// NeedsOtherParam reports whether this kind allocates a private interior
// Param, per spec.md S4.4's "may allocate one private Param".
func (k ConstraintKind) NeedsOtherParam() bool {
	switch k {
	case ConstraintPtOnLine, ConstraintPtOnFace, ConstraintSymmetricLine:
		return true
	default:
		return false
	}
}

// AddConstraint allocates a handle and inserts c into the store, allocating
// c's private Param first if its kind requires one.
func (s *Sketch) AddConstraint(c *Constraint) *Constraint {
	c.H = s.NewConstraintHandle()
	if c.Kind.NeedsOtherParam() && c.OtherParam.IsNone() {
		// Constraint-private Params are derived from the owning Group's base
		// at a high local offset (0x8000..) so they never collide with the
		// Group's own low-indexed introduced Params (e.g. an extrude vector
		// at local 0..2).
		h := handle.DeriveGroupParam(uint32(c.Group), 0x8000+uint32(c.H))
		p := s.AddParam(h, c.Group, 0)
		c.OtherParam = p.H
	}
	s.Constraints.Set(c.H, c)
	return c
}
