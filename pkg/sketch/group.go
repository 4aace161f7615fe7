package sketch

import (
	"fmt"

	"github.com/solvecore/solvecore/pkg/handle"
)

// GroupKind enumerates the regeneration-pipeline stage variants spec.md S3
// lists.
type GroupKind int

const (
	GroupDrawing3D GroupKind = iota
	GroupDrawingWorkplane
	GroupStepTranslate
	GroupStepRotate
	GroupExtrude
	GroupLathe
	GroupSweep
	GroupHelicalSweep
	GroupLinked
)

func (k GroupKind) String() string {
	names := [...]string{
		"Drawing3D", "DrawingWorkplane", "StepTranslate", "StepRotate",
		"Extrude", "Lathe", "Sweep", "HelicalSweep", "Linked",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("GroupKind(%d)", int(k))
}

// CombineOp is a Group's boolean-combine policy against its predecessor's
// runningMesh (spec.md S3/S4.6).
type CombineOp int

const (
	CombineUnion CombineOp = iota
	CombineDifference
	CombineAssemble
	CombineInterferenceCheck
)

func (o CombineOp) String() string {
	names := [...]string{"Union", "Difference", "Assemble", "InterferenceCheck"}
	if int(o) < len(names) {
		return names[o]
	}
	return fmt.Sprintf("CombineOp(%d)", int(o))
}

// SolveStatus is the result category a Group's solve attempt reports
// (spec.md S4.5/S7).
type SolveStatus int

const (
	SolveOkay SolveStatus = iota
	SolveDidntConverge
	SolveRedundantOkay
	SolveRedundantDidntConverge
	SolveTooManyUnknowns
)

func (st SolveStatus) String() string {
	names := [...]string{
		"Okay", "DidntConverge", "RedundantOkay", "RedundantDidntConverge",
		"TooManyUnknowns",
	}
	if int(st) < len(names) {
		return names[st]
	}
	return fmt.Sprintf("SolveStatus(%d)", int(st))
}

// RemapKey is the (original handle, copy number) pair a step-and-repeat
// Group's Remap table is keyed by (spec.md S3, SPEC_FULL.md supplemented
// feature 4), so a later constraint can name "vertex 3 of copy 5" by a
// stable derived handle instead of a raw (original, copy) tuple.
type RemapKey struct {
	Original handle.Entity
	Copy     int
}

// GenerationError is the Group-recorded error taxonomy spec.md S7 defines
// for regeneration failures ("Recorded on the Group, not raised").
type GenerationError struct {
	Code    GenerationErrorCode
	Detail  string
	Culprit handle.Entity
}

type GenerationErrorCode int

const (
	ErrNone GenerationErrorCode = iota
	ErrMissingEntity
	ErrBadWorkplane
	ErrBadExtrudeSource
	ErrNonCoplanarPolygon
	ErrNotClosedPolygon
	ErrInterferenceDetected
	ErrNakedEdge
	ErrTriangulationBail
)

func (c GenerationErrorCode) String() string {
	names := [...]string{
		"None", "MissingEntity", "BadWorkplane", "BadExtrudeSource",
		"NonCoplanarPolygon", "NotClosedPolygon", "InterferenceDetected",
		"NakedEdge", "TriangulationBail",
	}
	if int(c) < len(names) {
		return names[c]
	}
	return fmt.Sprintf("GenerationErrorCode(%d)", int(c))
}

// SubtypeFlags bundles the per-kind subtype bits spec.md S3 mentions
// ("one-sided/two-sided, left/right-handed, skip-first, etc."), applicable
// to step-and-repeat, sweep, and helical-sweep Groups.
type SubtypeFlags struct {
	TwoSided   bool
	LeftHanded bool
	SkipFirst  bool
}

// Group is an ordered stage in the regeneration pipeline (spec.md S3). A
// single tagged struct carries every variant's payload, dispatched by Kind
// in pkg/regen and pkg/meshbuild.
type Group struct {
	H    handle.Group
	Kind GroupKind
	Name string

	// Predecessor is the Group recorded by NewGroup as this one's
	// predecessor, or handle.None for the first real Group after the
	// references group. pkg/regen does not read it: it combines each Group
	// onto the running mesh of the Group before it in GroupOrder.
	Predecessor handle.Group
	Combine     CombineOp
	Subtype     SubtypeFlags

	// Dirty marks this Group (and by propagation every successor) as needing
	// regeneration (spec.md S4.6 invalidation rule).
	Dirty bool

	Status SolveStatus
	// Dof is the degrees-of-freedom count the rank analysis stage reports
	// (spec.md S4.5).
	Dof int
	// BadConstraints lists suspect Constraint handles on solver failure.
	BadConstraints []handle.Constraint

	Error GenerationError

	// ExtrudeVector / Turns / Pitch / DRadius / Axis / AxisPoint hold the
	// kind-specific numeric drivers: Extrude uses ExtrudeVector's three
	// Params; HelicalSweep uses Turns (valA), Pitch (valB), DRadius (valC)
	// plus Axis/AxisPoint; StepTranslate/StepRotate use ExtrudeVector as the
	// per-copy delta (translation or rotation-about-axis) and Copies as the
	// repeat count.
	ExtrudeVector [3]handle.Param
	Turns         handle.Param
	Pitch         handle.Param
	DRadius       handle.Param
	Axis          handle.Entity
	AxisPoint     handle.Entity
	Copies        int

	// SourceGroup is the predecessor Group whose 2D sketch this Group's
	// builder consumes (Extrude/Lathe/Sweep/HelicalSweep).
	SourceGroup handle.Group

	// Trajectory is the Group whose sketch defines the path a Sweep
	// follows (spec.md S4.7's "parallel-transport a section polygon along
	// a trajectory contour"). Unused by every other kind.
	Trajectory handle.Group

	Color handle.Style
	Style handle.Style

	// Remap assigns stable per-copy Entity handles for step-and-repeat
	// Groups, keyed by (original handle, copy number) (SPEC_FULL.md
	// supplemented feature 4).
	Remap map[RemapKey]handle.Entity

	// LinkedPath is the relative path a Linked Group resolves through the
	// File sink's locate hook (spec.md S6).
	LinkedPath string

	// LinkedTransform is the rigid transform a Linked Group applies to its
	// cached triangle set: a translation Param triple followed by a
	// quaternion Param quadruple (spec.md S4.7 "Imported").
	LinkedTransform [7]handle.Param

	// ThisMesh / RunningMesh hold this Group's own mesh contribution and its
	// combination with the predecessor's RunningMesh (spec.md S3). Typed as
	// opaque interfaces here so pkg/sketch has no import dependency on
	// pkg/mesh; the concrete type stored is *mesh.Mesh.
	ThisMesh    Mesh
	RunningMesh Mesh

	nextDof int
}

// Mesh is the minimal shape pkg/sketch needs from a Group's mesh
// contribution, satisfied by pkg/mesh's *mesh.Mesh without pkg/sketch
// importing it.
type Mesh interface {
	TriangleCount() int
}

// NewGroup allocates a handle and inserts a fresh, dirty Group whose
// predecessor is pred (or handle.None to chain directly off the references
// group).
func (s *Sketch) NewGroup(kind GroupKind, pred handle.Group) *Group {
	h := s.NewGroupHandle()
	g := &Group{
		H:           h,
		Kind:        kind,
		Predecessor: pred,
		Dirty:       true,
		Remap:       make(map[RemapKey]handle.Entity),
	}
	s.Groups.Set(h, g)
	s.MarkDirty(h)
	return g
}

// MarkDirty marks g and every Group after it in pipeline order dirty,
// implementing spec.md S4.6's invalidation rule ("any mutation that reaches
// a Group marks it and every successor dirty").
func (s *Sketch) MarkDirty(g handle.Group) {
	hit := false
	for _, h := range s.GroupOrder() {
		if h == g {
			hit = true
		}
		if hit {
			s.Groups.MustFind(h).Dirty = true
		}
	}
}

// RemapEntity returns the stable handle for the copyN'th repetition of
// original within g's Remap table, allocating and recording a fresh handle
// derived from g's own base on first use so repeated regeneration passes
// are idempotent (Testable Property 5).
func (g *Group) RemapEntity(original handle.Entity, copyN int) handle.Entity {
	key := RemapKey{Original: original, Copy: copyN}
	if h, ok := g.Remap[key]; ok {
		return h
	}
	local := uint32(len(g.Remap))
	h := handle.Entity(handle.Derive(handle.GroupBase(uint32(g.H)), local))
	g.Remap[key] = h
	return h
}
