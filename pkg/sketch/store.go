// Package sketch holds the indexed containers for Param, Entity, Request,
// Constraint, Group, and Style — the sketch store described in spec.md S3
// and S4.2. Containers are handle-indexed maps with insertion-order
// iteration, validate-then-insert Add operations, and Set/FindByID/
// FindByIDNoOops/MustFind/Remove operations, generalizing
// the teacher's pkg/graph/graph.go Graph container (Rooms/Connectors maps,
// validate-then-insert AddRoom/AddConnector) from two entity kinds to six.
package sketch

import (
	"fmt"
	"sort"

	"github.com/solvecore/solvecore/pkg/expr"
	"github.com/solvecore/solvecore/pkg/handle"
)

// table is a generic handle-indexed container with insertion-order
// iteration. It does not allocate per-operation beyond what the Go map
// implementation itself does, matching spec.md S4.2's container contract.
type table[K comparable, V any] struct {
	items map[K]V
	order []K
}

func newTable[K comparable, V any]() *table[K, V] {
	return &table[K, V]{items: make(map[K]V)}
}

// Add inserts v under k, returning an error if k is already present.
func (t *table[K, V]) Add(k K, v V) error {
	if _, exists := t.items[k]; exists {
		return fmt.Errorf("sketch: duplicate handle %v", k)
	}
	t.items[k] = v
	t.order = append(t.order, k)
	return nil
}

// Set overwrites (or inserts) v under k without a duplicate check, used
// when regeneration replaces an existing record for the same handle.
func (t *table[K, V]) Set(k K, v V) {
	if _, exists := t.items[k]; !exists {
		t.order = append(t.order, k)
	}
	t.items[k] = v
}

// FindByID returns the value for k, or the zero value and false.
func (t *table[K, V]) FindByID(k K) (V, bool) {
	v, ok := t.items[k]
	return v, ok
}

// FindByIDNoOops is an alias for FindByID: it returns an absent marker (the
// boolean) instead of a fatal lookup failure, matching spec.md S4.2's
// naming for the non-fatal lookup variant.
func (t *table[K, V]) FindByIDNoOops(k K) (V, bool) { return t.FindByID(k) }

// MustFind returns the value for k, invoking the host fatal-error callback
// if absent. Used only where a dangling handle is a corruption, never for
// input validation.
func (t *table[K, V]) MustFind(k K) V {
	v, ok := t.items[k]
	if !ok {
		Fatal(fmt.Sprintf("sketch: corrupt handle %v: no such record", k))
	}
	return v
}

// Remove deletes k, a no-op if absent.
func (t *table[K, V]) Remove(k K) {
	if _, exists := t.items[k]; !exists {
		return
	}
	delete(t.items, k)
	for i, o := range t.order {
		if o == k {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
}

// Keys returns every handle in insertion order.
func (t *table[K, V]) Keys() []K {
	out := make([]K, len(t.order))
	copy(out, t.order)
	return out
}

// SortedKeys returns every handle sorted by less, used wherever iteration
// order feeds a numerical or geometric result and must be deterministic
// regardless of map/insertion history — the same discipline
// pkg/embedding/force_directed.go applies by sorting room IDs before any
// force calculation.
func (t *table[K, V]) SortedKeys(less func(a, b K) bool) []K {
	out := t.Keys()
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

func (t *table[K, V]) Len() int { return len(t.order) }

// Fatal is the host-provided fatal-error callback for programmer-invariant
// violations (spec.md S9's "oops"/"ssassert" mapping). Library code must
// never call os.Exit directly; hosts embedding solvecore may override this
// to integrate with their own crash reporting.
var Fatal = func(msg string) { panic(msg) }

// Sketch is the explicit aggregate passed through the solver and
// regeneration driver in place of the original's process-wide SS/SK
// globals (spec.md S9). An undo snapshot is a deep copy of this struct
// (pkg/undo).
type Sketch struct {
	Params      *table[handle.Param, *Param]
	Entities    *table[handle.Entity, *Entity]
	Requests    *table[handle.Request, *Request]
	Constraints *table[handle.Constraint, *Constraint]
	Groups      *table[handle.Group, *Group]
	Styles      *table[handle.Style, *Style]

	nextRequest    uint32
	nextConstraint uint32
	nextGroup      uint32
	nextStyle      uint32

	// ActiveGroup is the group the editor is currently appending requests
	// to; undo snapshots this handle alongside the store (spec.md S4.12).
	ActiveGroup handle.Group

	// fixedParamCounter derives stable handles for the references group's
	// own fixed Params during installReferences, local to this Sketch so
	// two independently-constructed Sketches derive identical reference
	// handles regardless of process-wide call history.
	fixedParamCounter uint32
}

// New creates an empty Sketch pre-populated with the predefined references
// group and XY/YZ/ZX workplanes, matching spec.md S3's reserved small
// handles.
func New() *Sketch {
	s := &Sketch{
		Params:      newTable[handle.Param, *Param](),
		Entities:    newTable[handle.Entity, *Entity](),
		Requests:    newTable[handle.Request, *Request](),
		Constraints: newTable[handle.Constraint, *Constraint](),
		Groups:      newTable[handle.Group, *Group](),
		Styles:      newTable[handle.Style, *Style](),
		nextGroup:   handle.GroupReferences,
	}
	s.installReferences()
	installDefaultStyles(s)
	s.ActiveGroup = handle.Group(handle.GroupReferences)
	return s
}

// installReferences creates the references group and its three fixed
// workplanes plus the origin point, at the reserved handles spec.md S3
// names.
func (s *Sketch) installReferences() {
	refGroup := &Group{
		H:      handle.Group(handle.GroupReferences),
		Kind:   GroupDrawing3D,
		Dirty:  false,
		Status: SolveOkay,
	}
	_ = s.Groups.Add(refGroup.H, refGroup)
	s.nextGroup = handle.GroupReferences + 1

	originParams := s.addFixedParams(refGroup.H, 0, 0, 0)
	origin := &Entity{
		H:      handle.Entity(handle.EntityOrigin),
		Kind:   EntityPoint3D,
		Group:  refGroup.H,
		Params: originParams,
	}
	_ = s.Entities.Add(origin.H, origin)

	// Quaternions for the three reference planes: XY is the identity frame
	// (axisN = +Z); YZ and ZX are the two nontrivial 120-degree rotations
	// about (1,1,1) cycling the basis X->Y->Z->X, chosen so axisN for YZ is
	// +X and axisN for ZX is +Y, matching their names.
	planes := []struct {
		h          uint32
		w, x, y, z float64
	}{
		{handle.EntityXY, 1, 0, 0, 0},
		{handle.EntityYZ, 0.5, 0.5, 0.5, 0.5},
		{handle.EntityZX, -0.5, 0.5, 0.5, 0.5},
	}
	// Derive local entity indices for the normal entities from a dedicated
	// request-less base so they don't collide with future Request-derived
	// handles; references use local indices 0x100.. within the references
	// group's own base.
	base := handle.GroupBase(handle.GroupReferences) + 0x100
	for i, p := range planes {
		qParams := s.addFixedParams4(refGroup.H, p.w, p.x, p.y, p.z)
		normal := &Entity{
			H:      handle.Entity(base + uint32(i)),
			Kind:   EntityNormal3D,
			Group:  refGroup.H,
			Params: qParams,
		}
		_ = s.Entities.Add(normal.H, normal)

		wp := &Entity{
			H:      handle.Entity(p.h),
			Kind:   EntityWorkplane,
			Group:  refGroup.H,
			Points: []handle.Entity{origin.H},
			Normal: normal.H,
		}
		_ = s.Entities.Add(wp.H, wp)
	}
}

// addFixedParams and addFixedParams4 allocate Known Params for the
// references group's fixed geometry (the origin point and the three
// reference-plane normal quaternions), deriving handles from a per-Sketch
// counter distinct from anything a real Request could generate
// (Request-derived handles are always owned by a Request index >= 1; the
// references group owns no Requests, so GroupBase(GroupReferences) is
// otherwise unused).
func (s *Sketch) addFixedParams(owner handle.Group, x, y, z float64) []handle.Param {
	base := handle.GroupBase(uint32(owner))
	vals := []float64{x, y, z}
	out := make([]handle.Param, len(vals))
	for i, v := range vals {
		h := handle.Param(handle.Derive(base, s.fixedParamCounter))
		s.fixedParamCounter++
		p := s.AddParam(h, owner, v)
		p.Known = true
		out[i] = h
	}
	return out
}

func (s *Sketch) addFixedParams4(owner handle.Group, w, x, y, z float64) []handle.Param {
	base := handle.GroupBase(uint32(owner))
	vals := []float64{w, x, y, z}
	out := make([]handle.Param, len(vals))
	for i, v := range vals {
		h := handle.Param(handle.Derive(base, s.fixedParamCounter))
		s.fixedParamCounter++
		p := s.AddParam(h, owner, v)
		p.Known = true
		out[i] = h
	}
	return out
}

func installDefaultStyles(s *Sketch) {
	for _, st := range DefaultStyles() {
		h := handle.Style(s.nextStyle + 1)
		s.nextStyle++
		st.H = h
		_ = s.Styles.Add(h, st)
	}
}

// NewRequestHandle allocates the next Request handle.
func (s *Sketch) NewRequestHandle() handle.Request {
	s.nextRequest++
	return handle.Request(s.nextRequest)
}

// NewGroupHandle allocates the next Group handle.
func (s *Sketch) NewGroupHandle() handle.Group {
	s.nextGroup++
	return handle.Group(s.nextGroup)
}

// NewConstraintHandle allocates the next Constraint handle.
func (s *Sketch) NewConstraintHandle() handle.Constraint {
	s.nextConstraint++
	return handle.Constraint(s.nextConstraint)
}

// NewStyleHandle allocates the next Style handle.
func (s *Sketch) NewStyleHandle() handle.Style {
	s.nextStyle++
	return handle.Style(s.nextStyle)
}

// Resolve implements expr.ParamTable by looking a Param handle up in this
// sketch's Param table and returning it bound as an expr.ParamRef.
func (s *Sketch) Resolve(p handle.Param) (expr.ParamRef, bool) {
	rec, ok := s.Params.FindByID(p)
	if !ok {
		return nil, false
	}
	return rec, true
}

// Value implements expr.Lookup.
func (s *Sketch) Value(p handle.Param) float64 {
	rec, ok := s.Params.FindByID(p)
	if !ok {
		return 0
	}
	return rec.Val
}

// GroupOrder returns every Group handle sorted by its underlying integer
// value, which is assignment (and therefore pipeline) order — Groups are
// handed out sequentially by NewGroupHandle, so sorting by handle value is
// equivalent to sorting by creation order.
func (s *Sketch) GroupOrder() []handle.Group {
	return s.Groups.SortedKeys(func(a, b handle.Group) bool { return a < b })
}
