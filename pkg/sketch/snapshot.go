package sketch

import "github.com/solvecore/solvecore/pkg/handle"

// Snapshot is a deep, independent copy of a Sketch's persistent state, used
// by pkg/undo to implement spec.md S4.12's whole-sketch undo stack. It
// deep-copies the Group, Request, Constraint, and Param tables plus the
// active-group handle and handle-allocation counters; it never copies a
// Group's ThisMesh/RunningMesh (transient regeneration caches spec.md S4.12
// says undo must NOT restore — restoring marks everything dirty instead, so
// regeneration rebuilds them from the restored Requests/Constraints/Params).
type Snapshot struct {
	groups      map[handle.Group]Group
	groupOrder  []handle.Group
	requests    map[handle.Request]Request
	requestOrd  []handle.Request
	constraints map[handle.Constraint]Constraint
	constrOrd   []handle.Constraint
	params      map[handle.Param]Param
	paramOrder  []handle.Param

	activeGroup handle.Group

	nextRequest       uint32
	nextConstraint    uint32
	nextGroup         uint32
	nextStyle         uint32
	fixedParamCounter uint32
}

// Snapshot captures the sketch's current persistent state.
func (s *Sketch) Snapshot() *Snapshot {
	snap := &Snapshot{
		groups:      make(map[handle.Group]Group),
		requests:    make(map[handle.Request]Request),
		constraints: make(map[handle.Constraint]Constraint),
		params:      make(map[handle.Param]Param),
		activeGroup: s.ActiveGroup,

		nextRequest:       s.nextRequest,
		nextConstraint:    s.nextConstraint,
		nextGroup:         s.nextGroup,
		nextStyle:         s.nextStyle,
		fixedParamCounter: s.fixedParamCounter,
	}

	snap.groupOrder = s.Groups.Keys()
	for _, h := range snap.groupOrder {
		g := *s.Groups.MustFind(h)
		g.ThisMesh = nil
		g.RunningMesh = nil
		g.BadConstraints = append([]handle.Constraint(nil), g.BadConstraints...)
		remap := make(map[RemapKey]handle.Entity, len(g.Remap))
		for k, v := range g.Remap {
			remap[k] = v
		}
		g.Remap = remap
		snap.groups[h] = g
	}

	snap.requestOrd = s.Requests.Keys()
	for _, h := range snap.requestOrd {
		snap.requests[h] = *s.Requests.MustFind(h)
	}

	snap.constrOrd = s.Constraints.Keys()
	for _, h := range snap.constrOrd {
		snap.constraints[h] = *s.Constraints.MustFind(h)
	}

	snap.paramOrder = s.Params.Keys()
	for _, h := range snap.paramOrder {
		snap.params[h] = *s.Params.MustFind(h)
	}

	return snap
}

// Restore replaces the sketch's Group/Request/Constraint/Param tables and
// counters with fresh copies of snap's contents, then marks every Group
// dirty so the next regeneration pass rebuilds Entities and meshes from the
// restored Requests/Constraints/Params (spec.md S4.12: "restoration marks
// everything dirty").
func (s *Sketch) Restore(snap *Snapshot) {
	restoredRequests := make(map[handle.Request]bool, len(snap.requestOrd))
	for _, h := range snap.requestOrd {
		restoredRequests[h] = true
	}
	removedRequests := make(map[uint32]bool)
	for _, h := range s.Requests.Keys() {
		if !restoredRequests[h] {
			removedRequests[uint32(h)] = true
		}
	}
	if len(removedRequests) > 0 {
		for _, eh := range s.Entities.Keys() {
			e := s.Entities.MustFind(eh)
			if e.Group != handle.Group(handle.GroupReferences) && removedRequests[handle.Owner(uint32(eh))] {
				s.Entities.Remove(eh)
			}
		}
	}

	s.Groups = newTable[handle.Group, *Group]()
	for _, h := range snap.groupOrder {
		g := snap.groups[h]
		remap := make(map[RemapKey]handle.Entity, len(g.Remap))
		for k, v := range g.Remap {
			remap[k] = v
		}
		g.Remap = remap
		g.BadConstraints = append([]handle.Constraint(nil), g.BadConstraints...)
		g.Dirty = true
		s.Groups.Set(h, &g)
	}

	s.Requests = newTable[handle.Request, *Request]()
	for _, h := range snap.requestOrd {
		r := snap.requests[h]
		s.Requests.Set(h, &r)
	}

	s.Constraints = newTable[handle.Constraint, *Constraint]()
	for _, h := range snap.constrOrd {
		c := snap.constraints[h]
		s.Constraints.Set(h, &c)
	}

	s.Params = newTable[handle.Param, *Param]()
	for _, h := range snap.paramOrder {
		p := snap.params[h]
		s.Params.Set(h, &p)
	}

	s.ActiveGroup = snap.activeGroup
	s.nextRequest = snap.nextRequest
	s.nextConstraint = snap.nextConstraint
	s.nextGroup = snap.nextGroup
	s.nextStyle = snap.nextStyle
	s.fixedParamCounter = snap.fixedParamCounter
}
