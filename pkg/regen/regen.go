// Package regen drives the ordered pass over a Sketch's Groups: clear and
// regenerate each Group's Entities/Params from its Requests, solve its
// Constraints, build its mesh contribution, and combine it onto the
// running mesh (spec.md S4.6). It is the top-level orchestrator comparable
// to the teacher's pkg/dungeon.DefaultGenerator.Generate: a fixed sequence
// of stages run once per unit of work (there a dungeon, here a Group),
// each stage's error wrapped and attributed rather than aborting the whole
// pass, with context cancellation checked between units.
package regen

import (
	"context"
	"fmt"

	"github.com/solvecore/solvecore/pkg/bsp"
	"github.com/solvecore/solvecore/pkg/generate"
	"github.com/solvecore/solvecore/pkg/handle"
	"github.com/solvecore/solvecore/pkg/mesh"
	"github.com/solvecore/solvecore/pkg/meshbuild"
	"github.com/solvecore/solvecore/pkg/sketch"
	"github.com/solvecore/solvecore/pkg/solve"
)

// Report summarizes one All() pass: the Groups actually regenerated (in
// pipeline order) and any per-Group errors recorded rather than raised,
// matching spec.md S4.6 step 5's "surface the error without aborting the
// pipeline".
type Report struct {
	Regenerated []handle.Group
	Errors      map[handle.Group]error
}

// All regenerates every dirty Group in pipeline order, stopping early only
// on ctx cancellation. A Group whose own stage fails is recorded in
// Report.Errors and left dirty; its successors still regenerate, combining
// onto the running mesh of the most recent Group that regenerated (or was
// already clean), so one bad Group doesn't stall the whole sketch.
func All(ctx context.Context, s *sketch.Sketch) (Report, error) {
	rep := Report{Errors: make(map[handle.Group]error)}
	var prevMesh *mesh.Mesh

	for _, h := range s.GroupOrder() {
		select {
		case <-ctx.Done():
			return rep, ctx.Err()
		default:
		}

		g := s.Groups.MustFind(h)
		if !g.Dirty {
			if m, ok := g.RunningMesh.(*mesh.Mesh); ok {
				prevMesh = m
			}
			continue
		}

		softErr, hardErr := one(s, g, prevMesh)
		if hardErr != nil {
			rep.Errors[h] = hardErr
			continue
		}
		g.Dirty = false
		rep.Regenerated = append(rep.Regenerated, h)
		if softErr != nil {
			rep.Errors[h] = softErr
		}
		if m, ok := g.RunningMesh.(*mesh.Mesh); ok {
			prevMesh = m
		}
	}
	return rep, nil
}

// one runs the four in-order stages spec.md S4.6 lists for a single Group.
// hardErr aborts this Group's regeneration (it stays dirty, its
// runningMesh unchanged). softErr is an interference-check failure: it is
// recorded on the Group and in the caller's report, but the pipeline still
// advances past this Group with its combined mesh (spec.md S4.6 step 5:
// "surface the error without aborting the pipeline").
func one(s *sketch.Sketch, g *sketch.Group, predecessorMesh *mesh.Mesh) (softErr, hardErr error) {
	if err := regenerateEntities(s, g); err != nil {
		g.Error = sketch.GenerationError{Code: sketch.ErrMissingEntity, Detail: err.Error()}
		return nil, fmt.Errorf("regen: group %v entities: %w", g.H, err)
	}

	result, err := solve.Solve(s, g.H, nil)
	if err != nil {
		g.Error = sketch.GenerationError{Code: sketch.ErrMissingEntity, Detail: err.Error()}
		return nil, fmt.Errorf("regen: group %v solve: %w", g.H, err)
	}
	g.Status = result.Status
	g.Dof = result.Dof
	g.BadConstraints = result.BadConstraints

	thisMesh, err := meshbuild.Build(s, g)
	if err != nil {
		g.Error = sketch.GenerationError{Code: sketch.ErrBadExtrudeSource, Detail: err.Error()}
		return nil, fmt.Errorf("regen: group %v mesh: %w", g.H, err)
	}
	g.ThisMesh = thisMesh

	running, combineErr := combine(g, predecessorMesh, thisMesh)
	g.RunningMesh = running
	if combineErr != nil {
		g.Error = sketch.GenerationError{Code: sketch.ErrInterferenceDetected, Detail: combineErr.Error()}
		return fmt.Errorf("regen: group %v combine: %w", g.H, combineErr), nil
	}
	g.Error = sketch.GenerationError{}
	return nil, nil
}

// regenerateEntities clears every Entity/Param this Group's own Requests
// produced on a prior pass, then re-expands those Requests (spec.md S4.6
// step 1). Handle derivation is fixed arithmetic from a Request's own
// handle (spec.md S4.3/S4.6: "so that regeneration is idempotent"), so a
// previously-generated Entity or Param can be identified unambiguously by
// tracing handle.Owner back to one of this Group's Request handles. Entities
// and Params that are not Request-derived — reference geometry, and a
// Group's own driver Params (ExtrudeVector, Axis, Turns, ...) — are left
// untouched: a regeneration pass only ever replaces what a Request created.
// A Param regenerated under the same handle keeps the value it had before
// the pass.
func regenerateEntities(s *sketch.Sketch, g *sketch.Group) error {
	var reqs []*sketch.Request
	for _, h := range s.Requests.Keys() {
		r, ok := s.Requests.FindByID(h)
		if ok && r.Group == g.H {
			reqs = append(reqs, r)
		}
	}
	fromRequest := func(raw uint32) bool {
		owner := handle.Owner(raw)
		for _, r := range reqs {
			if owner == uint32(r.H) {
				return true
			}
		}
		return false
	}
	for _, h := range s.Entities.Keys() {
		if fromRequest(uint32(h)) {
			s.Entities.Remove(h)
		}
	}
	oldVals := make(map[handle.Param]float64)
	for _, h := range s.Params.Keys() {
		if fromRequest(uint32(h)) {
			oldVals[h] = s.Params.MustFind(h).Val
			s.Params.Remove(h)
		}
	}
	for _, r := range reqs {
		if err := generate.Generate(s, r); err != nil {
			return err
		}
	}
	for h, v := range oldVals {
		if p, ok := s.Params.FindByID(h); ok {
			p.Val = v
		}
	}
	return nil
}

// combine applies g's combine policy to fold thisMesh onto predecessorMesh
// (spec.md S4.6 steps 4-5). An interference-check failure is reported via
// the returned error but does not discard either mesh: the merged
// (Assemble) mesh is returned with the error and the caller stores it as
// g.RunningMesh.
func combine(g *sketch.Group, predecessorMesh, thisMesh *mesh.Mesh) (*mesh.Mesh, error) {
	if predecessorMesh == nil {
		return thisMesh, nil
	}
	switch g.Combine {
	case sketch.CombineUnion:
		return bsp.Union(predecessorMesh, thisMesh), nil
	case sketch.CombineDifference:
		return bsp.Difference(predecessorMesh, thisMesh), nil
	case sketch.CombineAssemble:
		return bsp.Assemble(predecessorMesh, thisMesh), nil
	case sketch.CombineInterferenceCheck:
		bad := bsp.Interference(predecessorMesh, thisMesh)
		merged := bsp.Assemble(predecessorMesh, thisMesh)
		if len(bad) > 0 {
			return merged, fmt.Errorf("regen: %d interfering triangles", len(bad))
		}
		return merged, nil
	default:
		return thisMesh, fmt.Errorf("regen: unknown combine policy %v", g.Combine)
	}
}
