package meshbuild

import (
	"sort"

	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/handle"
	"github.com/solvecore/solvecore/pkg/sketch"
)

// trajectoryChain walks trajGroup's non-construction line segments into a
// single ordered open chain of world-space points, applying spec.md
// S4.7.8's start-selection rule: start at the endpoint that is not shared
// with any other edge (the open end of the contour).
func trajectoryChain(s *sketch.Sketch, trajGroup handle.Group) ([]geom.Vec, error) {
	type edge struct{ a, b handle.Entity }
	var edges []edge
	degree := make(map[handle.Entity]int)
	for _, h := range s.Entities.Keys() {
		e := s.Entities.MustFind(h)
		if e.Group != trajGroup || e.Kind != sketch.EntityLineSegment || e.Construction {
			continue
		}
		edges = append(edges, edge{e.Points[0], e.Points[1]})
		degree[e.Points[0]]++
		degree[e.Points[1]]++
	}
	if len(edges) == 0 {
		return nil, ErrNoSourceGroup
	}

	adjacency := make(map[handle.Entity][]handle.Entity)
	for _, ed := range edges {
		adjacency[ed.a] = append(adjacency[ed.a], ed.b)
		adjacency[ed.b] = append(adjacency[ed.b], ed.a)
	}

	var openEnds []handle.Entity
	for h, d := range degree {
		if d == 1 {
			openEnds = append(openEnds, h)
		}
	}
	var start handle.Entity
	if len(openEnds) > 0 {
		sort.Slice(openEnds, func(i, j int) bool { return openEnds[i] < openEnds[j] })
		start = openEnds[0]
	} else {
		// Closed loop trajectory: any vertex is a valid, arbitrary start.
		var all []handle.Entity
		for h := range adjacency {
			all = append(all, h)
		}
		sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
		start = all[0]
	}

	visitedEdge := make(map[[2]handle.Entity]bool)
	order := []handle.Entity{start}
	cur := start
	for {
		var next handle.Entity
		found := false
		for _, cand := range adjacency[cur] {
			key := [2]handle.Entity{cur, cand}
			rkey := [2]handle.Entity{cand, cur}
			if visitedEdge[key] || visitedEdge[rkey] {
				continue
			}
			next = cand
			found = true
			break
		}
		if !found {
			break
		}
		visitedEdge[[2]handle.Entity{cur, next}] = true
		order = append(order, next)
		cur = next
		if cur == start {
			break
		}
	}

	pts := make([]geom.Vec, len(order))
	for i, h := range order {
		pts[i] = s.Entities.MustFind(h).PointPos(s)
	}
	return pts, nil
}
