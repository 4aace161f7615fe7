package meshbuild

import (
	"sort"

	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/handle"
	"github.com/solvecore/solvecore/pkg/sketch"
	"github.com/solvecore/solvecore/pkg/triangulate"
)

// loop is one closed ring of the source polygon: UV points plus the line
// segment Entity each edge came from, so builders can tag side faces via
// the owning Group's remap table.
type loop struct {
	points []triangulate.Point
	edges  []handle.Entity
}

// sourcePolygon walks g's SourceGroup for non-construction line segments,
// reconstructs however many closed loops they form, and returns those loops
// as found, without sorting them into an outer boundary and holes (spec.md
// S4.7's "triangulate the source polygon"). It also returns the workplane the polygon lies on, needed to
// place the UV points back in world space.
func sourcePolygon(s *sketch.Sketch, g *sketch.Group) ([]loop, handle.Entity, error) {
	if g.SourceGroup == handle.Group(handle.None) {
		return nil, handle.Entity(handle.None), ErrNoSourceGroup
	}

	adjacency := make(map[handle.Entity]handle.Entity)
	edgeOf := make(map[[2]handle.Entity]handle.Entity)
	var workplane handle.Entity
	seen := false

	for _, h := range s.Entities.Keys() {
		e := s.Entities.MustFind(h)
		if e.Group != g.SourceGroup || e.Kind != sketch.EntityLineSegment || e.Construction {
			continue
		}
		if !seen {
			workplane = e.Workplane
			seen = true
		} else if e.Workplane != workplane {
			return nil, handle.Entity(handle.None), ErrNonCoplanarSource
		}
		adjacency[e.Points[0]] = e.Points[1]
		edgeOf[[2]handle.Entity{e.Points[0], e.Points[1]}] = e.H
	}
	if !seen {
		return nil, handle.Entity(handle.None), ErrNoSourceGroup
	}

	visited := make(map[handle.Entity]bool, len(adjacency))
	var starts []handle.Entity
	for from := range adjacency {
		starts = append(starts, from)
	}
	sort.Slice(starts, func(i, j int) bool { return starts[i] < starts[j] })

	var loops []loop
	for _, start := range starts {
		if visited[start] {
			continue
		}
		var ring []handle.Entity
		cur := start
		for {
			if visited[cur] {
				break
			}
			visited[cur] = true
			ring = append(ring, cur)
			next, ok := adjacency[cur]
			if !ok {
				return nil, handle.Entity(handle.None), ErrOpenPolygon
			}
			if next == start {
				break
			}
			cur = next
		}
		if len(ring) < 3 {
			continue
		}
		lp := loop{points: make([]triangulate.Point, len(ring)), edges: make([]handle.Entity, len(ring))}
		for i, h := range ring {
			e := s.Entities.MustFind(h)
			lp.points[i] = triangulate.Point{U: s.Value(e.Params[0]), V: s.Value(e.Params[1])}
			next := ring[(i+1)%len(ring)]
			lp.edges[i] = edgeOf[[2]handle.Entity{h, next}]
		}
		loops = append(loops, lp)
	}
	if len(loops) == 0 {
		return nil, handle.Entity(handle.None), ErrOpenPolygon
	}
	return loops, workplane, nil
}

// worldFrame returns the origin and UV-axis vectors of the workplane wp
// lies on, for mapping triangulate.Point UV coordinates into world space.
func worldFrame(s *sketch.Sketch, wp handle.Entity) (origin, axisU, axisV geom.Vec) {
	e := s.Entities.MustFind(wp)
	o, normal := e.WorkplaneFrame(s)
	return o, normal.AxisU(), normal.AxisV()
}

func toWorld(origin, axisU, axisV geom.Vec, p triangulate.Point) geom.Vec {
	return origin.Add(axisU.Scale(p.U)).Add(axisV.Scale(p.V))
}

// outerAndHoles splits loops by descending UV area into the outer boundary
// ring plus hole rings, mirroring triangulate.SplitOuterAndHoles but
// carrying the edge-handle slices alongside.
func outerAndHoles(loops []loop) (loop, []loop) {
	sorted := append([]loop(nil), loops...)
	sort.Slice(sorted, func(i, j int) bool {
		return polygonArea(sorted[i].points) > polygonArea(sorted[j].points)
	})
	return sorted[0], sorted[1:]
}

func polygonArea(pts []triangulate.Point) float64 {
	var sum float64
	n := len(pts)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].U*pts[j].V - pts[j].U*pts[i].V
	}
	if sum < 0 {
		sum = -sum
	}
	return sum / 2
}
