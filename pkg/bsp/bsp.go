// Package bsp builds a binary space partition over a triangle soup and uses
// it for boolean mesh combination (union, difference, interference-check)
// and back-to-front paint-order emission (spec.md S4.9).
package bsp

import (
	"math"

	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/mesh"
)

// planeEpsilon is the fixed tolerance a vertex's signed distance from a
// splitting plane must clear to count as strictly in front or behind it;
// smaller distances are treated as lying in the plane.
const planeEpsilon = 1e-9

// Plane is a splitting plane in point-normal form: Normal.Dot(v) == D for
// any v on the plane.
type Plane struct {
	Normal geom.Vec
	D      float64
}

func planeThrough(p geom.Vec, normal geom.Vec) Plane {
	return Plane{Normal: normal, D: normal.Dot(p)}
}

func (p Plane) signedDist(v geom.Vec) float64 { return p.Normal.Dot(v) - p.D }

// side classifies a point against a plane.
type side int

const (
	sideCoplanar side = iota
	sideFront
	sideBack
)

func classifyPoint(pl Plane, v geom.Vec) side {
	d := pl.signedDist(v)
	switch {
	case d > planeEpsilon:
		return sideFront
	case d < -planeEpsilon:
		return sideBack
	default:
		return sideCoplanar
	}
}

// Node is one BSP tree node: a splitting plane, its positive and negative
// subtrees, and the triangles that lie exactly in this node's plane,
// bucketed by whether their own normal agrees with the plane's (spec.md
// S4.9: "Coplanar triangles attach to the node's more list... same-normal
// vs opposite-normal distinction").
type Node struct {
	Plane         Plane
	Pos, Neg      *Node
	CoplanarSame  []mesh.Triangle
	CoplanarOpp   []mesh.Triangle
}

// Build constructs a BSP tree from a triangle soup (spec.md S4.9
// "Construction"). Returns nil for an empty input.
func Build(tris []mesh.Triangle) *Node {
	if len(tris) == 0 {
		return nil
	}
	pl := choosePartition(tris)
	n := &Node{Plane: pl}

	var pos, neg []mesh.Triangle
	for _, t := range tris {
		p, ng, coplanar, sameNormal := splitTriangle(pl, t)
		if coplanar {
			if sameNormal {
				n.CoplanarSame = append(n.CoplanarSame, t)
			} else {
				n.CoplanarOpp = append(n.CoplanarOpp, t)
			}
			continue
		}
		pos = append(pos, p...)
		neg = append(neg, ng...)
	}
	n.Pos = Build(pos)
	n.Neg = Build(neg)
	return n
}

// choosePartition picks a splitting plane by examining the three
// axis-aligned cuts through the triangle soup's centroid and keeping, among
// the cuts that actually separate the soup (triangles on both sides and
// none straddling the cut), whichever best balances positive/negative
// triangle counts. If none of the three separates the soup, it falls back
// to the plane of the first triangle (spec.md
// S4.9 "Construction").
func choosePartition(tris []mesh.Triangle) Plane {
	var sum geom.Vec
	for _, t := range tris {
		sum = sum.Add(t.Centroid())
	}
	centroid := sum.Scale(1.0 / float64(len(tris)))

	axes := []geom.Vec{{X: 1}, {Y: 1}, {Z: 1}}
	bestScore := math.Inf(1)
	var best Plane
	found := false
	for _, axis := range axes {
		pl := planeThrough(centroid, axis)
		var pos, neg, span int
		for _, t := range tris {
			p, n, coplanar, _ := splitTriangle(pl, t)
			switch {
			case coplanar:
			case len(p) > 0 && len(n) > 0:
				span++
			case len(p) > 0:
				pos++
			case len(n) > 0:
				neg++
			}
		}
		if pos == 0 || neg == 0 || span > 0 {
			continue
		}
		score := math.Abs(float64(pos-neg)) + 2*float64(span)
		if score < bestScore {
			bestScore = score
			best = pl
			found = true
		}
	}
	if found {
		return best
	}
	t := tris[0]
	return planeThrough(t.A, t.Normal)
}

// splitTriangle classifies t against pl. If every vertex lies in the
// plane, coplanar is true and sameNormal reports whether t's own normal
// agrees with pl's. Otherwise it returns the sub-triangles (fan-
// triangulated from the clipped polygon on each side) lying strictly in
// front and strictly behind pl — one triangle on the side with a single
// vertex, two on the side with two (spec.md S4.9: "split the triangle into
// one + two sub-triangles").
func splitTriangle(pl Plane, t mesh.Triangle) (pos, neg []mesh.Triangle, coplanar bool, sameNormal bool) {
	verts := [3]geom.Vec{t.A, t.B, t.C}
	sides := [3]side{classifyPoint(pl, verts[0]), classifyPoint(pl, verts[1]), classifyPoint(pl, verts[2])}

	if sides[0] == sideCoplanar && sides[1] == sideCoplanar && sides[2] == sideCoplanar {
		return nil, nil, true, t.Normal.Dot(pl.Normal) > 0
	}

	hasFront, hasBack := false, false
	for _, s := range sides {
		if s == sideFront {
			hasFront = true
		}
		if s == sideBack {
			hasBack = true
		}
	}
	if !hasBack {
		return []mesh.Triangle{t}, nil, false, false
	}
	if !hasFront {
		return nil, []mesh.Triangle{t}, false, false
	}

	var frontPts, backPts []geom.Vec
	for i := 0; i < 3; i++ {
		j := (i + 1) % 3
		vi, vj := verts[i], verts[j]
		si, sj := sides[i], sides[j]
		if si != sideBack {
			frontPts = append(frontPts, vi)
		}
		if si != sideFront {
			backPts = append(backPts, vi)
		}
		if (si == sideFront && sj == sideBack) || (si == sideBack && sj == sideFront) {
			di, dj := pl.signedDist(vi), pl.signedDist(vj)
			frac := di / (di - dj)
			ip := vi.Add(vj.Sub(vi).Scale(frac))
			frontPts = append(frontPts, ip)
			backPts = append(backPts, ip)
		}
	}
	return fanTriangulate(frontPts, t.Face), fanTriangulate(backPts, t.Face), false, false
}

func fanTriangulate(pts []geom.Vec, face uint32) []mesh.Triangle {
	var out []mesh.Triangle
	for i := 1; i+1 < len(pts); i++ {
		out = append(out, mesh.NewTriangle(pts[0], pts[i], pts[i+1], face))
	}
	return out
}

// Classify reports whether p lies inside the solid n's tree describes, by
// walking the tree toward whichever side p falls on and treating a nil
// child as the tree's boundary: exiting through a Neg branch counts as
// inside, through a Pos branch as outside. This holds for the simple,
// genus-0 solids pkg/meshbuild's builders produce; a self-intersecting or
// non-manifold input mesh can defeat it, the same kind of approximation
// pkg/solve's structural matcher accepts for deeper redundancy.
func Classify(n *Node, p geom.Vec) bool {
	if n == nil {
		return false
	}
	cur := n
	for {
		if cur.Plane.signedDist(p) > 0 {
			if cur.Pos == nil {
				return false
			}
			cur = cur.Pos
		} else {
			if cur.Neg == nil {
				return true
			}
			cur = cur.Neg
		}
	}
}
