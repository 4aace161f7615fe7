// Package raycast classifies a point or edge midpoint against a closed
// mesh shell as INSIDE, OUTSIDE, COINC_SAME or COINC_OPP (spec.md S4.10).
// The classifier treats its shell the same way pkg/bsp does: a triangle
// soup rather than a set of trimmed parametric surfaces, so edge-on-edge
// and edge-on-face incidence collapse to a single coincident-surface test
// against the nearest triangle's plane, and the general case falls
// straight to pseudo-random ray casting (spec.md S4.10 step 3), grounded
// on pkg/rng's deterministic, stage-seeded generator the same way
// pkg/embedding seeds its force-directed layout.
package raycast

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/mesh"
	"github.com/solvecore/solvecore/pkg/rng"
)

// Status is a query's classification against a shell.
type Status int

const (
	Inside Status = iota
	Outside
	CoincSame
	CoincOpp
)

func (s Status) String() string {
	switch s {
	case Inside:
		return "INSIDE"
	case Outside:
		return "OUTSIDE"
	case CoincSame:
		return "COINC_SAME"
	case CoincOpp:
		return "COINC_OPP"
	default:
		return "Status(?)"
	}
}

// ErrNakedEdge is returned when every pseudo-random ray direction, after the
// bounded retry budget, keeps landing exactly on a shell boundary edge
// (spec.md S4.10 step 3: "then bail reporting the naked edge").
var ErrNakedEdge = errors.New("raycast: closest intersection lies on a naked edge")

// maxRayRetries bounds the pseudo-random redirection loop.
const maxRayRetries = 8

// planeEpsilon is the coincidence tolerance for a point lying on a
// triangle's supporting plane.
const planeEpsilon = 1e-7

// edgeEpsilon is the tolerance for an intersection landing on a triangle's
// boundary edge rather than its interior, the ambiguous case spec.md S4.10
// step 3 says to retry.
const edgeEpsilon = 1e-7

// ClassifyPoint classifies p against m, the INSIDE/OUTSIDE case of spec.md
// S4.10 step 3. It passes no outward direction, so the coincident-plane
// check never matches and the result comes from ray casting alone: INSIDE
// or OUTSIDE, never COINC_SAME or COINC_OPP (only ClassifyEdge, given an
// outward direction, can report those).
func ClassifyPoint(m *mesh.Mesh, p geom.Vec) (Status, error) {
	return classify(m, p, geom.Vec{})
}

// ClassifyEdge classifies the midpoint of edge (a,b) against m, given the
// edge's outward-facing reference normal (spec.md S4.10's edge-on-edge
// sign-pattern table collapses, for a triangle soup, to comparing outward
// against whichever triangle plane the midpoint already lies on).
func ClassifyEdge(m *mesh.Mesh, a, b, outward geom.Vec) (Status, error) {
	mid := a.Add(b).Scale(0.5)
	return classify(m, mid, outward)
}

func classify(m *mesh.Mesh, p, outward geom.Vec) (Status, error) {
	if m == nil || len(m.Triangles) == 0 {
		return Outside, nil
	}
	if st, ok := coincident(m, p, outward); ok {
		return st, nil
	}

	seed := seedFromPoint(p)
	r := rng.NewRNG(seed, "raycast", nil)

	for attempt := 0; attempt < maxRayRetries; attempt++ {
		dir := randomDirection(r)
		t, tri, onEdge, hit := closestHit(m, p, dir)
		if !hit {
			return Outside, nil
		}
		if onEdge {
			continue
		}
		_ = t
		if tri.Normal.Dot(dir) > 0 {
			return Inside, nil
		}
		return Outside, nil
	}
	return Outside, ErrNakedEdge
}

// coincident reports whether p already lies on one of m's triangle planes,
// within that triangle's footprint, and if so which coincidence status
// that implies relative to outward.
func coincident(m *mesh.Mesh, p, outward geom.Vec) (Status, bool) {
	for _, tri := range m.Triangles {
		d := p.Sub(tri.A).Dot(tri.Normal)
		if math.Abs(d) > planeEpsilon {
			continue
		}
		if !pointInTriangle(p, tri) {
			continue
		}
		if outward.MagSquared() < 1e-20 {
			continue
		}
		if tri.Normal.Dot(outward) > 0 {
			return CoincSame, true
		}
		return CoincOpp, true
	}
	return Outside, false
}

// pointInTriangle reports whether p (assumed already on tri's plane) lies
// within tri's three edges, via the same-side barycentric test.
func pointInTriangle(p geom.Vec, tri mesh.Triangle) bool {
	edge := func(a, b, p geom.Vec) float64 { return b.Sub(a).Cross(p.Sub(a)).Dot(tri.Normal) }
	d1 := edge(tri.A, tri.B, p)
	d2 := edge(tri.B, tri.C, p)
	d3 := edge(tri.C, tri.A, p)
	hasNeg := d1 < -planeEpsilon || d2 < -planeEpsilon || d3 < -planeEpsilon
	hasPos := d1 > planeEpsilon || d2 > planeEpsilon || d3 > planeEpsilon
	return !(hasNeg && hasPos)
}

// closestHit casts a ray from origin in dir and returns the nearest
// positive-t intersection across every triangle of m, plus whether that
// intersection landed on the hit triangle's boundary (the ambiguous case
// spec.md S4.10 step 3 says to retry with a fresh direction).
func closestHit(m *mesh.Mesh, origin, dir geom.Vec) (t float64, tri mesh.Triangle, onEdge bool, hit bool) {
	best := math.Inf(1)
	for _, candidate := range m.Triangles {
		ct, u, v, ok := rayTriangle(origin, dir, candidate)
		if !ok || ct <= 1e-9 || ct >= best {
			continue
		}
		best = ct
		tri = candidate
		hit = true
		onEdge = u < edgeEpsilon || v < edgeEpsilon || u+v > 1-edgeEpsilon
	}
	return best, tri, onEdge, hit
}

// rayTriangle is the Möller-Trumbore ray/triangle intersection test,
// returning the barycentric (u, v) coordinates of the hit alongside t so
// closestHit can detect an edge-straddling intersection.
func rayTriangle(origin, dir geom.Vec, tri mesh.Triangle) (t, u, v float64, hit bool) {
	edge1 := tri.B.Sub(tri.A)
	edge2 := tri.C.Sub(tri.A)
	h := dir.Cross(edge2)
	a := edge1.Dot(h)
	if math.Abs(a) < 1e-12 {
		return 0, 0, 0, false
	}
	f := 1 / a
	s := origin.Sub(tri.A)
	u = f * s.Dot(h)
	if u < -1e-9 || u > 1+1e-9 {
		return 0, 0, 0, false
	}
	q := s.Cross(edge1)
	v = f * dir.Dot(q)
	if v < -1e-9 || u+v > 1+1e-9 {
		return 0, 0, 0, false
	}
	t = f * edge2.Dot(q)
	if t <= 0 {
		return 0, 0, 0, false
	}
	return t, u, v, true
}

// randomDirection draws a uniformly distributed unit vector from r.
func randomDirection(r *rng.RNG) geom.Vec {
	z := r.Float64Range(-1, 1)
	theta := r.Float64Range(0, 2*math.Pi)
	rad := math.Sqrt(math.Max(0, 1-z*z))
	return geom.Vec{X: rad * math.Cos(theta), Y: rad * math.Sin(theta), Z: z}
}

// seedFromPoint derives a deterministic per-query seed from p's
// coordinates, so repeated classification of the same point (spec.md S8
// Testable Property 5-style idempotence) retries the same direction
// sequence rather than drawing from global entropy.
func seedFromPoint(p geom.Vec) uint64 {
	var buf [24]byte
	binary.BigEndian.PutUint64(buf[0:8], math.Float64bits(p.X))
	binary.BigEndian.PutUint64(buf[8:16], math.Float64bits(p.Y))
	binary.BigEndian.PutUint64(buf[16:24], math.Float64bits(p.Z))
	var seed uint64
	for i := 0; i < len(buf); i += 8 {
		seed ^= binary.BigEndian.Uint64(buf[i : i+8])
	}
	return seed
}
