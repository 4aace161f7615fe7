package raycast

import (
	"math"
	"testing"

	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/mesh"
)

// unitSphereShell builds a closed UV-sphere approximation of radius 1
// centered at the origin, latBands x lonBands quads split into triangles.
func unitSphereShell(latBands, lonBands int) *mesh.Mesh {
	m := &mesh.Mesh{}
	vertex := func(lat, lon int) geom.Vec {
		theta := math.Pi * float64(lat) / float64(latBands)
		phi := 2 * math.Pi * float64(lon) / float64(lonBands)
		return geom.Vec{
			X: math.Sin(theta) * math.Cos(phi),
			Y: math.Cos(theta),
			Z: math.Sin(theta) * math.Sin(phi),
		}
	}
	for lat := 0; lat < latBands; lat++ {
		for lon := 0; lon < lonBands; lon++ {
			a := vertex(lat, lon)
			b := vertex(lat+1, lon)
			c := vertex(lat+1, lon+1)
			d := vertex(lat, lon+1)
			m.Add(a, c, b, 0)
			m.Add(a, d, c, 0)
		}
	}
	return m
}

// TestClassifyPointOutsideSphere exercises spec.md S8 scenario 6: a 3D
// point (2,0,0) ray-cast against a unit sphere shell centered at the
// origin classifies OUTSIDE.
func TestClassifyPointOutsideSphere(t *testing.T) {
	shell := unitSphereShell(16, 24)
	st, err := ClassifyPoint(shell, geom.Vec{X: 2, Y: 0, Z: 0})
	if err != nil {
		t.Fatalf("ClassifyPoint: %v", err)
	}
	if st != Outside {
		t.Fatalf("status = %v, want OUTSIDE", st)
	}
}

// TestClassifyPointInsideSphere confirms the origin, well inside the
// shell, classifies INSIDE (Testable Property 9).
func TestClassifyPointInsideSphere(t *testing.T) {
	shell := unitSphereShell(16, 24)
	st, err := ClassifyPoint(shell, geom.Vec{})
	if err != nil {
		t.Fatalf("ClassifyPoint: %v", err)
	}
	if st != Inside {
		t.Fatalf("status = %v, want INSIDE", st)
	}
}

// TestClassifyPointFarOutsideSphere checks a point far from the shell
// classifies OUTSIDE regardless of ray direction chosen.
func TestClassifyPointFarOutsideSphere(t *testing.T) {
	shell := unitSphereShell(16, 24)
	st, err := ClassifyPoint(shell, geom.Vec{X: 50, Y: 50, Z: 50})
	if err != nil {
		t.Fatalf("ClassifyPoint: %v", err)
	}
	if st != Outside {
		t.Fatalf("status = %v, want OUTSIDE", st)
	}
}

// TestClassifyEdgeCoincidentSameNormal places an edge midpoint exactly on
// the shell's surface at its north pole, with an outward reference normal
// agreeing with the shell's own local normal there: COINC_SAME.
func TestClassifyEdgeCoincidentSameNormal(t *testing.T) {
	shell := unitSphereShell(16, 24)
	north := geom.Vec{X: 0, Y: 1, Z: 0}
	st, err := ClassifyEdge(shell, north, north, north)
	if err != nil {
		t.Fatalf("ClassifyEdge: %v", err)
	}
	if st != CoincSame {
		t.Fatalf("status = %v, want COINC_SAME", st)
	}
}

// TestClassifyEdgeCoincidentOppositeNormal is the same point with an
// outward reference normal pointing the opposite way: COINC_OPP.
func TestClassifyEdgeCoincidentOppositeNormal(t *testing.T) {
	shell := unitSphereShell(16, 24)
	north := geom.Vec{X: 0, Y: 1, Z: 0}
	st, err := ClassifyEdge(shell, north, north, north.Neg())
	if err != nil {
		t.Fatalf("ClassifyEdge: %v", err)
	}
	if st != CoincOpp {
		t.Fatalf("status = %v, want COINC_OPP", st)
	}
}

func TestClassifyPointAgainstEmptyMeshIsOutside(t *testing.T) {
	st, err := ClassifyPoint(&mesh.Mesh{}, geom.Vec{})
	if err != nil {
		t.Fatalf("ClassifyPoint: %v", err)
	}
	if st != Outside {
		t.Fatalf("status = %v, want OUTSIDE for an empty shell", st)
	}
}
