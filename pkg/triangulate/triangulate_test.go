package triangulate

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

func TestEarClipSquareProducesTwoTriangles(t *testing.T) {
	square := Contour{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	tris, err := EarClip(square, nil)
	if err != nil {
		t.Fatalf("EarClip: %v", err)
	}
	if len(tris) != 2 {
		t.Fatalf("got %d triangles, want 2", len(tris))
	}
}

func TestEarClipRejectsDegenerateContour(t *testing.T) {
	if _, err := EarClip(Contour{{0, 0}, {1, 0}}, nil); err != ErrDegenerateContour {
		t.Fatalf("err = %v, want ErrDegenerateContour", err)
	}
}

func TestEarClipClockwiseSquareStillProducesTwoTriangles(t *testing.T) {
	square := Contour{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	tris, err := EarClip(square, nil)
	if err != nil {
		t.Fatalf("EarClip: %v", err)
	}
	if len(tris) != 2 {
		t.Fatalf("got %d triangles, want 2", len(tris))
	}
}

func TestEarClipSquareWithHoleBridgesCleanly(t *testing.T) {
	outer := Contour{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	hole := Contour{{4, 4}, {4, 6}, {6, 6}, {6, 4}}
	tris, err := EarClip(outer, []Contour{hole})
	if err != nil {
		t.Fatalf("EarClip: %v", err)
	}
	// Bridging a quad hole into a quad outer yields a 10-vertex polygon
	// (4 + 4 hole vertices + 2 duplicated bridge endpoints), which
	// ear-clips into 8 triangles.
	if len(tris) != 8 {
		t.Fatalf("got %d triangles, want 8", len(tris))
	}
}

func TestSplitOuterAndHolesPicksLargestAsOuter(t *testing.T) {
	small := Contour{{0, 0}, {1, 0}, {1, 1}, {0, 1}}
	big := Contour{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	outer, holes := SplitOuterAndHoles([]Contour{small, big})
	if len(outer) != len(big) {
		t.Fatalf("outer should be the larger contour")
	}
	if len(holes) != 1 {
		t.Fatalf("got %d holes, want 1", len(holes))
	}
}

func triangleArea(tr Triangle) float64 {
	return math.Abs(cross(tr[1].sub(tr[0]), tr[2].sub(tr[0]))) / 2
}

// TestEarClipPreservesAreaOnStarShapedPolygons checks Testable Property 7:
// ear-clipping a star-shaped polygon (radii vary per vertex, but every
// vertex is visible from the centroid, so no self-intersection is possible)
// never changes its enclosed area — the sum of triangle areas EarClip
// returns must equal the contour's own shoelace area.
func TestEarClipPreservesAreaOnStarShapedPolygons(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(3, 10).Draw(t, "n")
		step := 2 * math.Pi / float64(n)
		contour := make(Contour, n)
		for i := 0; i < n; i++ {
			radius := rapid.Float64Range(0.5, 3.0).Draw(t, "radius")
			angle := (float64(i) + rapid.Float64Range(0, 0.4).Draw(t, "jitter")) * step
			contour[i] = Point{U: radius * math.Cos(angle), V: radius * math.Sin(angle)}
		}

		tris, err := EarClip(contour, nil)
		if err != nil {
			t.Fatalf("EarClip: %v", err)
		}

		var sum float64
		for _, tr := range tris {
			sum += triangleArea(tr)
		}
		want := math.Abs(signedArea(contour))
		if math.Abs(sum-want) > 1e-6*math.Max(1, want) {
			t.Fatalf("triangulated area %v, want %v (contour %v)", sum, want, contour)
		}
	})
}
