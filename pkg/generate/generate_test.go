package generate

import (
	"errors"
	"testing"

	"github.com/solvecore/solvecore/pkg/handle"
	"github.com/solvecore/solvecore/pkg/sketch"
)

func newTestGroup(s *sketch.Sketch) handle.Group {
	g := s.NewGroup(sketch.GroupDrawingWorkplane, handle.Group(handle.GroupReferences))
	return g.H
}

func TestGenerateLineSegmentOnWorkplane(t *testing.T) {
	s := sketch.New()
	g := newTestGroup(s)
	wp := handle.Entity(handle.EntityXY)
	r := s.NewRequest(sketch.RequestLineSegment, g, wp)

	if err := Generate(s, r); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var lineCount, pointCount int
	for _, h := range s.Entities.Keys() {
		e := s.Entities.MustFind(h)
		if e.Group != g {
			continue
		}
		switch e.Kind {
		case sketch.EntityLineSegment:
			lineCount++
			if len(e.Points) != 2 {
				t.Fatalf("line segment has %d points, want 2", len(e.Points))
			}
		case sketch.EntityPoint2D:
			pointCount++
		}
	}
	if lineCount != 1 || pointCount != 2 {
		t.Fatalf("got %d lines, %d points; want 1, 2", lineCount, pointCount)
	}
}

func TestGenerateIsIdempotentGivenSameRequestHandle(t *testing.T) {
	s1 := sketch.New()
	g1 := newTestGroup(s1)
	r1 := s1.NewRequest(sketch.RequestCircle, g1, handle.Entity(handle.EntityXY))
	if err := Generate(s1, r1); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	s2 := sketch.New()
	g2 := newTestGroup(s2)
	r2 := s2.NewRequest(sketch.RequestCircle, g2, handle.Entity(handle.EntityXY))
	if err := Generate(s2, r2); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if r1.H != r2.H {
		t.Fatalf("test setup produced different request handles")
	}
	for _, h := range s1.Entities.Keys() {
		if _, ok := s2.Entities.FindByID(h); !ok {
			t.Fatalf("entity %v present in s1 but not s2: generation is not deterministic", h)
		}
	}
}

func TestGenerateCircleRequiresWorkplane(t *testing.T) {
	s := sketch.New()
	g := newTestGroup(s)
	r := s.NewRequest(sketch.RequestCircle, g, handle.Entity(handle.None))

	err := Generate(s, r)
	if !errors.Is(err, ErrMissingWorkplane) {
		t.Fatalf("got err %v, want ErrMissingWorkplane", err)
	}
}

func TestGenerateWorkplaneIsFree3D(t *testing.T) {
	s := sketch.New()
	g := newTestGroup(s)
	r := s.NewRequest(sketch.RequestWorkplane, g, handle.Entity(handle.None))
	if err := Generate(s, r); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	var found bool
	for _, h := range s.Entities.Keys() {
		e := s.Entities.MustFind(h)
		if e.Group == g && e.Kind == sketch.EntityWorkplane {
			found = true
			origin, quat := e.WorkplaneFrame(s)
			_ = origin
			if quat.MagSquared() == 0 {
				t.Fatalf("generated workplane normal has zero magnitude")
			}
		}
	}
	if !found {
		t.Fatalf("no workplane entity generated")
	}
}
