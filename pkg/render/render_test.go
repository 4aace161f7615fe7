package render

import (
	"bytes"
	"testing"

	"github.com/solvecore/solvecore/pkg/handle"
	"github.com/solvecore/solvecore/pkg/sketch"
)

func TestRenderEmptySketchProducesValidSVGShell(t *testing.T) {
	s := sketch.New()
	sink := NewSVGSink(DefaultOptions())

	data, err := sink.Render(s)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Contains(data, []byte("<svg")) {
		t.Fatalf("output does not look like SVG: %s", data)
	}
	if !bytes.Contains(data, []byte("</svg>")) {
		t.Fatalf("output missing closing tag: %s", data)
	}
}

func TestRenderNilSketchErrors(t *testing.T) {
	sink := NewSVGSink(DefaultOptions())
	if _, err := sink.Render(nil); err == nil {
		t.Fatalf("expected an error for a nil sketch")
	}
}

func TestRenderDrawsLineSegmentWireframe(t *testing.T) {
	s := sketch.New()
	g := s.NewGroup(sketch.GroupDrawingWorkplane, handle.Group(handle.GroupReferences))
	wp := handle.Entity(handle.EntityXY)

	base := handle.GroupBase(uint32(g.H))
	pu0 := handle.Param(handle.Derive(base, 0))
	pv0 := handle.Param(handle.Derive(base, 1))
	pu1 := handle.Param(handle.Derive(base, 2))
	pv1 := handle.Param(handle.Derive(base, 3))
	s.AddParam(pu0, g.H, 0)
	s.AddParam(pv0, g.H, 0)
	s.AddParam(pu1, g.H, 5)
	s.AddParam(pv1, g.H, 5)

	p0 := handle.Entity(handle.Derive(base, 0x10))
	p1 := handle.Entity(handle.Derive(base, 0x11))
	s.AddEntity(&sketch.Entity{H: p0, Kind: sketch.EntityPoint2D, Group: g.H, Workplane: wp, Params: []handle.Param{pu0, pv0}})
	s.AddEntity(&sketch.Entity{H: p1, Kind: sketch.EntityPoint2D, Group: g.H, Workplane: wp, Params: []handle.Param{pu1, pv1}})

	line := handle.Entity(handle.Derive(base, 0x20))
	s.AddEntity(&sketch.Entity{H: line, Kind: sketch.EntityLineSegment, Group: g.H, Workplane: wp, Points: []handle.Entity{p0, p1}})

	sink := NewSVGSink(DefaultOptions())
	data, err := sink.Render(s)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Contains(data, []byte("<line")) {
		t.Fatalf("expected a wireframe <line> for the line segment entity, got: %s", data)
	}
}

func TestRenderDrawsConstraintDimensionLabel(t *testing.T) {
	s := sketch.New()
	g := s.NewGroup(sketch.GroupDrawingWorkplane, handle.Group(handle.GroupReferences))
	wp := handle.Entity(handle.EntityXY)

	c := s.AddConstraint(&sketch.Constraint{
		Kind: sketch.ConstraintPtPtDistance, Group: g.H, Workplane: wp,
		ValA: 12.5, DispX: 1, DispY: 1,
	})
	_ = c

	sink := NewSVGSink(DefaultOptions())
	data, err := sink.Render(s)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !bytes.Contains(data, []byte("12.500")) {
		t.Fatalf("expected the dimension label 12.500 in output, got: %s", data)
	}
}
