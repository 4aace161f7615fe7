// Package render implements spec.md S6's Render sink external collaborator:
// a consumer the core hands each Group's current running-mesh (for
// shading), Entity list (for wire overlays), and Constraint list (for
// dimension annotations) to, and which the core itself never depends on for
// correctness — only an editor or exporter calls into it. It is grounded
// directly on pkg/export/svg.go's ExportSVG (canvas setup via
// github.com/ajstarks/svgo, an Options struct with validated defaults,
// sorted-key iteration for deterministic output, nil/empty guard before
// drawing), adapted from a 2D room-graph layout to an orthographic top-down
// (X,Y) projection of a 3D sketch's wireframe and shaded mesh.
package render

import (
	"bytes"
	"fmt"
	"math"
	"os"

	svg "github.com/ajstarks/svgo"

	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/mesh"
	"github.com/solvecore/solvecore/pkg/sketch"
)

// Sink is the external render collaborator spec.md S6 describes. A single
// Render call receives the whole sketch so it can walk every Group's
// running mesh, every live Entity, and every Constraint requiring a
// dimension annotation; the core never calls into Sink itself (spec.md S6:
// "the core itself never renders").
type Sink interface {
	Render(s *sketch.Sketch) ([]byte, error)
}

// Options configures an SVGSink's output, mirroring pkg/export's SVGOptions
// shape (validated dimensions/margins with sensible defaults) for the new
// domain of wireframe entities, shaded mesh edges, and dimension labels in
// place of room nodes and connector edges.
type Options struct {
	Width  int
	Height int
	Margin int

	ShowWireframe bool
	ShowMesh      bool
	ShowDimensions bool

	Title string
}

// DefaultOptions returns sensible SVG export defaults.
func DefaultOptions() Options {
	return Options{
		Width:          1200,
		Height:         900,
		Margin:         60,
		ShowWireframe:  true,
		ShowMesh:       true,
		ShowDimensions: true,
		Title:          "solvecore sketch",
	}
}

// SVGSink is the reference Sink implementation: an orthographic (X,Y)
// top-down projection rendered as an SVG document via github.com/ajstarks/svgo,
// the same library pkg/export's ExportSVG uses for the teacher's room-graph
// visualizations.
type SVGSink struct {
	Opts Options
}

// NewSVGSink returns an SVGSink with opts, filling in DefaultOptions()
// fields for any zero-valued numeric option.
func NewSVGSink(opts Options) *SVGSink {
	if opts.Width <= 0 {
		opts.Width = DefaultOptions().Width
	}
	if opts.Height <= 0 {
		opts.Height = DefaultOptions().Height
	}
	if opts.Margin <= 0 {
		opts.Margin = DefaultOptions().Margin
	}
	return &SVGSink{Opts: opts}
}

// Render implements Sink.
func (sk *SVGSink) Render(s *sketch.Sketch) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("render: sketch cannot be nil")
	}

	bounds := sk.computeBounds(s)
	buf := new(bytes.Buffer)
	canvas := svg.New(buf)
	canvas.Start(sk.Opts.Width, sk.Opts.Height)
	canvas.Rect(0, 0, sk.Opts.Width, sk.Opts.Height, "fill:#1a1a2e")

	if sk.Opts.ShowMesh {
		sk.drawMesh(canvas, s, bounds)
	}
	if sk.Opts.ShowWireframe {
		sk.drawWireframe(canvas, s, bounds)
	}
	if sk.Opts.ShowDimensions {
		sk.drawDimensions(canvas, s, bounds)
	}
	if sk.Opts.Title != "" {
		canvas.Text(sk.Opts.Width/2, 25, sk.Opts.Title,
			"text-anchor:middle;font-size:18px;font-weight:bold;fill:#e2e8f0;font-family:sans-serif")
	}

	canvas.End()
	return buf.Bytes(), nil
}

// Save renders s and writes the result to path with 0644 permissions.
func (sk *SVGSink) Save(s *sketch.Sketch, path string) error {
	data, err := sk.Render(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// bounds is the world-space (X,Y) extent being mapped onto the canvas.
type bounds struct {
	minX, minY, maxX, maxY float64
}

func (b bounds) empty() bool { return b.minX > b.maxX }

// computeBounds scans every Entity point and mesh vertex across the sketch
// so the projection fits the whole model, falling back to a unit box when
// the sketch has no geometry yet.
func (sk *SVGSink) computeBounds(s *sketch.Sketch) bounds {
	b := bounds{minX: math.Inf(1), minY: math.Inf(1), maxX: math.Inf(-1), maxY: math.Inf(-1)}
	grow := func(v geom.Vec) {
		b.minX, b.maxX = math.Min(b.minX, v.X), math.Max(b.maxX, v.X)
		b.minY, b.maxY = math.Min(b.minY, v.Y), math.Max(b.maxY, v.Y)
	}

	for _, h := range s.Entities.Keys() {
		e := s.Entities.MustFind(h)
		switch e.Kind {
		case sketch.EntityPoint2D, sketch.EntityPoint3D, sketch.EntityPointTransformed:
			grow(e.PointPos(s))
		}
	}
	for _, h := range s.Groups.Keys() {
		g := s.Groups.MustFind(h)
		if m, ok := g.RunningMesh.(*mesh.Mesh); ok {
			for _, tr := range m.Triangles {
				grow(tr.A)
				grow(tr.B)
				grow(tr.C)
			}
		}
	}

	if b.empty() {
		return bounds{minX: -1, minY: -1, maxX: 1, maxY: 1}
	}
	if b.maxX-b.minX < 1e-9 {
		b.minX, b.maxX = b.minX-1, b.maxX+1
	}
	if b.maxY-b.minY < 1e-9 {
		b.minY, b.maxY = b.minY-1, b.maxY+1
	}
	return b
}

// project maps a world-space point to canvas pixel coordinates via an
// orthographic top-down (X,Y) view, flipping Y since SVG's origin is
// top-left while the sketch's is the usual math convention.
func (sk *SVGSink) project(v geom.Vec, b bounds) (int, int) {
	drawW := float64(sk.Opts.Width - 2*sk.Opts.Margin)
	drawH := float64(sk.Opts.Height - 2*sk.Opts.Margin)
	scale := math.Min(drawW/(b.maxX-b.minX), drawH/(b.maxY-b.minY))

	x := float64(sk.Opts.Margin) + (v.X-b.minX)*scale
	y := float64(sk.Opts.Height-sk.Opts.Margin) - (v.Y-b.minY)*scale
	return int(x), int(y)
}

// drawMesh renders each Group's running mesh as a filled, semi-transparent
// shaded silhouette (spec.md S6: "running-mesh (for shading)").
func (sk *SVGSink) drawMesh(canvas *svg.SVG, s *sketch.Sketch, b bounds) {
	for _, h := range s.GroupOrder() {
		g := s.Groups.MustFind(h)
		m, ok := g.RunningMesh.(*mesh.Mesh)
		if !ok {
			continue
		}
		for _, tr := range m.Triangles {
			ax, ay := sk.project(tr.A, b)
			bx, by := sk.project(tr.B, b)
			cx, cy := sk.project(tr.C, b)
			canvas.Polygon([]int{ax, bx, cx}, []int{ay, by, cy}, "fill:#4299e1;opacity:0.15;stroke:none")
		}
	}
}

// drawWireframe renders every live LineSegment/Circle/ArcOfCircle Entity, and
// every mesh triangle's edges, as thin strokes (spec.md S6: "the Entity
// list (for wire overlays)").
func (sk *SVGSink) drawWireframe(canvas *svg.SVG, s *sketch.Sketch, b bounds) {
	for _, h := range s.Entities.Keys() {
		e := s.Entities.MustFind(h)
		switch e.Kind {
		case sketch.EntityLineSegment:
			a := s.Entities.MustFind(e.Points[0]).PointPos(s)
			c := s.Entities.MustFind(e.Points[1]).PointPos(s)
			ax, ay := sk.project(a, b)
			cx, cy := sk.project(c, b)
			canvas.Line(ax, ay, cx, cy, "stroke:#e2e8f0;stroke-width:1.5")
		case sketch.EntityCircle, sketch.EntityArcOfCircle:
			center := s.Entities.MustFind(e.Points[0]).PointPos(s)
			radius := s.Value(s.Entities.MustFind(e.Distance).Params[0])
			cx, cy := sk.project(center, b)
			rx, _ := sk.project(center.Add(geom.Vec{X: radius}), b)
			canvas.Circle(cx, cy, rx-cx, "fill:none;stroke:#e2e8f0;stroke-width:1.5")
		}
	}
	for _, h := range s.GroupOrder() {
		g := s.Groups.MustFind(h)
		m, ok := g.RunningMesh.(*mesh.Mesh)
		if !ok {
			continue
		}
		for _, tr := range m.Triangles {
			pts := [3]geom.Vec{tr.A, tr.B, tr.C}
			for i := 0; i < 3; i++ {
				ax, ay := sk.project(pts[i], b)
				bx, by := sk.project(pts[(i+1)%3], b)
				canvas.Line(ax, ay, bx, by, "stroke:#4a5568;stroke-width:0.5;opacity:0.6")
			}
		}
	}
}

// drawDimensions renders each equation-generating Constraint's ValA as a
// label at its user-placed (DispX, DispY) position (spec.md S6: "the
// Constraint list (for dimension annotations)"). Comment constraints draw
// their Comment text instead.
func (sk *SVGSink) drawDimensions(canvas *svg.SVG, s *sketch.Sketch, b bounds) {
	for _, h := range s.Constraints.Keys() {
		c := s.Constraints.MustFind(h)
		x, y := sk.project(geom.Vec{X: c.DispX, Y: c.DispY}, b)
		switch c.Kind {
		case sketch.ConstraintComment:
			if c.Comment != "" {
				canvas.Text(x, y, c.Comment, "font-size:11px;fill:#a0aec0;font-family:monospace")
			}
		case sketch.ConstraintPtPtDistance, sketch.ConstraintPtLineDistance,
			sketch.ConstraintPtPlaneDistance, sketch.ConstraintDiameter,
			sketch.ConstraintAngle, sketch.ConstraintLengthRatio:
			canvas.Text(x, y, fmt.Sprintf("%.3f", c.ValA),
				"font-size:11px;fill:#ffd700;font-family:monospace")
		}
	}
}
