// Package mesh is the triangle-soup representation shared by the
// regeneration pipeline's downstream consumers: per-group builders
// (pkg/meshbuild) produce it, the 3D BSP (pkg/bsp) combines it, the
// ray-cast classifier (pkg/raycast) queries it, and render sinks walk it
// for paint-order emission (spec.md S3: "thisMesh", "runningMesh").
package mesh

import "github.com/solvecore/solvecore/pkg/geom"

// Triangle is one face of a mesh: three world-space vertices, a precomputed
// outward normal, and the Entity handle of the face it was tagged from (a
// Group's remap table assigns these so a later constraint or selection can
// still name "this face" after step-and-repeat or boolean combination,
// spec.md S4.7).
type Triangle struct {
	A, B, C geom.Vec
	Normal  geom.Vec
	Face    uint32
}

// NewTriangle builds a Triangle, computing its normal from vertex winding
// (right-hand rule: (B-A) x (C-A)).
func NewTriangle(a, b, c geom.Vec, face uint32) Triangle {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	return Triangle{A: a, B: b, C: c, Normal: n, Face: face}
}

// Flip returns the same triangle with reversed winding and normal, used
// when a boolean operation needs the opposite-facing copy of a coplanar
// triangle (spec.md S4.9 "same-normal vs opposite-normal distinction").
func (t Triangle) Flip() Triangle {
	return Triangle{A: t.A, B: t.C, C: t.B, Normal: t.Normal.Neg(), Face: t.Face}
}

// Centroid returns the triangle's barycentric center.
func (t Triangle) Centroid() geom.Vec {
	return t.A.Add(t.B).Add(t.C).Scale(1.0 / 3.0)
}

// Mesh is an unstructured collection of triangles: a Group's thisMesh or
// runningMesh (spec.md S3).
type Mesh struct {
	Triangles []Triangle
}

// TriangleCount satisfies sketch.Group's Mesh interface.
func (m *Mesh) TriangleCount() int {
	if m == nil {
		return 0
	}
	return len(m.Triangles)
}

// Add appends one triangle.
func (m *Mesh) Add(a, b, c geom.Vec, face uint32) {
	m.Triangles = append(m.Triangles, NewTriangle(a, b, c, face))
}

// Append copies every triangle of other onto m.
func (m *Mesh) Append(other *Mesh) {
	if other == nil {
		return
	}
	m.Triangles = append(m.Triangles, other.Triangles...)
}

// Flip returns a new Mesh with every triangle's winding reversed.
func (m *Mesh) Flip() *Mesh {
	out := &Mesh{Triangles: make([]Triangle, len(m.Triangles))}
	for i, t := range m.Triangles {
		out.Triangles[i] = t.Flip()
	}
	return out
}

// Transform applies f to every vertex of every triangle, returning a new
// Mesh (used by Imported groups applying a rigid transform, spec.md S4.7).
func (m *Mesh) Transform(f func(geom.Vec) geom.Vec) *Mesh {
	out := &Mesh{Triangles: make([]Triangle, len(m.Triangles))}
	for i, t := range m.Triangles {
		out.Triangles[i] = NewTriangle(f(t.A), f(t.B), f(t.C), t.Face)
	}
	return out
}

// Bounds returns the axis-aligned bounding box of every vertex in m. ok is
// false for an empty mesh.
func (m *Mesh) Bounds() (min, max geom.Vec, ok bool) {
	if len(m.Triangles) == 0 {
		return geom.Vec{}, geom.Vec{}, false
	}
	first := m.Triangles[0].A
	min, max = first, first
	grow := func(v geom.Vec) {
		if v.X < min.X {
			min.X = v.X
		}
		if v.Y < min.Y {
			min.Y = v.Y
		}
		if v.Z < min.Z {
			min.Z = v.Z
		}
		if v.X > max.X {
			max.X = v.X
		}
		if v.Y > max.Y {
			max.Y = v.Y
		}
		if v.Z > max.Z {
			max.Z = v.Z
		}
	}
	for _, t := range m.Triangles {
		grow(t.A)
		grow(t.B)
		grow(t.C)
	}
	return min, max, true
}
