package bsp

import "github.com/solvecore/solvecore/pkg/mesh"

// Union combines two solids, keeping every triangle of a that doesn't lie
// inside b and every triangle of b that doesn't lie inside a (spec.md S4.9
// "Boolean operations... walk one mesh into the other's BSP").
func Union(a, b *mesh.Mesh) *mesh.Mesh {
	ta, tb := Build(a.Triangles), Build(b.Triangles)
	out := &mesh.Mesh{}
	for _, t := range a.Triangles {
		if !Classify(tb, t.Centroid()) {
			out.Triangles = append(out.Triangles, t)
		}
	}
	for _, t := range b.Triangles {
		if !Classify(ta, t.Centroid()) {
			out.Triangles = append(out.Triangles, t)
		}
	}
	return out
}

// Difference subtracts b from a: keeps a's triangles outside b, and b's
// triangles inside a with their winding flipped so they face the cavity
// they now bound.
func Difference(a, b *mesh.Mesh) *mesh.Mesh {
	ta, tb := Build(a.Triangles), Build(b.Triangles)
	out := &mesh.Mesh{}
	for _, t := range a.Triangles {
		if !Classify(tb, t.Centroid()) {
			out.Triangles = append(out.Triangles, t)
		}
	}
	for _, t := range b.Triangles {
		if Classify(ta, t.Centroid()) {
			out.Triangles = append(out.Triangles, t.Flip())
		}
	}
	return out
}

// Interference returns every triangle of a or b that lies inside the other
// solid, the evidence spec.md S4.6's CombineInterferenceCheck reports on
// failure rather than folding into a combined mesh.
func Interference(a, b *mesh.Mesh) []mesh.Triangle {
	ta, tb := Build(a.Triangles), Build(b.Triangles)
	var bad []mesh.Triangle
	for _, t := range a.Triangles {
		if Classify(tb, t.Centroid()) {
			bad = append(bad, t)
		}
	}
	for _, t := range b.Triangles {
		if Classify(ta, t.Centroid()) {
			bad = append(bad, t)
		}
	}
	return bad
}

// Assemble concatenates two solids with no boolean combination at all,
// spec.md S4.6's CombineAssemble policy for groups that merely coexist.
func Assemble(a, b *mesh.Mesh) *mesh.Mesh {
	out := &mesh.Mesh{}
	out.Append(a)
	out.Append(b)
	return out
}
