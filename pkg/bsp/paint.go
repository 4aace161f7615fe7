package bsp

import (
	"github.com/solvecore/solvecore/pkg/geom"
	"github.com/solvecore/solvecore/pkg/mesh"
)

// PaintOrder walks n back-to-front with respect to viewDir (the direction
// from the scene toward the camera) and emits triangles in the order a
// painter's-algorithm renderer should draw them (spec.md S4.9 "Paint-order
// emission"). A node's own coplanar triangles are emitted between its two
// subtrees, same-normal before opposite-normal.
func PaintOrder(n *Node, viewDir geom.Vec) []mesh.Triangle {
	if n == nil {
		return nil
	}
	var near, far *Node
	if n.Plane.Normal.Dot(viewDir) > 0 {
		near, far = n.Pos, n.Neg
	} else {
		near, far = n.Neg, n.Pos
	}
	var out []mesh.Triangle
	out = append(out, PaintOrder(far, viewDir)...)
	out = append(out, n.CoplanarSame...)
	out = append(out, n.CoplanarOpp...)
	out = append(out, PaintOrder(near, viewDir)...)
	return out
}
