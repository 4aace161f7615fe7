package sketch

import "github.com/solvecore/solvecore/pkg/handle"

// Style is a render-attribute record, referenced by Entity and Constraint
// handle (spec.md S3).
type Style struct {
	H    handle.Style
	Name string

	// Color is an RGBA render color, packed the way the render sink expects
	// it (spec.md S6: the core never draws, only hands attributes across).
	R, G, B, A float64

	Width     float64
	DashStyle int

	Visible bool
	Filled  bool
}

// DefaultStyles returns the factory-default Style set spec.md S3 names:
// active-group, construction, inactive-group, datum, solid-edge, selected,
// hovered, contour-fill. Handles are assigned by installDefaultStyles on
// insertion; H is left zero here.
func DefaultStyles() []*Style {
	return []*Style{
		{Name: "ActiveGroup", R: 0, G: 0, B: 0, A: 1, Width: 1.5, Visible: true},
		{Name: "Construction", R: 0, G: 0.6, B: 0.85, A: 1, Width: 1, Visible: true},
		{Name: "InactiveGroup", R: 0.5, G: 0.5, B: 0.5, A: 1, Width: 1, Visible: true},
		{Name: "Datum", R: 0, G: 0.8, B: 0, A: 1, Width: 1, Visible: true},
		{Name: "SolidEdge", R: 0, G: 0, B: 0, A: 1, Width: 1, Visible: true},
		{Name: "Selected", R: 1, G: 0, B: 0, A: 1, Width: 2, Visible: true},
		{Name: "Hovered", R: 1, G: 0.8, B: 0, A: 1, Width: 2, Visible: true},
		{Name: "ContourFill", R: 0.8, G: 0.8, B: 0.8, A: 0.5, Width: 0, Visible: true, Filled: true},
	}
}
