package meshbuild

import "errors"

var (
	// ErrNoSourceGroup reports a Group whose builder needs a 2D sketch
	// source (Extrude/Lathe/Sweep/HelicalSweep) but carries no SourceGroup.
	ErrNoSourceGroup = errors.New("meshbuild: group has no source group")
	// ErrOpenPolygon reports that the source group's line segments do not
	// form a single closed loop (spec.md S7's NotClosedPolygon).
	ErrOpenPolygon = errors.New("meshbuild: source sketch is not a closed polygon")
	// ErrNonCoplanarSource reports a source polygon whose edges are not all
	// bound to the same workplane.
	ErrNonCoplanarSource = errors.New("meshbuild: source polygon edges are not coplanar")
	// ErrNoAxis reports a Lathe/HelicalSweep group with no Axis entity set.
	ErrNoAxis = errors.New("meshbuild: group has no rotation axis")
	// ErrUnknownGroupKind reports a GroupKind with no registered builder.
	ErrUnknownGroupKind = errors.New("meshbuild: no builder registered for this group kind")
)
