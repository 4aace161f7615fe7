// Package generate expands a Request into the deterministic Entity/Param
// layout spec.md S4.3 describes, given its type, workplane, style, and
// extra-point count. Handle derivation is fixed arithmetic from the
// Request's own handle, so regenerating the same Request twice (after
// clearing its previous output) reproduces identical handles.
package generate

import "errors"

// Generation failures a Request's layout can hit. These are returned as
// plain errors to the caller (pkg/regen), which records the corresponding
// code on the owning Group rather than aborting the pipeline (spec.md S7:
// "Recorded on the Group, not raised").
var (
	ErrMissingWorkplane = errors.New("generate: request needs a workplane")
	ErrEmptyText        = errors.New("generate: TTF text request has no text")
)
