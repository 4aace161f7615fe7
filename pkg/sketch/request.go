package sketch

import (
	"fmt"

	"github.com/solvecore/solvecore/pkg/handle"
)

// RequestKind enumerates the user-level sketch primitive templates spec.md
// S3 names. Generating a Request of a given kind emits a fixed, ordered
// layout of Points/Normal/Distance/primary Entity (pkg/generate).
type RequestKind int

const (
	RequestWorkplane RequestKind = iota
	RequestLineSegment
	RequestCubic
	RequestCubicPeriodic
	RequestCircle
	RequestArcOfCircle
	RequestTTFText
	RequestDatumPoint
)

func (k RequestKind) String() string {
	names := [...]string{
		"Workplane", "LineSegment", "Cubic", "CubicPeriodic",
		"Circle", "ArcOfCircle", "TTFText", "DatumPoint",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return fmt.Sprintf("RequestKind(%d)", int(k))
}

// Request is a user-level description of a sketch primitive plus its
// options (spec.md S3). Generating it is deterministic: the same Request
// regenerated yields the same derived Entity/Param handles (spec.md S4.3).
type Request struct {
	H     handle.Request
	Kind  RequestKind
	Group handle.Group

	// Workplane is the workplane new points are expressed in, or handle.None
	// for a Request that generates free 3D geometry (e.g. a 3D drawing
	// group's line segment, or the workplane Request itself).
	Workplane handle.Entity

	Style        handle.Style
	Construction bool

	// ExtraPoints is additional interior control points beyond a kind's
	// fixed minimum, used by Cubic/CubicPeriodic.
	ExtraPoints int

	// Str is the embedded text for a TTFText request.
	Str string
	// Font names the font source hook should resolve Str against.
	Font string
}

// AddRequest inserts r into the store under its own handle.
func (s *Sketch) AddRequest(r *Request) {
	s.Requests.Set(r.H, r)
}

// NewRequest allocates a handle for kind, owned by group, and inserts a
// fresh Request record without generating its Entities/Params — generation
// is pkg/generate's job, run during regeneration.
func (s *Sketch) NewRequest(kind RequestKind, group handle.Group, workplane handle.Entity) *Request {
	h := s.NewRequestHandle()
	r := &Request{H: h, Kind: kind, Group: group, Workplane: workplane}
	s.AddRequest(r)
	return r
}
