package sketch

import "github.com/solvecore/solvecore/pkg/handle"

// ParamTag classifies how the solver has treated a Param during a solve,
// recorded in Param.Tag per spec.md S3 ("tag is scratch used by the solver
// to record which subsystem claimed it").
type ParamTag int

const (
	TagNone ParamTag = iota
	TagSubstituted
	TagAssumed
	TagBound
	TagDragged
)

// Param is a scalar unknown owned by exactly one Group (spec.md S3).
type Param struct {
	H     handle.Param
	Val   float64
	Known bool
	Tag   ParamTag
	Owner handle.Group
}

// ParamHandle implements expr.ParamRef.
func (p *Param) ParamHandle() handle.Param { return p.H }

// ParamValue implements expr.ParamRef.
func (p *Param) ParamValue() float64 { return p.Val }

// AddParam allocates val as a fresh Param under h, owned by owner.
func (s *Sketch) AddParam(h handle.Param, owner handle.Group, val float64) *Param {
	p := &Param{H: h, Val: val, Owner: owner}
	if err := s.Params.Add(h, p); err != nil {
		Fatal(err.Error())
	}
	return p
}

// ClearTags resets every Param's Tag to TagNone, called before each solve
// (spec.md S4.2).
func (s *Sketch) ClearTags() {
	for _, h := range s.Params.Keys() {
		s.Params.MustFind(h).Tag = TagNone
	}
}
