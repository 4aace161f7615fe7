package reduce

import "errors"

// ErrSingleParamUnknown is returned by ModifyToSatisfy when a LengthRatio or
// ArcLengthRatio constraint's denominator length is zero, so no ratio can
// be computed (spec.md S4.4: "solves the one-equation, one-unknown case").
var ErrSingleParamUnknown = errors.New("reduce: constraint residual is not a single-unknown equation")
