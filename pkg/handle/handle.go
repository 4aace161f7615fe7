// Package handle defines the opaque, stable handle types used to address
// every stored object in the sketch: parameters, entities, requests,
// constraints, groups, and styles. Handles are plain 32-bit integers with a
// fixed derivation arithmetic: a Request's or Group's handle, shifted and
// offset, yields the base handle of whatever it generates. This mirrors the
// original SolveSpace C++ handle scheme (spec.md SS3) so that handle
// derivation stays an injection over a session (Testable Property 6).
package handle

import "fmt"

// widthBits is the number of low bits reserved for an index within a single
// Request's or Group's generated objects. 16 bits gives 65536 generated
// objects per request/group, comfortably above anything a single request
// (at most a few points/normals/distances) or group (at most a handful of
// extrude/lathe/step parameters) ever needs.
const widthBits = 16

// None is the universal "no handle" sentinel. No real object is ever
// assigned handle 0.
const None uint32 = 0

// Reserved low handles for the predefined reference geometry, matching the
// original's fixed small-integer reservations for XY/YZ/ZX planes and the
// references group.
const (
	// GroupReferences is the handle of the implicit group owning the
	// reference planes and origin point; it always regenerates first and is
	// never dirtied by the editor.
	GroupReferences uint32 = 1

	// EntityOrigin, EntityXY, EntityYZ, EntityZX are the fixed handles of the
	// reference-group's origin point and three reference workplanes.
	EntityOrigin uint32 = 1
	EntityXY     uint32 = 2
	EntityYZ     uint32 = 3
	EntityZX     uint32 = 4
)

// Param addresses a scalar unknown.
type Param uint32

// Entity addresses a geometric primitive.
type Entity uint32

// Request addresses a user-level sketch primitive template.
type Request uint32

// Constraint addresses a declarative relation between entities.
type Constraint uint32

// Group addresses an ordered regeneration-pipeline stage.
type Group uint32

// Style addresses a render-attribute record.
type Style uint32

// IsNone reports whether h is the universal sentinel.
func (h Param) IsNone() bool      { return uint32(h) == None }
func (h Entity) IsNone() bool     { return uint32(h) == None }
func (h Request) IsNone() bool    { return uint32(h) == None }
func (h Constraint) IsNone() bool { return uint32(h) == None }
func (h Group) IsNone() bool      { return uint32(h) == None }
func (h Style) IsNone() bool      { return uint32(h) == None }

func (h Param) String() string      { return fmt.Sprintf("p%03x", uint32(h)) }
func (h Entity) String() string     { return fmt.Sprintf("e%03x", uint32(h)) }
func (h Request) String() string    { return fmt.Sprintf("r%03x", uint32(h)) }
func (h Constraint) String() string { return fmt.Sprintf("c%03x", uint32(h)) }
func (h Group) String() string      { return fmt.Sprintf("g%03x", uint32(h)) }
func (h Style) String() string      { return fmt.Sprintf("s%03x", uint32(h)) }

// RequestBase returns the base handle from which a Request's generated
// Entities and Params are derived: (requestIndex << widthBits).
func RequestBase(requestIndex uint32) uint32 {
	return requestIndex << widthBits
}

// GroupBase returns the base handle from which a Group's own introduced
// Params (e.g. its extrude vector) are derived: ((groupIndex | 1<<15) <<
// widthBits). The set bit 15 keeps every Group range apart from the range of
// any Request index below 1<<15.
func GroupBase(groupIndex uint32) uint32 {
	return (groupIndex | 1<<15) << widthBits
}

// Derive computes the derived handle for the local-th object generated by
// the owner identified by base (RequestBase or GroupBase). local must be
// less than 1<<widthBits or it collides with the next owner's range; this
// is a programmer-invariant violation, not a recoverable error, since it
// can only happen from a hand-authored generation bug.
func Derive(base uint32, local uint32) uint32 {
	if local >= (1 << widthBits) {
		panic(fmt.Sprintf("handle: local index %d overflows derivation width", local))
	}
	return base | local
}

// Owner extracts the owning Request index from a derived handle; for a
// Group-derived handle the result is the Group index with bit 15 set.
func Owner(derived uint32) uint32 {
	return derived >> widthBits
}

// Local extracts the local index from a derived handle.
func Local(derived uint32) uint32 {
	return derived & ((1 << widthBits) - 1)
}

// DeriveEntity / DeriveParam are typed convenience wrappers around Derive,
// used by pkg/generate when expanding a Request.
func DeriveEntity(requestIndex uint32, local uint32) Entity {
	return Entity(Derive(RequestBase(requestIndex), local))
}

func DeriveParam(requestIndex uint32, local uint32) Param {
	return Param(Derive(RequestBase(requestIndex), local))
}

// DeriveGroupParam derives a Param owned directly by a Group (e.g. an
// extrude distance), as distinct from Params owned by the Group's Requests.
func DeriveGroupParam(groupIndex uint32, local uint32) Param {
	return Param(Derive(GroupBase(groupIndex), local))
}
