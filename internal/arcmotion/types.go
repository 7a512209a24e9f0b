package arcmotion

// Type is the minimal capability surface the pass needs from a type
// system it does not own: triviality/refcounting predicates and
// enum-payload projections.
type Type interface {
	IsTrivial() bool
	IsReferenceCounted() bool
	// EnumElementType returns the payload type of case c, or nil if c
	// carries no payload. Panics if the receiver is not an enum type.
	EnumElementType(c EnumCase) Type
	// EnumOrBoundGenericEnum reports whether the receiver is (possibly a
	// generic instantiation of) an enum type.
	EnumOrBoundGenericEnum() bool
	// OtherEnumCase returns the receiver's remaining case when it is an
	// enum with exactly two cases and c is one of them, for inferring a
	// cond_branch's false-arm case from a select_enum's true-arm case.
	OtherEnumCase(c EnumCase) (EnumCase, bool)
	String() string
}

// TrivialType is a value type with no reference-counting obligations
// (integers, booleans, other PODs).
type TrivialType struct{ Name string }

func (t TrivialType) IsTrivial() bool                       { return true }
func (t TrivialType) IsReferenceCounted() bool               { return false }
func (t TrivialType) EnumElementType(EnumCase) Type          { panic("arcmotion: not an enum type: " + t.Name) }
func (t TrivialType) EnumOrBoundGenericEnum() bool            { return false }
func (t TrivialType) OtherEnumCase(EnumCase) (EnumCase, bool) { return EnumCase{}, false }
func (t TrivialType) String() string                         { return t.Name }

// RefCountedType is a class-like reference-counted type (retain/release
// via StrongRetain/StrongRelease).
type RefCountedType struct{ Name string }

func (t RefCountedType) IsTrivial() bool                       { return false }
func (t RefCountedType) IsReferenceCounted() bool               { return true }
func (t RefCountedType) EnumElementType(EnumCase) Type          { panic("arcmotion: not an enum type: " + t.Name) }
func (t RefCountedType) EnumOrBoundGenericEnum() bool            { return false }
func (t RefCountedType) OtherEnumCase(EnumCase) (EnumCase, bool) { return EnumCase{}, false }
func (t RefCountedType) String() string                         { return t.Name }

// CompositeType is a non-trivial, non-class value type (a struct
// containing reference-counted fields): ref-counted via
// RetainValue/ReleaseValue rather than StrongRetain/StrongRelease.
type CompositeType struct{ Name string }

func (t CompositeType) IsTrivial() bool                       { return false }
func (t CompositeType) IsReferenceCounted() bool               { return false }
func (t CompositeType) EnumElementType(EnumCase) Type          { panic("arcmotion: not an enum type: " + t.Name) }
func (t CompositeType) EnumOrBoundGenericEnum() bool            { return false }
func (t CompositeType) OtherEnumCase(EnumCase) (EnumCase, bool) { return EnumCase{}, false }
func (t CompositeType) String() string                         { return t.Name }

// EnumType is a tagged-union type; each case may optionally carry a
// payload of a given Type.
type EnumType struct {
	Name     string
	Payloads map[string]Type // case name -> payload type; every case has a key, nil if it has no payload
}

func (t EnumType) IsTrivial() bool             { return false }
func (t EnumType) IsReferenceCounted() bool     { return false }
func (t EnumType) EnumOrBoundGenericEnum() bool  { return true }
func (t EnumType) String() string               { return t.Name }

func (t EnumType) EnumElementType(c EnumCase) Type {
	if !c.HasPayload {
		return nil
	}
	if pt, ok := t.Payloads[c.Name]; ok {
		return pt
	}
	return nil
}

func (t EnumType) OtherEnumCase(c EnumCase) (EnumCase, bool) {
	if len(t.Payloads) != 2 {
		return EnumCase{}, false
	}
	for name, payload := range t.Payloads {
		if name == c.Name {
			continue
		}
		return EnumCase{Name: name, HasPayload: payload != nil}, true
	}
	return EnumCase{}, false
}
