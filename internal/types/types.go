// Package types models the minimal type-tag vocabulary the semantic
// analyzer (out of core scope) decorates every expression node with
// before handing the AST to lowering: primitive scalars, arrays, string,
// object, function signatures, void and unknown.
package types

import "strings"

// Kind discriminates the shape of a Type.
type Kind int

const (
	Unknown Kind = iota
	I32
	U32
	F32
	Bool
	StringKind
	ArrayKind
	ObjectKind
	FunctionKind
	Void
)

// String renders a bare Kind (independent of any Type wrapping it), used
// by diagnostics that only have a Kind on hand (e.g. codegen's operator
// dispatch before it builds a full Type).
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

var kindNames = map[Kind]string{
	Unknown:      "unknown",
	I32:          "i32",
	U32:          "u32",
	F32:          "f32",
	Bool:         "bool",
	StringKind:   "string",
	ArrayKind:    "array",
	ObjectKind:   "object",
	FunctionKind: "function",
	Void:         "void",
}

// Type is an immutable, structurally-comparable type descriptor.
type Type struct {
	Kind   Kind
	Elem   *Type   // element type, set when Kind == ArrayKind
	Name   string  // class name, set when Kind == ObjectKind
	Params []*Type // parameter types, set when Kind == FunctionKind
	Ret    *Type   // return type (nil means void), set when Kind == FunctionKind
}

// Primitive constructors. These are the only scalar kinds the code
// generator's binary-operator dispatch ever sees directly; every other
// kind must have been rewritten away by lowering.
var (
	TypeI32    = &Type{Kind: I32}
	TypeU32    = &Type{Kind: U32}
	TypeF32    = &Type{Kind: F32}
	TypeBool   = &Type{Kind: Bool}
	TypeString = &Type{Kind: StringKind}
	TypeVoid   = &Type{Kind: Void}
	TypeUnknown = &Type{Kind: Unknown}
)

// Array returns the array-of-elem type.
func Array(elem *Type) *Type {
	return &Type{Kind: ArrayKind, Elem: elem}
}

// Object returns the named class/object type.
func Object(name string) *Type {
	return &Type{Kind: ObjectKind, Name: name}
}

// Function returns a function(params) -> ret type. ret == nil means void.
func Function(params []*Type, ret *Type) *Type {
	return &Type{Kind: FunctionKind, Params: params, Ret: ret}
}

// IsPrimitive reports whether t is one of i32/u32/f32/bool — the only
// kinds the code generator compiles operators on directly.
func (t *Type) IsPrimitive() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case I32, U32, F32, Bool:
		return true
	default:
		return false
	}
}

// Equals reports structural equality: same kind, and for composite kinds
// equal element, class name, or parameter and return types.
func (t *Type) Equals(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.Kind != other.Kind {
		return false
	}
	switch t.Kind {
	case ArrayKind:
		return t.Elem.Equals(other.Elem)
	case ObjectKind:
		return t.Name == other.Name
	case FunctionKind:
		if len(t.Params) != len(other.Params) {
			return false
		}
		for i := range t.Params {
			if !t.Params[i].Equals(other.Params[i]) {
				return false
			}
		}
		return t.Ret.Equals(other.Ret)
	default:
		return true
	}
}

// String renders the type the way the lowering pass's operator-overload
// dispatch names it, e.g. the method name `Point#add` is built from
// `Object("Point").String()`.
func (t *Type) String() string {
	if t == nil {
		return kindNames[Unknown]
	}
	switch t.Kind {
	case ArrayKind:
		return "array<" + t.Elem.String() + ">"
	case ObjectKind:
		return t.Name
	case FunctionKind:
		parts := make([]string, len(t.Params))
		for i, p := range t.Params {
			parts[i] = p.String()
		}
		ret := "void"
		if t.Ret != nil {
			ret = t.Ret.String()
		}
		return "(" + strings.Join(parts, ", ") + ") -> " + ret
	default:
		if name, ok := kindNames[t.Kind]; ok {
			return name
		}
		return "unknown"
	}
}
