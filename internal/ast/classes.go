package ast

import (
	"strings"

	"github.com/cwbudde/tswasmc/internal/span"
	"github.com/cwbudde/tswasmc/internal/types"
)

// FieldDeclaration is one `name: type;` class field.
type FieldDeclaration struct {
	Name *Identifier
	Type *types.Type
}

// ConstructorDeclaration is a class's `constructor(args) { ... }`.
type ConstructorDeclaration struct {
	SpanV      span.Span
	Parameters []*Parameter
	Body       *BlockStatement
}

// MethodDeclaration is one class method, pre-lowering. Lowering turns it
// into a free FunctionDeclaration named `ClassName#MethodName` whose
// first parameter is the synthetic `this`.
type MethodDeclaration struct {
	SpanV      span.Span
	Name       *Identifier
	Parameters []*Parameter
	ReturnType *types.Type
	Body       *BlockStatement
}

// ClassDeclaration exists only pre-lowering; after lowering no
// ClassDeclaration node is reachable from the program root.
type ClassDeclaration struct {
	SpanV       span.Span
	Name        *Identifier
	Fields      []*FieldDeclaration
	Constructor *ConstructorDeclaration
	Methods     []*MethodDeclaration
}

func (c *ClassDeclaration) sourceElementNode() {}
func (c *ClassDeclaration) Pos() span.Span     { return c.SpanV }
func (c *ClassDeclaration) String() string {
	var out strings.Builder
	out.WriteString("class ")
	out.WriteString(c.Name.String())
	out.WriteString(" {")
	for _, f := range c.Fields {
		out.WriteString("\n  ")
		out.WriteString(f.Name.String())
		out.WriteString(": ")
		out.WriteString(f.Type.String())
		out.WriteString(";")
	}
	if c.Constructor != nil {
		out.WriteString("\n  constructor(...) { ... }")
	}
	for _, m := range c.Methods {
		out.WriteString("\n  ")
		out.WriteString(m.Name.String())
		out.WriteString("(...) { ... }")
	}
	out.WriteString("\n}")
	return out.String()
}

// ---- BindingsTable ---------------------------------------------------

// FieldBinding records one field's byte offset and size within its
// class's instance layout.
type FieldBinding struct {
	Name   string
	Type   *types.Type
	Offset int
	Size   int
}

// ClassBinding is the BindingsTable's per-class entry: field layout and
// the set of method names the class declares.
type ClassBinding struct {
	Name    string
	Fields  []FieldBinding
	Size    int // total instance byte size, passed to objectNew
	Methods map[string]bool
}

// FieldOffset looks up a field's byte offset by name.
func (c *ClassBinding) FieldOffset(name string) (FieldBinding, bool) {
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldBinding{}, false
}

// BindingsTable maps a class name to its field layout and method set,
// produced by the semantic analyzer (out of core scope) and consumed by
// lowering.
type BindingsTable struct {
	classes map[string]*ClassBinding
}

// NewBindingsTable creates an empty table.
func NewBindingsTable() *BindingsTable {
	return &BindingsTable{classes: make(map[string]*ClassBinding)}
}

// Define registers a class's binding, computing field offsets in
// declaration order. Every scalar field the core's object layout
// supports (i32/u32/f32/bool, and object/array pointers) is a 4-byte
// WASM value.
func (t *BindingsTable) Define(className string, fields []FieldBinding, methods map[string]bool) *ClassBinding {
	offset := 0
	laidOut := make([]FieldBinding, len(fields))
	for i, f := range fields {
		size := 4
		laidOut[i] = FieldBinding{Name: f.Name, Type: f.Type, Offset: offset, Size: size}
		offset += size
	}
	cb := &ClassBinding{Name: className, Fields: laidOut, Size: offset, Methods: methods}
	t.classes[className] = cb
	return cb
}

// Lookup returns a class's binding by name.
func (t *BindingsTable) Lookup(className string) (*ClassBinding, bool) {
	cb, ok := t.classes[className]
	return cb, ok
}
