package ast

import (
	"github.com/cwbudde/tswasmc/internal/span"
	"github.com/cwbudde/tswasmc/internal/types"
)

// PrecedenceClass tags a BinaryExpression with the precedence tier its
// operator belongs to, despite every tier sharing identical shape — kept
// as a field on one shared struct rather than four distinct Go types.
type PrecedenceClass int

const (
	Multiplicative PrecedenceClass = iota
	Additive
	Bitwise
	Equality
	Relational
)

// BinaryExpression is any binary operator expression other than
// assignment: `left OP right`.
type BinaryExpression struct {
	SpanV    span.Span
	Left     Expression
	Operator string
	Right    Expression
	Class    PrecedenceClass
	Type     *types.Type
}

func (e *BinaryExpression) expressionNode()       {}
func (e *BinaryExpression) Pos() span.Span        { return e.SpanV }
func (e *BinaryExpression) GetType() *types.Type  { return e.Type }
func (e *BinaryExpression) SetType(t *types.Type) { e.Type = t }
func (e *BinaryExpression) String() string {
	return "(" + e.Left.String() + " " + e.Operator + " " + e.Right.String() + ")"
}

// UnaryExpression is a prefix unary operator: `-x`, `!x`, `+x`.
type UnaryExpression struct {
	SpanV    span.Span
	Operator string
	Argument Expression
	Type     *types.Type
}

func (e *UnaryExpression) expressionNode()       {}
func (e *UnaryExpression) Pos() span.Span        { return e.SpanV }
func (e *UnaryExpression) GetType() *types.Type  { return e.Type }
func (e *UnaryExpression) SetType(t *types.Type) { e.Type = t }
func (e *UnaryExpression) String() string        { return "(" + e.Operator + e.Argument.String() + ")" }

// AssignmentExpression is `target = value`. Target is either an
// Identifier or a MemberIndexExpression/MemberDotExpression.
type AssignmentExpression struct {
	SpanV  span.Span
	Target Expression
	Value  Expression
	Type   *types.Type
}

func (e *AssignmentExpression) expressionNode()       {}
func (e *AssignmentExpression) Pos() span.Span        { return e.SpanV }
func (e *AssignmentExpression) GetType() *types.Type  { return e.Type }
func (e *AssignmentExpression) SetType(t *types.Type) { e.Type = t }
func (e *AssignmentExpression) String() string {
	return e.Target.String() + " = " + e.Value.String()
}

// MemberIndexExpression is `object[index]`. FieldAccess distinguishes
// the two origins codegen must treat differently: a genuine
// source-level `a[i]` (FieldAccess false) compiles through the
// `arrayAt` runtime builtin, while a desugared `this.f` (FieldAccess
// true, Index a constant byte offset from the BindingsTable) compiles to
// direct pointer arithmetic plus an i32 load/store — no runtime call.
type MemberIndexExpression struct {
	SpanV       span.Span
	Object      Expression
	Index       Expression
	Type        *types.Type
	FieldAccess bool
}

func (e *MemberIndexExpression) expressionNode()       {}
func (e *MemberIndexExpression) Pos() span.Span        { return e.SpanV }
func (e *MemberIndexExpression) GetType() *types.Type  { return e.Type }
func (e *MemberIndexExpression) SetType(t *types.Type) { e.Type = t }
func (e *MemberIndexExpression) String() string {
	return e.Object.String() + "[" + e.Index.String() + "]"
}

// MemberDotExpression is `object.property`. Must not survive lowering:
// it is rewritten to an indexed load (or, on the LHS of an assignment,
// an indexed store) against the BindingsTable field offset.
type MemberDotExpression struct {
	SpanV    span.Span
	Object   Expression
	Property *Identifier
	Type     *types.Type
}

func (e *MemberDotExpression) expressionNode()       {}
func (e *MemberDotExpression) Pos() span.Span        { return e.SpanV }
func (e *MemberDotExpression) GetType() *types.Type  { return e.Type }
func (e *MemberDotExpression) SetType(t *types.Type) { e.Type = t }
func (e *MemberDotExpression) String() string {
	return e.Object.String() + "." + e.Property.String()
}

// ArgumentsCallExpression is `callee(arg1, arg2, ...)`. Callee is an
// Identifier naming a (possibly synthetic) free function; after lowering
// every call in the program takes this shape.
type ArgumentsCallExpression struct {
	SpanV     span.Span
	Callee    *Identifier
	Arguments []Expression
	Type      *types.Type
}

func (e *ArgumentsCallExpression) expressionNode()       {}
func (e *ArgumentsCallExpression) Pos() span.Span        { return e.SpanV }
func (e *ArgumentsCallExpression) GetType() *types.Type  { return e.Type }
func (e *ArgumentsCallExpression) SetType(t *types.Type) { e.Type = t }
func (e *ArgumentsCallExpression) String() string {
	out := e.Callee.String() + "("
	for i, a := range e.Arguments {
		if i > 0 {
			out += ", "
		}
		out += a.String()
	}
	return out + ")"
}

// NewExpression is `new C(args)`. Must not survive lowering: it is
// rewritten to `ArgumentsCallExpression{Callee: C#constructor}`.
type NewExpression struct {
	SpanV     span.Span
	ClassName *Identifier
	Arguments []Expression
	Type      *types.Type
}

func (e *NewExpression) expressionNode()       {}
func (e *NewExpression) Pos() span.Span        { return e.SpanV }
func (e *NewExpression) GetType() *types.Type  { return e.Type }
func (e *NewExpression) SetType(t *types.Type) { e.Type = t }
func (e *NewExpression) String() string {
	out := "new " + e.ClassName.String() + "("
	for i, a := range e.Arguments {
		if i > 0 {
			out += ", "
		}
		out += a.String()
	}
	return out + ")"
}
