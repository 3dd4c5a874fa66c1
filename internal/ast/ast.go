// Package ast defines the Abstract Syntax Tree node types consumed by the
// compiler core: AST Lowering, the Code Generator, and (transitively) the
// Binary Serializer. The tokenizer, parser and semantic analyzer that
// produce and decorate this tree are out of core scope — this package
// only models their output contract.
package ast

import (
	"strconv"
	"strings"

	"github.com/cwbudde/tswasmc/internal/span"
	"github.com/cwbudde/tswasmc/internal/types"
)

// Node is the base interface every AST node implements.
type Node interface {
	// String renders the node for debugging and snapshot tests.
	String() string
	// Pos returns the node's source span, possibly synthetic.
	Pos() span.Span
}

// SourceElement is either a FunctionDeclaration or a StatementElement —
// the two things a Program is built from. Pre-lowering, a
// ClassDeclaration is also a SourceElement; lowering removes it.
type SourceElement interface {
	Node
	sourceElementNode()
}

// Expression is any node that produces a value.
type Expression interface {
	Node
	expressionNode()
	// GetType returns the type tag the semantic analyzer attached. Nodes
	// made by NewIdentifier or decoded by astio carry types.TypeUnknown
	// when no tag was given; a node built as a struct literal without a
	// Type returns nil.
	GetType() *types.Type
	SetType(*types.Type)
}

// Statement is any node that performs an action without producing a
// value itself (though it may wrap an Expression statement).
type Statement interface {
	SourceElement
	statementNode()
}

// StatementElement adapts a Statement so it satisfies SourceElement at
// the program's top level.
type StatementElement struct {
	Statement
}

func (se *StatementElement) sourceElementNode() {}

// Program is the root of the tree: an ordered list of source elements.
type Program struct {
	Elements []SourceElement
}

func (p *Program) String() string {
	var out strings.Builder
	for i, el := range p.Elements {
		if i > 0 {
			out.WriteString("\n")
		}
		out.WriteString(el.String())
	}
	return out.String()
}

func (p *Program) Pos() span.Span {
	if len(p.Elements) > 0 {
		return p.Elements[0].Pos()
	}
	return span.Synth()
}

// Identifier names a binding: a variable, function, parameter, class or
// field. Identifier doubles as an Expression so it can appear directly in
// expression position.
type Identifier struct {
	Span  span.Span
	Value string
	Type  *types.Type
}

func NewIdentifier(s span.Span, value string) *Identifier {
	return &Identifier{Span: s, Value: value, Type: types.TypeUnknown}
}

func (i *Identifier) expressionNode()       {}
func (i *Identifier) String() string        { return i.Value }
func (i *Identifier) Pos() span.Span        { return i.Span }
func (i *Identifier) GetType() *types.Type  { return i.Type }
func (i *Identifier) SetType(t *types.Type) { i.Type = t }

// ---- Literals -------------------------------------------------------

// IntegerLiteral is an integer constant.
type IntegerLiteral struct {
	SpanV span.Span
	Value int64
	Type  *types.Type
}

func (l *IntegerLiteral) expressionNode()       {}
func (l *IntegerLiteral) Pos() span.Span        { return l.SpanV }
func (l *IntegerLiteral) GetType() *types.Type  { return l.Type }
func (l *IntegerLiteral) SetType(t *types.Type) { l.Type = t }
func (l *IntegerLiteral) String() string        { return strconv.FormatInt(l.Value, 10) }

// FloatLiteral is a floating-point constant.
type FloatLiteral struct {
	SpanV span.Span
	Value float64
	Type  *types.Type
}

func (l *FloatLiteral) expressionNode()       {}
func (l *FloatLiteral) Pos() span.Span        { return l.SpanV }
func (l *FloatLiteral) GetType() *types.Type  { return l.Type }
func (l *FloatLiteral) SetType(t *types.Type) { l.Type = t }
func (l *FloatLiteral) String() string        { return strconv.FormatFloat(l.Value, 'g', -1, 64) }

// StringLiteral is a string constant. Not implemented by the code
// generator; the node still exists so lowering can see it.
type StringLiteral struct {
	SpanV span.Span
	Value string
	Type  *types.Type
}

func (l *StringLiteral) expressionNode()       {}
func (l *StringLiteral) Pos() span.Span        { return l.SpanV }
func (l *StringLiteral) GetType() *types.Type  { return l.Type }
func (l *StringLiteral) SetType(t *types.Type) { l.Type = t }
func (l *StringLiteral) String() string        { return "\"" + l.Value + "\"" }

// BooleanLiteral is `true` or `false`.
type BooleanLiteral struct {
	SpanV span.Span
	Value bool
	Type  *types.Type
}

func (l *BooleanLiteral) expressionNode()       {}
func (l *BooleanLiteral) Pos() span.Span        { return l.SpanV }
func (l *BooleanLiteral) GetType() *types.Type  { return l.Type }
func (l *BooleanLiteral) SetType(t *types.Type) { l.Type = t }
func (l *BooleanLiteral) String() string {
	if l.Value {
		return "true"
	}
	return "false"
}

// ArrayLiteral is `[e1, e2, ...]`.
type ArrayLiteral struct {
	SpanV    span.Span
	Elements []Expression
	Type     *types.Type
}

func (l *ArrayLiteral) expressionNode()       {}
func (l *ArrayLiteral) Pos() span.Span        { return l.SpanV }
func (l *ArrayLiteral) GetType() *types.Type  { return l.Type }
func (l *ArrayLiteral) SetType(t *types.Type) { l.Type = t }
func (l *ArrayLiteral) String() string {
	parts := make([]string, len(l.Elements))
	for i, e := range l.Elements {
		parts[i] = e.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ThisExpression is the `this` keyword. Must not survive lowering:
// lowering rewrites it to an identifier expression naming the
// synthetic `this` parameter of the enclosing method/constructor.
type ThisExpression struct {
	SpanV span.Span
	Type  *types.Type
}

func (t *ThisExpression) expressionNode()        {}
func (t *ThisExpression) Pos() span.Span         { return t.SpanV }
func (t *ThisExpression) GetType() *types.Type   { return t.Type }
func (t *ThisExpression) SetType(ty *types.Type) { t.Type = ty }
func (t *ThisExpression) String() string         { return "this" }
