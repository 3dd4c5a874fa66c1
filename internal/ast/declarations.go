package ast

import (
	"strings"

	"github.com/cwbudde/tswasmc/internal/span"
	"github.com/cwbudde/tswasmc/internal/types"
)

// Parameter is one function parameter: a name and its declared type.
type Parameter struct {
	Name *Identifier
	Type *types.Type
}

func (p *Parameter) String() string {
	return p.Name.String() + ": " + p.Type.String()
}

// AnnotationKind identifies which of the three function annotations
// the code generator recognizes is present. Unknown annotations are
// ignored.
type AnnotationKind int

const (
	AnnotationWast AnnotationKind = iota
	AnnotationNative
	AnnotationInline
	AnnotationUnknown
)

// Annotation is a single `@name("arg")` or `@name` decoration on a
// function declaration.
type Annotation struct {
	Kind AnnotationKind
	Name string
	Arg  string
}

// FunctionDeclaration is a top-level (or, post-lowering, synthesized)
// function. Export marks it for inclusion in the module's export section.
type FunctionDeclaration struct {
	SpanV       span.Span
	Name        *Identifier
	Parameters  []*Parameter
	ReturnType  *types.Type // nil means void
	Body        *BlockStatement
	Annotations []Annotation
	Export      bool
}

func (f *FunctionDeclaration) sourceElementNode() {}
func (f *FunctionDeclaration) Pos() span.Span     { return f.SpanV }
func (f *FunctionDeclaration) String() string {
	var out strings.Builder
	if f.Export {
		out.WriteString("export ")
	}
	out.WriteString("function ")
	out.WriteString(f.Name.String())
	out.WriteString("(")
	params := make([]string, len(f.Parameters))
	for i, p := range f.Parameters {
		params[i] = p.String()
	}
	out.WriteString(strings.Join(params, ", "))
	out.WriteString(")")
	if f.ReturnType != nil {
		out.WriteString(": ")
		out.WriteString(f.ReturnType.String())
	}
	out.WriteString(" ")
	if f.Body != nil {
		out.WriteString(f.Body.String())
	} else {
		out.WriteString("{}")
	}
	return out.String()
}

// HasAnnotation reports whether f carries an annotation of the given
// kind, returning it for inspection.
func (f *FunctionDeclaration) HasAnnotation(kind AnnotationKind) (Annotation, bool) {
	for _, a := range f.Annotations {
		if a.Kind == kind {
			return a, true
		}
	}
	return Annotation{}, false
}
