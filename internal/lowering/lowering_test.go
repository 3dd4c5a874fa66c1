package lowering

import (
	"testing"

	"github.com/cwbudde/tswasmc/internal/ast"
	"github.com/cwbudde/tswasmc/internal/span"
	"github.com/cwbudde/tswasmc/internal/types"
)

// pointClass builds a minimal `class Point { x: i32; constructor(x: i32) {
// this.x = x; } }` AST (no methods), already type-annotated as the
// semantic analyzer would leave it.
func pointClass(t *testing.T) (*ast.Program, *ast.BindingsTable) {
	t.Helper()
	sp := span.Synth()
	bindings := ast.NewBindingsTable()
	binding := bindings.Define("Point", []ast.FieldBinding{{Name: "x", Type: types.TypeI32}}, map[string]bool{"constructor": true})

	xParam := &ast.Parameter{Name: ast.NewIdentifier(sp, "x"), Type: types.TypeI32}
	thisExpr := &ast.ThisExpression{SpanV: sp, Type: types.Object("Point")}
	assignX := &ast.ExpressionStatement{SpanV: sp, Expression: &ast.AssignmentExpression{
		SpanV:  sp,
		Target: &ast.MemberDotExpression{SpanV: sp, Object: thisExpr, Property: ast.NewIdentifier(sp, "x"), Type: types.TypeI32},
		Value:  ast.NewIdentifier(sp, "x"),
		Type:   types.TypeI32,
	}}
	ctor := &ast.ConstructorDeclaration{
		SpanV:      sp,
		Parameters: []*ast.Parameter{xParam},
		Body:       &ast.BlockStatement{SpanV: sp, Statements: []ast.Statement{assignX}},
	}

	class := &ast.ClassDeclaration{
		SpanV:       sp,
		Name:        ast.NewIdentifier(sp, "Point"),
		Fields:      []*ast.FieldDeclaration{{Name: ast.NewIdentifier(sp, "x"), Type: types.TypeI32}},
		Constructor: ctor,
	}

	_ = binding
	prog := &ast.Program{Elements: []ast.SourceElement{class}}
	return prog, bindings
}

func TestLowerRemovesClassDeclaration(t *testing.T) {
	prog, bindings := pointClass(t)
	out, errs := Lower(prog, bindings)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	for _, e := range out.Elements {
		if _, ok := e.(*ast.ClassDeclaration); ok {
			t.Fatal("ClassDeclaration survived lowering")
		}
	}
}

func TestLowerConstructorProducesNamedFunction(t *testing.T) {
	prog, bindings := pointClass(t)
	out, _ := Lower(prog, bindings)

	var found *ast.FunctionDeclaration
	for _, e := range out.Elements {
		if fn, ok := e.(*ast.FunctionDeclaration); ok && fn.Name.Value == "Point#constructor" {
			found = fn
		}
	}
	if found == nil {
		t.Fatal("expected a Point#constructor function after lowering")
	}
	if found.ReturnType == nil || found.ReturnType.Kind != types.ObjectKind {
		t.Errorf("constructor return type = %v, want Object(Point)", found.ReturnType)
	}
}

func walkNoThisOrMemberDot(t *testing.T, s ast.Statement) {
	t.Helper()
	switch st := s.(type) {
	case *ast.BlockStatement:
		for _, inner := range st.Statements {
			walkNoThisOrMemberDot(t, inner)
		}
	case *ast.ExpressionStatement:
		walkExprNoThisOrMemberDot(t, st.Expression)
	case *ast.VariableStatement:
		if st.Initializer != nil {
			walkExprNoThisOrMemberDot(t, st.Initializer)
		}
	case *ast.ReturnStatement:
		if st.Argument != nil {
			walkExprNoThisOrMemberDot(t, st.Argument)
		}
	}
}

func walkExprNoThisOrMemberDot(t *testing.T, e ast.Expression) {
	t.Helper()
	switch ex := e.(type) {
	case *ast.ThisExpression:
		t.Fatal("ThisExpression survived lowering")
	case *ast.MemberDotExpression:
		t.Fatal("MemberDotExpression survived lowering")
	case *ast.NewExpression:
		t.Fatal("NewExpression survived lowering")
	case *ast.AssignmentExpression:
		walkExprNoThisOrMemberDot(t, ex.Target)
		walkExprNoThisOrMemberDot(t, ex.Value)
	case *ast.MemberIndexExpression:
		walkExprNoThisOrMemberDot(t, ex.Object)
		walkExprNoThisOrMemberDot(t, ex.Index)
	}
}

func TestLoweredBodyHasNoThisOrMemberDot(t *testing.T) {
	prog, bindings := pointClass(t)
	out, _ := Lower(prog, bindings)

	for _, e := range out.Elements {
		if fn, ok := e.(*ast.FunctionDeclaration); ok {
			walkNoThisOrMemberDot(t, fn.Body)
		}
	}
}
