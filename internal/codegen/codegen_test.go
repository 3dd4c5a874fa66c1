package codegen

import (
	"testing"

	"github.com/cwbudde/tswasmc/internal/ast"
	"github.com/cwbudde/tswasmc/internal/ir"
	"github.com/cwbudde/tswasmc/internal/span"
	"github.com/cwbudde/tswasmc/internal/types"
)

// addFunction builds `export function add(a: i32, b: i32): i32 { return a
// + b; }`, already type-annotated.
func addFunction(sp span.Span) *ast.FunctionDeclaration {
	a := ast.NewIdentifier(sp, "a")
	a.Type = types.TypeI32
	b := ast.NewIdentifier(sp, "b")
	b.Type = types.TypeI32

	sum := &ast.BinaryExpression{SpanV: sp, Left: a, Operator: "+", Right: b, Class: ast.Additive, Type: types.TypeI32}
	ret := &ast.ReturnStatement{SpanV: sp, Argument: sum}

	return &ast.FunctionDeclaration{
		SpanV: sp,
		Name:  ast.NewIdentifier(sp, "add"),
		Parameters: []*ast.Parameter{
			{Name: ast.NewIdentifier(sp, "a"), Type: types.TypeI32},
			{Name: ast.NewIdentifier(sp, "b"), Type: types.TypeI32},
		},
		ReturnType: types.TypeI32,
		Body:       &ast.BlockStatement{SpanV: sp, Statements: []ast.Statement{ret}},
		Export:     true,
	}
}

func TestGenerateProducesOneExportedFunction(t *testing.T) {
	sp := span.Synth()
	prog := &ast.Program{Elements: []ast.SourceElement{addFunction(sp)}}

	mod, errs := Generate(prog, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(mod.Functions) != 1 {
		t.Fatalf("len(Functions) = %d, want 1", len(mod.Functions))
	}
	if len(mod.Exports) != 1 || mod.Exports[0].Name != "add" {
		t.Fatalf("Exports = %+v, want one entry named add", mod.Exports)
	}
}

func TestGenerateLeavesScopeStackAtDepthOne(t *testing.T) {
	sp := span.Synth()
	prog := &ast.Program{Elements: []ast.SourceElement{addFunction(sp)}}

	g := New(nil)
	for _, elem := range prog.Elements {
		if fn, ok := elem.(*ast.FunctionDeclaration); ok {
			g.generateFunction(fn)
		}
	}
	if g.wast.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1 after generating all functions", g.wast.Depth())
	}
}

func TestGenerateTwoFunctionsWithIdenticalSignatureDedupsType(t *testing.T) {
	sp := span.Synth()
	fn1 := addFunction(sp)
	fn2 := addFunction(sp)
	fn2.Name = ast.NewIdentifier(sp, "sum") // same (a: i32, b: i32): i32 shape

	prog := &ast.Program{Elements: []ast.SourceElement{fn1, fn2}}
	mod, errs := Generate(prog, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(mod.Types) != 1 {
		t.Errorf("len(Types) = %d, want 1 (identical param names and types)", len(mod.Types))
	}
}

func TestF32OnlySupportsAddition(t *testing.T) {
	sp := span.Synth()
	a := ast.NewIdentifier(sp, "a")
	a.Type = types.TypeF32
	b := ast.NewIdentifier(sp, "b")
	b.Type = types.TypeF32
	mul := &ast.BinaryExpression{SpanV: sp, Left: a, Operator: "*", Right: b, Class: ast.Multiplicative, Type: types.TypeF32}
	fn := &ast.FunctionDeclaration{
		SpanV: sp,
		Name:  ast.NewIdentifier(sp, "mulf"),
		Parameters: []*ast.Parameter{
			{Name: ast.NewIdentifier(sp, "a"), Type: types.TypeF32},
			{Name: ast.NewIdentifier(sp, "b"), Type: types.TypeF32},
		},
		ReturnType: types.TypeF32,
		Body: &ast.BlockStatement{SpanV: sp, Statements: []ast.Statement{
			&ast.ReturnStatement{SpanV: sp, Argument: mul},
		}},
	}
	prog := &ast.Program{Elements: []ast.SourceElement{fn}}

	_, errs := Generate(prog, nil)
	if len(errs) == 0 {
		t.Fatal("expected an Unsupported error for f32 * (only + is implemented)")
	}
}

// countFunction builds `export function count(n: i32): i32 { let i = 0;
// while (i < n) { i = i + 1; } return i; }`.
func countFunction(sp span.Span) *ast.FunctionDeclaration {
	n := ast.NewIdentifier(sp, "n")
	n.Type = types.TypeI32

	iDecl := ast.NewIdentifier(sp, "i")
	iDecl.Type = types.TypeI32
	zero := &ast.IntegerLiteral{SpanV: sp, Value: 0, Type: types.TypeI32}
	initStmt := &ast.VariableStatement{SpanV: sp, Kind: ast.Let, Declaration: iDecl, Initializer: zero}

	iRef := ast.NewIdentifier(sp, "i")
	iRef.Type = types.TypeI32
	cond := &ast.BinaryExpression{SpanV: sp, Left: iRef, Operator: "<", Right: n, Class: ast.Relational, Type: types.TypeBool}

	incLHS := ast.NewIdentifier(sp, "i")
	incLHS.Type = types.TypeI32
	one := &ast.IntegerLiteral{SpanV: sp, Value: 1, Type: types.TypeI32}
	incRHS := &ast.BinaryExpression{SpanV: sp, Left: incLHS, Operator: "+", Right: one, Class: ast.Additive, Type: types.TypeI32}
	incTarget := ast.NewIdentifier(sp, "i")
	incTarget.Type = types.TypeI32
	incAssign := &ast.AssignmentExpression{SpanV: sp, Target: incTarget, Value: incRHS, Type: types.TypeI32}
	whileStmt := &ast.WhileStatement{
		SpanV:     sp,
		Condition: cond,
		Body: &ast.BlockStatement{SpanV: sp, Statements: []ast.Statement{
			&ast.ExpressionStatement{SpanV: sp, Expression: incAssign},
		}},
	}

	retRef := ast.NewIdentifier(sp, "i")
	retRef.Type = types.TypeI32
	ret := &ast.ReturnStatement{SpanV: sp, Argument: retRef}

	return &ast.FunctionDeclaration{
		SpanV: sp,
		Name:  ast.NewIdentifier(sp, "count"),
		Parameters: []*ast.Parameter{
			{Name: ast.NewIdentifier(sp, "n"), Type: types.TypeI32},
		},
		ReturnType: types.TypeI32,
		Body: &ast.BlockStatement{SpanV: sp, Statements: []ast.Statement{
			initStmt, whileStmt, ret,
		}},
		Export: true,
	}
}

func TestWhileCompilesToLoopWrappingIf(t *testing.T) {
	sp := span.Synth()
	prog := &ast.Program{Elements: []ast.SourceElement{countFunction(sp)}}

	mod, errs := Generate(prog, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	fn := mod.Functions[0]

	var block *ir.Block
	for _, instr := range fn.Instructions {
		if b, ok := instr.(*ir.Block); ok {
			block = b
		}
	}
	if block == nil {
		t.Fatalf("function body has no wrapping Block: %+v", fn.Instructions)
	}

	var loop *ir.Loop
	for _, instr := range block.Body {
		if l, ok := instr.(*ir.Loop); ok {
			loop = l
		}
	}
	if loop == nil {
		t.Fatalf("while did not compile to a Loop: %+v", block.Body)
	}
	if len(loop.Body) != 1 {
		t.Fatalf("Loop.Body = %+v, want exactly one If", loop.Body)
	}
	ifInstr, ok := loop.Body[0].(*ir.If)
	if !ok {
		t.Fatalf("Loop.Body[0] = %T, want *ir.If", loop.Body[0])
	}
	last := ifInstr.Then[len(ifInstr.Then)-1]
	if br, ok := last.(*ir.BrLoop); !ok || br.Label != loop.Label {
		t.Fatalf("If.Then does not end with BrLoop targeting the loop's own label: %+v", ifInstr.Then)
	}
}

func TestArrayLiteralAllocatesAndPushesEachElement(t *testing.T) {
	sp := span.Synth()
	one := &ast.IntegerLiteral{SpanV: sp, Value: 1, Type: types.TypeI32}
	two := &ast.IntegerLiteral{SpanV: sp, Value: 2, Type: types.TypeI32}
	lit := &ast.ArrayLiteral{SpanV: sp, Elements: []ast.Expression{one, two}, Type: types.Array(types.TypeI32)}

	g := New(nil)
	instr := g.visitArrayLiteral(lit)

	complex, ok := instr.(*ir.Complex)
	if !ok {
		t.Fatalf("visitArrayLiteral returned %T, want *ir.Complex", instr)
	}
	// one LocalSet (arrayNew) + two I32Store (one per pushed element) + one trailing LocalGet
	if len(complex.Items) != 4 {
		t.Fatalf("len(Complex.Items) = %d, want 4", len(complex.Items))
	}
	if _, ok := complex.Items[0].(*ir.LocalSet); !ok {
		t.Fatalf("Complex.Items[0] = %T, want *ir.LocalSet (arrayNew)", complex.Items[0])
	}
	if _, ok := complex.Items[len(complex.Items)-1].(*ir.LocalGet); !ok {
		t.Fatalf("last Complex.Items entry = %T, want *ir.LocalGet (the pointer)", complex.Items[len(complex.Items)-1])
	}
	if !g.imported["arrayNew"] || !g.imported["arrayPush"] {
		t.Fatalf("visitArrayLiteral did not register arrayNew/arrayPush imports")
	}
}

func TestTopLevelLetDefinesModuleGlobal(t *testing.T) {
	sp := span.Synth()
	decl := ast.NewIdentifier(sp, "counter")
	decl.Type = types.TypeI32
	zero := &ast.IntegerLiteral{SpanV: sp, Value: 0, Type: types.TypeI32}
	stmt := &ast.VariableStatement{SpanV: sp, Kind: ast.Let, Declaration: decl, Initializer: zero}
	prog := &ast.Program{Elements: []ast.SourceElement{&ast.StatementElement{Statement: stmt}}}

	mod, errs := Generate(prog, nil)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(mod.Globals) != 1 || mod.Globals[0].Name != "counter" {
		t.Fatalf("Globals = %+v, want one entry named counter", mod.Globals)
	}
}

func TestFieldAccessCompilesToDirectLoadButIndexGoesThroughArrayAt(t *testing.T) {
	sp := span.Synth()

	g := New(nil)
	g.wast.DefineLocal("this", ir.I32)
	obj := ast.NewIdentifier(sp, "this")
	obj.Type = types.Object("Point")
	offset := &ast.IntegerLiteral{SpanV: sp, Value: 0, Type: types.TypeI32}
	field := &ast.MemberIndexExpression{SpanV: sp, Object: obj, Index: offset, Type: types.TypeI32, FieldAccess: true}

	got := g.visitMemberIndex(field)
	if _, ok := got.(*ir.I32Load); !ok {
		t.Fatalf("FieldAccess=true compiled to %T, want *ir.I32Load", got)
	}

	g2 := New(nil)
	g2.wast.DefineLocal("arr", ir.I32)
	arr := ast.NewIdentifier(sp, "arr")
	arr.Type = types.Array(types.TypeI32)
	idx := &ast.IntegerLiteral{SpanV: sp, Value: 3, Type: types.TypeI32}
	index := &ast.MemberIndexExpression{SpanV: sp, Object: arr, Index: idx, Type: types.TypeI32, FieldAccess: false}

	gotIndex := g2.visitMemberIndex(index)
	call, ok := gotIndex.(*ir.Call)
	if !ok || call.Name != "arrayAt" {
		t.Fatalf("FieldAccess=false compiled to %+v, want a Call to arrayAt", gotIndex)
	}
}
