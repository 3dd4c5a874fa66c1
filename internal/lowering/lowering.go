// Package lowering implements AST Lowering: it rewrites a
// type-annotated Program so that no ClassDeclaration, ThisExpression,
// MemberDotExpression or NewExpression survives. Classes become plain
// functions, `this` becomes an ordinary first parameter, field access
// becomes an indexed load/store against the class's BindingsTable
// offsets, and non-primitive `+`/`-` become T#add/T#sub calls.
package lowering

import (
	"fmt"

	"github.com/cwbudde/tswasmc/internal/ast"
	"github.com/cwbudde/tswasmc/internal/errors"
	"github.com/cwbudde/tswasmc/internal/span"
	"github.com/cwbudde/tswasmc/internal/types"
)

// objectNewName is the intrinsic every lowered constructor calls to
// obtain a fresh instance's address; the code generator recognizes it
// and wires it to an imported allocator (see internal/codegen).
const objectNewName = "objectNew"

// bindingContext tracks which class (if any) is currently being
// lowered, so `this` and `this.f` can be rewritten against its
// BindingsTable entry. Lowering never nests class bodies, so a single
// current pointer (rather than a stack) suffices; it is nil outside any
// class.
type bindingContext struct {
	class *ast.ClassBinding
}

// Lowerer carries the shared BindingsTable and accumulates diagnostics
// across an entire program.
type Lowerer struct {
	bindings *ast.BindingsTable
	errs     []*errors.CompilerError
	ctx      bindingContext
}

// New creates a Lowerer against the given (externally produced)
// BindingsTable.
func New(bindings *ast.BindingsTable) *Lowerer {
	return &Lowerer{bindings: bindings}
}

// Lower rewrites prog in place (returning it for convenience) and
// returns any diagnostics collected along the way.
func Lower(prog *ast.Program, bindings *ast.BindingsTable) (*ast.Program, []*errors.CompilerError) {
	l := New(bindings)
	return l.LowerProgram(prog)
}

// LowerProgram is the entry point: it replaces every ClassDeclaration
// with its desugared free functions and rewrites every remaining
// element's expressions/statements.
func (l *Lowerer) LowerProgram(prog *ast.Program) (*ast.Program, []*errors.CompilerError) {
	var out []ast.SourceElement
	for _, elem := range prog.Elements {
		switch e := elem.(type) {
		case *ast.ClassDeclaration:
			out = append(out, l.lowerClass(e)...)
		case *ast.FunctionDeclaration:
			out = append(out, l.lowerFunction(e))
		case *ast.StatementElement:
			out = append(out, &ast.StatementElement{Statement: l.lowerStatement(e.Statement)})
		case ast.Statement:
			out = append(out, l.lowerStatement(e))
		default:
			out = append(out, elem)
		}
	}
	prog.Elements = out
	return prog, l.errs
}

func (l *Lowerer) errorf(kind errors.Kind, s ast.Node, format string, args ...interface{}) {
	l.errs = append(l.errs, errors.New(kind, s.Pos(), format, args...))
}

// ---- Classes ------------------------------------------------------------

// lowerClass desugars one class into N+1 free FunctionDeclarations: the
// constructor plus one per method.
func (l *Lowerer) lowerClass(c *ast.ClassDeclaration) []ast.SourceElement {
	binding, ok := l.bindings.Lookup(c.Name.Value)
	if !ok {
		l.errorf(errors.Structural, c, "no BindingsTable entry for class %q", c.Name.Value)
		return nil
	}

	var out []ast.SourceElement
	if c.Constructor != nil {
		out = append(out, l.lowerConstructor(c.Name.Value, c.Constructor, binding))
	}
	for _, m := range c.Methods {
		out = append(out, l.lowerMethod(c.Name.Value, m, binding))
	}
	return out
}

// lowerConstructor turns `constructor(params) { body }` into
// `ClassName#constructor(params): ClassName { let this = objectNew(size); body'; return this; }`.
func (l *Lowerer) lowerConstructor(className string, ctor *ast.ConstructorDeclaration, binding *ast.ClassBinding) *ast.FunctionDeclaration {
	prevCtx := l.ctx
	l.ctx = bindingContext{class: binding}
	defer func() { l.ctx = prevCtx }()

	thisIdent := ast.NewIdentifier(span.Synth(), "this")
	thisIdent.Type = types.Object(className)

	alloc := &ast.VariableStatement{
		SpanV:       span.Synth(),
		Kind:        ast.Let,
		Declaration: thisIdent,
		Initializer: &ast.ArgumentsCallExpression{
			SpanV:  span.Synth(),
			Callee: ast.NewIdentifier(span.Synth(), objectNewName),
			Arguments: []ast.Expression{
				&ast.IntegerLiteral{SpanV: span.Synth(), Value: int64(binding.Size), Type: types.TypeI32},
			},
			Type: types.TypeI32,
		},
	}

	body := l.lowerBlock(ctor.Body)
	stmts := append([]ast.Statement{alloc}, body.Statements...)
	stmts = append(stmts, &ast.ReturnStatement{
		SpanV:    span.Synth(),
		Argument: ast.NewIdentifier(span.Synth(), "this"),
	})

	return &ast.FunctionDeclaration{
		SpanV:      ctor.SpanV,
		Name:       ast.NewIdentifier(span.Synth(), fmt.Sprintf("%s#constructor", className)),
		Parameters: l.lowerParameters(ctor.Parameters),
		ReturnType: types.Object(className),
		Body:       &ast.BlockStatement{SpanV: ctor.Body.Pos(), Statements: stmts},
	}
}

// lowerMethod turns `name(params) { body }` into
// `ClassName#name(this: ClassName, params) { body' }`.
func (l *Lowerer) lowerMethod(className string, m *ast.MethodDeclaration, binding *ast.ClassBinding) *ast.FunctionDeclaration {
	prevCtx := l.ctx
	l.ctx = bindingContext{class: binding}
	defer func() { l.ctx = prevCtx }()

	thisParam := &ast.Parameter{
		Name: ast.NewIdentifier(span.Synth(), "this"),
		Type: types.Object(className),
	}
	params := append([]*ast.Parameter{thisParam}, l.lowerParameters(m.Parameters)...)

	return &ast.FunctionDeclaration{
		SpanV:      m.SpanV,
		Name:       ast.NewIdentifier(span.Synth(), fmt.Sprintf("%s#%s", className, m.Name.Value)),
		Parameters: params,
		ReturnType: m.ReturnType,
		Body:       l.lowerBlock(m.Body),
	}
}

func (l *Lowerer) lowerParameters(params []*ast.Parameter) []*ast.Parameter {
	out := make([]*ast.Parameter, len(params))
	copy(out, params)
	return out
}

// ---- Statements -----------------------------------------------------------

func (l *Lowerer) lowerFunction(f *ast.FunctionDeclaration) *ast.FunctionDeclaration {
	prevCtx := l.ctx
	l.ctx = bindingContext{}
	f.Body = l.lowerBlock(f.Body)
	l.ctx = prevCtx
	return f
}

func (l *Lowerer) lowerBlock(b *ast.BlockStatement) *ast.BlockStatement {
	if b == nil {
		return nil
	}
	stmts := make([]ast.Statement, len(b.Statements))
	for i, s := range b.Statements {
		stmts[i] = l.lowerStatement(s)
	}
	return &ast.BlockStatement{SpanV: b.SpanV, Statements: stmts}
}

func (l *Lowerer) lowerStatement(s ast.Statement) ast.Statement {
	switch st := s.(type) {
	case *ast.BlockStatement:
		return l.lowerBlock(st)
	case *ast.IfStatement:
		st.Condition = l.lowerExpression(st.Condition)
		st.Consequence = l.lowerStatement(st.Consequence)
		if st.Alternate != nil {
			st.Alternate = l.lowerStatement(st.Alternate)
		}
		return st
	case *ast.WhileStatement:
		st.Condition = l.lowerExpression(st.Condition)
		st.Body = l.lowerStatement(st.Body)
		return st
	case *ast.ReturnStatement:
		if st.Argument != nil {
			st.Argument = l.lowerExpression(st.Argument)
		}
		return st
	case *ast.VariableStatement:
		if st.Initializer != nil {
			st.Initializer = l.lowerExpression(st.Initializer)
		}
		return st
	case *ast.ExpressionStatement:
		st.Expression = l.lowerExpression(st.Expression)
		return st
	case *ast.EmptyStatement:
		return st
	default:
		return s
	}
}

// ---- Expressions ----------------------------------------------------------

func (l *Lowerer) lowerExpression(e ast.Expression) ast.Expression {
	switch ex := e.(type) {
	case *ast.ThisExpression:
		return l.lowerThis(ex)
	case *ast.NewExpression:
		return l.lowerNew(ex)
	case *ast.MemberDotExpression:
		return l.lowerMemberDot(ex)
	case *ast.MemberIndexExpression:
		ex.Object = l.lowerExpression(ex.Object)
		ex.Index = l.lowerExpression(ex.Index)
		return ex
	case *ast.BinaryExpression:
		return l.lowerBinary(ex)
	case *ast.UnaryExpression:
		ex.Argument = l.lowerExpression(ex.Argument)
		return ex
	case *ast.AssignmentExpression:
		ex.Target = l.lowerExpression(ex.Target)
		ex.Value = l.lowerExpression(ex.Value)
		return ex
	case *ast.ArgumentsCallExpression:
		for i, a := range ex.Arguments {
			ex.Arguments[i] = l.lowerExpression(a)
		}
		return ex
	case *ast.ArrayLiteral:
		for i, el := range ex.Elements {
			ex.Elements[i] = l.lowerExpression(el)
		}
		return ex
	default:
		return e
	}
}

// lowerThis rewrites `this` to the synthetic parameter identifier
// bound by lowerMethod/lowerConstructor. Outside a class context it is
// a structural error.
func (l *Lowerer) lowerThis(t *ast.ThisExpression) ast.Expression {
	if l.ctx.class == nil {
		l.errorf(errors.Structural, t, "`this` used outside a class context")
		return ast.NewIdentifier(t.SpanV, "this")
	}
	ident := ast.NewIdentifier(t.SpanV, "this")
	ident.Type = t.Type
	return ident
}

// lowerNew rewrites `new C(args)` to `C#constructor(args)`.
func (l *Lowerer) lowerNew(n *ast.NewExpression) ast.Expression {
	args := make([]ast.Expression, len(n.Arguments))
	for i, a := range n.Arguments {
		args[i] = l.lowerExpression(a)
	}
	return &ast.ArgumentsCallExpression{
		SpanV:     n.SpanV,
		Callee:    ast.NewIdentifier(span.Synth(), fmt.Sprintf("%s#constructor", n.ClassName.Value)),
		Arguments: args,
		Type:      n.Type,
	}
}

// lowerMemberDot rewrites `obj.field` to an indexed load against the
// field's BindingsTable byte offset: MemberIndexExpression{Object: obj',
// Index: offset, FieldAccess: true}. FieldAccess tells the code generator
// to compile it as a direct i32 load/store at Object+Index, whereas an
// original array subscript (FieldAccess false) goes through the
// `arrayAt` runtime builtin.
func (l *Lowerer) lowerMemberDot(m *ast.MemberDotExpression) ast.Expression {
	obj := l.lowerExpression(m.Object)
	className := l.classNameOf(obj)
	if className == "" {
		l.errorf(errors.Structural, m, "cannot resolve class of member access %q", m.Property.Value)
		return obj
	}
	binding, ok := l.bindings.Lookup(className)
	if !ok {
		l.errorf(errors.Structural, m, "no BindingsTable entry for class %q", className)
		return obj
	}
	field, ok := binding.FieldOffset(m.Property.Value)
	if !ok {
		l.errorf(errors.Structural, m, "class %q has no field %q", className, m.Property.Value)
		return obj
	}
	return &ast.MemberIndexExpression{
		SpanV:  m.SpanV,
		Object: obj,
		Index: &ast.IntegerLiteral{
			SpanV: span.Synth(),
			Value: int64(field.Offset),
			Type:  types.TypeI32,
		},
		Type:        field.Type,
		FieldAccess: true,
	}
}

func (l *Lowerer) classNameOf(e ast.Expression) string {
	t := e.GetType()
	if t == nil || t.Kind != types.ObjectKind {
		return ""
	}
	return t.Name
}

// lowerBinary rewrites `left + right` / `left - right` to `T#add(left,
// right)` / `T#sub(left, right)` whenever the left operand's type is not
// a primitive, where T is that type's String() form (the class name for
// an object, `array<elem>` for an array).
func (l *Lowerer) lowerBinary(b *ast.BinaryExpression) ast.Expression {
	b.Left = l.lowerExpression(b.Left)
	b.Right = l.lowerExpression(b.Right)

	if b.Operator != "+" && b.Operator != "-" {
		return b
	}
	t := b.Left.GetType()
	if t == nil || t.IsPrimitive() {
		return b
	}
	methodName := "add"
	if b.Operator == "-" {
		methodName = "sub"
	}
	className := t.String()
	return &ast.ArgumentsCallExpression{
		SpanV:     b.SpanV,
		Callee:    ast.NewIdentifier(span.Synth(), fmt.Sprintf("%s#%s", className, methodName)),
		Arguments: []ast.Expression{b.Left, b.Right},
		Type:      b.Type,
	}
}
