// Package codegen implements the Code Generator: it walks a lowered
// Program and produces an ir.Module — a WASM module skeleton plus, for
// every function, a tree of ir.Instructions. It drives the
// WastSymbolTable's scope stack, pushing one scope per function body
// (nested blocks do not open a scope). Declared types and function
// return types are read from the type tags on the AST itself; the
// SemanticSymbolTable handed to New is stored but not read.
package codegen

import (
	"fmt"

	"github.com/cwbudde/tswasmc/internal/ast"
	"github.com/cwbudde/tswasmc/internal/errors"
	"github.com/cwbudde/tswasmc/internal/ir"
	"github.com/cwbudde/tswasmc/internal/symtable"
	"github.com/cwbudde/tswasmc/internal/types"
)

// objectNewName must match lowering's synthetic allocator call name.
const objectNewName = "objectNew"

// builtinSignatures is the fixed runtime ABI the host must import: every
// generated module that calls one of these gets a matching
// FunctionImport the first time the name is referenced.
var builtinSignatures = map[string]ir.FunctionType{
	"println":   {Params: []ir.Param{{Name: "v", Type: ir.I32}}},
	"arrayNew":  {Params: []ir.Param{{Name: "elem_size", Type: ir.I32}}, Ret: retI32()},
	"arrayPush": {Params: []ir.Param{{Name: "ptr", Type: ir.I32}}, Ret: retI32()},
	"arrayAt":   {Params: []ir.Param{{Name: "ptr", Type: ir.I32}, {Name: "index", Type: ir.I32}}, Ret: retI32()},
	"objectNew": {Params: []ir.Param{{Name: "size", Type: ir.I32}}, Ret: retI32()},
	"i32Load":   {Params: []ir.Param{{Name: "ptr", Type: ir.I32}}, Ret: retI32()},
	"i32Store":  {Params: []ir.Param{{Name: "ptr", Type: ir.I32}, {Name: "val", Type: ir.I32}}},
}

func retI32() *ir.ValueType {
	vt := ir.I32
	return &vt
}

// Generator holds the module under construction and the scope stack
// that tracks where in it the walk currently is.
type Generator struct {
	module   *ir.Module
	wast     *symtable.WastSymbolTable
	semantic *symtable.SemanticSymbolTable

	frames       [][]ir.Instruction // instruction-scope stack
	labelCounter int
	tempCounter  int
	imported     map[string]bool

	errs []*errors.CompilerError
}

// New creates a Generator. semantic may be nil. The generator keeps it
// but does not read it: types always come from the type tags already
// attached to each node.
func New(semantic *symtable.SemanticSymbolTable) *Generator {
	return &Generator{
		module:   ir.NewModule(),
		wast:     symtable.NewWastSymbolTable(),
		semantic: semantic,
		imported: make(map[string]bool),
	}
}

// Generate walks prog (already lowered — no ClassDeclaration, this,
// member-dot or new survives) and returns the resulting module.
func Generate(prog *ast.Program, semantic *symtable.SemanticSymbolTable) (*ir.Module, []*errors.CompilerError) {
	g := New(semantic)
	for _, elem := range prog.Elements {
		switch e := elem.(type) {
		case *ast.FunctionDeclaration:
			g.generateFunction(e)
		case *ast.StatementElement:
			// Top-level statements run at wast depth 1: a `let`/`const`
			// there auto-defines a Global rather than a Local.
			g.pushFrame()
			g.visitStatement(e.Statement)
			if leftover := g.popFrame(); len(leftover) != 0 {
				g.errorf(errors.Structural, e, "codegen: top-level statement produced unassigned instructions")
			}
		}
	}
	if g.wast.Depth() != 1 {
		panic(fmt.Sprintf("codegen: scope stack left at depth %d, want 1", g.wast.Depth()))
	}
	return g.module, g.errs
}

func (g *Generator) errorf(kind errors.Kind, n ast.Node, format string, args ...interface{}) {
	g.errs = append(g.errs, errors.New(kind, n.Pos(), format, args...))
}

// ---- Instruction-scope stack --------------------------------------------

func (g *Generator) pushFrame() {
	g.frames = append(g.frames, nil)
}

func (g *Generator) popFrame() []ir.Instruction {
	top := g.frames[len(g.frames)-1]
	g.frames = g.frames[:len(g.frames)-1]
	return top
}

func (g *Generator) emit(instr ir.Instruction) {
	i := len(g.frames) - 1
	g.frames[i] = append(g.frames[i], instr)
}

// nextLabel allocates a fresh while-loop label. It is scoped to loops
// only: the outer function-body Block always carries the literal label
// 0, so this counter never needs to account for it.
func (g *Generator) nextLabel() int {
	g.labelCounter++
	return g.labelCounter
}

// ---- Value-type mapping --------------------------------------------------

// valueType maps a surface type to its WASM representation. F32 maps to
// f32; every other kind (U32, Bool, and object/array pointers such as a
// lowered method's `this` parameter) is carried as i32, as is a nil type.
func valueType(t *types.Type) ir.ValueType {
	if t == nil {
		return ir.I32
	}
	switch t.Kind {
	case types.F32:
		return ir.F32
	default:
		return ir.I32
	}
}

// ---- Functions ------------------------------------------------------------

// generateFunction runs a nine-step process:
// (1) resolve the @wast/@native/@inline annotations, (2) build the
// FunctionType from parameter/return types, (3) intern it, (4) for
// @native functions stop here and record an import, (5) otherwise push a
// function scope, (6) define every parameter, (7) visit the body,
// collecting Local declarations as they're introduced, (8) append a
// synthetic return for non-void functions, (9) pop the scope and push
// the finished Function (and export, if marked).
func (g *Generator) generateFunction(fn *ast.FunctionDeclaration) {
	ft := g.functionType(fn)
	typeIdx := g.module.PushType(ft)

	if _, ok := fn.HasAnnotation(ast.AnnotationNative); ok {
		g.module.PushImport(ir.FunctionImport{Module: "env", Name: fn.Name.Value, TypeIdx: typeIdx})
		return
	}

	g.wast.PushScope()
	for i, p := range fn.Parameters {
		g.wast.DefineParam(p.Name.Value, valueType(p.Type), i)
	}

	var body []ir.Instruction
	if raw, ok := fn.HasAnnotation(ast.AnnotationWast); ok {
		body = []ir.Instruction{&ir.RawWast{Text: raw.Arg}}
	} else {
		g.pushFrame()
		g.visitBlock(fn.Body)
		body = g.popFrame()
	}

	if fn.ReturnType != nil {
		body = append(body, &ir.SynthReturn{})
	}

	locals := g.wast.SymbolsInCurrentScope()
	var declInstrs []ir.Instruction
	for _, sym := range locals {
		if sym.Kind == symtable.KindLocal {
			declInstrs = append(declInstrs, &ir.Local{Name: sym.Name, Type: sym.Type})
		}
	}
	g.wast.PopScope()

	full := append(declInstrs, &ir.Block{Label: 0, Body: body})

	funcIdx := g.module.PushFunction(ir.Function{Name: fn.Name.Value, TypeIdx: typeIdx, Instructions: full})
	if fn.Export {
		g.module.PushExport(ir.FunctionExport{Name: fn.Name.Value, FunctionIdx: funcIdx})
	}
}

func (g *Generator) functionType(fn *ast.FunctionDeclaration) ir.FunctionType {
	params := make([]ir.Param, len(fn.Parameters))
	for i, p := range fn.Parameters {
		params[i] = ir.Param{Name: p.Name.Value, Type: valueType(p.Type)}
	}
	var ret *ir.ValueType
	if fn.ReturnType != nil {
		vt := valueType(fn.ReturnType)
		ret = &vt
	}
	return ir.FunctionType{Params: params, Ret: ret}
}

// ---- Statements -----------------------------------------------------------

func (g *Generator) visitBlock(b *ast.BlockStatement) {
	if b == nil {
		return
	}
	for _, s := range b.Statements {
		g.visitStatement(s)
	}
}

func (g *Generator) visitStatement(s ast.Statement) {
	switch st := s.(type) {
	case *ast.BlockStatement:
		g.visitBlock(st)
	case *ast.EmptyStatement:
		// nothing to emit
	case *ast.IfStatement:
		cond := g.visitExpression(st.Condition)
		g.pushFrame()
		g.visitStatement(st.Consequence)
		thenBody := g.popFrame()
		var elseBody []ir.Instruction
		if st.Alternate != nil {
			g.pushFrame()
			g.visitStatement(st.Alternate)
			elseBody = g.popFrame()
		}
		g.emit(&ir.If{Cond: cond, Then: thenBody, Else: elseBody})
	case *ast.WhileStatement:
		// allocate a label, visit cond once, push an inner scope for the
		// body + BrLoop, then wrap `if (cond) {
		// body; br $loop }` in a single Loop. Re-entering the loop via
		// BrLoop re-executes the same Cond subtree, so the condition is
		// re-evaluated every iteration without needing a second visit.
		label := g.nextLabel()
		g.pushFrame() // outer scope
		cond := g.visitExpression(st.Condition)
		g.pushFrame() // inner scope
		g.visitStatement(st.Body)
		g.emit(&ir.BrLoop{Label: label})
		bodyInstrs := g.popFrame()
		g.emit(&ir.If{Cond: cond, Then: bodyInstrs})
		loopInstrs := g.popFrame()
		g.emit(&ir.Loop{Label: label, Body: loopInstrs})
	case *ast.ReturnStatement:
		var val ir.Instruction
		if st.Argument != nil {
			val = g.visitExpression(st.Argument)
		}
		g.emit(&ir.Return{Value: val})
	case *ast.VariableStatement:
		g.visitVariableStatement(st)
	case *ast.ExpressionStatement:
		g.emit(g.visitExpression(st.Expression))
	default:
		g.errorf(errors.Structural, s, "codegen: unhandled statement %T", s)
	}
}

// visitVariableStatement resolves the target's Global-vs-Local kind
// purely from the wast table's current depth, not from any lexical
// surrounding.
func (g *Generator) visitVariableStatement(st *ast.VariableStatement) {
	vt := valueType(st.Declaration.Type)
	sym := g.wast.DefineLocal(st.Declaration.Value, vt)
	var val ir.Instruction
	if st.Initializer != nil {
		val = g.visitExpression(st.Initializer)
	}
	if sym.Kind == symtable.KindGlobal {
		g.module.PushGlobal(ir.GlobalType{Name: st.Declaration.Value, Type: ir.I32, Mutable: true, Init: val})
		return
	}
	if val != nil {
		g.emit(&ir.LocalSet{Name: st.Declaration.Value, Value: val})
	}
}

// ---- Expressions ----------------------------------------------------------

func (g *Generator) visitExpression(e ast.Expression) ir.Instruction {
	switch ex := e.(type) {
	case *ast.Identifier:
		return g.visitIdentifier(ex)
	case *ast.IntegerLiteral:
		return &ir.I32Const{Value: int32(ex.Value)}
	case *ast.FloatLiteral:
		return &ir.F32Const{Value: float32(ex.Value)}
	case *ast.BooleanLiteral:
		if ex.Value {
			return &ir.I32Const{Value: 1}
		}
		return &ir.I32Const{Value: 0}
	case *ast.ArrayLiteral:
		return g.visitArrayLiteral(ex)
	case *ast.StringLiteral:
		g.errorf(errors.Unsupported, ex, "string literals are not implemented at this layer")
		return &ir.I32Const{Value: 0}
	case *ast.BinaryExpression:
		return g.visitBinary(ex)
	case *ast.UnaryExpression:
		return g.visitUnary(ex)
	case *ast.AssignmentExpression:
		return g.visitAssignment(ex)
	case *ast.MemberIndexExpression:
		return g.visitMemberIndex(ex)
	case *ast.ArgumentsCallExpression:
		return g.visitCall(ex)
	default:
		g.errorf(errors.Structural, e, "codegen: unhandled expression %T", e)
		return &ir.I32Const{Value: 0}
	}
}

// visitArrayLiteral: a fresh I32 local holds the pointer arrayNew
// returns, each element is pushed via arrayPush+store, and the
// sequence's value is the pointer itself — all wrapped in a Complex so
// it can sit in expression position.
func (g *Generator) visitArrayLiteral(a *ast.ArrayLiteral) ir.Instruction {
	elemType := ir.I32
	if len(a.Elements) > 0 {
		elemType = valueType(a.Elements[0].GetType())
	}
	g.ensureBuiltinImport("arrayNew")
	g.ensureBuiltinImport("arrayPush")

	ptr := g.nextTempLocal()
	g.wast.DefineLocal(ptr, ir.I32)

	items := []ir.Instruction{
		&ir.LocalSet{
			Name: ptr,
			Value: &ir.Call{
				Name: "arrayNew",
				Args: []ir.Instruction{&ir.I32Const{Value: int32(elemByteSize(elemType))}},
			},
		},
	}
	for _, el := range a.Elements {
		val := g.visitExpression(el)
		items = append(items, &ir.I32Store{
			Addr: &ir.Call{Name: "arrayPush", Args: []ir.Instruction{&ir.LocalGet{Name: ptr}}},
			Val:  val,
		})
	}
	items = append(items, &ir.LocalGet{Name: ptr})
	return &ir.Complex{Items: items}
}

func elemByteSize(ir.ValueType) int {
	return 4 // both I32 and F32 are 4-byte WASM scalars
}

func (g *Generator) nextTempLocal() string {
	name := fmt.Sprintf("$arr%d", g.tempCounter)
	g.tempCounter++
	return name
}

func (g *Generator) visitIdentifier(id *ast.Identifier) ir.Instruction {
	sym, ok := g.wast.Lookup(id.Value)
	if !ok {
		g.errorf(errors.Structural, id, "undefined identifier %q", id.Value)
		return &ir.I32Const{Value: 0}
	}
	if sym.Kind == symtable.KindGlobal {
		return &ir.GlobalGet{Name: id.Value}
	}
	return &ir.LocalGet{Name: id.Value}
}

func (g *Generator) visitAssignment(a *ast.AssignmentExpression) ir.Instruction {
	value := g.visitExpression(a.Value)
	switch target := a.Target.(type) {
	case *ast.Identifier:
		sym, ok := g.wast.Lookup(target.Value)
		if !ok {
			g.errorf(errors.Structural, target, "undefined identifier %q", target.Value)
			return value
		}
		if sym.Kind == symtable.KindGlobal {
			return &ir.GlobalSet{Name: target.Value, Value: value}
		}
		return &ir.LocalSet{Name: target.Value, Value: value}
	case *ast.MemberIndexExpression:
		return &ir.I32Store{Addr: g.memberStoreAddr(target), Val: value}
	default:
		g.errorf(errors.Structural, a, "codegen: unsupported assignment target %T", a.Target)
		return value
	}
}

// memberAddr computes a desugared field's byte address: this/obj plus
// the BindingsTable-derived constant offset. Only meaningful when
// m.FieldAccess is true.
func (g *Generator) memberAddr(m *ast.MemberIndexExpression) ir.Instruction {
	obj := g.visitExpression(m.Object)
	idx := g.visitExpression(m.Index)
	return ir.I32Add(obj, idx)
}

// visitMemberIndex covers the two Member-index cases: a field load is
// direct pointer arithmetic (`I32Load(obj+offset)`); a genuine array
// index goes through the `arrayAt` runtime builtin
// (`Call("arrayAt",[a,i])`).
func (g *Generator) visitMemberIndex(m *ast.MemberIndexExpression) ir.Instruction {
	if m.FieldAccess {
		return &ir.I32Load{Addr: g.memberAddr(m)}
	}
	g.ensureBuiltinImport("arrayAt")
	obj := g.visitExpression(m.Object)
	idx := g.visitExpression(m.Index)
	return &ir.Call{Name: "arrayAt", Args: []ir.Instruction{obj, idx}}
}

// memberStoreAddr computes the address an assignment's I32Store targets:
// a field write stores at the static offset directly; an array-index
// write stores at whatever `arrayAt` returns for that slot.
func (g *Generator) memberStoreAddr(m *ast.MemberIndexExpression) ir.Instruction {
	if m.FieldAccess {
		return g.memberAddr(m)
	}
	return g.visitMemberIndex(m)
}

func (g *Generator) visitCall(c *ast.ArgumentsCallExpression) ir.Instruction {
	g.ensureBuiltinImport(c.Callee.Value)
	args := make([]ir.Instruction, len(c.Arguments))
	for i, a := range c.Arguments {
		args[i] = g.visitExpression(a)
	}
	return &ir.Call{Name: c.Callee.Value, Args: args}
}

// ensureBuiltinImport registers a FunctionImport for one of the fixed
// runtime builtins the first time it's called by name. User functions
// never collide with these: lowering only ever emits calls to
// this fixed name set for `objectNew`, `arrayNew`, `arrayPush`,
// `arrayAt`, and codegen never emits calls to a name it defined itself
// without the caller having written it, so a plain map lookup suffices.
func (g *Generator) ensureBuiltinImport(name string) {
	if g.imported[name] {
		return
	}
	sig, ok := builtinSignatures[name]
	if !ok {
		return
	}
	typeIdx := g.module.PushType(sig)
	g.module.PushImport(ir.FunctionImport{Module: "env", Name: name, TypeIdx: typeIdx})
	g.imported[name] = true
}

// visitUnary desugars `-x` to `0 - x` for i32 and rejects everything
// else there isn't a direct instruction for.
func (g *Generator) visitUnary(u *ast.UnaryExpression) ir.Instruction {
	arg := g.visitExpression(u.Argument)
	kind := kindOf(u.Argument.GetType())
	switch u.Operator {
	case "-":
		switch kind {
		case types.I32, types.U32:
			return ir.I32Sub(&ir.I32Const{Value: 0}, arg)
		default:
			g.errorf(errors.Unsupported, u, "unary - on %s is not implemented at this layer", kind)
			return arg
		}
	case "!":
		return ir.I32Xor(arg, &ir.I32Const{Value: -1})
	case "+":
		return arg
	default:
		g.errorf(errors.Unsupported, u, "unary operator %q is not implemented at this layer", u.Operator)
		return arg
	}
}

func kindOf(t *types.Type) types.Kind {
	if t == nil {
		return types.Unknown
	}
	return t.Kind
}

// visitBinary dispatches on the left operand's primitive kind (post
// lowering, non-primitive `+`/`-` have already become T#add/T#sub calls,
// so only I32/U32/F32/Bool operands ever reach here).
func (g *Generator) visitBinary(b *ast.BinaryExpression) ir.Instruction {
	left := g.visitExpression(b.Left)
	right := g.visitExpression(b.Right)
	kind := kindOf(b.Left.GetType())

	switch kind {
	case types.I32:
		if code, ok := i32OpCode(b.Operator); ok {
			return &ir.BinOp{Code: code, Left: left, Right: right}
		}
		g.errorf(errors.Unsupported, b, "operator %q is not implemented at this layer", b.Operator)
		return left
	case types.F32:
		if b.Operator == "+" {
			return ir.F32Add(left, right)
		}
		g.errorf(errors.Unsupported, b, "f32 operator %q is not implemented at this layer (only + is)", b.Operator)
		return left
	default:
		g.errorf(errors.Unsupported, b, "binary operator on %s is not implemented at this layer", kind)
		return left
	}
}

func i32OpCode(op string) (ir.BinOpCode, bool) {
	switch op {
	case "+":
		return ir.OpI32Add, true
	case "-":
		return ir.OpI32Sub, true
	case "*":
		return ir.OpI32Mul, true
	case "/":
		return ir.OpI32Div, true
	case "%":
		return ir.OpI32Rem, true
	case "&":
		return ir.OpI32And, true
	case "|":
		return ir.OpI32Or, true
	case "^":
		return ir.OpI32Xor, true
	case "==":
		return ir.OpI32Eq, true
	case "!=":
		return ir.OpI32Neq, true
	case ">":
		return ir.OpI32Gt, true
	case ">=":
		return ir.OpI32Ge, true
	case "<":
		return ir.OpI32Lt, true
	case "<=":
		return ir.OpI32Le, true
	default:
		return 0, false
	}
}
