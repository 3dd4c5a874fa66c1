// Package astio ingests the JSON-serialized, type-annotated AST the
// (out-of-core-scope) semantic analyzer hands the compiler core. It
// uses gjson to sniff each node's tagged-union "kind" discriminant
// without fully unmarshaling unrelated node shapes, and sjson to patch
// the `"synthetic": true` marker onto compiler-invented nodes when a
// tree is re-serialized (MarkSynthetic, EncodeProgram).
package astio

import (
	"fmt"

	"github.com/cwbudde/tswasmc/internal/ast"
	"github.com/cwbudde/tswasmc/internal/span"
	"github.com/cwbudde/tswasmc/internal/types"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// ParseProgram decodes a JSON document shaped like:
//
//	{"kind": "Program", "elements": [ ... ]}
//
// where every node carries a "kind" tag. Only the node shapes the core
// actually consumes are recognized; anything else is a structural error.
func ParseProgram(file *span.File, data []byte) (*ast.Program, error) {
	root := gjson.ParseBytes(data)
	if !root.Get("kind").Exists() || root.Get("kind").String() != "Program" {
		return nil, fmt.Errorf("astio: root node is not a Program")
	}
	var elements []ast.SourceElement
	for _, el := range root.Get("elements").Array() {
		se, err := parseSourceElement(file, el)
		if err != nil {
			return nil, err
		}
		elements = append(elements, se)
	}
	return &ast.Program{Elements: elements}, nil
}

func parseSpan(file *span.File, v gjson.Result) span.Span {
	if v.Get("synthetic").Bool() {
		return span.SynthFrom(span.Span{File: file})
	}
	return span.Span{
		File:  file,
		Start: int(v.Get("start").Int()),
		End:   int(v.Get("end").Int()),
	}
}

func parseType(v gjson.Result) *types.Type {
	if !v.Exists() {
		return types.TypeUnknown
	}
	switch v.Get("kind").String() {
	case "i32":
		return types.TypeI32
	case "u32":
		return types.TypeU32
	case "f32":
		return types.TypeF32
	case "bool":
		return types.TypeBool
	case "string":
		return types.TypeString
	case "void":
		return types.TypeVoid
	case "array":
		return types.Array(parseType(v.Get("elem")))
	case "object":
		return types.Object(v.Get("name").String())
	default:
		return types.TypeUnknown
	}
}

func parseSourceElement(file *span.File, v gjson.Result) (ast.SourceElement, error) {
	switch v.Get("kind").String() {
	case "ClassDeclaration":
		return parseClass(file, v)
	case "FunctionDeclaration":
		return parseFunction(file, v)
	default:
		stmt, err := parseStatement(file, v)
		if err != nil {
			return nil, err
		}
		return &ast.StatementElement{Statement: stmt}, nil
	}
}

func parseParameters(file *span.File, v gjson.Result) []*ast.Parameter {
	var out []*ast.Parameter
	for _, p := range v.Array() {
		out = append(out, &ast.Parameter{
			Name: ast.NewIdentifier(parseSpan(file, p.Get("name")), p.Get("name.value").String()),
			Type: parseType(p.Get("type")),
		})
	}
	return out
}

func parseFunction(file *span.File, v gjson.Result) (*ast.FunctionDeclaration, error) {
	body, err := parseBlock(file, v.Get("body"))
	if err != nil {
		return nil, err
	}
	return &ast.FunctionDeclaration{
		SpanV:       parseSpan(file, v),
		Name:        ast.NewIdentifier(parseSpan(file, v.Get("name")), v.Get("name.value").String()),
		Parameters:  parseParameters(file, v.Get("parameters")),
		ReturnType:  optionalType(v.Get("returnType")),
		Body:        body,
		Annotations: parseAnnotations(v.Get("annotations")),
		Export:      v.Get("export").Bool(),
	}, nil
}

// parseAnnotations decodes the `@wast(...)`/`@native(...)`/`@inline`
// decorations. An annotation name the core doesn't recognize still
// round-trips as AnnotationUnknown; unknown annotations are ignored
// rather than rejected.
func parseAnnotations(v gjson.Result) []ast.Annotation {
	var out []ast.Annotation
	for _, a := range v.Array() {
		name := a.Get("name").String()
		out = append(out, ast.Annotation{Kind: annotationKindOf(name), Name: name, Arg: a.Get("arg").String()})
	}
	return out
}

func annotationKindOf(name string) ast.AnnotationKind {
	switch name {
	case "wast":
		return ast.AnnotationWast
	case "native":
		return ast.AnnotationNative
	case "inline":
		return ast.AnnotationInline
	default:
		return ast.AnnotationUnknown
	}
}

func optionalType(v gjson.Result) *types.Type {
	if !v.Exists() {
		return nil
	}
	return parseType(v)
}

func parseClass(file *span.File, v gjson.Result) (*ast.ClassDeclaration, error) {
	var fields []*ast.FieldDeclaration
	for _, f := range v.Get("fields").Array() {
		fields = append(fields, &ast.FieldDeclaration{
			Name: ast.NewIdentifier(parseSpan(file, f.Get("name")), f.Get("name.value").String()),
			Type: parseType(f.Get("type")),
		})
	}
	var ctor *ast.ConstructorDeclaration
	if c := v.Get("constructor"); c.Exists() {
		body, err := parseBlock(file, c.Get("body"))
		if err != nil {
			return nil, err
		}
		ctor = &ast.ConstructorDeclaration{
			SpanV:      parseSpan(file, c),
			Parameters: parseParameters(file, c.Get("parameters")),
			Body:       body,
		}
	}
	var methods []*ast.MethodDeclaration
	for _, m := range v.Get("methods").Array() {
		body, err := parseBlock(file, m.Get("body"))
		if err != nil {
			return nil, err
		}
		methods = append(methods, &ast.MethodDeclaration{
			SpanV:      parseSpan(file, m),
			Name:       ast.NewIdentifier(parseSpan(file, m.Get("name")), m.Get("name.value").String()),
			Parameters: parseParameters(file, m.Get("parameters")),
			ReturnType: optionalType(m.Get("returnType")),
			Body:       body,
		})
	}
	return &ast.ClassDeclaration{
		SpanV:       parseSpan(file, v),
		Name:        ast.NewIdentifier(parseSpan(file, v.Get("name")), v.Get("name.value").String()),
		Fields:      fields,
		Constructor: ctor,
		Methods:     methods,
	}, nil
}

func parseBlock(file *span.File, v gjson.Result) (*ast.BlockStatement, error) {
	var stmts []ast.Statement
	for _, s := range v.Get("statements").Array() {
		stmt, err := parseStatement(file, s)
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	return &ast.BlockStatement{SpanV: parseSpan(file, v), Statements: stmts}, nil
}

func parseStatement(file *span.File, v gjson.Result) (ast.Statement, error) {
	sp := parseSpan(file, v)
	switch v.Get("kind").String() {
	case "BlockStatement":
		return parseBlock(file, v)
	case "EmptyStatement":
		return &ast.EmptyStatement{SpanV: sp}, nil
	case "IfStatement":
		cond, err := parseExpression(file, v.Get("condition"))
		if err != nil {
			return nil, err
		}
		cons, err := parseStatement(file, v.Get("consequence"))
		if err != nil {
			return nil, err
		}
		var alt ast.Statement
		if a := v.Get("alternate"); a.Exists() {
			alt, err = parseStatement(file, a)
			if err != nil {
				return nil, err
			}
		}
		return &ast.IfStatement{SpanV: sp, Condition: cond, Consequence: cons, Alternate: alt}, nil
	case "WhileStatement":
		cond, err := parseExpression(file, v.Get("condition"))
		if err != nil {
			return nil, err
		}
		body, err := parseStatement(file, v.Get("body"))
		if err != nil {
			return nil, err
		}
		return &ast.WhileStatement{SpanV: sp, Condition: cond, Body: body}, nil
	case "ReturnStatement":
		var arg ast.Expression
		if a := v.Get("argument"); a.Exists() {
			var err error
			arg, err = parseExpression(file, a)
			if err != nil {
				return nil, err
			}
		}
		return &ast.ReturnStatement{SpanV: sp, Argument: arg}, nil
	case "VariableStatement":
		kind := ast.Let
		if v.Get("varKind").String() == "const" {
			kind = ast.Const
		}
		var init ast.Expression
		if i := v.Get("initializer"); i.Exists() {
			var err error
			init, err = parseExpression(file, i)
			if err != nil {
				return nil, err
			}
		}
		return &ast.VariableStatement{
			SpanV:       sp,
			Kind:        kind,
			Declaration: ast.NewIdentifier(parseSpan(file, v.Get("declaration")), v.Get("declaration.value").String()),
			Initializer: init,
		}, nil
	case "ExpressionStatement":
		expr, err := parseExpression(file, v.Get("expression"))
		if err != nil {
			return nil, err
		}
		return &ast.ExpressionStatement{SpanV: sp, Expression: expr}, nil
	default:
		return nil, fmt.Errorf("astio: unknown statement kind %q", v.Get("kind").String())
	}
}

func parseExpression(file *span.File, v gjson.Result) (ast.Expression, error) {
	sp := parseSpan(file, v)
	ty := parseType(v.Get("type"))
	switch v.Get("kind").String() {
	case "Identifier":
		id := ast.NewIdentifier(sp, v.Get("value").String())
		id.Type = ty
		return id, nil
	case "IntegerLiteral":
		return &ast.IntegerLiteral{SpanV: sp, Value: v.Get("value").Int(), Type: ty}, nil
	case "FloatLiteral":
		return &ast.FloatLiteral{SpanV: sp, Value: v.Get("value").Float(), Type: ty}, nil
	case "StringLiteral":
		return &ast.StringLiteral{SpanV: sp, Value: v.Get("value").String(), Type: ty}, nil
	case "BooleanLiteral":
		return &ast.BooleanLiteral{SpanV: sp, Value: v.Get("value").Bool(), Type: ty}, nil
	case "ArrayLiteral":
		var elems []ast.Expression
		for _, e := range v.Get("elements").Array() {
			el, err := parseExpression(file, e)
			if err != nil {
				return nil, err
			}
			elems = append(elems, el)
		}
		return &ast.ArrayLiteral{SpanV: sp, Elements: elems, Type: ty}, nil
	case "ThisExpression":
		return &ast.ThisExpression{SpanV: sp, Type: ty}, nil
	case "BinaryExpression":
		left, err := parseExpression(file, v.Get("left"))
		if err != nil {
			return nil, err
		}
		right, err := parseExpression(file, v.Get("right"))
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpression{
			SpanV: sp, Left: left, Operator: v.Get("operator").String(), Right: right,
			Class: precedenceClassOf(v.Get("operator").String()), Type: ty,
		}, nil
	case "UnaryExpression":
		arg, err := parseExpression(file, v.Get("argument"))
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpression{SpanV: sp, Operator: v.Get("operator").String(), Argument: arg, Type: ty}, nil
	case "AssignmentExpression":
		target, err := parseExpression(file, v.Get("target"))
		if err != nil {
			return nil, err
		}
		value, err := parseExpression(file, v.Get("value"))
		if err != nil {
			return nil, err
		}
		return &ast.AssignmentExpression{SpanV: sp, Target: target, Value: value, Type: ty}, nil
	case "MemberIndexExpression":
		obj, err := parseExpression(file, v.Get("object"))
		if err != nil {
			return nil, err
		}
		idx, err := parseExpression(file, v.Get("index"))
		if err != nil {
			return nil, err
		}
		return &ast.MemberIndexExpression{SpanV: sp, Object: obj, Index: idx, Type: ty, FieldAccess: v.Get("fieldAccess").Bool()}, nil
	case "MemberDotExpression":
		obj, err := parseExpression(file, v.Get("object"))
		if err != nil {
			return nil, err
		}
		return &ast.MemberDotExpression{
			SpanV: sp, Object: obj,
			Property: ast.NewIdentifier(parseSpan(file, v.Get("property")), v.Get("property.value").String()),
			Type:     ty,
		}, nil
	case "ArgumentsCallExpression":
		var args []ast.Expression
		for _, a := range v.Get("arguments").Array() {
			arg, err := parseExpression(file, a)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return &ast.ArgumentsCallExpression{
			SpanV:     sp,
			Callee:    ast.NewIdentifier(parseSpan(file, v.Get("callee")), v.Get("callee.value").String()),
			Arguments: args,
			Type:      ty,
		}, nil
	case "NewExpression":
		var args []ast.Expression
		for _, a := range v.Get("arguments").Array() {
			arg, err := parseExpression(file, a)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return &ast.NewExpression{
			SpanV:     sp,
			ClassName: ast.NewIdentifier(parseSpan(file, v.Get("className")), v.Get("className.value").String()),
			Arguments: args,
			Type:      ty,
		}, nil
	default:
		return nil, fmt.Errorf("astio: unknown expression kind %q", v.Get("kind").String())
	}
}

func precedenceClassOf(op string) ast.PrecedenceClass {
	switch op {
	case "*", "/", "%":
		return ast.Multiplicative
	case "&", "|", "^":
		return ast.Bitwise
	case "==", "!=":
		return ast.Equality
	case "<", "<=", ">", ">=":
		return ast.Relational
	default:
		return ast.Additive
	}
}

// ParseBindingsTable decodes the semantic analyzer's class layout table,
// consumed from the parser/semantic analyzer and shaped like:
//
//	{"ClassName": {"fields": [{"name":"len","type":{"kind":"i32"}}, ...],
//	               "methods": ["add", "sub"]}}
func ParseBindingsTable(data []byte) (*ast.BindingsTable, error) {
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("astio: bindings table root is not an object")
	}
	table := ast.NewBindingsTable()
	root.ForEach(func(key, value gjson.Result) bool {
		var fields []ast.FieldBinding
		for _, f := range value.Get("fields").Array() {
			fields = append(fields, ast.FieldBinding{
				Name: f.Get("name").String(),
				Type: parseType(f.Get("type")),
			})
		}
		methods := make(map[string]bool)
		for _, m := range value.Get("methods").Array() {
			methods[m.String()] = true
		}
		table.Define(key.String(), fields, methods)
		return true
	})
	return table, nil
}

// MarkSynthetic patches a JSON-encoded node so its "synthetic" field is
// true, for tooling that re-serializes a lowered AST (e.g. a
// diagnostics viewer) and needs to flag compiler-invented nodes without
// re-encoding the whole document from scratch. The field sits directly
// on the node object, the same flat shape parseSpan reads back.
func MarkSynthetic(nodeJSON []byte) ([]byte, error) {
	return sjson.SetBytes(nodeJSON, "synthetic", true)
}
