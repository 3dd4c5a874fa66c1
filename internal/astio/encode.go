package astio

import (
	"fmt"

	"github.com/cwbudde/tswasmc/internal/ast"
	"github.com/cwbudde/tswasmc/internal/types"
	"github.com/tidwall/sjson"
)

// EncodeProgram renders prog back to the same tagged-union JSON shape
// ParseProgram reads, for tooling that needs to inspect a pass's output
// (the `dump-lowered-ast` subcommand). Rather than building each node
// with encoding/json struct tags, it assembles the document the same
// peek-then-patch way MarkSynthetic does: start from a bare `{"kind":...}`
// skeleton and set one path at a time with sjson, so a synthetic span
// contributes exactly one extra `synthetic` patch instead of a parallel
// struct field.
func EncodeProgram(prog *ast.Program) ([]byte, error) {
	doc := []byte(`{"kind":"Program","elements":[]}`)
	for i, el := range prog.Elements {
		enc, err := encodeSourceElement(el)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetRawBytes(doc, fmt.Sprintf("elements.%d", i), enc)
		if err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func encodeSourceElement(el ast.SourceElement) ([]byte, error) {
	switch e := el.(type) {
	case *ast.FunctionDeclaration:
		return encodeFunction(e)
	case *ast.StatementElement:
		return encodeStatement(e.Statement)
	default:
		return nil, fmt.Errorf("astio: cannot encode source element %T", el)
	}
}

// withSpan patches a node's span fields directly onto doc's root, the
// same flat shape parseSpan reads back ("start"/"end"/"synthetic" on the
// node object itself, not nested under a "span" key).
func withSpan(doc []byte, n ast.Node) ([]byte, error) {
	sp := n.Pos()
	var err error
	if sp.Synthetic {
		doc, err = sjson.SetBytes(doc, "synthetic", true)
	} else {
		doc, err = sjson.SetBytes(doc, "start", sp.Start)
		if err == nil {
			doc, err = sjson.SetBytes(doc, "end", sp.End)
		}
	}
	return doc, err
}

func encodeFunction(f *ast.FunctionDeclaration) ([]byte, error) {
	doc := []byte(`{"kind":"FunctionDeclaration"}`)
	doc, err := withSpan(doc, f)
	if err != nil {
		return nil, err
	}
	doc, err = sjson.SetBytes(doc, "name.value", f.Name.Value)
	if err != nil {
		return nil, err
	}
	doc, err = sjson.SetBytes(doc, "export", f.Export)
	if err != nil {
		return nil, err
	}
	for i, p := range f.Parameters {
		doc, err = sjson.SetBytes(doc, fmt.Sprintf("parameters.%d.name.value", i), p.Name.Value)
		if err != nil {
			return nil, err
		}
		typ, err := encodeType(p.Type)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetRawBytes(doc, fmt.Sprintf("parameters.%d.type", i), typ)
		if err != nil {
			return nil, err
		}
	}
	if f.ReturnType != nil {
		typ, err := encodeType(f.ReturnType)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetRawBytes(doc, "returnType", typ)
		if err != nil {
			return nil, err
		}
	}
	for i, a := range f.Annotations {
		doc, err = sjson.SetBytes(doc, fmt.Sprintf("annotations.%d.name", i), a.Name)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetBytes(doc, fmt.Sprintf("annotations.%d.arg", i), a.Arg)
		if err != nil {
			return nil, err
		}
	}
	body, err := encodeStatement(f.Body)
	if err != nil {
		return nil, err
	}
	doc, err = sjson.SetRawBytes(doc, "body", body)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// encodeType mirrors parseType's "kind" vocabulary, recursing through
// array element types and carrying an object type's class name.
func encodeType(t *types.Type) ([]byte, error) {
	if t == nil {
		return []byte(`{"kind":"void"}`), nil
	}
	doc := []byte(`{}`)
	doc, err := sjson.SetBytes(doc, "kind", t.Kind.String())
	if err != nil {
		return nil, err
	}
	switch t.Kind {
	case types.ArrayKind:
		elem, err := encodeType(t.Elem)
		if err != nil {
			return nil, err
		}
		return sjson.SetRawBytes(doc, "elem", elem)
	case types.ObjectKind:
		return sjson.SetBytes(doc, "name", t.Name)
	default:
		return doc, nil
	}
}

func encodeStatement(s ast.Statement) ([]byte, error) {
	if s == nil {
		return []byte(`null`), nil
	}
	switch st := s.(type) {
	case *ast.BlockStatement:
		doc := []byte(`{"kind":"BlockStatement","statements":[]}`)
		doc, err := withSpan(doc, st)
		if err != nil {
			return nil, err
		}
		for i, inner := range st.Statements {
			enc, err := encodeStatement(inner)
			if err != nil {
				return nil, err
			}
			doc, err = sjson.SetRawBytes(doc, fmt.Sprintf("statements.%d", i), enc)
			if err != nil {
				return nil, err
			}
		}
		return doc, nil
	case *ast.EmptyStatement:
		doc := []byte(`{"kind":"EmptyStatement"}`)
		return withSpan(doc, st)
	case *ast.IfStatement:
		doc := []byte(`{"kind":"IfStatement"}`)
		doc, err := withSpan(doc, st)
		if err != nil {
			return nil, err
		}
		cond, err := encodeExpression(st.Condition)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetRawBytes(doc, "condition", cond)
		if err != nil {
			return nil, err
		}
		cons, err := encodeStatement(st.Consequence)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetRawBytes(doc, "consequence", cons)
		if err != nil {
			return nil, err
		}
		if st.Alternate != nil {
			alt, err := encodeStatement(st.Alternate)
			if err != nil {
				return nil, err
			}
			doc, err = sjson.SetRawBytes(doc, "alternate", alt)
			if err != nil {
				return nil, err
			}
		}
		return doc, nil
	case *ast.WhileStatement:
		doc := []byte(`{"kind":"WhileStatement"}`)
		doc, err := withSpan(doc, st)
		if err != nil {
			return nil, err
		}
		cond, err := encodeExpression(st.Condition)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetRawBytes(doc, "condition", cond)
		if err != nil {
			return nil, err
		}
		body, err := encodeStatement(st.Body)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetRawBytes(doc, "body", body)
		if err != nil {
			return nil, err
		}
		return doc, nil
	case *ast.ReturnStatement:
		doc := []byte(`{"kind":"ReturnStatement"}`)
		doc, err := withSpan(doc, st)
		if err != nil {
			return nil, err
		}
		if st.Argument != nil {
			arg, err := encodeExpression(st.Argument)
			if err != nil {
				return nil, err
			}
			doc, err = sjson.SetRawBytes(doc, "argument", arg)
			if err != nil {
				return nil, err
			}
		}
		return doc, nil
	case *ast.VariableStatement:
		doc := []byte(`{"kind":"VariableStatement"}`)
		doc, err := withSpan(doc, st)
		if err != nil {
			return nil, err
		}
		kind := "let"
		if st.Kind == ast.Const {
			kind = "const"
		}
		doc, err = sjson.SetBytes(doc, "varKind", kind)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetBytes(doc, "declaration.value", st.Declaration.Value)
		if err != nil {
			return nil, err
		}
		if st.Initializer != nil {
			init, err := encodeExpression(st.Initializer)
			if err != nil {
				return nil, err
			}
			doc, err = sjson.SetRawBytes(doc, "initializer", init)
			if err != nil {
				return nil, err
			}
		}
		return doc, nil
	case *ast.ExpressionStatement:
		doc := []byte(`{"kind":"ExpressionStatement"}`)
		doc, err := withSpan(doc, st)
		if err != nil {
			return nil, err
		}
		expr, err := encodeExpression(st.Expression)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetRawBytes(doc, "expression", expr)
		if err != nil {
			return nil, err
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("astio: cannot encode statement %T", s)
	}
}

// encodeExpression renders e and, when its type tag isn't Unknown,
// attaches it under "type" the same shape parseType reads back.
func encodeExpression(e ast.Expression) ([]byte, error) {
	doc, err := encodeExpressionInner(e)
	if err != nil || e == nil {
		return doc, err
	}
	t := e.GetType()
	if t == nil || t.Kind == types.Unknown {
		return doc, nil
	}
	typ, err := encodeType(t)
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(doc, "type", typ)
}

func encodeExpressionInner(e ast.Expression) ([]byte, error) {
	if e == nil {
		return []byte(`null`), nil
	}
	switch ex := e.(type) {
	case *ast.Identifier:
		doc := []byte(`{"kind":"Identifier"}`)
		doc, err := withSpan(doc, ex)
		if err != nil {
			return nil, err
		}
		return sjson.SetBytes(doc, "value", ex.Value)
	case *ast.IntegerLiteral:
		doc := []byte(`{"kind":"IntegerLiteral"}`)
		doc, err := withSpan(doc, ex)
		if err != nil {
			return nil, err
		}
		return sjson.SetBytes(doc, "value", ex.Value)
	case *ast.FloatLiteral:
		doc := []byte(`{"kind":"FloatLiteral"}`)
		doc, err := withSpan(doc, ex)
		if err != nil {
			return nil, err
		}
		return sjson.SetBytes(doc, "value", ex.Value)
	case *ast.StringLiteral:
		doc := []byte(`{"kind":"StringLiteral"}`)
		doc, err := withSpan(doc, ex)
		if err != nil {
			return nil, err
		}
		return sjson.SetBytes(doc, "value", ex.Value)
	case *ast.BooleanLiteral:
		doc := []byte(`{"kind":"BooleanLiteral"}`)
		doc, err := withSpan(doc, ex)
		if err != nil {
			return nil, err
		}
		return sjson.SetBytes(doc, "value", ex.Value)
	case *ast.ArrayLiteral:
		doc := []byte(`{"kind":"ArrayLiteral","elements":[]}`)
		doc, err := withSpan(doc, ex)
		if err != nil {
			return nil, err
		}
		for i, el := range ex.Elements {
			enc, err := encodeExpression(el)
			if err != nil {
				return nil, err
			}
			doc, err = sjson.SetRawBytes(doc, fmt.Sprintf("elements.%d", i), enc)
			if err != nil {
				return nil, err
			}
		}
		return doc, nil
	case *ast.BinaryExpression:
		doc := []byte(`{"kind":"BinaryExpression"}`)
		doc, err := withSpan(doc, ex)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetBytes(doc, "operator", ex.Operator)
		if err != nil {
			return nil, err
		}
		left, err := encodeExpression(ex.Left)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetRawBytes(doc, "left", left)
		if err != nil {
			return nil, err
		}
		right, err := encodeExpression(ex.Right)
		if err != nil {
			return nil, err
		}
		return sjson.SetRawBytes(doc, "right", right)
	case *ast.UnaryExpression:
		doc := []byte(`{"kind":"UnaryExpression"}`)
		doc, err := withSpan(doc, ex)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetBytes(doc, "operator", ex.Operator)
		if err != nil {
			return nil, err
		}
		arg, err := encodeExpression(ex.Argument)
		if err != nil {
			return nil, err
		}
		return sjson.SetRawBytes(doc, "argument", arg)
	case *ast.AssignmentExpression:
		doc := []byte(`{"kind":"AssignmentExpression"}`)
		doc, err := withSpan(doc, ex)
		if err != nil {
			return nil, err
		}
		target, err := encodeExpression(ex.Target)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetRawBytes(doc, "target", target)
		if err != nil {
			return nil, err
		}
		value, err := encodeExpression(ex.Value)
		if err != nil {
			return nil, err
		}
		return sjson.SetRawBytes(doc, "value", value)
	case *ast.MemberIndexExpression:
		doc := []byte(`{"kind":"MemberIndexExpression"}`)
		doc, err := withSpan(doc, ex)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetBytes(doc, "fieldAccess", ex.FieldAccess)
		if err != nil {
			return nil, err
		}
		obj, err := encodeExpression(ex.Object)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetRawBytes(doc, "object", obj)
		if err != nil {
			return nil, err
		}
		idx, err := encodeExpression(ex.Index)
		if err != nil {
			return nil, err
		}
		return sjson.SetRawBytes(doc, "index", idx)
	case *ast.ArgumentsCallExpression:
		doc := []byte(`{"kind":"ArgumentsCallExpression","arguments":[]}`)
		doc, err := withSpan(doc, ex)
		if err != nil {
			return nil, err
		}
		doc, err = sjson.SetBytes(doc, "callee.value", ex.Callee.Value)
		if err != nil {
			return nil, err
		}
		for i, a := range ex.Arguments {
			enc, err := encodeExpression(a)
			if err != nil {
				return nil, err
			}
			doc, err = sjson.SetRawBytes(doc, fmt.Sprintf("arguments.%d", i), enc)
			if err != nil {
				return nil, err
			}
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("astio: cannot encode expression %T", e)
	}
}
