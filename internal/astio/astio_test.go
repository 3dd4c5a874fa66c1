package astio

import (
	"testing"

	"github.com/cwbudde/tswasmc/internal/ast"
	"github.com/cwbudde/tswasmc/internal/span"
	"github.com/cwbudde/tswasmc/internal/types"
)

const addProgramJSON = `{
	"kind": "Program",
	"elements": [
		{
			"kind": "FunctionDeclaration",
			"name": {"value": "add"},
			"export": true,
			"parameters": [
				{"name": {"value": "a"}, "type": {"kind": "i32"}},
				{"name": {"value": "b"}, "type": {"kind": "i32"}}
			],
			"returnType": {"kind": "i32"},
			"body": {
				"kind": "BlockStatement",
				"statements": [
					{
						"kind": "ReturnStatement",
						"argument": {
							"kind": "BinaryExpression",
							"operator": "+",
							"type": {"kind": "i32"},
							"left": {"kind": "Identifier", "value": "a", "type": {"kind": "i32"}},
							"right": {"kind": "Identifier", "value": "b", "type": {"kind": "i32"}}
						}
					}
				]
			}
		}
	]
}`

func TestParseProgramDecodesFunctionDeclaration(t *testing.T) {
	file := &span.File{Name: "add.json"}
	prog, err := ParseProgram(file, []byte(addProgramJSON))
	if err != nil {
		t.Fatalf("ParseProgram() error: %v", err)
	}
	if len(prog.Elements) != 1 {
		t.Fatalf("len(Elements) = %d, want 1", len(prog.Elements))
	}
	fn, ok := prog.Elements[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("Elements[0] = %T, want *ast.FunctionDeclaration", prog.Elements[0])
	}
	if fn.Name.Value != "add" || !fn.Export {
		t.Errorf("fn = %+v, want name=add export=true", fn)
	}
	if len(fn.Parameters) != 2 {
		t.Fatalf("len(Parameters) = %d, want 2", len(fn.Parameters))
	}
	if !fn.ReturnType.Equals(types.TypeI32) {
		t.Errorf("ReturnType = %v, want i32", fn.ReturnType)
	}
}

func TestParseProgramRejectsNonProgramRoot(t *testing.T) {
	file := &span.File{Name: "bad.json"}
	_, err := ParseProgram(file, []byte(`{"kind":"FunctionDeclaration"}`))
	if err == nil {
		t.Fatal("expected an error for a non-Program root")
	}
}

// TestVariableStatementVarKindDistinguishesConst guards against a
// previous bug where the outer switch's "kind" field (always
// "VariableStatement") was mistaken for the let/const discriminant;
// varKind is now read instead.
func TestVariableStatementVarKindDistinguishesConst(t *testing.T) {
	file := &span.File{Name: "v.json"}
	doc := `{"kind":"Program","elements":[
		{"kind":"VariableStatement","varKind":"const","declaration":{"value":"x"},
		 "initializer":{"kind":"IntegerLiteral","value":1,"type":{"kind":"i32"}}}
	]}`
	prog, err := ParseProgram(file, []byte(doc))
	if err != nil {
		t.Fatalf("ParseProgram() error: %v", err)
	}
	se, ok := prog.Elements[0].(*ast.StatementElement)
	if !ok {
		t.Fatalf("Elements[0] = %T, want *ast.StatementElement", prog.Elements[0])
	}
	vs, ok := se.Statement.(*ast.VariableStatement)
	if !ok {
		t.Fatalf("Statement = %T, want *ast.VariableStatement", se.Statement)
	}
	if vs.Kind != ast.Const {
		t.Errorf("Kind = %v, want ast.Const", vs.Kind)
	}
}

func TestEncodeProgramRoundTripsThroughParseProgram(t *testing.T) {
	file := &span.File{Name: "add.json"}
	prog, err := ParseProgram(file, []byte(addProgramJSON))
	if err != nil {
		t.Fatalf("ParseProgram() error: %v", err)
	}

	data, err := EncodeProgram(prog)
	if err != nil {
		t.Fatalf("EncodeProgram() error: %v", err)
	}

	reparsed, err := ParseProgram(file, data)
	if err != nil {
		t.Fatalf("ParseProgram(EncodeProgram(prog)) error: %v", err)
	}
	fn, ok := reparsed.Elements[0].(*ast.FunctionDeclaration)
	if !ok {
		t.Fatalf("Elements[0] = %T, want *ast.FunctionDeclaration", reparsed.Elements[0])
	}
	if fn.Name.Value != "add" || !fn.Export || len(fn.Parameters) != 2 {
		t.Errorf("round-tripped fn = %+v, want name=add export=true with 2 parameters", fn)
	}
}

func TestParseBindingsTableDecodesFieldsAndMethods(t *testing.T) {
	doc := `{"Point": {"fields": [{"name":"x","type":{"kind":"i32"}}], "methods": ["add"]}}`
	table, err := ParseBindingsTable([]byte(doc))
	if err != nil {
		t.Fatalf("ParseBindingsTable() error: %v", err)
	}
	binding, ok := table.Lookup("Point")
	if !ok {
		t.Fatal("expected a Point binding")
	}
	if len(binding.Fields) != 1 || binding.Fields[0].Name != "x" {
		t.Errorf("Fields = %+v, want one field named x", binding.Fields)
	}
	if !binding.Methods["add"] {
		t.Errorf("Methods = %+v, want add present", binding.Methods)
	}
}

func TestMarkSyntheticSetsFlatField(t *testing.T) {
	out, err := MarkSynthetic([]byte(`{"kind":"Identifier","value":"tmp"}`))
	if err != nil {
		t.Fatalf("MarkSynthetic() error: %v", err)
	}
	file := &span.File{Name: "x.json"}
	prog, err := ParseProgram(file, []byte(`{"kind":"Program","elements":[{"kind":"ExpressionStatement","expression":`+string(out)+`}]}`))
	if err != nil {
		t.Fatalf("ParseProgram() error: %v", err)
	}
	se := prog.Elements[0].(*ast.StatementElement)
	exprStmt := se.Statement.(*ast.ExpressionStatement)
	id := exprStmt.Expression.(*ast.Identifier)
	if !id.Pos().Synthetic {
		t.Error("expected the marked node's span to read back as synthetic")
	}
}
