package ir

import "testing"

func TestPushTypeDedupsStructurallyEqualSignatures(t *testing.T) {
	m := NewModule()
	ret := I32

	i1 := m.PushType(FunctionType{Params: []Param{{Name: "a", Type: I32}}, Ret: &ret})
	i2 := m.PushType(FunctionType{Params: []Param{{Name: "a", Type: I32}}, Ret: &ret})
	if i1 != i2 {
		t.Errorf("identical signatures got distinct type indices %d, %d", i1, i2)
	}
	if len(m.Types) != 1 {
		t.Errorf("len(Types) = %d, want 1", len(m.Types))
	}
}

func TestPushTypeDistinguishesParamNames(t *testing.T) {
	m := NewModule()
	ret := I32

	m.PushType(FunctionType{Params: []Param{{Name: "a", Type: I32}}, Ret: &ret})
	m.PushType(FunctionType{Params: []Param{{Name: "b", Type: I32}}, Ret: &ret})

	if len(m.Types) != 2 {
		t.Errorf("len(Types) = %d, want 2 (param names differ)", len(m.Types))
	}
}

func TestPushTypeDistinguishesVoidFromResult(t *testing.T) {
	m := NewModule()
	ret := I32

	m.PushType(FunctionType{Ret: &ret})
	m.PushType(FunctionType{Ret: nil})

	if len(m.Types) != 2 {
		t.Errorf("len(Types) = %d, want 2 (void vs i32 result)", len(m.Types))
	}
}

func TestPushFunctionIndexAccountsForImports(t *testing.T) {
	m := NewModule()
	typeIdx := m.PushType(FunctionType{})
	m.PushImport(FunctionImport{Module: "env", Name: "objectNew", TypeIdx: typeIdx})

	funcIdx := m.PushFunction(Function{Name: "main", TypeIdx: typeIdx})
	if funcIdx != 1 {
		t.Errorf("funcIdx = %d, want 1 (after one import)", funcIdx)
	}
}
