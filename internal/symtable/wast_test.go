package symtable

import (
	"testing"

	"github.com/cwbudde/tswasmc/internal/ir"
)

func TestNewWastSymbolTableStartsAtDepthOne(t *testing.T) {
	st := NewWastSymbolTable()

	if st.Depth() != 1 {
		t.Fatalf("Depth() = %d, want 1", st.Depth())
	}
}

func TestDefineParamThenLookup(t *testing.T) {
	st := NewWastSymbolTable()
	st.PushScope()

	st.DefineParam("x", ir.I32, 0)

	sym, ok := st.Lookup("x")
	if !ok {
		t.Fatal("Lookup(x) failed to find defined parameter")
	}
	if sym.Kind != KindParam || sym.Index != 0 {
		t.Errorf("sym = %+v, want Kind=KindParam Index=0", sym)
	}
}

func TestLookupShadowing(t *testing.T) {
	st := NewWastSymbolTable()
	st.DefineLocal("x", ir.I32) // promoted to global at depth 1

	st.PushScope()
	st.DefineParam("x", ir.F32, 0)

	sym, ok := st.Lookup("x")
	if !ok || sym.Type != ir.F32 {
		t.Fatalf("inner scope should shadow outer: got %+v, ok=%v", sym, ok)
	}

	st.PopScope()
	sym, ok = st.Lookup("x")
	if !ok || sym.Type != ir.I32 {
		t.Fatalf("after pop, outer binding should resolve: got %+v, ok=%v", sym, ok)
	}
}

func TestDefineLocalAtDepthOnePromotesToGlobal(t *testing.T) {
	st := NewWastSymbolTable()

	sym := st.DefineLocal("g", ir.I32)

	if sym.Kind != KindGlobal {
		t.Errorf("Kind = %v, want KindGlobal", sym.Kind)
	}
}

func TestPopScopeAtDepthOnePanics(t *testing.T) {
	st := NewWastSymbolTable()

	defer func() {
		if recover() == nil {
			t.Fatal("PopScope() at depth 1 should panic")
		}
	}()
	st.PopScope()
}

func TestSymbolsInCurrentScopeOrdersByInsertion(t *testing.T) {
	st := NewWastSymbolTable()
	st.PushScope()
	st.DefineParam("a", ir.I32, 0)
	st.DefineParam("b", ir.I32, 1)
	st.DefineLocal("c", ir.F32)

	syms := st.SymbolsInCurrentScope()
	if len(syms) != 3 {
		t.Fatalf("len = %d, want 3", len(syms))
	}
	names := []string{syms[0].Name, syms[1].Name, syms[2].Name}
	want := []string{"a", "b", "c"}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestLookupGlobalSkipsInnerScopes(t *testing.T) {
	st := NewWastSymbolTable()
	st.DefineLocal("shared", ir.I32)
	st.PushScope()
	st.DefineParam("shared", ir.F32, 0)

	sym, ok := st.LookupGlobal("shared")
	if !ok || sym.Type != ir.I32 {
		t.Fatalf("LookupGlobal should see only module scope: got %+v, ok=%v", sym, ok)
	}
}
