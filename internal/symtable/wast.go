package symtable

import "github.com/cwbudde/tswasmc/internal/ir"

// SymbolKind discriminates how a WastSymbolTable entry is realized in
// the instruction IR: a function parameter (indexed), a function-local
// variable, or a module-level global.
type SymbolKind int

const (
	KindParam SymbolKind = iota
	KindLocal
	KindGlobal
)

// WastSymbol is one entry in a WastSymbolTable scope. Index is only
// meaningful for KindParam; only a parameter carries an explicit index.
type WastSymbol struct {
	Name  string
	Kind  SymbolKind
	Type  ir.ValueType
	Index int
}

type wastScope struct {
	order   []string
	symbols map[string]WastSymbol
}

func newWastScope() *wastScope {
	return &wastScope{symbols: make(map[string]WastSymbol)}
}

// WastSymbolTable is the LIFO scope stack codegen pushes and pops as it
// enters and leaves each function body. Depth 1 is the global (module)
// scope; the program is
// well-formed only if every push is matched by a pop and the stack is
// back to depth 1 once codegen finishes a module.
type WastSymbolTable struct {
	scopes []*wastScope
}

// NewWastSymbolTable creates a table with its global scope already
// pushed, at depth 1.
func NewWastSymbolTable() *WastSymbolTable {
	return &WastSymbolTable{scopes: []*wastScope{newWastScope()}}
}

// PushScope enters a new, nested scope.
func (t *WastSymbolTable) PushScope() {
	t.scopes = append(t.scopes, newWastScope())
}

// PopScope leaves the current scope. Popping the global scope (depth 1)
// is a scope-discipline violation: it's an internal invariant, not a
// user-facing diagnostic, so it panics rather than returning an error.
func (t *WastSymbolTable) PopScope() {
	if len(t.scopes) <= 1 {
		panic("symtable: pop_scope called at depth 1 (global scope)")
	}
	t.scopes = t.scopes[:len(t.scopes)-1]
}

// Depth reports the current scope-stack depth; 1 means only the global
// scope is live.
func (t *WastSymbolTable) Depth() int {
	return len(t.scopes)
}

// Define records a new symbol in the current scope. Kind is inferred
// from Depth when the caller passes KindLocal at depth 1: the table
// promotes it to KindGlobal, since nothing can be a function-local at
// module scope.
func (t *WastSymbolTable) Define(name string, kind SymbolKind, typ ir.ValueType, index int) WastSymbol {
	if kind == KindLocal && t.Depth() == 1 {
		kind = KindGlobal
	}
	sym := WastSymbol{Name: name, Kind: kind, Type: typ, Index: index}
	cur := t.current()
	if _, exists := cur.symbols[name]; !exists {
		cur.order = append(cur.order, name)
	}
	cur.symbols[name] = sym
	return sym
}

// DefineParam records a parameter at the given (0-based) argument index.
func (t *WastSymbolTable) DefineParam(name string, typ ir.ValueType, index int) WastSymbol {
	return t.Define(name, KindParam, typ, index)
}

// DefineLocal records a function-local variable, or a global if called
// at depth 1.
func (t *WastSymbolTable) DefineLocal(name string, typ ir.ValueType) WastSymbol {
	return t.Define(name, KindLocal, typ, -1)
}

// Lookup resolves name by walking outward from the current scope to the
// global scope, shadowing outer definitions with inner ones.
func (t *WastSymbolTable) Lookup(name string) (WastSymbol, bool) {
	for i := len(t.scopes) - 1; i >= 0; i-- {
		if sym, ok := t.scopes[i].symbols[name]; ok {
			return sym, true
		}
	}
	return WastSymbol{}, false
}

// LookupCurrent resolves name only within the innermost scope.
func (t *WastSymbolTable) LookupCurrent(name string) (WastSymbol, bool) {
	sym, ok := t.current().symbols[name]
	return sym, ok
}

// LookupGlobal resolves name only within the outermost (module) scope.
func (t *WastSymbolTable) LookupGlobal(name string) (WastSymbol, bool) {
	sym, ok := t.scopes[0].symbols[name]
	return sym, ok
}

// SymbolsInCurrentScope returns the current scope's symbols in
// definition order.
func (t *WastSymbolTable) SymbolsInCurrentScope() []WastSymbol {
	cur := t.current()
	out := make([]WastSymbol, len(cur.order))
	for i, name := range cur.order {
		out[i] = cur.symbols[name]
	}
	return out
}

func (t *WastSymbolTable) current() *wastScope {
	return t.scopes[len(t.scopes)-1]
}
