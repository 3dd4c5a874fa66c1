// Package symtable holds two symbol tables: the read-only
// SemanticSymbolTable, a flat map of scopes keyed by span string that
// records declared types and function return types, and the
// stack-discipline WastSymbolTable, a slice of scopes that codegen
// pushes and pops as it enters and leaves function bodies.
package symtable

import "github.com/cwbudde/tswasmc/internal/types"

// SemanticEntry is one declared name's resolved type, as produced by the
// (out-of-scope) semantic analyzer.
type SemanticEntry struct {
	Name       string
	Type       *types.Type
	ReturnType *types.Type // set only for function-scope entries
}

// semanticScope is one lexical scope's worth of declarations, keyed by
// the span of the AST node that introduced the scope.
type semanticScope struct {
	entries map[string]SemanticEntry
}

// SemanticSymbolTable records the type of each identifier and the return
// type of each function scope. It is built once, externally, before
// codegen runs. codegen.New accepts one, but the code generator neither
// reads nor mutates it.
type SemanticSymbolTable struct {
	scopes map[string]*semanticScope // keyed by span.Span.String()
}

// NewSemanticSymbolTable creates an empty table.
func NewSemanticSymbolTable() *SemanticSymbolTable {
	return &SemanticSymbolTable{scopes: make(map[string]*semanticScope)}
}

// Define records that, within the scope identified by scopeKey, name has
// the given type.
func (t *SemanticSymbolTable) Define(scopeKey, name string, typ *types.Type) {
	t.scope(scopeKey).entries[name] = SemanticEntry{Name: name, Type: typ}
}

// DefineFunctionReturn records a function scope's return type, which
// ReturnTypeOf reads back.
func (t *SemanticSymbolTable) DefineFunctionReturn(scopeKey string, ret *types.Type) {
	s := t.scope(scopeKey)
	e, ok := s.entries[scopeKey]
	if !ok {
		e = SemanticEntry{Name: scopeKey}
	}
	e.ReturnType = ret
	s.entries[scopeKey] = e
}

// Lookup resolves name within the scope identified by scopeKey.
func (t *SemanticSymbolTable) Lookup(scopeKey, name string) (SemanticEntry, bool) {
	s, ok := t.scopes[scopeKey]
	if !ok {
		return SemanticEntry{}, false
	}
	e, ok := s.entries[name]
	return e, ok
}

// ReturnTypeOf returns the declared return type for the function scope
// identified by scopeKey, or nil if none was recorded (void).
func (t *SemanticSymbolTable) ReturnTypeOf(scopeKey string) *types.Type {
	s, ok := t.scopes[scopeKey]
	if !ok {
		return nil
	}
	return s.entries[scopeKey].ReturnType
}

func (t *SemanticSymbolTable) scope(scopeKey string) *semanticScope {
	s, ok := t.scopes[scopeKey]
	if !ok {
		s = &semanticScope{entries: make(map[string]SemanticEntry)}
		t.scopes[scopeKey] = s
	}
	return s
}
