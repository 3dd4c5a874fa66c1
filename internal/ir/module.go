package ir

// Param is one entry in a FunctionType's parameter list. Type-dedup
// treats parameter names as significant, so two functions with
// identically-typed but differently-named parameters get distinct
// FunctionType entries.
type Param struct {
	Name string
	Type ValueType
}

// FunctionType is a WASM function signature: zero or more typed
// parameters and an optional single result.
type FunctionType struct {
	Params []Param
	Ret    *ValueType
}

// Equals is structural equality, including parameter names.
func (ft *FunctionType) Equals(other *FunctionType) bool {
	if ft == nil || other == nil {
		return ft == other
	}
	if len(ft.Params) != len(other.Params) {
		return false
	}
	for i, p := range ft.Params {
		op := other.Params[i]
		if p.Name != op.Name || p.Type != op.Type {
			return false
		}
	}
	if (ft.Ret == nil) != (other.Ret == nil) {
		return false
	}
	if ft.Ret != nil && *ft.Ret != *other.Ret {
		return false
	}
	return true
}

// Function is a module-defined function: its signature (by type index)
// and its lowered, instruction-tree body.
type Function struct {
	Name         string
	TypeIdx      int
	Instructions []Instruction
}

// FunctionImport is a function the module declares but does not define,
// resolved from another module at instantiation time.
type FunctionImport struct {
	Module  string
	Name    string
	TypeIdx int
}

// GlobalType is a module-level global variable.
type GlobalType struct {
	Name    string
	Type    ValueType
	Mutable bool
	Init    Instruction
}

// FunctionExport names a defined function for inclusion in the module's
// export section.
type FunctionExport struct {
	Name        string
	FunctionIdx int
}

// Module is the top-level unit the code generator builds and the binary
// serializer consumes.
type Module struct {
	Imports   []FunctionImport
	Types     []FunctionType
	Functions []Function
	Globals   []GlobalType
	Exports   []FunctionExport
}

// NewModule creates an empty module.
func NewModule() *Module {
	return &Module{}
}

// PushType interns ft, returning the index of an existing structurally
// equal entry if one exists rather than appending a duplicate.
func (m *Module) PushType(ft FunctionType) int {
	for i := range m.Types {
		if m.Types[i].Equals(&ft) {
			return i
		}
	}
	m.Types = append(m.Types, ft)
	return len(m.Types) - 1
}

// PushFunction appends a defined function and returns its function
// index (imports occupy the low indices, per WASM's shared function
// index space).
func (m *Module) PushFunction(fn Function) int {
	m.Functions = append(m.Functions, fn)
	return len(m.Imports) + len(m.Functions) - 1
}

// PushImport appends a function import and returns its function index.
func (m *Module) PushImport(imp FunctionImport) int {
	m.Imports = append(m.Imports, imp)
	return len(m.Imports) - 1
}

// PushGlobal appends a global and returns its global index.
func (m *Module) PushGlobal(g GlobalType) int {
	m.Globals = append(m.Globals, g)
	return len(m.Globals) - 1
}

// PushExport appends a function export.
func (m *Module) PushExport(e FunctionExport) {
	m.Exports = append(m.Exports, e)
}
