package irdump

import (
	"testing"

	"github.com/cwbudde/tswasmc/internal/ir"
	"github.com/gkampitakis/go-snaps/snaps"
)

// TestDumpAddFunction snapshots the rendered text for a small module,
// matching the project's snapshot-testing convention for textual
// evaluator/generator output.
func TestDumpAddFunction(t *testing.T) {
	m := ir.NewModule()
	ret := ir.I32
	typeIdx := m.PushType(ir.FunctionType{
		Params: []ir.Param{{Name: "a", Type: ir.I32}, {Name: "b", Type: ir.I32}},
		Ret:    &ret,
	})
	fn := ir.Function{
		Name:    "add",
		TypeIdx: typeIdx,
		Instructions: []ir.Instruction{
			&ir.Block{Label: 0, Body: []ir.Instruction{
				&ir.Return{Value: ir.I32Add(&ir.LocalGet{Name: "a"}, &ir.LocalGet{Name: "b"})},
				&ir.SynthReturn{},
			}},
		},
	}
	funcIdx := m.PushFunction(fn)
	m.PushExport(ir.FunctionExport{Name: "add", FunctionIdx: funcIdx})

	snaps.MatchSnapshot(t, Dump(m))
}

func TestDumpModuleWithGlobalAndImport(t *testing.T) {
	m := ir.NewModule()
	m.PushGlobal(ir.GlobalType{Name: "counter", Type: ir.I32, Mutable: true, Init: &ir.I32Const{Value: 0}})
	typeIdx := m.PushType(ir.FunctionType{Params: []ir.Param{{Name: "v", Type: ir.I32}}})
	m.PushImport(ir.FunctionImport{Module: "env", Name: "println", TypeIdx: typeIdx})

	snaps.MatchSnapshot(t, Dump(m))
}
