// Package irdump pretty-prints an ir.Module the way a `--dump-ast` flag
// renders an AST tree: indentation-based, one node per line, for
// inspecting what the code generator produced before it goes to the
// binary serializer.
package irdump

import (
	"fmt"
	"strings"

	"github.com/cwbudde/tswasmc/internal/ir"
)

// Dump renders m as an indented tree of its functions and their
// instructions.
func Dump(m *ir.Module) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "module (%d types, %d imports, %d functions, %d globals, %d exports)\n",
		len(m.Types), len(m.Imports), len(m.Functions), len(m.Globals), len(m.Exports))
	for _, imp := range m.Imports {
		fmt.Fprintf(&sb, "  import %s.%s: type#%d\n", imp.Module, imp.Name, imp.TypeIdx)
	}
	for _, fn := range m.Functions {
		fmt.Fprintf(&sb, "  function %s: type#%d\n", fn.Name, fn.TypeIdx)
		for _, instr := range fn.Instructions {
			dumpInstr(&sb, instr, 2)
		}
	}
	for _, exp := range m.Exports {
		fmt.Fprintf(&sb, "  export %q -> func#%d\n", exp.Name, exp.FunctionIdx)
	}
	return sb.String()
}

func indent(sb *strings.Builder, depth int) {
	for i := 0; i < depth; i++ {
		sb.WriteString("  ")
	}
}

func dumpInstr(sb *strings.Builder, instr ir.Instruction, depth int) {
	indent(sb, depth)
	switch in := instr.(type) {
	case *ir.BinOp:
		fmt.Fprintf(sb, "%s\n", in.Code)
		dumpInstr(sb, in.Left, depth+1)
		dumpInstr(sb, in.Right, depth+1)
	case *ir.I32Const:
		fmt.Fprintf(sb, "i32.const %d\n", in.Value)
	case *ir.F32Const:
		fmt.Fprintf(sb, "f32.const %g\n", in.Value)
	case *ir.LocalGet:
		fmt.Fprintf(sb, "local.get %s\n", in.Name)
	case *ir.LocalSet:
		fmt.Fprintf(sb, "local.set %s\n", in.Name)
		dumpInstr(sb, in.Value, depth+1)
	case *ir.GlobalGet:
		fmt.Fprintf(sb, "global.get %s\n", in.Name)
	case *ir.GlobalSet:
		fmt.Fprintf(sb, "global.set %s\n", in.Name)
		dumpInstr(sb, in.Value, depth+1)
	case *ir.I32Load:
		fmt.Fprintf(sb, "i32.load\n")
		dumpInstr(sb, in.Addr, depth+1)
	case *ir.I32Store:
		fmt.Fprintf(sb, "i32.store\n")
		dumpInstr(sb, in.Addr, depth+1)
		dumpInstr(sb, in.Val, depth+1)
	case *ir.Call:
		fmt.Fprintf(sb, "call %s\n", in.Name)
		for _, a := range in.Args {
			dumpInstr(sb, a, depth+1)
		}
	case *ir.Return:
		sb.WriteString("return\n")
		if in.Value != nil {
			dumpInstr(sb, in.Value, depth+1)
		}
	case *ir.SynthReturn:
		sb.WriteString("synth-return\n")
	case *ir.If:
		sb.WriteString("if\n")
		dumpInstr(sb, in.Cond, depth+1)
		indent(sb, depth)
		sb.WriteString("then\n")
		for _, i := range in.Then {
			dumpInstr(sb, i, depth+1)
		}
		if len(in.Else) > 0 {
			indent(sb, depth)
			sb.WriteString("else\n")
			for _, i := range in.Else {
				dumpInstr(sb, i, depth+1)
			}
		}
	case *ir.Loop:
		fmt.Fprintf(sb, "loop $%d\n", in.Label)
		for _, i := range in.Body {
			dumpInstr(sb, i, depth+1)
		}
	case *ir.Block:
		fmt.Fprintf(sb, "block $%d\n", in.Label)
		for _, i := range in.Body {
			dumpInstr(sb, i, depth+1)
		}
	case *ir.BrLoop:
		fmt.Fprintf(sb, "br_loop $%d\n", in.Label)
	case *ir.Local:
		fmt.Fprintf(sb, "local %s: %s\n", in.Name, in.Type)
	case *ir.Complex:
		sb.WriteString("complex\n")
		for _, i := range in.Items {
			dumpInstr(sb, i, depth+1)
		}
	case *ir.RawWast:
		fmt.Fprintf(sb, "wast %q\n", in.Text)
	case *ir.Noop:
		sb.WriteString("noop\n")
	default:
		fmt.Fprintf(sb, "<unknown %T>\n", instr)
	}
}
