package wasmbin

import (
	"fmt"
	"math"

	"github.com/cwbudde/tswasmc/internal/ir"
)

// localGroup is one run of consecutively-declared same-type locals,
// the binary format's compact encoding for the locals vector.
type localGroup struct {
	count int
	typ   ir.ValueType
}

// funcEncoder holds per-function encoding state: the name->index map
// for locals/params/globals, and the block-nesting bookkeeping BrLoop
// needs to compute a relative branch depth.
type funcEncoder struct {
	module    *ir.Module
	localIdx  map[string]int
	globalIdx map[string]int
	depth     int
	loopDepth map[int]int
}

func encodeFunctionBody(m *ir.Module, fn *ir.Function) ([]byte, error) {
	ft := &m.Types[fn.TypeIdx]

	fe := &funcEncoder{
		module:    m,
		localIdx:  make(map[string]int),
		globalIdx: make(map[string]int),
		loopDepth: make(map[int]int),
	}
	for i, g := range m.Globals {
		fe.globalIdx[g.Name] = i
	}

	for i, p := range ft.Params {
		fe.localIdx[p.Name] = i
	}

	var groups []localGroup
	nextIdx := len(ft.Params)
	var body []ir.Instruction
	for _, instr := range fn.Instructions {
		if loc, ok := instr.(*ir.Local); ok {
			fe.localIdx[loc.Name] = nextIdx
			nextIdx++
			if len(groups) > 0 && groups[len(groups)-1].typ == loc.Type {
				groups[len(groups)-1].count++
			} else {
				groups = append(groups, localGroup{count: 1, typ: loc.Type})
			}
			continue
		}
		body = append(body, instr)
	}

	out := uleb128(uint64(len(groups)))
	for _, g := range groups {
		out = appendULEB128(out, uint64(g.count))
		b, err := ValueByte(g.typ)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}

	for _, instr := range body {
		enc, err := fe.encode(instr)
		if err != nil {
			return nil, err
		}
		out = append(out, enc...)
	}
	out = append(out, 0x0B) // end
	return out, nil
}

func (fe *funcEncoder) encodeSeq(instrs []ir.Instruction) ([]byte, error) {
	var out []byte
	for _, instr := range instrs {
		enc, err := fe.encode(instr)
		if err != nil {
			return nil, err
		}
		out = append(out, enc...)
	}
	return out, nil
}

// encode renders one instruction (and, for the tree-shaped nodes, its
// entire subtree) as WASM bytecode, in stack-machine order: operands
// first, then the operator.
func (fe *funcEncoder) encode(instr ir.Instruction) ([]byte, error) {
	switch in := instr.(type) {
	case *ir.BinOp:
		return fe.encodeBinOp(in)
	case *ir.I32Const:
		out := []byte{0x41}
		return appendSLEB128(out, int64(in.Value)), nil
	case *ir.F32Const:
		return encodeF32Const(in.Value), nil
	case *ir.LocalGet:
		idx, ok := fe.localIdx[in.Name]
		if !ok {
			return nil, fmt.Errorf("local.get: unknown local %q", in.Name)
		}
		return append([]byte{0x20}, uleb128(uint64(idx))...), nil
	case *ir.LocalSet:
		val, err := fe.encode(in.Value)
		if err != nil {
			return nil, err
		}
		idx, ok := fe.localIdx[in.Name]
		if !ok {
			return nil, fmt.Errorf("local.set: unknown local %q", in.Name)
		}
		return append(val, append([]byte{0x21}, uleb128(uint64(idx))...)...), nil
	case *ir.GlobalGet:
		idx, ok := fe.globalIdx[in.Name]
		if !ok {
			return nil, fmt.Errorf("global.get: unknown global %q", in.Name)
		}
		return append([]byte{0x23}, uleb128(uint64(idx))...), nil
	case *ir.GlobalSet:
		val, err := fe.encode(in.Value)
		if err != nil {
			return nil, err
		}
		idx, ok := fe.globalIdx[in.Name]
		if !ok {
			return nil, fmt.Errorf("global.set: unknown global %q", in.Name)
		}
		return append(val, append([]byte{0x24}, uleb128(uint64(idx))...)...), nil
	case *ir.I32Load:
		addr, err := fe.encode(in.Addr)
		if err != nil {
			return nil, err
		}
		out := append(addr, 0x28)
		out = appendULEB128(out, 2) // align = 4 bytes
		out = appendULEB128(out, 0) // offset
		return out, nil
	case *ir.I32Store:
		addr, err := fe.encode(in.Addr)
		if err != nil {
			return nil, err
		}
		val, err := fe.encode(in.Val)
		if err != nil {
			return nil, err
		}
		out := append(addr, val...)
		out = append(out, 0x36)
		out = appendULEB128(out, 2)
		out = appendULEB128(out, 0)
		return out, nil
	case *ir.Call:
		funcIdx, err := fe.functionIndex(in.Name)
		if err != nil {
			return nil, err
		}
		var out []byte
		for _, a := range in.Args {
			enc, err := fe.encode(a)
			if err != nil {
				return nil, err
			}
			out = append(out, enc...)
		}
		out = append(out, 0x10)
		return appendULEB128(out, uint64(funcIdx)), nil
	case *ir.Return:
		var out []byte
		if in.Value != nil {
			enc, err := fe.encode(in.Value)
			if err != nil {
				return nil, err
			}
			out = append(out, enc...)
		}
		return append(out, 0x0F), nil
	case *ir.If:
		return fe.encodeIf(in)
	case *ir.Loop:
		return fe.encodeLoop(in)
	case *ir.Block:
		return fe.encodeBlock(in)
	case *ir.BrLoop:
		target, ok := fe.loopDepth[in.Label]
		if !ok {
			return nil, fmt.Errorf("br_loop: unknown loop label %d", in.Label)
		}
		relative := fe.depth - target
		return append([]byte{0x0C}, uleb128(uint64(relative))...), nil
	case *ir.Complex:
		return fe.encodeSeq(in.Items)
	case *ir.RawWast:
		return nil, fmt.Errorf("@wast instruction text requires a wast-source parser, not implemented at this layer: %q", in.Text)
	case *ir.SynthReturn:
		return []byte{0x0F}, nil
	case *ir.Noop:
		return nil, fmt.Errorf("internal error: ir.Noop reached the serializer")
	default:
		return nil, fmt.Errorf("wasmbin: unhandled instruction %T", instr)
	}
}

func (fe *funcEncoder) encodeBinOp(b *ir.BinOp) ([]byte, error) {
	left, err := fe.encode(b.Left)
	if err != nil {
		return nil, err
	}
	right, err := fe.encode(b.Right)
	if err != nil {
		return nil, err
	}
	opcode, ok := binOpCodes[b.Code]
	if !ok {
		return nil, fmt.Errorf("wasmbin: unhandled binary opcode %v", b.Code)
	}
	out := append(left, right...)
	return append(out, opcode), nil
}

var binOpCodes = map[ir.BinOpCode]byte{
	ir.OpI32Add: 0x6A,
	ir.OpI32Sub: 0x6B,
	ir.OpI32Mul: 0x6C,
	ir.OpI32Div: 0x6D,
	ir.OpI32Rem: 0x6F,
	ir.OpI32And: 0x71,
	ir.OpI32Or:  0x72,
	ir.OpI32Xor: 0x73,
	ir.OpI32Eq:  0x46,
	ir.OpI32Neq: 0x47,
	ir.OpI32Gt:  0x4A,
	ir.OpI32Ge:  0x4E,
	ir.OpI32Lt:  0x48,
	ir.OpI32Le:  0x4C,
	ir.OpF32Add: 0x92,
}

func (fe *funcEncoder) encodeIf(in *ir.If) ([]byte, error) {
	cond, err := fe.encode(in.Cond)
	if err != nil {
		return nil, err
	}
	fe.depth++
	thenBytes, err := fe.encodeSeq(in.Then)
	if err != nil {
		return nil, err
	}
	var elseBytes []byte
	if len(in.Else) > 0 {
		elseBytes, err = fe.encodeSeq(in.Else)
		if err != nil {
			return nil, err
		}
	}
	fe.depth--

	out := append(cond, 0x04, 0x40) // if, blocktype void
	out = append(out, thenBytes...)
	if len(in.Else) > 0 {
		out = append(out, 0x05) // else
		out = append(out, elseBytes...)
	}
	out = append(out, 0x0B) // end
	return out, nil
}

func (fe *funcEncoder) encodeLoop(in *ir.Loop) ([]byte, error) {
	fe.depth++
	fe.loopDepth[in.Label] = fe.depth
	body, err := fe.encodeSeq(in.Body)
	fe.depth--
	if err != nil {
		return nil, err
	}
	out := []byte{0x03, 0x40} // loop, blocktype void
	out = append(out, body...)
	out = append(out, 0x0B)
	return out, nil
}

func (fe *funcEncoder) encodeBlock(in *ir.Block) ([]byte, error) {
	fe.depth++
	body, err := fe.encodeSeq(in.Body)
	fe.depth--
	if err != nil {
		return nil, err
	}
	out := []byte{0x02, 0x40} // block, blocktype void
	out = append(out, body...)
	out = append(out, 0x0B)
	return out, nil
}

// functionIndex resolves a call target's name to its index in the
// shared (imports-then-defined) function index space.
func (fe *funcEncoder) functionIndex(name string) (int, error) {
	for i, imp := range fe.module.Imports {
		if imp.Name == name {
			return i, nil
		}
	}
	offset := len(fe.module.Imports)
	for i, fn := range fe.module.Functions {
		if fn.Name == name {
			return offset + i, nil
		}
	}
	return 0, fmt.Errorf("call: unknown function %q", name)
}

func encodeF32Const(v float32) []byte {
	bits := math.Float32bits(v)
	return []byte{0x43, byte(bits), byte(bits >> 8), byte(bits >> 16), byte(bits >> 24)}
}
