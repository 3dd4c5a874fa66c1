package wasmbin

import (
	"fmt"

	"github.com/cwbudde/tswasmc/internal/ir"
)

// Section IDs per the WASM binary format.
const (
	secType     = 1
	secImport   = 2
	secFunction = 3
	secMemory   = 5
	secGlobal   = 6
	secExport   = 7
	secCode     = 10
)

const (
	externFunc = 0x00
	externMem  = 0x02
)

var magicAndVersion = []byte{0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00}

// Encode serializes m into the exact bytes of a WASM binary module:
// magic header, version, then sections in ascending id order. Type,
// function, export and code sections are always present, even for an
// empty module, rather than omitted when they'd carry no entries; the
// memory section is likewise always emitted, while import and global
// sections are only emitted when non-empty.
func Encode(m *ir.Module) ([]byte, error) {
	out := append([]byte{}, magicAndVersion...)

	out = append(out, encodeTypeSection(m)...)
	if len(m.Imports) > 0 {
		out = append(out, encodeImportSection(m)...)
	}
	out = append(out, encodeFunctionSection(m)...)
	out = append(out, encodeMemorySection()...)
	if len(m.Globals) > 0 {
		global, err := encodeGlobalSection(m)
		if err != nil {
			return nil, err
		}
		out = append(out, global...)
	}
	out = append(out, encodeExportSection(m)...)
	code, err := encodeCodeSection(m)
	if err != nil {
		return nil, err
	}
	out = append(out, code...)
	return out, nil
}

func section(id byte, payload []byte) []byte {
	out := []byte{id}
	out = appendULEB128(out, uint64(len(payload)))
	return append(out, payload...)
}

func encodeName(s string) []byte {
	out := uleb128(uint64(len(s)))
	return append(out, []byte(s)...)
}

func encodeFunctionType(ft *ir.FunctionType) ([]byte, error) {
	out := []byte{0x60}
	out = appendULEB128(out, uint64(len(ft.Params)))
	for _, p := range ft.Params {
		b, err := ValueByte(p.Type)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if ft.Ret == nil {
		out = appendULEB128(out, 0)
	} else {
		out = appendULEB128(out, 1)
		b, err := ValueByte(*ft.Ret)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

func encodeTypeSection(m *ir.Module) []byte {
	payload := uleb128(uint64(len(m.Types)))
	for i := range m.Types {
		enc, err := encodeFunctionType(&m.Types[i])
		if err != nil {
			// Type deduplication guarantees every entry is well-formed
			// by construction; a failure here is a codegen bug.
			panic(err)
		}
		payload = append(payload, enc...)
	}
	return section(secType, payload)
}

func encodeImportSection(m *ir.Module) []byte {
	payload := uleb128(uint64(len(m.Imports)))
	for _, imp := range m.Imports {
		payload = append(payload, encodeName(imp.Module)...)
		payload = append(payload, encodeName(imp.Name)...)
		payload = append(payload, externFunc)
		payload = appendULEB128(payload, uint64(imp.TypeIdx))
	}
	return section(secImport, payload)
}

func encodeFunctionSection(m *ir.Module) []byte {
	payload := uleb128(uint64(len(m.Functions)))
	for _, fn := range m.Functions {
		payload = appendULEB128(payload, uint64(fn.TypeIdx))
	}
	return section(secFunction, payload)
}

// encodeMemorySection declares one memory, minimum one page (64 KiB),
// unbounded maximum.
func encodeMemorySection() []byte {
	payload := uleb128(1) // one memory
	payload = append(payload, 0x00) // limits: min only
	payload = appendULEB128(payload, 1)
	return section(secMemory, payload)
}

// encodeExportSection exports every FunctionExport the module recorded,
// plus the default memory under the name "memory" — but only once the
// module actually exports something, so an export-less module (spec.md
// §8 scenario 1's empty source) still serializes to an empty export
// vector rather than a lone memory export. The vector length is derived
// from the entries slice actually appended to, rather than computed
// separately, so it can't drift out of sync.
func encodeExportSection(m *ir.Module) []byte {
	var entries [][]byte
	for _, exp := range m.Exports {
		e := encodeName(exp.Name)
		e = append(e, externFunc)
		e = appendULEB128(e, uint64(exp.FunctionIdx))
		entries = append(entries, e)
	}
	if len(entries) > 0 {
		memExport := encodeName("memory")
		memExport = append(memExport, externMem)
		memExport = appendULEB128(memExport, 0)
		entries = append(entries, memExport)
	}

	payload := uleb128(uint64(len(entries)))
	for _, e := range entries {
		payload = append(payload, e...)
	}
	return section(secExport, payload)
}

// encodeGlobalSection encodes every module-level global with its
// mutability flag and a constant initializer expression, terminated like
// any expression by 0x0B, following the WASM binary format directly.
func encodeGlobalSection(m *ir.Module) ([]byte, error) {
	fe := &funcEncoder{module: m, localIdx: map[string]int{}, globalIdx: map[string]int{}, loopDepth: map[int]int{}}
	payload := uleb128(uint64(len(m.Globals)))
	for _, g := range m.Globals {
		b, err := ValueByte(g.Type)
		if err != nil {
			return nil, err
		}
		payload = append(payload, b)
		if g.Mutable {
			payload = append(payload, 1)
		} else {
			payload = append(payload, 0)
		}
		init := g.Init
		if init == nil {
			init = &ir.I32Const{Value: 0}
		}
		enc, err := fe.encode(init)
		if err != nil {
			return nil, fmt.Errorf("global %s: %w", g.Name, err)
		}
		payload = append(payload, enc...)
		payload = append(payload, 0x0B)
	}
	return section(secGlobal, payload), nil
}

func encodeCodeSection(m *ir.Module) ([]byte, error) {
	payload := uleb128(uint64(len(m.Functions)))
	for _, fn := range m.Functions {
		body, err := encodeFunctionBody(m, &fn)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}
		payload = appendULEB128(payload, uint64(len(body)))
		payload = append(payload, body...)
	}
	return section(secCode, payload), nil
}
