package wasmbin

import (
	"bytes"
	"testing"

	"github.com/cwbudde/tswasmc/internal/ir"
)

func TestEncodeEmptyModuleHasMagicAndVersion(t *testing.T) {
	m := ir.NewModule()
	out, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if !bytes.Equal(out[:8], magicAndVersion) {
		t.Errorf("header = % X, want % X", out[:8], magicAndVersion)
	}
}

func TestEncodeSimpleAddFunction(t *testing.T) {
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

	out, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	if !bytes.Equal(out[:8], magicAndVersion) {
		t.Fatalf("missing header")
	}
	if !bytes.Contains(out, []byte("add")) {
		t.Errorf("expected exported name %q in output", "add")
	}
}

func TestValueByteRoundTrip(t *testing.T) {
	for _, vt := range []ir.ValueType{ir.I32, ir.F32, ir.Void} {
		b, err := ValueByte(vt)
		if err != nil {
			t.Fatalf("ValueByte(%v) error: %v", vt, err)
		}
		got, err := DecodeValueByte(b)
		if err != nil {
			t.Fatalf("DecodeValueByte(0x%02X) error: %v", b, err)
		}
		if got != vt {
			t.Errorf("round trip: got %v, want %v", got, vt)
		}
	}
}

func TestEncodeEmptyModuleAlwaysEmitsTypeFunctionMemoryExportCode(t *testing.T) {
	m := ir.NewModule()
	out, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	body := out[len(magicAndVersion):]
	ids := map[byte]bool{}
	for len(body) > 0 {
		id := body[0]
		ids[id] = true
		length, n := decodeULEB128ForTest(body[1:])
		body = body[1+n+int(length):]
	}
	for _, id := range []byte{secType, secFunction, secMemory, secExport, secCode} {
		if !ids[id] {
			t.Errorf("missing always-present section id %d", id)
		}
	}
	if ids[secImport] || ids[secGlobal] {
		t.Errorf("empty module should not emit import or global sections, got ids=%v", ids)
	}
}

func decodeULEB128ForTest(b []byte) (value uint64, n int) {
	var shift uint
	for {
		v := b[n]
		value |= uint64(v&0x7F) << shift
		n++
		if v&0x80 == 0 {
			return value, n
		}
		shift += 7
	}
}

func TestEncodeModuleWithGlobalEmitsGlobalSection(t *testing.T) {
	m := ir.NewModule()
	m.PushGlobal(ir.GlobalType{Name: "counter", Type: ir.I32, Mutable: true, Init: &ir.I32Const{Value: 0}})

	out, err := Encode(m)
	if err != nil {
		t.Fatalf("Encode() error: %v", err)
	}
	body := out[len(magicAndVersion):]
	found := false
	for len(body) > 0 {
		id := body[0]
		length, n := decodeULEB128ForTest(body[1:])
		if id == secGlobal {
			found = true
		}
		body = body[1+n+int(length):]
	}
	if !found {
		t.Fatal("expected a global section when the module has a global")
	}
}

func TestNoopReachingSerializerErrors(t *testing.T) {
	m := ir.NewModule()
	ret := ir.I32
	typeIdx := m.PushType(ir.FunctionType{Ret: &ret})
	m.PushFunction(ir.Function{
		Name:    "bad",
		TypeIdx: typeIdx,
		Instructions: []ir.Instruction{
			&ir.Block{Label: 0, Body: []ir.Instruction{&ir.Noop{}}},
		},
	})
	if _, err := Encode(m); err == nil {
		t.Fatal("expected error when ir.Noop reaches the serializer")
	}
}
