package wasmbin

import (
	"fmt"

	"github.com/cwbudde/tswasmc/internal/ir"
)

const (
	byteI32  = 0x7F
	byteF32  = 0x7D
	byteVoid = 0x00 // never appears in a real value-types vector; see ValueByte doc
)

// ValueByte encodes an ir.ValueType as its WASM value-type byte. Void
// has no real encoding in the binary format — it contributes zero
// entries to a function type's result vector rather than a byte — but
// this function still maps it to 0x00 so DecodeValueByte/ValueByte form
// a bijection over all three ir.ValueType values and round-trip cleanly
// in both directions.
func ValueByte(vt ir.ValueType) (byte, error) {
	switch vt {
	case ir.I32:
		return byteI32, nil
	case ir.F32:
		return byteF32, nil
	case ir.Void:
		return byteVoid, nil
	default:
		return 0, fmt.Errorf("wasmbin: unknown value type %v", vt)
	}
}

// DecodeValueByte is ValueByte's inverse.
func DecodeValueByte(b byte) (ir.ValueType, error) {
	switch b {
	case byteI32:
		return ir.I32, nil
	case byteF32:
		return ir.F32, nil
	case byteVoid:
		return ir.Void, nil
	default:
		return 0, fmt.Errorf("wasmbin: unknown value-type byte 0x%02X", b)
	}
}
