package wasmbin

import (
	"bytes"
	"testing"
)

func TestULEB128SingleByte(t *testing.T) {
	got := uleb128(42)
	want := []byte{42}
	if !bytes.Equal(got, want) {
		t.Errorf("uleb128(42) = %v, want %v", got, want)
	}
}

func TestULEB128MultiByte(t *testing.T) {
	// 300 = 0b1_0010_1100 -> low 7 bits 0101100 with continuation, then 0000010
	got := uleb128(300)
	want := []byte{0xAC, 0x02}
	if !bytes.Equal(got, want) {
		t.Errorf("uleb128(300) = %v, want %v", got, want)
	}
}

func TestULEB128CrossesSingleByteBoundary(t *testing.T) {
	// 128 is the smallest value that can't fit in one 7-bit group.
	got := uleb128(128)
	want := []byte{0x80, 0x01}
	if !bytes.Equal(got, want) {
		t.Errorf("uleb128(128) = %v, want %v", got, want)
	}
}

func TestSLEB128NegativeValue(t *testing.T) {
	got := sleb128(-1)
	want := []byte{0x7F}
	if !bytes.Equal(got, want) {
		t.Errorf("sleb128(-1) = %v, want %v", got, want)
	}
}

func TestSLEB128Zero(t *testing.T) {
	got := sleb128(0)
	want := []byte{0x00}
	if !bytes.Equal(got, want) {
		t.Errorf("sleb128(0) = %v, want %v", got, want)
	}
}
