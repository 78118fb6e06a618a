package types

import (
	"testing"
)

func TestGetNumberBitSize(t *testing.T) {
	tests := []struct {
		kind     TYPE_NAME
		expected uint16
	}{
		{TYPE_I8, 8},
		{TYPE_U8, 8},
		{TYPE_I16, 16},
		{TYPE_U32, 32},
		{TYPE_I64, 64},
		{TYPE_F64, 64},
		{TYPE_BOOL, 0},
	}

	for _, test := range tests {
		if result := GetNumberBitSize(test.kind); result != test.expected {
			t.Errorf("GetNumberBitSize(%q) = %d, expected %d", test.kind, result, test.expected)
		}
	}
}

func TestIsSigned(t *testing.T) {
	for _, name := range []TYPE_NAME{TYPE_I8, TYPE_I16, TYPE_I32, TYPE_I64} {
		if !IsSigned(name) || IsUnsigned(name) {
			t.Errorf("%s should be signed only", name)
		}
	}
	for _, name := range []TYPE_NAME{TYPE_U8, TYPE_U16, TYPE_U32, TYPE_U64} {
		if IsSigned(name) || !IsUnsigned(name) {
			t.Errorf("%s should be unsigned only", name)
		}
	}
	if IsSigned(TYPE_BOOL) || IsUnsigned(TYPE_BOOL) {
		t.Error("bool has no signedness")
	}
}

func TestCanCast(t *testing.T) {
	tests := []struct {
		from, to SemType
		want     bool
	}{
		{TypeI32, TypeI64, true},
		{TypeI64, TypeI8, true},
		{TypeU8, TypeI32, true},
		{TypeI32, TypeU64, true},
		{TypeBool, TypeI32, true},
		{TypeI32, TypeBool, false},
		{TypePtr, TypeI64, false},
		{TypeI64, TypePtr, false},
		{TypeF64, TypeI32, false},
		{TypeF64, TypeF64, true},
		{nil, TypeI32, false},
	}

	for _, tt := range tests {
		if got := CanCast(tt.from, tt.to); got != tt.want {
			t.Errorf("CanCast(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
