package mir

import (
	"fmt"
	"strconv"

	"seoggi/internal/types"
)

// ConstBits parses the literal of c into its bit pattern at the width of
// c's type. Booleans are 0 or 1. The literal must be in range for the type.
func ConstBits(c *Const) (uint64, error) {
	name := types.NameOf(c.Type)
	switch {
	case name == types.TYPE_BOOL:
		switch c.Value {
		case "true":
			return 1, nil
		case "false":
			return 0, nil
		}
		return 0, fmt.Errorf("invalid bool literal %q", c.Value)
	case types.IsSigned(name):
		v, err := strconv.ParseInt(c.Value, 10, int(types.GetNumberBitSize(name)))
		if err != nil {
			return 0, fmt.Errorf("invalid %s literal %q: %w", name, c.Value, err)
		}
		return TruncateBits(c.Type, uint64(v)), nil
	case types.IsUnsigned(name):
		v, err := strconv.ParseUint(c.Value, 10, int(types.GetNumberBitSize(name)))
		if err != nil {
			return 0, fmt.Errorf("invalid %s literal %q: %w", name, c.Value, err)
		}
		return v, nil
	default:
		return 0, fmt.Errorf("%s constants have no integer representation", name)
	}
}

// FormatBits renders a bit pattern as a literal of type typ.
func FormatBits(typ types.SemType, bits uint64) string {
	name := types.NameOf(typ)
	switch {
	case name == types.TYPE_BOOL:
		if bits&1 == 1 {
			return "true"
		}
		return "false"
	case types.IsSigned(name):
		return strconv.FormatInt(SignExtend(typ, bits), 10)
	default:
		return strconv.FormatUint(TruncateBits(typ, bits), 10)
	}
}

// TruncateBits keeps the low bits of v that fit the width of typ.
func TruncateBits(typ types.SemType, v uint64) uint64 {
	width := types.GetNumberBitSize(types.NameOf(typ))
	if types.IsBool(typ) {
		width = 1
	}
	if width == 0 || width >= 64 {
		return v
	}
	return v & (1<<width - 1)
}

// SignExtend interprets the low bits of v as a signed integer of typ's width.
func SignExtend(typ types.SemType, v uint64) int64 {
	width := types.GetNumberBitSize(types.NameOf(typ))
	if width == 0 || width >= 64 {
		return int64(v)
	}
	shift := 64 - width
	return int64(v<<shift) >> shift
}
