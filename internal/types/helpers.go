package types

func GetNumberBitSize(kind TYPE_NAME) uint16 {
	switch kind {
	case TYPE_I8, TYPE_U8:
		return 8
	case TYPE_I16, TYPE_U16:
		return 16
	case TYPE_I32, TYPE_U32, TYPE_F32:
		return 32
	case TYPE_I64, TYPE_U64, TYPE_F64:
		return 64
	default:
		return 0
	}
}

func IsSigned(kind TYPE_NAME) bool {
	switch kind {
	case TYPE_I8, TYPE_I16, TYPE_I32, TYPE_I64:
		return true
	default:
		return false
	}
}

func IsUnsigned(kind TYPE_NAME) bool {
	switch kind {
	case TYPE_U8, TYPE_U16, TYPE_U32, TYPE_U64:
		return true
	default:
		return false
	}
}

// IsIntegerTypeName checks if a type name is an integer type
func IsIntegerTypeName(typeName TYPE_NAME) bool {
	return IsSigned(typeName) || IsUnsigned(typeName)
}

func IsFloatTypeName(typeName TYPE_NAME) bool {
	return typeName == TYPE_F32 || typeName == TYPE_F64
}

// IsInteger reports whether typ is one of the fixed-width integer types.
func IsInteger(typ SemType) bool {
	prim, ok := typ.(*PrimitiveType)
	return ok && IsIntegerTypeName(prim.GetName())
}

// IsBool reports whether typ is bool.
func IsBool(typ SemType) bool {
	prim, ok := typ.(*PrimitiveType)
	return ok && prim.GetName() == TYPE_BOOL
}

// IsPointer reports whether typ is the opaque pointer type.
func IsPointer(typ SemType) bool {
	prim, ok := typ.(*PrimitiveType)
	return ok && prim.GetName() == TYPE_PTR
}

// CanCast reports whether a value of type from may be converted to type to.
//
// Integers convert freely among all widths and signedness (truncating or
// extending), and bool widens to any integer. Nothing converts to bool, and
// pointers and floats only convert to themselves.
func CanCast(from, to SemType) bool {
	if from == nil || to == nil {
		return false
	}
	if from.Equals(to) {
		return true
	}
	switch {
	case IsInteger(from) && IsInteger(to):
		return true
	case IsBool(from) && IsInteger(to):
		return true
	default:
		return false
	}
}
