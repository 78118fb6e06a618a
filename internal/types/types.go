package types

// SemType is the representation of IR value types.
//
// Types are immutable after creation and compared structurally.
type SemType interface {
	// String returns a human-readable representation of the type
	String() string

	// Equals checks structural equality with another type
	Equals(other SemType) bool

	// Size returns the size in bytes.
	// Returns -1 for types without known size (unknown)
	Size() int

	// isType is a marker method to prevent external implementation
	isType()
}

// PrimitiveType represents the built-in scalar types (i32, bool, ptr, etc.)
type PrimitiveType struct {
	name TYPE_NAME
	size int // size in bytes
}

func NewPrimitive(name TYPE_NAME) *PrimitiveType {
	return &PrimitiveType{name: name, size: getPrimitiveSize(name)}
}

func (p *PrimitiveType) String() string { return string(p.name) }
func (p *PrimitiveType) Size() int      { return p.size }
func (p *PrimitiveType) isType()        {}
func (p *PrimitiveType) Equals(other SemType) bool {
	if o, ok := other.(*PrimitiveType); ok {
		return p.name == o.name
	}
	return false
}

// GetName returns the primitive type name
func (p *PrimitiveType) GetName() TYPE_NAME {
	return p.name
}

func getPrimitiveSize(name TYPE_NAME) int {
	switch name {
	case TYPE_I8, TYPE_U8, TYPE_BOOL:
		return 1
	case TYPE_I16, TYPE_U16:
		return 2
	case TYPE_I32, TYPE_U32, TYPE_F32:
		return 4
	case TYPE_I64, TYPE_U64, TYPE_F64, TYPE_PTR:
		return 8
	case TYPE_VOID:
		return 0
	default:
		return -1
	}
}

// Shared primitive instances.
var (
	TypeI8      SemType = NewPrimitive(TYPE_I8)
	TypeI16     SemType = NewPrimitive(TYPE_I16)
	TypeI32     SemType = NewPrimitive(TYPE_I32)
	TypeI64     SemType = NewPrimitive(TYPE_I64)
	TypeU8      SemType = NewPrimitive(TYPE_U8)
	TypeU16     SemType = NewPrimitive(TYPE_U16)
	TypeU32     SemType = NewPrimitive(TYPE_U32)
	TypeU64     SemType = NewPrimitive(TYPE_U64)
	TypeF32     SemType = NewPrimitive(TYPE_F32)
	TypeF64     SemType = NewPrimitive(TYPE_F64)
	TypeBool    SemType = NewPrimitive(TYPE_BOOL)
	TypeVoid    SemType = NewPrimitive(TYPE_VOID)
	TypePtr     SemType = NewPrimitive(TYPE_PTR)
	TypeUnknown SemType = NewPrimitive(TYPE_UNKNOWN)
)

// FromName returns the shared type for a type name, or TypeUnknown.
func FromName(name TYPE_NAME) SemType {
	switch name {
	case TYPE_I8:
		return TypeI8
	case TYPE_I16:
		return TypeI16
	case TYPE_I32:
		return TypeI32
	case TYPE_I64:
		return TypeI64
	case TYPE_U8:
		return TypeU8
	case TYPE_U16:
		return TypeU16
	case TYPE_U32:
		return TypeU32
	case TYPE_U64:
		return TypeU64
	case TYPE_F32:
		return TypeF32
	case TYPE_F64:
		return TypeF64
	case TYPE_BOOL:
		return TypeBool
	case TYPE_VOID:
		return TypeVoid
	case TYPE_PTR:
		return TypePtr
	default:
		return TypeUnknown
	}
}

// NameOf returns the type name of typ, or TYPE_VOID for nil.
func NameOf(typ SemType) TYPE_NAME {
	if typ == nil {
		return TYPE_VOID
	}
	if prim, ok := typ.(*PrimitiveType); ok {
		return prim.GetName()
	}
	return TYPE_UNKNOWN
}
