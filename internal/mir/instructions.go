package mir

import (
	"seoggi/internal/types"
)

// Instr is the base interface for MIR instructions.
type Instr interface {
	mirInstr()
}

// Effect classifies what executing an instruction does besides producing
// its result.
type Effect int

const (
	EffectPure     Effect = iota // No observable effect
	EffectSide                   // Observable, but may be dropped when the result is unused
	EffectCritical               // Must never be removed or duplicated (volatile access, I/O, traps)
)

func (e Effect) String() string {
	switch e {
	case EffectPure:
		return "pure"
	case EffectSide:
		return "side"
	case EffectCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// BinOp is the operator of a Binary instruction.
type BinOp string

const (
	OpAdd BinOp = "add"
	OpSub BinOp = "sub"
	OpMul BinOp = "mul"
	OpDiv BinOp = "div"
	OpRem BinOp = "rem"
	OpAnd BinOp = "and"
	OpOr  BinOp = "or"
	OpXor BinOp = "xor"
)

// CmpPred is the predicate of a Compare instruction.
type CmpPred string

const (
	CmpEq CmpPred = "eq"
	CmpNe CmpPred = "ne"
	CmpLt CmpPred = "lt"
	CmpLe CmpPred = "le"
	CmpGt CmpPred = "gt"
	CmpGe CmpPred = "ge"
)

// Const defines a typed constant value. Integers are written in decimal,
// booleans as true/false.
type Const struct {
	Result ValueID
	Type   types.SemType
	Value  string
}

func (c *Const) mirInstr() {}

// Binary performs an arithmetic or bitwise operation.
type Binary struct {
	Result ValueID
	Op     BinOp
	Left   ValueID
	Right  ValueID
	Type   types.SemType
}

func (b *Binary) mirInstr() {}

// Compare produces a bool from two operands of the same type.
type Compare struct {
	Result ValueID
	Pred   CmpPred
	Left   ValueID
	Right  ValueID
	Type   types.SemType
}

func (c *Compare) mirInstr() {}

// Cast converts a value to another type.
type Cast struct {
	Result ValueID
	X      ValueID
	Type   types.SemType
}

func (c *Cast) mirInstr() {}

// Alloca reserves stack storage for a value of Elem and yields a pointer.
type Alloca struct {
	Result ValueID
	Elem   types.SemType
}

func (a *Alloca) mirInstr() {}

// Load reads a value from a pointer.
type Load struct {
	Result   ValueID
	Addr     ValueID
	Type     types.SemType
	Volatile bool
	Unsafe   bool
}

func (l *Load) mirInstr() {}

// Store writes a value to a pointer.
type Store struct {
	Addr     ValueID
	Value    ValueID
	Volatile bool
	Unsafe   bool
}

func (s *Store) mirInstr() {}

// Call represents a direct function call. Result is InvalidValue for calls
// whose value is discarded or whose callee returns void.
type Call struct {
	Result ValueID
	Target string
	Args   []ValueID
	Type   types.SemType
	Effect Effect
	Unsafe bool
}

func (c *Call) mirInstr() {}

// Phi merges values from predecessor blocks.
type Phi struct {
	Result   ValueID
	Type     types.SemType
	Incoming []PhiIncoming
}

// PhiIncoming maps a predecessor block to an incoming value.
type PhiIncoming struct {
	Pred  BlockID
	Value ValueID
}

func (p *Phi) mirInstr() {}

// Nop does nothing.
type Nop struct{}

func (n *Nop) mirInstr() {}
