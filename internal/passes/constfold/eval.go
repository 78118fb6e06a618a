package constfold

import (
	"seoggi/internal/mir"
	"seoggi/internal/types"
)

// operand is a constant operand decoded to its bit pattern.
type operand struct {
	typ  types.SemType
	bits uint64
}

func lookup(consts map[mir.ValueID]*mir.Const, id mir.ValueID) (operand, bool) {
	c, ok := consts[id]
	if !ok || c.Type == nil {
		return operand{}, false
	}
	bits, err := mir.ConstBits(c)
	if err != nil {
		return operand{}, false
	}
	return operand{typ: c.Type, bits: bits}, true
}

// fold evaluates instr when all of its operands are known constants. The
// returned constant carries the type the operation produces, which the
// caller checks against the instruction's declared type.
func fold(instr mir.Instr, consts map[mir.ValueID]*mir.Const) (*mir.Const, bool) {
	switch i := instr.(type) {
	case *mir.Binary:
		l, ok1 := lookup(consts, i.Left)
		r, ok2 := lookup(consts, i.Right)
		if !ok1 || !ok2 || !l.typ.Equals(r.typ) {
			return nil, false
		}
		bits, ok := evalBinary(i.Op, l.typ, l.bits, r.bits)
		if !ok {
			return nil, false
		}
		return &mir.Const{Result: i.Result, Type: l.typ, Value: mir.FormatBits(l.typ, bits)}, true

	case *mir.Compare:
		l, ok1 := lookup(consts, i.Left)
		r, ok2 := lookup(consts, i.Right)
		if !ok1 || !ok2 || !l.typ.Equals(r.typ) {
			return nil, false
		}
		v, ok := evalCompare(i.Pred, l.typ, l.bits, r.bits)
		if !ok {
			return nil, false
		}
		return &mir.Const{Result: i.Result, Type: types.TypeBool, Value: boolLiteral(v)}, true

	case *mir.Cast:
		x, ok := lookup(consts, i.X)
		if !ok || i.Type == nil || !types.CanCast(x.typ, i.Type) {
			return nil, false
		}
		bits := x.bits
		if types.IsSigned(types.NameOf(x.typ)) {
			bits = uint64(mir.SignExtend(x.typ, bits))
		}
		return &mir.Const{Result: i.Result, Type: i.Type, Value: mir.FormatBits(i.Type, bits)}, true
	}
	return nil, false
}

func evalBinary(op mir.BinOp, typ types.SemType, l, r uint64) (uint64, bool) {
	if types.IsBool(typ) {
		switch op {
		case mir.OpAnd:
			return l & r, true
		case mir.OpOr:
			return l | r, true
		case mir.OpXor:
			return l ^ r, true
		}
		return 0, false
	}
	if !types.IsInteger(typ) {
		return 0, false
	}

	signed := types.IsSigned(types.NameOf(typ))
	switch op {
	case mir.OpAdd:
		return l + r, true
	case mir.OpSub:
		return l - r, true
	case mir.OpMul:
		return l * r, true
	case mir.OpAnd:
		return l & r, true
	case mir.OpOr:
		return l | r, true
	case mir.OpXor:
		return l ^ r, true
	case mir.OpDiv, mir.OpRem:
		// Division by zero and MIN / -1 trap at runtime; leave them in place.
		if mir.TruncateBits(typ, r) == 0 {
			return 0, false
		}
		if signed {
			sl, sr := mir.SignExtend(typ, l), mir.SignExtend(typ, r)
			if sr == -1 && sl == minSigned(typ) {
				return 0, false
			}
			if op == mir.OpDiv {
				return uint64(sl / sr), true
			}
			return uint64(sl % sr), true
		}
		ul, ur := mir.TruncateBits(typ, l), mir.TruncateBits(typ, r)
		if op == mir.OpDiv {
			return ul / ur, true
		}
		return ul % ur, true
	}
	return 0, false
}

func evalCompare(pred mir.CmpPred, typ types.SemType, l, r uint64) (bool, bool) {
	var cmp int
	switch {
	case types.IsBool(typ):
		if pred != mir.CmpEq && pred != mir.CmpNe {
			return false, false
		}
		cmp = compareUnsigned(l, r)
	case types.IsSigned(types.NameOf(typ)):
		cmp = compareSigned(mir.SignExtend(typ, l), mir.SignExtend(typ, r))
	case types.IsUnsigned(types.NameOf(typ)):
		cmp = compareUnsigned(mir.TruncateBits(typ, l), mir.TruncateBits(typ, r))
	default:
		return false, false
	}

	switch pred {
	case mir.CmpEq:
		return cmp == 0, true
	case mir.CmpNe:
		return cmp != 0, true
	case mir.CmpLt:
		return cmp < 0, true
	case mir.CmpLe:
		return cmp <= 0, true
	case mir.CmpGt:
		return cmp > 0, true
	case mir.CmpGe:
		return cmp >= 0, true
	}
	return false, false
}

func compareSigned(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func compareUnsigned(a, b uint64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func minSigned(typ types.SemType) int64 {
	width := types.GetNumberBitSize(types.NameOf(typ))
	return -1 << (width - 1)
}

func boolLiteral(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
