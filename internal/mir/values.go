package mir

import (
	"seoggi/internal/types"
)

// Result returns the value defined by instr, or InvalidValue.
func Result(instr Instr) ValueID {
	switch i := instr.(type) {
	case *Const:
		return i.Result
	case *Binary:
		return i.Result
	case *Compare:
		return i.Result
	case *Cast:
		return i.Result
	case *Alloca:
		return i.Result
	case *Load:
		return i.Result
	case *Call:
		return i.Result
	case *Phi:
		return i.Result
	default:
		return InvalidValue
	}
}

// ResultType returns the declared type of the value defined by instr.
func ResultType(instr Instr) types.SemType {
	switch i := instr.(type) {
	case *Const:
		return i.Type
	case *Binary:
		return i.Type
	case *Compare:
		return i.Type
	case *Cast:
		return i.Type
	case *Alloca:
		return types.TypePtr
	case *Load:
		return i.Type
	case *Call:
		return i.Type
	case *Phi:
		return i.Type
	default:
		return nil
	}
}

// Operands returns the values consumed by instr in operand order.
func Operands(instr Instr) []ValueID {
	switch i := instr.(type) {
	case *Binary:
		return []ValueID{i.Left, i.Right}
	case *Compare:
		return []ValueID{i.Left, i.Right}
	case *Cast:
		return []ValueID{i.X}
	case *Load:
		return []ValueID{i.Addr}
	case *Store:
		return []ValueID{i.Addr, i.Value}
	case *Call:
		return append([]ValueID(nil), i.Args...)
	case *Phi:
		ops := make([]ValueID, 0, len(i.Incoming))
		for _, in := range i.Incoming {
			ops = append(ops, in.Value)
		}
		return ops
	default:
		return nil
	}
}

// TermOperands returns the values consumed by a terminator.
func TermOperands(term Term) []ValueID {
	switch t := term.(type) {
	case *Return:
		if t.HasValue {
			return []ValueID{t.Value}
		}
	case *CondBr:
		return []ValueID{t.Cond}
	}
	return nil
}

// EffectOf classifies the side effect of instr.
func EffectOf(instr Instr) Effect {
	switch i := instr.(type) {
	case *Binary:
		// Division may trap at runtime, which is observable.
		if i.Op == OpDiv || i.Op == OpRem {
			return EffectSide
		}
		return EffectPure
	case *Load:
		if i.Volatile {
			return EffectCritical
		}
		return EffectSide
	case *Store:
		if i.Volatile {
			return EffectCritical
		}
		return EffectSide
	case *Call:
		return i.Effect
	default:
		return EffectPure
	}
}

// HasCriticalSideEffects reports whether instr must never be removed.
func HasCriticalSideEffects(instr Instr) bool {
	return EffectOf(instr) == EffectCritical
}

// IsCriticalIn reports whether instr must never be removed from a function
// of mod: it has a critical effect itself, or it calls a function of mod
// flagged with critical side effects.
func IsCriticalIn(mod *Module, instr Instr) bool {
	if HasCriticalSideEffects(instr) {
		return true
	}
	call, ok := instr.(*Call)
	if !ok || mod == nil {
		return false
	}
	callee := mod.Function(call.Target)
	return callee != nil && callee.HasCriticalSideEffects
}

// IsUnsafe reports whether instr performs an unchecked operation.
func IsUnsafe(instr Instr) bool {
	switch i := instr.(type) {
	case *Load:
		return i.Unsafe
	case *Store:
		return i.Unsafe
	case *Call:
		return i.Unsafe
	default:
		return false
	}
}

// Successors returns the blocks control may transfer to from b: the
// terminator's targets followed by the exception handler, if any.
func Successors(b *Block) []BlockID {
	var succs []BlockID
	switch t := b.Term.(type) {
	case *Br:
		succs = append(succs, t.Target)
	case *CondBr:
		succs = append(succs, t.Then)
		if t.Else != t.Then {
			succs = append(succs, t.Else)
		}
	}
	if b.Handler != InvalidBlock {
		succs = append(succs, b.Handler)
	}
	return succs
}

// RewriteOperands replaces every operand of instr with fn(operand).
func RewriteOperands(instr Instr, fn func(ValueID) ValueID) {
	switch i := instr.(type) {
	case *Binary:
		i.Left, i.Right = fn(i.Left), fn(i.Right)
	case *Compare:
		i.Left, i.Right = fn(i.Left), fn(i.Right)
	case *Cast:
		i.X = fn(i.X)
	case *Load:
		i.Addr = fn(i.Addr)
	case *Store:
		i.Addr, i.Value = fn(i.Addr), fn(i.Value)
	case *Call:
		for k, a := range i.Args {
			i.Args[k] = fn(a)
		}
	case *Phi:
		for k := range i.Incoming {
			i.Incoming[k].Value = fn(i.Incoming[k].Value)
		}
	}
}

// RewriteTermOperands replaces every operand of term with fn(operand).
func RewriteTermOperands(term Term, fn func(ValueID) ValueID) {
	switch t := term.(type) {
	case *Return:
		if t.HasValue {
			t.Value = fn(t.Value)
		}
	case *CondBr:
		t.Cond = fn(t.Cond)
	}
}

// RewriteTargets replaces every block target of term with fn(target).
func RewriteTargets(term Term, fn func(BlockID) BlockID) {
	switch t := term.(type) {
	case *Br:
		t.Target = fn(t.Target)
	case *CondBr:
		t.Then, t.Else = fn(t.Then), fn(t.Else)
	}
}

// SetResult changes the value defined by instr.
func SetResult(instr Instr, id ValueID) {
	switch i := instr.(type) {
	case *Const:
		i.Result = id
	case *Binary:
		i.Result = id
	case *Compare:
		i.Result = id
	case *Cast:
		i.Result = id
	case *Alloca:
		i.Result = id
	case *Load:
		i.Result = id
	case *Call:
		i.Result = id
	case *Phi:
		i.Result = id
	}
}
