package mir

// Term is the base interface for MIR terminators.
type Term interface {
	mirTerm()
}

// Return exits the current function.
type Return struct {
	Value    ValueID
	HasValue bool
}

func (r *Return) mirTerm() {}

// Br jumps unconditionally to another block.
type Br struct {
	Target BlockID
}

func (b *Br) mirTerm() {}

// CondBr jumps based on a boolean condition.
type CondBr struct {
	Cond ValueID
	Then BlockID
	Else BlockID
}

func (c *CondBr) mirTerm() {}

// Unreachable marks an invalid control-flow path.
type Unreachable struct{}

func (u *Unreachable) mirTerm() {}
