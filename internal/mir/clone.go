package mir

// CloneInstr returns a deep copy of instr.
func CloneInstr(instr Instr) Instr {
	switch i := instr.(type) {
	case *Const:
		c := *i
		return &c
	case *Binary:
		c := *i
		return &c
	case *Compare:
		c := *i
		return &c
	case *Cast:
		c := *i
		return &c
	case *Alloca:
		c := *i
		return &c
	case *Load:
		c := *i
		return &c
	case *Store:
		c := *i
		return &c
	case *Call:
		c := *i
		c.Args = append([]ValueID(nil), i.Args...)
		return &c
	case *Phi:
		c := *i
		c.Incoming = append([]PhiIncoming(nil), i.Incoming...)
		return &c
	case *Nop:
		return &Nop{}
	default:
		return instr
	}
}

// CloneTerm returns a deep copy of term.
func CloneTerm(term Term) Term {
	switch t := term.(type) {
	case *Return:
		c := *t
		return &c
	case *Br:
		c := *t
		return &c
	case *CondBr:
		c := *t
		return &c
	case *Unreachable:
		return &Unreachable{}
	default:
		return term
	}
}

// CloneBlock returns a deep copy of b with the same ids.
func CloneBlock(b *Block) *Block {
	out := &Block{ID: b.ID, Name: b.Name, Handler: b.Handler}
	out.Instrs = make([]Instr, 0, len(b.Instrs))
	for _, instr := range b.Instrs {
		out.Instrs = append(out.Instrs, CloneInstr(instr))
	}
	if b.Term != nil {
		out.Term = CloneTerm(b.Term)
	}
	return out
}

// CloneFunction returns a deep copy of fn.
func CloneFunction(fn *Function) *Function {
	out := *fn
	out.Params = append([]Param(nil), fn.Params...)
	out.Blocks = make([]*Block, 0, len(fn.Blocks))
	for _, b := range fn.Blocks {
		out.Blocks = append(out.Blocks, CloneBlock(b))
	}
	return &out
}

// CloneModule returns a deep copy of mod.
func CloneModule(mod *Module) *Module {
	out := &Module{Name: mod.Name, Functions: make([]*Function, 0, len(mod.Functions))}
	for _, fn := range mod.Functions {
		out.Functions = append(out.Functions, CloneFunction(fn))
	}
	return out
}
