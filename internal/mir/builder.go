package mir

import (
	"seoggi/internal/types"
)

// Builder appends instructions to a function under construction. It is the
// entry point front ends and tests use to produce MIR.
type Builder struct {
	fn      *Function
	current *Block
}

// NewBuilder starts a function with the given name and return type.
func NewBuilder(name string, ret types.SemType) *Builder {
	if ret == nil {
		ret = types.TypeVoid
	}
	return &Builder{fn: &Function{Name: name, Return: ret}}
}

// Function returns the function being built.
func (b *Builder) Function() *Function {
	return b.fn
}

// Param appends a formal parameter and returns its value.
func (b *Builder) Param(name string, typ types.SemType) ValueID {
	id := b.fn.NewValueID()
	b.fn.Params = append(b.fn.Params, Param{ID: id, Name: name, Type: typ})
	return id
}

// Block appends a new block and makes it the insertion point.
func (b *Builder) Block(name string) *Block {
	block := &Block{ID: b.fn.NewBlockID(), Name: name}
	b.fn.Blocks = append(b.fn.Blocks, block)
	b.current = block
	return block
}

// SetBlock moves the insertion point to block.
func (b *Builder) SetBlock(block *Block) {
	b.current = block
}

// Current returns the insertion block.
func (b *Builder) Current() *Block {
	return b.current
}

// Emit appends instr to the insertion block.
func (b *Builder) Emit(instr Instr) {
	b.current.Instrs = append(b.current.Instrs, instr)
}

// NewValue allocates a result id for an instruction built by hand.
func (b *Builder) NewValue() ValueID {
	return b.fn.NewValueID()
}

func (b *Builder) Const(typ types.SemType, value string) ValueID {
	id := b.fn.NewValueID()
	b.Emit(&Const{Result: id, Type: typ, Value: value})
	return id
}

func (b *Builder) Binary(op BinOp, left, right ValueID, typ types.SemType) ValueID {
	id := b.fn.NewValueID()
	b.Emit(&Binary{Result: id, Op: op, Left: left, Right: right, Type: typ})
	return id
}

func (b *Builder) Compare(pred CmpPred, left, right ValueID) ValueID {
	id := b.fn.NewValueID()
	b.Emit(&Compare{Result: id, Pred: pred, Left: left, Right: right, Type: types.TypeBool})
	return id
}

func (b *Builder) Cast(x ValueID, typ types.SemType) ValueID {
	id := b.fn.NewValueID()
	b.Emit(&Cast{Result: id, X: x, Type: typ})
	return id
}

func (b *Builder) Alloca(elem types.SemType) ValueID {
	id := b.fn.NewValueID()
	b.Emit(&Alloca{Result: id, Elem: elem})
	return id
}

func (b *Builder) Load(addr ValueID, typ types.SemType) ValueID {
	id := b.fn.NewValueID()
	b.Emit(&Load{Result: id, Addr: addr, Type: typ})
	return id
}

func (b *Builder) Store(addr, value ValueID) {
	b.Emit(&Store{Addr: addr, Value: value})
}

// Call emits a call with an ordinary side effect. A void return type
// produces no value.
func (b *Builder) Call(target string, ret types.SemType, args ...ValueID) ValueID {
	id := InvalidValue
	if ret != nil && !ret.Equals(types.TypeVoid) {
		id = b.fn.NewValueID()
	}
	b.Emit(&Call{Result: id, Target: target, Args: args, Type: ret, Effect: EffectSide})
	return id
}

func (b *Builder) Phi(typ types.SemType, incoming ...PhiIncoming) ValueID {
	id := b.fn.NewValueID()
	b.Emit(&Phi{Result: id, Type: typ, Incoming: incoming})
	return id
}

func (b *Builder) Nop() {
	b.Emit(&Nop{})
}

func (b *Builder) Ret(value ValueID) {
	b.current.Term = &Return{Value: value, HasValue: true}
}

func (b *Builder) RetVoid() {
	b.current.Term = &Return{}
}

func (b *Builder) Br(target *Block) {
	b.current.Term = &Br{Target: target.ID}
}

func (b *Builder) CondBr(cond ValueID, then, els *Block) {
	b.current.Term = &CondBr{Cond: cond, Then: then.ID, Else: els.ID}
}

func (b *Builder) Unreachable() {
	b.current.Term = &Unreachable{}
}
