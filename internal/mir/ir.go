package mir

import (
	"seoggi/internal/types"
)

// ValueID identifies a SSA value within a function.
type ValueID uint32

// BlockID identifies a basic block within a function.
type BlockID uint32

const (
	InvalidValue ValueID = 0
	InvalidBlock BlockID = 0
)

// Module is the MIR root handed over by the front end. Function order is the
// declaration order and is preserved by every transformation.
type Module struct {
	Name      string
	Functions []*Function
}

// Function is a typed, SSA-based MIR function.
type Function struct {
	Name   string
	Params []Param
	Return types.SemType
	Blocks []*Block
	// Entry designates the entry block. InvalidBlock means Blocks[0].
	Entry BlockID

	MayThrow               bool
	HasUnsafeOperations    bool
	HasCriticalSideEffects bool

	nextValue ValueID
	nextBlock BlockID
}

// Param describes a function parameter value.
type Param struct {
	ID   ValueID
	Name string
	Type types.SemType
}

// Block is a basic block with a list of instructions and a terminator.
type Block struct {
	ID     BlockID
	Name   string
	Instrs []Instr
	Term   Term
	// Handler is the block that receives control when an instruction in this
	// block throws. It is an exceptional successor edge.
	Handler BlockID
}

// Function returns the function called name, or nil.
func (m *Module) Function(name string) *Function {
	if m == nil {
		return nil
	}
	for _, fn := range m.Functions {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

// EntryBlock returns the designated entry block, or nil for an empty body.
func (f *Function) EntryBlock() *Block {
	if len(f.Blocks) == 0 {
		return nil
	}
	if f.Entry == InvalidBlock {
		return f.Blocks[0]
	}
	return f.Block(f.Entry)
}

// EntryID returns the ID of the entry block.
func (f *Function) EntryID() BlockID {
	if entry := f.EntryBlock(); entry != nil {
		return entry.ID
	}
	return InvalidBlock
}

// Block returns the block with the given id, or nil.
func (f *Function) Block(id BlockID) *Block {
	for _, b := range f.Blocks {
		if b.ID == id {
			return b
		}
	}
	return nil
}

// BlockIndex returns the position of the block with the given id, or -1.
func (f *Function) BlockIndex(id BlockID) int {
	for i, b := range f.Blocks {
		if b.ID == id {
			return i
		}
	}
	return -1
}

// Size is the inlining cost of the function: the number of instructions in
// all of its blocks. Terminators are not counted.
func (f *Function) Size() int {
	n := 0
	for _, b := range f.Blocks {
		n += len(b.Instrs)
	}
	return n
}

// NewValueID returns a value id not yet used in the function.
func (f *Function) NewValueID() ValueID {
	if f.nextValue == InvalidValue {
		f.recomputeCounters()
	}
	id := f.nextValue
	f.nextValue++
	return id
}

// NewBlockID returns a block id not yet used in the function.
func (f *Function) NewBlockID() BlockID {
	if f.nextBlock == InvalidBlock {
		f.recomputeCounters()
	}
	id := f.nextBlock
	f.nextBlock++
	return id
}

func (f *Function) recomputeCounters() {
	maxValue := InvalidValue
	maxBlock := InvalidBlock
	for _, p := range f.Params {
		if p.ID > maxValue {
			maxValue = p.ID
		}
	}
	for _, b := range f.Blocks {
		if b.ID > maxBlock {
			maxBlock = b.ID
		}
		for _, instr := range b.Instrs {
			if id := Result(instr); id > maxValue {
				maxValue = id
			}
		}
	}
	if f.nextValue <= maxValue {
		f.nextValue = maxValue + 1
	}
	if f.nextBlock <= maxBlock {
		f.nextBlock = maxBlock + 1
	}
}

// InsertBlocksAfter inserts blocks right after the block with id after,
// or at the end if after is not found.
func (f *Function) InsertBlocksAfter(after BlockID, blocks ...*Block) {
	idx := f.BlockIndex(after)
	if idx < 0 {
		f.Blocks = append(f.Blocks, blocks...)
		return
	}
	rest := append([]*Block{}, f.Blocks[idx+1:]...)
	f.Blocks = append(append(f.Blocks[:idx+1], blocks...), rest...)
}

// RemoveBlock detaches the block with the given id. It reports whether a
// block was removed.
func (f *Function) RemoveBlock(id BlockID) bool {
	idx := f.BlockIndex(id)
	if idx < 0 {
		return false
	}
	f.Blocks = append(f.Blocks[:idx], f.Blocks[idx+1:]...)
	return true
}

// RemoveInstr removes instr from the block. It reports whether it was found.
func (b *Block) RemoveInstr(instr Instr) bool {
	for i, in := range b.Instrs {
		if in == instr {
			b.Instrs = append(b.Instrs[:i], b.Instrs[i+1:]...)
			return true
		}
	}
	return false
}

// ReplaceInstr swaps old for repl in place. It reports whether old was found.
func (b *Block) ReplaceInstr(old, repl Instr) bool {
	for i, in := range b.Instrs {
		if in == old {
			b.Instrs[i] = repl
			return true
		}
	}
	return false
}
