package mir

import (
	"seoggi/internal/types"
)

// buildAddModule builds:
//
//	fn main() -> i32 { c1 = 2; c2 = 3; r = add c1, c2; ret r }
//	fn helper(x: i32) -> i32 [branches on x]
func buildAddModule() *Module {
	b := NewBuilder("main", types.TypeI32)
	b.Block("entry")
	c1 := b.Const(types.TypeI32, "2")
	c2 := b.Const(types.TypeI32, "3")
	r := b.Binary(OpAdd, c1, c2, types.TypeI32)
	b.Ret(r)

	h := NewBuilder("helper", types.TypeI32)
	x := h.Param("x", types.TypeI32)
	entry := h.Block("entry")
	then := h.Block("then")
	els := h.Block("else")
	join := h.Block("join")

	h.SetBlock(entry)
	zero := h.Const(types.TypeI32, "0")
	cond := h.Compare(CmpGt, x, zero)
	h.CondBr(cond, then, els)

	h.SetBlock(then)
	one := h.Const(types.TypeI32, "1")
	h.Br(join)

	h.SetBlock(els)
	neg := h.Const(types.TypeI32, "-1")
	h.Br(join)

	h.SetBlock(join)
	res := h.Phi(types.TypeI32, PhiIncoming{Pred: then.ID, Value: one}, PhiIncoming{Pred: els.ID, Value: neg})
	h.Ret(res)

	return &Module{Name: "test", Functions: []*Function{b.Function(), h.Function()}}
}
