package constfold

import (
	"errors"
	"strconv"
	"testing"

	"github.com/tliron/commonlog"

	"seoggi/internal/diagnostics"
	"seoggi/internal/mir"
	"seoggi/internal/passes"
	"seoggi/internal/passes/dce"
	"seoggi/internal/safety"
	"seoggi/internal/types"
)

func newContext(mod *mir.Module) *passes.Context {
	return &passes.Context{
		Module:  mod,
		Checker: safety.New(),
		Cache:   passes.NewAnalysisCache(),
		Log:     commonlog.GetLogger("seoggi.test"),
		Pass:    Name,
	}
}

func runFold(fn *mir.Function) (bool, error) {
	mod := &mir.Module{Name: "test", Functions: []*mir.Function{fn}}
	return New().RunOnModule(newContext(mod), mod)
}

// binaryFunction returns fn() { a = const; b = const; r = op a, b; ret r }
// and the result instruction's block index.
func binaryFunction(typ types.SemType, op mir.BinOp, a, b string) *mir.Function {
	bld := mir.NewBuilder("f", typ)
	bld.Block("entry")
	l := bld.Const(typ, a)
	r := bld.Const(typ, b)
	res := bld.Binary(op, l, r, typ)
	bld.Ret(res)
	return bld.Function()
}

func resultOf(t *testing.T, fn *mir.Function) (string, bool) {
	t.Helper()
	c, ok := fn.Blocks[0].Instrs[2].(*mir.Const)
	if !ok {
		return "", false
	}
	return c.Value, true
}

func TestEndToEndFoldThenEliminate(t *testing.T) {
	b := mir.NewBuilder("main", types.TypeI32)
	b.Block("entry")
	c1 := b.Const(types.TypeI32, "2")
	c2 := b.Const(types.TypeI32, "3")
	r := b.Binary(mir.OpAdd, c1, c2, types.TypeI32)
	b.Ret(r)
	mod := &mir.Module{Name: "scenario", Functions: []*mir.Function{b.Function()}}

	m := passes.NewManager(nil)
	if err := m.AddPass(New()); err != nil {
		t.Fatal(err)
	}
	if err := m.AddPass(dce.New(0)); err != nil {
		t.Fatal(err)
	}
	if err := m.Run(mod); err != nil {
		t.Fatalf("Run() = %v", err)
	}

	entry := mod.Functions[0].Blocks[0]
	if len(entry.Instrs) != 1 {
		t.Fatalf("expected c1 and c2 to be removed, got:\n%s", mir.FormatModule(mod))
	}
	c, ok := entry.Instrs[0].(*mir.Const)
	if !ok || c.Result != r || c.Value != "5" {
		t.Errorf("expected r = const i32 5, got %s", mir.FormatInstr(entry.Instrs[0]))
	}
}

func TestFoldMatchesNativeInt32(t *testing.T) {
	values := []int32{0, 1, -1, 2, 7, -13, 1 << 30, -(1 << 31), (1 << 31) - 1}
	ops := []mir.BinOp{mir.OpAdd, mir.OpSub, mir.OpMul, mir.OpDiv, mir.OpRem, mir.OpAnd, mir.OpOr, mir.OpXor}

	for _, a := range values {
		for _, b := range values {
			for _, op := range ops {
				fn := binaryFunction(types.TypeI32, op, strconv.Itoa(int(a)), strconv.Itoa(int(b)))
				if _, err := runFold(fn); err != nil {
					t.Fatalf("%d %s %d: %v", a, op, b, err)
				}
				got, folded := resultOf(t, fn)

				var want int32
				trap := false
				switch op {
				case mir.OpAdd:
					want = a + b
				case mir.OpSub:
					want = a - b
				case mir.OpMul:
					want = a * b
				case mir.OpAnd:
					want = a & b
				case mir.OpOr:
					want = a | b
				case mir.OpXor:
					want = a ^ b
				case mir.OpDiv, mir.OpRem:
					if b == 0 || (b == -1 && a == -(1<<31)) {
						trap = true
						break
					}
					if op == mir.OpDiv {
						want = a / b
					} else {
						want = a % b
					}
				}

				if trap {
					if folded {
						t.Errorf("%d %s %d must not be folded, got %s", a, op, b, got)
					}
					continue
				}
				if !folded {
					t.Errorf("%d %s %d was not folded", a, op, b)
					continue
				}
				if got != strconv.Itoa(int(want)) {
					t.Errorf("%d %s %d = %s, want %d", a, op, b, got, want)
				}
			}
		}
	}
}

func TestFoldUnsignedWraps(t *testing.T) {
	tests := []struct {
		op   mir.BinOp
		a, b string
		want string
	}{
		{mir.OpAdd, "250", "10", "4"},
		{mir.OpSub, "0", "1", "255"},
		{mir.OpMul, "16", "17", "16"},
		{mir.OpDiv, "255", "2", "127"},
		{mir.OpRem, "255", "16", "15"},
	}
	for _, tt := range tests {
		fn := binaryFunction(types.TypeU8, tt.op, tt.a, tt.b)
		if _, err := runFold(fn); err != nil {
			t.Fatal(err)
		}
		if got, _ := resultOf(t, fn); got != tt.want {
			t.Errorf("u8 %s %s %s = %s, want %s", tt.a, tt.op, tt.b, got, tt.want)
		}
	}
}

func TestFoldCompare(t *testing.T) {
	tests := []struct {
		typ  types.SemType
		pred mir.CmpPred
		a, b string
		want string
	}{
		{types.TypeI8, mir.CmpLt, "-1", "1", "true"},
		{types.TypeU8, mir.CmpLt, "255", "1", "false"},
		{types.TypeI32, mir.CmpEq, "4", "4", "true"},
		{types.TypeI32, mir.CmpNe, "4", "4", "false"},
		{types.TypeI64, mir.CmpGe, "-5", "-5", "true"},
		{types.TypeU64, mir.CmpGt, "18446744073709551615", "0", "true"},
		{types.TypeI16, mir.CmpLe, "3", "-3", "false"},
		{types.TypeBool, mir.CmpEq, "true", "false", "false"},
	}
	for _, tt := range tests {
		b := mir.NewBuilder("f", types.TypeBool)
		b.Block("entry")
		l := b.Const(tt.typ, tt.a)
		r := b.Const(tt.typ, tt.b)
		res := b.Compare(tt.pred, l, r)
		b.Ret(res)
		fn := b.Function()

		if _, err := runFold(fn); err != nil {
			t.Fatal(err)
		}
		got, ok := resultOf(t, fn)
		if !ok || got != tt.want {
			t.Errorf("%s %s %s %s = %q (folded %v), want %s", tt.typ, tt.a, tt.pred, tt.b, got, ok, tt.want)
		}
	}
}

func TestFoldCast(t *testing.T) {
	tests := []struct {
		from, to types.SemType
		value    string
		want     string
		folded   bool
	}{
		{types.TypeI8, types.TypeI32, "-1", "-1", true},
		{types.TypeI32, types.TypeU8, "300", "44", true},
		{types.TypeU8, types.TypeI8, "200", "-56", true},
		{types.TypeI16, types.TypeU32, "-2", "4294967294", true},
		{types.TypeBool, types.TypeI32, "true", "1", true},
		{types.TypeI32, types.TypeBool, "1", "", false},
	}
	for _, tt := range tests {
		b := mir.NewBuilder("f", tt.to)
		b.Block("entry")
		x := b.Const(tt.from, tt.value)
		c := b.Cast(x, tt.to)
		b.Ret(c)
		fn := b.Function()

		if _, err := runFold(fn); err != nil {
			t.Fatal(err)
		}
		folded, ok := fn.Blocks[0].Instrs[1].(*mir.Const)
		if ok != tt.folded {
			t.Errorf("cast %s %s -> %s folded = %v, want %v", tt.from, tt.value, tt.to, ok, tt.folded)
			continue
		}
		if ok && folded.Value != tt.want {
			t.Errorf("cast %s %s -> %s = %s, want %s", tt.from, tt.value, tt.to, folded.Value, tt.want)
		}
	}
}

func TestChainedFoldAcrossBlocksIsIdempotent(t *testing.T) {
	b := mir.NewBuilder("f", types.TypeI32)
	entry := b.Block("entry")
	next := b.Block("next")

	b.SetBlock(entry)
	two := b.Const(types.TypeI32, "2")
	four := b.Binary(mir.OpMul, two, two, types.TypeI32)
	b.Br(next)

	b.SetBlock(next)
	eight := b.Binary(mir.OpAdd, four, four, types.TypeI32)
	isEight := b.Compare(mir.CmpEq, eight, eight)
	wide := b.Cast(isEight, types.TypeI32)
	b.Ret(wide)
	fn := b.Function()

	modified, err := runFold(fn)
	if err != nil || !modified {
		t.Fatalf("first run = %v, %v", modified, err)
	}
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instrs {
			if _, ok := instr.(*mir.Const); !ok {
				t.Errorf("expected everything folded, found %s", mir.FormatInstr(instr))
			}
		}
	}
	if got := fn.Blocks[1].Instrs[2].(*mir.Const).Value; got != "1" {
		t.Errorf("wide = %s, want 1", got)
	}

	folded := mir.FormatFunction(fn)
	modified, err = runFold(fn)
	if err != nil || modified {
		t.Errorf("second run = %v, %v; want no modification", modified, err)
	}
	if mir.FormatFunction(fn) != folded {
		t.Error("second run changed the function")
	}
}

func TestNonConstantOperandsAreNotFolded(t *testing.T) {
	b := mir.NewBuilder("f", types.TypeI32)
	x := b.Param("x", types.TypeI32)
	b.Block("entry")
	p := b.Alloca(types.TypeI32)
	one := b.Const(types.TypeI32, "1")
	b.Store(p, one)
	loaded := b.Load(p, types.TypeI32)
	called := b.Call("g", types.TypeI32)
	s1 := b.Binary(mir.OpAdd, x, one, types.TypeI32)
	s2 := b.Binary(mir.OpAdd, loaded, called, types.TypeI32)
	s3 := b.Binary(mir.OpAdd, s1, s2, types.TypeI32)
	b.Ret(s3)

	modified, err := runFold(b.Function())
	if err != nil || modified {
		t.Errorf("RunOnModule() = %v, %v; want no fold", modified, err)
	}
}

func TestTypeMismatch(t *testing.T) {
	b := mir.NewBuilder("f", types.TypeI32)
	b.Block("entry")
	l := b.Const(types.TypeI64, "1")
	r := b.Const(types.TypeI64, "2")
	res := b.Binary(mir.OpAdd, l, r, types.TypeI32)
	b.Ret(res)

	_, err := runFold(b.Function())
	if !errors.Is(err, diagnostics.TypeMismatch) {
		t.Fatalf("RunOnModule() = %v, want TypeMismatch", err)
	}
}

func TestVerifySafeToFoldRejectsCritical(t *testing.T) {
	call := &mir.Call{Result: 1, Target: "tick", Type: types.TypeI32, Effect: mir.EffectCritical}
	repl := &mir.Const{Result: 1, Type: types.TypeI32, Value: "0"}
	err := verifySafeToFold(newContext(nil), call, repl)
	if err == nil || err.Kind != diagnostics.UnsafeFolding {
		t.Errorf("verifySafeToFold() = %v, want UnsafeFolding", err)
	}
}
