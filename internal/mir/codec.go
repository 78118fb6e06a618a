package mir

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"seoggi/internal/types"
)

// The interchange format is canonical CBOR so identical modules always encode
// to identical bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("mir: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

type wireModule struct {
	Name      string         `cbor:"name"`
	Functions []wireFunction `cbor:"functions"`
}

type wireFunction struct {
	Name     string      `cbor:"name"`
	Params   []wireParam `cbor:"params,omitempty"`
	Return   string      `cbor:"return"`
	Entry    uint32      `cbor:"entry,omitempty"`
	Blocks   []wireBlock `cbor:"blocks,omitempty"`
	MayThrow bool        `cbor:"may_throw,omitempty"`
	Unsafe   bool        `cbor:"unsafe,omitempty"`
	Critical bool        `cbor:"critical,omitempty"`
}

type wireParam struct {
	ID   uint32 `cbor:"id"`
	Name string `cbor:"name"`
	Type string `cbor:"type"`
}

type wireBlock struct {
	ID      uint32      `cbor:"id"`
	Name    string      `cbor:"name,omitempty"`
	Handler uint32      `cbor:"handler,omitempty"`
	Instrs  []wireInstr `cbor:"instrs,omitempty"`
	Term    *wireTerm   `cbor:"term,omitempty"`
}

type wireInstr struct {
	Op       string   `cbor:"op"`
	Result   uint32   `cbor:"result,omitempty"`
	Type     string   `cbor:"type,omitempty"`
	Kind     string   `cbor:"kind,omitempty"`
	Value    string   `cbor:"value,omitempty"`
	Target   string   `cbor:"target,omitempty"`
	Args     []uint32 `cbor:"args,omitempty"`
	Preds    []uint32 `cbor:"preds,omitempty"`
	Effect   int      `cbor:"effect,omitempty"`
	Volatile bool     `cbor:"volatile,omitempty"`
	Unsafe   bool     `cbor:"unsafe,omitempty"`
}

type wireTerm struct {
	Op       string   `cbor:"op"`
	Value    uint32   `cbor:"value,omitempty"`
	HasValue bool     `cbor:"has_value,omitempty"`
	Targets  []uint32 `cbor:"targets,omitempty"`
}

// Encode serializes a module to canonical CBOR.
func Encode(mod *Module) ([]byte, error) {
	w := wireModule{Name: mod.Name}
	for _, fn := range mod.Functions {
		wf, err := encodeFunction(fn)
		if err != nil {
			return nil, err
		}
		w.Functions = append(w.Functions, wf)
	}
	return cborEncMode.Marshal(&w)
}

// Decode deserializes a module produced by Encode.
func Decode(data []byte) (*Module, error) {
	var w wireModule
	if err := cbor.Unmarshal(data, &w); err != nil {
		return nil, fmt.Errorf("mir: unmarshal module: %w", err)
	}
	mod := &Module{Name: w.Name}
	for _, wf := range w.Functions {
		fn, err := decodeFunction(wf)
		if err != nil {
			return nil, fmt.Errorf("mir: fn %s: %w", wf.Name, err)
		}
		mod.Functions = append(mod.Functions, fn)
	}
	return mod, nil
}

func encodeFunction(fn *Function) (wireFunction, error) {
	wf := wireFunction{
		Name:     fn.Name,
		Return:   encodeType(fn.Return),
		Entry:    uint32(fn.Entry),
		MayThrow: fn.MayThrow,
		Unsafe:   fn.HasUnsafeOperations,
		Critical: fn.HasCriticalSideEffects,
	}
	for _, p := range fn.Params {
		wf.Params = append(wf.Params, wireParam{ID: uint32(p.ID), Name: p.Name, Type: encodeType(p.Type)})
	}
	for _, b := range fn.Blocks {
		wb := wireBlock{ID: uint32(b.ID), Name: b.Name, Handler: uint32(b.Handler)}
		for _, instr := range b.Instrs {
			wi, err := encodeInstr(instr)
			if err != nil {
				return wf, fmt.Errorf("mir: fn %s: %w", fn.Name, err)
			}
			wb.Instrs = append(wb.Instrs, wi)
		}
		if b.Term != nil {
			wt, err := encodeTerm(b.Term)
			if err != nil {
				return wf, fmt.Errorf("mir: fn %s: %w", fn.Name, err)
			}
			wb.Term = &wt
		}
		wf.Blocks = append(wf.Blocks, wb)
	}
	return wf, nil
}

func encodeInstr(instr Instr) (wireInstr, error) {
	switch i := instr.(type) {
	case *Const:
		return wireInstr{Op: "const", Result: uint32(i.Result), Type: encodeType(i.Type), Value: i.Value}, nil
	case *Binary:
		return wireInstr{Op: "binary", Result: uint32(i.Result), Type: encodeType(i.Type), Kind: string(i.Op), Args: encodeValues(i.Left, i.Right)}, nil
	case *Compare:
		return wireInstr{Op: "compare", Result: uint32(i.Result), Type: encodeType(i.Type), Kind: string(i.Pred), Args: encodeValues(i.Left, i.Right)}, nil
	case *Cast:
		return wireInstr{Op: "cast", Result: uint32(i.Result), Type: encodeType(i.Type), Args: encodeValues(i.X)}, nil
	case *Alloca:
		return wireInstr{Op: "alloca", Result: uint32(i.Result), Type: encodeType(i.Elem)}, nil
	case *Load:
		return wireInstr{Op: "load", Result: uint32(i.Result), Type: encodeType(i.Type), Args: encodeValues(i.Addr), Volatile: i.Volatile, Unsafe: i.Unsafe}, nil
	case *Store:
		return wireInstr{Op: "store", Args: encodeValues(i.Addr, i.Value), Volatile: i.Volatile, Unsafe: i.Unsafe}, nil
	case *Call:
		return wireInstr{Op: "call", Result: uint32(i.Result), Type: encodeType(i.Type), Target: i.Target, Args: encodeValues(i.Args...), Effect: int(i.Effect), Unsafe: i.Unsafe}, nil
	case *Phi:
		wi := wireInstr{Op: "phi", Result: uint32(i.Result), Type: encodeType(i.Type)}
		for _, in := range i.Incoming {
			wi.Preds = append(wi.Preds, uint32(in.Pred))
			wi.Args = append(wi.Args, uint32(in.Value))
		}
		return wi, nil
	case *Nop:
		return wireInstr{Op: "nop"}, nil
	default:
		return wireInstr{}, fmt.Errorf("cannot encode instruction %T", instr)
	}
}

func encodeTerm(term Term) (wireTerm, error) {
	switch t := term.(type) {
	case *Return:
		return wireTerm{Op: "ret", Value: uint32(t.Value), HasValue: t.HasValue}, nil
	case *Br:
		return wireTerm{Op: "br", Targets: []uint32{uint32(t.Target)}}, nil
	case *CondBr:
		return wireTerm{Op: "br_if", Value: uint32(t.Cond), Targets: []uint32{uint32(t.Then), uint32(t.Else)}}, nil
	case *Unreachable:
		return wireTerm{Op: "unreachable"}, nil
	default:
		return wireTerm{}, fmt.Errorf("cannot encode terminator %T", term)
	}
}

func decodeFunction(wf wireFunction) (*Function, error) {
	ret, err := decodeType(wf.Return)
	if err != nil {
		return nil, err
	}
	fn := &Function{
		Name:                   wf.Name,
		Return:                 ret,
		Entry:                  BlockID(wf.Entry),
		MayThrow:               wf.MayThrow,
		HasUnsafeOperations:    wf.Unsafe,
		HasCriticalSideEffects: wf.Critical,
	}
	for _, wp := range wf.Params {
		typ, err := decodeType(wp.Type)
		if err != nil {
			return nil, err
		}
		fn.Params = append(fn.Params, Param{ID: ValueID(wp.ID), Name: wp.Name, Type: typ})
	}
	for _, wb := range wf.Blocks {
		b := &Block{ID: BlockID(wb.ID), Name: wb.Name, Handler: BlockID(wb.Handler)}
		for _, wi := range wb.Instrs {
			instr, err := decodeInstr(wi)
			if err != nil {
				return nil, fmt.Errorf("b%d: %w", wb.ID, err)
			}
			b.Instrs = append(b.Instrs, instr)
		}
		if wb.Term != nil {
			term, err := decodeTerm(*wb.Term)
			if err != nil {
				return nil, fmt.Errorf("b%d: %w", wb.ID, err)
			}
			b.Term = term
		}
		fn.Blocks = append(fn.Blocks, b)
	}
	return fn, nil
}

func decodeInstr(wi wireInstr) (Instr, error) {
	typ, err := decodeType(wi.Type)
	if err != nil {
		return nil, err
	}
	result := ValueID(wi.Result)
	args := decodeValues(wi.Args)
	arg := func(n int) (ValueID, error) {
		if len(args) != n {
			return InvalidValue, fmt.Errorf("%s expects %d operands, got %d", wi.Op, n, len(args))
		}
		return args[0], nil
	}

	switch wi.Op {
	case "const":
		return &Const{Result: result, Type: typ, Value: wi.Value}, nil
	case "binary":
		if _, err := arg(2); err != nil {
			return nil, err
		}
		return &Binary{Result: result, Op: BinOp(wi.Kind), Left: args[0], Right: args[1], Type: typ}, nil
	case "compare":
		if _, err := arg(2); err != nil {
			return nil, err
		}
		return &Compare{Result: result, Pred: CmpPred(wi.Kind), Left: args[0], Right: args[1], Type: typ}, nil
	case "cast":
		x, err := arg(1)
		if err != nil {
			return nil, err
		}
		return &Cast{Result: result, X: x, Type: typ}, nil
	case "alloca":
		return &Alloca{Result: result, Elem: typ}, nil
	case "load":
		addr, err := arg(1)
		if err != nil {
			return nil, err
		}
		return &Load{Result: result, Addr: addr, Type: typ, Volatile: wi.Volatile, Unsafe: wi.Unsafe}, nil
	case "store":
		if _, err := arg(2); err != nil {
			return nil, err
		}
		return &Store{Addr: args[0], Value: args[1], Volatile: wi.Volatile, Unsafe: wi.Unsafe}, nil
	case "call":
		return &Call{Result: result, Target: wi.Target, Args: args, Type: typ, Effect: Effect(wi.Effect), Unsafe: wi.Unsafe}, nil
	case "phi":
		if len(wi.Preds) != len(args) {
			return nil, fmt.Errorf("phi has %d predecessors but %d values", len(wi.Preds), len(args))
		}
		phi := &Phi{Result: result, Type: typ}
		for k := range args {
			phi.Incoming = append(phi.Incoming, PhiIncoming{Pred: BlockID(wi.Preds[k]), Value: args[k]})
		}
		return phi, nil
	case "nop":
		return &Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown instruction %q", wi.Op)
	}
}

func decodeTerm(wt wireTerm) (Term, error) {
	switch wt.Op {
	case "ret":
		return &Return{Value: ValueID(wt.Value), HasValue: wt.HasValue}, nil
	case "br":
		if len(wt.Targets) != 1 {
			return nil, fmt.Errorf("br expects 1 target, got %d", len(wt.Targets))
		}
		return &Br{Target: BlockID(wt.Targets[0])}, nil
	case "br_if":
		if len(wt.Targets) != 2 {
			return nil, fmt.Errorf("br_if expects 2 targets, got %d", len(wt.Targets))
		}
		return &CondBr{Cond: ValueID(wt.Value), Then: BlockID(wt.Targets[0]), Else: BlockID(wt.Targets[1])}, nil
	case "unreachable":
		return &Unreachable{}, nil
	default:
		return nil, fmt.Errorf("unknown terminator %q", wt.Op)
	}
}

func encodeType(t types.SemType) string {
	if t == nil {
		return ""
	}
	return t.String()
}

func decodeType(name string) (types.SemType, error) {
	if name == "" {
		return nil, nil
	}
	t := types.FromName(types.TYPE_NAME(name))
	if t == types.TypeUnknown {
		return nil, fmt.Errorf("unknown type %q", name)
	}
	return t, nil
}

func encodeValues(ids ...ValueID) []uint32 {
	out := make([]uint32, 0, len(ids))
	for _, id := range ids {
		out = append(out, uint32(id))
	}
	return out
}

func decodeValues(ids []uint32) []ValueID {
	if len(ids) == 0 {
		return nil
	}
	out := make([]ValueID, 0, len(ids))
	for _, id := range ids {
		out = append(out, ValueID(id))
	}
	return out
}
