package mir

import (
	"fmt"
	"os"
	"strings"

	"seoggi/internal/types"
)

// FormatModule returns a readable text representation of the MIR module.
func FormatModule(mod *Module) string {
	if mod == nil {
		return ""
	}

	var b strings.Builder
	if mod.Name != "" {
		fmt.Fprintf(&b, "module %s\n", mod.Name)
	} else {
		b.WriteString("module <unknown>\n")
	}

	for _, fn := range mod.Functions {
		b.WriteString("\n")
		writeFunction(&b, fn)
	}

	return b.String()
}

// FormatFunction returns a readable text representation of a single function.
func FormatFunction(fn *Function) string {
	var b strings.Builder
	writeFunction(&b, fn)
	return b.String()
}

// WriteModuleFile writes the formatted MIR module to disk.
func WriteModuleFile(mod *Module, path string) error {
	if mod == nil || path == "" {
		return nil
	}
	return os.WriteFile(path, []byte(FormatModule(mod)), 0644)
}

func writeFunction(b *strings.Builder, fn *Function) {
	if fn == nil {
		return
	}

	fmt.Fprintf(b, "fn %s(", fn.Name)
	for i, param := range fn.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%s %s: %s", formatValue(param.ID), param.Name, formatType(param.Type))
	}
	fmt.Fprintf(b, ") -> %s", formatType(fn.Return))
	if attrs := formatAttrs(fn); attrs != "" {
		fmt.Fprintf(b, " [%s]", attrs)
	}
	b.WriteString(" {\n")

	entry := fn.EntryID()
	for _, block := range fn.Blocks {
		writeBlock(b, block, block.ID == entry)
	}

	b.WriteString("}\n")
}

func formatAttrs(fn *Function) string {
	var attrs []string
	if fn.MayThrow {
		attrs = append(attrs, "may_throw")
	}
	if fn.HasUnsafeOperations {
		attrs = append(attrs, "unsafe")
	}
	if fn.HasCriticalSideEffects {
		attrs = append(attrs, "critical")
	}
	return strings.Join(attrs, ", ")
}

func writeBlock(b *strings.Builder, block *Block, entry bool) {
	if block == nil {
		return
	}

	header := formatBlock(block.ID)
	if block.Name != "" {
		header += " " + block.Name
	}
	if entry {
		header += " (entry)"
	}
	if block.Handler != InvalidBlock {
		header += " handler " + formatBlock(block.Handler)
	}
	fmt.Fprintf(b, "  block %s:\n", header)

	for _, instr := range block.Instrs {
		fmt.Fprintf(b, "    %s\n", FormatInstr(instr))
	}

	if block.Term != nil {
		fmt.Fprintf(b, "    %s\n", FormatTerm(block.Term))
	} else {
		b.WriteString("    term <nil>\n")
	}
}

// FormatInstr renders a single instruction.
func FormatInstr(instr Instr) string {
	switch i := instr.(type) {
	case *Const:
		return formatAssign(i.Result, fmt.Sprintf("const %s %s", formatType(i.Type), i.Value))
	case *Binary:
		return formatAssign(i.Result, fmt.Sprintf("%s %s %s, %s", i.Op, formatType(i.Type), formatValue(i.Left), formatValue(i.Right)))
	case *Compare:
		return formatAssign(i.Result, fmt.Sprintf("cmp %s %s, %s", i.Pred, formatValue(i.Left), formatValue(i.Right)))
	case *Cast:
		return formatAssign(i.Result, fmt.Sprintf("cast %s %s", formatType(i.Type), formatValue(i.X)))
	case *Alloca:
		return formatAssign(i.Result, fmt.Sprintf("alloca %s", formatType(i.Elem)))
	case *Load:
		return formatAssign(i.Result, fmt.Sprintf("load%s %s %s", formatMemFlags(i.Volatile, i.Unsafe), formatType(i.Type), formatValue(i.Addr)))
	case *Store:
		return fmt.Sprintf("store%s %s, %s", formatMemFlags(i.Volatile, i.Unsafe), formatValue(i.Addr), formatValue(i.Value))
	case *Call:
		flags := ""
		if i.Effect != EffectSide {
			flags = " " + i.Effect.String()
		}
		if i.Unsafe {
			flags += " unsafe"
		}
		return formatAssign(i.Result, fmt.Sprintf("call%s %s(%s) : %s", flags, i.Target, formatValues(i.Args), formatType(i.Type)))
	case *Phi:
		return formatAssign(i.Result, fmt.Sprintf("phi %s %s", formatType(i.Type), formatPhiIncoming(i.Incoming)))
	case *Nop:
		return "nop"
	default:
		return "instr <unknown>"
	}
}

// FormatTerm renders a single terminator.
func FormatTerm(term Term) string {
	switch t := term.(type) {
	case *Return:
		if t.HasValue {
			return fmt.Sprintf("ret %s", formatValue(t.Value))
		}
		return "ret"
	case *Br:
		return fmt.Sprintf("br %s", formatBlock(t.Target))
	case *CondBr:
		return fmt.Sprintf("br_if %s, %s, %s", formatValue(t.Cond), formatBlock(t.Then), formatBlock(t.Else))
	case *Unreachable:
		return "unreachable"
	default:
		return "term <unknown>"
	}
}

func formatMemFlags(volatile, unsafe bool) string {
	s := ""
	if volatile {
		s += " volatile"
	}
	if unsafe {
		s += " unsafe"
	}
	return s
}

func formatAssign(result ValueID, body string) string {
	if result == InvalidValue {
		return body
	}
	return fmt.Sprintf("%s = %s", formatValue(result), body)
}

func formatValue(id ValueID) string {
	if id == InvalidValue {
		return "%<invalid>"
	}
	return fmt.Sprintf("%%t%d", id)
}

func formatBlock(id BlockID) string {
	if id == InvalidBlock {
		return "b<invalid>"
	}
	return fmt.Sprintf("b%d", id)
}

func formatValues(values []ValueID) string {
	if len(values) == 0 {
		return ""
	}
	parts := make([]string, 0, len(values))
	for _, id := range values {
		parts = append(parts, formatValue(id))
	}
	return strings.Join(parts, ", ")
}

func formatPhiIncoming(incoming []PhiIncoming) string {
	if len(incoming) == 0 {
		return "[]"
	}
	parts := make([]string, 0, len(incoming))
	for _, in := range incoming {
		parts = append(parts, fmt.Sprintf("%s: %s", formatBlock(in.Pred), formatValue(in.Value)))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func formatType(t types.SemType) string {
	if t == nil {
		return "void"
	}
	return t.String()
}
