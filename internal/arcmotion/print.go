package arcmotion

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes a human-readable representation of f in a bbN:/terminator
// style; the CLI's dump subcommand prints it.
func Dump(w io.Writer, f *Function) error {
	if w == nil || f == nil {
		return nil
	}
	fmt.Fprintf(w, "fn %s:\n", f.Name)
	for _, b := range f.Blocks {
		fmt.Fprintf(w, "bb%d(%s):\n", b.ID, formatArgs(f, b.Args))
		for _, id := range b.Instrs {
			in := f.Instr(id)
			if in.erased {
				continue
			}
			fmt.Fprintf(w, "  %s\n", formatInstr(f, in))
		}
		fmt.Fprintf(w, "  %s\n", formatTerm(f, &b.Term))
	}
	return nil
}

func formatArgs(f *Function, args []ValueID) string {
	parts := make([]string, len(args))
	for i, v := range args {
		parts[i] = formatValue(f, v)
	}
	return strings.Join(parts, ", ")
}

func formatValue(f *Function, v ValueID) string {
	if v == NoValueID {
		return "_"
	}
	val := f.Value(v)
	if val == nil {
		return fmt.Sprintf("%%%d", v)
	}
	if val.Type != nil {
		return fmt.Sprintf("%%%d: %s", v, val.Type.String())
	}
	return fmt.Sprintf("%%%d", v)
}

func formatInstrKind(k InstrKind) string {
	switch k {
	case StrongRetain:
		return "strong_retain"
	case StrongRelease:
		return "strong_release"
	case RetainValue:
		return "retain_value"
	case ReleaseValue:
		return "release_value"
	case Enum:
		return "enum"
	case UncheckedEnumData:
		return "unchecked_enum_data"
	case CheckedCastValue:
		return "unconditional_checked_cast"
	case UnownedToRef:
		return "unowned_to_ref"
	case Struct:
		return "struct"
	case Literal:
		return "literal"
	case DebugValue:
		return "debug_value"
	case SelectEnumValue:
		return "select_enum"
	default:
		return "other"
	}
}

func formatInstr(f *Function, in *Instr) string {
	operands := make([]string, len(in.Operands))
	for i, v := range in.Operands {
		operands[i] = formatValue(f, v)
	}
	extra := ""
	switch in.Kind {
	case Enum, UncheckedEnumData:
		extra = fmt.Sprintf(" #%s", in.Case.Name)
	case Literal:
		extra = fmt.Sprintf(" %q", in.LiteralKey)
	}
	lhs := ""
	if in.Result != NoValueID {
		lhs = formatValue(f, in.Result) + " = "
	}
	return fmt.Sprintf("%s%s(%s)%s", lhs, formatInstrKind(in.Kind), strings.Join(operands, ", "), extra)
}

func formatTermKind(k TermKind) string {
	switch k {
	case TermBranch:
		return "br"
	case TermCondBranch:
		return "cond_br"
	case TermSwitchEnum:
		return "switch_enum"
	case TermCheckedCastBranch:
		return "checked_cast_br"
	case TermReturn:
		return "return"
	case TermUnreachable:
		return "unreachable"
	default:
		return "?"
	}
}

func formatTerm(f *Function, t *Terminator) string {
	var b strings.Builder
	b.WriteString(formatTermKind(t.Kind))
	for _, v := range t.Operands {
		b.WriteString(" ")
		b.WriteString(formatValue(f, v))
	}
	for i, s := range t.Successors {
		b.WriteString(" bb")
		fmt.Fprintf(&b, "%d", s)
		if t.Kind == TermSwitchEnum && i < len(t.Cases) {
			fmt.Fprintf(&b, "[#%s]", t.Cases[i].Name)
		}
		if i < len(t.Args) && len(t.Args[i]) > 0 {
			args := make([]string, len(t.Args[i]))
			for j, v := range t.Args[i] {
				args[j] = formatValue(f, v)
			}
			fmt.Fprintf(&b, "(%s)", strings.Join(args, ", "))
		}
	}
	return b.String()
}
