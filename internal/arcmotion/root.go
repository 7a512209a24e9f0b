package arcmotion

// RootOfValueShallow does a one-step unwrap of block-argument chains.
// If v is a block argument whose parent block
// has exactly one predecessor, the value that predecessor's terminator
// actually supplies is returned instead — through a reference-counted
// CheckedCastBranch operand, a Branch argument, or a CondBranch
// argument for this destination. Otherwise v is returned unchanged.
func RootOfValueShallow(f *Function, preds map[BlockID][]BlockID, v ValueID) ValueID {
	val := f.Value(v)
	if val == nil || val.Kind != ValueBlockArg {
		return v
	}
	b := f.Block(val.DefBlock)
	ps := preds[b.ID]
	if len(ps) != 1 {
		return v
	}
	pred := f.Block(ps[0])
	term := &pred.Term

	switch term.Kind {
	case TermCheckedCastBranch:
		if len(term.Operands) == 0 {
			return v
		}
		castOperand := term.Operands[0]
		opVal := f.Value(castOperand)
		if opVal != nil && opVal.Type != nil && opVal.Type.IsReferenceCounted() {
			return castOperand
		}
		return v

	case TermBranch, TermCondBranch:
		succIdx := term.successorIndexOf(b.ID)
		if succIdx < 0 || succIdx >= len(term.Args) {
			return v
		}
		args := term.Args[succIdx]
		if val.DefArgIdx < 0 || val.DefArgIdx >= len(args) {
			return v
		}
		return args[val.DefArgIdx]

	default:
		return v
	}
}

// CanonicalizeRefCountInstrs replaces every StrongRetain/StrongRelease
// operand in b with its shallow root,
// increasing the odds that two RC instructions become structurally
// identical for later merging. Returns whether anything changed.
func CanonicalizeRefCountInstrs(f *Function, preds map[BlockID][]BlockID, b *Block) bool {
	changed := false
	for _, id := range b.Instrs {
		in := f.Instr(id)
		if in.erased {
			continue
		}
		if in.Kind != StrongRetain && in.Kind != StrongRelease {
			continue
		}
		root := RootOfValueShallow(f, preds, in.Operands[0])
		if root != in.Operands[0] {
			f.SetOperand(in, 0, root)
			changed = true
		}
	}
	return changed
}
