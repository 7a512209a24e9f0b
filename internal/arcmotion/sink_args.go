package arcmotion

// IntType is a primitive integer type — the one Type case sink_args.go
// needs to recognize by marker rather than by name, for the general
// argument-sinking form's "that operand's type is a primitive integer"
// condition.
type IntType struct {
	Name string
	Bits int
}

func (t IntType) IsTrivial() bool              { return true }
func (t IntType) IsReferenceCounted() bool      { return false }
func (t IntType) EnumElementType(EnumCase) Type { panic("arcmotion: not an enum type: " + t.Name) }
func (t IntType) EnumOrBoundGenericEnum() bool   { return false }
func (t IntType) OtherEnumCase(EnumCase) (EnumCase, bool) { return EnumCase{}, false }
func (t IntType) String() string                { return t.Name }

func isPrimitiveInteger(t Type) bool {
	_, ok := t.(IntType)
	return ok
}

// branchArgValue returns the value predecessor pid passes for argument
// index i of b via a Branch terminator, or (NoValueID, false) if pid's
// terminator is not a qualifying single-successor Branch to b.
func branchArgValue(f *Function, pid, bID BlockID, i int) (ValueID, bool) {
	p := f.Block(pid)
	if p.Term.Kind != TermBranch {
		return NoValueID, false
	}
	succIdx := p.Term.successorIndexOf(bID)
	if succIdx < 0 || succIdx >= len(p.Term.Args) {
		return NoValueID, false
	}
	args := p.Term.Args[succIdx]
	if i < 0 || i >= len(args) {
		return NoValueID, false
	}
	return args[i], true
}

// SinkLiteralsFromPredecessors implements the literal form of block
// argument sinking: when every predecessor passes a structurally
// identical Literal for a
// block argument, clone it at the head of b and redirect the argument's
// in-block uses to the clone. Predecessors are left untouched.
func SinkLiteralsFromPredecessors(f *Function, preds map[BlockID][]BlockID, b *Block) bool {
	ps := preds[b.ID]
	if len(ps) == 0 {
		return false
	}
	changed := false
	for i := range b.Args {
		lits := make([]*Instr, 0, len(ps))
		ok := true
		var key string
		var typ Type
		for idx, pid := range ps {
			v, qualifies := branchArgValue(f, pid, b.ID, i)
			if !qualifies {
				ok = false
				break
			}
			val := f.Value(v)
			if val.Kind != ValueInstrResult {
				ok = false
				break
			}
			in := f.Instr(val.DefInstr)
			if in.erased || in.Kind != Literal {
				ok = false
				break
			}
			if idx == 0 {
				key, typ = in.LiteralKey, val.Type
			} else if in.LiteralKey != key || typ == nil || val.Type == nil || typ.String() != val.Type.String() {
				ok = false
				break
			}
			lits = append(lits, in)
		}
		if !ok || len(lits) == 0 {
			continue
		}
		if alreadyPresent(f, b, lits[0]) {
			continue
		}
		clone := f.CloneInstr(lits[0], b, 0)
		f.ReplaceAllUses(b.Args[i], clone.Result)
		changed = true
	}
	return changed
}

// SinkArgumentsFromPredecessors implements the general form of block
// argument sinking: defs that are identical, or differ by exactly one
// primitive-integer operand, collapse into a single definition fed by
// the block argument.
func SinkArgumentsFromPredecessors(f *Function, preds map[BlockID][]BlockID, b *Block) bool {
	ps := preds[b.ID]
	if len(ps) == 0 {
		return false
	}
	changed := false
	for i := range b.Args {
		if sinkOneArgument(f, ps, b, i) {
			changed = true
		}
	}
	return changed
}

func sinkOneArgument(f *Function, ps []BlockID, b *Block, i int) bool {
	defs := make([]*Instr, 0, len(ps))
	for _, pid := range ps {
		v, qualifies := branchArgValue(f, pid, b.ID, i)
		if !qualifies {
			return false
		}
		val := f.Value(v)
		if val.Kind != ValueInstrResult {
			return false
		}
		if f.nonDebugUseCount(v) != 1 {
			return false
		}
		in := f.Instr(val.DefInstr)
		if in.erased {
			return false
		}
		defs = append(defs, in)
	}

	first := defs[0]
	if first.MayReadFromMemory() || first.MayHaveSideEffects() {
		return false
	}

	allIdentical := true
	for idx := 1; idx < len(defs); idx++ {
		diffs, comparable := operandDiffs(f, first, defs[idx])
		if !comparable || len(diffs) != 0 {
			allIdentical = false
			break
		}
	}
	if allIdentical {
		if alreadyPresent(f, b, first) {
			return false
		}
		clone := f.CloneInstr(first, b, 0)
		f.ReplaceAllUses(b.Args[i], clone.Result)
		return true
	}

	diffIdx := -1
	for idx := 1; idx < len(defs); idx++ {
		diffs, comparable := operandDiffs(f, first, defs[idx])
		if !comparable || len(diffs) != 1 {
			return false
		}
		if diffIdx == -1 {
			diffIdx = diffs[0]
		} else if diffIdx != diffs[0] {
			return false
		}
	}
	if diffIdx < 0 {
		return false
	}
	for _, d := range defs {
		opVal := f.Value(d.Operands[diffIdx])
		if opVal.Type == nil || !isPrimitiveInteger(opVal.Type) {
			return false
		}
	}

	// Capture each predecessor's differing operand before first's own
	// gets rewritten in place below — first is defs[0], so reading
	// defs[0].Operands[diffIdx] after that rewrite would see the
	// already-substituted block argument instead of the original value.
	originalDiffs := make([]ValueID, len(defs))
	for idx, d := range defs {
		originalDiffs[idx] = d.Operands[diffIdx]
	}

	newType := f.Value(first.Operands[diffIdx]).Type
	f.Value(b.Args[i]).Type = newType

	f.MoveInstr(first, b, 0)
	f.ReplaceAllUses(b.Args[i], first.Result)
	f.SetOperand(first, diffIdx, b.Args[i])

	for idx, pid := range ps {
		p := f.Block(pid)
		succIdx := p.Term.successorIndexOf(b.ID)
		f.SetTermArg(&p.Term, succIdx, i, originalDiffs[idx])
		if idx != 0 {
			if f.UseEmpty(defs[idx].Result) {
				f.EraseInstr(defs[idx])
			}
		}
	}
	return true
}

// alreadyPresent reports whether b already holds an instruction
// structurally identical to cand, so a repeated Run doesn't keep
// cloning the same sunk definition on every pass.
func alreadyPresent(f *Function, b *Block, cand *Instr) bool {
	for _, id := range b.Instrs {
		existing := f.Instr(id)
		if existing.erased || existing.ID == cand.ID {
			continue
		}
		diffs, comparable := operandDiffs(f, existing, cand)
		if comparable && len(diffs) == 0 {
			return true
		}
	}
	return false
}

// operandDiffs returns the operand indices at which a and b differ,
// provided they are otherwise comparable (same kind, operand count,
// result type, and kind-specific aux data); comparable is false if they
// cannot be compared this way at all.
func operandDiffs(f *Function, a, b *Instr) ([]int, bool) {
	if a.Kind != b.Kind || len(a.Operands) != len(b.Operands) {
		return nil, false
	}
	switch a.Kind {
	case Enum, UncheckedEnumData:
		if a.Case != b.Case {
			return nil, false
		}
	case Literal:
		if a.LiteralKey != b.LiteralKey {
			return nil, false
		}
	}
	if (a.Result == NoValueID) != (b.Result == NoValueID) {
		return nil, false
	}
	if a.Result != NoValueID {
		at, bt := f.Value(a.Result).Type, f.Value(b.Result).Type
		if at == nil || bt == nil || at.String() != bt.String() {
			return nil, false
		}
	}
	var diffs []int
	for i := range a.Operands {
		if a.Operands[i] != b.Operands[i] {
			diffs = append(diffs, i)
		}
	}
	return diffs, true
}
