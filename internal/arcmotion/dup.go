package arcmotion

// sinkSearchWindow bounds how many non-barrier instructions
// FindIdenticalInBlock inspects backward from a block's terminator.
const sinkSearchWindow = 6

// OperandRelation records how every compared operand pair in one
// FindIdenticalInBlock invocation relates: either they are literally
// the same SSA value, or they are each a block argument's predecessor
// supply at the same argument index (so sinking can rewrite both to
// read that block argument instead).
type OperandRelation uint8

const (
	RelUnknown OperandRelation = iota
	RelAlwaysEqual
	RelEqualAfterMove
)

// ValueBlockKey is the key valueToArgIdx is built over: "value v, as
// supplied by predecessor block pb's Branch terminator".
type ValueBlockKey struct {
	V  ValueID
	PB BlockID
}

// ValueToArgIdx maps (value, supplying predecessor block) to the
// argument index of the successor block that value is passed for.
type ValueToArgIdx map[ValueBlockKey]int

// FindIdenticalInBlock scans b backward from its terminator, budget
// sinkSearchWindow non-barrier instructions, for a sinkable instruction
// structurally identical to target under one consistent operand
// relation. rel is both input (prior commitment from earlier calls in
// the same sinkCodeFromPredecessors invocation) and output.
func FindIdenticalInBlock(f *Function, b *Block, target *Instr, valueToArgIdx ValueToArgIdx, rel *OperandRelation) (*Instr, bool) {
	budget := sinkSearchWindow
	for i := len(b.Instrs) - 1; i >= 0; i-- {
		in := f.Instr(b.Instrs[i])
		if in.erased {
			continue
		}
		if in.IsSinkBarrier() {
			break
		}
		if budget == 0 {
			break
		}
		budget--

		if in.ID == target.ID {
			continue
		}
		if !in.Sinkable(f) {
			continue
		}
		if matchInstr(f, target, in, valueToArgIdx, rel) {
			return in, true
		}
	}
	return nil, false
}

func matchInstr(f *Function, target, cand *Instr, valueToArgIdx ValueToArgIdx, rel *OperandRelation) bool {
	if target.Kind != cand.Kind {
		return false
	}
	if len(target.Operands) != len(cand.Operands) {
		return false
	}
	if target.Result != NoValueID || cand.Result != NoValueID {
		if target.Result == NoValueID || cand.Result == NoValueID {
			return false
		}
		tt := f.Value(target.Result).Type
		ct := f.Value(cand.Result).Type
		if tt == nil || ct == nil || tt.String() != ct.String() {
			return false
		}
	}
	switch target.Kind {
	case Enum, UncheckedEnumData:
		if target.Case != cand.Case {
			return false
		}
	case Literal:
		if target.LiteralKey != cand.LiteralKey {
			return false
		}
	}

	localRel := *rel
	for idx := range target.Operands {
		a := target.Operands[idx]
		bOp := cand.Operands[idx]
		if a == bOp {
			continue
		}
		aIdx, aok := valueToArgIdx[ValueBlockKey{V: a, PB: target.Block}]
		bIdx, bok := valueToArgIdx[ValueBlockKey{V: bOp, PB: cand.Block}]
		if !aok || !bok || aIdx != bIdx {
			return false
		}
		switch localRel {
		case RelUnknown:
			localRel = RelEqualAfterMove
		case RelAlwaysEqual:
			return false
		case RelEqualAfterMove:
			// consistent, keep going
		}
	}
	if localRel == RelUnknown {
		localRel = RelAlwaysEqual
	}
	*rel = localRel
	return true
}
