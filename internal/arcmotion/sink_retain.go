package arcmotion

// SinkRefCountIncrement pushes a retain as far forward through the CFG
// as it can legally go, trying five strategies and taking the first that
// applies. Strategy 3 is checked first; the others are tried in the
// order listed.
//
//  1. across a no-default switch_enum whose discriminated value's
//     RC-identity root matches the retain's and whose successors are
//     all reached solely from this block: materialize the retain on
//     each live case's unwrapped payload instead (via
//     CreateRefCountOpForPayload), skipping trivial payloads and
//     IsARCInertTrapBB successors. Only a RetainValue qualifies — a
//     StrongRetain has no enum payload to specialize into.
//  2. across a cond_br whose condition is a select_enum on the retained
//     value: the same idea for a two-way split, payload-specializing
//     the true arm on the selected case and, for a two-case enum, the
//     false arm on the other case.
//  3. within the block: when an ARC decrement/check of the same value
//     follows the retain, move the retain to just before it, provided
//     no sink barrier lies in between; with a barrier in between the
//     retain stays where it is and no other strategy is tried.
//  4. across a general terminator with more than one successor, again
//     requiring every successor be reached solely from this block:
//     materialize one copy of the retain at the head of every successor
//     that is not an inert trap block.
//  5. otherwise, move the retain to just before the block's terminator.
//
// retainIdx is the index of the retain (StrongRetain or RetainValue)
// instruction within b.Instrs.
func SinkRefCountIncrement(f *Function, aa AliasAnalysis, rc RCIdentityFunctionInfo, preds map[BlockID][]BlockID, b *Block, retainIdx int) bool {
	retain := f.Instr(b.Instrs[retainIdx])
	if retain.Kind != StrongRetain && retain.Kind != RetainValue {
		return false
	}

	// Case 3 takes priority within the block: if something between the
	// retain and the terminator already decrements or checks the same
	// value with no barrier in between, sinking is limited to just
	// before that point and nothing further (CFG-crossing) applies.
	if sunkWithinBlock, stop := sinkWithinBlock(f, aa, b, retainIdx); stop {
		return sunkWithinBlock
	}

	rcVal := retain.Operands[0]

	if sinkAcrossSwitchEnum(f, rc, preds, b, retain, rcVal) {
		return true
	}
	if sinkAcrossCondBranch(f, preds, b, retain, rcVal) {
		return true
	}
	if sinkAcrossGeneralTerminator(f, preds, b, retain) {
		return true
	}

	// Fallback: move to just before the terminator, if not already there.
	if retainIdx == len(b.Instrs)-1 {
		return false
	}
	f.MoveInstr(retain, b, len(b.Instrs))
	return true
}

// sinkWithinBlock scans forward from retainIdx+1. It returns stop=true
// when the within-block rule applies at all (whether or not it moved
// anything), since finding a decrement/check of the same value or a
// generic barrier both preempt the CFG-crossing strategies.
func sinkWithinBlock(f *Function, aa AliasAnalysis, b *Block, retainIdx int) (changed, stop bool) {
	retain := f.Instr(b.Instrs[retainIdx])
	rcVal := retain.Operands[0]

	dest, found := aa.ValueHasARCDecrementOrCheckInInstructionRange(f, rcVal, InstrRange{
		Block: b.ID, Begin: retainIdx + 1, End: len(b.Instrs),
	})
	if !found {
		return false, false
	}

	destIdx := -1
	for i, id := range b.Instrs {
		if id == dest {
			destIdx = i
			break
		}
	}
	if destIdx < 0 || destIdx <= retainIdx+1 {
		return false, true // already adjacent, or not found: nothing to move, but this rule still owns the decision
	}
	for i := retainIdx + 1; i < destIdx; i++ {
		in := f.Instr(b.Instrs[i])
		if !in.erased && in.IsSinkBarrier() {
			return false, true // a real barrier blocks even this much; give up on sinking entirely
		}
	}
	// MoveInstr removes the retain before inserting it, which shifts dest
	// down by one slot; destIdx-1 is the slot just before dest.
	f.MoveInstr(retain, b, destIdx-1)
	return true, true
}

func sinkAcrossSwitchEnum(f *Function, rc RCIdentityFunctionInfo, preds map[BlockID][]BlockID, b *Block, retain *Instr, rcVal ValueID) bool {
	if b.Term.Kind != TermSwitchEnum || b.Term.HasDefault {
		return false
	}
	if retain.Kind != RetainValue {
		return false
	}
	if len(b.Term.Operands) == 0 {
		return false
	}
	switchVal := b.Term.Operands[0]
	if rc.GetRCIdentityRoot(f, switchVal) != rc.GetRCIdentityRoot(f, rcVal) {
		return false
	}
	if f.Value(switchVal).Type == nil {
		return false // payload retains cannot be built without the enum's type
	}
	return materializeInSuccessors(f, preds, b, retain, func(succIdx int, bld *Builder) {
		if succIdx < len(b.Term.Cases) {
			CreateRefCountOpForPayload(f, bld, retain, b.Term.Cases[succIdx], switchVal)
			return
		}
		bld.CreateStrongRetain(switchVal)
	})
}

// sinkAcrossCondBranch handles a cond_br whose condition was produced by
// a select_enum on the retained value: the true arm gets a retain
// specialized to the element select_enum tested for, and the false arm
// gets one specialized to the enum's other element, when it has exactly
// two. An enum with more than two cases can't be summarized by a single
// "other" element, so the false arm is left a plain retain of rcVal.
func sinkAcrossCondBranch(f *Function, preds map[BlockID][]BlockID, b *Block, retain *Instr, rcVal ValueID) bool {
	if b.Term.Kind != TermCondBranch || len(b.Term.Successors) != 2 {
		return false
	}
	if len(b.Term.Operands) == 0 {
		return false
	}
	cond := f.Value(b.Term.Operands[0])
	if cond == nil || cond.Kind != ValueInstrResult {
		return false
	}
	sel := f.Instr(cond.DefInstr)
	if sel == nil || sel.erased || sel.Kind != SelectEnumValue || len(sel.Operands) == 0 {
		return false
	}
	if sel.Operands[0] != rcVal {
		return false
	}
	trueCase := sel.Case

	enumType := f.Value(rcVal).Type
	if enumType == nil {
		return false // payload retains cannot be built without the enum's type
	}
	falseCase, haveFalseCase := enumType.OtherEnumCase(trueCase)

	return materializeInSuccessors(f, preds, b, retain, func(succIdx int, bld *Builder) {
		if succIdx == 0 {
			CreateRefCountOpForPayload(f, bld, retain, trueCase, rcVal)
			return
		}
		if haveFalseCase {
			CreateRefCountOpForPayload(f, bld, retain, falseCase, rcVal)
			return
		}
		bld.insert(retain.Kind, []ValueID{rcVal}, nil)
	})
}

func sinkAcrossGeneralTerminator(f *Function, preds map[BlockID][]BlockID, b *Block, retain *Instr) bool {
	if len(b.Term.Successors) <= 1 {
		return false
	}
	return materializeInSuccessors(f, preds, b, retain, func(succIdx int, bld *Builder) {
		bld.insert(retain.Kind, retain.Operands, nil)
	})
}

// materializeInSuccessors drops the erased original retain and inserts
// one copy at the head of every successor that isn't an inert trap
// block, via emit(successorIndex, builder). It requires every successor
// it would touch to be reached solely from b — a successor with another
// predecessor would pick up a retain on a path that never had one,
// which is a net new ref-count, not a move — and bails entirely rather
// than materializing a partial set if that doesn't hold.
func materializeInSuccessors(f *Function, preds map[BlockID][]BlockID, b *Block, retain *Instr, emit func(succIdx int, bld *Builder)) bool {
	if !f.UseEmpty(retain.Result) {
		return false
	}
	for _, succID := range b.Term.Successors {
		succ := f.Block(succID)
		if succ == nil || IsARCInertTrapBB(succ) {
			continue
		}
		ps := preds[succID]
		if len(ps) != 1 || ps[0] != b.ID {
			return false
		}
	}
	any := false
	for i, succID := range b.Term.Successors {
		succ := f.Block(succID)
		if succ == nil || IsARCInertTrapBB(succ) {
			continue
		}
		bld := AtBlockHead(f, succ)
		emit(i, bld)
		any = true
	}
	if !any {
		return false
	}
	f.EraseInstr(retain)
	return true
}
