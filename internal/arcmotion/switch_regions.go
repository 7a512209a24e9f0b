package arcmotion

// HoistDecrementsIntoSwitchRegions pushes a release sitting at the head
// of the block a switch_enum's arms all merge into back into each arm,
// operating on that arm's unwrapped payload instead of the generic enum
// value. state is b's merged dataflow entry state: the release's
// operand's case history must cover every one of b's predecessors for
// the hoist to fire, which a default-targeting predecessor — never
// assigned a case by TransferTerminatorToSuccessor — rules out on its
// own.
func HoistDecrementsIntoSwitchRegions(f *Function, preds map[BlockID][]BlockID, state *BBEnumTagDataflowState, b *Block, releaseIdx int) bool {
	if releaseIdx != 0 || len(b.Instrs) == 0 {
		return false
	}
	release := f.Instr(b.Instrs[releaseIdx])
	if release.Kind != StrongRelease && release.Kind != ReleaseValue {
		return false
	}
	ps := preds[b.ID]
	if len(ps) == 0 {
		return false
	}

	switchVal := release.Operands[0]
	predCase, ok := fullPredecessorCoverage(state, switchVal, ps)
	if !ok {
		return false
	}
	if f.Value(switchVal).Type == nil {
		return false // payload releases cannot be built without the enum's type
	}

	for _, p := range ps {
		arm := f.Block(p)
		if arm == nil || IsARCInertTrapBB(arm) {
			continue
		}
		bld := AtBlockTail(f, arm)
		CreateRefCountOpForPayload(f, bld, release, predCase[p], switchVal)
	}
	f.EraseInstr(release)
	return true
}

// SinkIncrementsOutOfSwitchRegions looks for a value tracked by state
// whose case history covers every predecessor of b and for which every
// non-trivial-payload predecessor retains its own unwrapped payload; it
// erases those per-arm retains and inserts one RetainValue of the full
// enum value at b's head.
func SinkIncrementsOutOfSwitchRegions(f *Function, preds map[BlockID][]BlockID, state *BBEnumTagDataflowState, b *Block) bool {
	ps := preds[b.ID]
	if len(ps) == 0 {
		return false
	}
	for _, v := range state.TrackedCaseValues() {
		if sinkIncrementsForValue(f, ps, state, b, v) {
			return true
		}
	}
	return false
}

// fullPredecessorCoverage reports whether v's case history names every
// block in ps exactly once, returning the per-predecessor case map when
// it does.
func fullPredecessorCoverage(state *BBEnumTagDataflowState, v ValueID, ps []BlockID) (map[BlockID]EnumCase, bool) {
	history := state.CaseHistory(v)
	if len(history) != len(ps) {
		return nil, false
	}
	predCase := make(map[BlockID]EnumCase, len(history))
	for _, pc := range history {
		predCase[pc.Pred] = pc.Case
	}
	for _, p := range ps {
		if _, ok := predCase[p]; !ok {
			return nil, false
		}
	}
	return predCase, true
}

func sinkIncrementsForValue(f *Function, ps []BlockID, state *BBEnumTagDataflowState, b *Block, switchVal ValueID) bool {
	predCase, ok := fullPredecessorCoverage(state, switchVal, ps)
	if !ok {
		return false
	}
	switchType := f.Value(switchVal).Type
	if switchType == nil {
		return false
	}

	var kind InstrKind
	kindSet := false
	var found []*Instr
	for _, p := range ps {
		arm := f.Block(p)
		if arm == nil {
			return false
		}
		c := predCase[p]
		payloadType := switchType.EnumElementType(c)
		if payloadType == nil || payloadType.IsTrivial() {
			continue // nothing to retain for a trivial payload
		}
		in, ok := findPayloadRetain(f, arm, switchVal, c)
		if !ok {
			return false
		}
		if !kindSet {
			kind, kindSet = in.Kind, true
		} else if in.Kind != kind {
			return false
		}
		found = append(found, in)
	}
	if len(found) == 0 {
		return false
	}

	for _, in := range found {
		if in.Result != NoValueID && !f.UseEmpty(in.Result) {
			return false
		}
	}
	for _, in := range found {
		f.EraseInstr(in)
	}
	bld := AtBlockHead(f, b)
	bld.CreateRetainValue(switchVal)
	return true
}

// findPayloadRetain locates, within arm, the last retain operating
// directly on switchVal's unwrapped payload for case c. It reports no
// match when a release of that payload or of switchVal follows the
// retain in arm.
func findPayloadRetain(f *Function, arm *Block, switchVal ValueID, c EnumCase) (*Instr, bool) {
	for i := len(arm.Instrs) - 1; i >= 0; i-- {
		in := f.Instr(arm.Instrs[i])
		if in.erased || (in.Kind != StrongRetain && in.Kind != RetainValue) {
			continue
		}
		operand := f.Value(in.Operands[0])
		if operand == nil || operand.Kind != ValueInstrResult {
			continue
		}
		src := f.Instr(operand.DefInstr)
		if src == nil || src.erased || src.Kind != UncheckedEnumData {
			continue
		}
		if src.Case == c && len(src.Operands) > 0 && src.Operands[0] == switchVal {
			for _, laterID := range arm.Instrs[i+1:] {
				later := f.Instr(laterID)
				if !later.erased && (later.Kind == StrongRelease || later.Kind == ReleaseValue) &&
					(later.Operands[0] == in.Operands[0] || later.Operands[0] == switchVal) {
					return nil, false
				}
			}
			return in, true
		}
	}
	return nil, false
}
