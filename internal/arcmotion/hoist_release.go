package arcmotion

// HoistDecrementsToPredecessors moves a release sitting at the head of
// b back into every predecessor. In each
// predecessor, a cancelable retain of the same RC-identity root found
// within the sink-search window (no intervening barrier) is erased
// instead of materializing a new release there — otherwise a release of
// the same kind is inserted just before that predecessor's terminator.
// Every predecessor must have b as its only successor, and the released
// value must not be one of b's own block arguments. The hoist fires
// whenever b has at least one predecessor; it does not check whether a
// cancelable retain exists in some but not all predecessors.
// releaseIdx must name the first instruction of b.
func HoistDecrementsToPredecessors(f *Function, aa AliasAnalysis, preds map[BlockID][]BlockID, b *Block, releaseIdx int) bool {
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
	for _, pid := range ps {
		if len(f.Block(pid).Term.Successors) != 1 {
			return false
		}
	}

	rcVal := release.Operands[0]
	if v := f.Value(rcVal); v.Kind == ValueBlockArg && v.DefBlock == b.ID {
		return false
	}
	for _, pid := range ps {
		p := f.Block(pid)
		if cand, found := findCancelableRetain(f, p, rcVal); found {
			f.EraseInstr(cand)
			continue
		}
		bld := AtBlockTail(f, p)
		bld.insert(release.Kind, []ValueID{rcVal}, nil)
	}

	f.EraseInstr(release)
	return true
}

// findCancelableRetain scans p backward from its terminator, budget
// sinkSearchWindow, for a use-empty retain of rcVal's RC-identity root
// with no intervening sink barrier.
func findCancelableRetain(f *Function, p *Block, rcVal ValueID) (*Instr, bool) {
	rc := defaultRCIdentity{}
	root := rc.GetRCIdentityRoot(f, rcVal)
	budget := sinkSearchWindow
	for i := len(p.Instrs) - 1; i >= 0; i-- {
		in := f.Instr(p.Instrs[i])
		if in.erased {
			continue
		}
		isRetain := in.Kind == StrongRetain || in.Kind == RetainValue
		if in.IsSinkBarrier() && !isRetain {
			return nil, false
		}
		if budget == 0 {
			return nil, false
		}
		budget--
		if isRetain && f.UseEmpty(in.Result) && rc.GetRCIdentityRoot(f, in.Operands[0]) == root {
			return in, true
		}
	}
	return nil, false
}

// isRetainAvailableInSomeButNotAllPredecessors reports whether a
// cancelable retain of v's RC-identity root is reachable, within the
// sink-search window, in at least one but not every predecessor in ps —
// the condition under which hoisting a release into these predecessors
// would cancel asymmetrically. No transform in this package calls it.
func isRetainAvailableInSomeButNotAllPredecessors(f *Function, ps []BlockID, v ValueID) bool {
	if len(ps) < 2 {
		return false
	}
	count := 0
	for _, pid := range ps {
		if _, found := findCancelableRetain(f, f.Block(pid), v); found {
			count++
		}
	}
	return count > 0 && count < len(ps)
}
