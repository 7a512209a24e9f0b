package arcmotion

// SinkCodeFromPredecessors merges identical tail sequences shared by
// every predecessor of b into b itself,
// rewriting operands through block arguments when predecessors only
// agree up to a move. Returns whether anything changed.
func SinkCodeFromPredecessors(f *Function, preds map[BlockID][]BlockID, b *Block) bool {
	ps := preds[b.ID]
	if len(ps) == 0 {
		return false
	}
	for _, pid := range ps {
		p := f.Block(pid)
		for _, s := range p.Term.Successors {
			if s != b.ID {
				return false
			}
		}
	}

	valueToArgIdx := buildValueToArgIdx(f, ps, b)
	firstPred := f.Block(ps[0])
	changed := false

	for {
		sunk, progressed := trySinkOneCandidate(f, preds, firstPred, ps, b, valueToArgIdx)
		if sunk {
			changed = true
			continue // restart the scan with a fresh budget
		}
		if !progressed {
			break // aborted: hit an unmatched barrier, or ran out of budget/instructions
		}
	}
	return changed
}

// buildValueToArgIdx maps every value a Branch-terminated predecessor
// passes to b, keyed by (value, that predecessor), to the argument
// index it is passed for.
func buildValueToArgIdx(f *Function, ps []BlockID, b *Block) ValueToArgIdx {
	m := ValueToArgIdx{}
	for _, pid := range ps {
		p := f.Block(pid)
		if p.Term.Kind != TermBranch {
			continue
		}
		succIdx := p.Term.successorIndexOf(b.ID)
		if succIdx < 0 || succIdx >= len(p.Term.Args) {
			continue
		}
		for argIdx, v := range p.Term.Args[succIdx] {
			m[ValueBlockKey{V: v, PB: pid}] = argIdx
		}
	}
	return m
}

// trySinkOneCandidate scans firstPred backward from its terminator with
// a fresh budget. It returns (sunk, progressed): sunk is true if a
// candidate was fully matched and moved; progressed is false only when
// the whole block's sinking must stop (unmatched barrier, or the scan
// exhausted its budget/instructions without finding anything to sink).
func trySinkOneCandidate(f *Function, preds map[BlockID][]BlockID, firstPred *Block, ps []BlockID, b *Block, valueToArgIdx ValueToArgIdx) (sunk, progressed bool) {
	budget := sinkSearchWindow
	for i := len(firstPred.Instrs) - 1; i >= 0; i-- {
		cand := f.Instr(firstPred.Instrs[i])
		if cand.erased {
			continue
		}
		if cand.IsSinkBarrier() && !cand.Sinkable(f) {
			return false, false
		}
		if budget == 0 {
			return false, false
		}
		budget--

		if !cand.Sinkable(f) {
			continue
		}

		rel := RelUnknown
		matches := make([]*Instr, 0, len(ps)-1)
		allMatched := true
		for _, pid := range ps[1:] {
			p := f.Block(pid)
			m, found := FindIdenticalInBlock(f, p, cand, valueToArgIdx, &rel)
			if !found {
				allMatched = false
				break
			}
			matches = append(matches, m)
		}

		if !allMatched {
			if cand.IsSinkBarrier() {
				return false, false
			}
			continue
		}

		f.MoveInstr(cand, b, 0)
		if rel == RelEqualAfterMove {
			for opIdx, v := range cand.Operands {
				if argIdx, ok := valueToArgIdx[ValueBlockKey{V: v, PB: firstPred.ID}]; ok && argIdx < len(b.Args) {
					f.SetOperand(cand, opIdx, b.Args[argIdx])
				}
			}
		}
		for _, m := range matches {
			if m.Result != NoValueID {
				f.ReplaceAllUses(m.Result, cand.Result)
			}
			f.EraseInstr(m)
		}
		return true, true
	}
	return false, false
}
