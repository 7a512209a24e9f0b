package arcmotion

// PredCase records that predecessor block Pred asserted enum case Case
// for some value at a block's entry.
type PredCase struct {
	Pred BlockID
	Case EnumCase
}

// BBEnumTagDataflowState is the per-block dataflow fact the driver
// threads along the CFG: for every enum-typed value, which case (if
// any) is known to hold, plus the raw per-predecessor history even once
// the merged fact itself has been blotted by a conflict.
type BBEnumTagDataflowState struct {
	valueToCase    *BlotMap[ValueID, EnumCase]
	enumToCaseList *BlotMap[ValueID, []PredCase]
}

func NewBBEnumTagDataflowState() *BBEnumTagDataflowState {
	return &BBEnumTagDataflowState{
		valueToCase:    NewBlotMap[ValueID, EnumCase](),
		enumToCaseList: NewBlotMap[ValueID, []PredCase](),
	}
}

func (s *BBEnumTagDataflowState) Clone() *BBEnumTagDataflowState {
	return &BBEnumTagDataflowState{
		valueToCase:    s.valueToCase.Clone(),
		enumToCaseList: s.enumToCaseList.Clone(),
	}
}

// KnownCase reports the case known to hold for v, if any.
func (s *BBEnumTagDataflowState) KnownCase(v ValueID) (EnumCase, bool) {
	return s.valueToCase.Find(v)
}

// CaseHistory returns the per-predecessor case assertions recorded for
// v, including ones a later conflict has blotted out of KnownCase.
func (s *BBEnumTagDataflowState) CaseHistory(v ValueID) []PredCase {
	cur, _ := s.enumToCaseList.Find(v)
	return cur
}

func (s *BBEnumTagDataflowState) appendCaseList(v ValueID, pred BlockID, c EnumCase) {
	cur, _ := s.enumToCaseList.Find(v)
	cur = append(cur, PredCase{Pred: pred, Case: c})
	s.enumToCaseList.Set(v, cur)
}

// TrackedCaseValues returns every value this state carries case history
// for, in insertion order — the set SinkIncrementsOutOfSwitchRegions
// scans looking for a fully-covered switch region.
func (s *BBEnumTagDataflowState) TrackedCaseValues() []ValueID {
	all := s.enumToCaseList.All()
	out := make([]ValueID, 0, len(all))
	for _, e := range all {
		out = append(out, e.Key)
	}
	return out
}

// BBToStateMap holds one dataflow state per block, indexed by block ID.
type BBToStateMap map[BlockID]*BBEnumTagDataflowState

// TransferInstr folds one instruction's effect into state and, for a
// retain/release the state already has enough information to simplify,
// rewrites or erases it in place: an Enum construction establishes a
// known case for its result; UncheckedEnumData strengthens the known
// case of the enum it projects from, since extracting case c's payload
// is itself proof the enum holds c; a RetainValue/ReleaseValue on a
// value with a known case either erases outright (the case carries no
// payload) or rewrites to the equivalent payload operation via
// CreateRefCountOpForPayload. Reports whether it mutated the IR.
func TransferInstr(f *Function, state *BBEnumTagDataflowState, in *Instr) bool {
	switch in.Kind {
	case Enum:
		if in.Result != NoValueID {
			state.valueToCase.Set(in.Result, in.Case)
			state.appendCaseList(in.Result, NoBlockID, in.Case)
		}
		return false

	case UncheckedEnumData:
		if len(in.Operands) == 0 {
			return false
		}
		state.valueToCase.Set(in.Operands[0], in.Case)
		state.appendCaseList(in.Operands[0], NoBlockID, in.Case)
		return false

	case RetainValue, ReleaseValue:
		if len(in.Operands) == 0 {
			return false
		}
		c, ok := state.KnownCase(in.Operands[0])
		if !ok {
			return false
		}
		if c.HasPayload {
			if f.Value(in.Operands[0]).Type == nil {
				return false // the payload op cannot be built without the enum's type
			}
			bld := Before(f, in)
			CreateRefCountOpForPayload(f, bld, in, c, in.Operands[0])
		}
		f.EraseInstr(in)
		return true

	default:
		return false
	}
}

// TransferTerminatorToSuccessor folds the refinement a switch_enum
// terminator contributes to one successor's incoming state: along the
// edge for case term.Cases[succIdx], the switched value is known to
// hold exactly that case.
func TransferTerminatorToSuccessor(state *BBEnumTagDataflowState, from BlockID, term *Terminator, succIdx int) {
	if term.Kind != TermSwitchEnum || len(term.Operands) == 0 {
		return
	}
	if succIdx < 0 || succIdx >= len(term.Cases) {
		return
	}
	v := term.Operands[0]
	c := term.Cases[succIdx]
	state.valueToCase.Set(v, c)
	state.appendCaseList(v, from, c)
}

// MergeStates computes the entry state of a block from its
// predecessors' exit/edge states, listed in order alongside the block
// that produced each. On a case mismatch for some value between two
// predecessors, the merged valueToCase fact is blotted — no
// speculative single answer is recorded — but the enumToCaseList
// history for every contributing predecessor is kept regardless — the
// asymmetry downstream transforms (switch-region hoist/sink) rely on to
// still special-case individual incoming edges even when the merged
// block-entry fact is unknown. A value that some contributing
// predecessor has no known case for is blotted in both maps.
func MergeStates(order []BlockID, predStates map[BlockID]*BBEnumTagDataflowState) *BBEnumTagDataflowState {
	dst := NewBBEnumTagDataflowState()
	seen := make(map[ValueID]bool)
	for _, pred := range order {
		ps := predStates[pred]
		if ps == nil {
			continue
		}
		for _, e := range ps.valueToCase.All() {
			if !seen[e.Key] {
				seen[e.Key] = true
				dst.valueToCase.Set(e.Key, e.Value)
			} else if existing, ok := dst.valueToCase.Find(e.Key); !ok || existing != e.Value {
				dst.valueToCase.Blot(e.Key)
			}
			dst.appendCaseList(e.Key, pred, e.Value)
		}
	}
	for _, e := range dst.valueToCase.All() {
		for _, pred := range order {
			ps := predStates[pred]
			if ps == nil {
				continue
			}
			if _, ok := ps.valueToCase.Find(e.Key); !ok {
				dst.valueToCase.Blot(e.Key)
				dst.enumToCaseList.Blot(e.Key)
				break
			}
		}
	}
	return dst
}
