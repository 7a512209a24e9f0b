package arcmotion_test

import (
	"testing"

	"codemotion/internal/arcmotion"
)

// stateWithKnownCase builds a fresh single-block function containing
// one enum construction and folds it into a new dataflow state via
// TransferInstr, so the resulting known case comes from the same code
// path the driver uses rather than a test-only setter.
func stateWithKnownCase(t *testing.T, c arcmotion.EnumCase) (*arcmotion.BBEnumTagDataflowState, arcmotion.ValueID) {
	t.Helper()
	f := arcmotion.NewFunction("state_seed")
	b := f.NewBlock()
	f.Entry = b.ID
	enumVal := f.AppendInstr(b, arcmotion.Enum, nil, optionType(objT))
	enumVal.Case = c
	returnTerm(f, b)

	state := arcmotion.NewBBEnumTagDataflowState()
	arcmotion.TransferInstr(f, state, enumVal)
	return state, enumVal.Result
}

func TestMergeStates_AgreeingPredecessorsKeepKnownCase(t *testing.T) {
	p1, p2 := arcmotion.BlockID(1), arcmotion.BlockID(2)

	s1, v := stateWithKnownCase(t, someCase)
	s2, _ := stateWithKnownCase(t, someCase) // same ValueID(0) in its own single-block function

	merged := arcmotion.MergeStates([]arcmotion.BlockID{p1, p2}, map[arcmotion.BlockID]*arcmotion.BBEnumTagDataflowState{
		p1: s1, p2: s2,
	})

	got, ok := merged.KnownCase(v)
	if !ok || got != someCase {
		t.Fatalf("expected merged case %v, got %v (ok=%v)", someCase, got, ok)
	}
}

func TestMergeStates_ConflictingPredecessorsBlotButKeepHistory(t *testing.T) {
	p1, p2 := arcmotion.BlockID(1), arcmotion.BlockID(2)

	s1, v := stateWithKnownCase(t, someCase)
	s2, _ := stateWithKnownCase(t, noneCase)

	merged := arcmotion.MergeStates([]arcmotion.BlockID{p1, p2}, map[arcmotion.BlockID]*arcmotion.BBEnumTagDataflowState{
		p1: s1, p2: s2,
	})

	if _, ok := merged.KnownCase(v); ok {
		t.Fatalf("expected the merged fact to be blotted on conflict")
	}

	history := merged.CaseHistory(v)
	if len(history) != 2 {
		t.Fatalf("expected both predecessors' history preserved despite the blot, got %d entries", len(history))
	}
	byPred := map[arcmotion.BlockID]arcmotion.EnumCase{}
	for _, pc := range history {
		byPred[pc.Pred] = pc.Case
	}
	if byPred[p1] != someCase || byPred[p2] != noneCase {
		t.Fatalf("expected history to record each predecessor's own case, got %v", byPred)
	}
}

func TestTransferInstr_EnumConstructionSetsKnownCase(t *testing.T) {
	f := arcmotion.NewFunction("transfer_enum")
	b := f.NewBlock()
	f.Entry = b.ID

	opt := optionType(objT)
	enumVal := f.AppendInstr(b, arcmotion.Enum, nil, opt)
	enumVal.Case = someCase
	returnTerm(f, b)

	state := arcmotion.NewBBEnumTagDataflowState()
	arcmotion.TransferInstr(f, state, enumVal)

	got, ok := state.KnownCase(enumVal.Result)
	if !ok || got != someCase {
		t.Fatalf("expected known case %v for the enum's result, got %v (ok=%v)", someCase, got, ok)
	}
}

// TestTransferInstr_ReleaseValueOnNoPayloadCaseErases checks the S4
// scenario for a case with no payload: release_value of an enum known
// to hold that case needs no refcounting at all and is dropped.
func TestTransferInstr_ReleaseValueOnNoPayloadCaseErases(t *testing.T) {
	f := arcmotion.NewFunction("transfer_release_no_payload")
	b := f.NewBlock()
	f.Entry = b.ID

	opt := optionType(objT)
	enumVal := f.AppendInstr(b, arcmotion.Enum, nil, opt)
	enumVal.Case = noneCase
	release := f.AppendInstr(b, arcmotion.ReleaseValue, []arcmotion.ValueID{enumVal.Result}, nil)
	returnTerm(f, b)

	state := arcmotion.NewBBEnumTagDataflowState()
	arcmotion.TransferInstr(f, state, enumVal)

	if !arcmotion.TransferInstr(f, state, release) {
		t.Fatalf("expected a change")
	}
	for _, id := range b.Instrs {
		if id == release.ID {
			t.Fatalf("expected the release erased, payload-less case needs no refcounting")
		}
	}
}

// TestTransferInstr_RetainValueOnPayloadCaseRewritesToPayloadRetain
// checks the S4 scenario for a payload-bearing case: retain_value of an
// enum known to hold that case rewrites to a retain of the unwrapped
// payload instead of the whole enum value.
func TestTransferInstr_RetainValueOnPayloadCaseRewritesToPayloadRetain(t *testing.T) {
	f := arcmotion.NewFunction("transfer_retain_payload")
	b := f.NewBlock()
	f.Entry = b.ID

	opt := optionType(objT)
	enumVal := f.AppendInstr(b, arcmotion.Enum, nil, opt)
	enumVal.Case = someCase
	retain := f.AppendInstr(b, arcmotion.RetainValue, []arcmotion.ValueID{enumVal.Result}, nil)
	returnTerm(f, b)

	state := arcmotion.NewBBEnumTagDataflowState()
	arcmotion.TransferInstr(f, state, enumVal)

	if !arcmotion.TransferInstr(f, state, retain) {
		t.Fatalf("expected a change")
	}
	for _, id := range b.Instrs {
		if id == retain.ID {
			t.Fatalf("expected the original retain_value erased")
		}
	}
	if len(b.Instrs) != 3 {
		t.Fatalf("expected enum + unchecked_enum_data + strong_retain, got %d instrs", len(b.Instrs))
	}
	payloadRetain := f.Instr(b.Instrs[2])
	if payloadRetain.Kind != arcmotion.StrongRetain {
		t.Fatalf("expected a strong_retain of the unwrapped (reference-counted) payload, got %v", payloadRetain.Kind)
	}
}

func TestTransferTerminatorToSuccessor_RefinesSwitchEnumEdge(t *testing.T) {
	f := arcmotion.NewFunction("transfer_switch")
	b := f.NewBlock()
	someArm := f.NewBlock()
	noneArm := f.NewBlock()
	f.Entry = b.ID

	opt := optionType(objT)
	enumVal := f.AppendInstr(b, arcmotion.Enum, nil, opt)
	f.SetTerminator(b, arcmotion.Terminator{
		Kind:       arcmotion.TermSwitchEnum,
		Operands:   []arcmotion.ValueID{enumVal.Result},
		Successors: []arcmotion.BlockID{someArm.ID, noneArm.ID},
		Args:       [][]arcmotion.ValueID{{}, {}},
		Cases:      []arcmotion.EnumCase{someCase, noneCase},
	})
	returnTerm(f, someArm)
	returnTerm(f, noneArm)

	state := arcmotion.NewBBEnumTagDataflowState()
	arcmotion.TransferTerminatorToSuccessor(state, b.ID, &b.Term, 0)

	got, ok := state.KnownCase(enumVal.Result)
	if !ok || got != someCase {
		t.Fatalf("expected the some-arm edge to refine to %v, got %v (ok=%v)", someCase, got, ok)
	}
}
