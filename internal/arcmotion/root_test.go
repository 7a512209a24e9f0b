package arcmotion_test

import (
	"testing"

	"codemotion/internal/arcmotion"
)

// TestRootOfValueShallow_SinglePredecessorBranch builds:
//
//	bb0: %0 = other()
//	     br bb1(%0)
//	bb1(%1: Obj):
//	     strong_retain %1
//	     return
//
// and checks that %1's shallow root resolves back to %0, since bb1 has
// exactly one predecessor and receives %0 as its sole argument.
func TestRootOfValueShallow_SinglePredecessorBranch(t *testing.T) {
	f := arcmotion.NewFunction("root_single_pred")
	bb0 := f.NewBlock()
	bb1 := f.NewBlock()
	f.Entry = bb0.ID

	producer := f.AppendInstr(bb0, arcmotion.Other, nil, objT)
	blockArg := f.AddBlockArg(bb1, objT)
	branchTo(f, bb0, bb1.ID, producer.Result)

	retain := f.AppendInstr(bb1, arcmotion.StrongRetain, []arcmotion.ValueID{blockArg}, nil)
	returnTerm(f, bb1)

	preds := arcmotion.Predecessors(f)
	root := arcmotion.RootOfValueShallow(f, preds, retain.Operands[0])
	if root != producer.Result {
		t.Fatalf("expected root %v, got %v", producer.Result, root)
	}
}

// TestRootOfValueShallow_MultiplePredecessorsUnchanged builds a diamond
// (bb0 splits to bb1/bb2, both rejoin at bb3) and checks that bb3's
// block argument is left alone, since it has two predecessors.
func TestRootOfValueShallow_MultiplePredecessorsUnchanged(t *testing.T) {
	f := arcmotion.NewFunction("root_multi_pred")
	bb0 := f.NewBlock()
	bb1 := f.NewBlock()
	bb2 := f.NewBlock()
	bb3 := f.NewBlock()
	f.Entry = bb0.ID

	blockArg := f.AddBlockArg(bb3, objT)

	cond := f.AppendInstr(bb0, arcmotion.Other, nil, boolT)
	f.SetTerminator(bb0, arcmotion.Terminator{
		Kind:       arcmotion.TermCondBranch,
		Operands:   []arcmotion.ValueID{cond.Result},
		Successors: []arcmotion.BlockID{bb1.ID, bb2.ID},
		Args:       [][]arcmotion.ValueID{{}, {}},
	})

	p0 := f.AppendInstr(bb1, arcmotion.Other, nil, objT)
	branchTo(f, bb1, bb3.ID, p0.Result)

	p1 := f.AppendInstr(bb2, arcmotion.Other, nil, objT)
	branchTo(f, bb2, bb3.ID, p1.Result)

	returnTerm(f, bb3)

	preds := arcmotion.Predecessors(f)
	root := arcmotion.RootOfValueShallow(f, preds, blockArg)
	if root != blockArg {
		t.Fatalf("expected root unchanged for multi-predecessor block arg, got %v", root)
	}
}

// TestCanonicalizeRefCountInstrs_RewritesOperandToRoot exercises the
// CanonicalizeRefCountInstrs driver on top of the same single-predecessor
// shape: the retain's operand should end up pointing at the producer
// directly rather than at bb1's block argument.
func TestCanonicalizeRefCountInstrs_RewritesOperandToRoot(t *testing.T) {
	f := arcmotion.NewFunction("canon_single_pred")
	bb0 := f.NewBlock()
	bb1 := f.NewBlock()
	f.Entry = bb0.ID

	producer := f.AppendInstr(bb0, arcmotion.Other, nil, objT)
	blockArg := f.AddBlockArg(bb1, objT)
	branchTo(f, bb0, bb1.ID, producer.Result)

	retain := f.AppendInstr(bb1, arcmotion.StrongRetain, []arcmotion.ValueID{blockArg}, nil)
	returnTerm(f, bb1)

	preds := arcmotion.Predecessors(f)
	changed := arcmotion.CanonicalizeRefCountInstrs(f, preds, bb1)
	if !changed {
		t.Fatalf("expected CanonicalizeRefCountInstrs to report a change")
	}
	if retain.Operands[0] != producer.Result {
		t.Fatalf("expected retain operand rewritten to %v, got %v", producer.Result, retain.Operands[0])
	}
}
