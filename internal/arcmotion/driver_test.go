package arcmotion_test

import (
	"context"
	"testing"

	"codemotion/internal/arcmotion"
)

// buildSinkableFunction returns a diamond where both arms pass a
// literal 7 to the join block's argument — the simplest shape Run's
// literal-sinking step collapses.
func buildSinkableFunction(name string) *arcmotion.Function {
	f := arcmotion.NewFunction(name)
	bb0 := f.NewBlock()
	bb1 := f.NewBlock()
	bb2 := f.NewBlock()
	bb3 := f.NewBlock()
	f.Entry = bb0.ID

	cond := f.AppendInstr(bb0, arcmotion.Other, nil, boolT)
	f.SetTerminator(bb0, arcmotion.Terminator{
		Kind:       arcmotion.TermCondBranch,
		Operands:   []arcmotion.ValueID{cond.Result},
		Successors: []arcmotion.BlockID{bb1.ID, bb2.ID},
		Args:       [][]arcmotion.ValueID{{}, {}},
	})

	lit1 := f.AppendInstr(bb1, arcmotion.Literal, nil, intT)
	lit1.LiteralKey = "7"
	branchTo(f, bb1, bb3.ID, lit1.Result)

	lit2 := f.AppendInstr(bb2, arcmotion.Literal, nil, intT)
	lit2.LiteralKey = "7"
	branchTo(f, bb2, bb3.ID, lit2.Result)

	blockArg := f.AddBlockArg(bb3, intT)
	f.AppendInstr(bb3, arcmotion.Other, []arcmotion.ValueID{blockArg}, nil)
	returnTerm(f, bb3)
	return f
}

func TestRun_SinksDuplicateLiteralAndIsIdempotent(t *testing.T) {
	f := buildSinkableFunction("run_sinkable")

	stats, changed := arcmotion.Run(f, arcmotion.Options{})
	if !changed {
		t.Fatalf("expected the first run to report a change")
	}
	if stats.NumSunk == 0 {
		t.Fatalf("expected NumSunk > 0, got %+v", stats)
	}

	_, changedAgain := arcmotion.Run(f, arcmotion.Options{})
	if changedAgain {
		t.Fatalf("expected the second run over the fixed point to report no change")
	}
}

// TestRun_DisableSILRRCodeMotionSkipsRCSteps uses a single, predecessor-
// less block so steps 1-3 have nothing to do regardless of the flag;
// only a retained-but-otherwise-idle object sits there for the RC
// steps to (not) touch.
func TestRun_DisableSILRRCodeMotionSkipsRCSteps(t *testing.T) {
	f := arcmotion.NewFunction("run_disabled_rc")
	b := f.NewBlock()
	f.Entry = b.ID

	obj := f.AppendInstr(b, arcmotion.Other, nil, objT)
	f.AppendInstr(b, arcmotion.StrongRetain, []arcmotion.ValueID{obj.Result}, nil)
	returnTerm(f, b)

	_, changed := arcmotion.Run(f, arcmotion.Options{DisableSILRRCodeMotion: true})
	if changed {
		t.Fatalf("expected no change with RC code motion disabled and nothing else to sink")
	}
}

func TestRunModule_AggregatesStatsAcrossFunctions(t *testing.T) {
	f1 := buildSinkableFunction("run_module_a")
	f2 := buildSinkableFunction("run_module_b")

	total, err := arcmotion.RunModule(context.Background(), []*arcmotion.Function{f1, f2}, arcmotion.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total.NumSunk != 2 {
		t.Fatalf("expected NumSunk=2 (one per function), got %d", total.NumSunk)
	}
}

func TestRunModule_EmptyIsNoop(t *testing.T) {
	total, err := arcmotion.RunModule(context.Background(), nil, arcmotion.Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if total != (arcmotion.Stats{}) {
		t.Fatalf("expected zero stats for an empty module, got %+v", total)
	}
}
