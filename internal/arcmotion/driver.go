package arcmotion

import (
	"context"

	"golang.org/x/sync/errgroup"

	"codemotion/internal/trace"
)

// Options configures one Run over a function.
type Options struct {
	// HoistReleases enables HoistDecrementsToPredecessors and
	// HoistDecrementsIntoSwitchRegions. Off by default: hoisting a
	// release earlier can pessimize code that never reaches the
	// decrement on most paths.
	HoistReleases bool
	// DisableSILRRCodeMotion skips the local RC transforms,
	// SinkRefCountIncrement and HoistDecrementsToPredecessors. The
	// switch-region transforms, TransferInstr's retain/release
	// simplification, root canonicalization and the generic sinking
	// passes run either way.
	DisableSILRRCodeMotion bool
}

// Stats tallies what one Run changed.
type Stats struct {
	NumSunk                  int // generic/argument/literal code sunk into a block
	NumHoisted               int // decrements hoisted to predecessors or into switch arms
	NumRefCountOpsSimplified int // retains/releases pushed across the CFG or payload-specialized
}

func (s *Stats) add(o Stats) {
	s.NumSunk += o.NumSunk
	s.NumHoisted += o.NumHoisted
	s.NumRefCountOpsSimplified += o.NumRefCountOpsSimplified
}

// Run performs one full pass over f, iterating blocks in reverse
// postorder and threading an enum-tag dataflow state through the walk:
// per block, merge the predecessors' edge states, optionally hoist
// decrements into and sink increments out of switch regions using that
// merged state, canonicalize and sink code as usual, fold each
// instruction's effect into the state (simplifying any retain/release
// of a now-statically-known enum case along the way), then run the
// local retain-sinking and decrement-hoisting transforms. Returns
// accumulated stats plus whether anything changed.
func Run(f *Function, opts Options) (Stats, bool) {
	var stats Stats
	changed := false

	rpo := ComputePostOrder(f)
	preds := Predecessors(f)
	rc := defaultRCIdentity{}
	aa := newDefaultAliasAnalysis(rc)

	// exitStates holds, per block, the dataflow state after that block's
	// own instructions have been folded in (but before its terminator's
	// edge-specific refinement) — what successors merge from.
	exitStates := make(map[BlockID]*BBEnumTagDataflowState, rpo.Size())
	states := make(BBToStateMap, rpo.Size())

	for _, id := range rpo.RPOBlocks() {
		b := f.Block(id)

		// Merge predecessor states: each predecessor's exit state,
		// refined along the specific edge it takes into b.
		ps := preds[id]
		edgeStates := make(map[BlockID]*BBEnumTagDataflowState, len(ps))
		multiSucc := false
		for _, p := range ps {
			if p == id {
				continue // self-loop: this predecessor contributes nothing
			}
			pExit, ok := exitStates[p]
			if !ok {
				continue // back-edge to a block not yet visited in RPO
			}
			pBlock := f.Block(p)
			if len(pBlock.Term.Successors) > 1 {
				multiSucc = true
			}
			edge := pExit.Clone()
			TransferTerminatorToSuccessor(edge, p, &pBlock.Term, pBlock.Term.successorIndexOf(id))
			edgeStates[p] = edge
		}
		state := MergeStates(ps, edgeStates)
		if multiSucc {
			// A predecessor that also branches elsewhere cannot take
			// per-edge code for b, so b keeps no case history.
			state.enumToCaseList.Clear()
		}
		states[id] = state

		if opts.HoistReleases && len(b.Instrs) > 0 {
			if head := f.Instr(b.Instrs[0]); !head.erased && (head.Kind == StrongRelease || head.Kind == ReleaseValue) {
				if HoistDecrementsIntoSwitchRegions(f, preds, state, b, 0) {
					changed = true
					stats.NumHoisted++
				}
			}
		}

		if SinkIncrementsOutOfSwitchRegions(f, preds, state, b) {
			changed = true
			stats.NumRefCountOpsSimplified++
		}

		if CanonicalizeRefCountInstrs(f, preds, b) {
			changed = true
		}
		if SinkCodeFromPredecessors(f, preds, b) {
			changed = true
			stats.NumSunk++
		}
		if SinkLiteralsFromPredecessors(f, preds, b) {
			changed = true
			stats.NumSunk++
		}
		if SinkArgumentsFromPredecessors(f, preds, b) {
			changed = true
			stats.NumSunk++
		}

		for i := 0; i < len(b.Instrs); i++ {
			in := f.Instr(b.Instrs[i])
			if in.erased {
				continue
			}
			if TransferInstr(f, state, in) {
				changed = true
				stats.NumRefCountOpsSimplified++
			}
		}

		if !opts.DisableSILRRCodeMotion {
			for i := 0; i < len(b.Instrs); i++ {
				in := f.Instr(b.Instrs[i])
				if in.erased || (in.Kind != StrongRetain && in.Kind != RetainValue) {
					continue
				}
				if SinkRefCountIncrement(f, aa, rc, preds, b, i) {
					changed = true
					stats.NumRefCountOpsSimplified++
				}
			}

			if opts.HoistReleases && len(b.Instrs) > 0 {
				if head := f.Instr(b.Instrs[0]); !head.erased && (head.Kind == StrongRelease || head.Kind == ReleaseValue) {
					if HoistDecrementsToPredecessors(f, aa, preds, b, 0) {
						changed = true
						stats.NumHoisted++
					}
				}
			}
		}

		exitStates[id] = state
	}

	return stats, changed
}

// RunModule runs Run over every function concurrently, fanning out with
// an errgroup the way internal/driver's TokenizeDir/ParseDir do: one
// goroutine per function, results collected in a pre-sized slice so no
// mutex is needed. The number of goroutines is not capped.
func RunModule(ctx context.Context, functions []*Function, opts Options) (Stats, error) {
	sp := trace.Begin(trace.FromContext(ctx), trace.ScopePass, "arcmotion.RunModule", trace.CurrentSpan(ctx).SpanID)
	defer sp.End("")

	if len(functions) == 0 {
		return Stats{}, nil
	}

	perFunc := make([]Stats, len(functions))
	g, gctx := errgroup.WithContext(ctx)

	for i, fn := range functions {
		g.Go(func(i int, fn *Function) func() error {
			return func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				fnSpan := trace.Begin(trace.FromContext(ctx), trace.ScopeModule, "arcmotion.Run:"+fn.Name, sp.ID())
				s, _ := Run(fn, opts)
				fnSpan.End("")
				perFunc[i] = s
				return nil
			}
		}(i, fn))
	}

	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	var total Stats
	for _, s := range perFunc {
		total.add(s)
	}
	return total, nil
}
