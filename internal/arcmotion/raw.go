package arcmotion

// RawValue, RawInstr, RawBlock describe a Function's shape for bulk
// loading from a serialized fixture — the exact-ID counterpart to the
// incremental, arena-allocating constructors in mutate.go.
type RawValue struct {
	ID        ValueID
	Type      Type
	Kind      ValueKind
	DefInstr  InstrID
	DefBlock  BlockID
	DefArgIdx int
}

type RawInstr struct {
	ID         InstrID
	Kind       InstrKind
	Block      BlockID
	Operands   []ValueID
	Result     ValueID
	Case       EnumCase
	LiteralKey string
}

type RawBlock struct {
	ID     BlockID
	Instrs []InstrID
	Term   Terminator
	Args   []ValueID
}

// LoadFunction rebuilds a Function with the exact value/instruction/
// block IDs given, as opposed to NewFunction's incremental builders
// which always allocate fresh ones. Used to reconstruct a Function from
// a fixture.Function decoded off disk.
func LoadFunction(name string, entry BlockID, values []RawValue, instrs []RawInstr, blocks []RawBlock) *Function {
	f := NewFunction(name)
	f.Entry = entry

	maxValueID := ValueID(-1)
	for _, rv := range values {
		if rv.ID > maxValueID {
			maxValueID = rv.ID
		}
	}
	f.values = make([]*Value, maxValueID+1)
	for _, rv := range values {
		f.values[rv.ID] = &Value{
			ID: rv.ID, Type: rv.Type, Kind: rv.Kind,
			DefInstr: rv.DefInstr, DefBlock: rv.DefBlock, DefArgIdx: rv.DefArgIdx,
		}
	}

	maxInstrID := InstrID(-1)
	for _, ri := range instrs {
		if ri.ID > maxInstrID {
			maxInstrID = ri.ID
		}
	}
	f.instrs = make([]*Instr, maxInstrID+1)
	for _, ri := range instrs {
		f.instrs[ri.ID] = &Instr{
			ID: ri.ID, Kind: ri.Kind, Block: ri.Block,
			Operands: ri.Operands, Result: ri.Result,
			Case: ri.Case, LiteralKey: ri.LiteralKey,
		}
	}

	for _, rb := range blocks {
		f.Blocks = append(f.Blocks, &Block{
			ID: rb.ID, Instrs: rb.Instrs, Term: rb.Term, Args: rb.Args,
		})
	}

	// Rebuild the reverse use index from scratch, the same invariant
	// InsertInstr/SetOperand maintain incrementally.
	for _, b := range f.Blocks {
		for _, id := range b.Instrs {
			in := f.Instr(id)
			for i, v := range in.Operands {
				f.addUse(v, useSite{kind: useInInstrOperand, instr: id, operandIdx: i})
			}
		}
		for i, v := range b.Term.Operands {
			f.addUse(v, useSite{kind: useInTermOperand, block: b.ID, operandIdx: i})
		}
		for succIdx, args := range b.Term.Args {
			for argIdx, v := range args {
				f.addUse(v, useSite{kind: useInTermArg, block: b.ID, succIdx: succIdx, argIdx: argIdx})
			}
		}
	}

	return f
}
