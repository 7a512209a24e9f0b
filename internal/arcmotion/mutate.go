package arcmotion

import "fortio.org/safecast"

// newValue allocates a fresh instruction-result value; callers fill in
// DefInstr after creating the owning instruction.
func (f *Function) newValue(t Type, kind ValueKind) ValueID {
	id, err := safecast.Conv[int32](len(f.values))
	if err != nil {
		panic("arcmotion: value arena overflow")
	}
	v := &Value{ID: ValueID(id), Type: t, Kind: kind}
	f.values = append(f.values, v)
	return v.ID
}

// AddBlockArg appends a new typed block argument to b and returns its value ID.
func (f *Function) AddBlockArg(b *Block, t Type) ValueID {
	idx := len(b.Args)
	id := f.newValue(t, ValueBlockArg)
	v := f.Value(id)
	v.DefBlock = b.ID
	v.DefArgIdx = idx
	b.Args = append(b.Args, id)
	return id
}

// NewBlock appends a fresh, terminator-less block to the function.
func (f *Function) NewBlock() *Block {
	id, err := safecast.Conv[int32](len(f.Blocks))
	if err != nil {
		panic("arcmotion: block arena overflow")
	}
	b := &Block{ID: BlockID(id)}
	f.Blocks = append(f.Blocks, b)
	f.predOnce = false
	return b
}

// InsertInstr creates an instruction with the given kind/operands/result
// type and inserts it into b at index pos (0 <= pos <= len(b.Instrs)).
// It registers operand use-sites. resultType may be nil for no result.
func (f *Function) InsertInstr(b *Block, pos int, kind InstrKind, operands []ValueID, resultType Type) *Instr {
	id, err := safecast.Conv[int32](len(f.instrs))
	if err != nil {
		panic("arcmotion: instr arena overflow")
	}
	in := &Instr{ID: InstrID(id), Kind: kind, Block: b.ID, Result: NoValueID}
	in.Operands = append([]ValueID(nil), operands...)
	f.instrs = append(f.instrs, in)

	if resultType != nil {
		in.Result = f.newValue(resultType, ValueInstrResult)
		f.Value(in.Result).DefInstr = in.ID
	}

	for i, v := range in.Operands {
		f.addUse(v, useSite{kind: useInInstrOperand, instr: in.ID, operandIdx: i})
	}

	if pos < 0 || pos > len(b.Instrs) {
		pos = len(b.Instrs)
	}
	b.Instrs = append(b.Instrs, NoInstrID)
	copy(b.Instrs[pos+1:], b.Instrs[pos:])
	b.Instrs[pos] = in.ID
	return in
}

// AppendInstr inserts at the end of b's instruction list (before the
// terminator, which is stored separately).
func (f *Function) AppendInstr(b *Block, kind InstrKind, operands []ValueID, resultType Type) *Instr {
	return f.InsertInstr(b, len(b.Instrs), kind, operands, resultType)
}

// PrependInstr inserts at the head of b.
func (f *Function) PrependInstr(b *Block, kind InstrKind, operands []ValueID, resultType Type) *Instr {
	return f.InsertInstr(b, 0, kind, operands, resultType)
}

// SetTerminator installs term as b's terminator, registering every
// operand and argument as a use site. Any uses the block's previous
// terminator registered are dropped first.
func (f *Function) SetTerminator(b *Block, term Terminator) {
	old := b.Term
	for i, v := range old.Operands {
		f.removeUse(v, useSite{kind: useInTermOperand, block: b.ID, operandIdx: i})
	}
	for succIdx, args := range old.Args {
		for argIdx, v := range args {
			f.removeUse(v, useSite{kind: useInTermArg, block: b.ID, succIdx: succIdx, argIdx: argIdx})
		}
	}

	term.Block = b.ID
	b.Term = term

	for i, v := range term.Operands {
		f.addUse(v, useSite{kind: useInTermOperand, block: b.ID, operandIdx: i})
	}
	for succIdx, args := range term.Args {
		for argIdx, v := range args {
			f.addUse(v, useSite{kind: useInTermArg, block: b.ID, succIdx: succIdx, argIdx: argIdx})
		}
	}
}

// SetOperand rewrites operand i of in, updating the reverse use-list.
func (f *Function) SetOperand(in *Instr, i int, v ValueID) {
	old := in.Operands[i]
	f.removeUse(old, useSite{kind: useInInstrOperand, instr: in.ID, operandIdx: i})
	in.Operands[i] = v
	f.addUse(v, useSite{kind: useInInstrOperand, instr: in.ID, operandIdx: i})
}

// SetTermOperand rewrites a scalar terminator operand (e.g. a switch's
// discriminant, a cond-branch's condition).
func (f *Function) SetTermOperand(t *Terminator, i int, v ValueID) {
	old := t.Operands[i]
	f.removeUse(old, useSite{kind: useInTermOperand, block: t.Block, operandIdx: i})
	t.Operands[i] = v
	f.addUse(v, useSite{kind: useInTermOperand, block: t.Block, operandIdx: i})
}

// SetTermArg rewrites the value a terminator passes as argument argIdx
// to successor succIdx.
func (f *Function) SetTermArg(t *Terminator, succIdx, argIdx int, v ValueID) {
	old := t.Args[succIdx][argIdx]
	f.removeUse(old, useSite{kind: useInTermArg, block: t.Block, succIdx: succIdx, argIdx: argIdx})
	t.Args[succIdx][argIdx] = v
	f.addUse(v, useSite{kind: useInTermArg, block: t.Block, succIdx: succIdx, argIdx: argIdx})
}

// ReplaceAllUses rewrites every use of old to v across the function.
func (f *Function) ReplaceAllUses(old, v ValueID) {
	if old == v || old == NoValueID {
		return
	}
	sites := append([]useSite(nil), f.uses[old]...)
	for _, s := range sites {
		switch s.kind {
		case useInInstrOperand:
			in := f.Instr(s.instr)
			f.SetOperand(in, s.operandIdx, v)
		case useInTermOperand:
			b := f.Block(s.block)
			f.SetTermOperand(&b.Term, s.operandIdx, v)
		case useInTermArg:
			b := f.Block(s.block)
			f.SetTermArg(&b.Term, s.succIdx, s.argIdx, v)
		}
	}
}

// EraseInstr removes in from its owning block's instruction list and
// marks it erased. The caller must have already proven (or arranged via
// ReplaceAllUses) that in's result has no remaining uses.
func (f *Function) EraseInstr(in *Instr) {
	if in.erased {
		return
	}
	if !f.UseEmpty(in.Result) {
		panic("arcmotion: erase of instruction with remaining uses")
	}
	for i, v := range in.Operands {
		f.removeUse(v, useSite{kind: useInInstrOperand, instr: in.ID, operandIdx: i})
	}
	b := f.Block(in.Block)
	for i, id := range b.Instrs {
		if id == in.ID {
			b.Instrs = append(b.Instrs[:i], b.Instrs[i+1:]...)
			break
		}
	}
	in.erased = true
}

// MoveInstr relocates in to position pos of block dst (0 <= pos <=
// len(dst.Instrs)), removing it from its current block first.
func (f *Function) MoveInstr(in *Instr, dst *Block, pos int) {
	src := f.Block(in.Block)
	if src.ID == dst.ID {
		for i, id := range src.Instrs {
			if id == in.ID {
				src.Instrs = append(src.Instrs[:i], src.Instrs[i+1:]...)
				break
			}
		}
	} else {
		for i, id := range src.Instrs {
			if id == in.ID {
				src.Instrs = append(src.Instrs[:i], src.Instrs[i+1:]...)
				break
			}
		}
		in.Block = dst.ID
	}
	if pos < 0 || pos > len(dst.Instrs) {
		pos = len(dst.Instrs)
	}
	dst.Instrs = append(dst.Instrs, NoInstrID)
	copy(dst.Instrs[pos+1:], dst.Instrs[pos:])
	dst.Instrs[pos] = in.ID
}

// CloneInstr duplicates in (same kind/operands/aux data) at position pos
// of block dst, producing a fresh result value of the same type.
func (f *Function) CloneInstr(in *Instr, dst *Block, pos int) *Instr {
	var rt Type
	if in.Result != NoValueID {
		rt = f.Value(in.Result).Type
	}
	clone := f.InsertInstr(dst, pos, in.Kind, in.Operands, rt)
	clone.Case = in.Case
	clone.LiteralKey = in.LiteralKey
	clone.Loc = in.Loc
	return clone
}
