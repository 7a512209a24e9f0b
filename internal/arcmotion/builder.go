package arcmotion

// Builder constructs instructions at a fixed insertion point. The pass
// never constructs arbitrary instructions with it — only the five
// kinds the payload-materialization transforms need: UncheckedEnumData,
// StrongRetain, StrongRelease, RetainValue, ReleaseValue.
type Builder struct {
	f   *Function
	blk *Block
	pos int // insertion index into blk.Instrs; instructions are inserted at pos and pos is advanced
}

// NewBuilder returns a Builder inserting at position pos of b.
func NewBuilder(f *Function, b *Block, pos int) *Builder {
	return &Builder{f: f, blk: b, pos: pos}
}

// AtBlockHead returns a Builder inserting before b's first instruction.
func AtBlockHead(f *Function, b *Block) *Builder { return NewBuilder(f, b, 0) }

// AtBlockTail returns a Builder inserting after b's last instruction
// (i.e. immediately before its terminator).
func AtBlockTail(f *Function, b *Block) *Builder { return NewBuilder(f, b, len(b.Instrs)) }

// Before returns a Builder inserting immediately before in, which must
// belong to the block the builder targets.
func Before(f *Function, in *Instr) *Builder {
	b := f.Block(in.Block)
	for i, id := range b.Instrs {
		if id == in.ID {
			return NewBuilder(f, b, i)
		}
	}
	return NewBuilder(f, b, len(b.Instrs))
}

func (b *Builder) insert(kind InstrKind, operands []ValueID, resultType Type) *Instr {
	in := b.f.InsertInstr(b.blk, b.pos, kind, operands, resultType)
	b.pos++
	return in
}

// CreateUncheckedEnumData extracts the payload of enumVal under case c,
// typed as payloadType.
func (b *Builder) CreateUncheckedEnumData(enumVal ValueID, c EnumCase, payloadType Type) *Instr {
	in := b.insert(UncheckedEnumData, []ValueID{enumVal}, payloadType)
	in.Case = c
	return in
}

func (b *Builder) CreateStrongRetain(v ValueID) *Instr {
	return b.insert(StrongRetain, []ValueID{v}, nil)
}

func (b *Builder) CreateStrongRelease(v ValueID) *Instr {
	return b.insert(StrongRelease, []ValueID{v}, nil)
}

func (b *Builder) CreateRetainValue(v ValueID) *Instr {
	return b.insert(RetainValue, []ValueID{v}, nil)
}

func (b *Builder) CreateReleaseValue(v ValueID) *Instr {
	return b.insert(ReleaseValue, []ValueID{v}, nil)
}
