// Package fixture provides a wire encoding for arcmotion IR functions,
// so bench and dump fixtures can round-trip through disk the way
// driver.DiskCache caches module metadata.
package fixture

import (
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"codemotion/internal/arcmotion"
)

const schemaVersion uint16 = 1

// Value is the wire form of one arcmotion.Value.
type Value struct {
	ID        int32
	TypeName  string
	Kind      uint8
	DefInstr  int32
	DefBlock  int32
	DefArgIdx int
}

// Instr is the wire form of one arcmotion.Instr.
type Instr struct {
	ID         int32
	Kind       uint8
	Block      int32
	Operands   []int32
	Result     int32
	CaseName   string
	HasPayload bool
	LiteralKey string
}

// Terminator is the wire form of one arcmotion.Terminator.
type Terminator struct {
	Kind       uint8
	Operands   []int32
	Successors []int32
	Args       [][]int32
	CaseNames  []string
	HasPayload []bool
	HasDefault bool
}

// Block is the wire form of one arcmotion.Block.
type Block struct {
	ID     int32
	Instrs []int32
	Term   Terminator
	Args   []int32
}

// Function is the wire form of one arcmotion.Function fixture:
// everything Decode needs to reconstruct an equivalent in-memory
// Function, without any source-location or debug data.
type Function struct {
	Schema uint16
	Name   string
	Entry  int32
	Values []Value
	Instrs []Instr
	Blocks []Block
}

// Encode writes ff's fixture form to w.
func Encode(w io.Writer, ff *Function) error {
	ff.Schema = schemaVersion
	return msgpack.NewEncoder(w).Encode(ff)
}

// Decode reads a Function fixture from r.
func Decode(r io.Reader) (*Function, error) {
	var ff Function
	if err := msgpack.NewDecoder(r).Decode(&ff); err != nil {
		return nil, err
	}
	if ff.Schema != schemaVersion {
		return nil, fmt.Errorf("fixture: unsupported schema version %d", ff.Schema)
	}
	return &ff, nil
}

// FromFunction flattens a live arcmotion.Function into its wire form for
// Encode. Types are serialized by name only: ToFunction reconstructs
// concrete Type values from a caller-supplied type table, since
// arcmotion.Type is an open interface with no registry of its own.
func FromFunction(f *arcmotion.Function) *Function {
	out := &Function{
		Schema: schemaVersion,
		Name:   f.Name,
		Entry:  int32(f.Entry),
	}

	for id := 0; id < f.NumValues(); id++ {
		v := f.Value(arcmotion.ValueID(id))
		if v == nil {
			continue
		}
		typeName := ""
		if v.Type != nil {
			typeName = v.Type.String()
		}
		out.Values = append(out.Values, Value{
			ID: int32(v.ID), TypeName: typeName, Kind: uint8(v.Kind),
			DefInstr: int32(v.DefInstr), DefBlock: int32(v.DefBlock), DefArgIdx: v.DefArgIdx,
		})
	}

	for id := 0; id < f.NumInstrs(); id++ {
		in := f.Instr(arcmotion.InstrID(id))
		if in == nil {
			continue
		}
		out.Instrs = append(out.Instrs, Instr{
			ID: int32(in.ID), Kind: uint8(in.Kind), Block: int32(in.Block),
			Operands: valueIDs(in.Operands), Result: int32(in.Result),
			CaseName: in.Case.Name, HasPayload: in.Case.HasPayload, LiteralKey: in.LiteralKey,
		})
	}

	for _, b := range f.Blocks {
		fb := Block{ID: int32(b.ID), Args: valueIDs(b.Args)}
		for _, id := range b.Instrs {
			fb.Instrs = append(fb.Instrs, int32(id))
		}
		fb.Term = Terminator{
			Kind:       uint8(b.Term.Kind),
			Operands:   valueIDs(b.Term.Operands),
			Successors: blockIDs(b.Term.Successors),
			HasDefault: b.Term.HasDefault,
		}
		for _, args := range b.Term.Args {
			fb.Term.Args = append(fb.Term.Args, valueIDs(args))
		}
		for _, c := range b.Term.Cases {
			fb.Term.CaseNames = append(fb.Term.CaseNames, c.Name)
			fb.Term.HasPayload = append(fb.Term.HasPayload, c.HasPayload)
		}
		out.Blocks = append(out.Blocks, fb)
	}
	return out
}

// ToFunction rebuilds a live arcmotion.Function from a decoded fixture.
// types maps a serialized type name back to a concrete arcmotion.Type;
// an unresolved name yields a nil Type on the reconstructed Value.
func ToFunction(ff *Function, types map[string]arcmotion.Type) *arcmotion.Function {
	values := make([]arcmotion.RawValue, len(ff.Values))
	for i, v := range ff.Values {
		values[i] = arcmotion.RawValue{
			ID: arcmotion.ValueID(v.ID), Type: types[v.TypeName], Kind: arcmotion.ValueKind(v.Kind),
			DefInstr: arcmotion.InstrID(v.DefInstr), DefBlock: arcmotion.BlockID(v.DefBlock), DefArgIdx: v.DefArgIdx,
		}
	}

	instrs := make([]arcmotion.RawInstr, len(ff.Instrs))
	for i, in := range ff.Instrs {
		instrs[i] = arcmotion.RawInstr{
			ID: arcmotion.InstrID(in.ID), Kind: arcmotion.InstrKind(in.Kind), Block: arcmotion.BlockID(in.Block),
			Operands: toValueIDs(in.Operands), Result: arcmotion.ValueID(in.Result),
			Case:       arcmotion.EnumCase{Name: in.CaseName, HasPayload: in.HasPayload},
			LiteralKey: in.LiteralKey,
		}
	}

	blocks := make([]arcmotion.RawBlock, len(ff.Blocks))
	for i, b := range ff.Blocks {
		term := arcmotion.Terminator{
			Kind:       arcmotion.TermKind(b.Term.Kind),
			Block:      arcmotion.BlockID(b.ID),
			Operands:   toValueIDs(b.Term.Operands),
			Successors: toBlockIDs(b.Term.Successors),
			HasDefault: b.Term.HasDefault,
		}
		for _, args := range b.Term.Args {
			term.Args = append(term.Args, toValueIDs(args))
		}
		for j, name := range b.Term.CaseNames {
			hasPayload := j < len(b.Term.HasPayload) && b.Term.HasPayload[j]
			term.Cases = append(term.Cases, arcmotion.EnumCase{Name: name, HasPayload: hasPayload})
		}
		blocks[i] = arcmotion.RawBlock{
			ID: arcmotion.BlockID(b.ID), Instrs: toInstrIDs(b.Instrs), Term: term, Args: toValueIDs(b.Args),
		}
	}

	return arcmotion.LoadFunction(ff.Name, arcmotion.BlockID(ff.Entry), values, instrs, blocks)
}

func valueIDs(vs []arcmotion.ValueID) []int32 {
	out := make([]int32, len(vs))
	for i, v := range vs {
		out[i] = int32(v)
	}
	return out
}

func blockIDs(bs []arcmotion.BlockID) []int32 {
	out := make([]int32, len(bs))
	for i, b := range bs {
		out[i] = int32(b)
	}
	return out
}

func toValueIDs(vs []int32) []arcmotion.ValueID {
	out := make([]arcmotion.ValueID, len(vs))
	for i, v := range vs {
		out[i] = arcmotion.ValueID(v)
	}
	return out
}

func toBlockIDs(bs []int32) []arcmotion.BlockID {
	out := make([]arcmotion.BlockID, len(bs))
	for i, b := range bs {
		out[i] = arcmotion.BlockID(b)
	}
	return out
}

func toInstrIDs(is []int32) []arcmotion.InstrID {
	out := make([]arcmotion.InstrID, len(is))
	for i, v := range is {
		out[i] = arcmotion.InstrID(v)
	}
	return out
}
