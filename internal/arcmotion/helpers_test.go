package arcmotion_test

import "codemotion/internal/arcmotion"

var (
	boolT = arcmotion.TrivialType{Name: "Bool"}
	intT  = arcmotion.IntType{Name: "Int", Bits: 64}
	objT  = arcmotion.RefCountedType{Name: "Obj"}
)

func optionType(payload arcmotion.Type) arcmotion.EnumType {
	return arcmotion.EnumType{
		Name: "Option",
		Payloads: map[string]arcmotion.Type{
			"some": payload,
			"none": nil,
		},
	}
}

var (
	someCase = arcmotion.EnumCase{Name: "some", HasPayload: true}
	noneCase = arcmotion.EnumCase{Name: "none", HasPayload: false}
)

// branchTo sets b's terminator to an unconditional branch to target
// with the given arguments.
func branchTo(f *arcmotion.Function, b *arcmotion.Block, target arcmotion.BlockID, args ...arcmotion.ValueID) {
	f.SetTerminator(b, arcmotion.Terminator{
		Kind:       arcmotion.TermBranch,
		Successors: []arcmotion.BlockID{target},
		Args:       [][]arcmotion.ValueID{args},
	})
}

func returnTerm(f *arcmotion.Function, b *arcmotion.Block) {
	f.SetTerminator(b, arcmotion.Terminator{Kind: arcmotion.TermReturn})
}
