package arcmotion_test

import (
	"testing"

	"codemotion/internal/arcmotion"
)

func TestCreateRefCountOpForPayload_ReferenceCountedPayloadUsesStrongOps(t *testing.T) {
	f := arcmotion.NewFunction("payload_refcounted")
	b := f.NewBlock()
	f.Entry = b.ID

	opt := optionType(objT)
	enumVal := f.AppendInstr(b, arcmotion.Enum, nil, opt)
	retain := f.AppendInstr(b, arcmotion.StrongRetain, []arcmotion.ValueID{enumVal.Result}, nil)
	returnTerm(f, b)

	bld := arcmotion.AtBlockHead(f, b)
	out := arcmotion.CreateRefCountOpForPayload(f, bld, retain, someCase, arcmotion.NoValueID)
	if out == nil {
		t.Fatalf("expected a materialized instruction")
	}
	if out.Kind != arcmotion.StrongRetain {
		t.Fatalf("expected strong_retain on a reference-counted payload, got %v", out.Kind)
	}
	payload := f.Instr(f.Value(out.Operands[0]).DefInstr)
	if payload.Kind != arcmotion.UncheckedEnumData || payload.Case != someCase {
		t.Fatalf("expected an unchecked_enum_data#some feeding the retain, got %+v", payload)
	}
}

func TestCreateRefCountOpForPayload_CompositePayloadUsesValueOps(t *testing.T) {
	f := arcmotion.NewFunction("payload_composite")
	b := f.NewBlock()
	f.Entry = b.ID

	composite := arcmotion.CompositeType{Name: "Pair"}
	opt := optionType(composite)
	enumVal := f.AppendInstr(b, arcmotion.Enum, nil, opt)
	release := f.AppendInstr(b, arcmotion.StrongRelease, []arcmotion.ValueID{enumVal.Result}, nil)
	returnTerm(f, b)

	bld := arcmotion.AtBlockHead(f, b)
	out := arcmotion.CreateRefCountOpForPayload(f, bld, release, someCase, arcmotion.NoValueID)
	if out == nil || out.Kind != arcmotion.ReleaseValue {
		t.Fatalf("expected release_value on a composite payload, got %+v", out)
	}
}

func TestCreateRefCountOpForPayload_TrivialPayloadSkipped(t *testing.T) {
	f := arcmotion.NewFunction("payload_trivial")
	b := f.NewBlock()
	f.Entry = b.ID

	opt := optionType(boolT)
	enumVal := f.AppendInstr(b, arcmotion.Enum, nil, opt)
	retain := f.AppendInstr(b, arcmotion.StrongRetain, []arcmotion.ValueID{enumVal.Result}, nil)
	returnTerm(f, b)

	bld := arcmotion.AtBlockHead(f, b)
	out := arcmotion.CreateRefCountOpForPayload(f, bld, retain, someCase, arcmotion.NoValueID)
	if out != nil {
		t.Fatalf("expected nil for a trivial payload, got %+v", out)
	}
}

func TestCreateRefCountOpForPayload_NoPayloadCaseSkipped(t *testing.T) {
	f := arcmotion.NewFunction("payload_none_case")
	b := f.NewBlock()
	f.Entry = b.ID

	opt := optionType(objT)
	enumVal := f.AppendInstr(b, arcmotion.Enum, nil, opt)
	release := f.AppendInstr(b, arcmotion.StrongRelease, []arcmotion.ValueID{enumVal.Result}, nil)
	returnTerm(f, b)

	bld := arcmotion.AtBlockHead(f, b)
	out := arcmotion.CreateRefCountOpForPayload(f, bld, release, noneCase, arcmotion.NoValueID)
	if out != nil {
		t.Fatalf("expected nil for a payload-less case, got %+v", out)
	}
}
