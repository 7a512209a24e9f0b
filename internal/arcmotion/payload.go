package arcmotion

// CreateRefCountOpForPayload takes a retain or release instruction
// whose operand is an enum value and materializes the
// equivalent operation on that enum case's payload instead — skipping
// trivial payloads entirely, since they need no refcounting at all.
//
// enumVal, if not NoValueID, is used as the enum operand instead of
// rcOp's own operand — the hoist/sink callers pass the enum value they
// are working on (e.g. a switch_enum's discriminated argument). The
// payload is always extracted with a new unchecked_enum_data.
func CreateRefCountOpForPayload(f *Function, b *Builder, rcOp *Instr, c EnumCase, enumVal ValueID) *Instr {
	if !c.HasPayload {
		return nil
	}
	if enumVal == NoValueID {
		enumVal = rcOp.Operands[0]
	}
	enumType := f.Value(enumVal).Type
	if enumType == nil {
		return nil
	}
	payloadType := enumType.EnumElementType(c)
	if payloadType == nil || payloadType.IsTrivial() {
		return nil
	}

	payload := b.CreateUncheckedEnumData(enumVal, c, payloadType)

	isRetain := rcOp.Kind == StrongRetain || rcOp.Kind == RetainValue
	switch {
	case payloadType.IsReferenceCounted() && isRetain:
		return b.CreateStrongRetain(payload.Result)
	case payloadType.IsReferenceCounted() && !isRetain:
		return b.CreateStrongRelease(payload.Result)
	case isRetain:
		return b.CreateRetainValue(payload.Result)
	default:
		return b.CreateReleaseValue(payload.Result)
	}
}
