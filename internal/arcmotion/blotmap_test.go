package arcmotion_test

import (
	"testing"

	"codemotion/internal/arcmotion"
)

func TestBlotMap_BlotPreservesSlotOrder(t *testing.T) {
	m := arcmotion.NewBlotMap[string, int]()
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)

	m.Blot("b")

	if _, ok := m.Find("b"); ok {
		t.Fatalf("expected b to be absent after blot")
	}
	if v, ok := m.Find("a"); !ok || v != 1 {
		t.Fatalf("expected a=1, got %v, %v", v, ok)
	}

	all := m.All()
	if len(all) != 2 {
		t.Fatalf("expected 2 live entries after blot, got %d", len(all))
	}
	if all[0].Key != "a" || all[1].Key != "c" {
		t.Fatalf("expected insertion order a,c; got %v,%v", all[0].Key, all[1].Key)
	}

	// Len counts slots including blotted ones: this is Len's whole
	// point, resolving rather than reproducing the source bug.
	if got := m.Len(); got != 3 {
		t.Fatalf("expected Len()=3 (includes blotted slot), got %d", got)
	}
}

func TestBlotMap_FindNeverInserted(t *testing.T) {
	m := arcmotion.NewBlotMap[int, string]()
	if _, ok := m.Find(42); ok {
		t.Fatalf("expected absent for never-inserted key")
	}
}

func TestBlotMap_SetAfterBlotUnblots(t *testing.T) {
	m := arcmotion.NewBlotMap[string, int]()
	m.Set("x", 1)
	m.Blot("x")
	m.Set("x", 2)

	v, ok := m.Find("x")
	if !ok || v != 2 {
		t.Fatalf("expected x=2 present after re-Set, got %v, %v", v, ok)
	}
	if m.Len() != 1 {
		t.Fatalf("expected re-Set to reuse the existing slot, got Len()=%d", m.Len())
	}
}

func TestBlotMap_CloneIsIndependent(t *testing.T) {
	m := arcmotion.NewBlotMap[string, int]()
	m.Set("a", 1)

	clone := m.Clone()
	clone.Set("a", 2)
	clone.Set("b", 3)

	if v, _ := m.Find("a"); v != 1 {
		t.Fatalf("mutating clone affected original: a=%v", v)
	}
	if _, ok := m.Find("b"); ok {
		t.Fatalf("mutating clone leaked b into original")
	}
}
