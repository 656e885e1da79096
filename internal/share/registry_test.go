package share

import (
	"testing"

	"ember/internal/defs"
	"ember/internal/instance"
	"ember/internal/types"
)

func TestRegistryItems(t *testing.T) {
	r := NewRegistry()
	args := instance.ArgList{3, 7}

	if _, ok := r.ItemOwner(1, args); ok {
		t.Fatal("empty registry must miss")
	}
	r.AddItem(1, args, 5)
	unit, ok := r.ItemOwner(1, args)
	if !ok || unit != 5 {
		t.Fatalf("ItemOwner = %d, %v; want 5, true", unit, ok)
	}
	if _, ok := r.ItemOwner(1, instance.ArgList{7, 3}); ok {
		t.Fatal("argument order is part of the key")
	}
}

func TestRegistryLowestUnitWins(t *testing.T) {
	r := NewRegistry()
	args := instance.ArgList{3}

	r.AddItem(1, args, 5)
	r.AddItem(1, args, 2)
	r.AddItem(1, args, 9)
	if unit, _ := r.ItemOwner(1, args); unit != 2 {
		t.Fatalf("owner = %d, want the lowest unit", unit)
	}

	r.AddDropGlue(4, 8)
	r.AddDropGlue(4, 3)
	if unit, _ := r.DropGlueOwner(4); unit != 3 {
		t.Fatalf("glue owner = %d, want the lowest unit", unit)
	}
}

func TestRegistryExportImport(t *testing.T) {
	r := NewRegistry()
	r.AddItem(2, instance.ArgList{9}, 1)
	r.AddItem(1, instance.ArgList{3}, 4)
	r.AddItem(1, instance.ArgList{2}, 4)
	r.AddDropGlue(7, 2)

	dump := r.Export()
	if len(dump.Items) != 3 || len(dump.Glue) != 1 {
		t.Fatalf("dump sizes = %d items, %d glue", len(dump.Items), len(dump.Glue))
	}
	// Sorted by definition, then by argument key.
	if dump.Items[0].Def != 1 || dump.Items[2].Def != 2 {
		t.Fatalf("items not sorted: %+v", dump.Items)
	}
	if dump.Items[0].Args >= dump.Items[1].Args {
		t.Fatalf("args not sorted within a definition: %+v", dump.Items[:2])
	}

	other := NewRegistry()
	other.AddItem(1, instance.ArgList{3}, 2) // lower unit, must survive the merge
	other.Import(dump)
	if other.Len() != 4 {
		t.Fatalf("merged Len = %d, want 4", other.Len())
	}
	if unit, _ := other.ItemOwner(1, instance.ArgList{3}); unit != 2 {
		t.Fatalf("merge overwrote the lower unit: %d", unit)
	}
	if unit, ok := other.DropGlueOwner(7); !ok || unit != 2 {
		t.Fatalf("glue lost in merge: %d, %v", unit, ok)
	}
}

func TestRegistryKeyHelpers(t *testing.T) {
	// Item and glue namespaces are independent.
	r := NewRegistry()
	r.AddItem(defs.DefID(3), nil, 1)
	if _, ok := r.DropGlueOwner(types.TypeID(3)); ok {
		t.Fatal("item entry leaked into the glue namespace")
	}
	if r.Len() != 1 {
		t.Fatalf("Len = %d, want 1", r.Len())
	}
}
