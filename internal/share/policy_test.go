package share

import (
	"testing"

	"ember/internal/defs"
	"ember/internal/instance"
	"ember/internal/session"
	"ember/internal/types"
)

func TestUpstreamOwner(t *testing.T) {
	st := defs.NewStore()
	in := types.NewInterner()
	bi := in.Builtins()
	reg := NewRegistry()
	opts := session.Options{ShareGenerics: true}

	local := st.Add(defs.Def{Kind: defs.KindFn, Name: "here", Unit: defs.LocalUnit})
	foreign := st.Add(defs.Def{Kind: defs.KindFn, Name: "there", Unit: 3})
	args := instance.ArgList{bi.Int}
	reg.AddItem(foreign, args, 3)
	reg.AddItem(local, args, 3)

	if unit, ok := UpstreamOwner(opts, st, in, reg, instance.Instance{Def: instance.Item(foreign), Args: args}); !ok || unit != 3 {
		t.Fatalf("foreign item = %d, %v; want 3, true", unit, ok)
	}
	if _, ok := UpstreamOwner(opts, st, in, reg, instance.Instance{Def: instance.Item(local), Args: args}); ok {
		t.Fatal("local definitions are never fetched upstream")
	}
	if _, ok := UpstreamOwner(session.Options{}, st, in, reg, instance.Instance{Def: instance.Item(foreign), Args: args}); ok {
		t.Fatal("sharing must be opt-in")
	}
	if _, ok := UpstreamOwner(opts, st, in, nil, instance.Instance{Def: instance.Item(foreign), Args: args}); ok {
		t.Fatal("no registry, no sharing")
	}
	lifetimeOnly := instance.ArgList{bi.ErasedRegion}
	if _, ok := UpstreamOwner(opts, st, in, reg, instance.Instance{Def: instance.Item(foreign), Args: lifetimeOnly}); ok {
		t.Fatal("a lifetime-only instance is not a specialization")
	}
	if _, ok := UpstreamOwner(opts, st, in, reg, instance.Instance{Def: instance.ReifyShim(foreign), Args: args}); ok {
		t.Fatal("shims have no upstream home")
	}
}

func TestUpstreamOwnerDropGlue(t *testing.T) {
	st := defs.NewStore()
	in := types.NewInterner()
	reg := NewRegistry()
	opts := session.Options{ShareGenerics: true}
	drop := st.Add(defs.Def{Kind: defs.KindFn, Name: "drop_in_place"})

	vec := in.RegisterAdt(types.AdtInfo{Name: "Vec", Def: 1, Dtor: 9})
	reg.AddDropGlue(vec, 4)

	typed := instance.Instance{Def: instance.DropGlue(drop, vec), Args: instance.ArgList{vec}}
	if unit, ok := UpstreamOwner(opts, st, in, reg, typed); !ok || unit != 4 {
		t.Fatalf("typed glue = %d, %v; want 4, true", unit, ok)
	}
	empty := instance.Instance{Def: instance.DropGlue(drop, types.NoTypeID), Args: instance.ArgList{vec}}
	if _, ok := UpstreamOwner(opts, st, in, reg, empty); ok {
		t.Fatal("the no-op glue is never shared")
	}
}

func TestShouldDuplicatePerUnit(t *testing.T) {
	st := defs.NewStore()
	in := types.NewInterner()
	drop := st.Add(defs.Def{Kind: defs.KindFn, Name: "drop_in_place"})
	closure := st.Add(defs.Def{Kind: defs.KindClosure, Name: "{closure}"})
	inlinable := st.Add(defs.Def{Kind: defs.KindFn, Name: "small", Flags: defs.FlagCrossUnitInline})
	plain := st.Add(defs.Def{Kind: defs.KindFn, Name: "big"})
	tls := st.Add(defs.Def{Kind: defs.KindStatic, Name: "SLOT", Flags: defs.FlagThreadLocal})
	inlineTLS := st.Add(defs.Def{Kind: defs.KindStatic, Name: "FAST", Flags: defs.FlagThreadLocal | defs.FlagCrossUnitInline})

	var opts session.Options
	cases := []struct {
		name string
		inst instance.Instance
		want bool
	}{
		{"closure body", instance.Instance{Def: instance.Item(closure)}, true},
		{"inlinable item", instance.Instance{Def: instance.Item(inlinable)}, true},
		{"plain item", instance.Instance{Def: instance.Item(plain)}, false},
		{"reify shim", instance.Instance{Def: instance.ReifyShim(plain)}, true},
		{"tls accessor", instance.Instance{Def: instance.ThreadLocalShim(tls)}, false},
		{"tls accessor over inlinable static", instance.Instance{Def: instance.ThreadLocalShim(inlineTLS)}, false},
		{"empty drop glue", instance.Instance{Def: instance.DropGlue(drop, types.NoTypeID)}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldDuplicatePerUnit(opts, st, in, tc.inst); got != tc.want {
				t.Fatalf("ShouldDuplicatePerUnit = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestShouldDuplicateDropGlue(t *testing.T) {
	st := defs.NewStore()
	in := types.NewInterner()
	bi := in.Builtins()
	drop := st.Add(defs.Def{Kind: defs.KindFn, Name: "drop_in_place"})
	cheapDtor := st.Add(defs.Def{Kind: defs.KindFn, Name: "Small::drop", Flags: defs.FlagCrossUnitInline})
	bigDtor := st.Add(defs.Def{Kind: defs.KindFn, Name: "Big::drop"})

	small := in.RegisterAdt(types.AdtInfo{Name: "Small", Def: 1, Dtor: uint32(cheapDtor)})
	big := in.RegisterAdt(types.AdtInfo{Name: "Big", Def: 2, Dtor: uint32(bigDtor)})
	variant := in.RegisterAdt(types.AdtInfo{Name: "Either", Def: 3, IsEnum: true})
	record := in.RegisterAdt(types.AdtInfo{Name: "Pair", Def: 4, Fields: []types.TypeID{bi.Int}})
	tup := in.RegisterTuple([]types.TypeID{bi.Int})

	glue := func(ty types.TypeID) instance.Instance {
		return instance.Instance{Def: instance.DropGlue(drop, ty), Args: instance.ArgList{ty}}
	}

	full := session.Options{}
	for _, ty := range []types.TypeID{small, big, variant, record, tup} {
		if !ShouldDuplicatePerUnit(full, st, in, glue(ty)) {
			t.Fatalf("full builds duplicate all typed glue; type %d did not", ty)
		}
	}

	incr := session.Options{Incremental: true}
	cases := []struct {
		name string
		ty   types.TypeID
		want bool
	}{
		{"structural type", tup, true},
		{"enum without destructor", variant, true},
		{"struct without destructor", record, false},
		{"inlinable destructor", small, true},
		{"opaque destructor", big, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShouldDuplicatePerUnit(incr, st, in, glue(tc.ty)); got != tc.want {
				t.Fatalf("incremental duplicate = %v, want %v", got, tc.want)
			}
		})
	}
}
