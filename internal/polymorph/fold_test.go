package polymorph

import (
	"testing"

	"ember/internal/defs"
	"ember/internal/instance"
	"ember/internal/types"
)

func typeParam(name string) defs.GenericParam {
	return defs.GenericParam{Name: name, Kind: defs.ParamType}
}

func newFolder(unused StaticProvider) (*Folder, *defs.Store, *types.Interner) {
	st := defs.NewStore()
	in := types.NewInterner()
	return &Folder{Types: in, Defs: st, Unused: unused, Enabled: true}, st, in
}

func TestFoldUnusedParam(t *testing.T) {
	unused := StaticProvider{}
	f, st, in := newFolder(unused)
	bi := in.Builtins()
	fn := st.Add(defs.Def{
		Kind:     defs.KindFn,
		Name:     "log_type_name",
		Generics: defs.Generics{Params: []defs.GenericParam{typeParam("T"), typeParam("U")}},
	})
	unused[fn] = NewAllUnused(1) // only T is unobserved

	got := f.Fold(fn, instance.ArgList{bi.Int, bi.Bool})
	placeholder := in.RegisterParam(types.ParamInfo{Name: "T", Owner: uint32(fn), Index: 0})
	if got[0] != placeholder {
		t.Fatalf("unused arg = %v, want the canonical placeholder %v", got[0], placeholder)
	}
	if got[1] != bi.Bool {
		t.Fatalf("used arg disturbed: %v", got)
	}

	// Two differently-specialized calls collapse onto one key.
	other := f.Fold(fn, instance.ArgList{bi.Str, bi.Bool})
	if got.Key() != other.Key() {
		t.Fatalf("folds diverge: %q vs %q", got.Key(), other.Key())
	}
}

func TestFoldIdempotent(t *testing.T) {
	unused := StaticProvider{}
	f, st, in := newFolder(unused)
	fn := st.Add(defs.Def{
		Kind:     defs.KindFn,
		Name:     "ignore",
		Generics: defs.Generics{Params: []defs.GenericParam{typeParam("T")}},
	})
	unused[fn] = NewAllUnused(1)

	once := f.Fold(fn, instance.ArgList{in.Builtins().Int})
	if len(once) != 1 {
		t.Fatalf("fold changed the list length: %v", once)
	}
	twice := f.Fold(fn, once)
	if once.Key() != twice.Key() {
		t.Fatalf("fold not idempotent: %q vs %q", once.Key(), twice.Key())
	}
}

func TestFoldLeavesUsedArgsAliased(t *testing.T) {
	f, st, in := newFolder(nil)
	fn := st.Add(defs.Def{
		Kind:     defs.KindFn,
		Name:     "swap",
		Generics: defs.Generics{Params: []defs.GenericParam{typeParam("T")}},
	})

	args := instance.ArgList{in.Builtins().Int}
	got := f.Fold(fn, args)
	if &got[0] != &args[0] {
		t.Fatal("an all-used fold must not copy the list")
	}
}

func TestFoldSkipsLifetimes(t *testing.T) {
	unused := StaticProvider{}
	f, st, in := newFolder(unused)
	fn := st.Add(defs.Def{
		Kind: defs.KindFn,
		Name: "touch",
		Generics: defs.Generics{Params: []defs.GenericParam{
			{Name: "'a", Kind: defs.ParamLifetime},
			typeParam("T"),
		}},
	})
	unused[fn] = FromBits(0b11) // analysis may flag both; lifetimes stay put

	erased := in.Builtins().ErasedRegion
	got := f.Fold(fn, instance.ArgList{erased, in.Builtins().Int})
	if got[0] != erased {
		t.Fatalf("lifetime arg rewritten: %v", got)
	}
	if got[1] == in.Builtins().Int {
		t.Fatalf("unused type arg kept: %v", got)
	}
}

func TestFoldKeepsCapturesObserved(t *testing.T) {
	unused := StaticProvider{}
	f, st, in := newFolder(unused)
	bi := in.Builtins()
	closure := st.Add(defs.Def{
		Kind:      defs.KindClosure,
		Name:      "{closure}",
		UpvarSlot: 1,
		Generics:  defs.Generics{Params: []defs.GenericParam{typeParam("U")}},
	})
	unused[closure] = NewAllUnused(1)

	caps := in.RegisterTuple([]types.TypeID{bi.Int})
	got := f.Fold(closure, instance.ArgList{caps})
	if got[0] != caps {
		t.Fatalf("captures arg rewritten: %v", got)
	}
}

func TestFoldRecursesIntoNestedClosure(t *testing.T) {
	unused := StaticProvider{}
	f, st, in := newFolder(unused)
	bi := in.Builtins()

	// inner closure with one unobserved extra parameter
	inner := st.Add(defs.Def{
		Kind:      defs.KindClosure,
		Name:      "{closure}",
		UpvarSlot: 2,
		Generics:  defs.Generics{Params: []defs.GenericParam{typeParam("T"), typeParam("U")}},
	})
	unused[inner] = NewAllUnused(1)
	innerCaps := in.RegisterTuple(nil)
	mk := func(arg types.TypeID) types.TypeID {
		return in.RegisterClosure(types.ClosureInfo{
			Def:    uint32(inner),
			Kind:   types.ClosureByRef,
			Args:   []types.TypeID{arg, innerCaps},
			Upvars: innerCaps,
			Sig:    bi.EmptyTuple,
		})
	}

	// outer closure capturing the inner one
	outer := st.Add(defs.Def{
		Kind:      defs.KindClosure,
		Name:      "{closure}",
		UpvarSlot: 1,
		Generics:  defs.Generics{Params: []defs.GenericParam{typeParam("U")}},
	})

	foldOuter := func(innerTy types.TypeID) instance.ArgList {
		caps := in.RegisterTuple([]types.TypeID{innerTy})
		return f.Fold(outer, instance.ArgList{caps})
	}
	a := foldOuter(mk(bi.Int))
	b := foldOuter(mk(bi.Bool))
	if a.Key() != b.Key() {
		t.Fatalf("nested specializations survive the fold: %q vs %q", a.Key(), b.Key())
	}
}

func TestFoldDisabledIsIdentity(t *testing.T) {
	unused := StaticProvider{}
	f, st, in := newFolder(unused)
	f.Enabled = false
	fn := st.Add(defs.Def{
		Kind:     defs.KindFn,
		Name:     "ignore",
		Generics: defs.Generics{Params: []defs.GenericParam{typeParam("T")}},
	})
	unused[fn] = NewAllUnused(1)

	args := instance.ArgList{in.Builtins().Int}
	if got := f.Fold(fn, args); &got[0] != &args[0] {
		t.Fatal("a disabled folder must hand the list back untouched")
	}
	inst := instance.Instance{Def: instance.Item(fn), Args: args}
	if got := f.Instance(inst); !got.Equal(inst) {
		t.Fatalf("Instance() = %+v, want identity", got)
	}
}
