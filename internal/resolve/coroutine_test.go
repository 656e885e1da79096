package resolve

import (
	"testing"

	"ember/internal/defs"
	"ember/internal/instance"
	"ember/internal/types"
)

// coroutine adds an async coroutine definition whose identity type uses the
// given convention, then builds a receiver type with the requested one.
func (f *fixture) coroutine(kind defs.CoroutineKind, identity, receiver types.ClosureKind) (defs.DefID, types.TypeID) {
	def := f.st.Add(defs.Def{
		Kind:      defs.KindCoroutine,
		Name:      "{coroutine}",
		Coroutine: kind,
		UpvarSlot: 1,
		Generics:  defs.Generics{Params: []defs.GenericParam{typeParam("U")}},
	})
	caps := f.in.RegisterTuple(nil)
	info := types.ClosureInfo{
		Def:    uint32(def),
		Args:   []types.TypeID{caps},
		Upvars: caps,
		Sig:    f.in.Builtins().EmptyTuple,
	}
	info.Kind = identity
	f.st.MustGet(def).Type = f.in.RegisterCoroutine(info)
	info.Kind = receiver
	return def, f.in.RegisterCoroutine(info)
}

func TestResolveCoroutineIdentity(t *testing.T) {
	f := newFixture()
	def, ty := f.coroutine(defs.CoroutineAsync, types.ClosureByRef, types.ClosureByRef)

	got := mustResolve(t, f, f.futurePoll, instance.ArgList{ty})
	if got.Def.Kind != instance.KindItem || got.DefID() != def {
		t.Fatalf("got %+v, want the coroutine body", got.Def)
	}
	info, _ := f.in.ClosureInfo(ty)
	if len(got.Args) != len(info.Args) || got.Args[0] != info.Args[0] {
		t.Fatalf("args = %v, want the coroutine's own args %v", got.Args, info.Args)
	}
}

func TestResolveCoroutineByMove(t *testing.T) {
	f := newFixture()
	def, ty := f.coroutine(defs.CoroutineAsync, types.ClosureByRef, types.ClosureByValue)

	got := mustResolve(t, f, f.futurePoll, instance.ArgList{ty})
	if got.Def.Kind != instance.KindCoroutineByMoveShim || got.DefID() != def {
		t.Fatalf("got %+v, want the captures-owning variant", got.Def)
	}
}

func TestResolveCoroutineKindMismatch(t *testing.T) {
	f := newFixture()
	_, ty := f.coroutine(defs.CoroutineGen, types.ClosureByRef, types.ClosureByRef)

	defer func() {
		if recover() == nil {
			t.Fatal("driving a generator through the async trait must panic")
		}
	}()
	_, _ = f.r.Resolve(f.futurePoll, instance.ArgList{ty})
}

func TestResolveCoroutineProvidedMethod(t *testing.T) {
	f := newFixture()
	chain := f.st.Add(defs.Def{
		Kind: defs.KindAssocFn, Name: "chain",
		Trait: f.futureTrait, Container: defs.ContainerTrait,
		Flags: defs.FlagHasDefault,
	})
	f.st.MustGet(f.futureTrait).Methods = append(f.st.MustGet(f.futureTrait).Methods, chain)
	_, ty := f.coroutine(defs.CoroutineAsync, types.ClosureByRef, types.ClosureByRef)

	got := mustResolve(t, f, chain, instance.ArgList{ty})
	if got.Def.Kind != instance.KindItem || got.DefID() != chain {
		t.Fatalf("got %+v, want the provided trait body", got.Def)
	}
}

func TestResolveCoroutineMethodWithoutBody(t *testing.T) {
	f := newFixture()
	bare := f.st.Add(defs.Def{
		Kind: defs.KindAssocFn, Name: "bare",
		Trait: f.futureTrait, Container: defs.ContainerTrait,
	})
	f.st.MustGet(f.futureTrait).Methods = append(f.st.MustGet(f.futureTrait).Methods, bare)
	_, ty := f.coroutine(defs.CoroutineAsync, types.ClosureByRef, types.ClosureByRef)

	defer func() {
		if recover() == nil {
			t.Fatal("a built-in trait method without a body must panic")
		}
	}()
	_, _ = f.r.Resolve(bare, instance.ArgList{ty})
}
