package resolve

import (
	"errors"
	"testing"

	"ember/internal/defs"
	"ember/internal/instance"
	"ember/internal/types"
)

func TestCallOnceAdapterTable(t *testing.T) {
	cases := []struct {
		actual, requested types.ClosureKind
		needed, valid     bool
	}{
		{types.ClosureByRef, types.ClosureByRef, false, true},
		{types.ClosureByRef, types.ClosureByMutRef, false, true},
		{types.ClosureByRef, types.ClosureByValue, true, true},
		{types.ClosureByMutRef, types.ClosureByMutRef, false, true},
		{types.ClosureByMutRef, types.ClosureByValue, true, true},
		{types.ClosureByValue, types.ClosureByValue, false, true},
		{types.ClosureByMutRef, types.ClosureByRef, false, false},
		{types.ClosureByValue, types.ClosureByRef, false, false},
		{types.ClosureByValue, types.ClosureByMutRef, false, false},
	}
	for _, tc := range cases {
		needed, valid := callOnceAdapter(tc.actual, tc.requested)
		if needed != tc.needed || valid != tc.valid {
			t.Errorf("callOnceAdapter(%v, %v) = %v, %v; want %v, %v",
				tc.actual, tc.requested, needed, valid, tc.needed, tc.valid)
		}
	}
}

func TestResolveClosureDirect(t *testing.T) {
	f := newFixture()
	def, ty := f.closure(types.ClosureByMutRef, 0, f.in.Builtins().Int)

	got := mustResolve(t, f, f.fnMutCall, instance.ArgList{ty})
	if got.Def.Kind != instance.KindItem || got.DefID() != def {
		t.Fatalf("got %+v, want the closure body itself", got.Def)
	}
	info, _ := f.in.ClosureInfo(ty)
	if len(got.Args) != len(info.Args) || got.Args[0] != info.Args[0] {
		t.Fatalf("args = %v, want the closure's own args %v", got.Args, info.Args)
	}
}

func TestResolveClosureBorrowServesMutCall(t *testing.T) {
	f := newFixture()
	def, ty := f.closure(types.ClosureByRef, 0)

	// A closure that only borrows immutably satisfies the mutable-borrow
	// entry without any adapter.
	got := mustResolve(t, f, f.fnMutCall, instance.ArgList{ty})
	if got.Def.Kind != instance.KindItem || got.DefID() != def {
		t.Fatalf("got %+v, want the closure body itself", got.Def)
	}
}

func TestResolveClosureOnceAdapter(t *testing.T) {
	f := newFixture()
	_, ty := f.closure(types.ClosureByRef, 0, f.in.Builtins().Int)

	got := mustResolve(t, f, f.fnOnceCall, instance.ArgList{ty})
	if got.Def.Kind != instance.KindClosureOnceShim || got.DefID() != f.fnOnceCall {
		t.Fatalf("got %+v, want the call-once adapter", got.Def)
	}
	if got.Def.TrackCaller {
		t.Fatal("adapter must not track the caller for a plain closure")
	}
	want := instance.ArgList{ty, f.in.Builtins().EmptyTuple}
	if len(got.Args) != 2 || got.Args[0] != want[0] || got.Args[1] != want[1] {
		t.Fatalf("adapter args = %v, want %v", got.Args, want)
	}
}

func TestResolveClosureAdapterTrackCaller(t *testing.T) {
	f := newFixture()
	_, ty := f.closure(types.ClosureByMutRef, defs.FlagTrackCaller)

	got := mustResolve(t, f, f.fnOnceCall, instance.ArgList{ty})
	if got.Def.Kind != instance.KindClosureOnceShim || !got.Def.TrackCaller {
		t.Fatalf("got %+v, want a caller-tracking adapter", got.Def)
	}
}

func TestResolveClosureNarrowingPanics(t *testing.T) {
	f := newFixture()
	_, ty := f.closure(types.ClosureByValue, 0)

	defer func() {
		if recover() == nil {
			t.Fatal("calling a consuming closure through the borrowing entry must panic")
		}
	}()
	_, _ = f.r.Resolve(f.fnCall, instance.ArgList{ty})
}

func TestResolveClosureNonClosurePanics(t *testing.T) {
	f := newFixture()

	defer func() {
		if recover() == nil {
			t.Fatal("ResolveClosure on a non-closure type must panic")
		}
	}()
	f.r.ResolveClosure(f.in.Builtins().Int, types.ClosureByRef)
}

func (f *fixture) coroutineClosure(kind types.ClosureKind) (defs.DefID, types.TypeID) {
	def := f.st.Add(defs.Def{
		Kind:      defs.KindCoroutineClosure,
		Name:      "{async closure}",
		UpvarSlot: 1,
		Generics:  defs.Generics{Params: []defs.GenericParam{typeParam("U")}},
	})
	caps := f.in.RegisterTuple(nil)
	ty := f.in.RegisterCoroutineClosure(types.ClosureInfo{
		Def:    uint32(def),
		Kind:   kind,
		Args:   []types.TypeID{caps},
		Upvars: caps,
		Sig:    f.in.Builtins().EmptyTuple,
	})
	f.st.MustGet(def).Type = ty
	return def, ty
}

func TestResolveCoroutineClosureMatch(t *testing.T) {
	f := newFixture()
	def, ty := f.coroutineClosure(types.ClosureByRef)

	got := mustResolve(t, f, f.fnCall, instance.ArgList{ty})
	if got.Def.Kind != instance.KindItem || got.DefID() != def {
		t.Fatalf("got %+v, want the coroutine-closure body", got.Def)
	}
}

func TestResolveCoroutineClosureMismatch(t *testing.T) {
	f := newFixture()
	def, ty := f.coroutineClosure(types.ClosureByRef)

	got := mustResolve(t, f, f.fnOnceCall, instance.ArgList{ty})
	if got.Def.Kind != instance.KindConstructCoroutineInClosureShim || got.DefID() != def {
		t.Fatalf("got %+v, want the constructor shim", got.Def)
	}
	if got.Def.Target != types.ClosureByValue {
		t.Fatalf("shim target = %v, want by-value", got.Def.Target)
	}
}

func TestResolveCoroutineClosureTainted(t *testing.T) {
	f := newFixture()
	def, ty := f.coroutineClosure(types.ClosureByRef)
	f.st.MarkTainted(def)

	_, err := f.r.Resolve(f.fnCall, instance.ArgList{ty})
	var rerr *Error
	if !errors.As(err, &rerr) || rerr.Def != def {
		t.Fatalf("err = %v, want *Error for the tainted owner", err)
	}
}
