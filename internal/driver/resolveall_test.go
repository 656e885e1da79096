package driver

import (
	"context"
	"sync"
	"testing"

	"ember/internal/defs"
	"ember/internal/instance"
	"ember/internal/polymorph"
	"ember/internal/session"
	"ember/internal/share"
	"ember/internal/types"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) OnEvent(evt Event) {
	s.mu.Lock()
	s.events = append(s.events, evt)
	s.mu.Unlock()
}

func (s *recordingSink) count(status Status) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, evt := range s.events {
		if evt.Status == status {
			n++
		}
	}
	return n
}

func newTestEngine(opts session.Options) (*Engine, *defs.Store, *types.Interner) {
	st := defs.NewStore()
	in := types.NewInterner()
	eng := NewEngine(opts, st, in, nil, share.NewRegistry())
	return eng, st, in
}

func TestResolveOneModes(t *testing.T) {
	eng, st, _ := newTestEngine(session.Options{})
	fn := st.Add(defs.Def{Kind: defs.KindFn, Name: "free"})
	tracked := st.Add(defs.Def{Kind: defs.KindFn, Name: "here", Flags: defs.FlagTrackCaller})

	if out := eng.ResolveOne(Request{Def: fn, Mode: ModeCall}); out.Err != nil || out.Instance.Def.Kind != instance.KindItem {
		t.Fatalf("call mode = %+v", out)
	}
	if out := eng.ResolveOne(Request{Def: tracked, Mode: ModeFnPtr}); out.Instance.Def.Kind != instance.KindReifyShim {
		t.Fatalf("pointer mode = %+v", out.Instance.Def)
	}
	if out := eng.ResolveOne(Request{Def: tracked, Mode: ModeVTable}); out.Instance.Def.Kind != instance.KindReifyShim {
		t.Fatalf("table mode = %+v", out.Instance.Def)
	}
}

func TestResolveOneSharing(t *testing.T) {
	eng, st, in := newTestEngine(session.Options{ShareGenerics: true})
	fn := st.Add(defs.Def{
		Kind: defs.KindFn, Name: "swap", Unit: 3,
		Generics: defs.Generics{Params: []defs.GenericParam{{Name: "T", Kind: defs.ParamType}}},
	})
	args := instance.ArgList{in.Builtins().Int}
	eng.Registry.AddItem(fn, args, 3)

	out := eng.ResolveOne(Request{Def: fn, Args: args})
	if !out.Shared || out.Unit != 3 {
		t.Fatalf("outcome = %+v, want shared with unit 3", out)
	}
	if out.Duplicate {
		t.Fatal("a shared instance must not also be duplicated")
	}
}

func TestResolveOneDuplicate(t *testing.T) {
	eng, st, _ := newTestEngine(session.Options{})
	fn := st.Add(defs.Def{Kind: defs.KindFn, Name: "small", Flags: defs.FlagCrossUnitInline})

	out := eng.ResolveOne(Request{Def: fn})
	if out.Shared || !out.Duplicate {
		t.Fatalf("outcome = %+v, want a per-unit copy", out)
	}
}

func TestResolveOneFolds(t *testing.T) {
	st := defs.NewStore()
	in := types.NewInterner()
	fn := st.Add(defs.Def{
		Kind: defs.KindFn, Name: "log_type_name",
		Generics: defs.Generics{Params: []defs.GenericParam{{Name: "T", Kind: defs.ParamType}}},
	})
	unused := polymorph.StaticProvider{fn: polymorph.NewAllUnused(1)}
	eng := NewEngine(session.Options{FoldSpecializations: true}, st, in, unused, share.NewRegistry())

	a := eng.ResolveOne(Request{Def: fn, Args: instance.ArgList{in.Builtins().Int}})
	b := eng.ResolveOne(Request{Def: fn, Args: instance.ArgList{in.Builtins().Bool}})
	if !a.Instance.Equal(*b.Instance) {
		t.Fatalf("folded instances diverge: %+v vs %+v", a.Instance, b.Instance)
	}
}

func TestResolveAll(t *testing.T) {
	eng, st, in := newTestEngine(session.Options{Jobs: 2})
	sink := &recordingSink{}
	eng.Progress = sink
	swap := st.Add(defs.Def{
		Kind: defs.KindFn, Name: "swap",
		Generics: defs.Generics{Params: []defs.GenericParam{{Name: "T", Kind: defs.ParamType}}},
	})
	bad := st.Add(defs.Def{Kind: defs.KindFn, Name: "broken"})
	st.MarkTainted(bad)

	reqs := []Request{
		{Def: swap, Args: instance.ArgList{in.Builtins().Int}, Label: "swap<int>"},
		{Def: bad, Label: "broken"},
		{Def: swap, Args: instance.ArgList{in.Builtins().Bool}, Label: "swap<bool>"},
	}
	results, err := eng.ResolveAll(context.Background(), reqs)
	if err != nil {
		t.Fatalf("ResolveAll failed: %v", err)
	}
	if len(results) != len(reqs) {
		t.Fatalf("got %d results for %d requests", len(results), len(reqs))
	}
	if results[0].Err != nil || results[0].Instance.DefID() != swap {
		t.Fatalf("results[0] = %+v", results[0])
	}
	if results[1].Err == nil {
		t.Fatal("the tainted request must fail")
	}
	if results[2].Err != nil || results[2].Instance.Args[0] != in.Builtins().Bool {
		t.Fatalf("results[2] = %+v", results[2])
	}

	if got := sink.count(StatusQueued); got != 3 {
		t.Fatalf("queued events = %d, want 3", got)
	}
	if got := sink.count(StatusDone) + sink.count(StatusError); got != 3 {
		t.Fatalf("terminal events = %d, want 3", got)
	}
	if got := sink.count(StatusError); got != 1 {
		t.Fatalf("error events = %d, want 1", got)
	}
}

func TestResolveAllEmpty(t *testing.T) {
	eng, _, _ := newTestEngine(session.Options{})
	results, err := eng.ResolveAll(context.Background(), nil)
	if err != nil || results != nil {
		t.Fatalf("empty batch = %v, %v", results, err)
	}
}

func TestResolveAllCancelled(t *testing.T) {
	eng, st, _ := newTestEngine(session.Options{Jobs: 1})
	fn := st.Add(defs.Def{Kind: defs.KindFn, Name: "free"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := eng.ResolveAll(ctx, []Request{{Def: fn}}); err == nil {
		t.Fatal("a cancelled context must surface an error")
	}
}
