package driver

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"ember/internal/defs"
	"ember/internal/instance"
	"ember/internal/polymorph"
	"ember/internal/resolve"
	"ember/internal/session"
	"ember/internal/share"
	"ember/internal/types"
)

// Mode selects the entry point used for a request.
type Mode uint8

const (
	// ModeCall resolves a direct call.
	ModeCall Mode = iota
	// ModeFnPtr resolves a reification into a bare function pointer.
	ModeFnPtr
	// ModeVTable resolves a dispatch-table entry.
	ModeVTable
)

// Request names one call site to resolve.
type Request struct {
	Def   defs.DefID
	Args  instance.ArgList
	Mode  Mode
	Label string
}

// Outcome is the per-request result of the pipeline.
type Outcome struct {
	// Instance is nil when the request stayed abstract.
	Instance *instance.Instance
	// Unit is the upstream unit already carrying the instance, when Shared.
	Unit   defs.UnitID
	Shared bool
	// Duplicate reports whether every using unit should emit a private copy.
	Duplicate bool
	Err       error
}

// Engine wires the resolution pipeline together: resolve, fold, then consult
// the sharing registry and the duplication policy.
type Engine struct {
	Opts     session.Options
	Defs     *defs.Store
	Types    *types.Interner
	Resolver *resolve.Resolver
	Folder   *polymorph.Folder
	Registry *share.Registry
	Progress Sink
}

// NewEngine assembles an engine over a populated store and interner.
func NewEngine(opts session.Options, ds *defs.Store, in *types.Interner, unused polymorph.Provider, reg *share.Registry) *Engine {
	return &Engine{
		Opts:     opts,
		Defs:     ds,
		Types:    in,
		Resolver: resolve.New(ds, in),
		Folder: &polymorph.Folder{
			Types:   in,
			Defs:    ds,
			Unused:  unused,
			Enabled: opts.FoldSpecializations,
		},
		Registry: reg,
	}
}

// ResolveOne runs the full pipeline for a single request.
func (e *Engine) ResolveOne(req Request) Outcome {
	var (
		res *instance.Instance
		err error
	)
	switch req.Mode {
	case ModeFnPtr:
		res, err = e.Resolver.ResolveForFnPtr(req.Def, req.Args)
	case ModeVTable:
		res, err = e.Resolver.ResolveForVTable(req.Def, req.Args)
	default:
		res, err = e.Resolver.Resolve(req.Def, req.Args)
	}
	if err != nil || res == nil {
		return Outcome{Instance: res, Err: err}
	}
	folded := e.Folder.Instance(*res)
	out := Outcome{Instance: &folded}
	if unit, ok := share.UpstreamOwner(e.Opts, e.Defs, e.Types, e.Registry, folded); ok {
		out.Unit = unit
		out.Shared = true
	} else {
		out.Duplicate = share.ShouldDuplicatePerUnit(e.Opts, e.Defs, e.Types, folded)
	}
	return out
}

// ResolveAll runs the pipeline over a batch in parallel. Outcome indexes
// match request indexes, so workers write disjoint slots and no lock is
// needed on the result slice.
func (e *Engine) ResolveAll(ctx context.Context, reqs []Request) ([]Outcome, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	jobs := e.Opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	for i, req := range reqs {
		e.emit(Event{Index: i, Label: req.Label, Status: StatusQueued})
	}
	results := make([]Outcome, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(reqs)))
	for i, req := range reqs {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			e.emit(Event{Index: i, Label: req.Label, Status: StatusResolving})
			results[i] = e.ResolveOne(req)
			status := StatusDone
			if results[i].Err != nil {
				status = StatusError
			}
			e.emit(Event{Index: i, Label: req.Label, Status: status})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

func (e *Engine) emit(evt Event) {
	if e.Progress == nil {
		return
	}
	e.Progress.OnEvent(evt)
}
