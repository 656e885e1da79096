package resolve

import (
	"fmt"

	"ember/internal/defs"
	"ember/internal/instance"
	"ember/internal/types"
)

// callOnceAdapter decides how a closure with the given native capture
// convention answers a call under the requested one. The first result is
// whether a by-value adapter body must be synthesized, the second whether the
// pairing is possible at all. A by-ref closure serves a by-mut-ref call
// directly and both borrow conventions serve by-value calls through the
// adapter; narrowing in the other direction never type-checks.
func callOnceAdapter(actual, requested types.ClosureKind) (needed, valid bool) {
	switch {
	case actual == requested:
		return false, true
	case actual == types.ClosureByRef && requested == types.ClosureByMutRef:
		return false, true
	case requested == types.ClosureByValue:
		return true, true
	default:
		return false, false
	}
}

// ResolveClosure picks the body that runs when a closure value is called with
// the requested call convention. Invalid pairings are an internal fault and
// panic; the type checker rejects them long before resolution.
func (r *Resolver) ResolveClosure(closure types.TypeID, requested types.ClosureKind) instance.Instance {
	info, ok := r.Types.ClosureInfo(closure)
	if !ok {
		panic(fmt.Sprintf("resolve: %d is not a closure type", closure))
	}
	needed, valid := callOnceAdapter(info.Kind, requested)
	if !valid {
		panic(fmt.Sprintf("resolve: cannot call %v closure %d through a %v entry", info.Kind, closure, requested))
	}
	if !needed {
		return instance.New(r.Types, defs.DefID(info.Def), instance.ArgList(info.Args))
	}
	return r.callOnceAdapterInstance(closure, info)
}

// callOnceAdapterInstance builds the by-value entry point wrapping a borrowing
// closure. Its arguments are the closure type and the tupled call inputs; the
// shim body borrows its owned receiver and forwards.
func (r *Resolver) callOnceAdapterInstance(closure types.TypeID, info *types.ClosureInfo) instance.Instance {
	callOnce := r.Defs.Lang().FnOnceCallOnce
	if !callOnce.IsValid() {
		panic("resolve: call-once method not registered")
	}
	def := instance.ClosureOnceShim(callOnce, r.Defs.TrackCaller(defs.DefID(info.Def)))
	return instance.Instance{Def: def, Args: instance.ArgList{closure, info.Sig}}
}

// resolveCoroutineClosure resolves a call-family method against a
// coroutine-closure receiver. When the requested convention matches the
// type's own, the closure body runs directly; otherwise a constructor shim
// builds the coroutine by moving the captures out.
func (r *Resolver) resolveCoroutineClosure(self types.TypeID, requested types.ClosureKind) (*instance.Instance, error) {
	info, ok := r.Types.ClosureInfo(self)
	if !ok {
		panic(fmt.Sprintf("resolve: %d is not a coroutine-closure type", self))
	}
	owner := defs.DefID(info.Def)
	if r.Defs.Tainted(owner) {
		return nil, &Error{Def: owner}
	}
	if info.Kind == requested {
		inst := instance.New(r.Types, owner, instance.ArgList(info.Args))
		return &inst, nil
	}
	return &instance.Instance{
		Def:  instance.ConstructCoroutineInClosureShim(owner, requested),
		Args: instance.ArgList(info.Args),
	}, nil
}
