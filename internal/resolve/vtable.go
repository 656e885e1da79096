package resolve

import (
	"fmt"

	"ember/internal/defs"
	"ember/internal/instance"
	"ember/internal/types"
)

// ResolveForFnPtr resolves a call whose result will be reified into a bare
// function pointer. Pointer callers cannot pass the implicit caller location,
// so targets that need one are wrapped in a reifying shim that supplies it;
// dynamic dispatch likewise gets a shim because a table slot has no address.
// Closure-like definitions are never reified directly and panic.
func (r *Resolver) ResolveForFnPtr(def defs.DefID, args instance.ArgList) (*instance.Instance, error) {
	if r.Defs.IsClosureLike(def) {
		panic(fmt.Sprintf("resolve: reifying closure-like definition %d", def))
	}
	res, err := r.Resolve(def, args)
	if err != nil || res == nil {
		return res, err
	}
	switch res.Def.Kind {
	case instance.KindItem:
		if res.RequiresCallerLocation(r.Defs) {
			res.Def = instance.ReifyShim(res.Def.ID)
		}
	case instance.KindVirtual:
		res.Def = instance.ReifyShim(res.Def.ID)
	}
	return res, nil
}

// ResolveForVTable resolves a trait method to the entry stored in a dispatch
// table slot.
//
// When the method takes its receiver by value, the table entry cannot be the
// implementation itself: table callers always hold an indirect receiver. The
// adapter that dereferences once stands in instead. Entries that require a
// caller location get the same reifying treatment as function pointers,
// except when the requirement is inherited from the trait declaration or the
// target is the trait's own provided body, where the table-call lowering
// already supplies the location.
func (r *Resolver) ResolveForVTable(def defs.DefID, args instance.ArgList) (*instance.Instance, error) {
	d := r.Defs.MustGet(def)
	if len(d.Sig) > 0 && d.Generics.HasSelf && r.isIdentitySelf(d.Sig[0]) {
		return &instance.Instance{
			Def:  instance.VTableShim(def),
			Args: args.EraseLifetimes(r.Types),
		}, nil
	}
	res, err := r.Resolve(def, args)
	if err != nil || res == nil {
		return res, err
	}
	switch res.Def.Kind {
	case instance.KindVirtual:
		res.Def = instance.ReifyShim(res.Def.ID)
	case instance.KindItem:
		target := res.Def.ID
		if res.RequiresCallerLocation(r.Defs) &&
			!r.Defs.InheritsTrackCaller(target) &&
			r.Defs.Container(target) != defs.ContainerTrait {
			if r.Defs.IsClosureLike(target) {
				// A closure body has no reifiable id of its own, so the
				// trait method that led here is reified instead.
				res.Def = instance.ReifyShim(def)
				res.Args = args.EraseLifetimes(r.Types)
			} else {
				res.Def = instance.ReifyShim(target)
			}
		}
	}
	return res, nil
}

// isIdentitySelf reports whether a signature input is the bare receiver
// parameter, meaning the method consumes its receiver by value.
func (r *Resolver) isIdentitySelf(ty types.TypeID) bool {
	info, ok := r.Types.ParamInfo(ty)
	return ok && !info.IsConst && info.Index == 0
}
