package share

import (
	"ember/internal/defs"
	"ember/internal/instance"
	"ember/internal/session"
	"ember/internal/types"
)

// UpstreamOwner reports the compilation unit whose object code already
// carries the instance, when linking against it is both allowed and possible.
// Sharing applies only to genuine specializations: an instance with no type
// or const arguments is its definition's one body and the usual linkage
// rules cover it already. Local definitions are never fetched upstream.
func UpstreamOwner(opts session.Options, ds *defs.Store, in *types.Interner, reg *Registry, inst instance.Instance) (defs.UnitID, bool) {
	if !opts.ShareGenerics || reg == nil {
		return 0, false
	}
	if !inst.Args.HasNonLifetimeArgs(in) {
		return 0, false
	}
	switch inst.Def.Kind {
	case instance.KindItem:
		if ds.IsLocal(inst.Def.ID) {
			return 0, false
		}
		return reg.ItemOwner(inst.Def.ID, inst.Args)
	case instance.KindDropGlue:
		if inst.Def.Type == types.NoTypeID {
			return 0, false
		}
		return reg.DropGlueOwner(inst.Def.Type)
	default:
		// Shims are synthesized where they are needed; they never have an
		// upstream home of their own.
		return 0, false
	}
}
