package share

import (
	"ember/internal/defs"
	"ember/internal/instance"
	"ember/internal/session"
	"ember/internal/types"
)

// ShouldDuplicatePerUnit reports whether code generation should emit a
// private copy of the instance in every compilation unit that uses it rather
// than one shared exported copy. Duplication trades object size for
// locality; the answer must be identical from every unit asking, or the
// partitioner would both export and privatize the same symbol.
func ShouldDuplicatePerUnit(opts session.Options, ds *defs.Store, in *types.Interner, inst instance.Instance) bool {
	if requiresInline(ds, inst) {
		return true
	}
	if inst.Def.Kind == instance.KindDropGlue && inst.Def.Type != types.NoTypeID {
		// Destructor glue is tiny and duplicating it avoids cross-unit
		// symbol traffic. Under incremental rebuilds every duplicate
		// dirties the unit holding it, so only glue that is cheap to
		// regenerate is still copied.
		if !opts.Incremental {
			return true
		}
		return cheapGlue(ds, in, inst.Def.Type)
	}
	if inst.Def.Kind == instance.KindThreadLocalShim {
		// The accessor must stay the one exported entry for its slot,
		// whatever the static's inlining attribute says.
		return false
	}
	// Everything else, the no-op glue included, follows the definition's
	// own attribute.
	return ds.CrossUnitInlinable(inst.DefID())
}

// requiresInline reports whether the instance kind only makes sense emitted
// next to its callers. Synthesized adapters fall in this bucket; so do
// constructors and closure bodies, which are expected to disappear into
// their single caller.
func requiresInline(ds *defs.Store, inst instance.Instance) bool {
	switch inst.Def.Kind {
	case instance.KindItem:
		d := ds.Get(inst.Def.ID)
		if d == nil {
			return false
		}
		switch d.Kind {
		case defs.KindCtor, defs.KindClosure, defs.KindCoroutineClosure, defs.KindCoroutine:
			return true
		default:
			return false
		}
	case instance.KindDropGlue, instance.KindThreadLocalShim:
		return false
	default:
		return true
	}
}

// cheapGlue approximates the rebuild cost of destructor glue by the shape of
// the destroyed type. Named types with a user destructor defer to that
// destructor's own inlining eligibility; among the rest only enums keep
// per-unit copies, where the copy lets dead variants drop out locally.
func cheapGlue(ds *defs.Store, in *types.Interner, ty types.TypeID) bool {
	info, ok := in.AdtInfo(ty)
	if !ok {
		return true
	}
	if info.Dtor == 0 {
		return info.IsEnum
	}
	return ds.CrossUnitInlinable(defs.DefID(info.Dtor))
}
