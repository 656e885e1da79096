package polymorph

import (
	"fortio.org/safecast"

	"ember/internal/defs"
	"ember/internal/instance"
	"ember/internal/types"
)

// Folder rewrites argument lists so that statically-unused parameters are
// replaced by their own canonical placeholders. Instances that differ only in
// unused arguments then fold to one shared key, and code generation emits a
// single body for all of them.
type Folder struct {
	Types  *types.Interner
	Defs   *defs.Store
	Unused Provider
	// Enabled gates the whole fold; when false every operation is identity.
	Enabled bool
}

// Instance folds the instance's argument list.
func (f *Folder) Instance(inst instance.Instance) instance.Instance {
	if f == nil || !f.Enabled {
		return inst
	}
	return instance.Instance{Def: inst.Def, Args: f.Fold(inst.DefID(), inst.Args)}
}

// Fold returns the argument list with every unused type/const argument
// unbound to its parameter's placeholder. The list length never changes and
// the operation is idempotent.
//
// The tupled-captures argument of closure-like definitions is never unbound
// (captures are always observed), but closures and coroutines nested inside
// the captured values are folded recursively; leaving them unfolded would
// make one folded body reference differently-specialized inner bodies and
// produce clashing generated names.
func (f *Folder) Fold(def defs.DefID, args instance.ArgList) instance.ArgList {
	if f == nil || !f.Enabled {
		return args
	}
	unused := NewAllUsed()
	if f.Unused != nil {
		unused = f.Unused.UnusedParams(def)
	}
	g := f.Defs.Generics(def)

	upvarIdx, hasUpvarParam := f.Defs.UpvarIndex(def)
	hasUpvars := false
	if hasUpvarParam {
		if info, ok := f.Types.TupleInfo(args.TypeAt(upvarIdx)); ok && len(info.Elems) > 0 {
			hasUpvars = true
		}
	}

	var out instance.ArgList
	set := func(i int, id types.TypeID) {
		if out == nil {
			out = args.Clone()
		}
		out[i] = id
	}
	for i, p := range g.Params {
		if i >= len(args) {
			break
		}
		switch {
		case p.Kind == defs.ParamType && hasUpvars && i == upvarIdx:
			if folded := f.foldType(args[i]); folded != args[i] {
				set(i, folded)
			}
		case p.Kind != defs.ParamLifetime && unused.IsUnused(paramIndex(i)):
			set(i, f.placeholder(def, i, p))
		}
	}
	if out == nil {
		return args
	}
	return out
}

func (f *Folder) placeholder(def defs.DefID, index int, p defs.GenericParam) types.TypeID {
	return f.Types.RegisterParam(types.ParamInfo{
		Name:    p.Name,
		Owner:   uint32(def),
		Index:   paramIndex(index),
		IsConst: p.Kind == defs.ParamConst,
	})
}

// foldType recursively folds closure and coroutine types nested anywhere in
// the given type. Nesting follows the finite lexical structure of the source,
// so plain structural recursion terminates.
func (f *Folder) foldType(id types.TypeID) types.TypeID {
	tt, ok := f.Types.Lookup(id)
	if !ok {
		return id
	}
	switch tt.Kind {
	case types.KindClosure, types.KindCoroutineClosure, types.KindCoroutine:
		info, ok := f.Types.ClosureInfo(id)
		if !ok {
			return id
		}
		owner := defs.DefID(info.Def)
		foldedArgs := f.Fold(owner, instance.ArgList(info.Args))
		if instance.ArgList(info.Args).Key() == foldedArgs.Key() {
			return id
		}
		folded := types.ClosureInfo{
			Def:    info.Def,
			Kind:   info.Kind,
			Args:   foldedArgs,
			Upvars: info.Upvars,
			Sig:    info.Sig,
		}
		if idx, ok := f.Defs.UpvarIndex(owner); ok {
			folded.Upvars = foldedArgs.TypeAt(idx)
		}
		switch tt.Kind {
		case types.KindClosure:
			return f.Types.RegisterClosure(folded)
		case types.KindCoroutineClosure:
			return f.Types.RegisterCoroutineClosure(folded)
		default:
			return f.Types.RegisterCoroutine(folded)
		}
	case types.KindTuple:
		info, ok := f.Types.TupleInfo(id)
		if !ok {
			return id
		}
		elems, changed := f.foldAll(info.Elems)
		if !changed {
			return id
		}
		return f.Types.RegisterTuple(elems)
	case types.KindArray, types.KindRef, types.KindRawPtr:
		elem := f.foldType(tt.Elem)
		if elem == tt.Elem {
			return id
		}
		next := tt
		next.Elem = elem
		return f.Types.Intern(next)
	case types.KindAdt:
		info, ok := f.Types.AdtInfo(id)
		if !ok {
			return id
		}
		adtArgs, changedArgs := f.foldAll(info.Args)
		fields, changedFields := f.foldAll(info.Fields)
		if !changedArgs && !changedFields {
			return id
		}
		next := *info
		next.Args = adtArgs
		next.Fields = fields
		return f.Types.RegisterAdt(next)
	case types.KindFnPtr:
		info, ok := f.Types.FnInfo(id)
		if !ok {
			return id
		}
		params, changed := f.foldAll(info.Params)
		result := f.foldType(info.Result)
		if !changed && result == info.Result {
			return id
		}
		return f.Types.RegisterFnPtr(params, result)
	default:
		return id
	}
}

func (f *Folder) foldAll(ids []types.TypeID) ([]types.TypeID, bool) {
	changed := false
	out := make([]types.TypeID, len(ids))
	for i, id := range ids {
		out[i] = f.foldType(id)
		if out[i] != id {
			changed = true
		}
	}
	return out, changed
}

func paramIndex(i int) uint32 {
	idx, err := safecast.Conv[uint32](i)
	if err != nil {
		panic(err)
	}
	return idx
}
