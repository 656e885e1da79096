package types

// ContainsParam reports whether the type mentions a generic parameter
// placeholder anywhere in its structure.
func ContainsParam(in *Interner, id TypeID) bool {
	return containsKind(in, id, KindParam, make(map[TypeID]struct{}))
}

// ContainsBound reports whether the type mentions a late-bound variable
// anywhere in its structure.
func ContainsBound(in *Interner, id TypeID) bool {
	return containsKind(in, id, KindBound, make(map[TypeID]struct{}))
}

func containsKind(in *Interner, id TypeID, want Kind, seen map[TypeID]struct{}) bool {
	if in == nil || id == NoTypeID {
		return false
	}
	if _, ok := seen[id]; ok {
		return false
	}
	seen[id] = struct{}{}
	tt, ok := in.Lookup(id)
	if !ok {
		return false
	}
	if tt.Kind == want {
		return true
	}
	switch tt.Kind {
	case KindArray, KindRawPtr, KindRef:
		return containsKind(in, tt.Elem, want, seen)
	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return false
		}
		return anyContainsKind(in, info.Elems, want, seen)
	case KindFnPtr:
		info, ok := in.FnInfo(id)
		if !ok {
			return false
		}
		return anyContainsKind(in, info.Params, want, seen) || containsKind(in, info.Result, want, seen)
	case KindAdt:
		info, ok := in.AdtInfo(id)
		if !ok {
			return false
		}
		return anyContainsKind(in, info.Args, want, seen)
	case KindClosure, KindCoroutineClosure, KindCoroutine:
		info, ok := in.ClosureInfo(id)
		if !ok {
			return false
		}
		return anyContainsKind(in, info.Args, want, seen)
	case KindConst:
		info, ok := in.ConstInfo(id)
		if !ok {
			return false
		}
		return containsKind(in, info.Type, want, seen)
	default:
		return false
	}
}

func anyContainsKind(in *Interner, ids []TypeID, want Kind, seen map[TypeID]struct{}) bool {
	for _, id := range ids {
		if containsKind(in, id, want, seen) {
			return true
		}
	}
	return false
}
