package types

// NeedsDrop reports whether values of the type require destructor glue.
//
// The walk is structural and conservative: generic placeholders and
// interface objects are assumed to need dropping, since the concrete type
// behind them is unknown at this point.
func NeedsDrop(in *Interner, id TypeID) bool {
	return needsDrop(in, id, make(map[TypeID]struct{}))
}

func needsDrop(in *Interner, id TypeID, seen map[TypeID]struct{}) bool {
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
	switch tt.Kind {
	case KindParam, KindBound, KindDynamic:
		return true
	case KindArray:
		return needsDrop(in, tt.Elem, seen)
	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			return false
		}
		for _, elem := range info.Elems {
			if needsDrop(in, elem, seen) {
				return true
			}
		}
		return false
	case KindAdt:
		info, ok := in.AdtInfo(id)
		if !ok {
			return false
		}
		if info.Dtor != 0 {
			return true
		}
		for _, f := range info.Fields {
			if needsDrop(in, f, seen) {
				return true
			}
		}
		return false
	case KindClosure, KindCoroutineClosure, KindCoroutine:
		info, ok := in.ClosureInfo(id)
		if !ok {
			return false
		}
		return needsDrop(in, info.Upvars, seen)
	default:
		// Primitives, references, raw and function pointers are trivially
		// droppable; lifetimes and const values are not runtime values.
		return false
	}
}
