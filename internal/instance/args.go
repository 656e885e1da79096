package instance

import (
	"strconv"
	"strings"

	"ember/internal/types"
)

// ArgList is an ordered list of generic arguments bound to one definition's
// parameter list, in declaration order. Const values and lifetimes are
// interned types like everything else, so one TypeID slice covers all three
// argument kinds. Lists are never mutated in place; transformations return a
// fresh list.
type ArgList []types.TypeID

// Clone returns an independent copy of the list.
func (a ArgList) Clone() ArgList {
	if len(a) == 0 {
		return nil
	}
	out := make(ArgList, len(a))
	copy(out, a)
	return out
}

// Key produces a deterministic string form usable as a map key.
//
// Note: Go maps cannot use slices as keys, so instance deduplication stores
// this stable key alongside the list itself.
func (a ArgList) Key() string {
	if len(a) == 0 {
		return ""
	}
	var b strings.Builder
	for i, arg := range a {
		if i > 0 {
			b.WriteByte('#')
		}
		b.WriteString(strconv.FormatUint(uint64(arg), 10))
	}
	return b.String()
}

// EraseLifetimes returns a list with every lifetime argument replaced by the
// canonical erased lifetime. Lifetimes never affect which body runs, so all
// lookups and cache keys are computed on the erased form.
func (a ArgList) EraseLifetimes(in *types.Interner) ArgList {
	if in == nil {
		return a
	}
	erased := in.Builtins().ErasedRegion
	var out ArgList
	for i, arg := range a {
		tt, ok := in.Lookup(arg)
		if !ok || tt.Kind != types.KindLifetime || arg == erased {
			continue
		}
		if out == nil {
			out = a.Clone()
		}
		out[i] = erased
	}
	if out == nil {
		return a
	}
	return out
}

// TypeAt returns the argument at the given position, NoTypeID out of range.
func (a ArgList) TypeAt(i int) types.TypeID {
	if i < 0 || i >= len(a) {
		return types.NoTypeID
	}
	return a[i]
}

// HasNonLifetimeArgs reports whether any argument is a type or const
// argument. Instances without such arguments cannot be shared
// specializations.
func (a ArgList) HasNonLifetimeArgs(in *types.Interner) bool {
	for _, arg := range a {
		tt, ok := in.Lookup(arg)
		if !ok {
			continue
		}
		if tt.Kind != types.KindLifetime {
			return true
		}
	}
	return false
}

// ContainsParams reports whether any argument still mentions a generic
// parameter placeholder.
func (a ArgList) ContainsParams(in *types.Interner) bool {
	for _, arg := range a {
		if types.ContainsParam(in, arg) {
			return true
		}
	}
	return false
}

// ContainsBound reports whether any argument mentions an escaping late-bound
// variable. Such lists must never reach the resolution engine.
func (a ArgList) ContainsBound(in *types.Interner) bool {
	for _, arg := range a {
		if types.ContainsBound(in, arg) {
			return true
		}
	}
	return false
}
