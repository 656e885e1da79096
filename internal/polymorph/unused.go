package polymorph

import "ember/internal/defs"

// Capacity is the highest parameter index the bitset can record. Definitions
// with more generic parameters degrade to "all used", never to an error.
const Capacity = 64

// UnusedParams records which generic parameters of a definition are provably
// unobserved in its compiled body. Set bits represent unused parameters; an
// empty set means every parameter is used, which is also the default when no
// analysis ran.
type UnusedParams struct {
	bits uint64
}

// NewAllUsed returns the conservative default.
func NewAllUsed() UnusedParams {
	return UnusedParams{}
}

// NewAllUnused marks the first amount parameters unused. Amounts past
// Capacity degrade to all-used.
func NewAllUnused(amount int) UnusedParams {
	switch {
	case amount <= 0 || amount > Capacity:
		return UnusedParams{}
	case amount == Capacity:
		return UnusedParams{bits: ^uint64(0)}
	default:
		return UnusedParams{bits: (uint64(1) << amount) - 1}
	}
}

// FromBits rebuilds a bitset from its raw word.
func FromBits(bits uint64) UnusedParams {
	return UnusedParams{bits: bits}
}

// Bits returns the raw word.
func (u UnusedParams) Bits() uint64 {
	return u.bits
}

// MarkUsed clears the bit for the parameter index.
func (u *UnusedParams) MarkUsed(idx uint32) {
	if idx < Capacity {
		u.bits &^= uint64(1) << idx
	}
}

// MarkUnused sets the bit for the parameter index. Out-of-range indexes are
// ignored, keeping them "used".
func (u *UnusedParams) MarkUnused(idx uint32) {
	if idx < Capacity {
		u.bits |= uint64(1) << idx
	}
}

// IsUnused reports whether the parameter is provably unobserved.
func (u UnusedParams) IsUnused(idx uint32) bool {
	if idx >= Capacity {
		return false
	}
	return u.bits&(uint64(1)<<idx) != 0
}

// IsUsed is the complement of IsUnused.
func (u UnusedParams) IsUsed(idx uint32) bool {
	return !u.IsUnused(idx)
}

// AllUsed reports whether no parameter is marked unused.
func (u UnusedParams) AllUsed() bool {
	return u.bits == 0
}

// Provider hands out liveness analysis results per definition. The engine
// never computes them; a whole-program pass does, once, before resolution.
type Provider interface {
	UnusedParams(def defs.DefID) UnusedParams
}

// StaticProvider is a map-backed Provider; missing entries default to
// all-used.
type StaticProvider map[defs.DefID]UnusedParams

// UnusedParams implements Provider.
func (p StaticProvider) UnusedParams(def defs.DefID) UnusedParams {
	if p == nil {
		return NewAllUsed()
	}
	return p[def]
}
