package defs

import (
	"fmt"

	"fortio.org/safecast"

	"ember/internal/types"
)

// Store is the definition store: an append-only arena of definition records
// plus the trait/impl relations and lang items the resolver consults.
// Populated once by an upstream pass, read-only afterwards.
type Store struct {
	defs  []Def
	impls map[implKey]*Impl
	lang  Lang
}

type implKey struct {
	Trait DefID
	Self  types.TypeID
}

// Impl records one trait implementation for a concrete self type.
type Impl struct {
	Trait DefID
	Self  types.TypeID
	// Methods maps the trait method to the impl's own method.
	Methods map[DefID]DefID
}

// NewStore creates an empty definition store.
func NewStore() *Store {
	return &Store{
		defs:  make([]Def, 1), // reserve 0 as invalid sentinel
		impls: make(map[implKey]*Impl),
	}
}

// Add appends a definition record and returns its id.
func (s *Store) Add(d Def) DefID {
	lenDefs, err := safecast.Conv[uint32](len(s.defs))
	if err != nil {
		panic(fmt.Errorf("defs: arena overflow: %w", err))
	}
	s.defs = append(s.defs, d)
	return DefID(lenDefs)
}

// Get returns the definition record, or nil for an invalid id.
func (s *Store) Get(id DefID) *Def {
	if s == nil || !id.IsValid() || int(id) >= len(s.defs) {
		return nil
	}
	return &s.defs[id]
}

// MustGet panics when id is invalid.
func (s *Store) MustGet(id DefID) *Def {
	d := s.Get(id)
	if d == nil {
		panic(fmt.Sprintf("defs: invalid DefID %d", id))
	}
	return d
}

// Generics returns the generic parameter list of a definition.
func (s *Store) Generics(id DefID) Generics {
	if d := s.Get(id); d != nil {
		return d.Generics
	}
	return Generics{}
}

// IsLocal reports whether the definition belongs to the unit being compiled.
func (s *Store) IsLocal(id DefID) bool {
	d := s.Get(id)
	return d != nil && d.Unit == LocalUnit
}

// IsClosureLike reports whether the definition is a closure, a
// coroutine-closure or a coroutine.
func (s *Store) IsClosureLike(id DefID) bool {
	d := s.Get(id)
	if d == nil {
		return false
	}
	switch d.Kind {
	case KindClosure, KindCoroutineClosure, KindCoroutine:
		return true
	default:
		return false
	}
}

// TrackCaller reports whether the definition's body receives an implicit
// caller location.
func (s *Store) TrackCaller(id DefID) bool {
	return s.Get(id).Has(FlagTrackCaller)
}

// CrossUnitInlinable reports whether the definition may be inlined across
// compilation units.
func (s *Store) CrossUnitInlinable(id DefID) bool {
	return s.Get(id).Has(FlagCrossUnitInline)
}

// InheritsTrackCaller reports whether a method's caller-location requirement
// comes from the trait method rather than the implementation itself.
func (s *Store) InheritsTrackCaller(id DefID) bool {
	return s.Get(id).Has(FlagInheritTrackCaller)
}

// HasDefault reports whether a trait method carries a provided body.
func (s *Store) HasDefault(id DefID) bool {
	return s.Get(id).Has(FlagHasDefault)
}

// Tainted reports whether the definition was poisoned by an earlier,
// independently reported error.
func (s *Store) Tainted(id DefID) bool {
	return s.Get(id).Has(FlagTainted)
}

// MarkTainted poisons a definition. Intended for the diagnostics pass that
// owns the store, before resolution starts.
func (s *Store) MarkTainted(id DefID) {
	if d := s.Get(id); d != nil {
		d.Flags |= FlagTainted
	}
}

// TraitOf returns the trait a method belongs to (container or implemented).
func (s *Store) TraitOf(id DefID) DefID {
	if d := s.Get(id); d != nil {
		return d.Trait
	}
	return NoDefID
}

// Container returns where the associated item was declared.
func (s *Store) Container(id DefID) Container {
	if d := s.Get(id); d != nil {
		return d.Container
	}
	return ContainerFree
}

// CoroutineKindOf returns the desugaring kind for coroutine definitions.
func (s *Store) CoroutineKindOf(id DefID) CoroutineKind {
	if d := s.Get(id); d != nil {
		return d.Coroutine
	}
	return CoroutineNone
}

// DeclaredType returns the identity type of closure-like definitions and
// statics.
func (s *Store) DeclaredType(id DefID) types.TypeID {
	if d := s.Get(id); d != nil {
		return d.Type
	}
	return types.NoTypeID
}

// UpvarIndex returns the generic-parameter index of the tupled-captures
// argument of a closure-like definition.
func (s *Store) UpvarIndex(id DefID) (int, bool) {
	d := s.Get(id)
	if d == nil || d.UpvarSlot == 0 {
		return 0, false
	}
	return int(d.UpvarSlot) - 1, true
}

// MethodSlot returns the dispatch-table slot of a method inside its trait.
func (s *Store) MethodSlot(trait, method DefID) (uint32, bool) {
	t := s.Get(trait)
	if t == nil || t.Kind != KindTrait {
		return 0, false
	}
	for i, m := range t.Methods {
		if m == method {
			slot, err := safecast.Conv[uint32](i)
			if err != nil {
				panic(fmt.Errorf("defs: slot overflow: %w", err))
			}
			return slot, true
		}
	}
	return 0, false
}

// RegisterImpl records a trait implementation for a concrete self type.
func (s *Store) RegisterImpl(impl Impl) {
	if !impl.Trait.IsValid() || impl.Self == types.NoTypeID {
		return
	}
	cp := impl
	cp.Methods = make(map[DefID]DefID, len(impl.Methods))
	for k, v := range impl.Methods {
		cp.Methods[k] = v
	}
	s.impls[implKey{Trait: impl.Trait, Self: impl.Self}] = &cp
}

// Impl looks up the implementation of a trait for a concrete self type.
func (s *Store) Impl(trait DefID, self types.TypeID) (*Impl, bool) {
	impl, ok := s.impls[implKey{Trait: trait, Self: self}]
	return impl, ok
}

// ImplMethod resolves a trait method against the implementation registered
// for the given self type.
func (s *Store) ImplMethod(traitMethod DefID, self types.TypeID) (DefID, bool) {
	impl, ok := s.Impl(s.TraitOf(traitMethod), self)
	if !ok {
		return NoDefID, false
	}
	m, ok := impl.Methods[traitMethod]
	return m, ok
}

// Len reports the number of stored definitions, the sentinel included.
func (s *Store) Len() int {
	return len(s.defs)
}
