package types

import (
	"fmt"
	"sync"

	"fortio.org/safecast"
)

// Builtins stores TypeIDs for common primitive types.
type Builtins struct {
	Invalid       TypeID
	Unit          TypeID
	Never         TypeID
	Bool          TypeID
	Str           TypeID
	Int           TypeID
	Uint          TypeID
	Float         TypeID
	ErasedRegion  TypeID
	ConstTrue     TypeID
	EmptyTuple    TypeID
}

// Interner provides stable TypeIDs by hashing structural descriptors.
// Safe for concurrent use: all finds and appends run under one lock.
type Interner struct {
	mu       sync.RWMutex
	types    []Type
	index    map[typeKey]TypeID
	builtins Builtins
	tuples   []TupleInfo
	fns      []FnInfo
	adts     []AdtInfo
	closures []ClosureInfo
	params   []ParamInfo
	consts   []ConstInfo
}

// NewInterner constructs an interner seeded with built-in primitives.
func NewInterner() *Interner {
	in := &Interner{
		index: make(map[typeKey]TypeID, 64),
	}
	// Slot 0 of every side table is reserved as an invalid sentinel.
	in.tuples = append(in.tuples, TupleInfo{})
	in.fns = append(in.fns, FnInfo{})
	in.adts = append(in.adts, AdtInfo{})
	in.closures = append(in.closures, ClosureInfo{})
	in.params = append(in.params, ParamInfo{})
	in.consts = append(in.consts, ConstInfo{})

	in.builtins.Invalid = in.internRaw(Type{Kind: KindInvalid})
	in.builtins.Unit = in.Intern(Type{Kind: KindUnit})
	in.builtins.Never = in.Intern(Type{Kind: KindNever})
	in.builtins.Bool = in.Intern(Type{Kind: KindBool})
	in.builtins.Str = in.Intern(Type{Kind: KindStr})
	in.builtins.Int = in.Intern(MakeInt(WidthAny))
	in.builtins.Uint = in.Intern(MakeUint(WidthAny))
	in.builtins.Float = in.Intern(MakeFloat(WidthAny))
	in.builtins.ErasedRegion = in.Intern(Type{Kind: KindLifetime})
	in.builtins.ConstTrue = in.RegisterConst(in.builtins.Bool, 1)
	in.builtins.EmptyTuple = in.RegisterTuple(nil)
	return in
}

// Builtins returns TypeIDs for primitive types.
func (in *Interner) Builtins() Builtins {
	return in.builtins
}

// MakeInt builds a signed integer descriptor.
func MakeInt(w Width) Type { return Type{Kind: KindInt, Width: w} }

// MakeUint builds an unsigned integer descriptor.
func MakeUint(w Width) Type { return Type{Kind: KindUint, Width: w} }

// MakeFloat builds a float descriptor.
func MakeFloat(w Width) Type { return Type{Kind: KindFloat, Width: w} }

// MakeRef builds a reference descriptor.
func MakeRef(elem TypeID, mutable bool) Type {
	return Type{Kind: KindRef, Elem: elem, Mutable: mutable}
}

// MakeRawPtr builds a raw pointer descriptor.
func MakeRawPtr(elem TypeID, mutable bool) Type {
	return Type{Kind: KindRawPtr, Elem: elem, Mutable: mutable}
}

// MakeArray builds a fixed-length array descriptor.
func MakeArray(elem TypeID, count uint32) Type {
	return Type{Kind: KindArray, Elem: elem, Count: count}
}

// MakeDynamic builds an interface-object descriptor for the given trait.
func MakeDynamic(trait uint32) Type {
	return Type{Kind: KindDynamic, Count: trait}
}

// MakeRegion builds a lifetime descriptor for the given region id.
// Region 0 is the canonical erased lifetime.
func MakeRegion(region uint32) Type {
	return Type{Kind: KindLifetime, Count: region}
}

// MakeBound builds a late-bound variable descriptor. Bound variables must be
// instantiated away before any type reaches the resolution engine.
func MakeBound(debruijn uint32) Type {
	return Type{Kind: KindBound, Count: debruijn}
}

// Intern ensures the provided descriptor has a stable TypeID.
func (in *Interner) Intern(t Type) TypeID {
	if t.Kind == KindInvalid {
		return NoTypeID
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	key := typeKey(t)
	if id, ok := in.index[key]; ok {
		return id
	}
	return in.internRaw(t)
}

// internRaw adds the descriptor to the storage without consulting the map.
// The caller must hold the write lock.
func (in *Interner) internRaw(t Type) TypeID {
	lenTypes, err := safecast.Conv[uint32](len(in.types))
	if err != nil {
		panic(fmt.Errorf("len(types) overflow: %w", err))
	}
	id := TypeID(lenTypes)
	in.types = append(in.types, t)
	key := typeKey(t)
	in.index[key] = id
	return id
}

// Lookup returns the descriptor for a TypeID.
func (in *Interner) Lookup(id TypeID) (Type, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.lookupLocked(id)
}

func (in *Interner) lookupLocked(id TypeID) (Type, bool) {
	if id == NoTypeID || int(id) >= len(in.types) {
		return Type{}, false
	}
	return in.types[id], true
}

// MustLookup panics when id is invalid.
func (in *Interner) MustLookup(id TypeID) Type {
	tt, ok := in.Lookup(id)
	if !ok {
		panic("types: invalid TypeID")
	}
	return tt
}

// Len reports the number of interned descriptors, the invalid sentinel included.
func (in *Interner) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.types)
}

type typeKey Type

func cloneTypeArgs(args []TypeID) []TypeID {
	if len(args) == 0 {
		return nil
	}
	out := make([]TypeID, len(args))
	copy(out, args)
	return out
}
