package instance

import (
	"fmt"

	"ember/internal/defs"
	"ember/internal/types"
)

// Kind discriminates the closed set of instance body kinds. Every consumer
// switches exhaustively over it; adding a kind is a compile-time-checked
// change at each switch.
type Kind uint8

const (
	// KindItem is an ordinary definition body: fn, method, closure, coroutine.
	KindItem Kind = iota
	// KindIntrinsic has no independent body; calls are lowered in place.
	KindIntrinsic
	// KindVTableShim adapts a method whose receiver cannot be passed as the
	// implementation expects: the shim takes an indirect pointer and
	// dereferences once.
	KindVTableShim
	// KindReifyShim exposes a function as a plain function pointer when the
	// target cannot be taken by pointer directly.
	KindReifyShim
	// KindFnPtrShim implements a call-family method for a function pointer
	// type.
	KindFnPtrShim
	// KindVirtual is dynamic dispatch through a dispatch table; it has no
	// generated body and must be lowered as an indirect call.
	KindVirtual
	// KindClosureOnceShim adapts a by-reference closure call into a by-value
	// call-once entry point.
	KindClosureOnceShim
	// KindConstructCoroutineInClosureShim builds a coroutine value that moves
	// a coroutine-closure's captures out, for a requested call convention.
	KindConstructCoroutineInClosureShim
	// KindCoroutineByMoveShim is the coroutine body variant that takes
	// ownership of captures instead of borrowing them.
	KindCoroutineByMoveShim
	// KindThreadLocalShim is an accessor returning a reference to a
	// thread-local slot, for platforms without native thread-local export.
	KindThreadLocalShim
	// KindDropGlue is the destructor body for a concrete type; with no type
	// attached it is the no-op drop.
	KindDropGlue
	// KindCloneShim is the compiler-synthesized duplication routine for a
	// structural type.
	KindCloneShim
	// KindFnPtrAddrShim returns the address of a function-pointer value.
	KindFnPtrAddrShim
)

func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindIntrinsic:
		return "intrinsic"
	case KindVTableShim:
		return "vtable-shim"
	case KindReifyShim:
		return "reify-shim"
	case KindFnPtrShim:
		return "fnptr-shim"
	case KindVirtual:
		return "virtual"
	case KindClosureOnceShim:
		return "closure-once-shim"
	case KindConstructCoroutineInClosureShim:
		return "construct-coroutine-in-closure-shim"
	case KindCoroutineByMoveShim:
		return "coroutine-by-move-shim"
	case KindThreadLocalShim:
		return "thread-local-shim"
	case KindDropGlue:
		return "drop-glue"
	case KindCloneShim:
		return "clone-shim"
	case KindFnPtrAddrShim:
		return "fnptr-addr-shim"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Def is one instance body variant with its payload. All fields are
// comparable, so Def is usable directly as a map key component.
type Def struct {
	Kind Kind
	ID   defs.DefID
	// Type rides along for FnPtrShim, DropGlue (NoTypeID = no-op glue),
	// CloneShim and FnPtrAddrShim.
	Type types.TypeID
	// Slot is the dispatch-table index for Virtual.
	Slot uint32
	// TrackCaller is the caller-location flag for ClosureOnceShim.
	TrackCaller bool
	// Target is the requested call convention for
	// ConstructCoroutineInClosureShim.
	Target types.ClosureKind
}

// Item builds the variant for an ordinary definition body.
func Item(id defs.DefID) Def { return Def{Kind: KindItem, ID: id} }

// Intrinsic builds the variant for a compiler-magic primitive.
func Intrinsic(id defs.DefID) Def { return Def{Kind: KindIntrinsic, ID: id} }

// VTableShim builds the unsized-receiver adapter variant.
func VTableShim(id defs.DefID) Def { return Def{Kind: KindVTableShim, ID: id} }

// ReifyShim builds the function-pointer adapter variant.
func ReifyShim(id defs.DefID) Def { return Def{Kind: KindReifyShim, ID: id} }

// FnPtrShim builds the call-through-pointer adapter for ty.
func FnPtrShim(id defs.DefID, ty types.TypeID) Def {
	return Def{Kind: KindFnPtrShim, ID: id, Type: ty}
}

// Virtual builds the dispatch-table variant for the given slot.
func Virtual(id defs.DefID, slot uint32) Def {
	return Def{Kind: KindVirtual, ID: id, Slot: slot}
}

// ClosureOnceShim builds the by-value call-once adapter.
func ClosureOnceShim(callOnce defs.DefID, trackCaller bool) Def {
	return Def{Kind: KindClosureOnceShim, ID: callOnce, TrackCaller: trackCaller}
}

// ConstructCoroutineInClosureShim builds the captures-moving coroutine
// constructor for the requested call convention.
func ConstructCoroutineInClosureShim(id defs.DefID, target types.ClosureKind) Def {
	return Def{Kind: KindConstructCoroutineInClosureShim, ID: id, Target: target}
}

// CoroutineByMoveShim builds the captures-owning coroutine body variant.
func CoroutineByMoveShim(id defs.DefID) Def {
	return Def{Kind: KindCoroutineByMoveShim, ID: id}
}

// ThreadLocalShim builds the thread-local accessor variant.
func ThreadLocalShim(id defs.DefID) Def { return Def{Kind: KindThreadLocalShim, ID: id} }

// DropGlue builds the destructor variant; NoTypeID means no-op glue.
func DropGlue(id defs.DefID, ty types.TypeID) Def {
	return Def{Kind: KindDropGlue, ID: id, Type: ty}
}

// CloneShim builds the synthesized duplication routine for ty.
func CloneShim(id defs.DefID, ty types.TypeID) Def {
	return Def{Kind: KindCloneShim, ID: id, Type: ty}
}

// FnPtrAddrShim builds the pointer-address extraction routine for ty.
func FnPtrAddrShim(id defs.DefID, ty types.TypeID) Def {
	return Def{Kind: KindFnPtrAddrShim, ID: id, Type: ty}
}

// DefID returns the definition the variant hangs off.
func (d Def) DefID() defs.DefID { return d.ID }

// Instance couples a body variant with one argument list. It identifies a
// single concretely-generated (or dispatch-special-cased) body and is
// immutable after construction.
type Instance struct {
	Def  Def
	Args ArgList
}

// Key is a comparable form of an Instance for map-based deduplication.
type Key struct {
	Def  Def
	Args string
}

// New builds an Item instance, asserting the arguments were normalized for
// code generation.
func New(in *types.Interner, id defs.DefID, args ArgList) Instance {
	if args.ContainsBound(in) {
		panic(fmt.Sprintf("instance: args of %d not normalized for codegen: %v", id, args))
	}
	return Instance{Def: Item(id), Args: args}
}

// Mono builds the instance of a definition with no type or const parameters.
// Lifetime parameters are filled with the erased lifetime.
func Mono(st *defs.Store, in *types.Interner, id defs.DefID) Instance {
	g := st.Generics(id)
	args := make(ArgList, 0, g.Arity())
	for _, p := range g.Params {
		switch p.Kind {
		case defs.ParamLifetime:
			args = append(args, in.Builtins().ErasedRegion)
		default:
			panic(fmt.Sprintf("instance: Mono: %d has %v parameters", id, p.Kind))
		}
	}
	return New(in, id, args)
}

// DefID returns the definition id of the instance.
func (i Instance) DefID() defs.DefID { return i.Def.ID }

// Key returns the comparable deduplication key.
func (i Instance) Key() Key {
	return Key{Def: i.Def, Args: i.Args.Key()}
}

// Equal reports structural equality.
func (i Instance) Equal(o Instance) bool {
	return i.Key() == o.Key()
}

// HasPolymorphicBody reports whether the body associated with the instance is
// expressed in terms of its definition's generic parameters and must be
// instantiated with Args by its consumers. The remaining shim kinds build
// their bodies pre-instantiated.
func (i Instance) HasPolymorphicBody() bool {
	switch i.Def.Kind {
	case KindCloneShim, KindThreadLocalShim, KindFnPtrAddrShim, KindFnPtrShim:
		return false
	case KindDropGlue:
		return i.Def.Type == types.NoTypeID
	case KindItem, KindIntrinsic, KindVTableShim, KindReifyShim, KindVirtual,
		KindClosureOnceShim, KindConstructCoroutineInClosureShim, KindCoroutineByMoveShim:
		return true
	default:
		panic(fmt.Sprintf("instance: unknown kind %v", i.Def.Kind))
	}
}

// ArgsForBody returns the argument list a consumer must substitute into the
// body, or false when the body is already fully instantiated.
func (i Instance) ArgsForBody() (ArgList, bool) {
	if i.HasPolymorphicBody() {
		return i.Args, true
	}
	return nil, false
}

// RequiresCallerLocation reports whether calls must pass an implicit caller
// location to this instance.
func (i Instance) RequiresCallerLocation(st *defs.Store) bool {
	switch i.Def.Kind {
	case KindItem, KindVirtual:
		return st.TrackCaller(i.Def.ID)
	case KindClosureOnceShim:
		return i.Def.TrackCaller
	default:
		return false
	}
}

// DefIDIfNotGuaranteedLocalCodegen returns the definition id for instances
// that might not need local code generation.
func (i Instance) DefIDIfNotGuaranteedLocalCodegen() (defs.DefID, bool) {
	switch i.Def.Kind {
	case KindItem, KindThreadLocalShim:
		return i.Def.ID, true
	case KindDropGlue:
		if i.Def.Type != types.NoTypeID {
			return i.Def.ID, true
		}
		return defs.NoDefID, false
	default:
		return defs.NoDefID, false
	}
}
