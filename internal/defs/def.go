package defs

import "ember/internal/types"

// Kind classifies a definition.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindFn
	KindAssocFn
	KindCtor
	KindClosure
	KindCoroutineClosure
	KindCoroutine
	KindTrait
	KindStatic
	KindIntrinsic
)

// Flags carry per-definition attributes consumed by the resolution engine.
type Flags uint16

const (
	// FlagTrackCaller marks bodies that receive an implicit caller location.
	FlagTrackCaller Flags = 1 << iota
	// FlagCrossUnitInline marks definitions inlinable across compilation units.
	FlagCrossUnitInline
	// FlagInheritTrackCaller marks impl methods whose caller-location
	// requirement is inherited from the trait method, not declared locally.
	FlagInheritTrackCaller
	// FlagHasDefault marks trait methods with a provided body.
	FlagHasDefault
	// FlagThreadLocal marks statics living in thread-local storage.
	FlagThreadLocal
	// FlagTainted marks definitions poisoned by an already-reported error.
	FlagTainted
)

// Container tells where an associated item was written down.
type Container uint8

const (
	ContainerFree Container = iota
	ContainerTrait
	ContainerImpl
)

// CoroutineKind is the surface desugaring that produced a coroutine body.
type CoroutineKind uint8

const (
	CoroutineNone CoroutineKind = iota
	CoroutineAsync
	CoroutineGen
	CoroutineAsyncGen
	CoroutineGeneral
)

func (k CoroutineKind) String() string {
	switch k {
	case CoroutineNone:
		return "none"
	case CoroutineAsync:
		return "async"
	case CoroutineGen:
		return "gen"
	case CoroutineAsyncGen:
		return "async-gen"
	case CoroutineGeneral:
		return "general"
	default:
		return "unknown"
	}
}

// ParamKind classifies one generic parameter.
type ParamKind uint8

const (
	ParamLifetime ParamKind = iota
	ParamType
	ParamConst
)

// GenericParam describes one generic parameter in declaration order.
type GenericParam struct {
	Name string
	Kind ParamKind
}

// Generics is a definition's generic parameter list.
type Generics struct {
	Params  []GenericParam
	HasSelf bool
}

// Arity returns the number of generic parameters.
func (g Generics) Arity() int { return len(g.Params) }

// Def is one definition record. Records are immutable once added; the
// resolution engine consumes them read-only.
type Def struct {
	Kind      Kind
	Name      string
	Unit      UnitID
	Flags     Flags
	Generics  Generics
	Container Container
	// Trait is the containing trait for trait methods, or the implemented
	// trait for impl methods.
	Trait DefID
	// Sig holds the input parameter types of callable definitions in their
	// identity (unsubstituted) form. Only the receiver slot is inspected here.
	Sig []types.TypeID
	// Type is the declared identity type for closure-like definitions and
	// statics.
	Type types.TypeID
	// UpvarSlot is 1 + the generic-parameter index of the tupled-captures
	// argument for closure-like definitions; 0 means no captures parameter.
	UpvarSlot uint32
	// Methods lists a trait's methods in declaration order; the position is
	// the dispatch-table slot.
	Methods []DefID
	// Coroutine is the desugaring kind for coroutine definitions.
	Coroutine CoroutineKind
}

// Has reports whether all given flags are set.
func (d *Def) Has(f Flags) bool {
	return d != nil && d.Flags&f == f
}
