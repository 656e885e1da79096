package types

import "fmt"

// TypeID uniquely identifies a type inside the interner.
type TypeID uint32

// NoTypeID marks the absence of a type.
const NoTypeID TypeID = 0

// Kind enumerates all supported kinds of types.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindUnit
	KindNever
	KindBool
	KindStr
	KindInt
	KindUint
	KindFloat
	KindArray
	KindRawPtr
	KindRef
	KindTuple
	KindFnPtr
	KindDynamic
	KindAdt
	KindClosure
	KindCoroutineClosure
	KindCoroutine
	KindParam
	KindConst
	KindLifetime
	KindBound
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindUnit:
		return "unit"
	case KindNever:
		return "never"
	case KindBool:
		return "bool"
	case KindStr:
		return "str"
	case KindInt:
		return "int"
	case KindUint:
		return "uint"
	case KindFloat:
		return "float"
	case KindArray:
		return "array"
	case KindRawPtr:
		return "rawptr"
	case KindRef:
		return "ref"
	case KindTuple:
		return "tuple"
	case KindFnPtr:
		return "fnptr"
	case KindDynamic:
		return "dynamic"
	case KindAdt:
		return "adt"
	case KindClosure:
		return "closure"
	case KindCoroutineClosure:
		return "coroutine-closure"
	case KindCoroutine:
		return "coroutine"
	case KindParam:
		return "param"
	case KindConst:
		return "const"
	case KindLifetime:
		return "lifetime"
	case KindBound:
		return "bound"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Width captures the precision of integers/floats.
type Width uint8

const (
	WidthAny Width = 0
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
)

// ClosureKind is the native call convention of a closure body: the strongest
// way its captures can be touched by one call.
type ClosureKind uint8

const (
	// ClosureByRef closures borrow their captures immutably per call.
	ClosureByRef ClosureKind = iota
	// ClosureByMutRef closures borrow their captures mutably per call.
	ClosureByMutRef
	// ClosureByValue closures consume their captures; callable once.
	ClosureByValue
)

func (k ClosureKind) String() string {
	switch k {
	case ClosureByRef:
		return "by-ref"
	case ClosureByMutRef:
		return "by-mut"
	case ClosureByValue:
		return "by-value"
	default:
		return fmt.Sprintf("ClosureKind(%d)", k)
	}
}

// Type is a compact descriptor for any supported type.
//
// Payload indexes a kind-specific side table inside the interner for
// aggregate kinds (tuples, fn pointers, ADTs, closure-likes, params, consts).
type Type struct {
	Kind    Kind
	Elem    TypeID
	Count   uint32 // array length, virtual trait id for dynamics, region for lifetimes
	Width   Width  // numeric primitives
	Mutable bool   // references and raw pointers
	Payload uint32
}
