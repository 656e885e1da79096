package defs

import "ember/internal/types"

// Lang is the table of definitions the compiler itself gives meaning to.
// The resolver keys several of its special cases off these ids.
type Lang struct {
	// Structural destruction entry point.
	DropInPlace DefID

	// Call-family traits and their call methods.
	FnTrait        DefID
	FnCall         DefID
	FnMutTrait     DefID
	FnMutCallMut   DefID
	FnOnceTrait    DefID
	FnOnceCallOnce DefID

	// Compiler-provided duplication.
	CloneTrait DefID
	CloneFn    DefID

	// Function-pointer trait and its address method.
	FnPtrTrait DefID
	FnPtrAddr  DefID

	// Coroutine-driving traits and their callable items.
	FutureTrait        DefID
	FuturePoll         DefID
	IteratorTrait      DefID
	IteratorNext       DefID
	AsyncIteratorTrait DefID
	AsyncIteratorPoll  DefID
	CoroutineTrait     DefID
	CoroutineResume    DefID
}

// SetLang installs the lang-item table.
func (s *Store) SetLang(l Lang) {
	s.lang = l
}

// Lang returns the lang-item table.
func (s *Store) Lang() Lang {
	return s.lang
}

// CallTraitKind maps a call-family trait to the call convention it requests.
// The second result is false for traits outside the call family.
func (l Lang) CallTraitKind(trait DefID) (types.ClosureKind, bool) {
	switch trait {
	case l.FnTrait:
		return types.ClosureByRef, trait.IsValid()
	case l.FnMutTrait:
		return types.ClosureByMutRef, trait.IsValid()
	case l.FnOnceTrait:
		return types.ClosureByValue, trait.IsValid()
	default:
		return 0, false
	}
}

// CoroutineCallable returns the callable item of the coroutine-driving trait,
// or NoDefID when the trait is not one of them.
func (l Lang) CoroutineCallable(trait DefID) DefID {
	if !trait.IsValid() {
		return NoDefID
	}
	switch trait {
	case l.FutureTrait:
		return l.FuturePoll
	case l.IteratorTrait:
		return l.IteratorNext
	case l.AsyncIteratorTrait:
		return l.AsyncIteratorPoll
	case l.CoroutineTrait:
		return l.CoroutineResume
	default:
		return NoDefID
	}
}

// CoroutineTraitKind returns the desugaring kind a coroutine must have to be
// driven through the given trait.
func (l Lang) CoroutineTraitKind(trait DefID) (CoroutineKind, bool) {
	if !trait.IsValid() {
		return CoroutineNone, false
	}
	switch trait {
	case l.FutureTrait:
		return CoroutineAsync, true
	case l.IteratorTrait:
		return CoroutineGen, true
	case l.AsyncIteratorTrait:
		return CoroutineAsyncGen, true
	case l.CoroutineTrait:
		return CoroutineGeneral, true
	default:
		return CoroutineNone, false
	}
}
