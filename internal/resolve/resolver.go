package resolve

import (
	"fmt"

	"ember/internal/defs"
	"ember/internal/instance"
	"ember/internal/types"
)

// Resolver answers the question at the heart of specialization: given a call
// to a definition with concrete generic arguments, which body actually runs.
// It reads the definition store and the type interner and owns no state of
// its own, so one Resolver is safe to share across goroutines.
type Resolver struct {
	Defs  *defs.Store
	Types *types.Interner
}

// New creates a resolver over a populated store and interner.
func New(ds *defs.Store, in *types.Interner) *Resolver {
	return &Resolver{Defs: ds, Types: in}
}

// Resolve maps (definition, arguments) to the instance whose body runs.
//
// The (nil, nil) result means the arguments still mention generic parameters
// and no body can be picked yet; it is not an error. A *Error result means an
// earlier, already-reported problem poisoned the definition. Argument lists
// carrying escaping late-bound variables are a caller bug and panic.
func (r *Resolver) Resolve(def defs.DefID, args instance.ArgList) (*instance.Instance, error) {
	if args.ContainsBound(r.Types) {
		panic(fmt.Sprintf("resolve: args of %d carry late-bound variables: %v", def, args))
	}
	args = args.EraseLifetimes(r.Types)
	d := r.Defs.MustGet(def)
	if d.Has(defs.FlagTainted) {
		return nil, &Error{Def: def}
	}
	switch {
	case def.IsValid() && def == r.Defs.Lang().DropInPlace:
		return r.dropGlueFor(def, args), nil
	case d.Kind == defs.KindIntrinsic:
		return &instance.Instance{Def: instance.Intrinsic(def), Args: args}, nil
	case d.Trait.IsValid() && d.Container == defs.ContainerTrait:
		return r.resolveTraitItem(def, args)
	default:
		inst := instance.New(r.Types, def, args)
		return &inst, nil
	}
}

// ExpectResolve is Resolve for callers that already proved the call resolves,
// such as code generation revisiting a collected call site.
func (r *Resolver) ExpectResolve(def defs.DefID, args instance.ArgList) instance.Instance {
	res, err := r.Resolve(def, args)
	if err != nil {
		panic(fmt.Sprintf("resolve: failed to resolve %d: %v", def, err))
	}
	if res == nil {
		panic(fmt.Sprintf("resolve: %d stayed abstract for args %v", def, args))
	}
	return *res
}

// ResolveDropGlue returns the destructor instance for a concrete type.
func (r *Resolver) ResolveDropGlue(ty types.TypeID) instance.Instance {
	drop := r.Defs.Lang().DropInPlace
	if !drop.IsValid() {
		panic("resolve: drop entry point not registered")
	}
	return r.ExpectResolve(drop, instance.ArgList{ty})
}

// ThreadLocalAccessor returns the accessor instance for a thread-local static.
func (r *Resolver) ThreadLocalAccessor(def defs.DefID) instance.Instance {
	d := r.Defs.MustGet(def)
	if d.Kind != defs.KindStatic || !d.Has(defs.FlagThreadLocal) {
		panic(fmt.Sprintf("resolve: %d is not a thread-local static", def))
	}
	return instance.Instance{Def: instance.ThreadLocalShim(def)}
}

// dropGlueFor picks between real destructor glue and the shared no-op body.
// Types that own nothing to destroy all map to the same empty instance, so
// dropping a plain integer never materializes a function.
func (r *Resolver) dropGlueFor(def defs.DefID, args instance.ArgList) *instance.Instance {
	ty := args.TypeAt(0)
	if !types.NeedsDrop(r.Types, ty) {
		ty = types.NoTypeID
	}
	return &instance.Instance{Def: instance.DropGlue(def, ty), Args: args}
}

// resolveTraitItem resolves a method declared on a trait against the concrete
// receiver type in args.
func (r *Resolver) resolveTraitItem(method defs.DefID, args instance.ArgList) (*instance.Instance, error) {
	trait := r.Defs.TraitOf(method)
	self := args.TypeAt(0)
	tt, ok := r.Types.Lookup(self)
	if !ok {
		panic(fmt.Sprintf("resolve: trait method %d has no receiver argument", method))
	}
	lang := r.Defs.Lang()

	// An interface-object receiver always dispatches through its table,
	// whatever the trait; the table slot is fixed by declaration order.
	if tt.Kind == types.KindDynamic {
		slot, ok := r.Defs.MethodSlot(trait, method)
		if !ok {
			panic(fmt.Sprintf("resolve: method %d not found in trait %d", method, trait))
		}
		return &instance.Instance{Def: instance.Virtual(method, slot), Args: args}, nil
	}

	if requested, isCall := lang.CallTraitKind(trait); isCall {
		switch tt.Kind {
		case types.KindClosure:
			inst := r.ResolveClosure(self, requested)
			return &inst, nil
		case types.KindCoroutineClosure:
			return r.resolveCoroutineClosure(self, requested)
		case types.KindFnPtr:
			return &instance.Instance{Def: instance.FnPtrShim(method, self), Args: args}, nil
		}
	}

	if _, drives := lang.CoroutineTraitKind(trait); drives && tt.Kind == types.KindCoroutine {
		return r.resolveCoroutine(trait, method, self, args)
	}

	if trait.IsValid() && trait == lang.CloneTrait && method == lang.CloneFn {
		switch tt.Kind {
		case types.KindFnPtr, types.KindTuple, types.KindArray,
			types.KindClosure, types.KindCoroutineClosure, types.KindCoroutine:
			// Structural types get a synthesized element-wise copy routine.
			return &instance.Instance{Def: instance.CloneShim(method, self), Args: args}, nil
		}
	}

	if trait.IsValid() && trait == lang.FnPtrTrait && method == lang.FnPtrAddr {
		if tt.Kind != types.KindFnPtr {
			panic(fmt.Sprintf("resolve: pointer-address method on non-pointer receiver %d", self))
		}
		return &instance.Instance{Def: instance.FnPtrAddrShim(method, self), Args: args}, nil
	}

	if impl, ok := r.Defs.ImplMethod(method, self); ok {
		if r.Defs.Tainted(impl) {
			return nil, &Error{Def: impl}
		}
		inst := instance.New(r.Types, impl, args)
		return &inst, nil
	}

	// A receiver that still mentions parameters cannot pick an
	// implementation; the caller retries once it learns more.
	if types.ContainsParam(r.Types, self) {
		return nil, nil
	}

	if r.Defs.HasDefault(method) {
		inst := instance.New(r.Types, method, args)
		return &inst, nil
	}

	// A concrete receiver with neither an implementation nor a provided
	// body is only reachable from code that already failed checking.
	return nil, &Error{Def: method}
}
