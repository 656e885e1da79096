package resolve

import (
	"fmt"

	"ember/internal/defs"
	"ember/internal/instance"
	"ember/internal/types"
)

// resolveCoroutine handles the callable items of the traits that drive
// coroutines. The coroutine's desugaring kind must match the trait it is
// driven through; any mismatch slipped past earlier checks and panics.
func (r *Resolver) resolveCoroutine(trait, method defs.DefID, self types.TypeID, args instance.ArgList) (*instance.Instance, error) {
	info, ok := r.Types.ClosureInfo(self)
	if !ok {
		panic(fmt.Sprintf("resolve: %d is not a coroutine type", self))
	}
	coroutine := defs.DefID(info.Def)
	lang := r.Defs.Lang()
	want, _ := lang.CoroutineTraitKind(trait)
	if have := r.Defs.CoroutineKindOf(coroutine); have != want {
		panic(fmt.Sprintf("resolve: %v coroutine %d driven through a %v trait", have, coroutine, want))
	}

	if method != lang.CoroutineCallable(trait) {
		// Everything except the callable item is a provided method of the
		// built-in trait and keeps its own body.
		if !r.Defs.HasDefault(method) {
			panic(fmt.Sprintf("resolve: coroutine trait method %d has no provided body", method))
		}
		inst := instance.New(r.Types, method, args)
		return &inst, nil
	}

	// A receiver whose capture convention diverges from the identity type's
	// is the by-move variant and needs the captures-owning body.
	coroutineArgs := instance.ArgList(info.Args)
	if identity, ok := r.Types.ClosureInfo(r.Defs.DeclaredType(coroutine)); ok && identity.Kind != info.Kind {
		return &instance.Instance{
			Def:  instance.CoroutineByMoveShim(coroutine),
			Args: coroutineArgs,
		}, nil
	}
	inst := instance.New(r.Types, coroutine, coroutineArgs)
	return &inst, nil
}
