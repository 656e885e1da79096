package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// ClosureInfo stores metadata for closure, coroutine-closure and coroutine
// types. One generated body may be entered with different capture conventions,
// so the convention is part of the type identity, not of the definition.
type ClosureInfo struct {
	Def    uint32      // owning definition id (raw, see AdtInfo)
	Kind   ClosureKind // capture convention carried by this particular type
	Args   []TypeID    // full generic arguments, tupled captures included
	Upvars TypeID      // tupled captures (also present inside Args)
	Sig    TypeID      // tupled parameter types of the call signature
}

// RegisterClosure creates or finds a closure type.
func (in *Interner) RegisterClosure(info ClosureInfo) TypeID {
	return in.registerClosureLike(KindClosure, info)
}

// RegisterCoroutineClosure creates or finds a coroutine-closure type.
func (in *Interner) RegisterCoroutineClosure(info ClosureInfo) TypeID {
	return in.registerClosureLike(KindCoroutineClosure, info)
}

// RegisterCoroutine creates or finds a coroutine type.
func (in *Interner) RegisterCoroutine(info ClosureInfo) TypeID {
	return in.registerClosureLike(KindCoroutine, info)
}

func (in *Interner) registerClosureLike(kind Kind, info ClosureInfo) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != kind {
			continue
		}
		if int(tt.Payload) >= len(in.closures) {
			continue
		}
		have := in.closures[tt.Payload]
		if have.Def == info.Def && have.Kind == info.Kind && slices.Equal(have.Args, info.Args) {
			return id
		}
	}
	slot := in.appendClosureInfo(ClosureInfo{
		Def:    info.Def,
		Kind:   info.Kind,
		Args:   cloneTypeArgs(info.Args),
		Upvars: info.Upvars,
		Sig:    info.Sig,
	})
	return in.internRaw(Type{Kind: kind, Payload: slot})
}

// ClosureInfo retrieves closure-like metadata by TypeID.
func (in *Interner) ClosureInfo(id TypeID) (*ClosureInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	tt, ok := in.lookupLocked(id)
	if !ok {
		return nil, false
	}
	switch tt.Kind {
	case KindClosure, KindCoroutineClosure, KindCoroutine:
	default:
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.closures) {
		return nil, false
	}
	return &in.closures[tt.Payload], true
}

func (in *Interner) appendClosureInfo(info ClosureInfo) uint32 {
	in.closures = append(in.closures, info)
	slot, err := safecast.Conv[uint32](len(in.closures) - 1)
	if err != nil {
		panic(fmt.Errorf("closure info overflow: %w", err))
	}
	return slot
}
