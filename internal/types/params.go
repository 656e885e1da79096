package types

import (
	"fmt"

	"fortio.org/safecast"
)

// ParamInfo stores metadata about a generic parameter placeholder.
type ParamInfo struct {
	Name      string
	Owner     uint32 // owning definition id (raw, see AdtInfo)
	Index     uint32
	IsConst   bool
	ConstType TypeID
}

// RegisterParam allocates or reuses the canonical placeholder for the
// (owner, index) pair. Placeholders must be canonical: specialization folding
// relies on two folds producing identical argument lists.
func (in *Interner) RegisterParam(info ParamInfo) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.paramForLocked(info.Owner, info.Index); ok {
		return id
	}
	slot := in.appendParamInfo(info)
	return in.internRaw(Type{Kind: KindParam, Count: info.Owner, Payload: slot})
}

// ParamFor finds the placeholder for the (owner, index) pair, if registered.
func (in *Interner) ParamFor(owner, index uint32) (TypeID, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return in.paramForLocked(owner, index)
}

func (in *Interner) paramForLocked(owner, index uint32) (TypeID, bool) {
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindParam || tt.Count != owner {
			continue
		}
		if int(tt.Payload) >= len(in.params) {
			continue
		}
		if in.params[tt.Payload].Index == index {
			return id, true
		}
	}
	return NoTypeID, false
}

// ParamInfo returns metadata for the provided placeholder.
func (in *Interner) ParamInfo(id TypeID) (*ParamInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	tt, ok := in.lookupLocked(id)
	if !ok || tt.Kind != KindParam {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.params) {
		return nil, false
	}
	return &in.params[tt.Payload], true
}

func (in *Interner) appendParamInfo(info ParamInfo) uint32 {
	in.params = append(in.params, info)
	slot, err := safecast.Conv[uint32](len(in.params) - 1)
	if err != nil {
		panic(fmt.Errorf("param info overflow: %w", err))
	}
	return slot
}

// ConstInfo stores a compile-time constant value used as a generic argument.
type ConstInfo struct {
	Type  TypeID
	Value uint64
}

// RegisterConst creates or finds an interned constant value.
func (in *Interner) RegisterConst(ty TypeID, value uint64) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindConst {
			continue
		}
		if int(tt.Payload) >= len(in.consts) {
			continue
		}
		have := in.consts[tt.Payload]
		if have.Type == ty && have.Value == value {
			return id
		}
	}
	slot := in.appendConstInfo(ConstInfo{Type: ty, Value: value})
	return in.internRaw(Type{Kind: KindConst, Payload: slot})
}

// ConstInfo retrieves constant metadata by TypeID.
func (in *Interner) ConstInfo(id TypeID) (*ConstInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	tt, ok := in.lookupLocked(id)
	if !ok || tt.Kind != KindConst {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.consts) {
		return nil, false
	}
	return &in.consts[tt.Payload], true
}

func (in *Interner) appendConstInfo(info ConstInfo) uint32 {
	in.consts = append(in.consts, info)
	slot, err := safecast.Conv[uint32](len(in.consts) - 1)
	if err != nil {
		panic(fmt.Errorf("const info overflow: %w", err))
	}
	return slot
}
