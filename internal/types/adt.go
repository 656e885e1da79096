package types

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// AdtInfo stores metadata for nominal struct/enum types.
//
// Def and Dtor are definition ids held as raw uint32 so the types package
// stays a leaf dependency; Dtor 0 means the type has no user destructor.
type AdtInfo struct {
	Name   string
	Def    uint32
	Dtor   uint32
	IsEnum bool
	Args   []TypeID // generic arguments, in declaration order
	Fields []TypeID // field (or flattened variant payload) types
}

// RegisterAdt creates or finds a nominal type instance.
func (in *Interner) RegisterAdt(info AdtInfo) TypeID {
	in.mu.Lock()
	defer in.mu.Unlock()
	for id := TypeID(1); int(id) < len(in.types); id++ {
		tt := in.types[id]
		if tt.Kind != KindAdt {
			continue
		}
		if int(tt.Payload) >= len(in.adts) {
			continue
		}
		have := in.adts[tt.Payload]
		if have.Def == info.Def && slices.Equal(have.Args, info.Args) {
			return id
		}
	}
	slot := in.appendAdtInfo(AdtInfo{
		Name:   info.Name,
		Def:    info.Def,
		Dtor:   info.Dtor,
		IsEnum: info.IsEnum,
		Args:   cloneTypeArgs(info.Args),
		Fields: cloneTypeArgs(info.Fields),
	})
	return in.internRaw(Type{Kind: KindAdt, Payload: slot})
}

// AdtInfo retrieves nominal type metadata by TypeID.
func (in *Interner) AdtInfo(id TypeID) (*AdtInfo, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	tt, ok := in.lookupLocked(id)
	if !ok || tt.Kind != KindAdt {
		return nil, false
	}
	if tt.Payload == 0 || int(tt.Payload) >= len(in.adts) {
		return nil, false
	}
	return &in.adts[tt.Payload], true
}

func (in *Interner) appendAdtInfo(info AdtInfo) uint32 {
	in.adts = append(in.adts, info)
	slot, err := safecast.Conv[uint32](len(in.adts) - 1)
	if err != nil {
		panic(fmt.Errorf("adt info overflow: %w", err))
	}
	return slot
}
