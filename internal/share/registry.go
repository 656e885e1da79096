package share

import (
	"sort"
	"sync"

	"ember/internal/defs"
	"ember/internal/instance"
	"ember/internal/types"
)

// Registry records, per exported monomorphization, the upstream compilation
// unit whose object code already carries it. It is populated from unit
// metadata before resolution starts and queried concurrently afterwards.
type Registry struct {
	mu    sync.RWMutex
	items map[itemKey]defs.UnitID
	glue  map[types.TypeID]defs.UnitID
}

type itemKey struct {
	Def  defs.DefID
	Args string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		items: make(map[itemKey]defs.UnitID),
		glue:  make(map[types.TypeID]defs.UnitID),
	}
}

// AddItem records that unit exports the monomorphization of def for args.
// When several units export the same one, the lowest unit id wins, keeping
// lookups deterministic across metadata load order.
func (r *Registry) AddItem(def defs.DefID, args instance.ArgList, unit defs.UnitID) {
	key := itemKey{Def: def, Args: args.Key()}
	r.mu.Lock()
	if have, ok := r.items[key]; !ok || unit < have {
		r.items[key] = unit
	}
	r.mu.Unlock()
}

// ItemOwner looks up the unit exporting the monomorphization of def for args.
func (r *Registry) ItemOwner(def defs.DefID, args instance.ArgList) (defs.UnitID, bool) {
	key := itemKey{Def: def, Args: args.Key()}
	r.mu.RLock()
	unit, ok := r.items[key]
	r.mu.RUnlock()
	return unit, ok
}

// AddDropGlue records that unit exports destructor glue for the type.
func (r *Registry) AddDropGlue(ty types.TypeID, unit defs.UnitID) {
	r.mu.Lock()
	if have, ok := r.glue[ty]; !ok || unit < have {
		r.glue[ty] = unit
	}
	r.mu.Unlock()
}

// DropGlueOwner looks up the unit exporting destructor glue for the type.
func (r *Registry) DropGlueOwner(ty types.TypeID) (defs.UnitID, bool) {
	r.mu.RLock()
	unit, ok := r.glue[ty]
	r.mu.RUnlock()
	return unit, ok
}

// Len reports the number of recorded monomorphizations, glue included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items) + len(r.glue)
}

// ItemRecord is the serializable image of one exported monomorphization.
type ItemRecord struct {
	Def  uint32 `msgpack:"def"`
	Args string `msgpack:"args"`
	Unit uint32 `msgpack:"unit"`
}

// GlueRecord is the serializable image of one exported destructor glue.
type GlueRecord struct {
	Type uint32 `msgpack:"type"`
	Unit uint32 `msgpack:"unit"`
}

// Dump is the full serializable image of a Registry.
type Dump struct {
	Items []ItemRecord `msgpack:"items"`
	Glue  []GlueRecord `msgpack:"glue"`
}

// Export returns a deterministic snapshot, sorted so that serialized bytes
// are stable run to run.
func (r *Registry) Export() Dump {
	r.mu.RLock()
	defer r.mu.RUnlock()
	dump := Dump{
		Items: make([]ItemRecord, 0, len(r.items)),
		Glue:  make([]GlueRecord, 0, len(r.glue)),
	}
	for key, unit := range r.items {
		dump.Items = append(dump.Items, ItemRecord{Def: uint32(key.Def), Args: key.Args, Unit: uint32(unit)})
	}
	for ty, unit := range r.glue {
		dump.Glue = append(dump.Glue, GlueRecord{Type: uint32(ty), Unit: uint32(unit)})
	}
	sort.Slice(dump.Items, func(i, j int) bool {
		if dump.Items[i].Def != dump.Items[j].Def {
			return dump.Items[i].Def < dump.Items[j].Def
		}
		return dump.Items[i].Args < dump.Items[j].Args
	})
	sort.Slice(dump.Glue, func(i, j int) bool {
		return dump.Glue[i].Type < dump.Glue[j].Type
	})
	return dump
}

// Import merges a snapshot into the registry.
func (r *Registry) Import(dump Dump) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range dump.Items {
		key := itemKey{Def: defs.DefID(rec.Def), Args: rec.Args}
		if have, ok := r.items[key]; !ok || defs.UnitID(rec.Unit) < have {
			r.items[key] = defs.UnitID(rec.Unit)
		}
	}
	for _, rec := range dump.Glue {
		ty := types.TypeID(rec.Type)
		if have, ok := r.glue[ty]; !ok || defs.UnitID(rec.Unit) < have {
			r.glue[ty] = defs.UnitID(rec.Unit)
		}
	}
}
