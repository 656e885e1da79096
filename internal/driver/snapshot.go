package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"ember/internal/defs"
	"ember/internal/instance"
	"ember/internal/polymorph"
	"ember/internal/types"
)

// Current schema version, increment when the snapshot format changes.
const snapshotSchemaVersion uint16 = 1

// NoRef marks an absent type reference in snapshot records.
const NoRef int32 = -1

// Snapshot is a replayable image of a program: type construction records,
// definition records, trait implementations, lang items, liveness results
// and the call sites to resolve. Type records are replayed in order, so a
// record may only reference records before it.
type Snapshot struct {
	Schema   uint16          `msgpack:"schema"`
	Types    []TypeRecord    `msgpack:"types"`
	Defs     []DefRecord     `msgpack:"defs"`
	Impls    []ImplRecord    `msgpack:"impls,omitempty"`
	Lang     LangRecord      `msgpack:"lang"`
	Unused   []UnusedRecord  `msgpack:"unused,omitempty"`
	Requests []RequestRecord `msgpack:"requests,omitempty"`
}

// TypeRecord builds one type. Fields referencing other types hold positions
// into the Types list; NoRef means absent. Which fields matter depends on
// Kind, everything else stays zero.
type TypeRecord struct {
	Kind    uint8 `msgpack:"kind"`
	Width   uint8 `msgpack:"width,omitempty"`
	Mutable bool  `msgpack:"mut,omitempty"`
	// Count carries the array length, region id, trait id or binder depth.
	Count uint32 `msgpack:"count,omitempty"`
	Elem  int32  `msgpack:"elem"`
	// List holds tuple elements, function parameters or generic arguments.
	List []int32 `msgpack:"list,omitempty"`
	// Fields holds nominal field types.
	Fields []int32 `msgpack:"fields,omitempty"`
	// Result holds a function result or a closure's tupled call inputs.
	Result int32  `msgpack:"result"`
	Upvars int32  `msgpack:"upvars"`
	Name   string `msgpack:"name,omitempty"`
	Def    uint32 `msgpack:"def,omitempty"`
	Dtor   uint32 `msgpack:"dtor,omitempty"`
	Enum   bool   `msgpack:"enum,omitempty"`
	CKind  uint8  `msgpack:"ckind,omitempty"`
	Index  uint32 `msgpack:"index,omitempty"`
	Const  bool   `msgpack:"const,omitempty"`
	Value  uint64 `msgpack:"value,omitempty"`
}

// DefRecord mirrors one definition. Definition references use final ids:
// record i becomes DefID(i + 1).
type DefRecord struct {
	Kind      uint8         `msgpack:"kind"`
	Name      string        `msgpack:"name"`
	Unit      uint32        `msgpack:"unit,omitempty"`
	Flags     uint16        `msgpack:"flags,omitempty"`
	Params    []ParamRecord `msgpack:"params,omitempty"`
	HasSelf   bool          `msgpack:"self,omitempty"`
	Container uint8         `msgpack:"container,omitempty"`
	Trait     uint32        `msgpack:"trait,omitempty"`
	Sig       []int32       `msgpack:"sig,omitempty"`
	Type      int32         `msgpack:"type"`
	UpvarSlot uint32        `msgpack:"upvar,omitempty"`
	Methods   []uint32      `msgpack:"methods,omitempty"`
	Coroutine uint8         `msgpack:"coroutine,omitempty"`
}

// ParamRecord mirrors one generic parameter declaration.
type ParamRecord struct {
	Name string `msgpack:"name,omitempty"`
	Kind uint8  `msgpack:"kind"`
}

// ImplRecord mirrors one trait implementation.
type ImplRecord struct {
	Trait   uint32            `msgpack:"trait"`
	Self    int32             `msgpack:"self"`
	Methods map[uint32]uint32 `msgpack:"methods"`
}

// LangRecord mirrors the lang-item table.
type LangRecord struct {
	DropInPlace        uint32 `msgpack:"drop,omitempty"`
	FnTrait            uint32 `msgpack:"fn,omitempty"`
	FnCall             uint32 `msgpack:"fn_call,omitempty"`
	FnMutTrait         uint32 `msgpack:"fn_mut,omitempty"`
	FnMutCallMut       uint32 `msgpack:"fn_mut_call,omitempty"`
	FnOnceTrait        uint32 `msgpack:"fn_once,omitempty"`
	FnOnceCallOnce     uint32 `msgpack:"fn_once_call,omitempty"`
	CloneTrait         uint32 `msgpack:"clone,omitempty"`
	CloneFn            uint32 `msgpack:"clone_fn,omitempty"`
	FnPtrTrait         uint32 `msgpack:"fn_ptr,omitempty"`
	FnPtrAddr          uint32 `msgpack:"fn_ptr_addr,omitempty"`
	FutureTrait        uint32 `msgpack:"future,omitempty"`
	FuturePoll         uint32 `msgpack:"future_poll,omitempty"`
	IteratorTrait      uint32 `msgpack:"iterator,omitempty"`
	IteratorNext       uint32 `msgpack:"iterator_next,omitempty"`
	AsyncIteratorTrait uint32 `msgpack:"async_iterator,omitempty"`
	AsyncIteratorPoll  uint32 `msgpack:"async_iterator_poll,omitempty"`
	CoroutineTrait     uint32 `msgpack:"coroutine,omitempty"`
	CoroutineResume    uint32 `msgpack:"coroutine_resume,omitempty"`
}

// UnusedRecord mirrors one liveness analysis result.
type UnusedRecord struct {
	Def  uint32 `msgpack:"def"`
	Bits uint64 `msgpack:"bits"`
}

// RequestRecord mirrors one call site to resolve.
type RequestRecord struct {
	Def   uint32  `msgpack:"def"`
	Args  []int32 `msgpack:"args,omitempty"`
	Mode  uint8   `msgpack:"mode,omitempty"`
	Label string  `msgpack:"label,omitempty"`
}

// Program is a snapshot replayed into live state.
type Program struct {
	Defs     *defs.Store
	Types    *types.Interner
	Unused   polymorph.StaticProvider
	Requests []Request
	// TypeIDs maps snapshot record positions to interned ids, for callers
	// that need to refer back to snapshot types.
	TypeIDs []types.TypeID
}

// LoadSnapshot reads and replays a snapshot file.
func LoadSnapshot(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			panic(closeErr)
		}
	}()
	var snap Snapshot
	if err := msgpack.NewDecoder(f).Decode(&snap); err != nil {
		return nil, fmt.Errorf("%s: failed to decode snapshot: %w", path, err)
	}
	prog, err := snap.Build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// SaveSnapshot writes a snapshot file with an atomic replace.
func SaveSnapshot(path string, snap *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(path), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "failed to remove temp file: %v\n", rmErr)
		}
	}()
	if err := msgpack.NewEncoder(f).Encode(snap); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// Build replays the snapshot into a fresh store and interner.
func (s *Snapshot) Build() (*Program, error) {
	if s.Schema != snapshotSchemaVersion {
		return nil, fmt.Errorf("driver: snapshot schema %d, want %d", s.Schema, snapshotSchemaVersion)
	}
	prog := &Program{
		Defs:    defs.NewStore(),
		Types:   types.NewInterner(),
		Unused:  make(polymorph.StaticProvider),
		TypeIDs: make([]types.TypeID, len(s.Types)),
	}
	for i, rec := range s.Types {
		id, err := prog.replayType(i, rec)
		if err != nil {
			return nil, err
		}
		prog.TypeIDs[i] = id
	}
	for i, rec := range s.Defs {
		if err := prog.replayDef(i, rec); err != nil {
			return nil, err
		}
	}
	for _, rec := range s.Impls {
		if err := prog.replayImpl(rec); err != nil {
			return nil, err
		}
	}
	prog.Defs.SetLang(s.Lang.toLang())
	for _, rec := range s.Unused {
		prog.Unused[defs.DefID(rec.Def)] = polymorph.FromBits(rec.Bits)
	}
	prog.Requests = make([]Request, 0, len(s.Requests))
	for i, rec := range s.Requests {
		args, err := prog.refList(rec.Args, len(s.Types))
		if err != nil {
			return nil, fmt.Errorf("driver: snapshot request %d: %w", i, err)
		}
		prog.Requests = append(prog.Requests, Request{
			Def:   defs.DefID(rec.Def),
			Args:  instance.ArgList(args),
			Mode:  Mode(rec.Mode),
			Label: rec.Label,
		})
	}
	return prog, nil
}

// ref resolves a record position that must point before limit.
func (p *Program) ref(r int32, limit int) (types.TypeID, error) {
	if r == NoRef {
		return types.NoTypeID, nil
	}
	if r < 0 || int(r) >= limit {
		return types.NoTypeID, fmt.Errorf("type ref %d out of range", r)
	}
	return p.TypeIDs[r], nil
}

func (p *Program) refList(refs []int32, limit int) ([]types.TypeID, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	out := make([]types.TypeID, len(refs))
	for i, r := range refs {
		id, err := p.ref(r, limit)
		if err != nil {
			return nil, err
		}
		out[i] = id
	}
	return out, nil
}

func (p *Program) replayType(pos int, rec TypeRecord) (types.TypeID, error) {
	kind := types.Kind(rec.Kind)
	fail := func(err error) (types.TypeID, error) {
		return types.NoTypeID, fmt.Errorf("driver: snapshot type %d (%v): %w", pos, kind, err)
	}
	switch kind {
	case types.KindUnit, types.KindNever, types.KindBool, types.KindStr:
		return p.Types.Intern(types.Type{Kind: kind}), nil
	case types.KindInt:
		return p.Types.Intern(types.MakeInt(types.Width(rec.Width))), nil
	case types.KindUint:
		return p.Types.Intern(types.MakeUint(types.Width(rec.Width))), nil
	case types.KindFloat:
		return p.Types.Intern(types.MakeFloat(types.Width(rec.Width))), nil
	case types.KindLifetime:
		return p.Types.Intern(types.MakeRegion(rec.Count)), nil
	case types.KindBound:
		return p.Types.Intern(types.MakeBound(rec.Count)), nil
	case types.KindDynamic:
		return p.Types.Intern(types.MakeDynamic(rec.Count)), nil
	case types.KindArray:
		elem, err := p.ref(rec.Elem, pos)
		if err != nil {
			return fail(err)
		}
		return p.Types.Intern(types.MakeArray(elem, rec.Count)), nil
	case types.KindRef:
		elem, err := p.ref(rec.Elem, pos)
		if err != nil {
			return fail(err)
		}
		return p.Types.Intern(types.MakeRef(elem, rec.Mutable)), nil
	case types.KindRawPtr:
		elem, err := p.ref(rec.Elem, pos)
		if err != nil {
			return fail(err)
		}
		return p.Types.Intern(types.MakeRawPtr(elem, rec.Mutable)), nil
	case types.KindTuple:
		elems, err := p.refList(rec.List, pos)
		if err != nil {
			return fail(err)
		}
		return p.Types.RegisterTuple(elems), nil
	case types.KindFnPtr:
		params, err := p.refList(rec.List, pos)
		if err != nil {
			return fail(err)
		}
		result, err := p.ref(rec.Result, pos)
		if err != nil {
			return fail(err)
		}
		return p.Types.RegisterFnPtr(params, result), nil
	case types.KindAdt:
		args, err := p.refList(rec.List, pos)
		if err != nil {
			return fail(err)
		}
		fields, err := p.refList(rec.Fields, pos)
		if err != nil {
			return fail(err)
		}
		return p.Types.RegisterAdt(types.AdtInfo{
			Name:   rec.Name,
			Def:    rec.Def,
			Dtor:   rec.Dtor,
			IsEnum: rec.Enum,
			Args:   args,
			Fields: fields,
		}), nil
	case types.KindClosure, types.KindCoroutineClosure, types.KindCoroutine:
		args, err := p.refList(rec.List, pos)
		if err != nil {
			return fail(err)
		}
		upvars, err := p.ref(rec.Upvars, pos)
		if err != nil {
			return fail(err)
		}
		sig, err := p.ref(rec.Result, pos)
		if err != nil {
			return fail(err)
		}
		info := types.ClosureInfo{
			Def:    rec.Def,
			Kind:   types.ClosureKind(rec.CKind),
			Args:   args,
			Upvars: upvars,
			Sig:    sig,
		}
		switch kind {
		case types.KindClosure:
			return p.Types.RegisterClosure(info), nil
		case types.KindCoroutineClosure:
			return p.Types.RegisterCoroutineClosure(info), nil
		default:
			return p.Types.RegisterCoroutine(info), nil
		}
	case types.KindParam:
		return p.Types.RegisterParam(types.ParamInfo{
			Name:    rec.Name,
			Owner:   rec.Def,
			Index:   rec.Index,
			IsConst: rec.Const,
		}), nil
	case types.KindConst:
		ty, err := p.ref(rec.Elem, pos)
		if err != nil {
			return fail(err)
		}
		return p.Types.RegisterConst(ty, rec.Value), nil
	default:
		return fail(fmt.Errorf("unknown kind %d", rec.Kind))
	}
}

func (p *Program) replayDef(pos int, rec DefRecord) error {
	sig, err := p.refList(rec.Sig, len(p.TypeIDs))
	if err != nil {
		return fmt.Errorf("driver: snapshot def %d: %w", pos, err)
	}
	declared, err := p.ref(rec.Type, len(p.TypeIDs))
	if err != nil {
		return fmt.Errorf("driver: snapshot def %d: %w", pos, err)
	}
	params := make([]defs.GenericParam, len(rec.Params))
	for i, pr := range rec.Params {
		params[i] = defs.GenericParam{Name: pr.Name, Kind: defs.ParamKind(pr.Kind)}
	}
	methods := make([]defs.DefID, len(rec.Methods))
	for i, m := range rec.Methods {
		methods[i] = defs.DefID(m)
	}
	p.Defs.Add(defs.Def{
		Kind:      defs.Kind(rec.Kind),
		Name:      rec.Name,
		Unit:      defs.UnitID(rec.Unit),
		Flags:     defs.Flags(rec.Flags),
		Generics:  defs.Generics{Params: params, HasSelf: rec.HasSelf},
		Container: defs.Container(rec.Container),
		Trait:     defs.DefID(rec.Trait),
		Sig:       sig,
		Type:      declared,
		UpvarSlot: rec.UpvarSlot,
		Methods:   methods,
		Coroutine: defs.CoroutineKind(rec.Coroutine),
	})
	return nil
}

func (p *Program) replayImpl(rec ImplRecord) error {
	self, err := p.ref(rec.Self, len(p.TypeIDs))
	if err != nil {
		return fmt.Errorf("driver: snapshot impl for trait %d: %w", rec.Trait, err)
	}
	methods := make(map[defs.DefID]defs.DefID, len(rec.Methods))
	for k, v := range rec.Methods {
		methods[defs.DefID(k)] = defs.DefID(v)
	}
	p.Defs.RegisterImpl(defs.Impl{
		Trait:   defs.DefID(rec.Trait),
		Self:    self,
		Methods: methods,
	})
	return nil
}

func (r LangRecord) toLang() defs.Lang {
	return defs.Lang{
		DropInPlace:        defs.DefID(r.DropInPlace),
		FnTrait:            defs.DefID(r.FnTrait),
		FnCall:             defs.DefID(r.FnCall),
		FnMutTrait:         defs.DefID(r.FnMutTrait),
		FnMutCallMut:       defs.DefID(r.FnMutCallMut),
		FnOnceTrait:        defs.DefID(r.FnOnceTrait),
		FnOnceCallOnce:     defs.DefID(r.FnOnceCallOnce),
		CloneTrait:         defs.DefID(r.CloneTrait),
		CloneFn:            defs.DefID(r.CloneFn),
		FnPtrTrait:         defs.DefID(r.FnPtrTrait),
		FnPtrAddr:          defs.DefID(r.FnPtrAddr),
		FutureTrait:        defs.DefID(r.FutureTrait),
		FuturePoll:         defs.DefID(r.FuturePoll),
		IteratorTrait:      defs.DefID(r.IteratorTrait),
		IteratorNext:       defs.DefID(r.IteratorNext),
		AsyncIteratorTrait: defs.DefID(r.AsyncIteratorTrait),
		AsyncIteratorPoll:  defs.DefID(r.AsyncIteratorPoll),
		CoroutineTrait:     defs.DefID(r.CoroutineTrait),
		CoroutineResume:    defs.DefID(r.CoroutineResume),
	}
}
