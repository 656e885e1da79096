package instance

import (
	"fmt"
	"strings"

	"ember/internal/defs"
	"ember/internal/types"
)

// Suffix returns the canonical short marker appended after an instance's
// path in diagnostics. It uniquely identifies the variant and, where one is
// carried, the type or slot.
func (i Instance) Suffix(in *types.Interner) string {
	switch i.Def.Kind {
	case KindItem:
		return ""
	case KindVTableShim:
		return " - shim(vtable)"
	case KindReifyShim:
		return " - shim(reify)"
	case KindThreadLocalShim:
		return " - shim(tls)"
	case KindIntrinsic:
		return " - intrinsic"
	case KindVirtual:
		return fmt.Sprintf(" - virtual#%d", i.Def.Slot)
	case KindFnPtrShim, KindCloneShim, KindFnPtrAddrShim:
		return fmt.Sprintf(" - shim(%s)", types.Label(in, i.Def.Type))
	case KindClosureOnceShim:
		return " - shim"
	case KindConstructCoroutineInClosureShim:
		return fmt.Sprintf(" - shim(%s)", i.Def.Target)
	case KindCoroutineByMoveShim:
		return " - shim(by-move)"
	case KindDropGlue:
		if i.Def.Type == types.NoTypeID {
			return " - shim(none)"
		}
		return fmt.Sprintf(" - shim(%s)", types.Label(in, i.Def.Type))
	default:
		panic(fmt.Sprintf("instance: unknown kind %v", i.Def.Kind))
	}
}

// Render returns the full human-readable form: definition name, argument
// list, variant suffix.
func (i Instance) Render(st *defs.Store, in *types.Interner) string {
	var b strings.Builder
	if d := st.Get(i.Def.ID); d != nil && d.Name != "" {
		b.WriteString(d.Name)
	} else {
		fmt.Fprintf(&b, "def#%d", i.Def.ID)
	}
	if len(i.Args) > 0 {
		parts := make([]string, len(i.Args))
		for n, arg := range i.Args {
			parts[n] = types.Label(in, arg)
		}
		b.WriteString("<" + strings.Join(parts, ", ") + ">")
	}
	b.WriteString(i.Suffix(in))
	return b.String()
}
