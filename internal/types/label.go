package types

import (
	"fmt"
	"strconv"
	"strings"
)

// Label returns a user-friendly label for a TypeID.
func Label(in *Interner, id TypeID) string {
	return labelDepth(in, id, 0)
}

func labelDepth(in *Interner, id TypeID, depth int) string {
	if id == NoTypeID || in == nil {
		return "?"
	}
	if depth > 6 {
		return "..."
	}
	tt, ok := in.Lookup(id)
	if !ok {
		return "?"
	}
	switch tt.Kind {
	case KindUnit:
		return "()"
	case KindNever:
		return "!"
	case KindBool:
		return "bool"
	case KindStr:
		return "str"
	case KindInt:
		return formatNumeric("i", tt.Width)
	case KindUint:
		return formatNumeric("u", tt.Width)
	case KindFloat:
		return formatNumeric("f", tt.Width)
	case KindArray:
		return fmt.Sprintf("[%s; %d]", labelDepth(in, tt.Elem, depth+1), tt.Count)
	case KindRawPtr:
		if tt.Mutable {
			return "*mut " + labelDepth(in, tt.Elem, depth+1)
		}
		return "*const " + labelDepth(in, tt.Elem, depth+1)
	case KindRef:
		if tt.Mutable {
			return "&mut " + labelDepth(in, tt.Elem, depth+1)
		}
		return "&" + labelDepth(in, tt.Elem, depth+1)
	case KindTuple:
		info, ok := in.TupleInfo(id)
		if !ok {
			if id == in.builtins.EmptyTuple {
				return "()"
			}
			return "(?)"
		}
		parts := make([]string, len(info.Elems))
		for i, elem := range info.Elems {
			parts[i] = labelDepth(in, elem, depth+1)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case KindFnPtr:
		info, ok := in.FnInfo(id)
		if !ok {
			return "fn(?)"
		}
		params := make([]string, len(info.Params))
		for i, param := range info.Params {
			params[i] = labelDepth(in, param, depth+1)
		}
		return "fn(" + strings.Join(params, ", ") + ") -> " + labelDepth(in, info.Result, depth+1)
	case KindDynamic:
		return fmt.Sprintf("dyn#%d", tt.Count)
	case KindAdt:
		return formatAdt(in, id, depth)
	case KindClosure:
		return formatClosureLike(in, id, "closure", depth)
	case KindCoroutineClosure:
		return formatClosureLike(in, id, "coroutine-closure", depth)
	case KindCoroutine:
		return formatClosureLike(in, id, "coroutine", depth)
	case KindParam:
		if info, ok := in.ParamInfo(id); ok && info.Name != "" {
			return info.Name
		}
		return "T"
	case KindConst:
		if info, ok := in.ConstInfo(id); ok {
			return strconv.FormatUint(info.Value, 10)
		}
		return "const ?"
	case KindLifetime:
		if tt.Count == 0 {
			return "'_"
		}
		return fmt.Sprintf("'%d", tt.Count)
	case KindBound:
		return fmt.Sprintf("^%d", tt.Count)
	default:
		return "?"
	}
}

func formatNumeric(prefix string, w Width) string {
	if w == WidthAny {
		return prefix + "size"
	}
	return prefix + strconv.Itoa(int(w))
}

func formatAdt(in *Interner, id TypeID, depth int) string {
	info, ok := in.AdtInfo(id)
	if !ok {
		return "?"
	}
	name := info.Name
	if name == "" {
		name = fmt.Sprintf("adt#%d", info.Def)
	}
	if len(info.Args) == 0 {
		return name
	}
	args := make([]string, len(info.Args))
	for i, arg := range info.Args {
		args[i] = labelDepth(in, arg, depth+1)
	}
	return name + "<" + strings.Join(args, ", ") + ">"
}

func formatClosureLike(in *Interner, id TypeID, what string, depth int) string {
	info, ok := in.ClosureInfo(id)
	if !ok {
		return what
	}
	return fmt.Sprintf("{%s#%d %s %s}", what, info.Def, info.Kind, labelDepth(in, info.Upvars, depth+1))
}
