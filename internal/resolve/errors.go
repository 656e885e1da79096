package resolve

import (
	"fmt"

	"ember/internal/defs"
)

// Error reports that resolution could not complete because of an earlier,
// independently reported program error. It must stay distinguishable from the
// (nil, nil) "still abstract" outcome so callers neither duplicate the
// original diagnostic nor mistake poisoned code for generic code.
type Error struct {
	Def defs.DefID
}

func (e *Error) Error() string {
	return fmt.Sprintf("resolve: definition %d unresolvable due to a previously reported error", e.Def)
}
