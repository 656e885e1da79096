package defs

// DefID identifies a definition inside the store.
type DefID uint32

const (
	// NoDefID marks the absence of a definition reference.
	NoDefID DefID = 0
)

// IsValid reports whether the definition ID refers to a stored definition.
func (id DefID) IsValid() bool { return id != NoDefID }

// UnitID identifies the compilation unit a definition originates from.
// Unit 0 is the unit currently being compiled.
type UnitID uint32

const (
	// LocalUnit is the compilation unit currently being compiled.
	LocalUnit UnitID = 0
)
