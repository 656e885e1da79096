package session

// Options configure the resolution engine for one build. They are set once
// when the session starts and read concurrently afterwards.
type Options struct {
	// ShareGenerics allows linking against monomorphizations already
	// generated by upstream compilation units.
	ShareGenerics bool
	// FoldSpecializations enables unused-parameter folding, letting
	// instances that differ only in unused arguments share one body.
	FoldSpecializations bool
	// Incremental marks incremental builds, which cap per-unit drop glue
	// duplication.
	Incremental bool
	// Jobs bounds parallel resolution; <= 0 means one worker per CPU.
	Jobs int
}

// Default returns the options used when no build profile is given.
func Default() Options {
	return Options{
		ShareGenerics: true,
	}
}
