package session

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

type profileFile struct {
	Build struct {
		ShareGenerics       *bool `toml:"share-generics"`
		FoldSpecializations *bool `toml:"fold-specializations"`
		Incremental         *bool `toml:"incremental"`
		Jobs                *int  `toml:"jobs"`
	} `toml:"build"`
}

// LoadProfile reads a build profile from an ember.toml [build] section.
// Missing keys keep their defaults.
func LoadProfile(path string) (Options, error) {
	opts := Default()
	var cfg profileFile
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return opts, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("build") {
		return opts, nil
	}
	if cfg.Build.ShareGenerics != nil {
		opts.ShareGenerics = *cfg.Build.ShareGenerics
	}
	if cfg.Build.FoldSpecializations != nil {
		opts.FoldSpecializations = *cfg.Build.FoldSpecializations
	}
	if cfg.Build.Incremental != nil {
		opts.Incremental = *cfg.Build.Incremental
	}
	if cfg.Build.Jobs != nil {
		opts.Jobs = *cfg.Build.Jobs
	}
	return opts, nil
}
