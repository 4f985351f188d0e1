package project

import (
	"fmt"
	"path/filepath"

	"flagger/internal/emit"
	"flagger/internal/flagset"
)

// Settings are the effective generation options for one directory after
// defaults, flagger.toml and CLI flags are merged.
type Settings struct {
	Package         string // from flagger.toml
	PackageOverride string // --package beats everything
	Suffix          string
	Prefix          bool
	Stringer        bool
	MinWidth        flagset.Width
	Cache           bool
}

// Overrides carry CLI flags; nil/empty fields leave the config value.
type Overrides struct {
	Package  string
	MinWidth flagset.Width
	NoCache  bool
}

// DefaultSettings are used without a manifest.
func DefaultSettings() Settings {
	return Settings{
		Suffix:   emit.DefaultSuffix,
		Prefix:   true,
		Stringer: true,
		MinWidth: flagset.Width8,
		Cache:    true,
	}
}

// Settings merges the manifest over the defaults.
func (c Config) Settings() Settings {
	s := DefaultSettings()
	g := c.Generate
	if g.Package != "" {
		s.Package = g.Package
	}
	if g.Suffix != "" {
		s.Suffix = g.Suffix
	}
	if g.Prefix != nil {
		s.Prefix = *g.Prefix
	}
	if g.Stringer != nil {
		s.Stringer = *g.Stringer
	}
	if g.MinWidth != 0 {
		s.MinWidth = flagset.Width(g.MinWidth)
	}
	if g.Cache != nil {
		s.Cache = *g.Cache
	}
	return s
}

// Apply layers CLI overrides on top.
func (s Settings) Apply(o Overrides) Settings {
	if o.Package != "" {
		s.PackageOverride = o.Package
	}
	if o.MinWidth != 0 {
		s.MinWidth = o.MinWidth
	}
	if o.NoCache {
		s.Cache = false
	}
	return s
}

// PackageFor picks the package clause for a file: --package, then the
// file's own `package` directive, then flagger.toml, then the directory name.
func (s Settings) PackageFor(path, directive string) string {
	switch {
	case s.PackageOverride != "":
		return s.PackageOverride
	case directive != "":
		return directive
	case s.Package != "":
		return s.Package
	default:
		dir, err := filepath.Abs(filepath.Dir(path))
		if err != nil {
			dir = filepath.Dir(path)
		}
		return emit.SanitizePackage(dir)
	}
}

// EmitOptions converts to emitter options.
func (s Settings) EmitOptions(pkg, source string) emit.Options {
	return emit.Options{Package: pkg, Source: source, Prefix: s.Prefix, Stringer: s.Stringer}
}

// ResolveOptions converts to resolver options.
func (s Settings) ResolveOptions() flagset.Options {
	return flagset.Options{MinWidth: s.MinWidth}
}

// Fingerprint is a stable text form of everything that changes generated
// output. It is part of the generation cache key.
func (s Settings) Fingerprint() string {
	return fmt.Sprintf("pkg=%s;override=%s;suffix=%s;prefix=%t;stringer=%t;min=%d",
		s.Package, s.PackageOverride, s.Suffix, s.Prefix, s.Stringer, s.MinWidth)
}
