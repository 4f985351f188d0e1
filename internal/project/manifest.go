package project

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"
	"github.com/cockroachdb/errors"

	"flagger/internal/emit"
	"flagger/internal/flagset"
)

// Manifest is a loaded flagger.toml.
type Manifest struct {
	Path   string
	Root   string
	Config Config
}

// Config mirrors the TOML layout. Pointer fields distinguish "absent" from
// an explicit false/zero.
type Config struct {
	Flagger  ToolConfig     `toml:"flagger"`
	Generate GenerateConfig `toml:"generate"`
}

type ToolConfig struct {
	// Version is a semver constraint on the tool, e.g. ">= 0.1.0".
	Version string `toml:"version"`
}

type GenerateConfig struct {
	Package  string `toml:"package"`
	Suffix   string `toml:"suffix"`
	Prefix   *bool  `toml:"prefix"`
	Stringer *bool  `toml:"stringer"`
	MinWidth int    `toml:"min_width"`
	Cache    *bool  `toml:"cache"`
}

// LoadManifest finds and loads the manifest above startDir. ok is false when
// there is none.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, true, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, true, nil
}

// LoadConfig parses and validates one flagger.toml.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, errors.Wrapf(err, "%s: failed to parse TOML", path)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.Newf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, errors.Wrapf(err, "%s", path)
	}
	return cfg, nil
}

// Validate checks values that TOML typing alone does not.
func (c Config) Validate() error {
	if v := strings.TrimSpace(c.Flagger.Version); v != "" {
		if _, err := semver.NewConstraint(v); err != nil {
			return errors.Wrapf(err, "[flagger].version %q is not a semver constraint", v)
		}
	}
	g := c.Generate
	if g.Package != "" {
		if err := emit.ValidatePackage(g.Package); err != nil {
			return errors.Wrap(err, "[generate].package")
		}
	}
	if g.Suffix != "" && !strings.HasSuffix(g.Suffix, ".go") {
		return errors.Newf("[generate].suffix %q must end in .go", g.Suffix)
	}
	if strings.HasSuffix(g.Suffix, "_test.go") {
		return errors.Newf("[generate].suffix %q would produce test files", g.Suffix)
	}
	if g.MinWidth != 0 {
		if _, err := flagset.WidthOf(g.MinWidth); err != nil {
			return errors.Wrap(err, "[generate].min_width")
		}
	}
	return nil
}

// CheckVersion reports whether toolVersion satisfies [flagger].version.
// Development builds without a semver version always pass.
func (c Config) CheckVersion(toolVersion string) error {
	constraint := strings.TrimSpace(c.Flagger.Version)
	if constraint == "" {
		return nil
	}
	v, err := semver.NewVersion(strings.TrimPrefix(toolVersion, "v"))
	if err != nil {
		return nil
	}
	cons, err := semver.NewConstraint(constraint)
	if err != nil {
		return errors.Wrapf(err, "[flagger].version %q", constraint)
	}
	if ok, reasons := cons.Validate(v); !ok {
		msgs := make([]string, len(reasons))
		for i, r := range reasons {
			msgs[i] = r.Error()
		}
		return errors.Newf("flagger %s does not satisfy %q: %s", v, constraint, strings.Join(msgs, "; "))
	}
	return nil
}

// StarterManifest is what `flagger init` writes.
const StarterManifest = `# flagger configuration. All keys are optional.

[flagger]
# version = ">= 0.1.0"

[generate]
# package = "perms"         # default: directory name
suffix = "_flags.go"
prefix = true               # <Set><Variant> constant names
stringer = true             # emit String()
min_width = 8               # 8|16|32|64|128
cache = true
`

// WriteStarter creates dir/flagger.toml unless it exists.
func WriteStarter(dir string) (string, error) {
	path := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(path); err == nil {
		return path, errors.Newf("%s already exists", path)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return path, errors.Wrapf(err, "create %s", dir)
	}
	if err := os.WriteFile(path, []byte(StarterManifest), 0o644); err != nil {
		return path, errors.Wrapf(err, "write %s", path)
	}
	return path, nil
}
