package emit

import (
	"go/token"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
)

// DefaultSuffix is appended to the .flg base name to form the output file.
const DefaultSuffix = "_flags.go"

// Options control the generated file.
type Options struct {
	// Package is the Go package clause. Required.
	Package string
	// Source is the .flg path shown in the header, usually a base name.
	Source string
	// Prefix emits <Set><Variant> constant names; otherwise bare variant names.
	Prefix bool
	// Stringer emits a String method per set.
	Stringer bool
}

// DefaultOptions mirrors the flagger.toml defaults.
func DefaultOptions() Options {
	return Options{Prefix: true, Stringer: true}
}

// OutputPath maps perms.flg to perms<suffix> in the same directory.
func OutputPath(src, suffix string) string {
	if suffix == "" {
		suffix = DefaultSuffix
	}
	base := strings.TrimSuffix(src, filepath.Ext(src))
	return base + suffix
}

// SanitizePackage turns a directory name into a valid package name:
// lower case, letters/digits/underscores, not starting with a digit.
func SanitizePackage(dir string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(filepath.Base(dir)) {
		switch {
		case r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r):
			sb.WriteRune(r)
		case r == '-' || r == '.' || r == ' ':
			sb.WriteByte('_')
		}
	}
	name := strings.Trim(sb.String(), "_")
	if name == "" {
		return "flags"
	}
	if unicode.IsDigit(rune(name[0])) {
		name = "p" + name
	}
	if token.IsKeyword(name) {
		name += "_"
	}
	return name
}

// ErrInvalidPackage marks a package clause that cannot be used.
var ErrInvalidPackage = errors.New("invalid package name")

// ValidatePackage checks a user-supplied package name.
func ValidatePackage(name string) error {
	if !token.IsIdentifier(name) {
		return errors.Mark(errors.Newf("%q is not a valid Go package name", name), ErrInvalidPackage)
	}
	if name == "_" {
		return errors.Mark(errors.New("blank identifier cannot be a package name"), ErrInvalidPackage)
	}
	return nil
}
