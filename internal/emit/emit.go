// Package emit renders resolved flag sets as Go source.
package emit

import (
	"bytes"
	"fmt"
	"go/format"
	"go/token"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"

	"flagger/internal/flagset"
)

// Header is the first line of every generated file.
const Header = "// Code generated by flagger. DO NOT EDIT."

const uint128Import = "github.com/gaze-network/uint128"

// ErrNameCollision marks errors about generated identifiers.
var ErrNameCollision = errors.New("generated identifier collision")

// File renders every set into one gofmt'ed Go file.
func File(sets []*flagset.FlagSet, opts Options) ([]byte, error) {
	if err := ValidatePackage(opts.Package); err != nil {
		return nil, err
	}
	if err := checkNames(sets, opts); err != nil {
		return nil, err
	}

	g := &generator{opts: opts}
	g.header(sets)
	for _, fs := range sets {
		g.set(fs)
	}

	out, err := format.Source(g.buf.Bytes())
	if err != nil {
		return nil, errors.Wrapf(err, "internal error: generated code for %s does not format", opts.Source)
	}
	return out, nil
}

type generator struct {
	buf  bytes.Buffer
	opts Options
}

func (g *generator) p(format string, args ...any) {
	fmt.Fprintf(&g.buf, format, args...)
	g.buf.WriteByte('\n')
}

func (g *generator) header(sets []*flagset.FlagSet) {
	g.p("%s", Header)
	if g.opts.Source != "" {
		g.p("// source: %s", g.opts.Source)
	}
	g.p("")
	g.p("package %s", g.opts.Package)
	g.p("")

	var imports []string
	narrow := lo.ContainsBy(sets, func(fs *flagset.FlagSet) bool { return fs.Width != flagset.Width128 })
	wide := lo.ContainsBy(sets, func(fs *flagset.FlagSet) bool { return fs.Width == flagset.Width128 })
	if g.opts.Stringer && len(sets) > 0 {
		if narrow {
			imports = append(imports, "strconv")
		}
		imports = append(imports, "strings")
	}
	if wide {
		imports = append(imports, uint128Import)
	}
	if len(imports) == 0 {
		return
	}
	g.p("import (")
	for _, imp := range imports {
		if imp == uint128Import {
			g.p("")
		}
		g.p("\t%q", imp)
	}
	g.p(")")
	g.p("")
}

func (g *generator) name(fs *flagset.FlagSet, variant string) string {
	if g.opts.Prefix {
		return fs.Name + variant
	}
	return variant
}

func (g *generator) doc(indent string, lines []string, fallback string) {
	if len(lines) == 0 {
		if fallback != "" {
			g.p("%s// %s", indent, fallback)
		}
		return
	}
	for _, l := range lines {
		if l == "" {
			g.p("%s//", indent)
			continue
		}
		g.p("%s// %s", indent, l)
	}
}

func (g *generator) set(fs *flagset.FlagSet) {
	g.doc("", fs.Doc, fmt.Sprintf("%s is a flag set backed by %s.", fs.Name, fs.Width.GoType()))
	g.p("type %s %s", fs.Name, fs.Width.GoType())
	g.p("")

	if fs.Width == flagset.Width128 {
		g.wideValues(fs)
		g.wideMethods(fs)
	} else {
		g.narrowValues(fs)
		g.narrowMethods(fs)
	}
	if g.opts.Stringer {
		g.stringer(fs)
	}
}

func (g *generator) narrowValues(fs *flagset.FlagSet) {
	g.p("const (")
	for _, f := range fs.Flags {
		g.doc("\t", f.Doc, "")
		g.p("\t%s %s = %s", g.name(fs, f.Name), fs.Name, f.Value.String())
	}
	g.p("\t%s %s = 0", g.name(fs, NoneFlag), fs.Name)
	g.p("\t%s %s = %s", g.name(fs, AllFlag), fs.Name, fs.Width.Mask().String())
	g.p(")")
	g.p("")
}

func (g *generator) wideValues(fs *flagset.FlagSet) {
	g.p("var (")
	for _, f := range fs.Flags {
		g.doc("\t", f.Doc, "")
		g.p("\t%s = %s(uint128.New(%#x, %#x))", g.name(fs, f.Name), fs.Name, f.Value.Lo, f.Value.Hi)
	}
	g.p("\t%s = %s(uint128.Zero)", g.name(fs, NoneFlag), fs.Name)
	g.p("\t%s = %s(uint128.Max)", g.name(fs, AllFlag), fs.Name)
	g.p(")")
	g.p("")
}

func (g *generator) narrowMethods(fs *flagset.FlagSet) {
	t, backing := fs.Name, fs.Width.GoType()
	none, all := g.name(fs, NoneFlag), g.name(fs, AllFlag)

	g.p("// Bits returns the backing integer.")
	g.p("func (f %s) Bits() %s { return %s(f) }", t, backing, backing)
	g.p("")
	g.p("func (f %s) And(o %s) %s { return f & o }", t, t, t)
	g.p("func (f %s) Or(o %s) %s { return f | o }", t, t, t)
	g.p("func (f %s) Xor(o %s) %s { return f ^ o }", t, t, t)
	g.p("")
	g.p("// Not flips every bit of the backing width.")
	g.p("func (f %s) Not() %s { return ^f & %s }", t, t, all)
	g.p("")
	g.p("// HasAnyFlag reports whether f and o share a bit.")
	g.p("func (f %s) HasAnyFlag(o %s) bool { return f&o != %s }", t, t, none)
	g.p("")
	g.p("// HasAllFlags reports whether every bit of o is set in f.")
	g.p("func (f %s) HasAllFlags(o %s) bool { return f&o == o }", t, t)
	g.p("")
	g.p("func (f *%s) Insert(o %s) { *f |= o }", t, t)
	g.p("func (f *%s) Remove(o %s) { *f &^= o }", t, t)
	g.p("func (f *%s) Toggle(o %s) { *f ^= o }", t, t)
	g.p("")
}

func (g *generator) wideMethods(fs *flagset.FlagSet) {
	t := fs.Name
	all := g.name(fs, AllFlag)

	g.p("// Bits returns the backing integer.")
	g.p("func (f %s) Bits() uint128.Uint128 { return uint128.Uint128(f) }", t)
	g.p("")
	g.p("func (f %s) And(o %s) %s { return %s(f.Bits().And(o.Bits())) }", t, t, t, t)
	g.p("func (f %s) Or(o %s) %s { return %s(f.Bits().Or(o.Bits())) }", t, t, t, t)
	g.p("func (f %s) Xor(o %s) %s { return %s(f.Bits().Xor(o.Bits())) }", t, t, t, t)
	g.p("")
	g.p("// Not flips every bit of the backing width.")
	g.p("func (f %s) Not() %s { return f.Xor(%s) }", t, t, all)
	g.p("")
	g.p("// HasAnyFlag reports whether f and o share a bit.")
	g.p("func (f %s) HasAnyFlag(o %s) bool { return !f.Bits().And(o.Bits()).IsZero() }", t, t)
	g.p("")
	g.p("// HasAllFlags reports whether every bit of o is set in f.")
	g.p("func (f %s) HasAllFlags(o %s) bool { return f.Bits().And(o.Bits()).Equals(o.Bits()) }", t, t)
	g.p("")
	g.p("func (f *%s) Insert(o %s) { *f = f.Or(o) }", t, t)
	g.p("func (f *%s) Remove(o %s) { *f = f.And(o.Not()) }", t, t)
	g.p("func (f *%s) Toggle(o %s) { *f = f.Xor(o) }", t, t)
	g.p("")
}

// stringer lists single-bit variants in declaration order, then any
// remaining bits in hex.
func (g *generator) stringer(fs *flagset.FlagSet) {
	t := fs.Name
	wide := fs.Width == flagset.Width128
	singles := lo.Filter(fs.Flags, func(f flagset.ResolvedFlag, _ int) bool { return f.SingleBit() })

	g.p("func (f %s) String() string {", t)
	g.p("\tif f == %s {", g.name(fs, NoneFlag))
	g.p("\t\treturn %q", NoneFlag)
	g.p("\t}")
	g.p("\tvar parts []string")
	g.p("\trest := f")
	for _, s := range singles {
		c := g.name(fs, s.Name)
		if wide {
			g.p("\tif f.HasAnyFlag(%s) {", c)
			g.p("\t\tparts = append(parts, %q)", s.Name)
			g.p("\t\trest.Remove(%s)", c)
		} else {
			g.p("\tif f&%s != 0 {", c)
			g.p("\t\tparts = append(parts, %q)", s.Name)
			g.p("\t\trest &^= %s", c)
		}
		g.p("\t}")
	}
	if wide {
		g.p("\tif rest != %s {", g.name(fs, NoneFlag))
		g.p("\t\tparts = append(parts, \"0x\"+rest.Bits().Big().Text(16))")
	} else {
		g.p("\tif rest != 0 {")
		g.p("\t\tparts = append(parts, \"0x\"+strconv.FormatUint(uint64(rest), 16))")
	}
	g.p("\t}")
	g.p("\treturn strings.Join(parts, \"|\")")
	g.p("}")
	g.p("")
}

// Sentinel variant names.
const (
	NoneFlag = "NoneFlag"
	AllFlag  = "AllFlag"
)

// Ident is a package-level identifier generated for a set, with the set
// member that produces it ("flag set Perms", "Perms::Read").
type Ident struct {
	Name  string
	Owner string
}

// Identifiers lists the package-level identifiers generated for fs: the type
// and one constant per variant and sentinel. Methods are not included.
func Identifiers(fs *flagset.FlagSet, opts Options) []Ident {
	g := &generator{opts: opts}
	idents := make([]Ident, 0, len(fs.Flags)+3)
	idents = append(idents, Ident{Name: fs.Name, Owner: "flag set " + fs.Name})
	names := append(lo.Map(fs.Flags, func(f flagset.ResolvedFlag, _ int) string { return f.Name }), NoneFlag, AllFlag)
	for _, n := range names {
		idents = append(idents, Ident{Name: g.name(fs, n), Owner: fs.Name + "::" + n})
	}
	return idents
}

// checkNames rejects files whose generated identifiers would collide or not
// compile.
func checkNames(sets []*flagset.FlagSet, opts Options) error {
	owner := make(map[string]string)
	for _, fs := range sets {
		for _, id := range Identifiers(fs, opts) {
			if token.IsKeyword(id.Name) || !token.IsIdentifier(id.Name) {
				return errors.Mark(errors.Newf("%s produces %q, which is not a valid Go identifier", id.Owner, id.Name), ErrNameCollision)
			}
			if prev, ok := owner[id.Name]; ok {
				return errors.Mark(errors.Newf("%s and %s both generate identifier %q", prev, id.Owner, id.Name), ErrNameCollision)
			}
			owner[id.Name] = id.Owner
		}
	}
	return nil
}

// Describe is a one-line summary used by `gen --dry-run`.
func Describe(fs *flagset.FlagSet) string {
	return fmt.Sprintf("%s: %d flags, %d-bit", fs.Name, len(fs.Flags), fs.Width)
}
