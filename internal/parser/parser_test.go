package parser

import (
	"testing"

	"flagger/internal/ast"
	"flagger/internal/diag"
	"flagger/internal/lexer"
	"flagger/internal/source"
)

func TestParseFlagsItem(t *testing.T) {
	src := `package perms

/// Permission bits.
flags Permission {
    /// Read access.
    Read = 1,
    Write = 0b10,
    ReadWrite = Self::Read | Permission::Write,
    Later,
}
`
	b, fileID, bag := parseSource(src)
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	file := b.Files.Get(fileID)
	if file.Package != "perms" {
		t.Fatalf("Package = %q", file.Package)
	}
	sets := b.FlagSets(fileID)
	if len(sets) != 1 {
		t.Fatalf("expected 1 flag set, got %d", len(sets))
	}
	set := sets[0]
	if set.Name != "Permission" || len(set.Doc) != 1 || set.Doc[0] != "Permission bits." {
		t.Fatalf("set = %+v", set)
	}

	want := []struct {
		name  string
		value string
	}{
		{"Read", "1"},
		{"Write", "0b10"},
		{"ReadWrite", "(Self::Read | Permission::Write)"},
		{"Later", "<none>"},
	}
	if len(set.Variants) != len(want) {
		t.Fatalf("variants = %d, want %d", len(set.Variants), len(want))
	}
	for i, w := range want {
		v := b.Items.Variant(set.Variants[i])
		if v.Name != w.name {
			t.Errorf("variant %d name = %q, want %q", i, v.Name, w.name)
		}
		if got := renderExpr(b, v.Value); got != w.value {
			t.Errorf("variant %s value = %s, want %s", v.Name, got, w.value)
		}
	}
	if doc := b.Items.Variant(set.Variants[0]).Doc; len(doc) != 1 || doc[0] != "Read access." {
		t.Errorf("variant doc = %q", doc)
	}
}

func TestExpressionPrecedence(t *testing.T) {
	tests := []struct {
		src  string
		want string
	}{
		{"1 | 2 & 3", "(1 | (2 & 3))"},
		{"1 ^ 2 | 3", "((1 ^ 2) | 3)"},
		{"1 & 2 ^ 3", "((1 & 2) ^ 3)"},
		{"(1 | 2) & 3", "([(1 | 2)] & 3)"},
		{"1 | 2 | 3", "((1 | 2) | 3)"},
		{"1 << 2 + 3", "(1 << (2 + 3))"},
		{"~Self::A", "~Self::A"},
		{"-1", "-1"},
		{"f(1, Self::A)", "f(1, Self::A)"},
		{`"str"`, `"str"`},
		{"1.5", "1.5"},
	}
	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			b, fileID, bag := parseSource("flags X { A = " + tt.src + " }")
			if bag.HasErrors() {
				t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
			}
			v := b.Items.Variant(b.FlagSets(fileID)[0].Variants[0])
			if got := renderExpr(b, v.Value); got != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestVariantFields(t *testing.T) {
	b, fileID, bag := parseSource("flags X { A(u8, (u16)), B { x: u8 } = 2, C }")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	set := b.FlagSets(fileID)[0]
	a := b.Items.Variant(set.Variants[0])
	bb := b.Items.Variant(set.Variants[1])
	c := b.Items.Variant(set.Variants[2])
	if a.Fields != ast.FieldsTuple || bb.Fields != ast.FieldsStruct || c.Fields != ast.FieldsNone {
		t.Fatalf("fields = %v %v %v", a.Fields, bb.Fields, c.Fields)
	}
	if a.FieldsSpan.Len() != uint32(len("(u8, (u16))")) {
		t.Fatalf("tuple span len = %d", a.FieldsSpan.Len())
	}
	if !bb.Value.IsValid() {
		t.Fatal("struct-like variant lost its value")
	}
}

func TestMultipleSetsAndEmptyBody(t *testing.T) {
	b, fileID, bag := parseSource("flags A {}\nflags B { X = 1 };\nflags C { Y, }")
	if bag.HasErrors() {
		t.Fatalf("unexpected diagnostics: %s", diagnosticsSummary(bag))
	}
	sets := b.FlagSets(fileID)
	if len(sets) != 3 || sets[0].Name != "A" || sets[2].Name != "C" {
		t.Fatalf("sets = %d", len(sets))
	}
	if len(sets[0].Variants) != 0 || len(sets[2].Variants) != 1 {
		t.Fatal("unexpected variant counts")
	}
}

func TestSyntaxErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code diag.Code
	}{
		{"top level", "let x = 1", diag.SynUnexpectedTopLevel},
		{"missing name", "flags { A }", diag.SynExpectIdentifier},
		{"missing body", "flags X A = 1", diag.SynFlagsExpectBody},
		{"missing rbrace", "flags X { A = 1", diag.SynFlagsExpectRBrace},
		{"missing comma", "flags X { A = 1 B = 2 }", diag.SynExpectComma},
		{"missing expr", "flags X { A = , B }", diag.SynExpectExpression},
		{"unclosed paren", "flags X { A = (1 | 2 }", diag.SynUnclosedParen},
		{"bad path", "flags X { A = Self:: }", diag.SynExpectIdentifier},
		{"late package", "flags X { }\npackage p", diag.SynPackagePosition},
		{"double package", "package a\npackage b", diag.SynPackagePosition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, bag := parseSource(tt.src)
			if !bag.HasErrors() {
				t.Fatalf("expected error %s", tt.code.ID())
			}
			found := false
			for _, d := range bag.Items() {
				if d.Code == tt.code {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %s, got %s", tt.code.ID(), diagnosticsSummary(bag))
			}
		})
	}
}

func TestRecoveryKeepsOtherVariants(t *testing.T) {
	b, fileID, bag := parseSource("flags X { A = 1, B = , C = 4 }\nflags Y { Z = 1 }")
	if !bag.HasErrors() {
		t.Fatal("expected error")
	}
	sets := b.FlagSets(fileID)
	if len(sets) != 2 {
		t.Fatalf("sets = %d, want 2 (%s)", len(sets), diagnosticsSummary(bag))
	}
	var names []string
	for _, id := range sets[0].Variants {
		names = append(names, b.Items.Variant(id).Name)
	}
	if len(names) != 2 || names[0] != "A" || names[1] != "C" {
		t.Fatalf("variants = %v", names)
	}
}

func TestMaxErrorsStopsReporting(t *testing.T) {
	src := "flags X { A = , B = , C = , D = , E = }"
	_, _, bag := parseSource(src)
	if bag.Len() < 2 {
		t.Fatalf("expected several diagnostics, got %s", diagnosticsSummary(bag))
	}
}

func TestParseExpression(t *testing.T) {
	tests := []struct {
		input string
		want  string
		diags string
	}{
		{input: "Self::A | Self::B & 4", want: "(Self::A | (Self::B & 4))", diags: "<none>"},
		{input: "(Perm::Read)", want: "[Perm::Read]", diags: "<none>"},
		{input: "Self::A Self::B", want: "<none>", diags: "[SYN2001] unexpected Ident after expression"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			fs := source.NewFileSet()
			file := fs.Get(fs.AddVirtual("<expr>", []byte(tt.input)))
			bag := diag.NewBag(10)
			rep := &diag.BagReporter{Bag: bag}
			builder := ast.NewBuilder(ast.Hints{})
			res := ParseExpression(fs, lexer.New(file, lexer.Options{Reporter: rep}), builder, Options{Reporter: rep})

			if got := renderExpr(builder, res.Expr); got != tt.want {
				t.Fatalf("expr = %s, want %s", got, tt.want)
			}
			if got := diagnosticsSummary(res.Bag); got != tt.diags {
				t.Fatalf("diagnostics = %s, want %s", got, tt.diags)
			}
		})
	}
}
