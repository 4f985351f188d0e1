package flagset

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flagger/internal/diag"
)

func TestCollectLowering(t *testing.T) {
	def := mustDefinition(t, `
/// Perms.
flags Perm {
	/// Read access.
	Read = 1,
	Write = (0x2),
	RW = Perm::Read | Self::Write,
	Later,
}`)
	require.Len(t, def.Decls, 4)
	assert.Equal(t, []string{"Perms."}, def.Doc)
	assert.Equal(t, []string{"Read access."}, def.Decls[0].Doc)
	assert.Equal(t, "1", def.Decls[0].Expr.String())
	assert.Equal(t, "2", def.Decls[1].Expr.String(), "groups only group")
	assert.Equal(t, "(Self::Read | Self::Write)", def.Decls[2].Expr.String())
	assert.Equal(t, ExprImplicit, def.Decls[3].Expr.Kind)
}

func TestCollectReportsEveryError(t *testing.T) {
	p := parseFlg(t, `flags Bad {
	Tuple(u8),
	Rec { x: u8 },
	Sum = 1 + 2,
	Shift = 1 << 3,
	Bare = Other,
	Foreign = Other::A,
	Long = Self::A::B,
	Neg = -1,
	Inv = ~Self::A,
	Call = f(1),
	Float = 1.5,
	Str = "x",
	Huge = 340282366920938463463374607431768211456,
	Dup = 1,
	Dup = 2,
	Both = 1 + 2 | Self::A * 3,
	Fine = 1,
}`)
	def, err := NewCollector(p.builder).Collect(p.items[0])
	require.Error(t, err)

	got := Errors(err)
	type row struct {
		variant string
		kind    ErrorKind
	}
	rows := make([]row, len(got))
	for i, e := range got {
		rows[i] = row{e.Variant, e.Kind}
	}
	assert.Equal(t, []row{
		{"Tuple", ErrStructural},
		{"Rec", ErrStructural},
		{"Sum", ErrInvalidExpression},
		{"Shift", ErrInvalidExpression},
		{"Bare", ErrInvalidExpression},
		{"Foreign", ErrInvalidExpression},
		{"Long", ErrInvalidExpression},
		{"Neg", ErrInvalidExpression},
		{"Inv", ErrInvalidExpression},
		{"Call", ErrInvalidExpression},
		{"Float", ErrInvalidExpression},
		{"Str", ErrInvalidExpression},
		{"Huge", ErrInvalidExpression},
		{"Dup", ErrDuplicateVariant},
		{"Both", ErrInvalidExpression},
		{"Both", ErrInvalidExpression},
	}, rows)

	assert.True(t, errors.Is(err, ErrStructural))
	assert.Contains(t, got[12].Msg, "overflows 128 bits")
	assert.Equal(t, "Fine", def.Decls[len(def.Decls)-1].Name)
}

func TestCollectReportAll(t *testing.T) {
	p := parseFlg(t, `flags Bad { A = 1 - 1, A = 2 }`)
	_, err := NewCollector(p.builder).Collect(p.items[0])
	require.Error(t, err)

	bag := diag.NewBag(10)
	ReportAll(diag.BagReporter{Bag: bag}, err)
	require.Equal(t, 2, bag.Len())
	items := bag.Items()
	assert.Equal(t, "FLG3002", items[0].Code.ID())
	assert.Equal(t, "FLG3005", items[1].Code.ID())
	require.Len(t, items[1].Notes, 1)
	assert.Equal(t, "first declared here", items[1].Notes[0].Msg)
}

func TestParseLiteral(t *testing.T) {
	tests := []struct {
		in   string
		want string
		err  string
	}{
		{in: "0", want: "0"},
		{in: "017", want: "17"},
		{in: "1_000", want: "1000"},
		{in: "0xFF", want: "255"},
		{in: "0x_ff", want: "255"},
		{in: "0o17", want: "15"},
		{in: "0b1010", want: "10"},
		{in: "340282366920938463463374607431768211455", want: "340282366920938463463374607431768211455"},
		{in: "340282366920938463463374607431768211456", err: "overflows 128 bits"},
		{in: "0x", err: "malformed"},
		{in: "1__0", err: "malformed"},
		{in: "0b102", err: "malformed"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			v, err := ParseLiteral(tt.in)
			if tt.err != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, v.String())
		})
	}
}

func TestCheckDuplicateSets(t *testing.T) {
	p := parseFlg(t, `flags A { X = 1 } flags B { X = 1 } flags A { Y = 2 }`)
	c := NewCollector(p.builder)
	var defs []*Definition
	for _, it := range p.items {
		d, err := c.Collect(it)
		require.NoError(t, err)
		defs = append(defs, d)
	}

	keep, err := CheckDuplicateSets(defs)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateSet))
	require.Len(t, keep, 2)
	assert.Equal(t, "A", keep[0].Name)
	assert.Equal(t, "X", keep[0].Decls[0].Name)
	assert.Equal(t, "B", keep[1].Name)
}
