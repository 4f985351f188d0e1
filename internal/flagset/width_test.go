package flagset

import (
	"context"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectWidthBreakpoints(t *testing.T) {
	for maxBit := 0; maxBit <= 130; maxBit++ {
		w, ok := SelectWidth(maxBit, Width8)
		switch {
		case maxBit <= 7:
			assert.Equal(t, Width8, w, "max bit %d", maxBit)
		case maxBit <= 15:
			assert.Equal(t, Width16, w, "max bit %d", maxBit)
		case maxBit <= 31:
			assert.Equal(t, Width32, w, "max bit %d", maxBit)
		case maxBit <= 63:
			assert.Equal(t, Width64, w, "max bit %d", maxBit)
		case maxBit <= 127:
			assert.Equal(t, Width128, w, "max bit %d", maxBit)
		default:
			assert.False(t, ok, "max bit %d must be oversized", maxBit)
			continue
		}
		assert.True(t, ok)
	}
}

func TestSelectWidthFloor(t *testing.T) {
	w, ok := SelectWidth(3, Width32)
	require.True(t, ok)
	assert.Equal(t, Width32, w)

	w, ok = SelectWidth(40, Width16)
	require.True(t, ok)
	assert.Equal(t, Width64, w, "floor never lowers")
}

func TestResolveWidthFromValues(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want Width
	}{
		{name: "max 4", src: `flags W { A = 1, B = 4 }`, want: Width8},
		{name: "max 200", src: `flags W { A = 200 }`, want: Width16},
		{name: "bit 31", src: `flags W { A = 0x8000_0000 }`, want: Width64},
		{name: "bit 64", src: `flags W { A = 0x1_0000_0000_0000_0000 }`, want: Width128},
		{name: "zeros", src: `flags W { A = 0, B = Self::A & 0 }`, want: Width8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mustResolve(t, tt.src).Width)
		})
	}
}

func TestResolveOversized(t *testing.T) {
	// 1 << 127
	def := mustDefinition(t, `flags Big {
		Small = 1,
		Top = 170141183460469231731687303715884105728,
		Also = Self::Top | 1,
	}`)
	_, err := Resolve(context.Background(), def, Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOversizedFlagSet))

	located := Errors(err)
	require.Len(t, located, 1)
	assert.Equal(t, "Top", located[0].Variant, "first variant holding the highest bit")
	assert.Contains(t, located[0].Msg, "needs 128 bits")
}

func TestResolveMinWidth(t *testing.T) {
	fs, err := Resolve(context.Background(), mustDefinition(t, scenario), Options{MinWidth: Width32})
	require.NoError(t, err)
	assert.Equal(t, Width32, fs.Width)
	assert.Equal(t, "4294967295", fs.AllFlag().String())
}

func TestWidthHelpers(t *testing.T) {
	assert.Equal(t, "uint16", Width16.GoType())
	assert.Equal(t, "uint128.Uint128", Width128.GoType())
	assert.Equal(t, uint128.Max, Width128.Mask())
	assert.Equal(t, uint128.From64(^uint64(0)), Width64.Mask())
	assert.Equal(t, uint128.From64(0xFF), Width8.Mask())

	w, err := ParseWidth("uint32")
	require.NoError(t, err)
	assert.Equal(t, Width32, w)
	_, err = ParseWidth("24")
	assert.Error(t, err)
	_, err = WidthOf(300)
	assert.Error(t, err)

	assert.Equal(t, 0, BitLen(uint128.Zero))
	assert.Equal(t, 8, BitLen(uint128.From64(200)))
	assert.Equal(t, 128, BitLen(uint128.New(0, 1<<63)))
}
