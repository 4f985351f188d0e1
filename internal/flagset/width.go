package flagset

import (
	"math"
	"math/bits"
	"strconv"

	"github.com/cockroachdb/errors"
	"github.com/gaze-network/uint128"
)

// Width is the bit width of a flag set's backing integer.
type Width uint8

const (
	Width8   Width = 8
	Width16  Width = 16
	Width32  Width = 32
	Width64  Width = 64
	Width128 Width = 128
)

// Widths lists the supported widths, narrowest first.
var Widths = [...]Width{Width8, Width16, Width32, Width64, Width128}

func (w Width) Valid() bool {
	switch w {
	case Width8, Width16, Width32, Width64, Width128:
		return true
	}
	return false
}

func (w Width) Bits() uint { return uint(w) }

func (w Width) String() string { return strconv.Itoa(int(w)) }

// GoType is the Go backing type name.
func (w Width) GoType() string {
	if w == Width128 {
		return "uint128.Uint128"
	}
	return "uint" + w.String()
}

// Mask is the all-ones pattern of the width.
func (w Width) Mask() uint128.Uint128 {
	switch {
	case w >= Width128:
		return uint128.Max
	case w == Width64:
		return uint128.From64(math.MaxUint64)
	default:
		return uint128.From64(1<<w.Bits() - 1)
	}
}

// HexDigits is the number of hex digits needed to print any value of the width.
func (w Width) HexDigits() int { return int(w) / 4 }

// ParseWidth accepts "8", "16", "32", "64", "128" and "uint8".."uint128".
func ParseWidth(s string) (Width, error) {
	if len(s) > 4 && s[:4] == "uint" {
		s = s[4:]
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Newf("invalid width %q (expected 8|16|32|64|128)", s)
	}
	return WidthOf(n)
}

// WidthOf validates a numeric width.
func WidthOf(n int) (Width, error) {
	if n < 0 || n > 128 || !Width(n).Valid() {
		return 0, errors.Newf("invalid width %d (expected 8|16|32|64|128)", n)
	}
	return Width(n), nil
}

// BitLen is the position of the highest set bit counted from 1; 0 for zero.
func BitLen(v uint128.Uint128) int {
	if v.Hi != 0 {
		return 64 + bits.Len64(v.Hi)
	}
	return bits.Len64(v.Lo)
}

func onesCount(v uint128.Uint128) int {
	return bits.OnesCount64(v.Hi) + bits.OnesCount64(v.Lo)
}

// SelectWidth picks the narrowest width whose breakpoint range holds maxBit:
// [0,7] → 8, [8,15] → 16, [16,31] → 32, [32,63] → 64, [64,127] → 128.
// The result is never narrower than floor. ok is false when maxBit ≥ 128.
func SelectWidth(maxBit int, floor Width) (Width, bool) {
	for _, w := range Widths {
		if maxBit < int(w) && w >= floor {
			return w, true
		}
	}
	return 0, false
}
