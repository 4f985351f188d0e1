package flagset

import (
	"strings"

	"github.com/gaze-network/uint128"
)

// Value is a flag value of a given width. It is the in-process reference for
// what the generated methods do.
type Value struct {
	Bits  uint128.Uint128
	Width Width
}

func (v Value) wider(o Value) Width {
	return max(v.Width, o.Width)
}

func (v Value) And(o Value) Value {
	return Value{Bits: v.Bits.And(o.Bits), Width: v.wider(o)}
}

func (v Value) Or(o Value) Value {
	return Value{Bits: v.Bits.Or(o.Bits), Width: v.wider(o)}
}

func (v Value) Xor(o Value) Value {
	return Value{Bits: v.Bits.Xor(o.Bits), Width: v.wider(o)}
}

// Not flips every bit of the width and nothing above it.
func (v Value) Not() Value {
	return Value{Bits: v.Bits.Xor(v.Width.Mask()).And(v.Width.Mask()), Width: v.Width}
}

// HasAnyFlag is (v & o) != 0.
func (v Value) HasAnyFlag(o Value) bool {
	return !v.Bits.And(o.Bits).IsZero()
}

// HasAllFlags is (v & o) == o.
func (v Value) HasAllFlags(o Value) bool {
	return v.Bits.And(o.Bits).Equals(o.Bits)
}

func (v Value) Equals(o Value) bool {
	return v.Bits.Equals(o.Bits)
}

func (v Value) IsZero() bool { return v.Bits.IsZero() }

// Hex prints the value zero-padded to the width, e.g. 0x03 for 8 bits.
func (v Value) Hex() string {
	digits := v.Bits.Big().Text(16)
	if pad := v.Width.HexDigits() - len(digits); pad > 0 {
		digits = strings.Repeat("0", pad) + digits
	}
	return "0x" + digits
}

// Binary prints the value as width binary digits grouped by nibble.
func (v Value) Binary() string {
	raw := v.Bits.Big().Text(2)
	if pad := int(v.Width) - len(raw); pad > 0 {
		raw = strings.Repeat("0", pad) + raw
	}
	var sb strings.Builder
	for i, r := range raw {
		if i > 0 && i%4 == 0 {
			sb.WriteByte('_')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (v Value) String() string { return v.Bits.String() }
