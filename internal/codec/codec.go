// Package codec encodes floating-point values into the fixed-width binary
// layout gnuplot reads for `binary` data: 4-byte IEEE-754 single precision,
// no separators.
//
// The byte order is chosen through Endian, which also renders the matching
// `endian=` fragment for the plot directive. Deriving both from one value
// keeps the directive and the payload in agreement.
package codec

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"
)

// Endian selects the byte order of encoded floats.
type Endian int

const (
	// Native is the host byte order. gnuplot assumes native order when the
	// directive carries no endian= clause.
	Native Endian = iota
	Little
	Big
)

// ByteOrder is satisfied by the encoding/binary orders and can both encode
// and decode.
type ByteOrder interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// Size is the encoded width of one value in bytes.
const Size = 4

// ParseEndian parses "native", "little" or "big". An empty string is Native.
func ParseEndian(s string) (Endian, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "native", "default":
		return Native, nil
	case "little", "le":
		return Little, nil
	case "big", "be":
		return Big, nil
	default:
		return Native, fmt.Errorf("unknown byte order %q (supported: native, little, big)", s)
	}
}

func (e Endian) String() string {
	switch e {
	case Little:
		return "little"
	case Big:
		return "big"
	default:
		return "native"
	}
}

// Order returns the byte order used to encode values.
func (e Endian) Order() ByteOrder {
	switch e {
	case Little:
		return binary.LittleEndian
	case Big:
		return binary.BigEndian
	default:
		return binary.NativeEndian
	}
}

// Directive returns the endian= clause for a binary plot directive, or ""
// for Native.
func (e Endian) Directive() string {
	switch e {
	case Little:
		return "endian=little"
	case Big:
		return "endian=big"
	default:
		return ""
	}
}

// AppendFloat32 appends the 4-byte encoding of v.
func AppendFloat32(dst []byte, v float32, order binary.AppendByteOrder) []byte {
	return order.AppendUint32(dst, math.Float32bits(v))
}

// AppendFloats appends the encodings of values in order.
func AppendFloats(dst []byte, values []float32, order binary.AppendByteOrder) []byte {
	dst = growFor(dst, len(values))
	for _, v := range values {
		dst = order.AppendUint32(dst, math.Float32bits(v))
	}
	return dst
}

// DecodeFloats decodes b back into values. len(b) must be a multiple of Size.
func DecodeFloats(b []byte, order binary.ByteOrder) ([]float32, error) {
	if len(b)%Size != 0 {
		return nil, fmt.Errorf("decode floats: %d bytes is not a multiple of %d", len(b), Size)
	}
	out := make([]float32, 0, len(b)/Size)
	for i := 0; i < len(b); i += Size {
		out = append(out, math.Float32frombits(order.Uint32(b[i:])))
	}
	return out, nil
}

func growFor(dst []byte, n int) []byte {
	need := n * Size
	if cap(dst)-len(dst) >= need {
		return dst
	}
	grown := make([]byte, len(dst), len(dst)+need)
	copy(grown, dst)
	return grown
}
