// Package intcodec encodes and decodes fixed-width unsigned integers at
// widths 1, 2, 3, 4 and 8 bytes, big- or little-endian.
//
// Shift-and-mask fixed-width encoding, generalized to the five widths
// this wire format needs and parameterized by endianness rather than
// being LE-only.
package intcodec

import "github.com/stewi1014/binspec/wireio"

// Endian selects byte order for widths greater than 1.
type Endian uint8

const (
	LittleEndian Endian = iota
	BigEndian
)

func (e Endian) String() string {
	if e == BigEndian {
		return "big"
	}
	return "little"
}

// Spec describes how to encode or decode a fixed-width unsigned integer.
// Width 1 is endian-irrelevant. The decoded value always fits in 64 bits;
// width 3 uses the low 24 bits of the 64-bit register.
type Spec struct {
	Width  int
	Endian Endian
}

// ValidWidth reports whether w is one of the supported widths.
func ValidWidth(w int) bool {
	switch w {
	case 1, 2, 3, 4, 8:
		return true
	default:
		return false
	}
}

// New returns a validated Spec, panicking with a wireio.Error if width is
// not one of 1, 2, 3, 4, 8.
func New(width int, endian Endian) Spec {
	if !ValidWidth(width) {
		panic(wireio.NewError(wireio.ErrBadLength, "integer width must be one of 1,2,3,4,8", 0))
	}
	return Spec{Width: width, Endian: endian}
}

// Decode reads s.Width bytes from the front of buf and returns the
// zero-extended 64-bit value. buf must have length >= s.Width.
func (s Spec) Decode(buf []byte) uint64 {
	buf = buf[:s.Width]
	if s.Width == 1 {
		return uint64(buf[0])
	}

	var v uint64
	if s.Endian == BigEndian {
		for _, b := range buf {
			v = v<<8 | uint64(b)
		}
	} else {
		for i := len(buf) - 1; i >= 0; i-- {
			v = v<<8 | uint64(buf[i])
		}
	}
	return v
}

// Encode writes the low s.Width*8 bits of v into the front of buf. buf
// must have length >= s.Width. No overflow error is raised; wider values
// are truncated by plain bitwise reinterpretation.
func (s Spec) Encode(buf []byte, v uint64) {
	buf = buf[:s.Width]
	if s.Width == 1 {
		buf[0] = byte(v)
		return
	}

	if s.Endian == BigEndian {
		for i := s.Width - 1; i >= 0; i-- {
			buf[i] = byte(v)
			v >>= 8
		}
	} else {
		for i := 0; i < s.Width; i++ {
			buf[i] = byte(v)
			v >>= 8
		}
	}
}
