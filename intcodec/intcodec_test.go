package intcodec_test

import (
	"testing"

	"github.com/stewi1014/binspec/intcodec"
)

func TestRoundTrip(t *testing.T) {
	widths := []int{1, 2, 3, 4, 8}
	endians := []intcodec.Endian{intcodec.LittleEndian, intcodec.BigEndian}

	for _, w := range widths {
		for _, e := range endians {
			spec := intcodec.New(w, e)
			max := uint64(1)<<(8*w) - 1
			for _, v := range []uint64{0, 1, max, max / 2} {
				buf := make([]byte, w)
				spec.Encode(buf, v)
				got := spec.Decode(buf)
				if got != v {
					t.Fatalf("width=%v endian=%v: encode/decode(%v) = %v", w, e, v, got)
				}
			}
		}
	}
}

func TestBigEndianTower(t *testing.T) {
	// Scenario 1 from the testable properties: >BHIQ
	buf := []byte{0x12, 0x12, 0x34, 0x12, 0x34, 0x56, 0x78, 0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0}
	off := 0
	next := func(w int) uint64 {
		s := intcodec.New(w, intcodec.BigEndian)
		v := s.Decode(buf[off:])
		off += w
		return v
	}
	if v := next(1); v != 0x12 {
		t.Fatalf("B: got %#x", v)
	}
	if v := next(2); v != 0x1234 {
		t.Fatalf("H: got %#x", v)
	}
	if v := next(4); v != 0x12345678 {
		t.Fatalf("I: got %#x", v)
	}
	if v := next(8); v != 0x123456789ABCDEF0 {
		t.Fatalf("Q: got %#x", v)
	}
}

func TestWidth3LowBits(t *testing.T) {
	s := intcodec.New(3, intcodec.LittleEndian)
	buf := make([]byte, 3)
	s.Encode(buf, 0xFFAABBCC) // only the low 24 bits (0xAABBCC) should be kept
	got := s.Decode(buf)
	if got != 0xAABBCC {
		t.Fatalf("expected low 24 bits 0xAABBCC, got %#x", got)
	}
}

func TestWidth1IgnoresEndian(t *testing.T) {
	le := intcodec.New(1, intcodec.LittleEndian)
	be := intcodec.New(1, intcodec.BigEndian)

	buf1 := make([]byte, 1)
	buf2 := make([]byte, 1)
	le.Encode(buf1, 0xAB)
	be.Encode(buf2, 0xAB)
	if buf1[0] != buf2[0] {
		t.Fatalf("width 1 should be endian-irrelevant")
	}
}

func TestEndianInvariantPalindrome(t *testing.T) {
	// Bytes 00 FF FF 00 00 FF FF 00 read the same forwards and backwards.
	const palindrome = uint64(0x00FFFF0000FFFF00)
	le := intcodec.New(8, intcodec.LittleEndian)
	be := intcodec.New(8, intcodec.BigEndian)

	buf := make([]byte, 8)
	le.Encode(buf, palindrome)
	if got := be.Decode(buf); got != palindrome {
		t.Fatalf("palindrome should decode identically cross-endian, got %#x", got)
	}
}

func TestInvalidWidthPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic for invalid width")
		}
	}()
	intcodec.New(5, intcodec.LittleEndian)
}
