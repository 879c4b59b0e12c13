package encoder_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stewi1014/binspec"
	"github.com/stewi1014/binspec/encoder"
	"github.com/stewi1014/binspec/intcodec"
	"github.com/stewi1014/binspec/parser"
	"github.com/stewi1014/binspec/wireio"
)

func u32be() intcodec.Spec { return intcodec.New(4, intcodec.BigEndian) }
func u8() intcodec.Spec    { return intcodec.New(1, intcodec.LittleEndian) }

func roundTrip(t *testing.T, spec binspec.Spec, data binspec.Data) {
	t.Helper()
	wire := encoder.New(binspec.Config{}).Encode(spec, data)

	p := parser.New(spec, binspec.Config{})
	p.Supply(wire)
	got, err := p.Next()
	if err != nil {
		t.Fatalf("re-parse failed: %v", err)
	}
	if !got.Equal(data) {
		t.Fatalf("round trip mismatch: got %v, want %v", got, data)
	}
}

func TestEncodeSimpleSeq(t *testing.T) {
	spec := binspec.Seq(binspec.Integer(u8()), binspec.Integer(u32be()))
	data := binspec.FromSeq(binspec.FromUint(5), binspec.FromUint(0x01020304))
	roundTrip(t, spec, data)

	wire := encoder.New(binspec.Config{}).Encode(spec, data)
	want := []byte{5, 0x01, 0x02, 0x03, 0x04}
	if !bytes.Equal(wire, want) {
		t.Fatalf("wire = % x, want % x", wire, want)
	}
}

func TestEncodeAutoLengthPrefixedBytes(t *testing.T) {
	spec := binspec.Seq(
		binspec.Variable(u8(), "n", 0),
		binspec.BytesNamed("n"),
	)
	data := binspec.FromSeq(
		binspec.FromUint(binspec.AUTO),
		binspec.FromBytes([]byte("hello")),
	)
	wire := encoder.New(binspec.Config{}).Encode(spec, data)
	want := []byte{5, 'h', 'e', 'l', 'l', 'o'}
	if !bytes.Equal(wire, want) {
		t.Fatalf("wire = % x, want % x", wire, want)
	}
	roundTrip(t, spec, binspec.FromSeq(
		binspec.FromUint(5),
		binspec.FromBytes([]byte("hello")),
	))
}

func TestEncodeAutoOffsetExcludesHeader(t *testing.T) {
	// The Variable's offset separates the wire value from the payload's
	// actual length: the encoder writes the length minus the offset, and
	// the parser adds the offset back to the raw wire value.
	spec := binspec.Seq(
		binspec.Variable(u8(), "n", 1),
		binspec.BytesNamed("n"),
	)
	data := binspec.FromSeq(
		binspec.FromUint(binspec.AUTO),
		binspec.FromBytes([]byte("abc")),
	)
	wire := encoder.New(binspec.Config{}).Encode(spec, data)
	// payload length 3, application-level value (len) = 3, wire = 3 - 1 = 2.
	want := []byte{2, 'a', 'b', 'c'}
	if !bytes.Equal(wire, want) {
		t.Fatalf("wire = % x, want % x", wire, want)
	}
}

func TestEncodeRepeatCountFromItems(t *testing.T) {
	spec := binspec.Seq(
		binspec.Variable(u8(), "count", 0),
		binspec.Repeat("count", binspec.Integer(u8())),
	)
	data := binspec.FromSeq(
		binspec.FromUint(binspec.AUTO),
		binspec.FromSeq(binspec.FromUint(10), binspec.FromUint(20), binspec.FromUint(30)),
	)
	wire := encoder.New(binspec.Config{}).Encode(spec, data)
	want := []byte{3, 10, 20, 30}
	if !bytes.Equal(wire, want) {
		t.Fatalf("wire = % x, want % x", wire, want)
	}
}

func TestEncodeUntilBudgetFromItems(t *testing.T) {
	spec := binspec.Seq(
		binspec.Variable(u8(), "n", 0),
		binspec.UntilNamed("n", binspec.Integer(u32be())),
	)
	data := binspec.FromSeq(
		binspec.FromUint(binspec.AUTO),
		binspec.FromSeq(binspec.FromUint(1), binspec.FromUint(2), binspec.FromUint(3)),
	)
	wire := encoder.New(binspec.Config{}).Encode(spec, data)
	want := []byte{
		12,
		0, 0, 0, 1,
		0, 0, 0, 2,
		0, 0, 0, 3,
	}
	if !bytes.Equal(wire, want) {
		t.Fatalf("wire = % x, want % x", wire, want)
	}
}

func TestEncodeSwitchMatchingCase(t *testing.T) {
	spec := binspec.Seq(
		binspec.Variable(u8(), "tag", 0),
		binspec.Switch("tag", map[uint64]binspec.Spec{
			1: binspec.Integer(u32be()),
		}, binspec.Stop),
	)
	data := binspec.FromSeq(binspec.FromUint(1), binspec.FromUint(0xCAFEBABE))
	roundTrip(t, spec, data)
}

func TestEncodeSeqLengthMismatchPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic")
		}
		if !errors.Is(r.(error), wireio.ErrShapeMismatch) {
			t.Fatalf("wrong cause: %v", r)
		}
	}()
	spec := binspec.Seq(binspec.Integer(u8()), binspec.Integer(u8()))
	data := binspec.FromSeq(binspec.FromUint(1))
	encoder.New(binspec.Config{}).Encode(spec, data)
}

func TestEncodeUnresolvedAutoPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic")
		}
		if !errors.Is(r.(error), wireio.ErrBadLength) {
			t.Fatalf("wrong cause: %v", r)
		}
	}()
	spec := binspec.Variable(u8(), "n", 0)
	data := binspec.FromUint(binspec.AUTO)
	encoder.New(binspec.Config{}).Encode(spec, data)
}

func TestEncodeDeclaredValueConflictPanics(t *testing.T) {
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic")
		}
		if !errors.Is(r.(error), wireio.ErrBadLength) {
			t.Fatalf("wrong cause: %v", r)
		}
	}()
	spec := binspec.Seq(
		binspec.Variable(u8(), "n", 0),
		binspec.BytesNamed("n"),
	)
	data := binspec.FromSeq(
		binspec.FromUint(99), // declared length disagrees with actual payload
		binspec.FromBytes([]byte("abc")),
	)
	encoder.New(binspec.Config{}).Encode(spec, data)
}
