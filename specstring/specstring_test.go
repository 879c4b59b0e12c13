package specstring_test

import (
	"testing"

	"github.com/stewi1014/binspec"
	"github.com/stewi1014/binspec/parser"
	"github.com/stewi1014/binspec/specstring"
)

func TestCompileBigEndianTower(t *testing.T) {
	spec := specstring.Compile(">BHIQ", binspec.Config{})

	p := parser.New(spec, binspec.Config{})
	p.Supply([]byte{
		0x12,
		0x12, 0x34,
		0x12, 0x34, 0x56, 0x78,
		0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0,
	})
	got, err := p.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := binspec.FromSeq(
		binspec.FromUint(0x12),
		binspec.FromUint(0x1234),
		binspec.FromUint(0x12345678),
		binspec.FromUint(0x123456789ABCDEF0),
	)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCompileLengthPrefixedBytes(t *testing.T) {
	spec := specstring.Compile("<%Is", binspec.Config{})

	p := parser.New(spec, binspec.Config{})
	p.Supply([]byte{0x04, 0x00, 0x00, 0x00, 0xAB, 0xCD, 0xEF, 0xFF})
	got, err := p.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := binspec.FromSeq(
		binspec.FromUint(4),
		binspec.FromBytes([]byte{0xAB, 0xCD, 0xEF, 0xFF}),
	)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCompileUntilWithFixedBudget(t *testing.T) {
	spec := specstring.Compile("<%B(I)", binspec.Config{})

	p := parser.New(spec, binspec.Config{})
	p.Supply([]byte{
		13,
		0x12, 0x34, 0x55, 0x78,
		0x00, 0x00, 0x31, 0x4A,
		0xA8, 0x93, 0xA3, 0x85,
		0x92, // swallowed residue
		0x1B, 0xC3, 0x59, // left in the queue
	})
	got, err := p.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := binspec.FromSeq(
		binspec.FromUint(13),
		binspec.FromSeq(
			binspec.FromUint(0x78553412),
			binspec.FromUint(0x4A310000),
			binspec.FromUint(0x85A393A8),
		),
	)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if p.Remaining().Len() != 3 {
		t.Fatalf("expected 3 leftover bytes, got %d", p.Remaining().Len())
	}
}

func TestCompileSwitchWithDefault(t *testing.T) {
	spec := specstring.Compile("<%B{0=B,1=H,2=I,3=Q,*=H}", binspec.Config{})

	cases := []struct {
		input []byte
		want  binspec.Data
	}{
		{[]byte{0x00, 0x34}, binspec.FromSeq(binspec.FromUint(0), binspec.FromUint(0x34))},
		{[]byte{0x01, 0x22, 0x99}, binspec.FromSeq(binspec.FromUint(1), binspec.FromUint(0x9922))},
		{[]byte{0x02, 0x00, 0x00, 0x00, 0x03}, binspec.FromSeq(binspec.FromUint(2), binspec.FromUint(0x03000000))},
		{[]byte{0x09, 0x61, 0x73}, binspec.FromSeq(binspec.FromUint(9), binspec.FromUint(0x7361))}, // unknown tag falls to default width H
	}
	for _, c := range cases {
		p := parser.New(spec, binspec.Config{})
		p.Supply(c.input)
		got, err := p.Next()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.Equal(c.want) {
			t.Fatalf("input % x: got %v, want %v", c.input, got, c.want)
		}
	}
}

func TestCompileNestedUnboundedUntil(t *testing.T) {
	spec := specstring.Compile("<%B(I *(B))", binspec.Config{})

	p := parser.New(spec, binspec.Config{})
	p.Supply([]byte{
		9,
		0x11, 0x22, 0x33, 0x44, // U32LE
		0x90, 0x91, 0x92, 0x93, 0x94, // 5 bytes left in the 9-byte budget
		0x55, 0x66, 0x77, 0x88, // untouched
	})
	got, err := p.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := binspec.FromSeq(
		binspec.FromUint(9),
		// Outer Until("0") yields a Seq of however many whole iterations fit
		// in the budget; here exactly one.
		binspec.FromSeq(
			binspec.FromSeq(
				binspec.FromUint(0x44332211),
				// Inner unbounded Until consumes the rest of the outer
				// budget as single bytes; its own result is likewise a Seq
				// of iterations.
				binspec.FromSeq(
					binspec.FromUint(0x90), binspec.FromUint(0x91), binspec.FromUint(0x92),
					binspec.FromUint(0x93), binspec.FromUint(0x94),
				),
			),
		),
	)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	if p.Remaining().Len() != 4 {
		t.Fatalf("expected 4 untouched trailing bytes, got %d", p.Remaining().Len())
	}
}

func TestCompileAutoNameOverrideIndex(t *testing.T) {
	// "0$s" references an already-declared variable by index instead of
	// consuming the next-in-FIFO name, and leaves the FIFO pointer where it
	// was: the plain 's' that follows still consumes "0" (unchanged), not
	// "1", so both Bytes nodes read the same 3-byte length.
	spec := specstring.Compile("%I%I 0$s s", binspec.Config{})

	p := parser.New(spec, binspec.Config{})
	p.Supply([]byte{
		3, 0, 0, 0,
		2, 0, 0, 0,
		'a', 'b', 'c',
		'x', 'y', 'z',
	})
	got, err := p.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := binspec.FromSeq(
		binspec.FromUint(3),
		binspec.FromUint(2),
		binspec.FromBytes([]byte("abc")),
		binspec.FromBytes([]byte("xyz")),
	)
	if !got.Equal(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCompileNamePrefixAvoidsCollisions(t *testing.T) {
	a := specstring.Compile("%Is", binspec.Config{NamePrefix: "a."})
	b := specstring.Compile("%Is", binspec.Config{NamePrefix: "b."})
	if a.Equal(b) {
		t.Fatalf("specs compiled with different prefixes should carry different variable names")
	}
}

func TestCompileSyntaxErrorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on malformed spec-string")
		}
	}()
	specstring.Compile("%I(", binspec.Config{}) // unclosed Until
}
