package binspec_test

import (
	"testing"

	"github.com/maxatome/go-testdeep/td"

	"github.com/stewi1014/binspec"
	"github.com/stewi1014/binspec/intcodec"
)

func TestSpecEqual(t *testing.T) {
	a := binspec.Seq(
		binspec.Variable(intcodec.New(4, intcodec.LittleEndian), "0", 0),
		binspec.BytesNamed("0"),
	)
	b := binspec.Seq(
		binspec.Variable(intcodec.New(4, intcodec.LittleEndian), "0", 0),
		binspec.BytesNamed("0"),
	)
	if !a.Equal(b) {
		t.Fatalf("structurally identical specs compared unequal")
	}

	c := binspec.Seq(
		binspec.Variable(intcodec.New(4, intcodec.LittleEndian), "0", 0),
		binspec.BytesUnbounded(),
	)
	if a.Equal(c) {
		t.Fatalf("BytesNamed and BytesUnbounded should not compare equal")
	}
}

func TestCombine(t *testing.T) {
	td.Cmp(t, binspec.Combine(nil), binspec.Skip(0))

	one := binspec.Skip(3)
	td.Cmp(t, binspec.Combine([]binspec.Spec{one}), one)

	two := []binspec.Spec{binspec.Skip(1), binspec.Skip(2)}
	got := binspec.Combine(two)
	if got.Kind != binspec.KindSeq || len(got.Children) != 2 {
		t.Fatalf("expected a 2-child Seq, got %v", got)
	}
}

func TestSwitchAndUntilEqual(t *testing.T) {
	inner := binspec.Integer(intcodec.New(2, intcodec.BigEndian))
	a := binspec.UntilNamed("n", inner)
	b := binspec.UntilNamed("n", binspec.Integer(intcodec.New(2, intcodec.BigEndian)))
	if !a.Equal(b) {
		t.Fatalf("Until with equal inner specs should compare equal")
	}

	sw1 := binspec.Switch("tag", map[uint64]binspec.Spec{
		0: binspec.Integer(intcodec.New(1, intcodec.LittleEndian)),
		1: binspec.Integer(intcodec.New(2, intcodec.LittleEndian)),
	}, binspec.Stop)
	sw2 := binspec.Switch("tag", map[uint64]binspec.Spec{
		1: binspec.Integer(intcodec.New(2, intcodec.LittleEndian)),
		0: binspec.Integer(intcodec.New(1, intcodec.LittleEndian)),
	}, binspec.Stop)
	if !sw1.Equal(sw2) {
		t.Fatalf("Switch equality should not depend on map iteration order")
	}
}

func TestSpecString(t *testing.T) {
	s := binspec.Seq(
		binspec.Integer(intcodec.New(1, intcodec.BigEndian)),
		binspec.Integer(intcodec.New(2, intcodec.BigEndian)),
	)
	got := s.String()
	want := "B >H"
	if got != want {
		t.Fatalf("String() = %q, want %q", got, want)
	}
}
