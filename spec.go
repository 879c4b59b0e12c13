package binspec

import (
	"fmt"
	"strings"

	"github.com/stewi1014/binspec/intcodec"
	"github.com/stewi1014/binspec/wireio"
)

// Kind identifies which variant of Spec a value holds. Dispatch throughout
// binspec is by Kind, not by Go interface polymorphism: the grammar is a
// closed set of nine node types and a tagged struct says so directly.
type Kind uint8

const (
	KindSkip Kind = iota
	KindStop
	KindInteger
	KindVariable
	KindBytes
	KindSeq
	KindUntil
	KindRepeat
	KindSwitch
)

func (k Kind) String() string {
	switch k {
	case KindSkip:
		return "Skip"
	case KindStop:
		return "Stop"
	case KindInteger:
		return "Integer"
	case KindVariable:
		return "Variable"
	case KindBytes:
		return "Bytes"
	case KindSeq:
		return "Seq"
	case KindUntil:
		return "Until"
	case KindRepeat:
		return "Repeat"
	case KindSwitch:
		return "Switch"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Spec is a single node of a binary-format specification. It is a
// recursive algebraic sum type; Kind selects which fields below apply:
//
//   - KindSkip:     SkipWidth bytes are consumed/discarded on parse,
//     SkipWidth zero bytes are emitted on encode.
//   - KindStop:     no fields; a parse-time sentinel (see package parser).
//   - KindInteger:  Int describes the fixed-width field.
//   - KindVariable: like Integer, but the decoded value (plus Offset) is
//     recorded in the parse environment under Name.
//   - KindBytes:    a raw payload. If HasName, its length is the value of
//     the variable Name; otherwise it consumes all bytes remaining in the
//     current budget.
//   - KindSeq:      Children, in order.
//   - KindUntil:    Inner is parsed repeatedly against a byte budget: the
//     value of variable Name if HasName, otherwise all remaining bytes.
//   - KindRepeat:   Inner is parsed exactly as many times as the value of
//     variable Name.
//   - KindSwitch:   Name is the selector variable; Cases dispatches on its
//     value, falling back to Default.
type Spec struct {
	Kind Kind

	SkipWidth int
	Int       intcodec.Spec

	// Name is overloaded across Kind: the written-to variable for
	// KindVariable, the length/budget/count variable for KindBytes,
	// KindUntil and KindRepeat (when HasName), and the selector variable
	// for KindSwitch.
	Name    string
	HasName bool
	Offset  int64

	Children []Spec

	Inner *Spec

	Cases   map[uint64]Spec
	Default *Spec
}

// Stop is the parse-time sentinel: parsing a Stop node halts the
// enclosing top-level structure (see package parser's Stop semantics).
var Stop = Spec{Kind: KindStop}

// Skip consumes (or, on encode, emits) n zero-meaning bytes.
func Skip(n int) Spec {
	if n < 0 {
		panic(wireio.NewError(wireio.ErrBadLength, "Skip width must not be negative", 0))
	}
	return Spec{Kind: KindSkip, SkipWidth: n}
}

// Integer is a fixed-width field that is parsed and discarded into the
// Data tree as a value, without being recorded as a variable.
func Integer(is intcodec.Spec) Spec {
	return Spec{Kind: KindInteger, Int: is}
}

// Variable is a fixed-width field whose decoded value, plus offset, is
// recorded in the parse environment under name for later siblings and
// descendants to consult.
func Variable(is intcodec.Spec, name string, offset int64) Spec {
	return Spec{Kind: KindVariable, Int: is, Name: name, Offset: offset}
}

// BytesNamed is a raw payload whose length is the value of variable name.
func BytesNamed(name string) Spec {
	return Spec{Kind: KindBytes, Name: name, HasName: true}
}

// BytesUnbounded is a raw payload consuming every byte remaining in the
// current budget (or, at the outermost level, every byte supplied so
// far).
func BytesUnbounded() Spec {
	return Spec{Kind: KindBytes}
}

// Seq is an ordered composition of specs.
func Seq(children ...Spec) Spec {
	return Spec{Kind: KindSeq, Children: children}
}

// UntilNamed repeatedly parses inner against a budget of vars[name]
// bytes, as many whole times as fit; any leftover bytes within the budget
// are silently consumed.
func UntilNamed(name string, inner Spec) Spec {
	return Spec{Kind: KindUntil, Name: name, HasName: true, Inner: &inner}
}

// UntilUnbounded is like UntilNamed but bounds the budget to every byte
// remaining in the enclosing budget.
func UntilUnbounded(inner Spec) Spec {
	return Spec{Kind: KindUntil, Inner: &inner}
}

// Repeat parses inner exactly vars[name] times.
func Repeat(name string, inner Spec) Spec {
	return Spec{Kind: KindRepeat, Name: name, HasName: true, Inner: &inner}
}

// Switch dispatches on vars[selector], parsing cases[value] if present,
// or def otherwise.
func Switch(selector string, cases map[uint64]Spec, def Spec) Spec {
	return Spec{Kind: KindSwitch, Name: selector, HasName: true, Cases: cases, Default: &def}
}

// Combine implements the spec-string compiler's combining rule:
// Combine(nil) is Skip(0), Combine of a single spec is that spec
// unwrapped, and otherwise the specs are composed as a Seq.
func Combine(specs []Spec) Spec {
	switch len(specs) {
	case 0:
		return Skip(0)
	case 1:
		return specs[0]
	default:
		return Seq(specs...)
	}
}

// Equal reports whether two specs are structurally identical.
func (s Spec) Equal(o Spec) bool {
	if s.Kind != o.Kind {
		return false
	}
	switch s.Kind {
	case KindSkip:
		return s.SkipWidth == o.SkipWidth
	case KindStop:
		return true
	case KindInteger:
		return s.Int == o.Int
	case KindVariable:
		return s.Int == o.Int && s.Name == o.Name && s.Offset == o.Offset
	case KindBytes:
		return s.HasName == o.HasName && (!s.HasName || s.Name == o.Name)
	case KindSeq:
		if len(s.Children) != len(o.Children) {
			return false
		}
		for i := range s.Children {
			if !s.Children[i].Equal(o.Children[i]) {
				return false
			}
		}
		return true
	case KindUntil:
		return s.HasName == o.HasName && (!s.HasName || s.Name == o.Name) && specPtrEqual(s.Inner, o.Inner)
	case KindRepeat:
		return s.Name == o.Name && specPtrEqual(s.Inner, o.Inner)
	case KindSwitch:
		if s.Name != o.Name || len(s.Cases) != len(o.Cases) {
			return false
		}
		for k, v := range s.Cases {
			ov, ok := o.Cases[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return specPtrEqual(s.Default, o.Default)
	default:
		return false
	}
}

func specPtrEqual(a, b *Spec) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

// String returns a spec-string-like textual form, for debugging and
// snapshot tests. It is not guaranteed to compile back to an identical
// Spec (e.g. auto-generated variable names are not reconstructed), but is
// stable and deterministic for a given tree.
func (s Spec) String() string {
	var b strings.Builder
	s.write(&b)
	return b.String()
}

func (s Spec) write(b *strings.Builder) {
	switch s.Kind {
	case KindSkip:
		fmt.Fprintf(b, "%dx", s.SkipWidth)
	case KindStop:
		b.WriteString("!")
	case KindInteger:
		writeIntLetter(b, s.Int)
	case KindVariable:
		b.WriteByte('%')
		if s.Offset > 0 {
			fmt.Fprintf(b, "+%d", s.Offset)
		} else if s.Offset < 0 {
			fmt.Fprintf(b, "%d", s.Offset)
		}
		writeIntLetter(b, s.Int)
		fmt.Fprintf(b, "[%s]", s.Name)
	case KindBytes:
		if s.HasName {
			fmt.Fprintf(b, "[%s]s", s.Name)
		} else {
			b.WriteString("*s")
		}
	case KindSeq:
		for i, c := range s.Children {
			if i > 0 {
				b.WriteByte(' ')
			}
			c.write(b)
		}
	case KindUntil:
		if s.HasName {
			fmt.Fprintf(b, "[%s](", s.Name)
		} else {
			b.WriteString("*(")
		}
		s.Inner.write(b)
		b.WriteByte(')')
	case KindRepeat:
		fmt.Fprintf(b, "[%s]{", s.Name)
		s.Inner.write(b)
		b.WriteByte('}')
	case KindSwitch:
		fmt.Fprintf(b, "[%s]{", s.Name)
		keys := make([]uint64, 0, len(s.Cases))
		for k := range s.Cases {
			keys = append(keys, k)
		}
		sortUint64s(keys)
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(b, "%d=", k)
			v := s.Cases[k]
			v.write(b)
		}
		b.WriteString(",*=")
		s.Default.write(b)
		b.WriteByte('}')
	}
}

func writeIntLetter(b *strings.Builder, is intcodec.Spec) {
	if is.Width != 1 {
		if is.Endian == intcodec.BigEndian {
			b.WriteByte('>')
		} else {
			b.WriteByte('<')
		}
	}
	switch is.Width {
	case 1:
		b.WriteByte('B')
	case 2:
		b.WriteByte('H')
	case 3:
		b.WriteByte('T')
	case 4:
		b.WriteByte('I')
	case 8:
		b.WriteByte('Q')
	}
}

func sortUint64s(s []uint64) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
