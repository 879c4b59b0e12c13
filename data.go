package binspec

import (
	"fmt"
	"strings"

	"github.com/stewi1014/binspec/queue"
)

// AUTO is a reserved integer sentinel. A caller building a Data tree to
// hand to package encoder may use AUTO in place of any Integer that
// corresponds to a Variable whose value should be computed post-hoc (a
// length or count the encoder back-patches once it knows it). It is a
// bit-pattern high enough to be vanishingly unlikely to collide with a
// real value, while leaving headroom below it for Variable offset
// arithmetic.
const AUTO uint64 = ^uint64(0x3fffffff)

// DataKind identifies which variant of Data a value holds.
type DataKind uint8

const (
	DataEmpty DataKind = iota
	DataStopKind
	DataInteger
	DataBytes
	DataSeq
)

func (k DataKind) String() string {
	switch k {
	case DataEmpty:
		return "Empty"
	case DataStopKind:
		return "Stop"
	case DataInteger:
		return "Integer"
	case DataBytes:
		return "Bytes"
	case DataSeq:
		return "Seq"
	default:
		return fmt.Sprintf("DataKind(%d)", uint8(k))
	}
}

// Data is a parsed value tree: the output of package parser and the
// input to package encoder. Like Spec it is a closed tagged union.
//
//   - DataEmpty:   Skip and the implicit result of some internal steps.
//   - DataStopKind: Stop was produced while parsing; see StopSpec and
//     StopSelector. A Stop is never nested inside a Seq: if it surfaces,
//     parsing of the outermost structure terminates and this value is the
//     whole result.
//   - DataInteger: a plain 64-bit value (or AUTO) regardless of the width
//     and endianness it was, or will be, encoded with.
//   - DataBytes:   a raw payload, held as a zero-copy View when it came
//     from the parser.
//   - DataSeq:     Items, in order; its length must equal the
//     corresponding Spec Seq's Children length at encode time.
type Data struct {
	Kind DataKind

	Integer uint64
	Bytes   queue.View
	Items   []Data

	StopSpec     *Spec
	StopSelector uint64
}

// Empty is the DataEmpty value.
var Empty = Data{Kind: DataEmpty}

// StopData builds the Data produced when spec reduces to Stop during
// parsing. selector is the Switch value that led to Stop, or 0 if Stop
// was reached directly.
func StopData(spec Spec, selector uint64) Data {
	return Data{Kind: DataStopKind, StopSpec: &spec, StopSelector: selector}
}

// FromUint wraps an unsigned integer as Data.
func FromUint(v uint64) Data {
	return Data{Kind: DataInteger, Integer: v}
}

// FromInt wraps a signed integer as Data via two's-complement bit
// reinterpretation.
func FromInt(v int64) Data {
	return Data{Kind: DataInteger, Integer: uint64(v)}
}

// FromBytes wraps a byte slice as Data without copying it.
func FromBytes(b []byte) Data {
	return Data{Kind: DataBytes, Bytes: queue.FromBytes(b)}
}

// FromString wraps a string's UTF-8 bytes as Data.
func FromString(s string) Data {
	return FromBytes([]byte(s))
}

// FromSeq composes items into a Data Seq.
func FromSeq(items ...Data) Data {
	return Data{Kind: DataSeq, Items: items}
}

// From converts common Go values into Data: unsigned and signed integer
// kinds, strings, byte slices, []Data, and Data itself (returned
// unchanged). It panics on any other type; these conversions are surface
// sugar over the constructors above, not a general marshaler.
func From(v any) Data {
	switch x := v.(type) {
	case Data:
		return x
	case uint64:
		return FromUint(x)
	case uint32:
		return FromUint(uint64(x))
	case uint16:
		return FromUint(uint64(x))
	case uint8:
		return FromUint(uint64(x))
	case uint:
		return FromUint(uint64(x))
	case int64:
		return FromInt(x)
	case int32:
		return FromInt(int64(x))
	case int16:
		return FromInt(int64(x))
	case int8:
		return FromInt(int64(x))
	case int:
		return FromInt(int64(x))
	case string:
		return FromString(x)
	case []byte:
		return FromBytes(x)
	case []Data:
		return FromSeq(x...)
	default:
		panic(fmt.Sprintf("binspec: From: unsupported type %T", v))
	}
}

// Equal reports whether two Data trees are structurally identical. Bytes
// payloads are compared by content, regardless of how each is chunked
// internally.
func (d Data) Equal(o Data) bool {
	if d.Kind != o.Kind {
		return false
	}
	switch d.Kind {
	case DataEmpty:
		return true
	case DataStopKind:
		return d.StopSelector == o.StopSelector && specPtrEqual(d.StopSpec, o.StopSpec)
	case DataInteger:
		return d.Integer == o.Integer
	case DataBytes:
		return d.Bytes.Equal(o.Bytes)
	case DataSeq:
		if len(d.Items) != len(o.Items) {
			return false
		}
		for i := range d.Items {
			if !d.Items[i].Equal(o.Items[i]) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// String returns a debugging representation of the Data tree.
func (d Data) String() string {
	var b strings.Builder
	d.write(&b)
	return b.String()
}

func (d Data) write(b *strings.Builder) {
	switch d.Kind {
	case DataEmpty:
		b.WriteString("Empty")
	case DataStopKind:
		fmt.Fprintf(b, "Stop(selector=%d)", d.StopSelector)
	case DataInteger:
		if d.Integer == AUTO {
			b.WriteString("Integer(AUTO)")
		} else {
			fmt.Fprintf(b, "Integer(%d)", d.Integer)
		}
	case DataBytes:
		fmt.Fprintf(b, "Bytes(% x)", d.Bytes.Bytes())
	case DataSeq:
		b.WriteString("Seq[")
		for i, item := range d.Items {
			if i > 0 {
				b.WriteString(", ")
			}
			item.write(b)
		}
		b.WriteString("]")
	}
}
