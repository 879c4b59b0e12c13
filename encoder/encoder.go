// Package encoder implements the back-patching Encoder: it walks a Spec
// and a matching Data tree in lockstep and produces the bytes the Spec
// describes, the exact inverse of package parser.
//
// Some Variable values are not known until after the subtree they size has
// been produced (an AUTO length or count). Encoder reserves the
// Variable's width in the output immediately and records a pending patch
// (reserve space now, come back and fill it in once the real value is
// known); whichever later node names that variable (a Bytes payload's
// length, a Repeat's item count, an Until's byte budget) resolves it
// once its own size is known.
package encoder

import (
	"fmt"

	"github.com/stewi1014/binspec"
	"github.com/stewi1014/binspec/intcodec"
	"github.com/stewi1014/binspec/wireio"
)

// pendingVar is a reserved-but-not-yet-written Variable slot.
type pendingVar struct {
	location int
	is       intcodec.Spec
	offset   int64
}

// Encoder produces bytes for a Spec/Data pair. It is not safe for
// concurrent use; a fresh call to Encode resets all internal state, so a
// single Encoder value may be reused sequentially.
type Encoder struct {
	config binspec.Config

	out     []byte
	env     map[string]uint64
	pending map[string]pendingVar
}

// New returns an Encoder configured by config.Normalize().
func New(config binspec.Config) *Encoder {
	return &Encoder{config: config.Normalize()}
}

// Encode produces the byte sequence spec describes for data. It panics
// with a wireio.Error if data's shape doesn't match spec, if a variable is
// referenced before any Variable node declares it, if a declared value
// conflicts with the data actually present, or if an AUTO Variable is left
// with nothing in the tree to size it.
func (e *Encoder) Encode(spec binspec.Spec, data binspec.Data) []byte {
	e.out = nil
	e.env = make(map[string]uint64, len(e.config.Vars))
	for k, v := range e.config.Vars {
		e.env[k] = v
	}
	e.pending = make(map[string]pendingVar)

	e.encode(spec, data)

	for name := range e.pending {
		panic(wireio.NewError(wireio.ErrBadLength, fmt.Sprintf("variable %q is AUTO but nothing in the tree sizes it", name), 1))
	}
	return e.out
}

func (e *Encoder) encode(spec binspec.Spec, data binspec.Data) {
	switch spec.Kind {
	case binspec.KindSkip:
		e.out = append(e.out, make([]byte, spec.SkipWidth)...)

	case binspec.KindStop:
		// Stop emits nothing; it is a parse-time sentinel, not a payload.

	case binspec.KindInteger:
		e.requireKind(data, binspec.DataInteger, "Integer")
		buf := make([]byte, spec.Int.Width)
		spec.Int.Encode(buf, data.Integer)
		e.out = append(e.out, buf...)

	case binspec.KindVariable:
		e.encodeVariable(spec, data)

	case binspec.KindBytes:
		e.encodeBytes(spec, data)

	case binspec.KindSeq:
		e.encodeSeq(spec, data)

	case binspec.KindRepeat:
		e.encodeRepeat(spec, data)

	case binspec.KindUntil:
		e.encodeUntil(spec, data)

	case binspec.KindSwitch:
		e.encodeSwitch(spec, data)
	}
}

func (e *Encoder) encodeVariable(spec binspec.Spec, data binspec.Data) {
	e.requireKind(data, binspec.DataInteger, "Variable")

	location := len(e.out)
	e.out = append(e.out, make([]byte, spec.Int.Width)...)

	if data.Integer == binspec.AUTO {
		e.pending[spec.Name] = pendingVar{location: location, is: spec.Int, offset: spec.Offset}
		return
	}

	adjusted := data.Integer - uint64(spec.Offset)
	spec.Int.Encode(e.out[location:location+spec.Int.Width], adjusted)
	e.env[spec.Name] = data.Integer
}

func (e *Encoder) encodeBytes(spec binspec.Spec, data binspec.Data) {
	e.requireKind(data, binspec.DataBytes, "Bytes")
	content := data.Bytes.Bytes()
	if spec.HasName {
		e.resolve(spec.Name, uint64(len(content)))
	}
	e.out = append(e.out, content...)
}

func (e *Encoder) encodeSeq(spec binspec.Spec, data binspec.Data) {
	e.requireKind(data, binspec.DataSeq, "Seq")
	if len(data.Items) != len(spec.Children) {
		panic(wireio.NewError(wireio.ErrShapeMismatch, fmt.Sprintf("Seq has %d children, Data has %d items", len(spec.Children), len(data.Items)), 2))
	}
	for i, c := range spec.Children {
		e.encode(c, data.Items[i])
	}
}

func (e *Encoder) encodeRepeat(spec binspec.Spec, data binspec.Data) {
	e.requireKind(data, binspec.DataSeq, "Repeat")
	e.resolve(spec.Name, uint64(len(data.Items)))
	for _, item := range data.Items {
		e.encode(*spec.Inner, item)
	}
}

// encodeUntil differs from Bytes/Repeat: a fixed (non-AUTO) declared
// budget doesn't have to match the items' actual encoded size exactly —
// the sub-buffer is padded with zero bytes or truncated to fit, mirroring
// Until's parse-side tolerance for budgets that don't divide evenly by
// its inner spec's size.
func (e *Encoder) encodeUntil(spec binspec.Spec, data binspec.Data) {
	e.requireKind(data, binspec.DataSeq, "Until")
	before := len(e.out)
	for _, item := range data.Items {
		e.encode(*spec.Inner, item)
	}
	if !spec.HasName {
		return
	}

	if pv, ok := e.pending[spec.Name]; ok {
		actual := uint64(len(e.out) - before)
		adjusted := actual - uint64(pv.offset)
		pv.is.Encode(e.out[pv.location:pv.location+pv.is.Width], adjusted)
		delete(e.pending, spec.Name)
		e.env[spec.Name] = actual
		return
	}

	declared, ok := e.env[spec.Name]
	if !ok {
		panic(wireio.NewError(wireio.ErrUndeclaredVariable, spec.Name, 2))
	}
	actual := uint64(len(e.out) - before)
	switch {
	case actual < declared:
		e.out = append(e.out, make([]byte, declared-actual)...)
	case actual > declared:
		e.out = e.out[:before+int(declared)]
	}
}

func (e *Encoder) encodeSwitch(spec binspec.Spec, data binspec.Data) {
	v, ok := e.env[spec.Name]
	if !ok {
		panic(wireio.NewError(wireio.ErrUndeclaredVariable, spec.Name, 2))
	}
	chosen, ok := spec.Cases[v]
	if !ok {
		chosen = *spec.Default
	}
	if chosen.Kind == binspec.KindStop {
		return
	}
	e.encode(chosen, data)
}

// resolve applies a named variable's now-known application-level value:
// patching a pending AUTO slot if one is waiting, or checking the value
// against one a Variable node already wrote.
func (e *Encoder) resolve(name string, appValue uint64) {
	if pv, ok := e.pending[name]; ok {
		adjusted := appValue - uint64(pv.offset)
		pv.is.Encode(e.out[pv.location:pv.location+pv.is.Width], adjusted)
		delete(e.pending, name)
		e.env[name] = appValue
		return
	}

	existing, ok := e.env[name]
	if !ok {
		panic(wireio.NewError(wireio.ErrUndeclaredVariable, name, 2))
	}
	if existing != appValue {
		panic(wireio.NewError(wireio.ErrBadLength, fmt.Sprintf("variable %q: declared value %d does not match actual %d", name, existing, appValue), 2))
	}
}

func (e *Encoder) requireKind(data binspec.Data, want binspec.DataKind, what string) {
	if data.Kind != want {
		panic(wireio.NewError(wireio.ErrShapeMismatch, fmt.Sprintf("%s expects Data kind %s, got %s", what, want, data.Kind), 2))
	}
}
