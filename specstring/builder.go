package specstring

import (
	"fmt"
	"strconv"

	"github.com/stewi1014/binspec"
	"github.com/stewi1014/binspec/intcodec"
)

type frameKind uint8

const (
	frameTop frameKind = iota
	frameUntil
	frameSwitch
)

// frame accumulates the Spec list for whatever context is currently open:
// the top level, an Until(...) body, or one Switch case body. Switch
// frames additionally track the case-label state machine between '{' and
// '}'.
type frame struct {
	kind  frameKind
	specs []binspec.Spec

	// frameUntil
	untilHasName bool
	untilName    string

	// frameSwitch
	switchName   string
	cases        map[uint64]binspec.Spec
	def          *binspec.Spec
	awaitingKey  bool
	haveCurKey   bool
	curKey       uint64
	curIsDefault bool
}

// builder consumes a token stream and produces a Spec tree, tracking the
// auto-name FIFO described by the grammar's consumption discipline.
type builder struct {
	namePrefix  string
	autoCounter int
	fifo        []string
	declared    map[string]bool
	stack       []frame
}

func build(tokens []token, namePrefix string) (binspec.Spec, error) {
	b := &builder{
		namePrefix: namePrefix,
		declared:   map[string]bool{},
		stack:      []frame{{kind: frameTop}},
	}

	endian := intcodec.LittleEndian
	var pendingNumber *uint64
	var pendingSign int64
	var pendingStar bool
	var pendingDollar *uint64
	var pendingVariable bool

	top := func() *frame { return &b.stack[len(b.stack)-1] }
	emit := func(s binspec.Spec) { top().specs = append(top().specs, s) }

	takeNumber := func() (uint64, bool) {
		if pendingNumber == nil {
			return 0, false
		}
		n := *pendingNumber
		pendingNumber = nil
		return n, true
	}

	for _, tk := range tokens {
		// A Switch frame awaiting its next case label intercepts Number,
		// Star and Equals before the generic handling below, since those
		// tokens mean something different in label position than they do
		// inside a spec body.
		if t := top(); t.kind == frameSwitch && t.awaitingKey {
			switch tk.kind {
			case tokNumber:
				t.curKey = tk.num
				t.curIsDefault = false
				t.haveCurKey = true
				continue
			case tokStar:
				t.curIsDefault = true
				t.haveCurKey = true
				continue
			case tokEquals:
				if !t.haveCurKey {
					return binspec.Spec{}, fmt.Errorf("specstring: '=' without a preceding case label")
				}
				t.awaitingKey = false
				continue
			default:
				return binspec.Spec{}, fmt.Errorf("specstring: expected a case label or '=', got token %d", tk.kind)
			}
		}

		switch tk.kind {
		case tokEndian:
			endian = tk.endian

		case tokNumber:
			n := tk.num
			pendingNumber = &n

		case tokPlus:
			pendingSign = 1
		case tokMinus:
			pendingSign = -1
		case tokStar:
			pendingStar = true

		case tokDollar:
			n, ok := takeNumber()
			if !ok {
				return binspec.Spec{}, fmt.Errorf("specstring: '$' requires a preceding index number")
			}
			idx := n
			pendingDollar = &idx

		case tokVariable:
			pendingVariable = true

		case tokWidth:
			is := intcodec.New(tk.width, endian)
			if !pendingVariable {
				repeat := uint64(1)
				if n, ok := takeNumber(); ok {
					repeat = n
				}
				pendingSign = 0
				for i := uint64(0); i < repeat; i++ {
					emit(binspec.Integer(is))
				}
				continue
			}
			offset := int64(0)
			if n, ok := takeNumber(); ok {
				offset = int64(n) * signOrOne(pendingSign)
			}
			pendingSign = 0
			pendingVariable = false
			name := b.nextAutoName()
			emit(binspec.Variable(is, name, offset))

		case tokSkip:
			n, ok := takeNumber()
			if !ok {
				return binspec.Spec{}, fmt.Errorf("specstring: Skip ('x') requires a preceding count")
			}
			emit(binspec.Skip(int(n)))

		case tokBytes:
			name, hasName, err := b.consumeRef(pendingStar, pendingDollar)
			pendingStar, pendingDollar = false, nil
			if err != nil {
				return binspec.Spec{}, err
			}
			if hasName {
				emit(binspec.BytesNamed(name))
			} else {
				emit(binspec.BytesUnbounded())
			}

		case tokUntilStart:
			name, hasName, err := b.consumeRef(pendingStar, pendingDollar)
			pendingStar, pendingDollar = false, nil
			if err != nil {
				return binspec.Spec{}, err
			}
			b.stack = append(b.stack, frame{kind: frameUntil, untilHasName: hasName, untilName: name})

		case tokUntilEnd:
			t := top()
			if t.kind != frameUntil {
				return binspec.Spec{}, fmt.Errorf("specstring: unmatched ')'")
			}
			inner := binspec.Combine(t.specs)
			b.stack = b.stack[:len(b.stack)-1]
			if t.untilHasName {
				emit(binspec.UntilNamed(t.untilName, inner))
			} else {
				emit(binspec.UntilUnbounded(inner))
			}

		case tokSwitchStart:
			name, hasName, err := b.consumeRef(pendingStar, pendingDollar)
			pendingStar, pendingDollar = false, nil
			if err != nil {
				return binspec.Spec{}, err
			}
			if !hasName {
				return binspec.Spec{}, fmt.Errorf("specstring: Switch requires a selector variable, got unbounded '*'")
			}
			b.stack = append(b.stack, frame{
				kind:        frameSwitch,
				switchName:  name,
				cases:       map[uint64]binspec.Spec{},
				awaitingKey: true,
			})

		case tokComma:
			t := top()
			if t.kind != frameSwitch || t.awaitingKey {
				return binspec.Spec{}, fmt.Errorf("specstring: unexpected ','")
			}
			b.closeSwitchCase(t)
			t.awaitingKey = true

		case tokSwitchEnd:
			t := top()
			if t.kind != frameSwitch || t.awaitingKey {
				return binspec.Spec{}, fmt.Errorf("specstring: unmatched '}'")
			}
			b.closeSwitchCase(t)
			b.stack = b.stack[:len(b.stack)-1]
			def := t.def
			if def == nil {
				stop := binspec.Stop
				def = &stop
			}
			emit(binspec.Switch(t.switchName, t.cases, *def))

		case tokEquals:
			return binspec.Spec{}, fmt.Errorf("specstring: '=' outside of a Switch case label")
		}
	}

	if len(b.stack) != 1 {
		return binspec.Spec{}, fmt.Errorf("specstring: unclosed '(' or '{'")
	}
	if pendingVariable {
		return binspec.Spec{}, fmt.Errorf("specstring: trailing '%%' with no integer width")
	}
	if pendingNumber != nil {
		return binspec.Spec{}, fmt.Errorf("specstring: trailing number with nothing to apply it to")
	}
	if pendingDollar != nil {
		return binspec.Spec{}, fmt.Errorf("specstring: trailing '$' reference with nothing to apply it to")
	}
	if pendingStar {
		return binspec.Spec{}, fmt.Errorf("specstring: trailing '*' with nothing to apply it to")
	}

	return binspec.Combine(b.stack[0].specs), nil
}

func (b *builder) closeSwitchCase(t *frame) {
	inner := binspec.Combine(t.specs)
	t.specs = nil
	if t.curIsDefault {
		t.def = &inner
	} else {
		t.cases[t.curKey] = inner
	}
	t.haveCurKey = false
	t.curIsDefault = false
}

// nextAutoName generates the next monotone auto-name and appends it to the
// FIFO of unconsumed names.
func (b *builder) nextAutoName() string {
	name := b.namePrefix + strconv.Itoa(b.autoCounter)
	b.autoCounter++
	b.declared[name] = true
	b.fifo = append(b.fifo, name)
	return name
}

// consumeRef resolves the name a Bytes/Until/Switch token refers to: '*'
// means unbounded (no name), a pending '$'-prefixed index overrides the
// FIFO and references an already-declared name without disturbing the
// FIFO pointer, and otherwise the next unconsumed name is popped from the
// front of the FIFO.
func (b *builder) consumeRef(star bool, dollar *uint64) (name string, hasName bool, err error) {
	switch {
	case star && dollar != nil:
		return "", false, fmt.Errorf("specstring: cannot combine '*' and a '$' index reference")
	case star:
		return "", false, nil
	case dollar != nil:
		name = b.namePrefix + strconv.FormatUint(*dollar, 10)
		if !b.declared[name] {
			return "", false, fmt.Errorf("specstring: '%d$' references an undeclared variable", *dollar)
		}
		return name, true, nil
	default:
		if len(b.fifo) == 0 {
			return "", false, fmt.Errorf("specstring: no pending variable to reference")
		}
		name = b.fifo[0]
		b.fifo = b.fifo[1:]
		return name, true, nil
	}
}

func signOrOne(sign int64) int64 {
	if sign == 0 {
		return 1
	}
	return sign
}
