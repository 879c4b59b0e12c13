// Package specstring compiles the terse textual spec-string format into a
// binspec.Spec tree. It is a two-stage reader: tokenize scans the string
// into discrete tokens via the number-scanning state machine described by
// the grammar, and build consumes that token stream with a small stack of
// in-progress Until/Switch frames.
package specstring

import (
	"fmt"
	"unicode"

	"github.com/stewi1014/binspec/intcodec"
)

type tokenKind uint8

const (
	tokNumber tokenKind = iota
	tokWidth
	tokSkip
	tokBytes
	tokVariable
	tokUntilStart
	tokUntilEnd
	tokSwitchStart
	tokSwitchEnd
	tokEquals
	tokStar
	tokComma
	tokPlus
	tokMinus
	tokDollar
	tokEndian
)

type token struct {
	kind   tokenKind
	num    uint64
	width  int
	endian intcodec.Endian
}

// numState is the number-scanning state machine from the grammar: a
// leading zero only continues into a hex literal on an immediately
// following 'x'; any other follow character terminates the number at
// Number(0) and is reprocessed as the start of the next token. This is a
// deliberate quirk, not an omission: "05" tokenizes as Number(0),
// Number(5), not Number(5).
type numState uint8

const (
	numNone numState = iota
	numZero
	numZeroX
	numDecimal
	numHex
)

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

func isHexDigit(lower rune) bool {
	return isDigit(lower) || (lower >= 'a' && lower <= 'f')
}

func hexValue(lower rune) uint64 {
	if isDigit(lower) {
		return uint64(lower - '0')
	}
	return uint64(lower-'a') + 10
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func tokenize(s string) ([]token, error) {
	var toks []token
	state := numNone
	var acc uint64

	emitNumber := func() {
		switch state {
		case numZero:
			toks = append(toks, token{kind: tokNumber, num: 0})
		case numDecimal, numHex:
			toks = append(toks, token{kind: tokNumber, num: acc})
		case numZeroX:
			// Bare "0x" with no hex digits: Number(0) followed by Skip.
			toks = append(toks, token{kind: tokNumber, num: 0})
			toks = append(toks, token{kind: tokSkip})
		}
		state = numNone
		acc = 0
	}

	runes := []rune(s)
	for i := 0; i < len(runes); {
		r := runes[i]
		if isSpace(r) {
			emitNumber()
			i++
			continue
		}
		lower := unicode.ToLower(r)

		consumed, reprocess := advanceNumber(&state, &acc, r, lower)
		if consumed {
			i++
			continue
		}
		if reprocess {
			emitNumber()
			continue // re-examine r in state numNone, without advancing i
		}

		switch lower {
		case '<':
			toks = append(toks, token{kind: tokEndian, endian: intcodec.LittleEndian})
		case '>':
			toks = append(toks, token{kind: tokEndian, endian: intcodec.BigEndian})
		case 'b':
			toks = append(toks, token{kind: tokWidth, width: 1})
		case 'h':
			toks = append(toks, token{kind: tokWidth, width: 2})
		case 't':
			toks = append(toks, token{kind: tokWidth, width: 3})
		case 'i':
			toks = append(toks, token{kind: tokWidth, width: 4})
		case 'q':
			toks = append(toks, token{kind: tokWidth, width: 8})
		case 'x':
			toks = append(toks, token{kind: tokSkip})
		case 's':
			toks = append(toks, token{kind: tokBytes})
		case '%':
			toks = append(toks, token{kind: tokVariable})
		case '(':
			toks = append(toks, token{kind: tokUntilStart})
		case ')':
			toks = append(toks, token{kind: tokUntilEnd})
		case '{':
			toks = append(toks, token{kind: tokSwitchStart})
		case '}':
			toks = append(toks, token{kind: tokSwitchEnd})
		case '=':
			toks = append(toks, token{kind: tokEquals})
		case '*':
			toks = append(toks, token{kind: tokStar})
		case ',':
			toks = append(toks, token{kind: tokComma})
		case '+':
			toks = append(toks, token{kind: tokPlus})
		case '-':
			toks = append(toks, token{kind: tokMinus})
		case '$':
			toks = append(toks, token{kind: tokDollar})
		default:
			return nil, fmt.Errorf("specstring: unexpected character %q", r)
		}
		i++
	}
	emitNumber()
	return toks, nil
}

// advanceNumber feeds one rune into the number-scanning state machine.
// consumed reports whether r was absorbed into the in-progress number.
// reprocess reports that the in-progress number just ended and r has not
// yet been consumed; the caller must flush it and re-examine r.
func advanceNumber(state *numState, acc *uint64, r, lower rune) (consumed, reprocess bool) {
	switch *state {
	case numNone:
		if r == '0' {
			*state = numZero
			return true, false
		}
		if isDigit(r) {
			*state = numDecimal
			*acc = uint64(r - '0')
			return true, false
		}
		return false, false

	case numZero:
		if lower == 'x' {
			*state = numZeroX
			return true, false
		}
		return false, true

	case numZeroX:
		if isHexDigit(lower) {
			*state = numHex
			*acc = hexValue(lower)
			return true, false
		}
		return false, true

	case numDecimal:
		if isDigit(r) {
			*acc = *acc*10 + uint64(r-'0')
			return true, false
		}
		return false, true

	case numHex:
		if isHexDigit(lower) {
			*acc = *acc*16 + hexValue(lower)
			return true, false
		}
		return false, true
	}
	return false, false
}
