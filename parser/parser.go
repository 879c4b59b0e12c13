// Package parser implements the incremental Parser: a stack machine that
// consumes a Spec and a stream of supplied byte chunks and produces a Data
// tree, suspending with Incomplete whenever the next step needs bytes that
// haven't arrived yet.
//
// Built in the same spirit as an istream-style incremental reader (read
// what's available, report how much more is needed, resume without
// re-parsing from scratch) but as an explicit frame stack rather than
// goroutine-blocking reads, since Parser must be safe to drive from a
// single-threaded event loop with no blocking I/O at all.
package parser

import (
	"fmt"

	"github.com/stewi1014/binspec"
	"github.com/stewi1014/binspec/queue"
	"github.com/stewi1014/binspec/wireio"
)

// Incomplete is returned by Next when the Spec's next step needs more
// bytes than are currently queued. Need is the minimum number of
// additional bytes that would let the step succeed; more may still be
// required after that, since Need only covers the single pending step.
type Incomplete struct {
	Need int
}

func (e Incomplete) Error() string {
	return fmt.Sprintf("parser: incomplete, need %d more byte(s)", e.Need)
}

// Parser drives one Spec against incrementally supplied bytes. It is not
// safe for concurrent use: callers supplying bytes from multiple sources
// must serialize their calls.
type Parser struct {
	initial binspec.Spec
	config  binspec.Config

	q     *queue.Queue
	env   map[string]uint64
	stack []frame
}

// New returns a Parser for spec, configured by config.Normalize().
func New(spec binspec.Spec, config binspec.Config) *Parser {
	p := &Parser{
		initial: spec,
		config:  config.Normalize(),
		q:       queue.New(),
	}
	p.Reset()
	return p
}

// Supply appends chunk to the Parser's pending input. chunk is referenced,
// not copied, and must not be modified afterwards.
func (p *Parser) Supply(chunk []byte) {
	p.q.Append(chunk)
}

// Reset re-initializes the Parser's stack and variable environment to
// start parsing a fresh value of the same Spec, without discarding any
// bytes already supplied but not yet consumed.
func (p *Parser) Reset() {
	p.stack = []frame{{kind: framePrepared, spec: p.initial}}
	p.env = make(map[string]uint64, len(p.config.Vars))
	for k, v := range p.config.Vars {
		p.env[k] = v
	}
}

// Remaining returns a view over every byte supplied but not yet consumed.
func (p *Parser) Remaining() queue.View {
	return p.q.Remaining()
}

// Next drives the stack machine until it produces a Data value or
// suspends. Once a value is produced (whether ordinary completion or a
// Stop), subsequent calls to Next return the same cached value without
// doing further work until Reset is called.
func (p *Parser) Next() (binspec.Data, error) {
	for {
		if top := p.stack[len(p.stack)-1]; top.kind == frameDone {
			return top.data, nil
		}
		if incomplete, need := p.step(); incomplete {
			return binspec.Data{}, Incomplete{Need: need}
		}
	}
}

// ParseAll repeatedly calls Next and Reset, collecting successfully parsed
// values, until a call suspends with Incomplete, a Stop surfaces (not
// itself appended to the result), or a complete iteration consumes no
// bytes at all (a degenerate Spec that can match the empty string; without
// this check such a Spec would loop forever).
func (p *Parser) ParseAll() []binspec.Data {
	var out []binspec.Data
	for {
		before := p.q.Len()
		data, err := p.Next()
		if err != nil {
			break
		}
		if data.Kind == binspec.DataStopKind {
			break
		}
		out = append(out, data)
		p.Reset()
		if p.q.Len() == before {
			break
		}
	}
	return out
}

// step performs one atomic stack transition. incomplete is true if the
// popped frame needed more bytes than are queued, in which case it has
// been pushed back unchanged and need is how many more bytes are required.
func (p *Parser) step() (incomplete bool, need int) {
	n := len(p.stack)
	top := p.stack[n-1]
	p.stack = p.stack[:n-1]

	switch top.kind {
	case framePrepared:
		return p.stepPrepared(top.spec)

	case framePartialSeq:
		if len(top.remaining) > 0 {
			next := top.remaining[0]
			p.stack = append(p.stack, frame{kind: framePartialSeq, done: top.done, remaining: top.remaining[1:]})
			p.stack = append(p.stack, frame{kind: framePrepared, spec: next})
			return false, 0
		}
		p.pushResult(binspec.FromSeq(top.done...))
		return false, 0

	case framePartialRepeat:
		if top.count > 0 {
			p.stack = append(p.stack, frame{kind: framePartialRepeat, done: top.done, count: top.count - 1, inner: top.inner})
			p.stack = append(p.stack, frame{kind: framePrepared, spec: top.inner})
			return false, 0
		}
		p.pushResult(binspec.FromSeq(top.done...))
		return false, 0
	}
	panic("binspec/parser: unreachable frame kind")
}

// stepPrepared dispatches a single Spec node.
func (p *Parser) stepPrepared(spec binspec.Spec) (incomplete bool, need int) {
	switch spec.Kind {
	case binspec.KindSkip:
		_, deficit, ok := p.q.SplitPrefix(spec.SkipWidth)
		if !ok {
			p.stack = append(p.stack, frame{kind: framePrepared, spec: spec})
			return true, deficit
		}
		p.pushResult(binspec.Empty)
		return false, 0

	case binspec.KindStop:
		p.collapseToStop(binspec.StopData(spec, 0))
		return false, 0

	case binspec.KindInteger:
		return p.stepInteger(spec)

	case binspec.KindVariable:
		return p.stepVariable(spec)

	case binspec.KindBytes:
		return p.stepBytes(spec)

	case binspec.KindSeq:
		if len(spec.Children) == 0 {
			p.pushResult(binspec.FromSeq())
			return false, 0
		}
		p.stack = append(p.stack, frame{kind: framePartialSeq, remaining: spec.Children[1:]})
		p.stack = append(p.stack, frame{kind: framePrepared, spec: spec.Children[0]})
		return false, 0

	case binspec.KindRepeat:
		count := p.lookup(spec.Name)
		p.checkBudget(count, "Repeat count")
		if count == 0 {
			p.pushResult(binspec.FromSeq())
			return false, 0
		}
		p.stack = append(p.stack, frame{kind: framePartialRepeat, count: count - 1, inner: *spec.Inner})
		p.stack = append(p.stack, frame{kind: framePrepared, spec: *spec.Inner})
		return false, 0

	case binspec.KindUntil:
		return p.stepUntil(spec)

	case binspec.KindSwitch:
		return p.stepSwitch(spec)
	}
	panic("binspec/parser: unreachable spec kind")
}

func (p *Parser) stepInteger(spec binspec.Spec) (bool, int) {
	view, deficit, ok := p.q.SplitPrefix(spec.Int.Width)
	if !ok {
		p.stack = append(p.stack, frame{kind: framePrepared, spec: spec})
		return true, deficit
	}
	var scratch [8]byte
	v := spec.Int.Decode(view.Linearize(scratch[:spec.Int.Width]))
	p.pushResult(binspec.FromUint(v))
	return false, 0
}

func (p *Parser) stepVariable(spec binspec.Spec) (bool, int) {
	view, deficit, ok := p.q.SplitPrefix(spec.Int.Width)
	if !ok {
		p.stack = append(p.stack, frame{kind: framePrepared, spec: spec})
		return true, deficit
	}
	var scratch [8]byte
	raw := spec.Int.Decode(view.Linearize(scratch[:spec.Int.Width]))
	value := raw + uint64(spec.Offset)
	p.env[spec.Name] = value
	p.pushResult(binspec.FromUint(value))
	return false, 0
}

func (p *Parser) stepBytes(spec binspec.Spec) (bool, int) {
	var n int
	if spec.HasName {
		v := p.lookup(spec.Name)
		p.checkBudget(v, "Bytes length")
		n = int(v)
	} else {
		n = p.q.Len()
	}
	view, deficit, ok := p.q.SplitPrefix(n)
	if !ok {
		p.stack = append(p.stack, frame{kind: framePrepared, spec: spec})
		return true, deficit
	}
	p.pushResult(binspec.Data{Kind: binspec.DataBytes, Bytes: view})
	return false, 0
}

func (p *Parser) stepUntil(spec binspec.Spec) (bool, int) {
	var budget int
	if spec.HasName {
		v := p.lookup(spec.Name)
		p.checkBudget(v, "Until budget")
		budget = int(v)
	} else {
		budget = p.q.Len()
	}
	view, deficit, ok := p.q.SplitPrefix(budget)
	if !ok {
		p.stack = append(p.stack, frame{kind: framePrepared, spec: spec})
		return true, deficit
	}

	sub := New(*spec.Inner, binspec.Config{MaxBudget: p.config.MaxBudget, Vars: p.env})
	view.ForEachSegment(sub.Supply)
	results := sub.ParseAll()
	if left := sub.q.Len(); left > 0 {
		fmt.Fprintf(wireio.Warnings, "binspec/parser: Until consumed %d leftover byte(s) within its budget\n", left)
	}
	p.pushResult(binspec.FromSeq(results...))
	return false, 0
}

func (p *Parser) stepSwitch(spec binspec.Spec) (bool, int) {
	v := p.lookup(spec.Name)
	chosen, ok := spec.Cases[v]
	if !ok {
		chosen = *spec.Default
	}
	if chosen.Kind == binspec.KindStop {
		p.collapseToStop(binspec.StopData(spec, v))
		return false, 0
	}
	p.stack = append(p.stack, frame{kind: framePrepared, spec: chosen})
	return false, 0
}

// pushResult delivers data to whatever is waiting for it: the frame below
// the one that just finished, or, if the stack is now empty, a final Done
// frame reporting the parse's overall result.
func (p *Parser) pushResult(data binspec.Data) {
	if len(p.stack) == 0 {
		p.stack = append(p.stack, frame{kind: frameDone, data: data})
		return
	}
	top := &p.stack[len(p.stack)-1]
	top.done = append(top.done, data)
}

// collapseToStop discards the entire in-progress stack and replaces it
// with a single Done frame holding stop: the enclosing top-level structure
// is irrecoverable once any Stop is reached.
func (p *Parser) collapseToStop(stop binspec.Data) {
	p.stack = []frame{{kind: frameDone, data: stop}}
}

// lookup reads a previously recorded variable, panicking with a
// wireio.Error if spec never declared it.
func (p *Parser) lookup(name string) uint64 {
	v, ok := p.env[name]
	if !ok {
		panic(wireio.NewError(wireio.ErrUndeclaredVariable, name, 1))
	}
	return v
}

// checkBudget panics with a wireio.Error if a variable-sourced size
// exceeds the configured ceiling, before it can drive an allocation or a
// repetition count.
func (p *Parser) checkBudget(n uint64, what string) {
	if n > p.config.MaxBudget {
		panic(wireio.NewError(wireio.ErrBudgetExceeded, fmt.Sprintf("%s %d exceeds MaxBudget %d", what, n, p.config.MaxBudget), 1))
	}
}
