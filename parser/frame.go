package parser

import "github.com/stewi1014/binspec"

type frameKind uint8

const (
	framePrepared frameKind = iota
	framePartialSeq
	framePartialRepeat
	frameDone
)

// frame is one entry of the Parser's execution stack. Only the fields
// relevant to kind are meaningful.
type frame struct {
	kind frameKind

	// framePrepared
	spec binspec.Spec

	// framePartialSeq, framePartialRepeat: results accumulated so far.
	done []binspec.Data

	// framePartialSeq
	remaining []binspec.Spec

	// framePartialRepeat
	count uint64
	inner binspec.Spec

	// frameDone
	data binspec.Data
}
