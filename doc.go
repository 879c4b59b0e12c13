// Package binspec describes, parses and encodes length-prefixed and
// tag-dispatched binary wire formats through a compact declarative
// grammar.
//
// A Spec is built either programmatically (this package's constructors)
// or compiled from a terse textual spec-string (package specstring). From
// a Spec, package parser gives an incremental parser that accepts bytes
// as they arrive and decodes as much as possible without copying, and
// package encoder gives a back-patching encoder that serializes a parsed
// Data tree to bytes, filling in length and count fields the Spec
// declares.
//
// The core of the library — Spec, Data, the spec-string compiler, the
// parser and the encoder — is purely synchronous. The only collaborators
// left to callers are the byte source and sink (a TCP connection, a file,
// a test buffer); this package never reads or writes one directly.
package binspec
