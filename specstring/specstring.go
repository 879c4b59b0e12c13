package specstring

import (
	"github.com/stewi1014/binspec"
	"github.com/stewi1014/binspec/wireio"
)

// Compile parses a spec-string into a Spec tree. config.NamePrefix, if
// set, is prepended to every auto-generated variable name, letting
// composed specs avoid colliding with each other's auto-names; other
// Config fields are unused here.
//
// Malformed spec-strings are a programmer error (see wireio's error
// taxonomy): Compile panics with a wireio.Error wrapping
// wireio.ErrSyntax rather than returning one.
func Compile(s string, config binspec.Config) binspec.Spec {
	tokens, err := tokenize(s)
	if err != nil {
		panic(wireio.NewError(wireio.ErrSyntax, err.Error(), 1))
	}
	spec, err := build(tokens, config.NamePrefix)
	if err != nil {
		panic(wireio.NewError(wireio.ErrSyntax, err.Error(), 1))
	}
	return spec
}
