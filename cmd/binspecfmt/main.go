// binspecfmt compiles a spec-string, parses hex-encoded bytes against it,
// and prints the resulting Data tree.
//
// Usage:
//
//	binspecfmt -spec '<%Is' AABBCCDD...
//
// Hex input is read from the positional argument if given, or from stdin
// otherwise. Whitespace inside the hex input is ignored.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/stewi1014/binspec"
	"github.com/stewi1014/binspec/parser"
	"github.com/stewi1014/binspec/specstring"
)

func main() {
	log.SetFlags(0)

	var (
		spec       string
		namePrefix string
		maxBudget  uint64
	)
	flag.StringVar(&spec, "spec", "", "spec-string to compile (required)")
	flag.StringVar(&namePrefix, "prefix", "", "variable name prefix for auto-generated names")
	flag.Uint64Var(&maxBudget, "max-budget", 0, "ceiling on variable-sourced lengths/counts (0 = default)")
	flag.Parse()

	if spec == "" {
		fmt.Fprintln(os.Stderr, "binspecfmt: -spec is required")
		flag.Usage()
		os.Exit(2)
	}

	raw, err := readHexInput(flag.Args())
	if err != nil {
		log.Fatalf("binspecfmt: %v", err)
	}

	s := specstring.Compile(spec, binspec.Config{NamePrefix: namePrefix})

	p := parser.New(s, binspec.Config{MaxBudget: maxBudget})
	p.Supply(raw)

	data, err := p.Next()
	if err != nil {
		log.Fatalf("binspecfmt: %v", err)
	}

	fmt.Println(data.String())
	if left := p.Remaining().Len(); left > 0 {
		fmt.Fprintf(os.Stderr, "binspecfmt: %d byte(s) left unparsed\n", left)
	}
}

func readHexInput(args []string) ([]byte, error) {
	var text string
	if len(args) > 0 {
		text = strings.Join(args, "")
	} else {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		text = string(data)
	}

	text = strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, text)

	raw, err := hex.DecodeString(text)
	if err != nil {
		return nil, fmt.Errorf("decoding hex: %w", err)
	}
	return raw, nil
}
