// Command automata loads finite, pushdown and Turing machine descriptions
// and runs inputs against them.
//
// Usage:
//
//	automata run [flags] <machine> [input...]
//	automata step [flags] <machine>
//	automata graph [flags] <machine>
//	automata check [flags] <machine>
//
// <machine> is a file path or an http(s) URL. run reads inputs one per line
// from stdin when none are given on the command line.
package main

import (
	"context"
	"os"

	"github.com/amp-labs/amp-automata/script"
)

func main() {
	script.New("automata", script.EnableTelemetry(usesTelemetry(os.Args[1:]))).Run(func(ctx context.Context) error {
		return run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	})
}
