// Command tswasmc drives the compiler core: it reads a type-annotated
// JSON AST (produced externally by the tokenizer/parser/semantic
// analyzer), runs lowering, code generation and binary serialization
// over it, and writes the resulting .wasm module.
package main

import (
	"fmt"
	"os"

	"github.com/cwbudde/tswasmc/cmd/tswasmc/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
