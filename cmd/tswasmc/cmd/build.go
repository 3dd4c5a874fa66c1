package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cwbudde/tswasmc/internal/ast"
	"github.com/cwbudde/tswasmc/internal/astio"
	"github.com/cwbudde/tswasmc/internal/codegen"
	"github.com/cwbudde/tswasmc/internal/errors"
	"github.com/cwbudde/tswasmc/internal/irdump"
	"github.com/cwbudde/tswasmc/internal/lowering"
	"github.com/cwbudde/tswasmc/internal/span"
	"github.com/cwbudde/tswasmc/internal/wasmbin"
	"github.com/spf13/cobra"
)

var (
	bindingsFile string
	buildOutput  string
	buildVerbose bool
)

var buildCmd = &cobra.Command{
	Use:   "build [ast.json]",
	Short: "Lower, generate and serialize a type-annotated AST to a .wasm module",
	Long: `build reads a JSON-encoded, already type-annotated Program (the
output of an external tokenizer/parser/semantic analyzer) and runs it
through the three core passes: AST Lowering, Code Generation and Binary
Serialization, writing the resulting module as WebAssembly bytes.

Examples:
  # Build a module from an analyzed AST
  tswasmc build program.ast.json

  # Build with an explicit BindingsTable (required if the program uses classes)
  tswasmc build program.ast.json --bindings program.bindings.json -o out.wasm`,
	Args: cobra.ExactArgs(1),
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVar(&bindingsFile, "bindings", "", "path to the BindingsTable JSON (required if the program declares classes)")
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "output file (default: <input>.wasm)")
	buildCmd.Flags().BoolVarP(&buildVerbose, "verbose", "v", false, "verbose output")
}

func runBuild(_ *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	filename := args[0]
	prog, bindings, err := loadProgram(filename)
	if err != nil {
		return err
	}

	lowered, lowerErrs := lowering.Lower(prog, bindings)
	if len(lowerErrs) > 0 {
		printDiagnostics(lowerErrs)
		return fmt.Errorf("lowering failed with %d error(s)", len(lowerErrs))
	}

	mod, genErrs := codegen.Generate(lowered, nil)
	if len(genErrs) > 0 {
		printDiagnostics(genErrs)
		return fmt.Errorf("code generation failed with %d error(s)", len(genErrs))
	}

	if buildVerbose || cfg.EmitIRDump {
		fmt.Fprint(os.Stderr, irdump.Dump(mod))
	}

	data, err := wasmbin.Encode(mod)
	if err != nil {
		return fmt.Errorf("serialization failed: %w", err)
	}

	outFile := resolveOutput(filename, buildOutput, cfg.OutDir, ".wasm")
	if err := os.MkdirAll(filepath.Dir(outFile), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(outFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", outFile, err)
	}

	if buildVerbose || cfg.VerboseDiagnostics {
		fmt.Fprintf(os.Stderr, "%s -> %s (%d bytes)\n", filename, outFile, len(data))
	} else {
		fmt.Printf("Compiled %s -> %s\n", filename, outFile)
	}
	return nil
}

// loadProgram reads the AST JSON at path and, if --bindings was given (or
// a sibling "<input>.bindings.json" exists), the BindingsTable it needs
// to lower any classes the program declares.
func loadProgram(path string) (*ast.Program, *ast.BindingsTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	file := &span.File{Name: path}
	prog, err := astio.ParseProgram(file, data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse AST JSON: %w", err)
	}

	bindingsPath := bindingsFile
	if bindingsPath == "" {
		candidate := strings.TrimSuffix(path, filepath.Ext(path)) + ".bindings.json"
		if _, err := os.Stat(candidate); err == nil {
			bindingsPath = candidate
		}
	}

	bindings := ast.NewBindingsTable()
	if bindingsPath != "" {
		bdata, err := os.ReadFile(bindingsPath)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read bindings %s: %w", bindingsPath, err)
		}
		bindings, err = astio.ParseBindingsTable(bdata)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse bindings JSON: %w", err)
		}
	}
	return prog, bindings, nil
}

// resolveOutput picks the output path: an explicit --output wins outright;
// otherwise the input's basename with ext, placed under outDir if the
// config set one.
func resolveOutput(input, explicit, outDir, ext string) string {
	if explicit != "" {
		return explicit
	}
	base := filepath.Base(strings.TrimSuffix(input, filepath.Ext(input))) + ext
	if outDir == "" || outDir == "." {
		return filepath.Join(filepath.Dir(input), base)
	}
	return filepath.Join(outDir, base)
}

func printDiagnostics(errs []*errors.CompilerError) {
	fmt.Fprint(os.Stderr, errors.FormatErrors(errs))
	fmt.Fprintln(os.Stderr)
}
