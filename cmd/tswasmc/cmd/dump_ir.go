package cmd

import (
	"fmt"
	"os"

	"github.com/cwbudde/tswasmc/internal/codegen"
	"github.com/cwbudde/tswasmc/internal/irdump"
	"github.com/cwbudde/tswasmc/internal/lowering"
	"github.com/spf13/cobra"
)

var dumpIRCmd = &cobra.Command{
	Use:   "dump-ir [ast.json]",
	Short: "Print the generated instruction IR without serializing it",
	Long: `dump-ir runs lowering and code generation over an analyzed AST and
pretty-prints the resulting ir.Module tree, for inspecting what the code
generator produced before it reaches the binary serializer.`,
	Args: cobra.ExactArgs(1),
	RunE: runDumpIR,
}

func init() {
	rootCmd.AddCommand(dumpIRCmd)
}

func runDumpIR(_ *cobra.Command, args []string) error {
	if err := loadConfig(); err != nil {
		return err
	}

	prog, bindings, err := loadProgram(args[0])
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
	fmt.Fprint(os.Stdout, irdump.Dump(mod))
	return nil
}
