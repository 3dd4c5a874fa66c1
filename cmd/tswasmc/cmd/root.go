package cmd

import (
	"fmt"

	"github.com/cwbudde/tswasmc/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Version information (set by build flags)
	Version   = "0.1.0-dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var (
	configPath string
	cfg        = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "tswasmc",
	Short: "TypeScript-like-to-WebAssembly compiler core",
	Long: `tswasmc lowers a type-annotated AST (produced by an external
tokenizer, parser and semantic analyzer) into a WebAssembly binary
module.

It only drives the core: AST Lowering, Code Generation, and Binary
Serialization. The input is already-analyzed JSON — a Program plus a
BindingsTable — not source text.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(`{{with .Name}}{{printf "%%s " .}}{{end}}{{printf "version %%s" .Version}}
Commit: %s
Built:  %s
`, GitCommit, BuildDate))

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
}

// loadConfig reads --config if given, falling back to config.Default().
func loadConfig() error {
	if configPath == "" {
		return nil
	}
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	return nil
}
