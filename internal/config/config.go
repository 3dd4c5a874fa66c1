// Package config loads the compiler driver's settings from a YAML file,
// using goccy/go-yaml for a faster, more strictly-typed YAML decoder
// than gopkg.in/yaml.v3.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the `tswasmc` CLI's on-disk configuration: where generated
// modules go, whether `build` prints the IR dump to stderr, and whether
// it reports the output size on stderr instead of a one-line summary.
type Config struct {
	OutDir             string `yaml:"outDir"`
	EmitIRDump         bool   `yaml:"emitIRDump"`
	VerboseDiagnostics bool   `yaml:"verboseDiagnostics"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{OutDir: "."}
}

// Load reads and parses a YAML config file at path.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	return cfg, nil
}
