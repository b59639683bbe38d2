// Package config loads the compile-time configuration surface: target
// triple/ABI, compilation mode, and the tail-call-optimization toggle.
// Loading reads the file, yaml.Unmarshal into a plain struct, and applies
// defaults, rather than going through a flag-parsing library, since
// orchestration (CLI, build system, LSP) may supply the YAML from any
// source.
package config

import (
	"fmt"
	"os"
	"runtime"

	"gopkg.in/yaml.v3"
)

// ABI is the target calling-convention family the code generator lowers
// aggregate parameters and returns against.
type ABI string

const (
	ABIDefault ABI = "Default"
	ABIX86_64  ABI = "X86_64"
	ABIAArch64 ABI = "AArch64"
)

// Mode selects whether the emitter synthesizes a C-ABI `main`.
type Mode string

const (
	ModeBinary  Mode = "Binary"
	ModeLibrary Mode = "Library"
)

// CompilerConfig is the full set of recognized options.
type CompilerConfig struct {
	TargetTriple string `yaml:"target_triple"`
	TargetABI    ABI    `yaml:"target_abi"`
	Mode         Mode   `yaml:"mode"`
	NoTCO        bool   `yaml:"no_tco"`
	OutputDir    string `yaml:"output_dir"`
	VerboseTimings bool `yaml:"verbose_timings"`
}

// Default returns the zero-configuration baseline: host triple, ABI
// derived from it, Binary mode, TCO enabled.
func Default() *CompilerConfig {
	c := &CompilerConfig{Mode: ModeBinary, TargetTriple: hostTriple()}
	c.TargetABI = FromTriple(c.TargetTriple)
	return c
}

// Load reads a YAML config file at path and fills in any field left
// unset with its default.
func Load(path string) (*CompilerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	c := &CompilerConfig{}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	c.applyDefaults()
	return c, nil
}

func (c *CompilerConfig) applyDefaults() {
	if c.TargetTriple == "" {
		c.TargetTriple = hostTriple()
	}
	if c.TargetABI == "" {
		c.TargetABI = FromTriple(c.TargetTriple)
	}
	if c.Mode == "" {
		c.Mode = ModeBinary
	}
}

// FromTriple derives an ABI family from an LLVM target triple's
// architecture component when target_abi is not set explicitly.
func FromTriple(triple string) ABI {
	switch {
	case len(triple) >= 7 && triple[:7] == "aarch64":
		return ABIAArch64
	case len(triple) >= 7 && triple[:7] == "x86_64-":
		return ABIX86_64
	default:
		return abiFromGOARCH()
	}
}

func abiFromGOARCH() ABI {
	switch runtime.GOARCH {
	case "arm64":
		return ABIAArch64
	case "amd64":
		return ABIX86_64
	default:
		return ABIDefault
	}
}

func hostTriple() string {
	switch runtime.GOARCH {
	case "arm64":
		return "aarch64-unknown-linux-gnu"
	case "amd64":
		return "x86_64-unknown-linux-gnu"
	default:
		return "unknown-unknown-unknown"
	}
}
