// Command mmlc is the single-shot MinnieML compiler: it reads one source
// file, runs it through internal/compiler, and either writes the emitted
// LLVM IR next to the source (or into output_dir when the config sets
// one) or prints every diagnostic and exits non-zero.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/minnieml/mmlc/internal/compiler"
	"github.com/minnieml/mmlc/internal/config"
	"github.com/minnieml/mmlc/internal/errs"
)

var (
	red    = color.New(color.FgRed, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: mmlc <file.mml> [config.yaml]")
		os.Exit(1)
	}

	srcPath := os.Args[1]
	src, err := os.ReadFile(srcPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}

	cfg := config.Default()
	if len(os.Args) >= 3 {
		loaded, err := config.Load(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
			os.Exit(1)
		}
		cfg = loaded
	}

	moduleName := deriveModuleName(srcPath)
	cs := compiler.Compile(src, moduleName, cfg)

	visible := errs.FilterUserVisible(cs.Errors)
	for _, r := range visible {
		printReport(srcPath, r)
	}
	if len(visible) > 0 {
		fmt.Fprintf(os.Stderr, "%s: %d error(s)\n", red("failed"), len(visible))
		os.Exit(1)
	}

	outPath := strings.TrimSuffix(srcPath, filepath.Ext(srcPath)) + ".ll"
	if cfg.OutputDir != "" {
		outPath = filepath.Join(cfg.OutputDir, filepath.Base(outPath))
	}
	if err := os.WriteFile(outPath, []byte(cs.IR), 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("error"), err)
		os.Exit(1)
	}
	fmt.Printf("%s %s\n", cyan("wrote"), bold(outPath))
}

func printReport(srcPath string, r *errs.Report) {
	loc := srcPath
	if r.Span != nil {
		loc = fmt.Sprintf("%s:%s", srcPath, r.Span.Start)
	}
	fmt.Fprintf(os.Stderr, "%s %s [%s] %s: %s\n", loc, red("error"), yellow(r.Code), r.Phase, r.Message)
}

// deriveModuleName turns a source path into the PascalCase identifier
// used to mangle emitted symbols: the file's base name (extension
// stripped) with words separated by '-', '_' or ' ' capitalized and
// joined.
func deriveModuleName(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	words := strings.FieldsFunc(base, func(r rune) bool {
		return r == '-' || r == '_' || r == ' '
	})
	var b strings.Builder
	for _, w := range words {
		if w == "" {
			continue
		}
		b.WriteString(strings.ToUpper(w[:1]))
		b.WriteString(w[1:])
	}
	if b.Len() == 0 {
		return "Main"
	}
	return b.String()
}
