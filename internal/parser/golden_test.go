package parser_test

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/minnieml/mmlc/internal/ast"
)

// update controls whether golden files are (re)written instead of compared.
// Usage: go test -update ./internal/parser
var update = flag.Bool("update", false, "update golden files")

// goldenCompare compares got against testdata/golden/<name>.golden.
func goldenCompare(t *testing.T, name string, got string) {
	t.Helper()

	path := filepath.Join("testdata", "golden", name+".golden")

	if *update {
		if err := os.WriteFile(path, []byte(got), 0644); err != nil {
			t.Fatalf("failed to write golden file %s: %v", path, err)
		}
		return
	}

	want, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read golden file %s: %v\nrun with -update to create it", path, err)
	}

	if diff := cmp.Diff(string(want), got); diff != "" {
		t.Errorf("golden mismatch for %s (-want +got):\n%s", name, diff)
	}
}

func TestGoldenLetBinding(t *testing.T) {
	mod := parseModule(t, `let x : Int = 42;`)
	goldenCompare(t, "let_binding", ast.Print(mod))
}

func TestGoldenConditional(t *testing.T) {
	mod := parseModule(t, `fn main() : Int = if true then 1 else 2;`)
	goldenCompare(t, "conditional", ast.Print(mod))
}
