package compiler_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minnieml/mmlc/internal/compiler"
	"github.com/minnieml/mmlc/internal/config"
)

func compileOK(t *testing.T, src string) *compiler.CompilerState {
	t.Helper()
	cs := compiler.Compile([]byte(src), "Scenario", config.Default())
	if cs.HasErrors() {
		var msgs []string
		for _, r := range cs.Errors {
			msgs = append(msgs, r.Code+": "+r.Message)
		}
		t.Fatalf("unexpected compile errors:\n%s", strings.Join(msgs, "\n"))
	}
	return cs
}

func TestHelloWorld(t *testing.T) {
	cs := compileOK(t, `fn main() : Int = let _ : Unit = print "hello, world"; 0;`)
	require.NotEmpty(t, cs.IR)
	assert.Contains(t, cs.IR, "define i32 @main()")
	assert.Contains(t, cs.IR, "call void @print(")
}

func TestCustomBinaryOperator(t *testing.T) {
	cs := compileOK(t, `
op <+> (a: Int, b: Int) 65 left = a + b * 2;
fn main() : Int = 1 <+> 2;
`)
	assert.Contains(t, cs.IR, "mul i64")
	assert.Contains(t, cs.IR, "add i64")
	// the operator's own definition is mangled with an "op." kind segment
	// and an arity suffix, not a declaration-order index.
	assert.Contains(t, cs.IR, "define i64 @Scenario_op.lt_plus_gt.2(")
}

func TestOperatorPrecedence(t *testing.T) {
	cs := compileOK(t, `fn main() : Int = 2 + 3 * 4;`)
	// multiplication must be computed before the add, i.e. the mul
	// instruction's result feeds the add, not the other way around.
	mulIdx := strings.Index(cs.IR, "mul i64")
	addIdx := strings.Index(cs.IR, "add i64")
	require.GreaterOrEqual(t, mulIdx, 0)
	require.GreaterOrEqual(t, addIdx, 0)
	assert.Less(t, mulIdx, addIdx)
}

func TestPartialApplicationEtaExpands(t *testing.T) {
	cs := compileOK(t, `
fn add(a: Int, b: Int) : Int = a + b;
let inc = add 1;
fn main() : Int = 0;
`)
	// eta-expansion of the under-applied add binding wraps the missing
	// parameter in a fresh lambda, emitted as its own function that
	// calls add.
	assert.Contains(t, cs.IR, "_add.")
}

func TestTailRecursionLoopifies(t *testing.T) {
	cs := compileOK(t, `
fn sum(n: Int, acc: Int) : Int = if n == 0 then acc else sum (n - 1) (acc + n);
fn main() : Int = sum 10 0;
`)
	assert.Contains(t, cs.IR, "loop.header")
	assert.Contains(t, cs.IR, "phi i64")
}

func TestHoleAborts(t *testing.T) {
	cs := compileOK(t, `fn main(): Int = ???;`)
	// the hole's span must be threaded through to the runtime call, not
	// hardcoded zeros: "???" starts at column 18 and ends at column 21.
	assert.Contains(t, cs.IR, "call void @__mml_sys_hole(i64 1, i64 18, i64 1, i64 21)")
	assert.Contains(t, cs.IR, "unreachable")
}

func TestUnusedAllocationIsFreed(t *testing.T) {
	cs := compileOK(t, `
fn main() : Int = let s : String = concat "a" "b"; 0;
`)
	// s is never returned or passed on, so the ownership pass must insert
	// a free call for it before the function's final value.
	assert.Contains(t, cs.IR, "call void @__free_String(")
}

func TestBorrowedParamStaysOwnedAfterCall(t *testing.T) {
	cs := compileOK(t, `
fn look(&s: String) : Int = 0;
fn main() : Int = let s : String = concat "a" "b"; let _ : Int = look(s); look(s);
`)
	// both calls borrow s, so it is freed exactly once, after the second
	// (final) use, not moved out by the first.
	assert.Equal(t, 1, strings.Count(cs.IR, "call void @__free_String("))
}

func TestUseAfterMoveIsRejected(t *testing.T) {
	cs := compiler.Compile([]byte(`
fn consume(s: String) : Int = 0;
fn main() : Int = let s : String = concat "a" "b"; let _ : Int = consume(s); consume(s);
`), "Scenario", config.Default())
	require.True(t, cs.HasErrors())
	var sawMoved bool
	for _, r := range cs.Errors {
		if r.Code == "OWN001" {
			sawMoved = true
		}
	}
	assert.True(t, sawMoved, "expected an OWN001 use-after-move diagnostic")
}

func TestDuplicateNameResilience(t *testing.T) {
	cs := compiler.Compile([]byte(`
let x = 1;
let x = 2;
fn main() : Int = x;
`), "Scenario", config.Default())
	require.True(t, cs.HasErrors())
	var sawDup bool
	for _, r := range cs.Errors {
		if strings.Contains(strings.ToLower(r.Message), "duplicate") {
			sawDup = true
		}
	}
	assert.True(t, sawDup, "expected a duplicate-name diagnostic")
}
