// Package compiler wires the whole MinnieML pipeline behind one call:
// lex, parse, inject stdlib, run the seven semantic phases in order,
// run ownership analysis, then emit LLVM IR. Each stage is a pure
// function over the previous stage's output, the same threading style
// internal/semantic uses for its own phases, generalized one level up.
package compiler

import (
	"time"

	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/codegen"
	"github.com/minnieml/mmlc/internal/config"
	"github.com/minnieml/mmlc/internal/errs"
	"github.com/minnieml/mmlc/internal/lexer"
	"github.com/minnieml/mmlc/internal/ownership"
	"github.com/minnieml/mmlc/internal/parser"
	"github.com/minnieml/mmlc/internal/semantic"
	"github.com/minnieml/mmlc/internal/source"
	"github.com/minnieml/mmlc/internal/stdlib"
)

// PhaseTimings records wall-clock duration per pipeline stage, keyed by
// stage name, for -verbose_timings style diagnostics.
type PhaseTimings map[string]time.Duration

// CompilerState is the full result of a Compile call: the final Module,
// every diagnostic collected across
// every stage, the emitted IR text (empty if compilation stopped before
// codegen), and per-stage timings.
type CompilerState struct {
	Module  *ast.Module
	Errors  []*errs.Report
	IR      string
	Timings PhaseTimings
}

// HasErrors reports whether any user-visible diagnostic was raised.
func (cs *CompilerState) HasErrors() bool {
	return len(errs.FilterUserVisible(cs.Errors)) > 0
}

var orderedPhases = []struct {
	name string
	run  func(semantic.State) semantic.State
}{
	{"ParsingErrorChecker", semantic.ParsingErrorChecker},
	{"DuplicateNameChecker", semantic.DuplicateNameChecker},
	{"TypeResolver", semantic.TypeResolver},
	{"RefResolver", semantic.RefResolver},
	{"ExpressionRewriter", semantic.ExpressionRewriter},
	{"Simplifier", semantic.Simplifier},
	{"TypeChecker", semantic.TypeChecker},
}

// Compile runs the full pipeline over src, producing an emitted LLVM IR
// module on success. moduleName is used verbatim as the parsed Module's
// name (and the LLVM ModuleID). cfg may be nil, in which case
// config.Default() is used.
func Compile(src []byte, moduleName string, cfg *config.CompilerConfig) *CompilerState {
	if cfg == nil {
		cfg = config.Default()
	}
	cs := &CompilerState{Timings: PhaseTimings{}}

	timed := func(name string, fn func()) {
		start := time.Now()
		fn()
		cs.Timings[name] = time.Since(start)
	}

	var mod *ast.Module
	var parseErrs []*errs.Report
	timed("lex+parse", func() {
		l := lexer.New(src, moduleName)
		p := parser.New(l)
		mod = p.Parse(moduleName)
		for _, pe := range p.Errors() {
			parseErrs = append(parseErrs, errs.New(errs.PAR001, "parser.Parse", pe.Message, source.FromSource(pe.Span)))
		}
	})

	timed("stdlib-inject", func() {
		mod.Members = append(stdlib.Inject(), mod.Members...)
	})

	st := semantic.State{Module: mod, Errors: parseErrs, Index: semantic.BuildResolvablesIndex(mod)}
	for _, phase := range orderedPhases {
		timed(phase.name, func() {
			st = phase.run(st)
		})
	}
	cs.Module = st.Module
	cs.Errors = st.Errors
	if cs.HasErrors() {
		return cs
	}

	timed("ownership", func() {
		st = ownership.Analyze(st)
	})
	cs.Module = st.Module
	cs.Errors = st.Errors
	if cs.HasErrors() {
		return cs
	}

	timed("codegen", func() {
		ir, genErrs := codegen.Emit(st.Module, st.Index, cfg)
		cs.IR = ir
		cs.Errors = append(cs.Errors, genErrs...)
	})

	return cs
}
