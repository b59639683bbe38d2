package codegen

import (
	"fmt"
	"strings"

	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/config"
	"github.com/minnieml/mmlc/internal/errs"
	"github.com/minnieml/mmlc/internal/source"
)

func noOrigin() source.Origin { return source.Synth }

// CodeGenState is the mutable value threaded through emission: output buffers, per-function SSA
// counters, the interned string table, the TBAA registry, and the set of
// global initializer functions collected for @llvm.global_ctors.
type CodeGenState struct {
	idx          *ast.ResolvablesIndex
	cfg          *config.CompilerConfig
	modulePrefix string

	header strings.Builder // struct defs, string globals, extern decls
	body   strings.Builder // function definitions
	target *strings.Builder // where emitf/emitLabel currently write (usually &body)
	tbaa   *tbaaRegistry

	regCounter   int
	labelCounter int
	currentLabel string            // block emitLabel most recently opened, for phi predecessor tracking
	stringConsts map[string]string // content -> global symbol

	localRegs  map[string]string // resolvable id -> SSA value
	localTypes map[string]string // resolvable id -> LLVM type string

	structFields map[string][]ast.NativeField // struct name -> declared fields, for GEP/extractvalue indices
	ctorFns      []string

	declaredExterns map[string]bool

	errors []*errs.Report
}

func newState(idx *ast.ResolvablesIndex, cfg *config.CompilerConfig, modulePrefix string) *CodeGenState {
	cg := &CodeGenState{
		idx:             idx,
		cfg:             cfg,
		modulePrefix:    modulePrefix,
		tbaa:            newTBAARegistry(),
		stringConsts:    map[string]string{},
		structFields:    map[string][]ast.NativeField{},
		declaredExterns: map[string]bool{},
	}
	cg.target = &cg.body
	return cg
}

func (cg *CodeGenState) freshReg() string {
	cg.regCounter++
	return fmt.Sprintf("%%t%d", cg.regCounter)
}

func (cg *CodeGenState) freshLabel(prefix string) string {
	cg.labelCounter++
	return fmt.Sprintf("%s%d", prefix, cg.labelCounter)
}

func (cg *CodeGenState) emitf(format string, args ...any) {
	fmt.Fprintf(cg.target, format, args...)
	cg.target.WriteByte('\n')
}

func (cg *CodeGenState) emitLabel(name string) {
	fmt.Fprintf(cg.target, "%s:\n", name)
	cg.currentLabel = name
}

func (cg *CodeGenState) fail(code, message string) {
	cg.errors = append(cg.errors, errs.New(code, "codegen.Emitter", message, noOrigin()))
}

func (cg *CodeGenState) internString(s string) string {
	if name, ok := cg.stringConsts[s]; ok {
		return name
	}
	name := fmt.Sprintf("@.str.%d", len(cg.stringConsts))
	cg.stringConsts[s] = name
	return name
}
