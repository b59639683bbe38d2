// Package codegen is the LLVM IR emitter: it lowers a
// fully resolved, type-checked, ownership-decorated Module into a single
// textual LLVM module. A mutable CodeGenState is threaded by pointer
// through a recursive walk, text emission goes through strings.Builder
// the way internal/ast/print.go builds deterministic textual output, and
// ABI rules live in one switch over ABI families (Lower in abi.go).
package codegen

import (
	"fmt"
	"sort"
	"strings"

	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/config"
	"github.com/minnieml/mmlc/internal/errs"
)

// inlineOpTemplates maps a native selector to the single LLVM
// instruction template the emitter substitutes directly at the call
// site, rather than declaring an external symbol.
var inlineOpTemplates = map[string]string{
	"add": "add %type %operand1, %operand2", "sub": "sub %type %operand1, %operand2",
	"mul": "mul %type %operand1, %operand2", "sdiv": "sdiv %type %operand1, %operand2",
	"and": "and %type %operand1, %operand2", "or": "or %type %operand1, %operand2",
	"xor": "xor %type %operand1, %operand2", "shl": "shl %type %operand1, %operand2",
	"lshr": "lshr %type %operand1, %operand2", "ashr": "ashr %type %operand1, %operand2",
	"icmp_eq": "icmp eq %type %operand1, %operand2", "icmp_ne": "icmp ne %type %operand1, %operand2",
	"icmp_slt": "icmp slt %type %operand1, %operand2", "icmp_sle": "icmp sle %type %operand1, %operand2",
	"icmp_sgt": "icmp sgt %type %operand1, %operand2", "icmp_sge": "icmp sge %type %operand1, %operand2",
	"neg": "sub %type 0, %operand", "not": "xor %type %operand, -1",
}

// Emit lowers mod into a single LLVM IR text module. idx must be the
// Index produced by the final semantic/ownership pass over mod.
func Emit(mod *ast.Module, idx *ast.ResolvablesIndex, cfg *config.CompilerConfig) (string, []*errs.Report) {
	cg := newState(idx, cfg, mod.Name)

	var out strings.Builder
	fmt.Fprintf(&out, "; ModuleID = %q\n", mod.Name)
	fmt.Fprintf(&out, "target triple = %q\n\n", cfg.TargetTriple)

	cg.emitNativeStructs(mod)
	cg.emitExternDecls(mod)

	var mainFn *ast.Bnd
	for _, m := range mod.Members {
		switch v := m.(type) {
		case *ast.Bnd:
			lam, ok := v.Value.(*ast.Lambda)
			if !ok || v.Name == "" {
				continue
			}
			if _, isNative := lam.Body.(*ast.NativeImpl); isNative {
				continue
			}
			cg.emitFunction(v, lam)
			if v.Name == "main" {
				mainFn = v
			}
		case *ast.BinOpDef:
			if v.Body == nil {
				continue
			}
			if _, isNative := v.Body.(*ast.NativeImpl); isNative {
				continue
			}
			cg.emitOperatorFunction(v.ResolvableID(), v.Name, []*ast.FnParam{&v.Left, &v.Right}, v.ReturnType, v.Body)
		case *ast.UnaryOpDef:
			if v.Body == nil {
				continue
			}
			if _, isNative := v.Body.(*ast.NativeImpl); isNative {
				continue
			}
			cg.emitOperatorFunction(v.ResolvableID(), v.Name, []*ast.FnParam{&v.Operand}, v.ReturnType, v.Body)
		}
	}

	if cfg.Mode == config.ModeBinary && mainFn != nil {
		cg.emitSynthesizedMain(mainFn)
	}

	cg.emitStringConstants()
	cg.emitGlobalCtors()

	out.WriteString(cg.header.String())
	out.WriteByte('\n')
	out.WriteString(cg.body.String())
	cg.tbaa.emit(&out)

	return out.String(), cg.errors
}

func (cg *CodeGenState) emitNativeStructs(mod *ast.Module) {
	for _, m := range mod.Members {
		switch v := m.(type) {
		case *ast.TypeDef:
			if ns, ok := v.TypeSpecField.(*ast.NativeStruct); ok {
				cg.emitStructLayout(ns.Name, ns.Fields)
			}
		case *ast.TypeStruct:
			fields := make([]ast.NativeField, len(v.Fields))
			for i, f := range v.Fields {
				fields[i] = ast.NativeField{Name: f.Name, Type: f.Type}
			}
			cg.emitStructLayout(v.Name, fields)
		}
	}
	cg.header.WriteByte('\n')
}

func (cg *CodeGenState) emitStructLayout(name string, fields []ast.NativeField) {
	cg.structFields[name] = fields

	fieldTypes := make([]string, len(fields))
	sizes := make([]int, len(fields))
	aligns := make([]int, len(fields))
	tbaaFields := make([]tbaaStructField, len(fields))
	for i, f := range fields {
		lt := cg.llvmType(f.Type)
		fieldTypes[i] = lt
		sizes[i], aligns[i] = FieldSizeAlign(lt)
		tbaaFields[i] = tbaaStructField{name: f.Name}
	}
	layout := ComputeLayout(sizes, aligns)
	for i := range tbaaFields {
		tbaaFields[i].offset = layout.Offsets[i]
	}
	cg.tbaa.structTag(name, tbaaFields)

	fmt.Fprintf(&cg.header, "%%struct.%s = type { %s }\n", name, strings.Join(fieldTypes, ", "))
}

// emitExternDecls declares every native binding that is a genuine
// out-of-module symbol: anything whose @native selector is not one of
// the inline arithmetic/comparison templates and does not carry a tpl
// (which is inlined directly at the call site instead).
func (cg *CodeGenState) emitExternDecls(mod *ast.Module) {
	for _, m := range mod.Members {
		switch v := m.(type) {
		case *ast.Bnd:
			if v.Name == "" {
				continue
			}
			lam, ok := v.Value.(*ast.Lambda)
			if !ok {
				continue
			}
			nat, ok := lam.Body.(*ast.NativeImpl)
			if !ok {
				continue
			}
			if isInlineSelector(nat) {
				continue
			}
			fnType, _ := v.TypeSpecField.(*ast.TypeFn)
			var params []string
			ret := "void"
			if fnType != nil {
				for _, pt := range fnType.ParamTypes {
					params = append(params, cg.paramPassing(pt))
				}
				ret = cg.llvmType(fnType.ReturnType)
			}
			cg.declareExtern(v.Name, ret, params)
		case *ast.BinOpDef:
			if v.Native == nil || isInlineSelector(v.Native) {
				continue
			}
			selector := nativeSelector(v.Native)
			paramT := cg.llvmType(v.Left.TypeAsc)
			cg.declareExtern("mml_rt_"+selector, cg.llvmType(v.ReturnType), []string{paramT, cg.llvmType(v.Right.TypeAsc)})
		case *ast.UnaryOpDef:
			if v.Native == nil || isInlineSelector(v.Native) {
				continue
			}
			selector := nativeSelector(v.Native)
			cg.declareExtern("mml_rt_"+selector, cg.llvmType(v.ReturnType), []string{cg.llvmType(v.Operand.TypeAsc)})
		}
	}
	cg.header.WriteByte('\n')
}

func nativeSelector(n *ast.NativeImpl) string {
	if n.Selector != "" {
		return n.Selector
	}
	return n.Attrs["op"]
}

// isInlineSelector reports whether a native's selector is expanded
// directly at its call site (an arithmetic/comparison template, or the
// identity "nop") rather than declared as an external symbol.
func isInlineSelector(n *ast.NativeImpl) bool {
	if n.Template != "" {
		return true
	}
	sel := nativeSelector(n)
	if sel == "nop" {
		return true
	}
	_, inline := inlineOpTemplates[sel]
	return inline
}

func (cg *CodeGenState) declareExtern(name, ret string, params []string) {
	if cg.declaredExterns[name] {
		return
	}
	cg.declaredExterns[name] = true
	fmt.Fprintf(&cg.header, "declare %s @%s(%s)\n", ret, name, strings.Join(params, ", "))
}

func (cg *CodeGenState) emitStringConstants() {
	if len(cg.stringConsts) == 0 {
		return
	}
	names := make([]string, 0, len(cg.stringConsts))
	for s := range cg.stringConsts {
		names = append(names, s)
	}
	sort.Strings(names)
	for _, s := range names {
		name := cg.stringConsts[s]
		n := len(s) + 1
		fmt.Fprintf(&cg.header, "%s = private unnamed_addr constant [%d x i8] c\"%s\\00\"\n", name, n, escapeString(s))
	}
	cg.header.WriteByte('\n')
}

func (cg *CodeGenState) emitGlobalCtors() {
	if len(cg.ctorFns) == 0 {
		return
	}
	fmt.Fprintf(&cg.header, "@llvm.global_ctors = appending global [%d x { i32, ptr, ptr }] [\n", len(cg.ctorFns))
	for i, name := range cg.ctorFns {
		sep := ","
		if i == len(cg.ctorFns)-1 {
			sep = ""
		}
		fmt.Fprintf(&cg.header, "  { i32, ptr, ptr } { i32 65535, ptr @%s, ptr null }%s\n", name, sep)
	}
	cg.header.WriteString("]\n\n")
}

func escapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString("\\22")
		case '\\':
			b.WriteString("\\5C")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
