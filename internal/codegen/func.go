package codegen

import (
	"fmt"
	"strings"

	"github.com/minnieml/mmlc/internal/ast"
)

func (cg *CodeGenState) emitFunction(bnd *ast.Bnd, lam *ast.Lambda) {
	name := cg.mangle(bnd.Name, len(lam.Params), false)
	fnType, _ := bnd.TypeSpecField.(*ast.TypeFn)
	var retSpec ast.TypeSpec
	if fnType != nil {
		retSpec = fnType.ReturnType
	}
	cg.emitFunctionBody(name, bnd.ResolvableID(), lam.Params, retSpec, lam.Body)
}

func (cg *CodeGenState) emitOperatorFunction(selfID, name string, params []*ast.FnParam, retSpec ast.TypeSpec, body ast.Expr) {
	symbol := cg.mangle(name, len(params), true)
	cg.emitFunctionBody(symbol, selfID, params, retSpec, body)
}

// emitFunctionBody lowers one non-native function/operator body into an
// LLVM function definition, loopifying a direct self-tail-call into a
// phi-carried loop unless the configuration disables TCO.
func (cg *CodeGenState) emitFunctionBody(symbol, selfID string, params []*ast.FnParam, retSpec ast.TypeSpec, body ast.Expr) {
	retType := cg.llvmType(retSpec)

	paramStrs := make([]string, len(params))
	paramIDs := make([]string, len(params))
	for i, p := range params {
		pt := cg.llvmType(p.TypeSpec)
		if pt == "" {
			pt = cg.llvmType(p.TypeAsc)
		}
		reg := fmt.Sprintf("%%arg%d", i)
		paramStrs[i] = pt + " " + reg
		cg.localRegs[p.ResolvableID()] = reg
		cg.localTypes[p.ResolvableID()] = pt
		paramIDs[i] = p.ResolvableID()
	}

	cg.emitf("define %s @%s(%s) {", retType, symbol, strings.Join(paramStrs, ", "))
	cg.emitLabel("entry")

	if !cg.cfg.NoTCO && hasTailSelfCall(body, selfID) {
		cg.emitLoopifiedBody(body, selfID, paramIDs)
	} else {
		res := cg.lowerExpr(body)
		cg.emitReturn(res)
	}

	cg.emitf("}")
	cg.body.WriteByte('\n')
}

func (cg *CodeGenState) emitReturn(v value) {
	if v.typ == "void" {
		cg.emitf("ret void")
		return
	}
	cg.emitf("ret %s %s", v.typ, v.reg)
}

// hasTailSelfCall reports whether e, evaluated in tail position, can
// reach a direct call back to selfID — looking through Cond branches and
// the App(Lambda([x], body), value) let/free-sequencing shape, the only
// two constructs that can appear between a function body's root and a
// tail call.
func hasTailSelfCall(e ast.Expr, selfID string) bool {
	switch v := e.(type) {
	case *ast.App:
		if lam, ok := isLocalLet(v); ok {
			return hasTailSelfCall(lam.Body, selfID)
		}
		callee, _ := ast.FlattenApp(v)
		ref, ok := callee.(*ast.Ref)
		return ok && ref.ResolvedID == selfID
	case *ast.Cond:
		return hasTailSelfCall(v.IfTrue, selfID) || hasTailSelfCall(v.IfFalse, selfID)
	case *ast.TermGroup:
		return hasTailSelfCall(v.Inner, selfID)
	default:
		return false
	}
}

// tailCtx accumulates the latch edges discovered while lowering a
// loopified function body, since a phi instruction's incoming list can
// only be written once every tail self-call site is known.
type tailCtx struct {
	selfID string
	header string
	latch  []latchEdge
}

type latchEdge struct {
	fromLabel string
	argRegs   []string
}

// emitLoopifiedBody lowers body into the header block's phi-carried loop.
// The body is first lowered into a scratch buffer (via cg.target
// redirection) so the phi lines — which must be physically first in
// loop.header — can be constructed afterward from the latch edges
// collected during that lowering, then spliced ahead of the buffered
// text.
func (cg *CodeGenState) emitLoopifiedBody(body ast.Expr, selfID string, paramIDs []string) {
	header := cg.freshLabel("loop.header.")
	cg.emitf("br label %%%s", header)

	scratch := &strings.Builder{}
	prevTarget := cg.target
	cg.target = scratch

	loopRegs := make([]string, len(paramIDs))
	loopTypes := make([]string, len(paramIDs))
	for i, id := range paramIDs {
		loopRegs[i] = cg.freshReg()
		loopTypes[i] = cg.localTypes[id]
		cg.localRegs[id] = loopRegs[i]
	}

	cg.emitLabel(header)
	tc := &tailCtx{selfID: selfID, header: header}
	cg.lowerTail(body, tc)

	cg.target = prevTarget

	var finalHeader strings.Builder
	fmt.Fprintf(&finalHeader, "%s:\n", header)
	for i, reg := range loopRegs {
		incoming := []string{fmt.Sprintf("[ %%arg%d, %%entry ]", i)}
		for _, edge := range tc.latch {
			incoming = append(incoming, fmt.Sprintf("[ %s, %%%s ]", edge.argRegs[i], edge.fromLabel))
		}
		fmt.Fprintf(&finalHeader, "%s = phi %s %s\n", reg, loopTypes[i], strings.Join(incoming, ", "))
	}

	bodyText := strings.TrimPrefix(scratch.String(), header+":\n")
	cg.body.WriteString(finalHeader.String())
	cg.body.WriteString(bodyText)
}

// lowerTail lowers e as the tail expression of a loopified function body:
// a tail self-call becomes a branch back to the loop header instead of a
// call instruction, with its argument registers recorded as a latch edge;
// anything else is lowered normally and returned.
func (cg *CodeGenState) lowerTail(e ast.Expr, tc *tailCtx) {
	switch v := e.(type) {
	case *ast.App:
		if lam, ok := isLocalLet(v); ok {
			argVal := cg.lowerExpr(v.Arg)
			p := lam.Params[0]
			if p.Name != "_" {
				cg.localRegs[p.ResolvableID()] = argVal.reg
				cg.localTypes[p.ResolvableID()] = argVal.typ
			}
			cg.lowerTail(lam.Body, tc)
			return
		}
		callee, args := ast.FlattenApp(v)
		if ref, ok := callee.(*ast.Ref); ok && ref.ResolvedID == tc.selfID {
			argRegs := make([]string, len(args))
			for i, a := range args {
				argRegs[i] = cg.lowerExpr(a).reg
			}
			// cg.currentLabel is the block actually executing this call,
			// even when it sits under nested Cond branches.
			tc.latch = append(tc.latch, latchEdge{fromLabel: cg.currentLabel, argRegs: argRegs})
			cg.emitf("br label %%%s", tc.header)
			return
		}
		cg.emitReturn(cg.lowerExpr(v))
	case *ast.Cond:
		condVal := cg.lowerExpr(v.CondExpr)
		thenL := cg.freshLabel("tail.then.")
		elseL := cg.freshLabel("tail.else.")
		cg.emitf("br i1 %s, label %%%s, label %%%s", condVal.reg, thenL, elseL)
		cg.emitLabel(thenL)
		cg.lowerTail(v.IfTrue, tc)
		cg.emitLabel(elseL)
		cg.lowerTail(v.IfFalse, tc)
	case *ast.TermGroup:
		cg.lowerTail(v.Inner, tc)
	default:
		cg.emitReturn(cg.lowerExpr(e))
	}
}

// emitSynthesizedMain wraps the module's `main` binding in a C-ABI
// `main() -> i32` entry point.
func (cg *CodeGenState) emitSynthesizedMain(mainFn *ast.Bnd) {
	mangled := cg.mangle(mainFn.Name, 0, false)
	fnType, _ := mainFn.TypeSpecField.(*ast.TypeFn)
	retType := "void"
	if fnType != nil {
		retType = cg.llvmType(fnType.ReturnType)
	}

	cg.emitf("define i32 @main() {")
	cg.emitLabel("entry")
	if retType == "void" {
		cg.emitf("call void @%s()", mangled)
	} else {
		reg := cg.freshReg()
		cg.emitf("%s = call %s @%s()", reg, retType, mangled)
	}
	cg.emitf("ret i32 0")
	cg.emitf("}")
	cg.body.WriteByte('\n')
}
