package codegen

import (
	"fmt"
	"strings"

	"github.com/minnieml/mmlc/internal/ast"
	"github.com/minnieml/mmlc/internal/errs"
)

// value is a lowered expression's result: its LLVM register (or literal
// operand text) and its LLVM type string.
type value struct {
	reg string
	typ string
}

// lowerExpr emits whatever instructions e requires into cg.target and
// returns its resulting value. Non-tail position only; see lowerTail for
// the tail-call-loopification path used by emitFunction.
func (cg *CodeGenState) lowerExpr(e ast.Expr) value {
	switch v := e.(type) {
	case *ast.Literal:
		return cg.lowerLiteral(v)
	case *ast.Ref:
		return cg.lowerRef(v)
	case *ast.App:
		return cg.lowerApp(v)
	case *ast.Cond:
		return cg.lowerCondExpr(v)
	case *ast.Tuple:
		return cg.lowerTuple(v)
	case *ast.TermGroup:
		return cg.lowerExpr(v.Inner)
	case *ast.Hole:
		span := v.Src.Span
		cg.emitf("call void @__mml_sys_hole(i64 %d, i64 %d, i64 %d, i64 %d)",
			span.Start.Line, span.Start.Col, span.End.Line, span.End.Col)
		cg.emitf("unreachable")
		return value{reg: "undef", typ: cg.llvmType(v.TypeSpecField)}
	case *ast.InvalidExpression:
		cg.fail(errs.GEN001, "codegen reached an InvalidExpression node")
		return value{reg: "undef", typ: "ptr"}
	default:
		cg.fail(errs.GEN001, fmt.Sprintf("codegen has no lowering for %T", e))
		return value{reg: "undef", typ: "ptr"}
	}
}

func (cg *CodeGenState) lowerLiteral(l *ast.Literal) value {
	t := cg.llvmType(l.TypeSpecField)
	switch l.Kind {
	case ast.IntLit:
		return value{reg: fmt.Sprintf("%v", l.Value), typ: "i64"}
	case ast.FloatLit:
		return value{reg: fmt.Sprintf("%v", l.Value), typ: "double"}
	case ast.BoolLit:
		if b, _ := l.Value.(bool); b {
			return value{reg: "1", typ: "i1"}
		}
		return value{reg: "0", typ: "i1"}
	case ast.UnitLit:
		return value{reg: "undef", typ: "void"}
	case ast.StringLit:
		s, _ := l.Value.(string)
		sym := cg.internString(s)
		reg := cg.freshReg()
		cg.emitf("%s = getelementptr inbounds [%d x i8], ptr %s, i64 0, i64 0", reg, len(s)+1, sym)
		return value{reg: reg, typ: t}
	default:
		return value{reg: "undef", typ: t}
	}
}

func (cg *CodeGenState) lowerRef(r *ast.Ref) value {
	if reg, ok := cg.localRegs[r.ResolvedID]; ok {
		return value{reg: reg, typ: cg.localTypes[r.ResolvedID]}
	}
	// A zero-arg top-level function referenced in value position was
	// already wrapped into an App(fn, Unit) by the rewriter
	// (wrapNullary); reaching a bare unresolved Ref here means an
	// external symbol reference with no call.
	return value{reg: "@" + r.Name, typ: "ptr"}
}

func (cg *CodeGenState) lowerTuple(t *ast.Tuple) value {
	typ := cg.llvmType(t.TypeSpecField)
	if len(t.Elems) == 0 {
		return value{reg: "undef", typ: "void"}
	}
	agg := "undef"
	cur := value{reg: agg, typ: typ}
	for i, el := range t.Elems {
		ev := cg.lowerExpr(el)
		reg := cg.freshReg()
		cg.emitf("%s = insertvalue %s %s, %s %s, %d", reg, typ, cur.reg, ev.typ, ev.reg, i)
		cur = value{reg: reg, typ: typ}
	}
	return cur
}

func (cg *CodeGenState) lowerCondExpr(c *ast.Cond) value {
	condVal := cg.lowerExpr(c.CondExpr)
	thenL := cg.freshLabel("cond.then.")
	elseL := cg.freshLabel("cond.else.")
	joinL := cg.freshLabel("cond.join.")
	cg.emitf("br i1 %s, label %%%s, label %%%s", condVal.reg, thenL, elseL)

	cg.emitLabel(thenL)
	thenVal := cg.lowerExpr(c.IfTrue)
	thenPred := cg.currentLabel
	cg.emitf("br label %%%s", joinL)

	cg.emitLabel(elseL)
	elseVal := cg.lowerExpr(c.IfFalse)
	elsePred := cg.currentLabel
	cg.emitf("br label %%%s", joinL)

	cg.emitLabel(joinL)
	resType := cg.llvmType(c.TypeSpecField)
	if resType == "void" {
		return value{reg: "undef", typ: "void"}
	}
	reg := cg.freshReg()
	cg.emitf("%s = phi %s [ %s, %%%s ], [ %s, %%%s ]", reg, resType, thenVal.reg, thenPred, elseVal.reg, elsePred)
	return value{reg: reg, typ: resType}
}

// isLocalLet detects the App(Lambda([x], body), value) sequencing shape
// produced both by let-desugaring and by the ownership analyzer's
// synthetic free/clone insertion.
func isLocalLet(app *ast.App) (*ast.Lambda, bool) {
	lam, ok := app.Fn.(*ast.Lambda)
	return lam, ok && len(lam.Params) == 1
}

func (cg *CodeGenState) lowerApp(app *ast.App) value {
	if lam, ok := isLocalLet(app); ok {
		argVal := cg.lowerExpr(app.Arg)
		param := lam.Params[0]
		if param.Name != "_" {
			cg.localRegs[param.ResolvableID()] = argVal.reg
			cg.localTypes[param.ResolvableID()] = argVal.typ
		}
		return cg.lowerExpr(lam.Body)
	}

	callee, args := ast.FlattenApp(app)
	if nat := ast.CalleeNativeBody(callee, cg.idx); nat != nil {
		return cg.lowerNativeCall(callee, nat, args)
	}

	ref, ok := callee.(*ast.Ref)
	if !ok || ref.ResolvedID == "" {
		cg.fail(errs.GEN001, "call target did not resolve to a known function")
		return value{reg: "undef", typ: "ptr"}
	}
	symbol := cg.calleeSymbol(ref.ResolvedID)
	retType := cg.llvmType(ast.CalleeReturnType(callee, cg.idx))

	argStrs := make([]string, len(args))
	for i, a := range args {
		av := cg.lowerExpr(a)
		argStrs[i] = av.typ + " " + av.reg
	}
	if retType == "void" {
		cg.emitf("call void @%s(%s)", symbol, strings.Join(argStrs, ", "))
		return value{reg: "undef", typ: "void"}
	}
	reg := cg.freshReg()
	cg.emitf("%s = call %s @%s(%s)", reg, retType, symbol, strings.Join(argStrs, ", "))
	return value{reg: reg, typ: retType}
}

// calleeSymbol returns the emitted symbol name for a resolved member id,
// looking up its mangled form or, for natives with a stable declared
// name, the declared name itself.
func (cg *CodeGenState) calleeSymbol(id string) string {
	res, ok := cg.idx.Lookup(id)
	if !ok {
		return "unknown"
	}
	switch v := res.(type) {
	case *ast.Bnd:
		if lam, ok := v.Value.(*ast.Lambda); ok {
			if _, isNative := lam.Body.(*ast.NativeImpl); isNative {
				return v.Name
			}
			return cg.mangle(v.Name, len(lam.Params), false)
		}
		return cg.mangle(v.Name, 0, false)
	case *ast.BinOpDef:
		return cg.mangle(v.Name, 2, true)
	case *ast.UnaryOpDef:
		return cg.mangle(v.Name, 1, true)
	}
	return "unknown"
}

func (cg *CodeGenState) lowerNativeCall(callee ast.Expr, nat *ast.NativeImpl, args []ast.Expr) value {
	selector := nat.Selector
	if selector == "" {
		selector = nat.Attrs["op"]
	}

	if tpl, ok := inlineOpTemplates[selector]; ok {
		return cg.lowerInlineOp(tpl, args)
	}
	if selector == "nop" {
		return cg.lowerExpr(args[0])
	}

	retType := cg.llvmType(ast.CalleeReturnType(callee, cg.idx))
	symbol := cg.runtimeSymbol(callee, selector)
	params := ast.CalleeParams(callee, cg.idx)

	argStrs := make([]string, len(args))
	for i, a := range args {
		av := cg.lowerExpr(a)
		var passing string
		if i < len(params) {
			passing = cg.paramPassing(params[i].TypeAsc)
		} else {
			passing = av.typ
		}
		argStrs[i] = cg.passArg(av, passing)
	}
	if retType == "void" {
		cg.emitf("call void @%s(%s)", symbol, strings.Join(argStrs, ", "))
		return value{reg: "undef", typ: "void"}
	}
	reg := cg.freshReg()
	cg.emitf("%s = call %s @%s(%s)", reg, retType, symbol, strings.Join(argStrs, ", "))
	return value{reg: reg, typ: retType}
}

// passArg renders one call argument, spilling an aggregate value to a
// stack slot and passing its address when the callee's ABI-lowered
// parameter form (passing) calls for a pointer rather than the value
// itself.
func (cg *CodeGenState) passArg(av value, passing string) string {
	if !strings.HasPrefix(passing, "ptr") || av.typ == "ptr" {
		if passing == av.typ {
			return av.typ + " " + av.reg
		}
		return passing + " " + av.reg
	}
	slot := cg.freshReg()
	cg.emitf("%s = alloca %s", slot, av.typ)
	cg.emitf("store %s %s, ptr %s", av.typ, av.reg, slot)
	return passing + " " + slot
}

// runtimeSymbol returns the declared extern symbol backing a native call:
// the declared Bnd name when the native is a named top-level binding
// (print, concat, __free_String, ...), or a synthesized "mml_rt_"
// prefixed name for anonymous BinOpDef/UnaryOpDef natives (pow,
// factorial) that have no Bnd of their own.
func (cg *CodeGenState) runtimeSymbol(callee ast.Expr, selector string) string {
	if ref, ok := callee.(*ast.Ref); ok {
		if res, ok := cg.idx.Lookup(ref.ResolvedID); ok {
			if bnd, ok := res.(*ast.Bnd); ok && bnd.Name != "" {
				return bnd.Name
			}
		}
	}
	return "mml_rt_" + selector
}

// lowerInlineOp substitutes operand/type placeholders into one of the
// arithmetic/comparison templates and emits the single resulting
// instruction, rather than a call.
func (cg *CodeGenState) lowerInlineOp(tpl string, args []ast.Expr) value {
	vals := make([]value, len(args))
	for i, a := range args {
		vals[i] = cg.lowerExpr(a)
	}
	opType := "i64"
	if len(vals) > 0 {
		opType = vals[0].typ
	}
	text := strings.ReplaceAll(tpl, "%type", opType)
	if len(vals) >= 2 {
		text = strings.ReplaceAll(text, "%operand2", vals[1].reg)
	}
	if len(vals) >= 1 {
		text = strings.ReplaceAll(text, "%operand1", vals[0].reg)
		text = strings.ReplaceAll(text, "%operand", vals[0].reg)
	}
	resultType := opType
	if strings.HasPrefix(text, "icmp") {
		resultType = "i1"
	}
	reg := cg.freshReg()
	cg.emitf("%s = %s", reg, text)
	return value{reg: reg, typ: resultType}
}
